package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/config"
	xhttp "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/http"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/http/middleware"
	pkgkafka "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/kafka"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	httpHandler xhttp.Handler
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	httpServer  *xhttp.Server
}

// New creates a new App. consumer may be nil when Kafka is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpHandler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		l:           l,
		httpHandler: httpHandler,
		consumer:    consumer,
		kh:          kh,
	}
}

// Run starts the HTTP server and the request consumer, then blocks until ctx is done
// or an interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.httpServer = xhttp.NewServer([]xhttp.Handler{a.httpHandler}, a.serverOptions()...)

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(ctx); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
		a.l.Info("shutdown signal received")
	case <-ctx.Done():
	}
	return a.shutdown()
}

func (a *App) serverOptions() []xhttp.ServerOption {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(a.cfg.Server.SlowRequest),
		xhttp.WithMetricsPath(a.metricsPath()),
		xhttp.WithLogger(a.l.With(applogger.String("component", "http"))),
	}
	if cors := a.cfg.Server.CORS; !cors.Disabled {
		opts = append(opts, xhttp.WithCORS(middleware.CORSConfig{
			AllowOrigins: cors.AllowOrigins,
			AllowMethods: cors.AllowMethods,
			AllowHeaders: cors.AllowHeaders,
			MaxAge:       cors.MaxAge,
		}))
	}
	return opts
}

func (a *App) metricsPath() string {
	if a.cfg.Metrics.Disabled {
		return ""
	}
	return a.cfg.Metrics.Path
}

// shutdown stops intake first: HTTP, then the consumer. Infrastructure clients are
// closed by the injector cleanup.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	a.l.Info("shutdown complete")
	return firstErr
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
