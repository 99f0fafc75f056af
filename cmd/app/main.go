package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/di"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s macro=%s market=%s cache=%s kafka=%t",
		cfg.Environment, cfg.Macro.Source, cfg.Market.Source, cfg.Cache.Backend, cfg.Kafka.Enabled)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
