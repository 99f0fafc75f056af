package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Log         LogConfig        `yaml:"log"`
	Server      ServerConfig     `yaml:"server"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Fred        FredConfig       `yaml:"fred"`
	Macro       MacroConfig      `yaml:"macro"`
	Market      MarketConfig     `yaml:"market"`
	Analysis    AnalysisConfig   `yaml:"analysis"`
	Cache       CacheConfig      `yaml:"cache"`
	Redis       RedisConfig      `yaml:"redis"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	SlowRequest     time.Duration `yaml:"slow_request" default:"5s"`
	CORS            CORSConfig    `yaml:"cors"`
}

// CORSConfig is the browser cross-origin policy for the HTTP API.
type CORSConfig struct {
	Disabled     bool     `yaml:"disabled"`
	AllowOrigins []string `yaml:"allow_origins" default:"[\"*\"]" validate:"dive,required"`
	AllowMethods []string `yaml:"allow_methods" default:"[\"GET\",\"POST\",\"DELETE\",\"OPTIONS\"]"`
	AllowHeaders []string `yaml:"allow_headers" default:"[\"Origin\",\"Content-Type\",\"Accept\"]"`
	MaxAge       int      `yaml:"max_age" default:"600" validate:"gte=0"`
}

type MetricsConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path" default:"/metrics"`
}

// FredConfig holds the macro-data provider credentials and client tuning.
type FredConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url" default:"https://api.stlouisfed.org/fred" validate:"url"`
	Timeout    time.Duration `yaml:"timeout" default:"15s"`
	Retries    int           `yaml:"retries" default:"2" validate:"gte=0,lte=10"`
	RatePerSec float64       `yaml:"rate_per_sec" default:"2" validate:"gt=0"`
	Burst      int           `yaml:"burst" default:"4" validate:"gt=0"`
}

type MacroConfig struct {
	Source string `yaml:"source" default:"fred" validate:"oneof=fred clickhouse"`
}

type MarketConfig struct {
	Source      string        `yaml:"source" default:"yahoo" validate:"oneof=yahoo clickhouse"`
	IndexTicker string        `yaml:"index_ticker" default:"SPY" validate:"required"`
	RatePerSec  float64       `yaml:"rate_per_sec" default:"2" validate:"gt=0"`
	Burst       int           `yaml:"burst" default:"4" validate:"gt=0"`
	Timeout     time.Duration `yaml:"timeout" default:"20s"`
}

type AnalysisConfig struct {
	LookbackDays  int `yaml:"lookback_days" default:"365" validate:"gte=90,lte=3650"`
	BetaWindow    int `yaml:"beta_window" default:"252" validate:"gte=30"`
	MinBetaPoints int `yaml:"min_beta_points" default:"30" validate:"gte=2"`
	BatchWorkers  int `yaml:"batch_workers" default:"4" validate:"gte=1,lte=64"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered none"`
	SeriesTTL     time.Duration `yaml:"series_ttl" default:"24h"`
	PriceTTL      time.Duration `yaml:"price_ttl" default:"24h"`
	BetaTTL       time.Duration `yaml:"beta_ttl" default:"168h"`
	MemoryMaxSize int           `yaml:"memory_max_size" default:"1000" validate:"gt=0"`
}

type RedisConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"factorimpact"`
	PoolSize int    `yaml:"pool_size" default:"10"`
}

type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers"`
	ResultsTopic  string   `yaml:"results_topic" default:"factor.results"`
	RequestsTopic string   `yaml:"requests_topic" default:"factor.requests"`
	RequiredAcks  int      `yaml:"required_acks" default:"-1"`
	Compression   string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	Producer      struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"100ms"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"producer"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" default:"factor-impact"`
		Workers    int           `yaml:"workers" default:"2"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		DLQTopic   string        `yaml:"dlq_topic"`
	} `yaml:"consumer"`
}

type ClickHouseConfig struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"factorimpact"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
}

var validate = validator.New()

// Default returns a configuration populated with defaults only.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(b)
}

// decode fills defaults without validating.
func decode(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML, overrides it with environment variables and only
// then validates. A .env file in the working directory is read first when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var (
		c   *Config
		err error
	)
	if path == "" {
		c = Default()
	} else if c, err = read(path); err != nil {
		return nil, err
	}

	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Fred.APIKey = v
	}
	if v := os.Getenv("MARKET_INDEX"); v != "" {
		c.Market.IndexTicker = strings.ToUpper(v)
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if p, err := strconv.Atoi(port); ok && err == nil {
			c.Redis.Port = p
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		c.Kafka.Enabled, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Macro.Source == "fred" && c.Fred.APIKey == "" {
		return fmt.Errorf("fred.api_key is required when macro.source is 'fred'")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Analysis.MinBetaPoints > c.Analysis.BetaWindow {
		return fmt.Errorf("analysis.min_beta_points (%d) exceeds analysis.beta_window (%d)",
			c.Analysis.MinBetaPoints, c.Analysis.BetaWindow)
	}
	if c.Cache.SeriesTTL <= 0 || c.Cache.PriceTTL <= 0 || c.Cache.BetaTTL <= 0 {
		return fmt.Errorf("cache ttls must be positive")
	}
	return nil
}

// NeedsClickHouse reports whether any provider reads from ClickHouse.
func (c *Config) NeedsClickHouse() bool {
	return c.Macro.Source == "clickhouse" || c.Market.Source == "clickhouse"
}
