package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"signalbot/internal/md"
)

type Source string

const (
	SourceRandom Source = "random"
	SourceStatic Source = "static"
	SourceStream Source = "stream"
)

type Config struct {
	Strategy      string        `yaml:"strategy"`
	Source        Source        `yaml:"source"`
	Symbol        string        `yaml:"symbol"`
	Feed          string        `yaml:"feed"`
	Prices        []float64     `yaml:"prices"`
	WindowSize    int           `yaml:"window_size"`
	Iterations    int           `yaml:"iterations"`
	Interval      time.Duration `yaml:"interval"`
	MinPrice      float64       `yaml:"min_price"`
	MaxPrice      float64       `yaml:"max_price"`
	Seed          int64         `yaml:"seed"`
	DecisionsPath string        `yaml:"decisions_path"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	LogLevel      string        `yaml:"log_level"`
	APIKey        string        `yaml:"-"`
	APISecret     string        `yaml:"-"`
}

func Defaults() Config {
	return Config{
		Source:        SourceRandom,
		Symbol:        "SIM",
		Feed:          "iex",
		WindowSize:    20,
		Iterations:    30,
		Interval:      500 * time.Millisecond,
		MinPrice:      0,
		MaxPrice:      100,
		DecisionsPath: "decisions.ndjson",
		LogLevel:      "info",
	}
}

// Loader registers CLI flags and resolves the final Config with precedence
// flags > environment > YAML file > defaults.
type Loader struct {
	fs         *pflag.FlagSet
	cli        Config
	source     string
	prices     string
	configPath string
	envPath    string
}

func NewLoader(fs *pflag.FlagSet) *Loader {
	l := &Loader{fs: fs}
	d := Defaults()
	fs.StringVar(&l.configPath, "config", "", "path to YAML config file")
	fs.StringVar(&l.envPath, "env-file", ".env", "dotenv file loaded if present")
	fs.StringVarP(&l.cli.Strategy, "strategy", "s", "", "strategy name (prompted when empty)")
	fs.StringVar(&l.source, "source", string(d.Source), "price source: random, static or stream")
	fs.StringVar(&l.cli.Symbol, "symbol", d.Symbol, "symbol attached to prices")
	fs.StringVar(&l.cli.Feed, "feed", d.Feed, "market data feed for stream source: iex, sip or test")
	fs.StringVar(&l.prices, "prices", "", "comma separated prices for the static source")
	fs.IntVar(&l.cli.WindowSize, "window-size", d.WindowSize, "rolling window capacity")
	fs.IntVar(&l.cli.Iterations, "iterations", d.Iterations, "number of random prices to generate")
	fs.DurationVar(&l.cli.Interval, "interval", d.Interval, "delay between prices")
	fs.Float64Var(&l.cli.MinPrice, "min-price", d.MinPrice, "lower bound for random prices")
	fs.Float64Var(&l.cli.MaxPrice, "max-price", d.MaxPrice, "upper bound for random prices")
	fs.Int64Var(&l.cli.Seed, "seed", 0, "random source seed (0 uses the clock)")
	fs.StringVar(&l.cli.DecisionsPath, "decisions-path", d.DecisionsPath, "path to decisions log, empty disables it")
	fs.StringVar(&l.cli.MetricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint, empty disables it")
	fs.StringVar(&l.cli.LogLevel, "log-level", d.LogLevel, "log level: debug, info, warn or error")
	return l
}

func (l *Loader) Load() (Config, error) {
	if err := loadDotEnvIfPresent(l.envPath); err != nil {
		return Config{}, err
	}

	cfg := Defaults()
	if l.configPath != "" {
		if err := loadFile(l.configPath, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	if err := l.applyFlags(&cfg); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (l *Loader) applyFlags(cfg *Config) error {
	var err error
	l.fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "strategy":
			cfg.Strategy = l.cli.Strategy
		case "source":
			cfg.Source = Source(l.source)
		case "symbol":
			cfg.Symbol = l.cli.Symbol
		case "feed":
			cfg.Feed = l.cli.Feed
		case "prices":
			var prices []float64
			if prices, err = md.ParsePrices(l.prices); err == nil {
				cfg.Prices = prices
			}
		case "window-size":
			cfg.WindowSize = l.cli.WindowSize
		case "iterations":
			cfg.Iterations = l.cli.Iterations
		case "interval":
			cfg.Interval = l.cli.Interval
		case "min-price":
			cfg.MinPrice = l.cli.MinPrice
		case "max-price":
			cfg.MaxPrice = l.cli.MaxPrice
		case "seed":
			cfg.Seed = l.cli.Seed
		case "decisions-path":
			cfg.DecisionsPath = l.cli.DecisionsPath
		case "metrics-addr":
			cfg.MetricsAddr = l.cli.MetricsAddr
		case "log-level":
			cfg.LogLevel = l.cli.LogLevel
		}
	})
	if err != nil {
		return fmt.Errorf("--prices: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOT_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("BOT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BOT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	cfg.APIKey = os.Getenv("APCA_API_KEY_ID")
	cfg.APISecret = os.Getenv("APCA_API_SECRET_KEY")
}

// loadDotEnvIfPresent never overrides variables already in the environment.
func loadDotEnvIfPresent(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func validate(cfg Config) error {
	switch cfg.Source {
	case SourceRandom:
		if cfg.Iterations <= 0 {
			return fmt.Errorf("iterations must be > 0")
		}
		if cfg.MaxPrice <= cfg.MinPrice {
			return fmt.Errorf("max-price must be > min-price")
		}
	case SourceStatic:
		if len(cfg.Prices) == 0 {
			return fmt.Errorf("static source requires --prices")
		}
		for i, price := range cfg.Prices {
			if math.IsNaN(price) || math.IsInf(price, 0) {
				return fmt.Errorf("prices[%d] must be finite, got %v", i, price)
			}
		}
	case SourceStream:
		if cfg.APIKey == "" || cfg.APISecret == "" {
			return fmt.Errorf("APCA_API_KEY_ID and APCA_API_SECRET_KEY are required for the stream source")
		}
		switch cfg.Feed {
		case "iex", "sip", "test":
		default:
			return fmt.Errorf("invalid feed: %s", cfg.Feed)
		}
	default:
		return fmt.Errorf("invalid source: %s", cfg.Source)
	}
	if strings.TrimSpace(cfg.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("interval must be >= 0")
	}
	return nil
}
