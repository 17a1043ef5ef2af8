package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PORTAL_DATABASE_HOST.
const EnvPrefix = "PORTAL"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	DSN      string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CacheConfig selects the report cache
type CacheConfig struct {
	Driver   string        `mapstructure:"driver"`
	TTL      time.Duration `mapstructure:"ttl"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
}

// BenchmarkConfig controls where benchmark prices come from and how often
// they are refreshed
type BenchmarkConfig struct {
	Source        string   `mapstructure:"source"` // api, scrape or none
	BaseURL       string   `mapstructure:"base_url"`
	APIKey        string   `mapstructure:"api_key"`
	RateLimit     int      `mapstructure:"rate_limit"`
	Symbols       []string `mapstructure:"symbols"`
	Default       string   `mapstructure:"default"`
	SyncSpec      string   `mapstructure:"sync_spec"`
	BackfillYears int      `mapstructure:"backfill_years"`
}

// ScraperConfig holds scraper configuration
type ScraperConfig struct {
	Timeout     int    `mapstructure:"timeout"` // seconds per page
	URLTemplate string `mapstructure:"url_template"`
	Headless    bool   `mapstructure:"headless"`
	RowSelector string `mapstructure:"row_selector"`
	DateColumn  int    `mapstructure:"date_column"`
	CloseColumn int    `mapstructure:"close_column"`
}

// Config holds all configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
}

// BuildDSN builds the database connection string unless one was configured
func (c *Config) BuildDSN() {
	if c.Database.DSN != "" {
		return
	}
	c.Database.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.driver must be memory or redis, got %q", c.Cache.Driver)
	}
	switch c.Benchmark.Source {
	case "none":
	case "api":
		if c.Benchmark.BaseURL == "" {
			return errors.New("benchmark.base_url is required for the api source")
		}
	case "scrape":
		if c.Scraper.URLTemplate == "" {
			return errors.New("scraper.url_template is required for the scrape source")
		}
		if c.Scraper.Timeout <= 0 {
			return errors.New("scraper.timeout must be positive")
		}
	default:
		return fmt.Errorf("benchmark.source must be api, scrape or none, got %q", c.Benchmark.Source)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "investorportal")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.dsn", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)

	v.SetDefault("benchmark.source", "none")
	v.SetDefault("benchmark.base_url", "")
	v.SetDefault("benchmark.api_key", "")
	v.SetDefault("benchmark.rate_limit", 5)
	v.SetDefault("benchmark.symbols", []string{})
	v.SetDefault("benchmark.default", "")
	v.SetDefault("benchmark.sync_spec", "0 30 18 * * 1-5")
	v.SetDefault("benchmark.backfill_years", 10)

	v.SetDefault("scraper.timeout", 60)
	v.SetDefault("scraper.url_template", "")
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.row_selector", "table tbody tr")
	v.SetDefault("scraper.date_column", 0)
	v.SetDefault("scraper.close_column", 4)
}

// LoadConfig reads config.yaml from the given directories (the working
// directory when none are given). A missing file is not an error; defaults,
// a .env file and PORTAL_ environment variables still apply.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build the DSN string
	config.BuildDSN()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
