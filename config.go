package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kylycht/fxpad/model"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort string         `yaml:"httpPort"`
	LogLevel string         `yaml:"logLevel"`
	Pretty   bool           `yaml:"pretty"` // human readable console logs
	Workers  int64          `yaml:"workers"`
	Storage  StorageConfig  `yaml:"storage"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Rates    RatesConfig    `yaml:"rates"`
}

type StorageConfig struct {
	Backend       string `yaml:"backend"` // file, postgres or redis
	Dir           string `yaml:"dir"`
	DBUsername    string `yaml:"dbUsername"`
	DBPassword    string `yaml:"dbPassword"`
	DBPort        string `yaml:"dbPort"`
	DBHost        string `yaml:"dbHost"`
	DBName        string `yaml:"dbName"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	RedisPrefix   string `yaml:"redisPrefix"`
}

type ExchangeConfig struct {
	BaseURL           string        `yaml:"baseURL"`
	APIKey            string        `yaml:"apiKey"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	Retries           *int          `yaml:"retries"` // unset means 2, 0 disables retries
	Timeout           time.Duration `yaml:"timeout"`
}

type RatesConfig struct {
	MaxAge          time.Duration `yaml:"maxAge"`
	RefreshInterval time.Duration `yaml:"refreshInterval"` // 0 disables periodic refresh
}

const defaultRetries = 2

const (
	backendFile     = "file"
	backendPostgres = "postgres"
	backendRedis    = "redis"
)

// loadConfig reads the YAML file at path, an empty path yields the defaults
func loadConfig(path string) (Config, error) {
	cfg := Config{}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("unable to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("unable to parse configuration file: %w", err)
		}
	}

	cfg = cfg.withDefaults()
	return cfg, cfg.validate()
}

func (c Config) withDefaults() Config {
	if c.HTTPPort == "" {
		c.HTTPPort = ":3000"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = backendFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaultDataDir()
	}
	if c.Storage.DBPort == "" {
		c.Storage.DBPort = "5432"
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}
	if c.Storage.RedisPrefix == "" {
		c.Storage.RedisPrefix = "fxpad:"
	}
	if c.Exchange.Retries == nil {
		retries := defaultRetries
		c.Exchange.Retries = &retries
	}
	if c.Rates.MaxAge <= 0 {
		c.Rates.MaxAge = model.DefaultMaxAge
	}
	return c
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case backendFile, backendPostgres, backendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Rates.RefreshInterval < 0 {
		return fmt.Errorf("negative refresh interval %s", c.Rates.RefreshInterval)
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + string(os.PathSeparator) + "fxpad"
	}
	return ".fxpad"
}
