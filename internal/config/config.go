package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR"`
	Timezone    string `yaml:"timezone" env-default:"UTC"`
	HTTPServer  `yaml:"http_server"`
	Recurrence  Recurrence `yaml:"recurrence"`
	RateLimit   RateLimit  `yaml:"rate_limit"`
	Cache       Cache      `yaml:"cache"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Recurrence struct {
	MaxSteps         int           `yaml:"max_steps" env-default:"5000"`
	SyncTrailingDays int           `yaml:"sync_trailing_days" env-default:"7"`
	SyncLeadingDays  int           `yaml:"sync_leading_days" env-default:"7"`
	SyncCron         string        `yaml:"sync_cron" env-default:"@every 15m"`
	SyncConcurrency  int           `yaml:"sync_concurrency" env-default:"4"`
	LockTTL          time.Duration `yaml:"lock_ttl" env-default:"10s"`
	AutoNote         string        `yaml:"auto_note" env-default:"auto-generated from recurrence"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"10"`
	Burst int     `yaml:"burst" env-default:"20"`
}

type Cache struct {
	TTL             time.Duration `yaml:"ttl" env-default:"5m"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env-default:"10m"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("%s: timezone %q: %w", op, cfg.Timezone, err)
	}

	return &cfg, nil
}

// Location is the timezone recurrence anchors are interpreted in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
