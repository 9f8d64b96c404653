// Package config loads runtime configuration from an optional YAML file
// with environment variable overrides. Environment always wins so a
// deployment can keep secrets out of the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Providers ProvidersConfig `yaml:"providers"`
	Poller    PollerConfig    `yaml:"poller"`
	Cache     CacheConfig     `yaml:"cache"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type ProvidersConfig struct {
	// Order lists provider names by priority. Known names are
	// "football-data" and "flashscore".
	Order []string `yaml:"order"`

	FootballData FootballDataConfig `yaml:"football_data"`
	Flashscore   FlashscoreConfig   `yaml:"flashscore"`
}

type FootballDataConfig struct {
	BaseURL string   `yaml:"base_url"`
	APIKeys []string `yaml:"api_keys"`
}

type FlashscoreConfig struct {
	BaseURL string   `yaml:"base_url"`
	Actor   string   `yaml:"actor"`
	APIKeys []string `yaml:"api_keys"`
}

type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type CacheConfig struct {
	LiveTTL           time.Duration `yaml:"live_ttl"`
	ScheduleTTL       time.Duration `yaml:"schedule_ttl"`
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown"`
	ScheduleLookahead time.Duration `yaml:"schedule_lookahead"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
}

// maxRotatedKeys bounds the APIFY_API_KEY_N scan.
const maxRotatedKeys = 10

// Load reads the YAML file at configPath (skipped if empty or missing),
// applies environment overrides, then fills defaults.
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyEnv() {
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Postgres.DSN = getEnv("DATABASE_URL", c.Postgres.DSN)
	c.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", c.Telegram.BotToken)
	c.Poller.Interval = getEnvDuration("POLL_INTERVAL", c.Poller.Interval)

	if key := os.Getenv("FOOTBALL_DATA_API_KEY"); key != "" {
		c.Providers.FootballData.APIKeys = []string{key}
	}
	if keys := rotatedKeys("APIFY_API_KEY"); len(keys) > 0 {
		c.Providers.Flashscore.APIKeys = keys
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if len(c.Providers.Order) == 0 {
		c.Providers.Order = []string{"football-data", "flashscore"}
	}
	if c.Poller.Interval <= 0 {
		c.Poller.Interval = 60 * time.Second
	}
	if c.Cache.LiveTTL <= 0 {
		c.Cache.LiveTTL = 30 * time.Second
	}
	if c.Cache.ScheduleTTL <= 0 {
		c.Cache.ScheduleTTL = 90 * time.Second
	}
	if c.Cache.RateLimitCooldown <= 0 {
		c.Cache.RateLimitCooldown = 120 * time.Second
	}
	if c.Cache.ScheduleLookahead <= 0 {
		c.Cache.ScheduleLookahead = 48 * time.Hour
	}
}

// rotatedKeys collects PREFIX_1..PREFIX_10, falling back to bare PREFIX.
// Gaps in the numbering are skipped, not terminal.
func rotatedKeys(prefix string) []string {
	var keys []string
	for i := 1; i <= maxRotatedKeys; i++ {
		if v := os.Getenv(fmt.Sprintf("%s_%d", prefix, i)); v != "" {
			keys = append(keys, v)
		}
	}
	if len(keys) == 0 {
		if v := os.Getenv(prefix); v != "" {
			keys = append(keys, v)
		}
	}
	return keys
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
