// config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DB holds the Postgres connection settings for the user record store.
type DB struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MinIdleConns int
	ConnLifetime time.Duration
}

// DSN renders the settings as a pgx/stdlib connection string.
func (d DB) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Storage holds the S3-compatible object store settings for content
// folders.
type Storage struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

type Config struct {
	Telegram struct {
		Token          string
		Moderators     []int64
		SupportContact string
	}
	DB    DB
	Redis struct {
		Addr         string
		Password     string
		DB           int
		HistoryLimit int
		HistoryTTL   time.Duration
	}
	Storage Storage
	AI      struct {
		APIKey string
		Model  string
	}
	Referral struct {
		Reward float64
	}
	Server struct {
		Port string
	}
	// Catalog overrides compiled-in folder ids, keyed the same way
	// (e.g. "natural_physics_quizzes").
	Catalog         map[string]string
	ShutdownTimeout time.Duration
}

// Load loads the configuration from a config file with environment
// variable overrides, falling back to environment variables only when no
// config file is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.acebot")

	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("AI.Model", "gpt-4o-mini")
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MinIdleConns", 5)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)
	v.SetDefault("Redis.HistoryLimit", 10)
	v.SetDefault("Redis.HistoryTTL", time.Hour)
	v.SetDefault("Storage.Region", "us-east-1")
	v.SetDefault("Storage.LinkTTL", 24*time.Hour)
	v.SetDefault("Referral.Reward", 50.0)
	v.SetDefault("Telegram.SupportContact", "support@acebot.com")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fromEnv(), nil
	}

	// Expand ${ENV_VAR} references in config file values.
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// fromEnv builds a minimal configuration when no config file exists.
func fromEnv() *Config {
	cfg := &Config{}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	cfg.Telegram.Moderators = parseIDList(os.Getenv("MODERATOR_IDS"))
	cfg.Telegram.SupportContact = getEnvOr("SUPPORT_CONTACT", "support@acebot.com")

	cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
	cfg.DB.Port = getEnvOr("DB_PORT", "5432")
	cfg.DB.User = getEnvOr("DB_USER", "postgres")
	cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnvOr("DB_NAME", "acebot")
	cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
	cfg.DB.MaxOpenConns = 20
	cfg.DB.MinIdleConns = 5
	cfg.DB.ConnLifetime = 5 * time.Minute

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	cfg.Redis.HistoryLimit = 10
	cfg.Redis.HistoryTTL = time.Hour

	cfg.Storage.Endpoint = os.Getenv("STORAGE_ENDPOINT")
	cfg.Storage.Region = getEnvOr("STORAGE_REGION", "us-east-1")
	cfg.Storage.Bucket = os.Getenv("STORAGE_BUCKET")
	cfg.Storage.AccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("STORAGE_SECRET_KEY")
	cfg.Storage.LinkTTL = 24 * time.Hour

	cfg.AI.APIKey = os.Getenv("AI_API_KEY")
	cfg.AI.Model = getEnvOr("AI_MODEL", "gpt-4o-mini")

	cfg.Referral.Reward = 50.0
	cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
	cfg.ShutdownTimeout = 10 * time.Second

	return cfg
}

// parseIDList parses a comma-separated list of Telegram user ids.
func parseIDList(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
