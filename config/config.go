package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMongoURI  = "mongodb://127.0.0.1:27017/db_fw2"
	defaultMongoDB   = "db_fw2"
	defaultSizeLimit = 50 << 20 // 50 MiB
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port     string
	LogLevel string

	DBDriver    string
	MongoURI    string
	MongoDB     string
	PostgresDSN string

	UploadDir       string
	UploadMaxBytes  int64
	BodyLimitBytes  int64
	UploadRate      float64
	UploadBurst     int
	BackupDir       string
	BackupRetention time.Duration

	RedisAddr string
	RedisTTL  time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Invalid numbers or durations are reported as errors.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:        env("PORT", "8080"),
		LogLevel:    env("LOG_LEVEL", "info"),
		DBDriver:    strings.ToLower(env("DB_DRIVER", "mongo")),
		MongoURI:    env("DB_URI", defaultMongoURI),
		PostgresDSN: postgresDSN(getenv),
		UploadDir:   env("UPLOAD_DIR", "uploads"),
		BackupDir:   env("UPLOAD_BACKUP_DIR", ""),
		RedisAddr:   env("REDIS_ADDR", ""),
		KafkaTopic:  env("KAFKA_TOPIC", "cart-events"),
	}
	cfg.MongoDB = env("DB_NAME", mongoDatabase(cfg.MongoURI))

	if brokers := env("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var err error
	if cfg.UploadMaxBytes, err = parseInt64(env("UPLOAD_MAX_BYTES", ""), defaultSizeLimit); err != nil {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES: %w", err)
	}
	if cfg.BodyLimitBytes, err = parseInt64(env("BODY_LIMIT_BYTES", ""), defaultSizeLimit); err != nil {
		return nil, fmt.Errorf("BODY_LIMIT_BYTES: %w", err)
	}
	if cfg.UploadRate, err = strconv.ParseFloat(env("UPLOAD_RATE_PER_SEC", "2"), 64); err != nil {
		return nil, fmt.Errorf("UPLOAD_RATE_PER_SEC: %w", err)
	}
	if cfg.UploadBurst, err = strconv.Atoi(env("UPLOAD_BURST", "5")); err != nil {
		return nil, fmt.Errorf("UPLOAD_BURST: %w", err)
	}
	if cfg.BackupRetention, err = time.ParseDuration(env("UPLOAD_BACKUP_RETENTION", "96h")); err != nil {
		return nil, fmt.Errorf("UPLOAD_BACKUP_RETENTION: %w", err)
	}
	if cfg.RedisTTL, err = time.ParseDuration(env("REDIS_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("REDIS_TTL: %w", err)
	}

	switch cfg.DBDriver {
	case "mongo", "postgres", "memory":
	default:
		return nil, fmt.Errorf("DB_DRIVER: unknown driver %q", cfg.DBDriver)
	}
	return cfg, nil
}

// postgresDSN follows the DATABASE_URL first, DB_* parts second convention.
func postgresDSN(getenv func(string) string) string {
	if databaseURL := getenv("DATABASE_URL"); databaseURL != "" {
		return databaseURL
	}
	if getenv("DB_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getenv("DB_HOST"), getenv("DB_USER"), getenv("DB_PASSWORD"), getenv("DB_NAME"), getenv("DB_PORT"),
	)
}

func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDB
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDB
}

func parseInt64(v string, fallback int64) (int64, error) {
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
