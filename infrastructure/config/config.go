package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultServerPort  = "9999"
	defaultWorkerCount = 10
	defaultMaxDeliver  = 3

	defaultFeeRate  = 0.05
	fallbackFeeRate = 0.15
)

// Processor is the static per-deployment description of one backend
// payment processor.
type Processor struct {
	Name    string
	URL     string
	FeeRate float64
}

type Config struct {
	ServerPort string

	DatabaseURL string
	RedisAddr   string
	NatsURL     string

	DefaultProcessor  Processor
	FallbackProcessor Processor

	WorkerCount    int
	MaxDeliver     int
	RequestTimeout time.Duration

	HealthCacheTTL     time.Duration
	HealthRateLimit    time.Duration
	QueueDedupeWindow  time.Duration
	ConsumerAckWait    time.Duration
	RetryBackoffBase   time.Duration
	RetryBackoffJitter time.Duration
}

// Load reads the whole configuration from the environment once. The
// returned struct is shared read-only by every component.
func Load() (*Config, error) {
	defaultURL := os.Getenv("PROCESSOR_DEFAULT_URL")
	fallbackURL := os.Getenv("PROCESSOR_FALLBACK_URL")
	if defaultURL == "" || fallbackURL == "" {
		return nil, errors.New("PROCESSOR_DEFAULT_URL and PROCESSOR_FALLBACK_URL must be set")
	}

	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return nil, err
	}

	redisAddr := os.Getenv("REDIS_HOST")
	if redisAddr == "" {
		return nil, errors.New("REDIS_HOST must be set")
	}

	cfg := &Config{
		ServerPort:  envOr("SERVER_PORT", defaultServerPort),
		DatabaseURL: databaseURL,
		RedisAddr:   redisAddr,
		NatsURL:     os.Getenv("NATS_URL"),

		DefaultProcessor: Processor{
			Name:    "default",
			URL:     defaultURL,
			FeeRate: envFloatOr("PROCESSOR_DEFAULT_FEE", defaultFeeRate),
		},
		FallbackProcessor: Processor{
			Name:    "fallback",
			URL:     fallbackURL,
			FeeRate: envFloatOr("PROCESSOR_FALLBACK_FEE", fallbackFeeRate),
		},

		WorkerCount:    envIntOr("WORKER_COUNT", defaultWorkerCount),
		MaxDeliver:     envIntOr("QUEUE_MAX_DELIVER", defaultMaxDeliver),
		RequestTimeout: time.Second,

		HealthCacheTTL:     300 * time.Second,
		HealthRateLimit:    5 * time.Second,
		QueueDedupeWindow:  2 * time.Minute,
		ConsumerAckWait:    30 * time.Second,
		RetryBackoffBase:   time.Second,
		RetryBackoffJitter: 250 * time.Millisecond,
	}
	return cfg, nil
}

func databaseURLFromEnv() (string, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}

	var (
		user     = os.Getenv("DATABASE_USER")
		password = os.Getenv("DATABASE_PASSWORD")
		dbname   = os.Getenv("DATABASE_NAME")
		host     = os.Getenv("DATABASE_HOSTNAME")
		port     = os.Getenv("DATABASE_PORT")
	)

	if user == "" || password == "" || dbname == "" || host == "" || port == "" {
		return "", errors.New("either DATABASE_URL or all DATABASE_* variables must be set")
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
	}
	return fallback
}
