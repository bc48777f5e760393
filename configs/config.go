package configs

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Key prefix namespacing the bot's entries in a shared Redis
	KeyPrefix string
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	// CallTimeout bounds each cache round trip against Redis
	CallTimeout time.Duration
}

type CacheConfig struct {
	// Dir holds the durable tier's database file
	Dir        string
	SQLitePath string
	// DefaultTTL applies to writes that do not specify their own TTL
	DefaultTTL      time.Duration
	BackfillTimeout time.Duration
	// MemorySweepInterval drives the in-process tier's expired-entry sweep
	MemorySweepInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	UserInterval    time.Duration
	ChannelInterval time.Duration
	PruneInterval   time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "redis"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			KeyPrefix:    getEnv("REDIS_KEY_PREFIX", "summarybot"),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			CallTimeout:  getDurationEnv("REDIS_CALL_TIMEOUT", 2*time.Second),
		},
		Cache: CacheConfig{
			Dir:                 getEnv("CACHE_DIR", "cache"),
			DefaultTTL:          time.Duration(getIntEnv("CACHE_EXPIRATION_HOURS", 24)) * time.Hour,
			BackfillTimeout:     getDurationEnv("CACHE_BACKFILL_TIMEOUT", 2*time.Second),
			MemorySweepInterval: getDurationEnv("CACHE_MEMORY_SWEEP_INTERVAL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			UserInterval:    time.Duration(getIntEnv("RATE_LIMIT_USER_MINUTES", 5)) * time.Minute,
			ChannelInterval: time.Duration(getIntEnv("RATE_LIMIT_CHANNEL_MINUTES", 2)) * time.Minute,
			PruneInterval:   getDurationEnv("RATE_LIMIT_PRUNE_INTERVAL", time.Hour),
		},
	}

	cfg.Cache.SQLitePath = filepath.Join(cfg.Cache.Dir, "summaries.db")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
