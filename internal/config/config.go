package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Host string
	Port int
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	PoolSize     int
	MaxIdleConns int
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

type LokiConfig struct {
	URL           string
	Job           string
	Enabled       bool
	BatchSize     int
	FlushInterval time.Duration
	PushTimeout   time.Duration
}

type TempoConfig struct {
	Endpoint string
	Enabled  bool
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	StatsEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type CORSConfig struct {
	AllowOrigins     []string
	AllowCredentials bool
}

type AppConfig struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Loki        LokiConfig
	Tempo       TempoConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Environment string
	LogLevel    string
	Debug       bool
}

// Load reads the full configuration from the environment. The database
// password may only be empty in the development environment.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8000),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DATABASE_HOST", "localhost"),
			Port:         getEnvAsInt("DATABASE_PORT", 5432),
			User:         getEnv("DATABASE_USER", "postgres"),
			Password:     getEnv("DATABASE_PASSWORD", ""),
			Name:         getEnv("DATABASE_NAME", "produto_db"),
			PoolSize:     getEnvAsInt("DATABASE_POOL_SIZE", 20),
			MaxIdleConns: getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 10),
		},
		Loki: LokiConfig{
			URL:           getEnv("LOKI_URL", "http://localhost:3100"),
			Job:           getEnv("LOKI_JOB", "MONITORAMENTO_PRODUTO"),
			Enabled:       getEnvAsBool("LOKI_ENABLED", true),
			BatchSize:     getEnvAsInt("LOKI_BATCH_SIZE", 10),
			FlushInterval: getEnvAsDuration("LOKI_FLUSH_INTERVAL", 5*time.Second),
			PushTimeout:   getEnvAsDuration("LOKI_PUSH_TIMEOUT", 5*time.Second),
		},
		Tempo: TempoConfig{
			Endpoint: getEnv("TEMPO_ENDPOINT", "localhost:4317"),
			Enabled:  getEnvAsBool("TEMPO_ENABLED", true),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			RPS:           getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:         getEnvAsInt("RATE_LIMIT_BURST", 20),
			StatsEnabled:  getEnvAsBool("RATE_LIMIT_STATS_ENABLED", false),
			RedisAddr:     getEnv("RATE_LIMIT_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("RATE_LIMIT_REDIS_DB", 0),
		},
		CORS: CORSConfig{
			AllowOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
			AllowCredentials: getEnvAsBool("CORS_CREDENTIALS", true),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Debug:       getEnvAsBool("DEBUG", false),
	}

	if cfg.Database.Password == "" && cfg.Environment != "development" {
		return AppConfig{}, fmt.Errorf("DATABASE_PASSWORD is required in environment %q", cfg.Environment)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.Atoi(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseFloat(value, 64); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if result, err := strconv.ParseBool(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if result, err := time.ParseDuration(value); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
