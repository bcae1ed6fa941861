package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Models    ModelsConfig
	LLM       LLMConfig
	Features  FeaturesConfig
	Blacklist BlacklistConfig
	Log       LogConfig
	Workers   WorkersConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// GetDSN returns the postgres keyword/value DSN, or the sqlite file path
// when the driver is sqlite.
func (d DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type CORSConfig struct {
	AllowedOrigins string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type ModelsConfig struct {
	Dir string
}

type LLMConfig struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	TopP        float64
}

type FeaturesConfig struct {
	WhoisTimeout    time.Duration
	WhoisCacheTTL   time.Duration
	FetchTimeout    time.Duration
	MaxPageTextSize int
}

type BlacklistConfig struct {
	AutoThreshold float64
	ShortCircuit  bool
}

type LogConfig struct {
	Level  string
	Format string
}

// WorkersConfig is read by cmd/aggregator and cmd/feedcollector.
type WorkersConfig struct {
	MetricsAddr       string
	AggregateInterval time.Duration
	AggregateLookback int
	MQTTURL           string
	FeedTopic         string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	serverPort, err := getIntEnv("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtExpiry, err := getIntEnv("JWT_EXPIRY_HOURS", 24)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	rps, err := getFloatEnv("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := getIntEnv("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	llmTimeout, err := getDurationEnv("LLM_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}

	temperature, err := getFloatEnv("LLM_TEMPERATURE", 0.1)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
	}

	topP, err := getFloatEnv("LLM_TOP_P", 0.9)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_TOP_P: %w", err)
	}

	whoisTimeout, err := getDurationEnv("WHOIS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WHOIS_TIMEOUT: %w", err)
	}

	whoisTTL, err := getDurationEnv("WHOIS_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid WHOIS_CACHE_TTL: %w", err)
	}

	fetchTimeout, err := getDurationEnv("FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}

	maxPageText, err := getIntEnv("MAX_PAGE_TEXT", 5000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_PAGE_TEXT: %w", err)
	}

	autoThreshold, err := getFloatEnv("BLACKLIST_AUTO_THRESHOLD", 0.95)
	if err != nil {
		return nil, fmt.Errorf("invalid BLACKLIST_AUTO_THRESHOLD: %w", err)
	}

	shortCircuit, err := getBoolEnv("BLACKLIST_SHORT_CIRCUIT", true)
	if err != nil {
		return nil, fmt.Errorf("invalid BLACKLIST_SHORT_CIRCUIT: %w", err)
	}

	aggregateSec, err := getIntEnv("AGGREGATE_INTERVAL_SEC", 300)
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_INTERVAL_SEC: %w", err)
	}

	lookbackDays, err := getIntEnv("AGGREGATE_LOOKBACK_DAYS", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_LOOKBACK_DAYS: %w", err)
	}
	if aggregateSec <= 0 || lookbackDays <= 0 {
		return nil, errors.New("AGGREGATE_INTERVAL_SEC and AGGREGATE_LOOKBACK_DAYS must be positive")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "phishguard"),
			Password: getEnv("DB_PASSWORD", "phishguard_dev_password"),
			Name:     getEnv("DB_NAME", "phishguard"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "phishing_detection.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "phishguard-dev-secret"),
			ExpiryHours: jwtExpiry,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		RateLimit: RateLimitConfig{
			RPS:   rps,
			Burst: burst,
		},
		Models: ModelsConfig{
			Dir: getEnv("MODELS_DIR", "artifacts"),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:       getEnv("LLM_MODEL", "llama2"),
			Timeout:     llmTimeout,
			Temperature: temperature,
			TopP:        topP,
		},
		Features: FeaturesConfig{
			WhoisTimeout:    whoisTimeout,
			WhoisCacheTTL:   whoisTTL,
			FetchTimeout:    fetchTimeout,
			MaxPageTextSize: maxPageText,
		},
		Blacklist: BlacklistConfig{
			AutoThreshold: autoThreshold,
			ShortCircuit:  shortCircuit,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Workers: WorkersConfig{
			MetricsAddr:       getEnv("METRICS_ADDR", ":9100"),
			AggregateInterval: time.Duration(aggregateSec) * time.Second,
			AggregateLookback: lookbackDays,
			MQTTURL:           getEnv("MQTT_URL", "tcp://localhost:1883"),
			FeedTopic:         getEnv("FEED_TOPIC", "phishguard/feeds/+"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(value, 64)
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
