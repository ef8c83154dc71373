package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	MaxTextLength  int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	KafkaInputTopic  string
	KafkaOutputTopic string
	KafkaDLQTopic    string

	// Engine
	ConceptsPath  string
	RulesPath     string
	NegationScope string

	// Optional collaborators
	CacheEnabled     bool
	CacheTTL         time.Duration
	HistoryEnabled   bool
	HistoryRetention time.Duration
	KafkaEnabled     bool

	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads configuration from the environment, after applying an optional
// .env file (ENV_FILE, default ".env"). Variables already set take precedence.
func Load() *Config {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8085"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 1024*1024)),
		MaxTextLength:  getIntEnv("MAX_TEXT_LENGTH", 10000),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "mediaid"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "mediaid"),
		PostgresDB:       getEnv("POSTGRES_DB", "mediaid"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "symptom-service"),
		KafkaInputTopic:  getEnv("KAFKA_INPUT_TOPIC", "symptom-text"),
		KafkaOutputTopic: getEnv("KAFKA_OUTPUT_TOPIC", "symptoms-detected"),
		KafkaDLQTopic:    getEnv("KAFKA_DLQ_TOPIC", ""),

		ConceptsPath:  getEnv("CONCEPTS_PATH", ""),
		RulesPath:     getEnv("RULES_PATH", ""),
		NegationScope: getEnv("NEGATION_SCOPE", ""),

		CacheEnabled:     getBoolEnv("CACHE_ENABLED", false),
		CacheTTL:         getDuration("CACHE_TTL", 10*time.Minute),
		HistoryEnabled:   getBoolEnv("HISTORY_ENABLED", false),
		HistoryRetention: getDuration("HISTORY_RETENTION", 30*24*time.Hour),
		KafkaEnabled:     getBoolEnv("KAFKA_ENABLED", false),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
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

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
