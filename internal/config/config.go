package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Model provider
	GeminiAPIKey   string
	GeminiModel    string
	EmbeddingModel string
	GeminiRPM      int

	// Vector store
	PineconeAPIKey        string
	PineconeIndex         string
	PineconeControllerURL string
	PineconeIndexHost     string

	// HTTP surface
	AuthKey     string
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxFileSize int64

	// Pipeline tuning
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	EmbedBatchSize int

	// Rate limiting (optional, requires Redis)
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		GeminiRPM:      getEnvInt("GEMINI_RPM", 60),

		PineconeAPIKey:        getEnv("PINECONE_API_KEY", ""),
		PineconeIndex:         getEnv("PINECONE_INDEX", ""),
		PineconeControllerURL: getEnv("PINECONE_CONTROLLER_URL", "https://api.pinecone.io"),
		PineconeIndexHost:     getEnv("PINECONE_INDEX_HOST", ""),

		AuthKey:     getEnv("AUTH_KEY", ""),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 10485760), // 10MB

		ChunkSize:      getEnvInt("CHUNK_SIZE", 250),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 50),
		TopK:           getEnvInt("TOP_K", 7),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 20),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.PineconeAPIKey == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY is required")
	}
	if cfg.PineconeIndex == "" {
		return nil, fmt.Errorf("PINECONE_INDEX is required")
	}
	if cfg.AuthKey == "" {
		return nil, fmt.Errorf("AUTH_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
