package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DBPath           string
	EmbeddingsAPIURL string
	EmbeddingsAPIKey string
	EmbeddingsModel  string
	WeaviateScheme   string
	WeaviateHost     string
	EmbeddedNats     string
	NatsURL          string
	SeedPath         string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		Port:             getEnv("PORT", "8488", printEnv),
		DBPath:           getEnv("DB_PATH", "./output/sqlite/content.db", printEnv),
		EmbeddingsAPIURL: getEnv("EMBEDDINGS_API_URL", "https://api.openai.com/v1", printEnv),
		EmbeddingsAPIKey: getEnv("EMBEDDINGS_API_KEY", "", printEnv),
		EmbeddingsModel:  getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small", printEnv),
		WeaviateScheme:   getEnv("WEAVIATE_SCHEME", "http", printEnv),
		WeaviateHost:     getEnv("WEAVIATE_HOST", "localhost:51414", printEnv),
		EmbeddedNats:     getEnv("EMBEDDED_NATS", "true", printEnv),
		NatsURL:          getEnv("NATS_URL", "nats://127.0.0.1:4222", printEnv),
		SeedPath:         getEnv("SEED_PATH", "./seed/content.json", printEnv),
	}

	return conf, nil
}
