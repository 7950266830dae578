package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Dataset DatasetConfig
	Chat    ChatConfig
	Logging LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// DatasetConfig holds dataset source configuration
type DatasetConfig struct {
	CropPath     string // default crop requirements CSV
	DistrictPath string // default district soil CSV
	WatchFiles   bool   // invalidate cached tables when the default files change
	PreviewRows  int    // rows shown per table on the status surface
}

// ChatConfig holds conversation configuration
type ChatConfig struct {
	MaxHistory int // messages retained per session
	Greeting   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Dataset: DatasetConfig{
			CropPath:     getEnv("CROP_DATA_PATH", "C1.csv"),
			DistrictPath: getEnv("DISTRICT_DATA_PATH", "Fdistrict.csv"),
			WatchFiles:   getEnvAsBool("DATASET_WATCH", true),
			PreviewRows:  getEnvAsInt("STATUS_PREVIEW_ROWS", 3),
		},
		Chat: ChatConfig{
			MaxHistory: getEnvAsInt("CHAT_MAX_HISTORY", 50),
			Greeting:   getEnv("CHAT_GREETING", "Hello! I am ready. Try asking: 'Plan for Rice in Ludhiana'"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
