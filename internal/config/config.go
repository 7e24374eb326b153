// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageMongoDB  = "mongodb"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
	RequestTimeout time.Duration
}

// StorageConfig holds key-value backend settings
type StorageConfig struct {
	Type          string
	URI           string
	Prefix        string
	RedisPassword string
	RedisDB       int
	MongoDatabase string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Storage        *StorageConfig
	AllowedOrigins []string
	Debug          bool
	LogLevel       string
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		RequestTimeout: 5 * time.Second,
	}
}

// DefaultStorageConfig keeps everything in process memory under the
// browser-era key names.
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		Type:          StorageMemory,
		Prefix:        "fedit_",
		MongoDatabase: "fedit",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env file from multiple possible locations
	envLocations := []string{
		".env",       // Current directory
		"../../.env", // Project root when running from cmd/engine
		filepath.Join(os.Getenv("GOPATH"), "src/fedit/.env"),
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		// Silent when no .env exists
		_ = godotenv.Load()
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	serverConfig := DefaultConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		serverConfig.Port = port
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", timeoutStr, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", timeout)
		}
		serverConfig.RequestTimeout = timeout
	}

	storageConfig := DefaultStorageConfig()

	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		storageConfig.Type = strings.ToLower(storageType)
	}

	// An explicitly empty prefix is allowed and yields the bare key names.
	if prefix, ok := os.LookupEnv("STORAGE_PREFIX"); ok {
		storageConfig.Prefix = prefix
	}

	storageConfig.URI = os.Getenv("STORAGE_URI")

	switch storageConfig.Type {
	case StorageMemory:
	case StorageRedis:
		storageConfig.URI = getEnvOrDefault("STORAGE_URI", "localhost:6379")
		storageConfig.RedisPassword = os.Getenv("REDIS_PASSWORD")
		if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
			db, err := strconv.Atoi(dbStr)
			if err != nil {
				return nil, fmt.Errorf("invalid REDIS_DB %q: %w", dbStr, err)
			}
			storageConfig.RedisDB = db
		}
	case StorageMongoDB:
		storageConfig.URI = getEnvOrDefault("STORAGE_URI", "mongodb://localhost:27017")
		storageConfig.MongoDatabase = getEnvOrDefault("MONGODB_DATABASE", storageConfig.MongoDatabase)
	case StoragePostgres:
		if storageConfig.URI == "" {
			return nil, fmt.Errorf("STORAGE_URI environment variable is required when STORAGE_TYPE is postgres")
		}
	case StorageSQLite:
		storageConfig.URI = getEnvOrDefault("STORAGE_URI", "fedit.db")
	default:
		return nil, fmt.Errorf("unsupported STORAGE_TYPE '%s'", storageConfig.Type)
	}

	config := &Config{
		Server:         serverConfig,
		Storage:        storageConfig,
		AllowedOrigins: []string{"*"}, // Default to allow all origins
		Debug:          false,
		LogLevel:       "info",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
		config.LogLevel = "debug"
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = strings.ToLower(level)
	}

	return config, nil
}

// Addr is the listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
