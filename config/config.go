package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddress  string
	RedisPassword string

	JWTSecret       string
	DefaultPassword string

	// FlagPrefix is the wrapper expected around submitted duel answers,
	// e.g. CCTF for CCTF{...}
	FlagPrefix string

	ServerPort string
)

// LoadConfig reads the .env file if present and populates the config variables
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	PostgresHost = getEnv("POSTGRES_HOST", "localhost")
	PostgresPort = getEnv("POSTGRES_PORT", "5432")
	PostgresUser = getEnv("POSTGRES_USER", "postgres")
	PostgresPassword = getEnv("POSTGRES_PASSWORD", "postgres")
	PostgresDB = getEnv("POSTGRES_DB", "cryptoduels")

	RedisAddress = getEnv("REDIS_ADDRESS", "localhost:6379")
	RedisPassword = getEnv("REDIS_PASSWORD", "")

	JWTSecret = getEnv("JWT_SECRET", "change-me")
	DefaultPassword = os.Getenv("DEFAULT_PASSWORD")

	FlagPrefix = getEnv("FLAG_PREFIX", "CCTF")

	ServerPort = getEnv("SERVER_PORT", "8080")
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
