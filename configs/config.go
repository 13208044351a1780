package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything supplied at process start: database and redis
// connection settings plus the token signing parameters. It is loaded
// once in main and passed by value to the components that need it.
type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string
	RedisHost  string
	RedisPort  int

	// Token signing settings. Secret and algorithm are pinned for the
	// lifetime of the process; expiry is in hours.
	JWTSecret      string
	JWTAlgorithm   string
	JWTExpiryHours int

	ListenPort int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		DBHost:         envString("DB_HOST", "localhost"),
		DBPort:         envInt("DB_PORT", 5432),
		DBUser:         envString("DB_USER", "postgres"),
		DBPassword:     envString("DB_PASSWORD", "postgres"),
		DBName:         envString("DB_NAME", "taskhub"),
		DBNameTest:     envString("DB_NAME_TEST", "taskhub_test"),
		RedisHost:      envString("REDIS_HOST", "localhost"),
		RedisPort:      envInt("REDIS_PORT", 6379),
		JWTSecret:      envString("JWT_SECRET", "dev-secret-change-me"),
		JWTAlgorithm:   envString("JWT_ALGORITHM", "HS256"),
		JWTExpiryHours: envInt("JWT_EXPIRATION_HOURS", 1),
		ListenPort:     envInt("PORT", 3004),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
