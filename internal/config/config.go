package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration, sourced from the environment
// with an optional .env file for development.
type Config struct {
	Addr string

	MySQLDSN string

	RedisAddr     string
	RedisPassword string

	AuthJWTSecret string

	LogLevel string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:          getenv("APP_ADDR", ":8080"),
		MySQLDSN:      getenv("MYSQL_DSN", "user:pass@tcp(mysql:3306)/storefront?parseTime=true"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		AuthJWTSecret: getenv("AUTH_JWT_SECRET", ""),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
