package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// ExpectedOrigin guards the public submission form; empty disables
	// the origin check.
	ExpectedOrigin string

	CloudinaryURL string
	UploadFolder  string

	// RateLimitBackend is "postgres" (default, best-effort window query)
	// or "redis" (atomic reservation).
	RateLimitBackend string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int

	OTLPEndpoint string
}

func Load() Config {
	return Config{
		Env:              getEnv("APP_ENV", "dev"),
		Port:             getEnvInt("PORT", 8080),
		DBURL:            buildDBURL(),
		ExpectedOrigin:   getEnv("EXPECTED_ORIGIN", ""),
		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		UploadFolder:     getEnv("UPLOAD_FOLDER", "DevEvent"),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", "postgres"),
		RedisAddr:        getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "devevent")
	pass := getEnv("DB_PASSWORD", "devevent")
	name := getEnv("DB_NAME", "devevent")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
