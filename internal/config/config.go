package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL      string
	Branch          string
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	AppEnv          string
	RefreshInterval time.Duration
}

const defaultRefreshSeconds = 60

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		BackendURL: os.Getenv("BACKEND_URL"),
		Branch:     os.Getenv("SUCURSAL"),
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
	}

	seconds := defaultRefreshSeconds
	if raw := os.Getenv("REFRESH_INTERVAL_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Fatalf("Invalid REFRESH_INTERVAL_SECONDS: %q", raw)
		}
		seconds = parsed
	}
	cfg.RefreshInterval = time.Duration(seconds) * time.Second

	if cfg.BackendURL == "" {
		log.Fatal("Environment variables not loaded properly: BACKEND_URL is required")
	}
	if cfg.Branch == "" {
		log.Fatal("Environment variables not loaded properly: SUCURSAL is required")
	}

	return cfg
}
