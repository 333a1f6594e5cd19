package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	DatabasePath string
	HTTPAddr     string
	BaseURL      string

	CrawlInterval time.Duration
	FetchTimeout  time.Duration

	TelegramToken  string
	TelegramChatID int64

	CORSOrigin string
}

// Load reads the .env file, if any, and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system env vars")
	}

	return &Config{
		DatabasePath: getEnv("DATABASE_PATH", "apartments.db"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8000"),
		BaseURL:      getEnv("SREALITY_BASE_URL", ""),

		CrawlInterval: time.Duration(getEnvInt("CRAWL_INTERVAL", 60)) * time.Second,
		FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT", 30)) * time.Second,

		TelegramToken:  getEnv("TELEGRAM_APITOKEN", ""),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		CORSOrigin: getEnv("CORS_ORIGIN", ""),
	}
}

// TelegramEnabled reports whether both the token and the chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
