package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config хранит настройки приложения из переменных окружения.
type Config struct {
	BotToken        string
	AdminTelegramID string
	DatabaseURL     string
	HTTPAddr        string
	WebhookBaseURL  string
	APIUser         string
	APIPassword     string
}

// LoadConfig загружает переменные из .env в корне проекта и возвращает конфигурацию.
func LoadConfig() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	return Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		AdminTelegramID: os.Getenv("ADMIN_TELEGRAM_ID"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		WebhookBaseURL:  os.Getenv("WEBHOOK_BASE_URL"),
		APIUser:         os.Getenv("API_USER"),
		APIPassword:     os.Getenv("API_PASSWORD"),
	}
}

// WebhookURL возвращает полный адрес вебхука или пустую строку для режима опроса.
func (c Config) WebhookURL() string {
	if c.WebhookBaseURL == "" {
		return ""
	}
	return c.WebhookBaseURL + webhookPath
}

// envOrDefault возвращает значение переменной окружения или значение по умолчанию.
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
