package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// main запускает HTTP API и службу приема обновлений Telegram.
func main() {
	config := LoadConfig()

	store, err := NewGormStore(config.DatabaseURL)
	if err != nil {
		log.Fatalf("cannot init store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("cannot close store: %v", err)
		}
	}()

	if config.BotToken == "" {
		log.Fatalf("cannot init telegram bot: %v", errMissingBotToken)
	}
	client, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		log.Fatalf("cannot init telegram bot: %v", err)
	}
	log.Printf("authorized on account %s", client.Self.UserName)

	messenger := NewMessenger(client)
	notifier := NewNotifier(messenger, config.AdminTelegramID)
	tasks := NewTaskService(store, notifier)
	bot := NewBot(store, messenger, tasks, config.AdminTelegramID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service := NewService(ctx, messenger, bot, store, config.BotToken, config.AdminTelegramID, config.WebhookURL())
	bot.AttachService(service)

	api := NewAPI(store, tasks, service, bot, config.APIUser, config.APIPassword)
	server := &http.Server{
		Addr:    config.HTTPAddr,
		Handler: api.Handler(),
	}

	go func() {
		log.Printf("HTTP server started on %s", config.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	if err := service.Start(); err != nil {
		log.Fatalf("cannot start telegram service: %v", err)
	}

	<-ctx.Done()
	log.Printf("shutdown requested")
	if err := service.Stop(); err != nil {
		log.Printf("service stop error: %v", err)
	}
	if err := server.Shutdown(context.Background()); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
}
