package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// pollTimeout задает время длинного опроса getUpdates в секундах.
const pollTimeout = 30

// botTransport описывает вызовы Bot API, нужные жизненному циклу службы.
type botTransport interface {
	SetWebhook(url string) error
	DeleteWebhook() error
	FetchUpdates(offset, timeout int) ([]tgbotapi.Update, error)
	SendText(chatID, text string) error
}

// dispatcher обрабатывает одно входящее обновление.
type dispatcher interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Service управляет запуском и остановкой приема обновлений: регистрацией
// вебхука либо фоновым циклом опроса. Start и Stop сериализуются мьютексом
// и идемпотентны.
type Service struct {
	base       context.Context
	tg         botTransport
	bot        dispatcher
	store      Store
	token      string
	adminID    string
	webhookURL string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewService создает службу приема обновлений. Контекст ограничивает время
// жизни фонового опроса. Пустой webhookURL означает режим опроса.
func NewService(ctx context.Context, tg botTransport, bot dispatcher, store Store, token, adminID, webhookURL string) *Service {
	return &Service{
		base:       ctx,
		tg:         tg,
		bot:        bot,
		store:      store,
		token:      token,
		adminID:    adminID,
		webhookURL: webhookURL,
	}
}

// Start запускает службу. Повторный запуск работающей службы не делает ничего.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		log.Printf("service already running")
		return nil
	}
	if s.token == "" {
		return errMissingBotToken
	}

	if s.webhookURL != "" {
		if err := s.tg.SetWebhook(s.webhookURL); err != nil {
			return fmt.Errorf("setup webhook: %w", err)
		}
		log.Printf("webhook set: %s", s.webhookURL)
		s.running = true
		s.notifyStarted()
		return nil
	}

	pollCtx, cancel := context.WithCancel(s.base)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.poll(pollCtx, s.done)
	s.running = true
	log.Printf("polling started")
	return nil
}

// Stop останавливает службу. Остановка неработающей службы не делает ничего.
// Ожидание выхода цикла опроса идет вне мьютекса, иначе Running и параллельные
// вызовы Start/Stop блокировались бы до завершения цикла.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		log.Printf("service is not running")
		return nil
	}
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.running = false
	webhook := s.webhookURL != ""
	s.mu.Unlock()

	if webhook {
		if err := s.tg.DeleteWebhook(); err != nil {
			log.Printf("delete webhook error: %v", err)
		}
	} else {
		if cancel != nil {
			cancel()
		}
		if done != nil {
			<-done
		}
	}

	log.Printf("service stopped")
	return nil
}

// Restart перезапускает службу. Используется кнопкой администратора.
func (s *Service) Restart() error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.Start()
}

// Running сообщает, принимает ли служба обновления.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// poll последовательно получает и обрабатывает обновления длинным опросом.
// Смещение сохраняется после каждого обработанного обновления, чтобы
// перезапуск продолжил с последнего места. Ошибка получения останавливает
// цикл; отмена контекста проверяется между итерациями и внутри пачки.
func (s *Service) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	offset, err := s.store.LastUpdateID(ctx)
	if err != nil {
		log.Printf("cannot load update offset: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := s.tg.FetchUpdates(offset+1, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("polling error, loop stopped: %v", err)
			s.reapPoll(done)
			return
		}

		for _, update := range updates {
			if ctx.Err() != nil {
				return
			}
			if err := s.bot.HandleUpdate(ctx, update); err != nil {
				log.Printf("update %d handling error: %v", update.UpdateID, err)
			}
			offset = update.UpdateID
			if err := s.store.SetLastUpdateID(ctx, offset); err != nil {
				log.Printf("cannot persist update offset %d: %v", offset, err)
			}
		}
	}
}

// reapPoll снимает флаг работы после аварийного выхода цикла и освобождает
// его контекст. Состояние меняется только если цикл все еще текущий:
// параллельный Stop мог уже забрать cancel и done себе.
func (s *Service) reapPoll(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != done {
		return
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.done = nil
}

// notifyStarted отправляет администратору уведомление о запуске службы.
func (s *Service) notifyStarted() {
	if s.adminID == "" {
		return
	}
	text := "🔄 **Server Started**\n\n"
	text += "✅ Telegram Bot is active\n"
	text += "🌐 Webhook is working\n"
	text += fmt.Sprintf("🔗 URL: %s\n", s.webhookURL)
	text += fmt.Sprintf("🕐 Time: %s", time.Now().Format(timeFormat))
	if err := s.tg.SendText(s.adminID, text); err != nil {
		log.Printf("startup notice to admin failed: %v", err)
	}
}
