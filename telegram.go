package main

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI описывает используемую часть клиента Telegram Bot API.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Messenger отправляет исходящие сообщения через Telegram Bot API.
// Ошибки доставки логируются и возвращаются вызывающему без повторов.
type Messenger struct {
	api botAPI
}

// NewMessenger создает рассыльщик поверх клиента Bot API.
func NewMessenger(api botAPI) *Messenger {
	return &Messenger{api: api}
}

// SendText отправляет текстовое сообщение в чат.
func (m *Messenger) SendText(chatID, text string) error {
	return m.send(chatID, text, nil)
}

// SendKeyboard отправляет сообщение с инлайн-клавиатурой.
func (m *Messenger) SendKeyboard(chatID, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	return m.send(chatID, text, keyboard)
}

// SendForceReply отправляет сообщение с принудительным полем ответа.
func (m *Messenger) SendForceReply(chatID, text string) error {
	return m.send(chatID, text, tgbotapi.ForceReply{ForceReply: true})
}

// send выполняет отправку сообщения с необязательной разметкой.
func (m *Messenger) send(chatID, text string, replyMarkup interface{}) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	if _, err := m.api.Send(msg); err != nil {
		log.Printf("send message to %s error: %v", chatID, err)
		return err
	}
	return nil
}

// SendPhoto пересылает фотографию по идентификатору файла Telegram.
func (m *Messenger) SendPhoto(chatID, fileID, caption string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	photo := tgbotapi.NewPhoto(id, tgbotapi.FileID(fileID))
	photo.Caption = caption
	if _, err := m.api.Send(photo); err != nil {
		log.Printf("send photo to %s error: %v", chatID, err)
		return err
	}
	return nil
}

// AnswerCallback подтверждает нажатие инлайн-кнопки коротким текстом.
func (m *Messenger) AnswerCallback(callbackID, text string, showAlert bool) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = showAlert
	if _, err := m.api.Request(callback); err != nil {
		log.Printf("answer callback %s error: %v", callbackID, err)
		return err
	}
	return nil
}

// FileURL возвращает прямую ссылку на файл Telegram.
func (m *Messenger) FileURL(fileID string) (string, error) {
	url, err := m.api.GetFileDirectURL(fileID)
	if err != nil {
		log.Printf("get file url for %s error: %v", fileID, err)
		return "", err
	}
	return url, nil
}

// SetWebhook регистрирует адрес вебхука для сообщений и нажатий кнопок.
func (m *Messenger) SetWebhook(url string) error {
	webhook, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return err
	}
	webhook.AllowedUpdates = []string{"message", "callback_query"}
	resp, err := m.api.Request(webhook)
	if err != nil {
		return err
	}
	if !resp.Ok {
		return fmt.Errorf("set webhook failed: %s", resp.Description)
	}
	return nil
}

// DeleteWebhook снимает регистрацию вебхука.
func (m *Messenger) DeleteWebhook() error {
	if _, err := m.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return err
	}
	return nil
}

// FetchUpdates запрашивает обновления длинным опросом начиная с offset.
func (m *Messenger) FetchUpdates(offset, timeout int) ([]tgbotapi.Update, error) {
	config := tgbotapi.NewUpdate(offset)
	config.Timeout = timeout
	config.AllowedUpdates = []string{"message", "callback_query"}
	return m.api.GetUpdates(config)
}

// parseChatID преобразует внешний идентификатор чата в числовой.
func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return id, nil
}
