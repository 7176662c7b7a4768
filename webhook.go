package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// webhookPath задает путь входящего вебхука Telegram.
const webhookPath = "/telegram/webhook"

// webhookReply описывает конверт ответа вебхука. Ошибка обработки
// сигнализируется полем ok при статусе 200, чтобы Telegram не копил повторы.
type webhookReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// handleWebhook принимает обновление Telegram и обрабатывает его в одной
// транзакции хранилища: ошибка обработчика откатывает все изменения записи.
func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("webhook decode error: %v", err)
		writeJSON(w, http.StatusOK, webhookReply{OK: false, Error: "invalid update payload"})
		return
	}

	if !a.service.Running() {
		writeJSON(w, http.StatusOK, webhookReply{OK: false, Error: "service is not running"})
		return
	}

	if err := a.dispatchUpdate(r, update); err != nil {
		log.Printf("webhook processing error: %v", err)
		writeJSON(w, http.StatusOK, webhookReply{OK: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, webhookReply{OK: true})
}

// dispatchUpdate выполняет обработку обновления внутри транзакции. Паника
// обработчика после отката транзакции превращается в ошибку, чтобы ответ
// остался в формате конверта.
func (a *API) dispatchUpdate(r *http.Request, update tgbotapi.Update) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("webhook dispatch panic: %v", rec)
			err = errors.New("internal error")
		}
	}()
	return a.store.Transact(r.Context(), func(tx Store) error {
		return a.bot.WithStore(tx).HandleUpdate(r.Context(), update)
	})
}
