package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender описывает исходящие операции Telegram, нужные обработчикам.
type sender interface {
	SendText(chatID, text string) error
	SendKeyboard(chatID, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendForceReply(chatID, text string) error
	SendPhoto(chatID, fileID, caption string) error
	AnswerCallback(callbackID, text string, showAlert bool) error
	FileURL(fileID string) (string, error)
}

// timeFormat используется во всех исходящих сообщениях.
const timeFormat = "02.01.2006 15:04"

// Заголовки уведомлений по виду события.
var eventHeadings = map[string]string{
	"created":   "📋 **New task!**",
	"started":   "🔄 **Task started!**",
	"updated":   "✏️ **Task updated!**",
	"completed": "✅ **Task completed!**",
	"cancelled": "❌ **Task cancelled!**",
}

// Notifier формирует и отправляет уведомления о задачах.
type Notifier struct {
	tg      sender
	adminID string
}

// NewNotifier создает рассыльщик уведомлений о задачах.
func NewNotifier(tg sender, adminID string) *Notifier {
	return &Notifier{tg: tg, adminID: adminID}
}

// NotifyTask отправляет уведомление о событии задачи исполнителю,
// а администратору — сводку о назначении. Задачи, назначенные самому
// администратору, получают упрощенный шаблон без кадровой сводки.
func (n *Notifier) NotifyTask(task *Task, event string) {
	if task.TelegramUser == nil || task.TelegramUser.TelegramID == "" {
		log.Printf("cannot send task notification: no telegram user assigned to task %d", task.ID)
		return
	}

	if task.TelegramUser.TelegramID == n.adminID {
		n.notifyAdminOwnTask(task, event)
		return
	}

	text := formatTaskMessage(task, eventHeadings[event])
	if err := n.tg.SendKeyboard(task.TelegramUser.TelegramID, text, taskKeyboard(task)); err != nil {
		log.Printf("task notification to %s failed: %v", task.TelegramUser.TelegramID, err)
	}

	if n.adminID != "" {
		n.notifyAdminAssignment(task, event)
	}
}

// notifyAdminOwnTask отправляет администратору упрощенное уведомление о его задаче.
func (n *Notifier) notifyAdminOwnTask(task *Task, event string) {
	var b strings.Builder
	b.WriteString(eventHeadings[event] + "\n\n")
	b.WriteString(fmt.Sprintf("**%s**\n", task.Title))
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("📝 %s\n", task.Description))
	}
	writeVehicleLine(&b, task.Vehicle)
	if task.Deadline != nil {
		b.WriteString(fmt.Sprintf("⏰ Deadline: %s\n", task.Deadline.Format(timeFormat)))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Mark as done", fmt.Sprintf("done_%d", task.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 All tasks", "tasks"),
		),
	)
	if err := n.tg.SendKeyboard(n.adminID, b.String(), keyboard); err != nil {
		log.Printf("admin task notification failed: %v", err)
	}
}

// notifyAdminAssignment отправляет администратору сводку о задаче сотрудника.
func (n *Notifier) notifyAdminAssignment(task *Task, event string) {
	var b strings.Builder
	b.WriteString("📋 **New task assigned to employee!**\n\n")
	b.WriteString(fmt.Sprintf("👤 **Employee:** %s\n", task.TelegramUser.Name))
	b.WriteString(fmt.Sprintf("📋 **Task:** %s\n", task.Title))
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("📝 **Description:** %s\n", task.Description))
	}
	writeVehicleLine(&b, task.Vehicle)
	b.WriteString(fmt.Sprintf("%s **Priority:** %s\n", priorityIcon(task.Priority), priorityLabel(task.Priority)))
	b.WriteString(fmt.Sprintf("⏰ **Created:** %s", time.Now().Format(timeFormat)))

	if err := n.tg.SendText(n.adminID, b.String()); err != nil {
		log.Printf("admin assignment notification failed: %v", err)
	}
}

// formatTaskMessage строит стандартный текст уведомления о задаче.
func formatTaskMessage(task *Task, heading string) string {
	var b strings.Builder
	if heading != "" {
		b.WriteString(heading + "\n\n")
	}
	b.WriteString(fmt.Sprintf("**%s**\n", task.Title))
	if task.Description != "" {
		b.WriteString(fmt.Sprintf("📝 %s\n\n", task.Description))
	}
	if task.Vehicle != nil {
		b.WriteString(fmt.Sprintf("🚗 **%s**", task.Vehicle.Name))
		if task.Vehicle.LicensePlate != "" {
			b.WriteString(fmt.Sprintf(" (%s)", task.Vehicle.LicensePlate))
		}
		if task.Vehicle.DriverName != "" {
			b.WriteString(fmt.Sprintf("\n👤 Driver: %s", task.Vehicle.DriverName))
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("%s Priority: %s\n", priorityIcon(task.Priority), priorityLabel(task.Priority)))
	b.WriteString(fmt.Sprintf("%s Status: %s\n", stateIcon(task.State), stateLabel(task.State)))
	if task.Deadline != nil {
		b.WriteString(fmt.Sprintf("⏰ Deadline: %s\n", task.Deadline.Format(timeFormat)))
	}
	if task.Progress > 0 {
		b.WriteString(fmt.Sprintf("📊 Progress: %.0f%%\n", task.Progress))
	}
	return b.String()
}

// writeVehicleLine добавляет строку с транспортом, если он задан.
func writeVehicleLine(b *strings.Builder, vehicle *Vehicle) {
	if vehicle == nil {
		return
	}
	b.WriteString(fmt.Sprintf("🚗 **Vehicle:** %s", vehicle.Name))
	if vehicle.LicensePlate != "" {
		b.WriteString(fmt.Sprintf(" (%s)", vehicle.LicensePlate))
	}
	b.WriteString("\n")
}

// taskKeyboard собирает кнопки действий для уведомления о задаче.
func taskKeyboard(task *Task) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if task.Vehicle != nil {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🚗 Info about %s", task.Vehicle.Name),
				fmt.Sprintf("vehicle_info_%d", task.Vehicle.ID),
			),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓️ Specify execution day", fmt.Sprintf("set_day_%d", task.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Mark as done", fmt.Sprintf("done_%d", task.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 All tasks", "tasks"),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
