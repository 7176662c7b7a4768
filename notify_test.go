package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyTask(t *testing.T) {
	deadline := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	vehicle := &Vehicle{ID: 3, Name: "Sprinter", LicensePlate: "AB-1234", DriverName: "Janis", Active: true}

	t.Run("employee gets full template and admin a summary", func(t *testing.T) {
		tg := &fakeSender{}
		notifier := NewNotifier(tg, "1")
		task := &Task{
			ID:           7,
			Title:        "Replace brakes",
			Description:  "Front axle",
			State:        TaskStateDraft,
			Priority:     TaskPriorityUrgent,
			Deadline:     &deadline,
			Vehicle:      vehicle,
			TelegramUser: &TelegramUser{ID: 2, TelegramID: "100", Name: "Worker"},
		}
		notifier.NotifyTask(task, "created")

		keyboards := tg.byKind("keyboard")
		require.Len(t, keyboards, 1)
		assert.Equal(t, "100", keyboards[0].chatID)
		assert.Contains(t, keyboards[0].text, "New task!")
		assert.Contains(t, keyboards[0].text, "Replace brakes")
		assert.Contains(t, keyboards[0].text, "Front axle")
		assert.Contains(t, keyboards[0].text, "Sprinter")
		assert.Contains(t, keyboards[0].text, "(AB-1234)")
		assert.Contains(t, keyboards[0].text, "Janis")
		assert.Contains(t, keyboards[0].text, "🔴 Priority: Urgent")
		assert.Contains(t, keyboards[0].text, "📝 Status: Draft")
		assert.Contains(t, keyboards[0].text, "15.09.2026 12:00")

		texts := tg.byKind("text")
		require.Len(t, texts, 1)
		assert.Equal(t, "1", texts[0].chatID)
		assert.Contains(t, texts[0].text, "New task assigned to employee!")
		assert.Contains(t, texts[0].text, "Worker")
	})

	t.Run("admin own task uses simplified template", func(t *testing.T) {
		tg := &fakeSender{}
		notifier := NewNotifier(tg, "1")
		task := &Task{
			ID:           7,
			Title:        "Order parts",
			State:        TaskStateDraft,
			TelegramUser: &TelegramUser{ID: 1, TelegramID: "1", Name: "Boss"},
		}
		notifier.NotifyTask(task, "created")

		keyboards := tg.byKind("keyboard")
		require.Len(t, keyboards, 1)
		assert.Equal(t, "1", keyboards[0].chatID)
		assert.Contains(t, keyboards[0].text, "Order parts")
		assert.NotContains(t, keyboards[0].text, "assigned to employee")
		assert.Empty(t, tg.byKind("text"))
	})

	t.Run("without assignee nothing is sent", func(t *testing.T) {
		tg := &fakeSender{}
		notifier := NewNotifier(tg, "1")
		notifier.NotifyTask(&Task{ID: 7, Title: "Orphan"}, "created")
		assert.Empty(t, tg.sent)
	})

	t.Run("without admin only assignee is notified", func(t *testing.T) {
		tg := &fakeSender{}
		notifier := NewNotifier(tg, "")
		task := &Task{
			ID:           7,
			Title:        "Replace brakes",
			TelegramUser: &TelegramUser{ID: 2, TelegramID: "100", Name: "Worker"},
		}
		notifier.NotifyTask(task, "created")
		require.Len(t, tg.byKind("keyboard"), 1)
		assert.Empty(t, tg.byKind("text"))
	})
}

func TestTaskKeyboard(t *testing.T) {
	t.Run("with vehicle", func(t *testing.T) {
		task := &Task{ID: 7, Vehicle: &Vehicle{ID: 3, Name: "Sprinter"}}
		rows := taskKeyboard(task).InlineKeyboard
		require.Len(t, rows, 4)
		assert.Equal(t, "vehicle_info_3", *rows[0][0].CallbackData)
		assert.Equal(t, "set_day_7", *rows[1][0].CallbackData)
		assert.Equal(t, "done_7", *rows[2][0].CallbackData)
		assert.Equal(t, "tasks", *rows[3][0].CallbackData)
	})

	t.Run("without vehicle", func(t *testing.T) {
		rows := taskKeyboard(&Task{ID: 7}).InlineKeyboard
		require.Len(t, rows, 3)
		assert.Equal(t, "set_day_7", *rows[0][0].CallbackData)
	})
}

func TestFormatTaskMessage(t *testing.T) {
	t.Run("progress line only when positive", func(t *testing.T) {
		task := &Task{Title: "t", State: TaskStateInProgress, Progress: 40}
		assert.Contains(t, formatTaskMessage(task, ""), "📊 Progress: 40%")

		// Метка состояния "In Progress" не считается строкой прогресса.
		task.Progress = 0
		assert.NotContains(t, formatTaskMessage(task, ""), "📊 Progress:")
	})

	t.Run("unknown priority falls back to normal", func(t *testing.T) {
		task := &Task{Title: "t", State: TaskStateDraft, Priority: 42}
		assert.Contains(t, formatTaskMessage(task, ""), "🟡 Priority: Normal")
	})
}
