package main

import "errors"

// errMissingBotToken возвращается при отсутствии токена бота.
var errMissingBotToken = errors.New("BOT_TOKEN is not set")

// errMissingDatabaseURL возвращается при отсутствии адреса базы данных.
var errMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// errTaskNotFound возвращается, когда задача не найдена в хранилище.
var errTaskNotFound = errors.New("task not found")

// errProgressRange возвращается при значении прогресса вне диапазона 0-100.
var errProgressRange = errors.New("progress must be between 0 and 100")

// errDeadlineBeforeStart возвращается, когда срок раньше даты начала.
var errDeadlineBeforeStart = errors.New("deadline cannot be earlier than start date")

// errTitleRequired возвращается при создании задачи без названия.
var errTitleRequired = errors.New("title is required")

// Ошибки недопустимых переходов жизненного цикла задачи.
var (
	errStartNotDraft      = errors.New("only draft tasks can be started")
	errCompleteWrongState = errors.New("only draft or in-progress tasks can be completed")
	errCancelCompleted    = errors.New("completed tasks cannot be cancelled")
	errResetCancelled     = errors.New("cancelled tasks cannot be reset to draft")
)
