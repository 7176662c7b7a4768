package main

import "time"

// Состояния жизненного цикла задачи.
const (
	TaskStateDraft      = "draft"
	TaskStateInProgress = "in_progress"
	TaskStateCompleted  = "completed"
	TaskStateCancelled  = "cancelled"
)

// Приоритеты задачи.
const (
	TaskPriorityLow    = 0
	TaskPriorityNormal = 1
	TaskPriorityHigh   = 2
	TaskPriorityUrgent = 3
)

// Состояния обращения пользователя.
const (
	ReportStateNew      = "new"
	ReportStateInReview = "in_review"
	ReportStateResolved = "resolved"
	ReportStateClosed   = "closed"
)

// TelegramUser описывает пользователя Telegram, созданного по первому входящему сообщению.
type TelegramUser struct {
	ID         int
	TelegramID string `gorm:"uniqueIndex"`
	Username   string
	Name       string
	IsAdmin    bool
	Active     bool
	CreatedAt  time.Time
}

// Vehicle описывает транспортное средство, привязываемое к задачам.
type Vehicle struct {
	ID           int
	Name         string
	LicensePlate string
	DriverName   string
	Active       bool
}

// Task описывает задачу, проходящую жизненный цикл draft -> in_progress -> completed.
type Task struct {
	ID               int
	Title            string
	Description      string
	State            string
	Priority         int
	TelegramUserID   *int
	TelegramUser     *TelegramUser
	VehicleID        *int
	Vehicle          *Vehicle
	Deadline         *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	Progress         float64
	NotificationSent bool
	CreatedAt        time.Time
}

// Report описывает обращение пользователя: текст или фотография с подписью.
type Report struct {
	ID             int
	Title          string
	Description    string
	TelegramUserID int
	TelegramUser   *TelegramUser
	State          string
	PhotoURL       string
	CreatedAt      time.Time
}

// BotSettings хранит единственную строку служебного состояния бота.
type BotSettings struct {
	ID           int
	LastUpdateID int
}

// priorityIcons и priorityLabels описывают отображение приоритета в сообщениях.
var priorityIcons = map[int]string{
	TaskPriorityLow:    "🔵",
	TaskPriorityNormal: "🟡",
	TaskPriorityHigh:   "🟠",
	TaskPriorityUrgent: "🔴",
}

var priorityLabels = map[int]string{
	TaskPriorityLow:    "Low",
	TaskPriorityNormal: "Normal",
	TaskPriorityHigh:   "High",
	TaskPriorityUrgent: "Urgent",
}

// stateIcons и stateLabels описывают отображение состояния задачи в сообщениях.
var stateIcons = map[string]string{
	TaskStateDraft:      "📝",
	TaskStateInProgress: "🔄",
	TaskStateCompleted:  "✅",
	TaskStateCancelled:  "❌",
}

var stateLabels = map[string]string{
	TaskStateDraft:      "Draft",
	TaskStateInProgress: "In Progress",
	TaskStateCompleted:  "Completed",
	TaskStateCancelled:  "Cancelled",
}

// priorityIcon возвращает иконку приоритета с запасным значением.
func priorityIcon(priority int) string {
	if icon, ok := priorityIcons[priority]; ok {
		return icon
	}
	return "🟡"
}

// priorityLabel возвращает название приоритета с запасным значением.
func priorityLabel(priority int) string {
	if label, ok := priorityLabels[priority]; ok {
		return label
	}
	return "Normal"
}

// stateIcon возвращает иконку состояния с запасным значением.
func stateIcon(state string) string {
	if icon, ok := stateIcons[state]; ok {
		return icon
	}
	return "📝"
}

// stateLabel возвращает название состояния с запасным значением.
func stateLabel(state string) string {
	if label, ok := stateLabels[state]; ok {
		return label
	}
	return "Unknown"
}
