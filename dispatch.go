package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// serviceControl описывает управление жизненным циклом службы из чата.
type serviceControl interface {
	Restart() error
}

// callbackKind перечисляет виды нажатий инлайн-кнопок.
type callbackKind int

const (
	callbackUnknown callbackKind = iota
	callbackDone
	callbackVehicleInfo
	callbackTasks
	callbackReport
	callbackMenu
	callbackRestartService
	callbackSetDay
)

// callbackAction описывает разобранное нажатие кнопки.
// Строка данных разбирается один раз на границе обработки.
type callbackAction struct {
	kind      callbackKind
	taskID    int
	vehicleID int
}

// parseCallbackData разбирает строку callback data в типизированное действие.
func parseCallbackData(data string) callbackAction {
	switch {
	case strings.HasPrefix(data, "done_"):
		if id, err := strconv.Atoi(strings.TrimPrefix(data, "done_")); err == nil {
			return callbackAction{kind: callbackDone, taskID: id}
		}
	case strings.HasPrefix(data, "vehicle_info_"):
		if id, err := strconv.Atoi(strings.TrimPrefix(data, "vehicle_info_")); err == nil {
			return callbackAction{kind: callbackVehicleInfo, vehicleID: id}
		}
	case strings.HasPrefix(data, "set_day_"):
		if id, err := strconv.Atoi(strings.TrimPrefix(data, "set_day_")); err == nil {
			return callbackAction{kind: callbackSetDay, taskID: id}
		}
	case data == "tasks":
		return callbackAction{kind: callbackTasks}
	case data == "report":
		return callbackAction{kind: callbackReport}
	case data == "menu":
		return callbackAction{kind: callbackMenu}
	case data == "restart_service":
		return callbackAction{kind: callbackRestartService}
	}
	return callbackAction{kind: callbackUnknown}
}

// Bot маршрутизирует входящие обновления Telegram к обработчикам.
type Bot struct {
	store   Store
	tg      sender
	tasks   *TaskService
	adminID string
	service serviceControl
}

// NewBot создает диспетчер обновлений.
func NewBot(store Store, tg sender, tasks *TaskService, adminID string) *Bot {
	return &Bot{store: store, tg: tg, tasks: tasks, adminID: adminID}
}

// WithStore возвращает копию диспетчера поверх другого хранилища.
// Используется вебхуком для работы внутри транзакции.
func (b *Bot) WithStore(store Store) *Bot {
	clone := *b
	clone.store = store
	clone.tasks = NewTaskService(store, b.tasks.notifier)
	return &clone
}

// AttachService подключает управление службой для кнопки перезапуска.
func (b *Bot) AttachService(service serviceControl) {
	b.service = service
}

// HandleUpdate классифицирует обновление и передает его обработчику.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	default:
		log.Printf("unhandled update %d: no message or callback", update.UpdateID)
		return nil
	}
}

// handleMessage обрабатывает входящее сообщение по приоритету:
// фото, команды, затем свободный текст как обращение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		log.Printf("message without sender in chat %d", msg.Chat.ID)
		return nil
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	user, err := b.resolveUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if len(msg.Photo) > 0 {
		return b.filePhotoReport(ctx, chatID, msg, user)
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start":
		b.sendWelcome(chatID, user)
	case text == "/tasks" || strings.Contains(strings.ToLower(text), "uzdevumi"):
		return b.sendTaskList(ctx, chatID, user)
	case text == "/menu":
		b.sendMenu(chatID)
	case text == "/debug":
		b.sendDebug(chatID, msg.From, user)
	case text == "/help":
		b.sendHelp(chatID)
	case text == "/status" && user.IsAdmin:
		return b.sendStatus(ctx, chatID, msg.From)
	default:
		if !user.IsAdmin {
			return b.fileReport(ctx, chatID, user, text)
		}
		// Произвольный текст администратора игнорируется, чтобы не зациклить эхо.
		log.Printf("dropping admin message from %s: %q", user.Name, text)
	}
	return nil
}

// handleCallback обрабатывает нажатие инлайн-кнопки. Каждое нажатие
// подтверждается ровно один раз, в том числе при ошибке или панике обработчика.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	answerText := "✅ Confirmed"
	showAlert := false

	defer func() {
		if r := recover(); r != nil {
			log.Printf("callback handler panic: %v", r)
			answerText, showAlert = "❌ System Error", true
		}
		if err := b.tg.AnswerCallback(query.ID, answerText, showAlert); err != nil {
			log.Printf("cannot answer callback %s: %v", query.ID, err)
		}
	}()

	if query.Message == nil {
		answerText, showAlert = "❌ System Error", true
		return nil
	}
	chatID := strconv.FormatInt(query.Message.Chat.ID, 10)

	user, err := b.store.UserByTelegramID(ctx, strconv.FormatInt(query.From.ID, 10))
	if err != nil {
		log.Printf("callback user lookup error: %v", err)
		answerText, showAlert = "❌ System Error", true
		return nil
	}

	action := parseCallbackData(query.Data)
	switch action.kind {
	case callbackDone:
		if b.markTaskDone(ctx, chatID, action.taskID, user) {
			answerText, showAlert = "✅ Task Completed!", true
		} else {
			answerText, showAlert = "❌ Error", true
		}
	case callbackVehicleInfo:
		b.sendVehicleInfo(ctx, chatID, action.vehicleID)
		answerText = "ℹ️ Vehicle Information"
	case callbackTasks:
		if err := b.sendTaskList(ctx, chatID, user); err != nil {
			log.Printf("task list error: %v", err)
			answerText, showAlert = "❌ System Error", true
			return nil
		}
		answerText = "📋 Tasks"
	case callbackReport:
		b.sendReportPrompt(chatID)
		answerText = "⚠️ Reporting Mode"
	case callbackMenu:
		b.sendMenu(chatID)
		answerText = "📱 Main Menu"
	case callbackRestartService:
		if user == nil || !user.IsAdmin {
			answerText, showAlert = "❌ Admin only", true
			return nil
		}
		if b.service == nil {
			answerText, showAlert = "❌ System Error", true
			return nil
		}
		// Перезапуск уходит в отдельную горутину: синхронный Stop ждет выхода
		// цикла опроса, а это нажатие обрабатывается той самой горутиной.
		go func(service serviceControl) {
			if err := service.Restart(); err != nil {
				log.Printf("service restart error: %v", err)
			}
		}(b.service)
		answerText, showAlert = "🔄 Service restarted!", true
	case callbackSetDay:
		b.askExecutionDay(chatID, action.taskID)
		answerText, showAlert = "🗓️ Please enter the day you can complete the task!", true
	default:
		log.Printf("unknown callback data: %q", query.Data)
		answerText, showAlert = "❓ Unknown command", true
	}
	return nil
}

// resolveUser находит пользователя по отправителю или лениво создает его.
// О каждом новом пользователе, кроме администратора, уведомляется администратор.
func (b *Bot) resolveUser(ctx context.Context, from *tgbotapi.User) (*TelegramUser, error) {
	telegramID := strconv.FormatInt(from.ID, 10)
	user, err := b.store.UserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	name := from.FirstName
	if name == "" {
		name = from.UserName
	}
	if name == "" {
		name = "User_" + telegramID
	}
	user = &TelegramUser{
		TelegramID: telegramID,
		Username:   from.UserName,
		Name:       name,
		IsAdmin:    telegramID == b.adminID,
		Active:     true,
	}
	if err := b.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if b.adminID != "" && telegramID != b.adminID {
		text := "👤 **New user joined!**\n\n"
		text += fmt.Sprintf("🆔 **ID:** `%s`\n", telegramID)
		text += fmt.Sprintf("👤 **Name:** %s\n", name)
		text += fmt.Sprintf("🏷️ **Username:** @%s\n", orNone(from.UserName))
		text += fmt.Sprintf("🕐 **Time:** %s\n\n", time.Now().Format(timeFormat))
		text += "ℹ️ User can now receive tasks."
		if err := b.tg.SendText(b.adminID, text); err != nil {
			log.Printf("new user notice to admin failed: %v", err)
		}
	}
	return user, nil
}

// sendWelcome отправляет приветствие с тремя кнопками главных действий.
func (b *Bot) sendWelcome(chatID string, user *TelegramUser) {
	text := fmt.Sprintf("Hello, %s! 👋\n\nTelegram Task Manager bots.\n\nPlease choose:", user.Name)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Mani uzdevumi", "tasks")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚠️ Ziņot problēmu", "report")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📱 Izvēlne", "menu")),
	)
	if err := b.tg.SendKeyboard(chatID, text, keyboard); err != nil {
		log.Printf("welcome message error: %v", err)
	}
}

// sendMenu отправляет главное меню.
func (b *Bot) sendMenu(chatID string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Tasks", "tasks")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚠️ Report Issue", "report")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📱 Main Menu", "menu")),
	)
	if err := b.tg.SendKeyboard(chatID, "📱 Main Menu:", keyboard); err != nil {
		log.Printf("menu message error: %v", err)
	}
}

// sendDebug отправляет диагностическое эхо отправителю.
func (b *Bot) sendDebug(chatID string, from *tgbotapi.User, user *TelegramUser) {
	admin := "No"
	if user.IsAdmin {
		admin = "Yes"
	}
	text := "🔧 **Debug Info:**\n\n"
	text += "✅ **Bot Status:** Working!\n"
	text += fmt.Sprintf("👤 **User:** %s\n", user.Name)
	text += fmt.Sprintf("🆔 **User ID:** `%d`\n", from.ID)
	text += fmt.Sprintf("💬 **Chat ID:** `%s`\n", chatID)
	text += fmt.Sprintf("🏷️ **Username:** @%s\n", orNone(from.UserName))
	text += fmt.Sprintf("👑 **Admin:** %s\n", admin)
	text += fmt.Sprintf("🕐 **Time:** %s", time.Now().Format(timeFormat))
	if err := b.tg.SendText(chatID, text); err != nil {
		log.Printf("debug message error: %v", err)
	}
}

// sendHelp отправляет справку по командам.
func (b *Bot) sendHelp(chatID string) {
	text := strings.Join([]string{
		"🤖 **Telegram Task Manager**",
		"",
		"📋 **Commands:**",
		"/start - Start",
		"/tasks - Show Tasks",
		"/menu - Main Menu",
		"/debug - System Check",
		"/status - Admin Status",
		"/help - This Help",
		"",
		"💡 **Tip:** Type any message to report an issue!",
	}, "\n")
	if err := b.tg.SendText(chatID, text); err != nil {
		log.Printf("help message error: %v", err)
	}
}

// sendStatus отправляет администратору сводные счетчики системы.
func (b *Bot) sendStatus(ctx context.Context, chatID string, from *tgbotapi.User) error {
	activeUsers, admins, err := b.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	totalTasks, activeTasks, err := b.store.CountTasks(ctx)
	if err != nil {
		return err
	}
	text := "📊 **Admin Status Report**\n\n"
	text += fmt.Sprintf("👥 **Users:** %d (admins: %d)\n", activeUsers, admins)
	text += fmt.Sprintf("📋 **Tasks:** %d active / %d total\n", activeTasks, totalTasks)
	text += fmt.Sprintf("🤖 **Admin ID:** `%s`\n", b.adminID)
	text += fmt.Sprintf("👤 **Your ID:** `%d`\n", from.ID)
	text += fmt.Sprintf("🕐 **Time:** %s", time.Now().Format(timeFormat))
	if err := b.tg.SendText(chatID, text); err != nil {
		log.Printf("status message error: %v", err)
	}
	return nil
}

// sendTaskList отправляет незавершенные задачи пользователя с кнопками действий.
func (b *Bot) sendTaskList(ctx context.Context, chatID string, user *TelegramUser) error {
	if user == nil {
		b.sendMenu(chatID)
		return nil
	}
	tasks, err := b.store.ActiveTasksForUser(ctx, user.ID)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		text := "📋 Not active tasks!"
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu")),
		)
		if err := b.tg.SendKeyboard(chatID, text, keyboard); err != nil {
			log.Printf("task list message error: %v", err)
		}
		return nil
	}

	var text strings.Builder
	text.WriteString("📋 **Your Tasks:**\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, task := range tasks {
		emoji := "📌"
		if task.State == TaskStateInProgress {
			emoji = "🔄"
		}
		plate := ""
		if task.Vehicle != nil && task.Vehicle.LicensePlate != "" {
			plate = fmt.Sprintf(" (%s)", task.Vehicle.LicensePlate)
		}
		text.WriteString(fmt.Sprintf("%s **%s**%s\n", emoji, task.Title, plate))
		if task.Description != "" {
			text.WriteString(fmt.Sprintf("📝 %s\n", task.Description))
		}
		text.WriteString("\n")

		label := fmt.Sprintf("✅ Done: %s", shorten(task.Title, 15))
		if task.Vehicle != nil {
			label = fmt.Sprintf("✅ Done: %s %s", task.Vehicle.Name, shorten(task.Title, 15))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("done_%d", task.ID)),
		))
	}
	last := tasks[len(tasks)-1]
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓️ Set Completion Date", fmt.Sprintf("set_day_%d", last.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu"),
		),
	)
	if err := b.tg.SendKeyboard(chatID, text.String(), tgbotapi.NewInlineKeyboardMarkup(rows...)); err != nil {
		log.Printf("task list message error: %v", err)
	}
	return nil
}

// sendVehicleInfo отправляет сведения о транспорте и число активных задач по нему.
func (b *Bot) sendVehicleInfo(ctx context.Context, chatID string, vehicleID int) {
	vehicle, err := b.store.VehicleByID(ctx, vehicleID)
	if err != nil {
		log.Printf("vehicle lookup error: %v", err)
		return
	}
	if vehicle == nil {
		if err := b.tg.SendText(chatID, "❌ Vehicle not found."); err != nil {
			log.Printf("vehicle message error: %v", err)
		}
		return
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("🚗 **%s**\n\n", vehicle.Name))
	if vehicle.LicensePlate != "" {
		text.WriteString(fmt.Sprintf("🔢 License Plate: **%s**\n", vehicle.LicensePlate))
	}
	if vehicle.DriverName != "" {
		text.WriteString(fmt.Sprintf("👤 Driver: %s\n", vehicle.DriverName))
	}
	status := "❌ Inactive"
	if vehicle.Active {
		status = "✅ Active"
	}
	text.WriteString(fmt.Sprintf("📊 Status: %s\n", status))

	if count, err := b.store.CountActiveTasksForVehicle(ctx, vehicle.ID); err == nil && count > 0 {
		text.WriteString(fmt.Sprintf("📋 Active Tasks: %d\n", count))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 My Tasks", "tasks")),
	)
	if err := b.tg.SendKeyboard(chatID, text.String(), keyboard); err != nil {
		log.Printf("vehicle message error: %v", err)
	}
}

// markTaskDone завершает задачу по кнопке и уведомляет стороны.
// Возвращает успех для текста подтверждения нажатия.
func (b *Bot) markTaskDone(ctx context.Context, chatID string, taskID int, user *TelegramUser) bool {
	task, err := b.store.TaskByID(ctx, taskID)
	if err != nil {
		log.Printf("task lookup error: %v", err)
		return false
	}
	if task == nil {
		if err := b.tg.SendText(chatID, "❌ Task not found."); err != nil {
			log.Printf("task done message error: %v", err)
		}
		return false
	}
	if user == nil || task.TelegramUserID == nil || *task.TelegramUserID != user.ID {
		if err := b.tg.SendText(chatID, "❌ Task not assigned to you."); err != nil {
			log.Printf("task done message error: %v", err)
		}
		return false
	}

	// Стандартное уведомление перехода подавляется: подтверждение и сводка
	// администратору отправляются здесь, иначе исполнитель получил бы эхо.
	task, err = b.tasks.Complete(ctx, taskID, false)
	if err != nil {
		log.Printf("complete task %d error: %v", taskID, err)
		if err := b.tg.SendText(chatID, "❌ Error marking task as completed."); err != nil {
			log.Printf("task done message error: %v", err)
		}
		return false
	}

	var text strings.Builder
	text.WriteString("✅ **Task completed!**\n\n")
	text.WriteString(fmt.Sprintf("📋 **%s**\n", task.Title))
	if task.Description != "" {
		text.WriteString(fmt.Sprintf("📝 %s\n", task.Description))
	}
	writeVehicleLine(&text, task.Vehicle)
	text.WriteString(fmt.Sprintf("⏰ **Completed:** %s\n", time.Now().Format(timeFormat)))
	text.WriteString(fmt.Sprintf("👤 **User:** %s", user.Name))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Other Tasks", "tasks")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu")),
	)
	if err := b.tg.SendKeyboard(chatID, text.String(), keyboard); err != nil {
		log.Printf("task done message error: %v", err)
	}

	if b.adminID != "" && user.TelegramID != b.adminID {
		var admin strings.Builder
		admin.WriteString("🎉 **Task completed!**\n\n")
		admin.WriteString(fmt.Sprintf("👤 **User:** %s\n", user.Name))
		admin.WriteString(fmt.Sprintf("📋 **Task:** %s\n", task.Title))
		if task.Description != "" {
			admin.WriteString(fmt.Sprintf("📝 **Description:** %s\n", task.Description))
		}
		writeVehicleLine(&admin, task.Vehicle)
		admin.WriteString(fmt.Sprintf("⚡ **Priority:** %s %s\n", priorityIcon(task.Priority), priorityLabel(task.Priority)))
		admin.WriteString(fmt.Sprintf("⏰ **Completed:** %s\n", time.Now().Format(timeFormat)))
		admin.WriteString("📊 **Status:** Completed")
		if err := b.tg.SendText(b.adminID, admin.String()); err != nil {
			log.Printf("admin completion notice failed: %v", err)
		}
	}
	return true
}

// sendReportPrompt просит пользователя описать проблему.
func (b *Bot) sendReportPrompt(chatID string) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu")),
	)
	text := "⚠️ **Report an issue**\n\nPlease describe the issue:"
	if err := b.tg.SendKeyboard(chatID, text, keyboard); err != nil {
		log.Printf("report prompt error: %v", err)
	}
}

// fileReport сохраняет текстовое обращение пользователя.
// Текст администратора отбрасывается, чтобы не создавать эхо-обращений.
func (b *Bot) fileReport(ctx context.Context, chatID string, user *TelegramUser, text string) error {
	if user.IsAdmin {
		return nil
	}

	report := &Report{
		Title:          fmt.Sprintf("Report from %s", user.Name),
		Description:    text,
		TelegramUserID: user.ID,
		State:          ReportStateNew,
	}
	if err := b.store.CreateReport(ctx, report); err != nil {
		return err
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu")),
	)
	confirm := "✅ **Report sent!**\n\nThe administrator will review it."
	if err := b.tg.SendKeyboard(chatID, confirm, keyboard); err != nil {
		log.Printf("report confirmation error: %v", err)
	}

	if b.adminID != "" {
		adminText := fmt.Sprintf("⚠️ **New report!**\n👤 %s\n📝 %s", user.Name, text)
		if err := b.tg.SendText(b.adminID, adminText); err != nil {
			log.Printf("report admin notice failed: %v", err)
		}
	}
	return nil
}

// filePhotoReport сохраняет фотообращение: выбирается самый крупный вариант
// фотографии, ссылка на файл кладется в обращение, а сама фотография
// пересылается администратору с той же подписью.
func (b *Bot) filePhotoReport(ctx context.Context, chatID string, msg *tgbotapi.Message, user *TelegramUser) error {
	caption := msg.Caption
	if caption == "" {
		caption = "Photo report"
	}

	largest := msg.Photo[0]
	for _, photo := range msg.Photo[1:] {
		if photo.FileSize > largest.FileSize {
			largest = photo
		}
	}

	photoURL, err := b.tg.FileURL(largest.FileID)
	if err != nil {
		photoURL = ""
	}

	report := &Report{
		Title:          fmt.Sprintf("Photo Report from %s", user.Name),
		Description:    caption,
		TelegramUserID: user.ID,
		State:          ReportStateNew,
		PhotoURL:       photoURL,
	}
	if err := b.store.CreateReport(ctx, report); err != nil {
		return err
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Main Menu", "menu")),
	)
	confirm := "✅ **Photo report sent!**\n\nThe administrator will review it."
	if err := b.tg.SendKeyboard(chatID, confirm, keyboard); err != nil {
		log.Printf("photo report confirmation error: %v", err)
	}

	if b.adminID != "" {
		adminText := fmt.Sprintf("📸 **New photo report!**\n👤 %s\n📝 %s", user.Name, caption)
		if err := b.tg.SendText(b.adminID, adminText); err != nil {
			log.Printf("photo report admin notice failed: %v", err)
		}
		if err := b.tg.SendPhoto(b.adminID, largest.FileID, adminText); err != nil {
			log.Printf("photo forward to admin failed: %v", err)
		}
	}
	return nil
}

// askExecutionDay отправляет запрос дня выполнения с принудительным ответом.
// Ответ пользователя намеренно не связывается обратно с задачей.
func (b *Bot) askExecutionDay(chatID string, taskID int) {
	text := "🗓️ Please enter the day you can complete the task (e.g., '2025-08-15' or 'Friday')!"
	if err := b.tg.SendForceReply(chatID, text); err != nil {
		log.Printf("execution day request for task %d failed: %v", taskID, err)
	}
}

// shorten обрезает строку до limit символов с многоточием.
func shorten(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// orNone возвращает имя пользователя или заглушку none.
func orNone(username string) string {
	if username == "" {
		return "none"
	}
	return username
}
