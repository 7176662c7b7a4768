package main

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeStore реализует Store в памяти для тестов.
type fakeStore struct {
	mu           sync.Mutex
	users        []*TelegramUser
	tasks        map[int]*Task
	vehicles     map[int]*Vehicle
	reports      []*Report
	lastUpdateID int
	nextID       int

	panicOnTaskLookup bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:    make(map[int]*Task),
		vehicles: make(map[int]*Vehicle),
	}
}

func (s *fakeStore) nextSerial() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) UserByTelegramID(_ context.Context, telegramID string) (*TelegramUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.TelegramID == telegramID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateUser(_ context.Context, user *TelegramUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextSerial()
	clone := *user
	s.users = append(s.users, &clone)
	return nil
}

func (s *fakeStore) CountUsers(context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active, admins int64
	for _, user := range s.users {
		if user.Active {
			active++
		}
		if user.IsAdmin {
			admins++
		}
	}
	return active, admins, nil
}

func (s *fakeStore) TaskByID(_ context.Context, id int) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOnTaskLookup {
		panic("task storage unavailable")
	}
	task, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	clone := *task
	if clone.TelegramUserID != nil {
		for _, user := range s.users {
			if user.ID == *clone.TelegramUserID {
				u := *user
				clone.TelegramUser = &u
			}
		}
	}
	if clone.VehicleID != nil {
		if vehicle, ok := s.vehicles[*clone.VehicleID]; ok {
			v := *vehicle
			clone.Vehicle = &v
		}
	}
	return &clone, nil
}

func (s *fakeStore) CreateTask(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = s.nextSerial()
	clone := *task
	clone.TelegramUser = nil
	clone.Vehicle = nil
	s.tasks[task.ID] = &clone
	return nil
}

func (s *fakeStore) SaveTask(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *task
	clone.TelegramUser = nil
	clone.Vehicle = nil
	s.tasks[task.ID] = &clone
	return nil
}

func (s *fakeStore) ListTasks(context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []Task
	for _, task := range s.tasks {
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func (s *fakeStore) ActiveTasksForUser(ctx context.Context, userID int) ([]Task, error) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.tasks))
	for id, task := range s.tasks {
		if task.TelegramUserID != nil && *task.TelegramUserID == userID &&
			(task.State == TaskStateDraft || task.State == TaskStateInProgress) {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	var tasks []Task
	for _, id := range ids {
		task, err := s.TaskByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

func (s *fakeStore) CountTasks(context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total, active int64
	for _, task := range s.tasks {
		total++
		if task.State == TaskStateDraft || task.State == TaskStateInProgress {
			active++
		}
	}
	return total, active, nil
}

func (s *fakeStore) CountActiveTasksForVehicle(_ context.Context, vehicleID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, task := range s.tasks {
		if task.VehicleID != nil && *task.VehicleID == vehicleID &&
			(task.State == TaskStateDraft || task.State == TaskStateInProgress) {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) VehicleByID(_ context.Context, id int) (*Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, nil
	}
	clone := *vehicle
	return &clone, nil
}

func (s *fakeStore) CreateVehicle(_ context.Context, vehicle *Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle.ID = s.nextSerial()
	clone := *vehicle
	s.vehicles[vehicle.ID] = &clone
	return nil
}

func (s *fakeStore) ListVehicles(context.Context) ([]Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var vehicles []Vehicle
	for _, vehicle := range s.vehicles {
		vehicles = append(vehicles, *vehicle)
	}
	return vehicles, nil
}

func (s *fakeStore) CreateReport(_ context.Context, report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report.ID = s.nextSerial()
	clone := *report
	s.reports = append(s.reports, &clone)
	return nil
}

func (s *fakeStore) ReportByID(_ context.Context, id int) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, report := range s.reports {
		if report.ID == id {
			clone := *report
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SaveReport(_ context.Context, report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.reports {
		if existing.ID == report.ID {
			clone := *report
			s.reports[i] = &clone
			return nil
		}
	}
	clone := *report
	s.reports = append(s.reports, &clone)
	return nil
}

func (s *fakeStore) ListReports(context.Context) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var reports []Report
	for _, report := range s.reports {
		reports = append(reports, *report)
	}
	return reports, nil
}

func (s *fakeStore) LastUpdateID(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdateID, nil
}

func (s *fakeStore) SetLastUpdateID(_ context.Context, updateID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdateID = updateID
	return nil
}

func (s *fakeStore) Transact(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

// userCount возвращает число сохраненных пользователей.
func (s *fakeStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// reportCount возвращает число сохраненных обращений.
func (s *fakeStore) reportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// storedTask возвращает копию задачи как она лежит в хранилище.
func (s *fakeStore) storedTask(id int) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil
	}
	clone := *task
	return &clone
}

// sentMessage описывает один исходящий вызов Telegram в тестах.
type sentMessage struct {
	kind   string // text, keyboard, forcereply, photo, callback
	chatID string
	text   string
	markup tgbotapi.InlineKeyboardMarkup
	fileID string
	alert  bool
}

// fakeSender записывает исходящие сообщения вместо отправки.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeSender) record(msg sentMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeSender) SendText(chatID, text string) error {
	f.record(sentMessage{kind: "text", chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) SendKeyboard(chatID, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	f.record(sentMessage{kind: "keyboard", chatID: chatID, text: text, markup: keyboard})
	return nil
}

func (f *fakeSender) SendForceReply(chatID, text string) error {
	f.record(sentMessage{kind: "forcereply", chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) SendPhoto(chatID, fileID, caption string) error {
	f.record(sentMessage{kind: "photo", chatID: chatID, text: caption, fileID: fileID})
	return nil
}

func (f *fakeSender) AnswerCallback(callbackID, text string, showAlert bool) error {
	f.record(sentMessage{kind: "callback", chatID: callbackID, text: text, alert: showAlert})
	return nil
}

func (f *fakeSender) FileURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

// byKind возвращает записанные вызовы заданного вида.
func (f *fakeSender) byKind(kind string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, msg := range f.sent {
		if msg.kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

// toChat возвращает сообщения и клавиатуры, отправленные в чат.
func (f *fakeSender) toChat(chatID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, msg := range f.sent {
		if msg.chatID == chatID && msg.kind != "callback" {
			out = append(out, msg)
		}
	}
	return out
}

// fakeTransport реализует botTransport для тестов жизненного цикла.
type fakeTransport struct {
	mu             sync.Mutex
	webhookURL     string
	webhookDeleted bool
	batches        [][]tgbotapi.Update
	fetchErr       error
	fetchCalls     int
	sent           []string
}

func (f *fakeTransport) SetWebhook(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhookURL = url
	return nil
}

func (f *fakeTransport) DeleteWebhook() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.webhookDeleted = true
	return nil
}

func (f *fakeTransport) FetchUpdates(int, int) ([]tgbotapi.Update, error) {
	f.mu.Lock()
	f.fetchCalls++
	if f.fetchErr != nil {
		err := f.fetchErr
		f.mu.Unlock()
		return nil, err
	}
	if len(f.batches) == 0 {
		f.mu.Unlock()
		// Имитация паузы длинного опроса, чтобы пустой цикл не крутился вхолостую.
		time.Sleep(time.Millisecond)
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	f.mu.Unlock()
	return batch, nil
}

func (f *fakeTransport) SendText(chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, chatID+": "+text)
	return nil
}

// webhookState возвращает зарегистрированный URL и флаг удаления вебхука.
func (f *fakeTransport) webhookState() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.webhookURL, f.webhookDeleted
}

// sentTexts возвращает копию отправленных через транспорт сообщений.
func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// fakeDispatcher записывает переданные обновления.
type fakeDispatcher struct {
	mu      sync.Mutex
	updates []tgbotapi.Update
}

func (f *fakeDispatcher) HandleUpdate(_ context.Context, update tgbotapi.Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeDispatcher) handled() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}
