package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// API описывает HTTP-поверхность: вебхук Telegram и управляющий JSON API.
type API struct {
	store   Store
	tasks   *TaskService
	service *Service
	bot     *Bot
	auth    AuthMiddleware
}

// NewAPI создает API с заданными зависимостями и учетными данными.
func NewAPI(store Store, tasks *TaskService, service *Service, bot *Bot, user, password string) *API {
	return &API{
		store:   store,
		tasks:   tasks,
		service: service,
		bot:     bot,
		auth:    AuthMiddleware{User: user, Password: password},
	}
}

// Handler возвращает http.Handler со всеми маршрутами.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post(webhookPath, a.handleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(a.auth.Wrap)

		r.Get("/tasks", a.handleListTasks)
		r.Post("/tasks", a.handleCreateTask)
		r.Post("/tasks/quick", a.handleQuickTask)
		r.Get("/tasks/{id}", a.handleGetTask)
		r.Post("/tasks/{id}/start", a.taskAction(func(ctx context.Context, id int) (*Task, error) {
			return a.tasks.Start(ctx, id, true)
		}))
		r.Post("/tasks/{id}/complete", a.taskAction(func(ctx context.Context, id int) (*Task, error) {
			return a.tasks.Complete(ctx, id, true)
		}))
		r.Post("/tasks/{id}/cancel", a.taskAction(func(ctx context.Context, id int) (*Task, error) {
			return a.tasks.Cancel(ctx, id, true)
		}))
		r.Post("/tasks/{id}/reset", a.taskAction(func(ctx context.Context, id int) (*Task, error) {
			return a.tasks.Reset(ctx, id)
		}))
		r.Patch("/tasks/{id}/progress", a.handleProgress)
		r.Post("/tasks/{id}/assign", a.handleAssign)

		r.Get("/reports", a.handleListReports)
		r.Post("/reports/{id}/resolve", a.reportAction(ReportStateResolved))
		r.Post("/reports/{id}/close", a.reportAction(ReportStateClosed))

		r.Get("/vehicles", a.handleListVehicles)
		r.Post("/vehicles", a.handleCreateVehicle)

		r.Get("/service", a.handleServiceStatus)
		r.Post("/service/start", a.handleServiceStart)
		r.Post("/service/stop", a.handleServiceStop)
	})

	return r
}

// taskPayload описывает тело запроса создания задачи.
type taskPayload struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       int        `json:"priority"`
	TelegramUserID *int       `json:"telegram_user_id"`
	VehicleID      *int       `json:"vehicle_id"`
	Deadline       *time.Time `json:"deadline"`
}

// handleListTasks возвращает все задачи.
func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.store.ListTasks(r.Context())
	if err != nil {
		http.Error(w, "failed to list tasks", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// handleCreateTask создает задачу и уведомляет исполнителя.
func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeTaskPayload(w, r)
	if !ok {
		return
	}
	task := &Task{
		Title:          payload.Title,
		Description:    payload.Description,
		State:          TaskStateDraft,
		Priority:       payload.Priority,
		TelegramUserID: payload.TelegramUserID,
		VehicleID:      payload.VehicleID,
		Deadline:       payload.Deadline,
	}
	if err := a.tasks.Create(r.Context(), task, true); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleQuickTask создает задачу в один шаг из полей мастера быстрого создания.
func (a *API) handleQuickTask(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeTaskPayload(w, r)
	if !ok {
		return
	}
	task, err := a.tasks.QuickCreate(r.Context(), QuickTaskInput{
		Title:          payload.Title,
		Description:    payload.Description,
		TelegramUserID: payload.TelegramUserID,
		VehicleID:      payload.VehicleID,
		Priority:       payload.Priority,
		Deadline:       payload.Deadline,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleGetTask возвращает задачу по идентификатору.
func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}
	task, err := a.store.TaskByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load task", http.StatusInternalServerError)
		return
	}
	if task == nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// taskAction оборачивает переход жизненного цикла задачи в HTTP-обработчик.
func (a *API) taskAction(apply func(ctx context.Context, id int) (*Task, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idFromURL(w, r)
		if !ok {
			return
		}
		task, err := apply(r.Context(), id)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

// handleProgress обновляет прогресс задачи с проверкой диапазона.
func (a *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}
	var payload struct {
		Progress float64 `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	task, err := a.tasks.UpdateProgress(r.Context(), id, payload.Progress)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleAssign назначает или снимает исполнителя задачи.
func (a *API) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}
	var payload struct {
		TelegramUserID *int `json:"telegram_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	task, err := a.tasks.Assign(r.Context(), id, payload.TelegramUserID, true)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleListReports возвращает обращения пользователей.
func (a *API) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.store.ListReports(r.Context())
	if err != nil {
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// reportAction переводит обращение в заданное состояние.
func (a *API) reportAction(state string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idFromURL(w, r)
		if !ok {
			return
		}
		report, err := a.store.ReportByID(r.Context(), id)
		if err != nil {
			http.Error(w, "failed to load report", http.StatusInternalServerError)
			return
		}
		if report == nil {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		report.State = state
		if err := a.store.SaveReport(r.Context(), report); err != nil {
			http.Error(w, "failed to save report", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// handleListVehicles возвращает все транспортные средства.
func (a *API) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := a.store.ListVehicles(r.Context())
	if err != nil {
		http.Error(w, "failed to list vehicles", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// handleCreateVehicle сохраняет новое транспортное средство.
func (a *API) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string `json:"name"`
		LicensePlate string `json:"license_plate"`
		DriverName   string `json:"driver_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	vehicle := &Vehicle{
		Name:         payload.Name,
		LicensePlate: payload.LicensePlate,
		DriverName:   payload.DriverName,
		Active:       true,
	}
	if err := a.store.CreateVehicle(r.Context(), vehicle); err != nil {
		http.Error(w, "failed to save vehicle", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// handleServiceStatus сообщает состояние службы приема обновлений.
func (a *API) handleServiceStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"running": a.service.Running()})
}

// handleServiceStart запускает службу приема обновлений.
func (a *API) handleServiceStart(w http.ResponseWriter, _ *http.Request) {
	if err := a.service.Start(); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": a.service.Running()})
}

// handleServiceStop останавливает службу приема обновлений.
func (a *API) handleServiceStop(w http.ResponseWriter, _ *http.Request) {
	if err := a.service.Stop(); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": a.service.Running()})
}

// decodeTaskPayload разбирает тело запроса создания задачи.
func decodeTaskPayload(w http.ResponseWriter, r *http.Request) (taskPayload, bool) {
	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return taskPayload{}, false
	}
	payload.Title = strings.TrimSpace(payload.Title)
	return payload, true
}

// idFromURL извлекает числовой идентификатор из пути запроса.
func idFromURL(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// httpError сопоставляет доменную ошибку коду ответа.
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errTitleRequired),
		errors.Is(err, errProgressRange),
		errors.Is(err, errDeadlineBeforeStart),
		errors.Is(err, errStartNotDraft),
		errors.Is(err, errCompleteWrongState),
		errors.Is(err, errCancelCompleted),
		errors.Is(err, errResetCancelled),
		errors.Is(err, errMissingBotToken):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}

// writeJSON сериализует ответ в JSON.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
