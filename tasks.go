package main

import (
	"context"
	"log"
	"strings"
	"time"
)

// Validate проверяет инварианты задачи перед записью в хранилище.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errTitleRequired
	}
	if t.Progress < 0 || t.Progress > 100 {
		return errProgressRange
	}
	if t.Deadline != nil && t.StartedAt != nil && t.Deadline.Before(*t.StartedAt) {
		return errDeadlineBeforeStart
	}
	return nil
}

// Start переводит задачу из черновика в работу и ставит отметку времени начала.
func (t *Task) Start(now time.Time) error {
	if t.State != TaskStateDraft {
		return errStartNotDraft
	}
	t.State = TaskStateInProgress
	t.StartedAt = &now
	return nil
}

// Complete завершает задачу, выставляет прогресс 100 и время завершения.
func (t *Task) Complete(now time.Time) error {
	if t.State != TaskStateDraft && t.State != TaskStateInProgress {
		return errCompleteWrongState
	}
	t.State = TaskStateCompleted
	t.CompletedAt = &now
	t.Progress = 100
	return nil
}

// Cancel отменяет задачу. Завершенные задачи отменить нельзя.
func (t *Task) Cancel() error {
	if t.State == TaskStateCompleted {
		return errCancelCompleted
	}
	t.State = TaskStateCancelled
	return nil
}

// ResetToDraft возвращает задачу в черновик и сбрасывает отметки выполнения.
func (t *Task) ResetToDraft() error {
	if t.State == TaskStateCancelled {
		return errResetCancelled
	}
	t.State = TaskStateDraft
	t.StartedAt = nil
	t.CompletedAt = nil
	t.Progress = 0
	return nil
}

// TaskService выполняет операции над задачами и рассылает уведомления о переходах.
// Подавление уведомления задается явным параметром notify, а не неявным контекстом.
type TaskService struct {
	store    Store
	notifier *Notifier
}

// NewTaskService создает сервис задач поверх хранилища и рассыльщика уведомлений.
func NewTaskService(store Store, notifier *Notifier) *TaskService {
	return &TaskService{store: store, notifier: notifier}
}

// QuickTaskInput описывает поля быстрого создания задачи.
type QuickTaskInput struct {
	Title          string
	Description    string
	TelegramUserID *int
	VehicleID      *int
	Priority       int
	Deadline       *time.Time
}

// Create проверяет и сохраняет новую задачу, при notify уведомляя исполнителя.
func (s *TaskService) Create(ctx context.Context, task *Task, notify bool) error {
	if task.State == "" {
		task.State = TaskStateDraft
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return err
	}
	if notify {
		s.notify(ctx, task.ID, "created")
	}
	return nil
}

// QuickCreate создает задачу в один шаг и сразу уведомляет исполнителя.
func (s *TaskService) QuickCreate(ctx context.Context, input QuickTaskInput) (*Task, error) {
	task := &Task{
		Title:          input.Title,
		Description:    input.Description,
		State:          TaskStateDraft,
		Priority:       input.Priority,
		TelegramUserID: input.TelegramUserID,
		VehicleID:      input.VehicleID,
		Deadline:       input.Deadline,
	}
	if err := s.Create(ctx, task, true); err != nil {
		return nil, err
	}
	return task, nil
}

// Start запускает задачу по идентификатору.
func (s *TaskService) Start(ctx context.Context, taskID int, notify bool) (*Task, error) {
	return s.transition(ctx, taskID, notify, "started", func(task *Task) error {
		return task.Start(time.Now())
	})
}

// Complete завершает задачу по идентификатору.
func (s *TaskService) Complete(ctx context.Context, taskID int, notify bool) (*Task, error) {
	return s.transition(ctx, taskID, notify, "completed", func(task *Task) error {
		return task.Complete(time.Now())
	})
}

// Cancel отменяет задачу по идентификатору.
func (s *TaskService) Cancel(ctx context.Context, taskID int, notify bool) (*Task, error) {
	return s.transition(ctx, taskID, notify, "cancelled", func(task *Task) error {
		return task.Cancel()
	})
}

// Reset возвращает задачу в черновик. Уведомление при сбросе не отправляется.
func (s *TaskService) Reset(ctx context.Context, taskID int) (*Task, error) {
	return s.transition(ctx, taskID, false, "", func(task *Task) error {
		return task.ResetToDraft()
	})
}

// Assign назначает задачу пользователю Telegram и при notify уведомляет его.
func (s *TaskService) Assign(ctx context.Context, taskID int, userID *int, notify bool) (*Task, error) {
	task, err := s.store.TaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errTaskNotFound
	}
	task.TelegramUserID = userID
	task.TelegramUser = nil
	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	if notify && userID != nil {
		s.notify(ctx, task.ID, "updated")
	}
	return task, nil
}

// UpdateProgress меняет прогресс задачи с проверкой диапазона, без уведомления.
func (s *TaskService) UpdateProgress(ctx context.Context, taskID int, progress float64) (*Task, error) {
	task, err := s.store.TaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errTaskNotFound
	}
	prev := task.Progress
	task.Progress = progress
	if err := task.Validate(); err != nil {
		task.Progress = prev
		return nil, err
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// transition загружает задачу, применяет переход и сохраняет результат.
func (s *TaskService) transition(ctx context.Context, taskID int, notify bool, event string, apply func(*Task) error) (*Task, error) {
	task, err := s.store.TaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errTaskNotFound
	}
	if err := apply(task); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		return nil, err
	}
	if notify && event != "" {
		s.notify(ctx, task.ID, event)
	}
	return task, nil
}

// notify перечитывает задачу со связями и отправляет уведомление о событии.
// Ошибка доставки логируется и не прерывает выполненную мутацию.
func (s *TaskService) notify(ctx context.Context, taskID int, event string) {
	task, err := s.store.TaskByID(ctx, taskID)
	if err != nil || task == nil {
		log.Printf("cannot reload task %d for notification: %v", taskID, err)
		return
	}
	s.notifier.NotifyTask(task, event)
	task.NotificationSent = true
	if err := s.store.SaveTask(ctx, task); err != nil {
		log.Printf("cannot mark notification sent for task %d: %v", taskID, err)
	}
}
