package main

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store описывает операции хранилища, нужные боту и HTTP API.
type Store interface {
	// Пользователи.
	UserByTelegramID(ctx context.Context, telegramID string) (*TelegramUser, error)
	CreateUser(ctx context.Context, user *TelegramUser) error
	CountUsers(ctx context.Context) (active int64, admins int64, err error)

	// Задачи.
	TaskByID(ctx context.Context, id int) (*Task, error)
	CreateTask(ctx context.Context, task *Task) error
	SaveTask(ctx context.Context, task *Task) error
	ListTasks(ctx context.Context) ([]Task, error)
	ActiveTasksForUser(ctx context.Context, userID int) ([]Task, error)
	CountTasks(ctx context.Context) (total int64, active int64, err error)
	CountActiveTasksForVehicle(ctx context.Context, vehicleID int) (int64, error)

	// Транспорт.
	VehicleByID(ctx context.Context, id int) (*Vehicle, error)
	CreateVehicle(ctx context.Context, vehicle *Vehicle) error
	ListVehicles(ctx context.Context) ([]Vehicle, error)

	// Обращения.
	CreateReport(ctx context.Context, report *Report) error
	ReportByID(ctx context.Context, id int) (*Report, error)
	SaveReport(ctx context.Context, report *Report) error
	ListReports(ctx context.Context) ([]Report, error)

	// Служебное состояние бота.
	LastUpdateID(ctx context.Context) (int, error)
	SetLastUpdateID(ctx context.Context, updateID int) error

	// Transact выполняет fn в одной транзакции хранилища.
	Transact(ctx context.Context, fn func(Store) error) error
}

// taskStates, считающиеся активными в выборках и счетчиках.
var activeTaskStates = []string{TaskStateDraft, TaskStateInProgress}

// GormStore управляет хранением записей в PostgreSQL через GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore создает подключение к базе данных и выполняет миграции.
func NewGormStore(databaseURL string) (*GormStore, error) {
	if databaseURL == "" {
		return nil, errMissingDatabaseURL
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(context.Background()).AutoMigrate(
		&TelegramUser{}, &Vehicle{}, &Task{}, &Report{}, &BotSettings{},
	); err != nil {
		return nil, err
	}

	return &GormStore{db: db}, nil
}

// Close закрывает соединение с базой данных.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UserByTelegramID ищет пользователя по внешнему идентификатору Telegram.
func (s *GormStore) UserByTelegramID(ctx context.Context, telegramID string) (*TelegramUser, error) {
	var user TelegramUser
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser сохраняет нового пользователя Telegram.
func (s *GormStore) CreateUser(ctx context.Context, user *TelegramUser) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// CountUsers возвращает количество активных пользователей и администраторов.
func (s *GormStore) CountUsers(ctx context.Context) (int64, int64, error) {
	var active, admins int64
	if err := s.db.WithContext(ctx).Model(&TelegramUser{}).Where("active = ?", true).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).Model(&TelegramUser{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
		return 0, 0, err
	}
	return active, admins, nil
}

// TaskByID возвращает задачу со связанными пользователем и транспортом.
func (s *GormStore) TaskByID(ctx context.Context, id int) (*Task, error) {
	var task Task
	err := s.db.WithContext(ctx).
		Preload("TelegramUser").
		Preload("Vehicle").
		First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask сохраняет новую задачу.
func (s *GormStore) CreateTask(ctx context.Context, task *Task) error {
	return s.db.WithContext(ctx).Create(task).Error
}

// SaveTask записывает все поля задачи.
func (s *GormStore) SaveTask(ctx context.Context, task *Task) error {
	return s.db.WithContext(ctx).Save(task).Error
}

// ListTasks возвращает все задачи в порядке приоритета и свежести.
func (s *GormStore) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := s.db.WithContext(ctx).
		Preload("TelegramUser").
		Preload("Vehicle").
		Order("priority desc, created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ActiveTasksForUser возвращает незавершенные задачи пользователя.
func (s *GormStore) ActiveTasksForUser(ctx context.Context, userID int) ([]Task, error) {
	var tasks []Task
	err := s.db.WithContext(ctx).
		Preload("Vehicle").
		Where("telegram_user_id = ? AND state IN ?", userID, activeTaskStates).
		Order("priority desc, created_at desc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountTasks возвращает общее и активное количество задач.
func (s *GormStore) CountTasks(ctx context.Context) (int64, int64, error) {
	var total, active int64
	if err := s.db.WithContext(ctx).Model(&Task{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).Model(&Task{}).Where("state IN ?", activeTaskStates).Count(&active).Error; err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

// CountActiveTasksForVehicle считает незавершенные задачи по транспорту.
func (s *GormStore) CountActiveTasksForVehicle(ctx context.Context, vehicleID int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Task{}).
		Where("vehicle_id = ? AND state IN ?", vehicleID, activeTaskStates).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// VehicleByID возвращает транспортное средство по идентификатору.
func (s *GormStore) VehicleByID(ctx context.Context, id int) (*Vehicle, error) {
	var vehicle Vehicle
	err := s.db.WithContext(ctx).First(&vehicle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// CreateVehicle сохраняет новое транспортное средство.
func (s *GormStore) CreateVehicle(ctx context.Context, vehicle *Vehicle) error {
	return s.db.WithContext(ctx).Create(vehicle).Error
}

// ListVehicles возвращает все транспортные средства.
func (s *GormStore) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	var vehicles []Vehicle
	if err := s.db.WithContext(ctx).Order("name asc").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// CreateReport сохраняет новое обращение пользователя.
func (s *GormStore) CreateReport(ctx context.Context, report *Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

// ReportByID возвращает обращение по идентификатору.
func (s *GormStore) ReportByID(ctx context.Context, id int) (*Report, error) {
	var report Report
	err := s.db.WithContext(ctx).Preload("TelegramUser").First(&report, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// SaveReport записывает все поля обращения.
func (s *GormStore) SaveReport(ctx context.Context, report *Report) error {
	return s.db.WithContext(ctx).Save(report).Error
}

// ListReports возвращает обращения от новых к старым.
func (s *GormStore) ListReports(ctx context.Context) ([]Report, error) {
	var reports []Report
	err := s.db.WithContext(ctx).
		Preload("TelegramUser").
		Order("created_at desc").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// LastUpdateID возвращает сохраненное смещение опроса.
func (s *GormStore) LastUpdateID(ctx context.Context) (int, error) {
	settings, err := s.settings(ctx)
	if err != nil {
		return 0, err
	}
	return settings.LastUpdateID, nil
}

// SetLastUpdateID сохраняет смещение опроса после обработанного обновления.
func (s *GormStore) SetLastUpdateID(ctx context.Context, updateID int) error {
	settings, err := s.settings(ctx)
	if err != nil {
		return err
	}
	settings.LastUpdateID = updateID
	return s.db.WithContext(ctx).Save(settings).Error
}

// settings возвращает единственную строку служебного состояния, создавая ее при необходимости.
func (s *GormStore) settings(ctx context.Context) (*BotSettings, error) {
	var settings BotSettings
	err := s.db.WithContext(ctx).FirstOrCreate(&settings, BotSettings{ID: 1}).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Transact выполняет fn в транзакции базы данных.
func (s *GormStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
