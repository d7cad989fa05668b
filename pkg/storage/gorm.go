// Package storage provides storage implementations for the zap package.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// GormStorage implements core.Storage using GORM.
type GormStorage struct {
	db *gorm.DB
}

var _ core.Storage = (*GormStorage)(nil)

// NewGormStorage creates a new GORM-backed storage.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// DB returns the underlying connection.
func (s *GormStorage) DB() *gorm.DB {
	return s.db
}

// IsSQLite reports whether the connection uses the SQLite dialect.
func (s *GormStorage) IsSQLite() bool {
	return s.db.Dialector.Name() == "sqlite"
}

// Migrate creates the necessary tables.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&core.Schedule{},
		&core.SchedulePeriod{},
		&core.LedgerEntry{},
		&core.DatabaseNotification{},
	)
}

// ActiveSchedules returns active schedules with their periods preloaded.
// Recurrence and date bounds are evaluated by the caller.
func (s *GormStorage) ActiveSchedules(ctx context.Context) ([]*core.Schedule, error) {
	var schedules []*core.Schedule
	err := s.db.WithContext(ctx).
		Preload("Periods", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_time ASC, id ASC")
		}).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// SaveSchedule creates or updates a schedule and its periods.
func (s *GormStorage) SaveSchedule(ctx context.Context, schedule *core.Schedule) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(schedule).Error
}

// GetSchedule loads a schedule with its periods.
func (s *GormStorage) GetSchedule(ctx context.Context, id uint) (*core.Schedule, error) {
	var schedule core.Schedule
	err := s.db.WithContext(ctx).Preload("Periods").First(&schedule, id).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// AlreadySent reports whether the (period, type, notify-at) triple is recorded.
func (s *GormStorage) AlreadySent(ctx context.Context, periodID uint, typ core.NotificationType, notifyAt time.Time) (bool, error) {
	key := core.NewLedgerKey(periodID, typ, notifyAt)
	var count int64
	err := s.db.WithContext(ctx).
		Model(&core.LedgerEntry{}).
		Where("schedule_period_id = ? AND type = ? AND notify_at = ?", key.PeriodID, key.Type, key.NotifyAt).
		Count(&count).Error
	if err != nil {
		return false, &core.LedgerError{Op: "lookup", Key: key, Err: err}
	}
	return count > 0, nil
}

// RecordSent inserts the triple. A duplicate is suppressed by the unique
// index and reported as core.ErrAlreadyRecorded.
func (s *GormStorage) RecordSent(ctx context.Context, periodID uint, typ core.NotificationType, notifyAt, sentAt time.Time) error {
	created, err := s.insert(ctx, core.NewLedgerKey(periodID, typ, notifyAt), sentAt)
	if err != nil {
		return err
	}
	if !created {
		return core.ErrAlreadyRecorded
	}
	return nil
}

// Claim inserts the triple if absent and reports whether this call created it.
// Concurrent claimers of the same triple see exactly one true.
func (s *GormStorage) Claim(ctx context.Context, periodID uint, typ core.NotificationType, notifyAt, sentAt time.Time) (bool, error) {
	return s.insert(ctx, core.NewLedgerKey(periodID, typ, notifyAt), sentAt)
}

func (s *GormStorage) insert(ctx context.Context, key core.LedgerKey, sentAt time.Time) (bool, error) {
	entry := &core.LedgerEntry{
		SchedulePeriodID: key.PeriodID,
		Type:             key.Type,
		NotifyAt:         key.NotifyAt,
		CreatedAt:        sentAt.UTC(),
		UpdatedAt:        sentAt.UTC(),
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "schedule_period_id"}, {Name: "type"}, {Name: "notify_at"}},
			DoNothing: true,
		}).
		Create(entry)
	if result.Error != nil {
		return false, &core.LedgerError{Op: "record", Key: key, Err: result.Error}
	}
	return result.RowsAffected > 0, nil
}

// SaveNotification stores a database-channel notification.
func (s *GormStorage) SaveNotification(ctx context.Context, n *core.DatabaseNotification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(n).Error
}
