package storage

import (
	"context"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// LedgerEntries returns the recorded firings for a period, newest first.
func (s *GormStorage) LedgerEntries(ctx context.Context, periodID uint) ([]core.LedgerEntry, error) {
	var entries []core.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("schedule_period_id = ?", periodID).
		Order("notify_at DESC").
		Find(&entries).Error
	return entries, err
}

// LedgerCounts returns the number of recorded firings per notification type
// with notify_at at or after since.
func (s *GormStorage) LedgerCounts(ctx context.Context, since time.Time) (map[core.NotificationType]int64, error) {
	type row struct {
		Type  core.NotificationType
		Count int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&core.LedgerEntry{}).
		Select("type, count(*) as count").
		Where("notify_at >= ?", since.UTC()).
		Group("type").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[core.NotificationType]int64, len(rows))
	for _, r := range rows {
		counts[r.Type] = r.Count
	}
	return counts, nil
}

// Notifications returns the database notifications of a target, newest first.
func (s *GormStorage) Notifications(ctx context.Context, target core.Target, unreadOnly bool, limit int) ([]core.DatabaseNotification, error) {
	if limit <= 0 {
		limit = 50
	}
	q := s.db.WithContext(ctx).
		Where("notifiable_type = ? AND notifiable_id = ?", target.Type, target.ID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var out []core.DatabaseNotification
	err := q.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// MarkRead sets read_at on a database notification. It reports whether an
// unread notification was updated.
func (s *GormStorage) MarkRead(ctx context.Context, id string, at time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&core.DatabaseNotification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at)
	return result.RowsAffected > 0, result.Error
}
