package core

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType distinguishes pre-period and post-period notifications.
type NotificationType string

const (
	NotifyBefore NotificationType = "before"
	NotifyAfter  NotificationType = "after"
)

// NotificationTypes lists every notification type in tick order.
var NotificationTypes = []NotificationType{NotifyBefore, NotifyAfter}

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	return t == NotifyBefore || t == NotifyAfter
}

// LedgerEntry records that a (period, type, notify-at) triple was handled.
// Entries are created once and never updated.
type LedgerEntry struct {
	ID               uint             `gorm:"primaryKey"`
	SchedulePeriodID uint             `gorm:"not null;uniqueIndex:idx_schedule_notification,priority:1"`
	Type             NotificationType `gorm:"size:10;not null;uniqueIndex:idx_schedule_notification,priority:2"`
	NotifyAt         time.Time        `gorm:"not null;uniqueIndex:idx_schedule_notification,priority:3"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime"`
}

// TableName keeps the ledger table name stable.
func (LedgerEntry) TableName() string { return "schedule_notifications" }

// LedgerKey is the identity of a ledger entry.
type LedgerKey struct {
	PeriodID uint
	Type     NotificationType
	NotifyAt time.Time
}

// NewLedgerKey builds a key with notifyAt normalized to a UTC minute.
func NewLedgerKey(periodID uint, typ NotificationType, notifyAt time.Time) LedgerKey {
	return LedgerKey{PeriodID: periodID, Type: typ, NotifyAt: TruncateMinute(notifyAt).UTC()}
}

// TruncateMinute zeroes seconds and sub-second precision.
func TruncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}

// DatabaseNotification is a notification stored for in-app display.
type DatabaseNotification struct {
	ID             string            `gorm:"primaryKey;size:36"`
	Type           string            `gorm:"size:255;not null"`
	NotifiableType string            `gorm:"index:idx_notifiable;size:255;not null"`
	NotifiableID   string            `gorm:"index:idx_notifiable;size:64;not null"`
	Data           datatypes.JSONMap `gorm:"not null"`
	ReadAt         *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// TableName keeps the notifications table name stable.
func (DatabaseNotification) TableName() string { return "notifications" }
