// Package core provides the domain models and interfaces for the zap package.
package core

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScheduleType governs the overlap policy of a schedule.
type ScheduleType string

const (
	TypeAvailability ScheduleType = "availability"
	TypeAppointment  ScheduleType = "appointment"
	TypeBlocked      ScheduleType = "blocked"
	TypeCustom       ScheduleType = "custom"
)

// PreventsOverlaps reports whether schedules of this type may not overlap others.
func (t ScheduleType) PreventsOverlaps() bool {
	return t == TypeAppointment || t == TypeBlocked
}

// Frequency is the recurrence rule of a schedule.
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCron    Frequency = "cron"
)

// Schedule is a recurring time window owned by a schedulable entity.
type Schedule struct {
	ID              uint         `gorm:"primaryKey"`
	Name            string       `gorm:"size:255"`
	Description     string       `gorm:"type:text"`
	SchedulableType string       `gorm:"index:idx_schedulable;size:255;not null"`
	SchedulableID   string       `gorm:"index:idx_schedulable;size:64;not null"`
	ScheduleType    ScheduleType `gorm:"index;size:20;not null"`

	StartDate datatypes.Date  `gorm:"index;not null"`
	EndDate   *datatypes.Date `gorm:"index"`

	IsRecurring     bool
	Frequency       Frequency       `gorm:"size:20"`
	FrequencyConfig FrequencyConfig `gorm:"type:text"`
	Metadata        datatypes.JSONMap
	IsActive        bool `gorm:"index"`

	NotifyBefore            bool
	NotifyAfter             bool
	BeforeNotificationTime  Offsets `gorm:"type:varchar(255)"`
	AfterNotificationTime   Offsets `gorm:"type:varchar(255)"`
	BeforeNotificationClass string  `gorm:"size:255"`
	AfterNotificationClass  string  `gorm:"size:255"`
	BeforeNotificationData  datatypes.JSONMap
	AfterNotificationData   datatypes.JSONMap

	Periods []SchedulePeriod `gorm:"foreignKey:ScheduleID"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// SchedulePeriod is a time-of-day slot of a schedule. It carries no date.
type SchedulePeriod struct {
	ID              uint      `gorm:"primaryKey"`
	ScheduleID      uint      `gorm:"index;not null"`
	StartTime       TimeOfDay `gorm:"type:varchar(8);not null"`
	EndTime         TimeOfDay `gorm:"type:varchar(8);not null"`
	DurationMinutes int
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

// Duration returns the length of the period.
func (p *SchedulePeriod) Duration() time.Duration {
	if p.DurationMinutes > 0 {
		return time.Duration(p.DurationMinutes) * time.Minute
	}
	d := p.EndTime.Sub(p.StartTime)
	if d < 0 {
		d += 24 * time.Hour
	}
	return d
}

// TimeFor returns the period boundary a notification type is anchored to:
// the start for before-notifications, the end for after-notifications.
func (p *SchedulePeriod) TimeFor(typ NotificationType) TimeOfDay {
	if typ == NotifyAfter {
		return p.EndTime
	}
	return p.StartTime
}

// ShouldNotify reports whether notifications of the given type are enabled for
// this schedule under cfg. The global switch overrides the per-schedule flag.
func (s *Schedule) ShouldNotify(typ NotificationType, cfg Config) bool {
	if !cfg.Enabled {
		return false
	}
	switch typ {
	case NotifyBefore:
		return s.NotifyBefore
	case NotifyAfter:
		return s.NotifyAfter
	}
	return false
}

// ShouldNotifyBefore reports whether before-notifications are enabled.
func (s *Schedule) ShouldNotifyBefore(cfg Config) bool { return s.ShouldNotify(NotifyBefore, cfg) }

// ShouldNotifyAfter reports whether after-notifications are enabled.
func (s *Schedule) ShouldNotifyAfter(cfg Config) bool { return s.ShouldNotify(NotifyAfter, cfg) }

// OffsetsFor returns the configured minute offsets for a notification type.
func (s *Schedule) OffsetsFor(typ NotificationType) Offsets {
	if typ == NotifyAfter {
		return s.AfterNotificationTime
	}
	return s.BeforeNotificationTime
}

// NotificationFor returns the registered notification name and stored payload
// for a notification type, and whether the type is switched on for the schedule.
func (s *Schedule) NotificationFor(typ NotificationType) (name string, data map[string]any, enabled bool) {
	switch typ {
	case NotifyBefore:
		return s.BeforeNotificationClass, s.BeforeNotificationData, s.NotifyBefore
	case NotifyAfter:
		return s.AfterNotificationClass, s.AfterNotificationData, s.NotifyAfter
	}
	return "", nil, false
}

// Target returns the addressable owner of the schedule.
func (s *Schedule) Target() Target {
	return Target{Type: s.SchedulableType, ID: s.SchedulableID}
}

// Start returns the first active date.
func (s *Schedule) Start() time.Time {
	return time.Time(s.StartDate)
}

// End returns the last active date and whether the schedule is bounded.
func (s *Schedule) End() (time.Time, bool) {
	if s.EndDate == nil {
		return time.Time{}, false
	}
	return time.Time(*s.EndDate), true
}

// DisplayName returns the schedule name, or a placeholder when unnamed.
func (s *Schedule) DisplayName() string {
	if s.Name == "" {
		return "Unnamed Schedule"
	}
	return s.Name
}
