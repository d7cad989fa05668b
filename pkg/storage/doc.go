// Package storage provides storage implementations for schedules and the
// notification ledger.
//
// This package includes:
//   - GormStorage: a GORM-based core.Storage supporting SQLite and PostgreSQL
//   - Connection pool helpers (ConfigurePool and preset PoolConfigs)
//
// The ledger's composite unique index on (schedule_period_id, type, notify_at)
// turns a concurrent double insert into a suppressed duplicate, so Claim can
// be used as an atomic check-and-insert.
//
// Most users should import the root package github.com/cpiprint/zap-notify
// which provides NewGormStorage() to create storage instances.
package storage
