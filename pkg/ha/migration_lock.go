package ha

import (
	"context"
	"fmt"
	"hash/crc32"
	"time"

	"gorm.io/gorm"
)

// MigrationLocker is the interface for acquiring a lock around database
// migrations to prevent concurrent AutoMigrate calls from multiple replicas.
type MigrationLocker interface {
	// WithLock executes fn while holding the migration lock.
	// It blocks until the lock is acquired, then releases it after fn returns.
	WithLock(ctx context.Context, fn func() error) error
}

// NewMigrationLocker creates a MigrationLocker appropriate for the database
// dialect. PostgreSQL uses advisory locks; other databases use a table-based
// fallback. The lock table is created immediately for the fallback strategy.
// A nil db or a disabled lock runs fn directly.
func NewMigrationLocker(db *gorm.DB, cfg *HAConfig) MigrationLocker {
	if cfg == nil {
		cfg = DefaultHAConfig()
	}
	if db == nil || !cfg.MigrationLockEnabled {
		return noopMigrationLock{}
	}
	if db.Dialector.Name() == "postgres" {
		return &pgAdvisoryLock{
			db:     db,
			lockID: int64(crc32.ChecksumIEEE([]byte(cfg.LockName))),
		}
	}
	// Create the lock table up front so concurrent first callers never hit
	// "no such table".
	_ = db.AutoMigrate(&migrationLockRecord{})
	return &fallbackMigrationLock{db: db, cfg: cfg}
}

type noopMigrationLock struct{}

func (noopMigrationLock) WithLock(_ context.Context, fn func() error) error {
	return fn()
}

// pgAdvisoryLock uses PostgreSQL session advisory locks. Lock and unlock run
// on one pinned connection since advisory locks belong to the session.
type pgAdvisoryLock struct {
	db     *gorm.DB
	lockID int64
}

func (l *pgAdvisoryLock) WithLock(ctx context.Context, fn func() error) error {
	return l.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := conn.Exec("SELECT pg_advisory_lock(?)", l.lockID).Error; err != nil {
			return fmt.Errorf("failed to acquire migration advisory lock: %w", err)
		}
		defer func() {
			_ = conn.WithContext(context.WithoutCancel(ctx)).Exec("SELECT pg_advisory_unlock(?)", l.lockID).Error
		}()
		return fn()
	})
}

// migrationLockRecord is the table-based lock row for non-PostgreSQL databases.
type migrationLockRecord struct {
	ID       string    `gorm:"primaryKey;column:id"`
	LockedAt time.Time `gorm:"column:locked_at"`
	LockedBy string    `gorm:"column:locked_by"`
}

func (migrationLockRecord) TableName() string { return "migration_lock" }

// fallbackMigrationLock uses a database table for locking on SQLite and
// MySQL. It relies on INSERT-or-fail on the primary key, with stale lock
// cleanup for crash recovery.
type fallbackMigrationLock struct {
	db  *gorm.DB
	cfg *HAConfig
}

func (l *fallbackMigrationLock) WithLock(ctx context.Context, fn func() error) error {
	lockRow := migrationLockRecord{
		ID:       l.cfg.LockName,
		LockedBy: l.cfg.Identity,
	}

	retries := l.cfg.LockRetries
	if retries <= 0 {
		retries = 1
	}

	for i := 0; ; i++ {
		l.db.WithContext(ctx).
			Where("id = ? AND locked_at < ?", lockRow.ID, time.Now().UTC().Add(-l.cfg.StaleLockAge)).
			Delete(&migrationLockRecord{})

		lockRow.LockedAt = time.Now().UTC()
		result := l.db.WithContext(ctx).Create(&lockRow)
		if result.Error == nil {
			break
		}
		if i == retries-1 {
			return fmt.Errorf("failed to acquire migration lock after %d retries: %w", retries, result.Error)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.cfg.LockRetryInterval):
		}
	}

	defer func() {
		l.db.WithContext(context.WithoutCancel(ctx)).Where("id = ?", lockRow.ID).Delete(&migrationLockRecord{})
	}()

	return fn()
}

// Migrate runs every migration in order under the lock, stopping at the
// first failure.
func Migrate(ctx context.Context, locker MigrationLocker, migrations ...func() error) error {
	return locker.WithLock(ctx, func() error {
		for _, m := range migrations {
			if err := m(); err != nil {
				return err
			}
		}
		return nil
	})
}
