package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Store provides append-only operations for audit events.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the audit_events table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&Event{})
}

// Append stores an immutable event, assigning its ID and timestamp when
// missing.
func (s *Store) Append(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// Get returns the actor's event with the given ID. Returns nil, nil if no
// such event exists for the actor.
func (s *Store) Get(ctx context.Context, actor, id string) (*Event, error) {
	var e Event
	if err := s.db.WithContext(ctx).First(&e, "id = ? AND actor = ?", id, actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get audit event: %w", err)
	}
	return &e, nil
}

// ListFilter narrows List. Actor is required.
type ListFilter struct {
	Actor        string
	ResourceType string
	Action       string
	Outcome      string
}

// List returns a page of events ordered by created_at DESC (newest first).
// pageToken is an RFC3339 timestamp; events with created_at < pageToken are
// returned.
func (s *Store) List(ctx context.Context, filter ListFilter, pageSize int, pageToken string) ([]Event, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&Event{}).Where("actor = ?", filter.Actor)
		if filter.ResourceType != "" {
			q = q.Where("resource_type = ?", filter.ResourceType)
		}
		if filter.Action != "" {
			q = q.Where("action = ?", filter.Action)
		}
		if filter.Outcome != "" {
			q = q.Where("outcome = ?", filter.Outcome)
		}
		return q
	}

	var totalSize int64
	if err := base().Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count audit events: %w", err)
	}

	query := base().Order("created_at DESC").Order("id DESC").Limit(pageSize + 1)
	if pageToken != "" {
		t, err := time.Parse(time.RFC3339Nano, pageToken)
		if err != nil {
			return nil, "", 0, carbon.InvalidInputf("invalid page token")
		}
		query = query.Where("created_at < ?", t.UTC())
	}

	var records []Event
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list audit events: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		nextToken = records[pageSize-1].CreatedAt.UTC().Format(time.RFC3339Nano)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}

// DeleteOlderThan deletes events created before cutoff, oldest first and at
// most limit of them when limit > 0, and returns how many were removed.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	db := s.db.WithContext(ctx)
	if limit <= 0 {
		result := db.Where("created_at < ?", cutoff.UTC()).Delete(&Event{})
		if result.Error != nil {
			return 0, fmt.Errorf("delete old audit events: %w", result.Error)
		}
		return result.RowsAffected, nil
	}

	var ids []string
	err := db.Model(&Event{}).
		Where("created_at < ?", cutoff.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("select old audit events: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.Where("id IN ?", ids).Delete(&Event{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old audit events: %w", result.Error)
	}
	return result.RowsAffected, nil
}
