// Package activity records energy and transport activities, annotated with
// their CO2e mass at submission time, and serves owner-scoped reads.
package activity

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Ledger persists activities. Records are append-only.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedger creates a new Ledger.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// AutoMigrate creates or updates the activities table.
func (l *Ledger) AutoMigrate() error {
	return l.db.AutoMigrate(&carbon.Activity{})
}

// Record stores a for ownerID, assigning its ID and CreatedAt.
// CalculatedCO2e is stored as given.
func (l *Ledger) Record(ctx context.Context, ownerID string, a *carbon.Activity) error {
	a.ID = uuid.New().String()
	a.OwnerID = ownerID
	a.ActivityTimestamp = a.ActivityTimestamp.UTC()
	a.CreatedAt = l.now().UTC()
	if err := l.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// QueryByOwnerAndRange returns the owner's activities with start <=
// activityTimestamp <= end, oldest first with ID as tie-break.
func (l *Ledger) QueryByOwnerAndRange(ctx context.Context, ownerID string, start, end time.Time) ([]carbon.Activity, error) {
	var records []carbon.Activity
	err := l.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("activity_timestamp >= ? AND activity_timestamp <= ?", start.UTC(), end.UTC()).
		Order("activity_timestamp ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return records, nil
}

// FindByID returns the owner's activity with the given ID. Activities of
// other owners are reported as carbon.ErrActivityNotFound.
func (l *Ledger) FindByID(ctx context.Context, ownerID, id string) (*carbon.Activity, error) {
	var record carbon.Activity
	err := l.db.WithContext(ctx).First(&record, "id = ? AND owner_id = ?", id, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("activity %s: %w", id, carbon.ErrActivityNotFound)
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &record, nil
}

// ListByOwner returns a page of the owner's activities, newest first, the
// token for the next page ("" on the last page) and the owner's total count.
func (l *Ledger) ListByOwner(ctx context.Context, ownerID string, pageSize int, pageToken string) ([]carbon.Activity, string, int, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	base := func() *gorm.DB {
		return l.db.WithContext(ctx).Model(&carbon.Activity{}).Where("owner_id = ?", ownerID)
	}

	var totalSize int64
	if err := base().Count(&totalSize).Error; err != nil {
		return nil, "", 0, fmt.Errorf("count activities: %w", err)
	}

	query := base().Order("created_at DESC").Order("id DESC").Limit(pageSize + 1)
	if pageToken != "" {
		createdAt, id, err := decodePageToken(pageToken)
		if err != nil {
			return nil, "", 0, err
		}
		query = query.Where("(created_at < ? OR (created_at = ? AND id < ?))", createdAt, createdAt, id)
	}

	var records []carbon.Activity
	if err := query.Find(&records).Error; err != nil {
		return nil, "", 0, fmt.Errorf("list activities: %w", err)
	}

	var nextToken string
	if len(records) > pageSize {
		last := records[pageSize-1]
		nextToken = encodePageToken(last.CreatedAt, last.ID)
		records = records[:pageSize]
	}

	return records, nextToken, int(totalSize), nil
}

func encodePageToken(createdAt time.Time, id string) string {
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodePageToken(token string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", carbon.InvalidInputf("invalid page token")
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return time.Time{}, "", carbon.InvalidInputf("invalid page token")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", carbon.InvalidInputf("invalid page token")
	}
	return t.UTC(), id, nil
}
