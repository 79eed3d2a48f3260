// Package passport issues digital product passports carrying a product's
// carbon footprint.
package passport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Store provides database operations for passports.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the passports table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&carbon.Passport{})
}

// Create inserts p, assigning its ID.
func (s *Store) Create(ctx context.Context, p *carbon.Passport) error {
	p.ID = uuid.New().String()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create passport: %w", err)
	}
	return nil
}

// Get returns the owner's passport with the given ID. Passports of other
// owners are reported as carbon.ErrPassportNotFound.
func (s *Store) Get(ctx context.Context, ownerID, id string) (*carbon.Passport, error) {
	var p carbon.Passport
	if err := s.db.WithContext(ctx).First(&p, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("passport %s: %w", id, carbon.ErrPassportNotFound)
		}
		return nil, fmt.Errorf("get passport: %w", err)
	}
	return &p, nil
}

// ListByOwner returns the owner's passports, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]carbon.Passport, error) {
	var records []carbon.Passport
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list passports: %w", err)
	}
	return records, nil
}
