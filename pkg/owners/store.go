// Package owners manages the organization accounts that own activities,
// passports and reports.
package owners

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Store provides database operations for owners.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the owners table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&carbon.Owner{})
}

// CreateRequest describes a new owner. ID is optional; when set it must
// match the identity the owner authenticates as.
type CreateRequest struct {
	ID               string
	Email            string
	OrganizationName string
}

// Create registers an owner. Emails are unique, compared case-insensitively.
func (s *Store) Create(ctx context.Context, req CreateRequest) (*carbon.Owner, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, carbon.InvalidInputf("invalid email %q", req.Email)
	}
	org := strings.TrimSpace(req.OrganizationName)
	if org == "" {
		return nil, carbon.InvalidInputf("organizationName is required")
	}

	existing, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, carbon.InvalidInputf("email %s is already registered", email)
	}

	owner := &carbon.Owner{
		ID:               strings.TrimSpace(req.ID),
		Email:            email,
		OrganizationName: org,
		Active:           true,
	}
	if owner.ID == "" {
		owner.ID = uuid.New().String()
	} else if found, err := s.Get(ctx, owner.ID); err != nil {
		return nil, err
	} else if found != nil {
		return nil, carbon.InvalidInputf("owner %s already exists", owner.ID)
	}

	if err := s.db.WithContext(ctx).Create(owner).Error; err != nil {
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return owner, nil
}

// Get retrieves an owner by ID. Returns nil, nil if no record exists.
func (s *Store) Get(ctx context.Context, id string) (*carbon.Owner, error) {
	var owner carbon.Owner
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return &owner, nil
}

// GetByEmail retrieves an owner by email. Returns nil, nil if no record exists.
func (s *Store) GetByEmail(ctx context.Context, email string) (*carbon.Owner, error) {
	var owner carbon.Owner
	err := s.db.WithContext(ctx).First(&owner, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get owner by email: %w", err)
	}
	return &owner, nil
}
