package factors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
	"github.com/greenstamp/greenstamp-api/pkg/filter"
)

// FactorStore provides database operations for emission factors.
type FactorStore struct {
	db *gorm.DB
}

// NewFactorStore creates a new FactorStore.
func NewFactorStore(db *gorm.DB) *FactorStore {
	return &FactorStore{db: db}
}

// AutoMigrate creates or updates the emission_factors table.
func (s *FactorStore) AutoMigrate() error {
	return s.db.AutoMigrate(&carbon.EmissionFactor{})
}

// FactorQuery selects the factors applicable to one lookup key at one instant.
type FactorQuery struct {
	Type     carbon.FactorType
	Category string
	Region   string
	At       time.Time
}

// FindApplicable returns the factors matching
// active AND valid_from <= At AND (valid_to IS NULL OR At <= valid_to)
// for the query's type, category and region, latest valid_from first.
func (s *FactorStore) FindApplicable(ctx context.Context, q FactorQuery) ([]carbon.EmissionFactor, error) {
	at := q.At.UTC()

	var records []carbon.EmissionFactor
	err := s.db.WithContext(ctx).
		Where("type = ? AND category = ? AND region = ?", q.Type, q.Category, q.Region).
		Where("active = ?", true).
		Where("valid_from <= ?", at).
		Where("(valid_to IS NULL OR valid_to >= ?)", at).
		Order("valid_from DESC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find applicable factors: %w", err)
	}
	return records, nil
}

// FilterFields are the fields accepted in a factor filterQuery.
var FilterFields = filter.Fields{
	"name":        {Column: "name", Kind: filter.KindString},
	"type":        {Column: "type", Kind: filter.KindString},
	"category":    {Column: "category", Kind: filter.KindString},
	"region":      {Column: "region", Kind: filter.KindString},
	"factorValue": {Column: "factor_value", Kind: filter.KindNumber},
	"unit":        {Column: "unit", Kind: filter.KindString},
	"source":      {Column: "source", Kind: filter.KindString},
}

// ParseFilterQuery parses and validates a factor filterQuery.
func ParseFilterQuery(query string) (*filter.Expression, error) {
	expr, err := filter.Parse(query)
	if err != nil {
		return nil, err
	}
	if err := expr.Validate(FilterFields); err != nil {
		return nil, err
	}
	return expr, nil
}

// FactorListFilter narrows ListActive. Query must have been validated
// against FilterFields.
type FactorListFilter struct {
	Type     carbon.FactorType
	Category string
	Region   string
	Query    *filter.Expression
}

// ListActive returns the active factors ordered by type, category, region
// and validity start.
func (s *FactorStore) ListActive(ctx context.Context, lf FactorListFilter) ([]carbon.EmissionFactor, error) {
	q := s.db.WithContext(ctx).Model(&carbon.EmissionFactor{}).Where("active = ?", true)
	if lf.Type != "" {
		q = q.Where("type = ?", lf.Type)
	}
	if lf.Category != "" {
		q = q.Where("category = ?", lf.Category)
	}
	if lf.Region != "" {
		q = q.Where("region = ?", lf.Region)
	}
	q = q.Scopes(lf.Query.Scope(FilterFields))

	var records []carbon.EmissionFactor
	if err := q.Order("type ASC, category ASC, region ASC, valid_from ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list factors: %w", err)
	}
	return records, nil
}

// Get retrieves a factor by ID. Returns nil, nil if no record exists.
func (s *FactorStore) Get(ctx context.Context, id string) (*carbon.EmissionFactor, error) {
	var record carbon.EmissionFactor
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get factor: %w", err)
	}
	return &record, nil
}

// Create inserts a factor, assigning an ID when missing and normalizing the
// lookup key.
func (s *FactorStore) Create(ctx context.Context, f *carbon.EmissionFactor) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.Category = carbon.NormalizeCategory(f.Category)
	f.Region = NormalizeRegion(f.Region)
	f.ValidFrom = f.ValidFrom.UTC()
	if f.ValidTo != nil {
		to := f.ValidTo.UTC()
		f.ValidTo = &to
	}
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("create factor: %w", err)
	}
	return nil
}

// Exists reports whether any factor, active or not, is stored for the key.
func (s *FactorStore) Exists(ctx context.Context, t carbon.FactorType, category, region string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&carbon.EmissionFactor{}).
		Where("type = ? AND category = ? AND region = ?", t, category, region).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check factor: %w", err)
	}
	return count > 0, nil
}

// FactorUpdate carries the mutable fields of a factor. Nil fields are left
// unchanged. ClearValidTo makes the factor open-ended.
type FactorUpdate struct {
	Name         *string
	FactorValue  *float64
	Source       *string
	ValidFrom    *time.Time
	ValidTo      *time.Time
	ClearValidTo bool
	Active       *bool
}

// Update applies an administrative change to a factor and returns the
// stored result. Returns nil, nil if the factor does not exist.
func (s *FactorStore) Update(ctx context.Context, id string, u FactorUpdate) (*carbon.EmissionFactor, error) {
	if u.FactorValue != nil && *u.FactorValue < 0 {
		return nil, carbon.InvalidInputf("factor value must be non-negative, got %v", *u.FactorValue)
	}

	updates := map[string]any{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.FactorValue != nil {
		updates["factor_value"] = *u.FactorValue
	}
	if u.Source != nil {
		updates["source"] = *u.Source
	}
	if u.ValidFrom != nil {
		updates["valid_from"] = u.ValidFrom.UTC()
	}
	if u.ClearValidTo {
		updates["valid_to"] = nil
	} else if u.ValidTo != nil {
		updates["valid_to"] = u.ValidTo.UTC()
	}
	if u.Active != nil {
		updates["active"] = *u.Active
	}

	existing, err := s.Get(ctx, id)
	if err != nil || existing == nil {
		return existing, err
	}
	if len(updates) == 0 {
		return existing, nil
	}

	from, to := existing.ValidFrom, existing.ValidTo
	if u.ValidFrom != nil {
		from = *u.ValidFrom
	}
	if u.ClearValidTo {
		to = nil
	} else if u.ValidTo != nil {
		to = u.ValidTo
	}
	if to != nil && to.Before(from) {
		return nil, carbon.InvalidInputf("validTo %s precedes validFrom %s", to.UTC().Format(time.RFC3339), from.UTC().Format(time.RFC3339))
	}

	if err := s.db.WithContext(ctx).Model(&carbon.EmissionFactor{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update factor: %w", err)
	}
	return s.Get(ctx, id)
}
