// Package carbon holds the domain vocabulary shared by the GreenStamp
// services: emission factors, activities, owners, passports and the error
// taxonomy returned by every core operation.
package carbon

import (
	"time"
)

// FactorType classifies what an emission factor applies to.
type FactorType string

const (
	FactorTypeEnergy    FactorType = "energy"
	FactorTypeTransport FactorType = "transport"
	FactorTypeMaterial  FactorType = "material"
)

// ActivityType is the declared kind of a submitted activity.
type ActivityType string

const (
	ActivityTypeEnergy    ActivityType = "energy"
	ActivityTypeTransport ActivityType = "transport"
)

// Units recorded on activities.
const (
	UnitKWh = "kWh"
	UnitTKm = "t-km"
	UnitKg  = "kg"
)

// EmissionFactor is the GORM model for a versioned emission factor.
// FactorValue is kg CO2e per Unit. A nil ValidTo means open-ended.
type EmissionFactor struct {
	ID          string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	Name        string     `gorm:"column:name;not null"`
	Type        FactorType `gorm:"column:type;index:idx_factor_lookup,priority:1;not null"`
	Category    string     `gorm:"column:category;index:idx_factor_lookup,priority:2;not null"`
	Region      string     `gorm:"column:region;index:idx_factor_lookup,priority:3;not null"`
	FactorValue float64    `gorm:"column:factor_value;not null"`
	Unit        string     `gorm:"column:unit;not null"`
	Source      string     `gorm:"column:source"`
	ValidFrom   time.Time  `gorm:"column:valid_from;index:idx_factor_lookup,priority:4;not null"`
	ValidTo     *time.Time `gorm:"column:valid_to"`
	Active      bool       `gorm:"column:active;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (EmissionFactor) TableName() string { return "emission_factors" }

// CoversInstant reports whether the factor is active and its validity window
// contains at. Both bounds are inclusive.
func (f *EmissionFactor) CoversInstant(at time.Time) bool {
	if !f.Active || at.Before(f.ValidFrom) {
		return false
	}
	return f.ValidTo == nil || !at.After(*f.ValidTo)
}

// Activity is the GORM model for a recorded, CO2e-annotated activity.
// CalculatedCO2e is written once at submission and never updated.
type Activity struct {
	ID                string       `gorm:"primaryKey;column:id;type:varchar(36)"`
	OwnerID           string       `gorm:"column:owner_id;index:idx_activity_owner_ts,priority:1;index:idx_activity_owner_created,priority:1;not null"`
	Type              ActivityType `gorm:"column:type;not null"`
	Quantity          float64      `gorm:"column:quantity;not null"`
	Unit              string       `gorm:"column:unit;not null"`
	Category          string       `gorm:"column:category;not null"`
	Region            string       `gorm:"column:region"`
	Description       string       `gorm:"column:description"`
	ActivityTimestamp time.Time    `gorm:"column:activity_timestamp;index:idx_activity_owner_ts,priority:2;not null"`
	CalculatedCO2e    float64      `gorm:"column:calculated_co2e;not null"`
	CreatedAt         time.Time    `gorm:"column:created_at;index:idx_activity_owner_created,priority:2;not null"`
}

// TableName returns the GORM table name.
func (Activity) TableName() string { return "activities" }

// Owner is the organization account that submits activities.
type Owner struct {
	ID               string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	Email            string    `gorm:"column:email;uniqueIndex:idx_owner_email;not null"`
	OrganizationName string    `gorm:"column:organization_name;not null"`
	Active           bool      `gorm:"column:active;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (Owner) TableName() string { return "owners" }

// Passport is a digital product passport issued by an owner.
type Passport struct {
	ID                string          `gorm:"primaryKey;column:id;type:varchar(36)"`
	OwnerID           string          `gorm:"column:owner_id;index:idx_passport_owner,priority:1;not null"`
	ProductID         string          `gorm:"column:product_id;not null"`
	ProductName       string          `gorm:"column:product_name;not null"`
	Manufacturer      string          `gorm:"column:manufacturer;not null"`
	Materials         JSONStringSlice `gorm:"column:materials;type:text"`
	CarbonFootprint   float64         `gorm:"column:carbon_footprint;not null"`
	ManufacturingDate string          `gorm:"column:manufacturing_date"`
	ProductURL        string          `gorm:"column:product_url"`
	CreatedAt         time.Time       `gorm:"column:created_at;index:idx_passport_owner,priority:2;autoCreateTime"`
}

// TableName returns the GORM table name.
func (Passport) TableName() string { return "passports" }
