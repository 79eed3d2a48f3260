package reporting

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// Policy holds the methodology constants applied when aggregating scopes.
// Scope 2 is split into electricity and heat by fixed shares rather than
// derived from activity data, and scope 3 materials is a fixed amount
// until a materials pipeline exists.
type Policy struct {
	ElectricityShare float64
	HeatShare        float64
	Scope3Materials  float64
	Methodology      string
	Assurance        string
}

// DefaultPolicy returns the 80/20 electricity/heat split with no scope 3
// materials.
func DefaultPolicy() Policy {
	return Policy{
		ElectricityShare: 0.8,
		HeatShare:        0.2,
		Scope3Materials:  0,
		Methodology:      "GreenStamp API - EU Emission Factors",
		Assurance:        "Self-declared",
	}
}

// PolicyFromEnv loads the policy from environment variables.
// GREENSTAMP_REPORT_ELECTRICITY_SHARE, GREENSTAMP_REPORT_HEAT_SHARE, GREENSTAMP_REPORT_ASSURANCE
func PolicyFromEnv() (Policy, error) {
	p := DefaultPolicy()

	if v := os.Getenv("GREENSTAMP_REPORT_ELECTRICITY_SHARE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("GREENSTAMP_REPORT_ELECTRICITY_SHARE: %w", err)
		}
		p.ElectricityShare = f
	}
	if v := os.Getenv("GREENSTAMP_REPORT_HEAT_SHARE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("GREENSTAMP_REPORT_HEAT_SHARE: %w", err)
		}
		p.HeatShare = f
	}
	if v := os.Getenv("GREENSTAMP_REPORT_ASSURANCE"); v != "" {
		p.Assurance = v
	}

	return p, p.Validate()
}

// Validate checks that the scope 2 shares are non-negative and sum to 1.
func (p Policy) Validate() error {
	if p.ElectricityShare < 0 || p.HeatShare < 0 {
		return fmt.Errorf("scope 2 shares must be non-negative (electricity=%v, heat=%v)", p.ElectricityShare, p.HeatShare)
	}
	if math.Abs(p.ElectricityShare+p.HeatShare-1) > 1e-9 {
		return fmt.Errorf("scope 2 shares must sum to 1, got %v", p.ElectricityShare+p.HeatShare)
	}
	if p.Scope3Materials < 0 {
		return fmt.Errorf("scope 3 materials must be non-negative, got %v", p.Scope3Materials)
	}
	return nil
}
