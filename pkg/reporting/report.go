// Package reporting aggregates an owner's recorded activities into a
// CSRD-style scope 1/2/3 emissions report. Reports are derived on demand
// and never stored.
package reporting

import "time"

// Report is a generated emissions report. All masses are kg CO2e.
type Report struct {
	ReportID        string          `json:"reportId"`
	ReportingPeriod Period          `json:"reportingPeriod"`
	Organization    Organization    `json:"organization"`
	Scope1          Scope1Emissions `json:"scope1Emissions"`
	Scope2          Scope2Emissions `json:"scope2Emissions"`
	Scope3          Scope3Emissions `json:"scope3Emissions"`
	TotalEmissions  float64         `json:"totalEmissions"`
	ActivityCount   int             `json:"activityCount"`
	Methodology     string          `json:"methodology"`
	Assurance       string          `json:"assurance"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// Period is the inclusive activity timestamp range a report covers.
type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Organization identifies the reporting owner.
type Organization struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// Scope1Emissions are direct emissions.
type Scope1Emissions struct {
	Total     float64 `json:"total"`
	Breakdown struct {
		Energy    float64 `json:"energy"`
		Transport float64 `json:"transport"`
	} `json:"breakdown"`
}

// Scope2Emissions are energy-indirect emissions.
type Scope2Emissions struct {
	Total     float64 `json:"total"`
	Breakdown struct {
		Electricity float64 `json:"electricity"`
		Heat        float64 `json:"heat"`
	} `json:"breakdown"`
}

// Scope3Emissions are other value-chain emissions.
type Scope3Emissions struct {
	Total     float64 `json:"total"`
	Breakdown struct {
		Transport float64 `json:"transport"`
		Materials float64 `json:"materials"`
	} `json:"breakdown"`
}
