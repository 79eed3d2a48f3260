package main

// Response types mirror the server's JSON bodies.

type activity struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Category       string  `json:"category"`
	Region         string  `json:"region,omitempty"`
	Description    string  `json:"description,omitempty"`
	CalculatedCO2e float64 `json:"calculatedCO2e"`
	ActivityDate   string  `json:"activityDate"`
	CreatedAt      string  `json:"createdAt"`
}

type activityList struct {
	Activities    []activity `json:"activities"`
	NextPageToken string     `json:"nextPageToken"`
	TotalSize     int        `json:"totalSize"`
}

type breakdown map[string]float64

type scope struct {
	Total     float64   `json:"total"`
	Breakdown breakdown `json:"breakdown"`
}

type report struct {
	ReportID        string `json:"reportId"`
	ReportingPeriod struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"reportingPeriod"`
	Organization struct {
		Name       string `json:"name"`
		Identifier string `json:"identifier"`
	} `json:"organization"`
	Scope1         scope   `json:"scope1Emissions"`
	Scope2         scope   `json:"scope2Emissions"`
	Scope3         scope   `json:"scope3Emissions"`
	TotalEmissions float64 `json:"totalEmissions"`
	ActivityCount  int     `json:"activityCount"`
	Methodology    string  `json:"methodology"`
	Assurance      string  `json:"assurance"`
	GeneratedAt    string  `json:"generatedAt"`
}

type factor struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Region      string  `json:"region"`
	FactorValue float64 `json:"factorValue"`
	Unit        string  `json:"unit"`
	Source      string  `json:"source,omitempty"`
	ValidFrom   string  `json:"validFrom"`
	ValidTo     string  `json:"validTo,omitempty"`
	Active      bool    `json:"active"`
}

type factorList struct {
	Factors   []factor `json:"factors"`
	TotalSize int      `json:"totalSize"`
}

type resolvedFactor struct {
	Factor          factor `json:"factor"`
	RequestedRegion string `json:"requestedRegion"`
	Fallback        bool   `json:"fallback"`
	At              string `json:"at"`
}

type passport struct {
	ID                string   `json:"id"`
	ProductID         string   `json:"productId"`
	ProductName       string   `json:"productName"`
	Manufacturer      string   `json:"manufacturer"`
	Materials         []string `json:"materials"`
	CarbonFootprint   float64  `json:"carbonFootprint"`
	ManufacturingDate string   `json:"manufacturingDate,omitempty"`
	ProductURL        string   `json:"productUrl,omitempty"`
	CreatedAt         string   `json:"createdAt"`
}

type passportList struct {
	Passports []passport `json:"passports"`
	TotalSize int        `json:"totalSize"`
}

type owner struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	OrganizationName string `json:"organizationName"`
	Active           bool   `json:"active"`
	CreatedAt        string `json:"createdAt"`
}

type auditEvent struct {
	ID           string `json:"id"`
	Actor        string `json:"actor"`
	ResourceType string `json:"resourceType,omitempty"`
	ResourceID   string `json:"resourceId,omitempty"`
	Action       string `json:"action"`
	Outcome      string `json:"outcome"`
	StatusCode   int    `json:"statusCode,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

type auditList struct {
	Events        []auditEvent `json:"events"`
	NextPageToken string       `json:"nextPageToken"`
	TotalSize     int          `json:"totalSize"`
}
