package reporting

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// ActivitySource loads an owner's activities with start <= timestamp <= end.
// Satisfied by *activity.Ledger.
type ActivitySource interface {
	QueryByOwnerAndRange(ctx context.Context, ownerID string, start, end time.Time) ([]carbon.Activity, error)
}

// OwnerLookup fetches an owner record, returning nil, nil when it does not
// exist. Satisfied by *owners.Store.
type OwnerLookup interface {
	Get(ctx context.Context, id string) (*carbon.Owner, error)
}

// ReportObserver is notified after each generated report.
type ReportObserver interface {
	ObserveReport(totalEmissions float64, activities int)
}

// Aggregator builds reports from the activity ledger.
type Aggregator struct {
	activities ActivitySource
	owners     OwnerLookup
	policy     Policy
	now        func() time.Time
	observer   ReportObserver
	logger     *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPolicy overrides DefaultPolicy.
func WithPolicy(p Policy) Option { return func(a *Aggregator) { a.policy = p } }

// WithClock sets the source of generatedAt and the report ID timestamp.
func WithClock(now func() time.Time) Option { return func(a *Aggregator) { a.now = now } }

// WithObserver reports generated totals to o.
func WithObserver(o ReportObserver) Option { return func(a *Aggregator) { a.observer = o } }

// WithLogger sets the aggregator logger.
func WithLogger(l *slog.Logger) Option { return func(a *Aggregator) { a.logger = l } }

// NewAggregator creates an Aggregator.
func NewAggregator(activities ActivitySource, owners OwnerLookup, opts ...Option) *Aggregator {
	a := &Aggregator{
		activities: activities,
		owners:     owners,
		policy:     DefaultPolicy(),
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the policy in effect.
func (a *Aggregator) Policy() Policy { return a.policy }

// Generate builds the report for ownerID over [start, end].
//
// Energy activities count toward scope 1 energy and, in full, toward scope
// 2, which is then split by the policy shares. Transport activities count
// toward scope 1 transport and scope 3 transport. The total is the sum of
// the three scope totals, so both activity kinds are counted twice; this is
// the reporting methodology, not an accident.
func (a *Aggregator) Generate(ctx context.Context, ownerID string, start, end time.Time) (*Report, error) {
	if start.After(end) {
		return nil, carbon.InvalidInputf("startDate %s is after endDate %s",
			start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}

	owner, err := a.owners.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, carbon.ErrOwnerNotFound
	}

	activities, err := a.activities.QueryByOwnerAndRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, err
	}

	var energy, transport float64
	for i := range activities {
		switch activities[i].Type {
		case carbon.ActivityTypeEnergy:
			energy += activities[i].CalculatedCO2e
		case carbon.ActivityTypeTransport:
			transport += activities[i].CalculatedCO2e
		}
	}

	generatedAt := a.now().UTC()
	r := &Report{
		ReportID:        ReportID(owner.OrganizationName, generatedAt),
		ReportingPeriod: Period{StartDate: start.UTC(), EndDate: end.UTC()},
		Organization:    Organization{Name: owner.OrganizationName, Identifier: owner.ID},
		ActivityCount:   len(activities),
		Methodology:     a.policy.Methodology,
		Assurance:       a.policy.Assurance,
		GeneratedAt:     generatedAt,
	}

	r.Scope1.Breakdown.Energy = energy
	r.Scope1.Breakdown.Transport = transport
	r.Scope1.Total = energy + transport

	r.Scope2.Breakdown.Electricity = energy * a.policy.ElectricityShare
	r.Scope2.Breakdown.Heat = energy * a.policy.HeatShare
	r.Scope2.Total = energy

	r.Scope3.Breakdown.Transport = transport
	r.Scope3.Breakdown.Materials = a.policy.Scope3Materials
	r.Scope3.Total = transport + a.policy.Scope3Materials

	r.TotalEmissions = r.Scope1.Total + r.Scope2.Total + r.Scope3.Total

	if a.observer != nil {
		a.observer.ObserveReport(r.TotalEmissions, r.ActivityCount)
	}
	a.logger.Debug("report generated", "reportId", r.ReportID, "owner", ownerID, "activities", r.ActivityCount, "totalEmissions", r.TotalEmissions)
	return r, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ReportID returns "CSRD-<organization>-<unix millis>" with each run of
// whitespace in the organization name replaced by a single "-".
func ReportID(organization string, at time.Time) string {
	return "CSRD-" + whitespaceRun.ReplaceAllString(organization, "-") + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
