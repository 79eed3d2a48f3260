package activity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// Calculator is the CO2e computation the service depends on.
// Satisfied by *calculation.Calculator.
type Calculator interface {
	ComputeEnergy(ctx context.Context, kwh float64, energyType, region string, at time.Time) (float64, error)
	ComputeTransport(ctx context.Context, tkm float64, mode, region string, at time.Time) (float64, error)
}

// SubmissionObserver is notified after an activity is recorded.
type SubmissionObserver interface {
	ObserveActivity(t carbon.ActivityType, co2eKg float64)
}

// EnergySubmission is an energy consumption report.
type EnergySubmission struct {
	KWh         float64
	EnergyType  string
	Region      string
	Timestamp   time.Time
	Description string
}

// TransportSubmission is a freight transport report.
type TransportSubmission struct {
	TonneKm       float64
	TransportMode string
	Region        string
	Timestamp     time.Time
	Description   string
}

// Service computes and records activities on behalf of an owner.
type Service struct {
	calc     Calculator
	ledger   *Ledger
	observer SubmissionObserver
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithObserver reports recorded activities to o.
func WithObserver(o SubmissionObserver) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service.
func NewService(calc Calculator, ledger *Ledger, opts ...ServiceOption) *Service {
	s := &Service{calc: calc, ledger: ledger, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitEnergyActivity computes the CO2e of sub with the factor valid at
// sub.Timestamp and records it. Nothing is stored when the computation
// fails.
func (s *Service) SubmitEnergyActivity(ctx context.Context, ownerID string, sub EnergySubmission) (*carbon.Activity, error) {
	if !carbon.IsEnergyType(sub.EnergyType) {
		return nil, carbon.InvalidInputf("energyType must be one of %s", strings.Join(carbon.EnergyTypes(), ", "))
	}
	if err := validateCommon(ownerID, sub.Timestamp); err != nil {
		return nil, err
	}

	co2e, err := s.calc.ComputeEnergy(ctx, sub.KWh, sub.EnergyType, sub.Region, sub.Timestamp)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, ownerID, &carbon.Activity{
		Type:              carbon.ActivityTypeEnergy,
		Quantity:          sub.KWh,
		Unit:              carbon.UnitKWh,
		Category:          carbon.NormalizeCategory(sub.EnergyType),
		Region:            normalizeRegion(sub.Region),
		Description:       sub.Description,
		ActivityTimestamp: sub.Timestamp,
		CalculatedCO2e:    co2e,
	})
}

// SubmitTransportActivity computes the CO2e of sub with the factor valid
// at sub.Timestamp and records it.
func (s *Service) SubmitTransportActivity(ctx context.Context, ownerID string, sub TransportSubmission) (*carbon.Activity, error) {
	if !carbon.IsTransportMode(sub.TransportMode) {
		return nil, carbon.InvalidInputf("transportMode must be one of %s", strings.Join(carbon.TransportModes(), ", "))
	}
	if err := validateCommon(ownerID, sub.Timestamp); err != nil {
		return nil, err
	}

	co2e, err := s.calc.ComputeTransport(ctx, sub.TonneKm, sub.TransportMode, sub.Region, sub.Timestamp)
	if err != nil {
		return nil, err
	}

	return s.record(ctx, ownerID, &carbon.Activity{
		Type:              carbon.ActivityTypeTransport,
		Quantity:          sub.TonneKm,
		Unit:              carbon.UnitTKm,
		Category:          carbon.NormalizeCategory(sub.TransportMode),
		Region:            normalizeRegion(sub.Region),
		Description:       sub.Description,
		ActivityTimestamp: sub.Timestamp,
		CalculatedCO2e:    co2e,
	})
}

// GetActivities returns a page of the owner's activities, newest first.
func (s *Service) GetActivities(ctx context.Context, ownerID string, pageSize int, pageToken string) ([]carbon.Activity, string, int, error) {
	return s.ledger.ListByOwner(ctx, ownerID, pageSize, pageToken)
}

// GetActivity returns one of the owner's activities.
func (s *Service) GetActivity(ctx context.Context, ownerID, id string) (*carbon.Activity, error) {
	return s.ledger.FindByID(ctx, ownerID, id)
}

func (s *Service) record(ctx context.Context, ownerID string, a *carbon.Activity) (*carbon.Activity, error) {
	if err := s.ledger.Record(ctx, ownerID, a); err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.ObserveActivity(a.Type, a.CalculatedCO2e)
	}
	s.logger.Debug("activity recorded", "id", a.ID, "owner", ownerID, "type", a.Type, "category", a.Category, "co2eKg", a.CalculatedCO2e)
	return a, nil
}

func validateCommon(ownerID string, ts time.Time) error {
	if ownerID == "" {
		return carbon.ErrUnauthenticated
	}
	if ts.IsZero() {
		return carbon.InvalidInputf("timestamp is required")
	}
	return nil
}

func normalizeRegion(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}
