package factors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// memFinder returns every stored factor matching the key; the Resolver is
// responsible for the validity check.
type memFinder struct {
	factors []carbon.EmissionFactor
	err     error
	calls   []FactorQuery
}

func (m *memFinder) FindApplicable(_ context.Context, q FactorQuery) ([]carbon.EmissionFactor, error) {
	m.calls = append(m.calls, q)
	if m.err != nil {
		return nil, m.err
	}
	var out []carbon.EmissionFactor
	for _, f := range m.factors {
		if f.Type == q.Type && f.Category == q.Category && f.Region == q.Region {
			out = append(out, f)
		}
	}
	return out, nil
}

type countingObserver struct {
	outcomes []string
}

func (c *countingObserver) ObserveFactorLookup(_ carbon.FactorType, outcome string) {
	c.outcomes = append(c.outcomes, outcome)
}

func energyFactor(category, region string, value float64, from time.Time, to *time.Time) carbon.EmissionFactor {
	return *newFactor(category, region, value, from, to)
}

func TestResolve_ExactProductInputs(t *testing.T) {
	finder := &memFinder{factors: []carbon.EmissionFactor{
		energyFactor("electricity", "EU", 0.233, date(2024, 1, 1), nil),
	}}
	r := NewResolver(finder, nil)

	v, err := r.Resolve(context.Background(), carbon.FactorTypeEnergy, "electricity", "EU", date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.233, v)
}

func TestResolve_RegionFallback(t *testing.T) {
	finder := &memFinder{factors: []carbon.EmissionFactor{
		energyFactor("electricity", "EU", 0.233, date(2024, 1, 1), nil),
		energyFactor("electricity", "FR", 0.056, date(2024, 1, 1), nil),
	}}
	obs := &countingObserver{}
	r := NewResolver(finder, nil, WithLookupObserver(obs))
	ctx := context.Background()

	v, err := r.Resolve(ctx, carbon.FactorTypeEnergy, "electricity", "fr", date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.056, v)

	v, err = r.Resolve(ctx, carbon.FactorTypeEnergy, "electricity", "PL", date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.233, v, "unknown region falls back to EU")

	v, err = r.Resolve(ctx, carbon.FactorTypeEnergy, "electricity", "", date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.233, v, "blank region means the default region")

	assert.Equal(t, []string{LookupRegion, LookupFallback, LookupRegion}, obs.outcomes)
}

func TestResolve_OverlapLatestValidFromWins(t *testing.T) {
	finder := &memFinder{factors: []carbon.EmissionFactor{
		energyFactor("gas", "EU", 0.202, date(2024, 1, 1), nil),
		energyFactor("gas", "EU", 0.190, date(2024, 6, 1), nil),
		energyFactor("gas", "EU", 0.150, date(2025, 1, 1), nil),
	}}
	r := NewResolver(finder, nil)
	ctx := context.Background()

	v, err := r.Resolve(ctx, carbon.FactorTypeEnergy, "gas", "EU", date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.202, v)

	v, err = r.Resolve(ctx, carbon.FactorTypeEnergy, "gas", "EU", date(2024, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.190, v)
}

func TestResolve_NotFoundNamesKey(t *testing.T) {
	finder := &memFinder{}
	obs := &countingObserver{}
	r := NewResolver(finder, &ResolverConfig{DefaultRegion: "eu"}, WithLookupObserver(obs))

	_, err := r.Resolve(context.Background(), carbon.FactorTypeTransport, "Hyperloop", "DE", date(2024, 3, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, carbon.ErrFactorNotFound)

	var nf *carbon.FactorNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, carbon.FactorTypeTransport, nf.Type)
	assert.Equal(t, "hyperloop", nf.Category)
	assert.Equal(t, "DE", nf.Region)
	assert.Equal(t, "EU", nf.DefaultRegion)
	assert.Len(t, finder.calls, 2, "requested region then default region")
	assert.Equal(t, []string{LookupMiss}, obs.outcomes)
}

func TestResolve_DefaultRegionQueriedOnce(t *testing.T) {
	finder := &memFinder{}
	r := NewResolver(finder, nil)

	_, err := r.Resolve(context.Background(), carbon.FactorTypeEnergy, "electricity", "EU", date(2024, 3, 1))
	assert.ErrorIs(t, err, carbon.ErrFactorNotFound)
	assert.Len(t, finder.calls, 1)
}

func TestResolve_ExpiredWindowIgnored(t *testing.T) {
	finder := &memFinder{factors: []carbon.EmissionFactor{
		energyFactor("diesel", "EU", 2.68, date(2023, 1, 1), ptr(date(2023, 12, 31))),
	}}
	r := NewResolver(finder, nil)

	_, err := r.Resolve(context.Background(), carbon.FactorTypeEnergy, "diesel", "EU", date(2024, 3, 1))
	assert.ErrorIs(t, err, carbon.ErrFactorNotFound)
}

func TestResolve_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewResolver(&memFinder{err: boom}, nil)

	_, err := r.Resolve(context.Background(), carbon.FactorTypeEnergy, "electricity", "EU", date(2024, 3, 1))
	assert.Same(t, boom, err)
	assert.Equal(t, carbon.CodeInternal, carbon.Code(err))
}

func TestResolve_AgainstStore(t *testing.T) {
	ctx := context.Background()
	store := NewFactorStore(setupTestDB(t))
	require.NoError(t, store.Create(ctx, newFactor("electricity", "EU", 0.233, date(2024, 1, 1), nil)))
	require.NoError(t, store.Create(ctx, newFactor("electricity", "DE", 0.38, date(2024, 1, 1), ptr(date(2024, 6, 30)))))

	r := NewResolver(store, nil)

	v, err := r.Resolve(ctx, carbon.FactorTypeEnergy, "electricity", "DE", date(2024, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.38, v)

	v, err = r.Resolve(ctx, carbon.FactorTypeEnergy, "electricity", "DE", date(2024, 9, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.233, v, "DE window closed, EU fallback applies")
}
