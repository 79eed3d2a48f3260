package calculation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

type stubResolver struct {
	mu      sync.Mutex
	values  map[string]float64
	err     error
	lastKey string
	lastAt  time.Time
	calls   int
}

func (s *stubResolver) Resolve(_ context.Context, t carbon.FactorType, category, region string, at time.Time) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastKey = string(t) + "/" + category + "/" + region
	s.lastAt = at
	if s.err != nil {
		return 0, s.err
	}
	v, ok := s.values[string(t)+"/"+category]
	if !ok {
		return 0, &carbon.FactorNotFoundError{Type: t, Category: category, Region: region, DefaultRegion: "EU"}
	}
	return v, nil
}

// mul keeps expected values in float64 arithmetic; constant expressions
// are evaluated exactly.
func mul(a, b float64) float64 { return a * b }

func newStub() *stubResolver {
	return &stubResolver{values: map[string]float64{
		"energy/electricity": 0.233,
		"transport/road":     0.158,
		"material/steel":     1.85,
	}}
}

func TestComputeEnergy_ExactProduct(t *testing.T) {
	stub := newStub()
	calc := NewCalculator(stub)
	at := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

	got, err := calc.ComputeEnergy(context.Background(), 1000, "electricity", "EU", at)
	require.NoError(t, err)
	assert.Equal(t, mul(1000, 0.233), got)
	assert.Equal(t, "energy/electricity/EU", stub.lastKey)
	assert.Equal(t, at, stub.lastAt, "factor is resolved at the activity timestamp")
}

func TestComputeTransportAndMaterial(t *testing.T) {
	calc := NewCalculator(newStub())
	ctx := context.Background()
	at := time.Now()

	got, err := calc.ComputeTransport(ctx, 250, "road", "DE", at)
	require.NoError(t, err)
	assert.Equal(t, mul(250, 0.158), got)

	got, err = calc.ComputeMaterial(ctx, 12.5, "steel", "EU", at)
	require.NoError(t, err)
	assert.Equal(t, mul(12.5, 1.85), got)

	got, err = calc.ComputeEnergy(ctx, 0, "electricity", "EU", at)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestCompute_InvalidQuantity(t *testing.T) {
	tests := []struct {
		name string
		q    float64
	}{
		{"negative", -1},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub()
			_, err := NewCalculator(stub).ComputeEnergy(context.Background(), tt.q, "electricity", "EU", time.Now())
			assert.ErrorIs(t, err, carbon.ErrInvalidInput)
			assert.Zero(t, stub.calls, "invalid input must not reach the resolver")
		})
	}
}

func TestCompute_FactorNotFoundPropagates(t *testing.T) {
	_, err := NewCalculator(newStub()).ComputeTransport(context.Background(), 10, "hyperloop", "DE", time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, carbon.ErrFactorNotFound)

	var nf *carbon.FactorNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "hyperloop", nf.Category)
}

func TestCompute_StorageErrorUnmodified(t *testing.T) {
	boom := errors.New("db down")
	stub := newStub()
	stub.err = boom

	_, err := NewCalculator(stub).ComputeEnergy(context.Background(), 1, "electricity", "EU", time.Now())
	assert.Same(t, boom, err)
}

func TestCalculator_ConcurrentUse(t *testing.T) {
	calc := NewCalculator(newStub())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := calc.ComputeEnergy(context.Background(), float64(n), "electricity", "EU", time.Now())
			assert.NoError(t, err)
			assert.Equal(t, mul(float64(n), 0.233), got)
		}(i)
	}
	wg.Wait()
}
