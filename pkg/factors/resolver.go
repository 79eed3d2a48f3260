package factors

import (
	"context"
	"time"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

// FactorFinder is the persistence capability the Resolver needs. It is
// satisfied by *FactorStore.
type FactorFinder interface {
	FindApplicable(ctx context.Context, q FactorQuery) ([]carbon.EmissionFactor, error)
}

// Lookup outcomes reported to a LookupObserver.
const (
	LookupRegion   = "region"
	LookupFallback = "fallback"
	LookupMiss     = "miss"
)

// LookupObserver receives the outcome of every resolution.
type LookupObserver interface {
	ObserveFactorLookup(factorType carbon.FactorType, outcome string)
}

// Resolver answers point-in-time emission factor lookups with a
// region-specific then default-region fallback.
type Resolver struct {
	finder        FactorFinder
	defaultRegion string
	observer      LookupObserver
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookupObserver reports lookup outcomes to o.
func WithLookupObserver(o LookupObserver) ResolverOption {
	return func(r *Resolver) { r.observer = o }
}

// NewResolver creates a Resolver over finder. A nil cfg uses the defaults.
func NewResolver(finder FactorFinder, cfg *ResolverConfig, opts ...ResolverOption) *Resolver {
	if cfg == nil {
		cfg = DefaultResolverConfig()
	}
	r := &Resolver{
		finder:        finder,
		defaultRegion: NormalizeRegion(cfg.DefaultRegion),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegion returns the fallback region.
func (r *Resolver) DefaultRegion() string { return r.defaultRegion }

// Resolve returns the factor value applicable to (t, category, region) at
// the given instant.
func (r *Resolver) Resolve(ctx context.Context, t carbon.FactorType, category, region string, at time.Time) (float64, error) {
	f, err := r.ResolveFactor(ctx, t, category, region, at)
	if err != nil {
		return 0, err
	}
	return f.FactorValue, nil
}

// ResolveFactor returns the full factor record applicable at the given
// instant. Among overlapping matches the latest validFrom wins. When the
// requested region has no match the lookup is repeated once for the default
// region; if that fails too a *carbon.FactorNotFoundError is returned.
// Storage errors are returned unmodified.
func (r *Resolver) ResolveFactor(ctx context.Context, t carbon.FactorType, category, region string, at time.Time) (*carbon.EmissionFactor, error) {
	category = carbon.NormalizeCategory(category)
	region = NormalizeRegion(region)
	if region == "" {
		region = r.defaultRegion
	}

	f, err := r.lookup(ctx, t, category, region, at)
	if err != nil {
		return nil, err
	}
	if f != nil {
		r.observe(t, LookupRegion)
		return f, nil
	}

	if region != r.defaultRegion {
		f, err = r.lookup(ctx, t, category, r.defaultRegion, at)
		if err != nil {
			return nil, err
		}
		if f != nil {
			r.observe(t, LookupFallback)
			return f, nil
		}
	}

	r.observe(t, LookupMiss)
	return nil, &carbon.FactorNotFoundError{
		Type:          t,
		Category:      category,
		Region:        region,
		DefaultRegion: r.defaultRegion,
	}
}

func (r *Resolver) lookup(ctx context.Context, t carbon.FactorType, category, region string, at time.Time) (*carbon.EmissionFactor, error) {
	candidates, err := r.finder.FindApplicable(ctx, FactorQuery{
		Type:     t,
		Category: category,
		Region:   region,
		At:       at,
	})
	if err != nil {
		return nil, err
	}
	return latestCovering(candidates, at), nil
}

// latestCovering picks the candidate covering at with the latest ValidFrom.
// Finder results are re-checked so the rule does not depend on the store's
// ordering.
func latestCovering(candidates []carbon.EmissionFactor, at time.Time) *carbon.EmissionFactor {
	var best *carbon.EmissionFactor
	for i := range candidates {
		c := &candidates[i]
		if !c.CoversInstant(at) {
			continue
		}
		if best == nil || c.ValidFrom.After(best.ValidFrom) {
			best = c
		}
	}
	return best
}

func (r *Resolver) observe(t carbon.FactorType, outcome string) {
	if r.observer != nil {
		r.observer.ObserveFactorLookup(t, outcome)
	}
}
