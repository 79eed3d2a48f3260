package factors

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/greenstamp/greenstamp-api/pkg/carbon"
)

//go:embed defaults.yaml
var defaultFactorsYAML []byte

const seedDateLayout = "2006-01-02"

// yamlFactor represents a factor entry in the YAML seed file.
type yamlFactor struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	Category  string  `yaml:"category"`
	Region    string  `yaml:"region"`
	Factor    float64 `yaml:"factor"`
	Unit      string  `yaml:"unit"`
	Source    string  `yaml:"source,omitempty"`
	ValidFrom string  `yaml:"validFrom"`
	ValidTo   string  `yaml:"validTo,omitempty"`
	Inactive  bool    `yaml:"inactive,omitempty"`
}

type yamlFactorFile struct {
	Factors []yamlFactor `yaml:"factors"`
}

// DefaultFactors returns the embedded default factor set.
func DefaultFactors() ([]carbon.EmissionFactor, error) {
	return ParseFactors(defaultFactorsYAML)
}

// ParseFactors parses a YAML factor file.
func ParseFactors(data []byte) ([]carbon.EmissionFactor, error) {
	var file yamlFactorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse factor YAML: %w", err)
	}

	out := make([]carbon.EmissionFactor, 0, len(file.Factors))
	for i, item := range file.Factors {
		f, err := item.toFactor()
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, item.Name, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (y yamlFactor) toFactor() (carbon.EmissionFactor, error) {
	t, err := carbon.ParseFactorType(y.Type)
	if err != nil {
		return carbon.EmissionFactor{}, err
	}
	if y.Category == "" || y.Region == "" {
		return carbon.EmissionFactor{}, fmt.Errorf("fields 'category' and 'region' are required")
	}
	if y.Factor < 0 {
		return carbon.EmissionFactor{}, fmt.Errorf("factor must be non-negative, got %v", y.Factor)
	}
	from, err := time.Parse(seedDateLayout, y.ValidFrom)
	if err != nil {
		return carbon.EmissionFactor{}, fmt.Errorf("invalid validFrom: %w", err)
	}

	f := carbon.EmissionFactor{
		Name:        y.Name,
		Type:        t,
		Category:    carbon.NormalizeCategory(y.Category),
		Region:      NormalizeRegion(y.Region),
		FactorValue: y.Factor,
		Unit:        y.Unit,
		Source:      y.Source,
		ValidFrom:   from,
		Active:      !y.Inactive,
	}
	if y.ValidTo != "" {
		to, err := time.Parse(seedDateLayout, y.ValidTo)
		if err != nil {
			return carbon.EmissionFactor{}, fmt.Errorf("invalid validTo: %w", err)
		}
		f.ValidTo = &to
	}
	return f, nil
}

// Seed inserts every factor whose (type, category, region) key has no
// stored factor. Existing keys are left untouched so administrative edits
// survive restarts. Returns the number of factors created.
func Seed(ctx context.Context, store *FactorStore, factors []carbon.EmissionFactor, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	created := 0
	for i := range factors {
		f := factors[i]
		exists, err := store.Exists(ctx, f.Type, f.Category, f.Region)
		if err != nil {
			return created, err
		}
		if exists {
			logger.Debug("emission factor already exists", "name", f.Name, "type", f.Type, "category", f.Category, "region", f.Region)
			continue
		}
		if err := store.Create(ctx, &f); err != nil {
			return created, err
		}
		created++
		logger.Info("created emission factor", "name", f.Name, "type", f.Type, "category", f.Category, "region", f.Region)
	}
	return created, nil
}
