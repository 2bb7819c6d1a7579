package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// MetricConfig holds the normalization bounds for a single metric.
// The valid range [MinValue, MaxValue] must contain the ideal band
// [IdealMin, IdealMax]; [Validate] enforces this at load time and
// [Normalize] re-checks the ordering at call time.
type MetricConfig struct {
	MinValue float64 `json:"min_value"`
	MaxValue float64 `json:"max_value"`
	IdealMin float64 `json:"ideal_min"`
	IdealMax float64 `json:"ideal_max"`
}

// Parameters is the engine configuration: per-metric bounds and the mapping
// of dimension name to the ordered list of metric names contributing to it.
// Loaded once at startup; immutable thereafter.
type Parameters struct {
	Metrics    map[string]MetricConfig `json:"metrics"`
	Dimensions map[string][]string     `json:"dimensions"`
}

// LoadParameters reads and validates the JSON parameters file at path.
func LoadParameters(path string) (*Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scoring: open parameters %q: %w", path, err)
	}
	defer f.Close()

	p, err := LoadParametersFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("scoring: parse parameters %q: %w", path, err)
	}
	return p, nil
}

// LoadParametersFromReader decodes a JSON parameters document from r and
// validates the result. Useful in tests where parameters are constructed
// from string literals.
func LoadParametersFromReader(r io.Reader) (*Parameters, error) {
	p := &Parameters{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that every metric's bounds are coherent and that every
// dimension references only configured metrics. It returns a joined error
// listing all failures found.
func (p *Parameters) Validate() error {
	var errs []error

	for name, cfg := range p.Metrics {
		if cfg.MinValue >= cfg.MaxValue {
			errs = append(errs, fmt.Errorf("metrics[%s]: min_value (%g) must be < max_value (%g)", name, cfg.MinValue, cfg.MaxValue))
		}
		if cfg.IdealMin > cfg.IdealMax {
			errs = append(errs, fmt.Errorf("metrics[%s]: ideal_min (%g) must be <= ideal_max (%g)", name, cfg.IdealMin, cfg.IdealMax))
		}
		if cfg.IdealMin < cfg.MinValue || cfg.IdealMax > cfg.MaxValue {
			errs = append(errs, fmt.Errorf("metrics[%s]: ideal band [%g, %g] must lie within [%g, %g]", name, cfg.IdealMin, cfg.IdealMax, cfg.MinValue, cfg.MaxValue))
		}
	}

	for dim, metricNames := range p.Dimensions {
		for _, m := range metricNames {
			if _, ok := p.Metrics[m]; !ok {
				errs = append(errs, fmt.Errorf("dimensions[%s]: metric %q is not configured under metrics", dim, m))
			}
		}
	}

	return errors.Join(errs...)
}
