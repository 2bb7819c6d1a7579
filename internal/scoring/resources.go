package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
)

// ErrResourceUnavailable is returned (wrapped with the resource name) when a
// required engine resource failed to load or was never configured.
var ErrResourceUnavailable = errors.New("scoring: resource unavailable")

// TaggerLoader constructs the POS tagging capability. Loading is expensive
// (a language model is read into memory), so the [Resources] cache invokes it
// at most once per successful load.
type TaggerLoader func(ctx context.Context) (pos.Tagger, error)

// ResourceConfig tells a [Resources] cache where to load each resource from.
type ResourceConfig struct {
	// ParametersPath is the JSON metric/dimension configuration file.
	ParametersPath string

	// FillerWordsPath is the JSON filler-word list file.
	FillerWordsPath string

	// TaggerLoader constructs the POS tagger. Nil disables the lexical
	// variability metric; all other metrics proceed normally.
	TaggerLoader TaggerLoader
}

// ResourceOption pre-populates a resource, bypassing its loader. Used by
// tests to substitute a fresh cache per run without touching the filesystem.
type ResourceOption func(*Resources)

// WithParameters pre-populates the metric configuration.
func WithParameters(p *Parameters) ResourceOption {
	return func(r *Resources) { r.params = p }
}

// WithFillerWords pre-populates the filler-word set.
func WithFillerWords(s FillerWordSet) ResourceOption {
	return func(r *Resources) { r.fillers = s }
}

// WithTagger pre-populates the POS tagging capability.
func WithTagger(t pos.Tagger) ResourceOption {
	return func(r *Resources) { r.tagger = t }
}

// Resources is the process-wide cache of the engine's three load-once
// resources: the metric configuration, the filler-word set, and the optional
// POS tagging capability.
//
// [Resources.EnsureLoaded] is idempotent and safe to call concurrently;
// initialization happens at most once per resource and concurrent callers
// observe either "not yet loaded" or "loaded", never a partially-constructed
// resource. After initialization the cache is read-only.
type Resources struct {
	mu  sync.Mutex
	cfg ResourceConfig

	params  *Parameters
	fillers FillerWordSet
	tagger  pos.Tagger
}

// NewResources creates a cache that loads from cfg. Nothing is loaded yet;
// call [Resources.EnsureLoaded] to warm it eagerly at startup, or let the
// first computation trigger the load lazily.
func NewResources(cfg ResourceConfig, opts ...ResourceOption) *Resources {
	r := &Resources{cfg: cfg}
	for _, o := range opts {
		o(r)
	}
	return r
}

// EnsureLoaded populates any of the three resources that are still absent.
// It is safe to call repeatedly and concurrently.
//
// A missing or malformed parameters or filler-word file is returned as an
// error — those resources are required for metric computation. A tagger load
// failure is only logged: the POS capability is optional and its absence
// merely skips the lexical variability metric. Failed loads are retried on
// the next call.
func (r *Resources) EnsureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error

	if r.params == nil && r.cfg.ParametersPath != "" {
		p, err := LoadParameters(r.cfg.ParametersPath)
		if err != nil {
			errs = append(errs, err)
		} else {
			r.params = p
			slog.Info("metric parameters loaded",
				"metrics", len(p.Metrics),
				"dimensions", len(p.Dimensions),
			)
		}
	}

	if r.fillers == nil && r.cfg.FillerWordsPath != "" {
		s, err := LoadFillerWords(r.cfg.FillerWordsPath)
		if err != nil {
			errs = append(errs, err)
		} else {
			r.fillers = s
			slog.Info("filler words loaded", "count", len(s))
		}
	}

	if r.tagger == nil && r.cfg.TaggerLoader != nil {
		t, err := r.cfg.TaggerLoader(ctx)
		if err != nil {
			slog.Warn("POS tagger unavailable; lexical variability metric will be skipped", "err", err)
		} else {
			r.tagger = t
			slog.Info("POS tagger loaded")
		}
	}

	return errors.Join(errs...)
}

// Parameters returns the metric configuration, or an error wrapping
// [ErrResourceUnavailable] when it has not been loaded.
func (r *Resources) Parameters() (*Parameters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.params == nil {
		return nil, fmt.Errorf("%w: parameters", ErrResourceUnavailable)
	}
	return r.params, nil
}

// FillerWords returns the filler-word set, or an error wrapping
// [ErrResourceUnavailable] when it has not been loaded.
func (r *Resources) FillerWords() (FillerWordSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fillers == nil {
		return nil, fmt.Errorf("%w: filler_words", ErrResourceUnavailable)
	}
	return r.fillers, nil
}

// Tagger returns the POS tagging capability and whether it is available.
func (r *Resources) Tagger() (pos.Tagger, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tagger, r.tagger != nil
}

// Status reports which resources are currently available, keyed by resource
// name: "parameters", "filler_words", "pos_tagger".
func (r *Resources) Status() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[string]bool{
		"parameters":   r.params != nil,
		"filler_words": r.fillers != nil,
		"pos_tagger":   r.tagger != nil,
	}
}
