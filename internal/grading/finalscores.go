package grading

import (
	"context"
	"fmt"
	"math"

	"github.com/altavoz-ai/altavoz/internal/feedback"
	"github.com/altavoz-ai/altavoz/internal/scoring"
)

// Dimension is one entry in a final-scores response. Metrics is nil for the
// synthetic overall dimension.
type Dimension struct {
	Name     string                          `json:"name"`
	Score    float64                         `json:"score"`
	Feedback string                          `json:"feedback"`
	Metrics  map[string]scoring.MetricResult `json:"metrics,omitempty"`
}

// FinalScores aggregates a whole session into per-dimension results.
type FinalScores struct {
	Dimensions []Dimension `json:"dimensions"`
}

// Scorer computes final session scores from stored metric rows and enriches
// them with generated feedback. Safe for concurrent use.
type Scorer struct {
	store Store
	res   *scoring.Resources
	gen   *feedback.Generator
}

// NewScorer creates a Scorer. gen may be nil, in which case feedback strings
// are left empty.
func NewScorer(store Store, res *scoring.Resources, gen *feedback.Generator) *Scorer {
	return &Scorer{store: store, res: res, gen: gen}
}

// FinalScores aggregates every stored metric row for sessionID into
// dimension scores with feedback. Metric rows whose name has no
// configuration are ignored. A session with no usable rows yields an empty
// dimension list, not an error.
func (s *Scorer) FinalScores(ctx context.Context, sessionID int64) (*FinalScores, error) {
	params, err := s.res.Parameters()
	if err != nil {
		return nil, err
	}

	rows, err := s.store.SessionMetrics(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("grading: final scores for session %d: %w", sessionID, err)
	}

	averages, counts := AggregateSession(rows, params.Metrics)

	clarity := dimensionScore(averages, counts, scoring.MetricPrecision)
	rhythm := dimensionScore(averages, counts, scoring.MetricWordsPerMinute, scoring.MetricFillerPerMinute)
	vocabulary := dimensionScore(averages, counts, scoring.MetricLexicalVariability)

	var overallSum float64
	var overallN int
	for _, d := range []*float64{clarity, rhythm, vocabulary} {
		if d != nil {
			overallSum += *d
			overallN++
		}
	}
	var overall *float64
	if overallN > 0 {
		v := overallSum / float64(overallN)
		overall = &v
	}

	type entry struct {
		name    string
		score   *float64
		metrics map[string]scoring.MetricResult
	}
	entries := []entry{
		{scoring.DimensionClarity, clarity, pickMetrics(averages, scoring.MetricPrecision)},
		{scoring.DimensionRhythm, rhythm, pickMetrics(averages, scoring.MetricWordsPerMinute, scoring.MetricFillerPerMinute)},
		{scoring.DimensionVocabulary, vocabulary, pickMetrics(averages, scoring.MetricLexicalVariability)},
		{feedback.DimensionOverall, overall, nil},
	}

	var reqs []feedback.Request
	for _, e := range entries {
		if e.score == nil {
			continue
		}
		reqs = append(reqs, feedback.Request{
			Dimension: e.name,
			Score:     *e.score,
			Metrics:   e.metrics,
		})
	}

	feedbacks := map[string]string{}
	if s.gen != nil && len(reqs) > 0 {
		feedbacks = s.gen.ForAll(ctx, reqs)
	}

	out := &FinalScores{Dimensions: []Dimension{}}
	for _, e := range entries {
		if e.score == nil {
			continue
		}
		out.Dimensions = append(out.Dimensions, Dimension{
			Name:     e.name,
			Score:    roundScore(*e.score),
			Feedback: feedbacks[e.name],
			Metrics:  e.metrics,
		})
	}
	return out, nil
}

// AggregateSession groups metric rows by name and averages their raw values
// and scores, both rounded to 2 decimals. Rows whose name is absent from
// configured are dropped. The returned counts map records how many rows
// contributed to each average, which weights the rhythm dimension.
func AggregateSession(rows []MetricRow, configured map[string]scoring.MetricConfig) (map[string]scoring.MetricResult, map[string]int) {
	type acc struct {
		rawSum   float64
		scoreSum float64
		n        int
	}
	accs := make(map[string]*acc)
	for _, r := range rows {
		if _, ok := configured[r.Name]; !ok {
			continue
		}
		a := accs[r.Name]
		if a == nil {
			a = &acc{}
			accs[r.Name] = a
		}
		a.rawSum += r.Raw
		a.scoreSum += r.Score
		a.n++
	}

	averages := make(map[string]scoring.MetricResult, len(accs))
	counts := make(map[string]int, len(accs))
	for name, a := range accs {
		averages[name] = scoring.MetricResult{
			Raw:   roundScore(a.rawSum / float64(a.n)),
			Score: roundScore(a.scoreSum / float64(a.n)),
		}
		counts[name] = a.n
	}
	return averages, counts
}

// dimensionScore computes the count-weighted mean of the averaged scores of
// the named metrics. A metric that contributed more rows to the session
// weighs proportionally more. Returns nil when none of the metrics are
// present.
func dimensionScore(averages map[string]scoring.MetricResult, counts map[string]int, metricNames ...string) *float64 {
	var sum float64
	var n int
	for _, name := range metricNames {
		m, ok := averages[name]
		if !ok {
			continue
		}
		c := counts[name]
		sum += m.Score * float64(c)
		n += c
	}
	if n == 0 {
		return nil
	}
	v := sum / float64(n)
	return &v
}

// pickMetrics returns the subset of averages under the given names, or nil
// if none are present.
func pickMetrics(averages map[string]scoring.MetricResult, names ...string) map[string]scoring.MetricResult {
	var out map[string]scoring.MetricResult
	for _, name := range names {
		if m, ok := averages[name]; ok {
			if out == nil {
				out = make(map[string]scoring.MetricResult, len(names))
			}
			out[name] = m
		}
	}
	return out
}

// roundScore rounds to 2 decimal places.
func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
