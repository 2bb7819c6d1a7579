package scoring

// AggregateDimensions computes one score per configured dimension: the
// arithmetic mean (rounded to 2 decimals) of the scores of its constituent
// metrics present in metrics. A dimension whose constituent metrics are all
// absent gets a nil score. Skipped metrics are entirely absent from the
// metrics map, so they never drag a dimension down.
func AggregateDimensions(metrics map[string]MetricResult, dimensions map[string][]string) map[string]*float64 {
	out := make(map[string]*float64, len(dimensions))
	for dim, metricNames := range dimensions {
		var sum float64
		var n int
		for _, name := range metricNames {
			if m, ok := metrics[name]; ok {
				sum += m.Score
				n++
			}
		}
		if n == 0 {
			out[dim] = nil
			continue
		}
		mean := round2(sum / float64(n))
		out[dim] = &mean
	}
	return out
}

// FilterMetrics returns the subset of metrics whose names appear in allowed.
// The engine itself never filters; callers with stage-specific policies
// (e.g. a grading stage that only counts rhythm metrics) apply this before
// re-aggregating dimensions.
func FilterMetrics(metrics map[string]MetricResult, allowed []string) map[string]MetricResult {
	out := make(map[string]MetricResult, len(allowed))
	for _, name := range allowed {
		if m, ok := metrics[name]; ok {
			out[name] = m
		}
	}
	return out
}
