// Package aggregate derives the leaderboard, per-model trend stats, and time
// series from a corpus of audit results. Every builder is a pure function of
// its inputs.
package aggregate

import (
	"github.com/okian/difr/internal/domain/model"
)

// FiniteScores returns the finite values of raw in their original order.
func FiniteScores(raw []model.Metric) []float64 {
	out := make([]float64, 0, len(raw))
	for _, m := range raw {
		if v, ok := m.Finite(); ok {
			out = append(out, v)
		}
	}
	return out
}

// Mean returns the arithmetic mean of scores, or 0 when empty.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// MinMax returns the smallest and largest of scores, or 0, 0 when empty.
func MinMax(scores []float64) (lo, hi float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	lo, hi = scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}

// LatestValid scans raw from the end and returns the first finite value.
// It returns 0 when raw holds no finite value.
func LatestValid(raw []model.Metric) float64 {
	for i := len(raw) - 1; i >= 0; i-- {
		if v, ok := raw[i].Finite(); ok {
			return v
		}
	}
	return 0
}

// TrendOfLastTwo returns last minus second-to-last of the valid scores, or 0
// with fewer than two. Positive means improving.
func TrendOfLastTwo(scores []float64) float64 {
	n := len(scores)
	if n < 2 {
		return 0
	}
	return scores[n-1] - scores[n-2]
}

// ProviderNames returns every provider name in the corpus in first-seen order.
func ProviderNames(results []model.AuditResult) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range results {
		for _, name := range r.Providers.Names() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// Models returns the distinct model identifiers in first-seen order.
func Models(results []model.AuditResult) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range results {
		if _, ok := seen[r.Model]; ok {
			continue
		}
		seen[r.Model] = struct{}{}
		out = append(out, r.Model)
	}
	return out
}

// FilterModel returns the results for modelID, preserving corpus order.
func FilterModel(results []model.AuditResult, modelID string) []model.AuditResult {
	var out []model.AuditResult
	for _, r := range results {
		if r.Model == modelID {
			out = append(out, r)
		}
	}
	return out
}

// rawRates collects exact_match_rate for provider from every result that
// carries it. Results without the provider contribute nothing.
func rawRates(results []model.AuditResult, provider string) (raw []model.Metric, modelCount int) {
	models := make(map[string]struct{})
	for _, r := range results {
		m, ok := r.Providers.Get(provider)
		if !ok {
			continue
		}
		raw = append(raw, m.ExactMatchRate)
		models[r.Model] = struct{}{}
	}
	return raw, len(models)
}
