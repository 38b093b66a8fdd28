package aggregate

import (
	"sort"

	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/types"
)

// AggregateProviders computes one entry per provider seen anywhere in
// results, in first-seen order. Entries without valid data points are kept.
func AggregateProviders(results []model.AuditResult) []types.LeaderboardEntry {
	providers := ProviderNames(results)
	out := make([]types.LeaderboardEntry, 0, len(providers))
	for _, p := range providers {
		raw, modelCount := rawRates(results, p)
		scores := FiniteScores(raw)
		out = append(out, types.LeaderboardEntry{
			Provider:   p,
			AvgScore:   Mean(scores),
			ModelCount: modelCount,
			DataPoints: len(scores),
		})
	}
	return out
}

// BuildLeaderboard ranks providers by average exact match rate across the
// whole corpus. Ties keep first-seen order. Providers with no valid
// measurement are left out.
func BuildLeaderboard(results []model.AuditResult) []types.LeaderboardEntry {
	entries := AggregateProviders(results)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AvgScore > entries[j].AvgScore
	})

	out := entries[:0]
	for _, e := range entries {
		if e.DataPoints > 0 {
			out = append(out, e)
		}
	}
	return out
}
