package aggregate

import (
	"sort"

	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/types"
)

// BuildTrendStats summarizes every provider's runs for modelID. The raw
// sequence per provider follows corpus order, which decides latest and trend.
func BuildTrendStats(results []model.AuditResult, modelID string) []types.ProviderTrendStat {
	subset := FilterModel(results, modelID)
	providers := ProviderNames(subset)

	out := make([]types.ProviderTrendStat, 0, len(providers))
	for _, p := range providers {
		raw, _ := rawRates(subset, p)
		scores := FiniteScores(raw)
		if len(scores) == 0 {
			continue
		}
		lo, hi := MinMax(scores)
		out = append(out, types.ProviderTrendStat{
			Provider:    p,
			AvgScore:    Mean(scores),
			MinScore:    lo,
			MaxScore:    hi,
			LatestScore: LatestValid(raw),
			Trend:       TrendOfLastTwo(scores),
			DataPoints:  len(scores),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgScore > out[j].AvgScore
	})
	return out
}
