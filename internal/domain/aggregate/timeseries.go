package aggregate

import (
	"sort"

	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/types"
)

// BuildTimeSeries returns one point per result of modelID, sorted ascending
// by timestamp. Every point has a column for each name in providers; raw
// values pass through so non-finite runs show up as gaps.
func BuildTimeSeries(results []model.AuditResult, modelID string, providers []string) []types.TimeSeriesPoint {
	subset := FilterModel(results, modelID)
	columns := append([]string(nil), providers...)

	out := make([]types.TimeSeriesPoint, 0, len(subset))
	for _, r := range subset {
		scores := make(map[string]model.Metric, len(columns))
		for _, p := range columns {
			scores[p] = r.ExactMatchRate(p)
		}
		out = append(out, types.TimeSeriesPoint{
			Timestamp: r.Timestamp,
			Providers: columns,
			Scores:    scores,
		})
	}

	// Fixed-width timestamps compare chronologically as strings.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
