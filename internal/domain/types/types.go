// Package types contains the read shapes produced by the aggregation builders.
package types

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/okian/difr/internal/domain/model"
)

// LeaderboardEntry is one provider's standing across the whole corpus.
type LeaderboardEntry struct {
	Provider   string  `json:"provider" yaml:"provider"`
	AvgScore   float64 `json:"avgScore" yaml:"avgScore"`
	ModelCount int     `json:"modelCount" yaml:"modelCount"`
	DataPoints int     `json:"dataPoints" yaml:"dataPoints"`
}

// ProviderTrendStat summarizes one provider's runs for a single model.
type ProviderTrendStat struct {
	Provider    string  `json:"provider" yaml:"provider"`
	AvgScore    float64 `json:"avgScore" yaml:"avgScore"`
	MinScore    float64 `json:"minScore" yaml:"minScore"`
	MaxScore    float64 `json:"maxScore" yaml:"maxScore"`
	LatestScore float64 `json:"latestScore" yaml:"latestScore"`
	Trend       float64 `json:"trend" yaml:"trend"`
	DataPoints  int     `json:"dataPoints" yaml:"dataPoints"`
}

// TimeSeriesPoint is one run of a model in wide form: a timestamp plus one
// raw score per provider column.
type TimeSeriesPoint struct {
	Timestamp string
	Providers []string // column order
	Scores    map[string]model.Metric
}

// Score returns the raw score for provider; absent when the column is unknown.
func (p TimeSeriesPoint) Score(provider string) model.Metric {
	return p.Scores[provider]
}

// MarshalJSON writes {"timestamp": ..., "<provider>": score|null, ...} in
// column order. A provider literally named "timestamp" is not emitted.
func (p TimeSeriesPoint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"timestamp":`)
	ts, err := json.Marshal(p.Timestamp)
	if err != nil {
		return nil, err
	}
	buf.Write(ts)
	for _, name := range p.Providers {
		if name == "timestamp" {
			continue
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Scores[name])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ModelList is the set of models in the corpus and the one selected first.
type ModelList struct {
	Models   []string `json:"models" yaml:"models"`
	Selected string   `json:"selected" yaml:"selected"`
}

// ModelTrends is the trend table for one model.
type ModelTrends struct {
	Model string              `json:"model" yaml:"model"`
	Stats []ProviderTrendStat `json:"stats" yaml:"stats"`
}

// ModelSeries is the time series for one model.
type ModelSeries struct {
	Model     string            `json:"model" yaml:"model"`
	Providers []string          `json:"providers" yaml:"providers"`
	Points    []TimeSeriesPoint `json:"points" yaml:"points"`
}

// ModelResults is the raw audit results for one model, in corpus order.
type ModelResults struct {
	Model   string              `json:"model" yaml:"model"`
	Results []model.AuditResult `json:"results" yaml:"results"`
}

// MarshalYAML writes the same wide shape as MarshalJSON.
func (p TimeSeriesPoint) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "timestamp"},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Timestamp})
	for _, name := range p.Providers {
		if name == "timestamp" {
			continue
		}
		var val yaml.Node
		if err := val.Encode(p.Scores[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &val)
	}
	return node, nil
}
