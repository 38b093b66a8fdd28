// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AuditResult is one timestamped audit run of a single model across providers.
type AuditResult struct {
	Model     string    `json:"model" yaml:"model"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"` // YYYY-MM-DDTHH:MM:SS, fixed width
	Providers Providers `json:"providers" yaml:"providers"`
}

// ProviderMetrics is the per-provider block of an audit payload. Only
// ExactMatchRate feeds the aggregates; the rest is carried through.
type ProviderMetrics struct {
	ExactMatchRate     Metric `json:"exact_match_rate" yaml:"exact_match_rate"`
	AvgProb            Metric `json:"avg_prob" yaml:"avg_prob"`
	AvgMargin          Metric `json:"avg_margin" yaml:"avg_margin"`
	AvgLogitRank       Metric `json:"avg_logit_rank" yaml:"avg_logit_rank"`
	AvgGumbelRank      Metric `json:"avg_gumbel_rank" yaml:"avg_gumbel_rank"`
	InfiniteMarginRate Metric `json:"infinite_margin_rate" yaml:"infinite_margin_rate"`
	TotalTokens        Metric `json:"total_tokens" yaml:"total_tokens"`
	NSequences         Metric `json:"n_sequences" yaml:"n_sequences"`
}

// Provider pairs a provider name with its metrics.
type Provider struct {
	Name    string
	Metrics ProviderMetrics
}

// Providers is an insertion-ordered provider name -> metrics mapping.
// The zero value is an empty mapping.
type Providers struct {
	names  []string
	byName map[string]ProviderMetrics
}

// ProvidersOf builds a mapping from pairs. A repeated name keeps its first
// position and takes the later metrics, like a JSON object with duplicate keys.
func ProvidersOf(pairs ...Provider) Providers {
	var p Providers
	for _, pair := range pairs {
		p.set(pair.Name, pair.Metrics)
	}
	return p
}

func (p *Providers) set(name string, m ProviderMetrics) {
	if p.byName == nil {
		p.byName = make(map[string]ProviderMetrics)
	}
	if _, ok := p.byName[name]; !ok {
		p.names = append(p.names, name)
	}
	p.byName[name] = m
}

// Len returns the number of providers.
func (p Providers) Len() int { return len(p.names) }

// Names returns provider names in insertion order.
func (p Providers) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Get returns the metrics for name.
func (p Providers) Get(name string) (ProviderMetrics, bool) {
	m, ok := p.byName[name]
	return m, ok
}

// Has reports whether name is present.
func (p Providers) Has(name string) bool {
	_, ok := p.byName[name]
	return ok
}

// UnmarshalJSON decodes a JSON object keeping key order. Entries whose value
// is null are dropped. Anything other than an object yields an empty mapping.
func (p *Providers) UnmarshalJSON(data []byte) error {
	*p = Providers{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("providers: unexpected key token %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("providers: %s: %w", key, err)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var m ProviderMetrics
		if err := json.Unmarshal(raw, &m); err != nil {
			// Non-object entries (strings, numbers) still count as present
			// providers, they just carry no metrics.
			m = ProviderMetrics{}
		}
		p.set(key, m)
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON encodes the mapping as an object in insertion order.
func (p Providers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(p.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ExactMatchRate returns the provider's raw exact_match_rate, or an absent
// metric when the provider is not part of the result.
func (r AuditResult) ExactMatchRate(provider string) Metric {
	m, ok := r.Providers.Get(provider)
	if !ok {
		return Absent()
	}
	return m.ExactMatchRate
}
