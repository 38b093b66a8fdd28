package samplegen

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Score profile ranges. Each provider gets a base rate once per model and
// every run jitters around it.
const (
	baseMin     = 0.55
	baseRange   = 0.44
	jitterRange = 0.06
	seedMix     = 0x9e3779b97f4a7c15
)

// Generate builds every file described by cfg in model-major, run-minor
// order. It is deterministic for a given cfg.Seed.
func Generate(cfg *Config) ([]File, Stats) {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedMix))
	files := make([]File, 0, len(cfg.Models)*cfg.Runs)
	var stats Stats

	for _, model := range cfg.Models {
		base := make([]float64, len(cfg.Providers))
		for i := range base {
			base[i] = baseMin + rng.Float64()*baseRange
		}
		for run := 0; run < cfg.Runs; run++ {
			ts := cfg.Start.Add(time.Duration(run) * cfg.Interval)
			scores := make([]float64, len(cfg.Providers))
			for i := range scores {
				stats.Scores++
				if rng.Float64() < cfg.NaNRate {
					scores[i] = math.NaN()
					stats.NaNScores++
					continue
				}
				scores[i] = clamp01(base[i] + (rng.Float64()-0.5)*jitterRange)
			}
			files = append(files, File{
				Name: FileName(model, ts.Format("20060102_150405")),
				Body: encode(model, cfg.Providers, scores),
			})
		}
	}
	return files, stats
}

// FileName returns the audit file name for model at stamp (YYYYMMDD_HHMMSS).
func FileName(model, stamp string) string {
	return strings.ReplaceAll(model, "/", "_") + "_audit_results_" + stamp + ".json"
}

// encode writes the audit body with providers in column order. Non-finite
// scores are written as the bare NaN token the real audit files carry.
func encode(model string, providers []string, scores []float64) []byte {
	var buf bytes.Buffer
	name, _ := json.Marshal(model)
	buf.WriteString(`{"model": `)
	buf.Write(name)
	buf.WriteString(`, "providers": {`)
	for i, p := range providers {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, _ := json.Marshal(p)
		buf.Write(key)
		buf.WriteString(`: {"exact_match_rate": `)
		if math.IsNaN(scores[i]) {
			buf.WriteString("NaN")
		} else {
			buf.WriteString(strconv.FormatFloat(scores[i], 'f', 4, 64))
		}
		buf.WriteString("}")
	}
	buf.WriteString("}}\n")
	return buf.Bytes()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
