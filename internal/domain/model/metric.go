package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Metric is a raw numeric field from an audit payload. Present is false when
// the field was missing, null, or not a number. A present value may still be
// NaN or ±Inf; consumers decide what to do with it.
type Metric struct {
	Value   float64
	Present bool
}

// Number returns a present metric holding v.
func Number(v float64) Metric { return Metric{Value: v, Present: true} }

// Absent returns a metric that was not supplied.
func Absent() Metric { return Metric{} }

// Finite returns the value and true only for present, finite numbers.
func (m Metric) Finite() (float64, bool) {
	if !m.Present || math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return 0, false
	}
	return m.Value, true
}

// Int returns the value truncated to an integer when finite.
func (m Metric) Int() (int64, bool) {
	v, ok := m.Finite()
	if !ok {
		return 0, false
	}
	return int64(v), true
}

// UnmarshalJSON accepts numbers, null, and the non-finite spellings used by
// Python and JavaScript serializers. Any other JSON value decodes as absent.
func (m *Metric) UnmarshalJSON(data []byte) error {
	*m = Metric{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil //nolint:nilerr // malformed strings are treated as absent
		}
		if v, ok := parseNonFinite(s); ok {
			*m = Number(v)
		}
		return nil
	case '{', '[', 't', 'f':
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		if nf, ok := parseNonFinite(string(data)); ok {
			*m = Number(nf)
		}
		return nil
	}
	*m = Number(v)
	return nil
}

// MarshalJSON writes finite values as numbers and everything else as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	v, ok := m.Finite()
	if !ok {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// parseNonFinite recognizes NaN and infinity spellings.
func parseNonFinite(s string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nan", "-nan":
		return math.NaN(), true
	case "infinity", "+infinity", "inf", "+inf":
		return math.Inf(1), true
	case "-infinity", "-inf":
		return math.Inf(-1), true
	}
	return 0, false
}
