// Package parser turns raw audit files into model.AuditResult values.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/okian/difr/internal/domain/model"
)

// filenamePattern matches <model>_audit_results_<YYYYMMDD>_<HHMMSS>.json.
var filenamePattern = regexp.MustCompile(`^(.+)_audit_results_(\d{8})_(\d{6})\.json$`)

// FileName holds the pieces recovered from an audit filename.
type FileName struct {
	ModelSegment string
	Timestamp    string
}

// Model returns the model identifier implied by the filename. Underscores
// stand in for slashes, so "org_name" becomes "org/name". The mapping is
// lossy for names that contain a real underscore.
func (f FileName) Model() string {
	return strings.ReplaceAll(f.ModelSegment, "_", "/")
}

// ParseFileName matches name against the audit filename pattern.
func ParseFileName(name string) (FileName, bool) {
	m := filenamePattern.FindStringSubmatch(name)
	if m == nil {
		return FileName{}, false
	}
	date, clock := m[2], m[3]
	ts := date[0:4] + "-" + date[4:6] + "-" + date[6:8] + "T" +
		clock[0:2] + ":" + clock[2:4] + ":" + clock[4:6]
	return FileName{ModelSegment: m[1], Timestamp: ts}, true
}

// Payload is the decoded body of an audit file.
type Payload struct {
	Model     json.RawMessage `json:"model"`
	Providers json.RawMessage `json:"providers"`
}

// DecodePayload decodes raw file bytes. Bare NaN/Infinity tokens are accepted.
// Valid JSON that is not an object decodes to an empty payload.
func DecodePayload(data []byte) (Payload, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(NormalizeNonFinite(data), &raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	var p Payload
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return Payload{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}
	return p, nil
}

// Build combines a filename and a decoded payload. ok is false when the
// filename does not follow the audit naming scheme.
func Build(name string, p Payload) (model.AuditResult, bool, error) {
	fn, ok := ParseFileName(name)
	if !ok {
		return model.AuditResult{}, false, nil
	}

	res := model.AuditResult{
		Model:     fn.Model(),
		Timestamp: fn.Timestamp,
	}

	// Only a JSON string overrides the filename; null or other types do not.
	if m := bytes.TrimSpace(p.Model); len(m) > 0 && m[0] == '"' {
		var explicit string
		if err := json.Unmarshal(m, &explicit); err == nil {
			res.Model = explicit
		}
	}

	if len(p.Providers) > 0 {
		if err := json.Unmarshal(p.Providers, &res.Providers); err != nil {
			return model.AuditResult{}, false, fmt.Errorf("%w: %s: providers: %w", ErrDecode, name, err)
		}
	}

	return res, true, nil
}

// Parse decodes data and builds the result for name in one step.
func Parse(name string, data []byte) (model.AuditResult, bool, error) {
	p, err := DecodePayload(data)
	if err != nil {
		return model.AuditResult{}, false, fmt.Errorf("%s: %w", name, err)
	}
	return Build(name, p)
}
