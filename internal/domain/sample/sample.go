// Package sample holds the built-in audit dataset used when ingestion fails.
package sample

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/okian/difr/internal/domain/model"
	"github.com/okian/difr/internal/domain/parser"
)

//go:embed data/*.json
var files embed.FS

var load = sync.OnceValues(func() ([]model.AuditResult, error) {
	return Parse(files, "data")
})

// Parse reads every audit file under dir in fsys, in name order.
func Parse(fsys fs.FS, dir string) ([]model.AuditResult, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read sample dir: %w", err)
	}
	var out []model.AuditResult
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read sample %s: %w", e.Name(), err)
		}
		res, ok, err := parser.Parse(e.Name(), data)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, res)
		}
	}
	return out, nil
}

// Results returns the fallback dataset. The embedded files are fixed at
// build time, so a parse failure is a programming error.
func Results() []model.AuditResult {
	res, err := load()
	if err != nil {
		panic(fmt.Sprintf("sample: embedded dataset is invalid: %v", err))
	}
	return append([]model.AuditResult(nil), res...)
}
