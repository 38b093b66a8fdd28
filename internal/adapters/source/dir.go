package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Dir reads audit files from a local directory. Subdirectories are ignored.
type Dir struct {
	root string
}

// NewDir returns a source over root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

func (d *Dir) Name() string { return "dir" }

func (d *Dir) List(ctx context.Context) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListing, err)
	}
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListing, err)
	}

	var files []File
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsJSON(e.Name()) {
			continue
		}
		files = append(files, File{Name: e.Name(), Location: filepath.Join(d.root, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (d *Dir) Fetch(ctx context.Context, f File) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, f.Name, err)
	}
	data, err := os.ReadFile(f.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, f.Name, err)
	}
	return data, nil
}
