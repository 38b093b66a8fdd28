// Package source lists and downloads raw audit files from the places they are
// published: the GitHub contents API, a local directory, or an Azure Blob
// container.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/difr/internal/config"
)

// File is one entry of a listing.
type File struct {
	// Name is the base file name, used for filename matching.
	Name string
	// Location is whatever the source needs to fetch the file (URL, path, blob name).
	Location string
}

// Source is a listing-and-fetch capability over a set of named byte blobs.
type Source interface {
	Name() string
	// List returns the candidate .json files.
	List(ctx context.Context) ([]File, error)
	Fetch(ctx context.Context, f File) ([]byte, error)
}

// IsJSON reports whether name has the .json suffix.
func IsJSON(name string) bool {
	return strings.HasSuffix(name, ".json")
}

// New builds the Source selected by cfg.SourceKind.
func New(ctx context.Context, cfg *config.Config) (Source, error) {
	switch cfg.SourceKind {
	case config.SourceGitHub:
		return NewGitHub(cfg.ListingURL,
			WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout}),
			WithToken(cfg.GitHubToken),
		), nil
	case config.SourceDir:
		return NewDir(cfg.DataDir), nil
	case config.SourceAzBlob:
		return NewAzureBlob(ctx, AzureBlobConfig{
			AccountURL: cfg.BlobAccountURL,
			Container:  cfg.BlobContainer,
			Prefix:     cfg.BlobPrefix,
			Anonymous:  cfg.BlobAnonymous,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.SourceKind)
	}
}
