package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps a single listing or file download.
const maxBodyBytes = 32 << 20

// GitHub reads a directory through the GitHub contents API.
type GitHub struct {
	listingURL string
	client     *http.Client
	token      string
}

// GitHubOption configures a GitHub source.
type GitHubOption func(*GitHub)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) GitHubOption {
	return func(g *GitHub) {
		if c != nil {
			g.client = c
		}
	}
}

// WithToken sends token as a bearer credential, raising the API rate limit.
func WithToken(token string) GitHubOption {
	return func(g *GitHub) { g.token = token }
}

// NewGitHub returns a source listing listingURL.
func NewGitHub(listingURL string, opts ...GitHubOption) *GitHub {
	g := &GitHub{listingURL: listingURL, client: http.DefaultClient}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// contentEntry is the subset of a contents API entry we read.
type contentEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) List(ctx context.Context) ([]File, error) {
	body, err := g.get(ctx, g.listingURL, "application/vnd.github+json")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListing, err)
	}

	var entries []contentEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode listing: %w", ErrListing, err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.Type != "" && e.Type != "file" {
			continue
		}
		if !IsJSON(e.Name) || e.DownloadURL == "" {
			continue
		}
		files = append(files, File{Name: e.Name, Location: e.DownloadURL})
	}
	return files, nil
}

func (g *GitHub) Fetch(ctx context.Context, f File) ([]byte, error) {
	body, err := g.get(ctx, f.Location, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, f.Name, err)
	}
	return body, nil
}

func (g *GitHub) get(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
