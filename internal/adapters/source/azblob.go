package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlobConfig locates the container holding audit files.
type AzureBlobConfig struct {
	AccountURL string
	Container  string
	Prefix     string
	// Anonymous skips credentials for public containers.
	Anonymous bool
}

// blobStore is the part of the Azure client the source needs.
type blobStore interface {
	listNames(ctx context.Context, container, prefix string) ([]string, error)
	download(ctx context.Context, container, name string) ([]byte, error)
}

// AzureBlob reads audit files from an Azure Storage container.
type AzureBlob struct {
	cfg   AzureBlobConfig
	store blobStore
}

// NewAzureBlob builds a client for cfg.AccountURL. Unless cfg.Anonymous is
// set, credentials come from the default Azure credential chain.
func NewAzureBlob(_ context.Context, cfg AzureBlobConfig) (*AzureBlob, error) {
	opts := &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: 3},
		},
	}

	var (
		client *azblob.Client
		err    error
	)
	if cfg.Anonymous {
		client, err = azblob.NewClientWithNoCredential(cfg.AccountURL, opts)
	} else {
		var cred azcore.TokenCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("azure credential: %w", err)
		}
		client, err = azblob.NewClient(cfg.AccountURL, cred, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}
	return newAzureBlob(cfg, &azureStore{client: client}), nil
}

func newAzureBlob(cfg AzureBlobConfig, store blobStore) *AzureBlob {
	return &AzureBlob{cfg: cfg, store: store}
}

func (a *AzureBlob) Name() string { return "azblob" }

func (a *AzureBlob) List(ctx context.Context) ([]File, error) {
	names, err := a.store.listNames(ctx, a.cfg.Container, a.cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrListing, a.cfg.Container, describeAzureErr(err))
	}
	var files []File
	for _, name := range names {
		base := path.Base(name)
		if !IsJSON(base) {
			continue
		}
		files = append(files, File{Name: base, Location: name})
	}
	return files, nil
}

func (a *AzureBlob) Fetch(ctx context.Context, f File) ([]byte, error) {
	data, err := a.store.download(ctx, a.cfg.Container, f.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, f.Name, describeAzureErr(err))
	}
	return data, nil
}

// describeAzureErr keeps the service error code visible in logs.
func describeAzureErr(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return fmt.Errorf("%s (status %d): %w", respErr.ErrorCode, respErr.StatusCode, err)
	}
	return err
}

// azureStore adapts *azblob.Client to blobStore.
type azureStore struct {
	client *azblob.Client
}

func (s *azureStore) listNames(ctx context.Context, container, prefix string) ([]string, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	var names []string
	pager := s.client.NewListBlobsFlatPager(container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			names = append(names, *item.Name)
		}
	}
	return names, nil
}

func (s *azureStore) download(ctx context.Context, container, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, container, name, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
