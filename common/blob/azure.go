package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azbloblib "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureConfig holds Azure Blob Storage connection settings.
type AzureConfig struct {
	AccountName string `yaml:"account_name"`
	AccessKey   string `yaml:"access_key"`
	Container   string `yaml:"container"`
}

// AzureStore implements Store on an Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStore creates a store backed by the configured container.
func NewAzureStore(cfg AzureConfig) (*AzureStore, error) {
	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccessKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &AzureStore{client: client, container: cfg.Container}, nil
}

// Put uploads the object, setting its content type on the blob headers.
func (s *AzureStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	opts := &azblob.UploadStreamOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &azbloblib.HTTPHeaders{BlobContentType: &contentType}
	}

	if _, err := s.client.UploadStream(ctx, s.container, key, r, opts); err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

// Get downloads the object.
func (s *AzureStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("download blob %s: %w", key, err)
	}

	contentType := "application/octet-stream"
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}
	return resp.Body, contentType, nil
}
