package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	log "github.com/sirupsen/logrus"
)

// AzureBlobStore stores objects as block blobs in one Azure Storage container.
type AzureBlobStore struct {
	client    *azblob.Client
	container string
}

var _ Store = &AzureBlobStore{}

func NewAzureBlobStore(connectionString, container string) (*AzureBlobStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating blob client: %w", err)
	}
	return &AzureBlobStore{client: client, container: container}, nil
}

func (a *AzureBlobStore) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	switch {
	case err == nil:
		log.Infof("created blob container: %s", a.container)
	case bloberror.HasCode(err, bloberror.ContainerAlreadyExists):
		log.Infof("blob container already exists: %s", a.container)
	default:
		return fmt.Errorf("error creating blob container %s: %w", a.container, err)
	}
	return nil
}

func (a *AzureBlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := a.client.UploadBuffer(ctx, a.container, path, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	if err != nil {
		return fmt.Errorf("error uploading %s: %w", path, err)
	}
	return nil
}

func (a *AzureBlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	resp, err := a.client.DownloadStream(ctx, a.container, path, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("error downloading %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, nil
}

func (a *AzureBlobStore) Delete(ctx context.Context, path string) error {
	if _, err := a.client.DeleteBlob(ctx, a.container, path, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("error deleting %s: %w", path, err)
	}
	return nil
}
