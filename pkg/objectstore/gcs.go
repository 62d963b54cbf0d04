package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// NewGCSClient builds a storage client from a service account credential file, falling back to
// the application default credentials when no file is given.
func NewGCSClient(ctx context.Context, googleServiceAccountCredentialFile string) (*storage.Client, error) {
	if len(googleServiceAccountCredentialFile) > 0 {
		return storage.NewClient(ctx,
			option.WithCredentialsFile(googleServiceAccountCredentialFile),
		)
	}

	creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, fmt.Errorf("no google credentials available: %w", err)
	}
	return storage.NewClient(ctx, option.WithCredentials(creds))
}

// GCSStore stores objects in a Google Cloud Storage bucket.
type GCSStore struct {
	bkt        *storage.BucketHandle
	bucketName string
	// projectID is only needed to create a missing bucket
	projectID string
}

var _ Store = &GCSStore{}

func NewGCSStore(client *storage.Client, bucket, projectID string) *GCSStore {
	return &GCSStore{
		bkt:        client.Bucket(bucket),
		bucketName: bucket,
		projectID:  projectID,
	}
}

func (g *GCSStore) EnsureContainer(ctx context.Context) error {
	_, err := g.bkt.Attrs(ctx)
	if err == nil {
		log.Infof("bucket already exists: %s", g.bucketName)
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("error reading attributes of bucket %s: %w", g.bucketName, err)
	}
	if g.projectID == "" {
		return fmt.Errorf("bucket %s does not exist and no project was configured to create it", g.bucketName)
	}
	if err := g.bkt.Create(ctx, g.projectID, nil); err != nil {
		return fmt.Errorf("error creating bucket %s: %w", g.bucketName, err)
	}
	log.Infof("created bucket: %s", g.bucketName)
	return nil
}

func (g *GCSStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if len(path) == 0 {
		return fmt.Errorf("missing path to GCS content")
	}
	w := g.bkt.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func (g *GCSStore) Get(ctx context.Context, path string) ([]byte, error) {
	r, err := g.bkt.Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return data, nil
}

func (g *GCSStore) Delete(ctx context.Context, path string) error {
	if err := g.bkt.Object(path).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("error deleting %s: %w", path, err)
	}
	return nil
}
