package flags

import (
	"context"
	"os"

	"cloud.google.com/go/storage"
	"github.com/spf13/pflag"

	"github.com/agustogpt/chatstore/pkg/objectstore"
)

// GoogleCloudFlags contain configuration information for Google cloud-related services.
type GoogleCloudFlags struct {
	ServiceAccountCredentialFile string
	StorageBucket                string
	Project                      string
}

func NewGoogleCloudFlags() *GoogleCloudFlags {
	return &GoogleCloudFlags{
		ServiceAccountCredentialFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		Project:                      os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}
}

func (f *GoogleCloudFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ServiceAccountCredentialFile,
		"google-service-account-credential-file",
		f.ServiceAccountCredentialFile,
		"location of a credential file described by https://cloud.google.com/docs/authentication/production")

	fs.StringVar(&f.StorageBucket, "google-storage-bucket", f.StorageBucket, "GCS bucket for chat transcripts (defaults to --container)")
	fs.StringVar(&f.Project, "google-project", f.Project, "GCP project used to create the bucket if it does not exist")
}

// GetGCSStore returns a bucket backed object store. Application default credentials are used when no
// credential file is configured.
func (f *GoogleCloudFlags) GetGCSStore(ctx context.Context, defaultBucket string) (*objectstore.GCSStore, *storage.Client, error) {
	client, err := objectstore.NewGCSClient(ctx, f.ServiceAccountCredentialFile)
	if err != nil {
		return nil, nil, err
	}
	bucket := f.StorageBucket
	if bucket == "" {
		bucket = defaultBucket
	}
	return objectstore.NewGCSStore(client, bucket, f.Project), client, nil
}
