package flags

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/agustogpt/chatstore/pkg/objectstore"
	"github.com/agustogpt/chatstore/pkg/recordstore"
	"github.com/agustogpt/chatstore/pkg/sessionstore"
)

const (
	BackendAzure    = "azure"
	BackendGCS      = "gcs"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"

	DefaultContainer = "agustogpt-chats"
	DefaultTable     = "AgustoGPTChats"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// AzureFlags holds the storage account credentials shared by the blob and table backends.
type AzureFlags struct {
	ConnectionString string
}

func NewAzureFlags() *AzureFlags {
	return &AzureFlags{
		ConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
	}
}

func (f *AzureFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConnectionString, "azure-storage-connection-string", f.ConnectionString,
		"Azure storage account connection string")
}

func (f *AzureFlags) getConnectionString() (string, error) {
	if f.ConnectionString == "" {
		return "", fmt.Errorf("no Azure storage connection string configured")
	}
	return f.ConnectionString, nil
}

// StorageFlags selects and configures the object and record store backends.
type StorageFlags struct {
	ObjectStore      string
	RecordStore      string
	Container        string
	Table            string
	MaxSessionBytes  int
	OperationTimeout time.Duration

	Azure    *AzureFlags
	Google   *GoogleCloudFlags
	Postgres *PostgresFlags
	SQLite   *SQLiteFlags
	Cache    *CacheFlags
}

func NewStorageFlags() *StorageFlags {
	return &StorageFlags{
		ObjectStore:      envOr("CHATSTORE_OBJECT_STORE", BackendAzure),
		RecordStore:      envOr("CHATSTORE_RECORD_STORE", BackendAzure),
		Container:        envOr("AZURE_BLOB_CONTAINER_NAME", DefaultContainer),
		Table:            envOr("AZURE_TABLE_NAME", DefaultTable),
		MaxSessionBytes:  sessionstore.DefaultMaxSessionBytes,
		OperationTimeout: sessionstore.DefaultTimeout,

		Azure:    NewAzureFlags(),
		Google:   NewGoogleCloudFlags(),
		Postgres: NewPostgresDatabaseFlags(),
		SQLite:   NewSQLiteFlags(),
		Cache:    NewCacheFlags(),
	}
}

func (f *StorageFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ObjectStore, "object-store", f.ObjectStore, "Transcript storage backend: {azure,gcs,memory}")
	fs.StringVar(&f.RecordStore, "record-store", f.RecordStore, "Chat index backend: {azure,postgres,sqlite,memory}")
	fs.StringVar(&f.Container, "container", f.Container, "Blob container (or bucket) holding chat transcripts")
	fs.StringVar(&f.Table, "table", f.Table, "Table holding the chat index")
	fs.IntVar(&f.MaxSessionBytes, "max-session-bytes", f.MaxSessionBytes, "Largest serialized transcript accepted, 0 for no limit")
	fs.DurationVar(&f.OperationTimeout, "operation-timeout", f.OperationTimeout, "Deadline for each storage operation, 0 for none")

	f.Azure.BindFlags(fs)
	f.Google.BindFlags(fs)
	f.Postgres.BindFlags(fs)
	f.SQLite.BindFlags(fs)
	f.Cache.BindFlags(fs)
}

func (f *StorageFlags) Validate() error {
	switch f.ObjectStore {
	case BackendAzure, BackendGCS, BackendMemory:
	default:
		return fmt.Errorf("unknown object store %q, expected one of azure, gcs, memory", f.ObjectStore)
	}
	switch f.RecordStore {
	case BackendAzure, BackendPostgres, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown record store %q, expected one of azure, postgres, sqlite, memory", f.RecordStore)
	}
	if f.MaxSessionBytes < 0 {
		return fmt.Errorf("--max-session-bytes must not be negative")
	}
	return nil
}

// GetObjectStore builds the configured transcript store. Nothing is created remotely.
func (f *StorageFlags) GetObjectStore(ctx context.Context) (objectstore.Store, error) {
	switch f.ObjectStore {
	case BackendAzure:
		conn, err := f.Azure.getConnectionString()
		if err != nil {
			return nil, err
		}
		return objectstore.NewAzureBlobStore(conn, f.Container)
	case BackendGCS:
		store, _, err := f.Google.GetGCSStore(ctx, f.Container)
		return store, err
	case BackendMemory:
		return objectstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown object store %q", f.ObjectStore)
}

// GetRecordStore builds the configured index store.
func (f *StorageFlags) GetRecordStore() (recordstore.Store, error) {
	switch f.RecordStore {
	case BackendAzure:
		conn, err := f.Azure.getConnectionString()
		if err != nil {
			return nil, err
		}
		return recordstore.NewAzureTableStore(conn, f.Table)
	case BackendPostgres:
		dbc, err := f.Postgres.GetDBClient()
		if err != nil {
			return nil, err
		}
		return recordstore.NewGormStore(dbc, f.Table), nil
	case BackendSQLite:
		dbc, err := f.SQLite.GetDBClient(f.Postgres.LogLevel)
		if err != nil {
			return nil, err
		}
		return recordstore.NewGormStore(dbc, f.Table), nil
	case BackendMemory:
		return recordstore.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown record store %q", f.RecordStore)
}

// GetStores builds both stores and runs the idempotent setup step against them.
func (f *StorageFlags) GetStores(ctx context.Context) (objectstore.Store, recordstore.Store, error) {
	if err := f.Validate(); err != nil {
		return nil, nil, err
	}
	objects, err := f.GetObjectStore(ctx)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "could not create object store")
	}
	records, err := f.GetRecordStore()
	if err != nil {
		return nil, nil, errors.WithMessage(err, "could not create record store")
	}
	if err := sessionstore.Setup(ctx, objects, records); err != nil {
		return nil, nil, errors.WithMessage(err, "storage setup failed")
	}
	return objects, records, nil
}

// GetManager returns an enabled session manager, or a disabled one when the stores cannot be
// configured or reached. It never fails: persistence is optional for the application.
func (f *StorageFlags) GetManager(ctx context.Context) *sessionstore.Manager {
	objects, records, err := f.GetStores(ctx)
	if err != nil {
		log.WithError(err).Warn("chat persistence unavailable")
		return sessionstore.NewDisabled(err.Error())
	}

	opts := []sessionstore.Option{
		sessionstore.WithTimeout(f.OperationTimeout),
		sessionstore.WithMaxSessionBytes(f.MaxSessionBytes),
	}
	c, err := f.Cache.GetCacheClient()
	if err != nil {
		log.WithError(err).Warn("could not configure chat list cache")
	} else if c != nil {
		opts = append(opts, sessionstore.WithListCache(c, f.Cache.ListCacheTTL))
	}

	log.WithFields(log.Fields{
		"object_store": f.ObjectStore,
		"record_store": f.RecordStore,
		"container":    f.Container,
		"table":        f.Table,
	}).Info("chat persistence enabled")
	return sessionstore.New(objects, records, opts...)
}
