package util

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"gorm.io/gorm/logger"

	"github.com/agustogpt/chatstore/pkg/db"
)

/*
	  Enable functional tests requiring live storage accounts to run, but don't risk checking in
	  credentials with code; supply them via environment variables.
		TEST_GCS_CREDS_PATH: the path to a local GCS credentials file with write access to TEST_GCS_BUCKET
		TEST_GCS_BUCKET: a scratch bucket the tests may write to
		TEST_AZURE_STORAGE_CONNECTION_STRING: connection string of a scratch storage account (azurite works)
		TEST_CHATSTORE_DATABASE_DSN: the DSN of a scratch postgres database
		TEST_DB_LOG_LEVEL: "silent" or "info" or "warn" or "error" - the log level for gorm database methods
	  We do not want these trying to run during CI; skip tests with required environment variables that are not set.
*/

const TestContainer = "chatstore-functional-test"

func GetDbHandle(t *testing.T) *db.DB {
	dbLogLevel := os.Getenv("TEST_DB_LOG_LEVEL") // e.g. "info" or "silent"
	if dbLogLevel == "" {
		dbLogLevel = "silent"
	}
	gormLogLevel, err := db.ParseGormLogLevel(dbLogLevel)
	if err != nil {
		logrus.WithError(err).Errorf("Cannot parse TEST_DB_LOG_LEVEL %s", dbLogLevel)
		gormLogLevel = logger.Silent
	}

	dsn := os.Getenv("TEST_CHATSTORE_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_CHATSTORE_DATABASE_DSN environment variable is not set; skipping database tests")
	}
	dbc, err := db.New(dsn, gormLogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Cannot connect to database")
	}
	return dbc
}

// GetGcsClient returns a client and the scratch bucket name.
func GetGcsClient(t *testing.T) (*storage.Client, string) {
	pathToGcsCredentials := os.Getenv("TEST_GCS_CREDS_PATH")
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if pathToGcsCredentials == "" || bucket == "" {
		t.Skip("TEST_GCS_CREDS_PATH or TEST_GCS_BUCKET environment variable is not set; skipping GCS tests")
	}
	gcsClient, err := storage.NewClient(context.TODO(), option.WithCredentialsFile(pathToGcsCredentials))
	if err != nil {
		logrus.WithError(err).Fatalf("CRITICAL error getting GCS client with credentials at %s", pathToGcsCredentials)
	}
	return gcsClient, bucket
}

func GetAzureConnectionString(t *testing.T) string {
	conn := os.Getenv("TEST_AZURE_STORAGE_CONNECTION_STRING")
	if conn == "" {
		t.Skip("TEST_AZURE_STORAGE_CONNECTION_STRING environment variable is not set; skipping Azure tests")
	}
	return conn
}
