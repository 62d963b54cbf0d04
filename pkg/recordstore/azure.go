package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
)

var _ Store = &AzureTableStore{}

// tableEntity is the wire form of an index record. Property names are part of the stored format.
type tableEntity struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
	ChatTitle    string `json:"ChatTitle,omitempty"`
	MessageCount int    `json:"MessageCount"`
	CreatedAt    string `json:"CreatedAt,omitempty"`
	UpdatedAt    string `json:"UpdatedAt,omitempty"`
	SearchMode   string `json:"SearchMode,omitempty"`
	LastMessage  string `json:"LastMessage,omitempty"`
	BlobPath     string `json:"BlobPath,omitempty"`
}

// AzureTableStore keeps the index in an Azure Storage table.
type AzureTableStore struct {
	service *aztables.ServiceClient
	client  *aztables.Client
	table   string
}

func NewAzureTableStore(connectionString, table string) (*AzureTableStore, error) {
	service, err := aztables.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating table service client: %w", err)
	}
	return &AzureTableStore{
		service: service,
		client:  service.NewClient(table),
		table:   table,
	}, nil
}

func statusCode(err error) int {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

func (s *AzureTableStore) EnsureTable(ctx context.Context) error {
	_, err := s.service.CreateTable(ctx, s.table, nil)
	if err != nil {
		if statusCode(err) == http.StatusConflict {
			log.WithField("table", s.table).Debug("table already exists")
			return nil
		}
		return fmt.Errorf("error creating table %s: %w", s.table, err)
	}
	log.WithField("table", s.table).Info("created table")
	return nil
}

func (s *AzureTableStore) Get(ctx context.Context, partitionKey, rowKey string) (*chatv1.ChatIndexRecord, error) {
	resp, err := s.client.GetEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
		}
		return nil, fmt.Errorf("error reading entity %s/%s: %w", partitionKey, rowKey, err)
	}
	return decodeEntity(resp.Value)
}

func (s *AzureTableStore) Upsert(ctx context.Context, record *chatv1.ChatIndexRecord) error {
	data, err := json.Marshal(toEntity(record))
	if err != nil {
		return err
	}
	_, err = s.client.UpsertEntity(ctx, data, &aztables.UpsertEntityOptions{
		UpdateMode: aztables.UpdateModeReplace,
	})
	if err != nil {
		return fmt.Errorf("error upserting entity %s/%s: %w", record.UserID, record.ChatID, err)
	}
	return nil
}

// Query pages through a partition. Pages are fetched on demand as the iterator advances.
func (s *AzureTableStore) Query(ctx context.Context, partitionKey string, fields ...string) *RecordIterator {
	opts := &aztables.ListEntitiesOptions{
		Filter: to.Ptr(PartitionFilter(partitionKey)),
	}
	if p := projection(fields); p != nil {
		sel := make([]string, 0, len(p))
		for f := range p {
			sel = append(sel, f)
		}
		sort.Strings(sel)
		opts.Select = to.Ptr(strings.Join(sel, ","))
	}
	pager := s.client.NewListEntitiesPager(opts)

	var page [][]byte
	return newRecordIterator(func() (*chatv1.ChatIndexRecord, error) {
		for len(page) == 0 {
			if !pager.More() {
				return nil, iterator.Done
			}
			resp, err := pager.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("error listing partition %s: %w", partitionKey, err)
			}
			page = resp.Entities
		}
		raw := page[0]
		page = page[1:]
		return decodeEntity(raw)
	}, nil)
}

func (s *AzureTableStore) Delete(ctx context.Context, partitionKey, rowKey string) error {
	_, err := s.client.DeleteEntity(ctx, partitionKey, rowKey, nil)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
		}
		return fmt.Errorf("error deleting entity %s/%s: %w", partitionKey, rowKey, err)
	}
	return nil
}

// PartitionFilter is the OData filter selecting one partition.
func PartitionFilter(partitionKey string) string {
	return fmt.Sprintf("PartitionKey eq '%s'", strings.ReplaceAll(partitionKey, "'", "''"))
}

func toEntity(r *chatv1.ChatIndexRecord) tableEntity {
	return tableEntity{
		PartitionKey: r.UserID,
		RowKey:       r.ChatID,
		ChatTitle:    r.Title,
		MessageCount: r.MessageCount,
		CreatedAt:    formatTime(r.CreatedAt),
		UpdatedAt:    formatTime(r.UpdatedAt),
		SearchMode:   r.SearchMode,
		LastMessage:  r.LastMessage,
		BlobPath:     r.BlobPath,
	}
}

func decodeEntity(raw []byte) (*chatv1.ChatIndexRecord, error) {
	var e tableEntity
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("error decoding entity: %w", err)
	}
	rec := &chatv1.ChatIndexRecord{
		UserID:       e.PartitionKey,
		ChatID:       e.RowKey,
		Title:        e.ChatTitle,
		MessageCount: e.MessageCount,
		SearchMode:   e.SearchMode,
		LastMessage:  e.LastMessage,
		BlobPath:     e.BlobPath,
	}
	var err error
	if rec.CreatedAt, err = parseTime(e.CreatedAt); err != nil {
		return nil, fmt.Errorf("entity %s/%s has bad CreatedAt: %w", e.PartitionKey, e.RowKey, err)
	}
	if rec.UpdatedAt, err = parseTime(e.UpdatedAt); err != nil {
		return nil, fmt.Errorf("entity %s/%s has bad UpdatedAt: %w", e.PartitionKey, e.RowKey, err)
	}
	return rec, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
