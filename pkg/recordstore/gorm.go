package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"google.golang.org/api/iterator"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
	"github.com/agustogpt/chatstore/pkg/db"
	"github.com/agustogpt/chatstore/pkg/db/models"
)

var _ Store = &GormStore{}

// columns maps record attribute names to the index table columns.
var columns = map[string]string{
	FieldPartitionKey: "partition_key",
	FieldRowKey:       "row_key",
	FieldChatTitle:    "chat_title",
	FieldMessageCount: "message_count",
	FieldCreatedAt:    "created_at",
	FieldUpdatedAt:    "updated_at",
	FieldSearchMode:   "search_mode",
	FieldLastMessage:  "last_message",
	FieldBlobPath:     "blob_path",
}

// GormStore keeps the index in a relational table (postgres in production, sqlite locally).
type GormStore struct {
	dbc   *db.DB
	table string
}

func NewGormStore(dbc *db.DB, table string) *GormStore {
	return &GormStore{dbc: dbc, table: table}
}

func (s *GormStore) tx(ctx context.Context) *gorm.DB {
	return s.dbc.DB.WithContext(ctx).Table(s.table)
}

func (s *GormStore) EnsureTable(_ context.Context) error {
	return s.dbc.UpdateSchema(s.table)
}

func (s *GormStore) Get(ctx context.Context, partitionKey, rowKey string) (*chatv1.ChatIndexRecord, error) {
	var row models.ChatIndex
	res := s.tx(ctx).
		Where("partition_key = ? AND row_key = ?", partitionKey, rowKey).
		First(&row)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("error reading index record %s/%s: %w", partitionKey, rowKey, res.Error)
	}
	return fromModel(&row), nil
}

func (s *GormStore) Upsert(ctx context.Context, record *chatv1.ChatIndexRecord) error {
	row := toModel(record)
	res := s.tx(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partition_key"}, {Name: "row_key"}},
		UpdateAll: true,
	}).Create(row)
	if res.Error != nil {
		return fmt.Errorf("error upserting index record %s/%s: %w", record.UserID, record.ChatID, res.Error)
	}
	return nil
}

func (s *GormStore) Query(ctx context.Context, partitionKey string, fields ...string) *RecordIterator {
	q := s.tx(ctx).Where("partition_key = ?", partitionKey)
	if p := projection(fields); p != nil {
		var cols []string
		for f := range p {
			col, ok := columns[f]
			if !ok {
				return NewErrorIterator(fmt.Errorf("unknown index field %q", f))
			}
			cols = append(cols, col)
		}
		q = q.Select(cols)
	}

	rows, err := q.Rows()
	if err != nil {
		return NewErrorIterator(fmt.Errorf("error querying index partition %s: %w", partitionKey, err))
	}
	return newRecordIterator(func() (*chatv1.ChatIndexRecord, error) {
		return s.scanNext(rows)
	}, func() {
		_ = rows.Close()
	})
}

func (s *GormStore) scanNext(rows *sql.Rows) (*chatv1.ChatIndexRecord, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating index rows: %w", err)
		}
		return nil, iterator.Done
	}
	var row models.ChatIndex
	if err := s.dbc.DB.ScanRows(rows, &row); err != nil {
		return nil, fmt.Errorf("error scanning index row: %w", err)
	}
	return fromModel(&row), nil
}

func (s *GormStore) Delete(ctx context.Context, partitionKey, rowKey string) error {
	res := s.tx(ctx).
		Where("partition_key = ? AND row_key = ?", partitionKey, rowKey).
		Delete(&models.ChatIndex{})
	if res.Error != nil {
		return fmt.Errorf("error deleting index record %s/%s: %w", partitionKey, rowKey, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
	}
	return nil
}

func toModel(r *chatv1.ChatIndexRecord) *models.ChatIndex {
	return &models.ChatIndex{
		PartitionKey: r.UserID,
		RowKey:       r.ChatID,
		ChatTitle:    r.Title,
		MessageCount: r.MessageCount,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		SearchMode:   r.SearchMode,
		LastMessage:  r.LastMessage,
		BlobPath:     r.BlobPath,
	}
}

func fromModel(m *models.ChatIndex) *chatv1.ChatIndexRecord {
	return &chatv1.ChatIndexRecord{
		UserID:       m.PartitionKey,
		ChatID:       m.RowKey,
		Title:        m.ChatTitle,
		MessageCount: m.MessageCount,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		SearchMode:   m.SearchMode,
		LastMessage:  m.LastMessage,
		BlobPath:     m.BlobPath,
	}
}
