// Package recordstore provides the partitioned chat history index: one record per
// (user, chat) pair, listable per user without a full table scan.
package recordstore

import (
	"context"
	"errors"

	"google.golang.org/api/iterator"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
)

// ErrNotFound is returned when no record exists for a (partition, row) key.
var ErrNotFound = errors.New("record not found")

// Attribute names of an index record, used both as the Azure Table entity property names and as
// projection field names for Query.
const (
	FieldPartitionKey = "PartitionKey"
	FieldRowKey       = "RowKey"
	FieldChatTitle    = "ChatTitle"
	FieldMessageCount = "MessageCount"
	FieldCreatedAt    = "CreatedAt"
	FieldUpdatedAt    = "UpdatedAt"
	FieldSearchMode   = "SearchMode"
	FieldLastMessage  = "LastMessage"
	FieldBlobPath     = "BlobPath"
)

// SummaryFields is the projection needed to render a chat history listing.
var SummaryFields = []string{
	FieldChatTitle,
	FieldMessageCount,
	FieldCreatedAt,
	FieldUpdatedAt,
	FieldSearchMode,
	FieldLastMessage,
}

// Store is a keyed, partitioned table of chat index records.
type Store interface {
	// EnsureTable creates the table if needed. It is an idempotent setup step meant to run once
	// at startup.
	EnsureTable(ctx context.Context) error
	Get(ctx context.Context, partitionKey, rowKey string) (*chatv1.ChatIndexRecord, error)
	// Upsert inserts or fully replaces the record keyed by (UserID, ChatID).
	Upsert(ctx context.Context, record *chatv1.ChatIndexRecord) error
	// Query lazily returns every record of a partition. When fields are given only those
	// attributes (plus the keys) are guaranteed to be populated.
	Query(ctx context.Context, partitionKey string, fields ...string) *RecordIterator
	Delete(ctx context.Context, partitionKey, rowKey string) error
}

// RecordIterator walks query results. Next returns iterator.Done once the results are
// exhausted; any other error ends the iteration and is returned by every later call.
type RecordIterator struct {
	next func() (*chatv1.ChatIndexRecord, error)
	stop func()
	err  error
}

func newRecordIterator(next func() (*chatv1.ChatIndexRecord, error), stop func()) *RecordIterator {
	return &RecordIterator{next: next, stop: stop}
}

// NewErrorIterator returns an iterator that fails immediately with err.
func NewErrorIterator(err error) *RecordIterator {
	return &RecordIterator{err: err}
}

func (it *RecordIterator) Next() (*chatv1.ChatIndexRecord, error) {
	if it.err != nil {
		return nil, it.err
	}
	rec, err := it.next()
	if err != nil {
		it.err = err
		it.Stop()
		return nil, err
	}
	return rec, nil
}

// Stop releases any resources held by the iterator. It is safe to call more than once, and is
// called automatically once Next returns an error or iterator.Done.
func (it *RecordIterator) Stop() {
	if it.stop != nil {
		it.stop()
		it.stop = nil
	}
	if it.err == nil {
		it.err = iterator.Done
	}
}

// All drains the iterator.
func (it *RecordIterator) All() ([]*chatv1.ChatIndexRecord, error) {
	var records []*chatv1.ChatIndexRecord
	for {
		rec, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func projection(fields []string) map[string]bool {
	if len(fields) == 0 {
		return nil
	}
	p := map[string]bool{FieldPartitionKey: true, FieldRowKey: true}
	for _, f := range fields {
		p[f] = true
	}
	return p
}
