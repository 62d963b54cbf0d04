package recordstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/api/iterator"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
)

var _ Store = &MemoryStore{}

// MemoryStore is a mutex guarded map of partitions. Records are copied in and out.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]chatv1.ChatIndexRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{partitions: map[string]map[string]chatv1.ChatIndexRecord{}}
}

func (s *MemoryStore) EnsureTable(_ context.Context) error {
	return nil
}

func (s *MemoryStore) Get(_ context.Context, partitionKey, rowKey string) (*chatv1.ChatIndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.partitions[partitionKey][rowKey]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
	}
	return &rec, nil
}

func (s *MemoryStore) Upsert(_ context.Context, record *chatv1.ChatIndexRecord) error {
	if record.UserID == "" || record.ChatID == "" {
		return fmt.Errorf("index record requires partition and row keys")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partitions[record.UserID]
	if !ok {
		p = map[string]chatv1.ChatIndexRecord{}
		s.partitions[record.UserID] = p
	}
	p[record.ChatID] = *record
	return nil
}

// Query snapshots the partition, ordered by row key.
func (s *MemoryStore) Query(_ context.Context, partitionKey string, fields ...string) *RecordIterator {
	s.mu.RLock()
	snapshot := make([]chatv1.ChatIndexRecord, 0, len(s.partitions[partitionKey]))
	for _, rec := range s.partitions[partitionKey] {
		snapshot = append(snapshot, rec)
	}
	s.mu.RUnlock()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ChatID < snapshot[j].ChatID })

	p := projection(fields)
	return newRecordIterator(func() (*chatv1.ChatIndexRecord, error) {
		if len(snapshot) == 0 {
			return nil, iterator.Done
		}
		rec := snapshot[0]
		snapshot = snapshot[1:]
		if p != nil && !p[FieldBlobPath] {
			rec.BlobPath = ""
		}
		return &rec, nil
	}, nil)
}

func (s *MemoryStore) Delete(_ context.Context, partitionKey, rowKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partitions[partitionKey][rowKey]; !ok {
		return fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
	}
	delete(s.partitions[partitionKey], rowKey)
	if len(s.partitions[partitionKey]) == 0 {
		delete(s.partitions, partitionKey)
	}
	return nil
}

// Len reports the number of records across all partitions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.partitions {
		n += len(p)
	}
	return n
}
