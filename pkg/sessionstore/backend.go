package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
	"github.com/agustogpt/chatstore/pkg/objectstore"
	"github.com/agustogpt/chatstore/pkg/recordstore"
)

// QueryLog is one answered question, as submitted for analytics.
type QueryLog struct {
	ChatID     string
	UserID     string
	Query      string
	Response   string
	SearchMode string
	Filters    map[string]interface{}
	Sources    []chatv1.SourceReference
}

// Backend performs persistence operations and reports failures as errors. The Manager wraps a
// Backend and reduces those errors to the boolean results callers act on.
type Backend interface {
	Enabled() bool
	Save(ctx context.Context, chatID, userID string, messages []chatv1.Message, metadata chatv1.Metadata) (*chatv1.ChatSession, error)
	Load(ctx context.Context, chatID, userID string) (*chatv1.ChatSession, error)
	List(ctx context.Context, userID string, limit int) ([]chatv1.ChatSummary, error)
	Delete(ctx context.Context, chatID, userID string) error
	LogQuery(ctx context.Context, entry QueryLog) (string, error)
}

var _ Backend = &storeBackend{}

// storeBackend writes transcripts to an object store and index records to a record store.
type storeBackend struct {
	objects objectstore.Store
	records recordstore.Store
	lists   *listCache
	cfg     config
}

// Setup runs the idempotent container and table creation steps.
func Setup(ctx context.Context, objects objectstore.Store, records recordstore.Store) error {
	if err := objects.EnsureContainer(ctx); err != nil {
		return fmt.Errorf("error ensuring object container: %w", err)
	}
	if err := records.EnsureTable(ctx); err != nil {
		return fmt.Errorf("error ensuring index table: %w", err)
	}
	return nil
}

func (b *storeBackend) Enabled() bool {
	return true
}

func (b *storeBackend) Save(ctx context.Context, chatID, userID string, messages []chatv1.Message, metadata chatv1.Metadata) (*chatv1.ChatSession, error) {
	if err := validateKeys(chatID, userID); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []chatv1.Message{}
	}
	if metadata == nil {
		metadata = chatv1.Metadata{}
	}

	now := b.cfg.now().UTC()
	createdAt := now
	prior, err := b.records.Get(ctx, userID, chatID)
	switch {
	case err == nil:
		if !prior.CreatedAt.IsZero() {
			createdAt = prior.CreatedAt.UTC()
		}
		if prior.UpdatedAt.After(now) {
			now = prior.UpdatedAt.UTC()
		}
	case errors.Is(err, recordstore.ErrNotFound):
	default:
		// creation time falls back to now
		log.WithError(err).WithFields(log.Fields{
			"chat_id": chatID,
			"user_id": userID,
		}).Warn("could not read prior index record, treating session as new")
	}

	session := &chatv1.ChatSession{
		ChatID:       chatID,
		UserID:       userID,
		Messages:     messages,
		CreatedAt:    createdAt,
		UpdatedAt:    now,
		MessageCount: len(messages),
		Metadata:     metadata,
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error serializing chat session: %w", err)
	}
	if b.cfg.maxSessionBytes > 0 && len(data) > b.cfg.maxSessionBytes {
		return nil, fmt.Errorf("session is %d bytes, limit is %d: %w", len(data), b.cfg.maxSessionBytes, ErrTooLarge)
	}

	path := chatv1.TranscriptPath(userID, chatID)
	if err := b.objects.Put(ctx, path, data, objectstore.ContentTypeJSON); err != nil {
		return nil, fmt.Errorf("error writing transcript %s: %w", path, err)
	}
	if err := b.records.Upsert(ctx, session.IndexRecord()); err != nil {
		return nil, fmt.Errorf("error writing index record: %w", err)
	}
	b.lists.invalidate(ctx, userID)
	return session, nil
}

func (b *storeBackend) Load(ctx context.Context, chatID, userID string) (*chatv1.ChatSession, error) {
	if err := validateKeys(chatID, userID); err != nil {
		return nil, err
	}
	path := chatv1.TranscriptPath(userID, chatID)
	data, err := b.objects.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("error reading transcript %s: %w", path, err)
	}
	session := &chatv1.ChatSession{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("error decoding transcript %s: %w", path, err)
	}
	return session, nil
}

// List returns the user's most recently updated sessions. The whole partition is sorted before
// truncation so the newest sessions are never dropped.
func (b *storeBackend) List(ctx context.Context, userID string, limit int) ([]chatv1.ChatSummary, error) {
	if err := ValidateKey("user_id", userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	summaries, gen, ok := b.lists.get(ctx, userID)
	if !ok {
		records, err := b.records.Query(ctx, userID, recordstore.SummaryFields...).All()
		if err != nil {
			return nil, fmt.Errorf("error listing sessions: %w", err)
		}
		summaries = make([]chatv1.ChatSummary, 0, len(records))
		for _, r := range records {
			summaries = append(summaries, r.Summary())
		}
		SortSummaries(summaries)
		b.lists.set(ctx, userID, gen, summaries)
	}

	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// SortSummaries orders summaries newest first, breaking ties by chat id descending.
func SortSummaries(summaries []chatv1.ChatSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ChatID > b.ChatID
	})
}

// Delete removes the transcript, then the index record. A missing transcript is reported but
// the index record is still removed so no listing entry points at it.
func (b *storeBackend) Delete(ctx context.Context, chatID, userID string) error {
	if err := validateKeys(chatID, userID); err != nil {
		return err
	}
	path := chatv1.TranscriptPath(userID, chatID)
	blobErr := b.objects.Delete(ctx, path)
	if blobErr != nil && !errors.Is(blobErr, objectstore.ErrNotFound) {
		return fmt.Errorf("error deleting transcript %s: %w", path, blobErr)
	}

	recordErr := b.records.Delete(ctx, userID, chatID)
	b.lists.invalidate(ctx, userID)
	if blobErr != nil {
		return fmt.Errorf("error deleting transcript %s: %w", path, blobErr)
	}
	if recordErr != nil {
		return fmt.Errorf("error deleting index record: %w", recordErr)
	}
	return nil
}

// LogQuery writes an analytics record and returns its path.
func (b *storeBackend) LogQuery(ctx context.Context, q QueryLog) (string, error) {
	if err := validateKeys(q.ChatID, q.UserID); err != nil {
		return "", err
	}
	entry := chatv1.QueryLogEntry{
		Timestamp:  b.cfg.now().UTC(),
		ChatID:     q.ChatID,
		UserID:     q.UserID,
		Query:      q.Query,
		Response:   q.Response,
		SearchMode: q.SearchMode,
		Filters:    q.Filters,
		Sources:    q.Sources,
	}
	if entry.Filters == nil {
		entry.Filters = map[string]interface{}{}
	}
	if entry.Sources == nil {
		entry.Sources = []chatv1.SourceReference{}
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error serializing query log: %w", err)
	}
	path := chatv1.QueryLogPath(q.ChatID, entry.Timestamp)
	if err := b.objects.Put(ctx, path, data, objectstore.ContentTypeJSON); err != nil {
		return "", fmt.Errorf("error writing query log %s: %w", path, err)
	}
	return path, nil
}

// disabledBackend stands in when persistence is not configured. It performs no I/O.
type disabledBackend struct {
	reason string
}

var _ Backend = disabledBackend{}

func (d disabledBackend) Enabled() bool {
	return false
}

func (d disabledBackend) err() error {
	if d.reason == "" {
		return ErrNotConfigured
	}
	return fmt.Errorf("%s: %w", d.reason, ErrNotConfigured)
}

func (d disabledBackend) Save(context.Context, string, string, []chatv1.Message, chatv1.Metadata) (*chatv1.ChatSession, error) {
	return nil, d.err()
}

func (d disabledBackend) Load(context.Context, string, string) (*chatv1.ChatSession, error) {
	return nil, d.err()
}

func (d disabledBackend) List(context.Context, string, int) ([]chatv1.ChatSummary, error) {
	return nil, d.err()
}

func (d disabledBackend) Delete(context.Context, string, string) error {
	return d.err()
}

func (d disabledBackend) LogQuery(context.Context, QueryLog) (string, error) {
	return "", d.err()
}
