package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
	"github.com/agustogpt/chatstore/pkg/cache/local"
	"github.com/agustogpt/chatstore/pkg/chatid"
	"github.com/agustogpt/chatstore/pkg/db"
	"github.com/agustogpt/chatstore/pkg/objectstore"
	"github.com/agustogpt/chatstore/pkg/recordstore"
)

var errUnavailable = errors.New("service unavailable")

// failingObjects fails the selected operations and counts every call.
type failingObjects struct {
	*objectstore.MemoryStore
	failPut    bool
	failDelete bool
	calls      int
}

func (f *failingObjects) Put(ctx context.Context, path string, data []byte, contentType string) error {
	f.calls++
	if f.failPut {
		return errUnavailable
	}
	return f.MemoryStore.Put(ctx, path, data, contentType)
}

func (f *failingObjects) Delete(ctx context.Context, path string) error {
	f.calls++
	if f.failDelete {
		return errUnavailable
	}
	return f.MemoryStore.Delete(ctx, path)
}

type failingRecords struct {
	*recordstore.MemoryStore
	failUpsert bool
	failGet    bool
	failQuery  bool
}

func (f *failingRecords) Upsert(ctx context.Context, r *chatv1.ChatIndexRecord) error {
	if f.failUpsert {
		return errUnavailable
	}
	return f.MemoryStore.Upsert(ctx, r)
}

func (f *failingRecords) Get(ctx context.Context, pk, rk string) (*chatv1.ChatIndexRecord, error) {
	if f.failGet {
		return nil, errUnavailable
	}
	return f.MemoryStore.Get(ctx, pk, rk)
}

func (f *failingRecords) Query(ctx context.Context, pk string, fields ...string) *recordstore.RecordIterator {
	if f.failQuery {
		return recordstore.NewErrorIterator(errUnavailable)
	}
	return f.MemoryStore.Query(ctx, pk, fields...)
}

// stepClock advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

func newClock() *stepClock {
	return &stepClock{next: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), step: time.Second}
}

func twoMessages() []chatv1.Message {
	ts := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	return []chatv1.Message{
		{Role: chatv1.RoleUser, Content: "What were Q3 inflation figures?", Timestamp: ts},
		{
			Role:      chatv1.RoleAssistant,
			Content:   "Headline inflation was 32.7% in Q3.",
			Timestamp: ts.Add(3 * time.Second),
			Sources: []chatv1.SourceReference{
				{Title: "Nigeria Macro Outlook", Report: "macro_q3.pdf", Page: 4, Excerpt: "headline inflation"},
			},
			RecommendedQueries: []string{"What about food inflation?"},
		},
	}
}

func newMemoryManager(opts ...Option) (*Manager, *objectstore.MemoryStore, *recordstore.MemoryStore) {
	objects := objectstore.NewMemoryStore()
	records := recordstore.NewMemoryStore()
	opts = append([]Option{WithClock(newClock().now)}, opts...)
	return New(objects, records, opts...), objects, records
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, objects, _ := newMemoryManager()
	ctx := context.Background()
	messages := twoMessages()

	require.True(t, m.SaveSession(ctx, "chat_1", "acme-co", messages, chatv1.Metadata{"search_mode": "reports"}))

	session, ok := m.LoadSession(ctx, "chat_1", "acme-co")
	require.True(t, ok)
	if diff := cmp.Diff(messages, session.Messages); diff != "" {
		t.Errorf("messages differ after round trip (-want +got):\n%s", diff)
	}
	assert.Equal(t, "chat_1", session.ChatID)
	assert.Equal(t, "acme-co", session.UserID)
	assert.Equal(t, 2, session.MessageCount)
	assert.Equal(t, "reports", session.Metadata.SearchMode())

	ct, ok := objects.ContentType("acme-co/chat_1.json")
	require.True(t, ok)
	assert.Equal(t, objectstore.ContentTypeJSON, ct)

	raw, err := objects.Get(ctx, "acme-co/chat_1.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"chat_id\""), "transcript should be indented json")
}

func TestSaveEmptySession(t *testing.T) {
	m, objects, records := newMemoryManager()
	require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", nil, nil))

	raw, err := objects.Get(context.TODO(), "u/chat_1.json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, []interface{}{}, doc["messages"])
	assert.Equal(t, map[string]interface{}{}, doc["metadata"])

	rec, err := records.Get(context.TODO(), "u", "chat_1")
	require.NoError(t, err)
	assert.Equal(t, chatv1.DefaultTitle, rec.Title)
	assert.Equal(t, "", rec.LastMessage)
	assert.Equal(t, 0, rec.MessageCount)
}

func TestSaveIsIdempotent(t *testing.T) {
	m, objects, records := newMemoryManager()
	ctx := context.Background()

	require.True(t, m.SaveSession(ctx, "chat_1", "u", twoMessages(), nil))
	first, err := records.Get(ctx, "u", "chat_1")
	require.NoError(t, err)

	require.True(t, m.SaveSession(ctx, "chat_1", "u", twoMessages(), nil))
	second, err := records.Get(ctx, "u", "chat_1")
	require.NoError(t, err)

	assert.Equal(t, []string{"u/chat_1.json"}, objects.List("u/"))
	assert.Equal(t, 1, records.Len())
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt), "created_at is preserved across saves")
}

func TestUpdatedAtNeverMovesBackwards(t *testing.T) {
	clock := &stepClock{next: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), step: -time.Minute}
	objects := objectstore.NewMemoryStore()
	records := recordstore.NewMemoryStore()
	m := New(objects, records, WithClock(clock.now))

	require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))
	first, err := records.Get(context.TODO(), "u", "chat_1")
	require.NoError(t, err)
	require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))
	second, err := records.Get(context.TODO(), "u", "chat_1")
	require.NoError(t, err)

	assert.True(t, second.UpdatedAt.Equal(first.UpdatedAt))
}

func TestListSessions(t *testing.T) {
	m, _, _ := newMemoryManager()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.True(t, m.SaveSession(ctx, fmt.Sprintf("chat_%d", i), "u", twoMessages(), nil))
	}
	require.True(t, m.SaveSession(ctx, "chat_other", "someone-else", twoMessages(), nil))
	// touching an old session moves it to the top
	require.True(t, m.SaveSession(ctx, "chat_0", "u", twoMessages(), nil))

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "limited", limit: 3, want: 3},
		{name: "limit above count", limit: 100, want: 7},
		{name: "zero uses default", limit: 0, want: 7},
		{name: "negative uses default", limit: -1, want: 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			summaries := m.ListSessions(ctx, "u", tc.limit)
			require.Len(t, summaries, tc.want)
			assert.Equal(t, "chat_0", summaries[0].ChatID)
			for i := 1; i < len(summaries); i++ {
				assert.False(t, summaries[i].UpdatedAt.After(summaries[i-1].UpdatedAt), "listing must be newest first")
			}
			for _, s := range summaries {
				assert.NotEqual(t, "chat_other", s.ChatID)
			}
		})
	}

	assert.Equal(t, []chatv1.ChatSummary{}, m.ListSessions(ctx, "nobody", 10))
}

func TestListSortsBeforeTruncating(t *testing.T) {
	m, _, records := newMemoryManager()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// row key order is the reverse of update order
	for i := 0; i < 5; i++ {
		require.NoError(t, records.Upsert(context.TODO(), &chatv1.ChatIndexRecord{
			UserID:    "u",
			ChatID:    fmt.Sprintf("chat_%d", i),
			UpdatedAt: base.Add(-time.Duration(i) * time.Hour),
		}))
	}
	summaries := m.ListSessions(context.TODO(), "u", 2)
	require.Len(t, summaries, 2)
	assert.Equal(t, "chat_0", summaries[0].ChatID)
	assert.Equal(t, "chat_1", summaries[1].ChatID)
	assert.Equal(t, chatv1.UntitledTitle, summaries[0].Title)
	assert.Equal(t, chatv1.DefaultSearchMode, summaries[0].SearchMode)
}

func TestSortSummariesTies(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []chatv1.ChatSummary{
		{ChatID: "chat_a", UpdatedAt: ts},
		{ChatID: "chat_c", UpdatedAt: ts},
		{ChatID: "chat_b", UpdatedAt: ts.Add(time.Second)},
	}
	SortSummaries(summaries)
	var got []string
	for _, s := range summaries {
		got = append(got, s.ChatID)
	}
	assert.Equal(t, []string{"chat_b", "chat_c", "chat_a"}, got)
}

func TestDeleteSession(t *testing.T) {
	m, objects, records := newMemoryManager()
	ctx := context.Background()

	require.True(t, m.SaveSession(ctx, "chat_1", "u", twoMessages(), nil))
	require.True(t, m.DeleteSession(ctx, "chat_1", "u"))

	_, ok := m.LoadSession(ctx, "chat_1", "u")
	assert.False(t, ok)
	assert.Empty(t, objects.List("u/"))
	assert.Equal(t, 0, records.Len())

	// already gone
	assert.False(t, m.DeleteSession(ctx, "chat_1", "u"))
}

func TestDeleteMissingBlobStillRemovesIndex(t *testing.T) {
	m, objects, records := newMemoryManager()
	ctx := context.Background()

	require.True(t, m.SaveSession(ctx, "chat_1", "u", twoMessages(), nil))
	require.NoError(t, objects.Delete(ctx, "u/chat_1.json"))

	assert.False(t, m.DeleteSession(ctx, "chat_1", "u"))
	assert.Equal(t, 0, records.Len())
	assert.Empty(t, m.ListSessions(ctx, "u", 10))
}

func TestDeleteBlobFailureKeepsIndex(t *testing.T) {
	objects := &failingObjects{MemoryStore: objectstore.NewMemoryStore()}
	records := recordstore.NewMemoryStore()
	m := New(objects, records)
	require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))

	objects.failDelete = true
	assert.False(t, m.DeleteSession(context.TODO(), "chat_1", "u"))
	assert.Equal(t, 1, records.Len())
}

func TestTitleDerivation(t *testing.T) {
	tests := []struct {
		name     string
		messages []chatv1.Message
		metadata chatv1.Metadata
		want     string
	}{
		{
			name: "first user message",
			messages: []chatv1.Message{
				{Role: chatv1.RoleAssistant, Content: "hi"},
				{Role: chatv1.RoleUser, Content: "What are the risks?"},
			},
			want: "What are the risks?",
		},
		{
			name:     "no user message",
			messages: []chatv1.Message{{Role: chatv1.RoleAssistant, Content: "hi"}},
			want:     chatv1.DefaultTitle,
		},
		{
			name:     "metadata override",
			messages: []chatv1.Message{{Role: chatv1.RoleUser, Content: "What are the risks?"}},
			metadata: chatv1.Metadata{"title": "Custom"},
			want:     "Custom",
		},
		{
			name:     "empty metadata title is ignored",
			messages: []chatv1.Message{{Role: chatv1.RoleUser, Content: "What are the risks?"}},
			metadata: chatv1.Metadata{"title": ""},
			want:     "What are the risks?",
		},
		{
			name:     "empty first user message",
			messages: []chatv1.Message{{Role: chatv1.RoleUser, Content: ""}, {Role: chatv1.RoleUser, Content: "later"}},
			want:     chatv1.DefaultTitle,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, _, records := newMemoryManager()
			require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", tc.messages, tc.metadata))
			rec, err := records.Get(context.TODO(), "u", "chat_1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, rec.Title)
		})
	}
}

func TestLastMessageTruncation(t *testing.T) {
	m, _, records := newMemoryManager()
	long := strings.Repeat("é", 250)
	messages := []chatv1.Message{
		{Role: chatv1.RoleUser, Content: "question"},
		{Role: chatv1.RoleAssistant, Content: long},
	}
	require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", messages, nil))

	rec, err := records.Get(context.TODO(), "u", "chat_1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 200), rec.LastMessage)
}

func TestBlobFailureSkipsIndex(t *testing.T) {
	objects := &failingObjects{MemoryStore: objectstore.NewMemoryStore(), failPut: true}
	records := recordstore.NewMemoryStore()
	m := New(objects, records)

	assert.False(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))
	assert.Equal(t, 0, records.Len())
}

func TestIndexFailureLeavesBlob(t *testing.T) {
	objects := objectstore.NewMemoryStore()
	records := &failingRecords{MemoryStore: recordstore.NewMemoryStore(), failUpsert: true}
	m := New(objects, records)

	assert.False(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))
	assert.Equal(t, []string{"u/chat_1.json"}, objects.List("u/"))

	// the next successful save repairs the index
	records.failUpsert = false
	assert.True(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))
	assert.Len(t, m.ListSessions(context.TODO(), "u", 10), 1)
}

func TestPriorRecordLookupFailureStillSaves(t *testing.T) {
	objects := objectstore.NewMemoryStore()
	records := &failingRecords{MemoryStore: recordstore.NewMemoryStore(), failGet: true}
	m := New(objects, records)

	assert.True(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))
	assert.Equal(t, 1, records.Len())
}

func TestInvalidKeys(t *testing.T) {
	tests := []struct {
		name   string
		chatID string
		userID string
	}{
		{name: "empty user", chatID: "chat_1", userID: ""},
		{name: "empty chat", chatID: "", userID: "u"},
		{name: "path separator", chatID: "../chat_1", userID: "u"},
		{name: "backslash", chatID: "chat_1", userID: `a\b`},
		{name: "hash", chatID: "chat#1", userID: "u"},
		{name: "question mark", chatID: "chat_1", userID: "u?"},
		{name: "control character", chatID: "chat_1\n", userID: "u"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			objects := &failingObjects{MemoryStore: objectstore.NewMemoryStore()}
			m := New(objects, recordstore.NewMemoryStore())

			assert.False(t, m.SaveSession(context.TODO(), tc.chatID, tc.userID, twoMessages(), nil))
			_, ok := m.LoadSession(context.TODO(), tc.chatID, tc.userID)
			assert.False(t, ok)
			assert.False(t, m.DeleteSession(context.TODO(), tc.chatID, tc.userID))
			assert.False(t, m.LogQuery(context.TODO(), QueryLog{ChatID: tc.chatID, UserID: tc.userID}))
			assert.Equal(t, 0, objects.calls)

			_, err := m.Backend().Load(context.TODO(), tc.chatID, tc.userID)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestMaxSessionBytes(t *testing.T) {
	m, objects, _ := newMemoryManager(WithMaxSessionBytes(1024))
	big := []chatv1.Message{{Role: chatv1.RoleUser, Content: strings.Repeat("x", 2048)}}

	assert.False(t, m.SaveSession(context.TODO(), "chat_1", "u", big, nil))
	assert.Empty(t, objects.List("u/"))

	_, err := m.Backend().Save(context.TODO(), "chat_1", "u", big, nil)
	assert.ErrorIs(t, err, ErrTooLarge)

	unbounded, _, _ := newMemoryManager(WithMaxSessionBytes(0))
	assert.True(t, unbounded.SaveSession(context.TODO(), "chat_1", "u", big, nil))
}

func TestOperationTimeout(t *testing.T) {
	m, _, _ := newMemoryManager(WithTimeout(time.Nanosecond))
	ctx, cancel := m.withTimeout(context.Background())
	defer cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	noTimeout, _, _ := newMemoryManager(WithTimeout(0))
	ctx, cancel = noTimeout.withTimeout(context.Background())
	defer cancel()
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
}

func TestLogQuery(t *testing.T) {
	clock := newClock()
	objects := objectstore.NewMemoryStore()
	m := New(objects, recordstore.NewMemoryStore(), WithClock(clock.now))

	require.True(t, m.LogQuery(context.TODO(), QueryLog{
		ChatID:     "chat_1",
		UserID:     "u",
		Query:      "What are the risks?",
		Response:   "FX liquidity.",
		SearchMode: "auto",
	}))

	paths := objects.List("logs/")
	require.Equal(t, []string{"logs/20250115/chat_1_120000.json"}, paths)
	raw, err := objects.Get(context.TODO(), paths[0])
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "What are the risks?", entry["query"])
	assert.Equal(t, map[string]interface{}{}, entry["filters"])
	assert.Equal(t, []interface{}{}, entry["sources"])
	assert.Equal(t, "2025-01-15T12:00:00Z", entry["timestamp"])
}

func TestDisabledManager(t *testing.T) {
	m := NewDisabled("no credentials")
	ctx := context.Background()
	before := testutil.ToFloat64(operationsMetric.WithLabelValues(operationSave, resultDisabled))

	assert.False(t, m.Enabled())
	assert.False(t, m.SaveSession(ctx, "chat_1", "u", twoMessages(), nil))
	_, ok := m.LoadSession(ctx, "chat_1", "u")
	assert.False(t, ok)
	assert.Equal(t, []chatv1.ChatSummary{}, m.ListSessions(ctx, "u", 10))
	assert.False(t, m.DeleteSession(ctx, "chat_1", "u"))
	assert.False(t, m.LogQuery(ctx, QueryLog{ChatID: "chat_1", UserID: "u"}))
	assert.True(t, chatid.Valid(m.NewChatID()))

	_, err := m.Backend().Load(ctx, "chat_1", "u")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, before+1, testutil.ToFloat64(operationsMetric.WithLabelValues(operationSave, resultDisabled)))
}

func TestListCache(t *testing.T) {
	records := &failingRecords{MemoryStore: recordstore.NewMemoryStore()}
	c := local.NewLocalCache(time.Minute, time.Minute)
	m := New(objectstore.NewMemoryStore(), records, WithClock(newClock().now), WithListCache(c, time.Minute))
	ctx := context.Background()

	require.True(t, m.SaveSession(ctx, "chat_1", "u", twoMessages(), nil))
	require.Len(t, m.ListSessions(ctx, "u", 10), 1)
	// the generation key and the listing
	assert.Equal(t, 2, c.ItemCount())

	// served from cache while the record store is unavailable
	records.failQuery = true
	require.Len(t, m.ListSessions(ctx, "u", 10), 1)
	records.failQuery = false

	// a save invalidates the cached listing
	require.True(t, m.SaveSession(ctx, "chat_2", "u", twoMessages(), nil))
	assert.Equal(t, 1, c.ItemCount())
	summaries := m.ListSessions(ctx, "u", 10)
	require.Len(t, summaries, 2)
	assert.Equal(t, "chat_2", summaries[0].ChatID)

	require.True(t, m.DeleteSession(ctx, "chat_2", "u"))
	summaries = m.ListSessions(ctx, "u", 10)
	require.Len(t, summaries, 1)
	assert.Equal(t, "chat_1", summaries[0].ChatID)
}

// holdingRecords pauses the next Query after the partition has been read until release is closed.
type holdingRecords struct {
	*recordstore.MemoryStore
	hold    bool
	queried chan struct{}
	release chan struct{}
}

func (h *holdingRecords) Query(ctx context.Context, pk string, fields ...string) *recordstore.RecordIterator {
	it := h.MemoryStore.Query(ctx, pk, fields...)
	if h.hold {
		close(h.queried)
		<-h.release
	}
	return it
}

func TestListCacheSaveDuringListing(t *testing.T) {
	tests := []struct {
		name  string
		write func(m *Manager) bool
		want  []string
	}{
		{
			name:  "save",
			write: func(m *Manager) bool { return m.SaveSession(context.TODO(), "chat_2", "u", twoMessages(), nil) },
			want:  []string{"chat_2", "chat_1"},
		},
		{
			name:  "delete",
			write: func(m *Manager) bool { return m.DeleteSession(context.TODO(), "chat_1", "u") },
			want:  []string{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := &holdingRecords{
				MemoryStore: recordstore.NewMemoryStore(),
				queried:     make(chan struct{}),
				release:     make(chan struct{}),
			}
			c := local.NewLocalCache(time.Minute, time.Minute)
			m := New(objectstore.NewMemoryStore(), records, WithClock(newClock().now), WithListCache(c, time.Minute))
			require.True(t, m.SaveSession(context.TODO(), "chat_1", "u", twoMessages(), nil))

			records.hold = true
			listed := make(chan []chatv1.ChatSummary)
			go func() {
				listed <- m.ListSessions(context.TODO(), "u", 10)
			}()
			<-records.queried
			records.hold = false

			require.True(t, tc.write(m))
			close(records.release)
			stale := <-listed
			require.Len(t, stale, 1)

			summaries := m.ListSessions(context.TODO(), "u", 10)
			ids := []string{}
			for _, s := range summaries {
				ids = append(ids, s.ChatID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestAcmeScenario(t *testing.T) {
	dbc, err := db.NewSQLite(filepath.Join(t.TempDir(), "chats.db"), logger.Silent)
	require.NoError(t, err)
	records := recordstore.NewGormStore(dbc, "AgustoGPTChats")
	objects := objectstore.NewMemoryStore()
	require.NoError(t, Setup(context.TODO(), objects, records))

	m := New(objects, records)
	const id = "chat_abc123def456_20250115120000"
	require.True(t, chatid.Valid(id))
	require.True(t, m.SaveSession(context.TODO(), id, "acme-co", twoMessages(), nil))

	summaries := m.ListSessions(context.TODO(), "acme-co", 10)
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0].ChatID)
	assert.Equal(t, 2, summaries[0].MessageCount)
	assert.Equal(t, "What were Q3 inflation figures?", summaries[0].Title)
	assert.Equal(t, "Headline inflation was 32.7% in Q3.", summaries[0].LastMessage)
}
