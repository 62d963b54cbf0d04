// Package sessionstore persists chat sessions: each transcript is stored as a JSON document in an
// object store and summarized by an index record in a partitioned record store.
package sessionstore

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	chatv1 "github.com/agustogpt/chatstore/pkg/apis/chat/v1"
	"github.com/agustogpt/chatstore/pkg/chatid"
	"github.com/agustogpt/chatstore/pkg/objectstore"
	"github.com/agustogpt/chatstore/pkg/recordstore"
)

// Manager is the entry point the application uses. Every failure is logged and reported as a
// false or absent result; persistence problems never surface as errors to the caller.
type Manager struct {
	backend Backend
	timeout time.Duration
}

// New returns an enabled manager over the given stores. The stores are expected to be set up
// already (see Setup).
func New(objects objectstore.Store, records recordstore.Store, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager{
		backend: &storeBackend{
			objects: objects,
			records: records,
			lists:   newListCache(cfg.listCache, cfg.listCacheTTL),
			cfg:     cfg,
		},
		timeout: cfg.timeout,
	}
}

// NewDisabled returns a manager whose operations all fail without touching any store.
func NewDisabled(reason string) *Manager {
	log.WithField("reason", reason).Warn("chat persistence disabled")
	return &Manager{backend: disabledBackend{reason: reason}}
}

// NewWithBackend wraps a custom backend.
func NewWithBackend(b Backend, timeout time.Duration) *Manager {
	return &Manager{backend: b, timeout: timeout}
}

// Backend exposes the error reporting operations, for callers that need to tell a missing
// session from a failed lookup.
func (m *Manager) Backend() Backend {
	return m.backend
}

// Enabled reports whether persistence is active.
func (m *Manager) Enabled() bool {
	return m.backend.Enabled()
}

// NewChatID generates a fresh session id.
func (m *Manager) NewChatID() string {
	return chatid.New()
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return context.WithCancel(ctx)
}

func logFailure(err error, msg string, fields log.Fields) {
	if errors.Is(err, ErrNotConfigured) {
		log.WithFields(fields).Debug(msg + ": persistence disabled")
		return
	}
	log.WithError(err).WithFields(fields).Error(msg)
}

// SaveSession writes the full transcript and refreshes its index record.
func (m *Manager) SaveSession(ctx context.Context, chatID, userID string, messages []chatv1.Message, metadata chatv1.Metadata) bool {
	start := time.Now()
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	session, err := m.backend.Save(ctx, chatID, userID, messages, metadata)
	observe(operationSave, start, err)
	fields := log.Fields{"chat_id": chatID, "user_id": userID}
	if err != nil {
		logFailure(err, "failed to save chat session", fields)
		return false
	}
	fields["message_count"] = session.MessageCount
	log.WithFields(fields).Debug("saved chat session")
	return true
}

// LoadSession returns the stored transcript, or false when it is missing or cannot be read.
func (m *Manager) LoadSession(ctx context.Context, chatID, userID string) (*chatv1.ChatSession, bool) {
	start := time.Now()
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	session, err := m.backend.Load(ctx, chatID, userID)
	observe(operationLoad, start, err)
	if err != nil {
		fields := log.Fields{"chat_id": chatID, "user_id": userID}
		if errors.Is(err, objectstore.ErrNotFound) {
			log.WithFields(fields).Info("chat session not found")
		} else {
			logFailure(err, "failed to load chat session", fields)
		}
		return nil, false
	}
	return session, true
}

// ListSessions returns up to limit summaries, most recently updated first. Failures yield an
// empty listing.
func (m *Manager) ListSessions(ctx context.Context, userID string, limit int) []chatv1.ChatSummary {
	start := time.Now()
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	summaries, err := m.backend.List(ctx, userID, limit)
	observe(operationList, start, err)
	if err != nil {
		logFailure(err, "failed to list chat sessions", log.Fields{"user_id": userID})
		return []chatv1.ChatSummary{}
	}
	return summaries
}

// DeleteSession removes the transcript and its index record. Deleting a session that does not
// exist reports false.
func (m *Manager) DeleteSession(ctx context.Context, chatID, userID string) bool {
	start := time.Now()
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err := m.backend.Delete(ctx, chatID, userID)
	observe(operationDelete, start, err)
	if err != nil {
		logFailure(err, "failed to delete chat session", log.Fields{"chat_id": chatID, "user_id": userID})
		return false
	}
	log.WithFields(log.Fields{"chat_id": chatID, "user_id": userID}).Info("deleted chat session")
	return true
}

// LogQuery records a question and its answer for analytics.
func (m *Manager) LogQuery(ctx context.Context, q QueryLog) bool {
	start := time.Now()
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	path, err := m.backend.LogQuery(ctx, q)
	observe(operationLog, start, err)
	if err != nil {
		logFailure(err, "failed to log query", log.Fields{"chat_id": q.ChatID, "user_id": q.UserID})
		return false
	}
	log.WithField("path", path).Debug("logged query")
	return true
}
