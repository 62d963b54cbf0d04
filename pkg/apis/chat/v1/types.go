package v1

import (
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// DefaultTitle is used for the index record when a session has no user message.
	DefaultTitle = "New Chat"
	// UntitledTitle is reported when a stored index record carries no title at all.
	UntitledTitle = "Untitled Chat"
	// DefaultSearchMode is recorded when the session metadata does not name one.
	DefaultSearchMode = "auto"

	MaxTitleLength       = 100
	MaxLastMessageLength = 200
)

// Well known metadata keys.
const (
	MetadataTitle      = "title"
	MetadataSearchMode = "search_mode"
	MetadataFilters    = "filters"
)

// Metadata is the open key/value bag attached to a session (search mode, filters, title override, ...).
type Metadata map[string]interface{}

// SourceReference points at a page of a report that backed an assistant answer.
type SourceReference struct {
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Report  string `json:"report" yaml:"report"`
	Page    int    `json:"page" yaml:"page"`
	Excerpt string `json:"excerpt" yaml:"excerpt"`
}

// Message is a single conversation turn. Messages are immutable once appended.
type Message struct {
	Role      Role      `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Only set on assistant messages.
	Sources            []SourceReference `json:"sources,omitempty" yaml:"sources,omitempty"`
	RecommendedQueries []string          `json:"recommended_queries,omitempty" yaml:"recommended_queries,omitempty"`
}

// ChatSession is the full transcript of one conversation, stored as a single JSON document.
type ChatSession struct {
	ChatID       string    `json:"chat_id" yaml:"chat_id"`
	UserID       string    `json:"user_id" yaml:"user_id"`
	Messages     []Message `json:"messages" yaml:"messages"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	Metadata     Metadata  `json:"metadata" yaml:"metadata"`
}

// ChatIndexRecord is the lightweight per-session summary kept in the record store,
// keyed by (UserID partition, ChatID row).
type ChatIndexRecord struct {
	UserID       string
	ChatID       string
	Title        string
	MessageCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SearchMode   string
	LastMessage  string
	BlobPath     string
}

// ChatSummary is what a chat history listing returns for each session.
type ChatSummary struct {
	ChatID       string    `json:"chat_id" yaml:"chat_id"`
	Title        string    `json:"title" yaml:"title"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
	SearchMode   string    `json:"search_mode" yaml:"search_mode"`
	LastMessage  string    `json:"last_message" yaml:"last_message"`
}

// QueryLogEntry is a write-only analytics record of one question and its answer.
type QueryLogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	ChatID     string                 `json:"chat_id"`
	UserID     string                 `json:"user_id"`
	Query      string                 `json:"query"`
	Response   string                 `json:"response"`
	SearchMode string                 `json:"search_mode"`
	Filters    map[string]interface{} `json:"filters"`
	Sources    []SourceReference      `json:"sources"`
}

// Summary projects an index record into its listing form, applying the listing defaults.
func (r ChatIndexRecord) Summary() ChatSummary {
	s := ChatSummary{
		ChatID:       r.ChatID,
		Title:        r.Title,
		MessageCount: r.MessageCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		SearchMode:   r.SearchMode,
		LastMessage:  r.LastMessage,
	}
	if s.Title == "" {
		s.Title = UntitledTitle
	}
	if s.SearchMode == "" {
		s.SearchMode = DefaultSearchMode
	}
	return s
}
