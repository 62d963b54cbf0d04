package v1

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// TranscriptPath is the object store path of a session transcript.
func TranscriptPath(userID, chatID string) string {
	return fmt.Sprintf("%s/%s.json", userID, chatID)
}

// QueryLogPath is the object store path of a query log written at t. The date and time
// components are rendered in UTC.
func QueryLogPath(chatID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("logs/%s/%s_%s.json", t.Format("20060102"), chatID, t.Format("150405"))
}

// Truncate returns at most n characters of s without splitting a multi-byte character.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// DeriveTitle picks the listing title of a session: a metadata override, else the first
// user message, else DefaultTitle.
func DeriveTitle(messages []Message, metadata Metadata) string {
	if t, ok := metadata[MetadataTitle].(string); ok && t != "" {
		return t
	}
	for _, m := range messages {
		if m.Role == RoleUser {
			if m.Content == "" {
				break
			}
			return Truncate(m.Content, MaxTitleLength)
		}
	}
	return DefaultTitle
}

// SearchMode returns the session's search mode or DefaultSearchMode.
func (m Metadata) SearchMode() string {
	if mode, ok := m[MetadataSearchMode].(string); ok && mode != "" {
		return mode
	}
	return DefaultSearchMode
}

// LastMessagePreview is the truncated content of the final message, or "".
func LastMessagePreview(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	return Truncate(messages[len(messages)-1].Content, MaxLastMessageLength)
}

// IndexRecord derives the index record of a session.
func (s *ChatSession) IndexRecord() *ChatIndexRecord {
	return &ChatIndexRecord{
		UserID:       s.UserID,
		ChatID:       s.ChatID,
		Title:        DeriveTitle(s.Messages, s.Metadata),
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		SearchMode:   s.Metadata.SearchMode(),
		LastMessage:  LastMessagePreview(s.Messages),
		BlobPath:     TranscriptPath(s.UserID, s.ChatID),
	}
}
