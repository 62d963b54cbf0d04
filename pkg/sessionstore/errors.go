package sessionstore

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrNotConfigured is returned by every operation of a disabled manager.
	ErrNotConfigured = errors.New("chat persistence is not configured")
	// ErrInvalidKey rejects user and chat ids that cannot form an object path or table key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrTooLarge rejects transcripts above the configured size cap.
	ErrTooLarge = errors.New("chat session too large")
)

// ValidateKey checks a user or chat id. Ids are embedded in blob paths and used as table keys,
// so path separators, the characters Azure Tables forbids in keys, and control characters are
// rejected.
func ValidateKey(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is empty: %w", name, ErrInvalidKey)
	}
	if strings.ContainsAny(value, `/\#?`) {
		return fmt.Errorf("%s %q contains a reserved character: %w", name, value, ErrInvalidKey)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s %q contains a control character: %w", name, value, ErrInvalidKey)
		}
	}
	return nil
}

func validateKeys(chatID, userID string) error {
	if err := ValidateKey("user_id", userID); err != nil {
		return err
	}
	return ValidateKey("chat_id", chatID)
}
