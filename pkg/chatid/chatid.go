// Package chatid generates and parses chat session identifiers.
//
// An identifier looks like chat_<hex>_<YYYYMMDDHHMMSS>: a random component followed by the
// UTC creation second.
package chatid

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

const (
	Prefix          = "chat_"
	TimestampLayout = "20060102150405"
)

// accepts the 32 hex character form we generate as well as the older 12 character form
var idRegex = regexp.MustCompile(`^chat_([0-9a-f]{12}|[0-9a-f]{32})_([0-9]{14})$`)

// New returns a new identifier stamped with the current time.
func New() string {
	return NewAt(time.Now())
}

// NewAt returns a new identifier stamped with t.
func NewAt(t time.Time) string {
	u := uuid.New()
	return Prefix + hex.EncodeToString(u[:]) + "_" + t.UTC().Format(TimestampLayout)
}

// Valid reports whether id is a well formed chat identifier.
func Valid(id string) bool {
	m := idRegex.FindStringSubmatch(id)
	if m == nil {
		return false
	}
	_, err := time.Parse(TimestampLayout, m[2])
	return err == nil
}

// Parse returns the creation time embedded in id.
func Parse(id string) (time.Time, error) {
	m := idRegex.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}, fmt.Errorf("malformed chat id %q", id)
	}
	t, err := time.Parse(TimestampLayout, m[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp in chat id %q: %w", id, err)
	}
	return t, nil
}
