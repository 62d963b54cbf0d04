package models

import (
	"time"
)

// ChatIndex is one row of the chat history index. The table name is configurable so the model is
// always used through db.Table(name).
type ChatIndex struct {
	// PartitionKey is the owning user, RowKey the chat id.
	PartitionKey string `gorm:"primaryKey;size:255"`
	RowKey       string `gorm:"primaryKey;size:255"`

	ChatTitle    string `gorm:"type:text"`
	MessageCount int    `gorm:"not null"`

	// timestamps are owned by the session manager, not gorm
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false"`

	SearchMode  string `gorm:"size:64"`
	LastMessage string `gorm:"type:text"`
	BlobPath    string `gorm:"type:text"`
}
