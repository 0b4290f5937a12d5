package database

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      string = "user"
	RoleAssistant string = "assistant"
)

type ChatSession struct {
	ID        string    `gorm:"primaryKey;size:255" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

type ChatMessage struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	SessionID string         `gorm:"size:255;not null;index:idx_chat_messages_session_order,priority:1"`
	Role      string         `gorm:"size:20;not null"`
	Content   string         `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;index:idx_chat_messages_session_order,priority:2"`
	Metadata  datatypes.JSON // {"tokens_used": 12, "fallback": false}
}
