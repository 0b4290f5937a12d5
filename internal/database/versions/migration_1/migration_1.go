package migration_1

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChatMessage struct {
	SessionID string    `gorm:"index:idx_chat_messages_session_order,priority:1"`
	CreatedAt time.Time `gorm:"index:idx_chat_messages_session_order,priority:2"`
	Metadata  datatypes.JSON
}

type ChatSession struct {
	UpdatedAt time.Time `gorm:"index"`
}

const (
	orderIndex   = "idx_chat_messages_session_order"
	updatedIndex = "idx_chat_sessions_updated_at"
)

func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&ChatMessage{}, "Metadata"); err != nil {
		return fmt.Errorf("error adding Metadata column: %w", err)
	}

	if err := db.Migrator().CreateIndex(&ChatMessage{}, orderIndex); err != nil {
		return fmt.Errorf("error creating %s: %w", orderIndex, err)
	}

	if err := db.Migrator().CreateIndex(&ChatSession{}, "UpdatedAt"); err != nil {
		return fmt.Errorf("error creating %s: %w", updatedIndex, err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropIndex(&ChatSession{}, "UpdatedAt"); err != nil {
		return fmt.Errorf("error dropping %s: %w", updatedIndex, err)
	}

	if err := db.Migrator().DropIndex(&ChatMessage{}, orderIndex); err != nil {
		return fmt.Errorf("error dropping %s: %w", orderIndex, err)
	}

	if err := db.Migrator().DropColumn(&ChatMessage{}, "Metadata"); err != nil {
		return fmt.Errorf("error dropping Metadata column: %w", err)
	}

	return nil
}
