package chat

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"support-chat/internal/database"

	"gorm.io/gorm"
)

// DefaultHistoryWindow is five user/assistant pairs.
const DefaultHistoryWindow = 10

// MessageLog is the append-only record of turns. Rows are never updated or
// deleted; reads are ordered by (created_at, id).
type MessageLog struct {
	db   *gorm.DB
	lock sync.Locker
	now  func() time.Time
}

func NewMessageLog(db *gorm.DB, lock sync.Locker) *MessageLog {
	return &MessageLog{db: db, lock: lock, now: func() time.Time { return time.Now().UTC() }}
}

// Append writes one message. It does not check that the session exists.
func (l *MessageLog) Append(ctx context.Context, sessionID, role, content string, metadata *database.MessageMetadata) (database.ChatMessage, error) {
	if role != database.RoleUser && role != database.RoleAssistant {
		return database.ChatMessage{}, fmt.Errorf("%w: invalid role '%s'", ErrValidation, role)
	}

	metadataJSON, err := database.EncodeMetadata(metadata)
	if err != nil {
		return database.ChatMessage{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	message := database.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: l.now(),
		Metadata:  metadataJSON,
	}
	if err := l.db.WithContext(ctx).Create(&message).Error; err != nil {
		return database.ChatMessage{}, fmt.Errorf("%w: error saving %s message for session %s: %w", ErrStorage, role, sessionID, err)
	}

	return message, nil
}

// RecentWindow returns the latest limit messages of the session in ascending
// order. A non-positive limit uses DefaultHistoryWindow.
func (l *MessageLog) RecentWindow(ctx context.Context, sessionID string, limit int) ([]database.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryWindow
	}

	var messages []database.ChatMessage
	err := l.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: error loading recent messages for session %s: %w", ErrStorage, sessionID, err)
	}

	slices.Reverse(messages)
	return messages, nil
}

func (l *MessageLog) FullHistory(ctx context.Context, sessionID string) ([]database.ChatMessage, error) {
	var messages []database.ChatMessage
	err := l.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: error loading history for session %s: %w", ErrStorage, sessionID, err)
	}
	return messages, nil
}
