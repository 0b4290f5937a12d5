package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"support-chat/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionStore struct {
	db   *gorm.DB
	lock sync.Locker
	now  func() time.Time
}

func NewSessionStore(db *gorm.DB, lock sync.Locker) *SessionStore {
	return &SessionStore{db: db, lock: lock, now: func() time.Time { return time.Now().UTC() }}
}

// Ensure creates the session if it does not exist yet and returns the stored
// row. Concurrent calls for the same new id create exactly one row.
func (s *SessionStore) Ensure(ctx context.Context, sessionID string) (database.ChatSession, error) {
	now := s.now()
	session := database.ChatSession{ID: sessionID, CreatedAt: now, UpdatedAt: now}

	s.lock.Lock()
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&session).
		Error
	s.lock.Unlock()
	if err != nil {
		return database.ChatSession{}, fmt.Errorf("%w: error creating session %s: %w", ErrStorage, sessionID, err)
	}

	var stored database.ChatSession
	if err := s.db.WithContext(ctx).First(&stored, "id = ?", sessionID).Error; err != nil {
		return database.ChatSession{}, fmt.Errorf("%w: error loading session %s: %w", ErrStorage, sessionID, err)
	}

	return stored, nil
}

func (s *SessionStore) Touch(ctx context.Context, sessionID string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := s.db.WithContext(ctx).
		Model(&database.ChatSession{}).
		Where("id = ?", sessionID).
		Update("updated_at", s.now()).
		Error
	if err != nil {
		return fmt.Errorf("%w: error updating session %s: %w", ErrStorage, sessionID, err)
	}
	return nil
}

// List returns every session, most recently active first.
func (s *SessionStore) List(ctx context.Context) ([]database.ChatSession, error) {
	var sessions []database.ChatSession
	err := s.db.WithContext(ctx).
		Order("updated_at DESC").
		Order("id ASC").
		Find(&sessions).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: error listing sessions: %w", ErrStorage, err)
	}
	return sessions, nil
}
