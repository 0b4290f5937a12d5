package chat

import (
	"sync"

	"support-chat/internal/database"

	"gorm.io/gorm"
)

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

// SQLite only supports one writer at a time, so writes against a sqlite
// database take this lock. Other databases get a no-op locker.
func newWriteLock(db *gorm.DB) sync.Locker {
	if database.IsSQLite(db) {
		return &sync.Mutex{}
	}
	return noopLocker{}
}
