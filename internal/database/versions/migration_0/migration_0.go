package migration_0

import (
	"time"

	"gorm.io/gorm"
)

type ChatSession struct {
	ID        string `gorm:"primaryKey;size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ChatMessage struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"size:255;not null;index"`
	Role      string `gorm:"size:20;not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

func Migration(db *gorm.DB) error {
	return db.AutoMigrate(&ChatSession{}, &ChatMessage{})
}
