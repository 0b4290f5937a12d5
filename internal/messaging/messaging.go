package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TurnQueue       = "chat_turns"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

// TurnCompleted is emitted after an assistant reply has been stored.
type TurnCompleted struct {
	EventID     uuid.UUID `json:"event_id"`
	SessionID   string    `json:"session_id"`
	TokensUsed  int64     `json:"tokens_used"`
	Fallback    bool      `json:"fallback"`
	CompletedAt time.Time `json:"completed_at"`
}

func NewTurnCompleted(sessionID string, tokensUsed int64, fallback bool) TurnCompleted {
	return TurnCompleted{
		EventID:     uuid.New(),
		SessionID:   sessionID,
		TokensUsed:  tokensUsed,
		Fallback:    fallback,
		CompletedAt: time.Now().UTC(),
	}
}

type Publisher interface {
	PublishTurn(ctx context.Context, event TurnCompleted) error

	Close()
}

type Receiver interface {
	Turns() <-chan TurnCompleted

	Close()
}
