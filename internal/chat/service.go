package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"support-chat/internal/corpus"
	"support-chat/internal/database"
	"support-chat/internal/llm"
	"support-chat/internal/messaging"

	"gorm.io/gorm"
)

const MaxSessionIDLength = 255

// ReplyGenerator produces the assistant reply for an assembled prompt. A nil
// error means the reply is usable, even when it is the fallback sentence.
type ReplyGenerator interface {
	Generate(ctx context.Context, prompt string) (llm.Reply, error)
}

type TurnResult struct {
	Reply      string
	TokensUsed int64
	Fallback   bool
}

// ConversationService runs one chat turn at a time per request: it ensures the
// session, logs the user message, builds the grounded prompt, obtains a reply
// and logs it. Writes that already happened are kept if a later step fails.
type ConversationService struct {
	sessions  *SessionStore
	messages  *MessageLog
	generator ReplyGenerator
	docs      []corpus.DocChunk
	window    int
	publisher messaging.Publisher
}

func NewConversationService(db *gorm.DB, docs []corpus.DocChunk, generator ReplyGenerator, historyWindow int, publisher messaging.Publisher) *ConversationService {
	lock := newWriteLock(db)
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &ConversationService{
		sessions:  NewSessionStore(db, lock),
		messages:  NewMessageLog(db, lock),
		generator: generator,
		docs:      docs,
		window:    historyWindow,
		publisher: publisher,
	}
}

func (s *ConversationService) Sessions() *SessionStore {
	return s.sessions
}

func (s *ConversationService) Messages() *MessageLog {
	return s.messages
}

func validateTurn(sessionID, message string) error {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: missing sessionId or message", ErrValidation)
	}
	if len(sessionID) > MaxSessionIDLength {
		return ErrSessionIDTooLong
	}
	return nil
}

func (s *ConversationService) Chat(ctx context.Context, sessionID, message string) (TurnResult, error) {
	if err := validateTurn(sessionID, message); err != nil {
		return TurnResult{}, err
	}

	if _, err := s.sessions.Ensure(ctx, sessionID); err != nil {
		return TurnResult{}, err
	}

	if _, err := s.messages.Append(ctx, sessionID, database.RoleUser, message, nil); err != nil {
		return TurnResult{}, err
	}

	// The window is read after the user message is logged, so it ends with the
	// question being asked.
	history, err := s.messages.RecentWindow(ctx, sessionID, s.window)
	if err != nil {
		return TurnResult{}, err
	}

	prompt := BuildPrompt(s.docs, history, message)

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Error("error generating reply", "session_id", sessionID, "error", err)
		return TurnResult{}, fmt.Errorf("%w: error generating reply: %w", ErrInternal, err)
	}

	metadata := &database.MessageMetadata{TokensUsed: reply.TokensUsed, Fallback: reply.Fallback}
	if _, err := s.messages.Append(ctx, sessionID, database.RoleAssistant, reply.Text, metadata); err != nil {
		return TurnResult{}, err
	}

	if err := s.sessions.Touch(ctx, sessionID); err != nil {
		return TurnResult{}, err
	}

	s.publishTurn(sessionID, reply)

	return TurnResult{Reply: reply.Text, TokensUsed: reply.TokensUsed, Fallback: reply.Fallback}, nil
}

func (s *ConversationService) publishTurn(sessionID string, reply llm.Reply) {
	if s.publisher == nil {
		return
	}

	event := messaging.NewTurnCompleted(sessionID, reply.TokensUsed, reply.Fallback)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.publisher.PublishTurn(ctx, event); err != nil {
			slog.Warn("error publishing turn event", "session_id", sessionID, "event_id", event.EventID, "error", err)
		}
	}()
}

// History returns the full conversation, or only the latest limit messages
// when limit is positive.
func (s *ConversationService) History(ctx context.Context, sessionID string, limit int) ([]database.ChatMessage, error) {
	if limit > 0 {
		return s.messages.RecentWindow(ctx, sessionID, limit)
	}
	return s.messages.FullHistory(ctx, sessionID)
}

func (s *ConversationService) ListSessions(ctx context.Context) ([]database.ChatSession, error) {
	return s.sessions.List(ctx)
}
