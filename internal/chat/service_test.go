package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"support-chat/internal/corpus"
	"support-chat/internal/database"
	"support-chat/internal/llm"
	"support-chat/internal/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   llm.Reply
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (llm.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

var testDocs = []corpus.DocChunk{{Content: "Passwords can be reset from the login page."}}

func TestConversationService_Chat(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{reply: llm.Reply{Text: "Use the login page.", TokensUsed: 42}}
	queue := messaging.NewInMemoryQueue()
	defer queue.Close()

	service := NewConversationService(db, testDocs, generator, 0, queue)

	result, err := service.Chat(context.Background(), "s1", "hello")
	require.NoError(t, err)
	assert.Equal(t, TurnResult{Reply: "Use the login page.", TokensUsed: 42}, result)

	history, err := service.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, database.RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, database.RoleAssistant, history[1].Role)
	assert.Equal(t, "Use the login page.", history[1].Content)

	require.Len(t, generator.prompts, 1)
	prompt := generator.prompts[0]
	assert.Contains(t, prompt, "Passwords can be reset from the login page.\n")
	assert.True(t, strings.HasSuffix(prompt, "USER: hello\n\nCurrent Question:\nhello\n"))

	sessions, err := service.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.False(t, sessions[0].UpdatedAt.Before(sessions[0].CreatedAt))

	select {
	case event := <-queue.Turns():
		assert.Equal(t, "s1", event.SessionID)
		assert.Equal(t, int64(42), event.TokensUsed)
		assert.False(t, event.Fallback)
	case <-time.After(5 * time.Second):
		t.Fatal("turn event was not published")
	}
}

func TestConversationService_WindowIncludesPriorTurns(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{reply: llm.Reply{Text: "ok", TokensUsed: 1}}
	service := NewConversationService(db, testDocs, generator, 4, nil)

	for _, q := range []string{"q1", "q2", "q3"} {
		_, err := service.Chat(context.Background(), "s1", q)
		require.NoError(t, err)
	}

	require.Len(t, generator.prompts, 3)
	last := generator.prompts[2]
	assert.Contains(t, last, "Conversation History:\nASSISTANT: ok\nUSER: q2\nASSISTANT: ok\nUSER: q3\n\n")
	assert.NotContains(t, last, "USER: q1")
}

func TestConversationService_FallbackReply(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{reply: llm.Reply{Text: FallbackReply, Fallback: true}}
	service := NewConversationService(db, testDocs, generator, 0, nil)

	result, err := service.Chat(context.Background(), "s1", "what is the meaning of life?")
	require.NoError(t, err)
	assert.Equal(t, TurnResult{Reply: FallbackReply, TokensUsed: 0, Fallback: true}, result)

	history, err := service.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	meta, err := database.DecodeMetadata(history[1].Metadata)
	require.NoError(t, err)
	assert.Equal(t, &database.MessageMetadata{TokensUsed: 0, Fallback: true}, meta)
}

func TestConversationService_ValidationDoesNotWrite(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{reply: llm.Reply{Text: "x"}}
	service := NewConversationService(db, testDocs, generator, 0, nil)

	cases := []struct{ session, message string }{
		{"", "hello"},
		{"s1", ""},
		{"  ", "hello"},
		{"s1", " \n\t"},
		{strings.Repeat("a", 256), "hello"},
	}
	for _, c := range cases {
		_, err := service.Chat(context.Background(), c.session, c.message)
		assert.ErrorIs(t, err, ErrValidation)
	}

	_, err := service.Chat(context.Background(), strings.Repeat("a", MaxSessionIDLength+1), "hello")
	assert.ErrorIs(t, err, ErrSessionIDTooLong)
	_, err = service.Chat(context.Background(), "", "hello")
	assert.NotErrorIs(t, err, ErrSessionIDTooLong)

	assert.Empty(t, generator.prompts)

	var sessions, messages int64
	require.NoError(t, db.Model(&database.ChatSession{}).Count(&sessions).Error)
	require.NoError(t, db.Model(&database.ChatMessage{}).Count(&messages).Error)
	assert.Zero(t, sessions)
	assert.Zero(t, messages)
}

func TestConversationService_GeneratorErrorKeepsUserMessage(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{err: errors.New("no completer")}
	service := NewConversationService(db, testDocs, generator, 0, nil)

	_, err := service.Chat(context.Background(), "s1", "hello")
	assert.ErrorIs(t, err, ErrInternal)

	history, err := service.History(context.Background(), "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, database.RoleUser, history[0].Role)
}

func TestConversationService_StorageError(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{reply: llm.Reply{Text: "x"}}
	service := NewConversationService(db, testDocs, generator, 0, nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = service.Chat(context.Background(), "s1", "hello")
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, generator.prompts)
}

func TestConversationService_HistoryLimit(t *testing.T) {
	db := createDB(t)
	generator := &fakeGenerator{reply: llm.Reply{Text: "ok"}}
	service := NewConversationService(db, testDocs, generator, 0, nil)

	for _, q := range []string{"q1", "q2"} {
		_, err := service.Chat(context.Background(), "s1", q)
		require.NoError(t, err)
	}

	recent, err := service.History(context.Background(), "s1", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "q2", "ok"}, contents(recent))
}
