package integrationtests

import (
	"context"
	"testing"
	"time"

	"support-chat/internal/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRabbitMQTurnEvents(t *testing.T) {
	skipShort(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	url := setupRabbitMQContainer(t, ctx)

	publisher, err := messaging.NewRabbitMQPublisher(url)
	require.NoError(t, err)
	defer publisher.Close()

	receiver, err := messaging.NewRabbitMQReceiver(url)
	require.NoError(t, err)
	defer receiver.Close()

	event := messaging.NewTurnCompleted("s1", 42, true)
	require.NoError(t, publisher.PublishTurn(ctx, event))

	select {
	case received := <-receiver.Turns():
		assert.Equal(t, event.EventID, received.EventID)
		assert.Equal(t, "s1", received.SessionID)
		assert.Equal(t, int64(42), received.TokensUsed)
		assert.True(t, received.Fallback)
		assert.True(t, event.CompletedAt.Equal(received.CompletedAt))
	case <-time.After(30 * time.Second):
		t.Fatal("timed out waiting for turn event")
	}

	tracker := messaging.NewUsageTracker()
	trackerCtx, stopTracker := context.WithCancel(ctx)
	defer stopTracker()
	go tracker.Run(trackerCtx, receiver)

	require.NoError(t, publisher.PublishTurn(ctx, messaging.NewTurnCompleted("s2", 5, false)))
	assert.Eventually(t, func() bool {
		return tracker.Summary().Turns == 1
	}, 30*time.Second, 100*time.Millisecond)
}
