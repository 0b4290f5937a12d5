package messaging

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("turn queue is full")
	ErrQueueClosed = errors.New("turn queue is closed")
)

const defaultQueueSize = 100

// InMemoryQueue is both the publisher and the receiver for a single process.
// Publishing never blocks: events are dropped with ErrQueueFull when nobody is
// draining the queue.
type InMemoryQueue struct {
	mu     sync.Mutex
	turns  chan TurnCompleted
	closed bool
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		turns: make(chan TurnCompleted, defaultQueueSize),
	}
}

func (q *InMemoryQueue) PublishTurn(ctx context.Context, event TurnCompleted) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.turns <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *InMemoryQueue) Turns() <-chan TurnCompleted {
	return q.turns
}

func (q *InMemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.turns)
	}
}
