// Package queue provides the bounded queues used by the lookahead FIFO and
// its simulation harness.
//
// This package offers three implementations of the Queue interface:
//   - Ring: fixed-capacity arena ring with offset peek (the FIFO's buffer)
//   - ChannelQueue: standard library approach using buffered channels
//   - ShardedQueue: lock-free ring from go-lock-free-ring
//
// # Ownership
//
// Ring does no synchronization at all. It is meant to be owned by exactly
// one state machine that already serializes access (fclq.Queue holds it
// behind a single mutex and touches it once per tick).
//
// ChannelQueue and ShardedQueue carry per-tick stimulus from a producer
// goroutine to the clock driver and are safe for one producer and one
// consumer running concurrently.
package queue

// Queue is a bounded, non-blocking FIFO.
//
// Implementations are non-blocking: Push returns false if full,
// Pop returns false if empty.
type Queue[T any] interface {
	// Push adds an item to the queue.
	// Returns false if the queue is full.
	Push(T) bool

	// Pop removes and returns an item from the queue.
	// Returns false if the queue is empty.
	Pop() (T, bool)
}

// Peeker is a Queue whose front entries can be inspected without removal.
type Peeker[T any] interface {
	Queue[T]

	// Peek returns the item n positions behind the head.
	// Returns false if fewer than n+1 items are queued.
	Peek(n int) (T, bool)

	// Len returns the current number of items.
	Len() int
}
