package queue

import (
	"fmt"

	ring "github.com/randomizedcoder/go-lock-free-ring"
)

// ShardedCapacity is the total slot count of a ShardedQueue.
const ShardedCapacity = 1024

// producerID is the single shard every ShardedQueue producer writes to.
// One shard keeps the ring FIFO; more shards would interleave.
const producerID = 0

// ShardedQueue carries stimulus over go-lock-free-ring's ShardedRing.
//
// The ring is built with a single shard, which makes it a strict FIFO
// between one producer goroutine and the clock driver.
type ShardedQueue[T any] struct {
	r *ring.ShardedRing
}

// NewSharded creates a ShardedQueue with ShardedCapacity slots.
func NewSharded[T any]() (*ShardedQueue[T], error) {
	r, err := ring.NewShardedRing(ShardedCapacity, 1)
	if err != nil {
		return nil, err
	}
	return &ShardedQueue[T]{r: r}, nil
}

// Push adds an item to the queue.
// Returns false if the ring is full.
func (q *ShardedQueue[T]) Push(v T) bool {
	return q.r.Write(producerID, v)
}

// Pop removes and returns an item from the queue.
// Returns false if the ring is empty.
//
// Only Push writes to the ring, so every item is a T. Pop panics
// otherwise rather than drop an item it has already consumed.
func (q *ShardedQueue[T]) Pop() (T, bool) {
	v, ok := q.r.TryRead()
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("queue: sharded ring returned %T, expected %T", v, t))
	}
	return t, true
}
