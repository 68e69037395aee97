package queue

// ChannelQueue carries stimulus over a buffered channel.
//
// Both ends use select with a default case, so a full channel refuses the
// push and an empty one reports nothing to pop. The clock driver turns an
// empty pop into an idle tick rather than waiting for the producer.
type ChannelQueue[T any] struct {
	ch chan T
}

// NewChannel creates a ChannelQueue holding up to size items. Sizes below
// one are raised to one.
func NewChannel[T any](size int) *ChannelQueue[T] {
	return &ChannelQueue[T]{ch: make(chan T, max(size, 1))}
}

// Push enqueues v unless the channel buffer is full.
func (q *ChannelQueue[T]) Push(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
	}
	return false
}

// Pop dequeues the oldest item, if any.
func (q *ChannelQueue[T]) Pop() (v T, ok bool) {
	select {
	case v = <-q.ch:
		ok = true
	default:
	}
	return v, ok
}

// Len is the number of buffered items.
func (q *ChannelQueue[T]) Len() int { return len(q.ch) }

// Cap is the buffer size.
func (q *ChannelQueue[T]) Cap() int { return cap(q.ch) }

// Free is how many more pushes would succeed right now.
func (q *ChannelQueue[T]) Free() int { return cap(q.ch) - len(q.ch) }
