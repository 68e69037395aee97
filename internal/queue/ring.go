package queue

// Ring is a fixed-capacity circular buffer with random access into its
// front entries.
//
// Unlike a power-of-two ring, the capacity is exactly what was asked for,
// so a 52-entry FIFO holds 52 entries. Storage is allocated once in NewRing
// and never grows.
type Ring[T any] struct {
	buf   []T
	start int // index of the head (oldest) entry
	n     int // number of valid entries
}

var _ Peeker[int] = (*Ring[int])(nil)

// NewRing creates a Ring holding at most size items.
// It panics if size is not positive.
func NewRing[T any](size int) *Ring[T] {
	if size <= 0 {
		panic("queue: ring size must be positive")
	}
	return &Ring[T]{buf: make([]T, size)}
}

// index maps an offset from the head onto the backing array.
func (r *Ring[T]) index(n int) int {
	// [_, s, _, _] start = 1, cap = 4
	// [_, s, y, _] n = 1 -> (1 + 1) % 4 = 2
	// [y, s, _, _] n = 3 -> (1 + 3) % 4 = 0
	i := r.start + n
	if i >= len(r.buf) {
		i -= len(r.buf)
	}
	return i
}

// Push appends v at the tail.
// Returns false, leaving the ring untouched, if the ring is full.
func (r *Ring[T]) Push(v T) bool {
	if r.n == len(r.buf) {
		return false
	}
	r.buf[r.index(r.n)] = v
	r.n++
	return true
}

// Pop removes and returns the head.
// Returns false if the ring is empty.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.start]
	r.buf[r.start] = zero
	r.start = r.index(1)
	r.n--
	return v, true
}

// Peek returns the entry n positions behind the head without removing it.
// Peek(0) is the entry Pop would return.
func (r *Ring[T]) Peek(n int) (T, bool) {
	if n < 0 || n >= r.n {
		var zero T
		return zero, false
	}
	return r.buf[r.index(n)], true
}

// Reset drops every entry. The backing array is kept.
func (r *Ring[T]) Reset() {
	clear(r.buf)
	r.start = 0
	r.n = 0
}

// Len returns the current number of items in the ring.
func (r *Ring[T]) Len() int {
	return r.n
}

// Cap returns the capacity of the ring.
func (r *Ring[T]) Cap() int {
	return len(r.buf)
}

// Full reports whether Push would fail.
func (r *Ring[T]) Full() bool {
	return r.n == len(r.buf)
}

// Snapshot copies the queued entries, head first, into dst and returns it.
func (r *Ring[T]) Snapshot(dst []T) []T {
	dst = dst[:0]
	for i := 0; i < r.n; i++ {
		dst = append(dst, r.buf[r.index(i)])
	}
	return dst
}
