package cancel_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randomizedcoder/lookahead-fifo/internal/cancel"
)

var errLimit = errors.New("tick limit reached")

type causer interface {
	cancel.Canceler
	CancelCause(error)
}

var implementations = []struct {
	name  string
	fresh func() causer
	plain error // Err after a plain Cancel
}{
	{"Atomic", func() causer { return cancel.NewAtomic() }, cancel.ErrStopped},
	{"Context", func() causer { return cancel.NewContext(context.Background()) }, context.Canceled},
}

func TestCanceler_Cancel(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			c := impl.fresh()
			assert.False(t, c.Done())
			assert.NoError(t, c.Err())

			c.Cancel()
			assert.True(t, c.Done())
			assert.ErrorIs(t, c.Err(), impl.plain)

			c.Cancel()
			assert.True(t, c.Done())
		})
	}
}

func TestCanceler_FirstCauseWins(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			c := impl.fresh()
			c.CancelCause(errLimit)
			c.Cancel()
			c.CancelCause(errors.New("late"))

			assert.True(t, c.Done())
			assert.ErrorIs(t, c.Err(), errLimit)
		})
	}
}

func TestAtomicCanceler_NilCause(t *testing.T) {
	c := cancel.NewAtomic()
	c.CancelCause(nil)
	assert.ErrorIs(t, c.Err(), cancel.ErrStopped)
}

func TestAtomicCanceler_Reset(t *testing.T) {
	c := cancel.NewAtomic()
	c.Cancel()
	c.Reset()
	assert.False(t, c.Done())
	assert.NoError(t, c.Err())

	c.CancelCause(errLimit)
	assert.ErrorIs(t, c.Err(), errLimit)
}

func TestContextCanceler_Parent(t *testing.T) {
	parent, stop := context.WithCancelCause(context.Background())
	c := cancel.NewContext(parent)

	stop(errLimit)
	assert.True(t, c.Done())
	assert.ErrorIs(t, c.Err(), errLimit)
	assert.Error(t, c.Context().Err())
}

func TestContextCanceler_DoesNotCancelParent(t *testing.T) {
	parent := context.Background()
	c := cancel.NewContext(parent)
	c.Cancel()
	assert.NoError(t, parent.Err())
}

// TestCanceler_Race has readers poll while one goroutine fires the
// canceler. Readers check Err is set whenever Done is.
// Run with: go test -race ./internal/cancel
func TestCanceler_Race(t *testing.T) {
	for _, impl := range implementations {
		t.Run(impl.name, func(t *testing.T) {
			c := impl.fresh()
			var wg sync.WaitGroup

			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 10000; j++ {
						if c.Done() && c.Err() == nil {
							t.Error("expected Err() != nil once Done() = true")
							return
						}
					}
				}()
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				c.CancelCause(errLimit)
			}()

			wg.Wait()
			assert.True(t, c.Done())
		})
	}
}
