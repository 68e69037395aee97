// Package trace records every tick of a queue as JSON lines.
//
// The first line is a Header naming the run; each following line is one
// Record. A trace can be replayed through Read.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/multierr"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// Version is written into every header.
const Version = 1

// maxLine bounds one trace line when reading.
const maxLine = 1 << 20

// ErrFormat is returned for a trace that cannot be read back.
var ErrFormat = errors.New("trace: bad format")

// Header is the first line of a trace.
type Header struct {
	Version  int         `json:"version"`
	RunID    string      `json:"runId"`
	Started  time.Time   `json:"started"`
	Scenario string      `json:"scenario,omitempty"`
	Seed     uint64      `json:"seed,omitempty"`
	Params   fclq.Params `json:"params"`
}

// NewHeader returns a header with a fresh run ID.
func NewHeader(p fclq.Params) Header {
	return Header{
		Version: Version,
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Params:  p,
	}
}

// Record is one tick. Signals that are low are left out.
type Record struct {
	Cycle uint64 `json:"cycle"`

	Reset       bool       `json:"reset,omitempty"`
	WriteEnable bool       `json:"we,omitempty"`
	DataIn      fclq.Entry `json:"din,omitempty"`
	Pop         bool       `json:"pop,omitempty"`
	PeekIndex   int        `json:"peek,omitempty"`

	DataOut  fclq.Entry `json:"dout,omitempty"`
	NonEmpty bool       `json:"nonEmpty,omitempty"`
	Ready    bool       `json:"ready,omitempty"`

	Occupancy int    `json:"occ"`
	Countdown int    `json:"countdown,omitempty"`
	Phase     string `json:"phase"`

	Accepted  bool `json:"accepted,omitempty"`
	Dropped   bool `json:"dropped,omitempty"`
	Popped    bool `json:"popped,omitempty"`
	Underflow bool `json:"underflow,omitempty"`
	Tripped   bool `json:"tripped,omitempty"`
	Released  bool `json:"released,omitempty"`
}

// NewRecord flattens an event.
func NewRecord(ev fclq.Event) Record {
	return Record{
		Cycle:       ev.Cycle,
		Reset:       ev.In.Reset,
		WriteEnable: ev.In.WriteEnable,
		DataIn:      ev.In.DataIn,
		Pop:         ev.In.Pop,
		PeekIndex:   ev.In.PeekIndex,
		DataOut:     ev.Out.DataOut,
		NonEmpty:    ev.Out.NonEmpty,
		Ready:       ev.Out.Ready,
		Occupancy:   ev.Occupancy,
		Countdown:   ev.Countdown,
		Phase:       ev.Phase.String(),
		Accepted:    ev.Accepted,
		Dropped:     ev.Dropped,
		Popped:      ev.Popped,
		Underflow:   ev.Underflow,
		Tripped:     ev.Tripped,
		Released:    ev.Released,
	}
}

// Inputs returns the sampled inputs of the record.
func (r Record) Inputs() fclq.Inputs {
	return fclq.Inputs{
		Reset:       r.Reset,
		WriteEnable: r.WriteEnable,
		DataIn:      r.DataIn,
		Pop:         r.Pop,
		PeekIndex:   r.PeekIndex,
	}
}

// Outputs returns the outputs of the record.
func (r Record) Outputs() fclq.Outputs {
	return fclq.Outputs{DataOut: r.DataOut, NonEmpty: r.NonEmpty, Ready: r.Ready}
}

// Writer is an fclq.Observer that writes a trace.
//
// Observe cannot return an error. The first write error is kept, later
// ticks are skipped, and the error is reported by Err, Flush and Close.
type Writer struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closer  io.Closer
	err     error
	records uint64
}

// NewWriter writes h to w and returns a Writer appending to it.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	tw := &Writer{w: bufio.NewWriter(w)}
	if err := tw.line(h); err != nil {
		return nil, err
	}
	return tw, nil
}

// Create creates or truncates the file at path and starts a trace in it.
// Close closes the file.
func Create(path string, h Header) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace: %w", err)
	}
	tw, err := NewWriter(f, h)
	if err != nil {
		return nil, multierr.Append(err, f.Close())
	}
	tw.closer = f
	return tw, nil
}

func (w *Writer) line(v any) error {
	b, err := sonnet.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding trace line: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Observe implements fclq.Observer.
func (w *Writer) Observe(ev fclq.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if w.err = w.line(NewRecord(ev)); w.err == nil {
		w.records++
	}
}

// Records returns the number of ticks written.
func (w *Writer) Records() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.records
}

// Err returns the first write error.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Flush writes buffered lines out.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// Close flushes the trace and closes the file opened by Create.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.closer != nil {
		err = multierr.Append(err, w.closer.Close())
	}
	return err
}

// Read parses a whole trace.
func Read(r io.Reader) (Header, []Record, error) {
	var h Header
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return h, nil, err
		}
		return h, nil, fmt.Errorf("%w: empty trace", ErrFormat)
	}
	if err := sonnet.Unmarshal(sc.Bytes(), &h); err != nil {
		return h, nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: version %d, expected %d", ErrFormat, h.Version, Version)
	}

	var recs []Record
	for line := 2; sc.Scan(); line++ {
		var rec Record
		if err := sonnet.Unmarshal(sc.Bytes(), &rec); err != nil {
			return h, recs, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		recs = append(recs, rec)
	}
	return h, recs, sc.Err()
}
