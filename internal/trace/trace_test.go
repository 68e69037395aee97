package trace_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/trace"
)

func runTicks(t *testing.T, o fclq.Observer) []fclq.Inputs {
	t.Helper()
	q, err := fclq.New(fclq.DefaultParams(), fclq.WithObserver(o))
	require.NoError(t, err)

	ins := []fclq.Inputs{
		{Reset: true},
		{},
		{WriteEnable: true, DataIn: 63},
		{WriteEnable: true, DataIn: 5},
		{PeekIndex: 1},
		{Pop: true},
		{Pop: true},
		{Pop: true},
	}
	for _, in := range ins {
		q.Step(in)
	}
	return ins
}

func TestWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := trace.NewHeader(fclq.DefaultParams())
	h.Scenario = "basic"
	w, err := trace.NewWriter(&buf, h)
	require.NoError(t, err)

	ins := runTicks(t, w)
	require.NoError(t, w.Close())
	assert.Equal(t, uint64(len(ins)), w.Records())

	got, recs, err := trace.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.RunID, got.RunID)
	assert.Equal(t, "basic", got.Scenario)
	assert.Equal(t, fclq.DefaultParams(), got.Params)
	assert.True(t, h.Started.Equal(got.Started))

	require.Len(t, recs, len(ins))
	var replayed []fclq.Inputs
	for _, r := range recs {
		replayed = append(replayed, r.Inputs())
	}
	if diff := cmp.Diff(ins, replayed); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "reset", recs[0].Phase)
	assert.True(t, recs[2].Accepted)
	assert.Equal(t, fclq.Outputs{DataOut: 5, NonEmpty: true, Ready: true}, recs[4].Outputs())
	assert.True(t, recs[7].Underflow)
}

func TestNewHeader_RunID(t *testing.T) {
	a := trace.NewHeader(fclq.DefaultParams())
	b := trace.NewHeader(fclq.DefaultParams())
	assert.NotEqual(t, a.RunID, b.RunID)
	_, err := uuid.Parse(a.RunID)
	assert.NoError(t, err)
	assert.Equal(t, trace.Version, a.Version)
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	w, err := trace.Create(path, trace.NewHeader(fclq.DefaultParams()))
	require.NoError(t, err)
	runTicks(t, w)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(string(data), "\n"))
}

func TestCreate_BadPath(t *testing.T) {
	_, err := trace.Create(filepath.Join(t.TempDir(), "missing", "run.jsonl"), trace.NewHeader(fclq.DefaultParams()))
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_KeepsFirstError(t *testing.T) {
	// The header fits in the buffer, so the failure shows at flush time.
	w, err := trace.NewWriter(failingWriter{}, trace.NewHeader(fclq.DefaultParams()))
	require.NoError(t, err)
	assert.Error(t, w.Flush())
	assert.Error(t, w.Err())

	runTicks(t, w)
	assert.Zero(t, w.Records())
	assert.Error(t, w.Close())
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"garbage header", "not json\n"},
		{"wrong version", `{"version":99,"runId":"x"}` + "\n"},
		{"garbage record", `{"version":1,"runId":"x"}` + "\n{\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := trace.Read(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, trace.ErrFormat)
		})
	}
}
