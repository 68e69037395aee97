package fclq_test

import (
	"errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

func TestDefaultParams_Valid(t *testing.T) {
	p := fclq.DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("expected default params to validate, got %v", err)
	}
	if p.Capacity != 52 || p.HighWatermark != 51 || p.HoldOffCycles != 47 || p.PeekWidth != 4 || p.EntryWidth != 6 {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if p.MaxEntry() != 63 {
		t.Errorf("expected MaxEntry() = 63, got %d", p.MaxEntry())
	}
}

func TestParams_ValidateReportsEverything(t *testing.T) {
	p := fclq.Params{
		Capacity:      4,
		HighWatermark: 4,
		HoldOffCycles: -1,
		PeekWidth:     5,
		EntryWidth:    33,
	}
	err := p.Validate()
	if !errors.Is(err, fclq.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("expected 4 violations, got %d: %v", n, err)
	}
}

func TestParams_EntryMask32(t *testing.T) {
	p := fclq.DefaultParams()
	p.EntryWidth = 32
	if p.EntryMask() != 0xFFFFFFFF {
		t.Errorf("expected full 32-bit mask, got %#x", p.EntryMask())
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	if _, err := fclq.New(fclq.Params{}); !errors.Is(err, fclq.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams for zero params, got %v", err)
	}
}
