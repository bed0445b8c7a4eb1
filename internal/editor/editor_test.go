package editor

import (
	"context"
	"errors"
	"testing"

	"punti/internal/core"
)

type recordingApplier struct {
	calls []Pending
	ids   []core.ChildID
	err   error
}

func (r *recordingApplier) ApplyTransaction(_ context.Context, id core.ChildID, kind core.Kind, amount int) (core.Child, error) {
	r.calls = append(r.calls, Pending{Kind: kind, Amount: amount})
	r.ids = append(r.ids, id)
	return core.Child{ID: id, Points: amount}, r.err
}

func typeDigits(e *Editor, s string) {
	for i := 0; i < len(s); i++ {
		e.AppendDigit(s[i])
	}
}

func TestAppendDigit(t *testing.T) {
	e := New(core.DefaultMaxDigits)
	if e.State() != Idle {
		t.Fatalf("new editor state = %v, want idle", e.State())
	}

	if e.AppendDigit('x') {
		t.Error("non-digit must be rejected")
	}
	typeDigits(e, "12345678")
	if got := e.Digits(); got != "123456" {
		t.Errorf("digits = %q, want digits beyond the cap dropped", got)
	}
	if e.State() != Entering {
		t.Errorf("state = %v, want entering", e.State())
	}
}

func TestMaxDigitsDefault(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, core.DefaultMaxDigits},
		{-1, core.DefaultMaxDigits},
		{2, 2},
	}
	for _, tt := range tests {
		if got := New(tt.in).MaxDigits(); got != tt.want {
			t.Errorf("New(%d).MaxDigits() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		digits   string
		want     int
		canStage bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"000", 0, false},
		{"007", 7, true},
		{"120", 120, true},
		{"999999", 999999, true},
	}
	for _, tt := range tests {
		e := New(6)
		typeDigits(e, tt.digits)
		if got := e.Amount(); got != tt.want {
			t.Errorf("Amount(%q) = %d, want %d", tt.digits, got, tt.want)
		}
		if got := e.CanStage(); got != tt.canStage {
			t.Errorf("CanStage(%q) = %v, want %v", tt.digits, got, tt.canStage)
		}
	}
}

func TestBackspace(t *testing.T) {
	e := New(6)
	e.Backspace()
	if e.State() != Idle {
		t.Fatalf("backspace on empty changed state to %v", e.State())
	}

	typeDigits(e, "42")
	e.Backspace()
	if e.Digits() != "4" || e.State() != Entering {
		t.Fatalf("got %q/%v, want 4/entering", e.Digits(), e.State())
	}
	e.Backspace()
	if e.Digits() != "" || e.State() != Idle {
		t.Fatalf("got %q/%v, want empty/idle", e.Digits(), e.State())
	}
}

func TestStageRequiresPositiveAmount(t *testing.T) {
	e := New(6)
	if e.Stage(core.Credit) {
		t.Fatal("staging with no digits must be a no-op")
	}
	typeDigits(e, "00")
	if e.Stage(core.Debit) {
		t.Fatal("staging a zero amount must be a no-op")
	}
	if e.State() != Entering {
		t.Fatalf("state = %v", e.State())
	}
	e.Clear()
	typeDigits(e, "5")
	if e.Stage(core.Kind("bonus")) {
		t.Fatal("invalid kind must not stage")
	}
}

func TestPendingConfirmIsInert(t *testing.T) {
	e := New(6)
	typeDigits(e, "12")
	if !e.Stage(core.Credit) {
		t.Fatal("stage failed")
	}

	if e.AppendDigit('3') {
		t.Error("digits must be refused while pending")
	}
	e.Backspace()
	if e.Stage(core.Debit) {
		t.Error("restaging while pending must be refused")
	}
	p, ok := e.Pending()
	if !ok || p.Kind != core.Credit || p.Amount != 12 || e.Digits() != "12" {
		t.Fatalf("pending changed: %+v ok=%v digits=%q", p, ok, e.Digits())
	}
}

func TestCancelKeepsDigits(t *testing.T) {
	e := New(6)
	typeDigits(e, "25")
	e.Stage(core.Debit)
	e.Cancel()

	if e.State() != Entering {
		t.Errorf("state = %v, want entering", e.State())
	}
	if e.Digits() != "25" {
		t.Errorf("digits = %q, want 25", e.Digits())
	}
	if _, ok := e.Pending(); ok {
		t.Error("pending must be discarded")
	}

	// Cancel outside PendingConfirm does nothing.
	e.Cancel()
	if e.State() != Entering || e.Digits() != "25" {
		t.Errorf("cancel while entering changed state")
	}
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	e := New(6)
	app := &recordingApplier{}

	if _, ok, err := e.Confirm(ctx, app, 1); ok || err != nil {
		t.Fatalf("confirm without staging: ok=%v err=%v", ok, err)
	}
	if len(app.calls) != 0 {
		t.Fatal("applier must not be called without a staged transaction")
	}

	typeDigits(e, "007")
	e.Stage(core.Credit)
	c, ok, err := e.Confirm(ctx, app, 42)
	if !ok || err != nil {
		t.Fatalf("confirm: ok=%v err=%v", ok, err)
	}
	if len(app.calls) != 1 || app.calls[0] != (Pending{Kind: core.Credit, Amount: 7}) || app.ids[0] != 42 {
		t.Fatalf("unexpected apply calls %+v ids %v", app.calls, app.ids)
	}
	if c.ID != 42 {
		t.Errorf("returned child id = %d", c.ID)
	}
	if e.State() != Idle || e.Digits() != "" {
		t.Errorf("editor not reset: %v %q", e.State(), e.Digits())
	}
}

func TestConfirmResetsOnError(t *testing.T) {
	e := New(6)
	app := &recordingApplier{err: errors.New("boom")}
	typeDigits(e, "3")
	e.Stage(core.Debit)

	_, ok, err := e.Confirm(context.Background(), app, 1)
	if !ok || err == nil {
		t.Fatalf("expected applied-with-error, got ok=%v err=%v", ok, err)
	}
	if e.State() != Idle {
		t.Errorf("state = %v, want idle after a failed confirm", e.State())
	}
}

func TestResetDiscardsPending(t *testing.T) {
	e := New(6)
	typeDigits(e, "9")
	e.Stage(core.Credit)
	e.Reset()

	if _, ok := e.Pending(); ok || e.State() != Idle || e.Digits() != "" {
		t.Fatalf("reset left state behind: %v %q", e.State(), e.Digits())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Entering: "entering", PendingConfirm: "pending_confirm", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
