// Package editor implements the numeric pad used to stage and confirm a
// point change for one child.
package editor

import (
	"context"
	"strconv"

	"punti/internal/core"
)

type State int

const (
	Idle State = iota
	Entering
	PendingConfirm
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Entering:
		return "entering"
	case PendingConfirm:
		return "pending_confirm"
	default:
		return "unknown"
	}
}

// Pending is a staged transaction awaiting confirmation.
type Pending struct {
	Kind   core.Kind
	Amount int
}

// Applier is satisfied by *state.Store.
type Applier interface {
	ApplyTransaction(ctx context.Context, id core.ChildID, kind core.Kind, amount int) (core.Child, error)
}

type Editor struct {
	maxDigits int
	state     State
	digits    []byte
	pending   *Pending
}

// New returns an idle editor. A maxDigits of zero or less selects
// core.DefaultMaxDigits.
func New(maxDigits int) *Editor {
	if maxDigits <= 0 {
		maxDigits = core.DefaultMaxDigits
	}
	return &Editor{maxDigits: maxDigits}
}

// AppendDigit adds d to the entry. It reports false when d is not a digit
// or the editor is awaiting confirmation. A digit past the cap is dropped
// silently and still reports true.
func (e *Editor) AppendDigit(d byte) bool {
	if e.state == PendingConfirm || d < '0' || d > '9' {
		return false
	}
	if len(e.digits) < e.maxDigits {
		e.digits = append(e.digits, d)
	}
	e.state = Entering
	return true
}

func (e *Editor) Backspace() {
	if e.state == PendingConfirm || len(e.digits) == 0 {
		return
	}
	e.digits = e.digits[:len(e.digits)-1]
	if len(e.digits) == 0 {
		e.state = Idle
	}
}

// Clear empties the entry and drops any staged transaction.
func (e *Editor) Clear() {
	e.digits = e.digits[:0]
	e.pending = nil
	e.state = Idle
}

// Stage captures the current amount with kind and waits for confirmation.
// It is a no-op unless the amount is positive.
func (e *Editor) Stage(kind core.Kind) bool {
	if e.state == PendingConfirm || kind.Validate() != nil || !e.CanStage() {
		return false
	}
	e.pending = &Pending{Kind: kind, Amount: e.Amount()}
	e.state = PendingConfirm
	return true
}

// Confirm applies the staged transaction to child id and resets the editor.
// The reset happens whatever the outcome, including a persistence warning.
// ok is false when nothing was staged.
func (e *Editor) Confirm(ctx context.Context, applier Applier, id core.ChildID) (core.Child, bool, error) {
	if e.state != PendingConfirm || e.pending == nil {
		return core.Child{}, false, nil
	}
	p := *e.pending
	defer e.Reset()

	c, err := applier.ApplyTransaction(ctx, id, p.Kind, p.Amount)
	return c, true, err
}

// Cancel drops the staged transaction and keeps the typed digits.
func (e *Editor) Cancel() {
	if e.state != PendingConfirm {
		return
	}
	e.pending = nil
	e.state = Entering
}

func (e *Editor) Reset() {
	e.digits = e.digits[:0]
	e.pending = nil
	e.state = Idle
}

func (e *Editor) State() State { return e.state }

func (e *Editor) Digits() string { return string(e.digits) }

// Amount parses the entry as base 10, so "007" is 7. Empty is 0.
func (e *Editor) Amount() int {
	if len(e.digits) == 0 {
		return 0
	}
	n, err := strconv.Atoi(string(e.digits))
	if err != nil {
		return 0
	}
	return n
}

func (e *Editor) CanStage() bool { return e.Amount() > 0 }

// Pending returns the staged transaction, if any.
func (e *Editor) Pending() (Pending, bool) {
	if e.pending == nil {
		return Pending{}, false
	}
	return *e.pending, true
}

func (e *Editor) MaxDigits() int { return e.maxDigits }
