package view

import (
	"fmt"
	"time"

	"punti/internal/core"
	"punti/internal/editor"
)

// Snapshot is a read-only model of everything a front end renders.
type Snapshot struct {
	EditMode     bool
	DefaultColor string
	Rows         []Row
	Panel        *Panel
	DeletePrompt *DeletePrompt
}

type Row struct {
	ID     core.ChildID
	Name   string
	Color  string
	Points int
	First  bool
	Last   bool
}

// Panel describes the open child and its pad.
type Panel struct {
	ID       core.ChildID
	Name     string
	Color    string
	Points   int
	History  []HistoryRow
	Display  string
	CanStage bool

	// Pending is set while a transaction awaits confirmation.
	Pending bool
	Kind    core.Kind
	Prompt  string
}

type HistoryRow struct {
	Kind   core.Kind
	Sign   string
	Amount int
	When   string
}

type DeletePrompt struct {
	ID      core.ChildID
	Name    string
	Message string
}

// Snapshot renders the current state. Relative times are formatted against now.
func (c *Controller) Snapshot(now time.Time) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconcile()

	children := c.store.Children()
	snap := Snapshot{
		EditMode:     c.editMode,
		DefaultColor: c.defaultColor,
		Rows:         make([]Row, len(children)),
	}
	for i, ch := range children {
		snap.Rows[i] = Row{
			ID:     ch.ID,
			Name:   ch.Name,
			Color:  ch.Color,
			Points: ch.Points,
			First:  i == 0,
			Last:   i == len(children)-1,
		}
	}

	if c.pendingDelete != nil {
		if ch, ok := c.store.Child(*c.pendingDelete); ok {
			snap.DeletePrompt = &DeletePrompt{
				ID:      ch.ID,
				Name:    ch.Name,
				Message: DeleteMessage(ch.Name),
			}
		}
	}

	if id, ok := c.open.ID(); ok {
		if ch, ok := c.store.Child(id); ok {
			snap.Panel = c.panel(ch, now)
		}
	}
	return snap
}

func (c *Controller) panel(ch core.Child, now time.Time) *Panel {
	p := &Panel{
		ID:       ch.ID,
		Name:     ch.Name,
		Color:    ch.Color,
		Points:   ch.Points,
		History:  make([]HistoryRow, len(ch.Transactions)),
		Display:  c.editor.Digits(),
		CanStage: c.editor.CanStage() && c.editor.State() != editor.PendingConfirm,
	}
	if p.Display == "" {
		p.Display = "0"
	}
	for i, tx := range ch.Transactions {
		p.History[i] = HistoryRow{
			Kind:   tx.Kind,
			Sign:   tx.Kind.Sign(),
			Amount: tx.Amount,
			When:   core.FormatWhen(tx.Timestamp, now),
		}
	}
	if pending, ok := c.editor.Pending(); ok {
		p.Pending = true
		p.Kind = pending.Kind
		p.Prompt = ConfirmMessage(pending.Kind, pending.Amount, ch.Name)
	}
	return p
}

// ConfirmMessage is the question shown before a staged transaction is applied.
func ConfirmMessage(kind core.Kind, amount int, name string) string {
	if kind == core.Debit {
		return fmt.Sprintf("Remove %d points from %s?", amount, name)
	}
	return fmt.Sprintf("Add %d points to %s?", amount, name)
}

func DeleteMessage(name string) string {
	return fmt.Sprintf("Are you sure you want to delete %s? This action is permanent and cannot be undone.", name)
}
