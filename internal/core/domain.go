package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

const (
	Credit Kind = "add"
	Debit  Kind = "remove"

	Up   Direction = "up"
	Down Direction = "down"
)

const (
	// DefaultHistoryLimit is how many transactions a child keeps, newest first.
	DefaultHistoryLimit = 3
	// DefaultMaxDigits caps the numeric entry on the pad.
	DefaultMaxDigits = 6
	// DefaultColor is the color preselected in the add form.
	DefaultColor = "#FF6B6B"
)

type (
	ChildID   int64
	Kind      string
	Direction string

	// Child is a tracked person with a point balance and a short history.
	Child struct {
		ID           ChildID       `json:"id"`
		Name         string        `json:"name"`
		Points       int           `json:"points"`
		Color        string        `json:"color"`
		Transactions []Transaction `json:"transactions"`
	}

	// Transaction is a single recorded credit or debit.
	Transaction struct {
		Kind      Kind
		Amount    int
		Timestamp time.Time
	}

	// Document is the whole persisted state.
	Document struct {
		Children []Child `json:"children"`
	}
)

var (
	ErrInputRejected    = errors.New("input rejected")
	ErrEmptyName        = fmt.Errorf("%w: name cannot be empty", ErrInputRejected)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be a positive integer", ErrInputRejected)
	ErrInvalidKind      = fmt.Errorf("%w: invalid transaction kind", ErrInputRejected)
	ErrInvalidDirection = fmt.Errorf("%w: invalid direction", ErrInputRejected)

	ErrNotFound    = errors.New("child not found")
	ErrPersistence = errors.New("persistence unavailable")
)

// NormalizeName trims surrounding whitespace and applies NFC so that visually
// identical names compare equal.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func (k Kind) Validate() error {
	switch k {
	case Credit, Debit:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseKind accepts the persisted names ("add", "remove") and the ledger
// names ("credit", "debit").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "credit", "+":
		return Credit, nil
	case "remove", "debit", "-":
		return Debit, nil
	default:
		return "", ErrInvalidKind
	}
}

// Sign returns "+" for credits and "-" for debits.
func (k Kind) Sign() string {
	if k == Debit {
		return "-"
	}
	return "+"
}

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", ErrInvalidDirection
	}
}

func ValidateAmount(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	return ValidateAmount(t.Amount)
}

// Apply returns a copy of c with the transaction applied. Debits clamp the
// balance at zero and the history is truncated to limit entries.
func (c Child) Apply(kind Kind, amount int, at time.Time, limit int) (Child, error) {
	tx := Transaction{Kind: kind, Amount: amount, Timestamp: at}
	if err := tx.Validate(); err != nil {
		return c, err
	}
	out := c.Clone()
	if kind == Credit {
		out.Points += amount
	} else {
		out.Points -= amount
	}
	if out.Points < 0 {
		out.Points = 0
	}
	out.Transactions = append([]Transaction{tx}, out.Transactions...)
	out.Transactions = truncate(out.Transactions, limit)
	return out, nil
}

// Clone returns a deep copy of c.
func (c Child) Clone() Child {
	out := c
	out.Transactions = make([]Transaction, len(c.Transactions))
	copy(out.Transactions, c.Transactions)
	return out
}

// Normalize repairs a record read from storage: the balance is clamped at
// zero, invalid transactions are dropped and the history is truncated.
func (c Child) Normalize(limit int) Child {
	out := c
	if out.Points < 0 {
		out.Points = 0
	}
	out.Transactions = make([]Transaction, 0, len(c.Transactions))
	for _, tx := range c.Transactions {
		if tx.Validate() == nil {
			out.Transactions = append(out.Transactions, tx)
		}
	}
	out.Transactions = truncate(out.Transactions, limit)
	return out
}

func truncate(txs []Transaction, limit int) []Transaction {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if len(txs) > limit {
		return txs[:limit]
	}
	return txs
}
