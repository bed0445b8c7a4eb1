package core

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Alice", "Alice", true},
		{"  Alice  ", "Alice", true},
		{"\tSam\n", "Sam", true},
		{"Jose\u0301", "Jos\u00e9", true}, // combining accent is composed
		{"", "", false},
		{"   ", "", false},
	}
	for i, tc := range cases {
		got, err := NormalizeName(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("case %d: %q expected %q, got %q (err=%v)", i, tc.in, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInputRejected) {
			t.Fatalf("case %d: %q expected input rejected, got %v", i, tc.in, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"add", Credit, true},
		{"credit", Credit, true},
		{"REMOVE", Debit, true},
		{"debit", Debit, true},
		{"", "", false},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("Up"); err != nil || d != Up {
		t.Fatalf("expected up, got %q (err=%v)", d, err)
	}
	if d, err := ParseDirection("down"); err != nil || d != Down {
		t.Fatalf("expected down, got %q (err=%v)", d, err)
	}
	if _, err := ParseDirection("left"); !errors.Is(err, ErrInputRejected) {
		t.Fatalf("expected input rejected, got %v", err)
	}
}

func TestChildApply(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	c := Child{ID: 1, Name: "Sam", Color: "#FF0000"}

	c, err := c.Apply(Credit, 5, at, DefaultHistoryLimit)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if c.Points != 5 {
		t.Fatalf("expected 5 points, got %d", c.Points)
	}

	c, err = c.Apply(Debit, 8, at.Add(time.Minute), DefaultHistoryLimit)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if c.Points != 0 {
		t.Fatalf("debit must clamp at zero, got %d", c.Points)
	}
	if len(c.Transactions) != 2 || c.Transactions[0].Kind != Debit || c.Transactions[0].Amount != 8 ||
		c.Transactions[1].Kind != Credit || c.Transactions[1].Amount != 5 {
		t.Fatalf("unexpected history %+v", c.Transactions)
	}
}

func TestChildApplyHistoryCap(t *testing.T) {
	c := Child{ID: 1, Name: "Lee"}
	base := time.UnixMilli(1_700_000_000_000)
	for i := 1; i <= 5; i++ {
		var err error
		c, err = c.Apply(Credit, i, base.Add(time.Duration(i)*time.Second), 3)
		if err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}
	if len(c.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(c.Transactions))
	}
	for i, want := range []int{5, 4, 3} {
		if c.Transactions[i].Amount != want {
			t.Fatalf("position %d: expected amount %d, got %d", i, want, c.Transactions[i].Amount)
		}
	}
	if c.Points != 15 {
		t.Fatalf("expected 15 points, got %d", c.Points)
	}
}

func TestChildApplyRejectsInvalid(t *testing.T) {
	c := Child{ID: 1, Name: "Lee", Points: 4}
	bads := []struct {
		kind   Kind
		amount int
	}{
		{Credit, 0},
		{Debit, -3},
		{Kind("steal"), 2},
	}
	for i, b := range bads {
		got, err := c.Apply(b.kind, b.amount, time.Now(), 3)
		if !errors.Is(err, ErrInputRejected) {
			t.Fatalf("case %d expected input rejected, got %v", i, err)
		}
		if got.Points != 4 || len(got.Transactions) != 0 {
			t.Fatalf("case %d mutated child: %+v", i, got)
		}
	}
}

func TestApplyDoesNotAliasHistory(t *testing.T) {
	c := Child{ID: 1, Name: "A", Transactions: []Transaction{{Kind: Credit, Amount: 1, Timestamp: time.Now()}}}
	out, err := c.Apply(Credit, 2, time.Now(), 3)
	if err != nil {
		t.Fatal(err)
	}
	out.Transactions[1].Amount = 99
	if c.Transactions[0].Amount != 1 {
		t.Fatalf("original history was mutated")
	}
}

func TestChildNormalize(t *testing.T) {
	now := time.Now()
	c := Child{
		ID:     7,
		Name:   "Kim",
		Points: -4,
		Transactions: []Transaction{
			{Kind: Credit, Amount: 1, Timestamp: now},
			{Kind: "bogus", Amount: 1, Timestamp: now},
			{Kind: Debit, Amount: 0, Timestamp: now},
			{Kind: Debit, Amount: 2, Timestamp: now},
			{Kind: Credit, Amount: 3, Timestamp: now},
			{Kind: Credit, Amount: 4, Timestamp: now},
		},
	}
	got := c.Normalize(3)
	if got.Points != 0 {
		t.Fatalf("expected clamped points, got %d", got.Points)
	}
	if len(got.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got.Transactions))
	}
	for i, want := range []int{1, 2, 3} {
		if got.Transactions[i].Amount != want {
			t.Fatalf("position %d: expected %d, got %d", i, want, got.Transactions[i].Amount)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int
		ok  bool
	}{
		{"7", 7, true},
		{"007", 7, true},
		{"123456", 123456, true},
		{" 12 ", 12, true},
		{"0", 0, false},
		{"000", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
