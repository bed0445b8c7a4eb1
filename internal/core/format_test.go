package core

import (
	"testing"
	"time"
)

func TestFormatWhen(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 3, 15, 18, 30, 0, 0, loc)
	cases := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"earlier today", time.Date(2025, 3, 15, 9, 5, 0, 0, loc), "09:05"},
		{"just now", now, "18:30"},
		{"yesterday evening", time.Date(2025, 3, 14, 22, 0, 0, 0, loc), "Mar 14"},
		{"same day last month", time.Date(2025, 2, 15, 18, 0, 0, 0, loc), "Feb 15"},
		{"last year", time.Date(2024, 12, 1, 8, 0, 0, 0, loc), "Dec 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatWhen(tc.ts, now); got != tc.want {
				t.Fatalf("FormatWhen = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatWhenUsesNowLocation(t *testing.T) {
	rome := time.FixedZone("CET", 3600)
	now := time.Date(2025, 3, 15, 0, 30, 0, 0, rome)
	ts := time.Date(2025, 3, 14, 23, 15, 0, 0, time.UTC) // 00:15 in CET
	if got := FormatWhen(ts, now); got != "00:15" {
		t.Fatalf("FormatWhen = %q, want %q", got, "00:15")
	}
}
