// Package numbering formats the human-readable document numbers used for
// quotes (Q-2026-0001) and sales (SAL-2026-03-001).
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Scheme struct {
	// Prefix returns the period prefix, including the trailing dash.
	Prefix func(t time.Time) string
	Width  int
}

var (
	Quote = Scheme{
		Prefix: func(t time.Time) string { return fmt.Sprintf("Q-%04d-", t.Year()) },
		Width:  4,
	}
	Sale = Scheme{
		Prefix: func(t time.Time) string { return fmt.Sprintf("SAL-%04d-%02d-", t.Year(), int(t.Month())) },
		Width:  3,
	}
)

func (s Scheme) Format(t time.Time, seq int) string {
	return fmt.Sprintf("%s%0*d", s.Prefix(t), s.Width, seq)
}

// Sequence extracts the numeric suffix of number under prefix. Numbers with a
// different prefix or a non-numeric tail report ok=false.
func Sequence(prefix, number string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Next returns max(existing sequences under prefix) + 1.
func Next(prefix string, existing []string) int {
	highest := 0
	for _, number := range existing {
		if n, ok := Sequence(prefix, number); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}
