package server

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2025-03-10")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parsed %v, want %v", got, want)
	}

	got, err = parseDate("")
	if err != nil || got != nil {
		t.Fatalf("expected nil for empty input, got %v, %v", got, err)
	}

	if _, err = parseDate("10/03/2025"); err == nil {
		t.Fatalf("expected error for wrong format")
	}
}

func TestParseDateEndIsInclusive(t *testing.T) {
	got, err := parseDateEnd("2025-03-10")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// The bound is the next midnight, so an order placed late on the
	// named day still satisfies created_at < bound.
	want := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("bound %v, want %v", got, want)
	}
	lateOrder := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	if !lateOrder.Before(*got) {
		t.Fatalf("expected %v to fall inside the range", lateOrder)
	}

	got, err = parseDateEnd("")
	if err != nil || got != nil {
		t.Fatalf("expected nil for empty input, got %v, %v", got, err)
	}
}
