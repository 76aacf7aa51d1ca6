package services

import (
	"testing"
	"time"
)

func TestNextOccurrenceDaily(t *testing.T) {
	after := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	next, ok := NextOccurrence("daily", after, 8)
	if !ok {
		t.Fatal("Expected a schedule for daily")
	}

	want := time.Date(2026, 3, 11, 8, 0, 0, 0, time.Local)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestNextOccurrenceEveryMonday(t *testing.T) {
	// 2026-03-10 is a Tuesday.
	after := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	next, ok := NextOccurrence("every monday", after, 9)
	if !ok {
		t.Fatal("Expected a schedule for every monday")
	}

	if next.Weekday() != time.Monday {
		t.Errorf("Expected a Monday, got %v", next.Weekday())
	}
	if next.Hour() != 9 {
		t.Errorf("Expected anchor hour 9, got %d", next.Hour())
	}
	if !next.After(after) {
		t.Errorf("Next occurrence must be in the future, got %v", next)
	}
}

func TestNextOccurrenceUnknownPattern(t *testing.T) {
	if _, ok := NextOccurrence("every fortnight-ish", time.Now(), 8); ok {
		t.Error("Unknown patterns must not produce a schedule")
	}
}
