package models

import "time"

// JournalEntry is one immutable record in the journal. Entries are created by
// Journal.Append, never mutated afterwards, and only removed by a full clear.
type JournalEntry struct {
	Timestamp time.Time  `json:"timestamp"`
	Category  Category   `json:"category"`
	Text      string     `json:"text"`
	Tags      []string   `json:"tags"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Recurring string     `json:"recurring,omitempty"`
}

// IsOverdue reports whether the entry carries a due date in the past.
func (e *JournalEntry) IsOverdue(now time.Time) bool {
	return e.DueDate != nil && e.DueDate.Before(now)
}

// IsDueOn reports whether the entry is due on the given calendar day.
func (e *JournalEntry) IsDueOn(day time.Time) bool {
	if e.DueDate == nil {
		return false
	}
	y1, m1, d1 := e.DueDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
