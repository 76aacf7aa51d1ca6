package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nova/internal/models"
)

// Journal is the durable, append-only log of classified messages. A single
// mutex serializes the foreground request path and the background agent;
// contention is negligible at personal scale. Every append saves the full log
// synchronously before returning: durability over throughput.
type Journal struct {
	filePath string
	mu       sync.RWMutex
	entries  []models.JournalEntry
}

// NewJournal opens the journal at filePath. A missing or corrupt backing
// store yields an empty journal, never an error.
func NewJournal(filePath string) *Journal {
	j := &Journal{filePath: filePath}
	j.load()
	return j
}

// Append creates one immutable entry stamped with the current instant and
// persists the log before returning. A save failure is logged and swallowed;
// the in-memory state stays authoritative until the next successful save.
func (j *Journal) Append(category models.Category, text string, tags []string, dueDate *time.Time, recurring string) models.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := models.JournalEntry{
		Timestamp: time.Now(),
		Category:  category,
		Text:      text,
		Tags:      tags,
		DueDate:   dueDate,
		Recurring: recurring,
	}

	j.entries = append(j.entries, entry)
	j.saveLocked()

	log.Printf("📝 [JOURNAL] Logged entry: %s - %s", category, text)
	return entry
}

// All returns the most recent limit entries in insertion order.
func (j *Journal) All(limit int) []models.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return tail(j.entries, limit)
}

// ByCategory returns the most recent limit entries with an exact category
// match, in insertion order.
func (j *Journal) ByCategory(category models.Category, limit int) []models.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var matched []models.JournalEntry
	for _, e := range j.entries {
		if e.Category == category {
			matched = append(matched, e)
		}
	}
	return tail(matched, limit)
}

// ByTags returns the most recent limit entries carrying any of the requested
// tags, in insertion order.
func (j *Journal) ByTags(tags []string, limit int) []models.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	wanted := make(map[string]bool, len(tags))
	for _, t := range tags {
		wanted[t] = true
	}

	var matched []models.JournalEntry
	for _, e := range j.entries {
		for _, t := range e.Tags {
			if wanted[t] {
				matched = append(matched, e)
				break
			}
		}
	}
	return tail(matched, limit)
}

// Entries returns a copy of the full log for scanning (used by the agent).
func (j *Journal) Entries() []models.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]models.JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Count returns the total number of entries.
func (j *Journal) Count() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}

// Clear empties the log and persists the empty state. Irreversible.
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = nil
	j.saveLocked()
	log.Println("🧹 [JOURNAL] Memory cleared")
}

// Stats returns per-category counts and a summary of the latest entry.
func (j *Journal) Stats() (map[models.Category]int, string) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	counts := make(map[models.Category]int)
	for _, e := range j.entries {
		counts[e.Category]++
	}

	recent := "No activity yet"
	if len(j.entries) > 0 {
		last := j.entries[len(j.entries)-1]
		text := last.Text
		if len(text) > 50 {
			text = text[:50] + "..."
		}
		recent = fmt.Sprintf("Last: %s - %s", last.Category, text)
	}

	return counts, recent
}

// Snapshot writes a copy of the current log to path (used by the daily
// backup job).
func (j *Journal) Snapshot(path string) error {
	j.mu.RLock()
	data, err := json.MarshalIndent(j.entries, "", "  ")
	j.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal journal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (j *Journal) load() {
	data, err := os.ReadFile(j.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [JOURNAL] Failed to read %s: %v (starting empty)", j.filePath, err)
		}
		return
	}

	var entries []models.JournalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️  [JOURNAL] Corrupt journal file %s: %v (starting empty)", j.filePath, err)
		return
	}

	j.entries = entries
	log.Printf("📦 [JOURNAL] Loaded %d entries from %s", len(entries), j.filePath)
}

// saveLocked persists the log; callers hold the write lock.
func (j *Journal) saveLocked() {
	data, err := json.MarshalIndent(j.entries, "", "  ")
	if err != nil {
		log.Printf("⚠️  [JOURNAL] Failed to marshal journal: %v", err)
		return
	}

	if err := os.WriteFile(j.filePath, data, 0o644); err != nil {
		log.Printf("⚠️  [JOURNAL] Failed to save journal to %s: %v", j.filePath, err)
	}
}

// tail returns the last limit elements, preserving order. limit <= 0 means
// no truncation.
func tail(entries []models.JournalEntry, limit int) []models.JournalEntry {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]models.JournalEntry, len(entries))
	copy(out, entries)
	return out
}
