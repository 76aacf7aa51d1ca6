package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-co-op/gocron/v2"

	"nova/internal/memory"
)

// How many nightly snapshots to keep on disk.
const snapshotRetention = 14

// registerJournalSnapshot writes a timestamped copy of the journal every
// night at 03:00 and prunes snapshots beyond the retention bound.
func (m *Maintenance) registerJournalSnapshot(journal *memory.Journal, snapshotDir string) error {
	_, err := m.scheduler.NewJob(
		gocron.CronJob("0 3 * * *", false),
		gocron.NewTask(func() {
			path := filepath.Join(snapshotDir, fmt.Sprintf("journal-%s.json", time.Now().Format("20060102-150405")))
			if err := journal.Snapshot(path); err != nil {
				log.Printf("⚠️  [SNAPSHOT] Failed to write journal snapshot: %v", err)
				return
			}
			log.Printf("💾 [SNAPSHOT] Journal snapshot written to %s", path)
			pruneSnapshots(snapshotDir)
		}),
		gocron.WithName("journal-snapshot"),
	)
	if err != nil {
		return fmt.Errorf("failed to register journal snapshot job: %w", err)
	}
	return nil
}

// pruneSnapshots deletes the oldest snapshots beyond the retention bound. The
// timestamped names sort chronologically, so lexical order is enough.
func pruneSnapshots(snapshotDir string) {
	matches, err := filepath.Glob(filepath.Join(snapshotDir, "journal-*.json"))
	if err != nil || len(matches) <= snapshotRetention {
		return
	}

	sort.Strings(matches)
	for _, stale := range matches[:len(matches)-snapshotRetention] {
		if err := os.Remove(stale); err != nil {
			log.Printf("⚠️  [SNAPSHOT] Failed to prune %s: %v", stale, err)
			continue
		}
		log.Printf("🧹 [SNAPSHOT] Pruned old snapshot %s", stale)
	}
}
