package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"nova/internal/cache"
	"nova/internal/memory"
	"nova/internal/services"
)

// Maintenance runs the background housekeeping jobs: cache sweeps, journal
// snapshots and lookup-service status refreshes. Separate from the proactive
// agent, which owns user-facing behavior.
type Maintenance struct {
	scheduler gocron.Scheduler
}

// NewMaintenance creates the scheduler and registers all jobs.
func NewMaintenance(c *cache.Cache, journal *memory.Journal, api *services.APIService, snapshotDir string) (*Maintenance, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.Local),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	m := &Maintenance{scheduler: scheduler}

	if err := m.registerCacheSweep(c); err != nil {
		return nil, err
	}
	if err := m.registerJournalSnapshot(journal, snapshotDir); err != nil {
		return nil, err
	}
	if err := m.registerStatusRefresh(api); err != nil {
		return nil, err
	}

	return m, nil
}

// Start begins running the registered jobs.
func (m *Maintenance) Start() {
	m.scheduler.Start()
	log.Println("⏰ Maintenance scheduler started")
}

// Stop shuts the scheduler down, waiting for running jobs.
func (m *Maintenance) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️  Failed to stop maintenance scheduler: %v", err)
		return
	}
	log.Println("✅ Maintenance scheduler stopped")
}
