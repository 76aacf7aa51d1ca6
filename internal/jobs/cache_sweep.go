package jobs

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"nova/internal/cache"
)

// registerCacheSweep evicts expired cache entries hourly. Get semantics don't
// depend on it; this just keeps the persisted file from accumulating stale
// records.
func (m *Maintenance) registerCacheSweep(c *cache.Cache) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(c.Sweep),
		gocron.WithName("cache-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to register cache sweep job: %w", err)
	}
	return nil
}
