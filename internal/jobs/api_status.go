package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"nova/internal/services"
)

// registerStatusRefresh re-probes the external lookup services every 30
// minutes so the status endpoint reflects recoveries, not just failures seen
// on the request path.
func (m *Maintenance) registerStatusRefresh(api *services.APIService) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			api.TestConnectivity(ctx)
		}),
		gocron.WithName("api-status-refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to register status refresh job: %w", err)
	}
	return nil
}
