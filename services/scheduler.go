// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSettlementScheduler runs the reconciliation cycle on a fixed interval.
// The pipeline is batch, not request-driven: predictions submitted before a
// fight finishes are simply picked up whenever the next cycle runs.
func (s *SettlementService) StartSettlementScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.RunCycle(); err != nil {
				log.Printf("[SETTLE] Cycle error: %v", err)
			}
		}),
	)
}
