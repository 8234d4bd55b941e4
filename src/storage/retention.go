package storage

import (
	"time"

	"portfolio-stream/src/interfaces"
	"portfolio-stream/src/logger"

	"github.com/jonboulle/clockwork"
)

// -----------------------------------------------------------------------------

// RunRetentionLoop prunes archived quotes past the retention window on every
// tick. Blocks until stop is closed; run it in its own goroutine.
func RunRetentionLoop(db interfaces.IDatabase, interval time.Duration, clock clockwork.Clock, log *logger.Logger, stop <-chan struct{}) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if err := db.CleanupOldData(); err != nil {
				log.Warning("Retention cleanup failed: %v", err)
			}

		case <-stop:
			return
		}
	}
}
