package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartRecalcCron enqueues a full recalculation sweep on a fixed interval
// so derived metrics stay fresh even without imports.
func StartRecalcCron(ctx context.Context, dispatcher *Dispatcher, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("recalc cron disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		log.Info().Dur("interval", interval).Msg("recalc cron started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("recalc cron stopped")
				return
			case <-ticker.C:
				if err := dispatcher.EnqueueRecalc(ctx); err != nil {
					log.Error().Err(err).Msg("recalc enqueue failed")
				}
			}
		}
	}()
}
