package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartLotterySweep runs SweepExpired on a fixed interval until the
// context is cancelled or the returned stop function is called. Errors
// are logged per iteration and never stop the worker.
func StartLotterySweep(ctx context.Context, lottery LotteryService, interval time.Duration) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithField("interval", interval).Info("Lottery sweep worker started")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Lottery sweep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Lottery sweep worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				if err := lottery.SweepExpired(ctx); err != nil {
					log.Errorf("Lottery sweep failed: %v", err)
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
