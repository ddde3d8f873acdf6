// Package janitor implements the periodic background sweep: evicting
// disconnected shoppers past the grace window and expired pending
// collaboration requests.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/store"
)

type Janitor struct {
	store       *store.Store
	bus         *eventbus.Bus
	logger      *slog.Logger
	interval    time.Duration
	graceWindow time.Duration
	collabTTL   time.Duration
}

func New(st *store.Store, bus *eventbus.Bus, logger *slog.Logger, interval, graceWindow, collabTTL time.Duration) *Janitor {
	return &Janitor{
		store:       st,
		bus:         bus,
		logger:      logger,
		interval:    interval,
		graceWindow: graceWindow,
		collabTTL:   collabTTL,
	}
}

// Run blocks ticking until ctx is canceled. Each tick runs to completion —
// there is no mid-sweep cancellation.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	evicted := j.store.EvictStaleShoppers(j.graceWindow)
	if len(evicted) > 0 {
		j.logger.Info("EVICTION_COMPLETE", slog.Int("count", len(evicted)), slog.Any("shopper_ids", evicted))
		j.bus.PublishQueueChanged()
	}

	expired := j.store.EvictExpiredCollab(j.collabTTL)
	if len(expired) > 0 {
		j.logger.Info("COLLAB_TTL_SWEPT", slog.Int("count", len(expired)))
	}
}
