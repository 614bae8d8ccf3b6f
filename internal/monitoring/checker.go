package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Checker periodically collects a snapshot, syncs the gauges that are not
// updated inline and logs a warning while the dataset is missing.
type Checker struct {
	collector *Collector
	metrics   *Metrics
	interval  time.Duration
}

// NewChecker creates a background checker. metrics may be nil.
func NewChecker(collector *Collector, metrics *Metrics, interval time.Duration) *Checker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Checker{collector: collector, metrics: metrics, interval: interval}
}

// Run blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting status checker", zap.Duration("interval", c.interval))

	ticker := c.collector.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("status checker stopped")
			return
		case <-ticker.Chan():
			c.Check(log)
		}
	}
}

// Check runs one collection pass.
func (c *Checker) Check(log *zap.Logger) *Snapshot {
	snap := c.collector.Collect()
	if c.metrics != nil {
		c.metrics.SessionsActive.Set(float64(snap.SessionsActive))
		c.metrics.RowsLoaded.Set(float64(snap.Dataset.Records))
	}
	if !snap.Dataset.Loaded {
		log.Warn("monitoring: dataset not loaded yet")
		return snap
	}
	log.Debug("monitoring: status",
		zap.Int("records", snap.Dataset.Records),
		zap.Int("sessions", snap.SessionsActive),
		zap.String("uptime", snap.Uptime),
	)
	return snap
}
