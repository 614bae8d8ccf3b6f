package monitoring

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DatasetStats describes the published dataset.
type DatasetStats struct {
	Loaded   bool           `json:"loaded"`
	Source   string         `json:"source,omitempty"`
	Records  int            `json:"records"`
	Excluded map[string]int `json:"excluded,omitempty"`
	Counties int            `json:"counties"`
	LoadedAt time.Time      `json:"loaded_at,omitzero"`
}

// DatasetReporter exposes dataset stats.
type DatasetReporter interface {
	Stats() DatasetStats
}

// SessionCounter reports how many view sessions are mounted.
type SessionCounter interface {
	Len() int
}

// Snapshot is a point-in-time view of service health.
type Snapshot struct {
	Dataset        DatasetStats `json:"dataset"`
	SessionsActive int          `json:"sessions_active"`
	Uptime         string       `json:"uptime"`
	CollectedAt    time.Time    `json:"collected_at"`
}

// Collector gathers a Snapshot from the dataset store and session registry.
type Collector struct {
	dataset  DatasetReporter
	sessions SessionCounter
	clock    clockwork.Clock
	started  time.Time
}

// NewCollector creates a collector. sessions may be nil.
func NewCollector(dataset DatasetReporter, sessions SessionCounter, clock clockwork.Clock) *Collector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Collector{dataset: dataset, sessions: sessions, clock: clock, started: clock.Now()}
}

// Collect returns the current snapshot.
func (c *Collector) Collect() *Snapshot {
	now := c.clock.Now()
	snap := &Snapshot{
		Dataset:     c.dataset.Stats(),
		Uptime:      now.Sub(c.started).Truncate(time.Second).String(),
		CollectedAt: now.UTC(),
	}
	if c.sessions != nil {
		snap.SessionsActive = c.sessions.Len()
	}
	return snap
}
