package monitoring

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

type stubDataset struct{ stats DatasetStats }

func (s stubDataset) Stats() DatasetStats { return s.stats }

type stubSessions int

func (s stubSessions) Len() int { return int(s) }

func TestCollector_Collect(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	ds := stubDataset{stats: DatasetStats{Loaded: true, Records: 3100, Excluded: map[string]int{"invalid_value": 4}}}
	c := NewCollector(ds, stubSessions(2), clock)

	clock.Advance(90 * time.Second)
	snap := c.Collect()

	assert.Equal(t, 3100, snap.Dataset.Records)
	assert.Equal(t, 4, snap.Dataset.Excluded["invalid_value"])
	assert.Equal(t, 2, snap.SessionsActive)
	assert.Equal(t, "1m30s", snap.Uptime)
	assert.Equal(t, clock.Now(), snap.CollectedAt)
}

func TestCollector_NilSessions(t *testing.T) {
	c := NewCollector(stubDataset{}, nil, nil)
	snap := c.Collect()
	assert.Equal(t, 0, snap.SessionsActive)
	assert.False(t, snap.Dataset.Loaded)
}
