package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_CheckSyncsGauges(t *testing.T) {
	m, _ := NewMetricsForTesting()
	c := NewCollector(stubDataset{stats: DatasetStats{Loaded: true, Records: 12}}, stubSessions(3), clockwork.NewFakeClock())
	checker := NewChecker(c, m, time.Minute)

	snap := checker.Check(zap.NewNop())
	assert.Equal(t, 3, snap.SessionsActive)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.RowsLoaded))
}

func TestChecker_RunTicksAndStops(t *testing.T) {
	m, _ := NewMetricsForTesting()
	clock := clockwork.NewFakeClock()
	sessions := stubSessions(5)
	checker := NewChecker(NewCollector(stubDataset{}, sessions, clock), m, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	_ = clock.BlockUntilContext(ctx, 1)
	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return testutil.ToFloat64(m.SessionsActive) == 5 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("checker did not stop")
	}
}

func TestNewChecker_DefaultInterval(t *testing.T) {
	checker := NewChecker(NewCollector(stubDataset{}, nil, nil), nil, 0)
	assert.Equal(t, time.Minute, checker.interval)
}
