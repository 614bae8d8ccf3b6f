package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/carbon-map/internal/boundary"
	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/monitoring"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = eris.New("session: not found")

// Source supplies the shared dataset to every session.
type Source interface {
	Records() []model.Record
	Overlay() *boundary.Overlay
}

// Config bounds session lifetime and pointer traffic.
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	PointerRate   rate.Limit
	PointerBurst  int
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the clock used for expiry and rate limiting.
func WithClock(c clockwork.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithMetrics records session gauges.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// Registry owns every live session.
type Registry struct {
	source  Source
	palette *bucket.Palette
	cfg     Config
	clock   clockwork.Clock
	metrics *monitoring.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry; zero Config fields get defaults.
func NewRegistry(source Source, palette *bucket.Palette, cfg Config, opts ...Option) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.PointerRate <= 0 {
		cfg.PointerRate = 60
	}
	if cfg.PointerBurst <= 0 {
		cfg.PointerBurst = 30
	}
	r := &Registry{
		source:   source,
		palette:  palette,
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		sessions: make(map[string]*Session),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Clock returns the registry's clock.
func (r *Registry) Clock() clockwork.Clock { return r.clock }

// Create mounts a new session with the default selection state.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.clock.Now(), r.source, r.palette, r.cfg.PointerRate, r.cfg.PointerBurst)

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	// A publish between building the observers and the insert above would
	// have skipped this session in Refresh.
	s.refresh(r.source.Overlay() != nil)

	r.gauge(n)
	zap.L().Debug("session: created", zap.String("session_id", s.ID))
	return s
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "id %q", id)
	}
	s.touch(r.clock.Now())
	return s, nil
}

// Delete tears down a session. It reports whether the id was live.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return false
	}
	s.close()
	r.gauge(n)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep tears down sessions idle for longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	now := r.clock.Now()
	cutoff := now.Add(-r.cfg.TTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
		zap.L().Debug("session: expired",
			zap.String("session_id", s.ID),
			zap.Duration("age", now.Sub(s.CreatedAt)),
		)
	}
	if len(expired) > 0 {
		r.gauge(n)
		if r.metrics != nil {
			r.metrics.SessionsExpired.Add(float64(len(expired)))
		}
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "session.sweeper"))
	log.Info("starting session sweeper",
		zap.Duration("ttl", r.cfg.TTL),
		zap.Duration("interval", r.cfg.SweepInterval),
	)

	ticker := r.clock.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("session sweeper stopped")
			return
		case <-ticker.Chan():
			if n := r.Sweep(); n > 0 {
				log.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Refresh rebuilds every session's observers, e.g. after a dataset reload.
func (r *Registry) Refresh() {
	overlay := r.source.Overlay() != nil
	for _, s := range r.snapshot() {
		s.refresh(overlay)
	}
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.close()
	}
	r.gauge(0)
}

func (r *Registry) snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

func (r *Registry) gauge(n int) {
	if r.metrics != nil {
		r.metrics.SessionsActive.Set(float64(n))
	}
}
