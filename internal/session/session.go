// Package session keeps one selection state per mounted map view. Events for a
// session are applied one at a time under its mutex; idle sessions are torn
// down after a TTL.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/selection"
	"github.com/sells-group/carbon-map/internal/view"
)

// ErrClosed is returned by Do after the session has been torn down.
var ErrClosed = eris.New("session: closed")

// View is the per-session state with its two observers.
type View struct {
	State *selection.State
	Map   *view.Map
	Panel *view.Panel
}

// Session is one mounted map view.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	view    View
	closed  bool
	limiter *rate.Limiter

	lastSeen atomic.Int64 // unix nanos
}

func newSession(id string, now time.Time, source Source, palette *bucket.Palette, limit rate.Limit, burst int) *Session {
	state := selection.New()
	records := view.RecordSource(source.Records)
	s := &Session{
		ID:        id,
		CreatedAt: now,
		view: View{
			State: state,
			Map:   view.NewMap(state, palette, records, view.WithOverlay(source.Overlay() != nil)),
			Panel: view.NewPanel(state, palette, records),
		},
		limiter: rate.NewLimiter(limit, burst),
	}
	s.touch(now)
	return s
}

// Do runs fn with exclusive access to the session's view.
func (s *Session) Do(fn func(*View) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return fn(&s.view)
}

// AllowPointer reports whether a pointer event at now fits the session's rate limit.
func (s *Session) AllowPointer(now time.Time) bool {
	return s.limiter.AllowN(now, 1)
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// refresh rebuilds both observers after the dataset changed.
func (s *Session) refresh(overlay bool) {
	_ = s.Do(func(v *View) error {
		v.Map.SetOverlay(overlay)
		v.Map.Invalidate()
		v.Panel.Invalidate()
		return nil
	})
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.view.Map.Close()
	s.view.Panel.Close()
}
