package dataset

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sells-group/carbon-map/internal/boundary"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/monitoring"
)

// Snapshot is one loaded dataset. It is never modified after publication.
type Snapshot struct {
	Records  []model.Record
	Report   Report
	Overlay  *boundary.Overlay
	Source   string
	LoadedAt time.Time
}

// Store holds the current snapshot. Readers never block; before the first
// load they see an empty record set and no overlay.
type Store struct {
	cur atomic.Pointer[Snapshot]

	mu        sync.Mutex
	listeners []func(*Snapshot)
}

// NewStore creates an empty store.
func NewStore() *Store { return &Store{} }

// Current returns the published snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot { return s.cur.Load() }

// Loaded reports whether a snapshot has been published.
func (s *Store) Loaded() bool { return s.cur.Load() != nil }

// Records returns the current records, empty before the first load.
func (s *Store) Records() []model.Record {
	if snap := s.cur.Load(); snap != nil && snap.Records != nil {
		return snap.Records
	}
	return []model.Record{}
}

// Overlay returns the boundary overlay, or nil when none is loaded.
func (s *Store) Overlay() *boundary.Overlay {
	if snap := s.cur.Load(); snap != nil {
		return snap.Overlay
	}
	return nil
}

// OnPublish registers fn to run after each Publish.
func (s *Store) OnPublish(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Publish swaps in snap and notifies listeners.
func (s *Store) Publish(snap *Snapshot) {
	s.cur.Store(snap)

	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

// Stats reports the store's state for the status endpoint.
func (s *Store) Stats() monitoring.DatasetStats {
	snap := s.cur.Load()
	if snap == nil {
		return monitoring.DatasetStats{}
	}
	excluded := make(map[string]int, len(snap.Report.Excluded))
	for reason, n := range snap.Report.Excluded {
		excluded[string(reason)] = n
	}
	return monitoring.DatasetStats{
		Loaded:   true,
		Source:   snap.Source,
		Records:  len(snap.Records),
		Excluded: excluded,
		Counties: snap.Overlay.Len(),
		LoadedAt: snap.LoadedAt,
	}
}
