// Package selection holds the facet and pointer state shared by the map surface
// and the control panel of one view.
//
// State is not safe for concurrent use. Every mutation is applied fully and all
// listeners have run before the mutating call returns, so observers never see a
// stale value. Callers that receive events from several goroutines must
// serialise them (see internal/session).
package selection

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
)

// PointerKind distinguishes the three mutually exclusive pointer states.
type PointerKind uint8

const (
	PointerNone PointerKind = iota
	PointerHover
	PointerClick
)

func (k PointerKind) String() string {
	switch k {
	case PointerHover:
		return "hover"
	case PointerClick:
		return "click"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PointerKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ScreenPos is a pointer position in surface pixels.
type ScreenPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pointer is the current hover or click selection.
type Pointer struct {
	Kind   PointerKind  `json:"kind"`
	Record model.Record `json:"record"`
	Pos    ScreenPos    `json:"pos"`
}

// Active reports whether a record is hovered or clicked.
func (p Pointer) Active() bool { return p.Kind != PointerNone }

// Change flags which parts of the state an event touched.
type Change uint8

const (
	ChangeScale Change = 1 << iota
	ChangeCategories
	ChangeBuckets
	ChangePointer
)

// Has reports whether c includes flag.
func (c Change) Has(flag Change) bool { return c&flag != 0 }

// Event is delivered to listeners after a mutation.
type Event struct {
	Change Change
	// Refresh asks observers to rebuild everything derived from colours. It is
	// set on every SetScale call, including one that re-selects the current scale.
	Refresh bool
}

// Listener observes state changes.
type Listener func(Event)

// Reader is the read side of State.
type Reader interface {
	Scale() bucket.Scale
	Categories() CategorySet
	Buckets() BucketSet
	Pointer() Pointer
}

type subscription struct {
	id int
	fn Listener
}

// State is the selection state of one view.
type State struct {
	scale      bucket.Scale
	categories CategorySet
	buckets    BucketSet
	pointer    Pointer

	listeners []subscription
	nextID    int
}

// New returns a state with the default scale, every category and every bucket active.
func New() *State {
	return &State{
		scale:      bucket.ScaleDefault,
		categories: AllCategories,
		buckets:    AllBuckets,
	}
}

func (s *State) Scale() bucket.Scale     { return s.scale }
func (s *State) Categories() CategorySet { return s.categories }
func (s *State) Buckets() BucketSet      { return s.buckets }
func (s *State) Pointer() Pointer        { return s.pointer }

// Subscribe registers fn and returns a function that removes it.
func (s *State) Subscribe(fn Listener) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *State) notify(ev Event) {
	subs := append([]subscription(nil), s.listeners...)
	for _, sub := range subs {
		sub.fn(ev)
	}
}

// SetScale selects the colour scale and always triggers a full refresh.
func (s *State) SetScale(scale bucket.Scale) {
	if !scale.Valid() {
		panic(eris.Errorf("selection: invalid scale %d", scale))
	}
	s.scale = scale
	s.notify(Event{Change: ChangeScale, Refresh: true})
}

// ToggleCategory adds or removes c. Requesting the current membership is a no-op.
func (s *State) ToggleCategory(c model.Category, on bool) {
	if !c.Valid() {
		panic(eris.Errorf("selection: invalid category %d", c))
	}
	if s.categories.Has(c) == on {
		return
	}
	if on {
		s.categories = s.categories.With(c)
	} else {
		s.categories = s.categories.Without(c)
	}
	s.notify(Event{Change: ChangeCategories})
}

// ToggleBucket adds or removes b. Requesting the current membership is a no-op.
func (s *State) ToggleBucket(b bucket.Bucket, on bool) {
	if !b.Valid() {
		panic(eris.Errorf("selection: invalid bucket %d", b))
	}
	if s.buckets.Has(b) == on {
		return
	}
	if on {
		s.buckets = s.buckets.With(b)
	} else {
		s.buckets = s.buckets.Without(b)
	}
	s.notify(Event{Change: ChangeBuckets})
}

// SetHover records a hover over rec. It is ignored while a click selection is active.
func (s *State) SetHover(rec model.Record, pos ScreenPos) {
	if s.pointer.Kind == PointerClick {
		return
	}
	s.setPointer(Pointer{Kind: PointerHover, Record: rec, Pos: pos})
}

// ClearHover drops a hover selection when the pointer leaves a record.
// A click selection is left in place.
func (s *State) ClearHover() {
	if s.pointer.Kind != PointerHover {
		return
	}
	s.setPointer(Pointer{})
}

// SetClick selects rec, replacing any hover or earlier click.
func (s *State) SetClick(rec model.Record, pos ScreenPos) {
	s.setPointer(Pointer{Kind: PointerClick, Record: rec, Pos: pos})
}

// ClearSelection resets the pointer, as on a click on empty map area.
func (s *State) ClearSelection() {
	if s.pointer.Kind == PointerNone {
		return
	}
	s.setPointer(Pointer{})
}

func (s *State) setPointer(p Pointer) {
	s.pointer = p
	s.notify(Event{Change: ChangePointer})
}

// Snapshot is a serialisable copy of the state.
type Snapshot struct {
	Scale      bucket.Scale     `json:"scale"`
	Categories []model.Category `json:"categories"`
	Buckets    []bucket.Bucket  `json:"buckets"`
	Pointer    Pointer          `json:"pointer"`
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Scale:      s.scale,
		Categories: s.categories.Slice(),
		Buckets:    s.buckets.Slice(),
		Pointer:    s.pointer,
	}
}
