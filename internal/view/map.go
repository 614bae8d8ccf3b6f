// Package view models the two observers of a view's selection state: the map
// surface that plots records and the control panel. Both subscribe to the same
// selection.State and rebuild what they display before the mutating call returns.
package view

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/filter"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/selection"
)

// ErrUnknownRecord is returned when a pointer event names a record that is not plotted.
var ErrUnknownRecord = eris.New("view: record is not plotted")

// RecordSource returns the current record set. It returns an empty slice until
// the dataset has loaded.
type RecordSource func() []model.Record

// Plot styling carried on every point.
const (
	PointRadius = 20000 // metres
)

// LineColor is the stroke drawn around each point.
var LineColor = [4]uint8{0, 0, 0, 255}

// Point is one plotted record with its derived bucket and fill colour.
type Point struct {
	Record model.Record  `json:"record"`
	Bucket bucket.Bucket `json:"bucket"`
	Fill   bucket.RGB    `json:"-"`
}

// Tooltip is the transient info overlay shown for the hovered or clicked record.
type Tooltip struct {
	State    string  `json:"state"`
	County   string  `json:"county"`
	Value    string  `json:"value"`
	Category string  `json:"category"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pinned   bool    `json:"pinned"`
}

// Frame is everything the map surface draws for one state.
type Frame struct {
	Version        uint64       `json:"version"`
	Scale          bucket.Scale `json:"scale"`
	Points         []Point      `json:"points"`
	Tooltip        *Tooltip     `json:"tooltip,omitempty"`
	OverlayVisible bool         `json:"overlay_visible"`
}

// MapOption configures a Map.
type MapOption func(*Map)

// WithOverlay tells the map a boundary overlay dataset is available. The
// overlay is shown only while a record is hovered or clicked.
func WithOverlay(present bool) MapOption {
	return func(m *Map) { m.hasOverlay = present }
}

// Map is the render surface. It reads the facets to compute visible points and
// translates pointer events into selection updates.
type Map struct {
	state      *selection.State
	palette    *bucket.Palette
	records    RecordSource
	hasOverlay bool

	frame       Frame
	index       map[string]int
	unsubscribe func()
}

// NewMap attaches a map surface to state and renders the first frame.
func NewMap(state *selection.State, palette *bucket.Palette, records RecordSource, opts ...MapOption) *Map {
	m := &Map{
		state:   state,
		palette: palette,
		records: records,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.render()
	m.unsubscribe = state.Subscribe(m.onChange)
	return m
}

// Frame returns the current frame.
func (m *Map) Frame() Frame { return m.frame }

// Invalidate rebuilds the frame, e.g. after new records arrive.
func (m *Map) Invalidate() { m.render() }

// SetOverlay records whether a boundary overlay is available.
func (m *Map) SetOverlay(present bool) {
	if m.hasOverlay == present {
		return
	}
	m.hasOverlay = present
	m.renderPointer()
}

// Close detaches the map from the state.
func (m *Map) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Hover handles the pointer moving over a plotted record.
func (m *Map) Hover(id string, pos selection.ScreenPos) error {
	rec, ok := m.lookup(id)
	if !ok {
		return eris.Wrapf(ErrUnknownRecord, "hover %q", id)
	}
	m.state.SetHover(rec, pos)
	return nil
}

// Click handles a click on a plotted record.
func (m *Map) Click(id string, pos selection.ScreenPos) error {
	rec, ok := m.lookup(id)
	if !ok {
		return eris.Wrapf(ErrUnknownRecord, "click %q", id)
	}
	m.state.SetClick(rec, pos)
	return nil
}

// Leave handles the pointer moving off every record.
func (m *Map) Leave() { m.state.ClearHover() }

// BackgroundClick handles a click on empty map area.
func (m *Map) BackgroundClick() { m.state.ClearSelection() }

func (m *Map) lookup(id string) (model.Record, bool) {
	i, ok := m.index[id]
	if !ok {
		return model.Record{}, false
	}
	return m.frame.Points[i].Record, true
}

func (m *Map) onChange(ev selection.Event) {
	if ev.Change == selection.ChangePointer {
		m.renderPointer()
		return
	}
	m.render()
}

func (m *Map) render() {
	visible := filter.Visible(m.records(), m.state)
	scale := m.state.Scale()

	points := make([]Point, len(visible))
	index := make(map[string]int, len(visible))
	for i, rec := range visible {
		b := bucket.Classify(rec.Value)
		points[i] = Point{Record: rec, Bucket: b, Fill: m.palette.ColorOf(b, scale)}
		index[rec.ID] = i
	}

	m.frame.Scale = scale
	m.frame.Points = points
	m.index = index
	m.renderPointer()
}

func (m *Map) renderPointer() {
	p := m.state.Pointer()
	m.frame.Tooltip = tooltipFor(p)
	m.frame.OverlayVisible = m.hasOverlay && p.Active()
	m.frame.Version++
}

func tooltipFor(p selection.Pointer) *Tooltip {
	if !p.Active() {
		return nil
	}
	return &Tooltip{
		State:    p.Record.State,
		County:   p.Record.County,
		Value:    FormatValue(p.Record.Value),
		Category: p.Record.Category.String(),
		X:        p.Pos.X,
		Y:        p.Pos.Y,
		Pinned:   p.Kind == selection.PointerClick,
	}
}

// FormatValue renders a W/tCO2 value to one decimal place.
func FormatValue(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
