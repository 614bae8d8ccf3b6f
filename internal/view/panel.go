package view

import (
	"fmt"
	"math"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/filter"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/selection"
)

// Panel texts.
const (
	PanelTitle       = "W/tCO2 Heatmap"
	PanelDescription = "This heatmap visualizes the W/tCO2 values across different regions. " +
		"Use the Checkbox below to filter specific W/tCO2 ranges and DCI groups. " +
		"Zoom in and hover the data points to see detailed information."
	ScaleHeading    = "Switch Color Scales."
	CategoryHeading = "DCI Score Groups"
	valueHeading    = "W/tCO2 Groups"
)

var scaleLabels = [bucket.NumScales]string{
	bucket.ScaleDefault:   "Default W/tCO2 Color",
	bucket.ScaleAlternate: "Master Dataset Color",
}

// ScaleLabel is the radio label for s.
func ScaleLabel(s bucket.Scale) string {
	if !s.Valid() {
		return s.String()
	}
	return scaleLabels[s]
}

// ScaleOption is one radio button.
type ScaleOption struct {
	Scale    bucket.Scale `json:"scale"`
	Label    string       `json:"label"`
	Selected bool         `json:"selected"`
}

// CategoryOption is one category checkbox.
type CategoryOption struct {
	Category model.Category `json:"category"`
	Checked  bool           `json:"checked"`
	Count    int            `json:"count"`
}

// LegendEntry is one legend swatch with its checkbox.
type LegendEntry struct {
	bucket.LegendItem
	Checked bool `json:"checked"`
	Count   int  `json:"count"`
}

// PanelModel is everything the control panel shows.
type PanelModel struct {
	Version         uint64           `json:"version"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	ScaleHeading    string           `json:"scale_heading"`
	Scales          []ScaleOption    `json:"scales"`
	CategoryHeading string           `json:"category_heading"`
	Categories      []CategoryOption `json:"categories"`
	ValueHeading    string           `json:"value_heading"`
	Legend          []LegendEntry    `json:"legend"`
}

// Panel is the control surface. Its mutators go straight to the shared state;
// the panel model is rebuilt from the notification that follows.
type Panel struct {
	state   *selection.State
	palette *bucket.Palette
	records RecordSource

	model       PanelModel
	counts      filter.Counts
	heading     string
	unsubscribe func()
}

// NewPanel attaches a control panel to state.
func NewPanel(state *selection.State, palette *bucket.Palette, records RecordSource) *Panel {
	p := &Panel{
		state:   state,
		palette: palette,
		records: records,
	}
	p.Invalidate()
	p.unsubscribe = state.Subscribe(func(selection.Event) { p.render() })
	return p
}

// Model returns the current panel model.
func (p *Panel) Model() PanelModel { return p.model }

// SelectScale handles a scale radio selection.
func (p *Panel) SelectScale(s bucket.Scale) { p.state.SetScale(s) }

// SetCategory handles a category checkbox.
func (p *Panel) SetCategory(c model.Category, on bool) { p.state.ToggleCategory(c, on) }

// SetBucket handles a legend checkbox.
func (p *Panel) SetBucket(b bucket.Bucket, on bool) { p.state.ToggleBucket(b, on) }

// Invalidate recomputes record-derived figures and rebuilds the model.
func (p *Panel) Invalidate() {
	records := p.records()
	p.counts = filter.Count(records)
	p.heading = ValueHeading(records)
	p.render()
}

// Close detaches the panel from the state.
func (p *Panel) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

func (p *Panel) render() {
	current := p.state.Scale()
	scales := make([]ScaleOption, 0, bucket.NumScales)
	for _, s := range bucket.Scales() {
		scales = append(scales, ScaleOption{Scale: s, Label: ScaleLabel(s), Selected: s == current})
	}

	cats := p.state.Categories()
	categories := make([]CategoryOption, 0, model.NumCategories)
	for _, c := range model.Categories() {
		categories = append(categories, CategoryOption{
			Category: c,
			Checked:  cats.Has(c),
			Count:    p.counts.Categories[c],
		})
	}

	buckets := p.state.Buckets()
	items := p.palette.Legend(current)
	legend := make([]LegendEntry, len(items))
	for i, item := range items {
		legend[i] = LegendEntry{
			LegendItem: item,
			Checked:    buckets.Has(item.Bucket),
			Count:      p.counts.Buckets[item.Bucket],
		}
	}

	p.model = PanelModel{
		Version:         p.model.Version + 1,
		Title:           PanelTitle,
		Description:     PanelDescription,
		ScaleHeading:    ScaleHeading,
		Scales:          scales,
		CategoryHeading: CategoryHeading,
		Categories:      categories,
		ValueHeading:    p.heading,
		Legend:          legend,
	}
}

// ValueHeading renders the value legend heading with the dataset's min and max.
// Without any valid record the range is omitted.
func ValueHeading(records []model.Record) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range records {
		v := records[i].Value
		if !model.ValidValue(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return valueHeading
	}
	return fmt.Sprintf("%s(Min: %s, Max: %s)", valueHeading, FormatValue(lo), FormatValue(hi))
}
