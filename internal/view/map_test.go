package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/selection"
)

func sampleRecords() []model.Record {
	return []model.Record{
		{ID: "tx", State: "Texas", County: "Harris", Value: 18.04, Category: model.CategoryDistressed,
			Position: model.Position{Lon: -95.4, Lat: 29.8}},
		{ID: "ca", State: "California", County: "Marin", Value: 46, Category: model.CategoryProsperous,
			Position: model.Position{Lon: -122.7, Lat: 38.1}},
		{ID: "oh", State: "Ohio", County: "Franklin", Value: 30, Category: model.CategoryMidTier,
			Position: model.Position{Lon: -83, Lat: 40}},
	}
}

func static(records []model.Record) RecordSource {
	return func() []model.Record { return records }
}

func pointIDs(f Frame) []string {
	ids := make([]string, len(f.Points))
	for i, p := range f.Points {
		ids[i] = p.Record.ID
	}
	return ids
}

func TestMap_InitialFrame(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	f := m.Frame()
	assert.Equal(t, []string{"tx", "ca", "oh"}, pointIDs(f))
	assert.Equal(t, bucket.ScaleDefault, f.Scale)
	assert.Nil(t, f.Tooltip)
	assert.False(t, f.OverlayVisible)

	assert.Equal(t, bucket.Below20, f.Points[0].Bucket)
	assert.Equal(t, bucket.RGB{R: 234, G: 53, B: 70}, f.Points[0].Fill)
	assert.Equal(t, bucket.From45, f.Points[1].Bucket)
}

func TestMap_EmptyBeforeLoad(t *testing.T) {
	var records []model.Record
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), func() []model.Record { return records })
	defer m.Close()

	assert.Empty(t, m.Frame().Points)

	records = sampleRecords()
	m.Invalidate()
	assert.Len(t, m.Frame().Points, 3)
}

func TestMap_FacetChangeIsSynchronous(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	state.ToggleCategory(model.CategoryDistressed, false)
	assert.Equal(t, []string{"ca", "oh"}, pointIDs(m.Frame()))

	state.ToggleBucket(bucket.From30, false)
	assert.Equal(t, []string{"ca"}, pointIDs(m.Frame()))

	state.ToggleBucket(bucket.From30, true)
	state.ToggleCategory(model.CategoryDistressed, true)
	assert.Equal(t, []string{"tx", "ca", "oh"}, pointIDs(m.Frame()))
}

func TestMap_ScaleChangesColorsOnly(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	before := m.Frame()
	state.SetScale(bucket.ScaleAlternate)
	after := m.Frame()

	require.Len(t, after.Points, len(before.Points))
	assert.Equal(t, bucket.ScaleAlternate, after.Scale)
	for i := range before.Points {
		assert.Equal(t, before.Points[i].Record, after.Points[i].Record)
		assert.Equal(t, before.Points[i].Bucket, after.Points[i].Bucket)
		assert.NotEqual(t, before.Points[i].Fill, after.Points[i].Fill)
		assert.Equal(t, bucket.ColorOf(after.Points[i].Bucket, bucket.ScaleAlternate), after.Points[i].Fill)
	}
}

func TestMap_SameScaleStillRefreshes(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	v := m.Frame().Version
	state.SetScale(bucket.ScaleDefault)
	assert.Greater(t, m.Frame().Version, v)
}

func TestMap_HoverAndLeave(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()), WithOverlay(true))
	defer m.Close()

	require.NoError(t, m.Hover("tx", selection.ScreenPos{X: 10, Y: 20}))
	f := m.Frame()
	require.NotNil(t, f.Tooltip)
	assert.Equal(t, Tooltip{
		State:    "Texas",
		County:   "Harris",
		Value:    "18.0",
		Category: "Distressed",
		X:        10,
		Y:        20,
	}, *f.Tooltip)
	assert.True(t, f.OverlayVisible)

	m.Leave()
	assert.Nil(t, m.Frame().Tooltip)
	assert.False(t, m.Frame().OverlayVisible)
}

func TestMap_ClickPinsTooltip(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()), WithOverlay(true))
	defer m.Close()

	require.NoError(t, m.Click("ca", selection.ScreenPos{X: 1, Y: 2}))
	require.NoError(t, m.Hover("tx", selection.ScreenPos{X: 3, Y: 4}))
	m.Leave()

	f := m.Frame()
	require.NotNil(t, f.Tooltip)
	assert.Equal(t, "Marin", f.Tooltip.County)
	assert.True(t, f.Tooltip.Pinned)
	assert.True(t, f.OverlayVisible)

	m.BackgroundClick()
	assert.Nil(t, m.Frame().Tooltip)
	assert.Equal(t, selection.PointerNone, state.Pointer().Kind)
}

func TestMap_OverlayHiddenWithoutDataset(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	require.NoError(t, m.Click("oh", selection.ScreenPos{}))
	assert.NotNil(t, m.Frame().Tooltip)
	assert.False(t, m.Frame().OverlayVisible)
}

func TestMap_UnknownRecord(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	state.ToggleCategory(model.CategoryDistressed, false)

	err := m.Hover("tx", selection.ScreenPos{})
	require.ErrorIs(t, err, ErrUnknownRecord)
	err = m.Click("missing", selection.ScreenPos{})
	require.ErrorIs(t, err, ErrUnknownRecord)
	assert.Equal(t, selection.PointerNone, state.Pointer().Kind)
}

func TestMap_CloseStopsUpdates(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	m.Close()

	state.ToggleCategory(model.CategoryDistressed, false)
	assert.Len(t, m.Frame().Points, 3)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "18.0", FormatValue(18.04))
	assert.Equal(t, "45.1", FormatValue(45.06))
	assert.Equal(t, "0.0", FormatValue(0))
}

func TestMap_OverlayArrivesLater(t *testing.T) {
	state := selection.New()
	m := NewMap(state, bucket.DefaultPalette(), static(sampleRecords()))
	defer m.Close()

	require.NoError(t, m.Hover("ca", selection.ScreenPos{}))
	assert.False(t, m.Frame().OverlayVisible)

	m.SetOverlay(true)
	assert.True(t, m.Frame().OverlayVisible)
}
