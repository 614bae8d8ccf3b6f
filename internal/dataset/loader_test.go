package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/carbon-map/internal/fetcher"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/monitoring"
)

const masterSheet = "Master Dataset (USE THIS!)"

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := xlsx.NewFile()
	notes, err := f.AddSheet("Notes")
	require.NoError(t, err)
	notes.AddRow().AddCell().SetString("read me")

	sheet, err := f.AddSheet(masterSheet)
	require.NoError(t, err)
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			cell := row.AddCell()
			switch v := v.(type) {
			case float64:
				cell.SetFloat(v)
			case string:
				cell.SetString(v)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "master.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func workbookRows() [][]any {
	h := make([]any, len(header))
	for i, s := range header {
		h[i] = s
	}
	return [][]any{
		h,
		{"Texas", "Harris", -95.39, 29.86, 18.04, "Distressed"},
		{"California", "Marin", -122.72, 38.05, 46.2, "Prosperous"},
		{"Alaska", "Kusilvak", -163.0, 62.0, 22.0, "N/A"},
	}
}

func writeBoundary(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "counties.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("GEOID", 5), shp.StringField("NAME", 40)}))
	ring := []shp.Point{{X: -96, Y: 29}, {X: -96, Y: 30}, {X: -95, Y: 30}, {X: -95, Y: 29}, {X: -96, Y: 29}}
	poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
	n := int(w.Write(&poly))
	require.NoError(t, w.WriteAttribute(n, 0, "48201"))
	require.NoError(t, w.WriteAttribute(n, 1, "Harris"))
	w.Close()
	// Writer.SetFields names the table "<base>dbf" without the dot.
	require.NoError(t, os.Rename(filepath.Join(dir, "countiesdbf"), filepath.Join(dir, "counties.dbf")))
	return path
}

func TestLoader_Load(t *testing.T) {
	m, _ := monitoring.NewMetricsForTesting()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	store := NewStore()
	var published int
	store.OnPublish(func(*Snapshot) { published++ })

	l := NewLoader(&fetcher.Resolver{}, store, Options{
		Source:         writeWorkbook(t, workbookRows()),
		Sheet:          masterSheet,
		BoundarySource: writeBoundary(t),
		WorkDir:        t.TempDir(),
	}, WithMetrics(m), WithClock(clock))

	snap, err := l.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Records, 2)
	assert.Equal(t, "Harris", snap.Records[0].County)
	assert.InDelta(t, 18.04, snap.Records[0].Value, 1e-9)
	assert.Equal(t, model.CategoryProsperous, snap.Records[1].Category)
	assert.Equal(t, 1, snap.Report.Excluded[ReasonUnknownCategory])
	assert.Equal(t, 1, snap.Overlay.Len())
	assert.Equal(t, clock.Now(), snap.LoadedAt)

	assert.Same(t, snap, store.Current())
	assert.Equal(t, 1, published)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RowsLoaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RowsExcluded.WithLabelValues(string(ReasonUnknownCategory))))
}

func TestLoader_CSVWithoutOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	content := "State,COUNTY,Longitude,Latitude,W/tCO2,\"2024 DCI Score (2017-2021)   \"\"N/A\"\" = <500 residents\"\n" +
		"Ohio,Franklin,-83,39.97,30,Mid-tier\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := NewStore()
	snap, err := NewLoader(&fetcher.Resolver{}, store, Options{Source: path}).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Nil(t, snap.Overlay)
	assert.Nil(t, store.Overlay())
}

func TestLoader_FailureKeepsPreviousSnapshot(t *testing.T) {
	m, _ := monitoring.NewMetricsForTesting()
	store := NewStore()
	prev := &Snapshot{Records: []model.Record{{ID: "x"}}}
	store.Publish(prev)

	l := NewLoader(&fetcher.Resolver{}, store, Options{
		Source:         writeWorkbook(t, workbookRows()),
		Sheet:          masterSheet,
		BoundarySource: filepath.Join(t.TempDir(), "missing.zip"),
	}, WithMetrics(m))

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Same(t, prev, store.Current())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadErrors))
}

func TestLoader_WrongSheet(t *testing.T) {
	l := NewLoader(&fetcher.Resolver{}, NewStore(), Options{
		Source: writeWorkbook(t, workbookRows()),
		Sheet:  "Sheet9",
	})
	_, _, err := l.LoadRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
