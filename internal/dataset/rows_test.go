package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/carbon-map/internal/config"
	"github.com/sells-group/carbon-map/internal/fetcher"
	"github.com/sells-group/carbon-map/internal/model"
)

var header = []string{
	"State", "COUNTY", "Longitude", "Latitude", "W/tCO2",
	`2024 DCI Score (2017-2021)   "N/A" = <500 residents`,
}

func TestFromTable(t *testing.T) {
	tbl := &fetcher.Table{
		Header: header,
		Rows: [][]string{
			{"Texas", "Harris", "-95.39", "29.86", "18.04", "Distressed"},
			{"California", "Marin", "-122.72", "38.05", "46.2", "prosperous"},
			{"Ohio", "Franklin", "-83.0", "39.97", "30", "Mid-Tier"},
			{"", "", "", "", "", ""},
		},
	}

	records, report, err := FromTable(tbl, config.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, model.Record{
		ID:       model.RecordID("Texas", "Harris", model.Position{Lon: -95.39, Lat: 29.86}),
		Position: model.Position{Lon: -95.39, Lat: 29.86},
		County:   "Harris",
		State:    "Texas",
		Value:    18.04,
		Category: model.CategoryDistressed,
	}, records[0])
	assert.Equal(t, model.CategoryProsperous, records[1].Category)
	assert.Equal(t, model.CategoryMidTier, records[2].Category)

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 3, report.Loaded)
	assert.Equal(t, 0, report.ExcludedTotal())
}

func TestFromTable_Exclusions(t *testing.T) {
	tbl := &fetcher.Table{
		Header: header,
		Rows: [][]string{
			{"Alaska", "Kusilvak", "-163", "62", "22", "N/A"},
			{"Texas", "Loving", "-103.6", "31.8", "", "At Risk"},
			{"Texas", "King", "-100.2", "33.6", "-3", "At Risk"},
			{"Texas", "Kenedy", "-97.6", "26.9", "NaN", "At Risk"},
			{"Texas", "Nowhere", "abc", "26.9", "21", "At Risk"},
			{"Texas", "Offworld", "-500", "26.9", "21", "At Risk"},
			{"Texas", "Short", "-97"},
			{"Utah", "Salt Lake", "-111.9", "40.7", "1,234.5", "Comfortable"},
		},
	}

	records, report, err := FromTable(tbl, config.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 1234.5, records[0].Value, 1e-9)

	assert.Equal(t, 8, report.Rows)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, map[Reason]int{
		ReasonUnknownCategory: 1,
		ReasonInvalidValue:    4,
		ReasonInvalidPosition: 2,
	}, report.Excluded)
	assert.Equal(t, 7, report.ExcludedTotal())
}

func TestFromTable_MissingColumn(t *testing.T) {
	tbl := &fetcher.Table{Header: []string{"State", "COUNTY"}}
	_, _, err := FromTable(tbl, config.DefaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns")
	assert.Contains(t, err.Error(), "W/tCO2")
}

func TestFromTable_CustomColumns(t *testing.T) {
	cols := config.ColumnsConfig{Longitude: "lon", Latitude: "lat", County: "county", State: "state", Value: "wt", Category: "dci"}
	tbl := &fetcher.Table{
		Header: []string{"dci", "wt", "lat", "lon", "state", "county"},
		Rows:   [][]string{{"At-Risk", "25", "40", "-100", "Kansas", "Ellis"}},
	}

	records, _, err := FromTable(tbl, cols)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, model.CategoryAtRisk, records[0].Category)
	assert.Equal(t, "Ellis", records[0].County)
}

func TestFromTable_DuplicateIDs(t *testing.T) {
	row := []string{"Texas", "Harris", "-95.39", "29.86", "18", "Distressed"}
	tbl := &fetcher.Table{Header: header, Rows: [][]string{row, row, row}}

	records, _, err := FromTable(tbl, config.DefaultColumns())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, records[0].ID+"-2", records[1].ID)
	assert.Equal(t, records[0].ID+"-3", records[2].ID)
}

func TestFromTable_TrailingCellsDropped(t *testing.T) {
	cols := config.DefaultColumns()
	tbl := &fetcher.Table{
		Header: []string{"State", "COUNTY", "Longitude", "Latitude", cols.Category, "W/tCO2"},
		Rows:   [][]string{{"Texas", "Harris", "-95", "29", "Distressed"}},
	}
	records, report, err := FromTable(tbl, cols)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1, report.Excluded[ReasonInvalidValue])
}
