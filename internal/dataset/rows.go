// Package dataset turns a workbook or CSV export into county records and keeps
// the current record set and boundary overlay available to every view.
package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/carbon-map/internal/config"
	"github.com/sells-group/carbon-map/internal/fetcher"
	"github.com/sells-group/carbon-map/internal/model"
)

// Reason explains why a row was excluded.
type Reason string

const (
	ReasonInvalidValue    Reason = "invalid_value"
	ReasonInvalidPosition Reason = "invalid_position"
	ReasonUnknownCategory Reason = "unknown_category"
)

// Report tallies the outcome of mapping rows to records.
type Report struct {
	Rows     int            `json:"rows"`
	Loaded   int            `json:"loaded"`
	Excluded map[Reason]int `json:"excluded"`
}

// ExcludedTotal sums every exclusion reason.
func (r Report) ExcludedTotal() int {
	var n int
	for _, c := range r.Excluded {
		n += c
	}
	return n
}

func (r *Report) exclude(reason Reason) {
	if r.Excluded == nil {
		r.Excluded = make(map[Reason]int)
	}
	r.Excluded[reason]++
}

type columnIndex struct {
	lon, lat, county, state, value, category int
	width                                    int
}

func indexColumns(c config.ColumnsConfig, t *fetcher.Table) (columnIndex, error) {
	var idx columnIndex
	var missing []string
	lookup := func(name string) int {
		i := t.Column(name)
		if i < 0 {
			missing = append(missing, name)
		}
		idx.width = max(idx.width, i+1)
		return i
	}
	idx.lon = lookup(c.Longitude)
	idx.lat = lookup(c.Latitude)
	idx.county = lookup(c.County)
	idx.state = lookup(c.State)
	idx.value = lookup(c.Value)
	idx.category = lookup(c.Category)
	if len(missing) > 0 {
		return idx, eris.Errorf("dataset: missing columns %q", missing)
	}
	return idx, nil
}

// FromTable maps table rows to records. Rows that cannot be plotted are
// excluded and counted in the report; a missing column is an error. Blank rows
// are ignored entirely.
func FromTable(t *fetcher.Table, cols config.ColumnsConfig) ([]model.Record, Report, error) {
	idx, err := indexColumns(cols, t)
	if err != nil {
		return nil, Report{}, err
	}

	log := zap.L().With(zap.String("component", "dataset"))
	records := make([]model.Record, 0, len(t.Rows))
	seen := make(map[string]int, len(t.Rows))
	var report Report

	for n, row := range t.Rows {
		if blankRow(row) {
			continue
		}
		report.Rows++

		rec, reason := parseRow(row, idx)
		if reason != "" {
			report.exclude(reason)
			log.Debug("dataset: row excluded",
				zap.Int("row", n+2),
				zap.String("reason", string(reason)),
			)
			continue
		}

		rec.ID = model.RecordID(rec.State, rec.County, rec.Position)
		if k := seen[rec.ID]; k > 0 {
			seen[rec.ID] = k + 1
			rec.ID = fmt.Sprintf("%s-%d", rec.ID, k+1)
		} else {
			seen[rec.ID] = 1
		}
		records = append(records, rec)
	}

	report.Loaded = len(records)
	return records, report, nil
}

func parseRow(row []string, idx columnIndex) (model.Record, Reason) {
	if len(row) < idx.width {
		// Trailing empty cells are often dropped by spreadsheet writers.
		row = append(row, make([]string, idx.width-len(row))...)
	}
	cell := func(i int) string { return strings.TrimSpace(row[i]) }

	value, ok := parseNumber(cell(idx.value))
	if !ok || !model.ValidValue(value) {
		return model.Record{}, ReasonInvalidValue
	}

	lon, lonOK := parseNumber(cell(idx.lon))
	lat, latOK := parseNumber(cell(idx.lat))
	pos := model.Position{Lon: lon, Lat: lat}
	if !lonOK || !latOK || !pos.Finite() || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return model.Record{}, ReasonInvalidPosition
	}

	cat, err := model.ParseCategory(cell(idx.category))
	if err != nil {
		return model.Record{}, ReasonUnknownCategory
	}

	return model.Record{
		Position: pos,
		County:   cell(idx.county),
		State:    cell(idx.state),
		Value:    value,
		Category: cat,
	}, ""
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
