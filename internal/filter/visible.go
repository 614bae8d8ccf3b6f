// Package filter derives the visible record set from the active facets.
package filter

import (
	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
	"github.com/sells-group/carbon-map/internal/selection"
)

// Facets is the part of the selection state that decides visibility.
type Facets interface {
	Categories() selection.CategorySet
	Buckets() selection.BucketSet
}

// Visible returns, in input order, the records whose category and bucket are
// both active. Records with a malformed value are skipped. An empty or nil
// input yields an empty result.
func Visible(records []model.Record, facets Facets) []model.Record {
	cats, buckets := facets.Categories(), facets.Buckets()
	out := make([]model.Record, 0, len(records))
	for i := range records {
		if Match(&records[i], cats, buckets) {
			out = append(out, records[i])
		}
	}
	return out
}

// Match reports whether r passes both facets.
func Match(r *model.Record, cats selection.CategorySet, buckets selection.BucketSet) bool {
	if !model.ValidValue(r.Value) {
		return false
	}
	return cats.Has(r.Category) && buckets.Has(bucket.Classify(r.Value))
}

// Counts tallies valid records per bucket and per category, ignoring facets.
type Counts struct {
	Buckets    [bucket.NumBuckets]int
	Categories [model.NumCategories]int
	Total      int
}

// Count computes per-facet totals over records.
func Count(records []model.Record) Counts {
	var c Counts
	for i := range records {
		r := &records[i]
		if !model.ValidValue(r.Value) || !r.Category.Valid() {
			continue
		}
		c.Buckets[bucket.Classify(r.Value)]++
		c.Categories[r.Category]++
		c.Total++
	}
	return c
}
