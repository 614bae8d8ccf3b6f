package dataset

import (
	"math"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/filter"
	"github.com/sells-group/carbon-map/internal/model"
)

// BucketCount is the number of records in one bucket.
type BucketCount struct {
	Bucket bucket.Bucket `json:"bucket"`
	Label  string        `json:"label"`
	Count  int           `json:"count"`
}

// CategoryCount is the number of records in one category.
type CategoryCount struct {
	Category model.Category `json:"category"`
	Count    int            `json:"count"`
}

// Summary describes a record set.
type Summary struct {
	Records    int             `json:"records"`
	Min        float64         `json:"min"`
	Max        float64         `json:"max"`
	Buckets    []BucketCount   `json:"buckets"`
	Categories []CategoryCount `json:"categories"`
}

// Summarize computes the value range and per-facet counts over valid records.
// Min and Max are zero for an empty set.
func Summarize(records []model.Record) Summary {
	counts := filter.Count(records)
	s := Summary{Records: counts.Total}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range records {
		v := records[i].Value
		if model.ValidValue(v) && records[i].Category.Valid() {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if counts.Total > 0 {
		s.Min, s.Max = lo, hi
	}

	for _, b := range bucket.All() {
		s.Buckets = append(s.Buckets, BucketCount{Bucket: b, Label: b.DisplayLabel(), Count: counts.Buckets[b]})
	}
	for _, c := range model.Categories() {
		s.Categories = append(s.Categories, CategoryCount{Category: c, Count: counts.Categories[c]})
	}
	return s
}
