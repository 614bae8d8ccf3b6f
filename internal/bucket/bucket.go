// Package bucket classifies W/tCO2 values into the seven map buckets and
// assigns each bucket a colour under the selected scale.
package bucket

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// Bucket identifies one of seven contiguous, half-open value ranges.
// The zero value is the lowest bucket.
type Bucket uint8

const (
	Below20 Bucket = iota // [-inf, 20)
	From20                // [20, 25)
	From25                // [25, 30)
	From30                // [30, 35)
	From35                // [35, 40)
	From40                // [40, 45)
	From45                // [45, +inf)

	numBuckets
)

// NumBuckets is the size of the fixed bucket domain.
const NumBuckets = int(numBuckets)

var negInf, posInf = math.Inf(-1), math.Inf(1)

// bounds holds the lower edge of every bucket after the first.
var bounds = [NumBuckets - 1]float64{20, 25, 30, 35, 40, 45}

// Value labels double as checkbox values in the panel and as API identifiers.
var valueLabels = [NumBuckets]string{"15-20", "20-25", "25-30", "30-35", "35-40", "40-45", "45"}

var displayLabels = [NumBuckets]string{
	">= 15, < 20",
	">= 20, < 25",
	">= 25, < 30",
	">= 30, < 35",
	">= 35, < 40",
	">= 40, < 45",
	">= 45",
}

// Classify maps a value to its bucket. A value equal to a boundary falls in the
// upper bucket. Callers screen out NaN with model.ValidValue; NaN compares false
// against every bound and so lands in the top bucket.
func Classify(v float64) Bucket {
	i := sort.Search(len(bounds), func(i int) bool { return bounds[i] > v })
	return Bucket(i)
}

// All returns every bucket in ascending order.
func All() []Bucket {
	out := make([]Bucket, NumBuckets)
	for i := range out {
		out[i] = Bucket(i)
	}
	return out
}

// Valid reports whether b is inside the fixed seven-bucket domain.
func (b Bucket) Valid() bool { return b < numBuckets }

// Range returns the half-open interval [low, high) covered by b. The outer
// buckets are unbounded on one side.
func (b Bucket) Range() (low, high float64) {
	mustValid(b)
	low, high = negInf, posInf
	if b > Below20 {
		low = bounds[b-1]
	}
	if b < From45 {
		high = bounds[b]
	}
	return low, high
}

// Label is the short value label, e.g. "20-25".
func (b Bucket) Label() string {
	mustValid(b)
	return valueLabels[b]
}

// DisplayLabel is the human-readable range, e.g. ">= 20, < 25".
func (b Bucket) DisplayLabel() string {
	mustValid(b)
	return displayLabels[b]
}

func (b Bucket) String() string {
	if !b.Valid() {
		return "Bucket(?)"
	}
	return valueLabels[b]
}

// Parse resolves a value label such as "30-35" or "45".
func Parse(label string) (Bucket, error) {
	for i, l := range valueLabels {
		if l == label {
			return Bucket(i), nil
		}
	}
	return 0, eris.Errorf("bucket: unknown bucket %q", label)
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, eris.Errorf("bucket: invalid bucket %d", b)
	}
	return []byte(valueLabels[b]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bucket) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// mustValid panics when b is outside the domain. Classify never produces such a
// bucket, so reaching this is a programming error.
func mustValid(b Bucket) {
	if !b.Valid() {
		panic(eris.Errorf("bucket: invalid bucket %d", b))
	}
}
