package selection

import (
	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/model"
)

// CategorySet is a bitset over the five DCI categories.
type CategorySet uint8

// AllCategories has every category set.
const AllCategories CategorySet = 1<<model.NumCategories - 1

// Has reports whether c is in the set. Out-of-domain categories are never members.
func (s CategorySet) Has(c model.Category) bool {
	return c.Valid() && s&(1<<c) != 0
}

// With returns s with c added.
func (s CategorySet) With(c model.Category) CategorySet { return s | 1<<c }

// Without returns s with c removed.
func (s CategorySet) Without(c model.Category) CategorySet { return s &^ (1 << c) }

// Slice lists the members in tier order.
func (s CategorySet) Slice() []model.Category {
	out := make([]model.Category, 0, model.NumCategories)
	for _, c := range model.Categories() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// CategorySetOf builds a set from the given categories.
func CategorySetOf(cats ...model.Category) CategorySet {
	var s CategorySet
	for _, c := range cats {
		s = s.With(c)
	}
	return s
}

// BucketSet is a bitset over the seven value buckets.
type BucketSet uint8

// AllBuckets has every bucket set.
const AllBuckets BucketSet = 1<<bucket.NumBuckets - 1

// Has reports whether b is in the set.
func (s BucketSet) Has(b bucket.Bucket) bool {
	return b.Valid() && s&(1<<b) != 0
}

// With returns s with b added.
func (s BucketSet) With(b bucket.Bucket) BucketSet { return s | 1<<b }

// Without returns s with b removed.
func (s BucketSet) Without(b bucket.Bucket) BucketSet { return s &^ (1 << b) }

// Slice lists the members in ascending order.
func (s BucketSet) Slice() []bucket.Bucket {
	out := make([]bucket.Bucket, 0, bucket.NumBuckets)
	for _, b := range bucket.All() {
		if s.Has(b) {
			out = append(out, b)
		}
	}
	return out
}

// BucketSetOf builds a set from the given buckets.
func BucketSetOf(buckets ...bucket.Bucket) BucketSet {
	var s BucketSet
	for _, b := range buckets {
		s = s.With(b)
	}
	return s
}
