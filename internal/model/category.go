package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Category is a Distressed Communities Index (DCI) tier. Tiers are ordered from
// most distressed to most prosperous.
type Category uint8

const (
	CategoryDistressed Category = iota
	CategoryAtRisk
	CategoryMidTier
	CategoryComfortable
	CategoryProsperous

	numCategories
)

// NumCategories is the size of the fixed category domain.
const NumCategories = int(numCategories)

var categoryNames = [NumCategories]string{
	"Distressed",
	"At Risk",
	"Mid-tier",
	"Comfortable",
	"Prosperous",
}

// Categories returns every category in tier order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Valid reports whether c is one of the five DCI tiers.
func (c Category) Valid() bool { return c < numCategories }

func (c Category) String() string {
	if !c.Valid() {
		return "Category(?)"
	}
	return categoryNames[c]
}

var folder = cases.Fold()

// foldKey normalizes a category name for lookup: case-folded with spaces,
// hyphens and underscores removed, so "at-risk", "AT RISK" and "At Risk" match.
func foldKey(s string) string {
	s = folder.String(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, NumCategories)
	for i, name := range categoryNames {
		m[foldKey(name)] = Category(i)
	}
	return m
}()

// ParseCategory resolves a DCI tier name as it appears in the source workbook
// or in an API request.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryIndex[foldKey(s)]; ok {
		return c, nil
	}
	return 0, eris.Errorf("model: unknown category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, eris.Errorf("model: invalid category %d", c)
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
