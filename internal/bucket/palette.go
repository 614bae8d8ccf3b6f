package bucket

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Palette assigns a colour to every bucket under every scale.
type Palette struct {
	colors [NumScales][NumBuckets]RGB
}

var builtin = Palette{colors: [NumScales][NumBuckets]RGB{
	ScaleDefault: {
		{234, 53, 70},
		{255, 126, 54},
		{248, 185, 32},
		{238, 235, 32},
		{145, 205, 150},
		{78, 205, 196},
		{49, 130, 189},
	},
	ScaleAlternate: {
		{255, 0, 50},
		{255, 135, 0},
		{255, 215, 0},
		{0, 178, 0},
		{0, 120, 255},
		{148, 50, 108},
		{128, 128, 128},
	},
}}

// DefaultPalette returns a copy of the built-in palette.
func DefaultPalette() *Palette {
	p := builtin
	return &p
}

// ColorOf returns the colour of b under s using the built-in palette.
// It panics if b or s is outside its domain.
func ColorOf(b Bucket, s Scale) RGB {
	return builtin.ColorOf(b, s)
}

// ColorOf returns the colour of b under s. It panics if b or s is outside its domain.
func (p *Palette) ColorOf(b Bucket, s Scale) RGB {
	mustValid(b)
	mustValidScale(s)
	return p.colors[s][b]
}

// Validate checks that every scale maps buckets to distinct colours.
func (p *Palette) Validate() error {
	for s := range NumScales {
		seen := make(map[RGB]Bucket, NumBuckets)
		for b, c := range p.colors[s] {
			if prev, dup := seen[c]; dup {
				return eris.Errorf("bucket: scale %s assigns %s to both %s and %s",
					Scale(s), c.CSS(), prev, Bucket(b))
			}
			seen[c] = Bucket(b)
		}
	}
	return nil
}

// paletteFile is the on-disk override format:
//
//	alternate:
//	  "15-20": [255, 0, 0]
//	  "30-35": [0, 158, 0]
type paletteFile map[string]map[string][3]uint8

// LoadPalette reads colour overrides from a YAML file and applies them on top
// of the built-in palette. Unknown scales or buckets are rejected, as is any
// override that makes a scale non-injective.
func LoadPalette(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "bucket: read palette file")
	}
	return ParsePalette(data)
}

// ParsePalette applies YAML colour overrides to the built-in palette.
func ParsePalette(data []byte) (*Palette, error) {
	var file paletteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "bucket: parse palette file")
	}

	p := DefaultPalette()
	for scaleName, entries := range file {
		s, err := ParseScale(scaleName)
		if err != nil {
			return nil, err
		}
		for label, rgb := range entries {
			b, err := Parse(label)
			if err != nil {
				return nil, err
			}
			p.colors[s][b] = RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LegendItem is one labelled swatch in a scale's legend.
type LegendItem struct {
	Bucket Bucket `json:"value"`
	Label  string `json:"label"`
	Color  RGB    `json:"-"`
	CSS    string `json:"color"`
}

// Legend returns the seven swatches for s in ascending bucket order.
func (p *Palette) Legend(s Scale) []LegendItem {
	mustValidScale(s)
	items := make([]LegendItem, NumBuckets)
	for i := range items {
		b := Bucket(i)
		c := p.colors[s][b]
		items[i] = LegendItem{Bucket: b, Label: displayLabels[b], Color: c, CSS: c.CSS()}
	}
	return items
}
