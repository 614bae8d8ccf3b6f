package bucket

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Scale selects which palette colours the buckets. It never changes bucket membership.
type Scale uint8

const (
	ScaleDefault Scale = iota
	ScaleAlternate

	numScales
)

// NumScales is the number of selectable colour scales.
const NumScales = int(numScales)

var scaleNames = [NumScales]string{"default", "alternate"}

// Scales returns both scales in display order.
func Scales() []Scale { return []Scale{ScaleDefault, ScaleAlternate} }

// Valid reports whether s is a known scale.
func (s Scale) Valid() bool { return s < numScales }

func (s Scale) String() string {
	if !s.Valid() {
		return "Scale(?)"
	}
	return scaleNames[s]
}

// ParseScale resolves a scale name. "master", after the "Master Dataset Color"
// option, is an alias for the alternate scale.
func ParseScale(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "default":
		return ScaleDefault, nil
	case "alternate", "master":
		return ScaleAlternate, nil
	}
	return 0, eris.Errorf("bucket: unknown scale %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scale) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, eris.Errorf("bucket: invalid scale %d", s)
	}
	return []byte(scaleNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scale) UnmarshalText(text []byte) error {
	v, err := ParseScale(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// RGB is an opaque display colour.
type RGB struct {
	R, G, B uint8
}

// CSS formats c the way the legend swatches are styled, e.g. "rgb(234, 53, 70)".
func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Array returns c as an [r, g, b] triple, the form map layers consume.
func (c RGB) Array() [3]uint8 { return [3]uint8{c.R, c.G, c.B} }

func mustValidScale(s Scale) {
	if !s.Valid() {
		panic(eris.Errorf("bucket: invalid scale %d", s))
	}
}
