package bucket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorOf_DefaultTable(t *testing.T) {
	want := []RGB{
		{234, 53, 70},
		{255, 126, 54},
		{248, 185, 32},
		{238, 235, 32},
		{145, 205, 150},
		{78, 205, 196},
		{49, 130, 189},
	}
	for i, b := range All() {
		assert.Equal(t, want[i], ColorOf(b, ScaleDefault), b.Label())
	}
}

func TestColorOf_AlternateTable(t *testing.T) {
	want := []RGB{
		{255, 0, 50},
		{255, 135, 0},
		{255, 215, 0},
		{0, 178, 0},
		{0, 120, 255},
		{148, 50, 108},
		{128, 128, 128},
	}
	for i, b := range All() {
		assert.Equal(t, want[i], ColorOf(b, ScaleAlternate), b.Label())
	}
}

func TestColorOf_ScalesDiffer(t *testing.T) {
	for _, b := range All() {
		assert.NotEqual(t, ColorOf(b, ScaleDefault), ColorOf(b, ScaleAlternate), b.Label())
	}
}

func TestColorOf_InvalidScalePanics(t *testing.T) {
	assert.Panics(t, func() { ColorOf(Below20, Scale(5)) })
}

func TestDefaultPalette_Injective(t *testing.T) {
	require.NoError(t, DefaultPalette().Validate())
}

func TestDefaultPalette_IsCopy(t *testing.T) {
	p := DefaultPalette()
	p.colors[ScaleDefault][Below20] = RGB{1, 2, 3}
	assert.Equal(t, RGB{234, 53, 70}, ColorOf(Below20, ScaleDefault))
}

func TestParseScale(t *testing.T) {
	tests := []struct {
		in   string
		want Scale
	}{
		{"default", ScaleDefault},
		{"Default", ScaleDefault},
		{"alternate", ScaleAlternate},
		{"master", ScaleAlternate},
	}
	for _, tt := range tests {
		got, err := ParseScale(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseScale("viridis")
	assert.Error(t, err)
}

func TestParsePalette_Overrides(t *testing.T) {
	data := []byte(`
alternate:
  "15-20": [255, 0, 0]
  "30-35": [0, 158, 0]
`)
	p, err := ParsePalette(data)
	require.NoError(t, err)

	assert.Equal(t, RGB{255, 0, 0}, p.ColorOf(Below20, ScaleAlternate))
	assert.Equal(t, RGB{0, 158, 0}, p.ColorOf(From30, ScaleAlternate))
	// Untouched entries keep the built-in colours.
	assert.Equal(t, RGB{255, 135, 0}, p.ColorOf(From20, ScaleAlternate))
	assert.Equal(t, RGB{234, 53, 70}, p.ColorOf(Below20, ScaleDefault))
}

func TestParsePalette_MasterAlias(t *testing.T) {
	p, err := ParsePalette([]byte(`master: {"45": [1, 1, 1]}`))
	require.NoError(t, err)
	assert.Equal(t, RGB{1, 1, 1}, p.ColorOf(From45, ScaleAlternate))
}

func TestParsePalette_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"unknown scale", `viridis: {"45": [1, 1, 1]}`, "unknown scale"},
		{"unknown bucket", `default: {"50-55": [1, 1, 1]}`, "unknown bucket"},
		{"duplicate colour", `default: {"45": [234, 53, 70]}`, "assigns"},
		{"malformed", `default: [`, "parse palette"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePalette([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`default: {"20-25": [10, 20, 30]}`), 0o644))

	p, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, RGB{10, 20, 30}, p.ColorOf(From20, ScaleDefault))

	_, err = LoadPalette(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLegend(t *testing.T) {
	items := DefaultPalette().Legend(ScaleDefault)
	require.Len(t, items, NumBuckets)

	assert.Equal(t, Below20, items[0].Bucket)
	assert.Equal(t, ">= 15, < 20", items[0].Label)
	assert.Equal(t, "rgb(234, 53, 70)", items[0].CSS)
	assert.Equal(t, From45, items[6].Bucket)
	assert.Equal(t, "rgb(49, 130, 189)", items[6].CSS)

	alt := DefaultPalette().Legend(ScaleAlternate)
	assert.Equal(t, "rgb(255, 0, 50)", alt[0].CSS)
}

func TestRGB(t *testing.T) {
	c := RGB{1, 2, 3}
	assert.Equal(t, "rgb(1, 2, 3)", c.CSS())
	assert.Equal(t, [3]uint8{1, 2, 3}, c.Array())
}
