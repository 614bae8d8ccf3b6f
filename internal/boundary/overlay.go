package boundary

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/carbon-map/internal/fetcher"
)

// County is one county outline.
type County struct {
	GEOID    string
	Name     string
	StateFP  string
	Geometry *geom.MultiPolygon
}

// Overlay is the boundary dataset shown while a record is hovered or clicked.
type Overlay struct {
	Source   string
	Counties []County

	once    sync.Once
	encoded []byte
	encErr  error
}

// Len returns the number of counties.
func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Counties)
}

// Bounds returns the extent of every county.
func (o *Overlay) Bounds() *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	if o == nil {
		return b
	}
	for _, c := range o.Counties {
		b.Extend(c.Geometry)
	}
	return b
}

// FeatureCollection converts the overlay to GeoJSON features keyed by GEOID,
// with the overlay's extent as the collection bbox.
func (o *Overlay) FeatureCollection() *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, o.Len())}
	if o.Len() == 0 {
		return fc
	}
	fc.BBox = o.Bounds()
	for _, c := range o.Counties {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       c.GEOID,
			Geometry: c.Geometry,
			Properties: map[string]any{
				"geoid":   c.GEOID,
				"name":    c.Name,
				"statefp": c.StateFP,
			},
		})
	}
	return fc
}

// GeoJSON returns the encoded feature collection. It is computed once.
func (o *Overlay) GeoJSON() ([]byte, error) {
	o.once.Do(func() {
		o.encoded, o.encErr = json.Marshal(o.FeatureCollection())
		if o.encErr != nil {
			o.encErr = eris.Wrap(o.encErr, "boundary: encode geojson")
		}
	})
	return o.encoded, o.encErr
}

// Load resolves source, unpacking a ZIP bundle into workDir when needed, and
// reads the shapefile inside.
func Load(ctx context.Context, resolver *fetcher.Resolver, source, workDir string) (*Overlay, error) {
	path, err := resolver.Resolve(ctx, source)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: resolve source")
	}

	if strings.EqualFold(filepath.Ext(path), ".zip") {
		dir, err := os.MkdirTemp(workDir, "boundary-*")
		if err != nil {
			return nil, eris.Wrap(err, "boundary: create extract dir")
		}
		files, err := fetcher.ExtractZIP(path, dir)
		if err != nil {
			return nil, eris.Wrap(err, "boundary: extract bundle")
		}
		shpPath, ok := fetcher.FindByExt(files, ".shp")
		if !ok {
			return nil, eris.Errorf("boundary: no .shp file in %s", source)
		}
		path = shpPath
	}

	o, err := ReadShapefile(path)
	if err != nil {
		return nil, err
	}
	o.Source = source
	zap.L().Info("boundary: overlay loaded",
		zap.String("source", source),
		zap.Int("counties", o.Len()),
	)
	return o, nil
}
