package server

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/carbon-map/internal/bucket"
	"github.com/sells-group/carbon-map/internal/view"
)

// frameResponse is a rendered frame with points as a GeoJSON FeatureCollection
// ready for a circle layer.
type frameResponse struct {
	Version        uint64                     `json:"version"`
	Scale          bucket.Scale               `json:"scale"`
	Points         *geojson.FeatureCollection `json:"points"`
	Tooltip        *view.Tooltip              `json:"tooltip,omitempty"`
	OverlayVisible bool                       `json:"overlay_visible"`
	OverlayURL     string                     `json:"overlay_url,omitempty"`
}

const boundariesPath = "/api/boundaries"

func encodeFrame(f view.Frame) frameResponse {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(f.Points))}
	for _, p := range f.Points {
		rec := p.Record
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       rec.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{rec.Position.Lon, rec.Position.Lat}),
			Properties: map[string]any{
				"id":         rec.ID,
				"state":      rec.State,
				"county":     rec.County,
				"value":      rec.Value,
				"category":   rec.Category.String(),
				"bucket":     p.Bucket.Label(),
				"color":      p.Fill.Array(),
				"css":        p.Fill.CSS(),
				"radius":     view.PointRadius,
				"line_color": view.LineColor,
			},
		})
	}

	resp := frameResponse{
		Version:        f.Version,
		Scale:          f.Scale,
		Points:         fc,
		Tooltip:        f.Tooltip,
		OverlayVisible: f.OverlayVisible,
	}
	if f.OverlayVisible {
		resp.OverlayURL = boundariesPath
	}
	return resp
}
