package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// readBoundaries decodes a GeoJSON FeatureCollection of state polygons.
func readBoundaries(r io.Reader) (*domain.Boundaries, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return domain.NewBoundaries(raw, &fc)
}
