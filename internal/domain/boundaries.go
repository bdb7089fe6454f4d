package domain

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureIDProperty is the GeoJSON feature property holding the subdivision code.
const FeatureIDProperty = "sigla"

// Extent is a WGS-84 bounding box.
type Extent struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Boundaries holds the state polygons keyed by subdivision code.
// It is read-only once built.
type Boundaries struct {
	raw      []byte
	features map[string]*geojson.Feature
	codes    []string
	extent   *Extent
}

// NewBoundaries indexes a decoded feature collection by its sigla property.
// raw is kept so the original document can be served verbatim. Features
// without a string sigla are ignored; a collection with none is an error.
func NewBoundaries(raw []byte, fc *geojson.FeatureCollection) (*Boundaries, error) {
	if fc == nil {
		return nil, errors.New("nil feature collection")
	}

	b := &Boundaries{
		raw:      raw,
		features: make(map[string]*geojson.Feature, len(fc.Features)),
	}
	bounds := geom.NewBounds(geom.XY)
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		code, ok := f.Properties[FeatureIDProperty].(string)
		if !ok || code == "" {
			continue
		}
		if _, dup := b.features[code]; !dup {
			b.codes = append(b.codes, code)
		}
		b.features[code] = f
		extendBounds(bounds, f.Geometry)
	}
	if len(b.features) == 0 {
		return nil, fmt.Errorf("no features with a %q property", FeatureIDProperty)
	}
	if !bounds.IsEmpty() {
		b.extent = &Extent{
			MinLon: bounds.Min(0),
			MinLat: bounds.Min(1),
			MaxLon: bounds.Max(0),
			MaxLat: bounds.Max(1),
		}
	}
	return b, nil
}

// extendBounds grows bounds by g. Collections are walked member by member
// since go-geom cannot take their flat coordinates.
func extendBounds(bounds *geom.Bounds, g geom.T) {
	switch g := g.(type) {
	case nil:
	case *geom.GeometryCollection:
		for _, child := range g.Geoms() {
			extendBounds(bounds, child)
		}
	default:
		bounds.Extend(g)
	}
}

// Has reports whether a feature exists for the subdivision code.
func (b *Boundaries) Has(code string) bool {
	if b == nil {
		return false
	}
	_, ok := b.features[code]
	return ok
}

// Codes returns the feature codes in document order.
func (b *Boundaries) Codes() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.codes...)
}

// Extent returns the bounding box of every feature geometry, or nil when
// no feature carries geometry.
func (b *Boundaries) Extent() *Extent {
	if b == nil || b.extent == nil {
		return nil
	}
	e := *b.extent
	return &e
}

// Raw returns the GeoJSON document as read from disk.
func (b *Boundaries) Raw() []byte {
	if b == nil {
		return nil
	}
	return b.raw
}
