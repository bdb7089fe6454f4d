package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// testDataset has two states over 2010 and 2015:
//
//	2010: Acre 15 (Jan 10, Feb 5), Amazonas 3 (Jan)
//	2015: Acre 7 (Jan),            Amazonas 10 (Jan 4, Mar 6)
func testDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	incidents := []domain.IncidentRecord{
		{Year: 2010, State: "Acre", StateCode: "AC", Month: time.January, Number: 10},
		{Year: 2010, State: "Acre", StateCode: "AC", Month: time.February, Number: 5},
		{Year: 2015, State: "Acre", StateCode: "AC", Month: time.January, Number: 7},
		{Year: 2010, State: "Amazonas", StateCode: "AM", Month: time.January, Number: 3},
		{Year: 2015, State: "Amazonas", StateCode: "AM", Month: time.January, Number: 4},
		{Year: 2015, State: "Amazonas", StateCode: "AM", Month: time.March, Number: 6},
	}
	return domain.NewDataset(incidents, []int{2010, 2015}, testBoundaries(t, "AC", "AM"))
}

func testBoundaries(t *testing.T, codes ...string) *domain.Boundaries {
	t.Helper()
	fc := &geojson.FeatureCollection{}
	for i, code := range codes {
		x := float64(-70 + 2*i)
		poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
			{x, -10}, {x + 1, -10}, {x + 1, -9}, {x, -9}, {x, -10},
		}})
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   poly,
			Properties: map[string]interface{}{"sigla": code},
		})
	}
	b, err := domain.NewBoundaries([]byte(`{"type":"FeatureCollection"}`), fc)
	require.NoError(t, err)
	return b
}
