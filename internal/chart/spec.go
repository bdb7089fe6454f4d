// Package chart builds renderer-independent chart specifications for the
// dashboard's map, yearly bar chart, and monthly line chart.
package chart

import "github.com/couchcryptid/brazil-fires-dashboard/internal/domain"

// Kind selects how a Spec is drawn.
type Kind string

const (
	KindChoropleth Kind = "choropleth"
	KindBar        Kind = "bar"
	KindLine       Kind = "line"
)

// ValueLabel is the axis and colour bar title for fire counts.
const ValueLabel = "Number of Fires"

// SingleStateColor is used when exactly one state is charted.
const SingleStateColor = "tomato"

// Template is the page-level theme applied by the renderer.
const Template = "plotly_white"

// palette is assigned to series in order when several states are charted.
var palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Spec is an abstract chart description: data bindings plus the few
// cosmetic options the dashboard sets.
type Spec struct {
	Kind       Kind     `json:"kind"`
	XAxis      Axis     `json:"xAxis"`
	YAxis      Axis     `json:"yAxis"`
	Series     []Series `json:"series"`
	Map        *MapView `json:"map,omitempty"`
	ShowLegend bool     `json:"showLegend"`
	Template   string   `json:"template"`
	Margin     Margin   `json:"margin"`
}

// Axis describes one chart axis.
type Axis struct {
	Title      string   `json:"title,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Tick0      int      `json:"tick0,omitempty"`
	DTick      int      `json:"dtick,omitempty"`
}

// Series is one coloured group of points.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color,omitempty"`
	Points []Point `json:"points"`
}

// Point is a single mark. Location is set only on choropleth points and
// holds the subdivision code of the polygon to fill.
type Point struct {
	X        string            `json:"x"`
	Y        float64           `json:"y"`
	Location string            `json:"location,omitempty"`
	Hover    map[string]string `json:"hover,omitempty"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	Top    int `json:"t"`
	Right  int `json:"r"`
	Bottom int `json:"b"`
	Left   int `json:"l"`
}

// LatLon is a WGS-84 coordinate.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapView carries the choropleth-specific settings.
type MapView struct {
	Center       LatLon         `json:"center"`
	Zoom         float64        `json:"zoom"`
	Style        string         `json:"style"`
	AccessToken  string         `json:"accessToken,omitempty"`
	FeatureIDKey string         `json:"featureIdKey"`
	ColorScale   string         `json:"colorScale"`
	ColorMin     float64        `json:"colorMin"`
	ColorMax     float64        `json:"colorMax"`
	Extent       *domain.Extent `json:"extent,omitempty"`
}

// DataPoints counts the points across all series.
func (s Spec) DataPoints() int {
	n := 0
	for _, series := range s.Series {
		n += len(series.Points)
	}
	return n
}
