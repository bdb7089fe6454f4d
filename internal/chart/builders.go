package chart

import (
	"slices"
	"strconv"
	"time"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// Fixed map viewport, centred on Brazil.
var (
	MapCenter = LatLon{Lat: -13.017113, Lon: -51.074481}
	MapZoom   = 2.5
)

// MapOptions carries the deployment-specific map settings.
type MapOptions struct {
	Style       string
	AccessToken string
}

// BuildMap returns a choropleth with one point per aggregate row whose state
// code has a polygon in b. Colour is bound to Number; the viewport is fixed.
func BuildMap(rows []domain.AggregateRecord, b *domain.Boundaries, opts MapOptions) Spec {
	style := opts.Style
	if style == "" {
		style = "carto-positron"
	}

	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		if !b.Has(r.StateCode) {
			continue
		}
		points = append(points, Point{
			X:        r.State,
			Y:        r.Number,
			Location: r.StateCode,
			Hover: map[string]string{
				"State":  r.State,
				"Year":   strconv.Itoa(r.Year),
				"Number": formatNumber(r.Number),
			},
		})
	}

	view := &MapView{
		Center:       MapCenter,
		Zoom:         MapZoom,
		Style:        style,
		AccessToken:  opts.AccessToken,
		FeatureIDKey: "properties." + domain.FeatureIDProperty,
		ColorScale:   "sunset",
		Extent:       b.Extent(),
	}
	series := []Series{}
	if len(points) > 0 {
		view.ColorMin, view.ColorMax = valueRange(points)
		series = append(series, Series{Name: ValueLabel, Points: points})
	}

	return Spec{
		Kind:     KindChoropleth,
		YAxis:    Axis{Title: ValueLabel},
		Series:   series,
		Map:      view,
		Template: Template,
	}
}

// BuildYearChart returns a bar chart with one mark per (year, state), valued
// at the summed Number. Several states get one palette-coloured series each;
// a single state gets one tomato series.
func BuildYearChart(rows []domain.IncidentRecord) Spec {
	series, keys := groupSeries(rows, func(r domain.IncidentRecord) (int, bool) {
		return r.Year, true
	}, strconv.Itoa, "Year")

	categories := make([]string, len(keys))
	for i, y := range keys {
		categories[i] = strconv.Itoa(y)
	}

	return Spec{
		Kind:     KindBar,
		XAxis:    Axis{Title: "Year", Categories: categories, Tick0: domain.FirstYear, DTick: 1},
		YAxis:    Axis{Title: ValueLabel},
		Series:   series,
		Template: Template,
		Margin:   Margin{Top: 10, Left: 80},
	}
}

// BuildMonthChart returns a line chart over January..December with one line
// per state, valued at the summed Number. Rows without a month are skipped.
func BuildMonthChart(rows []domain.IncidentRecord) Spec {
	series, _ := groupSeries(rows, func(r domain.IncidentRecord) (int, bool) {
		return int(r.Month), r.Month >= time.January && r.Month <= time.December
	}, func(m int) string { return time.Month(m).String() }, "Month")

	return Spec{
		Kind:     KindLine,
		XAxis:    Axis{Title: "Month", Categories: MonthNames()},
		YAxis:    Axis{Title: ValueLabel},
		Series:   series,
		Template: Template,
		Margin:   Margin{Top: 10, Left: 80},
	}
}

// MonthNames returns the English month names in calendar order.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		names = append(names, m.String())
	}
	return names
}

// groupSeries sums Number per (state, key) and returns one series per state
// in first-occurrence order, each with points in ascending key order. It also
// returns every key seen, ascending. Rows with no state are skipped.
func groupSeries(
	rows []domain.IncidentRecord,
	key func(domain.IncidentRecord) (int, bool),
	label func(int) string,
	hoverKey string,
) ([]Series, []int) {
	type stateKey struct {
		state string
		key   int
	}

	var states []string
	keysByState := make(map[string][]int)
	sums := make(map[stateKey]float64)
	seenKey := make(map[int]struct{})

	for _, r := range rows {
		if r.State == "" {
			continue
		}
		k, ok := key(r)
		if !ok {
			continue
		}
		if _, ok := keysByState[r.State]; !ok {
			states = append(states, r.State)
		}
		sk := stateKey{r.State, k}
		if _, ok := sums[sk]; !ok {
			keysByState[r.State] = append(keysByState[r.State], k)
		}
		sums[sk] += r.Number
		seenKey[k] = struct{}{}
	}

	series := make([]Series, 0, len(states))
	for i, state := range states {
		keys := keysByState[state]
		slices.Sort(keys)

		points := make([]Point, len(keys))
		for j, k := range keys {
			sum := sums[stateKey{state, k}]
			points[j] = Point{
				X: label(k),
				Y: sum,
				Hover: map[string]string{
					"State":  state,
					hoverKey: label(k),
					"Number": formatNumber(sum),
				},
			}
		}
		series = append(series, Series{
			Name:   state,
			Color:  seriesColor(i, len(states)),
			Points: points,
		})
	}

	all := make([]int, 0, len(seenKey))
	for k := range seenKey {
		all = append(all, k)
	}
	slices.Sort(all)
	return series, all
}

func seriesColor(i, n int) string {
	if n == 1 {
		return SingleStateColor
	}
	return palette[i%len(palette)]
}

func valueRange(points []Point) (float64, float64) {
	lo, hi := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		lo = min(lo, p.Y)
		hi = max(hi, p.Y)
	}
	return lo, hi
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
