// Package dashboard answers control changes with the three linked figures.
package dashboard

import (
	"github.com/couchcryptid/brazil-fires-dashboard/internal/chart"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// Updater turns a control state into figures.
type Updater interface {
	Update(year int, sel Selection) Figures
}

// Slices are the rows behind each figure for one control state.
type Slices struct {
	Map   []domain.AggregateRecord
	Year  []domain.IncidentRecord
	Month []domain.IncidentRecord
}

// Figures are the map, year, and month chart specs, in that order.
// They share backing arrays with cached copies and must not be mutated.
type Figures struct {
	Map   chart.Spec `json:"map"`
	Year  chart.Spec `json:"year"`
	Month chart.Spec `json:"month"`
}

// Controller filters the dataset for a control state and builds the figures.
// It only reads the dataset and is safe for concurrent use.
type Controller struct {
	ds   *domain.Dataset
	opts chart.MapOptions
}

// NewController creates a Controller over a loaded dataset.
func NewController(ds *domain.Dataset, opts chart.MapOptions) *Controller {
	return &Controller{ds: ds, opts: opts}
}

// Select returns the rows each figure is built from.
//
// With AllStates the map receives the whole aggregate table and both charts
// the whole incident table; year is not consulted. With OneState the map
// receives the aggregates for year, the year chart that state's incidents,
// and the month chart that state's incidents for year.
func (c *Controller) Select(year int, sel Selection) Slices {
	if sel.IsAll() {
		return Slices{
			Map:   c.ds.Aggregates,
			Year:  c.ds.Incidents,
			Month: c.ds.Incidents,
		}
	}

	var s Slices
	s.Map = c.ds.AggregatesForYear(year)
	for _, r := range c.ds.Incidents {
		if r.State != sel.State() {
			continue
		}
		s.Year = append(s.Year, r)
		if r.Year == year {
			s.Month = append(s.Month, r)
		}
	}
	return s
}

// Update builds the map, year, and month figures for a control state.
// An unknown state yields empty year and month charts.
func (c *Controller) Update(year int, sel Selection) Figures {
	s := c.Select(year, sel)
	return Figures{
		Map:   chart.BuildMap(s.Map, c.ds.Boundaries, c.opts),
		Year:  chart.BuildYearChart(s.Year),
		Month: chart.BuildMonthChart(s.Month),
	}
}
