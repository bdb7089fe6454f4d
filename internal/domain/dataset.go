package domain

import "time"

// Dataset is the process-wide, read-only view of the loaded data.
// Nothing mutates it after NewDataset returns.
type Dataset struct {
	Incidents  []IncidentRecord
	Aggregates []AggregateRecord
	States     []StateRef
	Years      []int
	Boundaries *Boundaries
	LoadedAt   time.Time
}

// NewDataset aggregates incidents over years and stamps the load time.
func NewDataset(incidents []IncidentRecord, years []int, boundaries *Boundaries) *Dataset {
	return &Dataset{
		Incidents:  incidents,
		Aggregates: Aggregate(incidents, years),
		States:     DistinctStates(incidents),
		Years:      append([]int(nil), years...),
		Boundaries: boundaries,
		LoadedAt:   clock.Now(),
	}
}

// StateNames returns the distinct canonical state names in first-occurrence order.
func (d *Dataset) StateNames() []string {
	names := make([]string, len(d.States))
	for i, s := range d.States {
		names[i] = s.Name
	}
	return names
}

// AggregatesForYear returns the aggregate rows for a single year.
func (d *Dataset) AggregatesForYear(year int) []AggregateRecord {
	var out []AggregateRecord
	for _, r := range d.Aggregates {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}
