package domain

// FirstYear and LastYear bound the years covered by the dataset.
const (
	FirstYear = 1998
	LastYear  = 2017
)

// DefaultYears returns FirstYear..LastYear inclusive.
func DefaultYears() []int {
	return YearRange(FirstYear, LastYear)
}

// YearRange returns first..last inclusive, or nil when last < first.
func YearRange(first, last int) []int {
	if last < first {
		return nil
	}
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// DistinctStates returns each non-missing state once, in order of first
// occurrence, with the code carried by that first occurrence.
func DistinctStates(incidents []IncidentRecord) []StateRef {
	seen := make(map[string]struct{})
	var states []StateRef
	for _, r := range incidents {
		if r.State == "" {
			continue
		}
		if _, ok := seen[r.State]; ok {
			continue
		}
		seen[r.State] = struct{}{}
		states = append(states, StateRef{Name: r.State, Code: r.StateCode})
	}
	return states
}

type yearState struct {
	year  int
	state string
}

// Aggregate sums Number per (year, state) for every year in years and every
// distinct state in incidents. States without reports in a year get 0.
// Output is ordered by the years slice, then by state first occurrence.
func Aggregate(incidents []IncidentRecord, years []int) []AggregateRecord {
	states := DistinctStates(incidents)

	sums := make(map[yearState]float64)
	for _, r := range incidents {
		if r.State == "" {
			continue
		}
		sums[yearState{r.Year, r.State}] += r.Number
	}

	out := make([]AggregateRecord, 0, len(years)*len(states))
	for _, y := range years {
		for _, s := range states {
			out = append(out, AggregateRecord{
				Year:      y,
				State:     s.Name,
				StateCode: s.Code,
				Number:    sums[yearState{y, s.Name}],
			})
		}
	}
	return out
}
