package domain

import (
	"encoding/json"
	"time"
)

// IncidentRecord is one normalised row of the incident table.
type IncidentRecord struct {
	Year      int
	State     string     // canonical accented name, "" when unmapped
	StateCode string     // subdivision code, "" when the state has no match
	Month     time.Month // 0 when unmapped
	Number    float64
}

// MonthName returns the English month name, or "" for a missing month.
func (r IncidentRecord) MonthName() string {
	if r.Month < time.January || r.Month > time.December {
		return ""
	}
	return r.Month.String()
}

type incidentJSON struct {
	Year      int     `json:"year"`
	State     *string `json:"state"`
	StateCode *string `json:"state_code"`
	Month     *string `json:"month"`
	Number    float64 `json:"number"`
}

// MarshalJSON encodes missing state, code, and month as null.
func (r IncidentRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(incidentJSON{
		Year:      r.Year,
		State:     nullable(r.State),
		StateCode: nullable(r.StateCode),
		Month:     nullable(r.MonthName()),
		Number:    r.Number,
	})
}

// AggregateRecord is the total Number for one (year, state) across all months.
type AggregateRecord struct {
	Year      int
	State     string
	StateCode string
	Number    float64
}

type aggregateJSON struct {
	Year      int     `json:"year"`
	State     string  `json:"state"`
	StateCode *string `json:"state_code"`
	Number    float64 `json:"number"`
}

// MarshalJSON encodes a missing state code as null.
func (r AggregateRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(aggregateJSON{
		Year:      r.Year,
		State:     r.State,
		StateCode: nullable(r.StateCode),
		Number:    r.Number,
	})
}

// StateCode is one row of the state name to subdivision code lookup.
type StateCode struct {
	Name        string
	Subdivision string
}

// StateRef identifies a distinct state in the incident table along with the
// code attached to its first occurrence.
type StateRef struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
