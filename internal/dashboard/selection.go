package dashboard

import "strings"

// AllStatesLabel is the dropdown value that selects every state.
const AllStatesLabel = "All States"

// Selection is either every state or exactly one named state.
// The zero value selects every state.
type Selection struct {
	state string
	one   bool
}

// AllStates selects every state.
func AllStates() Selection { return Selection{} }

// OneState selects a single state by canonical name.
func OneState(name string) Selection { return Selection{state: name, one: true} }

// ParseSelection maps a dropdown value to a Selection. An empty value or
// AllStatesLabel selects every state; anything else is taken as a state name.
func ParseSelection(v string) Selection {
	v = strings.TrimSpace(v)
	if v == "" || v == AllStatesLabel {
		return AllStates()
	}
	return OneState(v)
}

// IsAll reports whether every state is selected.
func (s Selection) IsAll() bool { return !s.one }

// State returns the selected state name, or "" for AllStates.
func (s Selection) State() string { return s.state }

// String returns the dropdown value for s.
func (s Selection) String() string {
	if !s.one {
		return AllStatesLabel
	}
	return s.state
}

func (s Selection) branch() string {
	if s.one {
		return "one_state"
	}
	return "all_states"
}
