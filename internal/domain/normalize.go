package domain

import (
	"strings"
	"time"
)

// portugueseMonths translates source month names to calendar months.
var portugueseMonths = map[string]time.Month{
	"Janeiro":   time.January,
	"Fevereiro": time.February,
	"Março":     time.March,
	"Abril":     time.April,
	"Maio":      time.May,
	"Junho":     time.June,
	"Julho":     time.July,
	"Agosto":    time.August,
	"Setembro":  time.September,
	"Outubro":   time.October,
	"Novembro":  time.November,
	"Dezembro":  time.December,
}

// sourceStates translates the dataset's state spellings to the accented names
// used by the state code lookup.
var sourceStates = map[string]string{
	"Acre":             "Acre",
	"Alagoas":          "Alagoas",
	"Amazonas":         "Amazonas",
	"Amapa":            "Amapá",
	"Bahia":            "Bahia",
	"Ceara":            "Ceará",
	"Distrito Federal": "Distrito Federal",
	"Espirito Santo":   "Espírito Santo",
	"Goias":            "Goiás",
	"Maranhao":         "Maranhão",
	"Mato Grosso":      "Mato Grosso",
	"Minas Gerais":     "Minas Gerais",
	"Pará":             "Pará",
	"Paraiba":          "Paraíba",
	"Pernambuco":       "Pernambuco",
	"Piau":             "Piauí",
	"Rio":              "Rio de Janeiro",
	"Rondonia":         "Rondônia",
	"Roraima":          "Roraima",
	"Santa Catarina":   "Santa Catarina",
	"Sao Paulo":        "São Paulo",
	"Sergipe":          "Sergipe",
	"Tocantins":        "Tocantins",
}

// CanonicalMonth maps a Portuguese month name to its calendar month.
// Returns false (and the zero month) for anything outside the lookup.
func CanonicalMonth(name string) (time.Month, bool) {
	m, ok := portugueseMonths[strings.TrimSpace(name)]
	return m, ok
}

// CanonicalState maps a source state spelling to its accented canonical name.
// Returns false (and "") for anything outside the lookup.
func CanonicalState(name string) (string, bool) {
	s, ok := sourceStates[strings.TrimSpace(name)]
	return s, ok
}

// CanonicalStates returns the canonical names reachable through the state
// lookup, deduplicated and in no particular order.
func CanonicalStates() []string {
	seen := make(map[string]struct{}, len(sourceStates))
	out := make([]string, 0, len(sourceStates))
	for _, s := range sourceStates {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// JoinStateCodes attaches subdivision codes to incidents by canonical state
// name. It is a left join: records whose state has no match keep an empty
// code. When the lookup lists a name twice, the first row wins.
func JoinStateCodes(incidents []IncidentRecord, codes []StateCode) []IncidentRecord {
	byName := make(map[string]string, len(codes))
	for _, c := range codes {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c.Subdivision
		}
	}

	out := make([]IncidentRecord, len(incidents))
	for i, r := range incidents {
		if r.State != "" {
			r.StateCode = byName[r.State]
		} else {
			r.StateCode = ""
		}
		out[i] = r
	}
	return out
}

// MissingCodes lists the canonical states with no entry in codes.
// An empty result means the lookup covers every state.
func MissingCodes(states []string, codes []StateCode) []string {
	known := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		known[c.Name] = struct{}{}
	}
	var missing []string
	for _, s := range states {
		if _, ok := known[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
