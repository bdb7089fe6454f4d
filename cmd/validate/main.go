// Command validate loads the dashboard's input files and checks their
// integrity: name translation coverage, state code join coverage, boundary
// coverage, and aggregate consistency. It exits 1 when any check fails.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/dataset"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing the input files")
	incidents := flag.String("incidents", "amazon.csv", "incident CSV, relative to -data-dir")
	stateCodes := flag.String("state-codes", "brazil-state-codes.csv", "state code CSV, relative to -data-dir")
	boundaries := flag.String("boundaries", "brazil-states.geojson", "state boundary GeoJSON, relative to -data-dir")
	encoding := flag.String("encoding", dataset.EncodingLatin1, "incident CSV encoding (latin1 or utf8)")
	firstYear := flag.Int("first-year", domain.FirstYear, "first aggregated year")
	lastYear := flag.Int("last-year", domain.LastYear, "last aggregated year")
	flag.Parse()

	files := dataset.Files{
		Incidents:  filepath.Join(*dataDir, *incidents),
		StateCodes: filepath.Join(*dataDir, *stateCodes),
		Boundaries: filepath.Join(*dataDir, *boundaries),
		Encoding:   *encoding,
	}
	if code := run(files, domain.YearRange(*firstYear, *lastYear)); code != 0 {
		os.Exit(code)
	}
}

func run(files dataset.Files, years []int) int {
	fmt.Println("=== Brazil Fires Data Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ds, err := dataset.NewLoader(files, years, logger, observability.NewMetrics()).Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := validate(ds)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d incidents, %d aggregates, %d states, %d boundary features\n",
		len(ds.Incidents), len(ds.Aggregates), len(ds.States), len(ds.Boundaries.Codes()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validate(ds *domain.Dataset) []*phase {
	return []*phase{
		validateTranslations(ds),
		validateJoinCoverage(ds),
		validateBoundaryCoverage(ds),
		validateAggregates(ds),
	}
}

// validateTranslations reports rows whose month or state fell outside the
// translation tables.
func validateTranslations(ds *domain.Dataset) *phase {
	p := &phase{name: "Month and state translation"}
	for i, r := range ds.Incidents {
		if r.MonthName() == "" {
			p.errorf("row %d (%d, %s): month not translated", i+1, r.Year, r.State)
		}
		if r.State == "" {
			p.errorf("row %d (%d): state not translated", i+1, r.Year)
		}
	}
	return p
}

// validateJoinCoverage checks that every canonical state appears in the data
// and received a subdivision code.
func validateJoinCoverage(ds *domain.Dataset) *phase {
	p := &phase{name: "State code join coverage"}
	codes := make(map[string]string, len(ds.States))
	for _, s := range ds.States {
		codes[s.Name] = s.Code
	}
	for _, name := range domain.CanonicalStates() {
		code, ok := codes[name]
		switch {
		case !ok:
			p.errorf("%s: no incidents", name)
		case code == "":
			p.errorf("%s: no subdivision code", name)
		}
	}
	return p
}

// validateBoundaryCoverage checks that every state code has a polygon.
func validateBoundaryCoverage(ds *domain.Dataset) *phase {
	p := &phase{name: "Boundary coverage"}
	for _, s := range ds.States {
		if s.Code != "" && !ds.Boundaries.Has(s.Code) {
			p.errorf("%s (%s): no boundary feature", s.Name, s.Code)
		}
	}
	return p
}

// validateAggregates recomputes per-(year, state) sums from the incident
// table and compares them with the aggregate table.
func validateAggregates(ds *domain.Dataset) *phase {
	p := &phase{name: "Aggregate consistency"}

	type key struct {
		year  int
		state string
	}
	sums := make(map[key]float64)
	for _, r := range ds.Incidents {
		if r.State != "" {
			sums[key{r.Year, r.State}] += r.Number
		}
	}

	perYear := make(map[int]int)
	for _, a := range ds.Aggregates {
		perYear[a.Year]++
		want := sums[key{a.Year, a.State}]
		if math.Abs(want-a.Number) > 1e-6 {
			p.errorf("%d %s: aggregate %.3f, incidents sum to %.3f", a.Year, a.State, a.Number, want)
		}
	}
	for _, y := range ds.Years {
		if perYear[y] != len(ds.States) {
			p.errorf("%d: %d aggregate rows, want %d", y, perYear[y], len(ds.States))
		}
	}
	return p
}
