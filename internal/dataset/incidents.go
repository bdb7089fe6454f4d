package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// Source column names in the incident CSV. The date column is ignored.
const (
	colYear   = "year"
	colState  = "state"
	colMonth  = "month"
	colNumber = "number"
)

// normalizeStats counts values that fell outside the translation tables.
type normalizeStats struct {
	UnmappedMonths int
	UnmappedStates int
}

// readIncidents parses the incident CSV and translates months and states to
// their canonical forms. State codes are not attached here.
func readIncidents(r io.Reader) ([]domain.IncidentRecord, normalizeStats, error) {
	var stats normalizeStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, stats, errors.New("empty incident file")
		}
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, colYear, colState, colMonth, colNumber)
	if err != nil {
		return nil, stats, err
	}

	var records []domain.IncidentRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}
		if len(row) < len(header) {
			return nil, stats, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(row))
		}

		year, err := strconv.Atoi(strings.TrimSpace(row[cols[colYear]]))
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: parse year: %w", line, err)
		}
		number, err := strconv.ParseFloat(strings.TrimSpace(row[cols[colNumber]]), 64)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: parse number: %w", line, err)
		}

		month, ok := domain.CanonicalMonth(row[cols[colMonth]])
		if !ok {
			stats.UnmappedMonths++
		}
		state, ok := domain.CanonicalState(row[cols[colState]])
		if !ok {
			stats.UnmappedStates++
		}

		records = append(records, domain.IncidentRecord{
			Year:   year,
			State:  state,
			Month:  month,
			Number: number,
		})
	}
	return records, stats, nil
}

// readStateCodes parses the state code lookup, keeping only the subdivision
// and name columns.
func readStateCodes(r io.Reader) ([]domain.StateCode, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty state code file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := indexColumns(header, "subdivision", "name")
	if err != nil {
		return nil, err
	}

	var codes []domain.StateCode
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) < len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(row))
		}
		codes = append(codes, domain.StateCode{
			Name:        strings.TrimSpace(row[cols["name"]]),
			Subdivision: strings.TrimSpace(row[cols["subdivision"]]),
		})
	}
	return codes, nil
}

// indexColumns maps each required column name to its position in header.
// Matching is case-insensitive and ignores a UTF-8 byte order mark.
func indexColumns(header []string, required ...string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}
