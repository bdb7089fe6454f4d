// Package excel exports the loaded tables as an xlsx workbook.
package excel

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// Sheet names in the exported workbook.
const (
	IncidentsSheet  = "Incidents"
	AggregatesSheet = "Aggregates"
)

var (
	incidentHeaders  = []any{"Year", "State", "State Code", "Month", "Number"}
	aggregateHeaders = []any{"Year", "State", "State Code", "Number"}
)

// WriteWorkbook writes the incident and aggregate tables of ds to w, one
// sheet each. Missing values are left blank.
func WriteWorkbook(w io.Writer, ds *domain.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Brazil Fires",
		Subject: "Reported fires per state, year, and month",
		Creator: "brazil-fires-dashboard",
		Created: ds.LoadedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("set doc props: %w", err)
	}

	if err := f.SetSheetName("Sheet1", IncidentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(AggregatesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	incidents := make([][]any, len(ds.Incidents))
	for i, r := range ds.Incidents {
		incidents[i] = []any{r.Year, r.State, r.StateCode, r.MonthName(), r.Number}
	}
	if err := writeSheet(f, IncidentsSheet, incidentHeaders, incidents); err != nil {
		return err
	}

	aggregates := make([][]any, len(ds.Aggregates))
	for i, r := range ds.Aggregates {
		aggregates[i] = []any{r.Year, r.State, r.StateCode, r.Number}
	}
	if err := writeSheet(f, AggregatesSheet, aggregateHeaders, aggregates); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []any, rows [][]any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open %s sheet: %w", sheet, err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush %s sheet: %w", sheet, err)
	}
	return nil
}
