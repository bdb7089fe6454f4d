package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/adapter/excel"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/chart"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/dashboard"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
)

// PNG chart size in pixels.
const (
	chartWidth  = 960
	chartHeight = 480
)

type statesResponse struct {
	AllStates string            `json:"all_states"`
	Default   string            `json:"default"`
	States    []domain.StateRef `json:"states"`
}

func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	year, sel, err := s.parseControls(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	figs, err := s.svc.Figures(year, sel)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, figs)
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	ds, err := s.svc.Dataset()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, statesResponse{
		AllStates: dashboard.AllStatesLabel,
		Default:   dashboard.AllStatesLabel,
		States:    ds.States,
	})
}

func (s *Server) handleBoundaries(w http.ResponseWriter, _ *http.Request) {
	ds, err := s.svc.Dataset()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(ds.Boundaries.Raw()) //nolint:errcheck // client gone
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Dataset()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if r.URL.Query().Get("year") == "" {
		sharedobs.WriteJSON(w, http.StatusOK, ds.Aggregates)
		return
	}
	year, err := s.parseYear(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows := ds.AggregatesForYear(year)
	if rows == nil {
		rows = []domain.AggregateRecord{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	ds, err := s.svc.Dataset()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteWorkbook(&buf, ds); err != nil {
		s.logger.Error("export workbook failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="brazil-fires.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client gone
}

// handleChartPNG renders the year or month chart for the given controls.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok || (name != "year" && name != "month") {
		writeError(w, http.StatusNotFound, "unknown chart")
		return
	}
	year, sel, err := s.parseControls(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	figs, err := s.svc.Figures(year, sel)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	spec := figs.Year
	if name == "month" {
		spec = figs.Month
	}
	var buf bytes.Buffer
	err = chart.RenderPNG(&buf, spec, chartWidth, chartHeight)
	switch {
	case errors.Is(err, chart.ErrNoData):
		s.metrics.ChartRenders.WithLabelValues(name, "empty").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.metrics.ChartRenders.WithLabelValues(name, "error").Inc()
		s.logger.Error("render chart failed", "chart", name, "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	s.metrics.ChartRenders.WithLabelValues(name, "success").Inc()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client gone
}

// parseControls reads the year and state query parameters. A missing year
// falls back to the default slider position.
func (s *Server) parseControls(r *http.Request) (int, dashboard.Selection, error) {
	year, err := s.parseYear(r)
	if err != nil {
		return 0, dashboard.Selection{}, err
	}
	return year, dashboard.ParseSelection(r.URL.Query().Get("state")), nil
}

func (s *Server) parseYear(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("year"))
	if v == "" {
		return s.opts.DefaultYear, nil
	}
	year, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	if year < s.opts.FirstYear || year > s.opts.LastYear {
		return 0, fmt.Errorf("year %d outside %d-%d", year, s.opts.FirstYear, s.opts.LastYear)
	}
	return year, nil
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrNotReady) {
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
