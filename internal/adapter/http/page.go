package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/dashboard"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// Title and intro copy shown above the controls.
const (
	pageTitle = "Fires in Brazil"
	introText = "Brazil is home to lush rainforests which is vital for keeping our planet healthy. " +
		"Unfortunately deforestation for agriculture and logging purposes has already dwindled away " +
		"20% of the Amazon rainforest. The land is usually cleared by burning which can get out of " +
		"control and develop into wildfires."
	instructions = "Select a state from the dropdown menu and a year from the slider to view the data."
)

// sliderMarks are the labelled slider positions.
var sliderMarks = []int{1998, 2004, 2011, 2017}

type pageData struct {
	Title        string
	Intro        string
	Instructions string
	AllStates    string
	States       []string
	FirstYear    int
	LastYear     int
	DefaultYear  int
	Marks        []int
	MapboxToken  string
	Figures      dashboard.Figures
}

// handleIndex renders the page with the initial figures for the default
// year and every state.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	ds, err := s.svc.Dataset()
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	figs, err := s.svc.Figures(s.opts.DefaultYear, dashboard.AllStates())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	var marks []int
	for _, m := range sliderMarks {
		if m >= s.opts.FirstYear && m <= s.opts.LastYear {
			marks = append(marks, m)
		}
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, pageData{
		Title:        pageTitle,
		Intro:        introText,
		Instructions: instructions,
		AllStates:    dashboard.AllStatesLabel,
		States:       ds.StateNames(),
		FirstYear:    s.opts.FirstYear,
		LastYear:     s.opts.LastYear,
		DefaultYear:  s.opts.DefaultYear,
		Marks:        marks,
		MapboxToken:  s.opts.MapboxToken,
		Figures:      figs,
	}); err != nil {
		s.logger.Error("render page failed", "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // client gone
}
