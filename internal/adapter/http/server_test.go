package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	httpadapter "github.com/couchcryptid/brazil-fires-dashboard/internal/adapter/http"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/chart"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/dashboard"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testOptions = httpadapter.Options{
	Addr:        ":0",
	FirstYear:   1998,
	LastYear:    2017,
	DefaultYear: 2000,
	RateLimit:   1000,
	RateBurst:   1000,
	MapboxToken: "pk.test",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDataset(t *testing.T) *domain.Dataset {
	t.Helper()
	fc := &geojson.FeatureCollection{}
	for i, code := range []string{"AC", "AM"} {
		x := float64(-70 + 2*i)
		poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
			{x, -10}, {x + 1, -10}, {x + 1, -9}, {x, -9}, {x, -10},
		}})
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   poly,
			Properties: map[string]interface{}{"sigla": code},
		})
	}
	raw, err := json.Marshal(fc)
	require.NoError(t, err)
	b, err := domain.NewBoundaries(raw, fc)
	require.NoError(t, err)

	incidents := []domain.IncidentRecord{
		{Year: 2000, State: "Acre", StateCode: "AC", Month: time.January, Number: 10},
		{Year: 2000, State: "Acre", StateCode: "AC", Month: time.February, Number: 5},
		{Year: 2015, State: "Acre", StateCode: "AC", Month: time.January, Number: 7},
		{Year: 2000, State: "Amazonas", StateCode: "AM", Month: time.January, Number: 3},
		{Year: 2015, State: "Amazonas", StateCode: "AM", Month: time.March, Number: 6},
	}
	return domain.NewDataset(incidents, domain.DefaultYears(), b)
}

type testEnv struct {
	srv     *httpadapter.Server
	svc     *dashboard.Service
	metrics *observability.Metrics
}

func newTestEnv(t *testing.T, opts httpadapter.Options, loaded bool) testEnv {
	t.Helper()
	m := observability.NewMetricsForTesting()
	svc := dashboard.NewService(chart.MapOptions{AccessToken: opts.MapboxToken}, 16, discardLogger(), m)
	if loaded {
		svc.Install(testDataset(t))
	}
	return testEnv{
		srv:     httpadapter.NewServer(opts, svc, discardLogger(), m),
		svc:     svc,
		metrics: m,
	}
}

func (e testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// --- operational endpoints ---

func TestHealthzReturns200(t *testing.T) {
	rec := newTestEnv(t, testOptions, false).get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, newTestEnv(t, testOptions, false).get(t, "/readyz").Code)
	assert.Equal(t, http.StatusOK, newTestEnv(t, testOptions, true).get(t, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := newTestEnv(t, testOptions, false).get(t, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, testOptions, true)

	rec := env.get(t, "/healthz")
	assert.Len(t, rec.Header().Get(httpadapter.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpadapter.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(httpadapter.RequestIDHeader))
}

// --- figures ---

func TestFigures_NotReady(t *testing.T) {
	env := newTestEnv(t, testOptions, false)
	for _, target := range []string{
		"/",
		"/api/figures?year=2000",
		"/api/states",
		"/api/boundaries",
		"/api/aggregates",
		"/api/export.xlsx",
		"/charts/year.png",
	} {
		t.Run(target, func(t *testing.T) {
			rec := env.get(t, target)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, "5", rec.Header().Get("Retry-After"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, dashboard.ErrNotReady.Error(), body["error"])
		})
	}
}

func TestFigures_AllStates(t *testing.T) {
	env := newTestEnv(t, testOptions, true)

	rec := env.get(t, "/api/figures?year=2010&state=All+States")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var figs dashboard.Figures
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &figs))
	assert.Equal(t, chart.KindChoropleth, figs.Map.Kind)
	assert.Equal(t, chart.KindBar, figs.Year.Kind)
	assert.Equal(t, chart.KindLine, figs.Month.Kind)
	assert.Len(t, figs.Year.Series, 2)
	assert.Equal(t, "pk.test", figs.Map.Map.AccessToken)
}

func TestFigures_OneState(t *testing.T) {
	env := newTestEnv(t, testOptions, true)

	rec := env.get(t, "/api/figures?year=2015&state=Amazonas")
	require.Equal(t, http.StatusOK, rec.Code)

	var figs dashboard.Figures
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &figs))
	require.Len(t, figs.Year.Series, 1)
	assert.Equal(t, chart.SingleStateColor, figs.Year.Series[0].Color)
	require.Len(t, figs.Month.Series, 1)
	require.Len(t, figs.Month.Series[0].Points, 1)
	assert.Equal(t, "March", figs.Month.Series[0].Points[0].X)
	assert.Equal(t, 2, figs.Map.DataPoints())
}

func TestFigures_DefaultsAndErrors(t *testing.T) {
	env := newTestEnv(t, testOptions, true)

	tests := []struct {
		target string
		status int
	}{
		{"/api/figures", http.StatusOK},
		{"/api/figures?state=Acre", http.StatusOK},
		{"/api/figures?year=abc", http.StatusBadRequest},
		{"/api/figures?year=2010.5", http.StatusBadRequest},
		{"/api/figures?year=1900", http.StatusBadRequest},
		{"/api/figures?year=2018", http.StatusBadRequest},
		{"/api/figures?year=2017&state=Atlantis", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := env.get(t, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusBadRequest {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

// --- data endpoints ---

func TestStates(t *testing.T) {
	rec := newTestEnv(t, testOptions, true).get(t, "/api/states")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"all_states": "All States",
		"default": "All States",
		"states": [{"name":"Acre","code":"AC"},{"name":"Amazonas","code":"AM"}]
	}`, rec.Body.String())
}

func TestBoundaries(t *testing.T) {
	env := newTestEnv(t, testOptions, true)
	rec := env.get(t, "/api/boundaries")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	ds, err := env.svc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, ds.Boundaries.Raw(), rec.Body.Bytes())
}

func TestAggregates(t *testing.T) {
	env := newTestEnv(t, testOptions, true)

	rec := env.get(t, "/api/aggregates")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 40, "two states over twenty years")

	rec = env.get(t, "/api/aggregates?year=2000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"year":2000,"state":"Acre","state_code":"AC","number":15},
		{"year":2000,"state":"Amazonas","state_code":"AM","number":3}
	]`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, env.get(t, "/api/aggregates?year=x").Code)
}

func TestExport(t *testing.T) {
	rec := newTestEnv(t, testOptions, true).get(t, "/api/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "brazil-fires.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Incidents")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

// --- charts ---

func TestChartPNG(t *testing.T) {
	env := newTestEnv(t, testOptions, true)

	tests := []struct {
		target  string
		status  int
		outcome string
	}{
		{"/charts/year.png?state=Acre", http.StatusOK, "success"},
		{"/charts/month.png?year=2015&state=Amazonas", http.StatusOK, "success"},
		{"/charts/month.png?year=2001&state=Acre", http.StatusNoContent, "empty"},
		{"/charts/map.png", http.StatusNotFound, ""},
		{"/charts/year.svg", http.StatusNotFound, ""},
		{"/charts/year.png?year=nope", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := env.get(t, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
				assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
			}
		})
	}
}

// --- page ---

func TestIndexPage(t *testing.T) {
	rec := newTestEnv(t, testOptions, true).get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Fires in Brazil</h1>")
	assert.Contains(t, body, `<option value="All States" selected>All States</option>`)
	assert.Contains(t, body, `<option value="Amazonas">Amazonas</option>`)
	assert.Contains(t, body, `min="1998" max="2017" step="1" value="2000"`)
	assert.Contains(t, body, `<option value="2011" label="2011"></option>`)
	assert.Contains(t, body, `"kind":"choropleth"`)
}

func TestUnknownRoute(t *testing.T) {
	rec := newTestEnv(t, testOptions, true).get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- middleware ---

func TestRateLimit(t *testing.T) {
	opts := testOptions
	opts.RateLimit = 0.001
	opts.RateBurst = 2
	env := newTestEnv(t, opts, true)

	assert.Equal(t, http.StatusOK, env.get(t, "/api/states").Code)
	assert.Equal(t, http.StatusOK, env.get(t, "/api/figures").Code)
	rec := env.get(t, "/api/states")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, env.get(t, "/healthz").Code, "operational routes are not limited")
}

func TestShutdownWithoutStart(t *testing.T) {
	env := newTestEnv(t, testOptions, false)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, env.srv.Shutdown(ctx))
}
