// Package dataset reads the incident, state code, and boundary files from
// disk and assembles the read-only domain.Dataset served by the dashboard.
package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// Supported incident file encodings.
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf8"
)

// Files locates the three input files.
type Files struct {
	Incidents  string
	StateCodes string
	Boundaries string
	// Encoding of the incident CSV: EncodingLatin1 (default) or EncodingUTF8.
	Encoding string
}

// Loader builds a Dataset from Files. It implements dashboard.DatasetLoader.
type Loader struct {
	files   Files
	years   []int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader that aggregates over years.
func NewLoader(files Files, years []int, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		files:   files,
		years:   years,
		logger:  logger,
		metrics: metrics,
	}
}

// Load reads all three files concurrently, normalises and joins the incident
// table, and aggregates it. Any read or parse failure aborts the load.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()

	var (
		incidents  []domain.IncidentRecord
		stats      normalizeStats
		codes      []domain.StateCode
		boundaries *domain.Boundaries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incidents, err = withFile(gctx, l.files.Incidents, func(r io.Reader) ([]domain.IncidentRecord, error) {
			recs, s, err := readIncidents(decodeReader(r, l.files.Encoding))
			stats = s
			return recs, err
		})
		if err != nil {
			return fmt.Errorf("load incidents: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		codes, err = withFile(gctx, l.files.StateCodes, readStateCodes)
		if err != nil {
			return fmt.Errorf("load state codes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		boundaries, err = withFile(gctx, l.files.Boundaries, readBoundaries)
		if err != nil {
			return fmt.Errorf("load boundaries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	incidents = domain.JoinStateCodes(incidents, codes)
	ds := domain.NewDataset(incidents, l.years, boundaries)

	missing := domain.MissingCodes(ds.StateNames(), codes)
	unmappedCodes := 0
	for _, r := range incidents {
		if r.State != "" && r.StateCode == "" {
			unmappedCodes++
		}
	}

	l.metrics.IncidentRows.Set(float64(len(ds.Incidents)))
	l.metrics.AggregateRows.Set(float64(len(ds.Aggregates)))
	l.metrics.UnmappedValues.WithLabelValues("month").Add(float64(stats.UnmappedMonths))
	l.metrics.UnmappedValues.WithLabelValues("state").Add(float64(stats.UnmappedStates))
	l.metrics.UnmappedValues.WithLabelValues("state_code").Add(float64(unmappedCodes))
	l.metrics.LoadDuration.Set(time.Since(start).Seconds())

	l.logger.Info("dataset loaded",
		"incidents", len(ds.Incidents),
		"aggregates", len(ds.Aggregates),
		"states", len(ds.States),
		"features", len(boundaries.Codes()),
		"unmapped_months", stats.UnmappedMonths,
		"unmapped_states", stats.UnmappedStates,
		"duration", time.Since(start),
	)
	if len(missing) > 0 {
		l.logger.Warn("states without a subdivision code", "states", missing)
	}

	return ds, nil
}

// withFile opens path, hands it to parse, and closes it.
func withFile[T any](ctx context.Context, path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	return parse(f)
}

// decodeReader transcodes r to UTF-8 according to encoding.
func decodeReader(r io.Reader, encoding string) io.Reader {
	if encoding == EncodingUTF8 {
		return r
	}
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}
