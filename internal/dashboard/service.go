package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/chart"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// ErrNotReady is returned until a dataset has been installed.
var ErrNotReady = errors.New("dataset not loaded")

// Service serves figures for the installed dataset. It starts empty and
// becomes ready once Install is called.
type Service struct {
	opts      chart.MapOptions
	cacheSize int
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	state     atomic.Pointer[serviceState]
}

type serviceState struct {
	ds      *domain.Dataset
	updater Updater
}

// NewService creates a Service whose figures are cached in an LRU of cacheSize entries.
func NewService(opts chart.MapOptions, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		opts:      opts,
		cacheSize: cacheSize,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
	}
}

// Install makes ds the dataset served from now on.
func (s *Service) Install(ds *domain.Dataset) {
	ctrl := NewController(ds, s.opts)
	s.state.Store(&serviceState{
		ds:      ds,
		updater: NewCachedController(ctrl, s.cacheSize, s.metrics),
	})
	s.metrics.DatasetReady.Set(1)
	s.logger.Info("dataset installed",
		"states", len(ds.States),
		"years", len(ds.Years),
		"loaded_at", ds.LoadedAt,
	)
}

// CheckReadiness returns nil once a dataset is installed.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.state.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// Dataset returns the installed dataset.
func (s *Service) Dataset() (*domain.Dataset, error) {
	st := s.state.Load()
	if st == nil {
		return nil, ErrNotReady
	}
	return st.ds, nil
}

// Figures answers a control change.
func (s *Service) Figures(year int, sel Selection) (Figures, error) {
	st := s.state.Load()
	if st == nil {
		return Figures{}, ErrNotReady
	}

	start := s.clock.Now()
	figs := st.updater.Update(year, sel)
	s.metrics.FigureRequests.WithLabelValues(sel.branch()).Inc()
	s.metrics.UpdateDuration.Observe(s.clock.Since(start).Seconds())
	return figs, nil
}
