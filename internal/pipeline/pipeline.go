// Package pipeline runs the dashboard's startup sequence: load the dataset,
// hand it to the figure service, and optionally publish the aggregates.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// DatasetLoader builds the dataset from its source files.
type DatasetLoader interface {
	Load(ctx context.Context) (*domain.Dataset, error)
}

// Installer receives the loaded dataset.
type Installer interface {
	Install(ds *domain.Dataset)
}

// AggregatePublisher delivers aggregate rows to a downstream consumer.
type AggregatePublisher interface {
	PublishAggregates(ctx context.Context, rows []domain.AggregateRecord) error
}

// Pipeline orchestrates the load-install-publish sequence.
type Pipeline struct {
	loader      DatasetLoader
	installer   Installer
	publisher   AggregatePublisher
	logger      *slog.Logger
	metrics     *observability.Metrics
	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
}

// New creates a Pipeline. publisher may be nil to skip publishing.
func New(l DatasetLoader, i Installer, pub AggregatePublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:      l,
		installer:   i,
		publisher:   pub,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: 5,
		backoff:     200 * time.Millisecond,
		maxBackoff:  5 * time.Second,
	}
}

// Run loads and installs the dataset, then publishes its aggregates.
// A load failure is returned and must be treated as fatal. Publish failures
// are retried with exponential backoff and only logged once exhausted.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "publish", p.publisher != nil)

	ds, err := p.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	p.installer.Install(ds)

	if p.publisher == nil {
		return nil
	}
	if err := p.publish(ctx, ds.Aggregates); err != nil {
		p.logger.Error("publish aggregates failed", "error", err, "rows", len(ds.Aggregates))
	}
	return nil
}

func (p *Pipeline) publish(ctx context.Context, rows []domain.AggregateRecord) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = p.publisher.PublishAggregates(ctx, rows); err == nil {
			p.metrics.AggregatesPublished.Add(float64(len(rows)))
			p.logger.Info("aggregates published", "rows", len(rows), "attempt", attempt)
			return nil
		}
		if ctx.Err() != nil || attempt == p.maxAttempts {
			break
		}
		p.logger.Warn("publish aggregates failed, retrying", "error", err, "attempt", attempt, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return err
}
