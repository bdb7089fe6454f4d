package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// --- mocks ---

type mockLoader struct {
	ds  *domain.Dataset
	err error
}

func (m *mockLoader) Load(_ context.Context) (*domain.Dataset, error) {
	return m.ds, m.err
}

type mockInstaller struct {
	installed *domain.Dataset
}

func (m *mockInstaller) Install(ds *domain.Dataset) {
	m.installed = ds
}

type mockPublisher struct {
	failures int
	calls    int
	rows     []domain.AggregateRecord
}

func (m *mockPublisher) PublishAggregates(_ context.Context, rows []domain.AggregateRecord) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("broker unavailable")
	}
	m.rows = rows
	return nil
}

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Aggregates: []domain.AggregateRecord{
			{Year: 2000, State: "Acre", StateCode: "AC", Number: 5},
			{Year: 2000, State: "Bahia", StateCode: "BA", Number: 12},
		},
	}
}

func newTestPipeline(l DatasetLoader, i Installer, pub AggregatePublisher, m *observability.Metrics) *Pipeline {
	p := New(l, i, pub, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	p.backoff = time.Millisecond
	p.maxBackoff = 2 * time.Millisecond
	return p
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ds := testDataset()
	inst := &mockInstaller{}
	pub := &mockPublisher{}
	m := observability.NewMetricsForTesting()

	err := newTestPipeline(&mockLoader{ds: ds}, inst, pub, m).Run(context.Background())

	require.NoError(t, err)
	assert.Same(t, ds, inst.installed)
	assert.Equal(t, ds.Aggregates, pub.rows)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AggregatesPublished))
}

func TestPipeline_Run_WithoutPublisher(t *testing.T) {
	ds := testDataset()
	inst := &mockInstaller{}

	err := newTestPipeline(&mockLoader{ds: ds}, inst, nil, observability.NewMetricsForTesting()).Run(context.Background())

	require.NoError(t, err)
	assert.Same(t, ds, inst.installed)
}

func TestPipeline_Run_LoadError(t *testing.T) {
	inst := &mockInstaller{}
	pub := &mockPublisher{}
	loadErr := errors.New("open amazon.csv: no such file or directory")

	err := newTestPipeline(&mockLoader{err: loadErr}, inst, pub, observability.NewMetricsForTesting()).Run(context.Background())

	require.ErrorIs(t, err, loadErr)
	assert.Contains(t, err.Error(), "load dataset")
	assert.Nil(t, inst.installed)
	assert.Zero(t, pub.calls)
}

func TestPipeline_Run_PublishRetries(t *testing.T) {
	pub := &mockPublisher{failures: 2}
	m := observability.NewMetricsForTesting()

	err := newTestPipeline(&mockLoader{ds: testDataset()}, &mockInstaller{}, pub, m).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, pub.calls)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AggregatesPublished))
}

func TestPipeline_Run_PublishGivesUp(t *testing.T) {
	inst := &mockInstaller{}
	pub := &mockPublisher{failures: 100}
	m := observability.NewMetricsForTesting()

	err := newTestPipeline(&mockLoader{ds: testDataset()}, inst, pub, m).Run(context.Background())

	require.NoError(t, err, "publish failures are not fatal")
	assert.NotNil(t, inst.installed)
	assert.Equal(t, 5, pub.calls)
	assert.Zero(t, testutil.ToFloat64(m.AggregatesPublished))
}

func TestPipeline_Run_PublishStopsOnCancel(t *testing.T) {
	pub := &mockPublisher{failures: 100}
	p := newTestPipeline(&mockLoader{ds: testDataset()}, &mockInstaller{}, pub, observability.NewMetricsForTesting())
	p.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 1, pub.calls)
}

func TestPipeline_Run_ZeroBackoffRetriesImmediately(t *testing.T) {
	pub := &mockPublisher{failures: 4}
	p := newTestPipeline(&mockLoader{ds: testDataset()}, &mockInstaller{}, pub, observability.NewMetricsForTesting())
	p.backoff = 0

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 5, pub.calls)
	assert.Len(t, pub.rows, 2)
}
