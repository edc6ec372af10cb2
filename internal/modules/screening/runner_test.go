package screening

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/screener/internal/domain"
)

// mockLoader implements Loader for testing
type mockLoader struct {
	universe domain.Universe
	err      error
	calls    int
}

func (m *mockLoader) Load(ctx context.Context) (domain.Universe, error) {
	m.calls++
	return m.universe, m.err
}

func (m *mockLoader) Name() string { return "mock" }

// mockSink implements Sink for testing
type mockSink struct {
	name      string
	published []*Report
	err       error
}

func (m *mockSink) Publish(ctx context.Context, r *Report) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, r)
	return nil
}

func (m *mockSink) Name() string { return m.name }

func TestRunner_RunOnce_PublishesAndStores(t *testing.T) {
	loader := &mockLoader{universe: fiveInstrumentUniverse()}
	failing := &mockSink{name: "broken", err: errors.New("clipboard unavailable")}
	sink := &mockSink{name: "memory"}
	store := NewReportStore()
	reg := prometheus.NewRegistry()
	metrics := NewRunMetrics(reg)

	runner := NewRunner(loader, newTestScreener(t, 2), []Sink{failing, sink}, store, metrics, zerolog.Nop())

	report, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Same(t, report, store.Latest())
	require.Len(t, sink.published, 1, "a failing sink must not stop the others")
	assert.Same(t, report, sink.published[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.kept))
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.universe))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.eliminated.WithLabelValues(string(ReasonSuspended))))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.eliminated.WithLabelValues(string(ReasonInvalidData))))
}

func TestRunner_RunOnce_LoaderError(t *testing.T) {
	loader := &mockLoader{err: errors.New("directory missing")}
	store := NewReportStore()
	metrics := NewRunMetrics(prometheus.NewRegistry())

	runner := NewRunner(loader, newTestScreener(t, 1), nil, store, metrics, zerolog.Nop())

	report, err := runner.RunOnce(context.Background())
	assert.Nil(t, report)
	assert.ErrorContains(t, err, "directory missing")
	assert.Nil(t, store.Latest())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("failure")))
}

func TestRunner_Run_AsJob(t *testing.T) {
	loader := &mockLoader{universe: fiveInstrumentUniverse()}
	runner := NewRunner(loader, newTestScreener(t, 1), nil, nil, nil, zerolog.Nop())

	require.NoError(t, runner.Run(context.Background()))
	require.NoError(t, runner.Run(context.Background()))

	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, "momentum_screen", runner.Name())
}

func TestReportStore(t *testing.T) {
	store := NewReportStore()
	assert.Nil(t, store.Latest())

	r := &Report{RunID: "abc"}
	store.Set(r)
	assert.Same(t, r, store.Latest())
}
