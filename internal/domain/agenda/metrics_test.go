package agenda

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-appointments/internal/domain/appointments"
)

func TestMetrics_FetchAndMutationOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	dir := &fakeDirectory{items: seed()}
	o := newTestOrchestrator(dir, Options{Metrics: m})

	require.NoError(t, o.Reload(context.Background()))
	dir.listErr = appointments.ErrTransport
	require.Error(t, o.Reload(context.Background()))
	dir.listErr = nil

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("range", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues("range", "error")))

	require.ErrorIs(t, o.Confirm(context.Background(), 0), appointments.ErrNotPersisted)
	require.NoError(t, o.Confirm(context.Background(), 1))
	require.ErrorIs(t, o.Cancel(context.Background(), 2, appointments.Answer(false)), appointments.ErrCancelDeclined)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationTotal.WithLabelValues("confirm", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationTotal.WithLabelValues("confirm", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutationTotal.WithLabelValues("cancel", "rejected")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("range", "ok")
		m.ObserveStale()
		m.ObserveMutation("confirm", "ok")
	})
}
