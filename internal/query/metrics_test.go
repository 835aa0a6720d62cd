package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andes-trip-manager/backend/internal/service"
)

func callSeries(t *testing.T) int {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(callsTotal))
	families, err := reg.Gather()
	require.NoError(t, err)
	n := 0
	for _, f := range families {
		n += len(f.GetMetric())
	}
	return n
}

func TestReadResource_UnknownSchemesShareOneSeries(t *testing.T) {
	svc := New(service.Repos{}, nil)
	_, _ = svc.ReadResource(context.Background(), "junk0://x")
	before := callSeries(t)

	for i := 1; i <= 50; i++ {
		_, err := svc.ReadResource(context.Background(), fmt.Sprintf("junk%d://x", i))
		require.Error(t, err)
	}

	assert.Equal(t, before, callSeries(t))
}

func TestResourceLabel(t *testing.T) {
	for _, scheme := range []string{"viagens", "viagem", "paradas", "custos", "dias"} {
		assert.Equal(t, scheme, resourceLabel(scheme))
	}
	assert.Equal(t, "unknown", resourceLabel("hoteis"))
	assert.Equal(t, "unknown", resourceLabel("viagem:/"))
}
