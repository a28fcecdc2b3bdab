package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/gnsstime/internal/domain/entities"
	"github.com/ersonp/gnsstime/internal/domain/ports"
)

var _ ports.ConversionMetrics = (*Metrics)(nil)

func TestMetrics_ObserveConversion(t *testing.T) {
	m := NewMetrics()

	m.ObserveConversion(entities.UTC, entities.GPST, 1, false, time.Millisecond)
	m.ObserveConversion(entities.UTC, entities.GPST, 2, true, time.Millisecond)
	m.ObserveConversion(entities.UTC, entities.GPST, 1, false, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("UTC", "GPST", "false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("UTC", "GPST", "true")))

	expected := `
# HELP gnsstime_conversion_hops Number of corrections applied per conversion
# TYPE gnsstime_conversion_hops histogram
gnsstime_conversion_hops_bucket{le="0"} 0
gnsstime_conversion_hops_bucket{le="1"} 2
gnsstime_conversion_hops_bucket{le="2"} 3
gnsstime_conversion_hops_bucket{le="3"} 3
gnsstime_conversion_hops_bucket{le="4"} 3
gnsstime_conversion_hops_bucket{le="6"} 3
gnsstime_conversion_hops_bucket{le="9"} 3
gnsstime_conversion_hops_bucket{le="+Inf"} 3
gnsstime_conversion_hops_sum 4
gnsstime_conversion_hops_count 3
`
	require.NoError(t, testutil.CollectAndCompare(m.ConversionHops, strings.NewReader(expected)))
}

func TestMetrics_ErrorsAndCorrections(t *testing.T) {
	m := NewMetrics()

	m.ObserveConversionError(entities.BDT, entities.GPST, "no_path")
	m.SetCorrections(7)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConversionErrors.WithLabelValues("BDT", "GPST", "no_path")))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.Corrections))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.SetCorrections(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gnsstime_corrections 3")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_ServeAndShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(listener.Addr().String(), NewMetrics(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
