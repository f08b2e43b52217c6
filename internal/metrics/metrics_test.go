package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTick(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordTick("billing", 10*time.Millisecond, nil)
	m.RecordTick("billing", 10*time.Millisecond, errors.New("boom"))
	m.RecordSkippedTick("billing")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SchedulerTicksTotal.WithLabelValues("billing", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SchedulerTicksTotal.WithLabelValues("billing", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SchedulerTicksSkippedTotal.WithLabelValues("billing")))
}

func TestRecordQuery(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordQuery("  UPDATE invoices SET status = $1", time.Millisecond, errors.New("conn reset"))
	m.RecordQuery("", time.Millisecond, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("update")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.DBQueryDuration))
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.RecordCharge(OutcomeDeclined)

	server := httptest.NewServer(Handler(registry))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `antaeus_billing_charges_total{outcome="declined"} 1`))
}
