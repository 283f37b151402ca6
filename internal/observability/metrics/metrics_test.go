package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.OrderPromoted()
	m.OrderPromoted()
	m.CallbackRejected(RejectReasonSignature)
	m.CallbackIgnored(IgnoreReasonDuplicate)
	m.NotificationOutcome("customer_email", true)
	m.NotificationOutcome("chat", false)

	require.InDelta(t, 2, testutil.ToFloat64(m.ordersPromoted), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.callbackRejected.WithLabelValues(RejectReasonSignature)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.callbackIgnored.WithLabelValues(IgnoreReasonDuplicate)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.notifications.WithLabelValues("customer_email", OutcomeSent)), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.notifications.WithLabelValues("chat", OutcomeFailed)), 0)
}

func TestHTTPHistogramRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveHTTPRequest("POST", "/payments/callback", 200, 12*time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "garland_http_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
