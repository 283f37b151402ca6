package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Low-cardinality reject and ignore reasons for callback counters.
const (
	RejectReasonSignature = "signature"
	RejectReasonPayload   = "payload"
	RejectReasonCommit    = "commit"

	IgnoreReasonDuplicate     = "duplicate"
	IgnoreReasonDraftMissing  = "draft_missing"
	IgnoreReasonFailedPayment = "failed_payment"
)

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Metrics captures promotion pipeline health signals. The promoted and
// rejected counters are the ones worth alerting on; ignored callbacks are
// routine gateway retries.
type Metrics struct {
	ordersPromoted   prometheus.Counter
	callbackRejected *prometheus.CounterVec
	callbackIgnored  *prometheus.CounterVec
	notifications    *prometheus.CounterVec
	pollThrottled    prometheus.Counter
	httpDuration     *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		ordersPromoted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garland_orders_promoted_total",
			Help: "Draft sessions promoted to paid orders.",
		}),
		callbackRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garland_payment_callback_rejected_total",
			Help: "Gateway callbacks rejected by low-cardinality reason.",
		}, []string{"reason"}),
		callbackIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garland_payment_callback_ignored_total",
			Help: "Gateway callbacks acknowledged without promotion.",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garland_notifications_total",
			Help: "Notification attempts by channel and outcome.",
		}, []string{"channel", "outcome"}),
		pollThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "garland_order_poll_throttled_total",
			Help: "Order tracking polls rejected by the rate limiter.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "garland_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
	}

	for _, c := range []prometheus.Collector{
		m.ordersPromoted,
		m.callbackRejected,
		m.callbackIgnored,
		m.notifications,
		m.pollThrottled,
		m.httpDuration,
	} {
		registerer.MustRegister(c)
	}

	return m
}

func (m *Metrics) OrderPromoted() {
	m.ordersPromoted.Inc()
}

func (m *Metrics) CallbackRejected(reason string) {
	m.callbackRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) CallbackIgnored(reason string) {
	m.callbackIgnored.WithLabelValues(reason).Inc()
}

func (m *Metrics) NotificationOutcome(channel string, sent bool) {
	outcome := OutcomeSent
	if !sent {
		outcome = OutcomeFailed
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) PollThrottled() {
	m.pollThrottled.Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
