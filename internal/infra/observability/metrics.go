package observability

import (
	"strconv"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics of the console's API client.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	networkRetries  prometheus.Counter
	forcedLogouts   prometheus.Counter
	pageLoads       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// client metrics in it. A private registry avoids "duplicate collector"
// panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "helpdesk_api_request_duration_seconds",
				Help:    "Duration of backend API calls by method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_api_requests_total",
				Help: "Backend API calls by method and HTTP status (0 = no response).",
			},
			[]string{"method", "status"},
		),
		networkRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "helpdesk_api_network_retries_total",
				Help: "Requests re-sent after a network failure.",
			},
		),
		forcedLogouts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "helpdesk_forced_logouts_total",
				Help: "Sessions cleared because the backend answered 401.",
			},
		),
		pageLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "helpdesk_page_loads_total",
				Help: "Page loads by page and outcome.",
			},
			[]string{"page", "outcome"},
		),
	}
}

// RecordRequest records one finished API call. status 0 means no response.
func (m *Metrics) RecordRequest(method string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// IncrNetworkRetry increments the network retry counter.
func (m *Metrics) IncrNetworkRetry() {
	m.networkRetries.Inc()
}

// IncrForcedLogout increments the forced logout counter.
func (m *Metrics) IncrForcedLogout() {
	m.forcedLogouts.Inc()
}

// IncrPageLoad counts a page load; outcome is ok, error or superseded.
func (m *Metrics) IncrPageLoad(page, outcome string) {
	m.pageLoads.WithLabelValues(page, outcome).Inc()
}

// PageLoads returns how many loads of page ended with outcome.
func (m *Metrics) PageLoads(page, outcome string) float64 {
	return getCounterValue(m.pageLoads.WithLabelValues(page, outcome))
}

// Snapshot returns cumulative client metrics for GET /v1/metrics/client.
func (m *Metrics) Snapshot() *domain.ClientMetrics {
	var total, failed float64

	ch := make(chan prometheus.Metric, 64)
	go func() {
		m.requestsTotal.Collect(ch)
		close(ch)
	}()
	for metric := range ch {
		pb := &dto.Metric{}
		if err := metric.Write(pb); err != nil || pb.Counter == nil {
			continue
		}
		value := pb.Counter.GetValue()
		total += value
		for _, lp := range pb.Label {
			if lp.GetName() == "status" && isFailureStatus(lp.GetValue()) {
				failed += value
			}
		}
	}

	errorRate := float64(0)
	if total > 0 {
		errorRate = failed / total
	}

	return &domain.ClientMetrics{
		TotalRequests:  int64(total),
		ErrorRequests:  int64(failed),
		NetworkRetries: int64(getCounterValue(m.networkRetries)),
		ForcedLogouts:  int64(getCounterValue(m.forcedLogouts)),
		ErrorRate:      errorRate,
		Period:         "all_time",
	}
}

func isFailureStatus(status string) bool {
	code, err := strconv.Atoi(status)
	if err != nil {
		return false
	}
	return code == 0 || code >= 400
}

// getCounterValue extracts the current float64 value from a counter.
func getCounterValue(counter prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
