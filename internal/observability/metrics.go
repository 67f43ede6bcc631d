package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for HTTP, LLM calls, and background tasks.
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total LLM chat calls by pass and outcome",
		},
		[]string{"pass", "outcome"},
	)
	LLMCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM chat call duration",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		},
		[]string{"pass"},
	)
	TasksStartedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_started_total",
			Help: "Background tasks started by kind",
		},
		[]string{"kind"},
	)
	TasksRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tasks_running",
			Help: "Background tasks currently running",
		},
		[]string{"kind"},
	)
	TasksDoneTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_done_total",
			Help: "Background tasks finished by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	MatchPercentage = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_overall_percentage",
			Help:    "Distribution of LLM-asserted overall match percentages",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

// InitMetrics registers all metrics once per process.
func InitMetrics() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LLMCallsTotal,
		LLMCallDuration,
		TasksStartedTotal,
		TasksRunning,
		TasksDoneTotal,
		MatchPercentage,
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware records request counts and latency.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// StartTask marks a background task as started.
func StartTask(kind string) {
	TasksStartedTotal.WithLabelValues(kind).Inc()
	TasksRunning.WithLabelValues(kind).Inc()
}

// FinishTask marks a background task as finished with the given outcome.
func FinishTask(kind, outcome string) {
	TasksRunning.WithLabelValues(kind).Dec()
	TasksDoneTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveLLMCall records one chat call.
func ObserveLLMCall(pass, outcome string, d time.Duration) {
	LLMCallsTotal.WithLabelValues(pass, outcome).Inc()
	LLMCallDuration.WithLabelValues(pass).Observe(d.Seconds())
}
