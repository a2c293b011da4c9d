// Package metrics defines the observability sink for authentication
// operations. Recording is fire-and-forget: implementations must never
// block or fail the caller. The zero configuration is a no-op recorder so
// the rest of the module works unchanged when metrics are disabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives authentication events. Status labels are
// success|expired|invalid|error for attempts and valid|expired|invalid|error
// for validations; operations are validate_token|login.
type Recorder interface {
	AuthAttempt(status string)
	TokenValidation(status string)
	CacheHit()
	CacheMiss()
	OperationDuration(operation string, d time.Duration)
}

type noop struct{}

func (noop) AuthAttempt(string)                      {}
func (noop) TokenValidation(string)                  {}
func (noop) CacheHit()                               {}
func (noop) CacheMiss()                              {}
func (noop) OperationDuration(string, time.Duration) {}

// Noop returns a recorder that discards every event.
func Noop() Recorder { return noop{} }

var durationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0}

// PrometheusRecorder implements Recorder with Prometheus counters and a
// duration histogram.
type PrometheusRecorder struct {
	attempts    *prometheus.CounterVec
	validations *prometheus.CounterVec
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	durations   *prometheus.HistogramVec
}

// NewPrometheus registers the metric set on reg and returns the recorder.
// Use prometheus.DefaultRegisterer for the process-wide registry.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keycloak_rbac_auth_attempts_total",
			Help: "Total number of authentication attempts.",
		}, []string{"status"}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keycloak_rbac_token_validations_total",
			Help: "Total number of token validation results.",
		}, []string{"status"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "keycloak_rbac_token_cache_hits_total",
			Help: "Total number of token cache hits.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "keycloak_rbac_token_cache_misses_total",
			Help: "Total number of token cache misses.",
		}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keycloak_rbac_keycloak_operation_duration_seconds",
			Help:    "Duration of Keycloak operations in seconds.",
			Buckets: durationBuckets,
		}, []string{"operation"}),
	}
}

func (r *PrometheusRecorder) AuthAttempt(status string) {
	r.attempts.WithLabelValues(status).Inc()
}

func (r *PrometheusRecorder) TokenValidation(status string) {
	r.validations.WithLabelValues(status).Inc()
}

func (r *PrometheusRecorder) CacheHit()  { r.cacheHits.Inc() }
func (r *PrometheusRecorder) CacheMiss() { r.cacheMisses.Inc() }

func (r *PrometheusRecorder) OperationDuration(operation string, d time.Duration) {
	r.durations.WithLabelValues(operation).Observe(d.Seconds())
}

// Compile-time interface checks
var (
	_ Recorder = noop{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
