package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopAcceptsEverything(t *testing.T) {
	r := Noop()
	r.AuthAttempt("success")
	r.TokenValidation("valid")
	r.CacheHit()
	r.CacheMiss()
	r.OperationDuration("validate_token", time.Millisecond)
}

func TestPrometheusRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheus(reg)

	r.AuthAttempt("success")
	r.AuthAttempt("success")
	r.AuthAttempt("expired")
	r.TokenValidation("valid")
	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()

	if got := testutil.ToFloat64(r.attempts.WithLabelValues("success")); got != 2 {
		t.Errorf("auth attempts success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.attempts.WithLabelValues("expired")); got != 1 {
		t.Errorf("auth attempts expired = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.validations.WithLabelValues("valid")); got != 1 {
		t.Errorf("validations valid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.cacheHits); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.cacheMisses); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestPrometheusRecorder_MetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheus(reg)

	r.AuthAttempt("success")
	r.TokenValidation("valid")
	r.CacheHit()
	r.CacheMiss()
	r.OperationDuration("validate_token", 50*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	got := map[string]bool{}
	for _, fam := range families {
		got[fam.GetName()] = true
	}
	for _, name := range []string{
		"keycloak_rbac_auth_attempts_total",
		"keycloak_rbac_token_validations_total",
		"keycloak_rbac_token_cache_hits_total",
		"keycloak_rbac_token_cache_misses_total",
		"keycloak_rbac_keycloak_operation_duration_seconds",
	} {
		if !got[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}

func TestPrometheusRecorder_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheus(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewPrometheus(reg)
}
