package observability

import (
	"fmt"
	"time"

	"github.com/aretw0/schemata/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for ValidationsTotal.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics groups the collectors updated by validators.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	ValidationsTotal   *prometheus.CounterVec
	ViolationsTotal    *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schemata_cache_hits_total",
			Help: "Validation cache lookups answered from the cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schemata_cache_misses_total",
			Help: "Validation cache lookups that required validation work",
		}),
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemata_validations_total",
				Help: "Top-level validation runs by engine and outcome",
			},
			[]string{"engine", "outcome"},
		),
		ViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemata_violations_total",
				Help: "Reported violations by error code",
			},
			[]string{"code"},
		),
		ValidationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schemata_validation_duration_seconds",
				Help:    "Duration of top-level validation runs",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"engine"},
		),
	}

	for _, c := range []prometheus.Collector{m.CacheHits, m.CacheMisses, m.ValidationsTotal, m.ViolationsTotal, m.ValidationDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// CacheLookup records one cache lookup.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveRun records one top-level validation run.
func (m *Metrics) ObserveRun(engine string, started time.Time, errs domain.Errors, err error) {
	if m == nil {
		return
	}

	m.ValidationDuration.WithLabelValues(engine).Observe(time.Since(started).Seconds())

	switch {
	case err != nil:
		m.ValidationsTotal.WithLabelValues(engine, OutcomeError).Inc()
	case len(errs) > 0:
		m.ValidationsTotal.WithLabelValues(engine, OutcomeInvalid).Inc()
	default:
		m.ValidationsTotal.WithLabelValues(engine, OutcomeValid).Inc()
	}

	for _, e := range errs {
		m.ViolationsTotal.WithLabelValues(e.Code.String()).Inc()
	}
}
