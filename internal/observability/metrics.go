package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"hivecore/pkg/domain"
	"hivecore/pkg/entityset"
)

// Outcome labels recorded for service operations.
const (
	OutcomeSuccess         = "success"
	OutcomeNotFound        = "not_found"
	OutcomeConflict        = "conflict"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeCancelled       = "cancelled"
	OutcomeError           = "error"
)

// Outcome classifies err into one of the Outcome* labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, entityset.ErrInvalidArgument):
		return OutcomeInvalidArgument
	case errors.Is(err, entityset.ErrOperationCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}

// Metrics holds the service operation collectors. A nil *Metrics records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hivecore",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Domain service operations by entity, operation and outcome.",
		}, []string{"entity", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hivecore",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency of domain service operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"entity", "operation"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.operations, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Observe records one finished operation.
func (m *Metrics) Observe(entity domain.EntityType, operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(entity), operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(string(entity), operation).Observe(elapsed.Seconds())
}
