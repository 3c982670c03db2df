// Package metrics builds the application-level Prometheus collectors and
// registers them on the default registry, which the router exposes at
// /metrics.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRateLimitExceededTotal counts HTTP requests rejected by the rate limiter.
func NewRateLimitExceededTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	}))
}

// NewGatewayRetriesTotal counts retry attempts made against upstream services.
func NewGatewayRetriesTotal() prometheus.Counter {
	return register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts performed by gateways",
	}))
}

// NewAssignmentsTotal counts assignment attempts, labeled by mode
// (auto/manual) and outcome.
func NewAssignmentsTotal() *prometheus.CounterVec {
	return register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Total number of delivery assignment attempts",
	}, []string{"mode", "outcome"}))
}

// NewOutboxDispatchedTotal counts relayed outbox tasks, labeled by kind
// and outcome.
func NewOutboxDispatchedTotal() *prometheus.CounterVec {
	return register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_dispatched_total",
		Help: "Total number of outbox side effects dispatched",
	}, []string{"kind", "outcome"}))
}

// register places the collector on the default registry. A collector that
// is already registered, which happens when more than one container is
// built in the same process, resolves to the existing instance.
func register[C prometheus.Collector](c C) C {
	err := prometheus.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector.(C)
	}
	panic(err)
}
