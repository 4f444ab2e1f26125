// Package metrics records Prometheus metrics for AttackForge API calls.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "afclient"

// Recorder holds the request collectors. A nil *Recorder records nothing.
type Recorder struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Recorder and registers its collectors with reg.
// Collectors already registered by another client on the same registry are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Total AttackForge API requests by method and HTTP status code.",
	}, []string{"method", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "AttackForge API request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Recorder{requests: requests, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// Observe records one completed request. code 0 means the request never
// produced an HTTP response.
func (r *Recorder) Observe(method string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	r.requests.WithLabelValues(method, label).Inc()
	r.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
