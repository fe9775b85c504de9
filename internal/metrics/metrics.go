// Package metrics counts query executions and HTTP exchanges with Prometheus
// collectors fed from the event bus.
package metrics

import (
	"context"
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	eventbus "github.com/hanpama/shapeql/internal/eventbus"
	events "github.com/hanpama/shapeql/internal/events"
)

// Outcome labels for query metrics.
const (
	OutcomeOK         = "ok"
	OutcomeTransport  = "transport_error"
	OutcomeProtocol   = "protocol_error"
	OutcomeValidation = "validation_error"
	OutcomeOther      = "error"
)

// Classifier maps an execution error to an outcome label.
type Classifier func(error) string

// Collector holds the registered collectors.
type Collector struct {
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	HTTPRequests  *prometheus.CounterVec

	classify Classifier
}

// New creates the collectors and registers them with reg. classify may be
// nil, in which case every error counts as OutcomeOther.
func New(reg prometheus.Registerer, classify Classifier) (*Collector, error) {
	c := &Collector{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapeql",
			Name:      "queries_total",
			Help:      "Typed query executions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shapeql",
			Name:      "query_duration_seconds",
			Help:      "Typed query execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shapeql",
			Name:      "http_requests_total",
			Help:      "HTTP exchanges with GraphQL endpoints by status code.",
		}, []string{"code"}),
		classify: classify,
	}
	for _, col := range []prometheus.Collector{c.Queries, c.QueryDuration, c.HTTPRequests} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Subscribe feeds the collectors from the global bus.
func (c *Collector) Subscribe() (unsubscribe func()) {
	offQuery := eventbus.Subscribe(func(_ context.Context, e events.QueryFinish) {
		c.Queries.WithLabelValues(e.OperationName, c.outcome(e.Err)).Inc()
		c.QueryDuration.WithLabelValues(e.OperationName).Observe(e.Duration.Seconds())
	})
	offHTTP := eventbus.Subscribe(func(_ context.Context, e events.HTTPClientFinish) {
		code := "none"
		if e.Status != 0 {
			code = strconv.Itoa(e.Status)
		}
		c.HTTPRequests.WithLabelValues(code).Inc()
	})
	return func() {
		offQuery()
		offHTTP()
	}
}

func (c *Collector) outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if c.classify != nil {
		return c.classify(err)
	}
	return OutcomeOther
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return errors.New("metrics: empty textfile path")
	}
	return prometheus.WriteToTextfile(path, g)
}
