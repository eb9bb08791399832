// Package metrics exports auth activity as Prometheus counters.
package metrics

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auth "github.com/goliatone/go-retail-auth"
)

const namespace = "retail_auth"

// Collector counts activity events. It implements auth.ActivitySink and
// is safe for concurrent use.
type Collector struct {
	events *prometheus.CounterVec
}

var _ auth.ActivitySink = (*Collector)(nil)

// NewCollector creates the counters and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Authentication activity events by type and error kind.",
		}, []string{"event", "kind"}),
	}

	if err := reg.Register(c.events); err != nil {
		return nil, err
	}

	return c, nil
}

// Record implements auth.ActivitySink. Only the event type and error kind
// become labels; user ids and reasons stay out to bound cardinality.
func (c *Collector) Record(_ context.Context, event auth.ActivityEvent) error {
	kind := string(event.Kind)
	if kind == "" {
		kind = "none"
	}
	c.events.WithLabelValues(string(event.EventType), kind).Inc()
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
