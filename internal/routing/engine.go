// Package routing decides which stored events are forwarded to the paging
// destinations and records the outcome. Delivery is a single best-effort
// attempt per destination; there is no retry queue. If durable delivery is
// ever needed, a queueing collaborator slots in behind Client without
// touching normalization or the store.
package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/dkarger/signalbridge/internal/destination"
	"github.com/dkarger/signalbridge/internal/event"
	"github.com/dkarger/signalbridge/internal/metrics"
	"github.com/dkarger/signalbridge/internal/store"
)

// Result is the routing outcome for one event.
type Result struct {
	Routed      bool     `json:"routed"`
	DeliveredTo []string `json:"delivered_to"`
}

// ShouldRoute is the severity decision table: critical always pages,
// warning pages only when the toggle is on, info never does. It is a pure
// function of the severity and the toggle; prior routing state plays no
// part.
func ShouldRoute(sev event.Severity, routeWarnings bool) bool {
	if routeWarnings {
		return sev.AtLeast(event.SeverityWarning)
	}
	return sev.AtLeast(event.SeverityCritical)
}

// Engine evaluates severity policy and performs delivery.
type Engine struct {
	store        *store.Store
	destinations []destination.Client
	timeout      time.Duration
}

// New creates an Engine delivering through the given destinations, each
// attempt bounded by timeout.
func New(st *store.Store, dests []destination.Client, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Engine{store: st, destinations: dests, timeout: timeout}
}

// EvaluateAndDeliver applies the decision table to ev and, when delivery is
// indicated, attempts each destination once. Failures are logged and
// absorbed: a dead pager must never fail the ingestion that triggered it.
// Each success is recorded on the stored event via MarkDelivered. An event
// the table declines stays at routed=false; that is a terminal state.
func (e *Engine) EvaluateAndDeliver(ctx context.Context, ev *event.Normalized, routeWarnings bool) Result {
	res := Result{DeliveredTo: []string{}}
	if !ShouldRoute(ev.Severity, routeWarnings) {
		return res
	}

	for _, d := range e.destinations {
		start := time.Now()
		dctx, cancel := context.WithTimeout(ctx, e.timeout)
		err := d.Deliver(dctx, ev)
		cancel()
		metrics.DeliveryDuration.Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.Deliveries.WithLabelValues(d.Name(), "error").Inc()
			slog.Warn("delivery failed",
				"destination", d.Name(),
				"event_id", ev.EventID,
				"severity", ev.Severity,
				"err", err)
			continue
		}
		metrics.Deliveries.WithLabelValues(d.Name(), "success").Inc()
		e.store.MarkDelivered(ev.EventID, d.Name())
		res.Routed = true
		res.DeliveredTo = append(res.DeliveredTo, d.Name())
	}
	return res
}
