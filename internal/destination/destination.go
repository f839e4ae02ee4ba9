package destination

import (
	"context"

	"github.com/dkarger/signalbridge/internal/event"
)

// Client is a pluggable delivery sink for the paging destination. Deliver
// is a single synchronous attempt; callers own timeouts via ctx and decide
// what a failure means.
type Client interface {
	// Name returns the destination name recorded on delivered events.
	Name() string
	// Deliver sends ev to the destination. A non-nil error means the
	// destination did not accept the page.
	Deliver(ctx context.Context, ev *event.Normalized) error
}
