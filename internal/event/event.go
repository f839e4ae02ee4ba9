package event

import (
	"encoding/json"
	"time"
)

// Severity is the ordered urgency classification that drives routing.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// rank orders severities; higher pages harder.
var rank = map[Severity]int{
	SeverityInfo:     0,
	SeverityWarning:  1,
	SeverityCritical: 2,
}

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	_, ok := rank[s]
	return ok
}

// AtLeast reports whether s is at least as urgent as other.
func (s Severity) AtLeast(other Severity) bool {
	return rank[s] >= rank[other]
}

// Kind is the semantic category of an event, independent of its source.
type Kind string

const (
	KindIncident Kind = "incident"
	KindStatus   Kind = "status"
	KindPayment  Kind = "payment"
)

// Normalized is the canonical event shape every source adapter maps into.
// EventID is the identity key for deduplication: two payloads describing
// the same source event must normalize to the same EventID.
type Normalized struct {
	EventID     string          `json:"event_id"`
	Source      string          `json:"source"`
	Kind        Kind            `json:"kind"`
	Severity    Severity        `json:"severity"`
	Service     string          `json:"service"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	ResolvedAt  *time.Time      `json:"resolved_at"`
	FirstSeenAt time.Time       `json:"first_seen_at"`
	Raw         json.RawMessage `json:"raw"`
	Delivery    Delivery        `json:"delivery"`
}

// Delivery records the routing outcome for a stored event. Routed flips
// false→true at most once, when the first destination accepts the page.
type Delivery struct {
	Routed      bool     `json:"routed"`
	DeliveredTo []string `json:"delivered_to"`
}
