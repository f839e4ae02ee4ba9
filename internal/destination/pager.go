package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dkarger/signalbridge/internal/event"
)

// pagePayload is the wire shape posted to the pager endpoint.
type pagePayload struct {
	EventID     string     `json:"event_id"`
	Severity    string     `json:"severity"`
	Source      string     `json:"source"`
	Service     string     `json:"service"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// Pager delivers events to an incident-paging HTTP endpoint.
type Pager struct {
	name   string
	url    string
	client *http.Client
}

// NewPager creates a Pager posting to url. timeout bounds the whole
// delivery attempt, including connection setup.
func NewPager(name, url string, timeout time.Duration) *Pager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Pager{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout, Transport: tr},
	}
}

func (p *Pager) Name() string { return p.name }

func (p *Pager) Deliver(ctx context.Context, ev *event.Normalized) error {
	body, err := json.Marshal(pagePayload{
		EventID:     ev.EventID,
		Severity:    string(ev.Severity),
		Source:      ev.Source,
		Service:     ev.Service,
		Summary:     ev.Summary,
		Description: ev.Description,
		StartedAt:   ev.StartedAt,
		ResolvedAt:  ev.ResolvedAt,
	})
	if err != nil {
		return fmt.Errorf("pager %s: encode: %w", p.name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("pager %s: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pager %s: %w", p.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pager %s: status %d: %s", p.name, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
