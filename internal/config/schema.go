package config

// Config is the top-level YAML structure.
type Config struct {
	Version      string            `yaml:"version"`
	Routing      RoutingConf       `yaml:"routing"`
	Payment      PaymentConf       `yaml:"payment"`
	Destinations []DestinationConf `yaml:"destinations"`
	StatusPages  []StatusPageConf  `yaml:"status_pages"`
}

// RoutingConf holds the delivery policy knobs.
type RoutingConf struct {
	// RouteWarnings makes warning-severity events page; critical always
	// pages and info never does.
	RouteWarnings     bool `yaml:"route_warnings"`
	DeliveryTimeoutMs int  `yaml:"delivery_timeout_ms"`
}

// PaymentConf configures the payment-webhook source.
type PaymentConf struct {
	SigningSecret string `yaml:"signing_secret"`
	ToleranceSec  int    `yaml:"tolerance_sec"`
}

// DestinationConf names one paging destination endpoint.
type DestinationConf struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// StatusPageConf names one pollable status page. An empty URL falls back
// to the bundled fixture document.
type StatusPageConf struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	FetchTimeoutMs int    `yaml:"fetch_timeout_ms"`
}
