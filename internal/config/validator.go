package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for:
//   - Required fields (version, destination/page names and URLs)
//   - Duplicate names across destinations and status pages
func Validate(cfg *Config) error {
	var errs []string
	if cfg.Version == "" {
		errs = append(errs, "version is required")
	}

	names := make(map[string]string) // name → location
	for i, d := range cfg.Destinations {
		if d.Name == "" {
			errs = append(errs, fmt.Sprintf("destinations[%d]: name is required", i))
			continue
		}
		loc := fmt.Sprintf("destination %s", d.Name)
		if prev, ok := names[d.Name]; ok {
			errs = append(errs, fmt.Sprintf("duplicate name %q (first seen at %s, again at %s)", d.Name, prev, loc))
		} else {
			names[d.Name] = loc
		}
		if d.URL == "" {
			errs = append(errs, fmt.Sprintf("destination %s: url is required", d.Name))
		}
	}

	for i, p := range cfg.StatusPages {
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("status_pages[%d]: name is required", i))
			continue
		}
		loc := fmt.Sprintf("status page %s", p.Name)
		if prev, ok := names[p.Name]; ok {
			errs = append(errs, fmt.Sprintf("duplicate name %q (first seen at %s, again at %s)", p.Name, prev, loc))
		} else {
			names[p.Name] = loc
		}
	}

	if cfg.Payment.SigningSecret == "" {
		errs = append(errs, "payment: signing_secret is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
