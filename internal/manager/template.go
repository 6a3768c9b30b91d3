package manager

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

// defaultTemplate returns the built-in base server config. Per-service
// keywords overlay it during synthesis.
func defaultTemplate() lbapi.ServerConfig {
	return lbapi.ServerConfig{
		Protocol:                 "tcp",
		Balance:                  "roundrobin",
		ClientIdleTimeout:        "10m",
		BackendIdleTimeout:       "10m",
		BackendConnectionTimeout: "5s",
		Discovery: lbapi.DiscoveryConfig{
			Kind:           "srv",
			Failpolicy:     "keeplast",
			SrvDNSProtocol: "udp",
			Interval:       "30s",
			Timeout:        "5s",
		},
		Healthcheck: lbapi.HealthcheckConfig{
			Kind:     "ping",
			Fails:    "1",
			Passes:   "1",
			Interval: "10s",
			Timeout:  "2s",
		},
	}
}

// LoadTemplate returns the base server config, overlaying the yaml file at
// path onto the built-in defaults when one is given.
func LoadTemplate(path string) (lbapi.ServerConfig, error) {
	template := defaultTemplate()

	if path == "" {
		return template, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lbapi.ServerConfig{}, fmt.Errorf("failed to read base template: %w", err)
	}

	if err := yaml.Unmarshal(data, &template); err != nil {
		return lbapi.ServerConfig{}, fmt.Errorf("failed to parse base template: %w", err)
	}

	return template, nil
}
