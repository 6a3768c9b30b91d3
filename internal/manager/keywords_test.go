package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyEnv(t *testing.T) {
	t.Run("overlays recognized keywords", func(t *testing.T) {
		t.Parallel()

		cfg := defaultTemplate()

		applyEnv(&cfg, map[string]string{
			"balance":              "leastconn",
			"max_connections":      "512",
			"tls":                  "true",
			"discovery_interval":   "10s",
			"discovery_kind":       "static",
			"healthcheck_fails":    "3",
			"healthcheck_timeout":  "1s",
			"healthcheck_interval": "5s",
		})

		assert.Equal(t, "leastconn", cfg.Balance)
		assert.Equal(t, "512", cfg.MaxConnections)
		assert.Equal(t, "true", cfg.TLS)
		assert.Equal(t, "10s", cfg.Discovery.Interval)
		assert.Equal(t, "static", cfg.Discovery.Kind)
		assert.Equal(t, "3", cfg.Healthcheck.Fails)
		assert.Equal(t, "1s", cfg.Healthcheck.Timeout)
		assert.Equal(t, "5s", cfg.Healthcheck.Interval)

		// untouched fields keep their defaults
		assert.Equal(t, "tcp", cfg.Protocol)
		assert.Equal(t, "keeplast", cfg.Discovery.Failpolicy)
		assert.Equal(t, "ping", cfg.Healthcheck.Kind)
	})

	t.Run("unrecognized keywords change nothing", func(t *testing.T) {
		t.Parallel()

		cfg := defaultTemplate()
		applyEnv(&cfg, map[string]string{
			"bind":      "8080/tcp",
			"target_lb": "lb1",
			"dns_port":  "5353",
			"whatever":  "value",
		})

		assert.Equal(t, defaultTemplate(), cfg)
	})

	t.Run("every table entry lands on a real field", func(t *testing.T) {
		t.Parallel()

		cfg := defaultTemplate()

		env := make(map[string]string, len(keywordFields))
		for keyword := range keywordFields {
			env[keyword] = "x-" + keyword
		}

		applyEnv(&cfg, env)

		assert.Equal(t, "x-protocol", cfg.Protocol)
		assert.Equal(t, "x-balance", cfg.Balance)
		assert.Equal(t, "x-max_connections", cfg.MaxConnections)
		assert.Equal(t, "x-client_idle_timeout", cfg.ClientIdleTimeout)
		assert.Equal(t, "x-backend_idle_timeout", cfg.BackendIdleTimeout)
		assert.Equal(t, "x-backend_connection_timeout", cfg.BackendConnectionTimeout)
		assert.Equal(t, "x-sni", cfg.SNI)
		assert.Equal(t, "x-tls", cfg.TLS)
		assert.Equal(t, "x-backends_tls", cfg.BackendsTLS)
		assert.Equal(t, "x-udp", cfg.UDP)
		assert.Equal(t, "x-access", cfg.Access)
		assert.Equal(t, "x-proxy_protocol", cfg.ProxyProtocol)
		assert.Equal(t, "x-discovery_failpolicy", cfg.Discovery.Failpolicy)
		assert.Equal(t, "x-discovery_kind", cfg.Discovery.Kind)
		assert.Equal(t, "x-discovery_srv_dns_protocol", cfg.Discovery.SrvDNSProtocol)
		assert.Equal(t, "x-discovery_srv_lookup_server", cfg.Discovery.SrvLookupServer)
		assert.Equal(t, "x-discovery_srv_lookup_pattern", cfg.Discovery.SrvLookupPattern)
		assert.Equal(t, "x-discovery_interval", cfg.Discovery.Interval)
		assert.Equal(t, "x-discovery_timeout", cfg.Discovery.Timeout)
		assert.Equal(t, "x-healthcheck_fails", cfg.Healthcheck.Fails)
		assert.Equal(t, "x-healthcheck_passes", cfg.Healthcheck.Passes)
		assert.Equal(t, "x-healthcheck_interval", cfg.Healthcheck.Interval)
		assert.Equal(t, "x-healthcheck_kind", cfg.Healthcheck.Kind)
		assert.Equal(t, "x-healthcheck_timeout", cfg.Healthcheck.Timeout)
	})
}
