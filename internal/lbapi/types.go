package lbapi

// Status is the process status the control API reports on its root endpoint
type Status struct {
	Pid       int    `json:"pid"`
	Version   string `json:"version"`
	StartTime string `json:"startTime"`
	Uptime    string `json:"uptime"`
}

// ServerConfig is one server entry of the load balancer. Keyword-derived
// values stay strings end to end, exactly as the orchestrator hands them out.
type ServerConfig struct {
	Bind                     string            `json:"bind" yaml:"bind"`
	Protocol                 string            `json:"protocol" yaml:"protocol"`
	Balance                  string            `json:"balance" yaml:"balance"`
	MaxConnections           string            `json:"max_connections,omitempty" yaml:"max_connections"`
	ClientIdleTimeout        string            `json:"client_idle_timeout,omitempty" yaml:"client_idle_timeout"`
	BackendIdleTimeout       string            `json:"backend_idle_timeout,omitempty" yaml:"backend_idle_timeout"`
	BackendConnectionTimeout string            `json:"backend_connection_timeout,omitempty" yaml:"backend_connection_timeout"`
	SNI                      string            `json:"sni,omitempty" yaml:"sni"`
	TLS                      string            `json:"tls,omitempty" yaml:"tls"`
	BackendsTLS              string            `json:"backends_tls,omitempty" yaml:"backends_tls"`
	UDP                      string            `json:"udp,omitempty" yaml:"udp"`
	Access                   string            `json:"access,omitempty" yaml:"access"`
	ProxyProtocol            string            `json:"proxy_protocol,omitempty" yaml:"proxy_protocol"`
	Discovery                DiscoveryConfig   `json:"discovery" yaml:"discovery"`
	Healthcheck              HealthcheckConfig `json:"healthcheck" yaml:"healthcheck"`
}

// DiscoveryConfig tells the load balancer how to find the backends of a server entry
type DiscoveryConfig struct {
	Kind             string `json:"kind" yaml:"kind"`
	Failpolicy       string `json:"failpolicy" yaml:"failpolicy"`
	SrvLookupServer  string `json:"srv_lookup_server,omitempty" yaml:"srv_lookup_server"`
	SrvLookupPattern string `json:"srv_lookup_pattern,omitempty" yaml:"srv_lookup_pattern"`
	SrvDNSProtocol   string `json:"srv_dns_protocol" yaml:"srv_dns_protocol"`
	Interval         string `json:"interval" yaml:"interval"`
	Timeout          string `json:"timeout" yaml:"timeout"`
}

// HealthcheckConfig tells the load balancer how to probe the backends of a server entry
type HealthcheckConfig struct {
	Kind     string `json:"kind" yaml:"kind"`
	Fails    string `json:"fails" yaml:"fails"`
	Passes   string `json:"passes" yaml:"passes"`
	Interval string `json:"interval" yaml:"interval"`
	Timeout  string `json:"timeout" yaml:"timeout"`
}
