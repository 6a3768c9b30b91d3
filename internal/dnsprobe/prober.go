// Package dnsprobe picks the cluster DNS server the load balancer should use
// for backend discovery lookups.
package dnsprobe

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

var defaultProbeTimeout = 500 * time.Millisecond

// Prober checks cluster DNS servers for reachability.
type Prober struct {
	client *dns.Client
	logger *zap.SugaredLogger
}

// Option configures a prober option.
type Option func(p *Prober)

// New returns a prober using short UDP queries.
func New(options ...Option) *Prober {
	p := &Prober{
		client: &dns.Client{Net: "udp", Timeout: defaultProbeTimeout},
		logger: zap.NewNop().Sugar(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// WithLogger sets the logger for the prober
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// WithTimeout overrides the per-probe timeout
func WithTimeout(timeout time.Duration) Option {
	return func(p *Prober) {
		p.client.Timeout = timeout
	}
}

// FirstReachable probes the given addresses in order with a root NS query on
// the given port and returns the first host:port that answers. Any answer
// counts, the probe only establishes that the server is there.
func (p *Prober) FirstReachable(ctx context.Context, addrs []string, port string) (string, error) {
	for _, addr := range addrs {
		target := net.JoinHostPort(addr, port)

		m := new(dns.Msg)
		m.SetQuestion(".", dns.TypeNS)

		if _, _, err := p.client.ExchangeContext(ctx, m, target); err != nil {
			p.logger.Debugw("cluster dns server did not answer", "server", target, "error", err)
			continue
		}

		return target, nil
	}

	return "", ErrNoReachableServer
}
