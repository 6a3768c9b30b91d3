package manager

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/shiftwave/lbsync/internal/lbapi"
	"github.com/shiftwave/lbsync/internal/orchestrator"
)

var (
	wildcardAddress = "0.0.0.0"
	defaultDNSPort  = "53"
)

// synthesis carries the per-service inputs shared by every binding.
type synthesis struct {
	service      string
	app          string
	cluster      string
	lookupServer string
	env          map[string]string
}

// applyService synthesizes and applies one server entry per exposed binding
// of the service and returns the set of its exposed ports. The caller prunes
// stale entries against that set.
func (m *Manager) applyService(service string, env map[string]string, status *orchestrator.ClusterStatus) (map[int]struct{}, error) {
	app, ok := status.AppOf(service)
	cluster := status.ClusterName()

	if !ok || cluster == "" {
		return nil, fmt.Errorf("%w: %s", errServiceNotReady, service)
	}

	bindings, err := m.cleanBindings(service, env[keywordBind])
	if err != nil {
		return nil, err
	}

	clusterCfg, err := m.SourceClient.ClusterConfig(m.Context)
	if err != nil {
		return nil, err
	}

	lookupServer, err := m.DNSProber.FirstReachable(m.Context, clusterCfg.DNSAddresses, dnsPort(env))
	if err != nil {
		return nil, err
	}

	input := synthesis{
		service:      service,
		app:          app,
		cluster:      cluster,
		lookupServer: lookupServer,
		env:          env,
	}

	exposed := make(map[int]struct{}, len(bindings))

	for i, b := range bindings {
		exposed[b.Port] = struct{}{}

		cfg := m.synthesizeServer(input, b)

		if b.wildcard() {
			port, err := m.allocatePort(b)
			if err != nil {
				if skippable(err) {
					m.Logger.Errorw("cannot allocate a frontend port", "service", service, "error", err)
					continue
				}

				return nil, err
			}

			address := net.JoinHostPort(wildcardAddress, strconv.Itoa(port))
			cfg.Bind = address

			// embed the resolved address in the bind keyword, keeping the
			// other tokens as they are
			bindings[i].Address = address
			bindings[i].raw = fmt.Sprintf("%d/%s-%s", b.Port, b.Protocol, address)

			if err := m.rewriteBind(service, joinBindings(bindings)); err != nil {
				return nil, err
			}

			portsAllocatedTotal.Inc()
		}

		key := serverKey{Port: b.Port, Service: service}

		if err := m.applyServer(key, cfg); err != nil {
			if skippable(err) {
				m.Logger.Errorw("skipping server entry", "server", key.String(), "error", err)
				continue
			}

			return nil, err
		}
	}

	return exposed, nil
}

// synthesizeServer builds the desired server config for one binding: base
// template, token protocol, env keyword overlay, then the generated
// discovery pattern and lookup server.
func (m *Manager) synthesizeServer(input synthesis, b binding) lbapi.ServerConfig {
	cfg := m.BaseTemplate
	cfg.Protocol = b.Protocol

	applyEnv(&cfg, input.env)

	cfg.Discovery.SrvLookupPattern = discoveryPattern(b.Port, b.Protocol, input.service, input.app, input.cluster)
	cfg.Discovery.SrvLookupServer = input.lookupServer

	if !b.wildcard() {
		cfg.Bind = b.Address
	}

	return cfg
}

// cleanBindings parses a service's bind keyword. Malformed tokens are
// dropped and the cleaned value is written back so the source keyword stays
// in step with what is actually exposed.
func (m *Manager) cleanBindings(service, value string) ([]binding, error) {
	bindings, dropped := parseBindings(value)
	if !dropped {
		return bindings, nil
	}

	cleaned := joinBindings(bindings)
	m.Logger.Warnw("dropping malformed bind tokens", "service", service, "bind", value, "cleaned", cleaned)

	if err := m.rewriteBind(service, cleaned); err != nil {
		return nil, err
	}

	return bindings, nil
}

// rewriteBind pushes a new bind keyword value and waits for it to settle
// before anyone reads it back.
func (m *Manager) rewriteBind(service, value string) error {
	if err := m.SourceClient.SetBind(m.Context, service, value); err != nil {
		return err
	}

	time.Sleep(bindSettleDelay)

	return nil
}

// allocatePort picks a free frontend port, scanning upward from the
// binding's own port. The used set is recomputed from the live server list
// on every call.
func (m *Manager) allocatePort(b binding) (int, error) {
	servers, err := m.LBClient.ListServers(m.Context)
	if err != nil {
		return 0, err
	}

	return lowestFreePort(usedPorts(servers), b.Port)
}

// discoveryPattern renders the DNS SRV lookup pattern for one exposed port.
func discoveryPattern(port int, protocol, service, app, cluster string) string {
	return fmt.Sprintf("_%d._%s.%s.%s.svc.%s.", port, protocol, service, app, cluster)
}

// dnsPort returns the port the discovery lookup server listens on.
func dnsPort(env map[string]string) string {
	if port := env[keywordDNSPort]; port != "" {
		return port
	}

	return defaultDNSPort
}
