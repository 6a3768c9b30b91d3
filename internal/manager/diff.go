package manager

import (
	"fmt"
	"sort"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

const (
	opCreate = "create"
	opDelete = "delete"
)

// applyServer converges one server entry: skip when current already equals
// desired, delete the stale entry first otherwise, then create. Validation
// failures skip the create so a half-formed config never lands on the load
// balancer.
func (m *Manager) applyServer(key serverKey, desired lbapi.ServerConfig) error {
	servers, err := m.LBClient.ListServers(m.Context)
	if err != nil {
		return err
	}

	name := key.String()

	current, exists := servers[name]
	if exists && configsEqual(current, desired) {
		m.Logger.Debugw("server entry already converged", "server", name)
		return nil
	}

	if exists {
		if err := m.LBClient.DeleteServer(m.Context, name); err != nil {
			return err
		}

		serverOpsTotal.WithLabelValues(opDelete).Inc()
	}

	if err := validateServerConfig(desired); err != nil {
		return err
	}

	if err := m.LBClient.CreateServer(m.Context, name, desired); err != nil {
		return err
	}

	serverOpsTotal.WithLabelValues(opCreate).Inc()
	m.Logger.Infow("server entry created", "server", name, "bind", desired.Bind)

	return nil
}

// deleteServiceServers removes every server entry belonging to the service.
func (m *Manager) deleteServiceServers(service string) error {
	return m.deleteServers(service, nil)
}

// pruneServiceServers removes the service's server entries whose port is no
// longer exposed.
func (m *Manager) pruneServiceServers(service string, exposed map[int]struct{}) error {
	return m.deleteServers(service, exposed)
}

// deleteServers removes the service's entries, sparing the ports in keep.
// A nil keep set spares nothing.
func (m *Manager) deleteServers(service string, keep map[int]struct{}) error {
	servers, err := m.LBClient.ListServers(m.Context)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		key, ok := parseServerKey(name)
		if !ok || key.Service != service {
			continue
		}

		if _, keepIt := keep[key.Port]; keepIt {
			continue
		}

		if err := m.LBClient.DeleteServer(m.Context, name); err != nil {
			return err
		}

		serverOpsTotal.WithLabelValues(opDelete).Inc()
		m.Logger.Infow("server entry deleted", "server", name)
	}

	return nil
}

// configsEqual compares every top-level scalar and every field of the
// discovery and healthcheck sections one level deep.
func configsEqual(current, desired lbapi.ServerConfig) bool {
	return current == desired
}

// validateServerConfig checks the fields the load balancer refuses to work
// without.
func validateServerConfig(cfg lbapi.ServerConfig) error {
	switch {
	case cfg.Bind == "":
		return fmt.Errorf("%w: bind", errMissingMandatoryFields)
	case cfg.Discovery.SrvLookupServer == "":
		return fmt.Errorf("%w: discovery.srv_lookup_server", errMissingMandatoryFields)
	case cfg.Discovery.SrvLookupPattern == "":
		return fmt.Errorf("%w: discovery.srv_lookup_pattern", errMissingMandatoryFields)
	}

	return nil
}
