package manager

import (
	"strings"

	"github.com/shiftwave/lbsync/internal/orchestrator"
)

const (
	keywordTargetLB = "target_lb"
	keywordBind     = "bind"
	keywordDNSPort  = "dns_port"
)

// needsLoadBalancing reports whether a service's env asks this host to
// load-balance it. A non-empty target_lb list restricts execution to the
// hosts it names; without a bind keyword there is nothing to expose.
func (m *Manager) needsLoadBalancing(env map[string]string) bool {
	if targets := strings.Fields(env[keywordTargetLB]); len(targets) > 0 {
		found := false

		for _, target := range targets {
			if target == m.Hostname {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return strings.TrimSpace(env[keywordBind]) != ""
}

// isSlaveReplica reports whether the service is a scaled-out replica that
// must not be load-balanced on its own.
func isSlaveReplica(service string, status *orchestrator.ClusterStatus) bool {
	return status.IsSlave(service)
}
