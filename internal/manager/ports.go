package manager

import (
	"net"
	"strconv"

	"github.com/shiftwave/lbsync/internal/lbapi"
)

const (
	portRangeMin = 1024
	portRangeMax = 65535
)

// usedPorts collects the frontend ports bound by the given server entries.
// Binds that do not parse as host:port contribute nothing.
func usedPorts(servers map[string]lbapi.ServerConfig) map[int]struct{} {
	used := make(map[int]struct{}, len(servers))

	for _, srv := range servers {
		_, portPart, err := net.SplitHostPort(srv.Bind)
		if err != nil {
			continue
		}

		port, err := strconv.Atoi(portPart)
		if err != nil {
			continue
		}

		used[port] = struct{}{}
	}

	return used
}

// lowestFreePort returns the lowest port of [1024, 65535] not in used,
// scanning upward from the given port and wrapping to the bottom of the
// range when the tail is taken.
func lowestFreePort(used map[int]struct{}, from int) (int, error) {
	if from < portRangeMin {
		from = portRangeMin
	}

	for port := from; port <= portRangeMax; port++ {
		if _, taken := used[port]; !taken {
			return port, nil
		}
	}

	for port := portRangeMin; port < from; port++ {
		if _, taken := used[port]; !taken {
			return port, nil
		}
	}

	return 0, errPortRangeExhausted
}
