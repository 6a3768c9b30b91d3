package orchestrator

import "sort"

// ClusterConfig is the slice of the node config the reconciler cares about.
type ClusterConfig struct {
	Name         string
	DNSAddresses []string
}

// ClusterStatus is a point-in-time snapshot of the orchestrator's monitor
// state. Holders replace it wholesale on refresh and never mutate it.
type ClusterStatus struct {
	Cluster string                `json:"cluster"`
	Nodes   map[string]NodeStatus `json:"nodes"`
	Apps    map[string][]string   `json:"apps"`
}

// NodeStatus is one node's view of the services it runs.
type NodeStatus struct {
	Services map[string]ServiceStatus `json:"services"`
}

// ServiceStatus is one node's record of one service.
type ServiceStatus struct {
	State       string `json:"state"`
	ScalerSlave bool   `json:"scaler_slave"`
}

// ClusterName returns the cluster's name, empty when unknown.
func (s *ClusterStatus) ClusterName() string {
	if s == nil {
		return ""
	}

	return s.Cluster
}

// AppOf returns the app a service belongs to.
func (s *ClusterStatus) AppOf(service string) (string, bool) {
	if s == nil {
		return "", false
	}

	for app, services := range s.Apps {
		for _, svc := range services {
			if svc == service {
				return app, true
			}
		}
	}

	return "", false
}

// IsSlave reports whether any node records the service as a scaler slave.
func (s *ClusterStatus) IsSlave(service string) bool {
	if s == nil {
		return false
	}

	for _, node := range s.Nodes {
		if st, ok := node.Services[service]; ok && st.ScalerSlave {
			return true
		}
	}

	return false
}

// ServiceNames returns the sorted names of every service visible on any node.
func (s *ClusterStatus) ServiceNames() []string {
	if s == nil {
		return nil
	}

	seen := map[string]struct{}{}

	for _, node := range s.Nodes {
		for svc := range node.Services {
			seen[svc] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for svc := range seen {
		names = append(names, svc)
	}

	sort.Strings(names)

	return names
}
