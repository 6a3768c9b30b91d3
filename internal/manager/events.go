package manager

import (
	"strings"

	"github.com/shiftwave/lbsync/internal/orchestrator"
)

const (
	eventAdd    = "add"
	eventUpdate = "update"
	eventDelete = "delete"
)

const (
	pathServices = "services"
	pathStatus   = "status"
	pathConfig   = "config"
	pathUpdated  = "updated"
)

// serviceEvent is one classified change record.
type serviceEvent struct {
	Service string
	Kind    string
}

// classifyChange derives (service, kind) from the shape of a change record's
// path. Unrecognized shapes yield both fields empty; the classifier never
// sets only one.
func classifyChange(change orchestrator.Change) (string, string) {
	path := change.Path

	switch len(path) {
	case 3:
		if path[0] == pathServices && path[1] == pathStatus && change.HasValue() {
			return path[2], eventAdd
		}
	case 4:
		if path[0] == pathServices && path[1] == pathConfig && path[3] == pathUpdated {
			return path[2], eventUpdate
		}
	case 1:
		segments := strings.Split(path[0], "/")
		if len(segments) == 3 && segments[0] == pathServices && segments[1] == pathStatus && segments[2] != "" {
			return segments[2], eventDelete
		}
	}

	return "", ""
}

// dispatchBatch processes one batch of events: non-adds first in record
// order, one snapshot refresh when the batch holds any adds, then the adds.
// Newly visible services are evaluated against fresh snapshot data that way.
func (m *Manager) dispatchBatch(events []orchestrator.Event) error {
	var adds []serviceEvent

	for _, event := range events {
		for _, change := range event.Changes {
			service, kind := classifyChange(change)

			switch {
			case service == "" && kind == "":
				continue
			case service == "" || kind == "":
				// the classifier contract rules this out
				m.Logger.Debugw("half-classified change record", "service", service, "kind", kind)
				continue
			}

			eventsTotal.WithLabelValues(kind).Inc()

			if kind == eventAdd {
				adds = append(adds, serviceEvent{Service: service, Kind: kind})
				continue
			}

			if err := m.dispatchEvent(service, kind); err != nil {
				return err
			}
		}
	}

	if len(adds) == 0 {
		return nil
	}

	if err := m.refreshStatus(); err != nil {
		return err
	}

	for _, event := range adds {
		if err := m.dispatchEvent(event.Service, event.Kind); err != nil {
			return err
		}
	}

	return nil
}

// dispatchEvent routes one classified event. Skippable failures are logged
// and absorbed here so the rest of the batch still runs.
func (m *Manager) dispatchEvent(service, kind string) error {
	if isSlaveReplica(service, m.status) {
		m.Logger.Infow("ignoring scaler slave", "service", service, "event", kind)
		return nil
	}

	m.Logger.Debugw("dispatching service event", "service", service, "event", kind)

	var err error

	switch kind {
	case eventAdd:
		err = m.handleAdd(service)
	case eventUpdate:
		err = m.handleUpdate(service)
	case eventDelete:
		err = m.handleDelete(service)
	}

	if err != nil && skippable(err) {
		m.Logger.Errorw("skipping service this round", "service", service, "error", err)
		return nil
	}

	return err
}

func (m *Manager) handleAdd(service string) error {
	env, err := m.SourceClient.ServiceEnv(m.Context, service)
	if err != nil {
		return err
	}

	if !m.needsLoadBalancing(env) {
		m.Logger.Debugw("service does not need load-balancing", "service", service)
		return nil
	}

	_, err = m.applyService(service, env, m.status)

	return err
}

func (m *Manager) handleUpdate(service string) error {
	env, err := m.SourceClient.ServiceEnv(m.Context, service)
	if err != nil {
		return err
	}

	if !m.needsLoadBalancing(env) {
		return m.deleteServiceServers(service)
	}

	exposed, err := m.applyService(service, env, m.status)
	if err != nil {
		return err
	}

	return m.pruneServiceServers(service, exposed)
}

func (m *Manager) handleDelete(service string) error {
	return m.deleteServiceServers(service)
}
