// Package manager reconciles the load balancer's server pool with the
// orchestrator's service catalog.
package manager

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/shiftwave/lbsync/internal/lbapi"
	"github.com/shiftwave/lbsync/internal/orchestrator"
)

var (
	lbReadyRetryLimit = 10
	lbReadyRetrySleep = 1 * time.Second
	sessionRetrySleep = 3 * time.Second
	bindSettleDelay   = 1 * time.Second
)

type sourceClient interface {
	ServiceEnv(ctx context.Context, name string) (map[string]string, error)
	ClusterConfig(ctx context.Context) (orchestrator.ClusterConfig, error)
	DaemonStatus(ctx context.Context) (*orchestrator.ClusterStatus, error)
	SetBind(ctx context.Context, service, value string) error
	OpenEvents(ctx context.Context) error
	NextEvents(ctx context.Context) ([]orchestrator.Event, error)
	CloseEvents() error
}

type lbClient interface {
	Status(ctx context.Context) (*lbapi.Status, error)
	ListServers(ctx context.Context) (map[string]lbapi.ServerConfig, error)
	CreateServer(ctx context.Context, name string, cfg lbapi.ServerConfig) error
	DeleteServer(ctx context.Context, name string) error
	WaitForReady(ctx context.Context, retries int, sleep time.Duration) error
}

type dnsProber interface {
	FirstReachable(ctx context.Context, addrs []string, port string) (string, error)
}

// Manager contains configuration and client connections
type Manager struct {
	Context      context.Context
	Logger       *zap.SugaredLogger
	SourceClient sourceClient
	LBClient     lbClient
	DNSProber    dnsProber
	BaseTemplate lbapi.ServerConfig
	Hostname     string

	// status is the cached cluster snapshot, replaced wholesale on refresh.
	// It informs naming and slave filtering only; bind and port decisions
	// always read live.
	status *orchestrator.ClusterStatus

	// lastStartTime is the load balancer restart fingerprint
	lastStartTime string
}

// Run drives the reconciliation loop until the context is canceled. Failed
// sessions are logged, backed off and restarted from a fresh connection and
// full resync.
func (m *Manager) Run() error {
	m.Logger.Info("starting manager")

	if err := m.LBClient.WaitForReady(m.Context, lbReadyRetryLimit, lbReadyRetrySleep); err != nil {
		return err
	}

	for {
		err := m.runSession()

		switch {
		case err == nil:
			return nil
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			m.Logger.Info("shutting down")
			return nil
		}

		if errors.Is(err, orchestrator.ErrSourceReset) {
			sourceResetsTotal.Inc()
		}

		sessionErrorsTotal.Inc()
		m.Logger.Errorw("session failed, reconnecting", zap.Error(err))

		select {
		case <-m.Context.Done():
			return nil
		case <-time.After(sessionRetrySleep):
		}
	}
}

// runSession runs one streaming session: open the event stream, full resync,
// then drain batches until an error or cancellation ends it.
func (m *Manager) runSession() error {
	if err := m.SourceClient.OpenEvents(m.Context); err != nil {
		return err
	}

	defer m.SourceClient.CloseEvents()

	// fingerprint the load balancer before touching it, best effort
	if status, err := m.LBClient.Status(m.Context); err == nil {
		m.lastStartTime = status.StartTime
	}

	if err := m.fullResync("startup"); err != nil {
		return err
	}

	for {
		select {
		case <-m.Context.Done():
			return m.Context.Err()
		default:
		}

		events, err := m.SourceClient.NextEvents(m.Context)
		if err != nil {
			return err
		}

		if err := m.dispatchBatch(events); err != nil {
			return err
		}

		if err := m.checkRestart(); err != nil {
			return err
		}
	}
}

// checkRestart polls the load balancer's start time and resyncs everything
// when it changed. A failed poll counts as no change.
func (m *Manager) checkRestart() error {
	status, err := m.LBClient.Status(m.Context)
	if err != nil {
		m.Logger.Warnw("status poll failed, assuming no restart", zap.Error(err))
		return nil
	}

	if status.StartTime == m.lastStartTime {
		return nil
	}

	m.Logger.Infow("load balancer restart detected", "start-time", status.StartTime)
	m.lastStartTime = status.StartTime

	return m.fullResync("lb-restart")
}

// fullResync re-derives and applies desired state for every known service.
func (m *Manager) fullResync(reason string) error {
	m.Logger.Infow("starting full resync", "reason", reason)
	resyncsTotal.WithLabelValues(reason).Inc()

	if err := m.refreshStatus(); err != nil {
		return err
	}

	for _, service := range m.status.ServiceNames() {
		if isSlaveReplica(service, m.status) {
			m.Logger.Debugw("skipping scaler slave", "service", service)
			continue
		}

		env, err := m.SourceClient.ServiceEnv(m.Context, service)
		if err != nil {
			return err
		}

		if !m.needsLoadBalancing(env) {
			continue
		}

		if _, err := m.applyService(service, env, m.status); err != nil {
			if skippable(err) {
				m.Logger.Errorw("skipping service this round", "service", service, "error", err)
				continue
			}

			return err
		}
	}

	m.Logger.Infow("full resync complete", "reason", reason)

	return nil
}

// refreshStatus replaces the cached cluster snapshot wholesale.
func (m *Manager) refreshStatus() error {
	status, err := m.SourceClient.DaemonStatus(m.Context)
	if err != nil {
		return err
	}

	m.status = status

	return nil
}
