// Package mock provides hand-rolled fakes for the manager's collaborators.
package mock

import (
	"context"
	"time"

	"github.com/shiftwave/lbsync/internal/lbapi"
	"github.com/shiftwave/lbsync/internal/orchestrator"
)

// SourceClient mock client
type SourceClient struct {
	DoServiceEnv    func(ctx context.Context, name string) (map[string]string, error)
	DoClusterConfig func(ctx context.Context) (orchestrator.ClusterConfig, error)
	DoDaemonStatus  func(ctx context.Context) (*orchestrator.ClusterStatus, error)
	DoSetBind       func(ctx context.Context, service, value string) error
	DoOpenEvents    func(ctx context.Context) error
	DoNextEvents    func(ctx context.Context) ([]orchestrator.Event, error)
	DoCloseEvents   func() error
}

func (c *SourceClient) ServiceEnv(ctx context.Context, name string) (map[string]string, error) {
	return c.DoServiceEnv(ctx, name)
}

func (c *SourceClient) ClusterConfig(ctx context.Context) (orchestrator.ClusterConfig, error) {
	return c.DoClusterConfig(ctx)
}

func (c *SourceClient) DaemonStatus(ctx context.Context) (*orchestrator.ClusterStatus, error) {
	return c.DoDaemonStatus(ctx)
}

func (c *SourceClient) SetBind(ctx context.Context, service, value string) error {
	return c.DoSetBind(ctx, service, value)
}

func (c *SourceClient) OpenEvents(ctx context.Context) error {
	return c.DoOpenEvents(ctx)
}

func (c *SourceClient) NextEvents(ctx context.Context) ([]orchestrator.Event, error) {
	return c.DoNextEvents(ctx)
}

func (c *SourceClient) CloseEvents() error {
	return c.DoCloseEvents()
}

// LBClient mock client
type LBClient struct {
	DoStatus       func(ctx context.Context) (*lbapi.Status, error)
	DoListServers  func(ctx context.Context) (map[string]lbapi.ServerConfig, error)
	DoCreateServer func(ctx context.Context, name string, cfg lbapi.ServerConfig) error
	DoDeleteServer func(ctx context.Context, name string) error
	DoWaitForReady func(ctx context.Context, retries int, sleep time.Duration) error
}

func (c *LBClient) Status(ctx context.Context) (*lbapi.Status, error) {
	return c.DoStatus(ctx)
}

func (c *LBClient) ListServers(ctx context.Context) (map[string]lbapi.ServerConfig, error) {
	return c.DoListServers(ctx)
}

func (c *LBClient) CreateServer(ctx context.Context, name string, cfg lbapi.ServerConfig) error {
	return c.DoCreateServer(ctx, name, cfg)
}

func (c *LBClient) DeleteServer(ctx context.Context, name string) error {
	return c.DoDeleteServer(ctx, name)
}

func (c *LBClient) WaitForReady(ctx context.Context, retries int, sleep time.Duration) error {
	return c.DoWaitForReady(ctx, retries, sleep)
}

// DNSProber mock client
type DNSProber struct {
	DoFirstReachable func(ctx context.Context, addrs []string, port string) (string, error)
}

func (p *DNSProber) FirstReachable(ctx context.Context, addrs []string, port string) (string, error) {
	return p.DoFirstReachable(ctx, addrs, port)
}
