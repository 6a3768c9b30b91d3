// Package orchestrator is the client for the cluster orchestrator's local
// control channel.
package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// terminator delimits messages on the control channel. A single read may
// carry several terminated messages back to back.
const terminator byte = 0x00

var (
	defaultRequestTimeout = 1 * time.Second
	defaultReceiveTimeout = 1 * time.Second
)

const (
	actionServiceConfig = "get_service_config"
	actionNodeConfig    = "get_node_config"
	actionDaemonStatus  = "daemon_status"
	actionServiceAction = "service_action"
	actionEvents        = "events"
)

// Client talks to the orchestrator over its control socket. Request/response
// calls dial a fresh connection per call; the event stream holds one open
// until CloseEvents or a reset.
type Client struct {
	proto          string
	addr           string
	requestTimeout time.Duration
	receiveTimeout time.Duration
	logger         *zap.SugaredLogger

	stream net.Conn
	buf    []byte
}

// Option configures a client option.
type Option func(c *Client)

// NewClient returns a client for the control channel at the given address,
// either tcp://host:port or unix:///path/to/socket.
func NewClient(address string, options ...Option) (*Client, error) {
	proto, addr, ok := strings.Cut(address, "://")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}

	switch proto {
	case "tcp", "unix":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, proto)
	}

	c := &Client{
		proto:          proto,
		addr:           addr,
		requestTimeout: defaultRequestTimeout,
		receiveTimeout: defaultReceiveTimeout,
		logger:         zap.NewNop().Sugar(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// WithLogger sets the logger for the client
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestTimeout overrides the default timeout of request/response calls
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

// WithReceiveTimeout overrides the deadline of one event stream receive attempt
func WithReceiveTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.receiveTimeout = timeout
	}
}

// envelope is the request wire format.
type envelope struct {
	Action  string                 `json:"action"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// reply is the response wire format. A non-zero status carries the error text.
type reply struct {
	Status int             `json:"status"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ServiceEnv returns the env section of a service's config.
func (c *Client) ServiceEnv(ctx context.Context, name string) (map[string]string, error) {
	data, err := c.roundTrip(ctx, actionServiceConfig, map[string]interface{}{
		"service":  name,
		"format":   "json",
		"evaluate": true,
	})
	if err != nil {
		return nil, err
	}

	var cfg struct {
		Env map[string]string `json:"env"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	return cfg.Env, nil
}

// ClusterConfig returns the cluster name and its DNS server addresses.
func (c *Client) ClusterConfig(ctx context.Context) (ClusterConfig, error) {
	data, err := c.roundTrip(ctx, actionNodeConfig, nil)
	if err != nil {
		return ClusterConfig{}, err
	}

	var cfg struct {
		Cluster struct {
			Name string `json:"name"`
			DNS  string `json:"dns"`
		} `json:"cluster"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ClusterConfig{}, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	return ClusterConfig{
		Name:         cfg.Cluster.Name,
		DNSAddresses: strings.Fields(cfg.Cluster.DNS),
	}, nil
}

// DaemonStatus returns a fresh snapshot of the orchestrator's monitor state.
func (c *Client) DaemonStatus(ctx context.Context) (*ClusterStatus, error) {
	data, err := c.roundTrip(ctx, actionDaemonStatus, nil)
	if err != nil {
		return nil, err
	}

	status := new(ClusterStatus)
	if err := json.Unmarshal(data, status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	return status, nil
}

// SetBind rewrites a service's bind keyword. The new value propagates
// asynchronously: callers must allow a settle delay before reading it back.
func (c *Client) SetBind(ctx context.Context, service, value string) error {
	_, err := c.roundTrip(ctx, actionServiceAction, map[string]interface{}{
		"service": service,
		"command": "set",
		"keyword": "env.bind",
		"value":   value,
	})

	return err
}

// roundTrip dials, sends one request envelope and reads one terminated reply.
func (c *Client) roundTrip(ctx context.Context, action string, options map[string]interface{}) (json.RawMessage, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	defer conn.Close()

	deadline := time.Now().Add(c.requestTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	if err := writeMessage(conn, envelope{Action: action, Options: options}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceReset, err)
	}

	raw, err := bufio.NewReader(conn).ReadBytes(terminator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceReset, err)
	}

	var rep reply
	if err := json.Unmarshal(raw[:len(raw)-1], &rep); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	if rep.Status != 0 {
		return nil, fmt.Errorf("%w: %s (status %d)", ErrRequestFailed, rep.Error, rep.Status)
	}

	return rep.Data, nil
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.requestTimeout}

	return d.DialContext(ctx, c.proto, c.addr)
}

// writeMessage sends one terminated envelope.
func writeMessage(conn net.Conn, env envelope) error {
	msg, err := json.Marshal(env)
	if err != nil {
		return err
	}

	_, err = conn.Write(append(msg, terminator))

	return err
}
