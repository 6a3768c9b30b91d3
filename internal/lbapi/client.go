// Package lbapi is the http client for the load balancer's control API
package lbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var lbClientTimeout = 1 * time.Second

// Client is the http client for the load balancer control API
type Client struct {
	client  *http.Client
	baseURL string
	logger  *zap.SugaredLogger
}

// Option configures a client option.
type Option func(c *Client)

// NewClient returns an http client for the load balancer control API
func NewClient(url string, options ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: lbClientTimeout,
		},
		baseURL: strings.TrimSuffix(url, "/"),
		logger:  zap.NewNop().Sugar(),
	}

	for _, opt := range options {
		opt(c)
	}

	return c
}

// WithLogger sets the logger for the client
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout overrides the default per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// APIIsReady returns true when the control API answers the status endpoint
func (c *Client) APIIsReady(ctx context.Context) bool {
	_, err := c.Status(ctx)
	return err == nil
}

// Status returns the load balancer process status. Its start time is the
// fingerprint the manager watches for restarts.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	default:
		return nil, newHTTPError(ErrLBHTTPError, resp.StatusCode)
	}

	status := new(Status)
	if err := json.NewDecoder(resp.Body).Decode(status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLBResponseInvalid, err)
	}

	return status, nil
}

// ListServers returns all server entries currently configured on the load balancer
func (c *Client) ListServers(ctx context.Context) (map[string]ServerConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/servers", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	default:
		return nil, newHTTPError(ErrLBHTTPError, resp.StatusCode)
	}

	servers := map[string]ServerConfig{}
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLBResponseInvalid, err)
	}

	return servers, nil
}

// CreateServer adds a new server entry under the given name
func (c *Client) CreateServer(ctx context.Context, name string, cfg ServerConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL(name), bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return newHTTPError(ErrLBServerCreateFailed, resp.StatusCode)
	}
}

// DeleteServer removes the server entry with the given name
func (c *Client) DeleteServer(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.serverURL(name), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	default:
		return newHTTPError(ErrLBServerDeleteFailed, resp.StatusCode)
	}
}

// WaitForReady polls the status endpoint until the load balancer answers
func (c Client) WaitForReady(ctx context.Context, retries int, sleep time.Duration) error {
	for i := 0; i < retries; i++ {
		select {
		case <-ctx.Done():
			c.logger.Info("context done")
			return nil
		default:
			if c.APIIsReady(ctx) {
				c.logger.Info("load balancer control api is ready")
				return nil
			}

			c.logger.Info("waiting for load balancer control api to become ready")
			time.Sleep(sleep)
		}
	}

	return ErrLBNotReady
}

func (c *Client) serverURL(name string) string {
	return c.baseURL + "/servers/" + url.PathEscape(name)
}
