package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Event is one decoded message from the event stream.
type Event struct {
	Kind    string   `json:"kind"`
	Changes []Change `json:"changes"`
}

// Change is one change record inside an event.
type Change struct {
	Path  []string        `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// HasValue reports whether the record carries a value. A record without one
// marks a deletion.
func (c Change) HasValue() bool {
	return c.Value != nil
}

// OpenEvents switches a dedicated connection into the continuous event
// stream. An already open stream is closed first.
func (c *Client) OpenEvents(ctx context.Context) error {
	if c.stream != nil {
		_ = c.CloseEvents()
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(c.requestTimeout)); err != nil {
		conn.Close()
		return err
	}

	if err := writeMessage(conn, envelope{Action: actionEvents}); err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrSourceReset, err)
	}

	c.stream = conn
	c.buf = nil

	c.logger.Debugw("event stream open", "address", c.addr)

	return nil
}

// NextEvents performs one bounded receive on the event stream and returns
// every complete message accumulated so far. A receive that times out yields
// an empty batch; a receive that yields no bytes means the source went away
// and returns ErrSourceReset.
func (c *Client) NextEvents(ctx context.Context) ([]Event, error) {
	if c.stream == nil {
		return nil, ErrStreamNotOpen
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.receiveTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.stream.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	chunk := make([]byte, 4096)

	n, err := c.stream.Read(chunk)
	if n > 0 {
		c.buf = append(c.buf, chunk[:n]...)
	}

	switch {
	case err == nil:
	case errors.Is(err, os.ErrDeadlineExceeded):
		// nothing more to read this round, hand out what we have
	default:
		return nil, fmt.Errorf("%w: %v", ErrSourceReset, err)
	}

	return c.drainMessages()
}

// CloseEvents closes the event stream connection if one is open.
func (c *Client) CloseEvents() error {
	if c.stream == nil {
		return nil
	}

	err := c.stream.Close()
	c.stream = nil
	c.buf = nil

	return err
}

// drainMessages decodes every terminated message sitting in the stream buffer.
func (c *Client) drainMessages() ([]Event, error) {
	var events []Event

	for {
		i := bytes.IndexByte(c.buf, terminator)
		if i < 0 {
			return events, nil
		}

		raw := c.buf[:i]
		c.buf = c.buf[i+1:]

		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return events, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}

		events = append(events, ev)
	}
}
