package orchestrator

import "errors"

var (
	// ErrInvalidAddress is returned when the control channel address cannot be parsed
	ErrInvalidAddress = errors.New("invalid orchestrator address")

	// ErrSourceReset is returned when the control channel goes away mid-use;
	// callers reconnect and resync from scratch
	ErrSourceReset = errors.New("orchestrator source reset")

	// ErrRequestFailed is returned when the orchestrator answers with a non-zero status
	ErrRequestFailed = errors.New("orchestrator request failed")

	// ErrResponseInvalid is returned when a control channel message cannot be decoded
	ErrResponseInvalid = errors.New("orchestrator response is invalid")

	// ErrStreamNotOpen is returned when reading events before OpenEvents
	ErrStreamNotOpen = errors.New("event stream is not open")
)
