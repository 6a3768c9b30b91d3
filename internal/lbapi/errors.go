package lbapi

import (
	"errors"
	"fmt"
)

var (
	// ErrLBNotReady is returned when the control API fails to answer the status endpoint
	ErrLBNotReady = errors.New("load balancer control api failed to become ready")

	// ErrLBHTTPError is returned when the control API responds with an unexpected http status
	ErrLBHTTPError = errors.New("load balancer control api http error")

	// ErrLBResponseInvalid is returned when a control API response cannot be decoded
	ErrLBResponseInvalid = errors.New("load balancer control api response is invalid")

	// ErrLBServerCreateFailed is returned when a server entry cannot be created
	ErrLBServerCreateFailed = errors.New("failed to create load balancer server entry")

	// ErrLBServerDeleteFailed is returned when a server entry cannot be deleted
	ErrLBServerDeleteFailed = errors.New("failed to delete load balancer server entry")
)

func newHTTPError(err error, statusCode int) error {
	return fmt.Errorf("%w: http status %d", err, statusCode)
}
