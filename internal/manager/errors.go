package manager

import (
	"errors"

	"github.com/shiftwave/lbsync/internal/dnsprobe"
)

var (
	// errServiceNotReady is returned when a service is not yet visible in the
	// cluster snapshot or the cluster name is still unknown
	errServiceNotReady = errors.New("service not visible in cluster snapshot yet")

	// errMissingMandatoryFields is returned when a synthesized server config
	// lacks a field the load balancer requires
	errMissingMandatoryFields = errors.New("server config is missing mandatory fields")

	// errPortRangeExhausted is returned when every port of the allocatable
	// range is already bound
	errPortRangeExhausted = errors.New("no free port left in the allocatable range")
)

// skippable reports whether an error only affects the service or server at
// hand. Skippable errors are logged and the current round moves on; anything
// else aborts the session and lets the retry loop reconnect.
func skippable(err error) bool {
	return errors.Is(err, errServiceNotReady) ||
		errors.Is(err, errMissingMandatoryFields) ||
		errors.Is(err, errPortRangeExhausted) ||
		errors.Is(err, dnsprobe.ErrNoReachableServer)
}
