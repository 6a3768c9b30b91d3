package dnsprobe

import "errors"

var (
	// ErrNoReachableServer is returned when no cluster DNS server answers
	ErrNoReachableServer = errors.New("no reachable cluster dns server")
)
