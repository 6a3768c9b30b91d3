package cmd

import "errors"

var (
	// ErrOrchestratorAddressRequired is returned when the orchestrator control channel address is missing
	ErrOrchestratorAddressRequired = errors.New("orchestrator address is required and cannot be empty")
	// ErrLBAPIAddressRequired is returned when the load balancer control api address is missing
	ErrLBAPIAddressRequired = errors.New("load balancer api address is required and cannot be empty")
)
