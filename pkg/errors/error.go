// package errors contains domain errors that different layers can use to add
// meaning to an error and that entry points can transform to an exit code or
// an HTTP status. This is implemented as a separate package in order to avoid
// cycle import errors.
package errors

import (
	"errors"
	"fmt"
)

// The following errors serve as domain errors that can be used by the
// different layers. The CLI and HTTP entry points intercept these and convert
// them to the relevant exit codes / HTTP codes.
var (
	// ErrInvalidArgument is used when the provided argument is incorrect (e.g.
	// empty prompt, missing credentials).
	ErrInvalidArgument = fmt.Errorf("invalid")
	// ErrContractViolation is used when an injected collaborator returns a
	// value that doesn't expose a required capability, e.g. a client factory
	// that returns no connection able to produce generative models.
	ErrContractViolation = fmt.Errorf("contract violation")
	// ErrUpstream is used when a remote service (model provider, analyzer
	// function) answers with a non-success status or an unreadable body.
	ErrUpstream = fmt.Errorf("upstream failure")
)

// Name returns a short label for the domain error wrapped by err, or "Error"
// when err wraps none of them.
func Name(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return "InvalidArgumentError"
	case errors.Is(err, ErrContractViolation):
		return "ContractViolationError"
	case errors.Is(err, ErrUpstream):
		return "UpstreamError"
	default:
		return "Error"
	}
}
