package errors

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestName(t *testing.T) {
	c := qt.New(t)

	testcases := []struct {
		err  error
		want string
	}{
		{err: fmt.Errorf("%w: empty prompt", ErrInvalidArgument), want: "InvalidArgumentError"},
		{err: fmt.Errorf("wrapped: %w", fmt.Errorf("%w: no connection", ErrContractViolation)), want: "ContractViolationError"},
		{err: fmt.Errorf("%w: 500", ErrUpstream), want: "UpstreamError"},
		{err: fmt.Errorf("boom"), want: "Error"},
	}

	for _, tc := range testcases {
		c.Run(tc.want, func(c *qt.C) {
			c.Assert(Name(tc.err), qt.Equals, tc.want)
		})
	}
}
