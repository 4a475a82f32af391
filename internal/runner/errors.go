package runner

import (
	"errors"

	"github.com/kbathgate/stride/internal/env"
)

var (
	// ErrInvalidConfiguration indicates mutually exclusive or malformed run
	// options. Raised before the loop starts, never retried.
	ErrInvalidConfiguration = errors.New("runner: invalid configuration")

	// ErrProtocolViolation indicates a session broke the handle contract
	// (double-submitted work, mismatched fleet specs). Fatal to the run.
	// Aliases the env-level sentinel so errors.Is matches at either layer.
	ErrProtocolViolation = env.ErrProtocol
)
