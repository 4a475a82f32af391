// Package env defines the environment and session capabilities the runner
// schedules: a synchronous Environment, the non-blocking Session handle that
// wraps one, and the terminal-code domain shared by both.
package env

import (
	"errors"
	"fmt"
)

// Terminal classifies why (or whether) an episode step ended.
type Terminal int

const (
	// TerminalInitial marks the observation produced by a reset: the initial
	// state of a fresh episode, with no reward attached.
	TerminalInitial Terminal = -1
	// TerminalContinue marks a mid-episode step.
	TerminalContinue Terminal = 0
	// TerminalNatural marks an episode ended by the environment's own logic.
	TerminalNatural Terminal = 1
	// TerminalForced marks an episode cut short by the runner because a
	// global stopping condition was reached mid-episode. The reward is still
	// attached and must be recorded.
	TerminalForced Terminal = 2
)

// Ended reports whether the code closes the current episode.
func (t Terminal) Ended() bool { return t >= TerminalNatural }

func (t Terminal) String() string {
	switch t {
	case TerminalInitial:
		return "initial"
	case TerminalContinue:
		return "continue"
	case TerminalNatural:
		return "natural-end"
	case TerminalForced:
		return "forced-end"
	default:
		return fmt.Sprintf("terminal(%d)", int(t))
	}
}

// State is an environment state vector.
type State = []float64

// Action is an agent action vector.
type Action = []float64

// Observation is one result produced by a session: the state reached, the
// terminal classification, and the reward earned by the step that produced it.
// Reset observations carry TerminalInitial and a zero reward.
type Observation struct {
	State    State
	Terminal Terminal
	Reward   float64
}

// Spec describes the state and action interface of an environment. Fleets of
// sessions driven by one agent must be homogeneous: equal Specs throughout.
type Spec struct {
	StateDim   int
	NumActions int
}

// Equal reports whether two specs describe the same interface.
func (s Spec) Equal(other Spec) bool {
	return s.StateDim == other.StateDim && s.NumActions == other.NumActions
}

// Environment is a synchronous simulated environment. Execute blocks until the
// step result is available; Session adapters provide the non-blocking contract
// the runner needs.
type Environment interface {
	Spec() Spec
	Reset() (State, error)
	Execute(action Action) (State, Terminal, float64, error)
	Close() error
}

// ErrProtocol indicates a session handle contract violation: a second start
// submitted while a result is outstanding, or a poll with nothing submitted.
var ErrProtocol = errors.New("env: session protocol violation")

// Session is a non-blocking handle on one environment instance. StartReset and
// StartExecute submit work; Poll returns the single pending result exactly
// once, or ready=false without side effect while the result is not available.
// At most one reset or execute may be outstanding at a time.
type Session interface {
	StartReset() error
	StartExecute(action Action) error
	Poll() (obs Observation, ready bool, err error)
	Close() error
}
