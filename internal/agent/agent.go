// Package agent defines the decision-making capability the runner drives.
// The runner never inspects an agent's internals: it hands over states,
// collects actions, reports step outcomes, and asks for snapshots.
package agent

import (
	"github.com/kbathgate/stride/internal/env"
)

// Agent is the decision-making capability. Act and Observe accept batches so
// a single call can cover several sessions at once (joint agent calls); the
// runner passes single-element slices otherwise. The sessions slice carries
// the training-session indices the batch entries belong to.
type Agent interface {
	// Act returns one action per state. With evaluation set the agent must
	// act without recording the step for learning.
	Act(states []env.State, sessions []int, evaluation bool) ([]env.Action, error)

	// Observe reports step outcomes for the given sessions. It returns
	// whether the observation triggered an internal update.
	Observe(terminals []env.Terminal, rewards []float64, sessions []int) (updated bool, err error)

	// Reset clears episode-scoped internal state. With evaluation set only
	// the evaluation-mode state is cleared.
	Reset(evaluation bool) error

	// Save persists a snapshot of the agent under dir with the given name,
	// overwriting any previous snapshot of that name.
	Save(dir, name string) error

	Close() error
}
