package runner

import (
	"fmt"
	"time"
)

// ScoreFunc computes the score of the evaluation episode that just completed.
// It is called after the episode has been recorded in the evaluation ledger
// and before the episode accumulator resets.
type ScoreFunc func(r *Runner) float64

// RunOptions configures one call to Run. Zero ceilings mean unbounded; at
// least one ceiling should be finite or the run only halts through a
// callback.
type RunOptions struct {
	// Stopping ceilings. The run finishes when any counter reaches its
	// ceiling.
	NumEpisodes  int
	NumTimesteps int
	NumUpdates   int

	// JointAgentCalls batches all sessions' pending observations into one
	// act and one observe call per iteration. Implies SyncTimesteps.
	JointAgentCalls bool
	// SyncTimesteps blocks on each session in turn so all sessions advance
	// one step per iteration.
	SyncTimesteps bool
	// SyncEpisodes holds finished sessions idle until every session has
	// reached a terminal state, then resets them together.
	SyncEpisodes bool

	// Sleep is the idle interval when no session was ready (unsynced mode
	// only). Defaults to 10ms.
	Sleep time.Duration

	// Callbacks run through the frequency gate; a callback returning false
	// stops the run gracefully. Exactly one of the two frequencies may be
	// set; when neither is, the gate fires every episode.
	Callbacks              []Callback
	CallbackEveryEpisodes  int
	CallbackEveryTimesteps int

	// EvaluationScore overrides the default evaluation episode score (the
	// episode's total reward). Requires an evaluation session.
	EvaluationScore ScoreFunc

	// MeanHorizon is the number of recent episodes progress means cover.
	// Defaults to 1.
	MeanHorizon int
}

func (o RunOptions) validate(r *Runner) error {
	if o.NumEpisodes < 0 || o.NumTimesteps < 0 || o.NumUpdates < 0 {
		return fmt.Errorf("negative stopping ceiling: %w", ErrInvalidConfiguration)
	}
	if o.CallbackEveryEpisodes < 0 || o.CallbackEveryTimesteps < 0 {
		return fmt.Errorf("negative callback frequency: %w", ErrInvalidConfiguration)
	}
	if o.CallbackEveryEpisodes > 0 && o.CallbackEveryTimesteps > 0 {
		return fmt.Errorf("episode and timestep callback frequencies are mutually exclusive: %w",
			ErrInvalidConfiguration)
	}
	if o.EvaluationScore != nil && r.evalSession == nil {
		return fmt.Errorf("evaluation score function without an evaluation session: %w",
			ErrInvalidConfiguration)
	}
	return nil
}

func (o RunOptions) normalized() RunOptions {
	if o.JointAgentCalls {
		o.SyncTimesteps = true
	}
	if o.Sleep <= 0 {
		o.Sleep = 10 * time.Millisecond
	}
	if o.CallbackEveryEpisodes == 0 && o.CallbackEveryTimesteps == 0 {
		o.CallbackEveryEpisodes = 1
	}
	if o.MeanHorizon <= 0 {
		o.MeanHorizon = 1
	}
	return o
}
