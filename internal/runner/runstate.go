package runner

import (
	"time"

	"github.com/kbathgate/stride/internal/env"
)

// episodeAccum tracks one session's in-progress episode: reward sum, step
// count, start time, and agent compute time. Reset on episode boundary.
type episodeAccum struct {
	reward       float64
	timesteps    int
	start        time.Time
	agentSeconds float64
}

func (a *episodeAccum) reset() {
	*a = episodeAccum{start: time.Now()}
}

// runState is the mutable state of one Run call: counters, per-connection
// terminal tracking, and per-session episode accumulators. It is threaded
// explicitly through the loop handlers; the Runner is its only mutator.
type runState struct {
	timesteps int
	episodes  int
	updates   int
	finished  bool

	// Per connection, training sessions first, evaluation session last.
	prevTerminals []env.Terminal
	terminals     []env.Terminal
	collected     []env.Observation
	inFlight      []bool

	// Joint-call scratch: one action per training session.
	actions []env.Action

	accums    []episodeAccum
	evalAccum episodeAccum
}

func newRunState(numSessions, numConns int) *runState {
	rs := &runState{
		prevTerminals: make([]env.Terminal, numConns),
		terminals:     make([]env.Terminal, numConns),
		collected:     make([]env.Observation, numConns),
		inFlight:      make([]bool, numConns),
		actions:       make([]env.Action, numSessions),
		accums:        make([]episodeAccum, numSessions),
	}
	now := time.Now()
	for i := range rs.prevTerminals {
		rs.prevTerminals[i] = env.TerminalInitial
		rs.terminals[i] = env.TerminalInitial
	}
	for i := range rs.accums {
		rs.accums[i].start = now
	}
	rs.evalAccum.start = now
	return rs
}

// allEnded reports whether every connection's last known terminal closes its
// episode: the episode-sync barrier condition.
func (rs *runState) allEnded() bool {
	for _, t := range rs.terminals {
		if !t.Ended() {
			return false
		}
	}
	return true
}

// clearBarrier rearms terminal tracking after a group reset.
func (rs *runState) clearBarrier() {
	for i := range rs.prevTerminals {
		rs.prevTerminals[i] = env.TerminalContinue
		rs.terminals[i] = env.TerminalContinue
	}
}
