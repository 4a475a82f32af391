package runner

import (
	"fmt"
	"runtime"
	"time"

	"github.com/kbathgate/stride/internal/env"
	"github.com/kbathgate/stride/internal/stats"
)

// Run drives the interaction loop until a stopping ceiling is reached or a
// callback requests a stop. Counters and ledgers reset at the start of each
// call; a runner may be run multiple times in sequence.
func (r *Runner) Run(opts RunOptions) error {
	if err := opts.validate(r); err != nil {
		return err
	}
	opts = opts.normalized()
	r.opts = &opts
	r.gate = newCallbackGate(opts)
	r.startTime = time.Now()
	r.training = stats.Ledger{}
	r.evaluation = stats.Ledger{}
	r.bestScore = nil

	// Clears any episode state left over if the agent was previously
	// stopped mid-episode.
	if err := r.agent.Reset(false); err != nil {
		return fmt.Errorf("agent reset: %w", err)
	}

	rs := newRunState(len(r.sessions), len(r.conns))
	r.run = rs

	for n, conn := range r.conns {
		if err := conn.session.StartReset(); err != nil {
			return fmt.Errorf("session %d reset: %w", n, err)
		}
		rs.inFlight[n] = true
	}

	for !rs.finished {
		if err := r.iterate(rs); err != nil {
			return err
		}
	}

	// Consume in-flight results so no submitted step is abandoned. Episodes
	// cut short here are recorded with a forced-end terminal.
	if err := r.drain(rs); err != nil {
		return err
	}

	return r.saveRecord(rs, true)
}

func (r *Runner) iterate(rs *runState) error {
	if r.opts.JointAgentCalls {
		if err := r.collectJoint(rs); err != nil {
			return err
		}
		if err := r.observeJoint(rs); err != nil {
			return err
		}
		if err := r.actJoint(rs); err != nil {
			return err
		}
	}

	copy(rs.terminals, rs.prevTerminals)
	noneReady := true

	for n, conn := range r.conns {
		// A session whose episode already ended waits at the barrier.
		if r.opts.SyncEpisodes && rs.prevTerminals[n].Ended() {
			continue
		}

		var obs env.Observation
		switch {
		case r.opts.JointAgentCalls:
			obs = rs.collected[n]
		case r.opts.SyncTimesteps:
			o, err := r.await(n, conn.session)
			if err != nil {
				return err
			}
			obs = o
		default:
			o, ready, err := conn.session.Poll()
			if err != nil {
				return fmt.Errorf("session %d poll: %w", n, err)
			}
			if !ready {
				continue
			}
			obs = o
		}
		noneReady = false

		if err := r.dispatch(rs, n, obs); err != nil {
			return err
		}
	}

	if r.opts.SyncEpisodes && rs.allEnded() {
		if !rs.finished {
			// Barrier reached: every session restarts together.
			for n, conn := range r.conns {
				if err := conn.session.StartReset(); err != nil {
					return fmt.Errorf("session %d reset: %w", n, err)
				}
				rs.inFlight[n] = true
			}
			rs.clearBarrier()
		} else {
			copy(rs.prevTerminals, rs.terminals)
		}
	} else {
		copy(rs.prevTerminals, rs.terminals)
	}

	if !r.opts.SyncTimesteps && noneReady {
		time.Sleep(r.opts.Sleep)
	}
	return nil
}

// await busy-polls one session until its pending result is ready.
func (r *Runner) await(n int, s env.Session) (env.Observation, error) {
	for {
		obs, ready, err := s.Poll()
		if err != nil {
			return env.Observation{}, fmt.Errorf("session %d poll: %w", n, err)
		}
		if ready {
			return obs, nil
		}
		runtime.Gosched()
	}
}

// collectJoint gathers one pending observation per connection, synthesizing
// a placeholder for sessions held at the episode barrier.
func (r *Runner) collectJoint(rs *runState) error {
	for n, conn := range r.conns {
		if r.opts.SyncEpisodes && rs.prevTerminals[n].Ended() {
			rs.collected[n] = env.Observation{Terminal: rs.prevTerminals[n]}
			continue
		}
		obs, err := r.await(n, conn.session)
		if err != nil {
			return err
		}
		rs.collected[n] = obs
	}
	return nil
}

// observeJoint reports all step results of this iteration to the agent in a
// single call. Evaluation observations are excluded; the evaluation session
// never feeds the agent's learning path.
func (r *Runner) observeJoint(rs *runState) error {
	var (
		terminals []env.Terminal
		rewards   []float64
		indices   []int
	)
	for n, conn := range r.conns {
		if conn.role.evaluation {
			continue
		}
		if r.opts.SyncEpisodes && rs.prevTerminals[n].Ended() {
			continue
		}
		obs := rs.collected[n]
		if obs.Terminal == env.TerminalInitial {
			continue
		}
		code := obs.Terminal
		if rs.finished && code == env.TerminalContinue {
			code = env.TerminalForced
			rs.collected[n].Terminal = code
		}
		terminals = append(terminals, code)
		rewards = append(rewards, obs.Reward)
		indices = append(indices, conn.role.index)
	}
	if len(indices) == 0 {
		return nil
	}

	start := time.Now()
	updated, err := r.agent.Observe(terminals, rewards, indices)
	if err != nil {
		return fmt.Errorf("agent observe: %w", err)
	}
	r.creditAgentTime(rs, indices, time.Since(start))

	if updated {
		r.countUpdate(rs)
	}
	return nil
}

// actJoint computes actions for all sessions not yet terminal in a single
// agent call. The per-session act handler submits them.
func (r *Runner) actJoint(rs *runState) error {
	var (
		states  []env.State
		indices []int
	)
	for n, conn := range r.conns {
		if conn.role.evaluation {
			continue
		}
		if r.opts.SyncEpisodes && rs.prevTerminals[n].Ended() {
			continue
		}
		obs := rs.collected[n]
		if obs.Terminal.Ended() {
			continue
		}
		states = append(states, obs.State)
		indices = append(indices, conn.role.index)
	}
	if len(indices) == 0 {
		return nil
	}

	start := time.Now()
	actions, err := r.agent.Act(states, indices, false)
	if err != nil {
		return fmt.Errorf("agent act: %w", err)
	}
	if len(actions) != len(indices) {
		return fmt.Errorf("agent returned %d actions for %d sessions: %w",
			len(actions), len(indices), ErrProtocolViolation)
	}
	r.creditAgentTime(rs, indices, time.Since(start))

	for i, idx := range indices {
		rs.actions[idx] = actions[i]
	}
	return nil
}

// creditAgentTime splits a joint call's duration evenly across the sessions
// in the batch so per-episode agent-time accounting holds in every mode.
func (r *Runner) creditAgentTime(rs *runState, indices []int, d time.Duration) {
	share := d.Seconds() / float64(len(indices))
	for _, idx := range indices {
		rs.accums[idx].agentSeconds += share
	}
}

// drain consumes results still in flight after the run finished. Reset
// results are discarded; step results are observed and their episodes are
// completed with a forced-end terminal.
func (r *Runner) drain(rs *runState) error {
	for n, conn := range r.conns {
		if !rs.inFlight[n] {
			continue
		}
		obs, err := r.await(n, conn.session)
		if err != nil {
			return err
		}
		rs.inFlight[n] = false
		if obs.Terminal == env.TerminalInitial {
			continue
		}
		if err := r.dispatch(rs, n, obs); err != nil {
			return err
		}
	}
	return nil
}
