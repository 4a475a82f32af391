package runner

import (
	"fmt"
	"time"

	"github.com/kbathgate/stride/internal/env"
	"github.com/kbathgate/stride/internal/stats"
)

// dispatch routes one ready observation through the per-session state
// machine: initial observations go straight to act, step observations are
// observed and then either acted on or complete the episode.
func (r *Runner) dispatch(rs *runState, n int, obs env.Observation) error {
	rs.inFlight[n] = false
	conn := r.conns[n]

	if obs.Terminal == env.TerminalInitial {
		rs.terminals[n] = env.TerminalInitial
		if conn.role.evaluation {
			return r.handleActEval(rs, n, obs.State)
		}
		return r.handleAct(rs, n, obs.State)
	}

	code := obs.Terminal
	if rs.finished && code == env.TerminalContinue {
		// A stopping condition was reached while this step was in flight:
		// the episode is cut short, with its reward still recorded.
		code = env.TerminalForced
	}
	rs.terminals[n] = code

	if conn.role.evaluation {
		if err := r.handleObserveEval(rs, code, obs.Reward); err != nil {
			return err
		}
		if code == env.TerminalContinue {
			return r.handleActEval(rs, n, obs.State)
		}
		return r.handleTerminalEval(rs, n)
	}

	if err := r.handleObserve(rs, n, code, obs.Reward); err != nil {
		return err
	}
	if code == env.TerminalContinue {
		return r.handleAct(rs, n, obs.State)
	}
	return r.handleTerminal(rs, n)
}

// handleAct obtains an action for one training session, submits it, and
// advances the timestep counters and gates.
func (r *Runner) handleAct(rs *runState, n int, st env.State) error {
	conn := r.conns[n]
	idx := conn.role.index

	var action env.Action
	if r.opts.JointAgentCalls {
		action = rs.actions[idx]
	} else {
		start := time.Now()
		actions, err := r.agent.Act([]env.State{st}, []int{idx}, false)
		if err != nil {
			return fmt.Errorf("agent act: %w", err)
		}
		if len(actions) != 1 {
			return fmt.Errorf("agent returned %d actions for 1 session: %w",
				len(actions), ErrProtocolViolation)
		}
		rs.accums[idx].agentSeconds += time.Since(start).Seconds()
		action = actions[0]
	}

	if err := conn.session.StartExecute(action); err != nil {
		return fmt.Errorf("session %d execute: %w", n, err)
	}
	rs.inFlight[n] = true

	rs.timesteps++
	rs.accums[idx].timesteps++
	if r.opts.NumTimesteps > 0 && rs.timesteps >= r.opts.NumTimesteps {
		rs.finished = true
	}
	r.gate.onTimestep(r, rs, idx)
	r.observer.TimestepCompleted(r.snapshot(rs))
	return nil
}

// handleObserve records a step's reward and, outside joint mode, reports it
// to the agent, counting any resulting update.
func (r *Runner) handleObserve(rs *runState, n int, code env.Terminal, reward float64) error {
	idx := r.conns[n].role.index
	rs.accums[idx].reward += reward

	if r.opts.JointAgentCalls {
		// Already reported through the batch observe.
		return nil
	}

	start := time.Now()
	updated, err := r.agent.Observe([]env.Terminal{code}, []float64{reward}, []int{idx})
	if err != nil {
		return fmt.Errorf("agent observe: %w", err)
	}
	rs.accums[idx].agentSeconds += time.Since(start).Seconds()

	if updated {
		r.countUpdate(rs)
	}
	return nil
}

// countUpdate advances the update counter, holding it at the ceiling so an
// update reported by a drained in-flight step cannot push it past the
// increment that finished the run.
func (r *Runner) countUpdate(rs *runState) {
	if r.opts.NumUpdates > 0 && rs.updates >= r.opts.NumUpdates {
		return
	}
	rs.updates++
	if r.opts.NumUpdates > 0 && rs.updates >= r.opts.NumUpdates {
		rs.finished = true
	}
}

// handleTerminal completes a training episode: ledger entry, episode counter
// and gates, accumulator reset, and the next reset unless the run is over or
// the episode barrier defers it.
func (r *Runner) handleTerminal(rs *runState, n int) error {
	conn := r.conns[n]
	idx := conn.role.index
	acc := &rs.accums[idx]

	rs.episodes++
	r.training.Append(stats.Entry{
		Reward:       acc.reward,
		Timesteps:    acc.timesteps,
		Seconds:      time.Since(acc.start).Seconds(),
		AgentSeconds: acc.agentSeconds,
	})

	if r.opts.NumEpisodes > 0 && rs.episodes >= r.opts.NumEpisodes {
		rs.finished = true
	}
	r.gate.onEpisode(r, rs, idx)
	r.observer.EpisodeCompleted(r.snapshot(rs))

	acc.reset()

	if !rs.finished && !r.opts.SyncEpisodes {
		if err := conn.session.StartReset(); err != nil {
			return fmt.Errorf("session %d reset: %w", n, err)
		}
		rs.inFlight[n] = true
	}
	return nil
}

// handleActEval acts in evaluation mode: no learning, no global timestep
// accounting, timing credited to the evaluation accumulator.
func (r *Runner) handleActEval(rs *runState, n int, st env.State) error {
	conn := r.conns[n]

	start := time.Now()
	actions, err := r.agent.Act([]env.State{st}, nil, true)
	if err != nil {
		return fmt.Errorf("agent act (evaluation): %w", err)
	}
	if len(actions) != 1 {
		return fmt.Errorf("agent returned %d actions for evaluation: %w",
			len(actions), ErrProtocolViolation)
	}
	rs.evalAccum.agentSeconds += time.Since(start).Seconds()

	if err := conn.session.StartExecute(actions[0]); err != nil {
		return fmt.Errorf("evaluation session execute: %w", err)
	}
	rs.inFlight[n] = true
	rs.evalAccum.timesteps++
	return nil
}

// handleObserveEval records an evaluation step. The agent is never asked to
// observe evaluation steps; on episode end its evaluation-mode state is
// reset instead.
func (r *Runner) handleObserveEval(rs *runState, code env.Terminal, reward float64) error {
	rs.evalAccum.reward += reward
	if code.Ended() {
		start := time.Now()
		if err := r.agent.Reset(true); err != nil {
			return fmt.Errorf("agent reset (evaluation): %w", err)
		}
		rs.evalAccum.agentSeconds += time.Since(start).Seconds()
	}
	return nil
}

// handleTerminalEval completes an evaluation episode: ledger entry, scoring,
// best-score tracking with snapshot persistence, accumulator reset, and the
// next reset unless deferred.
func (r *Runner) handleTerminalEval(rs *runState, n int) error {
	acc := &rs.evalAccum

	r.evaluation.Append(stats.Entry{
		Reward:       acc.reward,
		Timesteps:    acc.timesteps,
		Seconds:      time.Since(acc.start).Seconds(),
		AgentSeconds: acc.agentSeconds,
	})

	score := acc.reward
	if r.opts.EvaluationScore != nil {
		score = r.opts.EvaluationScore(r)
	}

	if r.bestScore == nil || score > *r.bestScore {
		best := score
		r.bestScore = &best
		if r.saveBestDir != "" {
			if err := r.agent.Save(r.saveBestDir, "best-agent"); err != nil {
				return fmt.Errorf("save best agent: %w", err)
			}
			if err := r.saveRecord(rs, false); err != nil {
				return err
			}
		}
	}

	acc.reset()

	if !rs.finished && !r.opts.SyncEpisodes {
		if err := r.conns[n].session.StartReset(); err != nil {
			return fmt.Errorf("evaluation session reset: %w", err)
		}
		rs.inFlight[n] = true
	}
	return nil
}
