// Package runner schedules episodic interaction between one agent and a
// fleet of sessions: observe, act, observe, until a stopping condition is
// met. Sessions advance cooperatively under one of four synchronization
// disciplines; the runner owns all counters, accumulators, and ledgers.
package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbathgate/stride/internal/agent"
	"github.com/kbathgate/stride/internal/env"
	"github.com/kbathgate/stride/internal/progress"
	"github.com/kbathgate/stride/internal/state"
	"github.com/kbathgate/stride/internal/stats"
)

// sessionRole tags a connection as a training session (with its index) or
// the evaluation session.
type sessionRole struct {
	evaluation bool
	index      int
}

type connection struct {
	session env.Session
	role    sessionRole
}

// Runner drives one agent against one or more sessions, plus an optional
// dedicated evaluation session. Construct with New, run with Run, release
// owned collaborators with Close.
type Runner struct {
	agent       agent.Agent
	sessions    []env.Session
	evalSession env.Session
	conns       []connection

	ownsAgent    bool
	ownsSessions bool

	saveBestDir string
	observer    progress.Observer
	recorder    *state.Manager

	runID     string
	startTime time.Time

	opts *RunOptions
	gate *callbackGate
	run  *runState

	training   stats.Ledger
	evaluation stats.Ledger
	bestScore  *float64
}

// Option configures a Runner at construction.
type Option func(*Runner)

// WithEvaluationSession adds a dedicated evaluation session, visited after
// the training sessions each iteration.
func WithEvaluationSession(s env.Session) Option {
	return func(r *Runner) { r.evalSession = s }
}

// WithSaveBestDir enables best-agent snapshot persistence under dir.
// Requires an evaluation session.
func WithSaveBestDir(dir string) Option {
	return func(r *Runner) { r.saveBestDir = dir }
}

// WithObserver sets the progress observer notified at episode and timestep
// completion.
func WithObserver(o progress.Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithRecorder sets the run record manager, written on best-score
// improvement and at run end.
func WithRecorder(m *state.Manager) Option {
	return func(r *Runner) { r.recorder = m }
}

// WithOwnedAgent marks the agent as runner-owned: Close releases it.
// Externally supplied agents are never released.
func WithOwnedAgent() Option {
	return func(r *Runner) { r.ownsAgent = true }
}

// WithOwnedSessions marks all sessions (including the evaluation session) as
// runner-owned: Close releases them.
func WithOwnedSessions() Option {
	return func(r *Runner) { r.ownsSessions = true }
}

// New creates a Runner over the given training sessions.
func New(a agent.Agent, sessions []env.Session, opts ...Option) (*Runner, error) {
	if a == nil {
		return nil, fmt.Errorf("nil agent: %w", ErrInvalidConfiguration)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("empty session list: %w", ErrInvalidConfiguration)
	}
	for i, s := range sessions {
		if s == nil {
			return nil, fmt.Errorf("nil session at index %d: %w", i, ErrInvalidConfiguration)
		}
	}

	r := &Runner{
		agent:    a,
		sessions: sessions,
		observer: progress.Noop{},
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.saveBestDir != "" && r.evalSession == nil {
		return nil, fmt.Errorf("save-best directory without an evaluation session: %w",
			ErrInvalidConfiguration)
	}

	for i, s := range r.sessions {
		r.conns = append(r.conns, connection{session: s, role: sessionRole{index: i}})
	}
	if r.evalSession != nil {
		r.conns = append(r.conns, connection{session: r.evalSession, role: sessionRole{evaluation: true}})
	}
	return r, nil
}

// Sessions wraps environments in session handles, validating that the fleet
// is homogeneous. With async set each environment runs on its own goroutine.
func Sessions(async bool, envs ...env.Environment) ([]env.Session, error) {
	specs := make([]env.Spec, len(envs))
	for i, e := range envs {
		specs[i] = e.Spec()
	}
	if err := env.ValidateFleet(specs); err != nil {
		return nil, err
	}
	sessions := make([]env.Session, len(envs))
	for i, e := range envs {
		if async {
			sessions[i] = env.NewAsyncSession(e)
		} else {
			sessions[i] = env.NewBufferedSession(e)
		}
	}
	return sessions, nil
}

// RunID returns the unique identifier of this runner's run record.
func (r *Runner) RunID() string { return r.runID }

// Timesteps returns the global timestep counter.
func (r *Runner) Timesteps() int {
	if r.run == nil {
		return 0
	}
	return r.run.timesteps
}

// Episodes returns the completed training episode counter.
func (r *Runner) Episodes() int {
	if r.run == nil {
		return 0
	}
	return r.run.episodes
}

// Updates returns the agent update counter.
func (r *Runner) Updates() int {
	if r.run == nil {
		return 0
	}
	return r.run.updates
}

// Finished reports whether a stopping condition has been reached.
func (r *Runner) Finished() bool {
	return r.run != nil && r.run.finished
}

// Training returns the training episode ledger.
func (r *Runner) Training() *stats.Ledger { return &r.training }

// Evaluation returns the evaluation episode ledger.
func (r *Runner) Evaluation() *stats.Ledger { return &r.evaluation }

// BestScore returns the best evaluation score seen so far, or nil before the
// first evaluation episode completes.
func (r *Runner) BestScore() *float64 {
	if r.bestScore == nil {
		return nil
	}
	score := *r.bestScore
	return &score
}

// Summary returns the end-of-run report.
func (r *Runner) Summary() progress.RunSummary {
	return progress.RunSummary{
		RunID:          r.runID,
		Episodes:       r.Episodes(),
		Timesteps:      r.Timesteps(),
		Updates:        r.Updates(),
		MeanReward:     r.training.MeanReward(0),
		Duration:       time.Since(r.startTime),
		EvalEpisodes:   r.evaluation.Len(),
		EvalMeanReward: r.evaluation.MeanReward(0),
		BestScore:      r.BestScore(),
	}
}

// Close releases runner-owned collaborators. Externally supplied sessions
// and agents are left untouched.
func (r *Runner) Close() error {
	var firstErr error
	if r.ownsSessions {
		for _, conn := range r.conns {
			if err := conn.session.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close session: %w", err)
			}
		}
	}
	if r.ownsAgent {
		if err := r.agent.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close agent: %w", err)
		}
	}
	return firstErr
}

func (r *Runner) snapshot(rs *runState) progress.Snapshot {
	h := r.opts.MeanHorizon
	return progress.Snapshot{
		Episodes:         rs.episodes,
		Timesteps:        rs.timesteps,
		Updates:          rs.updates,
		MeanReward:       r.training.MeanReward(h),
		MeanTimesteps:    r.training.MeanTimesteps(h),
		MeanSeconds:      r.training.MeanSeconds(h),
		MeanAgentSeconds: r.training.MeanAgentSeconds(h),
	}
}

func (r *Runner) saveRecord(rs *runState, finished bool) error {
	if r.recorder == nil {
		return nil
	}
	record := &state.RunRecord{
		RunID:        r.runID,
		StartTime:    r.startTime,
		Timesteps:    rs.timesteps,
		Episodes:     rs.episodes,
		Updates:      rs.updates,
		EvalEpisodes: r.evaluation.Len(),
		BestScore:    r.bestScore,
		Finished:     finished,
	}
	if err := r.recorder.Save(record); err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}
