package env

import (
	"fmt"
)

// BufferedSession adapts a synchronous Environment to the Session contract.
// Start calls run the environment inline and buffer the result, so Poll is
// always ready immediately after a start. Suitable for cheap in-process
// environments; use AsyncSession when a step is slow enough to overlap.
type BufferedSession struct {
	env     Environment
	pending bool
	obs     Observation
	err     error
}

// NewBufferedSession wraps env in a BufferedSession.
func NewBufferedSession(env Environment) *BufferedSession {
	return &BufferedSession{env: env}
}

func (s *BufferedSession) StartReset() error {
	// A reset discards any in-flight action result.
	state, err := s.env.Reset()
	s.obs = Observation{State: state, Terminal: TerminalInitial}
	s.err = err
	s.pending = true
	return nil
}

func (s *BufferedSession) StartExecute(action Action) error {
	if s.pending {
		return fmt.Errorf("execute submitted with result outstanding: %w", ErrProtocol)
	}
	state, terminal, reward, err := s.env.Execute(action)
	s.obs = Observation{State: state, Terminal: terminal, Reward: reward}
	s.err = err
	s.pending = true
	return nil
}

func (s *BufferedSession) Poll() (Observation, bool, error) {
	if !s.pending {
		return Observation{}, false, nil
	}
	s.pending = false
	return s.obs, true, s.err
}

func (s *BufferedSession) Close() error {
	return s.env.Close()
}

type request struct {
	reset  bool
	action Action
}

type result struct {
	obs Observation
	err error
}

// AsyncSession runs an Environment on its own goroutine so the runner can
// overlap steps across sessions. Poll never blocks: it reports not-ready
// until the worker has produced the result for the outstanding request.
type AsyncSession struct {
	requests chan request
	results  chan result
	done     chan struct{}
	env      Environment
	pending  bool
	discard  int
}

// NewAsyncSession wraps env and starts its worker goroutine.
func NewAsyncSession(env Environment) *AsyncSession {
	s := &AsyncSession{
		// Capacity 2: one request in flight at the worker plus one queued
		// reset that superseded it.
		requests: make(chan request, 2),
		results:  make(chan result, 2),
		done:     make(chan struct{}),
		env:      env,
	}
	go s.work()
	return s
}

func (s *AsyncSession) work() {
	defer close(s.done)
	for req := range s.requests {
		if req.reset {
			state, err := s.env.Reset()
			s.results <- result{obs: Observation{State: state, Terminal: TerminalInitial}, err: err}
			continue
		}
		state, terminal, reward, err := s.env.Execute(req.action)
		s.results <- result{obs: Observation{State: state, Terminal: terminal, Reward: reward}, err: err}
	}
}

func (s *AsyncSession) StartReset() error {
	if s.pending {
		// The reset supersedes the in-flight request; its result is dropped
		// when it eventually arrives.
		s.discard++
	}
	s.requests <- request{reset: true}
	s.pending = true
	return nil
}

func (s *AsyncSession) StartExecute(action Action) error {
	if s.pending {
		return fmt.Errorf("execute submitted with result outstanding: %w", ErrProtocol)
	}
	s.requests <- request{action: action}
	s.pending = true
	return nil
}

func (s *AsyncSession) Poll() (Observation, bool, error) {
	for {
		select {
		case res := <-s.results:
			if s.discard > 0 {
				s.discard--
				continue
			}
			s.pending = false
			return res.obs, true, res.err
		default:
			return Observation{}, false, nil
		}
	}
}

// Close stops the worker and closes the underlying environment.
func (s *AsyncSession) Close() error {
	close(s.requests)
	<-s.done
	return s.env.Close()
}

// ValidateFleet checks that every session environment spec matches the first.
// Fleets driven by one agent must be homogeneous.
func ValidateFleet(specs []Spec) error {
	if len(specs) == 0 {
		return nil
	}
	first := specs[0]
	for i, spec := range specs[1:] {
		if !spec.Equal(first) {
			return fmt.Errorf("session %d spec %+v differs from session 0 spec %+v: %w",
				i+1, spec, first, ErrProtocol)
		}
	}
	return nil
}
