package runner

import (
	"fmt"

	"github.com/kbathgate/stride/internal/env"
)

// scriptedSession plays back a fixed schedule of episodes. Each episode is a
// list of per-step rewards; the last step of an episode carries a natural
// terminal. After the script is exhausted the final episode repeats.
type scriptedSession struct {
	episodes [][]float64

	episode int
	step    int
	pending bool
	obs     env.Observation

	resets   int
	executes int
}

func newScriptedSession(episodes ...[]float64) *scriptedSession {
	return &scriptedSession{episodes: episodes}
}

func (s *scriptedSession) script() []float64 {
	if s.episode < len(s.episodes) {
		return s.episodes[s.episode]
	}
	return s.episodes[len(s.episodes)-1]
}

func (s *scriptedSession) StartReset() error {
	s.step = 0
	s.resets++
	s.obs = env.Observation{State: env.State{0}, Terminal: env.TerminalInitial}
	s.pending = true
	return nil
}

func (s *scriptedSession) StartExecute(action env.Action) error {
	if s.pending {
		return fmt.Errorf("execute submitted with result outstanding: %w", env.ErrProtocol)
	}
	rewards := s.script()
	reward := rewards[s.step]
	s.step++
	s.executes++

	terminal := env.TerminalContinue
	if s.step >= len(rewards) {
		terminal = env.TerminalNatural
		s.episode++
	}
	s.obs = env.Observation{State: env.State{float64(s.step)}, Terminal: terminal, Reward: reward}
	s.pending = true
	return nil
}

func (s *scriptedSession) Poll() (env.Observation, bool, error) {
	if !s.pending {
		return env.Observation{}, false, nil
	}
	s.pending = false
	return s.obs, true, nil
}

func (s *scriptedSession) Close() error { return nil }

// recordingAgent returns a fixed action and records every call it receives.
type recordingAgent struct {
	actBatches     []int
	evalActs       int
	observeBatches []int
	resets         int
	evalResets     int
	saves          []string
	closed         bool

	// updateEvery makes every Nth observe call report an update; zero means
	// never.
	updateEvery int
	observes    int
}

func (a *recordingAgent) Act(states []env.State, sessions []int, evaluation bool) ([]env.Action, error) {
	if evaluation {
		a.evalActs++
	} else {
		a.actBatches = append(a.actBatches, len(states))
	}
	actions := make([]env.Action, len(states))
	for i := range actions {
		actions[i] = env.Action{0}
	}
	return actions, nil
}

func (a *recordingAgent) Observe(terminals []env.Terminal, rewards []float64, sessions []int) (bool, error) {
	a.observeBatches = append(a.observeBatches, len(sessions))
	a.observes++
	if a.updateEvery > 0 && a.observes%a.updateEvery == 0 {
		return true, nil
	}
	return false, nil
}

func (a *recordingAgent) Reset(evaluation bool) error {
	if evaluation {
		a.evalResets++
	} else {
		a.resets++
	}
	return nil
}

func (a *recordingAgent) Save(dir, name string) error {
	a.saves = append(a.saves, dir+"/"+name)
	return nil
}

func (a *recordingAgent) Close() error {
	a.closed = true
	return nil
}
