package agent

import (
	"fmt"
	"math/rand"

	"github.com/kbathgate/stride/internal/env"
)

// Greedy is an epsilon-greedy action-value agent over discrete actions. It
// tracks a running mean reward per action, ignoring state, which is enough to
// solve the corridor demo and to exercise the runner's update counting.
type Greedy struct {
	spec    env.Spec
	rng     *rand.Rand
	epsilon float64

	values []float64
	counts []int

	// Last action submitted per training session, so Observe can credit the
	// reward to the action that earned it.
	lastAction map[int]int
	observed   int
	// UpdateEvery controls how often Observe reports an internal update.
	UpdateEvery int
}

// NewGreedy creates a Greedy agent with the given exploration rate.
func NewGreedy(spec env.Spec, epsilon float64, seed int64) *Greedy {
	return &Greedy{
		spec:        spec,
		rng:         rand.New(rand.NewSource(seed)),
		epsilon:     epsilon,
		values:      make([]float64, spec.NumActions),
		counts:      make([]int, spec.NumActions),
		lastAction:  make(map[int]int),
		UpdateEvery: 1,
	}
}

func (a *Greedy) Act(states []env.State, sessions []int, evaluation bool) ([]env.Action, error) {
	// Evaluation acts carry no session indices and leave no bookkeeping.
	if !evaluation && len(sessions) != len(states) {
		return nil, fmt.Errorf("got %d states for %d sessions", len(states), len(sessions))
	}
	actions := make([]env.Action, len(states))
	for i := range states {
		choice := a.argmax()
		if !evaluation && a.rng.Float64() < a.epsilon {
			choice = a.rng.Intn(a.spec.NumActions)
		}
		if !evaluation {
			a.lastAction[sessions[i]] = choice
		}
		actions[i] = env.Action{float64(choice)}
	}
	return actions, nil
}

func (a *Greedy) Observe(terminals []env.Terminal, rewards []float64, sessions []int) (bool, error) {
	for i, session := range sessions {
		choice, ok := a.lastAction[session]
		if !ok {
			return false, fmt.Errorf("observe for session %d without a preceding act", session)
		}
		a.counts[choice]++
		a.values[choice] += (rewards[i] - a.values[choice]) / float64(a.counts[choice])
		a.observed++
	}
	if a.UpdateEvery <= 0 {
		return false, nil
	}
	return a.observed%a.UpdateEvery == 0, nil
}

func (a *Greedy) Reset(evaluation bool) error {
	if !evaluation {
		a.lastAction = make(map[int]int)
	}
	return nil
}

func (a *Greedy) Save(dir, name string) error {
	return writeSnapshot(dir, name, map[string]any{
		"kind":    "greedy",
		"epsilon": a.epsilon,
		"values":  a.values,
		"counts":  a.counts,
	})
}

func (a *Greedy) Close() error { return nil }

func (a *Greedy) argmax() int {
	best := 0
	for i, v := range a.values {
		if v > a.values[best] {
			best = i
		}
	}
	return best
}
