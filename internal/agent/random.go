package agent

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/kbathgate/stride/internal/env"
)

// Random picks uniformly random actions. It never learns, so Observe never
// reports an update. Used by the CLI demo and as a baseline in tests.
type Random struct {
	spec env.Spec
	rng  *rand.Rand
}

// NewRandom creates a Random agent for environments matching spec, seeded
// deterministically.
func NewRandom(spec env.Spec, seed int64) *Random {
	return &Random{spec: spec, rng: rand.New(rand.NewSource(seed))}
}

func (a *Random) Act(states []env.State, sessions []int, evaluation bool) ([]env.Action, error) {
	actions := make([]env.Action, len(states))
	for i, state := range states {
		if len(state) != a.spec.StateDim {
			return nil, fmt.Errorf("state dim %d, want %d", len(state), a.spec.StateDim)
		}
		actions[i] = env.Action{float64(a.rng.Intn(a.spec.NumActions))}
	}
	return actions, nil
}

func (a *Random) Observe(terminals []env.Terminal, rewards []float64, sessions []int) (bool, error) {
	return false, nil
}

func (a *Random) Reset(evaluation bool) error { return nil }

// Save writes a snapshot file so save-best flows can be exercised with the
// demo agents. The snapshot records the action interface only.
func (a *Random) Save(dir, name string) error {
	return writeSnapshot(dir, name, map[string]any{
		"kind":        "random",
		"state_dim":   a.spec.StateDim,
		"num_actions": a.spec.NumActions,
	})
}

func (a *Random) Close() error { return nil }

func writeSnapshot(dir, name string, payload map[string]any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	path := filepath.Join(dir, name+".json")
	tmp, err := os.CreateTemp(dir, name+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
