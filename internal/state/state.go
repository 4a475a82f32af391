// Package state persists the run record for inspection and tooling.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunRecord holds the persistent summary of a run: counters, best evaluation
// score, and timing. It is written on best-score improvement and at run end.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	StartTime    time.Time `json:"start_time"`
	LastSave     time.Time `json:"last_save"`
	Timesteps    int       `json:"timesteps"`
	Episodes     int       `json:"episodes"`
	Updates      int       `json:"updates"`
	EvalEpisodes int       `json:"eval_episodes"`
	BestScore    *float64  `json:"best_score,omitempty"`
	Finished     bool      `json:"finished"`
}

// Manager handles run record persistence.
type Manager struct {
	path string
}

// NewManager creates a Manager writing under stateDir.
func NewManager(stateDir string) *Manager {
	return &Manager{
		path: filepath.Join(stateDir, "run.json"),
	}
}

// Save persists the run record atomically.
func (m *Manager) Save(record *RunRecord) error {
	record.LastSave = time.Now()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "run-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// Load reads the persisted run record.
func (m *Manager) Load() (*RunRecord, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("read run record: %w", err)
	}

	var record RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse run record: %w", err)
	}

	return &record, nil
}

// Exists returns true if a run record file exists.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Remove deletes the run record file.
func (m *Manager) Remove() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove run record: %w", err)
	}
	return nil
}
