package state

import (
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())

	best := 8.25
	record := &RunRecord{
		RunID:        "run-test",
		StartTime:    time.Now().Add(-time.Minute),
		Timesteps:    500,
		Episodes:     42,
		Updates:      7,
		EvalEpisodes: 5,
		BestScore:    &best,
		Finished:     true,
	}
	if err := m.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.RunID != "run-test" {
		t.Errorf("run id = %q, want run-test", loaded.RunID)
	}
	if loaded.Episodes != 42 || loaded.Timesteps != 500 || loaded.Updates != 7 {
		t.Errorf("counters = (%d, %d, %d), want (42, 500, 7)",
			loaded.Episodes, loaded.Timesteps, loaded.Updates)
	}
	if loaded.BestScore == nil || *loaded.BestScore != 8.25 {
		t.Errorf("best score = %v, want 8.25", loaded.BestScore)
	}
	if !loaded.Finished {
		t.Error("finished flag lost")
	}
	if loaded.LastSave.IsZero() {
		t.Error("last save timestamp not set")
	}
}

func TestSaveOverwrites(t *testing.T) {
	m := NewManager(t.TempDir())

	if err := m.Save(&RunRecord{RunID: "a", Episodes: 1}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := m.Save(&RunRecord{RunID: "a", Episodes: 2}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Episodes != 2 {
		t.Errorf("episodes = %d, want 2 (latest record)", loaded.Episodes)
	}
}

func TestExistsAndRemove(t *testing.T) {
	m := NewManager(t.TempDir())

	if m.Exists() {
		t.Error("Exists true before any save")
	}
	if err := m.Save(&RunRecord{RunID: "a"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !m.Exists() {
		t.Error("Exists false after save")
	}
	if err := m.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if m.Exists() {
		t.Error("Exists true after remove")
	}
	// Removing again is not an error.
	if err := m.Remove(); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Load(); err == nil {
		t.Error("Load on missing record succeeded")
	}
}
