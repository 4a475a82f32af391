package main

import (
	"strings"
	"testing"

	"github.com/kbathgate/stride/internal/state"
)

func TestFormatPriorRun(t *testing.T) {
	best := 4.5
	got := formatPriorRun(&state.RunRecord{
		RunID:     "run-9",
		Episodes:  12,
		Timesteps: 240,
		BestScore: &best,
		Finished:  true,
	})
	for _, want := range []string{"run-9", "finished", "12 episodes", "240 timesteps", "4.500"} {
		if !strings.Contains(got, want) {
			t.Errorf("prior-run line %q missing %q", got, want)
		}
	}
}

func TestFormatPriorRunInterrupted(t *testing.T) {
	got := formatPriorRun(&state.RunRecord{RunID: "run-10", Episodes: 3})
	if !strings.Contains(got, "interrupted") {
		t.Errorf("prior-run line %q, want interrupted status", got)
	}
	if strings.Contains(got, "best score") {
		t.Errorf("prior-run line %q reports a best score with none recorded", got)
	}
}
