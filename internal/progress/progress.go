// Package progress renders run progress. The runner reports through the
// Observer capability at episode and timestep completion; rendering stays
// out of the scheduling loop.
package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Snapshot is the runner's view of progress at a reporting point. Means are
// computed over the configured horizon of most recent episodes.
type Snapshot struct {
	Episodes         int
	Timesteps        int
	Updates          int
	MeanReward       float64
	MeanTimesteps    float64
	MeanSeconds      float64
	MeanAgentSeconds float64
}

// Observer receives progress notifications from the runner.
type Observer interface {
	// EpisodeCompleted is called after each completed training episode.
	EpisodeCompleted(s Snapshot)
	// TimestepCompleted is called after each training timestep.
	TimestepCompleted(s Snapshot)
}

// Noop is an Observer that does nothing.
type Noop struct{}

func (Noop) EpisodeCompleted(Snapshot)  {}
func (Noop) TimestepCompleted(Snapshot) {}

// Console writes a progress line per completed episode. When TotalEpisodes
// is zero it reports timesteps against TotalTimesteps instead.
type Console struct {
	W              io.Writer
	TotalEpisodes  int
	TotalTimesteps int
}

func (c *Console) EpisodeCompleted(s Snapshot) {
	if c.TotalEpisodes <= 0 {
		return
	}
	fmt.Fprintln(c.W, FormatEpisodeProgress(s, c.TotalEpisodes))
}

func (c *Console) TimestepCompleted(s Snapshot) {
	if c.TotalEpisodes > 0 || c.TotalTimesteps <= 0 {
		return
	}
	fmt.Fprintf(c.W, "Timesteps %d/%d\n", s.Timesteps, c.TotalTimesteps)
}

// FormatEpisodeProgress returns a single-line progress string for display.
func FormatEpisodeProgress(s Snapshot, total int) string {
	msPerTs := 0.0
	if s.MeanTimesteps > 0 {
		msPerTs = s.MeanSeconds * 1000.0 / s.MeanTimesteps
	}
	agentPct := 0.0
	if s.MeanSeconds > 0 {
		agentPct = s.MeanAgentSeconds * 100.0 / s.MeanSeconds
	}
	return fmt.Sprintf("Episodes %d/%d | reward=%.2f | ts/ep=%.0f | sec/ep=%.2f | ms/ts=%.1f | agent=%.1f%%",
		s.Episodes, total, s.MeanReward, s.MeanTimesteps, s.MeanSeconds, msPerTs, agentPct)
}

// RunSummary holds the final report for a run.
type RunSummary struct {
	RunID          string
	Episodes       int
	Timesteps      int
	Updates        int
	MeanReward     float64
	Duration       time.Duration
	EvalEpisodes   int
	EvalMeanReward float64
	BestScore      *float64
}

// FormatRunSummary returns a multi-line end-of-run summary.
func FormatRunSummary(rs RunSummary) string {
	var b strings.Builder
	b.WriteString("\n=== Run Summary ===\n")
	if rs.RunID != "" {
		b.WriteString(fmt.Sprintf("Run:        %s\n", rs.RunID))
	}
	b.WriteString(fmt.Sprintf("Duration:   %v\n", rs.Duration.Truncate(time.Millisecond)))
	b.WriteString(fmt.Sprintf("Episodes:   %d\n", rs.Episodes))
	b.WriteString(fmt.Sprintf("Timesteps:  %d\n", rs.Timesteps))
	b.WriteString(fmt.Sprintf("Updates:    %d\n", rs.Updates))
	b.WriteString(fmt.Sprintf("Reward:     %.3f (mean/episode)\n", rs.MeanReward))
	if rs.EvalEpisodes > 0 {
		b.WriteString("\nEvaluation:\n")
		b.WriteString(fmt.Sprintf("  Episodes: %d\n", rs.EvalEpisodes))
		b.WriteString(fmt.Sprintf("  Reward:   %.3f (mean/episode)\n", rs.EvalMeanReward))
		if rs.BestScore != nil {
			b.WriteString(fmt.Sprintf("  Best:     %.3f\n", *rs.BestScore))
		}
	}
	b.WriteString("===================\n")
	return b.String()
}
