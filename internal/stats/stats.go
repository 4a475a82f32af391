// Package stats records per-episode statistics as append-only ledgers.
package stats

// Entry is the record of one completed episode.
type Entry struct {
	Reward       float64
	Timesteps    int
	Seconds      float64
	AgentSeconds float64
}

// Ledger keeps four parallel sequences, one value per completed episode, in
// completion order. All four always have equal length.
type Ledger struct {
	Rewards      []float64
	Timesteps    []int
	Seconds      []float64
	AgentSeconds []float64
}

// Append records one completed episode.
func (l *Ledger) Append(e Entry) {
	l.Rewards = append(l.Rewards, e.Reward)
	l.Timesteps = append(l.Timesteps, e.Timesteps)
	l.Seconds = append(l.Seconds, e.Seconds)
	l.AgentSeconds = append(l.AgentSeconds, e.AgentSeconds)
}

// Len returns the number of recorded episodes.
func (l *Ledger) Len() int { return len(l.Rewards) }

// MeanReward returns the mean reward over the last horizon episodes, or 0
// when the ledger is empty. Horizon <= 0 means all episodes.
func (l *Ledger) MeanReward(horizon int) float64 {
	return mean(tail(l.Rewards, horizon))
}

// MeanTimesteps returns the mean timestep count over the last horizon
// episodes.
func (l *Ledger) MeanTimesteps(horizon int) float64 {
	ts := tail(l.Timesteps, horizon)
	if len(ts) == 0 {
		return 0
	}
	sum := 0
	for _, t := range ts {
		sum += t
	}
	return float64(sum) / float64(len(ts))
}

// MeanSeconds returns the mean wall-clock episode duration over the last
// horizon episodes.
func (l *Ledger) MeanSeconds(horizon int) float64 {
	return mean(tail(l.Seconds, horizon))
}

// MeanAgentSeconds returns the mean per-episode agent compute time over the
// last horizon episodes.
func (l *Ledger) MeanAgentSeconds(horizon int) float64 {
	return mean(tail(l.AgentSeconds, horizon))
}

func tail[T any](values []T, horizon int) []T {
	if horizon <= 0 || horizon >= len(values) {
		return values
	}
	return values[len(values)-horizon:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
