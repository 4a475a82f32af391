package stats

import "testing"

func TestAppendKeepsColumnsAligned(t *testing.T) {
	var l Ledger
	entries := []Entry{
		{Reward: 3, Timesteps: 3, Seconds: 0.3, AgentSeconds: 0.1},
		{Reward: 5, Timesteps: 4, Seconds: 0.4, AgentSeconds: 0.2},
		{Reward: 1, Timesteps: 2, Seconds: 0.1, AgentSeconds: 0.05},
	}
	for i, e := range entries {
		l.Append(e)
		if l.Len() != i+1 {
			t.Fatalf("Len = %d after %d appends", l.Len(), i+1)
		}
		if len(l.Rewards) != len(l.Timesteps) || len(l.Rewards) != len(l.Seconds) ||
			len(l.Rewards) != len(l.AgentSeconds) {
			t.Fatalf("columns misaligned after %d appends", i+1)
		}
	}
	if l.Rewards[1] != 5 || l.Timesteps[1] != 4 {
		t.Errorf("entry 1 = (%v, %v), want (5, 4)", l.Rewards[1], l.Timesteps[1])
	}
}

func TestMeansOverHorizon(t *testing.T) {
	var l Ledger
	l.Append(Entry{Reward: 1, Timesteps: 2, Seconds: 1, AgentSeconds: 0.5})
	l.Append(Entry{Reward: 3, Timesteps: 4, Seconds: 3, AgentSeconds: 1.5})
	l.Append(Entry{Reward: 5, Timesteps: 6, Seconds: 5, AgentSeconds: 2.5})

	tests := []struct {
		name    string
		horizon int
		reward  float64
		ts      float64
	}{
		{"last only", 1, 5, 6},
		{"last two", 2, 4, 5},
		{"all explicit", 3, 3, 4},
		{"all via zero", 0, 3, 4},
		{"horizon past length", 10, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.MeanReward(tt.horizon); got != tt.reward {
				t.Errorf("MeanReward(%d) = %v, want %v", tt.horizon, got, tt.reward)
			}
			if got := l.MeanTimesteps(tt.horizon); got != tt.ts {
				t.Errorf("MeanTimesteps(%d) = %v, want %v", tt.horizon, got, tt.ts)
			}
		})
	}
}

func TestMeansOnEmptyLedger(t *testing.T) {
	var l Ledger
	if got := l.MeanReward(1); got != 0 {
		t.Errorf("MeanReward on empty = %v, want 0", got)
	}
	if got := l.MeanTimesteps(0); got != 0 {
		t.Errorf("MeanTimesteps on empty = %v, want 0", got)
	}
	if got := l.MeanSeconds(5); got != 0 {
		t.Errorf("MeanSeconds on empty = %v, want 0", got)
	}
}
