package env

import "testing"

func TestCorridorReachesGoal(t *testing.T) {
	c, err := NewCorridor(4, 10)
	if err != nil {
		t.Fatalf("NewCorridor: %v", err)
	}

	state, err := c.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if state[0] != 0 {
		t.Errorf("start state = %v, want 0", state)
	}

	var terminal Terminal
	var reward float64
	steps := 0
	for !terminal.Ended() {
		state, terminal, reward, err = c.Execute(Action{MoveForward})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		steps++
	}
	if steps != 3 {
		t.Errorf("steps to goal = %d, want 3", steps)
	}
	if terminal != TerminalNatural {
		t.Errorf("terminal = %v, want natural", terminal)
	}
	if reward != c.GoalReward {
		t.Errorf("final reward = %v, want %v", reward, c.GoalReward)
	}
	if state[0] != 1 {
		t.Errorf("final state = %v, want 1 (goal)", state)
	}
}

func TestCorridorStepLimit(t *testing.T) {
	c, err := NewCorridor(10, 3)
	if err != nil {
		t.Fatalf("NewCorridor: %v", err)
	}
	c.Reset()

	var terminal Terminal
	for i := 0; i < 3; i++ {
		_, terminal, _, err = c.Execute(Action{MoveBack})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	if terminal != TerminalNatural {
		t.Errorf("terminal after step limit = %v, want natural", terminal)
	}
}

func TestCorridorRejectsBadInput(t *testing.T) {
	if _, err := NewCorridor(1, 10); err == nil {
		t.Error("length 1 accepted")
	}
	if _, err := NewCorridor(4, 0); err == nil {
		t.Error("max steps 0 accepted")
	}

	c, err := NewCorridor(4, 10)
	if err != nil {
		t.Fatalf("NewCorridor: %v", err)
	}
	c.Reset()
	if _, _, _, err := c.Execute(Action{99}); err == nil {
		t.Error("out-of-range action accepted")
	}
	if _, _, _, err := c.Execute(Action{}); err == nil {
		t.Error("empty action accepted")
	}
}

func TestTerminalEnded(t *testing.T) {
	tests := []struct {
		terminal Terminal
		want     bool
	}{
		{TerminalInitial, false},
		{TerminalContinue, false},
		{TerminalNatural, true},
		{TerminalForced, true},
	}
	for _, tt := range tests {
		if got := tt.terminal.Ended(); got != tt.want {
			t.Errorf("%v.Ended() = %v, want %v", tt.terminal, got, tt.want)
		}
	}
}
