package config

import (
	"strings"
	"testing"
	"time"
)

const minimalConfig = `
run:
  episodes: 10
sessions:
  count: 2
`

func TestParseMinimalAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Run.Episodes != 10 {
		t.Errorf("episodes = %d, want 10", cfg.Run.Episodes)
	}
	if cfg.Sessions.Count != 2 {
		t.Errorf("sessions.count = %d, want 2", cfg.Sessions.Count)
	}
	if cfg.Run.Sleep.Std() != 10*time.Millisecond {
		t.Errorf("sleep = %v, want 10ms default", cfg.Run.Sleep.Std())
	}
	if cfg.Agent.Kind != "greedy" {
		t.Errorf("agent.kind = %q, want greedy default", cfg.Agent.Kind)
	}
	if cfg.Agent.Epsilon != 0.1 {
		t.Errorf("agent.epsilon = %v, want 0.1 default", cfg.Agent.Epsilon)
	}
	if cfg.Environment.CorridorLength != 8 {
		t.Errorf("corridor_length = %d, want 8 default", cfg.Environment.CorridorLength)
	}
	if cfg.Record.Dir != ".stride" {
		t.Errorf("record.dir = %q, want .stride default", cfg.Record.Dir)
	}
}

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
run:
  timesteps: 5000
  joint_agent_calls: true
  sleep: 250us
  callback_every_timesteps: 100
  mean_horizon: 20
sessions:
  count: 4
  async: true
evaluation:
  enabled: true
  save_best_dir: /tmp/best
environment:
  corridor_length: 16
  max_steps: 200
  step_reward: -0.01
  goal_reward: 10
agent:
  kind: random
  seed: 42
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !cfg.Run.JointAgentCalls {
		t.Error("joint_agent_calls not set")
	}
	if cfg.Run.Sleep.Std() != 250*time.Microsecond {
		t.Errorf("sleep = %v, want 250us", cfg.Run.Sleep.Std())
	}
	if cfg.Evaluation.SaveBestDir != "/tmp/best" {
		t.Errorf("save_best_dir = %q", cfg.Evaluation.SaveBestDir)
	}
	if cfg.Environment.StepReward != -0.01 {
		t.Errorf("step_reward = %v, want -0.01", cfg.Environment.StepReward)
	}
	if cfg.Agent.Kind != "random" {
		t.Errorf("agent.kind = %q, want random", cfg.Agent.Kind)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "both callback frequencies",
			yaml: `
run:
  episodes: 10
  callback_every_episodes: 2
  callback_every_timesteps: 100
`,
			wantErr: "at most one",
		},
		{
			name: "save_best_dir without evaluation",
			yaml: `
run:
  episodes: 10
evaluation:
  save_best_dir: /tmp/best
`,
			wantErr: "requires evaluation.enabled",
		},
		{
			name: "negative ceiling",
			yaml: `
run:
  episodes: -1
`,
			wantErr: "ceilings",
		},
		{
			name: "bad agent kind",
			yaml: `
run:
  episodes: 10
agent:
  kind: sarsa
`,
			wantErr: "agent.kind",
		},
		{
			name: "epsilon out of range",
			yaml: `
run:
  episodes: 10
agent:
  kind: greedy
  epsilon: 1.5
`,
			wantErr: "epsilon",
		},
		{
			name: "corridor too short",
			yaml: `
run:
  episodes: 10
environment:
  corridor_length: 1
`,
			wantErr: "corridor_length",
		},
		{
			name: "bad duration",
			yaml: `
run:
  episodes: 10
  sleep: quickly
`,
			wantErr: "duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
