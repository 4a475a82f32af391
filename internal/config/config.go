// Package config loads and validates the stride.yaml run configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full stride.yaml configuration.
type Config struct {
	Run         RunConfig         `yaml:"run"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	Evaluation  EvaluationConfig  `yaml:"evaluation"`
	Environment EnvironmentConfig `yaml:"environment"`
	Agent       AgentConfig       `yaml:"agent"`
	Record      RecordConfig      `yaml:"record"`
}

type RunConfig struct {
	Episodes  int `yaml:"episodes"`
	Timesteps int `yaml:"timesteps"`
	Updates   int `yaml:"updates"`

	JointAgentCalls bool `yaml:"joint_agent_calls"`
	SyncTimesteps   bool `yaml:"sync_timesteps"`
	SyncEpisodes    bool `yaml:"sync_episodes"`

	Sleep Duration `yaml:"sleep"`

	CallbackEveryEpisodes  int `yaml:"callback_every_episodes"`
	CallbackEveryTimesteps int `yaml:"callback_every_timesteps"`

	MeanHorizon int `yaml:"mean_horizon"`
}

type SessionsConfig struct {
	Count int  `yaml:"count"`
	Async bool `yaml:"async"`
}

type EvaluationConfig struct {
	Enabled     bool   `yaml:"enabled"`
	SaveBestDir string `yaml:"save_best_dir"`
}

type EnvironmentConfig struct {
	CorridorLength int     `yaml:"corridor_length"`
	MaxSteps       int     `yaml:"max_steps"`
	StepReward     float64 `yaml:"step_reward"`
	GoalReward     float64 `yaml:"goal_reward"`
}

type AgentConfig struct {
	Kind        string  `yaml:"kind"` // "greedy" or "random"
	Epsilon     float64 `yaml:"epsilon"`
	Seed        int64   `yaml:"seed"`
	UpdateEvery int     `yaml:"update_every"`
}

type RecordConfig struct {
	Dir string `yaml:"dir"`
}

// Duration wraps time.Duration with YAML parsing of values like "10ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"10ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads and parses a stride.yaml file, applying defaults and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses raw YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks a Config for logical errors.
func Validate(cfg *Config) error {
	if cfg.Sessions.Count < 1 {
		return fmt.Errorf("sessions.count must be >= 1, got %d", cfg.Sessions.Count)
	}

	if cfg.Run.Episodes < 0 || cfg.Run.Timesteps < 0 || cfg.Run.Updates < 0 {
		return fmt.Errorf("run ceilings must be >= 0")
	}
	if cfg.Run.Episodes == 0 && cfg.Run.Timesteps == 0 && cfg.Run.Updates == 0 {
		return fmt.Errorf("at least one of run.episodes, run.timesteps, run.updates must be set")
	}

	if cfg.Run.CallbackEveryEpisodes > 0 && cfg.Run.CallbackEveryTimesteps > 0 {
		return fmt.Errorf("at most one of run.callback_every_episodes or run.callback_every_timesteps may be set")
	}

	if cfg.Evaluation.SaveBestDir != "" && !cfg.Evaluation.Enabled {
		return fmt.Errorf("evaluation.save_best_dir requires evaluation.enabled")
	}

	if cfg.Environment.CorridorLength < 2 {
		return fmt.Errorf("environment.corridor_length must be >= 2, got %d", cfg.Environment.CorridorLength)
	}
	if cfg.Environment.MaxSteps < 1 {
		return fmt.Errorf("environment.max_steps must be >= 1, got %d", cfg.Environment.MaxSteps)
	}

	switch cfg.Agent.Kind {
	case "greedy", "random":
	default:
		return fmt.Errorf("agent.kind must be \"greedy\" or \"random\", got %q", cfg.Agent.Kind)
	}
	if cfg.Agent.Epsilon < 0 || cfg.Agent.Epsilon > 1 {
		return fmt.Errorf("agent.epsilon must be in [0,1], got %g", cfg.Agent.Epsilon)
	}

	return nil
}
