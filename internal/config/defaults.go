package config

import "time"

func applyDefaults(cfg *Config) {
	if cfg.Run.Episodes == 0 && cfg.Run.Timesteps == 0 && cfg.Run.Updates == 0 {
		cfg.Run.Episodes = 100
	}
	if cfg.Run.Sleep == 0 {
		cfg.Run.Sleep = Duration(10 * time.Millisecond)
	}
	if cfg.Run.MeanHorizon == 0 {
		cfg.Run.MeanHorizon = 10
	}

	if cfg.Sessions.Count == 0 {
		cfg.Sessions.Count = 1
	}

	if cfg.Environment.CorridorLength == 0 {
		cfg.Environment.CorridorLength = 8
	}
	if cfg.Environment.MaxSteps == 0 {
		cfg.Environment.MaxSteps = 50
	}
	if cfg.Environment.GoalReward == 0 {
		cfg.Environment.GoalReward = 1.0
	}

	if cfg.Agent.Kind == "" {
		cfg.Agent.Kind = "greedy"
	}
	if cfg.Agent.Kind == "greedy" && cfg.Agent.Epsilon == 0 {
		cfg.Agent.Epsilon = 0.1
	}
	if cfg.Agent.Seed == 0 {
		cfg.Agent.Seed = 1
	}
	if cfg.Agent.UpdateEvery == 0 {
		cfg.Agent.UpdateEvery = 1
	}

	if cfg.Record.Dir == "" {
		cfg.Record.Dir = ".stride"
	}
}
