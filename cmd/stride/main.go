package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kbathgate/stride/internal/agent"
	"github.com/kbathgate/stride/internal/config"
	"github.com/kbathgate/stride/internal/env"
	"github.com/kbathgate/stride/internal/progress"
	"github.com/kbathgate/stride/internal/runner"
	"github.com/kbathgate/stride/internal/state"
)

var version = "dev"

func main() {
	// A .env file can override process environment for local runs.
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "stride",
		Short: "Stride schedules episodic agent/environment interaction across parallel sessions.",
	}

	var configPath string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured interaction loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	runCmd.Flags().StringVar(&configPath, "config", "stride.yaml", "path to stride.yaml config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("stride %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	environments := make([]env.Environment, cfg.Sessions.Count)
	for i := range environments {
		environments[i], err = newCorridor(cfg)
		if err != nil {
			return err
		}
	}

	sessions, err := runner.Sessions(cfg.Sessions.Async, environments...)
	if err != nil {
		return fmt.Errorf("creating sessions: %w", err)
	}

	spec := environments[0].Spec()
	a, err := newAgent(cfg, spec)
	if err != nil {
		return err
	}

	recorder := state.NewManager(cfg.Record.Dir)
	if recorder.Exists() {
		prev, err := recorder.Load()
		if err != nil {
			return fmt.Errorf("loading previous run record: %w", err)
		}
		fmt.Print(formatPriorRun(prev))
		// Drop the stale record so run.json never describes a different run
		// while this one executes.
		if err := recorder.Remove(); err != nil {
			return fmt.Errorf("removing previous run record: %w", err)
		}
	}

	opts := []runner.Option{
		runner.WithOwnedAgent(),
		runner.WithOwnedSessions(),
		runner.WithObserver(&progress.Console{
			W:              os.Stdout,
			TotalEpisodes:  cfg.Run.Episodes,
			TotalTimesteps: cfg.Run.Timesteps,
		}),
		runner.WithRecorder(recorder),
	}
	if cfg.Evaluation.Enabled {
		evalEnv, err := newCorridor(cfg)
		if err != nil {
			return err
		}
		evalSessions, err := runner.Sessions(cfg.Sessions.Async, evalEnv)
		if err != nil {
			return fmt.Errorf("creating evaluation session: %w", err)
		}
		opts = append(opts, runner.WithEvaluationSession(evalSessions[0]))
		if cfg.Evaluation.SaveBestDir != "" {
			opts = append(opts, runner.WithSaveBestDir(cfg.Evaluation.SaveBestDir))
		}
	}

	r, err := runner.New(a, sessions, opts...)
	if err != nil {
		return fmt.Errorf("creating runner: %w", err)
	}
	defer r.Close()

	// Signals request a graceful stop through the callback gate; a second
	// signal force-exits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nReceived %s, stopping at the next episode boundary...\n", sig)
		cancel()
		<-sigCh
		fmt.Fprintln(os.Stderr, "Force exit.")
		os.Exit(1)
	}()

	fmt.Printf("Stride v%s\n", version)
	fmt.Printf("Run: %s\n", r.RunID())
	fmt.Printf("Sessions: %d", cfg.Sessions.Count)
	if cfg.Evaluation.Enabled {
		fmt.Printf(" (+1 evaluation)")
	}
	fmt.Println()
	fmt.Println()

	startTime := time.Now()
	err = r.Run(runner.RunOptions{
		NumEpisodes:            cfg.Run.Episodes,
		NumTimesteps:           cfg.Run.Timesteps,
		NumUpdates:             cfg.Run.Updates,
		JointAgentCalls:        cfg.Run.JointAgentCalls,
		SyncTimesteps:          cfg.Run.SyncTimesteps,
		SyncEpisodes:           cfg.Run.SyncEpisodes,
		Sleep:                  cfg.Run.Sleep.Std(),
		CallbackEveryEpisodes:  cfg.Run.CallbackEveryEpisodes,
		CallbackEveryTimesteps: cfg.Run.CallbackEveryTimesteps,
		MeanHorizon:            cfg.Run.MeanHorizon,
		Callbacks: []runner.Callback{
			func(r *runner.Runner, session int) bool {
				return ctx.Err() == nil
			},
		},
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	summary := r.Summary()
	summary.Duration = time.Since(startTime)
	fmt.Print(progress.FormatRunSummary(summary))
	return nil
}

// formatPriorRun describes the run record left behind by a previous
// invocation using the same record directory.
func formatPriorRun(rec *state.RunRecord) string {
	status := "interrupted"
	if rec.Finished {
		status = "finished"
	}
	line := fmt.Sprintf("Previous run %s (%s): %d episodes, %d timesteps",
		rec.RunID, status, rec.Episodes, rec.Timesteps)
	if rec.BestScore != nil {
		line += fmt.Sprintf(", best score %.3f", *rec.BestScore)
	}
	return line + "\n"
}

func newCorridor(cfg *config.Config) (env.Environment, error) {
	corridor, err := env.NewCorridor(cfg.Environment.CorridorLength, cfg.Environment.MaxSteps)
	if err != nil {
		return nil, fmt.Errorf("creating environment: %w", err)
	}
	corridor.StepReward = cfg.Environment.StepReward
	corridor.GoalReward = cfg.Environment.GoalReward
	return corridor, nil
}

func newAgent(cfg *config.Config, spec env.Spec) (agent.Agent, error) {
	switch cfg.Agent.Kind {
	case "greedy":
		a := agent.NewGreedy(spec, cfg.Agent.Epsilon, cfg.Agent.Seed)
		a.UpdateEvery = cfg.Agent.UpdateEvery
		return a, nil
	case "random":
		return agent.NewRandom(spec, cfg.Agent.Seed), nil
	default:
		return nil, fmt.Errorf("unknown agent kind %q", cfg.Agent.Kind)
	}
}
