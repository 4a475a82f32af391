package env

import (
	"fmt"
)

// Corridor is a small deterministic environment used by the CLI demo and
// tests: the agent walks a corridor of Length cells, earning StepReward for
// each forward move and GoalReward on reaching the end, which ends the
// episode naturally. Episodes also end after MaxSteps steps.
type Corridor struct {
	Length     int
	MaxSteps   int
	StepReward float64
	GoalReward float64

	position int
	steps    int
}

// Corridor actions.
const (
	MoveBack    = 0
	MoveForward = 1
)

// NewCorridor creates a corridor of the given length with default rewards.
func NewCorridor(length, maxSteps int) (*Corridor, error) {
	if length < 2 {
		return nil, fmt.Errorf("corridor length must be >= 2, got %d", length)
	}
	if maxSteps < 1 {
		return nil, fmt.Errorf("corridor max steps must be >= 1, got %d", maxSteps)
	}
	return &Corridor{
		Length:     length,
		MaxSteps:   maxSteps,
		StepReward: 0.0,
		GoalReward: 1.0,
	}, nil
}

func (c *Corridor) Spec() Spec {
	return Spec{StateDim: 1, NumActions: 2}
}

func (c *Corridor) Reset() (State, error) {
	c.position = 0
	c.steps = 0
	return c.state(), nil
}

func (c *Corridor) Execute(action Action) (State, Terminal, float64, error) {
	if len(action) != 1 {
		return nil, TerminalContinue, 0, fmt.Errorf("corridor expects 1 action value, got %d", len(action))
	}

	c.steps++
	reward := c.StepReward
	switch int(action[0]) {
	case MoveForward:
		c.position++
	case MoveBack:
		if c.position > 0 {
			c.position--
		}
	default:
		return nil, TerminalContinue, 0, fmt.Errorf("corridor action out of range: %v", action[0])
	}

	if c.position >= c.Length-1 {
		return c.state(), TerminalNatural, c.GoalReward, nil
	}
	if c.steps >= c.MaxSteps {
		return c.state(), TerminalNatural, reward, nil
	}
	return c.state(), TerminalContinue, reward, nil
}

func (c *Corridor) state() State {
	return State{float64(c.position) / float64(c.Length-1)}
}

func (c *Corridor) Close() error { return nil }
