// Package gridworld implements a 2D gridworld environment in which a
// single agent must move to the centre of the grid
package gridworld

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/gorl/environment"
	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
)

// GoalReward is the reward for reaching the centre of the grid
const GoalReward = 100.0

// Direction is an action in a GridWorld
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Discrete implements the space.Elem interface
func (d Direction) Discrete(dim int) (int, bool) {
	if dim != 0 {
		return 0, false
	}
	return int(d), true
}

// Continuous implements the space.Elem interface
func (Direction) Continuous(int) (float64, bool) {
	return 0, false
}

// Build implements the space.Builder interface
func (Direction) Build(_ space.Space, discrete []int, _ []float64) (Direction,
	error) {
	if discrete[0] < 0 || discrete[0] > int(Right) {
		return 0, fmt.Errorf("build: illegal direction %v: %w", discrete[0],
			space.ErrOutOfBounds)
	}
	return Direction(discrete[0]), nil
}

// Actions is the action space of every GridWorld
var Actions = space.Discrete{4}

// Position is a state in a GridWorld
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Discrete implements the space.Elem interface
func (p Position) Discrete(d int) (int, bool) {
	switch d {
	case 0:
		return p.Row, true
	case 1:
		return p.Col, true
	default:
		return 0, false
	}
}

// Continuous implements the space.Elem interface
func (Position) Continuous(int) (float64, bool) {
	return 0, false
}

// CurrentPlayer implements the space.State interface
func (Position) CurrentPlayer() int {
	return 0
}

// Build implements the space.Builder interface
func (Position) Build(_ space.Space, discrete []int, _ []float64) (Position,
	error) {
	return Position{Row: discrete[0], Col: discrete[1]}, nil
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

// GridWorld represents a gridworld environment
//
// Each step, the agent receives a reward of 1/d, where d is the
// Euclidean distance from its position to the centre of the grid.
// Entering the centre yields GoalReward and ends the episode. Moving off
// the edge of the grid leaves the agent in place and also ends the
// episode.
type GridWorld struct {
	environment.Starter
	r, c        int
	position    Position
	currentStep timestep.TimeStep[Position]
}

// New creates a new gridworld with r rows and c columns. Starting
// positions are sampled uniformly over all cells but the centre.
func New(r, c int, seed uint64) (*GridWorld, error) {
	if r < 1 || c < 1 {
		return nil, fmt.Errorf("new: grid must have positive dimensions, "+
			"got %vx%v", r, c)
	}
	if r*c == 1 {
		return nil, fmt.Errorf("new: grid must have a non-centre cell")
	}

	starter := environment.NewCategoricalStarter([]int{r, c}, seed)
	starter.Reject = func(v []int) bool {
		return v[0] == r/2 && v[1] == c/2
	}

	g := &GridWorld{Starter: starter, r: r, c: c}
	g.Reset()
	return g, nil
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// Centre returns the goal position
func (g *GridWorld) Centre() Position {
	return Position{Row: g.r / 2, Col: g.c / 2}
}

// Position returns the current position of the agent
func (g *GridWorld) Position() Position {
	return g.position
}

// StateSpace implements the environment.Environment interface
func (g *GridWorld) StateSpace() space.StateSpace {
	return space.WithPlayers(States(g.r, g.c), 1)
}

// States returns the state space of a gridworld with r rows and c columns
func States(r, c int) space.Space {
	return space.Discrete{r, c}
}

// ActionSpace implements the environment.Environment interface
func (g *GridWorld) ActionSpace() space.Space {
	return Actions
}

// Reset implements the environment.Environment interface
func (g *GridWorld) Reset() timestep.TimeStep[Position] {
	start := g.Start()
	g.position = Position{Row: start[0], Col: start[1]}

	g.currentStep = timestep.New(timestep.First, []float64{0}, g.position, 0)
	return g.currentStep
}

// Step implements the environment.Environment interface
func (g *GridWorld) Step(action Direction) timestep.TimeStep[Position] {
	next := g.position
	switch action {
	case Up:
		next.Row--
	case Down:
		next.Row++
	case Left:
		next.Col--
	case Right:
		next.Col++
	}

	offGrid := next.Row < 0 || next.Row >= g.r || next.Col < 0 ||
		next.Col >= g.c
	if !offGrid {
		g.position = next
	}

	reward, atGoal := g.reward(g.position)
	stepType := timestep.Mid
	if offGrid || atGoal {
		stepType = timestep.Last
	}

	g.currentStep = timestep.New(stepType, []float64{reward}, g.position,
		g.currentStep.Number+1)
	return g.currentStep
}

// reward returns the reward for occupying p and whether p is the goal
func (g *GridWorld) reward(p Position) (float64, bool) {
	centre := g.Centre()
	if p == centre {
		return GoalReward, true
	}

	dist := math.Hypot(float64(p.Row-centre.Row), float64(p.Col-centre.Col))
	return 1 / dist, false
}
