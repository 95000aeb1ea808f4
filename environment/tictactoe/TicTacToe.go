// Package tictactoe implements the two-player game of tic-tac-toe as an
// environment. Player 0 plays X and always moves first, player 1 plays O.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/gorl/space"
	"github.com/samuelfneumann/gorl/timestep"
	"gonum.org/v1/gonum/spatial/r1"
)

// Rewards given to the players, indexed by player
var (
	XWins        = []float64{1, -1}
	OWins        = []float64{-1, 1}
	Draw         = []float64{0, 0}
	XIllegalMove = []float64{-100, 1}
	OIllegalMove = []float64{1, -100}
)

// Cell is the content of a single board cell
type Cell int

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// Move is an action, placing the current player's mark at (Row, Col)
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Discrete implements the space.Elem interface
func (m Move) Discrete(d int) (int, bool) {
	switch d {
	case 0:
		return m.Row, true
	case 1:
		return m.Col, true
	default:
		return 0, false
	}
}

// Continuous implements the space.Elem interface
func (Move) Continuous(int) (float64, bool) {
	return 0, false
}

// Build implements the space.Builder interface
func (Move) Build(_ space.Space, discrete []int, _ []float64) (Move, error) {
	return Move{Row: discrete[0], Col: discrete[1]}, nil
}

// Board is a state of the game
type Board struct {
	Cells  [3][3]Cell `json:"cells"`
	Player int        `json:"player"`
	Done   bool       `json:"done"`
}

// Discrete implements the space.Elem interface. Dimensions 0 through 8
// are the cells in row-major order and dimension 9 is the done flag.
func (b Board) Discrete(d int) (int, bool) {
	switch {
	case d >= 0 && d < 9:
		return int(b.Cells[d/3][d%3]), true
	case d == 9:
		if b.Done {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Continuous implements the space.Elem interface
func (Board) Continuous(int) (float64, bool) {
	return 0, false
}

// CurrentPlayer implements the space.State interface
func (b Board) CurrentPlayer() int {
	return b.Player
}

// Build implements the space.Builder interface. The player to move is
// inferred from the number of marks: X moves when both players have
// the same number of marks and O moves when X has one more.
func (Board) Build(_ space.Space, discrete []int, _ []float64) (Board,
	error) {
	var b Board
	var xs, os int
	for i, v := range discrete[:9] {
		c := Cell(v)
		switch c {
		case X:
			xs++
		case O:
			os++
		case Empty:
		default:
			return Board{}, fmt.Errorf("build: illegal cell value %v: %w",
				v, space.ErrOutOfBounds)
		}
		b.Cells[i/3][i%3] = c
	}

	switch xs - os {
	case 0:
		b.Player = 0
	case 1:
		b.Player = 1
	default:
		return Board{}, fmt.Errorf("build: unreachable board with %v X "+
			"and %v O", xs, os)
	}

	b.Done = discrete[9] == 1
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for r, row := range b.Cells {
		for c, cell := range row {
			sb.WriteString(cell.String())
			if c < 2 {
				sb.WriteString(" ")
			}
		}
		if r < 2 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Full returns whether no empty cells remain
func (b Board) Full() bool {
	for _, row := range b.Cells {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}
	return true
}

// Winner returns the mark which completed a line, or Empty if there is
// no complete line
func (b Board) Winner() Cell {
	lines := [8][3][2]int{
		{{0, 0}, {0, 1}, {0, 2}},
		{{1, 0}, {1, 1}, {1, 2}},
		{{2, 0}, {2, 1}, {2, 2}},
		{{0, 0}, {1, 0}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}},
		{{0, 2}, {1, 2}, {2, 2}},
		{{0, 0}, {1, 1}, {2, 2}},
		{{0, 2}, {1, 1}, {2, 0}},
	}

	for _, line := range lines {
		a := b.Cells[line[0][0]][line[0][1]]
		if a == Empty {
			continue
		}
		if a == b.Cells[line[1][0]][line[1][1]] &&
			a == b.Cells[line[2][0]][line[2][1]] {
			return a
		}
	}
	return Empty
}

// Spaces of every game
var (
	States  = space.WithPlayers(states{}, 2)
	Actions = space.Discrete{3, 3}
)

type states struct{}

func (states) DiscreteDim(d int) (int, bool) {
	switch {
	case d >= 0 && d < 9:
		return 3, true
	case d == 9:
		return 2, true
	default:
		return 0, false
	}
}

func (states) ContinuousDim(int) (r1.Interval, bool) {
	return r1.Interval{}, false
}

// TicTacToe implements a game of tic-tac-toe
type TicTacToe struct {
	board       Board
	currentStep timestep.TimeStep[Board]
}

// New returns a new game of tic-tac-toe
func New() *TicTacToe {
	t := &TicTacToe{}
	t.Reset()
	return t
}

// Board returns the current board
func (t *TicTacToe) Board() Board {
	return t.board
}

// StateSpace implements the environment.Environment interface
func (t *TicTacToe) StateSpace() space.StateSpace {
	return States
}

// ActionSpace implements the environment.Environment interface
func (t *TicTacToe) ActionSpace() space.Space {
	return Actions
}

// Reset implements the environment.Environment interface
func (t *TicTacToe) Reset() timestep.TimeStep[Board] {
	t.board = Board{}
	t.currentStep = timestep.New(timestep.First, []float64{0, 0}, t.board, 0)
	return t.currentStep
}

// Step implements the environment.Environment interface. Placing a mark
// on an occupied cell ends the game, punishing the mover unless the
// board is already full.
func (t *TicTacToe) Step(m Move) timestep.TimeStep[Board] {
	if m.Row < 0 || m.Row > 2 || m.Col < 0 || m.Col > 2 {
		panic(fmt.Sprintf("step: illegal move %v", m))
	}

	mover := t.board.Player
	var reward []float64

	if t.board.Cells[m.Row][m.Col] != Empty {
		t.board.Done = true
		switch {
		case t.board.Full():
			reward = Draw
		case mover == 0:
			reward = XIllegalMove
		default:
			reward = OIllegalMove
		}
	} else {
		mark := X
		if mover == 1 {
			mark = O
		}
		t.board.Cells[m.Row][m.Col] = mark
		t.board.Player = 1 - mover

		switch t.board.Winner() {
		case X:
			reward, t.board.Done = XWins, true
		case O:
			reward, t.board.Done = OWins, true
		default:
			reward = Draw
			t.board.Done = t.board.Full()
		}
	}

	stepType := timestep.Mid
	if t.board.Done {
		stepType = timestep.Last
	}

	r := append([]float64(nil), reward...)
	t.currentStep = timestep.New(stepType, r, t.board, t.currentStep.Number+1)
	return t.currentStep
}
