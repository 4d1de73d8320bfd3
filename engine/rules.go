package engine

import "fmt"

// Step costs used by the path planner. An edge costs whatever the tile at its
// destination costs.
const (
	EmptyStepCost   = 1.0
	FearOfUnknown   = 6.66
	UnknownStepCost = EmptyStepCost * FearOfUnknown
	FearOfEnemy     = 10.0
	EnemyStepCost   = EmptyStepCost * FearOfEnemy
	FlagStepCost    = EmptyStepCost
	BlockedStepCost = 10000.0
)

// Border is the width of the fixed wall around the playable interior.
const Border = 1

// StepCost returns the cost of stepping onto a cell holding t. It is total:
// anything outside the enum costs BlockedStepCost.
func StepCost(t Tile) float64 {
	switch t {
	case TileEmpty, TileOwnAgent, TileOwnAgentWithFlag:
		return EmptyStepCost
	case TileUnknown:
		return UnknownStepCost
	case TileEnemyAgent, TileEnemyAgentWithFlag:
		return EnemyStepCost
	case TileOwnFlag, TileEnemyFlag:
		return FlagStepCost
	case TileWall, TileBullet:
		return BlockedStepCost
	default:
		return BlockedStepCost
	}
}

// Blocked reports whether t cannot be entered by the planner.
func Blocked(t Tile) bool { return StepCost(t) >= BlockedStepCost }

// World holds the externally supplied dimensions of the game.
type World struct {
	Width      int `yaml:"width"`  // including border
	Height     int `yaml:"height"` // including border
	WindowSize int `yaml:"window"` // odd side length of the observation window
}

// DefaultWorld returns the dimensions of the standard arena.
func DefaultWorld() World {
	return World{
		Width:      42,
		Height:     22,
		WindowSize: 9,
	}
}

// BeliefRows returns the number of rows of the belief grid (interior only).
func (w World) BeliefRows() int { return w.Height - 2*Border }

// BeliefCols returns the number of columns of the belief grid (interior only).
func (w World) BeliefCols() int { return w.Width - 2*Border }

// NewBeliefGrid returns an all-Unknown grid sized to the world interior.
func (w World) NewBeliefGrid() Grid { return NewGrid(w.BeliefRows(), w.BeliefCols()) }

// BeliefCell translates the simulation's raw (x, y) position, which counts
// the border, into a belief-grid (row, col).
func (w World) BeliefCell(x, y int) Cell {
	return Cell{Row: y - Border, Col: x - Border}
}

// Validate checks that the dimensions can hold an interior and that the
// window is a positive odd square.
func (w World) Validate() error {
	if w.Width <= 2*Border || w.Height <= 2*Border {
		return fmt.Errorf("world %dx%d has no interior", w.Width, w.Height)
	}
	if w.WindowSize <= 0 || w.WindowSize%2 == 0 {
		return fmt.Errorf("window size %d must be positive and odd", w.WindowSize)
	}
	return nil
}
