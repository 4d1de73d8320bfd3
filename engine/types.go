package engine

import "math"

// Tile is the single symbolic state of one grid cell, relative to the
// observing team ("own" vs "enemy").
type Tile uint8

const (
	TileUnknown            Tile = iota // 0: never observed, or observation stale
	TileEmpty                          // 1
	TileWall                           // 2
	TileBullet                         // 3
	TileOwnAgent                       // 4
	TileOwnAgentWithFlag               // 5: teammate carrying the enemy flag
	TileEnemyAgent                     // 6
	TileEnemyAgentWithFlag             // 7: enemy carrying our flag
	TileOwnFlag                        // 8
	TileEnemyFlag                      // 9
	numTiles
)

var tileNames = [numTiles]string{
	TileUnknown:            "unknown",
	TileEmpty:              "empty",
	TileWall:               "wall",
	TileBullet:             "bullet",
	TileOwnAgent:           "own_agent",
	TileOwnAgentWithFlag:   "own_agent_f",
	TileEnemyAgent:         "enemy_agent",
	TileEnemyAgentWithFlag: "enemy_agent_f",
	TileOwnFlag:            "own_flag",
	TileEnemyFlag:          "enemy_flag",
}

// Valid reports whether t is one of the defined tiles.
func (t Tile) Valid() bool { return t < numTiles }

func (t Tile) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return tileNames[t]
}

// IsEnemy returns true for enemy agents, with or without a flag.
func (t Tile) IsEnemy() bool { return t == TileEnemyAgent || t == TileEnemyAgentWithFlag }

// IsTeammate returns true for own agents, with or without a flag.
func (t Tile) IsTeammate() bool { return t == TileOwnAgent || t == TileOwnAgentWithFlag }

// Cell is a (row, col) position in belief-grid coordinates.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns c shifted by d.
func (c Cell) Add(d Cell) Cell { return Cell{Row: c.Row + d.Row, Col: c.Col + d.Col} }

// Manhattan returns the L1 distance between c and o.
func (c Cell) Manhattan(o Cell) int { return abs(c.Row-o.Row) + abs(c.Col-o.Col) }

// Euclidean returns the straight-line distance between c and o.
func (c Cell) Euclidean(o Cell) float64 {
	dr := float64(c.Row - o.Row)
	dc := float64(c.Col - o.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Direction is one of the four cardinal directions. There is no diagonal.
type Direction uint8

const (
	Up    Direction = iota // 0: row - 1
	Down                   // 1: row + 1
	Left                   // 2: col - 1
	Right                  // 3: col + 1
)

// Directions lists every direction in a fixed order.
var Directions = [4]Direction{Up, Down, Left, Right}

var directionNames = [4]string{"up", "down", "left", "right"}

var directionDeltas = [4]Cell{
	Up:    {Row: -1},
	Down:  {Row: 1},
	Left:  {Col: -1},
	Right: {Col: 1},
}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return "invalid"
	}
	return directionNames[d]
}

// Delta returns the cell offset of one step in direction d.
func (d Direction) Delta() Cell { return directionDeltas[d] }

// ParseDirection maps "up", "down", "left" or "right" to a Direction.
func ParseDirection(s string) (Direction, bool) {
	for i, n := range directionNames {
		if n == s {
			return Direction(i), true
		}
	}
	return 0, false
}

// DirectionToward derives the direction of a single step from one cell to
// another. Rows are compared before columns; equal cells yield Right.
func DirectionToward(from, to Cell) Direction {
	switch {
	case to.Row < from.Row:
		return Up
	case to.Row > from.Row:
		return Down
	case to.Col < from.Col:
		return Left
	default:
		return Right
	}
}

// ActionKind is what an agent does on a tick.
type ActionKind uint8

const (
	ActionMove  ActionKind = iota // 0
	ActionShoot                   // 1
)

func (k ActionKind) String() string {
	if k == ActionShoot {
		return "shoot"
	}
	return "move"
}

// Action is the single decision an agent emits per tick.
type Action struct {
	Kind      ActionKind
	Direction Direction
}

// Move constructs a move action.
func Move(d Direction) Action { return Action{Kind: ActionMove, Direction: d} }

// Shoot constructs a shoot action.
func Shoot(d Direction) Action { return Action{Kind: ActionShoot, Direction: d} }

func (a Action) String() string { return a.Kind.String() + " " + a.Direction.String() }
