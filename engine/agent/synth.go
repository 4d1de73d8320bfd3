package agent

import (
	engine "github.com/JDasic01/AgentTournament/engine"
)

// Rand is the source of the agent's random choices. *math/rand/v2.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}

// pick maps a unit-interval sample onto an index in [0, n).
func pick(rnd Rand, n int) int {
	i := int(rnd.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// RandomDirection returns one of the four directions uniformly.
func RandomDirection(rnd Rand) engine.Direction {
	return engine.Directions[pick(rnd, len(engine.Directions))]
}

// Synthesize turns a planned path into the action emitted this tick.
//
// A path shorter than two cells yields a random move. Otherwise, when the
// agent can shoot and an enemy shares its row (checked first) or column with
// no wall in between, it shoots at the nearest such enemy. Failing that it
// moves toward path[1].
func Synthesize(g *engine.Grid, path []engine.Cell, pos engine.Cell, canShoot bool, rnd Rand) engine.Action {
	if len(path) < 2 {
		return engine.Move(RandomDirection(rnd))
	}
	if canShoot {
		if target, ok := AlignedEnemy(g, pos); ok {
			return engine.Shoot(engine.DirectionToward(pos, target))
		}
	}
	return engine.Move(engine.DirectionToward(pos, path[1]))
}

// AlignedEnemy finds the nearest believed enemy with a clear line of fire
// from pos. Row-aligned enemies take precedence over column-aligned ones.
func AlignedEnemy(g *engine.Grid, pos engine.Cell) (engine.Cell, bool) {
	enemies := EnemyAgents(g)
	for _, sameRow := range []bool{true, false} {
		var best engine.Cell
		bestDist := -1
		for _, e := range enemies {
			if e == pos {
				continue
			}
			if sameRow && e.Row != pos.Row || !sameRow && e.Col != pos.Col {
				continue
			}
			if !clearLine(g, pos, e) {
				continue
			}
			if d := pos.Manhattan(e); bestDist < 0 || d < bestDist {
				best, bestDist = e, d
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return engine.Cell{}, false
}

// clearLine reports whether no wall lies strictly between two cells that
// share a row or column.
func clearLine(g *engine.Grid, a, b engine.Cell) bool {
	step := engine.DirectionToward(a, b).Delta()
	for c := a.Add(step); c != b; c = c.Add(step) {
		if g.At(c) == engine.TileWall {
			return false
		}
	}
	return true
}
