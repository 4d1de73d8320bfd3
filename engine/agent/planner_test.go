package agent

import (
	"math"
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"

	engine "github.com/JDasic01/AgentTournament/engine"
)

// dijkstra computes the cheapest cost from start to goal by exhaustive
// relaxation, for checking Plan.
func dijkstra(g *engine.Grid, start, goal engine.Cell) float64 {
	dist := map[engine.Cell]float64{start: 0}
	done := map[engine.Cell]bool{}
	for {
		var cur engine.Cell
		best := math.Inf(1)
		for c, d := range dist {
			if !done[c] && d < best {
				cur, best = c, d
			}
		}
		if math.IsInf(best, 1) {
			return best
		}
		if cur == goal {
			return best
		}
		done[cur] = true
		for _, n := range g.Neighbors(cur) {
			cost := engine.StepCost(g.At(n))
			if cost >= engine.BlockedStepCost {
				continue
			}
			if d, ok := dist[n]; !ok || best+cost < d {
				dist[n] = best + cost
			}
		}
	}
}

func checkContiguous(t *testing.T, path []engine.Cell) {
	t.Helper()
	for i := 1; i < len(path); i++ {
		if d := path[i-1].Manhattan(path[i]); d != 1 {
			t.Errorf("step %d: %v -> %v is %d apart", i, path[i-1], path[i], d)
		}
	}
}

// checkEnds fails unless path runs from start to goal.
func checkEnds(t *testing.T, path []engine.Cell, start, goal engine.Cell) {
	t.Helper()
	if len(path) == 0 {
		t.Fatalf("no path from %v to %v", start, goal)
	}
	if path[0] != start || path[len(path)-1] != goal {
		t.Errorf("path runs %v -> %v, want %v -> %v", path[0], path[len(path)-1], start, goal)
	}
}

func TestPlanStartEqualsGoal(t *testing.T) {
	g := emptyGrid(3, 3)
	c := engine.Cell{Row: 1, Col: 1}
	if got := Plan(&g, c, c); !reflect.DeepEqual(got, []engine.Cell{c}) {
		t.Errorf("Plan = %v, want [%v]", got, c)
	}
}

func TestPlanRoutesAroundWall(t *testing.T) {
	g := emptyGrid(5, 5)
	g.Set(engine.Cell{Row: 0, Col: 0}, engine.TileOwnFlag)
	g.Set(engine.Cell{Row: 4, Col: 4}, engine.TileEnemyFlag)
	wall := engine.Cell{Row: 2, Col: 3}
	g.Set(wall, engine.TileWall)

	start, goal := engine.Cell{Row: 2, Col: 2}, engine.Cell{Row: 4, Col: 4}
	path := Plan(&g, start, goal)
	checkEnds(t, path, start, goal)
	if slices.Contains(path, wall) {
		t.Errorf("path %v crosses the wall", path)
	}
	checkContiguous(t, path)
	if c := PathCost(&g, path); c != 4 {
		t.Errorf("cost %v, want 4", c)
	}
}

func TestPlanUnreachableGoal(t *testing.T) {
	g := emptyGrid(5, 5)
	goal := engine.Cell{Row: 2, Col: 2}
	for _, n := range g.Neighbors(goal) {
		g.Set(n, engine.TileWall)
	}
	if p := Plan(&g, engine.Cell{Row: 0, Col: 0}, goal); len(p) != 0 {
		t.Errorf("walled-in goal planned %v", p)
	}

	g.Set(engine.Cell{Row: 1, Col: 2}, engine.TileBullet)
	if p := Plan(&g, engine.Cell{Row: 0, Col: 0}, goal); len(p) != 0 {
		t.Errorf("bullet gap planned %v", p)
	}

	// The fallback after a failed plan is always a cardinal move.
	for _, sample := range []float64{0, 0.26, 0.51, 0.99} {
		a := Synthesize(&g, nil, engine.Cell{Row: 0, Col: 0}, true, fixedRand(sample))
		if a.Kind != engine.ActionMove || !slices.Contains(engine.Directions[:], a.Direction) {
			t.Errorf("sample %v: fallback %v", sample, a)
		}
	}
}

func TestPlanOutOfBounds(t *testing.T) {
	g := emptyGrid(3, 3)
	if p := Plan(&g, engine.Cell{Row: -1, Col: 0}, engine.Cell{Row: 1, Col: 1}); p != nil {
		t.Errorf("start off grid planned %v", p)
	}
	if p := Plan(&g, engine.Cell{Row: 0, Col: 0}, engine.Cell{Row: 3, Col: 3}); p != nil {
		t.Errorf("goal off grid planned %v", p)
	}
}

func TestPlanPrefersKnownGround(t *testing.T) {
	// Straight line through unknown costs 2*6.66+1; the detour over known
	// empty ground costs 5.
	g := engine.GridFromRows([][]engine.Tile{
		{engine.TileEmpty, engine.TileEmpty, engine.TileEmpty, engine.TileEmpty},
		{engine.TileEmpty, engine.TileUnknown, engine.TileUnknown, engine.TileEmpty},
	})
	path := Plan(&g, engine.Cell{Row: 1, Col: 0}, engine.Cell{Row: 1, Col: 3})
	if len(path) != 6 {
		t.Fatalf("path %v, want the 6-cell detour", path)
	}
	if c := PathCost(&g, path); c != 5 {
		t.Errorf("cost %v, want 5", c)
	}
}

func TestPlanIsOptimal(t *testing.T) {
	tiles := []engine.Tile{
		engine.TileEmpty, engine.TileEmpty, engine.TileEmpty,
		engine.TileUnknown, engine.TileEnemyAgent, engine.TileOwnAgent,
	}
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		g := engine.NewGrid(6, 7)
		for i := range g.Tiles {
			g.Tiles[i] = tiles[rng.IntN(len(tiles))]
		}
		start := engine.Cell{Row: rng.IntN(6), Col: rng.IntN(7)}
		goal := engine.Cell{Row: rng.IntN(6), Col: rng.IntN(7)}

		path := Plan(&g, start, goal)
		checkEnds(t, path, start, goal)
		checkContiguous(t, path)
		want, got := dijkstra(&g, start, goal), PathCost(&g, path)
		if math.Abs(want-got) > 1e-9 {
			t.Errorf("trial %d: cost %v, cheapest is %v", trial, got, want)
		}
	}
}

func TestPlanDeterministic(t *testing.T) {
	g := emptyGrid(6, 6)
	a := Plan(&g, engine.Cell{Row: 0, Col: 0}, engine.Cell{Row: 5, Col: 5})
	for i := 0; i < 10; i++ {
		if b := Plan(&g, engine.Cell{Row: 0, Col: 0}, engine.Cell{Row: 5, Col: 5}); !reflect.DeepEqual(a, b) {
			t.Fatalf("run %d planned %v, first run %v", i, b, a)
		}
	}
}
