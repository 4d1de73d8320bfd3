package engine

import (
	"encoding/json"
	"testing"
)

// TestGridAtSet checks indexing and out-of-bounds behaviour.
func TestGridAtSet(t *testing.T) {
	g := NewGrid(3, 4)
	if g.At(Cell{2, 3}) != TileUnknown {
		t.Fatal("new grid should be Unknown")
	}
	g.Set(Cell{1, 2}, TileWall)
	if g.At(Cell{1, 2}) != TileWall {
		t.Error("Set did not stick")
	}
	g.Set(Cell{3, 0}, TileEmpty) // ignored
	if g.At(Cell{-1, 0}) != TileWall || g.At(Cell{0, 4}) != TileWall {
		t.Error("out-of-bounds reads should look like walls")
	}
}

// TestGridPositions checks the row-major scan.
func TestGridPositions(t *testing.T) {
	g := GridFromRows([][]Tile{
		{TileEmpty, TileEnemyAgent, TileEmpty},
		{TileEnemyAgentWithFlag, TileEmpty, TileEnemyAgent},
	})
	got := g.Positions(TileEnemyAgent, TileEnemyAgentWithFlag)
	want := []Cell{{0, 1}, {1, 0}, {1, 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

// TestGridNeighbors checks corner and interior neighbour counts.
func TestGridNeighbors(t *testing.T) {
	g := NewGrid(3, 3)
	if n := len(g.Neighbors(Cell{0, 0})); n != 2 {
		t.Errorf("corner has %d neighbours", n)
	}
	if n := len(g.Neighbors(Cell{1, 1})); n != 4 {
		t.Errorf("centre has %d neighbours", n)
	}
}

// TestGridCloneIsDeep verifies a clone does not alias the original.
func TestGridCloneIsDeep(t *testing.T) {
	g := NewGrid(2, 2)
	c := g.Clone()
	c.Set(Cell{0, 0}, TileWall)
	if g.At(Cell{0, 0}) != TileUnknown {
		t.Error("clone aliases original")
	}
}

// TestGridJSON verifies the grid survives the store encoding.
func TestGridJSON(t *testing.T) {
	g := NewGrid(2, 3)
	g.Set(Cell{1, 2}, TileEnemyFlag)
	b, err := json.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	var back Grid
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Height != 2 || back.Width != 3 || back.At(Cell{1, 2}) != TileEnemyFlag {
		t.Errorf("decoded %+v", back)
	}
}

// TestWindowGlobal checks the half-window offset.
func TestWindowGlobal(t *testing.T) {
	w := NewWindow(5)
	center := Cell{10, 10}
	if got := w.Global(2, 2, center); got != center {
		t.Errorf("centre maps to %v", got)
	}
	if got := w.Global(0, 4, center); got != (Cell{8, 12}) {
		t.Errorf("corner maps to %v", got)
	}
	b := w.Bounds(center)
	if b.Min != (Cell{8, 8}) || b.Max != (Cell{12, 12}) {
		t.Errorf("bounds = %+v", b)
	}
	if !b.Contains(Cell{12, 8}) || b.Contains(Cell{13, 8}) {
		t.Error("Contains is wrong at the edge")
	}
}

// TestWindowVisiblePositions checks translation of visible entities.
func TestWindowVisiblePositions(t *testing.T) {
	w := NewWindow(3).Fill(TileEmpty)
	w[0][2] = TileEnemyAgent
	got := w.VisiblePositions(Cell{5, 5}, TileEnemyAgent)
	if len(got) != 1 || got[0] != (Cell{4, 6}) {
		t.Errorf("got %v", got)
	}
}

// TestWindowAt checks the global-to-local lookup used to tell fog from sight.
func TestWindowAt(t *testing.T) {
	w := NewWindow(3).Fill(TileEmpty)
	w[0][2] = TileUnknown
	center := Cell{4, 4}

	cases := []struct {
		cell Cell
		want Tile
		ok   bool
	}{
		{Cell{4, 4}, TileEmpty, true},
		{Cell{3, 5}, TileUnknown, true},
		{Cell{5, 3}, TileEmpty, true},
		{Cell{2, 4}, TileUnknown, false},
		{Cell{4, 6}, TileUnknown, false},
	}
	for _, tc := range cases {
		got, ok := w.At(center, tc.cell)
		if got != tc.want || ok != tc.ok {
			t.Errorf("At(%v) = %v, %v; want %v, %v", tc.cell, got, ok, tc.want, tc.ok)
		}
	}
}
