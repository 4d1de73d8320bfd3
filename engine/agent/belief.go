package agent

import (
	engine "github.com/JDasic01/AgentTournament/engine"
)

// Entity groups reconciled after every merge. A flag carrier appears in the
// group of the flag it carries as well as among the agents.
var (
	enemyTiles     = []engine.Tile{engine.TileEnemyAgent, engine.TileEnemyAgentWithFlag}
	teammateTiles  = []engine.Tile{engine.TileOwnAgent, engine.TileOwnAgentWithFlag}
	enemyFlagTiles = []engine.Tile{engine.TileEnemyFlag, engine.TileOwnAgentWithFlag}
	ownFlagTiles   = []engine.Tile{engine.TileOwnFlag, engine.TileEnemyAgentWithFlag}
	bulletTiles    = []engine.Tile{engine.TileBullet}

	entityGroups = [][]engine.Tile{enemyTiles, teammateTiles, enemyFlagTiles, ownFlagTiles, bulletTiles}
)

// MergeWindow overlays every non-Unknown tile of w onto g, with the observer
// standing at at. Cells outside g are skipped and Unknown never overwrites
// what the grid already holds. It returns the number of cells written.
func MergeWindow(g *engine.Grid, w engine.Window, at engine.Cell) int {
	n := 0
	for r, row := range w {
		for c, t := range row {
			if t == engine.TileUnknown {
				continue
			}
			cell := w.Global(r, c, at)
			if !g.InBounds(cell) {
				continue
			}
			g.Set(cell, t)
			n++
		}
	}
	return n
}

// Reconcile clears to Empty every remembered cell that lies inside view but
// is absent from visible. Cells outside view keep whatever they remember.
// It returns the number of cells cleared.
func Reconcile(g *engine.Grid, view engine.Bounds, remembered, visible []engine.Cell) int {
	seen := make(map[engine.Cell]struct{}, len(visible))
	for _, c := range visible {
		seen[c] = struct{}{}
	}
	n := 0
	for _, c := range remembered {
		if _, ok := seen[c]; ok || !view.Contains(c) {
			continue
		}
		g.Set(c, engine.TileEmpty)
		n++
	}
	return n
}

// ApplyObservation merges w into g and then corrects stale entity positions
// inside the window's footprint. A remembered cell the window shows as
// Unknown was not observed and keeps its belief.
func ApplyObservation(g *engine.Grid, w engine.Window, at engine.Cell) {
	MergeWindow(g, w, at)
	view := w.Bounds(at)
	for _, group := range entityGroups {
		var remembered []engine.Cell
		for _, c := range g.Positions(group...) {
			if t, ok := w.At(at, c); ok && t == engine.TileUnknown {
				continue
			}
			remembered = append(remembered, c)
		}
		if len(remembered) == 0 {
			continue
		}
		Reconcile(g, view, remembered, w.VisiblePositions(at, group...))
	}
}

// EnemyAgents lists every cell believed to hold an enemy.
func EnemyAgents(g *engine.Grid) []engine.Cell { return g.Positions(enemyTiles...) }

// OwnAgents lists every cell believed to hold a teammate.
func OwnAgents(g *engine.Grid) []engine.Cell { return g.Positions(teammateTiles...) }

// EnemyFlagCell returns the best-known enemy flag cell: a flag on the ground
// first, otherwise a teammate carrying it.
func EnemyFlagCell(g *engine.Grid) (engine.Cell, bool) {
	return firstOf(g, engine.TileEnemyFlag, engine.TileOwnAgentWithFlag)
}

// OwnFlagCell returns the best-known own flag cell: a flag on the ground
// first, otherwise the enemy carrying it.
func OwnFlagCell(g *engine.Grid) (engine.Cell, bool) {
	return firstOf(g, engine.TileOwnFlag, engine.TileEnemyAgentWithFlag)
}

func firstOf(g *engine.Grid, preferred, fallback engine.Tile) (engine.Cell, bool) {
	if cells := g.Positions(preferred); len(cells) > 0 {
		return cells[0], true
	}
	if cells := g.Positions(fallback); len(cells) > 0 {
		return cells[0], true
	}
	return engine.Cell{}, false
}
