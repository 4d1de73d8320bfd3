// Package engine holds the shared vocabulary of the capture-the-flag world:
// tiles and their traversal costs, cells and directions, the belief grid, the
// observation window, and the symbol table the simulation speaks.
package engine

// Grid is a row-major 2-D array of tiles. The zero Tile is TileUnknown, so a
// freshly allocated grid is all-Unknown.
type Grid struct {
	Height int    `json:"height"`
	Width  int    `json:"width"`
	Tiles  []Tile `json:"tiles"`
}

// NewGrid allocates an all-Unknown grid.
func NewGrid(height, width int) Grid {
	if height < 0 {
		height = 0
	}
	if width < 0 {
		width = 0
	}
	return Grid{Height: height, Width: width, Tiles: make([]Tile, height*width)}
}

// GridFromRows builds a grid from explicit rows. Short rows are padded with
// TileUnknown.
func GridFromRows(rows [][]Tile) Grid {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	g := NewGrid(len(rows), width)
	for i, r := range rows {
		copy(g.Tiles[i*width:], r)
	}
	return g
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool { return g.Height == 0 || g.Width == 0 }

// InBounds reports whether c addresses a cell of g.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Height && c.Col >= 0 && c.Col < g.Width
}

// At returns the tile at c, or TileWall outside the grid.
func (g *Grid) At(c Cell) Tile {
	if !g.InBounds(c) {
		return TileWall
	}
	return g.Tiles[c.Row*g.Width+c.Col]
}

// Set writes t at c. Out-of-bounds writes are ignored.
func (g *Grid) Set(c Cell, t Tile) {
	if !g.InBounds(c) {
		return
	}
	g.Tiles[c.Row*g.Width+c.Col] = t
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() Grid {
	out := Grid{Height: g.Height, Width: g.Width, Tiles: make([]Tile, len(g.Tiles))}
	copy(out.Tiles, g.Tiles)
	return out
}

// Positions scans the grid in row-major order and returns every cell holding
// one of kinds.
func (g *Grid) Positions(kinds ...Tile) []Cell {
	var out []Cell
	for i, t := range g.Tiles {
		if containsTile(kinds, t) {
			out = append(out, Cell{Row: i / g.Width, Col: i % g.Width})
		}
	}
	return out
}

// Neighbors returns the in-bounds cells one step from c, in Directions order.
func (g *Grid) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, d := range Directions {
		n := c.Add(d.Delta())
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Count returns how many cells hold t.
func (g *Grid) Count(t Tile) int {
	n := 0
	for _, x := range g.Tiles {
		if x == t {
			n++
		}
	}
	return n
}

func containsTile(kinds []Tile, t Tile) bool {
	for _, k := range kinds {
		if k == t {
			return true
		}
	}
	return false
}
