package engine

// Window is the local square of tiles an agent observes on one tick,
// indexed [row][col] and centred on the observer.
type Window [][]Tile

// Size returns the side length of the window.
func (w Window) Size() int { return len(w) }

// Half returns the offset from the window's edge to its centre.
func (w Window) Half() int { return len(w) / 2 }

// Global maps window-local (r, c) to the belief-grid cell it shows when the
// observer stands at center.
func (w Window) Global(r, c int, center Cell) Cell {
	h := w.Half()
	return Cell{Row: center.Row + r - h, Col: center.Col + c - h}
}

// At returns the tile the window shows at global cell c when the observer
// stands at center. ok is false when c lies outside the window.
func (w Window) At(center, c Cell) (t Tile, ok bool) {
	h := w.Half()
	r, col := c.Row-center.Row+h, c.Col-center.Col+h
	if r < 0 || r >= len(w) || col < 0 || col >= len(w[r]) {
		return TileUnknown, false
	}
	return w[r][col], true
}

// Bounds is an inclusive rectangle of belief-grid cells.
type Bounds struct {
	Min Cell
	Max Cell
}

// Contains reports whether c lies inside b.
func (b Bounds) Contains(c Cell) bool {
	return c.Row >= b.Min.Row && c.Row <= b.Max.Row && c.Col >= b.Min.Col && c.Col <= b.Max.Col
}

// Bounds returns the footprint of the window in belief-grid coordinates when
// the observer stands at center. It is not clipped to any grid.
func (w Window) Bounds(center Cell) Bounds {
	h := w.Half()
	width := 0
	if len(w) > 0 {
		width = len(w[0])
	}
	return Bounds{
		Min: Cell{Row: center.Row - h, Col: center.Col - h},
		Max: Cell{Row: center.Row - h + len(w) - 1, Col: center.Col - h + width - 1},
	}
}

// VisiblePositions returns the global cells where the window shows one of
// kinds, scanning row-major.
func (w Window) VisiblePositions(center Cell, kinds ...Tile) []Cell {
	var out []Cell
	for r, row := range w {
		for c, t := range row {
			if containsTile(kinds, t) {
				out = append(out, w.Global(r, c, center))
			}
		}
	}
	return out
}

// NewWindow returns an all-Unknown square window of the given size.
func NewWindow(size int) Window {
	w := make(Window, size)
	for i := range w {
		w[i] = make([]Tile, size)
	}
	return w
}

// Fill sets every cell of the window to t.
func (w Window) Fill(t Tile) Window {
	for _, row := range w {
		for c := range row {
			row[c] = t
		}
	}
	return w
}
