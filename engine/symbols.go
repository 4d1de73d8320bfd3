package engine

import (
	"fmt"
	"sort"
)

// Team colours used by the simulation.
const (
	ColorRed  = "red"
	ColorBlue = "blue"
)

// Opponent returns the colour playing against color.
func Opponent(color string) (string, error) {
	switch color {
	case ColorRed:
		return ColorBlue, nil
	case ColorBlue:
		return ColorRed, nil
	}
	return "", fmt.Errorf("unknown team colour %q", color)
}

// Symbols maps an entity name ("wall", "red_agent_f", ...) to the display
// symbol the simulation uses for it.
type Symbols map[string]string

// DefaultSymbols returns the symbol set of the standard arena.
func DefaultSymbols() Symbols {
	return Symbols{
		"empty":        " ",
		"wall":         "#",
		"unknown":      ".",
		"bullet":       "*",
		"red_agent":    "r",
		"red_agent_f":  "R",
		"red_flag":     "x",
		"blue_agent":   "b",
		"blue_agent_f": "B",
		"blue_flag":    "o",
	}
}

// Merge returns a copy of s with every entry of o applied on top.
func (s Symbols) Merge(o Symbols) Symbols {
	out := make(Symbols, len(s)+len(o))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Palette is a symbol table resolved for one team, translating between
// display symbols and team-relative tiles.
type Palette struct {
	Own    string
	decode map[string]Tile
	encode [numTiles]string
}

// Palette resolves s for the team playing own. Every entity must have a
// symbol and no two entities may share one.
func (s Symbols) Palette(own string) (Palette, error) {
	enemy, err := Opponent(own)
	if err != nil {
		return Palette{}, err
	}
	names := map[Tile]string{
		TileEmpty:              "empty",
		TileWall:               "wall",
		TileUnknown:            "unknown",
		TileBullet:             "bullet",
		TileOwnAgent:           own + "_agent",
		TileOwnAgentWithFlag:   own + "_agent_f",
		TileOwnFlag:            own + "_flag",
		TileEnemyAgent:         enemy + "_agent",
		TileEnemyAgentWithFlag: enemy + "_agent_f",
		TileEnemyFlag:          enemy + "_flag",
	}
	p := Palette{Own: own, decode: make(map[string]Tile, len(names))}

	tiles := make([]Tile, 0, len(names))
	for t := range names {
		tiles = append(tiles, t)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })

	for _, t := range tiles {
		name := names[t]
		sym, ok := s[name]
		if !ok || sym == "" {
			return Palette{}, fmt.Errorf("no symbol for %q", name)
		}
		if prev, dup := p.decode[sym]; dup {
			return Palette{}, fmt.Errorf("symbol %q used by both %s and %s", sym, names[prev], name)
		}
		p.decode[sym] = t
		p.encode[t] = sym
	}
	return p, nil
}

// Decode returns the tile for sym. Unrecognised symbols decode to
// TileUnknown with ok=false.
func (p Palette) Decode(sym string) (Tile, bool) {
	t, ok := p.decode[sym]
	if !ok {
		return TileUnknown, false
	}
	return t, true
}

// Encode returns the display symbol for t.
func (p Palette) Encode(t Tile) string {
	if !t.Valid() {
		return p.encode[TileUnknown]
	}
	return p.encode[t]
}

// DecodeWindow converts a window of symbols into tiles. It also returns the
// number of symbols it did not recognise.
func (p Palette) DecodeWindow(rows [][]string) (Window, int) {
	w := make(Window, len(rows))
	unknown := 0
	for r, row := range rows {
		w[r] = make([]Tile, len(row))
		for c, sym := range row {
			t, ok := p.Decode(sym)
			if !ok {
				unknown++
			}
			w[r][c] = t
		}
	}
	return w, unknown
}

// Render draws g as one string per row.
func (p Palette) Render(g *Grid) []string {
	out := make([]string, g.Height)
	for r := 0; r < g.Height; r++ {
		var line []byte
		for c := 0; c < g.Width; c++ {
			line = append(line, p.Encode(g.At(Cell{Row: r, Col: c}))...)
		}
		out[r] = string(line)
	}
	return out
}
