package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMap is returned by NewGrid for malformed map input.
var ErrInvalidMap = errors.New("invalid map")

// NumSectors is the number of sectors the grid is tiled into (3×3).
const NumSectors = 9

// Grid is the static terrain of the match plus the agent's own visited layer.
// Terrain never changes after NewGrid; only the owning agent's movement code
// touches the visited layer.
type Grid struct {
	Width  int
	Height int

	terrain []CellType
	visited []bool

	sectorW int
	sectorH int
}

// NewGrid builds a grid from height rows of width characters ('x' land, '.' water).
func NewGrid(width, height int, rows []string) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidMap, width, height)
	}
	if len(rows) != height {
		return nil, fmt.Errorf("%w: got %d rows, want %d", ErrInvalidMap, len(rows), height)
	}
	g := &Grid{
		Width:   width,
		Height:  height,
		terrain: make([]CellType, width*height),
		visited: make([]bool, width*height),
		sectorW: (width + 2) / 3,
		sectorH: (height + 2) / 3,
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidMap, y, len(row), width)
		}
		for x := 0; x < width; x++ {
			ct := CellTypeFromChar(row[x])
			if ct == CellUnknown {
				return nil, fmt.Errorf("%w: unexpected %q at (%d,%d)", ErrInvalidMap, row[x], x, y)
			}
			g.terrain[y*width+x] = ct
		}
	}
	return g, nil
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// TerrainAt returns the terrain at (x, y); ok is false when out of bounds.
func (g *Grid) TerrainAt(x, y int) (CellType, bool) {
	if !g.InBounds(x, y) {
		return CellUnknown, false
	}
	return g.terrain[y*g.Width+x], true
}

// IsWater reports whether (x, y) is an in-bounds water cell.
func (g *Grid) IsWater(x, y int) bool {
	ct, ok := g.TerrainAt(x, y)
	return ok && ct == CellWater
}

// IsWaterAt is IsWater for a Position.
func (g *Grid) IsWaterAt(p Position) bool { return g.IsWater(p.X, p.Y) }

// SectorOf returns the sector (1..9, row-major) of (x, y), or 0 when out of bounds.
func (g *Grid) SectorOf(x, y int) int {
	if !g.InBounds(x, y) {
		return 0
	}
	return (y/g.sectorH)*3 + x/g.sectorW + 1
}

// SectorAt is SectorOf for a Position.
func (g *Grid) SectorAt(p Position) int { return g.SectorOf(p.X, p.Y) }

// SectorCenter returns the middle cell of a sector. When that cell is land
// the first walkable neighbor is used instead; an all-land neighborhood
// returns the land cell unchanged. Unknown is returned for invalid sectors.
func (g *Grid) SectorCenter(sector int) Position {
	if sector < 1 || sector > NumSectors {
		return Unknown
	}
	col := (sector - 1) % 3
	row := (sector - 1) / 3
	p := Position{
		X: min(col*g.sectorW+g.sectorW/2, g.Width-1),
		Y: min(row*g.sectorH+g.sectorH/2, g.Height-1),
	}
	return g.nearestWater(p)
}

// Center returns the rough middle of the grid, moved onto water when needed.
func (g *Grid) Center() Position {
	return g.nearestWater(Position{X: g.Width / 2, Y: g.Height / 2})
}

func (g *Grid) nearestWater(p Position) Position {
	if g.IsWaterAt(p) {
		return p
	}
	if n := g.WalkableNeighbors(p, false); len(n) > 0 {
		return n[0]
	}
	return p
}

// ---------------------------------------------------------------------------
// Visited layer
// ---------------------------------------------------------------------------

// MarkVisited flags (x, y) as already travelled by the agent. Out-of-bounds
// cells are ignored and reported as false.
func (g *Grid) MarkVisited(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.visited[y*g.Width+x] = true
	return true
}

// IsVisited reports the visited flag of (x, y); false when out of bounds.
func (g *Grid) IsVisited(x, y int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	return g.visited[y*g.Width+x]
}

// ResetVisited clears every visited flag.
func (g *Grid) ResetVisited() {
	clear(g.visited)
}

// VisitedMask returns a copy of the visited layer, row-major.
func (g *Grid) VisitedMask() []bool {
	out := make([]bool, len(g.visited))
	copy(out, g.visited)
	return out
}

// CanEnter reports whether the agent may move onto p: in bounds, water and,
// when respectVisited is set, not yet visited.
func (g *Grid) CanEnter(p Position, respectVisited bool) bool {
	if !g.IsWaterAt(p) {
		return false
	}
	return !respectVisited || !g.IsVisited(p.X, p.Y)
}

// WalkableNeighbors returns the up-to-four orthogonal neighbors of pos that
// can be entered, in Directions order.
func (g *Grid) WalkableNeighbors(pos Position, respectVisited bool) []Position {
	out := make([]Position, 0, 4)
	for _, d := range Directions {
		n := pos.Step(d)
		if g.CanEnter(n, respectVisited) {
			out = append(out, n)
		}
	}
	return out
}

// WaterCells returns every water cell, row-major.
func (g *Grid) WaterCells() []Position {
	out := make([]Position, 0, len(g.terrain))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.terrain[y*g.Width+x] == CellWater {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// StartPosition picks the starting cell: the median water cell (row-major)
// of the sector holding the most water. Ties go to the later sector.
func (g *Grid) StartPosition() Position {
	var bySector [NumSectors + 1][]Position
	for _, p := range g.WaterCells() {
		s := g.SectorAt(p)
		bySector[s] = append(bySector[s], p)
	}
	best := 0
	for s := 1; s <= NumSectors; s++ {
		if len(bySector[s]) > 0 && len(bySector[s]) >= len(bySector[best]) {
			best = s
		}
	}
	cells := bySector[best]
	if len(cells) == 0 {
		return Unknown
	}
	return cells[len(cells)/2]
}

// String renders the map with visited cells as 'o'.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.visited[y*g.Width+x] {
				sb.WriteByte('o')
				continue
			}
			sb.WriteString(g.terrain[y*g.Width+x].String())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
