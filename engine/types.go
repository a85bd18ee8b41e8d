package engine

import "fmt"

// CellType is the terrain of one map cell.
type CellType uint8

const (
	CellUnknown CellType = iota // 0: outside the map or unparsed
	CellLand                    // 1: island, 'x' on the map
	CellWater                   // 2: navigable, '.' on the map
)

// String returns the map character for the cell type.
func (c CellType) String() string {
	switch c {
	case CellLand:
		return "x"
	case CellWater:
		return "."
	default:
		return "?"
	}
}

// CellTypeFromChar maps a map character to a CellType.
func CellTypeFromChar(ch byte) CellType {
	switch ch {
	case 'x':
		return CellLand
	case '.':
		return CellWater
	default:
		return CellUnknown
	}
}

// ---------------------------------------------------------------------------
// Directions
// ---------------------------------------------------------------------------

// Direction is one of the four orthogonal headings.
type Direction uint8

const (
	DirNone  Direction = iota // 0
	DirNorth                  // 1: y-1
	DirEast                   // 2: x+1
	DirSouth                  // 3: y+1
	DirWest                   // 4: x-1
)

// Directions is the fixed neighbor expansion order used everywhere a
// deterministic scan over headings is needed.
var Directions = [4]Direction{DirNorth, DirEast, DirSouth, DirWest}

// Offset returns the (dx, dy) unit vector of the direction.
func (d Direction) Offset() (int, int) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirEast:
		return 1, 0
	case DirSouth:
		return 0, 1
	case DirWest:
		return -1, 0
	}
	return 0, 0
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirNorth:
		return DirSouth
	case DirEast:
		return DirWest
	case DirSouth:
		return DirNorth
	case DirWest:
		return DirEast
	}
	return DirNone
}

// String returns the single-letter wire form (N, E, S, W), or "" for DirNone.
func (d Direction) String() string {
	switch d {
	case DirNorth:
		return "N"
	case DirEast:
		return "E"
	case DirSouth:
		return "S"
	case DirWest:
		return "W"
	}
	return ""
}

// ParseDirection decodes a wire heading letter.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "N":
		return DirNorth, true
	case "E":
		return DirEast, true
	case "S":
		return DirSouth, true
	case "W":
		return DirWest, true
	}
	return DirNone, false
}

// ---------------------------------------------------------------------------
// Devices
// ---------------------------------------------------------------------------

// DeviceType identifies a chargeable device.
type DeviceType uint8

const (
	DeviceNone    DeviceType = iota // 0
	DeviceTorpedo                   // 1
	DeviceSonar                     // 2
	DeviceSilence                   // 3
	DeviceMine                      // 4: charged by the referee, never used by the agent
)

// NumDevices sizes per-device arrays (index 0 unused).
const NumDevices = 5

// String returns the wire name of the device.
func (d DeviceType) String() string {
	switch d {
	case DeviceTorpedo:
		return "TORPEDO"
	case DeviceSonar:
		return "SONAR"
	case DeviceSilence:
		return "SILENCE"
	case DeviceMine:
		return "MINE"
	}
	return ""
}

// ParseDevice decodes a wire device name.
func ParseDevice(s string) (DeviceType, bool) {
	switch s {
	case "TORPEDO":
		return DeviceTorpedo, true
	case "SONAR":
		return DeviceSonar, true
	case "SILENCE":
		return DeviceSilence, true
	case "MINE":
		return DeviceMine, true
	}
	return DeviceNone, false
}

// ---------------------------------------------------------------------------
// Positions
// ---------------------------------------------------------------------------

// Position is a cell coordinate. Unknown is the "not known" sentinel.
type Position struct {
	X int
	Y int
}

// Unknown is the sentinel for an unknown position.
var Unknown = Position{X: -1, Y: -1}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position { return Position{X: x, Y: y} }

// Known reports whether p is a real coordinate.
func (p Position) Known() bool { return p.X >= 0 && p.Y >= 0 }

// Distance returns the Manhattan distance between p and o.
func (p Position) Distance(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Chebyshev returns the king-move distance between p and o. A torpedo
// damages every cell at Chebyshev distance <= 1 from its target.
func (p Position) Chebyshev(o Position) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

// Step returns the neighbor of p in direction d. No bounds checks.
func (p Position) Step(d Direction) Position {
	dx, dy := d.Offset()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// StepN returns p moved n cells in direction d.
func (p Position) StepN(d Direction, n int) Position {
	dx, dy := d.Offset()
	return Position{X: p.X + dx*n, Y: p.Y + dy*n}
}

// DirectionTo returns the heading from p to an orthogonally adjacent cell o,
// or DirNone when o is not adjacent.
func (p Position) DirectionTo(o Position) Direction {
	for _, d := range Directions {
		if p.Step(d) == o {
			return d
		}
	}
	return DirNone
}

// Coordinates returns the "x y" wire form.
func (p Position) Coordinates() string { return fmt.Sprintf("%d %d", p.X, p.Y) }

func (p Position) String() string {
	if !p.Known() {
		return "(?)"
	}
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ---------------------------------------------------------------------------
// Estimated positions
// ---------------------------------------------------------------------------

// EstimatedPosition is a position known to within XPrecision columns and
// YPrecision rows. Precision 0 means exact; -1 means no estimate at all.
type EstimatedPosition struct {
	Position
	XPrecision int
	YPrecision int
}

// NoEstimate is the empty estimate.
var NoEstimate = EstimatedPosition{Position: Unknown, XPrecision: -1, YPrecision: -1}

// NewEstimate builds an estimate with the same precision on both axes.
func NewEstimate(p Position, precision int) EstimatedPosition {
	return EstimatedPosition{Position: p, XPrecision: precision, YPrecision: precision}
}

// Known reports whether the estimate carries a position.
func (e EstimatedPosition) Known() bool {
	return e.Position.Known() && e.XPrecision >= 0 && e.YPrecision >= 0
}

// Precision returns the coarser of the two axis precisions.
func (e EstimatedPosition) Precision() int { return max(e.XPrecision, e.YPrecision) }

// Widen returns the estimate with both precisions increased by n.
func (e EstimatedPosition) Widen(n int) EstimatedPosition {
	e.XPrecision += n
	e.YPrecision += n
	return e
}

// Contains reports whether p lies inside the estimate's precision box.
func (e EstimatedPosition) Contains(p Position) bool {
	if !e.Known() {
		return false
	}
	return abs(p.X-e.X) <= e.XPrecision && abs(p.Y-e.Y) <= e.YPrecision
}

func (e EstimatedPosition) String() string {
	if !e.Known() {
		return "(?)"
	}
	return fmt.Sprintf("%s±%d:%d", e.Position, e.XPrecision, e.YPrecision)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
