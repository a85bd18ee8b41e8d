package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedOrder marks a clause of an action line that could not be decoded.
var ErrMalformedOrder = errors.New("malformed order")

// Order is one clause of an action line. The set of orders is closed:
// MoveOrder, TorpedoOrder, SonarOrder, SilenceOrder and SurfaceOrder.
type Order interface {
	isOrder()
}

// MoveOrder moves one cell and optionally charges a device.
type MoveOrder struct {
	Dir    Direction
	Charge DeviceType // DeviceNone when no charge is attached
}

// TorpedoOrder fires at a target cell.
type TorpedoOrder struct {
	Target Position
}

// SonarOrder asks whether the opponent is in a sector.
type SonarOrder struct {
	Sector int
}

// SilenceOrder moves 0..4 cells in one direction without revealing it.
// Dir is DirNone and Distance -1 when decoded from an opponent line.
type SilenceOrder struct {
	Dir      Direction
	Distance int
}

// SurfaceOrder resurfaces. Sector is 0 on our own orders; the referee
// appends the sector when echoing the opponent's.
type SurfaceOrder struct {
	Sector int
}

func (MoveOrder) isOrder()    {}
func (TorpedoOrder) isOrder() {}
func (SonarOrder) isOrder()   {}
func (SilenceOrder) isOrder() {}
func (SurfaceOrder) isOrder() {}

// FormatOrder renders an order in the outgoing wire format.
func FormatOrder(o Order) string {
	switch o := o.(type) {
	case MoveOrder:
		if o.Charge == DeviceNone {
			return "MOVE " + o.Dir.String()
		}
		return "MOVE " + o.Dir.String() + " " + o.Charge.String()
	case TorpedoOrder:
		return "TORPEDO " + o.Target.Coordinates()
	case SonarOrder:
		return "SONAR " + strconv.Itoa(o.Sector)
	case SilenceOrder:
		if o.Dir == DirNone {
			return "SILENCE"
		}
		return fmt.Sprintf("SILENCE %s %d", o.Dir, o.Distance)
	case SurfaceOrder:
		if o.Sector > 0 {
			return "SURFACE " + strconv.Itoa(o.Sector)
		}
		return "SURFACE"
	}
	return ""
}

// ParseOrder decodes a single clause such as "MOVE N TORPEDO" or "TORPEDO 3 4".
func ParseOrder(clause string) (Order, error) {
	fields := strings.Fields(clause)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty clause", ErrMalformedOrder)
	}
	switch fields[0] {
	case "MOVE":
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: %q: missing direction", ErrMalformedOrder, clause)
		}
		dir, ok := ParseDirection(fields[1])
		if !ok {
			return nil, fmt.Errorf("%w: %q: bad direction", ErrMalformedOrder, clause)
		}
		mv := MoveOrder{Dir: dir}
		if len(fields) >= 3 {
			// The referee strips the charge from opponent lines; tolerate it anyway.
			if dev, ok := ParseDevice(fields[2]); ok {
				mv.Charge = dev
			}
		}
		return mv, nil

	case "TORPEDO":
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: %q: missing target", ErrMalformedOrder, clause)
		}
		x, errX := strconv.Atoi(fields[1])
		y, errY := strconv.Atoi(fields[2])
		if errX != nil || errY != nil || x < 0 || y < 0 {
			return nil, fmt.Errorf("%w: %q: bad target", ErrMalformedOrder, clause)
		}
		return TorpedoOrder{Target: Position{X: x, Y: y}}, nil

	case "SONAR":
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: %q: missing sector", ErrMalformedOrder, clause)
		}
		s, err := parseSector(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedOrder, clause, err)
		}
		return SonarOrder{Sector: s}, nil

	case "SILENCE":
		si := SilenceOrder{Dir: DirNone, Distance: -1}
		if len(fields) >= 3 {
			dir, ok := ParseDirection(fields[1])
			n, err := strconv.Atoi(fields[2])
			if !ok || err != nil || n < 0 {
				return nil, fmt.Errorf("%w: %q: bad silence vector", ErrMalformedOrder, clause)
			}
			si = SilenceOrder{Dir: dir, Distance: n}
		}
		return si, nil

	case "SURFACE":
		if len(fields) < 2 {
			return SurfaceOrder{}, nil
		}
		s, err := parseSector(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedOrder, clause, err)
		}
		return SurfaceOrder{Sector: s}, nil
	}
	return nil, fmt.Errorf("%w: %q: unsupported order", ErrMalformedOrder, clause)
}

func parseSector(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > NumSectors {
		return 0, fmt.Errorf("sector %d out of range", n)
	}
	return n, nil
}
