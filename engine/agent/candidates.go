package agent

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	engine "github.com/CodeIngame/OceanOfCode/engine"
)

// Candidate is one hypothesis for a hidden submarine's position.
type Candidate struct {
	Pos   engine.Position
	Alive bool
}

// CandidateSet is the "virtual fleet": one candidate per water cell at seed
// time, advanced in lockstep with every observed move and killed when the
// move would leave the water. Between reseeds the alive count never grows.
type CandidateSet struct {
	grid  *engine.Grid
	cands []Candidate
	alive int
}

// NewCandidateSet seeds one live candidate per water cell of g.
func NewCandidateSet(g *engine.Grid) *CandidateSet {
	s := &CandidateSet{grid: g}
	s.Reseed()
	return s
}

// Reseed restores the full population, discarding all eliminations.
func (s *CandidateSet) Reseed() {
	water := s.grid.WaterCells()
	s.cands = make([]Candidate, len(water))
	for i, p := range water {
		s.cands[i] = Candidate{Pos: p, Alive: true}
	}
	s.alive = len(water)
}

// Count returns the number of live candidates.
func (s *CandidateSet) Count() int { return s.alive }

// Positions returns the live candidate positions in seed order.
func (s *CandidateSet) Positions() []engine.Position {
	out := make([]engine.Position, 0, s.alive)
	for _, c := range s.cands {
		if c.Alive {
			out = append(out, c.Pos)
		}
	}
	return out
}

// Contains reports whether p is the position of a live candidate.
func (s *CandidateSet) Contains(p engine.Position) bool {
	for _, c := range s.cands {
		if c.Alive && c.Pos == p {
			return true
		}
	}
	return false
}

// Single returns the only live candidate, if exactly one remains.
func (s *CandidateSet) Single() (engine.Position, bool) {
	if s.alive != 1 {
		return engine.Unknown, false
	}
	for _, c := range s.cands {
		if c.Alive {
			return c.Pos, true
		}
	}
	return engine.Unknown, false
}

// SectorCounts returns live candidates per sector, indexed 1..9.
func (s *CandidateSet) SectorCounts() [engine.NumSectors + 1]int {
	var out [engine.NumSectors + 1]int
	for _, c := range s.cands {
		if c.Alive {
			out[s.grid.SectorAt(c.Pos)]++
		}
	}
	return out
}

// Bounds returns the smallest estimate covering every live candidate.
func (s *CandidateSet) Bounds() (engine.EstimatedPosition, bool) {
	if s.alive == 0 {
		return engine.NoEstimate, false
	}
	minX, minY := s.grid.Width, s.grid.Height
	maxX, maxY := -1, -1
	for _, c := range s.cands {
		if !c.Alive {
			continue
		}
		minX, maxX = min(minX, c.Pos.X), max(maxX, c.Pos.X)
		minY, maxY = min(minY, c.Pos.Y), max(maxY, c.Pos.Y)
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return engine.EstimatedPosition{
		Position:   engine.Pos(cx, cy),
		XPrecision: maxX - cx,
		YPrecision: maxY - cy,
	}, true
}

// ---------------------------------------------------------------------------
// Elimination
// ---------------------------------------------------------------------------

// Advance moves every live candidate one cell in direction d and kills the
// ones that leave the grid or hit land. Returns the new live count.
func (s *CandidateSet) Advance(d engine.Direction) int {
	g := s.grid
	return s.apply(func(c *Candidate) {
		next := c.Pos.Step(d)
		if !g.IsWaterAt(next) {
			c.Alive = false
			return
		}
		c.Pos = next
	})
}

// KeepSector kills every candidate outside sector.
func (s *CandidateSet) KeepSector(sector int) int {
	g := s.grid
	return s.keep(func(p engine.Position) bool { return g.SectorAt(p) == sector })
}

// DropSector kills every candidate inside sector.
func (s *CandidateSet) DropSector(sector int) int {
	g := s.grid
	return s.keep(func(p engine.Position) bool { return g.SectorAt(p) != sector })
}

// KeepWithin kills every candidate farther than dist (Manhattan) from center.
func (s *CandidateSet) KeepWithin(center engine.Position, dist int) int {
	return s.keep(func(p engine.Position) bool { return p.Distance(center) <= dist })
}

// DropBlast kills every candidate a torpedo at center would have damaged.
func (s *CandidateSet) DropBlast(center engine.Position) int {
	return s.keep(func(p engine.Position) bool { return p.Chebyshev(center) > 1 })
}

// KeepRing keeps only the eight cells around center.
func (s *CandidateSet) KeepRing(center engine.Position) int {
	return s.keep(func(p engine.Position) bool { return p.Chebyshev(center) == 1 })
}

// KeepOnly keeps only a candidate standing on p.
func (s *CandidateSet) KeepOnly(p engine.Position) int {
	return s.keep(func(q engine.Position) bool { return q == p })
}

// KeepBox keeps only candidates inside the precision box of e.
func (s *CandidateSet) KeepBox(e engine.EstimatedPosition) int {
	return s.keep(e.Contains)
}

func (s *CandidateSet) keep(pred func(engine.Position) bool) int {
	return s.apply(func(c *Candidate) {
		if !pred(c.Pos) {
			c.Alive = false
		}
	})
}

// apply runs fn over every live candidate in parallel chunks, then recounts.
// Each worker owns a disjoint slice range and only reads the grid.
func (s *CandidateSet) apply(fn func(*Candidate)) int {
	n := len(s.cands)
	chunks := (n + advanceChunk - 1) / advanceChunk
	counts := make([]int, chunks)

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < chunks; i++ {
		lo := i * advanceChunk
		hi := min(lo+advanceChunk, n)
		eg.Go(func() error {
			alive := 0
			for j := lo; j < hi; j++ {
				c := &s.cands[j]
				if !c.Alive {
					continue
				}
				fn(c)
				if c.Alive {
					alive++
				}
			}
			counts[i] = alive
			return nil
		})
	}
	_ = eg.Wait()

	s.alive = 0
	for _, c := range counts {
		s.alive += c
	}
	return s.alive
}
