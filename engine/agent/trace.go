package agent

import engine "github.com/CodeIngame/OceanOfCode/engine"

// Trace replays our own orders through a candidate set, the way an opponent
// tracking us would. A small count means we are easy to find.
type Trace struct {
	set   *CandidateSet
	rules engine.Rules
}

// NewTrace starts from every water cell.
func NewTrace(g *engine.Grid, rules engine.Rules) *Trace {
	return &Trace{set: NewCandidateSet(g), rules: rules}
}

// Observe applies the orders we emitted. sector is the sector we were in
// when the line resolved, which a SURFACE reveals.
func (t *Trace) Observe(ins engine.Instruction, sector int) int {
	for _, o := range ins.Orders {
		switch o := o.(type) {
		case engine.MoveOrder:
			t.set.Advance(o.Dir)
		case engine.TorpedoOrder:
			t.set.KeepWithin(o.Target, t.rules.TorpedoRange)
		case engine.SilenceOrder:
			t.set.Reseed()
		case engine.SurfaceOrder:
			if sector > 0 {
				t.set.KeepSector(sector)
			}
		}
	}
	if t.set.Count() == 0 {
		t.set.Reseed()
	}
	return t.set.Count()
}

// Count returns how many cells the opponent could still place us in.
func (t *Trace) Count() int { return t.set.Count() }

// Candidates returns the cells the opponent could still place us in.
func (t *Trace) Candidates() []engine.Position { return t.set.Positions() }
