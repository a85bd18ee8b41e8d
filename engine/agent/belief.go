// Package agent tracks where the opponent submarine can be.
//
// Belief layers three signals: an exact position, a position estimate with
// per-axis precision, and an exhaustive candidate set. It is updated once per
// turn from the opponent's decoded action line, our own previous orders, our
// sonar result and the opponent's HP delta. Nothing else writes it.
package agent

import (
	"fmt"

	engine "github.com/CodeIngame/OceanOfCode/engine"
)

// Observation is everything learned about the opponent in one turn.
type Observation struct {
	Orders engine.Instruction // the opponent's action line, in resolution order
	Ours   engine.Instruction // our own orders from the previous turn
	Sonar  string             // result of our sonar: "Y", "N" or "NA"
	HPLost int                // opponent HP lost since the previous reading
}

// Report summarizes one Update for logging and recording.
type Report struct {
	Hit        HitCase
	Damage     int // HP lost to torpedoes, SURFACE excluded
	Mode       Mode
	Exact      engine.Position
	Estimate   engine.EstimatedPosition
	Candidates int
	Reseeds    int
	Skipped    int // opponent clauses that could not be decoded
}

// Belief is the opponent localization model.
type Belief struct {
	grid     *engine.Grid
	rules    engine.Rules
	cands    *CandidateSet
	exact    engine.Position
	estimate engine.EstimatedPosition
}

// NewBelief starts with every water cell as a candidate and nothing known.
func NewBelief(g *engine.Grid, rules engine.Rules) *Belief {
	return &Belief{
		grid:     g,
		rules:    rules,
		cands:    NewCandidateSet(g),
		exact:    engine.Unknown,
		estimate: engine.NoEstimate,
	}
}

// Update folds one turn of observations into the belief.
func (b *Belief) Update(obs Observation) Report {
	r := Report{Skipped: len(obs.Orders.Skipped)}

	// Step 1: our sonar was measured before the opponent acted.
	if sonar, ok := obs.Ours.Sonar(); ok && (obs.Sonar == "Y" || obs.Sonar == "N") {
		b.applySonar(sonar.Sector, obs.Sonar == "Y", &r)
	}

	// Step 2: attribute the HP delta.
	r.Hit, r.Damage = classifyHit(obs, b.rules)

	// Step 3: our torpedo also resolved before the opponent's orders.
	if t, ok := obs.Ours.Torpedo(); ok {
		b.applyOurShot(r.Hit, t.Target, &r)
	}
	b.collapse(&r)

	// Step 4: the opponent's orders, left to right.
	for _, o := range obs.Orders.Orders {
		switch o := o.(type) {
		case engine.MoveOrder:
			b.applyMove(o.Dir, &r)
		case engine.TorpedoOrder:
			b.applyTorpedo(o.Target, &r)
			b.applyTheirShot(r.Hit, r.Damage, o.Target, &r)
		case engine.SurfaceOrder:
			b.applySurface(o.Sector, &r)
		case engine.SilenceOrder:
			b.applySilence(o, &r)
		case engine.SonarOrder:
			// Scanning us reveals nothing about them.
		}
		b.collapse(&r)
	}

	// Step 5: derive the estimate from the candidates when they are tighter.
	b.tighten()

	r.Mode = b.Mode()
	r.Exact = b.exact
	r.Estimate = b.estimate
	r.Candidates = b.cands.Count()
	return r
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Mode reports the best available kind of knowledge.
func (b *Belief) Mode() Mode {
	switch {
	case b.exact.Known():
		return ModeKnown
	case b.estimate.Known():
		return ModeEstimated
	}
	return ModeUnknown
}

// Exact returns the opponent's exact position, or engine.Unknown.
func (b *Belief) Exact() engine.Position { return b.exact }

// Estimate returns the current estimate; precision 0 when exact is known.
func (b *Belief) Estimate() engine.EstimatedPosition { return b.estimate }

// Candidates returns the live candidate positions.
func (b *Belief) Candidates() []engine.Position { return b.cands.Positions() }

// CandidateCount returns the number of live candidates.
func (b *Belief) CandidateCount() int { return b.cands.Count() }

// SectorCounts returns live candidates per sector (index 1..9).
func (b *Belief) SectorCounts() [engine.NumSectors + 1]int { return b.cands.SectorCounts() }

func (b *Belief) String() string {
	return fmt.Sprintf("%s exact=%s estimate=%s candidates=%d",
		b.Mode(), b.exact, b.estimate, b.cands.Count())
}

// ---------------------------------------------------------------------------
// Order handling
// ---------------------------------------------------------------------------

func (b *Belief) known() bool { return b.exact.Known() }

func (b *Belief) applyMove(d engine.Direction, r *Report) {
	if b.known() {
		next := b.exact.Step(d)
		if b.grid.IsWaterAt(next) {
			b.setExact(next)
			return
		}
		b.dropExact(r)
	}
	b.cands.Advance(d)
	if !b.estimate.Known() {
		return
	}
	if next := b.estimate.Position.Step(d); b.grid.IsWaterAt(next) {
		b.estimate.Position = next
	} else {
		b.estimate = b.estimate.Widen(1)
	}
}

func (b *Belief) applyTorpedo(target engine.Position, r *Report) {
	rng := b.rules.TorpedoRange
	if b.known() {
		if b.exact.Distance(target) <= rng {
			return
		}
		b.dropExact(r)
	}
	b.cands.KeepWithin(target, rng)

	e := b.estimate
	finer := e.Known() && e.Precision() < rng &&
		e.Distance(target) <= rng+e.XPrecision+e.YPrecision
	if !finer {
		b.estimate = engine.NewEstimate(target, rng)
	}
}

func (b *Belief) applySurface(sector int, r *Report) {
	if sector == 0 {
		return
	}
	if b.known() {
		if b.grid.SectorAt(b.exact) == sector {
			return
		}
		b.dropExact(r)
	}
	b.cands.KeepSector(sector)

	e := b.estimate
	if !e.Known() || b.grid.SectorAt(e.Position) != sector || e.Precision() > b.rules.SurfacePrecision {
		b.estimate = engine.NewEstimate(b.grid.SectorCenter(sector), b.rules.SurfacePrecision)
	}
}

func (b *Belief) applySilence(o engine.SilenceOrder, r *Report) {
	if b.known() && o.Dir != engine.DirNone && o.Distance >= 0 {
		p := b.exact
		for i := 0; i < o.Distance; i++ {
			p = p.Step(o.Dir)
		}
		if b.grid.IsWaterAt(p) {
			b.setExact(p)
			return
		}
	}

	if b.known() {
		b.estimate = engine.NewEstimate(b.exact, b.rules.SilenceRange)
		b.exact = engine.Unknown
	} else if b.estimate.Known() {
		b.estimate = b.estimate.Widen(b.rules.SilenceRange)
	}
	b.cands.Reseed()
	r.Reseeds++
}

func (b *Belief) applySonar(sector int, inside bool, r *Report) {
	if b.known() {
		if (b.grid.SectorAt(b.exact) == sector) == inside {
			return
		}
		b.dropExact(r)
	}
	e := b.estimate
	if inside {
		b.cands.KeepSector(sector)
		if !e.Known() || b.grid.SectorAt(e.Position) != sector {
			b.estimate = engine.NewEstimate(b.grid.SectorCenter(sector), b.rules.SurfacePrecision)
		}
		return
	}
	b.cands.DropSector(sector)
	if e.Known() && b.grid.SectorAt(e.Position) == sector {
		b.estimate = engine.NoEstimate
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// setExact pins the opponent to p; the candidate set follows.
func (b *Belief) setExact(p engine.Position) {
	b.exact = p
	b.estimate = engine.NewEstimate(p, 0)
	b.cands.Reseed()
	b.cands.KeepOnly(p)
}

// dropExact forgets a contradicted exact position and reopens the search.
func (b *Belief) dropExact(r *Report) {
	b.exact = engine.Unknown
	b.estimate = engine.NoEstimate
	b.cands.Reseed()
	r.Reseeds++
}

// collapse promotes a singleton candidate to exact and reseeds an empty set.
func (b *Belief) collapse(r *Report) {
	if b.known() {
		return
	}
	switch b.cands.Count() {
	case 0:
		// Only unmodelled damage (mines) can get here; start over.
		b.cands.Reseed()
		r.Reseeds++
	case 1:
		p, _ := b.cands.Single()
		b.setExact(p)
	}
}

// tighten replaces the estimate with the candidates' bounding box when the
// box is finer, or when no candidate lies inside the current estimate.
func (b *Belief) tighten() {
	if b.known() {
		return
	}
	box, ok := b.cands.Bounds()
	if !ok {
		return
	}
	usable := box.Precision() <= b.rules.TorpedoRange

	e := b.estimate
	if e.Known() && !b.estimateSupported() {
		e = engine.NoEstimate
	}
	if usable && (!e.Known() || box.Precision() < e.Precision()) {
		e = box
	}
	b.estimate = e
}

func (b *Belief) estimateSupported() bool {
	for _, p := range b.cands.Positions() {
		if b.estimate.Contains(p) {
			return true
		}
	}
	return false
}
