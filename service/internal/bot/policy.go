// internal/bot/policy.go
package bot

import (
	engine "github.com/CodeIngame/OceanOfCode/engine"
	"github.com/CodeIngame/OceanOfCode/engine/agent"
)

// Decision is the outcome of one turn of the policy.
type Decision struct {
	Instruction engine.Instruction
	Target      engine.Position // where movement was heading; Unknown on SURFACE
	End         engine.Position // our cell once the orders resolve
	Surfaced    bool
}

// Policy turns the belief about the opponent into our orders for the turn.
// It owns the visited layer of the grid.
type Policy struct {
	grid  *engine.Grid
	rules engine.Rules
}

func NewPolicy(g *engine.Grid, rules engine.Rules) *Policy {
	return &Policy{grid: g, rules: rules}
}

// Decide picks the orders for this turn. traceCount is how many cells the
// opponent could still place us in.
func (p *Policy) Decide(me *engine.Player, belief *agent.Belief, traceCount int) Decision {
	pos := me.Position
	var orders []engine.Order
	used := make(map[engine.DeviceType]bool)

	if target, ok := p.attackTarget(me, belief); ok {
		orders = append(orders, engine.TorpedoOrder{Target: target})
		used[engine.DeviceTorpedo] = true
	}
	if sector, ok := p.sonarSector(me, belief); ok {
		orders = append(orders, engine.SonarOrder{Sector: sector})
		used[engine.DeviceSonar] = true
	}
	if me.Ready(engine.DeviceSilence) && traceCount < p.rules.SilenceTrigger {
		if o, end, ok := p.silence(pos); ok {
			orders = append(orders, o)
			used[engine.DeviceSilence] = true
			pos = end
		}
	}

	d := Decision{End: pos}
	d.Target = p.moveTarget(pos, belief)
	if next, ok := p.nextStep(pos, d.Target); ok {
		p.grid.MarkVisited(next.X, next.Y)
		orders = append(orders, engine.MoveOrder{
			Dir:    pos.DirectionTo(next),
			Charge: p.reload(me, used),
		})
		d.End = next
	} else {
		p.grid.ResetVisited()
		p.grid.MarkVisited(pos.X, pos.Y)
		orders = append(orders, engine.SurfaceOrder{})
		d.Target = engine.Unknown
		d.Surfaced = true
	}

	d.Instruction = engine.Instruction{Orders: orders, Estimate: belief.Estimate()}
	d.Instruction.Raw = d.Instruction.String()
	return d
}

// ---------------------------------------------------------------------------
// Attack
// ---------------------------------------------------------------------------

func (p *Policy) attackTarget(me *engine.Player, belief *agent.Belief) (engine.Position, bool) {
	if !me.Ready(engine.DeviceTorpedo) {
		return engine.Unknown, false
	}
	pos := me.Position
	rng := p.rules.TorpedoRange
	exact, est := belief.Exact(), belief.Estimate()

	target := engine.Unknown
	switch {
	case exact.Known() && pos.Distance(exact) <= rng:
		target = exact
	case est.Known() && pos.Distance(est.Position) <= rng:
		target = est.Position
	case est.Known() && pos.Distance(est.Position) <= rng+1:
		if path := engine.FindPath(p.grid, pos, est.Position, false); len(path) >= 2 {
			target = path[len(path)-2]
		}
	}
	if !p.SafeTarget(pos, target) {
		return engine.Unknown, false
	}
	return target, true
}

// SafeTarget reports whether a torpedo from pos may be aimed at target:
// water, clear of our own blast and reachable by the torpedo's route.
func (p *Policy) SafeTarget(pos, target engine.Position) bool {
	if !p.grid.IsWaterAt(target) {
		return false
	}
	if pos.Distance(target) <= p.rules.SafetyRadius {
		return false
	}
	n := engine.PathLength(p.grid, pos, target, false)
	return n >= 0 && n <= p.rules.TorpedoRange
}

// ---------------------------------------------------------------------------
// Devices
// ---------------------------------------------------------------------------

// sonarSector asks about the most crowded sector while it is informative.
func (p *Policy) sonarSector(me *engine.Player, belief *agent.Belief) (int, bool) {
	if !me.Ready(engine.DeviceSonar) || belief.Exact().Known() {
		return 0, false
	}
	counts := belief.SectorCounts()
	best := 0
	for s := 1; s <= engine.NumSectors; s++ {
		if counts[s] > counts[best] {
			best = s
		}
	}
	if best == 0 || counts[best] == belief.CandidateCount() {
		return 0, false
	}
	return best, true
}

// silenceOrder is the preference among equally long runs.
var silenceOrder = [4]engine.Direction{engine.DirEast, engine.DirNorth, engine.DirWest, engine.DirSouth}

// silence picks the longest unvisited straight run and marks it travelled.
func (p *Policy) silence(pos engine.Position) (engine.SilenceOrder, engine.Position, bool) {
	bestDir, bestLen := engine.DirNone, 0
	for _, d := range silenceOrder {
		n := 0
		for n < p.rules.SilenceRange && p.grid.CanEnter(pos.StepN(d, n+1), true) {
			n++
		}
		if n > bestLen {
			bestDir, bestLen = d, n
		}
	}
	if bestLen == 0 {
		return engine.SilenceOrder{}, pos, false
	}
	for i := 1; i <= bestLen; i++ {
		c := pos.StepN(bestDir, i)
		p.grid.MarkVisited(c.X, c.Y)
	}
	return engine.SilenceOrder{Dir: bestDir, Distance: bestLen}, pos.StepN(bestDir, bestLen), true
}

// reload nominates the device to charge, after counting devices used this
// turn as fully discharged.
func (p *Policy) reload(me *engine.Player, used map[engine.DeviceType]bool) engine.DeviceType {
	cd := me.Cooldowns
	for d := range used {
		cd[d] = p.rules.CooldownOf(d)
	}
	for _, d := range p.rules.ReloadPriority {
		if cd[d] > 0 {
			return d
		}
	}
	return engine.DeviceNone
}

// ---------------------------------------------------------------------------
// Movement
// ---------------------------------------------------------------------------

// moveTarget closes in on a far opponent and otherwise holds our sector.
func (p *Policy) moveTarget(pos engine.Position, belief *agent.Belief) engine.Position {
	if exact := belief.Exact(); exact.Known() {
		if pos.Distance(exact) >= p.rules.TorpedoRange {
			return exact
		}
		return p.grid.SectorCenter(p.grid.SectorAt(pos))
	}
	if est := belief.Estimate(); est.Known() {
		if pos.Distance(est.Position) >= p.rules.ApproachDistance {
			return est.Position
		}
		return p.grid.SectorCenter(p.grid.SectorAt(pos))
	}
	return p.grid.Center()
}

// nextStep follows the route to target, falling back to any unvisited
// neighbor. false means we are boxed in.
func (p *Policy) nextStep(pos, target engine.Position) (engine.Position, bool) {
	if target != pos {
		if path := engine.FindPath(p.grid, pos, target, true); len(path) > 0 {
			return path[0], true
		}
	}
	if n := p.grid.WalkableNeighbors(pos, true); len(n) > 0 {
		return n[0], true
	}
	return engine.Unknown, false
}
