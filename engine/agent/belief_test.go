package agent

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	engine "github.com/CodeIngame/OceanOfCode/engine"
)

// observe builds an Observation from raw action lines.
func observe(theirs, ours string, hpLost int) Observation {
	return Observation{
		Orders: engine.ParseInstruction(theirs),
		Ours:   engine.ParseInstruction(ours),
		Sonar:  "NA",
		HPLost: hpLost,
	}
}

// islandGrid is 15×15 water with a 3×3 land block centred on (7,7).
func islandGrid(t *testing.T) *engine.Grid {
	t.Helper()
	rows := make([]string, 15)
	for y := range rows {
		if y >= 6 && y <= 8 {
			rows[y] = strings.Repeat(".", 6) + "xxx" + strings.Repeat(".", 6)
			continue
		}
		rows[y] = strings.Repeat(".", 15)
	}
	return mustGrid(t, rows...)
}

func TestBeliefEliminationScenario(t *testing.T) {
	g := islandGrid(t)
	b := NewBelief(g, engine.DefaultRules())
	if b.CandidateCount() != 225-9 {
		t.Fatalf("initial candidates = %d, want 216", b.CandidateCount())
	}

	moves := []engine.Direction{engine.DirEast, engine.DirEast, engine.DirSouth}
	for _, d := range moves {
		r := b.Update(observe("MOVE "+d.String(), "", 0))
		if r.Hit != HitNone {
			t.Fatalf("hit = %s, want none", r.Hit)
		}
	}

	// Expected survivors: every start whose whole walk stays on water.
	var want []engine.Position
	for _, start := range g.WaterCells() {
		p, ok := start, true
		for _, d := range moves {
			p = p.Step(d)
			if !g.IsWaterAt(p) {
				ok = false
				break
			}
		}
		if ok {
			want = append(want, p)
		}
	}
	if got := b.Candidates(); !slices.Equal(got, want) {
		t.Fatalf("candidates (%d) differ from simulated survivors (%d)", len(got), len(want))
	}
	if b.Exact().Known() {
		t.Errorf("exact = %v after three moves on open water", b.Exact())
	}
	// The only walk ending on (9,8) starts on the island.
	if slices.Contains(b.Candidates(), engine.Pos(9, 8)) {
		t.Error("(9,8) survived although every walk to it crosses land")
	}
}

func TestBeliefTorpedoSetsEstimateOnly(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())

	r := b.Update(observe("TORPEDO 5 5", "", 0))
	if r.Hit != HitNone {
		t.Errorf("hit = %s, want none", r.Hit)
	}
	if b.Exact().Known() {
		t.Fatalf("exact = %v, want unknown", b.Exact())
	}
	if want := engine.NewEstimate(engine.Pos(5, 5), 4); b.Estimate() != want {
		t.Errorf("estimate = %v, want %v", b.Estimate(), want)
	}
	if b.Mode() != ModeEstimated {
		t.Errorf("mode = %s, want estimated", b.Mode())
	}
	for _, p := range b.Candidates() {
		if p.Distance(engine.Pos(5, 5)) > 4 {
			t.Errorf("candidate %v out of torpedo range", p)
		}
		if p.Chebyshev(engine.Pos(5, 5)) <= 1 {
			t.Errorf("candidate %v inside their own undamaged blast", p)
		}
	}
}

func TestBeliefOurDirectHit(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())

	r := b.Update(observe("SONAR 4", "TORPEDO 3 3|MOVE E TORPEDO", 2))
	if r.Hit != HitOurShotDirect {
		t.Fatalf("hit = %s, want our-shot-direct", r.Hit)
	}
	if b.Exact() != engine.Pos(3, 3) || b.Mode() != ModeKnown {
		t.Fatalf("exact = %v mode %s, want (3,3) known", b.Exact(), b.Mode())
	}
	if b.CandidateCount() != 1 {
		t.Errorf("candidates = %d, want 1", b.CandidateCount())
	}

	b.Update(observe("MOVE N", "", 0))
	if b.Exact() != engine.Pos(3, 2) {
		t.Fatalf("exact after MOVE N = %v, want (3,2)", b.Exact())
	}

	r = b.Update(observe("SILENCE", "", 0))
	if b.Exact().Known() {
		t.Fatalf("exact survived SILENCE: %v", b.Exact())
	}
	if want := engine.NewEstimate(engine.Pos(3, 2), 4); b.Estimate() != want {
		t.Errorf("estimate = %v, want %v", b.Estimate(), want)
	}
	if r.Reseeds != 1 || b.CandidateCount() != 225 {
		t.Errorf("reseeds = %d candidates = %d, want full reseed", r.Reseeds, b.CandidateCount())
	}
}

func TestBeliefOurGraze(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())

	r := b.Update(observe("NA", "TORPEDO 3 3|MOVE E", 1))
	if r.Hit != HitOurShotGraze {
		t.Fatalf("hit = %s, want our-shot-graze", r.Hit)
	}
	if want := engine.NewEstimate(engine.Pos(3, 3), 1); b.Estimate() != want {
		t.Errorf("estimate = %v, want %v", b.Estimate(), want)
	}
	if b.CandidateCount() != 8 {
		t.Errorf("candidates = %d, want the 8-ring", b.CandidateCount())
	}
}

func TestBeliefOurMiss(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())

	r := b.Update(observe("MOVE N", "TORPEDO 7 7|MOVE E", 0))
	if r.Hit != HitOurShotMissed {
		t.Fatalf("hit = %s, want our-shot-missed", r.Hit)
	}
	// 216 survive the blast, then MOVE N kills row 0.
	survivors := 0
	for _, p := range g.WaterCells() {
		if p.Chebyshev(engine.Pos(7, 7)) > 1 && p.Y > 0 {
			survivors++
		}
	}
	if b.CandidateCount() != survivors {
		t.Errorf("candidates = %d, want %d", b.CandidateCount(), survivors)
	}
}

func TestBeliefOwnShot(t *testing.T) {
	g := openGrid(t, 15, 15)

	b := NewBelief(g, engine.DefaultRules())
	r := b.Update(observe("TORPEDO 6 6|MOVE S", "", 2))
	if r.Hit != HitOwnShotDirect {
		t.Fatalf("hit = %s, want own-shot-direct", r.Hit)
	}
	if b.Exact() != engine.Pos(6, 7) {
		t.Errorf("exact = %v, want (6,7)", b.Exact())
	}

	b = NewBelief(g, engine.DefaultRules())
	r = b.Update(observe("TORPEDO 6 6", "", 1))
	if r.Hit != HitOwnShotGraze {
		t.Fatalf("hit = %s, want own-shot-graze", r.Hit)
	}
	if want := engine.NewEstimate(engine.Pos(6, 6), 1); b.Estimate() != want {
		t.Errorf("estimate = %v, want %v", b.Estimate(), want)
	}
}

func TestBeliefBothFired(t *testing.T) {
	g := openGrid(t, 15, 15)

	b := NewBelief(g, engine.DefaultRules())
	if r := b.Update(observe("TORPEDO 3 3", "TORPEDO 3 3", 4)); r.Hit != HitBothDirect {
		t.Fatalf("hit = %s, want both-direct", r.Hit)
	}
	if b.Exact() != engine.Pos(3, 3) {
		t.Errorf("exact = %v, want (3,3)", b.Exact())
	}

	b = NewBelief(g, engine.DefaultRules())
	r := b.Update(observe("TORPEDO 4 4", "TORPEDO 3 3", 2))
	if r.Hit != HitAmbiguous {
		t.Fatalf("hit = %s, want ambiguous", r.Hit)
	}
	if b.Exact().Known() {
		t.Errorf("ambiguous turn fabricated exact %v", b.Exact())
	}

	b = NewBelief(g, engine.DefaultRules())
	r = b.Update(observe("TORPEDO 12 12", "TORPEDO 2 2", 2))
	if r.Hit != HitBothFar {
		t.Fatalf("hit = %s, want both-far", r.Hit)
	}
	// Our blast at (2,2) cannot have reached someone who then fired at (12,12).
	if b.Exact() != engine.Pos(12, 12) {
		t.Errorf("exact = %v, want their aim point (12,12)", b.Exact())
	}
}

func TestBeliefSurface(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())

	r := b.Update(observe("MOVE N|SURFACE 5", "", 1))
	if r.Hit != HitSurface {
		t.Fatalf("hit = %s, want surface", r.Hit)
	}
	if b.CandidateCount() != 25 {
		t.Errorf("candidates = %d, want 25", b.CandidateCount())
	}
	for _, p := range b.Candidates() {
		if g.SectorAt(p) != 5 {
			t.Errorf("candidate %v outside sector 5", p)
		}
	}
	// The sector-centre estimate (precision 3) is tightened to the 5×5 box.
	if want := engine.NewEstimate(engine.Pos(7, 7), 2); b.Estimate() != want {
		t.Errorf("estimate = %v, want %v", b.Estimate(), want)
	}
}

func TestBeliefSkippedClausesAreAmbiguous(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())

	r := b.Update(observe("MOVE N|TRIGGER 3 3", "TORPEDO 3 4|MOVE E", 1))
	if r.Hit != HitAmbiguous || r.Skipped != 1 {
		t.Fatalf("hit = %s skipped = %d, want ambiguous/1", r.Hit, r.Skipped)
	}
	// The move is still applied.
	if b.CandidateCount() != 225-15 {
		t.Errorf("candidates = %d, want 210", b.CandidateCount())
	}
}

func TestBeliefSonar(t *testing.T) {
	g := openGrid(t, 15, 15)

	b := NewBelief(g, engine.DefaultRules())
	obs := observe("NA", "SONAR 5|MOVE N", 0)
	obs.Sonar = "Y"
	b.Update(obs)
	if b.CandidateCount() != 25 {
		t.Errorf("sonar Y: candidates = %d, want 25", b.CandidateCount())
	}
	if want := engine.NewEstimate(engine.Pos(7, 7), 2); b.Estimate() != want {
		t.Errorf("sonar Y: estimate = %v, want %v", b.Estimate(), want)
	}

	b = NewBelief(g, engine.DefaultRules())
	obs.Sonar = "N"
	b.Update(obs)
	if b.CandidateCount() != 200 {
		t.Errorf("sonar N: candidates = %d, want 200", b.CandidateCount())
	}
	counts := b.SectorCounts()
	if counts[5] != 0 {
		t.Errorf("sonar N: sector 5 still holds %d", counts[5])
	}
}

func TestBeliefSingletonBecomesExact(t *testing.T) {
	g := mustGrid(t, ".....")
	b := NewBelief(g, engine.DefaultRules())
	for i := 0; i < 4; i++ {
		b.Update(observe("MOVE E", "", 0))
	}
	if b.Mode() != ModeKnown || b.Exact() != engine.Pos(4, 0) {
		t.Errorf("mode %s exact %v, want known (4,0)", b.Mode(), b.Exact())
	}
	if !strings.Contains(b.String(), "known") {
		t.Errorf("String = %q", b.String())
	}
}

func TestBeliefContradictionReseeds(t *testing.T) {
	g := openGrid(t, 15, 15)
	b := NewBelief(g, engine.DefaultRules())
	b.Update(observe("NA", "TORPEDO 0 0|MOVE E", 2))
	if b.Exact() != engine.Pos(0, 0) {
		t.Fatalf("exact = %v, want (0,0)", b.Exact())
	}
	// Moving north from row 0 contradicts the fix.
	r := b.Update(observe("MOVE N", "", 0))
	if b.Exact().Known() || r.Reseeds == 0 {
		t.Fatalf("contradicted exact kept: %v", b.Exact())
	}
	if b.CandidateCount() != 225-15 {
		t.Errorf("candidates = %d, want full set advanced north", b.CandidateCount())
	}
}

// TestBeliefSoundAgainstSimulation drives a random opponent and checks that
// the true position is never eliminated and that the estimate covers it.
func TestBeliefSoundAgainstSimulation(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 42))
	rules := engine.DefaultRules()
	for trial := 0; trial < 8; trial++ {
		g := randomGrid(t, rng, 12)
		b := NewBelief(g, rules)
		truth := randomWaterCell(rng, g)
		visited := map[engine.Position]bool{truth: true}

		for turn := 0; turn < 50; turn++ {
			var orders []string
			hpLost := 0

			if rng.IntN(5) == 0 {
				if target, ok := safeTarget(rng, g, truth, rules.TorpedoRange); ok {
					orders = append(orders, "TORPEDO "+target.Coordinates())
				}
			}
			switch {
			case rng.IntN(8) == 0:
				d := engine.Directions[rng.IntN(4)]
				n := rng.IntN(rules.SilenceRange + 1)
				for i := 0; i < n; i++ {
					next := truth.Step(d)
					if !g.IsWaterAt(next) || visited[next] {
						break
					}
					truth = next
					visited[truth] = true
				}
				orders = append(orders, "SILENCE")
			default:
				var moves []engine.Position
				for _, n := range g.WalkableNeighbors(truth, false) {
					if !visited[n] {
						moves = append(moves, n)
					}
				}
				if len(moves) == 0 {
					orders = append(orders, "SURFACE "+strconv.Itoa(g.SectorAt(truth)))
					hpLost++
					clear(visited)
					visited[truth] = true
					break
				}
				next := moves[rng.IntN(len(moves))]
				orders = append(orders, "MOVE "+truth.DirectionTo(next).String())
				truth = next
				visited[truth] = true
			}

			b.Update(observe(strings.Join(orders, "|"), "", hpLost))

			if b.Exact().Known() {
				if b.Exact() != truth {
					t.Fatalf("trial %d turn %d: exact %v, truth %v", trial, turn, b.Exact(), truth)
				}
				continue
			}
			if !slices.Contains(b.Candidates(), truth) {
				t.Fatalf("trial %d turn %d: truth %v eliminated (orders %v)", trial, turn, truth, orders)
			}
			if e := b.Estimate(); e.Known() && !e.Contains(truth) {
				t.Fatalf("trial %d turn %d: estimate %v misses truth %v", trial, turn, e, truth)
			}
		}
	}
}

// safeTarget picks a water cell within range of from that does not damage from.
func safeTarget(rng *rand.Rand, g *engine.Grid, from engine.Position, reach int) (engine.Position, bool) {
	var options []engine.Position
	for _, p := range g.WaterCells() {
		if p.Distance(from) <= reach && p.Chebyshev(from) > 1 {
			options = append(options, p)
		}
	}
	if len(options) == 0 {
		return engine.Unknown, false
	}
	return options[rng.IntN(len(options))], true
}
