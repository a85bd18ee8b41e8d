// internal/bot/policy_test.go
package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/CodeIngame/OceanOfCode/engine"
	"github.com/CodeIngame/OceanOfCode/engine/agent"
)

func openGrid(t *testing.T, w, h int) *engine.Grid {
	t.Helper()
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat(".", w)
	}
	g, err := engine.NewGrid(w, h, rows)
	require.NoError(t, err)
	return g
}

// player returns a fully charged submarine at pos.
func player(rules engine.Rules, pos engine.Position) *engine.Player {
	p := engine.NewPlayer(0, true, rules)
	p.Position = pos
	return p
}

// believe runs one update with the opponent's line and our previous line.
func believe(g *engine.Grid, rules engine.Rules, theirs, ours string, hpLost int) *agent.Belief {
	b := agent.NewBelief(g, rules)
	b.Update(agent.Observation{
		Orders: engine.ParseInstruction(theirs),
		Ours:   engine.ParseInstruction(ours),
		Sonar:  "NA",
		HPLost: hpLost,
	})
	return b
}

func torpedoOf(d Decision) (engine.Position, bool) {
	t, ok := d.Instruction.Torpedo()
	return t.Target, ok
}

func TestDecideOutputOrder(t *testing.T) {
	g := openGrid(t, 15, 15)
	rules := engine.DefaultRules()
	rules.SilenceTrigger = 1000
	b := believe(g, rules, "TORPEDO 7 11", "", 0)
	require.Equal(t, engine.NewEstimate(engine.Pos(7, 11), 4), b.Estimate())

	p := NewPolicy(g, rules)
	d := p.Decide(player(rules, engine.Pos(7, 7)), b, 225)

	raw := d.Instruction.Raw
	assert.True(t, strings.HasPrefix(raw, "TORPEDO 7 11|SONAR 8|SILENCE E 4|MOVE "), raw)
	assert.True(t, strings.HasSuffix(raw, " TORPEDO"), "every device was used, torpedo charges first: %s", raw)
	assert.False(t, d.Surfaced)
	for x := 8; x <= 11; x++ {
		assert.True(t, g.IsVisited(x, 7), "silence cell %d,7 not marked", x)
	}
	assert.True(t, g.IsVisited(d.End.X, d.End.Y))
	assert.Equal(t, 1, d.End.Distance(engine.Pos(11, 7)))
}

func TestAttackThroughPath(t *testing.T) {
	g := openGrid(t, 15, 15)
	rules := engine.DefaultRules()
	b := believe(g, rules, "TORPEDO 7 12", "", 0)

	d := NewPolicy(g, rules).Decide(player(rules, engine.Pos(7, 7)), b, 225)
	target, ok := torpedoOf(d)
	require.True(t, ok, d.Instruction.Raw)
	assert.Equal(t, engine.Pos(7, 11), target)
}

func TestAttackVetoes(t *testing.T) {
	rules := engine.DefaultRules()

	t.Run("too close", func(t *testing.T) {
		g := openGrid(t, 15, 15)
		b := believe(g, rules, "TORPEDO 7 9", "", 0)
		d := NewPolicy(g, rules).Decide(player(rules, engine.Pos(7, 7)), b, 225)
		_, ok := torpedoOf(d)
		assert.False(t, ok, d.Instruction.Raw)
	})

	t.Run("cooling down", func(t *testing.T) {
		g := openGrid(t, 15, 15)
		b := believe(g, rules, "TORPEDO 7 11", "", 0)
		me := player(rules, engine.Pos(7, 7))
		me.Cooldowns[engine.DeviceTorpedo] = 1
		d := NewPolicy(g, rules).Decide(me, b, 225)
		_, ok := torpedoOf(d)
		assert.False(t, ok, d.Instruction.Raw)
	})

	t.Run("wall lengthens the route", func(t *testing.T) {
		g, err := engine.NewGrid(9, 5, []string{
			".........",
			".........",
			"xxxxxxxx.",
			".........",
			".........",
		})
		require.NoError(t, err)
		p := NewPolicy(g, rules)
		// Manhattan 4, but the torpedo must swim around the wall.
		assert.False(t, p.SafeTarget(engine.Pos(0, 0), engine.Pos(0, 4)))
		assert.True(t, p.SafeTarget(engine.Pos(0, 0), engine.Pos(4, 0)))
		assert.False(t, p.SafeTarget(engine.Pos(0, 0), engine.Pos(2, 0)), "inside safety radius")
		assert.False(t, p.SafeTarget(engine.Pos(0, 0), engine.Pos(3, 2)), "land")
		assert.False(t, p.SafeTarget(engine.Pos(0, 0), engine.Pos(-1, 3)), "off grid")
	})
}

// Whatever the belief, a fired torpedo is never on land, never inside the
// safety radius and always within torpedo reach.
func TestAttackNeverUnsafe(t *testing.T) {
	rules := engine.DefaultRules()
	rng := rand.New(rand.NewPCG(17, 29))

	for trial := 0; trial < 60; trial++ {
		rows := make([]string, 15)
		for y := range rows {
			var sb strings.Builder
			for x := 0; x < 15; x++ {
				if rng.IntN(100) < 12 {
					sb.WriteByte('x')
				} else {
					sb.WriteByte('.')
				}
			}
			rows[y] = sb.String()
		}
		g, err := engine.NewGrid(15, 15, rows)
		require.NoError(t, err)
		water := g.WaterCells()
		me := water[rng.IntN(len(water))]
		them := water[rng.IntN(len(water))]

		modes := map[string]*agent.Belief{
			"unknown":   agent.NewBelief(g, rules),
			"estimated": believe(g, rules, fmt.Sprintf("TORPEDO %d %d", them.X, them.Y), "", 0),
			"surfaced":  believe(g, rules, fmt.Sprintf("SURFACE %d", g.SectorAt(them)), "", 1),
			"known":     believe(g, rules, "NA", fmt.Sprintf("TORPEDO %d %d", them.X, them.Y), 2),
		}
		for mode, b := range modes {
			g.ResetVisited()
			p := NewPolicy(g, rules)
			d := p.Decide(player(rules, me), b, 225)
			target, ok := torpedoOf(d)
			if !ok {
				continue
			}
			assert.True(t, g.IsWaterAt(target), "trial %d %s: land target %v", trial, mode, target)
			assert.Greater(t, me.Distance(target), rules.SafetyRadius, "trial %d %s", trial, mode)
			n := engine.PathLength(g, me, target, false)
			assert.True(t, n >= 0 && n <= rules.TorpedoRange, "trial %d %s: route %d", trial, mode, n)
		}
	}
}

func TestSurfaceWhenBoxedIn(t *testing.T) {
	g, err := engine.NewGrid(3, 1, []string{"..."})
	require.NoError(t, err)
	rules := engine.DefaultRules()
	g.MarkVisited(0, 0)
	g.MarkVisited(1, 0)

	me := player(rules, engine.Pos(0, 0))
	me.Cooldowns = [engine.NumDevices]int{0, 1, 1, 1, 1}
	d := NewPolicy(g, rules).Decide(me, agent.NewBelief(g, rules), 3)

	assert.True(t, d.Surfaced)
	assert.Equal(t, "SURFACE", d.Instruction.Raw)
	assert.True(t, g.IsVisited(0, 0))
	assert.False(t, g.IsVisited(1, 0), "visited marks survive a surface")
}

func TestLocalStepWhenTargetUnreachable(t *testing.T) {
	g, err := engine.NewGrid(5, 3, []string{
		"..x..",
		"..x..",
		"..x..",
	})
	require.NoError(t, err)
	rules := engine.DefaultRules()
	me := player(rules, engine.Pos(0, 1))
	me.Cooldowns = [engine.NumDevices]int{0, 1, 1, 1, 1}

	// Grid center (2,1) is land; the nearest water is across the wall.
	d := NewPolicy(g, rules).Decide(me, agent.NewBelief(g, rules), 10)
	m, ok := d.Instruction.Move()
	require.True(t, ok, d.Instruction.Raw)
	assert.Equal(t, engine.DirNorth, m.Dir)
}

func TestReloadPriority(t *testing.T) {
	rules := engine.DefaultRules()
	p := NewPolicy(openGrid(t, 5, 5), rules)
	me := player(rules, engine.Pos(2, 2))

	assert.Equal(t, engine.DeviceNone, p.reload(me, nil))
	assert.Equal(t, engine.DeviceTorpedo, p.reload(me, map[engine.DeviceType]bool{engine.DeviceTorpedo: true}))

	me.Cooldowns[engine.DeviceSonar] = 2
	assert.Equal(t, engine.DeviceSonar, p.reload(me, nil))
	me.Cooldowns[engine.DeviceSilence] = 5
	assert.Equal(t, engine.DeviceSilence, p.reload(me, nil))
	me.Cooldowns[engine.DeviceTorpedo] = 1
	assert.Equal(t, engine.DeviceTorpedo, p.reload(me, nil))
}

func TestSonarOnlyWhenInformative(t *testing.T) {
	g := openGrid(t, 15, 15)
	rules := engine.DefaultRules()
	p := NewPolicy(g, rules)
	me := player(rules, engine.Pos(0, 0))

	s, ok := p.sonarSector(me, agent.NewBelief(g, rules))
	assert.True(t, ok)
	assert.Equal(t, 1, s, "equal sectors go to the first")

	// Every candidate in one sector: the answer is already known.
	_, ok = p.sonarSector(me, believe(g, rules, "SURFACE 5", "", 1))
	assert.False(t, ok)

	_, ok = p.sonarSector(me, believe(g, rules, "NA", "TORPEDO 7 7", 2))
	assert.False(t, ok, "exact position known")
}

func TestSilenceRun(t *testing.T) {
	g := openGrid(t, 15, 15)
	rules := engine.DefaultRules()
	p := NewPolicy(g, rules)

	// East is blocked by the border after two cells; north has four.
	o, end, ok := p.silence(engine.Pos(12, 7))
	require.True(t, ok)
	assert.Equal(t, engine.SilenceOrder{Dir: engine.DirNorth, Distance: 4}, o)
	assert.Equal(t, engine.Pos(12, 3), end)

	g2, err := engine.NewGrid(1, 1, []string{"."})
	require.NoError(t, err)
	_, _, ok = NewPolicy(g2, rules).silence(engine.Pos(0, 0))
	assert.False(t, ok)
}
