// internal/bot/bot.go
package bot

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/CodeIngame/OceanOfCode/engine"
	"github.com/CodeIngame/OceanOfCode/engine/agent"
)

// TurnReport describes one played turn for logs and recorders.
type TurnReport struct {
	Turn     int
	Belief   agent.Report
	Decision Decision
	Trace    int
	Elapsed  time.Duration
}

// Bot plays one match. It wires the pure engine state to the policy and
// logs what it decides; it performs no I/O itself.
type Bot struct {
	ID     uuid.UUID
	log    *logrus.Entry
	match  *engine.MatchState
	belief *agent.Belief
	trace  *agent.Trace
	policy *Policy
}

// New prepares a bot for a match on grid.
func New(id uuid.UUID, grid *engine.Grid, myID int, rules engine.Rules, log *logrus.Logger) *Bot {
	return &Bot{
		ID:     id,
		log:    log.WithField("match", id.String()),
		match:  engine.NewMatch(grid, myID, rules),
		belief: agent.NewBelief(grid, rules),
		trace:  agent.NewTrace(grid, rules),
		policy: NewPolicy(grid, rules),
	}
}

// Match exposes the engine state, mostly for tests.
func (b *Bot) Match() *engine.MatchState { return b.match }

// Belief exposes the opponent model.
func (b *Bot) Belief() *agent.Belief { return b.belief }

// Start chooses the starting cell and returns it in wire format.
func (b *Bot) Start() string {
	g := b.match.Grid
	pos := g.StartPosition()
	g.MarkVisited(pos.X, pos.Y)
	b.match.Me.Position = pos
	b.log.WithField("start", pos.String()).Infof("Match %s: starting on %dx%d map", b.ID, g.Width, g.Height)
	b.log.Debugf("map:\n%s", g)
	return pos.Coordinates()
}

// Play consumes one turn of referee input and returns the line to send.
func (b *Bot) Play(s engine.Snapshot) (string, TurnReport) {
	started := time.Now()
	m := b.match
	m.Grid.MarkVisited(s.Position.X, s.Position.Y)

	theirs, hasOrders := m.ApplySnapshot(s)
	hpLost := 0
	if s.HasStats {
		hpLost = m.Opponent.HPLost()
	}
	ours, _ := m.MyLastInstruction()

	rep := b.belief.Update(agent.Observation{
		Orders: theirs,
		Ours:   ours,
		Sonar:  s.SonarResult,
		HPLost: hpLost,
	})
	if hasOrders {
		m.Opponent.History.BackfillEstimate(b.belief.Estimate())
	}
	for _, err := range theirs.Skipped {
		b.log.WithError(err).WithField("turn", m.Turn).Warn("skipped opponent clause")
	}
	b.log.Debugf("Turn %d: belief %s", m.Turn, b.belief)

	dec := b.policy.Decide(m.Me, b.belief, b.trace.Count())
	trace := b.trace.Observe(dec.Instruction, m.Grid.SectorAt(dec.End))
	m.Me.History.Append(dec.Instruction)

	tr := TurnReport{
		Turn:     m.Turn,
		Belief:   rep,
		Decision: dec,
		Trace:    trace,
		Elapsed:  time.Since(started),
	}
	b.log.WithFields(logrus.Fields{
		"turn":       tr.Turn,
		"mode":       rep.Mode.String(),
		"candidates": rep.Candidates,
		"hit":        rep.Hit.String(),
		"trace":      trace,
		"elapsed":    tr.Elapsed,
	}).Info(dec.Instruction.Raw)
	return dec.Instruction.Raw, tr
}
