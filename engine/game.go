// Package engine implements the Ocean of Code ruleset as seen by one agent:
// the grid, positions and sectors, the order grammar, player bookkeeping
// and grid path finding.
//
// The package is pure and synchronous. It never logs and never performs
// I/O; the service layer owns protocol handling and observability.
package engine

// Snapshot is one turn of referee input after tokenizing.
type Snapshot struct {
	Position       Position
	HasStats       bool // HP and cooldown fields were present
	MyHP           int
	OppHP          int
	Cooldowns      [NumDevices]int
	SonarResult    string // "NA", "Y" or "N"
	OpponentOrders string // "NA" or the opponent's action line
}

// MatchState owns everything that lives for one match: the grid, both
// players and the turn counter. The agent package owns the opponent's
// location model separately.
type MatchState struct {
	Grid     *Grid
	Rules    Rules
	Me       *Player
	Opponent *Player
	Turn     int // number of snapshots applied
}

// NewMatch creates the match state for a two-player game.
func NewMatch(grid *Grid, myID int, rules Rules) *MatchState {
	return &MatchState{
		Grid:     grid,
		Rules:    rules,
		Me:       NewPlayer(myID, true, rules),
		Opponent: NewPlayer(1-myID, false, rules),
	}
}

// ApplySnapshot records a turn's input. It returns the opponent's decoded
// instruction and true when the opponent line carried orders.
func (m *MatchState) ApplySnapshot(s Snapshot) (Instruction, bool) {
	m.Turn++
	m.Me.Position = s.Position
	if s.HasStats {
		m.Me.RecordHP(s.MyHP)
		m.Opponent.RecordHP(s.OppHP)
		m.Me.Cooldowns = s.Cooldowns
	}
	if s.OpponentOrders == "" || s.OpponentOrders == "NA" {
		return Instruction{Estimate: NoEstimate}, false
	}
	ins := ParseInstruction(s.OpponentOrders)
	m.Opponent.History.Append(ins)
	return ins, true
}

// MyLastInstruction returns the instruction we emitted on the previous turn.
func (m *MatchState) MyLastInstruction() (Instruction, bool) {
	return m.Me.History.Current()
}
