package engine

// Player is one submarine as seen by the agent. For the opponent, Position
// stays Unknown: localization lives in the agent package, not here.
type Player struct {
	ID        int
	Self      bool
	HP        int
	HPHistory []int // append-only, seeded with the starting HP
	Cooldowns [NumDevices]int
	Position  Position
	History   History
}

// NewPlayer creates a player at full health with unknown position.
func NewPlayer(id int, self bool, rules Rules) *Player {
	return &Player{
		ID:        id,
		Self:      self,
		HP:        rules.MaxHP,
		HPHistory: []int{rules.MaxHP},
		Position:  Unknown,
	}
}

// RecordHP stores a new hit point reading.
func (p *Player) RecordHP(hp int) {
	p.HP = hp
	p.HPHistory = append(p.HPHistory, hp)
}

// HPLost returns the hit points lost between the last two readings.
func (p *Player) HPLost() int {
	n := len(p.HPHistory)
	if n < 2 {
		return 0
	}
	return max(p.HPHistory[n-2]-p.HPHistory[n-1], 0)
}

// WasHit reports whether the last reading dropped.
func (p *Player) WasHit() bool { return p.HPLost() > 0 }

// WasHitFull reports whether the last reading dropped by a direct torpedo hit.
func (p *Player) WasHitFull() bool { return p.HPLost() == 2 }

// Ready reports whether a device is fully charged.
func (p *Player) Ready(d DeviceType) bool {
	if d <= DeviceNone || int(d) >= NumDevices {
		return false
	}
	return p.Cooldowns[d] == 0
}
