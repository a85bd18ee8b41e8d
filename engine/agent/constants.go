package agent

// Mode is how much the belief currently knows about the opponent.
type Mode uint8

const (
	ModeUnknown   Mode = iota // 0: no exact position, no estimate
	ModeEstimated             // 1: estimate with precision, exact unknown
	ModeKnown                 // 2: exact position known
)

func (m Mode) String() string {
	switch m {
	case ModeEstimated:
		return "estimated"
	case ModeKnown:
		return "known"
	}
	return "unknown"
}

// HitCase classifies a turn by who fired and how many HP the opponent lost.
type HitCase uint8

const (
	HitNone          HitCase = iota // 0: no damage and no shot from us
	HitSurface                      // 1: damage fully explained by SURFACE orders
	HitOwnShotDirect                // 2: their torpedo hit their own cell
	HitOwnShotGraze                 // 3: their torpedo grazed them
	HitOurShotDirect                // 4: our torpedo hit the target cell
	HitOurShotGraze                 // 5: our torpedo grazed them
	HitBothFar                      // 6: both fired, ours out of reach: damage is their own
	HitBothDirect                   // 7: both fired, 4 HP lost: two direct hits
	HitAmbiguous                    // 8: under-determined, belief not updated from damage
	HitOurShotMissed                // 9: we fired and they lost nothing to torpedoes
)

var hitCaseNames = [...]string{
	HitNone:          "none",
	HitSurface:       "surface",
	HitOwnShotDirect: "own-shot-direct",
	HitOwnShotGraze:  "own-shot-graze",
	HitOurShotDirect: "our-shot-direct",
	HitOurShotGraze:  "our-shot-graze",
	HitBothFar:       "both-far",
	HitBothDirect:    "both-direct",
	HitAmbiguous:     "ambiguous",
	HitOurShotMissed: "our-shot-missed",
}

func (h HitCase) String() string {
	if int(h) < len(hitCaseNames) {
		return hitCaseNames[h]
	}
	return "invalid"
}

// Damage dealt by a torpedo.
const (
	DirectDamage = 2
	GrazeDamage  = 1
)

// advanceChunk is the number of candidates one worker handles per pass.
const advanceChunk = 64
