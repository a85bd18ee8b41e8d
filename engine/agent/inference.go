package agent

import engine "github.com/CodeIngame/OceanOfCode/engine"

// classifyHit attributes the opponent's HP loss for one turn. SURFACE costs
// 1 HP each; whatever remains came from torpedoes. Our torpedo resolved on
// our turn, theirs during the action line being analysed.
//
// Damage while the line holds clauses we could not decode (mines, triggers)
// is never attributed.
func classifyHit(obs Observation, rules engine.Rules) (HitCase, int) {
	damage := obs.HPLost - obs.Orders.SurfaceCount()
	ours, weFired := obs.Ours.Torpedo()
	theirs, theyFired := obs.Orders.Torpedo()

	switch {
	case damage < 0:
		return HitAmbiguous, 0
	case damage > 0 && len(obs.Orders.Skipped) > 0:
		return HitAmbiguous, damage
	case damage == 0:
		if weFired {
			return HitOurShotMissed, 0
		}
		if obs.HPLost > 0 {
			return HitSurface, 0
		}
		return HitNone, 0
	case weFired && theyFired:
		if damage == 2*DirectDamage {
			return HitBothDirect, damage
		}
		// Hit by our blast, they stood within 2 of our aim point; from there
		// they moved at most reach cells and then fired within range.
		limit := 2 + reachBeforeTorpedo(obs.Orders, rules.SilenceRange) + rules.TorpedoRange
		if damage <= DirectDamage && ours.Target.Distance(theirs.Target) > limit {
			return HitBothFar, damage
		}
		return HitAmbiguous, damage
	case weFired:
		return singleShotCase(damage, HitOurShotDirect, HitOurShotGraze), damage
	case theyFired:
		return singleShotCase(damage, HitOwnShotDirect, HitOwnShotGraze), damage
	}
	return HitAmbiguous, damage
}

// reachBeforeTorpedo bounds how far the opponent travelled between our turn
// and their first TORPEDO order.
func reachBeforeTorpedo(ins engine.Instruction, silenceRange int) int {
	reach := 0
	for _, o := range ins.Orders {
		switch o.(type) {
		case engine.TorpedoOrder:
			return reach
		case engine.MoveOrder:
			reach++
		case engine.SilenceOrder:
			reach += silenceRange
		}
	}
	return reach
}

func singleShotCase(damage int, direct, graze HitCase) HitCase {
	switch damage {
	case DirectDamage:
		return direct
	case GrazeDamage:
		return graze
	}
	return HitAmbiguous
}

// applyOurShot folds the result of our previous torpedo into the belief.
func (b *Belief) applyOurShot(hit HitCase, target engine.Position, r *Report) {
	switch hit {
	case HitOurShotDirect, HitBothDirect:
		b.setExact(target)
	case HitOurShotGraze:
		b.grazed(target, r)
	case HitOurShotMissed, HitBothFar:
		b.missed(target, true, r)
	}
}

// applyTheirShot folds self-damage from the opponent's torpedo into the
// belief, at the point of the action line where it was fired.
func (b *Belief) applyTheirShot(hit HitCase, damage int, target engine.Position, r *Report) {
	switch hit {
	case HitOwnShotDirect, HitBothDirect:
		b.setExact(target)
	case HitOwnShotGraze:
		b.grazed(target, r)
	case HitBothFar:
		if damage == DirectDamage {
			b.setExact(target)
		} else {
			b.grazed(target, r)
		}
	case HitNone, HitSurface, HitOurShotMissed:
		// No torpedo damage this turn: they were clear of their own blast.
		b.missed(target, false, r)
	}
}

// grazed: the opponent stood on one of the eight cells around target.
func (b *Belief) grazed(target engine.Position, r *Report) {
	if b.known() {
		if b.exact.Chebyshev(target) == 1 {
			return
		}
		b.dropExact(r)
	}
	b.cands.KeepRing(target)
	b.estimate = engine.NewEstimate(target, b.rules.GrazePrecision)
}

// missed: the opponent stood outside the blast around target. An estimate
// centred in the blast is dropped when clearEstimate is set.
func (b *Belief) missed(target engine.Position, clearEstimate bool, r *Report) {
	if b.known() {
		if b.exact.Chebyshev(target) > 1 {
			return
		}
		b.dropExact(r)
	}
	b.cands.DropBlast(target)
	if clearEstimate && b.estimate.Known() && b.estimate.Chebyshev(target) <= 1 {
		b.estimate = engine.NoEstimate
	}
}
