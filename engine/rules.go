package engine

// Rules holds the tunable constants of the ruleset and of the agent's policy.
// The zero value is not usable; start from DefaultRules.
type Rules struct {
	MaxHP            int // starting hit points of each submarine
	TorpedoRange     int // max water distance between shooter and target
	SilenceRange     int // max cells covered by one SILENCE
	SafetyRadius     int // never aim within this Manhattan distance of ourselves
	SurfacePrecision int // estimate precision after a SURFACE or sonar hit
	GrazePrecision   int // estimate precision after a 1 HP torpedo hit
	ApproachDistance int // chase an estimate only when farther than this
	SilenceTrigger   int // go silent when our trace has fewer candidates than this

	// Cooldowns is the charge count each device needs after use, indexed by DeviceType.
	Cooldowns [NumDevices]int

	// ReloadPriority lists devices in the order they are nominated for charging.
	ReloadPriority []DeviceType
}

// DefaultRules returns the official ruleset with the policy defaults.
func DefaultRules() Rules {
	return Rules{
		MaxHP:            6,
		TorpedoRange:     4,
		SilenceRange:     4,
		SafetyRadius:     2,
		SurfacePrecision: 3,
		GrazePrecision:   1,
		ApproachDistance: 3,
		SilenceTrigger:   10,
		Cooldowns: [NumDevices]int{
			DeviceTorpedo: 3,
			DeviceSonar:   4,
			DeviceSilence: 6,
			DeviceMine:    3,
		},
		ReloadPriority: []DeviceType{DeviceTorpedo, DeviceSilence, DeviceSonar},
	}
}

// CooldownOf returns the full cooldown of a device, 0 for DeviceNone.
func (r *Rules) CooldownOf(d DeviceType) int {
	if d <= DeviceNone || int(d) >= NumDevices {
		return 0
	}
	return r.Cooldowns[d]
}
