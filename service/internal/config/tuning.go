// internal/config/tuning.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	engine "github.com/CodeIngame/OceanOfCode/engine"
)

// Tuning is the YAML form of the policy knobs. Absent keys keep the base value.
type Tuning struct {
	TorpedoRange     *int     `yaml:"torpedo_range"`
	SilenceRange     *int     `yaml:"silence_range"`
	SafetyRadius     *int     `yaml:"safety_radius"`
	SurfacePrecision *int     `yaml:"surface_precision"`
	GrazePrecision   *int     `yaml:"graze_precision"`
	ApproachDistance *int     `yaml:"approach_distance"`
	SilenceTrigger   *int     `yaml:"silence_trigger"`
	ReloadPriority   []string `yaml:"reload_priority"`
}

// LoadTuning reads a YAML tuning file and applies it over base.
func LoadTuning(path string, base engine.Rules) (engine.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading tuning file: %w", err)
	}
	return ParseTuning(data, base)
}

// ParseTuning applies YAML tuning data over base.
func ParseTuning(data []byte, base engine.Rules) (engine.Rules, error) {
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return base, fmt.Errorf("%w: tuning: %v", ErrInvalidConfig, err)
	}

	out := base
	for _, f := range []struct {
		name string
		src  *int
		dst  *int
	}{
		{"torpedo_range", t.TorpedoRange, &out.TorpedoRange},
		{"silence_range", t.SilenceRange, &out.SilenceRange},
		{"safety_radius", t.SafetyRadius, &out.SafetyRadius},
		{"surface_precision", t.SurfacePrecision, &out.SurfacePrecision},
		{"graze_precision", t.GrazePrecision, &out.GrazePrecision},
		{"approach_distance", t.ApproachDistance, &out.ApproachDistance},
		{"silence_trigger", t.SilenceTrigger, &out.SilenceTrigger},
	} {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			return base, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, f.name)
		}
		*f.dst = *f.src
	}

	if len(t.ReloadPriority) > 0 {
		prio := make([]engine.DeviceType, 0, len(t.ReloadPriority))
		for _, name := range t.ReloadPriority {
			d, ok := engine.ParseDevice(name)
			if !ok || d == engine.DeviceMine {
				return base, fmt.Errorf("%w: reload_priority: unsupported device %q", ErrInvalidConfig, name)
			}
			prio = append(prio, d)
		}
		out.ReloadPriority = prio
	}
	return out, nil
}
