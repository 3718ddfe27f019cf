// Package validation checks pilot input and class data before either reaches
// the simulation. Class problems are fatal at load; bad runtime input is
// clamped or rejected per call.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/opd-ai/go-armada/pkg/entity"
)

const (
	MaxPilotNameLen = 32
)

var validPilotNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.<>()]+$`)

// ValidatePilotName validates and trims a pilot name for scoreboard and HUD
// display
func ValidatePilotName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("pilot name cannot be empty")
	}
	if len(name) > MaxPilotNameLen {
		return "", fmt.Errorf("pilot name too long: %d characters (max %d)", len(name), MaxPilotNameLen)
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("pilot name contains invalid UTF-8")
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("pilot name cannot be only whitespace")
	}
	if !validPilotNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("pilot name contains invalid characters")
	}
	return trimmed, nil
}

// ClampIntensity normalizes a command intensity into [0, 1]. Non-finite
// values come from broken input devices or scripted controllers and are
// treated as no input.
func ClampIntensity(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

// ValidateClassSet checks the linked class descriptors for values the
// simulation cannot run with. Config loading already resolves references;
// this catches numeric nonsense like zero masses or inverted rotator ranges.
func ValidateClassSet(set *entity.ClassSet) error {
	for name, pc := range set.Projectiles {
		if pc.Mass <= 0 {
			return fmt.Errorf("projectile class %q: mass must be positive", name)
		}
		if pc.Duration <= 0 {
			return fmt.Errorf("projectile class %q: duration must be positive", name)
		}
		if pc.Radius <= 0 {
			return fmt.Errorf("projectile class %q: radius must be positive", name)
		}
		if pc.Damage < 0 {
			return fmt.Errorf("projectile class %q: damage cannot be negative", name)
		}
	}

	for name, pc := range set.Propulsion {
		if pc.Thrust <= 0 {
			return fmt.Errorf("propulsion class %q: thrust must be positive", name)
		}
		if pc.AngularThrust <= 0 {
			return fmt.Errorf("propulsion class %q: angular thrust must be positive", name)
		}
		if pc.MaxMoveBurnLevel <= 0 || pc.MaxTurnBurnLevel <= 0 {
			return fmt.Errorf("propulsion class %q: burn levels must be positive", name)
		}
	}

	for name, wc := range set.Weapons {
		if wc.Cooldown < 0 {
			return fmt.Errorf("weapon class %q: cooldown cannot be negative", name)
		}
		if wc.FireRange <= 0 {
			return fmt.Errorf("weapon class %q: fire range must be positive", name)
		}
		if wc.RotationStyle != entity.RotationFixed && len(wc.Rotators) == 0 {
			return fmt.Errorf("weapon class %q: rotating style with no rotators", name)
		}
		if len(wc.Rotators) > 2 {
			return fmt.Errorf("weapon class %q: at most two rotators supported", name)
		}
		for i, rc := range wc.Rotators {
			if rc.RotationRate <= 0 {
				return fmt.Errorf("weapon class %q rotator %d: rotation rate must be positive", name, i)
			}
			if rc.Restricted {
				if rc.Min > rc.Max {
					return fmt.Errorf("weapon class %q rotator %d: range min %v above max %v", name, i, rc.Min, rc.Max)
				}
				if rc.DefaultAngle < rc.Min || rc.DefaultAngle > rc.Max {
					return fmt.Errorf("weapon class %q rotator %d: default angle %v outside range", name, i, rc.DefaultAngle)
				}
			}
		}
		for i, bc := range wc.Barrels {
			if bc.Projectile == nil {
				return fmt.Errorf("weapon class %q barrel %d: no projectile class", name, i)
			}
			if bc.Velocity <= 0 {
				return fmt.Errorf("weapon class %q barrel %d: muzzle velocity must be positive", name, i)
			}
		}
	}

	for name, sc := range set.Spacecraft {
		if sc.Mass <= 0 {
			return fmt.Errorf("spacecraft class %q: mass must be positive", name)
		}
		if sc.HullRadius <= 0 {
			return fmt.Errorf("spacecraft class %q: hull radius must be positive", name)
		}
		if sc.MaxHull <= 0 {
			return fmt.Errorf("spacecraft class %q: max hull must be positive", name)
		}
		if sc.Armor < 0 {
			return fmt.Errorf("spacecraft class %q: armor cannot be negative", name)
		}
		if sc.Propulsion == nil {
			return fmt.Errorf("spacecraft class %q: no propulsion class", name)
		}
		for i, slot := range sc.WeaponSlots {
			if slot.Weapon == nil {
				return fmt.Errorf("spacecraft class %q slot %d: no weapon class", name, i)
			}
		}
	}

	return nil
}
