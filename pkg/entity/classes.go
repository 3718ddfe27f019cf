// pkg/entity/classes.go
package entity

import (
	"fmt"

	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// RotationStyle determines how a weapon's rotators map onto aim angles
type RotationStyle int

const (
	// RotationFixed weapons have no rotators and fire along their mount
	RotationFixed RotationStyle = iota
	// RotationYawPitch turrets yaw around their up axis, then pitch
	RotationYawPitch
	// RotationRollYaw weapons roll around their forward axis, then yaw away
	// from it
	RotationRollYaw
)

// RotationStyleFromString converts a config string to a RotationStyle
func RotationStyleFromString(s string) (RotationStyle, error) {
	switch s {
	case "fixed", "":
		return RotationFixed, nil
	case "yawPitch":
		return RotationYawPitch, nil
	case "rollYaw":
		return RotationRollYaw, nil
	default:
		return RotationFixed, fmt.Errorf("unknown rotation style %q", s)
	}
}

// RotatorClass is one rotational degree of freedom of a turret
type RotatorClass struct {
	Axis         physics.Vector3D
	Center       physics.Vector3D
	RotationRate float64 // rad/s
	Restricted   bool
	Min          float64
	Max          float64
	DefaultAngle float64
}

// BarrelClass places one barrel in weapon-local space
type BarrelClass struct {
	Position   physics.Vector3D
	Projectile *ProjectileClass
	Velocity   float64 // muzzle speed, m/s
}

// WeaponClass is the immutable descriptor shared by all weapons of one type
type WeaponClass struct {
	Name          string
	Cooldown      float64 // ms
	FireRange     float64 // m
	RotationStyle RotationStyle
	Rotators      []RotatorClass
	Barrels       []BarrelClass
}

// ProjectileClass is the immutable descriptor shared by all projectiles of
// one type
type ProjectileClass struct {
	Name     string
	Mass     float64 // kg
	Duration float64 // lifetime, ms
	Damage   float64
	Radius   float64
}

// ThrusterSlot places one visible thruster nozzle on a craft
type ThrusterSlot struct {
	Uses     []ThrusterUse
	Position physics.Vector3D
	Size     float64
}

// PropulsionClass is the immutable descriptor for one propulsion type
type PropulsionClass struct {
	Name             string
	Thrust           float64 // N at max move burn
	AngularThrust    float64 // at max turn burn
	MaxMoveBurnLevel float64
	MaxTurnBurnLevel float64
	ThrusterSlots    []ThrusterSlot
}

// WeaponSlot mounts a weapon class at a craft-local position
type WeaponSlot struct {
	Weapon   *WeaponClass
	Position physics.Vector3D
}

// SpacecraftClass is the immutable descriptor for one spacecraft type
type SpacecraftClass struct {
	Name        string
	Mass        float64
	HullRadius  float64
	MaxHull     float64
	Armor       float64
	Propulsion  *PropulsionClass
	WeaponSlots []WeaponSlot
}

// ClassSet holds every class loaded for a battle, keyed by name
type ClassSet struct {
	Spacecraft  map[string]*SpacecraftClass
	Propulsion  map[string]*PropulsionClass
	Weapons     map[string]*WeaponClass
	Projectiles map[string]*ProjectileClass
}

func vec(a [3]float64) physics.Vector3D {
	return physics.Vector3D{X: a[0], Y: a[1], Z: a[2]}
}

// LoadClasses resolves the raw config class data into linked immutable
// descriptors. Any dangling reference or malformed entry is a load-time
// error; nothing here is recoverable at runtime.
func LoadClasses(cfg *config.BattleConfig) (*ClassSet, error) {
	set := &ClassSet{
		Spacecraft:  make(map[string]*SpacecraftClass),
		Propulsion:  make(map[string]*PropulsionClass),
		Weapons:     make(map[string]*WeaponClass),
		Projectiles: make(map[string]*ProjectileClass),
	}

	for _, pc := range cfg.ProjectileClasses {
		set.Projectiles[pc.Name] = &ProjectileClass{
			Name:     pc.Name,
			Mass:     pc.Mass,
			Duration: pc.Duration,
			Damage:   pc.Damage,
			Radius:   pc.Radius,
		}
	}

	for _, pc := range cfg.PropulsionClasses {
		class := &PropulsionClass{
			Name:             pc.Name,
			Thrust:           pc.Thrust,
			AngularThrust:    pc.AngularThrust,
			MaxMoveBurnLevel: pc.MaxMoveBurnLevel,
			MaxTurnBurnLevel: pc.MaxTurnBurnLevel,
		}
		for i, slot := range pc.ThrusterSlots {
			uses := make([]ThrusterUse, 0, len(slot.Uses))
			for _, name := range slot.Uses {
				use, err := ThrusterUseFromString(name)
				if err != nil {
					return nil, fmt.Errorf("propulsion class %q thruster slot %d: %w", pc.Name, i, err)
				}
				uses = append(uses, use)
			}
			class.ThrusterSlots = append(class.ThrusterSlots, ThrusterSlot{
				Uses:     uses,
				Position: vec(slot.Position),
				Size:     slot.Size,
			})
		}
		set.Propulsion[pc.Name] = class
	}

	for _, wc := range cfg.WeaponClasses {
		style, err := RotationStyleFromString(wc.RotationStyle)
		if err != nil {
			return nil, fmt.Errorf("weapon class %q: %w", wc.Name, err)
		}
		class := &WeaponClass{
			Name:          wc.Name,
			Cooldown:      wc.Cooldown,
			FireRange:     wc.FireRange,
			RotationStyle: style,
		}
		if style != RotationFixed && len(wc.Rotators) == 0 {
			return nil, fmt.Errorf("weapon class %q: rotation style %q requires rotators", wc.Name, wc.RotationStyle)
		}
		for _, rc := range wc.Rotators {
			class.Rotators = append(class.Rotators, RotatorClass{
				Axis:         vec(rc.Axis).Normalize(),
				Center:       vec(rc.Center),
				RotationRate: rc.RotationRate,
				Restricted:   rc.Restricted,
				Min:          rc.Min,
				Max:          rc.Max,
				DefaultAngle: rc.DefaultAngle,
			})
		}
		for i, bc := range wc.Barrels {
			projectile, ok := set.Projectiles[bc.Projectile]
			if !ok {
				return nil, fmt.Errorf("weapon class %q barrel %d: unknown projectile class %q", wc.Name, i, bc.Projectile)
			}
			class.Barrels = append(class.Barrels, BarrelClass{
				Position:   vec(bc.Position),
				Projectile: projectile,
				Velocity:   bc.Velocity,
			})
		}
		set.Weapons[wc.Name] = class
	}

	for _, sc := range cfg.SpacecraftClasses {
		propulsion, ok := set.Propulsion[sc.Propulsion]
		if !ok {
			return nil, fmt.Errorf("spacecraft class %q: unknown propulsion class %q", sc.Name, sc.Propulsion)
		}
		class := &SpacecraftClass{
			Name:       sc.Name,
			Mass:       sc.Mass,
			HullRadius: sc.HullRadius,
			MaxHull:    sc.MaxHull,
			Armor:      sc.Armor,
			Propulsion: propulsion,
		}
		for i, slot := range sc.WeaponSlots {
			weapon, ok := set.Weapons[slot.Weapon]
			if !ok {
				return nil, fmt.Errorf("spacecraft class %q slot %d: unknown weapon class %q", sc.Name, i, slot.Weapon)
			}
			class.WeaponSlots = append(class.WeaponSlots, WeaponSlot{
				Weapon:   weapon,
				Position: vec(slot.Position),
			})
		}
		set.Spacecraft[sc.Name] = class
	}

	return set, nil
}
