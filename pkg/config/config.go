// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// BattleConfig contains the full configuration for one simulated battle:
// world parameters, the simulation constants, and the immutable class data
// for spacecraft, propulsion, weapons and projectiles.
type BattleConfig struct {
	WorldSize          float64                 `json:"worldSize"`
	OctreeLeafCapacity int                     `json:"octreeLeafCapacity"`
	ProjectilePoolSize int                     `json:"projectilePoolSize"`
	ExplosionPoolSize  int                     `json:"explosionPoolSize"`
	Simulation         SimulationConfig        `json:"simulation"`
	Teams              []TeamConfig            `json:"teams"`
	SpacecraftClasses  []SpacecraftClassConfig `json:"spacecraftClasses"`
	PropulsionClasses  []PropulsionClassConfig `json:"propulsionClasses"`
	WeaponClasses      []WeaponClassConfig     `json:"weaponClasses"`
	ProjectileClasses  []ProjectileClassConfig `json:"projectileClasses"`
}

// SimulationConfig carries the numeric constants supplied to the core at
// startup. It is loaded once and passed by reference into component
// constructors; nothing mutates it after load.
type SimulationConfig struct {
	// SelfFire enables projectiles hitting the spacecraft that fired them
	SelfFire bool `json:"selfFire"`
	// MomentDuration is the window (ms) over which instantaneous forces
	// (recoil, firing impulse, hit impulse) act for integration purposes
	MomentDuration float64 `json:"momentDuration"`
	// CompensatedForwardSpeedFactor scales max acceleration into the top
	// compensated forward speed
	CompensatedForwardSpeedFactor float64 `json:"compensatedForwardSpeedFactor"`
	// CompensatedReverseSpeedFactor does the same for reverse
	CompensatedReverseSpeedFactor float64 `json:"compensatedReverseSpeedFactor"`
	// StrafeSpeedFactor scales max acceleration into the strafe/lift speed cap
	StrafeSpeedFactor float64 `json:"strafeSpeedFactor"`
	// TurnAccelerationDuration is the time (ms) a full-intensity turn command
	// accelerates for; it fixes the turning limit reachable from one keypress
	TurnAccelerationDuration float64 `json:"turnAccelerationDuration"`
	// RestrictedTurnFactor shapes how hard turn rates are clamped as forward
	// speed grows in restricted flight mode
	RestrictedTurnFactor float64 `json:"restrictedTurnFactor"`
	// FireSoundStackTime is the window (ms) within which repeated fire sounds
	// stack volume instead of playing separately
	FireSoundStackTime float64 `json:"fireSoundStackTime"`
}

// TeamConfig contains configuration for a team
type TeamConfig struct {
	Name            string `json:"name"`
	Color           string `json:"color"`
	Spacecraft      int    `json:"spacecraft"`
	SpacecraftClass string `json:"spacecraftClass"`
}

// SpacecraftClassConfig describes one spacecraft type
type SpacecraftClassConfig struct {
	Name        string             `json:"name"`
	Mass        float64            `json:"mass"`
	HullRadius  float64            `json:"hullRadius"`
	MaxHull     float64            `json:"maxHull"`
	Armor       float64            `json:"armor"`
	Propulsion  string             `json:"propulsion"`
	WeaponSlots []WeaponSlotConfig `json:"weaponSlots"`
}

// WeaponSlotConfig places a weapon class on a craft-local mount point
type WeaponSlotConfig struct {
	Weapon   string     `json:"weapon"`
	Position [3]float64 `json:"position"`
}

// PropulsionClassConfig describes one propulsion type
type PropulsionClassConfig struct {
	Name             string               `json:"name"`
	Thrust           float64              `json:"thrust"`
	AngularThrust    float64              `json:"angularThrust"`
	MaxMoveBurnLevel float64              `json:"maxMoveBurnLevel"`
	MaxTurnBurnLevel float64              `json:"maxTurnBurnLevel"`
	ThrusterSlots    []ThrusterSlotConfig `json:"thrusterSlots"`
}

// ThrusterSlotConfig places one visible thruster nozzle, listing the named
// thruster uses it responds to
type ThrusterSlotConfig struct {
	Uses     []string   `json:"uses"`
	Position [3]float64 `json:"position"`
	Size     float64    `json:"size"`
}

// WeaponClassConfig describes one weapon type
type WeaponClassConfig struct {
	Name          string          `json:"name"`
	Cooldown      float64         `json:"cooldown"`
	FireRange     float64         `json:"fireRange"`
	RotationStyle string          `json:"rotationStyle"`
	Rotators      []RotatorConfig `json:"rotators"`
	Barrels       []BarrelConfig  `json:"barrels"`
}

// RotatorConfig describes one rotational degree of freedom of a turret
type RotatorConfig struct {
	Axis         [3]float64 `json:"axis"`
	Center       [3]float64 `json:"center"`
	RotationRate float64    `json:"rotationRate"`
	Restricted   bool       `json:"restricted"`
	Min          float64    `json:"min"`
	Max          float64    `json:"max"`
	DefaultAngle float64    `json:"defaultAngle"`
}

// BarrelConfig places one barrel in weapon-local space
type BarrelConfig struct {
	Position   [3]float64 `json:"position"`
	Projectile string     `json:"projectile"`
	Velocity   float64    `json:"velocity"`
}

// ProjectileClassConfig describes one projectile type
type ProjectileClassConfig struct {
	Name     string  `json:"name"`
	Mass     float64 `json:"mass"`
	Duration float64 `json:"duration"`
	Damage   float64 `json:"damage"`
	Radius   float64 `json:"radius"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*BattleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config BattleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *BattleConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks structural config errors that must be fatal at load time:
// missing class cross-references, non-positive masses, malformed rotator
// ranges.
func (c *BattleConfig) Validate() error {
	if c.WorldSize <= 0 {
		return fmt.Errorf("worldSize must be positive, got %v", c.WorldSize)
	}
	if c.Simulation.MomentDuration <= 0 {
		return fmt.Errorf("simulation.momentDuration must be positive, got %v", c.Simulation.MomentDuration)
	}

	propulsion := make(map[string]bool)
	for _, p := range c.PropulsionClasses {
		if p.MaxMoveBurnLevel <= 0 || p.MaxTurnBurnLevel <= 0 {
			return fmt.Errorf("propulsion class %q: burn level caps must be positive", p.Name)
		}
		propulsion[p.Name] = true
	}
	projectiles := make(map[string]bool)
	for _, p := range c.ProjectileClasses {
		if p.Mass <= 0 {
			return fmt.Errorf("projectile class %q: mass must be positive, got %v", p.Name, p.Mass)
		}
		if p.Duration <= 0 {
			return fmt.Errorf("projectile class %q: duration must be positive, got %v", p.Name, p.Duration)
		}
		projectiles[p.Name] = true
	}
	weapons := make(map[string]bool)
	for _, w := range c.WeaponClasses {
		for i, r := range w.Rotators {
			if r.Restricted && r.Min >= r.Max {
				return fmt.Errorf("weapon class %q rotator %d: min %v >= max %v", w.Name, i, r.Min, r.Max)
			}
		}
		for i, b := range w.Barrels {
			if !projectiles[b.Projectile] {
				return fmt.Errorf("weapon class %q barrel %d: unknown projectile class %q", w.Name, i, b.Projectile)
			}
		}
		weapons[w.Name] = true
	}
	for _, s := range c.SpacecraftClasses {
		if s.Mass <= 0 {
			return fmt.Errorf("spacecraft class %q: mass must be positive, got %v", s.Name, s.Mass)
		}
		if !propulsion[s.Propulsion] {
			return fmt.Errorf("spacecraft class %q: unknown propulsion class %q", s.Name, s.Propulsion)
		}
		for i, slot := range s.WeaponSlots {
			if !weapons[slot.Weapon] {
				return fmt.Errorf("spacecraft class %q slot %d: unknown weapon class %q", s.Name, i, slot.Weapon)
			}
		}
	}
	return nil
}

// DefaultConfig returns a battle configuration usable without any file: two
// teams of one fighter each, a fixed plasma gun and a yaw-pitch turret.
func DefaultConfig() *BattleConfig {
	return &BattleConfig{
		WorldSize:          20000,
		OctreeLeafCapacity: 10,
		ProjectilePoolSize: 256,
		ExplosionPoolSize:  64,
		Simulation: SimulationConfig{
			SelfFire:                      false,
			MomentDuration:                1,
			CompensatedForwardSpeedFactor: 5,
			CompensatedReverseSpeedFactor: 2,
			StrafeSpeedFactor:             2,
			TurnAccelerationDuration:      500,
			RestrictedTurnFactor:          100,
			FireSoundStackTime:            100,
		},
		Teams: []TeamConfig{
			{Name: "Empire", Color: "#FF3030", Spacecraft: 1, SpacecraftClass: "falcon"},
			{Name: "Federation", Color: "#3030FF", Spacecraft: 1, SpacecraftClass: "falcon"},
		},
		SpacecraftClasses: []SpacecraftClassConfig{
			{
				Name:       "falcon",
				Mass:       12000,
				HullRadius: 12,
				MaxHull:    400,
				Armor:      2,
				Propulsion: "fighterDrive",
				WeaponSlots: []WeaponSlotConfig{
					{Weapon: "plasmaGun", Position: [3]float64{-4, 0, 6}},
					{Weapon: "plasmaGun", Position: [3]float64{4, 0, 6}},
					{Weapon: "pointDefense", Position: [3]float64{0, 3, 0}},
				},
			},
		},
		PropulsionClasses: []PropulsionClassConfig{
			{
				Name:             "fighterDrive",
				Thrust:           1200000,
				AngularThrust:    60000,
				MaxMoveBurnLevel: 1,
				MaxTurnBurnLevel: 1,
				ThrusterSlots: []ThrusterSlotConfig{
					{Uses: []string{"forward"}, Position: [3]float64{-3, 0, -8}, Size: 2},
					{Uses: []string{"forward"}, Position: [3]float64{3, 0, -8}, Size: 2},
					{Uses: []string{"reverse", "yawLeft"}, Position: [3]float64{5, 0, 6}, Size: 0.8},
					{Uses: []string{"reverse", "yawRight"}, Position: [3]float64{-5, 0, 6}, Size: 0.8},
					{Uses: []string{"raise", "pitchUp"}, Position: [3]float64{0, -2, 5}, Size: 0.6},
					{Uses: []string{"lower", "pitchDown"}, Position: [3]float64{0, 2, 5}, Size: 0.6},
					{Uses: []string{"strafeLeft", "rollLeft"}, Position: [3]float64{5, 2, 0}, Size: 0.6},
					{Uses: []string{"strafeRight", "rollRight"}, Position: [3]float64{-5, 2, 0}, Size: 0.6},
				},
			},
		},
		WeaponClasses: []WeaponClassConfig{
			{
				Name:          "plasmaGun",
				Cooldown:      250,
				FireRange:     2000,
				RotationStyle: "fixed",
				Barrels: []BarrelConfig{
					{Position: [3]float64{0, 0, 1}, Projectile: "plasmaBolt", Velocity: 600},
				},
			},
			{
				Name:          "pointDefense",
				Cooldown:      150,
				FireRange:     1200,
				RotationStyle: "yawPitch",
				Rotators: []RotatorConfig{
					{Axis: [3]float64{0, 1, 0}, RotationRate: 2.5},
					{Axis: [3]float64{1, 0, 0}, RotationRate: 2.5, Restricted: true, Min: -0.2, Max: 1.4},
				},
				Barrels: []BarrelConfig{
					{Position: [3]float64{0, 0.5, 1}, Projectile: "defenseBolt", Velocity: 900},
				},
			},
		},
		ProjectileClasses: []ProjectileClassConfig{
			{Name: "plasmaBolt", Mass: 0.2, Duration: 3000, Damage: 30, Radius: 0.3},
			{Name: "defenseBolt", Mass: 0.05, Duration: 1500, Damage: 8, Radius: 0.15},
		},
	}
}
