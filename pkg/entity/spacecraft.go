// pkg/entity/spacecraft.go
package entity

import (
	"github.com/opd-ai/go-armada/pkg/audio"
	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// Spacecraft aggregates one craft's body, propulsion, maneuvering computer
// and equipped weapons. All pilot and AI input goes through the maneuvering
// computer and weapon methods; the spacecraft itself only sequences the
// per-tick updates.
type Spacecraft struct {
	id     ID
	class  *SpacecraftClass
	teamID int
	env    *Env

	body        *physics.Body
	propulsion  *Propulsion
	maneuvering *ManeuveringComputer
	weapons     []*Weapon
	fireSound   *audio.Stacker

	hull  float64
	alive bool
}

// NewSpacecraft builds a craft of the given class at a starting pose.
// engineSound and fireSound may be nil for silent battles.
func NewSpacecraft(class *SpacecraftClass, teamID int, env *Env, position physics.Vector3D, orientation physics.Basis, engineSound *audio.Clip, fireSound *audio.Stacker) *Spacecraft {
	s := &Spacecraft{
		id:     GenerateID(),
		class:  class,
		teamID: teamID,
		env:    env,
		hull:   class.MaxHull,
		alive:  true,

		fireSound: fireSound,
	}
	s.body = physics.NewBody(class.Mass, class.HullRadius, position, orientation)
	s.propulsion = NewPropulsion(class.Propulsion, s.body, engineSound)
	s.maneuvering = NewManeuveringComputer(s.body, s.propulsion, env.Params)
	for _, slot := range class.WeaponSlots {
		s.weapons = append(s.weapons, NewWeapon(slot, s, env, fireSound))
	}

	if env.Events != nil {
		env.Events.Publish(event.NewSpacecraftEvent(event.SpacecraftSpawned, s, uint64(s.id), teamID))
	}
	return s
}

// GetID returns the craft's entity ID
func (s *Spacecraft) GetID() ID {
	return s.id
}

// GetBody returns the craft's physics body
func (s *Spacecraft) GetBody() *physics.Body {
	return s.body
}

// Class returns the craft's immutable descriptor
func (s *Spacecraft) Class() *SpacecraftClass {
	return s.class
}

// TeamID returns the team the craft fights for
func (s *Spacecraft) TeamID() int {
	return s.teamID
}

// Hull returns the remaining hull points
func (s *Spacecraft) Hull() float64 {
	return s.hull
}

// Alive reports whether the craft is still in the fight
func (s *Spacecraft) Alive() bool {
	return s.alive
}

// Maneuvering returns the craft's maneuvering computer, the entry point for
// all movement commands
func (s *Spacecraft) Maneuvering() *ManeuveringComputer {
	return s.maneuvering
}

// Propulsion returns the craft's propulsion system
func (s *Spacecraft) Propulsion() *Propulsion {
	return s.propulsion
}

// Weapons returns the equipped weapons in slot order
func (s *Spacecraft) Weapons() []*Weapon {
	return s.weapons
}

// ChangeFlightMode cycles the maneuvering computer's flight mode and
// announces the change
func (s *Spacecraft) ChangeFlightMode() FlightMode {
	mode := s.maneuvering.ChangeFlightMode()
	if s.env.Events != nil {
		s.env.Events.Publish(event.NewFlightModeEvent(s, uint64(s.id), mode.String()))
	}
	return mode
}

// AimWeaponsAt turns every rotating weapon toward a world-space target
func (s *Spacecraft) AimWeaponsAt(target physics.Vector3D, turnThreshold, fireThreshold, dt float64) {
	for _, w := range s.weapons {
		w.AimTowards(target, turnThreshold, fireThreshold, dt)
	}
}

// RestWeapons returns every rotating weapon to its default angles
func (s *Spacecraft) RestWeapons(turnThreshold, fireThreshold, dt float64) {
	for _, w := range s.weapons {
		w.RotateToDefault(turnThreshold, fireThreshold, dt)
	}
}

// FireAll fires every weapon that is ready and, when onlyIfAimedOrFixed is
// set, aimed. It returns the total number of projectiles launched.
func (s *Spacecraft) FireAll(onlyIfAimedOrFixed bool) int {
	if !s.alive {
		return 0
	}
	fired := 0
	for _, w := range s.weapons {
		fired += w.Fire(onlyIfAimedOrFixed)
	}
	return fired
}

// ApplyDamage reduces the hull by the damage that penetrates the armor.
// Armor subtracts a flat amount per hit. A hull at or below zero destroys
// the craft.
func (s *Spacecraft) ApplyDamage(amount float64, hitPoint physics.Vector3D) {
	if !s.alive {
		return
	}
	penetrating := amount - s.class.Armor
	if penetrating <= 0 {
		return
	}
	s.hull -= penetrating
	if s.hull <= 0 {
		s.hull = 0
		s.destroy()
	}
}

func (s *Spacecraft) destroy() {
	s.alive = false
	s.propulsion.ResetThrusterBurn()
	if s.env.Explosions != nil {
		if explosion, ok := s.env.Explosions.Acquire(); ok {
			explosion.Ignite(s.body.Position, s.class.HullRadius*4, 1200)
		}
	}
	if s.env.Events != nil {
		s.env.Events.Publish(event.NewSpacecraftEvent(event.SpacecraftDestroyed, s, uint64(s.id), s.teamID))
	}
}

// Update advances the craft one tick: the control law converts this tick's
// accumulated commands into burn, propulsion turns burn into forces, the
// body integrates, and the weapons cool down. dt is milliseconds. A dead
// craft keeps drifting but no longer thrusts or cools weapons.
func (s *Spacecraft) Update(dt float64) {
	if s.alive {
		s.maneuvering.ControlThrusters(dt)
	}
	s.propulsion.Simulate(dt, s.alive)
	s.body.Simulate(dt)
	if s.alive {
		for _, w := range s.weapons {
			w.Simulate(dt)
		}
		if s.fireSound != nil {
			s.fireSound.Tick(dt)
		}
	}
}
