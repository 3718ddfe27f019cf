// pkg/entity/propulsion.go
package entity

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-armada/pkg/audio"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// ThrusterUse names one of the twelve fixed burn categories a propulsion
// system drives
type ThrusterUse int

const (
	UseForward ThrusterUse = iota
	UseReverse
	UseStrafeLeft
	UseStrafeRight
	UseRaise
	UseLower
	UseYawLeft
	UseYawRight
	UsePitchUp
	UsePitchDown
	UseRollLeft
	UseRollRight

	thrusterUseCount
)

var thrusterUseNames = [thrusterUseCount]string{
	"forward", "reverse", "strafeLeft", "strafeRight", "raise", "lower",
	"yawLeft", "yawRight", "pitchUp", "pitchDown", "rollLeft", "rollRight",
}

// String returns the config-file name of the use
func (u ThrusterUse) String() string {
	if u < 0 || u >= thrusterUseCount {
		return "unknown"
	}
	return thrusterUseNames[u]
}

// ThrusterUseFromString converts a config string to a ThrusterUse
func ThrusterUseFromString(s string) (ThrusterUse, error) {
	for i, name := range thrusterUseNames {
		if name == s {
			return ThrusterUse(i), nil
		}
	}
	return 0, fmt.Errorf("unknown thruster use %q", s)
}

// isTurnUse reports whether the use is a rotational category, which burns
// against the turn cap instead of the move cap
func (u ThrusterUse) isTurnUse() bool {
	return u >= UseYawLeft
}

// Thruster is one visible nozzle. It holds no physics of its own: its flame
// scale and light intensity are pure functions of the accumulated burn of
// the uses it serves, written out for the renderer each tick.
type Thruster struct {
	Slot ThrusterSlot

	burn    float64
	maxBurn float64
}

// BurnLevel returns the thruster's current accumulated burn
func (t *Thruster) BurnLevel() float64 {
	return t.burn
}

// FlameScale returns the visual flame length factor in [0, 1]
func (t *Thruster) FlameScale() float64 {
	if t.maxBurn == 0 {
		return 0
	}
	return math.Min(t.burn/t.maxBurn, 1)
}

// LightIntensity returns the engine glow strength in [0, 1]; full glow is
// reached at half burn so small corrections stay visible
func (t *Thruster) LightIntensity() float64 {
	return math.Min(2*t.FlameScale(), 1)
}

type burnState struct {
	level     float64
	thrusters []*Thruster
}

// Propulsion converts named burn levels into forces and torques on the
// driven body. Exactly one Propulsion exists per spacecraft.
type Propulsion struct {
	class *PropulsionClass
	body  *physics.Body

	burn      [thrusterUseCount]burnState
	thrusters []*Thruster
	sound     *audio.Clip
}

// Sound volume grades for the engine hum; the clip ramps between them
const engineSoundGrades = 4

// NewPropulsion creates the propulsion system for one body. sound may be nil
// for silent simulations.
func NewPropulsion(class *PropulsionClass, body *physics.Body, sound *audio.Clip) *Propulsion {
	p := &Propulsion{
		class: class,
		body:  body,
		sound: sound,
	}
	for _, slot := range class.ThrusterSlots {
		maxBurn := class.MaxMoveBurnLevel
		for _, use := range slot.Uses {
			if use.isTurnUse() {
				maxBurn = class.MaxTurnBurnLevel
				break
			}
		}
		thruster := &Thruster{Slot: slot, maxBurn: maxBurn}
		p.thrusters = append(p.thrusters, thruster)
		for _, use := range slot.Uses {
			p.burn[use].thrusters = append(p.burn[use].thrusters, thruster)
		}
	}
	return p
}

// Class returns the immutable propulsion descriptor
func (p *Propulsion) Class() *PropulsionClass {
	return p.class
}

// Thrusters returns the nozzle list for rendering
func (p *Propulsion) Thrusters() []*Thruster {
	return p.thrusters
}

// maxBurnFor returns the cap for the use's category
func (p *Propulsion) maxBurnFor(use ThrusterUse) float64 {
	if use.isTurnUse() {
		return p.class.MaxTurnBurnLevel
	}
	return p.class.MaxMoveBurnLevel
}

// AddThrusterBurn accumulates burn for a named use, clamped to [0, max for
// the category], and updates every thruster mapped to that use
func (p *Propulsion) AddThrusterBurn(use ThrusterUse, value float64) {
	if use < 0 || use >= thrusterUseCount || value <= 0 {
		return
	}
	state := &p.burn[use]
	state.level = math.Min(state.level+value, p.maxBurnFor(use))
	for _, t := range state.thrusters {
		t.burn = 0
		for _, u := range t.Slot.Uses {
			t.burn += p.burn[u].level
		}
	}
}

// ThrusterBurn returns the accumulated burn for a use
func (p *Propulsion) ThrusterBurn(use ThrusterUse) float64 {
	if use < 0 || use >= thrusterUseCount {
		return 0
	}
	return p.burn[use].level
}

// ResetThrusterBurn zeroes all burn levels at the start of a control tick
func (p *Propulsion) ResetThrusterBurn() {
	for i := range p.burn {
		p.burn[i].level = 0
	}
	for _, t := range p.thrusters {
		t.burn = 0
	}
}

// Named renewable forces and torques; renewing by name each tick keeps one
// slot per axis on the body instead of stacking new entries
const (
	forceForwardThrust = "forwardThrust"
	forceStrafeThrust  = "strafeThrust"
	forceLiftThrust    = "liftThrust"
	torqueYaw          = "yawTorque"
	torquePitch        = "pitchTorque"
	torqueRoll         = "rollTorque"
)

// Simulate converts burn levels into renewable forces and torques on the
// driven body and updates the engine sound. When applyForces is false only
// the audio feedback runs (used for remote-display crafts that receive
// authoritative state).
func (p *Propulsion) Simulate(dt float64, applyForces bool) {
	if applyForces {
		p.applyAxis(forceForwardThrust, p.body.Orientation.Forward,
			p.burn[UseForward].level-p.burn[UseReverse].level, dt)
		p.applyAxis(forceStrafeThrust, p.body.Orientation.Right,
			p.burn[UseStrafeRight].level-p.burn[UseStrafeLeft].level, dt)
		p.applyAxis(forceLiftThrust, p.body.Orientation.Up,
			p.burn[UseRaise].level-p.burn[UseLower].level, dt)

		p.applyTorque(torqueYaw, physics.Vector3D{Y: 1},
			p.burn[UseYawRight].level-p.burn[UseYawLeft].level, dt)
		p.applyTorque(torquePitch, physics.Vector3D{X: 1},
			p.burn[UsePitchUp].level-p.burn[UsePitchDown].level, dt)
		p.applyTorque(torqueRoll, physics.Vector3D{Z: 1},
			p.burn[UseRollRight].level-p.burn[UseRollLeft].level, dt)
	}

	if p.sound != nil {
		p.sound.SetVolume(audio.QuantizeVolume(p.totalBurnFraction(), engineSoundGrades))
		p.sound.Tick(dt)
	}
}

func (p *Propulsion) applyAxis(name string, axis physics.Vector3D, burn, dt float64) {
	magnitude := p.class.Thrust * burn / p.class.MaxMoveBurnLevel
	if magnitude == 0 {
		// Renew with zero magnitude so a released key stops thrusting even
		// though force entries outlive the tick that added them
		p.body.AddOrRenewForce(name, axis, 0, dt)
		return
	}
	if magnitude < 0 {
		axis = axis.Neg()
		magnitude = -magnitude
	}
	p.body.AddOrRenewForce(name, axis, magnitude, dt)
}

func (p *Propulsion) applyTorque(name string, axis physics.Vector3D, burn, dt float64) {
	magnitude := p.class.AngularThrust * burn / p.class.MaxTurnBurnLevel
	if magnitude == 0 {
		p.body.AddOrRenewTorque(name, axis, 0, dt)
		return
	}
	if magnitude < 0 {
		axis = axis.Neg()
		magnitude = -magnitude
	}
	p.body.AddOrRenewTorque(name, axis, magnitude, dt)
}

// totalBurnFraction sums move-category burn relative to its cap, for the
// engine hum volume
func (p *Propulsion) totalBurnFraction() float64 {
	total := 0.0
	for use := UseForward; use <= UseLower; use++ {
		total += p.burn[use].level
	}
	return math.Min(total/(p.class.MaxMoveBurnLevel*2), 1)
}

// MaxAcceleration returns the linear acceleration at full move burn, m/s^2
func (p *Propulsion) MaxAcceleration() float64 {
	return p.class.Thrust / p.body.Mass
}

// MaxAngularAcceleration returns the angular acceleration at full turn burn,
// rad/s^2
func (p *Propulsion) MaxAngularAcceleration() float64 {
	return p.class.AngularThrust / p.body.Mass
}
