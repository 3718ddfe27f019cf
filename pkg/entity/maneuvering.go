// pkg/entity/maneuvering.go
package entity

import (
	"math"

	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// FlightMode is the maneuvering computer's assistance level, derived from
// the compensated and restricted flags
type FlightMode int

const (
	// FlightModeFree applies thrust directly with no drift compensation
	FlightModeFree FlightMode = iota
	// FlightModeCompensated holds a commanded velocity, canceling drift
	FlightModeCompensated
	// FlightModeRestricted is compensated flight with speed-dependent turn
	// rate limits
	FlightModeRestricted
)

// String returns the mode name for events and HUD display
func (m FlightMode) String() string {
	switch m {
	case FlightModeCompensated:
		return "compensated"
	case FlightModeRestricted:
		return "restricted"
	default:
		return "free"
	}
}

// Angular gaps below this are treated as already on target, keeping the
// thrusters from chattering around zero
const turnGapThreshold = 1e-4

// Speed gaps below this (m/s) are not corrected
const speedGapThreshold = 1e-3

// ManeuveringComputer converts accumulated per-tick command targets into the
// thruster burn assignment that closes the gap to them. Commands must be
// re-issued every tick to sustain an action; that is how held keys, mouse
// displacement and AI intent all translate uniformly into continuous thrust.
type ManeuveringComputer struct {
	body       *physics.Body
	propulsion *Propulsion
	params     *config.SimulationConfig

	compensated bool
	restricted  bool

	// Per-tick targets, consumed and reset by ControlThrusters. speedTarget
	// is the persistent cruise speed while compensated; in free flight it is
	// NaN unless a command set it this tick.
	yawTarget    float64 // rad/s, positive = right
	pitchTarget  float64 // rad/s, positive = up
	rollTarget   float64 // rad/s, positive = bank right
	speedTarget  float64 // m/s along forward
	strafeTarget float64 // m/s along right
	liftTarget   float64 // m/s along up

	// Cached from the propulsion class by UpdateForNewPropulsion
	turningLimit        float64 // rad/s from a full-intensity turn command
	maxAcceleration     float64
	maxAngularAccel     float64
	maxCompensatedSpeed float64 // forward
	maxReverseSpeed     float64 // positive magnitude
	strafeSpeedCap      float64

	speedIncrement float64 // m/s added per full-intensity command this tick
}

// NewManeuveringComputer creates the control layer for one craft, starting
// in free flight
func NewManeuveringComputer(body *physics.Body, propulsion *Propulsion, params *config.SimulationConfig) *ManeuveringComputer {
	mc := &ManeuveringComputer{
		body:        body,
		propulsion:  propulsion,
		params:      params,
		speedTarget: math.NaN(),
	}
	mc.UpdateForNewPropulsion()
	return mc
}

// UpdateForNewPropulsion recomputes the cached control constants. Call it
// whenever the craft's propulsion changes.
func (mc *ManeuveringComputer) UpdateForNewPropulsion() {
	mc.maxAcceleration = mc.propulsion.MaxAcceleration()
	mc.maxAngularAccel = mc.propulsion.MaxAngularAcceleration()
	mc.turningLimit = mc.maxAngularAccel * mc.params.TurnAccelerationDuration / 1000
	mc.maxCompensatedSpeed = mc.params.CompensatedForwardSpeedFactor * mc.maxAcceleration
	mc.maxReverseSpeed = mc.params.CompensatedReverseSpeedFactor * mc.maxAcceleration
	mc.strafeSpeedCap = mc.params.StrafeSpeedFactor * mc.maxAcceleration
}

// FlightMode returns the current derived mode
func (mc *ManeuveringComputer) FlightMode() FlightMode {
	switch {
	case mc.restricted:
		return FlightModeRestricted
	case mc.compensated:
		return FlightModeCompensated
	default:
		return FlightModeFree
	}
}

// ChangeFlightMode cycles FREE, COMPENSATED, RESTRICTED, FREE. Entering
// compensated flight adopts the current measured speed as the cruise target,
// clamped into the compensated band.
func (mc *ManeuveringComputer) ChangeFlightMode() FlightMode {
	switch mc.FlightMode() {
	case FlightModeFree:
		mc.compensated = true
		mc.speedTarget = clamp(mc.forwardSpeed(), -mc.maxReverseSpeed, mc.maxCompensatedSpeed)
	case FlightModeCompensated:
		mc.restricted = true
	default:
		mc.compensated = false
		mc.restricted = false
		mc.speedTarget = math.NaN()
	}
	return mc.FlightMode()
}

// TurningLimit returns the turn rate a full-intensity command requests
func (mc *ManeuveringComputer) TurningLimit() float64 {
	return mc.turningLimit
}

// SpeedTarget returns the current cruise speed target (NaN in free flight
// with no explicit command this tick)
func (mc *ManeuveringComputer) SpeedTarget() float64 {
	return mc.speedTarget
}

// MaxCompensatedForwardSpeed returns the compensated forward speed cap
func (mc *ManeuveringComputer) MaxCompensatedForwardSpeed() float64 {
	return mc.maxCompensatedSpeed
}

// SetTickLength fixes the time scale of incremental speed commands for this
// tick. The engine calls it once per tick before controllers issue commands.
func (mc *ManeuveringComputer) SetTickLength(dt float64) {
	mc.speedIncrement = mc.maxAcceleration * dt / 1000
}

func intensityOf(intensity []float64) float64 {
	if len(intensity) == 0 {
		return 1
	}
	return intensity[0]
}

// localVelocity returns the body's velocity in its own frame
func (mc *ManeuveringComputer) localVelocity() physics.Vector3D {
	return mc.body.Orientation.ToLocal(mc.body.Velocity)
}

func (mc *ManeuveringComputer) forwardSpeed() float64 {
	return mc.localVelocity().Z
}

// Forward requests forward acceleration. With compensation the cruise target
// grows by intensity * speedIncrement up to the compensated cap; in free
// flight the target becomes unbounded, meaning "thrust, no compensation".
func (mc *ManeuveringComputer) Forward(intensity ...float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		return
	}
	if mc.compensated {
		if math.IsNaN(mc.speedTarget) {
			mc.speedTarget = 0
		}
		mc.speedTarget = clamp(mc.speedTarget+i*mc.speedIncrement, -mc.maxReverseSpeed, mc.maxCompensatedSpeed)
		return
	}
	mc.speedTarget = math.Inf(1)
}

// Reverse requests rearward acceleration, mirroring Forward
func (mc *ManeuveringComputer) Reverse(intensity ...float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		return
	}
	if mc.compensated {
		if math.IsNaN(mc.speedTarget) {
			mc.speedTarget = 0
		}
		mc.speedTarget = clamp(mc.speedTarget-i*mc.speedIncrement, -mc.maxReverseSpeed, mc.maxCompensatedSpeed)
		return
	}
	mc.speedTarget = math.Inf(-1)
}

// StopForward ends a free-flight forward command: if the target would keep
// accelerating past the measured speed, it is reset to that speed.
func (mc *ManeuveringComputer) StopForward() {
	if math.IsInf(mc.speedTarget, 1) {
		mc.speedTarget = mc.forwardSpeed()
	}
}

// StopReverse ends a free-flight reverse command
func (mc *ManeuveringComputer) StopReverse() {
	if math.IsInf(mc.speedTarget, -1) {
		mc.speedTarget = mc.forwardSpeed()
	}
}

// StrafeRight requests sideways acceleration to the right
func (mc *ManeuveringComputer) StrafeRight(intensity ...float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		return
	}
	if mc.compensated {
		mc.strafeTarget = clamp(mc.strafeTarget+i*mc.speedIncrement, -mc.strafeSpeedCap, mc.strafeSpeedCap)
		return
	}
	mc.strafeTarget = math.Inf(1)
}

// StrafeLeft requests sideways acceleration to the left
func (mc *ManeuveringComputer) StrafeLeft(intensity ...float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		return
	}
	if mc.compensated {
		mc.strafeTarget = clamp(mc.strafeTarget-i*mc.speedIncrement, -mc.strafeSpeedCap, mc.strafeSpeedCap)
		return
	}
	mc.strafeTarget = math.Inf(-1)
}

// StopStrafe ends a free-flight strafe command, sampling the measured
// sideways speed if the target would overshoot it
func (mc *ManeuveringComputer) StopStrafe() {
	if math.IsInf(mc.strafeTarget, 0) {
		mc.strafeTarget = mc.localVelocity().X
	}
}

// Raise requests upward acceleration
func (mc *ManeuveringComputer) Raise(intensity ...float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		return
	}
	if mc.compensated {
		mc.liftTarget = clamp(mc.liftTarget+i*mc.speedIncrement, -mc.strafeSpeedCap, mc.strafeSpeedCap)
		return
	}
	mc.liftTarget = math.Inf(1)
}

// Lower requests downward acceleration
func (mc *ManeuveringComputer) Lower(intensity ...float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		return
	}
	if mc.compensated {
		mc.liftTarget = clamp(mc.liftTarget-i*mc.speedIncrement, -mc.strafeSpeedCap, mc.strafeSpeedCap)
		return
	}
	mc.liftTarget = math.Inf(-1)
}

// StopLift ends a free-flight raise/lower command
func (mc *ManeuveringComputer) StopLift() {
	if math.IsInf(mc.liftTarget, 0) {
		mc.liftTarget = mc.localVelocity().Y
	}
}

// setTurnTarget implements the shared rotational command logic: no intensity
// means a full-intensity keypress, a positive intensity scales the turning
// limit, and a zero or negative intensity cancels the target only when it
// was previously set in the same direction, so one input device cannot
// cancel another's opposite-direction command.
func setTurnTarget(target *float64, limit float64, direction float64, intensity []float64) {
	i := intensityOf(intensity)
	if i <= 0 {
		if *target*direction > 0 {
			*target = 0
		}
		return
	}
	if i > 1 {
		i = 1
	}
	*target = direction * i * limit
}

// YawRight requests a turn to the right at intensity times the turning limit
func (mc *ManeuveringComputer) YawRight(intensity ...float64) {
	setTurnTarget(&mc.yawTarget, mc.turningLimit, 1, intensity)
}

// YawLeft requests a turn to the left
func (mc *ManeuveringComputer) YawLeft(intensity ...float64) {
	setTurnTarget(&mc.yawTarget, mc.turningLimit, -1, intensity)
}

// PitchUp requests a nose-up rotation
func (mc *ManeuveringComputer) PitchUp(intensity ...float64) {
	setTurnTarget(&mc.pitchTarget, mc.turningLimit, 1, intensity)
}

// PitchDown requests a nose-down rotation
func (mc *ManeuveringComputer) PitchDown(intensity ...float64) {
	setTurnTarget(&mc.pitchTarget, mc.turningLimit, -1, intensity)
}

// RollRight requests a bank to the right
func (mc *ManeuveringComputer) RollRight(intensity ...float64) {
	setTurnTarget(&mc.rollTarget, mc.turningLimit, 1, intensity)
}

// RollLeft requests a bank to the left
func (mc *ManeuveringComputer) RollLeft(intensity ...float64) {
	setTurnTarget(&mc.rollTarget, mc.turningLimit, -1, intensity)
}

// MaxTurnRateAtSpeed returns the restricted-mode turn rate cap at the given
// forward speed; faster flight turns slower, like an airframe under load.
func (mc *ManeuveringComputer) MaxTurnRateAtSpeed(speed float64) float64 {
	f := mc.params.RestrictedTurnFactor
	return mc.turningLimit * f / (f + math.Abs(speed))
}

// ControlThrusters is the per-tick control law: it resets all burn, derives
// the burn level needed to close each target gap within this tick, assigns
// it to the matching thruster uses, and consumes the targets.
func (mc *ManeuveringComputer) ControlThrusters(dt float64) {
	mc.propulsion.ResetThrusterBurn()
	if dt <= 0 {
		return
	}
	dts := dt / 1000

	yawLimit, pitchLimit := mc.turningLimit, mc.turningLimit
	if mc.restricted {
		if speed := mc.forwardSpeed(); speed != 0 {
			restricted := mc.MaxTurnRateAtSpeed(speed)
			yawLimit = math.Min(yawLimit, restricted)
			pitchLimit = math.Min(pitchLimit, restricted)
		}
	}

	angular := mc.body.AngularVelocity
	mc.controlTurn(clamp(mc.yawTarget, -yawLimit, yawLimit), angular.Y, UseYawRight, UseYawLeft, dts)
	mc.controlTurn(clamp(mc.pitchTarget, -pitchLimit, pitchLimit), angular.X, UsePitchUp, UsePitchDown, dts)
	mc.controlTurn(mc.rollTarget, angular.Z, UseRollRight, UseRollLeft, dts)

	local := mc.localVelocity()
	if !math.IsNaN(mc.speedTarget) {
		mc.controlSpeed(mc.speedTarget, local.Z, UseForward, UseReverse, dts)
	}
	if mc.compensated || mc.strafeTarget != 0 {
		mc.controlSpeed(mc.strafeTarget, local.X, UseStrafeRight, UseStrafeLeft, dts)
	}
	if mc.compensated || mc.liftTarget != 0 {
		mc.controlSpeed(mc.liftTarget, local.Y, UseRaise, UseLower, dts)
	}

	// Targets are consumed: every command must be re-issued next tick. The
	// cruise speed target persists while compensation holds it.
	mc.yawTarget = 0
	mc.pitchTarget = 0
	mc.rollTarget = 0
	mc.strafeTarget = 0
	mc.liftTarget = 0
	if !mc.compensated {
		mc.speedTarget = math.NaN()
	}
}

// controlTurn assigns the burn needed to close an angular rate gap this tick
func (mc *ManeuveringComputer) controlTurn(target, current float64, positive, negative ThrusterUse, dts float64) {
	gap := target - current
	if math.Abs(gap) <= turnGapThreshold {
		return
	}
	max := mc.propulsion.Class().MaxTurnBurnLevel
	burn := math.Min(max, max*math.Abs(gap)/(mc.maxAngularAccel*dts))
	if gap > 0 {
		mc.propulsion.AddThrusterBurn(positive, burn)
	} else {
		mc.propulsion.AddThrusterBurn(negative, burn)
	}
}

// controlSpeed assigns the burn needed to close a linear speed gap this tick
func (mc *ManeuveringComputer) controlSpeed(target, current float64, positive, negative ThrusterUse, dts float64) {
	gap := target - current
	if math.Abs(gap) <= speedGapThreshold {
		return
	}
	max := mc.propulsion.Class().MaxMoveBurnLevel
	burn := max
	if !math.IsInf(gap, 0) {
		burn = math.Min(max, max*math.Abs(gap)/(mc.maxAcceleration*dts))
	}
	if gap > 0 {
		mc.propulsion.AddThrusterBurn(positive, burn)
	} else {
		mc.propulsion.AddThrusterBurn(negative, burn)
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
