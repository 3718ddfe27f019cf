// pkg/ai/controller.go
// AI pilots for uncrewed spacecraft
package ai

import (
	"math"
	"math/rand/v2"

	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/physics"
	"github.com/opd-ai/go-armada/pkg/validation"
)

// TargetFinder supplies enemy contacts. The battle engine implements it;
// tests substitute fixed answers.
type TargetFinder interface {
	NearestEnemy(of *entity.Spacecraft) *entity.Spacecraft
}

// Controller issues one tick's worth of commands for a craft. Controllers
// run before the craft updates, so their commands feed the same tick.
type Controller interface {
	Act(dt float64)
	Craft() *entity.Spacecraft
}

// Aiming thresholds shared by the AI pilots
const (
	turnThreshold = 0.01
	fireThreshold = 0.05
)

// FighterController hunts the nearest enemy: it pursues, leads the target
// with its turrets and fires inside weapon range.
type FighterController struct {
	craft  *entity.Spacecraft
	finder TargetFinder
	target *entity.Spacecraft

	// Closer than this, break off instead of ramming
	breakRange float64
}

// NewFighterController creates an attack pilot for the craft
func NewFighterController(craft *entity.Spacecraft, finder TargetFinder) *FighterController {
	return &FighterController{
		craft:      craft,
		finder:     finder,
		breakRange: craft.Class().HullRadius * 8,
	}
}

// Craft returns the controlled spacecraft
func (c *FighterController) Craft() *entity.Spacecraft {
	return c.craft
}

// Target returns the current quarry, nil while hunting
func (c *FighterController) Target() *entity.Spacecraft {
	return c.target
}

// Act issues this tick's commands
func (c *FighterController) Act(dt float64) {
	if !c.craft.Alive() {
		return
	}
	if c.target == nil || !c.target.Alive() {
		c.target = c.finder.NearestEnemy(c.craft)
	}
	m := c.craft.Maneuvering()
	if c.target == nil {
		m.Forward(0.3)
		c.craft.RestWeapons(turnThreshold, fireThreshold, dt)
		return
	}

	body := c.craft.GetBody()
	targetBody := c.target.GetBody()
	toTarget := targetBody.Position.Sub(body.Position)
	distance := toTarget.Length()

	c.steerToward(toTarget, m)
	if distance > c.breakRange {
		m.Forward()
	} else {
		// Inside break range: keep the nose on the target but back off
		m.Reverse(0.5)
	}

	aim := c.leadPoint(targetBody, distance)
	c.craft.AimWeaponsAt(aim, turnThreshold, fireThreshold, dt)
	if c.inFireRange(distance) && c.noseOn(toTarget) {
		c.craft.FireAll(true)
	}
}

// steerToward converts the bearing to the target into yaw and pitch
// commands, with intensity proportional to the angular error
func (c *FighterController) steerToward(toTarget physics.Vector3D, m *entity.ManeuveringComputer) {
	local := c.craft.GetBody().Orientation.ToLocal(toTarget)
	yawError := math.Atan2(local.X, local.Z)
	pitchError := math.Atan2(local.Y, math.Hypot(local.X, local.Z))

	if yawError > 0 {
		m.YawRight(validation.ClampIntensity(yawError))
	} else if yawError < 0 {
		m.YawLeft(validation.ClampIntensity(-yawError))
	}
	if pitchError > 0 {
		m.PitchUp(validation.ClampIntensity(pitchError))
	} else if pitchError < 0 {
		m.PitchDown(validation.ClampIntensity(-pitchError))
	}
}

// leadPoint estimates where the target will be when a shot arrives, using
// the muzzle speed of the first armed barrel
func (c *FighterController) leadPoint(targetBody *physics.Body, distance float64) physics.Vector3D {
	muzzleSpeed := 0.0
	for _, w := range c.craft.Weapons() {
		if len(w.Class().Barrels) > 0 {
			muzzleSpeed = w.Class().Barrels[0].Velocity
			break
		}
	}
	if muzzleSpeed <= 0 {
		return targetBody.Position
	}
	flightTime := distance / muzzleSpeed
	relative := targetBody.Velocity.Sub(c.craft.GetBody().Velocity)
	return targetBody.Position.Add(relative.Scale(flightTime))
}

func (c *FighterController) inFireRange(distance float64) bool {
	for _, w := range c.craft.Weapons() {
		if distance <= w.Class().FireRange {
			return true
		}
	}
	return false
}

// noseOn reports whether the target sits within the fixed-gun firing cone
func (c *FighterController) noseOn(toTarget physics.Vector3D) bool {
	direction := toTarget.Normalize()
	return direction.Dot(c.craft.GetBody().Orientation.Forward) > 0.95
}

// PatrolController flies a lazy random patrol until something worth
// fighting shows up; pair it with a FighterController handover in the
// battle setup for sentry crafts.
type PatrolController struct {
	craft  *entity.Spacecraft
	random *rand.Rand

	yawHold   float64 // ms remaining on the current course change
	yawSign   float64
	pitchHold float64
	pitchSign float64
}

// NewPatrolController creates a wandering pilot. The seed fixes the patrol
// pattern, which keeps replays and tests reproducible.
func NewPatrolController(craft *entity.Spacecraft, seed uint64) *PatrolController {
	return &PatrolController{
		craft:  craft,
		random: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Craft returns the controlled spacecraft
func (c *PatrolController) Craft() *entity.Spacecraft {
	return c.craft
}

// Act issues this tick's commands
func (c *PatrolController) Act(dt float64) {
	if !c.craft.Alive() {
		return
	}
	m := c.craft.Maneuvering()
	m.Forward(0.5)

	if c.yawHold <= 0 && c.random.Float64() < 0.05 {
		c.yawHold = 500 + c.random.Float64()*1500
		c.yawSign = 1
		if c.random.Float64() < 0.5 {
			c.yawSign = -1
		}
	}
	if c.pitchHold <= 0 && c.random.Float64() < 0.03 {
		c.pitchHold = 500 + c.random.Float64()*1000
		c.pitchSign = 1
		if c.random.Float64() < 0.5 {
			c.pitchSign = -1
		}
	}

	if c.yawHold > 0 {
		c.yawHold -= dt
		if c.yawSign > 0 {
			m.YawRight(0.4)
		} else {
			m.YawLeft(0.4)
		}
	}
	if c.pitchHold > 0 {
		c.pitchHold -= dt
		if c.pitchSign > 0 {
			m.PitchUp(0.3)
		} else {
			m.PitchDown(0.3)
		}
	}
}
