// pkg/entity/weapon.go
package entity

import (
	"math"

	"github.com/opd-ai/go-armada/pkg/audio"
	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// AimStatus classifies a weapon's current ability to fire
type AimStatus int

const (
	// AimFixed marks a weapon without rotators; it always fires along its
	// mount and never leaves this status
	AimFixed AimStatus = iota
	// AimNoTarget means no aim command has been issued yet
	AimNoTarget
	// AimingOutOfReach means a restricted rotator hit its range stop short
	// of the target
	AimingOutOfReach
	// Aiming means the rotators are still turning toward the target
	Aiming
	// AimedOutOfRange means the rotators point at the target but it is
	// beyond fire range
	AimedOutOfRange
	// AimedInRange means the weapon may fire
	AimedInRange
)

// String returns the status name for logs and HUD display
func (s AimStatus) String() string {
	switch s {
	case AimFixed:
		return "fixed"
	case AimNoTarget:
		return "noTarget"
	case AimingOutOfReach:
		return "aimingOutOfReach"
	case Aiming:
		return "aiming"
	case AimedOutOfRange:
		return "aimedOutOfRange"
	case AimedInRange:
		return "aimedInRange"
	default:
		return "unknown"
	}
}

// Weapon is one equipped weapon instance. It owns the rotation state of its
// rotators, the cooldown timer and the aim status; the shared class data
// stays immutable.
type Weapon struct {
	class *WeaponClass
	slot  WeaponSlot
	owner Entity
	env   *Env

	angles          [2]float64
	rotationChanged bool
	cachedRotation  physics.Basis

	cooldown      float64 // ms since last shot, capped at class.Cooldown
	lastAimStatus AimStatus

	fireSound *audio.Stacker
}

// NewWeapon equips one weapon class in the given slot. owner is the craft
// the weapon is mounted on; fireSound may be nil for silent battles.
func NewWeapon(slot WeaponSlot, owner Entity, env *Env, fireSound *audio.Stacker) *Weapon {
	w := &Weapon{
		class:           slot.Weapon,
		slot:            slot,
		owner:           owner,
		env:             env,
		rotationChanged: true,
		cooldown:        slot.Weapon.Cooldown,
		lastAimStatus:   AimNoTarget,
		fireSound:       fireSound,
	}
	if len(w.class.Rotators) == 0 {
		w.lastAimStatus = AimFixed
	}
	for i, rc := range w.class.Rotators {
		w.angles[i] = rc.DefaultAngle
	}
	return w
}

// Class returns the weapon's immutable descriptor
func (w *Weapon) Class() *WeaponClass {
	return w.class
}

// AimStatus returns the status computed by the last aim call
func (w *Weapon) AimStatus() AimStatus {
	return w.lastAimStatus
}

// RotationAngle returns the current angle of one rotator. Unknown indices
// return 0.
func (w *Weapon) RotationAngle(index int) float64 {
	if index < 0 || index >= len(w.class.Rotators) {
		return 0
	}
	return w.angles[index]
}

// CooldownFraction returns the elapsed share of the cooldown, 1 when ready
func (w *Weapon) CooldownFraction() float64 {
	if w.class.Cooldown <= 0 {
		return 1
	}
	return w.cooldown / w.class.Cooldown
}

// Ready reports whether the cooldown has fully elapsed
func (w *Weapon) Ready() bool {
	return w.cooldown >= w.class.Cooldown
}

// Simulate advances the cooldown timer. dt is milliseconds.
func (w *Weapon) Simulate(dt float64) {
	if w.cooldown < w.class.Cooldown {
		w.cooldown = math.Min(w.cooldown+dt, w.class.Cooldown)
	}
}

// RotateTo is the per-tick rotation step: it turns each rotator toward its
// target angle at the rotator's rate and classifies the result. Gaps above
// turnThreshold cause movement; gaps above fireThreshold block firing.
// The status is optimistic at entry and downgraded as rotators fall short.
func (w *Weapon) RotateTo(angleOne, angleTwo, turnThreshold, fireThreshold, dt float64) AimStatus {
	if w.lastAimStatus == AimFixed {
		return AimFixed
	}
	targets := [2]float64{angleOne, angleTwo}

	// A roll-yaw weapon can reach the same aim point banked the other way
	// round, with the yaw mirrored. Take that path when it is the shorter
	// roll, instead of rolling most of a full circle.
	if w.class.RotationStyle == RotationRollYaw && len(w.class.Rotators) == 2 {
		flipped := physics.NormalizeAngle(angleOne + math.Pi)
		direct := math.Abs(physics.NormalizeAngle(angleOne - w.angles[0]))
		alternate := math.Abs(physics.NormalizeAngle(flipped - w.angles[0]))
		if alternate < direct {
			targets[0] = flipped
			targets[1] = -angleTwo
		}
	}

	status := AimedInRange
	for i := range w.class.Rotators {
		rc := &w.class.Rotators[i]
		diff := targets[i] - w.angles[i]
		if !rc.Restricted {
			diff = physics.NormalizeAngle(diff)
		}
		if math.Abs(diff) > turnThreshold {
			step := math.Min(rc.RotationRate*dt/1000, math.Abs(diff))
			w.angles[i] += math.Copysign(step, diff)
			w.rotationChanged = true
			if math.Abs(diff)-step > fireThreshold && status != AimingOutOfReach {
				status = Aiming
			}
		}
		if rc.Restricted {
			clamped := clamp(w.angles[i], rc.Min, rc.Max)
			if clamped != w.angles[i] {
				w.angles[i] = clamped
				if math.Abs(targets[i]-w.angles[i]) > fireThreshold {
					status = AimingOutOfReach
				}
			}
		} else {
			w.angles[i] = physics.NormalizeAngle(w.angles[i])
		}
	}
	w.lastAimStatus = status
	return status
}

// AimTowards turns the rotators toward a world-space target position. The
// aim vector is taken from the weapon's base point, which itself moves with
// the current rotation state, so aiming converges over successive ticks.
// A target beyond fire range still gets tracked but downgrades the status
// to AimedOutOfRange.
func (w *Weapon) AimTowards(target physics.Vector3D, turnThreshold, fireThreshold, dt float64) AimStatus {
	if w.lastAimStatus == AimFixed {
		return AimFixed
	}
	body := w.owner.GetBody()
	base := body.Position.Add(body.Orientation.ToWorld(w.basePoint()))
	local := body.Orientation.ToLocal(target.Sub(base))

	var angleOne, angleTwo float64
	switch w.class.RotationStyle {
	case RotationYawPitch:
		angleOne = physics.Angle2u(local.Z, local.X)
		angleTwo = physics.Angle2u(math.Hypot(local.X, local.Z), local.Y)
	case RotationRollYaw:
		angleOne = physics.Angle2u(local.Y, local.X)
		angleTwo = physics.Angle2u(local.Z, math.Hypot(local.X, local.Y))
	default:
		return w.lastAimStatus
	}

	before := w.lastAimStatus
	status := w.RotateTo(angleOne, angleTwo, turnThreshold, fireThreshold, dt)
	if status == AimedInRange && target.Sub(base).Length() > w.class.FireRange {
		status = AimedOutOfRange
		w.lastAimStatus = status
	}
	if status == AimedInRange && before != AimedInRange && w.env.Events != nil {
		w.env.Events.Publish(event.NewWeaponLockEvent(w, uint64(w.owner.GetID()), w.class.Name))
	}
	return status
}

// RotateToDefault returns the rotators to their rest angles, e.g. when the
// target is lost
func (w *Weapon) RotateToDefault(turnThreshold, fireThreshold, dt float64) AimStatus {
	if w.lastAimStatus == AimFixed {
		return AimFixed
	}
	var one, two float64
	if len(w.class.Rotators) > 0 {
		one = w.class.Rotators[0].DefaultAngle
	}
	if len(w.class.Rotators) > 1 {
		two = w.class.Rotators[1].DefaultAngle
	}
	status := w.RotateTo(one, two, turnThreshold, fireThreshold, dt)
	if status == AimedInRange {
		// Resting on the default angle is not an aim
		w.lastAimStatus = AimNoTarget
		return AimNoTarget
	}
	return status
}

// rotationBasis composes the rotator angles into the weapon's craft-local
// orientation, cached until the angles change
func (w *Weapon) rotationBasis() physics.Basis {
	if w.rotationChanged {
		b := physics.IdentityBasis()
		switch w.class.RotationStyle {
		case RotationYawPitch:
			b = b.Yaw(w.angles[0]).Pitch(w.angles[1])
		case RotationRollYaw:
			b = b.Roll(w.angles[0]).Yaw(w.angles[1])
		}
		w.cachedRotation = b
		w.rotationChanged = false
	}
	return w.cachedRotation
}

// basePoint returns the weapon's aim reference point in craft-local space:
// the slot position plus the rotator centers carried along by the current
// rotation
func (w *Weapon) basePoint() physics.Vector3D {
	base := w.slot.Position
	rot := w.rotationBasis()
	for i := range w.class.Rotators {
		base = base.Add(rot.ToWorld(w.class.Rotators[i].Center))
	}
	return base
}

// MuzzlePoints returns the world positions of every barrel muzzle, for
// muzzle flash placement and debugging
func (w *Weapon) MuzzlePoints() []physics.Vector3D {
	body := w.owner.GetBody()
	rot := w.rotationBasis()
	points := make([]physics.Vector3D, len(w.class.Barrels))
	for i, barrel := range w.class.Barrels {
		local := w.slot.Position.Add(rot.ToWorld(barrel.Position))
		points[i] = body.Position.Add(body.Orientation.ToWorld(local))
	}
	return points
}

// Fire launches one projectile per barrel. When onlyIfAimedOrFixed is set,
// only a fixed weapon or one aimed in range may fire. A weapon still cooling
// down returns 0 without side effects. Each launched projectile gets its
// muzzle impulse as a force over the configured moment duration, and the
// craft takes the equal and opposite force and torque as recoil.
func (w *Weapon) Fire(onlyIfAimedOrFixed bool) int {
	if !w.Ready() {
		return 0
	}
	if onlyIfAimedOrFixed && w.lastAimStatus != AimFixed && w.lastAimStatus != AimedInRange {
		return 0
	}
	if len(w.class.Barrels) == 0 {
		return 0
	}

	body := w.owner.GetBody()
	rot := w.rotationBasis()
	momentSeconds := w.env.Params.MomentDuration / 1000

	fired := 0
	for i := range w.class.Barrels {
		barrel := &w.class.Barrels[i]
		projectile, ok := w.env.Projectiles.Acquire()
		if !ok {
			break
		}

		muzzleLocal := w.slot.Position.Add(rot.ToWorld(barrel.Position))
		muzzleWorld := body.Position.Add(body.Orientation.ToWorld(muzzleLocal))
		direction := body.Orientation.ToWorld(rot.Forward)

		// Impulse that brings the projectile to muzzle speed over the
		// moment duration
		magnitude := barrel.Projectile.Mass * barrel.Velocity / momentSeconds
		projectile.Launch(barrel.Projectile, w.owner, muzzleWorld, body.Velocity, direction, magnitude)

		body.AddForceAndTorque("recoil", direction.Neg(), magnitude, muzzleLocal, w.env.Params.MomentDuration)
		fired++
	}

	if fired > 0 {
		w.cooldown = 0
		if w.fireSound != nil {
			w.fireSound.Play(float64(fired) / float64(len(w.class.Barrels)))
		}
		if w.env.Events != nil {
			w.env.Events.Publish(event.NewFireEvent(w, uint64(w.owner.GetID()), w.class.Name, fired))
		}
	}
	return fired
}
