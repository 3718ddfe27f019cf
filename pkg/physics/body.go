// pkg/physics/body.go
package physics

import "math"

// Force is a named world-frame force applied over a limited duration.
// Renewable forces (thrust) are replaced by name each tick instead of
// stacking, so they never accumulate across ticks.
type Force struct {
	Name      string
	Direction Vector3D // unit vector, world frame
	Magnitude float64  // newtons
	Remaining float64  // ms left to act
}

// Torque is a named torque around a body-frame axis, same lifetime rules as
// Force.
type Torque struct {
	Name      string
	Axis      Vector3D // unit vector, body frame
	Magnitude float64
	Remaining float64 // ms
}

// Body is the physical state of one simulated object: a spacecraft or a
// projectile. Each body is owned exclusively by the entity it represents and
// is mutated only through its methods, each tick, by that owner.
//
// The collision hull is a sphere of Radius around Position. Rotational
// inertia is simplified to the body's mass, which keeps turn response linear
// in applied torque; class-level thrust constants are tuned against that.
type Body struct {
	Mass            float64 // kg
	Radius          float64 // collision hull radius, m
	Position        Vector3D
	Orientation     Basis
	Velocity        Vector3D // m/s, world frame
	AngularVelocity Vector3D // rad/s, body frame: X=pitch, Y=yaw, Z=roll

	forces  []*Force
	torques []*Torque
}

// NewBody creates a body at rest with the given mass, hull radius, position
// and orientation
func NewBody(mass, radius float64, position Vector3D, orientation Basis) *Body {
	return &Body{
		Mass:        mass,
		Radius:      radius,
		Position:    position,
		Orientation: orientation,
	}
}

// AddForce applies a named force for duration ms starting this tick
func (b *Body) AddForce(name string, direction Vector3D, magnitude, duration float64) {
	b.forces = append(b.forces, &Force{
		Name:      name,
		Direction: direction.Normalize(),
		Magnitude: magnitude,
		Remaining: duration,
	})
}

// AddOrRenewForce replaces the force with the same name if present, so
// per-tick thrust forces never stack
func (b *Body) AddOrRenewForce(name string, direction Vector3D, magnitude, duration float64) {
	for _, f := range b.forces {
		if f.Name == name {
			f.Direction = direction.Normalize()
			f.Magnitude = magnitude
			f.Remaining = duration
			return
		}
	}
	b.AddForce(name, direction, magnitude, duration)
}

// AddTorque applies a named torque around a body-frame axis for duration ms
func (b *Body) AddTorque(name string, axis Vector3D, magnitude, duration float64) {
	b.torques = append(b.torques, &Torque{
		Name:      name,
		Axis:      axis.Normalize(),
		Magnitude: magnitude,
		Remaining: duration,
	})
}

// AddOrRenewTorque replaces the torque with the same name if present
func (b *Body) AddOrRenewTorque(name string, axis Vector3D, magnitude, duration float64) {
	for _, t := range b.torques {
		if t.Name == name {
			t.Axis = axis.Normalize()
			t.Magnitude = magnitude
			t.Remaining = duration
			return
		}
	}
	b.AddTorque(name, axis, magnitude, duration)
}

// AddForceAndTorque applies an impulse-style force at a body-local offset:
// the force acts through the center of mass and the lever arm contributes a
// torque. Used for recoil and projectile impacts.
func (b *Body) AddForceAndTorque(name string, direction Vector3D, magnitude float64, lever Vector3D, duration float64) {
	dir := direction.Normalize()
	b.AddForce(name, dir, magnitude, duration)

	localDir := b.Orientation.ToLocal(dir)
	momentArm := lever.Cross(localDir)
	if moment := momentArm.Length(); moment > 0 {
		b.AddTorque(name, momentArm.Scale(1/moment), magnitude*moment, duration)
	}
}

// ForceCount returns the number of live forces. Exposed for tests and HUD
// diagnostics.
func (b *Body) ForceCount() int {
	return len(b.forces)
}

// Simulate advances the body by dt milliseconds: integrates forces into
// velocity, torques into angular velocity, then position and orientation.
func (b *Body) Simulate(dt float64) {
	if dt <= 0 {
		return
	}
	dts := dt / 1000

	live := b.forces[:0]
	for _, f := range b.forces {
		act := math.Min(f.Remaining, dt) / 1000
		b.Velocity = b.Velocity.Add(f.Direction.Scale(f.Magnitude * act / b.Mass))
		f.Remaining -= dt
		if f.Remaining > 0 {
			live = append(live, f)
		}
	}
	b.forces = live

	liveTorques := b.torques[:0]
	for _, t := range b.torques {
		act := math.Min(t.Remaining, dt) / 1000
		b.AngularVelocity = b.AngularVelocity.Add(t.Axis.Scale(t.Magnitude * act / b.Mass))
		t.Remaining -= dt
		if t.Remaining > 0 {
			liveTorques = append(liveTorques, t)
		}
	}
	b.torques = liveTorques

	b.Position = b.Position.Add(b.Velocity.Scale(dts))

	if b.AngularVelocity.LengthSquared() > 0 {
		b.Orientation = b.Orientation.
			Pitch(b.AngularVelocity.X * dts).
			Yaw(b.AngularVelocity.Y * dts).
			Roll(b.AngularVelocity.Z * dts).
			Orthonormalize()
	}
}

// CheckHit performs a swept hit test of a moving point against the body's
// hull. position is the point's world position, velocity its world velocity
// relative to this body, dt the tick length in ms. Returns the body-local hit
// point and true if the point's path this tick crosses the hull.
func (b *Body) CheckHit(position, velocity Vector3D, dt float64) (Vector3D, bool) {
	start := b.Orientation.ToLocal(position.Sub(b.Position))
	delta := b.Orientation.ToLocal(velocity).Scale(dt / 1000)

	// Already inside the hull
	if start.LengthSquared() <= b.Radius*b.Radius {
		return start, true
	}

	// Earliest intersection of the segment start+u*delta, u in [0,1], with
	// the hull sphere: |start + u*delta|^2 = Radius^2
	a := delta.LengthSquared()
	if a == 0 {
		return Vector3D{}, false
	}
	halfB := start.Dot(delta)
	c := start.LengthSquared() - b.Radius*b.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return Vector3D{}, false
	}
	u := (-halfB - math.Sqrt(disc)) / a
	if u < 0 || u > 1 {
		return Vector3D{}, false
	}
	return start.Add(delta.Scale(u)), true
}
