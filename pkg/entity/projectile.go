// pkg/entity/projectile.go
package entity

import (
	"math"

	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// Projectile is one pooled shot in flight. A projectile lives from Launch
// until its lifetime expires or it registers a hit, whichever comes first,
// then returns itself to the arena.
type Projectile struct {
	id    ID
	env   *Env
	class *ProjectileClass

	origin   Entity
	body     *physics.Body
	timeLeft float64 // ms

	// The muzzle sits inside the firer's own hull, so the first tick checks
	// only the post-move position instead of sweeping back to the muzzle.
	firstCheck bool

	poolIndex int
}

// NewProjectile is the arena factory for pooled projectiles
func NewProjectile(env *Env) *Projectile {
	return &Projectile{id: GenerateID(), env: env}
}

// GetID returns the projectile's entity ID
func (p *Projectile) GetID() ID {
	return p.id
}

// GetBody returns the projectile's physics body, nil before the first launch
func (p *Projectile) GetBody() *physics.Body {
	return p.body
}

// PoolIndex implements pool.Item
func (p *Projectile) PoolIndex() int {
	return p.poolIndex
}

// SetPoolIndex implements pool.Item
func (p *Projectile) SetPoolIndex(i int) {
	p.poolIndex = i
}

// Alive reports whether the projectile is in flight
func (p *Projectile) Alive() bool {
	return p.timeLeft > 0
}

// TimeLeft returns the remaining lifetime in milliseconds
func (p *Projectile) TimeLeft() float64 {
	return p.timeLeft
}

// Origin returns the entity that fired this projectile
func (p *Projectile) Origin() Entity {
	return p.origin
}

// Launch re-initializes a pooled projectile at the muzzle. The shot inherits
// the firing craft's velocity and is brought up to muzzle speed by a launch
// force applied over the moment duration rather than an instantaneous
// velocity change.
func (p *Projectile) Launch(class *ProjectileClass, origin Entity, position, inheritedVelocity, direction physics.Vector3D, forceMagnitude float64) {
	p.class = class
	p.origin = origin
	p.body = physics.NewBody(class.Mass, class.Radius, position, physics.IdentityBasis())
	p.body.Velocity = inheritedVelocity
	p.body.AddForce("launch", direction, forceMagnitude, p.env.Params.MomentDuration)
	p.timeLeft = class.Duration
	p.firstCheck = true
}

// Simulate advances the projectile one tick: it integrates motion, queries
// the spatial index with a box covering the swept path, and hit-tests each
// candidate. The first positive hit ends the projectile's flight; at most
// one hit is ever processed per launch.
func (p *Projectile) Simulate(dt float64, index SpatialIndex) {
	if p.timeLeft <= 0 {
		return
	}
	p.timeLeft -= dt

	sweepStart := p.body.Position
	p.body.Simulate(dt)
	if p.firstCheck {
		sweepStart = p.body.Position
		p.firstCheck = false
	}

	if index != nil {
		end := p.body.Position
		pad := p.env.QueryPadding + p.class.Radius
		candidates := index.GetObjects(
			math.Min(sweepStart.X, end.X)-pad, math.Max(sweepStart.X, end.X)+pad,
			math.Min(sweepStart.Y, end.Y)-pad, math.Max(sweepStart.Y, end.Y)+pad,
			math.Min(sweepStart.Z, end.Z)-pad, math.Max(sweepStart.Z, end.Z)+pad,
		)
		for _, candidate := range candidates {
			target, ok := candidate.(Damageable)
			if !ok {
				continue
			}
			if p.origin != nil && target.GetID() == p.origin.GetID() && !p.env.Params.SelfFire {
				continue
			}
			targetBody := target.GetBody()
			if targetBody == nil {
				continue
			}
			relative := p.body.Velocity.Sub(targetBody.Velocity)
			hitPoint, hit := targetBody.CheckHit(sweepStart, relative, dt)
			if !hit {
				continue
			}
			p.resolveHit(target, targetBody, hitPoint, relative)
			return
		}
	}

	if p.timeLeft <= 0 {
		p.env.Projectiles.Release(p)
	}
}

// resolveHit applies the projectile's effect to the hit body and retires the
// projectile
func (p *Projectile) resolveHit(target Damageable, targetBody *physics.Body, hitPoint physics.Vector3D, relative physics.Vector3D) {
	speed := relative.Length()
	if speed > 0 {
		magnitude := p.class.Mass * speed / (p.env.Params.MomentDuration / 1000)
		targetBody.AddForceAndTorque("impact", relative, magnitude, hitPoint, p.env.Params.MomentDuration)
	}

	impactWorld := targetBody.Position.Add(targetBody.Orientation.ToWorld(hitPoint))
	if p.env.Explosions != nil {
		if explosion, ok := p.env.Explosions.Acquire(); ok {
			explosion.Ignite(impactWorld, p.class.Radius*8, 400)
		}
	}

	target.ApplyDamage(p.class.Damage, hitPoint)

	if p.env.Events != nil {
		var originID uint64
		if p.origin != nil {
			originID = uint64(p.origin.GetID())
		}
		p.env.Events.Publish(event.NewHitEvent(p, originID, uint64(target.GetID()), p.class.Damage))
	}

	p.timeLeft = 0
	p.env.Projectiles.Release(p)
}
