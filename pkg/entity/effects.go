// pkg/entity/effects.go
package entity

import (
	"github.com/opd-ai/go-armada/pkg/physics"
)

// Explosion is a pooled visual impact effect. It carries no physics; the
// renderer reads its position and current radius each frame until it burns
// out and returns to the arena.
type Explosion struct {
	env *Env

	Position  physics.Vector3D
	maxRadius float64
	duration  float64 // ms
	age       float64 // ms

	poolIndex int
}

// NewExplosion is the arena factory for pooled explosions
func NewExplosion(env *Env) *Explosion {
	return &Explosion{env: env}
}

// PoolIndex implements pool.Item
func (e *Explosion) PoolIndex() int {
	return e.poolIndex
}

// SetPoolIndex implements pool.Item
func (e *Explosion) SetPoolIndex(i int) {
	e.poolIndex = i
}

// Ignite re-initializes a pooled explosion at an impact point
func (e *Explosion) Ignite(position physics.Vector3D, maxRadius, duration float64) {
	e.Position = position
	e.maxRadius = maxRadius
	e.duration = duration
	e.age = 0
}

// Alive reports whether the effect is still burning
func (e *Explosion) Alive() bool {
	return e.age < e.duration
}

// Radius returns the current blast radius: a fast expansion that holds near
// the maximum until burnout
func (e *Explosion) Radius() float64 {
	if e.duration <= 0 {
		return 0
	}
	progress := e.age / e.duration
	if progress > 1 {
		progress = 1
	}
	// Expand over the first quarter of the lifetime, then hold
	if progress < 0.25 {
		return e.maxRadius * progress * 4
	}
	return e.maxRadius
}

// Intensity returns the light intensity fraction, fading linearly to zero
func (e *Explosion) Intensity() float64 {
	if e.duration <= 0 {
		return 0
	}
	remaining := 1 - e.age/e.duration
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Simulate ages the effect and releases it at burnout. dt is milliseconds.
func (e *Explosion) Simulate(dt float64) {
	if !e.Alive() {
		return
	}
	e.age += dt
	if !e.Alive() {
		e.env.Explosions.Release(e)
	}
}
