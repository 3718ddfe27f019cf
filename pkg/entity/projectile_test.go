// pkg/entity/projectile_test.go
package entity

import (
	"testing"

	"github.com/opd-ai/go-armada/pkg/physics"
)

// stubCraft is a minimal damageable target for weapon and projectile tests
type stubCraft struct {
	id     ID
	body   *physics.Body
	damage []float64
}

func newStubCraft(position physics.Vector3D) *stubCraft {
	return &stubCraft{
		id:   GenerateID(),
		body: physics.NewBody(1000, 10, position, physics.IdentityBasis()),
	}
}

func (c *stubCraft) GetID() ID                  { return c.id }
func (c *stubCraft) GetBody() *physics.Body     { return c.body }
func (c *stubCraft) ApplyDamage(amount float64, hitPoint physics.Vector3D) {
	c.damage = append(c.damage, amount)
}

// listIndex satisfies SpatialIndex with a fixed candidate list
type listIndex struct {
	objects []interface{}
}

func (l *listIndex) GetObjects(xMin, xMax, yMin, yMax, zMin, zMax float64) []interface{} {
	return l.objects
}

func launchTestProjectile(env *Env, origin Entity, position physics.Vector3D) *Projectile {
	p, ok := env.Projectiles.Acquire()
	if !ok {
		panic("projectile arena exhausted in test setup")
	}
	class := testBoltClass()
	// Force that reaches 200 m/s over the 100 ms moment duration
	magnitude := class.Mass * 200 / (env.Params.MomentDuration / 1000)
	p.Launch(class, origin, position, physics.Vector3D{}, physics.Vector3D{Z: 1}, magnitude)
	return p
}

func TestProjectileLifetimeExpiry(t *testing.T) {
	env := newTestEnv()
	p := launchTestProjectile(env, nil, physics.Vector3D{})

	if !p.Alive() {
		t.Fatal("projectile dead right after launch")
	}
	last := p.TimeLeft()
	ticks := 0
	for p.Alive() {
		p.Simulate(100, nil)
		if p.TimeLeft() >= last {
			t.Fatalf("timeLeft did not decrease: %v -> %v", last, p.TimeLeft())
		}
		last = p.TimeLeft()
		ticks++
		if ticks > 100 {
			t.Fatal("projectile never expired")
		}
	}
	if got := env.Projectiles.ActiveCount(); got != 0 {
		t.Errorf("active projectiles after expiry = %d, want 0", got)
	}

	// Ticking a dead projectile is a no-op
	p.Simulate(100, nil)
	if got := env.Projectiles.ActiveCount(); got != 0 {
		t.Errorf("active projectiles after dead tick = %d, want 0", got)
	}
}

func TestProjectileReachesMuzzleSpeed(t *testing.T) {
	env := newTestEnv()
	p := launchTestProjectile(env, nil, physics.Vector3D{})

	p.Simulate(100, nil)
	if got := p.body.Velocity.Z; got < 199.9 || got > 200.1 {
		t.Errorf("speed after moment duration = %v, want 200", got)
	}
}

func TestProjectileHitsTarget(t *testing.T) {
	env := newTestEnv()
	shooter := newStubCraft(physics.Vector3D{X: 500})
	target := newStubCraft(physics.Vector3D{Z: 45})
	index := &listIndex{objects: []interface{}{target}}

	p := launchTestProjectile(env, shooter, physics.Vector3D{})
	for i := 0; i < 5 && p.Alive(); i++ {
		p.Simulate(100, index)
	}

	if p.Alive() {
		t.Fatal("projectile never hit the target")
	}
	if len(target.damage) != 1 {
		t.Fatalf("damage applications = %d, want 1", len(target.damage))
	}
	if target.damage[0] != 30 {
		t.Errorf("damage = %v, want 30", target.damage[0])
	}
	if target.body.ForceCount() == 0 {
		t.Error("no impact force on the hit body")
	}
	if got := env.Projectiles.ActiveCount(); got != 0 {
		t.Errorf("active projectiles after hit = %d, want 0", got)
	}
	if got := env.Explosions.ActiveCount(); got != 1 {
		t.Errorf("active explosions after hit = %d, want 1", got)
	}
}

// With self-fire disabled a projectile must ignore its own shooter even when
// the shooter is the only candidate, and expire by lifetime alone
func TestProjectileIgnoresOrigin(t *testing.T) {
	env := newTestEnv()
	shooter := newStubCraft(physics.Vector3D{})
	index := &listIndex{objects: []interface{}{shooter}}

	p := launchTestProjectile(env, shooter, physics.Vector3D{})
	ticks := 0
	for p.Alive() {
		p.Simulate(100, index)
		ticks++
		if ticks > 100 {
			t.Fatal("projectile never expired")
		}
	}
	if len(shooter.damage) != 0 {
		t.Errorf("origin took %d damage applications with self-fire off", len(shooter.damage))
	}
}

// Self-fire lets a shot hit its own shooter, but never on the launch tick:
// the launch tick checks from the post-move position, so the shooter must
// sit in the path of a later tick's sweep.
func TestProjectileSelfFireEnabled(t *testing.T) {
	env := newTestEnv()
	env.Params.SelfFire = true
	shooter := newStubCraft(physics.Vector3D{Z: 60})
	index := &listIndex{objects: []interface{}{shooter}}

	p := launchTestProjectile(env, shooter, physics.Vector3D{})
	p.Simulate(100, index)
	if len(shooter.damage) != 0 {
		t.Fatalf("origin took %d damage applications on the launch tick", len(shooter.damage))
	}

	for i := 0; i < 4 && p.Alive(); i++ {
		p.Simulate(100, index)
	}
	if len(shooter.damage) != 1 {
		t.Errorf("origin damage applications = %d, want 1 with self-fire on", len(shooter.damage))
	}
	if p.Alive() {
		t.Error("projectile still alive after self-hit")
	}
}

// The first tick after launch must not sweep back to the muzzle: a body
// sitting at the launch point is never hit by a shot flying away from it
func TestProjectileFirstTickSkipsMuzzlePath(t *testing.T) {
	env := newTestEnv()
	bystander := newStubCraft(physics.Vector3D{})
	index := &listIndex{objects: []interface{}{bystander}}

	// Launch point inside the bystander's hull, as a muzzle would be
	p := launchTestProjectile(env, nil, physics.Vector3D{Z: 5})
	ticks := 0
	for p.Alive() {
		p.Simulate(100, index)
		ticks++
		if ticks > 100 {
			t.Fatal("projectile never expired")
		}
	}
	if len(bystander.damage) != 0 {
		t.Errorf("bystander at the muzzle took %d damage applications", len(bystander.damage))
	}
}

func TestProjectileSingleHitPerTick(t *testing.T) {
	env := newTestEnv()
	near := newStubCraft(physics.Vector3D{Z: 45})
	far := newStubCraft(physics.Vector3D{Z: 46})
	index := &listIndex{objects: []interface{}{near, far}}

	p := launchTestProjectile(env, nil, physics.Vector3D{})
	for i := 0; i < 5 && p.Alive(); i++ {
		p.Simulate(100, index)
	}

	hits := len(near.damage) + len(far.damage)
	if hits != 1 {
		t.Errorf("total damage applications = %d, want exactly 1", hits)
	}
}
