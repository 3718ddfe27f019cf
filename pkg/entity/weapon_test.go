// pkg/entity/weapon_test.go
package entity

import (
	"math"
	"testing"

	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/physics"
	"github.com/opd-ai/go-armada/pkg/pool"
)

func newTestEnv() *Env {
	env := &Env{
		Params:       testSimParams(),
		Events:       event.NewEventBus(),
		QueryPadding: 20,
	}
	env.Projectiles = pool.NewArena(32, func() *Projectile { return NewProjectile(env) })
	env.Explosions = pool.NewArena(16, func() *Explosion { return NewExplosion(env) })
	return env
}

func testBoltClass() *ProjectileClass {
	return &ProjectileClass{Name: "bolt", Mass: 0.2, Duration: 1500, Damage: 30, Radius: 0.5}
}

func fixedGunClass(barrels int) *WeaponClass {
	class := &WeaponClass{
		Name:          "fixedGun",
		Cooldown:      500,
		FireRange:     800,
		RotationStyle: RotationFixed,
	}
	for i := 0; i < barrels; i++ {
		class.Barrels = append(class.Barrels, BarrelClass{
			Position:   physics.Vector3D{X: float64(i)*2 - 1, Z: 2},
			Projectile: testBoltClass(),
			Velocity:   200,
		})
	}
	return class
}

func turretClass() *WeaponClass {
	return &WeaponClass{
		Name:          "turret",
		Cooldown:      500,
		FireRange:     800,
		RotationStyle: RotationYawPitch,
		Rotators: []RotatorClass{
			{RotationRate: 1},
			{RotationRate: 1, Restricted: true, Min: -0.2, Max: 1.4},
		},
		Barrels: []BarrelClass{
			{Position: physics.Vector3D{Z: 1}, Projectile: testBoltClass(), Velocity: 200},
		},
	}
}

func newTestWeapon(class *WeaponClass, env *Env) (*Weapon, *stubCraft) {
	owner := newStubCraft(physics.Vector3D{})
	w := NewWeapon(WeaponSlot{Weapon: class}, owner, env, nil)
	return w, owner
}

func TestFixedWeaponStatusIsPermanent(t *testing.T) {
	w, _ := newTestWeapon(fixedGunClass(2), newTestEnv())

	if w.AimStatus() != AimFixed {
		t.Fatalf("status = %v, want fixed", w.AimStatus())
	}
	if got := w.RotateTo(1, 1, 0.01, 0.05, 1000); got != AimFixed {
		t.Errorf("rotateTo on fixed weapon = %v, want fixed", got)
	}
	if got := w.AimTowards(physics.Vector3D{X: 100}, 0.01, 0.05, 1000); got != AimFixed {
		t.Errorf("aimTowards on fixed weapon = %v, want fixed", got)
	}
}

func TestRotateToStepsAtRotationRate(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())

	// Rate 1 rad/s over one full second covers 1 rad of the pi/2 gap
	status := w.RotateTo(math.Pi/2, 0, 0.01, 0.05, 1000)
	if got := w.RotationAngle(0); got != 1.0 {
		t.Errorf("yaw angle after one step = %v, want exactly 1.0", got)
	}
	if status != Aiming {
		t.Errorf("status mid-rotation = %v, want aiming", status)
	}

	// Second step covers the remainder
	status = w.RotateTo(math.Pi/2, 0, 0.01, 0.05, 1000)
	if got := w.RotationAngle(0); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("yaw angle after second step = %v, want pi/2", got)
	}
	if status != AimedInRange {
		t.Errorf("status on target = %v, want aimedInRange", status)
	}
}

func TestUnrestrictedAngleStaysNormalized(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())

	targets := []float64{3.0, -3.0, 3.1, -0.2, 2.9}
	for _, target := range targets {
		for i := 0; i < 10; i++ {
			w.RotateTo(target, 0, 0.01, 0.05, 600)
			if a := w.RotationAngle(0); a < -math.Pi || a > math.Pi {
				t.Fatalf("yaw angle %v outside [-pi, pi] while tracking %v", a, target)
			}
		}
	}
}

func TestRotateToTurnsTheShortWayAcrossWrap(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())
	w.angles[0] = math.Pi - 0.1

	// The short way to -(pi-0.1) is 0.2 rad forward through the wrap
	w.RotateTo(-(math.Pi - 0.1), 0, 0.01, 0.05, 300)
	if got := w.RotationAngle(0); math.Abs(got-(-(math.Pi-0.1))) > 1e-9 {
		t.Errorf("yaw angle = %v, want %v via the wrap", got, -(math.Pi - 0.1))
	}
}

func TestRestrictedRotatorClampsAndReportsOutOfReach(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())

	// Pitch target 2.0 exceeds the [-0.2, 1.4] range
	var status AimStatus
	for i := 0; i < 5; i++ {
		status = w.RotateTo(0, 2.0, 0.01, 0.05, 1000)
	}
	if got := w.RotationAngle(1); got != 1.4 {
		t.Errorf("pitch angle = %v, want clamped to 1.4", got)
	}
	if status != AimingOutOfReach {
		t.Errorf("status at range stop = %v, want aimingOutOfReach", status)
	}
}

func TestRollYawFlipTieBreak(t *testing.T) {
	env := newTestEnv()
	class := &WeaponClass{
		Name:          "wingGun",
		Cooldown:      500,
		FireRange:     800,
		RotationStyle: RotationRollYaw,
		Rotators: []RotatorClass{
			{RotationRate: 10},
			{RotationRate: 10},
		},
		Barrels: []BarrelClass{
			{Projectile: testBoltClass(), Velocity: 200},
		},
	}
	w, _ := newTestWeapon(class, env)
	w.angles[0] = 3.0

	// Rolling on to -0.1 directly is nearly a full circle; flipping the
	// roll by pi and mirroring the yaw is a 0.04 rad move
	flipped := physics.NormalizeAngle(-0.1 + math.Pi)
	w.RotateTo(-0.1, 0.5, 0.001, 0.005, 1000)
	if got := w.RotationAngle(0); math.Abs(got-flipped) > 1e-9 {
		t.Errorf("roll angle = %v, want flipped target %v", got, flipped)
	}
	if got := w.RotationAngle(1); math.Abs(got-(-0.5)) > 1e-9 {
		t.Errorf("yaw angle = %v, want mirrored -0.5", got)
	}
}

func TestAimTowardsConverges(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())

	// Target square to the right: yaw pi/2, no pitch
	target := physics.Vector3D{X: 500}
	var status AimStatus
	for i := 0; i < 3; i++ {
		status = w.AimTowards(target, 0.01, 0.05, 1000)
	}
	if status != AimedInRange {
		t.Fatalf("status after convergence = %v, want aimedInRange", status)
	}
	if got := w.RotationAngle(0); math.Abs(got-math.Pi/2) > 0.05 {
		t.Errorf("yaw angle = %v, want about pi/2", got)
	}
}

func TestAimTowardsBeyondRange(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())

	// Dead ahead but past the 800 m fire range
	status := w.AimTowards(physics.Vector3D{Z: 900}, 0.01, 0.05, 1000)
	if status != AimedOutOfRange {
		t.Errorf("status = %v, want aimedOutOfRange", status)
	}
}

func TestRotateToDefaultRestsAtNoTarget(t *testing.T) {
	w, _ := newTestWeapon(turretClass(), newTestEnv())
	w.AimTowards(physics.Vector3D{X: 500}, 0.01, 0.05, 1000)

	var status AimStatus
	for i := 0; i < 3; i++ {
		status = w.RotateToDefault(0.01, 0.05, 1000)
	}
	if status != AimNoTarget {
		t.Errorf("status at rest = %v, want noTarget", status)
	}
	if got := w.RotationAngle(0); math.Abs(got) > 0.05 {
		t.Errorf("yaw angle at rest = %v, want about 0", got)
	}
}

func TestFixedWeaponFiresAllBarrels(t *testing.T) {
	env := newTestEnv()
	w, owner := newTestWeapon(fixedGunClass(2), env)

	if got := w.Fire(true); got != 2 {
		t.Fatalf("fire = %d, want 2", got)
	}
	if w.cooldown != 0 {
		t.Errorf("cooldown after fire = %v, want 0", w.cooldown)
	}
	if got := env.Projectiles.ActiveCount(); got != 2 {
		t.Errorf("active projectiles = %d, want 2", got)
	}
	// Recoil landed on the firing craft
	if owner.body.ForceCount() == 0 {
		t.Error("no recoil force on the firing craft")
	}
}

func TestFireRespectsCooldown(t *testing.T) {
	w, _ := newTestWeapon(fixedGunClass(1), newTestEnv())

	if got := w.Fire(true); got != 1 {
		t.Fatalf("first fire = %d, want 1", got)
	}
	if got := w.Fire(true); got != 0 {
		t.Errorf("fire during cooldown = %d, want 0", got)
	}

	w.Simulate(250)
	if got := w.Fire(true); got != 0 {
		t.Errorf("fire at half cooldown = %d, want 0", got)
	}
	w.Simulate(250)
	if got := w.Fire(true); got != 1 {
		t.Errorf("fire after full cooldown = %d, want 1", got)
	}
}

func TestFireGatedByAimStatus(t *testing.T) {
	env := newTestEnv()

	newTurret := func() *Weapon {
		w, _ := newTestWeapon(turretClass(), env)
		return w
	}

	tests := []struct {
		name    string
		prepare func(w *Weapon)
		want    AimStatus
	}{
		{
			name:    "no target",
			prepare: func(w *Weapon) {},
			want:    AimNoTarget,
		},
		{
			name: "still aiming",
			prepare: func(w *Weapon) {
				w.RotateTo(math.Pi/2, 0, 0.01, 0.05, 200)
			},
			want: Aiming,
		},
		{
			name: "out of reach",
			prepare: func(w *Weapon) {
				w.RotateTo(0, 2.0, 0.01, 0.05, 5000)
			},
			want: AimingOutOfReach,
		},
		{
			name: "out of range",
			prepare: func(w *Weapon) {
				w.AimTowards(physics.Vector3D{Z: 900}, 0.01, 0.05, 1000)
			},
			want: AimedOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTurret()
			tt.prepare(w)
			if w.AimStatus() != tt.want {
				t.Fatalf("aim status = %v, want %v", w.AimStatus(), tt.want)
			}
			if got := w.Fire(true); got != 0 {
				t.Errorf("gated fire = %d, want 0", got)
			}
			// Ungated fire ignores aim, still honors cooldown
			if got := w.Fire(false); got != 1 {
				t.Errorf("ungated fire = %d, want 1", got)
			}
		})
	}
}

func TestFireWithNoBarrels(t *testing.T) {
	class := &WeaponClass{Name: "mount", Cooldown: 500, RotationStyle: RotationFixed}
	w, _ := newTestWeapon(class, newTestEnv())

	if got := w.Fire(true); got != 0 {
		t.Errorf("fire with no barrels = %d, want 0", got)
	}
}

func TestFirePublishesEvent(t *testing.T) {
	env := newTestEnv()
	w, _ := newTestWeapon(fixedGunClass(2), env)

	var got int
	env.Events.Subscribe(event.ProjectileFired, func(e event.Event) {
		got = e.(*event.FireEvent).Projectiles
	})
	w.Fire(true)
	if got != 2 {
		t.Errorf("fire event projectile count = %d, want 2", got)
	}
}

func TestAimLockPublishesOnce(t *testing.T) {
	env := newTestEnv()
	w, _ := newTestWeapon(turretClass(), env)

	locks := 0
	env.Events.Subscribe(event.WeaponLocked, func(e event.Event) {
		locks++
	})

	target := physics.Vector3D{X: 500}
	for i := 0; i < 5; i++ {
		w.AimTowards(target, 0.01, 0.05, 1000)
	}
	if locks != 1 {
		t.Errorf("lock events = %d, want exactly 1 across the convergence", locks)
	}

	// Losing and reacquiring the target locks again.
	for i := 0; i < 5; i++ {
		w.RotateToDefault(0.01, 0.05, 1000)
	}
	for i := 0; i < 5; i++ {
		w.AimTowards(target, 0.01, 0.05, 1000)
	}
	if locks != 2 {
		t.Errorf("lock events after reacquire = %d, want 2", locks)
	}
}
