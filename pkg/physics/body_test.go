package physics

import (
	"math"
	"testing"
)

func TestBody_SimulateForce(t *testing.T) {
	b := NewBody(10, 5, Vector3D{}, IdentityBasis())

	// 100 N forward for one full 1000 ms tick on 10 kg: v = 10 m/s
	b.AddForce("thrust", Vector3D{Z: 1}, 100, 1000)
	b.Simulate(1000)

	if math.Abs(b.Velocity.Z-10) > 1e-9 {
		t.Errorf("Velocity.Z = %v, want 10", b.Velocity.Z)
	}
	// Position integrates the post-force velocity over the tick
	if math.Abs(b.Position.Z-10) > 1e-9 {
		t.Errorf("Position.Z = %v, want 10", b.Position.Z)
	}
	if b.ForceCount() != 0 {
		t.Errorf("expired force still live, count = %d", b.ForceCount())
	}
}

func TestBody_ForceDurationCap(t *testing.T) {
	b := NewBody(1, 1, Vector3D{}, IdentityBasis())

	// Force acts only for 100 ms of the 1000 ms tick
	b.AddForce("impulse", Vector3D{X: 1}, 50, 100)
	b.Simulate(1000)

	want := 50 * 0.1 // N * s / kg
	if math.Abs(b.Velocity.X-want) > 1e-9 {
		t.Errorf("Velocity.X = %v, want %v", b.Velocity.X, want)
	}
}

func TestBody_AddOrRenewForce(t *testing.T) {
	b := NewBody(1, 1, Vector3D{}, IdentityBasis())

	b.AddOrRenewForce("forwardThrust", Vector3D{Z: 1}, 10, 50)
	b.AddOrRenewForce("forwardThrust", Vector3D{Z: 1}, 20, 50)

	if b.ForceCount() != 1 {
		t.Fatalf("renewed force duplicated, count = %d", b.ForceCount())
	}

	b.Simulate(50)
	want := 20 * 0.05
	if math.Abs(b.Velocity.Z-want) > 1e-9 {
		t.Errorf("Velocity.Z = %v, want %v (renewed magnitude only)", b.Velocity.Z, want)
	}
}

func TestBody_TorqueSpinsBody(t *testing.T) {
	b := NewBody(2, 1, Vector3D{}, IdentityBasis())

	b.AddTorque("yawTorque", Vector3D{Y: 1}, 4, 1000)
	b.Simulate(1000)

	// rate = torque * t / mass = 4 * 1 / 2 = 2 rad/s
	if math.Abs(b.AngularVelocity.Y-2) > 1e-9 {
		t.Errorf("AngularVelocity.Y = %v, want 2", b.AngularVelocity.Y)
	}
}

func TestBody_CheckHit(t *testing.T) {
	tests := []struct {
		name     string
		position Vector3D
		velocity Vector3D
		dt       float64
		wantHit  bool
	}{
		{
			name:     "head-on pass through hull",
			position: Vector3D{Z: -20},
			velocity: Vector3D{Z: 100},
			dt:       1000,
			wantHit:  true,
		},
		{
			name:     "stops short of hull",
			position: Vector3D{Z: -20},
			velocity: Vector3D{Z: 100},
			dt:       100,
			wantHit:  false,
		},
		{
			name:     "offset path misses",
			position: Vector3D{X: 50, Z: -20},
			velocity: Vector3D{Z: 100},
			dt:       1000,
			wantHit:  false,
		},
		{
			name:     "starting inside hull hits immediately",
			position: Vector3D{X: 1},
			velocity: Vector3D{},
			dt:       16,
			wantHit:  true,
		},
		{
			name:     "moving away never hits",
			position: Vector3D{Z: 20},
			velocity: Vector3D{Z: 100},
			dt:       1000,
			wantHit:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBody(1000, 5, Vector3D{}, IdentityBasis())
			hitPoint, hit := b.CheckHit(tt.position, tt.velocity, tt.dt)
			if hit != tt.wantHit {
				t.Fatalf("CheckHit() hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && hitPoint.Length() > b.Radius+1e-6 {
				t.Errorf("hit point %v lies outside the hull", hitPoint)
			}
		})
	}
}

func TestBody_CheckHit_MovingTarget(t *testing.T) {
	b := NewBody(1000, 5, Vector3D{X: 100}, IdentityBasis())

	// Relative velocity already accounts for target motion; point closes at
	// 200 m/s from 50 m away along +X
	_, hit := b.CheckHit(Vector3D{X: 50}, Vector3D{X: 200}, 1000)
	if !hit {
		t.Error("expected hit on closing trajectory")
	}
}

func TestBody_AddForceAndTorque(t *testing.T) {
	b := NewBody(10, 5, Vector3D{}, IdentityBasis())

	// Off-axis impact: force along +X applied 2 m forward of center
	b.AddForceAndTorque("impact", Vector3D{X: 1}, 100, Vector3D{Z: 2}, 1000)
	b.Simulate(1000)

	if math.Abs(b.Velocity.X-10) > 1e-9 {
		t.Errorf("Velocity.X = %v, want 10", b.Velocity.X)
	}
	if b.AngularVelocity.Length() < 1e-9 {
		t.Error("off-axis impact should induce spin")
	}

	// Centered impact induces no spin
	b2 := NewBody(10, 5, Vector3D{}, IdentityBasis())
	b2.AddForceAndTorque("impact", Vector3D{X: 1}, 100, Vector3D{}, 1000)
	b2.Simulate(1000)
	if b2.AngularVelocity.Length() > 1e-9 {
		t.Errorf("centered impact induced spin: %v", b2.AngularVelocity)
	}
}
