// pkg/physics/basis.go
package physics

// Basis is an orthonormal orientation frame. Forward is the direction the
// craft's nose points, Up is out of the canopy, Right completes the
// right-handed set.
type Basis struct {
	Right   Vector3D
	Up      Vector3D
	Forward Vector3D
}

// IdentityBasis returns the world-aligned orientation: +X right, +Y up,
// +Z forward.
func IdentityBasis() Basis {
	return Basis{
		Right:   Vector3D{X: 1},
		Up:      Vector3D{Y: 1},
		Forward: Vector3D{Z: 1},
	}
}

// ToLocal transforms a world-frame vector into this basis
func (b Basis) ToLocal(v Vector3D) Vector3D {
	return Vector3D{
		X: v.Dot(b.Right),
		Y: v.Dot(b.Up),
		Z: v.Dot(b.Forward),
	}
}

// ToWorld transforms a basis-local vector into the world frame
func (b Basis) ToWorld(v Vector3D) Vector3D {
	return b.Right.Scale(v.X).Add(b.Up.Scale(v.Y)).Add(b.Forward.Scale(v.Z))
}

// RotateAround returns the basis rotated around the given world-frame unit
// axis by angle radians
func (b Basis) RotateAround(axis Vector3D, angle float64) Basis {
	return Basis{
		Right:   b.Right.RotateAround(axis, angle),
		Up:      b.Up.RotateAround(axis, angle),
		Forward: b.Forward.RotateAround(axis, angle),
	}
}

// Yaw rotates around the local up axis (positive = nose right)
func (b Basis) Yaw(angle float64) Basis {
	return b.RotateAround(b.Up, angle)
}

// Pitch rotates around the local right axis (positive = nose up)
func (b Basis) Pitch(angle float64) Basis {
	return b.RotateAround(b.Right, -angle)
}

// Roll rotates around the local forward axis (positive = bank right)
func (b Basis) Roll(angle float64) Basis {
	return b.RotateAround(b.Forward, -angle)
}

// Orthonormalize rebuilds the basis from Forward and Up using Gram-Schmidt.
// Repeated incremental rotations accumulate floating point drift; calling this
// after integration keeps the frame orthonormal.
func (b Basis) Orthonormalize() Basis {
	forward := b.Forward.Normalize()
	up := b.Up.Sub(forward.Scale(forward.Dot(b.Up))).Normalize()
	if up.LengthSquared() == 0 {
		up = Vector3D{Y: 1}
	}
	return Basis{
		Right:   up.Cross(forward),
		Up:      up,
		Forward: forward,
	}
}
