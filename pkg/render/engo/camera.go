// pkg/render/engo/camera.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-armada/pkg/physics"
)

// CameraSystem keeps the view centered on the player's craft, with scroll
// wheel and keyboard zoom.
type CameraSystem struct {
	renderer *EngoRenderer

	target    physics.Vector3D
	targetSet bool

	scale    float64 // meters per pixel
	minScale float64
	maxScale float64

	followSpeed float64
	smoothing   bool

	currentPos physics.Vector3D
}

// NewCameraSystem creates a camera feeding view state into the renderer.
func NewCameraSystem(renderer *EngoRenderer) *CameraSystem {
	return &CameraSystem{
		renderer:    renderer,
		scale:       5,
		minScale:    0.5,
		maxScale:    50,
		followSpeed: 4,
		smoothing:   true,
	}
}

// Remove satisfies the ecs.System interface.
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update moves the camera toward its target and applies zoom input.
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()
	if cs.targetSet {
		cs.currentPos = cs.step(cs.currentPos, cs.target, float64(dt))
	}
	cs.renderer.SetView(cs.currentPos, cs.scale)
}

// SetTarget points the camera at a world position.
func (cs *CameraSystem) SetTarget(pos physics.Vector3D) {
	cs.target = pos
	if !cs.targetSet {
		cs.currentPos = pos
		cs.targetSet = true
	}
}

// SetScale sets the zoom level in meters per pixel, clamped to the camera's
// limits.
func (cs *CameraSystem) SetScale(scale float64) {
	if scale < cs.minScale {
		scale = cs.minScale
	}
	if scale > cs.maxScale {
		scale = cs.maxScale
	}
	cs.scale = scale
}

// Scale returns the current zoom level in meters per pixel.
func (cs *CameraSystem) Scale() float64 {
	return cs.scale
}

func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetScale(cs.scale * (1 - float64(scrollY)*0.1))
	}
	if engo.Input.Button("zoomIn").Down() {
		cs.SetScale(cs.scale * 0.98)
	}
	if engo.Input.Button("zoomOut").Down() {
		cs.SetScale(cs.scale * 1.02)
	}
}

// step moves pos toward target, exponentially when smoothing is on.
func (cs *CameraSystem) step(pos, target physics.Vector3D, dt float64) physics.Vector3D {
	if !cs.smoothing {
		return target
	}
	f := cs.followSpeed * dt
	if f > 1 {
		f = 1
	}
	return pos.Add(target.Sub(pos).Scale(f))
}
