// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/logging"
)

// Renderer draws one frame of battle state. The engine calls Clear, then the
// Render methods for every visible object, then Present.
type Renderer interface {
	Clear()
	Present()
	RenderSpacecraft(craft *entity.Spacecraft)
	RenderProjectile(projectile *entity.Projectile)
	RenderExplosion(explosion *entity.Explosion)
}

// NullRenderer discards all draw calls. Headless servers and tests use it.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{
		logger: logging.NewLogger(),
	}
}

// Clear implements Renderer.
func (r *NullRenderer) Clear() {}

// Present implements Renderer.
func (r *NullRenderer) Present() {}

// RenderSpacecraft implements Renderer.
func (r *NullRenderer) RenderSpacecraft(craft *entity.Spacecraft) {
	if craft == nil {
		r.logger.Debug(context.Background(), "RenderSpacecraft called with nil craft")
	}
}

// RenderProjectile implements Renderer.
func (r *NullRenderer) RenderProjectile(projectile *entity.Projectile) {
	if projectile == nil {
		r.logger.Debug(context.Background(), "RenderProjectile called with nil projectile")
	}
}

// RenderExplosion implements Renderer.
func (r *NullRenderer) RenderExplosion(explosion *entity.Explosion) {
	if explosion == nil {
		r.logger.Debug(context.Background(), "RenderExplosion called with nil explosion")
	}
}
