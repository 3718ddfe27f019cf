// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-armada/pkg/engine"
	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// sprite ties one battle object to the ECS entity that draws it.
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
	seen bool
}

// EngoRenderer draws a battle top-down in the XZ plane. World X maps to
// screen X and world Z maps to screen up; altitude is flattened out of the
// picture the same way the terminal renderer flattens it.
type EngoRenderer struct {
	world        *ecs.World
	renderSystem *common.RenderSystem

	craftSprites      map[entity.ID]*sprite
	projectileSprites map[entity.ID]*sprite
	explosionSprites  map[*entity.Explosion]*sprite

	// View state, pushed in by the camera system every frame.
	center physics.Vector3D
	scale  float64 // meters per pixel

	screenW float32
	screenH float32
}

// NewEngoRenderer creates a renderer bound to the given ECS world.
func NewEngoRenderer(world *ecs.World) *EngoRenderer {
	return &EngoRenderer{
		world:             world,
		craftSprites:      make(map[entity.ID]*sprite),
		projectileSprites: make(map[entity.ID]*sprite),
		explosionSprites:  make(map[*entity.Explosion]*sprite),
		scale:             5,
		screenW:           800,
		screenH:           600,
	}
}

// Initialize registers the render system with the world.
func (r *EngoRenderer) Initialize() error {
	r.renderSystem = &common.RenderSystem{}
	r.world.AddSystem(r.renderSystem)
	return nil
}

// SetViewport tells the renderer the drawable size in pixels.
func (r *EngoRenderer) SetViewport(width, height float32) {
	r.screenW = width
	r.screenH = height
}

// SetView positions the view over the battle. The camera system calls this
// once per frame before Sync.
func (r *EngoRenderer) SetView(center physics.Vector3D, scale float64) {
	r.center = center
	if scale > 0 {
		r.scale = scale
	}
}

// Sync walks the battle state and reconciles the sprite set with it. The
// caller must not hold the battle's entity lock.
func (r *EngoRenderer) Sync(b *engine.Battle) {
	b.EntityLock.RLock()
	defer b.EntityLock.RUnlock()

	for _, s := range r.craftSprites {
		s.seen = false
	}
	for _, s := range r.projectileSprites {
		s.seen = false
	}
	for _, s := range r.explosionSprites {
		s.seen = false
	}

	for id, craft := range b.Crafts {
		s := r.craftSprite(id, craft)
		r.placeCraft(s, craft)
		s.seen = true
	}
	b.Env.Projectiles.ForEach(func(p *entity.Projectile) {
		s := r.projectileSprite(p.GetID())
		r.placeProjectile(s, p)
		s.seen = true
	})
	b.Env.Explosions.ForEach(func(e *entity.Explosion) {
		s := r.explosionSprite(e)
		r.placeExplosion(s, e)
		s.seen = true
	})

	r.sweepStale()
}

func (r *EngoRenderer) craftSprite(id entity.ID, craft *entity.Spacecraft) *sprite {
	if s, ok := r.craftSprites[id]; ok {
		return s
	}
	size := float32(craft.Class().HullRadius*2/r.scale) + 4
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.RenderComponent = common.RenderComponent{
		Drawable: common.Triangle{},
		Color:    teamColor(craft.TeamID()),
	}
	s.SpaceComponent = common.SpaceComponent{Width: size, Height: size}
	r.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	r.craftSprites[id] = s
	return s
}

func (r *EngoRenderer) projectileSprite(id entity.ID) *sprite {
	if s, ok := r.projectileSprites[id]; ok {
		return s
	}
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.RenderComponent = common.RenderComponent{
		Drawable: common.Circle{},
		Color:    color.RGBA{255, 220, 80, 255},
	}
	s.SpaceComponent = common.SpaceComponent{Width: 3, Height: 3}
	r.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	r.projectileSprites[id] = s
	return s
}

func (r *EngoRenderer) explosionSprite(e *entity.Explosion) *sprite {
	if s, ok := r.explosionSprites[e]; ok {
		return s
	}
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.RenderComponent = common.RenderComponent{
		Drawable: common.Circle{},
		Color:    color.RGBA{255, 120, 0, 200},
	}
	s.SpaceComponent = common.SpaceComponent{}
	r.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	r.explosionSprites[e] = s
	return s
}

func (r *EngoRenderer) placeCraft(s *sprite, craft *entity.Spacecraft) {
	body := craft.GetBody()
	pos := r.worldToScreen(body.Position)
	s.SpaceComponent.Position = engo.Point{
		X: pos.X - s.SpaceComponent.Width/2,
		Y: pos.Y - s.SpaceComponent.Height/2,
	}
	s.SpaceComponent.Rotation = headingDegrees(body.Orientation.Forward)
	if craft.Alive() {
		s.RenderComponent.Color = teamColor(craft.TeamID())
	} else {
		s.RenderComponent.Color = color.RGBA{90, 90, 90, 255}
	}
}

func (r *EngoRenderer) placeProjectile(s *sprite, p *entity.Projectile) {
	pos := r.worldToScreen(p.GetBody().Position)
	s.SpaceComponent.Position = engo.Point{X: pos.X - 1, Y: pos.Y - 1}
}

func (r *EngoRenderer) placeExplosion(s *sprite, e *entity.Explosion) {
	pos := r.worldToScreen(e.Position)
	size := float32(e.Radius() * 2 / r.scale)
	s.SpaceComponent.Width = size
	s.SpaceComponent.Height = size
	s.SpaceComponent.Position = engo.Point{X: pos.X - size/2, Y: pos.Y - size/2}
	alpha := uint8(200 * e.Intensity())
	s.RenderComponent.Color = color.RGBA{255, 120, 0, alpha}
}

// sweepStale removes sprites whose battle object disappeared this frame.
func (r *EngoRenderer) sweepStale() {
	for id, s := range r.craftSprites {
		if !s.seen {
			r.renderSystem.Remove(s.BasicEntity)
			delete(r.craftSprites, id)
		}
	}
	for id, s := range r.projectileSprites {
		if !s.seen {
			r.renderSystem.Remove(s.BasicEntity)
			delete(r.projectileSprites, id)
		}
	}
	for e, s := range r.explosionSprites {
		if !s.seen {
			r.renderSystem.Remove(s.BasicEntity)
			delete(r.explosionSprites, e)
		}
	}
}

// worldToScreen projects a world position onto the screen. Positive world Z
// runs up the screen, so the screen Y axis is flipped.
func (r *EngoRenderer) worldToScreen(world physics.Vector3D) engo.Point {
	return engo.Point{
		X: r.screenW/2 + float32((world.X-r.center.X)/r.scale),
		Y: r.screenH/2 - float32((world.Z-r.center.Z)/r.scale),
	}
}

// headingDegrees converts a forward vector into a screen rotation. Engo
// rotations are clockwise degrees, which matches the flipped Z axis.
func headingDegrees(forward physics.Vector3D) float32 {
	return float32(math.Atan2(forward.X, forward.Z) * 180 / math.Pi)
}

// teamColor returns the draw color for a team.
func teamColor(teamID int) color.RGBA {
	teamColors := []color.RGBA{
		{220, 60, 60, 255},
		{60, 120, 220, 255},
		{60, 200, 90, 255},
		{220, 200, 60, 255},
	}
	if teamID >= 0 && teamID < len(teamColors) {
		return teamColors[teamID]
	}
	return color.RGBA{255, 255, 255, 255}
}
