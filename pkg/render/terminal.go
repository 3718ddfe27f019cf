// pkg/render/terminal.go
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/physics"
)

// TerminalRenderer draws a top-down ASCII view of the battle: world X maps
// to columns, world Z to rows, altitude (Y) is flattened out.
type TerminalRenderer struct {
	width  int
	height int
	buffer [][]rune
	scale  float64 // meters per cell
	center physics.Vector3D
	out    io.Writer
}

// NewTerminalRenderer creates a terminal renderer of the given character
// dimensions. scale is meters per character cell.
func NewTerminalRenderer(width, height int, scale float64, out io.Writer) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	return &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    out,
	}
}

// SetCenter moves the view center, usually to the tracked craft's position
func (r *TerminalRenderer) SetCenter(pos physics.Vector3D) {
	r.center = pos
}

// worldToScreen projects a world position onto the character grid
func (r *TerminalRenderer) worldToScreen(pos physics.Vector3D) (int, int) {
	x := int((pos.X-r.center.X)/r.scale + float64(r.width)/2)
	// Screen rows grow downward; world +Z is drawn up
	y := int((r.center.Z-pos.Z)/r.scale + float64(r.height)/2)
	return x, y
}

func (r *TerminalRenderer) plot(x, y int, symbol rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = symbol
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// Present implements Renderer
func (r *TerminalRenderer) Present() {
	fmt.Fprint(r.out, "\033[H\033[2J")
	fmt.Fprintln(r.out, "+"+strings.Repeat("-", r.width)+"+")
	for y := range r.buffer {
		fmt.Fprintln(r.out, "|"+string(r.buffer[y])+"|")
	}
	fmt.Fprintln(r.out, "+"+strings.Repeat("-", r.width)+"+")
}

// headingGlyph picks an arrow for the craft's horizontal heading
func headingGlyph(forward physics.Vector3D) rune {
	if math.Hypot(forward.X, forward.Z) < 0.3 {
		// Mostly climbing or diving
		if forward.Y > 0 {
			return '+'
		}
		return '-'
	}
	angle := math.Atan2(forward.X, forward.Z)
	switch {
	case angle > -math.Pi/4 && angle <= math.Pi/4:
		return '^'
	case angle > math.Pi/4 && angle <= 3*math.Pi/4:
		return '>'
	case angle <= -math.Pi/4 && angle > -3*math.Pi/4:
		return '<'
	default:
		return 'v'
	}
}

// RenderSpacecraft implements Renderer. Live crafts draw as a heading arrow,
// wrecks as '#'.
func (r *TerminalRenderer) RenderSpacecraft(craft *entity.Spacecraft) {
	body := craft.GetBody()
	x, y := r.worldToScreen(body.Position)
	if !craft.Alive() {
		r.plot(x, y, '#')
		return
	}
	r.plot(x, y, headingGlyph(body.Orientation.Forward))
}

// RenderProjectile implements Renderer
func (r *TerminalRenderer) RenderProjectile(projectile *entity.Projectile) {
	body := projectile.GetBody()
	if body == nil {
		return
	}
	x, y := r.worldToScreen(body.Position)
	r.plot(x, y, '.')
}

// RenderExplosion implements Renderer
func (r *TerminalRenderer) RenderExplosion(explosion *entity.Explosion) {
	x, y := r.worldToScreen(explosion.Position)
	r.plot(x, y, '*')
}
