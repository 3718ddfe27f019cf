// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-armada/pkg/engine"
	"github.com/opd-ai/go-armada/pkg/entity"
)

// textTarget is the slice of the render system the HUD needs to put text
// entities on screen and take them off again.
type textTarget interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// HUDSystem draws the pilot's status panel and the team standings.
type HUDSystem struct {
	battle   *engine.Battle
	playerID entity.ID
	target   textTarget

	hudEntities []*sprite

	// Rebuilt every frame; kept as plain strings so the layout is separate
	// from the text entities that carry it.
	statusLines []string
	teamLines   []string
	banner      string

	font *common.Font

	hudColor     color.Color
	warningColor color.Color
}

// NewHUDSystem creates a HUD bound to one battle and one craft, drawing
// into the given render system.
func NewHUDSystem(battle *engine.Battle, playerID entity.ID, target textTarget) *HUDSystem {
	return &HUDSystem{
		battle:       battle,
		playerID:     playerID,
		target:       target,
		hudColor:     color.RGBA{220, 220, 220, 255},
		warningColor: color.RGBA{255, 80, 80, 255},
	}
}

// SetFont sets the font used for HUD text.
func (hud *HUDSystem) SetFont(font *common.Font) {
	hud.font = font
}

// Remove satisfies the ecs.System interface.
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update rebuilds the HUD text from the current battle state.
func (hud *HUDSystem) Update(dt float32) {
	hud.refresh()
	hud.clearHUDEntities()

	y := float32(10)
	for _, line := range hud.statusLines {
		hud.renderText(line, 10, y, hud.hudColor)
		y += 16
	}

	y = 10
	right := float32(engo.GameWidth()) - 260
	for _, line := range hud.teamLines {
		hud.renderText(line, right, y, hud.hudColor)
		y += 16
	}

	if hud.banner != "" {
		hud.renderText(hud.banner, float32(engo.GameWidth())/2-80, 40, hud.warningColor)
	}
}

// refresh recomputes the HUD lines under the battle's read lock.
func (hud *HUDSystem) refresh() {
	hud.battle.EntityLock.RLock()
	defer hud.battle.EntityLock.RUnlock()

	craft := hud.battle.Crafts[hud.playerID]
	hud.statusLines = craftStatusLines(craft)
	hud.teamLines = teamStandings(hud.battle.Teams)
	hud.banner = battleBanner(hud.battle)
}

// craftStatusLines formats the pilot's panel: hull, flight mode, speed and
// one line per weapon mount.
func craftStatusLines(craft *entity.Spacecraft) []string {
	if craft == nil {
		return []string{"NO CRAFT"}
	}
	if !craft.Alive() {
		return []string{"DESTROYED"}
	}

	mc := craft.Maneuvering()
	lines := []string{
		fmt.Sprintf("Hull %.0f/%.0f", craft.Hull(), craft.Class().MaxHull),
		fmt.Sprintf("Mode %s", mc.FlightMode()),
		fmt.Sprintf("Speed %.0f m/s", craft.GetBody().Velocity.Length()),
	}
	for _, w := range craft.Weapons() {
		lines = append(lines, weaponStatusLine(w))
	}
	return lines
}

// weaponStatusLine formats one weapon mount as name, aim state and charge.
func weaponStatusLine(w *entity.Weapon) string {
	charge := "RDY"
	if !w.Ready() {
		charge = fmt.Sprintf("%2.0f%%", w.CooldownFraction()*100)
	}
	return fmt.Sprintf("%-12s %-10s %s", w.Class().Name, w.AimStatus(), charge)
}

// teamStandings formats one line per team, ordered by team ID.
func teamStandings(teams map[int]*engine.Team) []string {
	ids := make([]int, 0, len(teams))
	for id := range teams {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		t := teams[id]
		lines = append(lines, fmt.Sprintf("%-10s crafts %d  kills %d", t.Name, t.CraftCount, t.Kills))
	}
	return lines
}

// battleBanner returns the end-of-battle banner, or "" while fighting.
func battleBanner(b *engine.Battle) string {
	if b.Status != engine.BattleStatusEnded {
		return ""
	}
	if t, ok := b.Teams[b.WinningTeam]; ok {
		return fmt.Sprintf("%s WINS", t.Name)
	}
	return "BATTLE OVER"
}

// clearHUDEntities takes the previous frame's text entities off the render
// system before the frame rebuilds them.
func (hud *HUDSystem) clearHUDEntities() {
	for _, s := range hud.hudEntities {
		if hud.target != nil {
			hud.target.Remove(s.BasicEntity)
		}
	}
	hud.hudEntities = hud.hudEntities[:0]
}

// renderText creates a text entity at the given screen position and adds it
// to the render system.
func (hud *HUDSystem) renderText(text string, x, y float32, textColor color.Color) {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.RenderComponent = common.RenderComponent{
		Drawable: common.Text{
			Font: hud.font,
			Text: text,
		},
		Color: textColor,
	}
	s.SpaceComponent = common.SpaceComponent{
		Position: engo.Point{X: x, Y: y},
	}
	if hud.target != nil {
		hud.target.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
	hud.hudEntities = append(hud.hudEntities, s)
}

// StatusLines returns the pilot panel built by the last Update.
func (hud *HUDSystem) StatusLines() []string {
	return hud.statusLines
}

// TeamLines returns the standings built by the last Update.
func (hud *HUDSystem) TeamLines() []string {
	return hud.teamLines
}
