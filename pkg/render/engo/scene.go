// pkg/render/engo/scene.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-armada/pkg/engine"
	"github.com/opd-ai/go-armada/pkg/entity"
)

// BattleScene runs a local battle inside an Engo window: the simulation
// ticks in lockstep with the frame loop, the input system drives the
// player's craft and the renderer mirrors the battle state.
type BattleScene struct {
	battle   *engine.Battle
	playerID entity.ID

	world    *ecs.World
	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem
}

// NewBattleScene creates a scene around an already configured battle. The
// scene starts the battle during Setup.
func NewBattleScene(battle *engine.Battle, playerID entity.ID) *BattleScene {
	return &BattleScene{
		battle:   battle,
		playerID: playerID,
		world:    &ecs.World{},
	}
}

// Type returns the scene type (required by Engo).
func (scene *BattleScene) Type() string {
	return "BattleScene"
}

// Preload is called before the scene starts (required by Engo).
func (scene *BattleScene) Preload() {}

// Setup builds the ECS world (required by Engo). System order matters:
// input first so commands land before the tick, then the simulation, then
// camera and HUD reading the fresh state.
func (scene *BattleScene) Setup(u engo.Updater) {
	scene.world = &ecs.World{}

	scene.renderer = NewEngoRenderer(scene.world)
	if err := scene.renderer.Initialize(); err != nil {
		panic("renderer init: " + err.Error())
	}
	scene.renderer.SetViewport(engo.GameWidth(), engo.GameHeight())

	SetupInputBindings()

	scene.input = NewInputSystem(scene.battle, scene.playerID)
	scene.world.AddSystem(scene.input)

	scene.world.AddSystem(&simulationSystem{scene: scene})

	scene.camera = NewCameraSystem(scene.renderer)
	scene.world.AddSystem(scene.camera)

	scene.hud = NewHUDSystem(scene.battle, scene.playerID, scene.renderer.renderSystem)
	scene.world.AddSystem(scene.hud)

	scene.battle.Start()
}

// Exit stops the battle when the scene is torn down (required by Engo).
func (scene *BattleScene) Exit() {
	if scene.input != nil {
		scene.input.Close()
	}
	scene.battle.Stop()
}

// simulationSystem advances the battle once per frame and pushes the result
// into the camera and renderer.
type simulationSystem struct {
	scene *BattleScene
}

// Remove satisfies the ecs.System interface.
func (s *simulationSystem) Remove(basic ecs.BasicEntity) {}

// Update ticks the battle. Engo hands dt in seconds; the simulation runs on
// milliseconds and caps oversized ticks itself.
func (s *simulationSystem) Update(dt float32) {
	scene := s.scene
	scene.battle.Update(float64(dt) * 1000)

	scene.battle.EntityLock.RLock()
	craft := scene.battle.Crafts[scene.playerID]
	scene.battle.EntityLock.RUnlock()
	if craft != nil {
		scene.camera.SetTarget(craft.GetBody().Position)
	}

	scene.renderer.Sync(scene.battle)
}
