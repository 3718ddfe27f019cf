// pkg/render/engo/input.go
package engo

import (
	"strconv"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-armada/pkg/engine"
	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/validation"
)

// Aim thresholds for player-controlled turrets, in radians.
const (
	playerTurnThreshold = 0.01
	playerFireThreshold = 0.05
)

// Fire commands accepted per pilot per second. A held key issues one per
// frame, far more than this.
const maxFireCommandsPerSecond = 30

// InputSystem translates keyboard state into flight and weapon commands for
// the player's craft. Commands go straight to the maneuvering computer and
// are consumed on the next battle tick.
type InputSystem struct {
	battle   *engine.Battle
	playerID entity.ID
	pilotKey string
	limiter  *validation.CommandLimiter
}

// NewInputSystem creates an input system driving the given craft.
func NewInputSystem(battle *engine.Battle, playerID entity.ID) *InputSystem {
	return &InputSystem{
		battle:   battle,
		playerID: playerID,
		pilotKey: strconv.FormatUint(uint64(playerID), 10),
		limiter:  validation.NewCommandLimiter(maxFireCommandsPerSecond, time.Second),
	}
}

// Close stops the limiter's background cleanup.
func (is *InputSystem) Close() {
	is.limiter.Close()
}

// Remove satisfies the ecs.System interface.
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// fireAllowed rate-limits fire commands so a held key or a scripted key
// feed cannot issue FireAll every frame.
func (is *InputSystem) fireAllowed() bool {
	return is.limiter.Allow(is.pilotKey)
}

// Update reads the input state and issues commands. dt arrives in seconds
// from Engo, the simulation wants milliseconds.
func (is *InputSystem) Update(dt float32) {
	is.battle.EntityLock.RLock()
	craft := is.battle.Crafts[is.playerID]
	is.battle.EntityLock.RUnlock()
	if craft == nil || !craft.Alive() {
		return
	}

	dtMs := float64(dt) * 1000
	is.handleFlightInput(craft)
	is.handleWeaponInput(craft, dtMs)
}

func (is *InputSystem) handleFlightInput(craft *entity.Spacecraft) {
	mc := craft.Maneuvering()

	if engo.Input.Button("thrust").Down() {
		mc.Forward()
	}
	if engo.Input.Button("reverse").Down() {
		mc.Reverse()
	}
	if engo.Input.Button("yawLeft").Down() {
		mc.YawLeft()
	}
	if engo.Input.Button("yawRight").Down() {
		mc.YawRight()
	}
	if engo.Input.Button("pitchUp").Down() {
		mc.PitchUp()
	}
	if engo.Input.Button("pitchDown").Down() {
		mc.PitchDown()
	}
	if engo.Input.Button("rollLeft").Down() {
		mc.RollLeft()
	}
	if engo.Input.Button("rollRight").Down() {
		mc.RollRight()
	}
	if engo.Input.Button("strafeLeft").Down() {
		mc.StrafeLeft()
	}
	if engo.Input.Button("strafeRight").Down() {
		mc.StrafeRight()
	}
	if engo.Input.Button("raise").Down() {
		mc.Raise()
	}
	if engo.Input.Button("lower").Down() {
		mc.Lower()
	}
	if engo.Input.Button("allStop").JustPressed() {
		mc.StopForward()
		mc.StopStrafe()
		mc.StopLift()
	}
	if engo.Input.Button("flightMode").JustPressed() {
		craft.ChangeFlightMode()
	}
}

func (is *InputSystem) handleWeaponInput(craft *entity.Spacecraft, dtMs float64) {
	aiming := engo.Input.Button("aim").Down()
	target := is.battle.NearestEnemy(craft)
	if aiming && target != nil {
		craft.AimWeaponsAt(target.GetBody().Position, playerTurnThreshold, playerFireThreshold, dtMs)
	} else {
		craft.RestWeapons(playerTurnThreshold, playerFireThreshold, dtMs)
	}

	if engo.Input.Button("fire").Down() && is.fireAllowed() {
		craft.FireAll(false)
	}
}

// SetupInputBindings registers the key bindings the input and camera
// systems read.
func SetupInputBindings() {
	engo.Input.RegisterButton("thrust", engo.KeyW, engo.KeyArrowUp)
	engo.Input.RegisterButton("reverse", engo.KeyS, engo.KeyArrowDown)
	engo.Input.RegisterButton("yawLeft", engo.KeyA, engo.KeyArrowLeft)
	engo.Input.RegisterButton("yawRight", engo.KeyD, engo.KeyArrowRight)
	engo.Input.RegisterButton("pitchUp", engo.KeyR)
	engo.Input.RegisterButton("pitchDown", engo.KeyF)
	engo.Input.RegisterButton("rollLeft", engo.KeyQ)
	engo.Input.RegisterButton("rollRight", engo.KeyE)
	engo.Input.RegisterButton("strafeLeft", engo.KeyZ)
	engo.Input.RegisterButton("strafeRight", engo.KeyC)
	engo.Input.RegisterButton("raise", engo.KeySpace)
	engo.Input.RegisterButton("lower", engo.KeyLeftControl)
	engo.Input.RegisterButton("allStop", engo.KeyX)
	engo.Input.RegisterButton("flightMode", engo.KeyTab)

	engo.Input.RegisterButton("aim", engo.KeyT)
	engo.Input.RegisterButton("fire", engo.KeyEnter)

	engo.Input.RegisterButton("zoomIn", engo.KeyNumAdd)
	engo.Input.RegisterButton("zoomOut", engo.KeyNumSubtract)
}
