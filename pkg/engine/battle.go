// pkg/engine/battle.go
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/go-armada/pkg/ai"
	"github.com/opd-ai/go-armada/pkg/audio"
	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/event"
	"github.com/opd-ai/go-armada/pkg/logging"
	"github.com/opd-ai/go-armada/pkg/physics"
	"github.com/opd-ai/go-armada/pkg/pool"
	"github.com/opd-ai/go-armada/pkg/validation"
)

// BattleStatus tracks the battle lifecycle
type BattleStatus int

const (
	BattleStatusWaiting BattleStatus = iota
	BattleStatusActive
	BattleStatusEnded
)

// WinCondition defines an interface for custom win condition logic.
// Returns (winningTeamID, true) if a winner is found, else (-1, false).
type WinCondition interface {
	CheckWinner(battle *Battle) (int, bool)
}

// Team groups the crafts fighting on one side
type Team struct {
	ID         int
	Name       string
	Color      string
	CraftCount int
	Kills      int
}

// Battle owns one simulated engagement: the class data, every spacecraft,
// the pooled projectiles and explosions, the spatial index and the tick
// loop that drives them.
type Battle struct {
	Config  *config.BattleConfig
	Classes *entity.ClassSet
	Env     *entity.Env

	Crafts        map[entity.ID]*entity.Spacecraft
	Teams         map[int]*Team
	controllers   []ai.Controller
	creditedKills map[entity.ID]bool

	EntityLock   sync.RWMutex
	Running      bool
	CurrentTick  uint64
	EventBus     *event.Bus
	SpatialIndex *physics.Octree
	Status       BattleStatus
	WinningTeam  int     // team ID of winner, -1 while undecided
	ElapsedTime  float64 // ms

	CustomWinCondition WinCondition

	// Resource monitoring
	Monitor *pool.Monitor

	audioEngine *audio.Engine
	logger      *logging.Logger
}

// NewBattle creates a battle from the given configuration. The class data
// is resolved and validated here; any problem is fatal.
func NewBattle(cfg *config.BattleConfig) (*Battle, error) {
	classes, err := entity.LoadClasses(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	if err := validation.ValidateClassSet(classes); err != nil {
		return nil, fmt.Errorf("validating classes: %w", err)
	}

	b := &Battle{
		Config:        cfg,
		Classes:       classes,
		Crafts:        make(map[entity.ID]*entity.Spacecraft),
		Teams:         make(map[int]*Team),
		creditedKills: make(map[entity.ID]bool),
		EventBus:      event.NewEventBus(),
		WinningTeam:   -1,
		audioEngine:   audio.NewSilentEngine(),
		logger:        logging.NewLogger(),
	}

	padding := 0.0
	for _, sc := range classes.Spacecraft {
		if sc.HullRadius > padding {
			padding = sc.HullRadius
		}
	}
	b.Env = &entity.Env{
		Params:       &cfg.Simulation,
		Events:       b.EventBus,
		QueryPadding: padding,
	}
	b.Env.Projectiles = pool.NewArena(cfg.ProjectilePoolSize, func() *entity.Projectile {
		return entity.NewProjectile(b.Env)
	})
	b.Env.Explosions = pool.NewArena(cfg.ExplosionPoolSize, func() *entity.Explosion {
		return entity.NewExplosion(b.Env)
	})

	b.initSpatialIndex()
	b.initTeams()
	b.registerEventHandlers()

	return b, nil
}

// SetAudioEngine swaps in a live audio engine; the battle is silent until
// one is set
func (b *Battle) SetAudioEngine(engine *audio.Engine) {
	b.audioEngine = engine
}

// InitializeMonitor starts resource monitoring with environment
// configuration. Called separately so headless tests can skip the
// background goroutine.
func (b *Battle) InitializeMonitor() error {
	envConfig, err := config.LoadConfigFromEnv()
	if err != nil {
		envConfig = &config.EnvironmentConfig{
			MaxMemoryMB:           500,
			MaxGoroutines:         1000,
			ShutdownTimeout:       30 * time.Second,
			ResourceCheckInterval: 10 * time.Second,
		}
	}
	b.Monitor = pool.NewMonitor(envConfig)
	b.Monitor.Watch("projectiles", b.Env.Projectiles.Utilization)
	b.Monitor.Watch("explosions", b.Env.Explosions.Utilization)
	return b.Monitor.Start()
}

// initSpatialIndex creates the octree covering the battle volume
func (b *Battle) initSpatialIndex() {
	half := b.Config.WorldSize / 2
	b.SpatialIndex = physics.NewOctree(
		physics.NewBox(
			physics.Vector3D{X: -half, Y: -half, Z: -half},
			physics.Vector3D{X: half, Y: half, Z: half},
		),
		b.Config.OctreeLeafCapacity,
	)
}

// initTeams builds the team table from configuration
func (b *Battle) initTeams() {
	for i, tc := range b.Config.Teams {
		b.Teams[i] = &Team{
			ID:    i,
			Name:  tc.Name,
			Color: tc.Color,
		}
	}
}

// registerEventHandlers wires battle bookkeeping to simulation events
func (b *Battle) registerEventHandlers() {
	b.EventBus.Subscribe(event.SpacecraftDestroyed, func(e event.Event) {
		se := e.(*event.SpacecraftEvent)
		if team, ok := b.Teams[se.TeamID]; ok && team.CraftCount > 0 {
			team.CraftCount--
		}
		b.logger.Info(context.Background(), "spacecraft destroyed",
			"spacecraft_id", se.SpacecraftID,
			"team_id", se.TeamID,
		)
	})
	b.EventBus.Subscribe(event.ProjectileHit, func(e event.Event) {
		he := e.(*event.HitEvent)
		b.creditKill(he.OriginID, he.TargetID)
	})
}

// creditKill attributes a destroying hit to the shooter's team. Later hits
// on the same wreck earn nothing.
func (b *Battle) creditKill(originID, targetID uint64) {
	target, ok := b.Crafts[entity.ID(targetID)]
	if !ok || target.Alive() || b.creditedKills[target.GetID()] {
		return
	}
	b.creditedKills[target.GetID()] = true
	origin, ok := b.Crafts[entity.ID(originID)]
	if !ok || origin.TeamID() == target.TeamID() {
		return
	}
	if team, ok := b.Teams[origin.TeamID()]; ok {
		team.Kills++
	}
}

// SpawnSpacecraft adds a craft of the named class to a team at the given
// pose
func (b *Battle) SpawnSpacecraft(className string, teamID int, position physics.Vector3D, orientation physics.Basis) (*entity.Spacecraft, error) {
	class, ok := b.Classes.Spacecraft[className]
	if !ok {
		return nil, fmt.Errorf("unknown spacecraft class %q", className)
	}
	team, ok := b.Teams[teamID]
	if !ok {
		return nil, fmt.Errorf("unknown team %d", teamID)
	}

	engineSound := b.craftEngineSound()
	fireSound := b.craftFireSound()

	b.EntityLock.Lock()
	defer b.EntityLock.Unlock()
	craft := entity.NewSpacecraft(class, teamID, b.Env, position, orientation, engineSound, fireSound)
	b.Crafts[craft.GetID()] = craft
	team.CraftCount++
	return craft, nil
}

// SpawnTeams places every configured team's craft on a ring around the
// origin, each facing the center. Crafts within a team spread out along the
// ring tangent so they do not overlap.
func (b *Battle) SpawnTeams() ([]*entity.Spacecraft, error) {
	radius := b.Config.WorldSize / 8
	teams := b.Config.Teams

	var spawned []*entity.Spacecraft
	for teamID, tc := range teams {
		class, ok := b.Classes.Spacecraft[tc.SpacecraftClass]
		if !ok {
			return nil, fmt.Errorf("team %q: unknown spacecraft class %q", tc.Name, tc.SpacecraftClass)
		}

		angle := 2 * math.Pi * float64(teamID) / float64(len(teams))
		anchor := physics.Vector3D{
			X: radius * math.Sin(angle),
			Z: radius * math.Cos(angle),
		}
		forward := anchor.Neg().Normalize()
		up := physics.Vector3D{Y: 1}
		right := up.Cross(forward)
		orientation := physics.Basis{Right: right, Up: up, Forward: forward}

		spacing := class.HullRadius * 4
		for i := 0; i < tc.Spacecraft; i++ {
			// 0, +1, -1, +2, -2, ... hull spacings along the tangent.
			step := float64((i + 1) / 2)
			if i%2 == 0 {
				step = -step
			}
			pos := anchor.Add(right.Scale(step * spacing))
			craft, err := b.SpawnSpacecraft(tc.SpacecraftClass, teamID, pos, orientation)
			if err != nil {
				return nil, err
			}
			spawned = append(spawned, craft)
		}
	}
	return spawned, nil
}

// craftEngineSound builds the looping hum clip for one craft, nil when no
// audio engine is running
func (b *Battle) craftEngineSound() *audio.Clip {
	if b.audioEngine == nil {
		return nil
	}
	return b.audioEngine.NewLoopingTone(80, 0.002)
}

// craftFireSound builds the fire-sound stacker for one craft. Without an
// audio engine the stacker still tracks its window but plays nothing.
func (b *Battle) craftFireSound() *audio.Stacker {
	if b.audioEngine == nil {
		return &audio.Stacker{StackTime: b.Config.Simulation.FireSoundStackTime}
	}
	return b.audioEngine.NewFireStacker(b.Config.Simulation.FireSoundStackTime)
}

// AttachController puts an AI pilot in a craft's seat
func (b *Battle) AttachController(c ai.Controller) {
	b.EntityLock.Lock()
	defer b.EntityLock.Unlock()
	b.controllers = append(b.controllers, c)
}

// NearestEnemy implements ai.TargetFinder: the closest living craft on any
// other team
func (b *Battle) NearestEnemy(of *entity.Spacecraft) *entity.Spacecraft {
	b.EntityLock.RLock()
	defer b.EntityLock.RUnlock()

	var nearest *entity.Spacecraft
	best := 0.0
	for _, craft := range b.Crafts {
		if !craft.Alive() || craft.TeamID() == of.TeamID() || craft == of {
			continue
		}
		d := craft.GetBody().Position.Distance(of.GetBody().Position)
		if nearest == nil || d < best {
			nearest = craft
			best = d
		}
	}
	return nearest
}

// Start opens the engagement
func (b *Battle) Start() {
	b.Running = true
	b.Status = BattleStatusActive
	b.EventBus.Publish(&event.BaseEvent{
		EventType: event.BattleStarted,
		Source:    b,
	})
	b.logger.Info(context.Background(), "battle started",
		"teams", len(b.Teams),
		"crafts", len(b.Crafts),
	)
}

// Stop halts the battle
func (b *Battle) Stop() {
	b.Running = false
	if b.Status != BattleStatusEnded {
		b.Status = BattleStatusEnded
	}
	b.EventBus.Publish(&event.BaseEvent{
		EventType: event.BattleEnded,
		Source:    b,
	})
}

// Maximum dt accepted per tick; anything longer (debugger pause, laggy
// host) integrates as this instead
const maxTickLength = 100.0

// Update advances the battle by dt milliseconds
func (b *Battle) Update(dt float64) {
	if dt <= 0 {
		return
	}
	if dt > maxTickLength {
		dt = maxTickLength
	}

	// Controllers run outside the entity lock so they can use the public
	// query API (NearestEnemy takes a read lock).
	b.EntityLock.Lock()
	if b.Status == BattleStatusActive {
		b.ElapsedTime += dt
	}
	b.populateSpatialIndex()
	for _, craft := range b.Crafts {
		craft.Maneuvering().SetTickLength(dt)
	}
	controllers := make([]ai.Controller, len(b.controllers))
	copy(controllers, b.controllers)
	b.EntityLock.Unlock()

	for _, c := range controllers {
		c.Act(dt)
	}

	b.EntityLock.Lock()
	defer b.EntityLock.Unlock()
	b.updateCrafts(dt)
	b.updateProjectiles(dt)
	b.updateExplosions(dt)
	b.checkWinConditions()
	b.CurrentTick++
}

// populateSpatialIndex rebuilds the octree from the living crafts. Wrecks
// stay out: projectiles fly through debris.
func (b *Battle) populateSpatialIndex() {
	b.SpatialIndex.Clear()
	for _, craft := range b.Crafts {
		if craft.Alive() {
			b.SpatialIndex.Insert(craft.GetBody().Position, craft)
		}
	}
}

func (b *Battle) updateCrafts(dt float64) {
	for _, craft := range b.Crafts {
		craft.Update(dt)
	}
}

func (b *Battle) updateProjectiles(dt float64) {
	b.Env.Projectiles.ForEach(func(p *entity.Projectile) {
		p.Simulate(dt, b.SpatialIndex)
	})
}

func (b *Battle) updateExplosions(dt float64) {
	b.Env.Explosions.ForEach(func(e *entity.Explosion) {
		e.Simulate(dt)
	})
}

// checkWinConditions ends the battle when a custom condition fires or only
// one team still has living crafts
func (b *Battle) checkWinConditions() {
	if b.Status != BattleStatusActive {
		return
	}
	if b.CustomWinCondition != nil {
		if winner, decided := b.CustomWinCondition.CheckWinner(b); decided {
			b.endBattle(winner)
			return
		}
	}
	b.checkElimination()
}

// checkElimination declares the last team standing the winner
func (b *Battle) checkElimination() {
	survivors := 0
	lastTeam := -1
	for id, team := range b.Teams {
		if team.CraftCount > 0 {
			survivors++
			lastTeam = id
		}
	}
	// With one team configured there is nothing to win
	if len(b.Teams) > 1 && survivors <= 1 {
		b.endBattle(lastTeam)
	}
}

func (b *Battle) endBattle(winner int) {
	b.Status = BattleStatusEnded
	b.WinningTeam = winner
	b.EventBus.Publish(&event.BaseEvent{
		EventType: event.BattleEnded,
		Source:    b,
	})
	b.logger.Info(context.Background(), "battle ended",
		"winning_team", winner,
		"elapsed_ms", b.ElapsedTime,
		"ticks", b.CurrentTick,
	)
}

// LivingCrafts returns the crafts still flying, for renderers and HUDs
func (b *Battle) LivingCrafts() []*entity.Spacecraft {
	b.EntityLock.RLock()
	defer b.EntityLock.RUnlock()
	crafts := make([]*entity.Spacecraft, 0, len(b.Crafts))
	for _, craft := range b.Crafts {
		if craft.Alive() {
			crafts = append(crafts, craft)
		}
	}
	return crafts
}

// Shutdown releases background resources
func (b *Battle) Shutdown(ctx context.Context) error {
	b.Stop()
	if b.Monitor != nil {
		return b.Monitor.Shutdown(ctx)
	}
	return nil
}
