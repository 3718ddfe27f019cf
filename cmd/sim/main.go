// cmd/sim/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-armada/pkg/ai"
	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/engine"
	"github.com/opd-ai/go-armada/pkg/entity"
	"github.com/opd-ai/go-armada/pkg/logging"
	"github.com/opd-ai/go-armada/pkg/render"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	renderMode := flag.String("renderer", "terminal", "Renderer: 'terminal' or 'none'")
	tickMs := flag.Float64("tick", 20, "Simulation tick length in milliseconds")
	frameEvery := flag.Int("frame-every", 5, "Render one frame every N ticks")
	maxTime := flag.Duration("max-time", 0, "Stop after this wall-clock duration (0 = until a team wins)")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	battleConfig := loadConfig(ctx, logger, *configPath)

	battle, err := engine.NewBattle(battleConfig)
	if err != nil {
		logger.Error(ctx, "Failed to create battle", err)
		os.Exit(1)
	}

	if err := battle.InitializeMonitor(); err != nil {
		logger.Error(ctx, "Failed to start resource monitor", err)
		os.Exit(1)
	}

	crafts, err := battle.SpawnTeams()
	if err != nil {
		logger.Error(ctx, "Failed to spawn teams", err)
		os.Exit(1)
	}
	for _, craft := range crafts {
		battle.AttachController(ai.NewFighterController(craft, battle))
	}

	renderer := buildRenderer(*renderMode)

	logger.Info(ctx, "Starting battle",
		"teams", len(battleConfig.Teams),
		"crafts", len(crafts),
		"tick_ms", *tickMs,
	)
	battle.Start()

	runLoop(ctx, logger, battle, renderer, *tickMs, *frameEvery, *maxTime)

	// Let the monitor drain before exiting
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := battle.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Shutdown failed", err)
	}
	reportOutcome(ctx, logger, battle)
}

// loadConfig loads the configuration file, falling back to defaults when the
// file does not exist.
func loadConfig(ctx context.Context, logger *logging.Logger, path string) *config.BattleConfig {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", path,
		)
		os.Exit(1)
	}
	return cfg
}

func buildRenderer(mode string) render.Renderer {
	switch mode {
	case "terminal":
		return render.NewTerminalRenderer(100, 36, 80, os.Stdout)
	default:
		return render.NewNullRenderer()
	}
}

// runLoop ticks the battle on a fixed interval until it ends, the deadline
// passes, or a signal arrives.
func runLoop(ctx context.Context, logger *logging.Logger, battle *engine.Battle,
	renderer render.Renderer, tickMs float64, frameEvery int, maxTime time.Duration,
) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(tickMs * float64(time.Millisecond)))
	defer ticker.Stop()

	var deadline <-chan time.Time
	if maxTime > 0 {
		deadline = time.After(maxTime)
	}

	frame := 0
	for {
		select {
		case <-sigChan:
			logger.Info(ctx, "Interrupted, shutting down")
			return
		case <-deadline:
			logger.Info(ctx, "Time limit reached")
			return
		case <-ticker.C:
			battle.Update(tickMs)
			if battle.Status == engine.BattleStatusEnded {
				return
			}
			frame++
			if frameEvery > 0 && frame%frameEvery == 0 {
				drawFrame(battle, renderer)
			}
		}
	}
}

// drawFrame renders one top-down frame centered on the first living craft.
func drawFrame(battle *engine.Battle, renderer render.Renderer) {
	if tr, ok := renderer.(*render.TerminalRenderer); ok {
		if living := battle.LivingCrafts(); len(living) > 0 {
			tr.SetCenter(living[0].GetBody().Position)
		}
	}

	renderer.Clear()
	battle.EntityLock.RLock()
	for _, craft := range battle.Crafts {
		renderer.RenderSpacecraft(craft)
	}
	battle.Env.Projectiles.ForEach(func(p *entity.Projectile) {
		renderer.RenderProjectile(p)
	})
	battle.Env.Explosions.ForEach(func(e *entity.Explosion) {
		renderer.RenderExplosion(e)
	})
	battle.EntityLock.RUnlock()
	renderer.Present()
}

func reportOutcome(ctx context.Context, logger *logging.Logger, battle *engine.Battle) {
	if battle.Status != engine.BattleStatusEnded {
		logger.Info(ctx, "Battle unresolved",
			"ticks", battle.CurrentTick,
		)
		return
	}
	winner := "none"
	if team, ok := battle.Teams[battle.WinningTeam]; ok {
		winner = team.Name
	}
	logger.Info(ctx, "Battle over",
		"winner", winner,
		"ticks", battle.CurrentTick,
		"elapsed_ms", battle.ElapsedTime,
	)
}
