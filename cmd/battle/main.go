// cmd/battle/main.go
package main

import (
	"flag"
	"log"
	"os"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-armada/pkg/ai"
	"github.com/opd-ai/go-armada/pkg/audio"
	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/engine"
	engorender "github.com/opd-ai/go-armada/pkg/render/engo"
	"github.com/opd-ai/go-armada/pkg/validation"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	callsign := flag.String("callsign", "Pilot", "Pilot callsign shown in the window title")
	playerTeam := flag.Int("team", 0, "Team the player flies for")
	fullscreen := flag.Bool("fullscreen", false, "Run in fullscreen mode")
	width := flag.Int("width", 1024, "Window width")
	height := flag.Int("height", 768, "Window height")
	mute := flag.Bool("mute", false, "Disable audio output")
	flag.Parse()

	var battleConfig *config.BattleConfig
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		log.Printf("Configuration file not found, using default configuration")
		battleConfig = config.DefaultConfig()
	} else {
		battleConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if *playerTeam < 0 || *playerTeam >= len(battleConfig.Teams) {
		log.Fatalf("Team %d not in configuration (%d teams)", *playerTeam, len(battleConfig.Teams))
	}
	name, err := validation.ValidatePilotName(*callsign)
	if err != nil {
		log.Fatalf("Invalid callsign: %v", err)
	}

	battle, err := engine.NewBattle(battleConfig)
	if err != nil {
		log.Fatalf("Failed to create battle: %v", err)
	}
	if !*mute {
		audioEngine, err := audio.NewEngine()
		if err != nil {
			log.Printf("Audio unavailable, running silent: %v", err)
		} else {
			battle.SetAudioEngine(audioEngine)
		}
	}

	crafts, err := battle.SpawnTeams()
	if err != nil {
		log.Fatalf("Failed to spawn teams: %v", err)
	}

	// The first craft of the player's team is flown by keyboard, everyone
	// else gets an AI pilot.
	playerID := crafts[0].GetID()
	playerFound := false
	for _, craft := range crafts {
		if !playerFound && craft.TeamID() == *playerTeam {
			playerID = craft.GetID()
			playerFound = true
			continue
		}
		battle.AttachController(ai.NewFighterController(craft, battle))
	}

	scene := engorender.NewBattleScene(battle, playerID)
	opts := engo.RunOptions{
		Title:      "Armada - " + name,
		Width:      *width,
		Height:     *height,
		Fullscreen: *fullscreen,
		VSync:      true,
	}
	engo.Run(opts, scene)
}
