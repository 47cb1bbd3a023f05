package main

import (
	"flag"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Warband/internal/game"
	"github.com/Garsondee/Warband/internal/logger"
	"github.com/Garsondee/Warband/internal/sim"
)

func main() {
	var tuningPath string
	var scenario string
	var seed int64

	flag.StringVar(&tuningPath, "tuning", "", "YAML tuning overlay (empty for built-in defaults)")
	flag.StringVar(&scenario, "scenario", "mixed", "scenario name")
	flag.Int64Var(&seed, "seed", 1, "terrain seed")
	flag.Parse()

	logger.Init()

	tuning := sim.DefaultTuning()
	if tuningPath != "" {
		t, err := sim.LoadTuning(tuningPath)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to load tuning.")
		}
		tuning = t
	}

	g, err := game.New(game.Options{Tuning: tuning, Scenario: scenario, Seed: seed})
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to build scenario.")
	}

	ebiten.SetWindowTitle("Warband")
	ebiten.SetWindowSize(g.Size())
	if err := ebiten.RunGame(g); err != nil {
		logger.Log.WithError(err).Fatal("Game loop exited.")
	}
}
