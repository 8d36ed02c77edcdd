package main

import (
	"flag"

	"github.com/Garsondee/Siege-Sense/internal/game"
	"github.com/Garsondee/Siege-Sense/internal/logger"
	"github.com/Garsondee/Siege-Sense/internal/viewer"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	var levelID string
	var seed int64
	flag.StringVar(&levelID, "level", "tutorial", "level id to start on")
	flag.Int64Var(&seed, "seed", 1, "RNG seed for random-targeting defences")
	flag.Parse()

	logger.Init()
	log := logger.Component("viewer")

	g, err := viewer.New(game.DefaultLevels(), levelID, seed, log)
	if err != nil {
		log.WithError(err).Fatal("start viewer")
	}
	ebiten.SetWindowTitle("Siege Sense")
	ebiten.SetWindowSize(g.WindowSize())
	if err := ebiten.RunGame(g); err != nil {
		log.WithError(err).Fatal("run game")
	}
}
