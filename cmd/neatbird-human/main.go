package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kpacha/neatbird"
	"github.com/kpacha/neatbird/assets"
	"github.com/kpacha/neatbird/render"
)

func main() {
	var (
		cpath = flag.String("config", "", "path to the game configuration file (yaml)")
		trace = flag.String("trace", "", "record every decision to this file, for neatbird-trainer")
		seed  = flag.Int64("seed", 0, "random seed (0 uses the clock)")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := neatbird.LoadConfig(*cpath)
	if err != nil {
		log.Fatal(err.Error())
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	bundle, err := assets.Load(assets.Embedded(), cfg)
	if err != nil {
		log.Fatal(err.Error())
	}

	g := render.NewGame(cfg, bundle)

	var jumper neatbird.Jumper = neatbird.InteractiveJumper{Input: g}
	if *trace != "" {
		file, err := os.Create(*trace)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer file.Close()
		jumper = neatbird.InteractiveLogJumper{Input: g, Out: file}
	}

	harness := neatbird.NewHarness(cfg, bundle.Masks, g, rand.New(rand.NewSource(*seed)), slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fitness, err := harness.Evaluate(ctx, []neatbird.Candidate{{ID: 1, Jumper: jumper}})
		if err != nil && !errors.Is(err, neatbird.ErrQuit) {
			slog.Error("game interrupted", "error", err)
		}
		last := harness.Last()
		slog.Info("game over", "fitness", fitness[1], "score", last.Score, "ticks", last.Ticks)
	}()

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle("Flappy Gopher")
	ebiten.SetTPS(cfg.Screen.TPS)
	if err := ebiten.RunGame(g); err != nil {
		slog.Error("window closed", "error", err)
	}
	g.Close()
	cancel()
	<-done
}
