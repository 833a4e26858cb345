package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/klokare/evo"
	"github.com/klokare/evo/config"
	"github.com/klokare/evo/config/source"
	"github.com/klokare/evo/neat"

	"github.com/kpacha/neatbird"
	"github.com/kpacha/neatbird/assets"
	"github.com/kpacha/neatbird/bolt"
	"github.com/kpacha/neatbird/render"
	"github.com/kpacha/neatbird/telemetry"
)

func main() {
	// Parse the command-line flags
	var (
		iter      = flag.Int("iterations", 150, "number of iterations for experiment")
		cpath     = flag.String("config", "", "path to the game configuration file (yaml)")
		epath     = flag.String("evo", "neatbird.json", "path to the evo configuration file")
		dbPath    = flag.String("db", "neatbird.db", "path to the champions database")
		outputDir = flag.String("output-dir", "", "directory for the generation telemetry")
		seed      = flag.Int64("seed", 0, "random seed (0 uses the clock)")
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
	slog.Info("starting", "seed", *seed)

	bundle, err := assets.Load(assets.Embedded(), cfg)
	if err != nil {
		log.Fatal(err.Error())
	}

	client, err := bolt.New(*dbPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer client.Close()

	records, err := telemetry.Create(*outputDir)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer records.Close()
	if *outputDir != "" {
		if err := cfg.WriteYAML(filepath.Join(*outputDir, "config.yaml")); err != nil {
			log.Fatal(err.Error())
		}
	}

	g := render.NewGame(cfg, bundle)
	harness := neatbird.NewHarness(cfg, bundle.Masks, g, rand.New(rand.NewSource(*seed)), slog.Default())
	boltWatcher := bolt.Evo{Client: client, Harness: harness}

	src, err := source.NewJSONFromFile(*epath)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	ecfg := config.Configurer{Source: source.Multi([]config.Source{
		source.Flag{},        // Check flags  first
		source.Environment{}, // Then check environment variables
		src,                  // Lastly, consult the configuration file
	})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exp := neat.NewExperiment(ecfg)
	exp.Searcher = neatbird.Searcher{Harness: harness, Threshold: cfg.Optimizer.FitnessThreshold, Context: ctx}
	exp.AddSubscription(evo.Subscription{Event: evo.Completed, Callback: neatbird.ShowBest})
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: neatbird.ShowBest})
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: boltWatcher.StoreBest})
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: func(pop evo.Population) error {
		fitness := make([]float64, len(pop.Genomes))
		solved := false
		for i, genome := range pop.Genomes {
			fitness[i] = genome.Fitness
			solved = solved || genome.Solved
		}
		return records.Write(telemetry.NewRecord("evo", pop.Generation, fitness, harness.Last(), solved))
	}})

	// Run the experiment for a set number of iterations
	ctx, fn, cb := evo.WithIterations(ctx, *iter)
	defer fn() // ensure the context cancels
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: cb})

	// Stop the experiment if there is a solution
	ctx, fn, cb = evo.WithSolution(ctx)
	defer fn() // ensure the context cancels
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: cb})

	evaluator := neatbird.Evaluator{
		Harness:   harness,
		Threshold: cfg.Optimizer.FitnessThreshold,
		Context:   ctx,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Execute the experiment
		if _, err := evo.Run(ctx, exp, evaluator); err != nil && !errors.Is(err, neatbird.ErrQuit) {
			slog.Error("experiment failed", "error", err)
			return
		}
		slog.Info("experiment finished", "generations", harness.Generation())
	}()

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle("Flappy Gopher (NEAT edition)")
	ebiten.SetTPS(cfg.Screen.TPS)
	ebiten.SetRunnableOnUnfocused(true)
	if err := ebiten.RunGame(g); err != nil {
		slog.Error("window closed", "error", err)
	}
	g.Close()
	cancel()
	<-done
}
