package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/yaricom/goNEAT/v4/experiment"
	"github.com/yaricom/goNEAT/v4/neat"

	"github.com/kpacha/neatbird"
	"github.com/kpacha/neatbird/bolt"
	"github.com/kpacha/neatbird/goneat"
	"github.com/kpacha/neatbird/telemetry"
	"github.com/kpacha/neatbird/term"
)

func main() {
	var (
		cpath     = flag.String("config", "", "path to the game configuration file (yaml)")
		npath     = flag.String("neat", "", "path to the goNEAT options file (defaults are used if empty)")
		dbPath    = flag.String("db", "", "path to the champions database (empty disables it)")
		outputDir = flag.String("output-dir", "", "directory for the generation telemetry")
		view      = flag.String("view", "none", "how to show the episodes: none or term")
		seed      = flag.Int64("seed", 0, "random seed (0 uses the clock)")
	)
	flag.Parse()

	// runs last, once the terminal has been restored
	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	cfg, err := neatbird.LoadConfig(*cpath)
	if err != nil {
		log.Fatal(err.Error())
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	var driver neatbird.Driver
	logOut := os.Stdout
	switch *view {
	case "none":
		driver = neatbird.Loop{}
	case "term":
		screen, err := term.New(cfg)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer screen.Close()
		driver = neatbird.Loop{Clock: neatbird.NewFixedStep(cfg.Screen.TPS), Input: screen, Presenter: screen}
		// the terminal is busy drawing
		logOut = os.Stderr
	default:
		log.Fatalf("unknown view %q", *view)
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)
	logger.Info("starting", "seed", *seed, "view", *view)

	opts, err := goneat.LoadOptions(*npath, cfg.Optimizer)
	if err != nil {
		log.Fatal(err.Error())
	}

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

	var client *bolt.Client
	if *dbPath != "" {
		client, err = bolt.New(*dbPath)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer client.Close()
	}

	rng := rand.New(rand.NewSource(*seed))
	harness := neatbird.NewHarness(cfg, neatbird.RectMasks(cfg), driver, rng, logger)

	evaluator := &goneat.Evaluator{
		Harness:   harness,
		Threshold: cfg.Optimizer.FitnessThreshold,
		Logger:    logger,
		OnGeneration: func(s goneat.Summary) error {
			if err := records.Write(telemetry.NewRecord("goneat", s.Generation, s.Fitness, s.Episode, s.Solved)); err != nil {
				return err
			}
			if client == nil {
				return nil
			}
			genome, err := goneat.EncodeGenome(s.Champion.Genotype)
			if err != nil {
				return err
			}
			return client.StoreChampion(bolt.Champion{
				Optimizer:  "goneat",
				Generation: s.Generation,
				GenomeID:   int64(s.Champion.Genotype.Id),
				Fitness:    s.Champion.Fitness,
				Score:      s.Episode.Score,
				Ticks:      s.Episode.Ticks,
				Genome:     genome,
			})
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exp := experiment.Experiment{
		Id:       0,
		Trials:   make(experiment.Trials, opts.NumRuns),
		RandSeed: *seed,
	}
	start := time.Now()
	err = exp.Execute(neat.NewContext(ctx, opts), goneat.StartGenome(1, rng), evaluator, nil)
	switch {
	case errors.Is(err, neatbird.ErrQuit), errors.Is(err, context.Canceled):
		logger.Info("experiment stopped", "generations", harness.Generation())
	case err != nil:
		logger.Error("experiment failed", "error", err)
		exitCode = 1
	default:
		logger.Info("experiment finished", "generations", harness.Generation(), "elapsed", time.Since(start))
	}
}
