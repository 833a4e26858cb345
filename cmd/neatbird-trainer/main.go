package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/klokare/evo"
	"github.com/klokare/evo/config"
	"github.com/klokare/evo/config/source"
	"github.com/klokare/evo/neat"

	"github.com/kpacha/neatbird"
	"github.com/kpacha/neatbird/bolt"
)

func main() {
	// Parse the command-line flags
	var (
		iter   = flag.Int("iterations", 100, "number of iterations for experiment")
		cpath  = flag.String("evo", "neatbird.json", "path to the evo configuration file")
		lpath  = flag.String("training", "trace.jsonl", "path to the training data file")
		dbPath = flag.String("db", "", "path to the champions database (empty disables it)")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	src, err := source.NewJSONFromFile(*cpath)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	cfg := config.Configurer{Source: source.Multi([]config.Source{
		source.Flag{},        // Check flags  first
		source.Environment{}, // Then check environment variables
		src,                  // Lastly, consult the configuration file
	})}
	exp := neat.NewExperiment(cfg)
	exp.AddSubscription(evo.Subscription{Event: evo.Completed, Callback: neatbird.ShowBest})

	if *dbPath != "" {
		client, err := bolt.New(*dbPath)
		if err != nil {
			log.Fatal(err.Error())
		}
		defer client.Close()
		boltWatcher := bolt.Evo{Client: client}
		exp.AddSubscription(evo.Subscription{Event: evo.Completed, Callback: boltWatcher.StoreBest})
	}

	// Run the experiment for a set number of iterations
	ctx, fn, cb := evo.WithIterations(context.Background(), *iter)
	defer fn() // ensure the context cancels
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: cb})

	// Stop the experiment if there is a solution
	ctx, fn, cb = evo.WithSolution(ctx)
	defer fn() // ensure the context cancels
	exp.AddSubscription(evo.Subscription{Event: evo.Evaluated, Callback: cb})

	logData, err := os.ReadFile(*lpath)
	if err != nil {
		log.Fatal("reading the training data:", err.Error())
	}

	evaluator := neatbird.TrainEvaluator{
		Log: logData,
	}

	// Execute the experiment
	if _, err = evo.Run(ctx, exp, evaluator); err != nil {
		log.Fatalf("%+v\n", err)
	}
}
