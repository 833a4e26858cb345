package goneat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yaricom/goNEAT/v4/experiment"
	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"

	"github.com/kpacha/neatbird"
)

// Summary describes an evaluated generation.
type Summary struct {
	Generation int
	Fitness    []float64
	Champion   *genetics.Organism
	Solved     bool
	Episode    neatbird.EpisodeStats
}

// Evaluator is an experiment.GenerationEvaluator flying every organism of a
// generation together in a single episode.
type Evaluator struct {
	Harness   *neatbird.Harness
	Threshold float64
	Logger    *slog.Logger

	// OnGeneration, if set, is called after every evaluated generation.
	OnGeneration func(Summary) error
}

// GenerationEvaluate implements experiment.GenerationEvaluator.
func (e *Evaluator) GenerationEvaluate(ctx context.Context, pop *genetics.Population, epoch *experiment.Generation) error {
	options, ok := neat.FromContext(ctx)
	if !ok {
		return neat.ErrNEATOptionsNotFound
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// organisms are identified by their index, genome ids are not
	// guaranteed to be unique across species
	population := make([]neatbird.Candidate, 0, len(pop.Organisms))
	for i, org := range pop.Organisms {
		brain, err := NewBrain(org.Phenotype)
		if err != nil {
			return fmt.Errorf("organism %d: %w", org.Genotype.Id, err)
		}
		population = append(population, neatbird.Candidate{ID: int64(i), Jumper: brain})
	}

	fitness, err := e.Harness.Evaluate(ctx, population)
	if err != nil {
		return err
	}

	values := make([]float64, len(pop.Organisms))
	var best *genetics.Organism
	for i, org := range pop.Organisms {
		org.Fitness = fitness[int64(i)]
		org.IsWinner = org.Fitness >= e.Threshold
		values[i] = org.Fitness
		if best == nil || org.Fitness > best.Fitness {
			best = org
		}

		if org.IsWinner && (epoch.Champion == nil || org.Fitness > epoch.Champion.Fitness) {
			epoch.Solved = true
			epoch.WinnerNodes = len(org.Genotype.Nodes)
			epoch.WinnerGenes = org.Genotype.Extrons()
			epoch.WinnerEvals = options.PopSize*epoch.Id + org.Genotype.Id
			epoch.Champion = org
		}
	}

	// Fill statistics about current epoch
	epoch.FillPopulationStatistics(pop)

	logger.Info("generation evaluated",
		"generation", epoch.Id,
		"best_fitness", best.Fitness,
		"best_genome", best.Genotype.Id,
		"species", len(pop.Species),
		"solved", epoch.Solved,
	)

	if e.OnGeneration == nil {
		return nil
	}
	return e.OnGeneration(Summary{
		Generation: epoch.Id,
		Fitness:    values,
		Champion:   best,
		Solved:     epoch.Solved,
		Episode:    e.Harness.Last(),
	})
}
