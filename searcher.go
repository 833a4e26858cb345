package neatbird

import (
	"context"

	"github.com/klokare/evo"
)

// Searcher evaluates all the phenomes at once, flying them together in a
// single episode.
type Searcher struct {
	Harness   *Harness
	Threshold float64
	Context   context.Context
}

// Search the solution space with the phenomes
func (s Searcher) Search(eval evo.Evaluator, phenomes []evo.Phenome) (results []evo.Result, err error) {
	if len(phenomes) == 1 {
		r, err := eval.Evaluate(phenomes[0])
		if err != nil {
			return nil, err
		}
		return []evo.Result{r}, nil
	}

	ctx := s.Context
	if ctx == nil {
		ctx = context.Background()
	}

	population := make([]Candidate, len(phenomes))
	for i, p := range phenomes {
		population[i] = Candidate{ID: int64(p.ID), Jumper: &evoJumper{p}}
	}

	fitness, err := s.Harness.Evaluate(ctx, population)
	if err != nil {
		return nil, err
	}

	results = make([]evo.Result, 0, len(phenomes))
	for _, p := range phenomes {
		f := fitness[int64(p.ID)]
		results = append(results, evo.Result{
			ID:      p.ID,
			Fitness: f,
			Solved:  f >= s.Threshold,
		})
	}
	return results, nil
}
