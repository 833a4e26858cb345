package neatbird

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/klokare/evo"
	"gonum.org/v1/gonum/mat"
)

// Evaluator flies a single phenome on its own. The population-wide episode is
// run by Searcher; Evaluator is the fallback evo uses for lone phenomes.
type Evaluator struct {
	Harness   *Harness
	Threshold float64
	Context   context.Context
}

// Evaluate the flappy experiment with this phenome
func (e Evaluator) Evaluate(p evo.Phenome) (r evo.Result, err error) {
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}
	id := int64(p.ID)
	fitness, err := e.Harness.Evaluate(ctx, []Candidate{{ID: id, Jumper: &evoJumper{p}}})
	if err != nil {
		return r, err
	}
	f := fitness[id]
	return evo.Result{
		ID:      p.ID,
		Fitness: f,
		Solved:  f >= e.Threshold,
	}, nil
}

// errNoOutput is returned when a network activation yields nothing.
var errNoOutput = errors.New("network produced no output")

type evoJumper struct {
	p evo.Phenome
}

func (e *evoJumper) Jump(input []float64) (bool, error) {
	in := mat.NewDense(1, len(input), input)
	outputs, err := e.p.Activate(in)
	if err != nil {
		return false, fmt.Errorf("activating phenome %d: %w", e.p.ID, err)
	}
	if r, c := outputs.Dims(); r == 0 || c == 0 {
		return false, errNoOutput
	}

	var out []float64
	if rcv, ok := outputs.(mat.RawColViewer); ok {
		out = rcv.RawColView(0)
	} else {
		out = []float64{outputs.At(0, 0)}
	}

	return out[0] > 0.5, nil
}

// TrainEvaluator scores phenomes by how well they imitate a recorded human
// game, one Trace per line.
type TrainEvaluator struct {
	Log []byte
}

// Evaluate the phenome against the recorded traces
func (e TrainEvaluator) Evaluate(p evo.Phenome) (r evo.Result, err error) {
	samples := loadTrainingData(e.Log)
	if len(samples) == 0 {
		return r, errors.New("no training data")
	}

	width := len(samples[0].In)
	input := make([]float64, 0, len(samples)*width)
	for _, sample := range samples {
		if len(sample.In) != width {
			return r, fmt.Errorf("inconsistent trace width: %d and %d", width, len(sample.In))
		}
		input = append(input, sample.In...)
	}

	in := mat.NewDense(len(samples), width, input)
	outputs, err := p.Activate(in)
	if err != nil {
		return r, fmt.Errorf("training phenome %d: %w", p.ID, err)
	}

	oks := len(samples)
	for i, sample := range samples {
		if sample.Out != (outputs.At(i, 0) > .5) {
			oks--
		}
	}

	solved := oks > 9999*len(samples)/10000
	slog.Debug("phenome trained", "id", p.ID, "oks", oks, "samples", len(samples), "solved", solved)

	return evo.Result{
		ID:      p.ID,
		Fitness: math.Pow(float64(oks), 2),
		Solved:  solved,
	}, nil
}

func loadTrainingData(in []byte) []Trace {
	decoder := json.NewDecoder(bytes.NewBuffer(in))
	samples := []Trace{}
	for {
		data := Trace{}
		if err := decoder.Decode(&data); err != nil {
			break
		}
		samples = append(samples, data)
	}
	return samples
}

// ShowBest is an EVO listener which will output a summary of the best genome in the population to the log
func ShowBest(pop evo.Population) error {
	if len(pop.Genomes) == 0 {
		return nil
	}
	best := Best(pop)
	slog.Info("best genome",
		"generation", pop.Generation,
		"id", best.ID,
		"species", best.Species,
		"fitness", best.Fitness,
		"solved", best.Solved,
		"complexity", best.Complexity(),
	)
	return nil
}

// Best returns the best genome of a non-empty population.
func Best(pop evo.Population) evo.Genome {
	// Copy the genomes so we can sort them without affecting other listeners
	genomes := make([]evo.Genome, len(pop.Genomes))
	copy(genomes, pop.Genomes)

	// Sort so the best genome is at the end
	evo.SortBy(genomes, evo.BySolved, evo.ByFitness, evo.ByComplexity, evo.ByAge)
	return genomes[len(genomes)-1]
}
