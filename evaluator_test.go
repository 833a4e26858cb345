package neatbird

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/klokare/evo"
	"gonum.org/v1/gonum/mat"
)

// constNet answers every row of its input with the same value.
type constNet struct {
	out float64
	err error
}

func (n constNet) Activate(in mat.Matrix) (mat.Matrix, error) {
	if n.err != nil {
		return nil, n.err
	}
	r, _ := in.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, n.out)
	}
	return out, nil
}

// lowNet jumps whenever the bird is below the given height.
type lowNet float64

func (n lowNet) Activate(in mat.Matrix) (mat.Matrix, error) {
	r, _ := in.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if in.At(i, 0) > float64(n) {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

func TestSearcher_Search(t *testing.T) {
	h := newTestHarness(DefaultConfig(), nil)
	s := Searcher{Harness: h, Threshold: 10}

	phenomes := []evo.Phenome{
		{ID: 1, Network: constNet{out: 0}},
		{ID: 2, Network: constNet{err: errors.New("boom")}},
		{ID: 3, Network: lowNet(300)},
	}
	results, err := s.Search(Evaluator{Harness: h}, phenomes)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("unexpected results: %+v", results)
	}
	for i, r := range results[:2] {
		if r.ID != phenomes[i].ID || math.Abs(r.Fitness-2.3) > 1e-9 || r.Solved {
			t.Errorf("unexpected result: %+v", r)
		}
	}
	if results[2].Fitness <= 2.3 {
		t.Errorf("the hovering phenome should outlive the rest: %+v", results[2])
	}
	if h.Generation() != 1 {
		t.Errorf("the population was not flown together: %d episodes", h.Generation())
	}
	if f := h.Last().ControllerFailures; f != 23 {
		t.Errorf("unexpected controller failures: %d", f)
	}
}

func TestSearcher_Search_single(t *testing.T) {
	h := newTestHarness(DefaultConfig(), nil)
	s := Searcher{Harness: h, Threshold: 2}

	results, err := s.Search(Evaluator{Harness: h, Threshold: 2}, []evo.Phenome{{ID: 5, Network: constNet{}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != 5 || !results[0].Solved {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestSearcher_Search_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newTestHarness(DefaultConfig(), nil)
	s := Searcher{Harness: h, Context: ctx}

	phenomes := []evo.Phenome{{ID: 1, Network: constNet{}}, {ID: 2, Network: constNet{}}}
	if _, err := s.Search(Evaluator{Harness: h}, phenomes); !errors.Is(err, context.Canceled) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTrainEvaluator(t *testing.T) {
	log := []byte(`{"In":[600,300,100],"Out":true}
{"In":[300,100,300],"Out":false}
{"In":[500,300,100],"Out":true}
{"In":[700,400,200],"Out":true}
`)
	e := TrainEvaluator{Log: log}

	r, err := e.Evaluate(evo.Phenome{ID: 1, Network: lowNet(550)})
	if err != nil {
		t.Fatal(err)
	}
	// three out of four decisions match
	if r.Fitness != 9 || r.Solved {
		t.Errorf("unexpected result: %+v", r)
	}

	r, err = e.Evaluate(evo.Phenome{ID: 2, Network: lowNet(400)})
	if err != nil {
		t.Fatal(err)
	}
	if r.Fitness != 16 || !r.Solved {
		t.Errorf("unexpected result: %+v", r)
	}

	if _, err := (TrainEvaluator{}).Evaluate(evo.Phenome{ID: 3, Network: lowNet(0)}); err == nil {
		t.Error("expecting an error without training data")
	}
}
