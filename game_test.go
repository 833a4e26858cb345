package neatbird

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func pinnedGapConfig() *Config {
	cfg := DefaultConfig()
	cfg.Pipes.GapMin, cfg.Pipes.GapMax = 200, 200
	return cfg
}

func newTestEpisode(t *testing.T, cfg *Config, candidates []Candidate) *Episode {
	ep, err := NewEpisode(cfg, RectMasks(cfg), rand.New(rand.NewSource(1)), candidates)
	if err != nil {
		t.Fatal(err)
	}
	return ep
}

func fallingCandidates(n int) []Candidate {
	res := make([]Candidate, n)
	for i := range res {
		res[i] = Candidate{ID: int64(i + 1), Jumper: &ScriptedJumper{}}
	}
	return res
}

func run(ep *Episode) {
	for !ep.Done() {
		ep.Step()
	}
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEpisode_freeFall(t *testing.T) {
	ep := newTestEpisode(t, DefaultConfig(), fallingCandidates(1))
	run(ep)

	if ep.Tick() != 23 {
		t.Errorf("unexpected ticks: %d", ep.Tick())
	}
	if ep.Score() != 0 {
		t.Errorf("unexpected score: %d", ep.Score())
	}
	if y := ep.Bird(0).Y; y != 691 {
		t.Errorf("unexpected final height: %v", y)
	}
	if f := ep.Fitness()[1]; !almostEqual(f, 2.3) {
		t.Errorf("unexpected fitness: %v", f)
	}
	if s := ep.Stats(); s.OutOfBounds != 1 || s.Collisions != 0 || s.ControllerFailures != 0 {
		t.Errorf("unexpected stats: %+v", s)
	}

	// stepping a finished episode changes nothing
	ep.Step()
	if ep.Tick() != 23 {
		t.Errorf("finished episode kept running: %d", ep.Tick())
	}
}

func TestEpisode_scriptedFlight(t *testing.T) {
	cfg := pinnedGapConfig()
	candidates := fallingCandidates(5)
	candidates[0].Jumper = &ScriptedJumper{Every: 13}
	ep := newTestEpisode(t, cfg, candidates)

	passedAt := -1
	for !ep.Done() {
		ep.Step()
		if passedAt < 0 && ep.Score() == 1 {
			passedAt = ep.Tick()
			if ep.Alive() != 1 {
				t.Errorf("unexpected survivors after the first pipe: %d", ep.Alive())
			}
		}
	}

	if passedAt != 76 {
		t.Errorf("first pipe passed at tick %d", passedAt)
	}
	if ep.Tick() != 215 || ep.Score() != 2 {
		t.Errorf("unexpected end of episode: tick %d score %d", ep.Tick(), ep.Score())
	}

	fitness := ep.Fitness()
	if len(fitness) != 5 {
		t.Fatalf("unexpected fitness map: %v", fitness)
	}
	// 215 ticks alive, two pipes passed and a crash into the third
	if f := fitness[1]; !almostEqual(f, 0.1*215+2*5-1) {
		t.Errorf("unexpected fitness for the flyer: %v", f)
	}
	for id := int64(2); id <= 5; id++ {
		if f := fitness[id]; !almostEqual(f, 2.3) {
			t.Errorf("unexpected fitness for %d: %v", id, f)
		}
	}
	if s := ep.Stats(); s.Collisions != 1 || s.OutOfBounds != 4 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestEpisode_scoreIgnoresPopulationSize(t *testing.T) {
	cfg := pinnedGapConfig()

	alone := newTestEpisode(t, cfg, []Candidate{{ID: 7, Jumper: &ScriptedJumper{Every: 13}}})
	run(alone)

	crowd := fallingCandidates(5)
	crowd[3].Jumper = &ScriptedJumper{Every: 13}
	together := newTestEpisode(t, cfg, crowd)
	run(together)

	if alone.Score() != together.Score() || alone.Tick() != together.Tick() {
		t.Errorf("alone: score %d tick %d, together: score %d tick %d",
			alone.Score(), alone.Tick(), together.Score(), together.Tick())
	}
	if a, b := alone.Fitness()[7], together.Fitness()[4]; !almostEqual(a, b) {
		t.Errorf("fitness depends on the population: %v vs %v", a, b)
	}
}

func TestEpisode_controllerFailure(t *testing.T) {
	broken := JumperFunc(func([]float64) (bool, error) { return true, errors.New("boom") })
	ep := newTestEpisode(t, DefaultConfig(), []Candidate{{ID: 1, Jumper: broken}})
	run(ep)

	if ep.Tick() != 23 {
		t.Errorf("a failing controller should not jump: %d ticks", ep.Tick())
	}
	if s := ep.Stats(); s.ControllerFailures != 23 {
		t.Errorf("unexpected failures: %d", s.ControllerFailures)
	}
	if f := ep.Fitness()[1]; !almostEqual(f, 2.3) {
		t.Errorf("unexpected fitness: %v", f)
	}
}

func TestNewEpisode_errors(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))

	if _, err := NewEpisode(cfg, RectMasks(cfg), rng, nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("unexpected error: %v", err)
	}
	dup := []Candidate{{ID: 1, Jumper: &ScriptedJumper{}}, {ID: 1, Jumper: &ScriptedJumper{}}}
	if _, err := NewEpisode(cfg, RectMasks(cfg), rng, dup); err == nil {
		t.Error("expecting an error for duplicated ids")
	}
	if _, err := NewEpisode(cfg, RectMasks(cfg), rng, []Candidate{{ID: 1}}); err == nil {
		t.Error("expecting an error for a missing jumper")
	}
	if _, err := NewEpisode(cfg, Masks{}, rng, fallingCandidates(1)); err == nil {
		t.Error("expecting an error for missing masks")
	}

	bad := DefaultConfig()
	bad.Pipes.Gap = 0
	if _, err := NewEpisode(bad, RectMasks(bad), rng, fallingCandidates(1)); !errors.Is(err, ErrInvalidObstacleConfig) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEpisode_targetPipe(t *testing.T) {
	cfg := DefaultConfig()
	var got []float64
	recorder := JumperFunc(func(in []float64) (bool, error) {
		got = in
		return false, nil
	})
	ep := newTestEpisode(t, cfg, []Candidate{{ID: 1, Jumper: recorder}})

	next := ep.factory.New(600)
	next.Height, next.Bottom = 300, 500
	ep.pipes = append(ep.pipes, next)

	ep.pipes[0].X = 126
	if i := ep.pipeIndex(); i != 0 {
		t.Errorf("the bird is still under the first pipe, got %d", i)
	}
	ep.pipes[0].X = 125
	if i := ep.pipeIndex(); i != 1 {
		t.Errorf("the bird left the first pipe behind, got %d", i)
	}

	ep.Step()
	want := []float64{351.5, 51.5, 148.5}
	if len(got) != len(want) {
		t.Fatalf("unexpected sensors: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unexpected sensors: %v, want %v", got, want)
			break
		}
	}
}

func TestEpisode_frame(t *testing.T) {
	cfg := DefaultConfig()
	ep, err := NewEpisode(cfg, RectMasks(cfg), rand.New(rand.NewSource(1)), fallingCandidates(3), WithGeneration(4))
	if err != nil {
		t.Fatal(err)
	}

	f := ep.Frame()
	if f.Generation != 4 || f.Alive != 3 || f.Tick != 0 || f.Score != 0 {
		t.Errorf("unexpected frame: %+v", f)
	}
	if len(f.Birds) != 3 || f.Birds[0].X != 230 || f.Birds[0].Y != 350 || !f.Birds[0].Alive {
		t.Errorf("unexpected birds: %+v", f.Birds)
	}
	if len(f.Pipes) != 1 || f.Pipes[0].X != 600 {
		t.Errorf("unexpected pipes: %+v", f.Pipes)
	}
	if f.Ground != (GroundState{X1: 0, X2: 672, Y: 730}) {
		t.Errorf("unexpected ground: %+v", f.Ground)
	}

	ep.Step()
	f2 := ep.Frame()
	if f2.Tick != 1 || f2.Pipes[0].X != 595 || f2.Ground.X1 != -5 {
		t.Errorf("unexpected frame after a tick: %+v", f2)
	}
	// snapshots are not aliased with the episode
	if f.Pipes[0].X != 600 {
		t.Error("frame changed after stepping")
	}

	run(ep)
	if f := ep.Frame(); len(f.Birds) != 0 || f.Alive != 0 {
		t.Errorf("dead birds in the frame: %+v", f.Birds)
	}
}

func TestEpisode_passBonus(t *testing.T) {
	candidates := fallingCandidates(5)
	candidates[1].Jumper = &ScriptedJumper{Every: 13}
	candidates[4].Jumper = &ScriptedJumper{Every: 13}
	ep := newTestEpisode(t, pinnedGapConfig(), candidates)

	var before map[int64]float64
	for ep.Score() == 0 && !ep.Done() {
		before = ep.Fitness()
		ep.Step()
	}
	if ep.Score() != 1 || ep.Alive() != 2 {
		t.Fatalf("unexpected episode: score %d alive %d", ep.Score(), ep.Alive())
	}

	after := ep.Fitness()
	for _, id := range []int64{2, 5} {
		if d := after[id] - before[id]; !almostEqual(d, 5.1) {
			t.Errorf("genome %d earned %v on the passing tick", id, d)
		}
	}
	for _, id := range []int64{1, 3, 4} {
		if after[id] != before[id] {
			t.Errorf("dead genome %d changed its fitness", id)
		}
	}
	if len(ep.Pipes()) != 2 || ep.Pipes()[1].X != 600 {
		t.Errorf("no pipe spawned after the pass: %d pipes", len(ep.Pipes()))
	}
}
