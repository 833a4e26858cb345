package neatbird

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Harness evaluates a whole population in a single episode and reports the
// fitness earned by each genome. Applying those values to the genomes is up
// to the optimizer.
type Harness struct {
	cfg    *Config
	masks  Masks
	driver Driver
	rng    *rand.Rand
	logger *slog.Logger

	mu         sync.Mutex
	generation int
	last       EpisodeStats
}

// NewHarness returns a harness running episodes with the given driver. A nil
// driver runs them unpaced and without presenting them.
func NewHarness(cfg *Config, masks Masks, driver Driver, rng *rand.Rand, logger *slog.Logger) *Harness {
	if driver == nil {
		driver = Loop{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Harness{cfg: cfg, masks: masks, driver: driver, rng: rng, logger: logger}
}

// Evaluate runs one episode with the population until extinction. On error
// the fitness accumulated so far is returned along with it.
func (h *Harness) Evaluate(ctx context.Context, population []Candidate) (map[int64]float64, error) {
	h.mu.Lock()
	gen := h.generation
	h.mu.Unlock()

	ep, err := NewEpisode(h.cfg, h.masks, h.rng, population,
		WithGeneration(gen), WithLogger(h.logger))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = h.driver.Drive(ctx, ep)
	stats := ep.Stats()

	h.mu.Lock()
	h.generation++
	h.last = stats
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("episode interrupted", "generation", gen, "tick", stats.Ticks, "error", err)
		return ep.Fitness(), err
	}

	h.logger.Info("episode finished",
		"generation", gen,
		"population", len(population),
		"score", stats.Score,
		"ticks", stats.Ticks,
		"collisions", stats.Collisions,
		"out_of_bounds", stats.OutOfBounds,
		"controller_failures", stats.ControllerFailures,
		"elapsed", time.Since(start),
	)
	return ep.Fitness(), nil
}

// Last returns the stats of the latest episode.
func (h *Harness) Last() EpisodeStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Generation returns the number of episodes run so far.
func (h *Harness) Generation() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}
