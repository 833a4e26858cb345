package neatbird

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
)

// ErrNoCandidates is returned when an episode is started without birds.
var ErrNoCandidates = errors.New("no candidates")

// Candidate is a population member: a genome identity and the jumper built
// from it.
type Candidate struct {
	ID     int64
	Jumper Jumper
}

// Masks holds the opacity masks used for collision detection.
type Masks struct {
	Bird       *Mask
	PipeTop    *Mask
	PipeBottom *Mask
}

// RectMasks returns fully opaque masks with the sizes set in cfg, for runs
// without sprites.
func RectMasks(cfg *Config) Masks {
	return Masks{
		Bird:       RectMask(cfg.Bird.Width, cfg.Bird.Height),
		PipeTop:    RectMask(cfg.Pipes.Width, cfg.Pipes.Height),
		PipeBottom: RectMask(cfg.Pipes.Width, cfg.Pipes.Height),
	}
}

// EpisodeStats summarises an episode.
type EpisodeStats struct {
	Ticks              int
	Score              int
	Collisions         int
	OutOfBounds        int
	ControllerFailures int
}

// Episode is one run of a population from spawn to extinction. Birds live in
// fixed slots, one per candidate; dead birds stay in their slot and are only
// dropped from the alive list once the tick is over.
type Episode struct {
	cfg     *Config
	factory *PipeFactory
	mask    *Mask
	logger  *slog.Logger

	birds   []*Bird
	jumpers []Jumper
	ids     []int64
	alive   []int

	pipes []*Pipe
	base  *Base

	generation int
	stats      EpisodeStats
}

// EpisodeOption customises an episode.
type EpisodeOption func(*Episode)

// WithLogger sets the logger used to report controller failures.
func WithLogger(l *slog.Logger) EpisodeOption {
	return func(e *Episode) { e.logger = l }
}

// WithGeneration tags the episode frames with the optimizer generation.
func WithGeneration(gen int) EpisodeOption {
	return func(e *Episode) { e.generation = gen }
}

// NewEpisode spawns one bird per candidate and the first pipe.
func NewEpisode(cfg *Config, masks Masks, rng *rand.Rand, candidates []Candidate, opts ...EpisodeOption) (*Episode, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	if masks.Bird == nil {
		return nil, errors.New("missing bird mask")
	}
	factory, err := NewPipeFactory(cfg.Pipes, cfg.Ground.Y, masks.PipeTop, masks.PipeBottom, rng)
	if err != nil {
		return nil, err
	}

	e := &Episode{
		cfg:     cfg,
		factory: factory,
		mask:    masks.Bird,
		logger:  slog.Default(),
		birds:   make([]*Bird, len(candidates)),
		jumpers: make([]Jumper, len(candidates)),
		ids:     make([]int64, len(candidates)),
		alive:   make([]int, 0, len(candidates)),
		base:    NewBase(cfg.Ground),
	}
	seen := make(map[int64]struct{}, len(candidates))
	for i, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			return nil, fmt.Errorf("duplicated candidate id %d", c.ID)
		}
		if c.Jumper == nil {
			return nil, fmt.Errorf("candidate %d has no jumper", c.ID)
		}
		seen[c.ID] = struct{}{}
		e.birds[i] = NewBird(cfg.Bird.X, cfg.Bird.Y, cfg.Physics, cfg.Bird.AnimationTime)
		e.jumpers[i] = c.Jumper
		e.ids[i] = c.ID
		e.alive = append(e.alive, i)
	}
	e.pipes = []*Pipe{factory.New(cfg.Pipes.SpawnX)}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Done reports whether every bird is dead.
func (e *Episode) Done() bool { return len(e.alive) == 0 }

// Score returns the number of pipes passed.
func (e *Episode) Score() int { return e.stats.Score }

// Tick returns the number of completed steps.
func (e *Episode) Tick() int { return e.stats.Ticks }

// Stats returns the episode summary so far.
func (e *Episode) Stats() EpisodeStats { return e.stats }

// Alive returns the number of birds still flying.
func (e *Episode) Alive() int { return len(e.alive) }

// Bird returns the bird in the given slot.
func (e *Episode) Bird(slot int) *Bird { return e.birds[slot] }

// Pipes returns the pipes in flight, oldest first.
func (e *Episode) Pipes() []*Pipe { return e.pipes }

// Base returns the ground.
func (e *Episode) Base() *Base { return e.base }

// Fitness returns the accumulated fitness of every candidate by ID.
func (e *Episode) Fitness() map[int64]float64 {
	res := make(map[int64]float64, len(e.birds))
	for i, b := range e.birds {
		res[e.ids[i]] = b.Fitness
	}
	return res
}

// lead returns the slot of the alive bird that went further.
func (e *Episode) lead() int {
	best := e.alive[0]
	for _, i := range e.alive[1:] {
		if e.birds[i].X > e.birds[best].X {
			best = i
		}
	}
	return best
}

// pipeIndex returns the pipe the birds should be looking at: the first one
// unless the lead bird has already left it behind.
func (e *Episode) pipeIndex() int {
	if len(e.pipes) > 1 && e.birds[e.lead()].X > e.pipes[0].X+e.pipes[0].Width() {
		return 1
	}
	return 0
}

// Step advances the whole episode by one tick. It is a no-op once the
// population is extinct.
func (e *Episode) Step() {
	if e.Done() {
		return
	}
	fit := e.cfg.Fitness

	target := e.pipes[e.pipeIndex()]
	for _, i := range e.alive {
		b := e.birds[i]
		b.Move()
		b.Fitness += fit.Survival

		jump, err := e.jumpers[i].Jump(b.sensors(target))
		if err != nil {
			e.stats.ControllerFailures++
			e.logger.Warn("controller evaluation failed",
				"genome", e.ids[i], "tick", e.stats.Ticks, "error", err)
			continue
		}
		if jump {
			b.Jump()
		}
	}

	e.base.Move()

	addPipe := false
	for _, p := range e.pipes {
		for _, i := range e.alive {
			b := e.birds[i]
			if !b.Alive {
				continue
			}
			if p.Collide(b, e.mask) {
				b.Fitness += fit.Collision
				b.Alive = false
				e.stats.Collisions++
				continue
			}
			if !p.Passed && p.X < b.X {
				p.Passed = true
				addPipe = true
			}
		}
		p.Move()
	}

	kept := e.pipes[:0]
	for _, p := range e.pipes {
		if !p.OffScreen() {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(e.pipes); i++ {
		e.pipes[i] = nil
	}
	e.pipes = kept

	if addPipe {
		e.stats.Score++
		for _, i := range e.alive {
			if b := e.birds[i]; b.Alive {
				b.Fitness += fit.Pass
			}
		}
		e.pipes = append(e.pipes, e.factory.New(e.cfg.Pipes.SpawnX))
	}

	_, h := e.mask.Size()
	for _, i := range e.alive {
		b := e.birds[i]
		if b.Alive && (b.Y+float64(h) >= e.base.Y || b.Y < 0) {
			b.Alive = false
			e.stats.OutOfBounds++
		}
	}

	alive := e.alive[:0]
	for _, i := range e.alive {
		if e.birds[i].Alive {
			alive = append(alive, i)
		}
	}
	e.alive = alive
	e.stats.Ticks++
}
