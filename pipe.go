package neatbird

import (
	"fmt"
	"math"
	"math/rand"
)

// Pipe is a pair of barriers with a gap between Height and Bottom.
type Pipe struct {
	X      float64
	Height float64 // where the face of the top pipe is
	Top    float64 // y of the top segment's sprite
	Bottom float64 // y of the bottom segment's sprite
	Passed bool

	velocity float64
	top      *Mask
	bottom   *Mask
}

// Width returns the pipe width in pixels.
func (p *Pipe) Width() float64 {
	w, _ := p.top.Size()
	return float64(w)
}

// Move scrolls the pipe to the left.
func (p *Pipe) Move() {
	p.X -= p.velocity
}

// OffScreen reports whether the pipe has fully left the screen on the left.
func (p *Pipe) OffScreen() bool {
	return p.X+p.Width() < 0
}

// Collide reports whether the bird's opaque pixels touch either segment.
func (p *Pipe) Collide(b *Bird, birdMask *Mask) bool {
	dx := int(math.Round(p.X - b.X))
	y := math.Round(b.Y)
	if birdMask.Overlap(p.bottom, dx, int(p.Bottom-y)) {
		return true
	}
	return birdMask.Overlap(p.top, dx, int(p.Top-y))
}

// PipeFactory creates pipes sharing the same gap and sprites.
type PipeFactory struct {
	cfg    PipeConfig
	rng    *rand.Rand
	top    *Mask
	bottom *Mask
}

// NewPipeFactory validates the gap parameters and returns a factory drawing
// gap heights from rng. top and bottom are the masks of the flipped and
// upright pipe sprites.
func NewPipeFactory(cfg PipeConfig, groundY float64, top, bottom *Mask, rng *rand.Rand) (*PipeFactory, error) {
	if cfg.Gap <= 0 {
		return nil, fmt.Errorf("%w: gap must be positive, got %v", ErrInvalidObstacleConfig, cfg.Gap)
	}
	if cfg.GapMin < 0 || cfg.GapMin > cfg.GapMax {
		return nil, fmt.Errorf("%w: gap range [%d,%d]", ErrInvalidObstacleConfig, cfg.GapMin, cfg.GapMax)
	}
	if float64(cfg.GapMax)+cfg.Gap > groundY {
		return nil, fmt.Errorf("%w: gap bottom %v below ground %v",
			ErrInvalidObstacleConfig, float64(cfg.GapMax)+cfg.Gap, groundY)
	}
	if top == nil || bottom == nil {
		return nil, fmt.Errorf("%w: missing pipe masks", ErrInvalidObstacleConfig)
	}
	if w, h := top.Size(); w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty pipe mask", ErrInvalidObstacleConfig)
	}
	return &PipeFactory{cfg: cfg, rng: rng, top: top, bottom: bottom}, nil
}

// New creates a pipe at x with a random gap height.
func (f *PipeFactory) New(x float64) *Pipe {
	height := float64(f.cfg.GapMin + f.rng.Intn(f.cfg.GapMax-f.cfg.GapMin+1))
	_, h := f.top.Size()
	return &Pipe{
		X:        x,
		Height:   height,
		Top:      height - float64(h),
		Bottom:   height + f.cfg.Gap,
		velocity: f.cfg.Velocity,
		top:      f.top,
		bottom:   f.bottom,
	}
}

// Gap returns the constant gap size.
func (f *PipeFactory) Gap() float64 { return f.cfg.Gap }
