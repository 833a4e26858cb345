package neatbird

import "math"

// Bird is a single avatar. Its x never changes during an episode.
type Bird struct {
	X float64
	Y float64

	Tilt     float64
	Velocity float64
	Fitness  float64
	Alive    bool

	tickCount int
	height    float64 // y at the last jump
	imgCount  int

	phys PhysicsConfig
	anim int
}

// NewBird places a bird at rest.
func NewBird(x, y float64, phys PhysicsConfig, animationTime int) *Bird {
	return &Bird{
		X:      x,
		Y:      y,
		Alive:  true,
		height: y,
		phys:   phys,
		anim:   animationTime,
	}
}

// Jump gives the bird an upward impulse from its current height.
func (b *Bird) Jump() {
	b.Velocity = b.phys.JumpVelocity
	b.tickCount = 0
	b.height = b.Y
}

// Move advances the bird one tick and returns the applied displacement.
func (b *Bird) Move() float64 {
	b.tickCount++
	t := float64(b.tickCount)
	d := b.Velocity*t + 0.5*b.phys.Gravity*t*t

	if d > b.phys.TerminalVelocity {
		d = b.phys.TerminalVelocity
	}
	if d < 0 {
		d -= b.phys.AscentBoost
	}
	b.Y += d

	if d < 0 || b.Y < b.height+b.phys.TiltMargin {
		if b.Tilt < b.phys.MaxRotation {
			b.Tilt = b.phys.MaxRotation
		}
	} else if b.Tilt > b.phys.MinRotation {
		b.Tilt = math.Max(b.Tilt-b.phys.RotationVelocity, b.phys.MinRotation)
	}

	b.imgCount++
	if b.anim > 0 && b.imgCount > 4*b.anim {
		b.imgCount = 1
	}
	return d
}

// Frame returns the wing animation frame (0, 1 or 2) to draw.
func (b *Bird) Frame() int {
	if b.Tilt <= -80 || b.anim <= 0 {
		return 1
	}
	switch {
	case b.imgCount < b.anim:
		return 0
	case b.imgCount < 2*b.anim:
		return 1
	case b.imgCount < 3*b.anim:
		return 2
	default:
		return 1
	}
}

// sensors builds the controller input against the given pipe: the bird's
// height and its distances to both edges of the gap.
func (b *Bird) sensors(p *Pipe) []float64 {
	return []float64{
		b.Y,
		math.Abs(b.Y - p.Height),
		math.Abs(b.Y - p.Bottom),
	}
}
