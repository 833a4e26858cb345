package neatbird

// Base is the scrolling ground, drawn as two tiles that follow each other.
type Base struct {
	Y     float64
	X1    float64
	X2    float64
	Width float64

	velocity float64
}

// NewBase returns a ground at y with the two tiles side by side.
func NewBase(cfg GroundConfig) *Base {
	return &Base{
		Y:        cfg.Y,
		X1:       0,
		X2:       cfg.Width,
		Width:    cfg.Width,
		velocity: cfg.Velocity,
	}
}

// Move scrolls both tiles, moving a tile that left the screen behind the other.
func (b *Base) Move() {
	b.X1 -= b.velocity
	b.X2 -= b.velocity

	if b.X1+b.Width <= 0 {
		b.X1 = b.X2 + b.Width
	}
	if b.X2+b.Width <= 0 {
		b.X2 = b.X1 + b.Width
	}
}
