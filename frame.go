package neatbird

// Frame is a snapshot of an episode handed to presenters. It holds plain data
// only and shares nothing with the episode.
type Frame struct {
	Birds      []BirdState
	Pipes      []PipeState
	Ground     GroundState
	Score      int
	Tick       int
	Generation int
	Alive      int
}

type BirdState struct {
	X, Y  float64
	Tilt  float64
	Frame int
	Alive bool
}

type PipeState struct {
	X      float64
	Top    float64
	Height float64
	Bottom float64
}

type GroundState struct {
	X1, X2, Y float64
}

// Presenter shows frames to someone.
type Presenter interface {
	Present(Frame)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(Frame)

func (f PresenterFunc) Present(fr Frame) { f(fr) }

// NopPresenter discards every frame.
type NopPresenter struct{}

func (NopPresenter) Present(Frame) {}

// Frame returns a snapshot of the episode. Only alive birds are included.
func (e *Episode) Frame() Frame {
	f := Frame{
		Birds:      make([]BirdState, 0, len(e.alive)),
		Pipes:      make([]PipeState, 0, len(e.pipes)),
		Ground:     GroundState{X1: e.base.X1, X2: e.base.X2, Y: e.base.Y},
		Score:      e.stats.Score,
		Tick:       e.stats.Ticks,
		Generation: e.generation,
		Alive:      len(e.alive),
	}
	for _, i := range e.alive {
		b := e.birds[i]
		f.Birds = append(f.Birds, BirdState{X: b.X, Y: b.Y, Tilt: b.Tilt, Frame: b.Frame(), Alive: b.Alive})
	}
	for _, p := range e.pipes {
		f.Pipes = append(f.Pipes, PipeState{X: p.X, Top: p.Top, Height: p.Height, Bottom: p.Bottom})
	}
	return f
}
