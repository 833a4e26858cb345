package neatbird

import (
	"context"
	"errors"
)

// ErrQuit is returned when the player asks to leave mid episode.
var ErrQuit = errors.New("quit requested")

// Driver runs an episode until the population is extinct.
type Driver interface {
	Drive(ctx context.Context, ep *Episode) error
}

// Loop is the plain driver: it polls the input, waits for the clock, steps
// the episode and presents the resulting frame, once per tick.
type Loop struct {
	Clock     Clock
	Input     Input
	Presenter Presenter
}

// Drive implements Driver. Cancellation and quit requests are only checked
// between ticks, so the episode is never left half updated.
func (l Loop) Drive(ctx context.Context, ep *Episode) error {
	clock := l.Clock
	if clock == nil {
		clock = Unpaced{}
	}
	input := l.Input
	if input == nil {
		input = NopInput{}
	}

	for !ep.Done() {
		if input.Quit() {
			return ErrQuit
		}
		if err := clock.Wait(ctx); err != nil {
			return err
		}
		ep.Step()
		if l.Presenter != nil {
			l.Presenter.Present(ep.Frame())
		}
	}
	return nil
}
