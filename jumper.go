package neatbird

import (
	"encoding/json"
	"io"
	"log/slog"
)

// Jumper decides, once per tick, whether its bird jumps. The input is the
// bird's sensor vector: its y, and its distance to the top and the bottom of
// the targeted gap.
type Jumper interface {
	Jump(in []float64) (bool, error)
}

// JumperFunc adapts a plain function to the Jumper interface.
type JumperFunc func([]float64) (bool, error)

func (f JumperFunc) Jump(in []float64) (bool, error) { return f(in) }

// Input is the source of discrete user events, polled once per tick.
type Input interface {
	Jump() bool
	Quit() bool
}

// NopInput never jumps nor quits.
type NopInput struct{}

func (NopInput) Jump() bool { return false }
func (NopInput) Quit() bool { return false }

// InteractiveJumper jumps when the player asks for it.
type InteractiveJumper struct {
	Input Input
}

func (i InteractiveJumper) Jump(_ []float64) (bool, error) {
	return i.Input.Jump(), nil
}

// InteractiveLogJumper is an InteractiveJumper recording every decision as a
// JSON Trace line, to be used later as training data.
type InteractiveLogJumper struct {
	Input Input
	Out   io.Writer
}

func (i InteractiveLogJumper) Jump(in []float64) (bool, error) {
	out := i.Input.Jump()
	data := Trace{
		In:  in,
		Out: out,
	}
	if err := json.NewEncoder(i.Out).Encode(data); err != nil {
		slog.Warn("error logging the game", "error", err)
	}
	return out, nil
}

// Trace is a recorded decision.
type Trace struct {
	In  []float64
	Out bool
}

// ScriptedJumper jumps on its first decision and then every Every decisions.
type ScriptedJumper struct {
	Every int

	calls int
}

func (s *ScriptedJumper) Jump(_ []float64) (bool, error) {
	jump := s.Every > 0 && s.calls%s.Every == 0
	s.calls++
	return jump, nil
}
