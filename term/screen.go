// Package term draws episodes on a terminal, for watching headless training
// runs over ssh.
package term

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/kpacha/neatbird"
)

var (
	pipeStyle   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	birdStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	deadStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	groundStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0xde, 0xd8, 0x95))
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Screen is a neatbird.Presenter and neatbird.Input backed by a tcell screen.
// The world is scaled down to fit the terminal.
type Screen struct {
	screen tcell.Screen
	worldW float64
	worldH float64
	pipeW  float64

	jump atomic.Bool
	quit atomic.Bool
	done chan struct{}
}

// New initialises the terminal. Call Close to restore it.
func New(cfg *neatbird.Config) (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return newScreen(screen, cfg)
}

func newScreen(screen tcell.Screen, cfg *neatbird.Config) (*Screen, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	s := &Screen{
		screen: screen,
		worldW: float64(cfg.Screen.Width),
		worldH: float64(cfg.Screen.Height),
		pipeW:  float64(cfg.Pipes.Width),
		done:   make(chan struct{}),
	}
	go s.poll()
	return s, nil
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.quit.Store(true)
	s.screen.Fini()
	<-s.done
}

func (s *Screen) poll() {
	defer close(s.done)
	for {
		switch ev := s.screen.PollEvent().(type) {
		case nil:
			// the screen was finalised
			return
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				s.quit.Store(true)
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				s.quit.Store(true)
			case ev.Key() == tcell.KeyRune && ev.Rune() == ' ', ev.Key() == tcell.KeyUp:
				s.jump.Store(true)
			}
		case *tcell.EventResize:
			s.screen.Sync()
		}
	}
}

// Jump implements neatbird.Input. A key press is consumed by the first call.
func (s *Screen) Jump() bool { return s.jump.Swap(false) }

// Quit implements neatbird.Input.
func (s *Screen) Quit() bool { return s.quit.Load() }

// Present implements neatbird.Presenter.
func (s *Screen) Present(f neatbird.Frame) {
	s.screen.Clear()
	cols, rows := s.screen.Size()
	if cols == 0 || rows < 2 {
		return
	}
	// keep the last row for the status line
	rows--
	sx := float64(cols) / s.worldW
	sy := float64(rows) / s.worldH
	cell := func(x, y float64) (int, int) { return int(x * sx), int(y * sy) }

	for _, p := range f.Pipes {
		x0, gapTop := cell(p.X, p.Height)
		x1, gapBottom := cell(p.X+s.pipeW, p.Bottom)
		for x := max(0, x0); x < min(cols, max(x1, x0+1)); x++ {
			for y := 0; y < rows; y++ {
				if y < gapTop || y >= gapBottom {
					s.screen.SetContent(x, y, '█', nil, pipeStyle)
				}
			}
		}
	}

	_, gy := cell(0, f.Ground.Y)
	for y := max(0, gy); y < rows; y++ {
		for x := 0; x < cols; x++ {
			s.screen.SetContent(x, y, '▀', nil, groundStyle)
		}
	}

	for _, b := range f.Birds {
		x, y := cell(b.X, b.Y)
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		style := birdStyle
		if !b.Alive {
			style = deadStyle
		}
		r := '>'
		switch {
		case b.Tilt > 0:
			r = '/'
		case b.Tilt < -45:
			r = '\\'
		}
		s.screen.SetContent(x, y, r, nil, style)
	}

	status := fmt.Sprintf(" score %d  gen %d  alive %d  tick %d  [space] jump [q] quit", f.Score, f.Generation+1, f.Alive, f.Tick)
	for i, r := range []rune(status) {
		if i >= cols {
			break
		}
		s.screen.SetContent(i, rows, r, nil, textStyle)
	}
	s.screen.Show()
}
