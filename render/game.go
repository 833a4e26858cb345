// Package render shows episodes in a window with ebiten and reads the
// player's input from it.
package render

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"

	"github.com/kpacha/neatbird"
	"github.com/kpacha/neatbird/assets"
)

var skyColor = color.RGBA{0x80, 0xa0, 0xc0, 0xff}

type Mode int

const (
	ModeWaiting Mode = iota
	ModeGame
	ModeGameOver
)

// Game is an ebiten.Game running the episodes it is handed through Drive, one
// step per update.
type Game struct {
	cfg *neatbird.Config

	bird       *ebiten.Image
	pipeTop    *ebiten.Image
	pipeBottom *ebiten.Image
	ground     *ebiten.Image
	bundle     *assets.Bundle

	jobs      chan *job
	current   *job
	closed    chan struct{}
	closeOnce sync.Once

	mode  Mode
	frame neatbird.Frame
	jump  bool
	quit  bool

	speedFactor int
}

type job struct {
	ep       *neatbird.Episode
	done     chan error
	canceled atomic.Pointer[error]
}

// NewGame prepares the GPU images of the bundle.
func NewGame(cfg *neatbird.Config, bundle *assets.Bundle) *Game {
	return &Game{
		cfg:         cfg,
		bundle:      bundle,
		bird:        ebiten.NewImageFromImage(bundle.Bird),
		pipeTop:     ebiten.NewImageFromImage(bundle.PipeTop),
		pipeBottom:  ebiten.NewImageFromImage(bundle.PipeBottom),
		ground:      ebiten.NewImageFromImage(bundle.Ground),
		jobs:        make(chan *job),
		closed:      make(chan struct{}),
		speedFactor: 100,
	}
}

// Close releases every pending Drive call. Call it once ebiten.RunGame returns.
func (g *Game) Close() {
	g.closeOnce.Do(func() { close(g.closed) })
}

// Drive hands the episode to the update loop and blocks until it is over.
func (g *Game) Drive(ctx context.Context, ep *neatbird.Episode) error {
	j := &job{ep: ep, done: make(chan error, 1)}
	select {
	case g.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-g.closed:
		return neatbird.ErrQuit
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		err := ctx.Err()
		j.canceled.Store(&err)
	case <-g.closed:
		return neatbird.ErrQuit
	}
	// the update loop stops touching the episode before answering
	select {
	case err := <-j.done:
		return err
	case <-g.closed:
		return neatbird.ErrQuit
	}
}

// Jump implements neatbird.Input.
func (g *Game) Jump() bool { return g.jump }

// Quit implements neatbird.Input.
func (g *Game) Quit() bool { return g.quit }

func (g *Game) pollInput() {
	g.jump = inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) ||
		len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
	g.quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
}

func (g *Game) checkSpeed() {
	for k, v := range speedKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.speedFactor = v
			ebiten.SetTPS(g.cfg.Screen.TPS * g.speedFactor / 100)
			return
		}
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.checkSpeed()
	g.pollInput()

	if g.current == nil {
		select {
		case j := <-g.jobs:
			g.current = j
			g.mode = ModeGame
		default:
		}
	}

	if g.quit {
		if g.current != nil {
			g.current.done <- neatbird.ErrQuit
			g.current = nil
		}
		return ebiten.Termination
	}

	j := g.current
	if j == nil {
		return nil
	}
	if err := j.canceled.Load(); err != nil {
		j.done <- *err
		g.current = nil
		g.mode = ModeWaiting
		return nil
	}

	j.ep.Step()
	g.frame = j.ep.Frame()
	if j.ep.Done() {
		j.done <- nil
		g.current = nil
		g.mode = ModeGameOver
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)

	for _, p := range g.frame.Pipes {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(p.X, p.Top)
		screen.DrawImage(g.pipeTop, op)

		op.GeoM.Reset()
		op.GeoM.Translate(p.X, p.Bottom)
		screen.DrawImage(g.pipeBottom, op)
	}

	for _, x := range []float64{g.frame.Ground.X1, g.frame.Ground.X2} {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, g.frame.Ground.Y)
		screen.DrawImage(g.ground, op)
	}

	g.drawBirds(screen)
	g.drawTexts(screen)
}

func (g *Game) drawBirds(screen *ebiten.Image) {
	w, h := g.bird.Bounds().Dx(), g.bird.Bounds().Dy()
	for _, b := range g.frame.Birds {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(-float64(w)/2.0, -float64(h)/2.0)
		// wings: squash the sprite a little on the up stroke
		op.GeoM.Scale(1, 1-0.05*float64(b.Frame))
		op.GeoM.Rotate(-b.Tilt * math.Pi / 180)
		op.GeoM.Translate(float64(w)/2.0, float64(h)/2.0)
		op.GeoM.Translate(b.X, b.Y)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.bird, op)
	}
}

func (g *Game) drawTexts(screen *ebiten.Image) {
	fontSize := g.bundle.Font.Metrics().Height.Ceil()

	var texts []string
	switch g.mode {
	case ModeWaiting:
		texts = []string{"", "WAIT FOR IT..."}
	case ModeGameOver:
		texts = []string{"", "GAME OVER!"}
	}
	for i, l := range texts {
		x := (g.cfg.Screen.Width - len(l)*fontSize) / 2
		text.Draw(screen, l, g.bundle.Font, x, (i+4)*fontSize, color.White)
	}

	scoreStr := fmt.Sprintf("%04d", g.frame.Score)
	text.Draw(screen, scoreStr, g.bundle.Font, g.cfg.Screen.Width-len(scoreStr)*fontSize, fontSize, color.White)

	small := g.bundle.SmallFont.Metrics().Height.Ceil()
	text.Draw(screen, fmt.Sprintf("GEN %d", g.frame.Generation+1), g.bundle.SmallFont, 10, 3*small, color.White)
	text.Draw(screen, fmt.Sprintf("ALIVE %d", g.frame.Alive), g.bundle.SmallFont, 10, 4*small, color.White)

	ebitenutil.DebugPrint(screen, fmt.Sprintf("Speed: %d%%. TPS: %0.2f", g.speedFactor, ebiten.ActualTPS()))
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Screen.Width, g.cfg.Screen.Height
}

var speedKeys = map[ebiten.Key]int{
	ebiten.KeyF1:  100,
	ebiten.KeyF2:  200,
	ebiten.KeyF3:  300,
	ebiten.KeyF4:  400,
	ebiten.KeyF5:  500,
	ebiten.KeyF6:  600,
	ebiten.KeyF7:  700,
	ebiten.KeyF8:  800,
	ebiten.KeyF9:  900,
	ebiten.KeyF10: 1000,
}
