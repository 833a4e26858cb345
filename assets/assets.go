// Package assets decodes the sprites and fonts of the game once, at startup,
// into an immutable Bundle.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	resources "github.com/hajimehoshi/ebiten/v2/examples/resources/images/flappy"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/kpacha/neatbird"
)

// ErrAssetMissing is returned when a required sprite or font can not be loaded.
var ErrAssetMissing = errors.New("asset missing")

const (
	tileSize      = 32
	fontSize      = 32
	smallFontSize = fontSize / 2
	pipeTileSrcX  = 128
	pipeTileSrcY  = 192
	pipeTileWidth = tileSize * 2
)

// Source holds the raw encoded assets.
type Source struct {
	Gopher []byte
	Tiles  []byte
	Font   []byte
}

// Embedded returns the flappy gopher assets shipped with ebiten.
func Embedded() Source {
	return Source{
		Gopher: resources.Gopher_png,
		Tiles:  resources.Tiles_png,
		Font:   fonts.ArcadeN_ttf,
	}
}

// Bundle holds every decoded asset, already scaled to the sizes in the config.
// It is never modified after Load.
type Bundle struct {
	Bird       image.Image
	PipeTop    image.Image
	PipeBottom image.Image
	Ground     image.Image

	Masks neatbird.Masks

	Font      font.Face
	SmallFont font.Face
}

// Load decodes src and prepares the sprites for cfg.
func Load(src Source, cfg *neatbird.Config) (*Bundle, error) {
	gopher, err := decode("gopher", src.Gopher)
	if err != nil {
		return nil, err
	}
	tiles, err := decode("tiles", src.Tiles)
	if err != nil {
		return nil, err
	}
	if !image.Rect(0, 0, pipeTileSrcX+pipeTileWidth, pipeTileSrcY+2*tileSize).In(tiles.Bounds()) {
		return nil, fmt.Errorf("%w: tiles sheet too small: %v", ErrAssetMissing, tiles.Bounds())
	}

	tt, err := truetype.Parse(src.Font)
	if err != nil {
		return nil, fmt.Errorf("%w: font: %v", ErrAssetMissing, err)
	}
	const dpi = 72

	b := &Bundle{
		Bird:   scale(gopher, cfg.Bird.Width, cfg.Bird.Height),
		Ground: groundImage(tiles, int(cfg.Ground.Width), cfg.Screen.Height-int(cfg.Ground.Y)),
		Font: truetype.NewFace(tt, &truetype.Options{
			Size:    fontSize,
			DPI:     dpi,
			Hinting: font.HintingFull,
		}),
		SmallFont: truetype.NewFace(tt, &truetype.Options{
			Size:    smallFontSize,
			DPI:     dpi,
			Hinting: font.HintingFull,
		}),
	}
	bottom := pipeImage(tiles, cfg.Pipes.Width, cfg.Pipes.Height)
	b.PipeBottom = bottom
	b.PipeTop = flipV(bottom)

	b.Masks = neatbird.Masks{
		Bird:       neatbird.MaskFromImage(b.Bird),
		PipeTop:    neatbird.MaskFromImage(b.PipeTop),
		PipeBottom: neatbird.MaskFromImage(b.PipeBottom),
	}
	return b, nil
}

func decode(name string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAssetMissing, name)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAssetMissing, name, err)
	}
	return img, nil
}

func scale(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

// pipeImage builds an upright pipe: the cap tile followed by body tiles,
// scaled to w x h.
func pipeImage(tiles image.Image, w, h int) *image.RGBA {
	rows := (h*pipeTileWidth/max(w, 1) + tileSize - 1) / tileSize
	if rows < 1 {
		rows = 1
	}
	pipe := image.NewRGBA(image.Rect(0, 0, pipeTileWidth, rows*tileSize))
	for j := 0; j < rows; j++ {
		srcY := pipeTileSrcY + tileSize
		if j == 0 {
			srcY = pipeTileSrcY
		}
		dst := image.Rect(0, j*tileSize, pipeTileWidth, (j+1)*tileSize)
		xdraw.Draw(pipe, dst, tiles, image.Pt(pipeTileSrcX, srcY), xdraw.Src)
	}
	return scale(pipe, w, h)
}

func groundImage(tiles image.Image, w, h int) *image.RGBA {
	if h < tileSize {
		h = tileSize
	}
	ground := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += tileSize {
		for x := 0; x < w; x += tileSize {
			xdraw.Draw(ground, image.Rect(x, y, x+tileSize, y+tileSize), tiles, image.Point{}, xdraw.Src)
		}
	}
	return ground
}

func flipV(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := 0; y < b.Dy(); y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[(b.Dy()-1-y)*src.Stride:(b.Dy()-1-y)*src.Stride+b.Dx()*4])
	}
	return dst
}
