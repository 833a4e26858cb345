package neatbird

import (
	"image"
	"math/bits"
)

// alphaThreshold is the minimum 8-bit alpha considered opaque.
const alphaThreshold = 127

// Mask is a bitset of the opaque pixels of a sprite, stored row by row in
// 64-bit words.
type Mask struct {
	w, h  int
	words int
	bits  []uint64
}

// NewMask returns an empty mask of the given size.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	words := (w + 63) / 64
	return &Mask{w: w, h: h, words: words, bits: make([]uint64, words*h)}
}

// RectMask returns a fully opaque mask.
func RectMask(w, h int) *Mask {
	m := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y)
		}
	}
	return m
}

// MaskFromImage builds a mask from the alpha channel of img.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a>>8 > alphaThreshold {
				m.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return m
}

// Size returns the mask dimensions.
func (m *Mask) Size() (int, int) { return m.w, m.h }

// Set marks the pixel as opaque. Out of range coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	m.bits[y*m.words+x/64] |= 1 << uint(x%64)
}

// Get reports whether the pixel is opaque.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.words+x/64]&(1<<uint(x%64)) != 0
}

// Count returns the number of opaque pixels.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Overlap reports whether any opaque pixel of other, placed with its top-left
// corner at (dx, dy) relative to m, covers an opaque pixel of m.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	x0, x1 := max(0, dx), min(m.w, dx+other.w)
	y0, y1 := max(0, dy), min(m.h, dy+other.h)
	if x0 >= x1 || y0 >= y1 {
		return false
	}
	for y := y0; y < y1; y++ {
		oy := y - dy
		for x := x0; x < x1; {
			// Compare up to 64 pixels at a time.
			n := min(64, x1-x)
			if m.row(x, y, n)&other.row(x-dx, oy, n) != 0 {
				return true
			}
			x += n
		}
	}
	return false
}

// row extracts n (<= 64) bits starting at column x of row y.
func (m *Mask) row(x, y, n int) uint64 {
	base := y * m.words
	i, off := x/64, uint(x%64)
	v := m.bits[base+i] >> off
	if off != 0 && i+1 < m.words {
		v |= m.bits[base+i+1] << (64 - off)
	}
	if n < 64 {
		v &= 1<<uint(n) - 1
	}
	return v
}
