package neatbird

import (
	"image"
	"image/color"
	"testing"
)

func TestMask_overlap(t *testing.T) {
	bird := RectMask(68, 48)
	pipe := RectMask(104, 640)

	for _, tc := range []struct {
		name   string
		dx, dy int
		want   bool
	}{
		{"same origin", 0, 0, true},
		{"touching right edge", 67, 0, true},
		{"just right", 68, 0, false},
		{"just left", -104, 0, false},
		{"touching left edge", -103, 10, true},
		{"above", 0, -640, false},
		{"touching from above", 10, -639, true},
		{"below", 0, 48, false},
		{"far away", 1000, 1000, false},
	} {
		if got := bird.Overlap(pipe, tc.dx, tc.dy); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMask_transparentMargins(t *testing.T) {
	// a ring: opaque border, transparent inside
	ring := NewMask(130, 10)
	for x := 0; x < 130; x++ {
		ring.Set(x, 0)
		ring.Set(x, 9)
	}
	dot := NewMask(1, 1)
	dot.Set(0, 0)

	if ring.Overlap(dot, 65, 5) {
		t.Error("the hole of the ring must not collide")
	}
	for _, x := range []int{0, 63, 64, 65, 127, 128, 129} {
		if !ring.Overlap(dot, x, 0) {
			t.Errorf("dot at %d should hit the border", x)
		}
		if !dot.Overlap(ring, -x, -9) {
			t.Errorf("ring at %d should hit the dot", -x)
		}
	}
	if ring.Overlap(dot, 130, 0) {
		t.Error("dot outside the mask")
	}
}

func TestMask_wordBoundaries(t *testing.T) {
	a := NewMask(200, 1)
	a.Set(127, 0)
	b := NewMask(100, 1)
	b.Set(99, 0)
	for dx := -99; dx < 200; dx++ {
		want := dx+99 == 127
		if got := a.Overlap(b, dx, 0); got != want {
			t.Fatalf("dx %d: got %v, want %v", dx, got, want)
		}
	}
}

func TestMaskFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 14, 13))
	img.Set(10, 10, color.RGBA{255, 0, 0, 255})
	img.Set(13, 12, color.RGBA{0, 0, 0, 200})
	img.Set(11, 11, color.RGBA{0, 0, 0, 20})

	m := MaskFromImage(img)
	if w, h := m.Size(); w != 4 || h != 3 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	if !m.Get(0, 0) || !m.Get(3, 2) {
		t.Error("opaque pixels missing")
	}
	if m.Get(1, 1) {
		t.Error("translucent pixel marked as opaque")
	}
	if m.Count() != 2 {
		t.Errorf("unexpected count: %d", m.Count())
	}
	if RectMask(68, 48).Count() != 68*48 {
		t.Error("unexpected rect mask count")
	}
}
