package starfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformColorImage(w, h int, r, g, b float32) ColorImage {
	ci := ColorImage{
		R: NewMatWithSize(h, w),
		G: NewMatWithSize(h, w),
		B: NewMatWithSize(h, w),
	}
	for i := range ci.R.DataFloat32() {
		ci.R.DataFloat32()[i] = r
		ci.G.DataFloat32()[i] = g
		ci.B.DataFloat32()[i] = b
	}
	return ci
}

func TestLuminanceExtremes(t *testing.T) {
	t.Parallel()

	white := uniformColorImage(8, 8, 1, 1, 1)
	defer white.Close()
	lum := Luminance(white)
	defer lum.Close()
	require.Equal(t, 8, lum.Rows())
	for _, v := range lum.DataFloat32() {
		assert.InDelta(t, 1.0, v, 1e-3)
	}

	black := uniformColorImage(8, 8, 0, 0, 0)
	defer black.Close()
	dark := Luminance(black)
	defer dark.Close()
	for _, v := range dark.DataFloat32() {
		assert.InDelta(t, 0.0, v, 1e-6)
	}
}

func TestLuminancePerceptualWeighting(t *testing.T) {
	t.Parallel()

	green := uniformColorImage(4, 4, 0, 1, 0)
	defer green.Close()
	blue := uniformColorImage(4, 4, 0, 0, 1)
	defer blue.Close()

	lg := Luminance(green)
	defer lg.Close()
	lb := Luminance(blue)
	defer lb.Close()

	// green dominates perceived brightness
	assert.Greater(t, lg.DataFloat32()[0], lb.DataFloat32()[0])
}

func TestLuminanceMonotonicInGray(t *testing.T) {
	t.Parallel()

	var prev float32 = -1
	for _, v := range []float32{0.1, 0.3, 0.6, 0.9} {
		ci := uniformColorImage(2, 2, v, v, v)
		lum := Luminance(ci)
		y := lum.DataFloat32()[0]
		assert.Greater(t, y, prev)
		prev = y
		lum.Close()
		ci.Close()
	}
}
