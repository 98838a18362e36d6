package starfield

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// texturedMat fills a mat with a deterministic mix of low and high
// frequency structure.
func texturedMat(w, h int) Mat {
	m := NewMatWithSize(h, w)
	d := m.DataFloat32()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := 0.3 +
				0.2*math.Sin(float64(x)*0.11) +
				0.15*math.Cos(float64(y)*0.07) +
				0.05*math.Sin(float64(x*y)*0.013)
			d[y*w+x] = float32(v)
		}
	}
	return m
}

// Decompose followed by Reconstruct must return the input up to float
// rounding: each detail layer stores exactly what its downsample step
// removed.
func TestPyramidReconstructIsLossless(t *testing.T) {
	t.Parallel()

	src := texturedMat(64, 48)
	defer src.Close()

	p := Decompose(src, 4)
	defer p.Close()
	require.Len(t, p.Details, 4)

	rec := p.Reconstruct()
	defer rec.Close()
	require.Equal(t, src.Rows(), rec.Rows())
	require.Equal(t, src.Cols(), rec.Cols())

	srcData := src.DataFloat32()
	recData := rec.DataFloat32()
	for i := range srcData {
		require.InDelta(t, srcData[i], recData[i], 1e-4)
	}
}

func TestDecomposeStopsWhenTooSmall(t *testing.T) {
	t.Parallel()

	src := texturedMat(8, 8)
	defer src.Close()

	p := Decompose(src, 10)
	defer p.Close()
	// 8 -> 4 -> 2; a 2x2 residual cannot be halved again
	assert.Len(t, p.Details, 2)
	assert.Equal(t, 2, p.Residual.Rows())
	assert.Equal(t, 2, p.Residual.Cols())
}

// A flat image has no detail at any level, so a reconstruction from the
// finest layers alone is zero and the background estimate is the image.
func TestFlatImageSeparatesCleanly(t *testing.T) {
	t.Parallel()

	src := NewMatWithSize(32, 32)
	defer src.Close()
	d := src.DataFloat32()
	for i := range d {
		d[i] = 0.5
	}

	p := Decompose(src, 3)
	defer p.Close()

	high := p.ReconstructFinest(2)
	defer high.Close()
	for _, v := range high.DataFloat32() {
		require.InDelta(t, 0.0, v, 1e-4)
	}

	bg := p.ReconstructBackground()
	defer bg.Close()
	for _, v := range bg.DataFloat32() {
		require.InDelta(t, 0.5, v, 1e-4)
	}
}

func TestSubtractBackgroundClampsNegative(t *testing.T) {
	t.Parallel()

	img := NewMatWithSize(4, 4)
	defer img.Close()
	for i := range img.DataFloat32() {
		img.DataFloat32()[i] = 0.2
	}

	// background estimate at half resolution, brighter than the image
	bg := NewMatWithSize(2, 2)
	defer bg.Close()
	for i := range bg.DataFloat32() {
		bg.DataFloat32()[i] = 0.5
	}

	out := SubtractBackground(img, bg)
	defer out.Close()
	require.Equal(t, 4, out.Rows())
	require.Equal(t, 4, out.Cols())
	for _, v := range out.DataFloat32() {
		assert.Equal(t, float32(0), v)
	}
}
