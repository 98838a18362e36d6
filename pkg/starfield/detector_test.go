package starfield

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobImage places a Gaussian blob of the given peak (above bg) on a flat
// background.
func blobImage(w, h int, cx, cy, sigma, peak, bg float64) Mat {
	m := NewMatWithSize(h, w)
	d := m.DataFloat32()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			v := bg + peak*math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))
			d[y*w+x] = float32(v)
		}
	}
	return m
}

func TestDetectStarsSingleBlob(t *testing.T) {
	t.Parallel()

	img := blobImage(64, 64, 31, 30, 2.0, 0.8, 0.05)
	defer img.Close()

	cfg := NewDetectionConfig()
	stars := DetectStars(img, cfg)
	require.Len(t, stars, 1)

	s := stars[0]
	assert.InDelta(t, 31.0, s.Centroid.X, 2.0)
	assert.InDelta(t, 30.0, s.Centroid.Y, 2.0)
	assert.Greater(t, s.Brightness, cfg.MinBrightness)
	assert.Greater(t, s.Area, 0.0)
	assert.Greater(t, s.Perimeter, 0.0)
	assert.GreaterOrEqual(t, s.Circularity, cfg.MinCircularity)
	assert.LessOrEqual(t, s.Circularity, cfg.MaxCircularity)
}

// A compact blob like the ones a downscaled analysis pass produces (area
// around a dozen pixels) must still land inside the default circularity
// band; the perimeter offset in measureRegion is what keeps it there.
func TestDetectStarsSmallBlob(t *testing.T) {
	t.Parallel()

	img := blobImage(48, 48, 24, 24, 1.25, 0.8, 0.05)
	defer img.Close()

	cfg := NewDetectionConfig()
	stars := DetectStars(img, cfg)
	require.Len(t, stars, 1)
	assert.InDelta(t, 24.0, stars[0].Centroid.X, 2.0)
	assert.InDelta(t, 24.0, stars[0].Centroid.Y, 2.0)
	assert.LessOrEqual(t, stars[0].Circularity, cfg.MaxCircularity)
	assert.GreaterOrEqual(t, stars[0].Circularity, cfg.MinCircularity)
}

// A digitized disk of radius 2 is the smallest round region the detector
// meaningfully sees; its measured circularity must come out near 1, not
// inflated by the center-path perimeter bias.
func TestMeasureRegionSmallDiskCircularity(t *testing.T) {
	t.Parallel()

	const w, h = 9, 9
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-4, y-4
			if dx*dx+dy*dy <= 4 {
				mask[y*w+x] = true
			}
		}
	}

	regions := extractRegions(mask, w, h)
	require.Len(t, regions, 1)
	require.Len(t, regions[0], 13)

	cand := measureRegion(regions[0], mask, w, h)
	assert.InDelta(t, 4.0, cand.Centroid.X, 1e-9)
	assert.InDelta(t, 4.0, cand.Centroid.Y, 1e-9)

	circ := 4 * math.Pi * cand.Area / (cand.Perimeter * cand.Perimeter)
	assert.Greater(t, circ, 0.6)
	assert.Less(t, circ, 1.2)
}

func TestDetectStarsFlatImage(t *testing.T) {
	t.Parallel()

	img := NewMatWithSize(64, 64)
	defer img.Close()
	d := img.DataFloat32()
	for i := range d {
		d[i] = 0.2
	}

	stars := DetectStars(img, NewDetectionConfig())
	assert.Empty(t, stars)
}

// Raising the binarization threshold can only shrink the foreground, so
// the detection count must never grow with it.
func TestDetectStarsThresholdMonotonic(t *testing.T) {
	t.Parallel()

	img := blobImage(64, 64, 32, 32, 2.0, 0.8, 0.05)
	defer img.Close()

	prev := math.MaxInt
	for _, threshold := range []float64{0.05, 0.2, 0.5, 0.9} {
		cfg := NewDetectionConfig()
		cfg.Threshold = threshold
		n := len(DetectStars(img, cfg))
		assert.LessOrEqual(t, n, prev, "threshold %.2f", threshold)
		prev = n
	}
}

func TestTracePerimeter(t *testing.T) {
	t.Parallel()

	t.Run("isolated pixel has no boundary", func(t *testing.T) {
		t.Parallel()
		mask := make([]bool, 25)
		mask[2*5+2] = true
		assert.Equal(t, 0.0, tracePerimeter(mask, 5, 5, image.Pt(2, 2), 1))
	})

	t.Run("2x2 square", func(t *testing.T) {
		t.Parallel()
		mask := make([]bool, 25)
		for _, p := range []image.Point{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
			mask[p.Y*5+p.X] = true
		}
		assert.InDelta(t, 4.0, tracePerimeter(mask, 5, 5, image.Pt(1, 1), 4), 1e-9)
	})
}

// A single hot pixel survives a disabled median filter and forms a region
// whose boundary cannot be traced; it must be rejected, not crash the run
// or divide by zero.
func TestDetectStarsRejectsDegenerateRegions(t *testing.T) {
	t.Parallel()

	mask := make([]bool, 49)
	mask[3*7+3] = true
	regions := extractRegions(mask, 7, 7)
	require.Len(t, regions, 1)

	cand := measureRegion(regions[0], mask, 7, 7)
	assert.Equal(t, 0.0, cand.Perimeter)

	intensity := make([]float32, 49)
	intensity[3*7+3] = 1.0
	_, ok := acceptCandidate(cand, mask, intensity, 7, 7, NewDetectionConfig())
	assert.False(t, ok)
}

func TestExtractRegionsConnectivity(t *testing.T) {
	t.Parallel()

	// two diagonal pixels are 8-connected; a distant pixel is not
	mask := make([]bool, 64)
	mask[1*8+1] = true
	mask[2*8+2] = true
	mask[6*8+6] = true

	regions := extractRegions(mask, 8, 8)
	require.Len(t, regions, 2)
	assert.Len(t, regions[0], 2)
	assert.Len(t, regions[1], 1)
}
