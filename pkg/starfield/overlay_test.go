package starfield

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDetections(t *testing.T) {
	t.Parallel()

	lum := blobImage(48, 48, 24, 24, 2.0, 0.8, 0.05)
	defer lum.Close()

	stars := []Star{
		{X: 24, Y: 24, Brightness: 0.6, Area: 20, Perimeter: 16, Circularity: 1.0, Scale: 1.0},
	}

	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, RenderDetections(lum, stars, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderDetectionsBadPath(t *testing.T) {
	t.Parallel()

	lum := NewMatWithSize(8, 8)
	defer lum.Close()
	e := RenderDetections(lum, nil, filepath.Join(t.TempDir(), "missing-dir", "x.png"))
	assert.Error(t, e)
}

func TestMarkerRadius(t *testing.T) {
	t.Parallel()

	assert.Equal(t, markerPadding+1, markerRadius(Star{}))
	assert.Equal(t, 5+markerPadding, markerRadius(Star{Area: 40, Perimeter: 16}))
}
