package starfield

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDetectionReport(t *testing.T) {
	t.Parallel()

	stars := []Star{
		{X: 1, Y: 2, Brightness: 0.2, Circularity: 1.1, Scale: 1.0},
		{X: 3, Y: 4, Brightness: 0.6, Circularity: 0.9, Scale: 0.5},
		{X: 5, Y: 6, Brightness: 0.4, Circularity: 1.0, Scale: 1.0},
	}
	rep := NewDetectionReport(stars, 100, 80)

	assert.Equal(t, 3, rep.Count)
	assert.Equal(t, 100, rep.Width)
	assert.Equal(t, 80, rep.Height)
	assert.Equal(t, 0.4, rep.MedianBrightness)
	assert.Equal(t, 1.0, rep.MedianCircularity)

	// brightest first
	require.Len(t, rep.Stars, 3)
	assert.Equal(t, 0.6, rep.Stars[0].Brightness)
	assert.Equal(t, 0.2, rep.Stars[2].Brightness)
}

func TestDetectionReportJSON(t *testing.T) {
	t.Parallel()

	rep := NewDetectionReport([]Star{{X: 7, Y: 9, Brightness: 0.5}}, 64, 64)
	b, err := rep.JSON()
	require.NoError(t, err)

	var decoded DetectionReport
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, 1, decoded.Count)
	assert.Equal(t, 7, decoded.Stars[0].X)
}

func TestNewDetectionReportEmpty(t *testing.T) {
	t.Parallel()

	rep := NewDetectionReport(nil, 32, 32)
	assert.Equal(t, 0, rep.Count)
	assert.Empty(t, rep.Stars)
	assert.Equal(t, 0.0, rep.MedianBrightness)
}
