package starfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthMosaic renders a smooth warm scene (bright red, mid green, dark
// blue) through the given CFA layout.
func synthMosaic(pattern CFAPattern, w, h int) Mat {
	m := NewMatWithSize(h, w)
	d := m.DataFloat32()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float32
			switch pattern.colorAt(y, x) {
			case chanRed:
				v = 0.55 + 0.2*float32(x)/float32(w)
			case chanGreen:
				v = 0.45 + 0.1*float32(y)/float32(h)
			case chanBlue:
				v = 0.15 + 0.05*float32(x)/float32(w)
			}
			d[y*w+x] = v
		}
	}
	return m
}

func TestParseCFAPattern(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want CFAPattern
	}{
		{"RGGB", PatternRGGB},
		{"bggr", PatternBGGR},
		{" GrBg ", PatternGRBG},
		{"gbrg", PatternGBRG},
	} {
		got, err := ParseCFAPattern(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseCFAPattern("rgbw")
	assert.Error(t, err)
}

func TestCFAPatternStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, p := range patternOrder {
		got, err := ParseCFAPattern(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestClassifyPattern(t *testing.T) {
	t.Parallel()

	for _, p := range patternOrder {
		p := p
		t.Run(p.String(), func(t *testing.T) {
			t.Parallel()
			m := synthMosaic(p, 64, 64)
			defer m.Close()
			assert.Equal(t, p, ClassifyPattern(m))
		})
	}
}

func TestClassifyPatternFlatInputIsDeterministic(t *testing.T) {
	t.Parallel()

	m := NewMatWithSize(32, 32)
	defer m.Close()
	d := m.DataFloat32()
	for i := range d {
		d[i] = 0.5
	}
	// all candidates tie; the first in iteration order wins
	assert.Equal(t, patternOrder[0], ClassifyPattern(m))
}

func TestColorAtCanonicalLayouts(t *testing.T) {
	t.Parallel()

	assert.Equal(t, chanRed, PatternRGGB.colorAt(0, 0))
	assert.Equal(t, chanGreen, PatternRGGB.colorAt(0, 1))
	assert.Equal(t, chanGreen, PatternRGGB.colorAt(1, 0))
	assert.Equal(t, chanBlue, PatternRGGB.colorAt(1, 1))

	assert.Equal(t, chanBlue, PatternBGGR.colorAt(0, 0))
	assert.Equal(t, chanRed, PatternBGGR.colorAt(1, 1))

	assert.Equal(t, chanGreen, PatternGRBG.colorAt(0, 0))
	assert.Equal(t, chanRed, PatternGRBG.colorAt(0, 1))

	assert.Equal(t, chanGreen, PatternGBRG.colorAt(0, 0))
	assert.Equal(t, chanBlue, PatternGBRG.colorAt(0, 1))
}
