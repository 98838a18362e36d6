package starfield

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Luminance collapses a reconstructed color image to a single plane using
// the CIE XYZ Y component, which weights the channels perceptually rather
// than averaging them. Detection runs on this plane.
func Luminance(ci ColorImage) Mat {
	rows, cols := ci.Rows(), ci.Cols()
	out := NewMatWithSize(rows, cols)
	rd := ci.R.DataFloat32()
	gd := ci.G.DataFloat32()
	bd := ci.B.DataFloat32()
	dst := out.DataFloat32()

	for i := range dst {
		c := colorful.Color{R: float64(rd[i]), G: float64(gd[i]), B: float64(bd[i])}
		_, y, _ := c.Xyz()
		dst[i] = float32(y)
	}
	return out
}
