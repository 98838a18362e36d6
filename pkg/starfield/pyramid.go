package starfield

import "math"

// Pyramid is a multi-level band-pass decomposition: Details holds the
// per-level difference layers (finest first), Residual the final
// low-resolution image. Built and consumed within one detection pass.
type Pyramid struct {
	Details  []Mat
	Residual Mat
}

// Decompose builds a pyramid of up to the requested level count. Each level
// anti-alias filters and 2x-decimates the current image, upsamples the
// result back, and records the per-pixel difference as that level's detail
// layer. Decomposition stops early if the image becomes too small to halve.
func Decompose(img Mat, levels int) Pyramid {
	cur := img.Clone()
	p := Pyramid{Details: make([]Mat, 0, levels)}

	for i := 0; i < levels; i++ {
		if cur.Rows() < 4 || cur.Cols() < 4 {
			break
		}
		down := downsample2x(cur)
		up := NewMat()
		resizeBilinear(down, &up, cur.Rows(), cur.Cols())
		subtractInPlace(&cur, up)
		up.Close()
		p.Details = append(p.Details, cur)
		cur = down
	}
	p.Residual = cur
	return p
}

// Reconstruct inverts the decomposition: starting from the residual, each
// detail layer is added back after upsampling, coarsest first. The result
// matches the decomposed image up to resampling/rounding error.
func (p Pyramid) Reconstruct() Mat {
	cur := p.Residual.Clone()
	for i := len(p.Details) - 1; i >= 0; i-- {
		up := NewMat()
		resizeBilinear(cur, &up, p.Details[i].Rows(), p.Details[i].Cols())
		cur.Close()
		addInPlace(&up, p.Details[i])
		cur = up
	}
	return cur
}

// ReconstructBackground reconstructs only the coarsest two layers (the last
// detail layer and the residual), yielding the frame's smooth background
// estimate at full resolution.
func (p Pyramid) ReconstructBackground() Mat {
	cur := p.Residual.Clone()
	for i := len(p.Details) - 1; i >= 0; i-- {
		up := NewMat()
		resizeBilinear(cur, &up, p.Details[i].Rows(), p.Details[i].Cols())
		cur.Close()
		cur = up
		if i == len(p.Details)-1 {
			addInPlace(&cur, p.Details[i])
		}
	}
	return cur
}

// ReconstructFinest inverts the transform using only the n finest detail
// layers, with the residual and coarser details zeroed. The result is the
// high-frequency content of the decomposed image.
func (p Pyramid) ReconstructFinest(n int) Mat {
	if n > len(p.Details) {
		n = len(p.Details)
	}
	cur := NewMatWithSize(p.Residual.Rows(), p.Residual.Cols())
	for i := len(p.Details) - 1; i >= 0; i-- {
		up := NewMat()
		resizeBilinear(cur, &up, p.Details[i].Rows(), p.Details[i].Cols())
		cur.Close()
		cur = up
		if i < n {
			addInPlace(&cur, p.Details[i])
		}
	}
	return cur
}

func (p *Pyramid) Close() {
	for i := range p.Details {
		p.Details[i].Close()
	}
	p.Details = nil
	p.Residual.Close()
}

// SubtractBackground resizes bg to img's extent, subtracts it per pixel and
// clamps negative results to zero. Inputs are not modified.
func SubtractBackground(img, bg Mat) Mat {
	out := img.Clone()
	if bg.Rows() != img.Rows() || bg.Cols() != img.Cols() {
		resized := NewMat()
		resizeBilinear(bg, &resized, img.Rows(), img.Cols())
		subtractInPlace(&out, resized)
		resized.Close()
	} else {
		subtractInPlace(&out, bg)
	}
	clampInPlace(&out, 0, math.MaxFloat32)
	return out
}

// downsample2x anti-alias filters with a 5-tap Gaussian and keeps every
// second sample in both axes.
func downsample2x(m Mat) Mat {
	blurred := NewMat()
	convolveGaussian(m, &blurred, 5)
	defer blurred.Close()

	rows, cols := m.Rows(), m.Cols()
	outRows, outCols := (rows+1)/2, (cols+1)/2
	out := NewMatWithSize(outRows, outCols)
	src := blurred.DataFloat32()
	dst := out.DataFloat32()
	for y := 0; y < outRows; y++ {
		for x := 0; x < outCols; x++ {
			dst[y*outCols+x] = src[2*y*cols+2*x]
		}
	}
	return out
}
