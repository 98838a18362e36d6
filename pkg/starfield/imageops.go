package starfield

// reflectIndex maps an out-of-range index back into [0, size) by mirror
// reflection about the edges (the edge sample itself is not repeated, so
// CFA phase is preserved under even margins).
func reflectIndex(idx, size int) int {
	if idx < 0 {
		idx = -idx
	}
	for idx >= size {
		idx = 2*size - 2 - idx
		if idx < 0 {
			idx = -idx
		}
	}
	return idx
}

// mirrorPad returns a copy of m extended by margin pixels on every side
// using mirror reflection.
func mirrorPad(m Mat, margin int) Mat {
	rows, cols := m.Rows(), m.Cols()
	out := NewMatWithSize(rows+2*margin, cols+2*margin)
	src := m.DataFloat32()
	dst := out.DataFloat32()
	outCols := cols + 2*margin

	for y := 0; y < rows+2*margin; y++ {
		sy := reflectIndex(y-margin, rows)
		for x := 0; x < cols+2*margin; x++ {
			sx := reflectIndex(x-margin, cols)
			dst[y*outCols+x] = src[sy*cols+sx]
		}
	}
	return out
}

// cropMat copies the rows x cols window of src starting at (top, left).
func cropMat(src Mat, top, left, rows, cols int) Mat {
	out := NewMatWithSize(rows, cols)
	srcData := src.DataFloat32()
	dstData := out.DataFloat32()
	srcCols := src.Cols()
	for y := 0; y < rows; y++ {
		copy(dstData[y*cols:(y+1)*cols], srcData[(top+y)*srcCols+left:(top+y)*srcCols+left+cols])
	}
	return out
}

// clampInPlace clamps mat values to [lo, hi].
func clampInPlace(m *Mat, lo, hi float32) {
	data := m.DataFloat32()
	n := m.Rows() * m.Cols()
	for i := 0; i < n; i++ {
		if data[i] < lo {
			data[i] = lo
		} else if data[i] > hi {
			data[i] = hi
		}
	}
}

// addInPlace adds rhs to lhs element-wise. Dimensions must match.
func addInPlace(lhs *Mat, rhs Mat) {
	l := lhs.DataFloat32()
	r := rhs.DataFloat32()
	n := lhs.Rows() * lhs.Cols()
	for i := 0; i < n; i++ {
		l[i] += r[i]
	}
}

// subtractInPlace subtracts rhs from lhs element-wise. Dimensions must match.
func subtractInPlace(lhs *Mat, rhs Mat) {
	l := lhs.DataFloat32()
	r := rhs.DataFloat32()
	n := lhs.Rows() * lhs.Cols()
	for i := 0; i < n; i++ {
		l[i] -= r[i]
	}
}

// convolveGaussian applies a separated Gaussian of the given odd kernel size.
func convolveGaussian(src Mat, dst *Mat, kernelSize int) {
	if kernelSize < 3 || kernelSize%2 == 0 {
		panic("kernelSize must be a positive odd number >= 3")
	}
	sigma := 0.159758 * float64(kernelSize)
	kernel := getGaussianKernel1D(kernelSize, sigma)
	defer kernel.Close()
	sepFilter2DReflect(src, dst, kernel, kernel)
}
