//go:build purego || js

package starfield

import (
	"math"
)

// Mat is a pure Go 2D float32 matrix, used when the gocv backend is
// unavailable (purego or js builds).
type Mat struct {
	data []float32
	rows int
	cols int
}

func NewMat() Mat { return Mat{} }

func NewMatWithSize(rows, cols int) Mat {
	return Mat{
		data: make([]float32, rows*cols),
		rows: rows,
		cols: cols,
	}
}

func (m Mat) Rows() int   { return m.rows }
func (m Mat) Cols() int   { return m.cols }
func (m Mat) Empty() bool { return m.data == nil || m.rows == 0 || m.cols == 0 }

func (m Mat) Clone() Mat {
	out := NewMatWithSize(m.rows, m.cols)
	copy(out.data, m.data)
	return out
}

func (m *Mat) Close() {
	m.data = nil
	m.rows = 0
	m.cols = 0
}

func (m Mat) DataFloat32() []float32 { return m.data }

func CopyMatTo(src Mat, dst *Mat) {
	if dst.rows != src.rows || dst.cols != src.cols || dst.data == nil {
		*dst = NewMatWithSize(src.rows, src.cols)
	}
	copy(dst.data, src.data)
}

// --- Pure Go CV operations ---

func sepFilter2DReflect(src Mat, dst *Mat, kernelX, kernelY Mat) {
	rows, cols := src.rows, src.cols
	srcData := src.data
	kx := kernelX.data
	ky := kernelY.data
	kxHalf := len(kx) / 2
	kyHalf := len(ky) / 2

	if dst.rows != rows || dst.cols != cols || dst.data == nil {
		*dst = NewMatWithSize(rows, cols)
	}

	temp := make([]float32, rows*cols)
	for r := 0; r < rows; r++ {
		rowOff := r * cols
		for c := 0; c < cols; c++ {
			var sum float32
			for k := range kx {
				cc := reflectIndex(c+k-kxHalf, cols)
				sum += srcData[rowOff+cc] * kx[k]
			}
			temp[rowOff+c] = sum
		}
	}

	dstData := dst.data
	for r := 0; r < rows; r++ {
		dstOff := r * cols
		for c := 0; c < cols; c++ {
			var sum float32
			for k := range ky {
				rr := reflectIndex(r+k-kyHalf, rows)
				sum += temp[rr*cols+c] * ky[k]
			}
			dstData[dstOff+c] = sum
		}
	}
}

func getGaussianKernel1D(size int, sigma float64) Mat {
	m := NewMatWithSize(size, 1)
	half := size / 2
	sum := 0.0
	for i := 0; i < size; i++ {
		x := float64(i - half)
		v := math.Exp(-x * x / (2 * sigma * sigma))
		m.data[i] = float32(v)
		sum += v
	}
	for i := range m.data {
		m.data[i] = float32(float64(m.data[i]) / sum)
	}
	return m
}

func medianBlur(src Mat, dst *Mat, ksize int) {
	rows, cols := src.rows, src.cols
	half := ksize / 2
	result := make([]float32, rows*cols)
	window := make([]float32, 0, ksize*ksize)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			window = window[:0]
			for dr := -half; dr <= half; dr++ {
				rr := r + dr
				if rr < 0 {
					rr = 0
				} else if rr >= rows {
					rr = rows - 1
				}
				for dc := -half; dc <= half; dc++ {
					cc := c + dc
					if cc < 0 {
						cc = 0
					} else if cc >= cols {
						cc = cols - 1
					}
					window = append(window, src.data[rr*cols+cc])
				}
			}
			// insertion sort; windows are tiny
			for i := 1; i < len(window); i++ {
				for j := i; j > 0 && window[j] < window[j-1]; j-- {
					window[j], window[j-1] = window[j-1], window[j]
				}
			}
			result[r*cols+c] = window[len(window)/2]
		}
	}

	if dst.rows != rows || dst.cols != cols || dst.data == nil {
		*dst = NewMatWithSize(rows, cols)
	}
	copy(dst.data, result)
}

func resizeBilinear(src Mat, dst *Mat, rows, cols int) {
	if dst.rows != rows || dst.cols != cols || dst.data == nil {
		*dst = NewMatWithSize(rows, cols)
	}
	if rows == src.rows && cols == src.cols {
		copy(dst.data, src.data)
		return
	}

	sy := float64(src.rows) / float64(rows)
	sx := float64(src.cols) / float64(cols)
	result := dst.data

	for r := 0; r < rows; r++ {
		fy := (float64(r)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		ry := fy - float64(y0)
		if y0 < 0 {
			y0, ry = 0, 0
		}
		y1 := y0 + 1
		if y1 > src.rows-1 {
			y1 = src.rows - 1
		}
		for c := 0; c < cols; c++ {
			fx := (float64(c)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			rx := fx - float64(x0)
			if x0 < 0 {
				x0, rx = 0, 0
			}
			x1 := x0 + 1
			if x1 > src.cols-1 {
				x1 = src.cols - 1
			}
			p00 := float64(src.data[y0*src.cols+x0])
			p01 := float64(src.data[y0*src.cols+x1])
			p10 := float64(src.data[y1*src.cols+x0])
			p11 := float64(src.data[y1*src.cols+x1])
			top := p00 + rx*(p01-p00)
			bot := p10 + rx*(p11-p10)
			result[r*cols+c] = float32(top + ry*(bot-top))
		}
	}
}
