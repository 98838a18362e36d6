package starfield

import (
	"fmt"
	"strings"
)

// DemosaicMethod selects the reconstruction strategy. The set is closed;
// ParseDemosaicMethod is the only way in from a string.
type DemosaicMethod int

const (
	// MethodSuperpixel collapses each 2x2 block into one output pixel.
	// It is the only method that changes image dimensions (halved).
	MethodSuperpixel DemosaicMethod = iota
	// MethodBilinear is the standard two-pass linear interpolation.
	MethodBilinear
	// MethodVNG is bilinear with gradient-directed green selection to
	// suppress color fringing near edges.
	MethodVNG
	// MethodAHD interpolates green by gradient-directed selection and
	// derives red/blue from chroma differences, processing row bands
	// concurrently.
	MethodAHD
	// MethodLaplacian runs bilinear, then adds back a fraction of each
	// channel's second-derivative response to recover edge sharpness.
	MethodLaplacian
)

func (m DemosaicMethod) String() string {
	switch m {
	case MethodSuperpixel:
		return "superpixel"
	case MethodBilinear:
		return "bilinear"
	case MethodVNG:
		return "vng"
	case MethodAHD:
		return "ahd"
	case MethodLaplacian:
		return "laplacian"
	default:
		return "unknown"
	}
}

// ParseDemosaicMethod maps a strategy name to its DemosaicMethod value.
func ParseDemosaicMethod(s string) (DemosaicMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "superpixel":
		return MethodSuperpixel, nil
	case "bilinear":
		return MethodBilinear, nil
	case "vng":
		return MethodVNG, nil
	case "ahd":
		return MethodAHD, nil
	case "laplacian":
		return MethodLaplacian, nil
	default:
		return 0, fmt.Errorf("unknown demosaic method %q", s)
	}
}

// ColorImage holds the three reconstructed channel planes.
type ColorImage struct {
	R, G, B Mat
}

func (ci ColorImage) Rows() int { return ci.G.Rows() }
func (ci ColorImage) Cols() int { return ci.G.Cols() }

func (ci *ColorImage) Close() {
	ci.R.Close()
	ci.G.Close()
	ci.B.Close()
}

// demosaicMargin is the mirror-padding width applied before interpolation.
// It exceeds the widest kernel radius (2) so every strategy reads only
// valid neighbors inside the original extent.
const demosaicMargin = 4

// laplacianWeight is the fraction of the second-derivative response added
// back by MethodLaplacian.
const laplacianWeight = 0.2

// Demosaic reconstructs a ColorImage from a mosaic frame.
//
// When pattern is PatternUnknown the classifier is consulted first. The
// frame is mirror-padded before interpolation and the result cropped back,
// so all methods except Superpixel preserve the input extent. An
// unrecognized pattern or method yields an error before any pixel work.
func Demosaic(frame Frame, pattern CFAPattern, method DemosaicMethod, workers int) (ColorImage, error) {
	if pattern == PatternUnknown {
		pattern = ClassifyPattern(frame.Data)
	}
	switch pattern {
	case PatternBGGR, PatternRGGB, PatternGBRG, PatternGRBG:
	default:
		return ColorImage{}, fmt.Errorf("invalid CFA pattern %d", int(pattern))
	}

	if method == MethodSuperpixel {
		return demosaicSuperpixel(frame.Data, pattern), nil
	}

	padded := mirrorPad(frame.Data, demosaicMargin)
	defer padded.Close()

	var full ColorImage
	switch method {
	case MethodBilinear:
		full = demosaicBilinear(padded, pattern)
	case MethodVNG:
		full = demosaicVNG(padded, pattern)
	case MethodAHD:
		full = demosaicAHD(padded, pattern, workers)
	case MethodLaplacian:
		full = demosaicBilinear(padded, pattern)
		sharpenLaplacian(&full.R)
		sharpenLaplacian(&full.G)
		sharpenLaplacian(&full.B)
	default:
		return ColorImage{}, fmt.Errorf("invalid demosaic method %d", int(method))
	}
	defer full.Close()

	out := ColorImage{
		R: cropMat(full.R, demosaicMargin, demosaicMargin, frame.Height, frame.Width),
		G: cropMat(full.G, demosaicMargin, demosaicMargin, frame.Height, frame.Width),
		B: cropMat(full.B, demosaicMargin, demosaicMargin, frame.Height, frame.Width),
	}
	return out, nil
}

// demosaicSuperpixel maps each non-overlapping 2x2 block to one output
// pixel: red and blue come straight from their sensor sites, green is the
// average of the two green sites. Output is half the input in each axis.
func demosaicSuperpixel(m Mat, pattern CFAPattern) ColorImage {
	rows, cols := m.Rows()/2, m.Cols()/2
	out := ColorImage{
		R: NewMatWithSize(rows, cols),
		G: NewMatWithSize(rows, cols),
		B: NewMatWithSize(rows, cols),
	}
	src := m.DataFloat32()
	w := m.Cols()
	rd := out.R.DataFloat32()
	gd := out.G.DataFloat32()
	bd := out.B.DataFloat32()

	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			var r, b float32
			var gSum float32
			for dy := 0; dy < 2; dy++ {
				for dx := 0; dx < 2; dx++ {
					v := src[(2*by+dy)*w+2*bx+dx]
					switch pattern.colorAt(2*by+dy, 2*bx+dx) {
					case chanRed:
						r = v
					case chanGreen:
						gSum += v
					case chanBlue:
						b = v
					}
				}
			}
			idx := by*cols + bx
			rd[idx] = r
			gd[idx] = gSum / 2
			bd[idx] = b
		}
	}
	return out
}

// demosaicBilinear performs the standard two-pass linear interpolation on a
// padded mosaic. The outermost padded ring is left untouched; it is
// discarded by the caller's crop.
func demosaicBilinear(m Mat, pattern CFAPattern) ColorImage {
	rows, cols := m.Rows(), m.Cols()
	out := ColorImage{
		R: NewMatWithSize(rows, cols),
		G: NewMatWithSize(rows, cols),
		B: NewMatWithSize(rows, cols),
	}
	src := m.DataFloat32()
	rd := out.R.DataFloat32()
	gd := out.G.DataFloat32()
	bd := out.B.DataFloat32()

	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			idx := y*cols + x
			p := src[idx]
			cross := (src[idx-1] + src[idx+1] + src[idx-cols] + src[idx+cols]) / 4
			diag := (src[idx-cols-1] + src[idx-cols+1] + src[idx+cols-1] + src[idx+cols+1]) / 4
			horiz := (src[idx-1] + src[idx+1]) / 2
			vert := (src[idx-cols] + src[idx+cols]) / 2

			switch pattern.colorAt(y, x) {
			case chanRed:
				rd[idx] = p
				gd[idx] = cross
				bd[idx] = diag
			case chanBlue:
				bd[idx] = p
				gd[idx] = cross
				rd[idx] = diag
			case chanGreen:
				gd[idx] = p
				if pattern.colorAt(y, x+1) == chanRed {
					rd[idx] = horiz
					bd[idx] = vert
				} else {
					rd[idx] = vert
					bd[idx] = horiz
				}
			}
		}
	}
	return out
}

// demosaicVNG is bilinear interpolation whose green channel is selected by
// local gradients: at red/blue sites the flatter of the horizontal and
// vertical axes supplies the green estimate, with a second-derivative
// correction from the known channel, which suppresses fringing across edges.
func demosaicVNG(m Mat, pattern CFAPattern) ColorImage {
	out := demosaicBilinear(m, pattern)
	rows, cols := m.Rows(), m.Cols()
	src := m.DataFloat32()
	gd := out.G.DataFloat32()

	for y := 2; y < rows-2; y++ {
		for x := 2; x < cols-2; x++ {
			ch := pattern.colorAt(y, x)
			if ch == chanGreen {
				continue
			}
			idx := y*cols + x
			p := src[idx]

			gradH := absFloat32(src[idx-1]-src[idx+1]) + absFloat32(src[idx-2]-2*p+src[idx+2])
			gradV := absFloat32(src[idx-cols]-src[idx+cols]) + absFloat32(src[idx-2*cols]-2*p+src[idx+2*cols])

			avgH := (src[idx-1]+src[idx+1])/2 + (2*p-src[idx-2]-src[idx+2])/4
			avgV := (src[idx-cols]+src[idx+cols])/2 + (2*p-src[idx-2*cols]-src[idx+2*cols])/4

			var g float32
			switch {
			case gradH < gradV:
				g = avgH
			case gradV < gradH:
				g = avgV
			default:
				g = (avgH + avgV) / 2
			}
			if g < 0 {
				g = 0
			} else if g > 1 {
				g = 1
			}
			gd[idx] = g
		}
	}
	return out
}

// sharpenLaplacian adds laplacianWeight of the plane's second-derivative
// response back into it, clipped to the valid intensity range.
func sharpenLaplacian(plane *Mat) {
	rows, cols := plane.Rows(), plane.Cols()
	data := plane.DataFloat32()
	orig := make([]float32, len(data))
	copy(orig, data)

	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			idx := y*cols + x
			lap := 4*orig[idx] - orig[idx-1] - orig[idx+1] - orig[idx-cols] - orig[idx+cols]
			data[idx] = orig[idx] + laplacianWeight*lap
		}
	}
	clampInPlace(plane, 0, 1)
}
