package starfield

import (
	"fmt"
	"strings"
)

// CFAPattern identifies the 2x2 color-filter tiling of a sensor mosaic.
type CFAPattern int

const (
	PatternUnknown CFAPattern = iota
	PatternBGGR
	PatternRGGB
	PatternGBRG
	PatternGRBG
)

// patternOrder is the fixed candidate iteration order used by the
// classifier; ties resolve to the earliest entry.
var patternOrder = [4]CFAPattern{PatternBGGR, PatternRGGB, PatternGBRG, PatternGRBG}

func (p CFAPattern) String() string {
	switch p {
	case PatternBGGR:
		return "BGGR"
	case PatternRGGB:
		return "RGGB"
	case PatternGBRG:
		return "GBRG"
	case PatternGRBG:
		return "GRBG"
	default:
		return "unknown"
	}
}

// ParseCFAPattern maps a pattern name to its CFAPattern value.
func ParseCFAPattern(s string) (CFAPattern, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BGGR":
		return PatternBGGR, nil
	case "RGGB":
		return PatternRGGB, nil
	case "GBRG":
		return PatternGBRG, nil
	case "GRBG":
		return PatternGRBG, nil
	default:
		return PatternUnknown, fmt.Errorf("unknown CFA pattern %q", s)
	}
}

type cfaChannel int

const (
	chanRed cfaChannel = iota
	chanGreen
	chanBlue
)

// offsets translate each pattern into the canonical RGGB tiling:
//
//	R G
//	G B
func (p CFAPattern) offsets() (xOff, yOff int) {
	switch p {
	case PatternRGGB:
		return 0, 0
	case PatternGRBG:
		return 1, 0
	case PatternGBRG:
		return 0, 1
	case PatternBGGR:
		return 1, 1
	default:
		return 0, 0
	}
}

// colorAt returns which channel the physical pixel at (y, x) senses under
// pattern p.
func (p CFAPattern) colorAt(y, x int) cfaChannel {
	xOff, yOff := p.offsets()
	if (y+yOff)&1 == 0 {
		if (x+xOff)&1 == 0 {
			return chanRed
		}
		return chanGreen
	}
	if (x+xOff)&1 == 0 {
		return chanGreen
	}
	return chanBlue
}

const (
	classifierEdgeThreshold = 0.04
	classifierColorWeight   = 0.25
)

// ClassifyPattern infers the CFA pattern of a mosaic from pixel statistics.
//
// For every non-overlapping 2x2 block, each candidate pattern is scored by
// (a) the agreement of the two samples it assigns to green, (b) the same
// agreement weighted by the block's edge-map response, so that patterns whose
// same-channel pairs stay consistent across genuine image structure pull
// ahead, and (c) a color-sum pass that prefers placing red on the brighter
// of the two remaining sites. The last term encodes a warm-scene prior and
// is what separates patterns that differ only by an R/B swap; callers that
// need certainty should supply an explicit pattern instead.
//
// Always returns one of the four patterns. Ambiguous (e.g. flat synthetic)
// input resolves to the first candidate in iteration order.
func ClassifyPattern(m Mat) CFAPattern {
	edges := gradientEdgeMap(m, classifierEdgeThreshold)
	defer edges.Close()

	w, h := m.Cols(), m.Rows()
	data := m.DataFloat32()
	edgeData := edges.DataFloat32()

	var scores [4]float64
	for by := 0; by+1 < h; by += 2 {
		for bx := 0; bx+1 < w; bx += 2 {
			for i, pat := range patternOrder {
				var green [2]float64
				var greenEdge [2]float64
				gi := 0
				var redSum, blueSum float64
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						idx := (by+dy)*w + bx + dx
						v := float64(data[idx])
						switch pat.colorAt(by+dy, bx+dx) {
						case chanGreen:
							green[gi] = v
							greenEdge[gi] = float64(edgeData[idx])
							gi++
						case chanRed:
							redSum += v
						case chanBlue:
							blueSum += v
						}
					}
				}
				// the same-channel pair is scored by agreement
				// (1 - |g0-g1|) instead of its raw intensity sum:
				// bounded per block, so bright regions cannot
				// outvote the rest of the frame
				agree := 1.0 - absFloat64(green[0]-green[1])
				scores[i] += agree
				scores[i] += agree * (greenEdge[0] + greenEdge[1])
				scores[i] += classifierColorWeight * (redSum - blueSum)
			}
		}
	}

	best := 0
	for i := 1; i < 4; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return patternOrder[best]
}

// gradientEdgeMap computes a thresholded gradient-magnitude map. Values
// below the threshold are zeroed so flat regions contribute nothing.
func gradientEdgeMap(m Mat, threshold float32) Mat {
	w, h := m.Cols(), m.Rows()
	out := NewMatWithSize(h, w)
	src := m.DataFloat32()
	dst := out.DataFloat32()

	for y := 0; y < h; y++ {
		yn := y + 1
		if yn >= h {
			yn = h - 1
		}
		for x := 0; x < w; x++ {
			xn := x + 1
			if xn >= w {
				xn = w - 1
			}
			dx := src[y*w+xn] - src[y*w+x]
			dy := src[yn*w+x] - src[y*w+x]
			mag := absFloat32(dx) + absFloat32(dy)
			if mag >= threshold {
				dst[y*w+x] = mag
			}
		}
	}
	return out
}

func absFloat32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
