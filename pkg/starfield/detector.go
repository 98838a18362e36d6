package starfield

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Point2d is a sub-pixel image coordinate.
type Point2d struct {
	X, Y float64
}

// StarCandidate is one connected bright region of the binarized image,
// before brightness/size/shape filtering.
type StarCandidate struct {
	Centroid  Point2d
	Area      float64
	Perimeter float64
}

// Star is an accepted detection. X, Y are integer pixel coordinates in the
// original frame; Centroid keeps the sub-pixel position at the scale the
// star was found. Scale records the analysis scale factor.
type Star struct {
	X, Y        int
	Centroid    Point2d
	Brightness  float64
	Area        float64
	Perimeter   float64
	Circularity float64
	Scale       float64
}

// starSampleRadius is the radius of the disk sampled around a candidate
// centroid for the size and brightness checks.
const starSampleRadius = 5

// DetectStars runs the single-scale detection pipeline on a luminance
// image: median filter, pyramid background subtraction, band-pass
// reconstruction, binarization, region extraction and candidate filtering.
// Results are in contour discovery order.
func DetectStars(img Mat, cfg *DetectionConfig) []Star {
	filtered := NewMat()
	if cfg.MedianKernel >= 3 {
		medianBlur(img, &filtered, cfg.MedianKernel)
	} else {
		CopyMatTo(img, &filtered)
	}
	defer filtered.Close()

	pyr := Decompose(filtered, cfg.PyramidLevels)
	bg := pyr.ReconstructBackground()
	pyr.Close()
	sub := SubtractBackground(filtered, bg)
	bg.Close()
	defer sub.Close()

	// High-frequency content of the background-subtracted frame: a shallow
	// second decomposition reconstructed from its two finest detail layers.
	subPyr := Decompose(sub, 2)
	band := subPyr.ReconstructFinest(2)
	subPyr.Close()
	defer band.Close()
	clampInPlace(&band, 0, math.MaxFloat32)

	w, h := band.Cols(), band.Rows()
	mask := binarizeMask(band, float32(cfg.Threshold))
	regions := extractRegions(mask, w, h)
	cfg.logf("detect: %dx%d, %d candidate regions", w, h, len(regions))

	bandData := band.DataFloat32()
	stars := make([]Star, 0, len(regions))
	for _, region := range regions {
		cand := measureRegion(region, mask, w, h)
		if star, ok := acceptCandidate(cand, mask, bandData, w, h, cfg); ok {
			stars = append(stars, star)
		}
	}
	cfg.logf("detect: %d stars accepted", len(stars))
	return stars
}

// binarizeMask applies the hard threshold: pixels >= threshold are
// foreground.
func binarizeMask(m Mat, threshold float32) []bool {
	data := m.DataFloat32()
	mask := make([]bool, m.Rows()*m.Cols())
	for i, v := range data {
		mask[i] = v >= threshold
	}
	return mask
}

// extractRegions groups 8-connected foreground pixels into regions using
// an iterative flood fill.
func extractRegions(mask []bool, w, h int) [][]image.Point {
	visited := make([]bool, len(mask))
	var regions [][]image.Point
	var stack []image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] || visited[y*w+x] {
				continue
			}
			var region []image.Point
			stack = append(stack[:0], image.Pt(x, y))
			visited[y*w+x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				region = append(region, p)
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						idx := ny*w + nx
						if mask[idx] && !visited[idx] {
							visited[idx] = true
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
			}
			regions = append(regions, region)
		}
	}
	return regions
}

// measureRegion computes the centroid (image moments), pixel area and
// external boundary perimeter of one region.
func measureRegion(region []image.Point, mask []bool, w, h int) StarCandidate {
	var sx, sy float64
	var start image.Point
	first := true
	for _, p := range region {
		sx += float64(p.X)
		sy += float64(p.Y)
		if first || p.Y < start.Y || (p.Y == start.Y && p.X < start.X) {
			start = p
			first = false
		}
	}
	area := float64(len(region))
	perimeter := tracePerimeter(mask, w, h, start, len(region))
	if perimeter > 0 {
		// the traced path runs through boundary pixel centers, half a
		// pixel inside the region's true edge; offsetting a closed
		// boundary outward by half a pixel lengthens it by pi. Without
		// this a small digitized disk measures well above unit
		// circularity.
		perimeter += math.Pi
	}
	return StarCandidate{
		Centroid:  Point2d{X: sx / area, Y: sy / area},
		Area:      area,
		Perimeter: perimeter,
	}
}

// mooreDirs enumerates the 8-neighborhood clockwise starting east, with
// y growing downward.
var mooreDirs = [8]image.Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// tracePerimeter follows the external boundary of the region containing
// start using Moore-neighbor tracing and returns the traversed length
// (sqrt 2 per diagonal step). An isolated single pixel has no boundary to
// walk and yields 0; callers must treat that as degenerate.
func tracePerimeter(mask []bool, w, h int, start image.Point, area int) float64 {
	at := func(p image.Point) bool {
		return p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h && mask[p.Y*w+p.X]
	}

	startDir := -1
	for i := range mooreDirs {
		if at(start.Add(mooreDirs[i])) {
			startDir = i
			break
		}
	}
	if startDir < 0 {
		return 0
	}

	stepLen := func(d int) float64 {
		if d%2 == 0 {
			return 1
		}
		return math.Sqrt2
	}

	perimeter := 0.0
	cur := start
	dir := startDir
	maxSteps := 4*area + 8
	for step := 0; step < maxSteps; step++ {
		cur = cur.Add(mooreDirs[dir])
		perimeter += stepLen(dir)

		// resume the clockwise scan from the direction we came in on
		next := -1
		for j := 0; j < 8; j++ {
			d := (dir + 6 + j) % 8
			if at(cur.Add(mooreDirs[d])) {
				next = d
				break
			}
		}
		if next < 0 {
			break
		}
		dir = next
		if cur == start && dir == startDir {
			break
		}
	}
	return perimeter
}

// acceptCandidate applies the brightness, size and circularity filters.
// Candidates with zero perimeter are degenerate and always rejected.
func acceptCandidate(cand StarCandidate, mask []bool, intensity []float32, w, h int, cfg *DetectionConfig) (Star, bool) {
	if cand.Perimeter <= 0 {
		return Star{}, false
	}
	circularity := 4 * math.Pi * cand.Area / (cand.Perimeter * cand.Perimeter)
	if circularity < cfg.MinCircularity || circularity > cfg.MaxCircularity {
		return Star{}, false
	}

	cx := int(math.Round(cand.Centroid.X))
	cy := int(math.Round(cand.Centroid.Y))
	foreground := 0
	var samples []float64
	for dy := -starSampleRadius; dy <= starSampleRadius; dy++ {
		for dx := -starSampleRadius; dx <= starSampleRadius; dx++ {
			if dx*dx+dy*dy > starSampleRadius*starSampleRadius {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			if mask[y*w+x] {
				foreground++
				samples = append(samples, float64(intensity[y*w+x]))
			}
		}
	}
	if foreground <= cfg.MinPixels {
		return Star{}, false
	}
	brightness := stat.Mean(samples, nil)
	if brightness <= cfg.MinBrightness {
		return Star{}, false
	}

	return Star{
		X:           int(cand.Centroid.X),
		Y:           int(cand.Centroid.Y),
		Centroid:    cand.Centroid,
		Brightness:  brightness,
		Area:        cand.Area,
		Perimeter:   cand.Perimeter,
		Circularity: circularity,
		Scale:       1.0,
	}, true
}
