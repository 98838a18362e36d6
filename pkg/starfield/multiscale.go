package starfield

import (
	"math"
	"sort"
)

// DetectMultiScale runs the detection pipeline once per configured scale
// factor and merges the results into original-frame coordinates. A scale of
// 1.0 analyzes the image as-is; smaller factors resample first, favoring
// larger, softer stars that a single fine-scale pass can fragment or miss.
// When ClusterRadius is positive, detections of the same star across scales
// are collapsed to the brightest one.
func DetectMultiScale(img Mat, cfg *DetectionConfig) []Star {
	scales := cfg.Scales
	if len(scales) == 0 {
		scales = []float64{1.0}
	}

	var all []Star
	for _, scale := range scales {
		if scale <= 0 {
			continue
		}
		var scaled Mat
		if scale == 1.0 {
			scaled = img.Clone()
		} else {
			rows := int(float64(img.Rows()) * scale)
			cols := int(float64(img.Cols()) * scale)
			if rows < 4 || cols < 4 {
				cfg.logf("multiscale: skipping scale %.2f, image too small", scale)
				continue
			}
			scaled = NewMat()
			resizeBilinear(img, &scaled, rows, cols)
		}
		found := DetectStars(scaled, cfg)
		scaled.Close()
		cfg.logf("multiscale: scale %.2f found %d", scale, len(found))

		for _, s := range found {
			s.X = int(s.Centroid.X / scale)
			s.Y = int(s.Centroid.Y / scale)
			s.Scale = scale
			all = append(all, s)
		}
	}

	if cfg.ClusterRadius > 0 {
		all = clusterDetections(all, cfg.ClusterRadius)
		cfg.logf("multiscale: %d after clustering", len(all))
	}
	return all
}

// clusterDetections greedily merges detections within radius of each other,
// keeping the brightest of each group. Sorting by brightness first makes
// the winner of every cluster deterministic.
func clusterDetections(stars []Star, radius float64) []Star {
	if len(stars) < 2 {
		return stars
	}
	sorted := make([]Star, len(stars))
	copy(sorted, stars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Brightness > sorted[j].Brightness
	})

	r2 := radius * radius
	kept := make([]Star, 0, len(sorted))
	for _, s := range sorted {
		dup := false
		for _, k := range kept {
			dx := float64(s.X - k.X)
			dy := float64(s.Y - k.Y)
			if dx*dx+dy*dy <= r2 {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, s)
		}
	}
	return kept
}

// Distance returns the Euclidean distance between two detections in frame
// coordinates.
func (s Star) Distance(o Star) float64 {
	dx := float64(s.X - o.X)
	dy := float64(s.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
