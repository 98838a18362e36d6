package starfield

import (
	"encoding/json"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// StarRecord is the serialized form of one detection.
type StarRecord struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	CentroidX   float64 `json:"centroid_x"`
	CentroidY   float64 `json:"centroid_y"`
	Brightness  float64 `json:"brightness"`
	Area        float64 `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	Circularity float64 `json:"circularity"`
	Scale       float64 `json:"scale"`
}

// DetectionReport summarizes one frame's detection run.
type DetectionReport struct {
	Width             int          `json:"width"`
	Height            int          `json:"height"`
	Count             int          `json:"count"`
	MedianBrightness  float64      `json:"median_brightness"`
	MedianCircularity float64      `json:"median_circularity"`
	Stars             []StarRecord `json:"stars"`
}

// NewDetectionReport builds a report from a detection result. Stars are
// listed brightest first.
func NewDetectionReport(stars []Star, width, height int) *DetectionReport {
	rep := &DetectionReport{
		Width:  width,
		Height: height,
		Count:  len(stars),
		Stars:  make([]StarRecord, 0, len(stars)),
	}
	if len(stars) == 0 {
		return rep
	}

	brightness := make([]float64, len(stars))
	circularity := make([]float64, len(stars))
	for i, s := range stars {
		brightness[i] = s.Brightness
		circularity[i] = s.Circularity
	}
	sort.Float64s(brightness)
	sort.Float64s(circularity)
	rep.MedianBrightness = stat.Quantile(0.5, stat.Empirical, brightness, nil)
	rep.MedianCircularity = stat.Quantile(0.5, stat.Empirical, circularity, nil)

	ordered := make([]Star, len(stars))
	copy(ordered, stars)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Brightness > ordered[j].Brightness
	})
	for _, s := range ordered {
		rep.Stars = append(rep.Stars, StarRecord{
			X:           s.X,
			Y:           s.Y,
			CentroidX:   s.Centroid.X,
			CentroidY:   s.Centroid.Y,
			Brightness:  s.Brightness,
			Area:        s.Area,
			Perimeter:   s.Perimeter,
			Circularity: s.Circularity,
			Scale:       s.Scale,
		})
	}
	return rep
}

// JSON renders the report as indented JSON.
func (r *DetectionReport) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding detection report: %w", err)
	}
	return b, nil
}
