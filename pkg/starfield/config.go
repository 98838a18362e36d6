package starfield

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Logger is the observability hook threaded through the pipeline. Stages
// report progress through it; the default discards everything. There is no
// process-wide logger.
type Logger interface {
	Logf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Logf(string, ...any) {}

// DetectionConfig is the immutable parameter bundle for a detection run.
// Construct it once (NewDetectionConfig or LoadDetectionConfig) and do not
// mutate it while a run is in flight.
type DetectionConfig struct {
	// MedianKernel is the noise-suppression median filter size; values
	// below 3 disable the filter.
	MedianKernel int `yaml:"median_kernel"`
	// PyramidLevels is the decomposition depth for background estimation.
	PyramidLevels int `yaml:"pyramid_levels"`
	// Threshold is the hard binarization threshold; pixels >= Threshold
	// become foreground.
	Threshold float64 `yaml:"threshold"`
	// MinPixels is the minimum foreground count inside the radius-5
	// sampling disk around a candidate centroid.
	MinPixels int `yaml:"min_pixels"`
	// MinBrightness is the minimum mean intensity inside the sampling disk.
	MinBrightness float64 `yaml:"min_brightness"`
	// MinCircularity and MaxCircularity bound the accepted shape metric
	// 4*pi*area/perimeter^2.
	MinCircularity float64 `yaml:"min_circularity"`
	MaxCircularity float64 `yaml:"max_circularity"`
	// Scales lists the analysis scale factors for multiscale detection.
	Scales []float64 `yaml:"scales"`
	// ClusterRadius groups cross-scale detections within this pixel
	// distance, keeping the brightest; 0 disables clustering and reports
	// raw per-scale detections.
	ClusterRadius float64 `yaml:"cluster_radius"`
	// Workers sizes the row-band pool of the AHD demosaic strategy and the
	// batch frame pool.
	Workers int `yaml:"workers"`

	Log Logger `yaml:"-"`
}

// NewDetectionConfig returns a DetectionConfig with default values.
func NewDetectionConfig() *DetectionConfig {
	return &DetectionConfig{
		MedianKernel:   3,
		PyramidLevels:  4,
		Threshold:      0.1,
		MinPixels:      5,
		MinBrightness:  0.05,
		MinCircularity: 0.4,
		MaxCircularity: 1.6,
		Scales:         []float64{1.0, 0.75, 0.5},
		ClusterRadius:  3.0,
		Workers:        4,
		Log:            nopLogger{},
	}
}

// LoadDetectionConfig reads a YAML file over the defaults, so partial files
// only override the keys they name.
func LoadDetectionConfig(path string) (*DetectionConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading detection config: %w", err)
	}
	cfg := NewDetectionConfig()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parsing detection config: %w", err)
	}
	return cfg, nil
}

// logf reports through the configured sink, tolerating a nil Log.
func (c *DetectionConfig) logf(format string, args ...any) {
	if c.Log != nil {
		c.Log.Logf(format, args...)
	}
}
