package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	sf "starfield/pkg/starfield"
)

type options struct {
	method     string
	pattern    string
	configPath string
	reportPath string
	overlay    string
	workers    int
	quiet      bool
}

// stderrLogger feeds pipeline progress to stderr, keeping stdout clean for
// the JSON report.
type stderrLogger struct{}

func (stderrLogger) Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	fs := flag.NewFlagSet("starfield", flag.ContinueOnError)
	fs.StringVar(&opts.method, "method", "bilinear", "demosaic method: superpixel, bilinear, vng, ahd, laplacian")
	fs.StringVar(&opts.pattern, "pattern", "", "CFA pattern override: rggb, bggr, grbg, gbrg (default: auto)")
	fs.StringVar(&opts.configPath, "config", "", "detection config YAML file")
	fs.StringVar(&opts.reportPath, "report", "", "write the JSON report here instead of stdout")
	fs.StringVar(&opts.overlay, "overlay", "", "write a detection overlay image here")
	fs.IntVar(&opts.workers, "workers", 0, "worker count override")
	fs.BoolVar(&opts.quiet, "quiet", false, "suppress progress output")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: starfield [flags] <image-or-directory>\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one input path")
	}
	input := fs.Arg(0)

	cfg := sf.NewDetectionConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = sf.LoadDetectionConfig(opts.configPath)
		if err != nil {
			return err
		}
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if !opts.quiet {
		cfg.Log = stderrLogger{}
	}

	method, err := sf.ParseDemosaicMethod(opts.method)
	if err != nil {
		return err
	}
	pattern := sf.PatternUnknown
	if opts.pattern != "" {
		pattern, err = sf.ParseCFAPattern(opts.pattern)
		if err != nil {
			return err
		}
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return runBatch(input, pattern, method, cfg, &opts)
	}
	return runSingle(input, pattern, method, cfg, &opts)
}

func runSingle(path string, pattern sf.CFAPattern, method sf.DemosaicMethod, cfg *sf.DetectionConfig, opts *options) error {
	start := time.Now()
	rep, lum, err := processFrame(path, pattern, method, cfg)
	if err != nil {
		return err
	}
	defer lum.Close()
	cfg.Log.Logf("processed %s in %.1fs", path, time.Since(start).Seconds())

	b, err := rep.JSON()
	if err != nil {
		return err
	}
	if opts.reportPath != "" {
		if err := os.WriteFile(opts.reportPath, b, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	} else {
		fmt.Println(string(b))
	}

	if opts.overlay != "" {
		stars := reportStars(rep)
		if err := sf.RenderDetections(lum, stars, opts.overlay); err != nil {
			return err
		}
	}
	return nil
}

// runBatch processes every frame in a directory with a fixed-size worker
// pool. Outputs land next to their inputs (<name>.stars.json, and
// <name>.stars.png when -overlay is set). A failing frame is reported and
// skipped; it does not stop the batch.
func runBatch(dir string, pattern sf.CFAPattern, method sf.DemosaicMethod, cfg *sf.DetectionConfig, opts *options) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading input directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".fits", ".fit", ".png", ".jpg", ".jpeg", ".tif", ".tiff":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no frames found in %s", dir)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if err := batchOne(path, pattern, method, cfg, opts); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
			}
		}()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	cfg.Log.Logf("batch: %d frames, %d failed", len(paths), failed)
	if failed == len(paths) {
		return fmt.Errorf("all %d frames failed", failed)
	}
	return nil
}

func batchOne(path string, pattern sf.CFAPattern, method sf.DemosaicMethod, cfg *sf.DetectionConfig, opts *options) error {
	rep, lum, err := processFrame(path, pattern, method, cfg)
	if err != nil {
		return err
	}
	defer lum.Close()

	b, err := rep.JSON()
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if err := os.WriteFile(base+".stars.json", b, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if opts.overlay != "" {
		if err := sf.RenderDetections(lum, reportStars(rep), base+".stars.png"); err != nil {
			return err
		}
	}
	return nil
}

// processFrame runs the full pipeline on one file and returns the report
// plus the luminance plane for optional overlay rendering. The caller owns
// the returned Mat.
func processFrame(path string, pattern sf.CFAPattern, method sf.DemosaicMethod, cfg *sf.DetectionConfig) (*sf.DetectionReport, sf.Mat, error) {
	frame, err := loadFrame(path, cfg)
	if err != nil {
		return nil, sf.Mat{}, err
	}
	defer frame.Close()

	if pattern == sf.PatternUnknown && frame.Pattern != sf.PatternUnknown {
		pattern = frame.Pattern
	}

	ci, err := sf.Demosaic(frame, pattern, method, cfg.Workers)
	if err != nil {
		return nil, sf.Mat{}, fmt.Errorf("demosaicing %s: %w", path, err)
	}
	defer ci.Close()

	lum := sf.Luminance(ci)
	stars := sf.DetectMultiScale(lum, cfg)
	rep := sf.NewDetectionReport(stars, ci.Cols(), ci.Rows())
	return rep, lum, nil
}

func loadFrame(path string, cfg *sf.DetectionConfig) (sf.Frame, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".fits") || strings.HasSuffix(lower, ".fit") {
		frame, meta, err := sf.ReadFITS(path)
		if err != nil {
			return sf.Frame{}, fmt.Errorf("reading FITS: %w", err)
		}
		cfg.Log.Logf("FITS loaded: %dx%d, %d-bit, instrument %q",
			frame.Width, frame.Height, frame.BitDepth, meta.Instrument())
		return frame, nil
	}
	return loadNonFitsFrame(path)
}

// reportStars rebuilds the Star slice from a report's records, for overlay
// rendering after the detection pass.
func reportStars(rep *sf.DetectionReport) []sf.Star {
	stars := make([]sf.Star, 0, len(rep.Stars))
	for _, r := range rep.Stars {
		stars = append(stars, sf.Star{
			X:           r.X,
			Y:           r.Y,
			Centroid:    sf.Point2d{X: r.CentroidX, Y: r.CentroidY},
			Brightness:  r.Brightness,
			Area:        r.Area,
			Perimeter:   r.Perimeter,
			Circularity: r.Circularity,
			Scale:       r.Scale,
		})
	}
	return stars
}
