//go:build purego || js

package main

import (
	"fmt"

	"github.com/disintegration/imaging"

	sf "starfield/pkg/starfield"
)

// loadNonFitsFrame decodes a PNG/JPEG/TIFF file holding a raw sensor mosaic
// stored as grayscale and returns it as a normalized frame.
func loadNonFitsFrame(path string) (sf.Frame, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return sf.Frame{}, fmt.Errorf("opening image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]uint16, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			gray := uint16((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
			pixels[y*w+x] = gray
		}
	}

	return sf.NewFrameFromUint16(pixels, 16, w, h), nil
}
