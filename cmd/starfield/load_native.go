//go:build !purego && !js

package main

import (
	"fmt"

	"gocv.io/x/gocv"

	sf "starfield/pkg/starfield"
)

// loadNonFitsFrame reads a PNG/JPEG/TIFF file holding a raw sensor mosaic
// stored as grayscale and returns it as a normalized frame.
func loadNonFitsFrame(path string) (sf.Frame, error) {
	src := gocv.IMRead(path, gocv.IMReadUnchanged)
	if src.Empty() {
		return sf.Frame{}, fmt.Errorf("could not load image: %s", path)
	}
	defer src.Close()

	w, h := src.Cols(), src.Rows()
	n := w * h
	pixels := make([]uint16, n)

	switch src.Type() {
	case gocv.MatTypeCV16U:
		srcData, err := src.DataPtrUint16()
		if err != nil {
			return sf.Frame{}, fmt.Errorf("reading 16-bit image data: %w", err)
		}
		copy(pixels, srcData[:n])
		return sf.NewFrameFromUint16(pixels, 16, w, h), nil
	case gocv.MatTypeCV8U:
		srcData, err := src.DataPtrUint8()
		if err != nil {
			return sf.Frame{}, fmt.Errorf("reading 8-bit image data: %w", err)
		}
		for i := 0; i < n; i++ {
			pixels[i] = uint16(srcData[i])
		}
		return sf.NewFrameFromUint16(pixels, 8, w, h), nil
	default:
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
		srcData, err := gray.DataPtrUint8()
		if err != nil {
			return sf.Frame{}, fmt.Errorf("converting image to grayscale: %w", err)
		}
		for i := 0; i < n; i++ {
			pixels[i] = uint16(srcData[i])
		}
		return sf.NewFrameFromUint16(pixels, 8, w, h), nil
	}
}
