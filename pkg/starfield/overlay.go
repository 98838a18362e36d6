package starfield

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// markerPadding is added to a star's estimated radius so the ring clears
// the star itself.
const markerPadding = 3

// RenderDetections draws detection markers over a grayscale rendering of
// the luminance plane and writes the result to outputPath. The encoding is
// chosen from the file extension.
func RenderDetections(lum Mat, stars []Star, outputPath string) error {
	img := renderDetectionImage(lum, stars)
	if err := imaging.Save(img, outputPath); err != nil {
		return fmt.Errorf("saving detection overlay: %w", err)
	}
	return nil
}

func renderDetectionImage(lum Mat, stars []Star) *image.RGBA {
	w, h := lum.Cols(), lum.Rows()
	summaryH := 20
	img := image.NewRGBA(image.Rect(0, 0, w, h+summaryH))

	data := lum.DataFloat32()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := data[y*w+x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			g := uint8(v * 255)
			img.Set(x, y, color.RGBA{g, g, g, 255})
		}
	}
	for y := h; y < h+summaryH; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{0, 0, 0, 255})
		}
	}

	markerColor := color.RGBA{80, 255, 80, 255}
	for _, s := range stars {
		radius := markerRadius(s)
		drawCircle(img, s.X, s.Y, radius, markerColor)
	}

	face := basicfont.Face7x13
	summary := fmt.Sprintf("stars: %d", len(stars))
	drawText(img, face, summary, 6, h+14, color.RGBA{220, 220, 220, 255})
	return img
}

// markerRadius sizes the ring from the detection's area, treating the
// region as a disk.
func markerRadius(s Star) int {
	if s.Perimeter <= 0 {
		return markerPadding + 1
	}
	r := int(2*s.Area/s.Perimeter) + markerPadding
	if r < markerPadding+1 {
		r = markerPadding + 1
	}
	return r
}

// drawText draws a string at (x, y) using the given font face.
func drawText(img *image.RGBA, face font.Face, s string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// drawCircle draws a circle outline using the midpoint algorithm.
func drawCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	x := radius
	y := 0
	err := 0

	for x >= y {
		img.Set(cx+x, cy+y, c)
		img.Set(cx+y, cy+x, c)
		img.Set(cx-y, cy+x, c)
		img.Set(cx-x, cy+y, c)
		img.Set(cx-x, cy-y, c)
		img.Set(cx-y, cy-x, c)
		img.Set(cx+y, cy-x, c)
		img.Set(cx+x, cy-y, c)

		y++
		err += 1 + 2*y
		if 2*(err-x)+1 > 0 {
			x--
			err += 1 - 2*x
		}
	}
}
