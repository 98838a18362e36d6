package starfield

import "sync"

// demosaicAHD reconstructs the padded mosaic with gradient-directed green
// interpolation followed by chroma-difference red/blue interpolation.
//
// The frame is partitioned into horizontal row bands, one per worker. Each
// pass reads only the immutable source (and, in the second pass, the green
// plane completed by the first) and writes exclusively to its own band's
// rows, so no locking is needed. The WaitGroup barrier between the green
// and chroma passes is what makes cross-band neighbor reads safe: by the
// time any worker consults a green value from an adjacent band, that band
// has fully committed it. Band boundaries therefore produce no seams.
func demosaicAHD(m Mat, pattern CFAPattern, workers int) ColorImage {
	rows, cols := m.Rows(), m.Cols()
	if workers < 1 {
		workers = 1
	}

	out := ColorImage{
		R: NewMatWithSize(rows, cols),
		G: NewMatWithSize(rows, cols),
		B: NewMatWithSize(rows, cols),
	}
	src := m.DataFloat32()
	rd := out.R.DataFloat32()
	gd := out.G.DataFloat32()
	bd := out.B.DataFloat32()

	bands := splitRowBands(2, rows-2, workers)

	// Pass 1: green plane.
	var wg sync.WaitGroup
	for _, band := range bands {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				for x := 2; x < cols-2; x++ {
					idx := y*cols + x
					p := src[idx]
					if pattern.colorAt(y, x) == chanGreen {
						gd[idx] = p
						continue
					}
					gradH := absFloat32(src[idx-1]-src[idx+1]) + absFloat32(src[idx-2]-2*p+src[idx+2])
					gradV := absFloat32(src[idx-cols]-src[idx+cols]) + absFloat32(src[idx-2*cols]-2*p+src[idx+2*cols])
					switch {
					case gradH < gradV:
						gd[idx] = (src[idx-1] + src[idx+1]) / 2
					case gradV < gradH:
						gd[idx] = (src[idx-cols] + src[idx+cols]) / 2
					default:
						gd[idx] = (src[idx-1] + src[idx+1] + src[idx-cols] + src[idx+cols]) / 4
					}
				}
			}
		}(band[0], band[1])
	}
	wg.Wait()

	// Pass 2: red and blue from chroma differences against green.
	for _, band := range bands {
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				for x := 2; x < cols-2; x++ {
					idx := y*cols + x
					p := src[idx]
					g := gd[idx]
					diagDiff := (src[idx-cols-1] - gd[idx-cols-1] +
						src[idx-cols+1] - gd[idx-cols+1] +
						src[idx+cols-1] - gd[idx+cols-1] +
						src[idx+cols+1] - gd[idx+cols+1]) / 4
					horizDiff := (src[idx-1] - gd[idx-1] + src[idx+1] - gd[idx+1]) / 2
					vertDiff := (src[idx-cols] - gd[idx-cols] + src[idx+cols] - gd[idx+cols]) / 2

					switch pattern.colorAt(y, x) {
					case chanRed:
						rd[idx] = p
						bd[idx] = g + diagDiff
					case chanBlue:
						bd[idx] = p
						rd[idx] = g + diagDiff
					case chanGreen:
						if pattern.colorAt(y, x+1) == chanRed {
							rd[idx] = g + horizDiff
							bd[idx] = g + vertDiff
						} else {
							rd[idx] = g + vertDiff
							bd[idx] = g + horizDiff
						}
					}
				}
			}
		}(band[0], band[1])
	}
	wg.Wait()

	clampInPlace(&out.R, 0, 1)
	clampInPlace(&out.B, 0, 1)
	return out
}

// splitRowBands partitions the half-open row range [start, end) into at
// most n contiguous bands of near-equal height.
func splitRowBands(start, end, n int) [][2]int {
	total := end - start
	if total <= 0 {
		return nil
	}
	if n > total {
		n = total
	}
	bands := make([][2]int, 0, n)
	base := total / n
	rem := total % n
	y := start
	for i := 0; i < n; i++ {
		h := base
		if i < rem {
			h++
		}
		bands = append(bands, [2]int{y, y + h})
		y += h
	}
	return bands
}
