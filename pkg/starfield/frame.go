package starfield

// Frame is a raw single-channel sensor mosaic. Pixel values are normalized
// to [0, 1]; Pattern is the CFA layout hint, PatternUnknown when the source
// carried none. A Frame is owned by the pipeline invocation that loaded it
// and is never mutated after construction.
type Frame struct {
	Data     Mat
	Width    int
	Height   int
	BitDepth int
	Pattern  CFAPattern
}

// NewFrameFromUint16 builds a Frame from raw unsigned samples, scaling by
// the sensor bit depth.
func NewFrameFromUint16(pixels []uint16, bitDepth, width, height int) Frame {
	m := NewMatWithSize(height, width)
	dest := m.DataFloat32()
	scale := float32(uint32(1)<<uint(bitDepth) - 1)
	for i := 0; i < width*height; i++ {
		dest[i] = float32(pixels[i]) / scale
	}
	return Frame{
		Data:     m,
		Width:    width,
		Height:   height,
		BitDepth: bitDepth,
		Pattern:  PatternUnknown,
	}
}

// NewFrameFromUint8 builds a Frame from 8-bit samples.
func NewFrameFromUint8(pixels []uint8, width, height int) Frame {
	m := NewMatWithSize(height, width)
	dest := m.DataFloat32()
	for i := 0; i < width*height; i++ {
		dest[i] = float32(pixels[i]) / 255.0
	}
	return Frame{
		Data:     m,
		Width:    width,
		Height:   height,
		BitDepth: 8,
		Pattern:  PatternUnknown,
	}
}

func (f *Frame) Close() {
	f.Data.Close()
}
