package starfield

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// FITSMetadata holds parsed FITS header key-value pairs.
type FITSMetadata struct {
	Headers map[string]string
}

func newFITSMetadata() *FITSMetadata {
	return &FITSMetadata{Headers: make(map[string]string)}
}

func (m *FITSMetadata) GetString(key string) string {
	if v, ok := m.Headers[strings.ToUpper(key)]; ok {
		return v
	}
	return ""
}

func (m *FITSMetadata) GetDouble(key string) (float64, bool) {
	v, ok := m.Headers[strings.ToUpper(key)]
	if !ok {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

func (m *FITSMetadata) Instrument() string { return m.GetString("INSTRUME") }
func (m *FITSMetadata) Filter() string     { return m.GetString("FILTER") }

func (m *FITSMetadata) ExposureTime() (float64, bool) {
	if v, ok := m.GetDouble("EXPTIME"); ok {
		return v, true
	}
	return m.GetDouble("EXPOSURE")
}

// PatternHint reads the mosaic layout recorded by the capture software
// (BAYERPAT, or COLORTYP as a fallback). PatternUnknown when absent or
// unrecognized; the classifier decides then.
func (m *FITSMetadata) PatternHint() CFAPattern {
	for _, key := range []string{"BAYERPAT", "COLORTYP"} {
		if v := m.GetString(key); v != "" {
			if p, err := ParseCFAPattern(v); err == nil {
				return p
			}
		}
	}
	return PatternUnknown
}

// ReadFITS reads headers and pixel data from a FITS file and returns the
// normalized frame plus its parsed metadata.
func ReadFITS(path string) (Frame, *FITSMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Frame{}, nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return readFITSFrom(f)
}

// ReadFITSFromBytes reads headers and pixel data from an in-memory FITS
// image.
func ReadFITSFromBytes(data []byte) (Frame, *FITSMetadata, error) {
	return readFITSFrom(bytes.NewReader(data))
}

func readFITSFrom(r io.Reader) (Frame, *FITSMetadata, error) {
	var bitpix, naxis, width, height int
	bzero := 0.0
	bscale := 1.0
	headerDone := false
	metadata := newFITSMetadata()

	recordBuf := make([]byte, 80)

	for !headerDone {
		for i := 0; i < 36; i++ {
			if _, err := io.ReadFull(r, recordBuf); err != nil {
				return Frame{}, nil, fmt.Errorf("reading FITS header record: %w", err)
			}
			record := string(recordBuf)
			keyword := strings.TrimSpace(record[:8])

			if keyword == "END" {
				headerDone = true
				remaining := 35 - i
				if remaining > 0 {
					skipBuf := make([]byte, remaining*80)
					io.ReadFull(r, skipBuf)
				}
				break
			}

			if len(record) > 10 && record[8] == '=' && record[9] == ' ' {
				rawValue := strings.TrimSpace(strings.SplitN(record[10:], "/", 2)[0])
				parsedValue := parseFITSValue(rawValue)

				if keyword != "" && parsedValue != "" {
					metadata.Headers[strings.ToUpper(keyword)] = parsedValue
				}

				switch keyword {
				case "BITPIX":
					bitpix, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS":
					naxis, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS1":
					width, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS2":
					height, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "BZERO":
					bzero, _ = strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
				case "BSCALE":
					bscale, _ = strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
				}
			}
		}
	}

	if naxis < 2 || width == 0 || height == 0 {
		return Frame{}, nil, fmt.Errorf("invalid FITS: NAXIS=%d, NAXIS1=%d, NAXIS2=%d", naxis, width, height)
	}

	effectiveBpp := 16
	if bitpix == 8 {
		effectiveBpp = 8
	}

	numPixels := width * height
	pixels := make([]uint16, numPixels)

	switch bitpix {
	case 16:
		rawBytes := make([]byte, numPixels*2)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return Frame{}, nil, fmt.Errorf("reading 16-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			signedVal := int16(binary.BigEndian.Uint16(rawBytes[i*2:]))
			physicalVal := float64(signedVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case -32:
		rawBytes := make([]byte, numPixels*4)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return Frame{}, nil, fmt.Errorf("reading -32 float pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			intBits := binary.BigEndian.Uint32(rawBytes[i*4:])
			floatVal := math.Float32frombits(intBits)
			physicalVal := float64(floatVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case 8:
		rawBytes := make([]byte, numPixels)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return Frame{}, nil, fmt.Errorf("reading 8-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			physicalVal := float64(rawBytes[i])*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case 32:
		rawBytes := make([]byte, numPixels*4)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return Frame{}, nil, fmt.Errorf("reading 32-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			intVal := int32(binary.BigEndian.Uint32(rawBytes[i*4:]))
			physicalVal := float64(intVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	default:
		return Frame{}, nil, fmt.Errorf("unsupported BITPIX: %d", bitpix)
	}

	frame := NewFrameFromUint16(pixels, effectiveBpp, width, height)
	frame.Pattern = metadata.PatternHint()
	return frame, metadata, nil
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseFITSValue(rawValue string) string {
	if rawValue == "" {
		return ""
	}
	if rawValue == "T" {
		return "True"
	}
	if rawValue == "F" {
		return "False"
	}
	if strings.HasPrefix(rawValue, "'") {
		endQuote := strings.LastIndex(rawValue, "'")
		if endQuote > 0 {
			return strings.TrimRight(rawValue[1:endQuote], " ")
		}
		return strings.TrimLeft(strings.TrimRight(rawValue, " "), "'")
	}
	return rawValue
}
