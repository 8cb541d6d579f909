// Package imaging provides the grayscale frame model used by the detection
// pipeline: decoding camera snapshots, region cropping, deterministic
// resizing, and intensity statistics. Frames are immutable once loaded;
// every operation returns a new frame.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	// Register the decoders for the formats cameras actually emit.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Frame is a single-channel rectangular pixel grid with intensities in
// [0,255], always anchored at the origin.
type Frame struct {
	gray *image.Gray
}

// Decode parses raw image bytes (JPEG, PNG or GIF) and converts the result
// to grayscale using the standard luminance weighting.
func Decode(data []byte) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return &Frame{gray: gray}, nil
}

// FromGray wraps an existing grayscale image, copying it into an
// origin-anchored frame.
func FromGray(src *image.Gray) *Frame {
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
		dstOff := gray.PixOffset(0, y)
		copy(gray.Pix[dstOff:dstOff+b.Dx()], src.Pix[srcOff:srcOff+b.Dx()])
	}
	return &Frame{gray: gray}
}

// New creates a frame of the given dimensions filled with the given
// intensity. Used by tests and the mask constructor.
func New(w, h int, fill uint8) *Frame {
	gray := image.NewGray(image.Rect(0, 0, w, h))
	for i := range gray.Pix {
		gray.Pix[i] = fill
	}
	return &Frame{gray: gray}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.gray.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.gray.Rect.Dy() }

// Empty reports whether the frame contains no pixels.
func (f *Frame) Empty() bool { return f == nil || f.Width() == 0 || f.Height() == 0 }

// At returns the intensity at (x, y).
func (f *Frame) At(x, y int) uint8 {
	return f.gray.GrayAt(x, y).Y
}

// Crop returns a new frame restricted to the given region. The region is
// clamped to the frame bounds; an empty intersection yields an empty frame.
func (f *Frame) Crop(r image.Rectangle) *Frame {
	r = r.Intersect(f.gray.Rect)
	sub, _ := f.gray.SubImage(r).(*image.Gray)
	if sub == nil {
		return New(0, 0, 0)
	}
	return FromGray(sub)
}

// Resize returns a new frame scaled to exactly w x h using nearest-neighbor
// sampling. The mapping is deterministic and aspect-distorting: dimensions
// are matched exactly, never preserved proportionally.
func (f *Frame) Resize(w, h int) *Frame {
	if w == f.Width() && h == f.Height() {
		return f
	}
	if f.Empty() || w <= 0 || h <= 0 {
		return New(0, 0, 0)
	}
	srcW, srcH := f.Width(), f.Height()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := y * srcH / h
		for x := 0; x < w; x++ {
			sx := x * srcW / w
			dst.Pix[y*dst.Stride+x] = f.gray.Pix[sy*f.gray.Stride+sx]
		}
	}
	return &Frame{gray: dst}
}

// Mean returns the arithmetic mean intensity over all pixels. An empty
// frame has mean 0.
func (f *Frame) Mean() float64 {
	if f.Empty() {
		return 0
	}
	var sum uint64
	w, h := f.Width(), f.Height()
	for y := 0; y < h; y++ {
		row := f.gray.Pix[y*f.gray.Stride : y*f.gray.Stride+w]
		for _, p := range row {
			sum += uint64(p)
		}
	}
	return float64(sum) / float64(w*h)
}

// EncodePNG serializes the frame as a PNG image. PNG is lossless, which
// keeps the binary mask artifact exactly binary on disk.
func (f *Frame) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.gray); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Ext returns the file extension matching the encoded image data, sniffed
// from its header. Unrecognized data falls back to ".jpg", the camera's
// nominal encoding.
func Ext(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ".jpg"
	}
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}

// ParseRect parses a region string of the form "x0,y0,x1,y1" into a
// rectangle. The region must be well-formed and non-empty.
func ParseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want 4 comma-separated integers", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		if v < 0 {
			return image.Rectangle{}, fmt.Errorf("region %q: coordinates must be non-negative", s)
		}
		vals[i] = v
	}
	r := image.Rect(vals[0], vals[1], vals[2], vals[3])
	if r.Dx() == 0 || r.Dy() == 0 {
		return image.Rectangle{}, fmt.Errorf("region %q is empty", s)
	}
	return r, nil
}
