package detect

import (
	"image"

	"wetwatch/internal/imaging"
)

// Default thresholds for the change detector, on a 0-255 intensity scale
// and a 0-100 percent scale respectively.
const (
	DefaultBinarizeThreshold = 30
	DefaultWetnessThreshold  = 2.5
)

// maskOn is the intensity of a "changed" pixel in the difference mask.
const maskOn = 255

// Options configures a single diff computation.
type Options struct {
	// Region restricts both frames to a sub-rectangle before comparison.
	// The zero rectangle means the full frame.
	Region image.Rectangle

	// BinarizeThreshold is the absolute per-pixel difference above which a
	// pixel counts as changed.
	BinarizeThreshold uint8
}

// Diff computes the normalized pixel-difference metric between a baseline
// frame and a current frame.
//
// The current frame is first resized to the baseline's full dimensions
// whenever they differ, then both inputs are restricted to the region of
// interest. The region is expressed in baseline coordinates, so the resize
// must come first. The per-pixel absolute difference is binarized into a
// mask of 0/255 values, and percentChanged is the share of changed pixels
// in [0,100].
func Diff(baseline, current *imaging.Frame, opts Options) (mask *imaging.Frame, percentChanged float64) {
	if current.Width() != baseline.Width() || current.Height() != baseline.Height() {
		current = current.Resize(baseline.Width(), baseline.Height())
	}

	if opts.Region != (image.Rectangle{}) {
		baseline = baseline.Crop(opts.Region)
		current = current.Crop(opts.Region)
	}

	w, h := baseline.Width(), baseline.Height()
	if w == 0 || h == 0 {
		return imaging.New(0, 0, 0), 0
	}

	out := image.NewGray(image.Rect(0, 0, w, h))

	changed := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := baseline.At(x, y)
			b := current.At(x, y)
			d := a - b
			if b > a {
				d = b - a
			}
			if d > opts.BinarizeThreshold {
				out.Pix[y*out.Stride+x] = maskOn
				changed++
			}
		}
	}

	percentChanged = float64(changed) / float64(w*h) * 100
	return imaging.FromGray(out), percentChanged
}

// Wet applies the wetness verdict to a percent-changed value. A pure
// numeric comparison with no hysteresis or temporal smoothing.
func Wet(percentChanged, wetnessThreshold float64) bool {
	return percentChanged > wetnessThreshold
}
