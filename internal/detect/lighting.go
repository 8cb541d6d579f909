// Package detect implements the two decision heuristics of the pipeline:
// the lighting classifier that invalidates frames dominated by artificial
// brightness, and the change detector that scores pixel-level difference
// against the dry baseline.
package detect

import "wetwatch/internal/imaging"

// DefaultLightsThreshold is the mean-intensity cutoff above which a frame
// is considered artificially lit.
const DefaultLightsThreshold = 100.0

// Lit reports whether the frame is dominated by artificial brightness.
// Artificial light saturates a large fraction of the frame toward high
// intensity, which would otherwise register as a spurious large pixel
// difference against a dark baseline.
//
// The classifier is pure: mean intensity strictly greater than the
// threshold. A mean exactly equal to the threshold is not lit, and an
// empty frame is never lit.
func Lit(f *imaging.Frame, meanThreshold float64) bool {
	if f.Empty() {
		return false
	}
	return f.Mean() > meanThreshold
}
