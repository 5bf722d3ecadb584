package monitor

import (
	"github.com/cespare/xxhash/v2"
)

// ChangeClass classifies how much a new frame differs from the last one
// the monitor processed.
type ChangeClass string

const (
	ChangeNone        ChangeClass = "no_change"
	ChangeMinor       ChangeClass = "minor"
	ChangeSignificant ChangeClass = "significant"
	ChangeScreenSwitch ChangeClass = "screen_switch"
)

// changedFractionMinor and changedFractionSignificant are the
// sample-striding pixel-diff thresholds separating Minor from
// Significant change; above significant-but-below-switch is still
// Significant, a near-total rewrite is ScreenSwitch.
const (
	changedFractionMinor       = 0.02
	changedFractionSignificant = 0.15
	changedFractionSwitch      = 0.6

	// pixelDiffThreshold is the per-sample byte delta that counts a
	// sampled pixel as "changed".
	pixelDiffThreshold = 24

	// sampleStride skips pixels when diffing, trading precision for a
	// bounded cost on large frames.
	sampleStride = 4
)

// FrameHash is a fast, non-cryptographic fingerprint of a captured
// frame, used to skip the AI call entirely when two consecutive frames
// hash identically.
type FrameHash uint64

// HashFrame fingerprints raw downscaled pixel bytes with xxhash — the
// same fast non-cryptographic hash the rest of the dependency graph
// already pulls in transitively through prometheus/client_golang, now
// exercised directly for this purpose.
func HashFrame(pixels []byte) FrameHash {
	return FrameHash(xxhash.Sum64(pixels))
}

// PixelDiff compares two equally-sized raw pixel buffers sample-strided
// by sampleStride, returning the fraction of sampled pixels whose byte
// delta exceeds pixelDiffThreshold.
func PixelDiff(prev, next []byte) float64 {
	if len(prev) == 0 || len(next) == 0 || len(prev) != len(next) {
		return 1.0
	}

	sampled := 0
	changed := 0
	for i := 0; i < len(prev); i += sampleStride {
		sampled++
		delta := int(prev[i]) - int(next[i])
		if delta < 0 {
			delta = -delta
		}
		if delta > pixelDiffThreshold {
			changed++
		}
	}
	if sampled == 0 {
		return 0
	}
	return float64(changed) / float64(sampled)
}

// ClassifyChange maps a changed-fraction into a ChangeClass.
func ClassifyChange(fraction float64) ChangeClass {
	switch {
	case fraction >= changedFractionSwitch:
		return ChangeScreenSwitch
	case fraction >= changedFractionSignificant:
		return ChangeSignificant
	case fraction >= changedFractionMinor:
		return ChangeMinor
	default:
		return ChangeNone
	}
}
