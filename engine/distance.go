package engine

import "math"

// NoSlot is the slot value returned when no exemplar is comparable to the
// candidate window.
const NoSlot = -1

// DistanceFunc computes a nonnegative dissimilarity between two equal-length
// value vectors. Implementations must be symmetric and deterministic; the
// default is MeanAbsoluteDistance.
type DistanceFunc func(a, b []float64) float64

// MeanAbsoluteDistance is the mean absolute per-position deviation (L1
// distance divided by length). Normalizing by length keeps thresholds
// comparable across window sizes.
func MeanAbsoluteDistance(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}

	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}

	return sum / float64(len(a))
}

// Nearest scans the pool in slot order and returns the slot and distance of
// the live exemplar closest to the window. Exemplars whose shape differs from
// the window are not comparable and are skipped. An empty pool, or one with
// no comparable exemplar, yields (NoSlot, +Inf).
//
// Ties keep the lower slot index, so the result is a pure deterministic
// function of the window and the pool state.
func Nearest(w *Window, p *Pool, dist DistanceFunc) (int, float64) {
	bestSlot := NoSlot
	bestDist := math.Inf(1)

	for slot, ex := range p.slots {
		if ex == nil || !ex.Window.SameShape(w) {
			continue
		}

		if d := dist(w.Values, ex.Window.Values); d < bestDist {
			bestSlot = slot
			bestDist = d
		}
	}

	return bestSlot, bestDist
}
