package engine

// Observation is the per-window feedback fed to the threshold controller
// after the window's record has been emitted.
type Observation struct {
	// Matched reports whether the window was encoded as a Reference.
	Matched bool
	// Distance is the nearest-exemplar distance, +Inf when the pool held no
	// comparable exemplar.
	Distance float64
	// Ratio is the session's cumulative compression gain so far, raw bytes
	// divided by encoded bytes. Higher is better; 1 means no gain.
	Ratio float64
}

// ThresholdState holds the per-session adaptive threshold and the rolling
// observations that drive it. States are values; Step returns a new state
// and never mutates its input, so the controller is a pure transition
// function that can be tested in isolation.
type ThresholdState struct {
	// Threshold is the current acceptance threshold applied to the next
	// window.
	Threshold float64

	// Target is the compression gain the controller steers toward.
	Target float64
	// ErrorBudget bounds the rolling mean of accepted match distances.
	ErrorBudget float64
	// Min and Max clamp the threshold.
	Min, Max float64
	// Step is the multiplicative adjustment factor per window.
	Step float64

	ratios    ring
	distances ring
}

// ring is a fixed-capacity rolling sample of float64 observations.
type ring struct {
	vals []float64
	next int
	full bool
}

func newRing(capacity int) ring {
	if capacity < 1 {
		capacity = 1
	}

	return ring{vals: make([]float64, 0, capacity)}
}

func (r ring) push(v float64) ring {
	out := ring{vals: make([]float64, len(r.vals), cap(r.vals)), next: r.next, full: r.full}
	copy(out.vals, r.vals)

	if len(out.vals) < cap(out.vals) {
		out.vals = append(out.vals, v)
		if len(out.vals) == cap(out.vals) {
			out.full = true
		}
		return out
	}

	out.vals[out.next] = v
	out.next = (out.next + 1) % cap(out.vals)

	return out
}

func (r ring) mean() (float64, bool) {
	if len(r.vals) == 0 {
		return 0, false
	}

	var sum float64
	for _, v := range r.vals {
		sum += v
	}

	return sum / float64(len(r.vals)), true
}

// NewThresholdState builds the initial controller state. lastK is the rolling
// observation depth for both the gain estimate and the error estimate.
func NewThresholdState(initial, minThreshold, maxThreshold, target, errorBudget, step float64, lastK int) ThresholdState {
	return ThresholdState{
		Threshold:   clamp(initial, minThreshold, maxThreshold),
		Target:      target,
		ErrorBudget: errorBudget,
		Min:         minThreshold,
		Max:         maxThreshold,
		Step:        step,
		ratios:      newRing(lastK),
		distances:   newRing(lastK),
	}
}

// StepThreshold advances the controller by one observation.
//
// The rolling error estimate (mean distance of recent Reference matches)
// dominates: when it exceeds the budget the threshold is lowered regardless
// of gain. Otherwise the rolling gain is compared against the target: below
// target the threshold is raised to accept more matches, above target it is
// lowered to spend the surplus on fidelity. The result is clamped to
// [Min, Max].
func StepThreshold(s ThresholdState, obs Observation) ThresholdState {
	next := s
	next.ratios = s.ratios.push(obs.Ratio)
	if obs.Matched {
		next.distances = s.distances.push(obs.Distance)
	} else {
		next.distances = s.distances
	}

	errEst, haveErr := next.distances.mean()
	gain, _ := next.ratios.mean()

	switch {
	case haveErr && errEst > s.ErrorBudget:
		next.Threshold = s.Threshold * (1 - s.Step)
	case gain < s.Target:
		next.Threshold = s.Threshold * (1 + s.Step)
	case gain > s.Target:
		next.Threshold = s.Threshold * (1 - s.Step)
	}

	next.Threshold = clamp(next.Threshold, s.Min, s.Max)

	return next
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
