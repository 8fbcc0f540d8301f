// Package stats collects per-session compression statistics: window and
// match counters, byte accounting, and a DDSketch of match distances for
// quantile reporting.
package stats

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"
)

// sketchAccuracy is the DDSketch relative accuracy for distance quantiles.
const sketchAccuracy = 0.01

// Session accumulates statistics for one device compression session. It is
// owned by the session and not safe for concurrent use.
type Session struct {
	Windows      uint64
	Matches      uint64
	RawBytes     uint64
	EncodedBytes uint64

	distMin   float64
	distMax   float64
	distSum   float64
	distCount uint64
	sketch    *ddsketch.DDSketch
}

// NewSession creates an empty statistics session.
func NewSession() *Session {
	sketch, err := ddsketch.NewDefaultDDSketch(sketchAccuracy)
	if err != nil {
		// The default sketch only fails on an out-of-range accuracy constant.
		panic(err)
	}

	return &Session{
		distMin: math.Inf(1),
		distMax: math.Inf(-1),
		sketch:  sketch,
	}
}

// ObserveWindow records the outcome of one processed window. distance is the
// nearest-exemplar distance and is only folded into the distance aggregates
// for matched windows, where it measures actual reconstruction error.
func (s *Session) ObserveWindow(matched bool, distance float64, rawBytes, encodedBytes int) {
	s.Windows++
	s.RawBytes += uint64(rawBytes)
	s.EncodedBytes += uint64(encodedBytes)

	if !matched {
		return
	}

	s.Matches++
	s.distMin = math.Min(s.distMin, distance)
	s.distMax = math.Max(s.distMax, distance)
	s.distSum += distance
	s.distCount++
	_ = s.sketch.Add(distance)
}

// Gain returns the cumulative compression gain, raw bytes over encoded
// bytes. Returns 0 before any window has been observed.
func (s *Session) Gain() float64 {
	if s.EncodedBytes == 0 {
		return 0
	}

	return float64(s.RawBytes) / float64(s.EncodedBytes)
}

// MatchRate returns the fraction of windows encoded as references.
func (s *Session) MatchRate() float64 {
	if s.Windows == 0 {
		return 0
	}

	return float64(s.Matches) / float64(s.Windows)
}

// DistanceMean returns the mean match distance, or 0 with no matches.
func (s *Session) DistanceMean() float64 {
	if s.distCount == 0 {
		return 0
	}

	return s.distSum / float64(s.distCount)
}

// DistanceQuantile returns the match-distance value at quantile q in [0, 1].
// The result is approximate within the sketch's relative accuracy.
func (s *Session) DistanceQuantile(q float64) (float64, error) {
	return s.sketch.GetValueAtQuantile(q)
}

// Summary is a flattened snapshot suitable for structured logging.
type Summary struct {
	Windows      uint64
	Matches      uint64
	MatchRate    float64
	RawBytes     uint64
	EncodedBytes uint64
	Gain         float64
	DistanceMean float64
	DistanceMax  float64
}

// Snapshot returns the current summary.
func (s *Session) Snapshot() Summary {
	distMax := s.distMax
	if s.distCount == 0 {
		distMax = 0
	}

	return Summary{
		Windows:      s.Windows,
		Matches:      s.Matches,
		MatchRate:    s.MatchRate(),
		RawBytes:     s.RawBytes,
		EncodedBytes: s.EncodedBytes,
		Gain:         s.Gain(),
		DistanceMean: s.DistanceMean(),
		DistanceMax:  distMax,
	}
}
