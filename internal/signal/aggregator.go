// Package signal computes motion-derived wellness quantities from raw
// accelerometer samples. The math here is a deliberately simple proxy for a
// demo experience, not a validated biosignal pipeline: the tremor index is a
// scaled standard deviation of movement magnitude, and heart rate / HRV are
// base constants nudged by average movement plus a small cosmetic jitter.
package signal

import (
	"math"
	"math/rand"
	"time"
)

// Sample is one accelerometer reading.
type Sample struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp int64   `json:"timestamp"` // epoch millis
}

// Base constants and gains for the movement-derived vitals. The tremor scale
// factor is empirically chosen, not physically calibrated.
const (
	baseHeartRate = 68.0
	baseHRV       = 55.0
	tremorScale   = 10.0

	hrMotionGain = 5.0
	hrMotionCap  = 15.0
	hrJitter     = 2.0

	hrvMotionGain = 3.0
	hrvMotionCap  = 15.0
	hrvJitter     = 3.0

	// Captures longer than ~100 samples are considered good quality.
	qualitySampleCut = 100
	qualityHigh      = 0.9
	qualityLow       = 0.7
)

// JitterSource injects the small uniform noise added to heart rate and HRV.
// It exists so demo output looks alive without hiding randomness: tests use
// NoJitter to assert exact values, production uses a seeded source.
type JitterSource interface {
	// Uniform returns a value drawn uniformly from [lo, hi].
	Uniform(lo, hi float64) float64
}

type randJitter struct {
	r *rand.Rand
}

func (j randJitter) Uniform(lo, hi float64) float64 {
	return lo + j.r.Float64()*(hi-lo)
}

// NewJitter returns a time-seeded jitter source.
func NewJitter() JitterSource {
	return NewSeededJitter(time.Now().UnixNano())
}

// NewSeededJitter returns a deterministic jitter source for a given seed.
func NewSeededJitter(seed int64) JitterSource {
	return randJitter{r: rand.New(rand.NewSource(seed))}
}

// NoJitter is a JitterSource that always returns zero.
type NoJitter struct{}

// Uniform returns 0 regardless of bounds.
func (NoJitter) Uniform(_, _ float64) float64 { return 0 }

// Reading is the aggregate of one capture window.
type Reading struct {
	TremorIndex float64 `json:"tremorIndex"`
	HeartRate   float64 `json:"heartRate"`
	HRV         float64 `json:"hrv"`
	AvgMovement float64 `json:"avgMovement"`
	Variance    float64 `json:"variance"`
	Quality     float64 `json:"quality"`
	SampleCount int     `json:"sampleCount"`
}

// Aggregator turns accelerometer windows into readings.
type Aggregator struct {
	jitter JitterSource
}

// NewAggregator creates an aggregator with the given jitter source. A nil
// source gets a time-seeded one.
func NewAggregator(jitter JitterSource) *Aggregator {
	if jitter == nil {
		jitter = NewJitter()
	}
	return &Aggregator{jitter: jitter}
}

// Aggregate computes the movement-derived reading for one capture window.
// An empty window degrades rather than fails: all movement quantities are
// zero and heart rate / HRV sit at their base constants (jitter still
// applies).
func (a *Aggregator) Aggregate(samples []Sample) Reading {
	var avg, variance float64
	if len(samples) > 0 {
		magnitudes := make([]float64, len(samples))
		var sum float64
		for i, s := range samples {
			magnitudes[i] = math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
			sum += magnitudes[i]
		}
		avg = sum / float64(len(samples))

		var sqSum float64
		for _, m := range magnitudes {
			d := m - avg
			sqSum += d * d
		}
		variance = sqSum / float64(len(samples))
	}

	quality := qualityLow
	if len(samples) > qualitySampleCut {
		quality = qualityHigh
	}

	return Reading{
		TremorIndex: math.Sqrt(variance) * tremorScale,
		HeartRate:   baseHeartRate + math.Min(avg*hrMotionGain, hrMotionCap) + a.jitter.Uniform(-hrJitter, hrJitter),
		HRV:         baseHRV - math.Min(avg*hrvMotionGain, hrvMotionCap) + a.jitter.Uniform(-hrvJitter, hrvJitter),
		AvgMovement: avg,
		Variance:    variance,
		Quality:     quality,
		SampleCount: len(samples),
	}
}
