package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
)

const (
	// CloudSampleThreshold is the minimum window size worth a cloud
	// second opinion on tremor.
	CloudSampleThreshold = 50

	// maxCloudPoints caps how many raw points accompany the summary
	// statistics. The full stream never leaves the device.
	maxCloudPoints = 20

	// MaxTremorIndex bounds the cloud-reported index.
	MaxTremorIndex = 5.0
)

// CloudSummary is the data-minimized payload sent to the cloud model for a
// tremor assessment: summary statistics over movement magnitudes plus at most
// maxCloudPoints evenly subsampled raw points rounded to 3 decimals.
type CloudSummary struct {
	Count    int          `json:"count"`
	Avg      float64      `json:"avg"`
	Max      float64      `json:"max"`
	Min      float64      `json:"min"`
	Variance float64      `json:"variance"`
	Points   []CloudPoint `json:"points"`
}

// CloudPoint is one subsampled accelerometer point.
type CloudPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CloudEligible reports whether the window is large enough to attempt the
// cloud tremor override.
func CloudEligible(samples []Sample) bool {
	return len(samples) > CloudSampleThreshold
}

// BuildCloudSummary reduces a capture window to its cloud payload.
func BuildCloudSummary(samples []Sample) CloudSummary {
	summary := CloudSummary{Count: len(samples)}
	if len(samples) == 0 {
		return summary
	}

	summary.Min = math.Inf(1)
	var sum float64
	magnitudes := make([]float64, len(samples))
	for i, s := range samples {
		m := math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
		magnitudes[i] = m
		sum += m
		if m > summary.Max {
			summary.Max = m
		}
		if m < summary.Min {
			summary.Min = m
		}
	}
	summary.Avg = sum / float64(len(samples))

	var sqSum float64
	for _, m := range magnitudes {
		d := m - summary.Avg
		sqSum += d * d
	}
	summary.Variance = sqSum / float64(len(samples))

	count := len(samples)
	points := maxCloudPoints
	if count < points {
		points = count
	}
	summary.Points = make([]CloudPoint, 0, points)
	for i := 0; i < points; i++ {
		s := samples[i*count/points]
		summary.Points = append(summary.Points, CloudPoint{
			X: round3(s.X),
			Y: round3(s.Y),
			Z: round3(s.Z),
		})
	}

	return summary
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// CloudPrompt renders the tremor-assessment prompt with the fixed severity
// rubric the model must apply.
func CloudPrompt(s CloudSummary) string {
	var b strings.Builder
	b.WriteString("You are assessing hand tremor from accelerometer summary data.\n")
	fmt.Fprintf(&b, "Samples: %d, avg magnitude: %.4f, max: %.4f, min: %.4f, variance: %.4f\n",
		s.Count, s.Avg, s.Max, s.Min, s.Variance)
	if len(s.Points) > 0 {
		b.WriteString("Subsampled points (x,y,z):")
		for _, p := range s.Points {
			fmt.Fprintf(&b, " (%.3f,%.3f,%.3f)", p.X, p.Y, p.Z)
		}
		b.WriteString("\n")
	}
	b.WriteString("Rate the tremor index on a 0-5 scale using this rubric: ")
	b.WriteString("0-0.5 excellent stability, 0.5-1.0 normal, 1.0-2.0 mild tremor, ")
	b.WriteString("2.0-3.0 moderate tremor, 3.0+ notable tremor.\n")
	b.WriteString(`Respond with exactly one JSON object: {"tremorIndex": <number>}`)
	return b.String()
}

// ParseCloudTremor extracts the tremor index from model output, clamped to
// [0, MaxTremorIndex].
func ParseCloudTremor(text string) (float64, error) {
	var parsed struct {
		TremorIndex *float64 `json:"tremorIndex"`
	}
	if err := fallback.UnmarshalFirstObject(text, &parsed); err != nil {
		return 0, err
	}
	if parsed.TremorIndex == nil {
		return 0, fmt.Errorf("%w: missing tremorIndex", fallback.ErrMalformedResponse)
	}

	idx := *parsed.TremorIndex
	if idx < 0 {
		idx = 0
	}
	if idx > MaxTremorIndex {
		idx = MaxTremorIndex
	}
	return idx, nil
}
