// Package fallback implements the ordered multi-tier inference protocol every
// analysis task follows: attempt the on-device model, then (where policy
// allows) a cloud model, then a deterministic computation that always
// succeeds. Each tier either produces a value or is abandoned in favor of the
// next; there are no retries within a tier.
package fallback

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/capability"
)

// Provenance records which strategy tier actually produced a value.
type Provenance string

const (
	ProvenanceLocal    Provenance = "local"
	ProvenanceCloud    Provenance = "cloud"
	ProvenanceFallback Provenance = "fallback"
)

// Failure taxonomy for tier boundaries. All of these are swallowed by the
// runner and logged; none escapes to the caller.
var (
	// ErrCapabilityUnavailable marks a local model that is missing or
	// unsupported on this device. Sticky per task.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrNetworkFailure marks an unreachable cloud endpoint or a non-2xx
	// response.
	ErrNetworkFailure = errors.New("network failure")

	// ErrMalformedResponse marks model output from which no JSON object
	// could be extracted or parsed.
	ErrMalformedResponse = errors.New("malformed model response")
)

// Result pairs a tier's value with its confidence and provenance.
// Provenance always reflects the tier that produced Value: it is never
// "local" when the local attempt failed or was skipped.
type Result[T any] struct {
	Value      T
	Confidence float64
	Provenance Provenance
}

// Tier is one strategy in the ordered chain. Attempt returns the value, a
// confidence in [0,1], or an error that abandons the tier.
type Tier[T any] struct {
	Provenance Provenance
	Attempt    func(ctx context.Context) (T, float64, error)
}

// Local wraps fn as the on-device tier.
func Local[T any](fn func(ctx context.Context) (T, float64, error)) Tier[T] {
	return Tier[T]{Provenance: ProvenanceLocal, Attempt: fn}
}

// Cloud wraps fn as the cloud tier.
func Cloud[T any](fn func(ctx context.Context) (T, float64, error)) Tier[T] {
	return Tier[T]{Provenance: ProvenanceCloud, Attempt: fn}
}

// Deterministic wraps an infallible computation as the final tier.
func Deterministic[T any](fn func() (T, float64)) Tier[T] {
	return Tier[T]{
		Provenance: ProvenanceFallback,
		Attempt: func(context.Context) (T, float64, error) {
			v, conf := fn()
			return v, conf, nil
		},
	}
}

// Run iterates tiers in order until one succeeds.
//
// A local tier is skipped when the registry has already marked the task
// unavailable, and a first-time local failure flips that flag so the tier is
// never attempted again this process. A cloud tier is skipped when the task's
// privacy policy forbids egress; cloud failures are transient and never
// sticky. The last tier is expected to be deterministic and infallible, so
// Run always returns a usable Result; if every tier somehow fails the zero
// value is returned with fallback provenance and zero confidence rather than
// an error, so a check-in can never be blocked by inference failure.
func Run[T any](ctx context.Context, log zerolog.Logger, reg *capability.Registry, task capability.Task, tiers []Tier[T]) Result[T] {
	for _, tier := range tiers {
		switch tier.Provenance {
		case ProvenanceLocal:
			if !reg.Available(task) {
				log.Debug().
					Str("task", string(task)).
					Msg("skipping local tier: capability disabled")
				continue
			}
		case ProvenanceCloud:
			if !capability.CloudAllowed(task) {
				log.Debug().
					Str("task", string(task)).
					Msg("skipping cloud tier: egress not permitted")
				continue
			}
		}

		value, confidence, err := tier.Attempt(ctx)
		if err != nil {
			if tier.Provenance == ProvenanceLocal {
				reg.MarkUnavailable(task, err.Error())
			}
			log.Warn().
				Err(err).
				Str("task", string(task)).
				Str("tier", string(tier.Provenance)).
				Msg("inference tier failed, falling through")
			continue
		}

		log.Debug().
			Str("task", string(task)).
			Str("tier", string(tier.Provenance)).
			Float64("confidence", confidence).
			Msg("inference tier succeeded")
		return Result[T]{Value: value, Confidence: confidence, Provenance: tier.Provenance}
	}

	log.Error().Str("task", string(task)).Msg("all inference tiers exhausted")
	var zero T
	return Result[T]{Value: zero, Provenance: ProvenanceFallback}
}
