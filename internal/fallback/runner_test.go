package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/capability"
)

func TestRunLocalSuccess(t *testing.T) {
	reg := capability.NewRegistry()

	result := Run(context.Background(), zerolog.Nop(), reg, capability.TaskVision, []Tier[string]{
		Local(func(ctx context.Context) (string, float64, error) {
			return "local-value", 0.85, nil
		}),
		Deterministic(func() (string, float64) {
			return "fallback-value", 0.4
		}),
	})

	assert.Equal(t, "local-value", result.Value)
	assert.Equal(t, 0.85, result.Confidence)
	assert.Equal(t, ProvenanceLocal, result.Provenance)
	assert.True(t, reg.Available(capability.TaskVision))
}

func TestRunLocalFailureFallsThrough(t *testing.T) {
	reg := capability.NewRegistry()

	result := Run(context.Background(), zerolog.Nop(), reg, capability.TaskVision, []Tier[string]{
		Local(func(ctx context.Context) (string, float64, error) {
			return "", 0, ErrCapabilityUnavailable
		}),
		Deterministic(func() (string, float64) {
			return "fallback-value", 0.4
		}),
	})

	assert.Equal(t, "fallback-value", result.Value)
	assert.Equal(t, ProvenanceFallback, result.Provenance)
}

func TestRunLocalFailureIsSticky(t *testing.T) {
	reg := capability.NewRegistry()
	attempts := 0
	tiers := []Tier[int]{
		Local(func(ctx context.Context) (int, float64, error) {
			attempts++
			return 0, 0, errors.New("model not present on device")
		}),
		Deterministic(func() (int, float64) {
			return 7, 0.5
		}),
	}

	first := Run(context.Background(), zerolog.Nop(), reg, capability.TaskAudio, tiers)
	require.Equal(t, ProvenanceFallback, first.Provenance)
	require.Equal(t, 1, attempts)
	assert.False(t, reg.Available(capability.TaskAudio))

	reason, down := reg.Reason(capability.TaskAudio)
	require.True(t, down)
	assert.Equal(t, "model not present on device", reason)

	// Second run must skip the local tier entirely.
	second := Run(context.Background(), zerolog.Nop(), reg, capability.TaskAudio, tiers)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 7, second.Value)
	assert.Equal(t, ProvenanceFallback, second.Provenance)
}

func TestRunCloudSkippedWhenEgressForbidden(t *testing.T) {
	reg := capability.NewRegistry()
	cloudCalled := false

	// Vision never permits egress, so the cloud tier must not run even when
	// the local tier fails.
	result := Run(context.Background(), zerolog.Nop(), reg, capability.TaskVision, []Tier[string]{
		Local(func(ctx context.Context) (string, float64, error) {
			return "", 0, ErrNetworkFailure
		}),
		Cloud(func(ctx context.Context) (string, float64, error) {
			cloudCalled = true
			return "cloud-value", 0.9, nil
		}),
		Deterministic(func() (string, float64) {
			return "fallback-value", 0.4
		}),
	})

	assert.False(t, cloudCalled)
	assert.Equal(t, "fallback-value", result.Value)
	assert.Equal(t, ProvenanceFallback, result.Provenance)
}

func TestRunCloudUsedWhenEgressAllowed(t *testing.T) {
	reg := capability.NewRegistry()

	result := Run(context.Background(), zerolog.Nop(), reg, capability.TaskTriage, []Tier[string]{
		Local(func(ctx context.Context) (string, float64, error) {
			return "", 0, ErrCapabilityUnavailable
		}),
		Cloud(func(ctx context.Context) (string, float64, error) {
			return "cloud-value", 0.9, nil
		}),
		Deterministic(func() (string, float64) {
			return "fallback-value", 0.4
		}),
	})

	assert.Equal(t, "cloud-value", result.Value)
	assert.Equal(t, ProvenanceCloud, result.Provenance)
}

func TestRunCloudFailureIsNotSticky(t *testing.T) {
	reg := capability.NewRegistry()

	Run(context.Background(), zerolog.Nop(), reg, capability.TaskTriage, []Tier[string]{
		Cloud(func(ctx context.Context) (string, float64, error) {
			return "", 0, ErrNetworkFailure
		}),
		Deterministic(func() (string, float64) {
			return "fallback-value", 0.4
		}),
	})

	assert.True(t, reg.Available(capability.TaskTriage))
}

func TestRunAllTiersExhausted(t *testing.T) {
	reg := capability.NewRegistry()

	result := Run(context.Background(), zerolog.Nop(), reg, capability.TaskTriage, []Tier[string]{
		Local(func(ctx context.Context) (string, float64, error) {
			return "", 0, ErrCapabilityUnavailable
		}),
		Cloud(func(ctx context.Context) (string, float64, error) {
			return "", 0, ErrNetworkFailure
		}),
	})

	assert.Equal(t, "", result.Value)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, ProvenanceFallback, result.Provenance)
}
