package triage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/capability"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/llm"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

// stubProvider returns a canned response or error.
type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *stubProvider) Complete(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.CompletionResponse{Content: s.content, Model: s.name}, nil
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return true }

func TestChainLocalVerdict(t *testing.T) {
	local := &stubProvider{
		name:    "local",
		content: `{"summary": "All good.", "severity": "green", "recommendations": ["Keep it up"]}`,
	}
	chain := NewChain(local, nil, capability.NewRegistry(), zerolog.Nop())

	v := chain.Run(context.Background(), &vitals.Metrics{HeartRate: vitals.Float64(70)})

	assert.Equal(t, fallback.ProvenanceLocal, v.Provenance)
	assert.Equal(t, SeverityGreen, v.Severity)
	assert.Equal(t, "All good.", v.Summary)
}

func TestChainFallsBackToCloud(t *testing.T) {
	local := &stubProvider{name: "local", err: errors.New("connection refused")}
	cloud := &stubProvider{
		name:    "cloud",
		content: `{"summary": "Monitor your heart rate.", "severity": "yellow", "recommendations": []}`,
	}
	chain := NewChain(local, cloud, capability.NewRegistry(), zerolog.Nop())

	v := chain.Run(context.Background(), &vitals.Metrics{HeartRate: vitals.Float64(105)})

	assert.Equal(t, fallback.ProvenanceCloud, v.Provenance)
	assert.Equal(t, SeverityYellow, v.Severity)
}

func TestChainFallsBackToRuleEngine(t *testing.T) {
	local := &stubProvider{name: "local", err: errors.New("connection refused")}
	cloud := &stubProvider{name: "cloud", err: errors.New("503")}
	chain := NewChain(local, cloud, capability.NewRegistry(), zerolog.Nop())

	v := chain.Run(context.Background(), &vitals.Metrics{HeartRate: vitals.Float64(130)})

	assert.Equal(t, fallback.ProvenanceFallback, v.Provenance)
	assert.Equal(t, SeverityRed, v.Severity)
	assert.Contains(t, v.Summary, "significantly elevated heart rate")
}

func TestChainMalformedLocalOutputFallsThrough(t *testing.T) {
	local := &stubProvider{name: "local", content: "I think you seem fine today!"}
	chain := NewChain(local, nil, capability.NewRegistry(), zerolog.Nop())

	v := chain.Run(context.Background(), &vitals.Metrics{})

	assert.Equal(t, fallback.ProvenanceFallback, v.Provenance)
	assert.Equal(t, SeverityGreen, v.Severity)
}

func TestChainNoProvidersUsesRuleEngine(t *testing.T) {
	chain := NewChain(nil, nil, capability.NewRegistry(), zerolog.Nop())

	v := chain.Run(context.Background(), &vitals.Metrics{})

	assert.Equal(t, fallback.ProvenanceFallback, v.Provenance)
	assert.NotEmpty(t, v.Summary)
}

func TestPromptListsOnlyPresentMetrics(t *testing.T) {
	p := Prompt(&vitals.Metrics{
		HeartRate:   vitals.Float64(72),
		TremorIndex: vitals.Float64(0.42),
	})

	assert.Contains(t, p, "heart rate: 72 bpm")
	assert.Contains(t, p, "tremor index: 0.42")
	assert.NotContains(t, p, "breathing rate")
	assert.NotContains(t, p, "mood score")
	assert.Contains(t, p, `"severity": "green"|"yellow"|"red"`)
}

func TestParseVerdict(t *testing.T) {
	v, err := ParseVerdict("Here you go:\n" +
		`{"summary": " Rest today. ", "severity": "YELLOW", "recommendations": ["a", "b", "c", "d", "e"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Rest today.", v.Summary)
	assert.Equal(t, SeverityYellow, v.Severity)
	assert.Len(t, v.Recommendations, MaxRecommendations)

	_, err = ParseVerdict(`{"summary": "ok", "severity": "purple"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, fallback.ErrMalformedResponse)

	_, err = ParseVerdict(`{"summary": "  ", "severity": "green"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, fallback.ErrMalformedResponse)

	_, err = ParseVerdict("no structured output at all")
	assert.Error(t, err)
}
