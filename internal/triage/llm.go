package triage

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/capability"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/llm"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

const systemPrompt = "You are a gentle wellness assistant. You summarize " +
	"check-in metrics for a healthy adult. You are not a doctor and you never " +
	"diagnose; you flag patterns worth monitoring."

// Chain is the richer triage variant: ask the on-device model, then the cloud
// model, for a JSON verdict, and fall back to the deterministic rule engine.
// Only this chain can produce cloud provenance; the rule engine itself never
// does.
type Chain struct {
	local    llm.Provider
	cloud    llm.Provider
	registry *capability.Registry
	log      zerolog.Logger
}

// NewChain builds the triage chain. Either provider may be nil, which skips
// that tier.
func NewChain(local, cloud llm.Provider, registry *capability.Registry, log zerolog.Logger) *Chain {
	return &Chain{local: local, cloud: cloud, registry: registry, log: log}
}

// Run produces a triage verdict for the snapshot. It never fails: tier
// exhaustion ends at the rule engine, which always succeeds.
func (c *Chain) Run(ctx context.Context, m *vitals.Metrics) Verdict {
	prompt := Prompt(m)

	tiers := []fallback.Tier[Verdict]{}
	if c.local != nil {
		tiers = append(tiers, fallback.Local(func(ctx context.Context) (Verdict, float64, error) {
			return c.complete(ctx, c.local, prompt)
		}))
	}
	if c.cloud != nil {
		tiers = append(tiers, fallback.Cloud(func(ctx context.Context) (Verdict, float64, error) {
			return c.complete(ctx, c.cloud, prompt)
		}))
	}
	tiers = append(tiers, fallback.Deterministic(func() (Verdict, float64) {
		return Classify(m), 0.9
	}))

	result := fallback.Run(ctx, c.log, c.registry, capability.TaskTriage, tiers)
	verdict := result.Value
	verdict.Provenance = result.Provenance
	return verdict
}

func (c *Chain) complete(ctx context.Context, p llm.Provider, prompt string) (Verdict, float64, error) {
	resp, err := p.Complete(ctx, &llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return Verdict{}, 0, err
	}
	verdict, err := ParseVerdict(resp.Content)
	if err != nil {
		return Verdict{}, 0, err
	}
	return verdict, 0.8, nil
}

// Prompt renders the triage prompt for whatever metrics are present.
func Prompt(m *vitals.Metrics) string {
	var b strings.Builder
	b.WriteString("Here are today's wellness check-in metrics:\n")
	if m.HeartRate != nil {
		fmt.Fprintf(&b, "- heart rate: %.0f bpm\n", *m.HeartRate)
	}
	if m.HRV != nil {
		fmt.Fprintf(&b, "- heart rate variability: %.0f ms\n", *m.HRV)
	}
	if m.BreathingRate != nil {
		fmt.Fprintf(&b, "- breathing rate: %.0f breaths/min\n", *m.BreathingRate)
	}
	if m.TremorIndex != nil {
		fmt.Fprintf(&b, "- tremor index: %.2f (0-5 scale)\n", *m.TremorIndex)
	}
	if m.Cough != nil {
		fmt.Fprintf(&b, "- cough: %s\n", *m.Cough)
	}
	if m.SkinCondition != nil {
		fmt.Fprintf(&b, "- skin condition: %s\n", *m.SkinCondition)
	}
	if m.MoodScore != nil {
		fmt.Fprintf(&b, "- mood score: %d/100\n", *m.MoodScore)
	}
	if m.OverallMood != nil {
		fmt.Fprintf(&b, "- overall mood: %s\n", *m.OverallMood)
	}
	if m.FacialEmotion != nil {
		fmt.Fprintf(&b, "- facial emotion: %s\n", *m.FacialEmotion)
	}
	if m.VoiceEmotion != nil {
		fmt.Fprintf(&b, "- voice emotion: %s\n", *m.VoiceEmotion)
	}
	b.WriteString("Respond with exactly one JSON object: ")
	b.WriteString(`{"summary": "<one or two sentences>", "severity": "green"|"yellow"|"red", `)
	b.WriteString(`"recommendations": ["<up to 4 short suggestions>"]}`)
	return b.String()
}

// ParseVerdict validates a model-produced verdict. Unknown severities and
// missing summaries are malformed responses, which abandon the tier.
func ParseVerdict(text string) (Verdict, error) {
	var parsed struct {
		Summary         string   `json:"summary"`
		Severity        string   `json:"severity"`
		Recommendations []string `json:"recommendations"`
	}
	if err := fallback.UnmarshalFirstObject(text, &parsed); err != nil {
		return Verdict{}, err
	}

	severity := Severity(strings.ToLower(strings.TrimSpace(parsed.Severity)))
	switch severity {
	case SeverityGreen, SeverityYellow, SeverityRed:
	default:
		return Verdict{}, fmt.Errorf("%w: unknown severity %q", fallback.ErrMalformedResponse, parsed.Severity)
	}
	if strings.TrimSpace(parsed.Summary) == "" {
		return Verdict{}, fmt.Errorf("%w: empty summary", fallback.ErrMalformedResponse)
	}

	return Verdict{
		Summary:         strings.TrimSpace(parsed.Summary),
		Severity:        severity,
		Recommendations: truncate(parsed.Recommendations),
	}, nil
}
