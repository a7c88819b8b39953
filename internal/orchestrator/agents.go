package orchestrator

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/capability"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/llm"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/signal"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

// Perception agent outputs. Each agent resolves inside its own fallback
// chain, so the orchestrator's join can never fail as a whole.

type visionReading struct {
	SkinCondition string         `json:"skinCondition"`
	FacialEmotion vitals.Emotion `json:"facialEmotion"`
	Confidence    float64        `json:"confidence"`
}

type audioReading struct {
	CoughType     vitals.CoughType `json:"coughType"`
	BreathingRate float64          `json:"breathingRate"`
	Confidence    float64          `json:"confidence"`
}

type voiceReading struct {
	Emotion    vitals.Emotion `json:"emotion"`
	Confidence float64        `json:"confidence"`
}

const visionPrompt = "Look at this check-in photo of a person's face. " +
	"Describe the visible skin condition in one or two words (e.g. Normal, " +
	"Dry, Flushed, Pale) and the dominant facial emotion (happy, sad, angry, " +
	"anxious, neutral, calm). Respond with exactly one JSON object: " +
	`{"skinCondition": "<label>", "facialEmotion": "<emotion>", "confidence": <0-1>}`

// runVision classifies skin condition and facial emotion from one camera
// frame. Local-only by privacy policy; the frame never leaves the device.
func (o *Orchestrator) runVision(ctx context.Context, imagePath string) fallback.Result[visionReading] {
	tiers := []fallback.Tier[visionReading]{}

	if o.localLLM != nil {
		tiers = append(tiers, fallback.Local(func(ctx context.Context) (visionReading, float64, error) {
			frame, err := os.ReadFile(imagePath)
			if err != nil {
				return visionReading{}, 0, fmt.Errorf("read frame: %w", err)
			}

			resp, err := o.localLLM.Complete(ctx, &llm.CompletionRequest{
				Messages: []llm.Message{{
					Role:    "user",
					Content: visionPrompt,
					Images:  []string{base64.StdEncoding.EncodeToString(frame)},
				}},
			})
			if err != nil {
				return visionReading{}, 0, err
			}

			var reading visionReading
			if err := fallback.UnmarshalFirstObject(resp.Content, &reading); err != nil {
				return visionReading{}, 0, err
			}
			if reading.SkinCondition == "" {
				return visionReading{}, 0, fmt.Errorf("%w: missing skinCondition", fallback.ErrMalformedResponse)
			}
			reading.FacialEmotion = normalizeEmotion(reading.FacialEmotion)
			return reading, clampConfidence(reading.Confidence), nil
		}))
	}

	tiers = append(tiers, fallback.Deterministic(func() (visionReading, float64) {
		return visionReading{
			SkinCondition: "Normal",
			FacialEmotion: vitals.EmotionNeutral,
		}, 0.4
	}))

	return fallback.Run(ctx, o.log, o.registry, capability.TaskVision, tiers)
}

const audioPrompt = "The following is a transcription of a short breathing " +
	"and cough check recording, with acoustic annotations: %q. Classify any " +
	"cough as none, dry, or wet, and estimate the breathing rate in breaths " +
	"per minute. Respond with exactly one JSON object: " +
	`{"coughType": "none"|"dry"|"wet", "breathingRate": <number>, "confidence": <0-1>}`

// runAudio classifies cough type and breathing rate from the audio capture.
// Local-only by privacy policy.
func (o *Orchestrator) runAudio(ctx context.Context, audioPath string) fallback.Result[audioReading] {
	tiers := []fallback.Tier[audioReading]{}

	if o.transcriber != nil && o.localLLM != nil {
		tiers = append(tiers, fallback.Local(func(ctx context.Context) (audioReading, float64, error) {
			transcript, err := o.transcriber.Transcribe(ctx, audioPath)
			if err != nil {
				return audioReading{}, 0, err
			}

			resp, err := o.localLLM.Complete(ctx, &llm.CompletionRequest{
				Messages: []llm.Message{{
					Role:    "user",
					Content: fmt.Sprintf(audioPrompt, transcript),
				}},
			})
			if err != nil {
				return audioReading{}, 0, err
			}

			var reading audioReading
			if err := fallback.UnmarshalFirstObject(resp.Content, &reading); err != nil {
				return audioReading{}, 0, err
			}
			switch reading.CoughType {
			case vitals.CoughNone, vitals.CoughDry, vitals.CoughWet:
			default:
				return audioReading{}, 0, fmt.Errorf("%w: unknown cough type %q", fallback.ErrMalformedResponse, reading.CoughType)
			}
			if reading.BreathingRate <= 0 {
				reading.BreathingRate = 16
			}
			return reading, clampConfidence(reading.Confidence), nil
		}))
	}

	tiers = append(tiers, fallback.Deterministic(func() (audioReading, float64) {
		return audioReading{
			CoughType:     vitals.CoughNone,
			BreathingRate: 16,
		}, 0.4
	}))

	return fallback.Run(ctx, o.log, o.registry, capability.TaskAudio, tiers)
}

const voicePrompt = "The following is a transcription of a short voice " +
	"check-in: %q. Classify the speaker's emotional tone as one of happy, " +
	"sad, angry, anxious, neutral, calm. Respond with exactly one JSON " +
	`object: {"emotion": "<emotion>", "confidence": <0-1>}`

// runVoiceEmotion classifies the speaker's emotional tone. Local-only by
// privacy policy.
func (o *Orchestrator) runVoiceEmotion(ctx context.Context, audioPath string) fallback.Result[voiceReading] {
	tiers := []fallback.Tier[voiceReading]{}

	if o.transcriber != nil && o.localLLM != nil {
		tiers = append(tiers, fallback.Local(func(ctx context.Context) (voiceReading, float64, error) {
			transcript, err := o.transcriber.Transcribe(ctx, audioPath)
			if err != nil {
				return voiceReading{}, 0, err
			}

			resp, err := o.localLLM.Complete(ctx, &llm.CompletionRequest{
				Messages: []llm.Message{{
					Role:    "user",
					Content: fmt.Sprintf(voicePrompt, transcript),
				}},
			})
			if err != nil {
				return voiceReading{}, 0, err
			}

			var reading voiceReading
			if err := fallback.UnmarshalFirstObject(resp.Content, &reading); err != nil {
				return voiceReading{}, 0, err
			}
			if reading.Emotion == "" {
				return voiceReading{}, 0, fmt.Errorf("%w: missing emotion", fallback.ErrMalformedResponse)
			}
			reading.Emotion = normalizeEmotion(reading.Emotion)
			return reading, clampConfidence(reading.Confidence), nil
		}))
	}

	tiers = append(tiers, fallback.Deterministic(func() (voiceReading, float64) {
		return voiceReading{Emotion: vitals.EmotionNeutral}, 0.5
	}))

	return fallback.Run(ctx, o.log, o.registry, capability.TaskVoiceEmotion, tiers)
}

// runTremor computes the movement-derived vitals. The deterministic
// aggregation is the primary, local computation here; when the window is
// large enough a cloud second opinion replaces the tremor index only and
// flips provenance to cloud. Heart rate and HRV are never cloud-overridden.
func (o *Orchestrator) runTremor(ctx context.Context, samples []signal.Sample) fallback.Result[signal.Reading] {
	reading := o.aggregator.Aggregate(samples)
	result := fallback.Result[signal.Reading]{
		Value:      reading,
		Confidence: reading.Quality,
		Provenance: fallback.ProvenanceLocal,
	}

	if o.cloudLLM == nil || !signal.CloudEligible(samples) || !capability.CloudAllowed(capability.TaskTremor) {
		return result
	}

	summary := signal.BuildCloudSummary(samples)
	resp, err := o.cloudLLM.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: signal.CloudPrompt(summary)}},
	})
	if err != nil {
		o.log.Warn().Err(err).Msg("cloud tremor assessment failed, keeping local index")
		return result
	}

	idx, err := signal.ParseCloudTremor(resp.Content)
	if err != nil {
		o.log.Warn().Err(err).Msg("cloud tremor response malformed, keeping local index")
		return result
	}

	result.Value.TremorIndex = idx
	result.Provenance = fallback.ProvenanceCloud
	o.log.Debug().Float64("tremor_index", idx).Msg("cloud tremor override applied")
	return result
}

// normalizeEmotion maps free-form model labels onto the shared enum where
// possible, passing unknown labels through for the mood profile's sets.
func normalizeEmotion(e vitals.Emotion) vitals.Emotion {
	switch vitals.Emotion(strings.ToLower(strings.TrimSpace(string(e)))) {
	case vitals.EmotionHappy, "joyful", "content":
		return vitals.EmotionHappy
	case vitals.EmotionSad, "down":
		return vitals.EmotionSad
	case vitals.EmotionAngry, "frustrated":
		return vitals.EmotionAngry
	case vitals.EmotionAnxious, "stressed", "nervous", "worried":
		return vitals.EmotionAnxious
	case vitals.EmotionCalm, "relaxed":
		return vitals.EmotionCalm
	case vitals.EmotionNeutral, "":
		return vitals.EmotionNeutral
	default:
		return vitals.Emotion(strings.ToLower(strings.TrimSpace(string(e))))
	}
}

func clampConfidence(c float64) float64 {
	if c <= 0 {
		return 0.6 // models often omit it; assume moderate confidence
	}
	if c > 1 {
		return 1
	}
	return c
}
