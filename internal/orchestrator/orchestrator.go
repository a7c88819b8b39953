// Package orchestrator sequences one wellness check-in: perception agents
// fan out in parallel, their results join into a metrics snapshot, the triage
// chain produces a verdict, and the session is persisted. Inference failure
// anywhere degrades to a fallback result; it never blocks the check-in.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/capability"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/emotion"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/llm"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/session"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/signal"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/triage"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

// CheckInInput carries the captured media for one check-in. Empty fields
// simply mean the corresponding agent runs on its fallback tier.
type CheckInInput struct {
	// ImagePath is the camera frame for skin/face analysis.
	ImagePath string
	// AudioPath is the breathing/voice recording.
	AudioPath string
	// Samples is the accelerometer capture window.
	Samples []signal.Sample
}

// CheckInResult pairs the persisted session with per-agent provenance, so
// the caller can label fallback-derived values in the UI.
type CheckInResult struct {
	Session    *session.Session
	Provenance map[string]string
}

// Orchestrator owns one check-in pipeline. One active check-in per process;
// the capability registry's lifecycle is tied to this object.
type Orchestrator struct {
	localLLM    llm.Provider
	cloudLLM    llm.Provider
	transcriber llm.Transcriber
	registry    *capability.Registry
	aggregator  *signal.Aggregator
	triage      *triage.Chain
	store       *session.Store
	log         zerolog.Logger
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLocalLLM sets the on-device model provider.
func WithLocalLLM(p llm.Provider) Option {
	return func(o *Orchestrator) { o.localLLM = p }
}

// WithCloudLLM sets the cloud model provider used by egress-permitted tasks.
func WithCloudLLM(p llm.Provider) Option {
	return func(o *Orchestrator) { o.cloudLLM = p }
}

// WithTranscriber sets the optional speech-to-text capability.
func WithTranscriber(t llm.Transcriber) Option {
	return func(o *Orchestrator) { o.transcriber = t }
}

// WithStore sets session persistence. Without a store, check-ins still run
// but history is not kept.
func WithStore(s *session.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithJitter overrides the aggregator's jitter source (tests).
func WithJitter(j signal.JitterSource) Option {
	return func(o *Orchestrator) { o.aggregator = signal.NewAggregator(j) }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New creates an orchestrator. The capability registry is created here and
// lives exactly as long as the orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry:   capability.NewRegistry(),
		aggregator: signal.NewAggregator(nil),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.triage = triage.NewChain(o.localLLM, o.cloudLLM, o.registry, o.log)
	return o
}

// Registry exposes the capability registry, mainly for tests.
func (o *Orchestrator) Registry() *capability.Registry {
	return o.registry
}

// RunCheckIn executes one wellness check-in transaction. The returned error
// only ever reflects persistence failure; perception and triage always
// resolve through their fallback chains.
func (o *Orchestrator) RunCheckIn(ctx context.Context, input CheckInInput) (*CheckInResult, error) {
	start := time.Now()
	o.log.Info().
		Int("samples", len(input.Samples)).
		Msg("starting wellness check-in")

	// Fan out the perception agents; each one contains its own failures.
	var (
		wg        sync.WaitGroup
		visionRes fallback.Result[visionReading]
		audioRes  fallback.Result[audioReading]
		tremorRes fallback.Result[signal.Reading]
		voiceRes  fallback.Result[voiceReading]
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		visionRes = o.runVision(ctx, input.ImagePath)
	}()
	go func() {
		defer wg.Done()
		audioRes = o.runAudio(ctx, input.AudioPath)
	}()
	go func() {
		defer wg.Done()
		tremorRes = o.runTremor(ctx, input.Samples)
	}()
	go func() {
		defer wg.Done()
		voiceRes = o.runVoiceEmotion(ctx, input.AudioPath)
	}()
	wg.Wait()

	mood := emotion.Combine(
		emotion.Input{
			Emotion:    visionRes.Value.FacialEmotion,
			Confidence: visionRes.Confidence,
			Provenance: visionRes.Provenance,
		},
		emotion.Input{
			Emotion:    voiceRes.Value.Emotion,
			Confidence: voiceRes.Confidence,
			Provenance: voiceRes.Provenance,
		},
	)

	metrics := vitals.Metrics{
		HeartRate:     vitals.Float64(tremorRes.Value.HeartRate),
		HRV:           vitals.Float64(tremorRes.Value.HRV),
		TremorIndex:   vitals.Float64(tremorRes.Value.TremorIndex),
		BreathingRate: vitals.Float64(audioRes.Value.BreathingRate),
		Cough:         vitals.Cough(audioRes.Value.CoughType),
		SkinCondition: vitals.String(visionRes.Value.SkinCondition),
		MoodScore:     vitals.Int(mood.Score),
		OverallMood:   vitals.Mood(mood.Overall),
		FacialEmotion: vitals.Mood(visionRes.Value.FacialEmotion),
		VoiceEmotion:  vitals.Mood(voiceRes.Value.Emotion),
	}

	verdict := o.triage.Run(ctx, &metrics)

	sess := &session.Session{
		Timestamp: time.Now().UnixMilli(),
		Vitals:    metrics,
		Triage:    verdict,
	}
	if o.store != nil {
		if err := o.store.Append(sess); err != nil {
			return nil, err
		}
	}

	o.log.Info().
		Str("severity", string(verdict.Severity)).
		Str("triage_tier", string(verdict.Provenance)).
		Dur("elapsed", time.Since(start)).
		Msg("check-in complete")

	return &CheckInResult{
		Session: sess,
		Provenance: map[string]string{
			"vision":       string(visionRes.Provenance),
			"audio":        string(audioRes.Provenance),
			"tremor":       string(tremorRes.Provenance),
			"voiceEmotion": string(voiceRes.Provenance),
			"triage":       string(verdict.Provenance),
		},
	}, nil
}
