package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

func TestCombineWeightedScore(t *testing.T) {
	// happy(90)*0.4*1.0 + calm(75)*0.6*1.0 = 81
	mood := Combine(
		Input{Emotion: vitals.EmotionHappy, Confidence: 1.0},
		Input{Emotion: vitals.EmotionCalm, Confidence: 1.0},
	)

	assert.Equal(t, 81, mood.Score)
	assert.Equal(t, vitals.EmotionHappy, mood.Overall)
}

func TestCombineExactAgreementWinsOverBand(t *testing.T) {
	// sad(25)*0.4*0.8 + sad(25)*0.6*0.7 = 18.5, which rounds to 19. The
	// banded label for 19 is already sad, but the agreement path must also
	// produce the agreement description.
	mood := Combine(
		Input{Emotion: vitals.EmotionSad, Confidence: 0.8},
		Input{Emotion: vitals.EmotionSad, Confidence: 0.7},
	)

	assert.Equal(t, vitals.EmotionSad, mood.Overall)
	assert.Equal(t, 19, mood.Score)
	assert.Equal(t, "Both your expression and voice read a bit down.", mood.Description)
}

func TestCombineAgreementOverridesDisagreeingBand(t *testing.T) {
	// Two low-confidence happy reads: 90*0.4*0.3 + 90*0.6*0.3 = 27, which
	// bands to sad. Exact agreement overrides the band.
	mood := Combine(
		Input{Emotion: vitals.EmotionHappy, Confidence: 0.3},
		Input{Emotion: vitals.EmotionHappy, Confidence: 0.3},
	)

	assert.Equal(t, 27, mood.Score)
	assert.Equal(t, vitals.EmotionHappy, mood.Overall)
}

func TestCombineMixedEmotions(t *testing.T) {
	// happy(90)*0.4*0.9 + sad(25)*0.6*0.8 = 44.4 -> 44 -> anxious band.
	mood := Combine(
		Input{Emotion: vitals.EmotionHappy, Confidence: 0.9},
		Input{Emotion: vitals.EmotionSad, Confidence: 0.8},
	)

	assert.Equal(t, 44, mood.Score)
	assert.Equal(t, vitals.EmotionAnxious, mood.Overall)
}

func TestCombineUnknownEmotionScoresNeutral(t *testing.T) {
	mood := Combine(
		Input{Emotion: "perplexed", Confidence: 1.0},
		Input{Emotion: vitals.EmotionNeutral, Confidence: 1.0},
	)

	// Both score as neutral(50): 50*0.4 + 50*0.6 = 50.
	assert.Equal(t, 50, mood.Score)
	assert.Equal(t, vitals.EmotionNeutral, mood.Overall)
}

func TestCombineScoreClamped(t *testing.T) {
	mood := Combine(
		Input{Emotion: vitals.EmotionAngry, Confidence: 0},
		Input{Emotion: vitals.EmotionAngry, Confidence: 0},
	)
	assert.Equal(t, 0, mood.Score)
}

func TestCombineBands(t *testing.T) {
	tests := []struct {
		score int
		want  vitals.Emotion
	}{
		{80, vitals.EmotionHappy},
		{75, vitals.EmotionHappy},
		{74, vitals.EmotionCalm},
		{60, vitals.EmotionCalm},
		{59, vitals.EmotionNeutral},
		{45, vitals.EmotionNeutral},
		{44, vitals.EmotionAnxious},
		{30, vitals.EmotionAnxious},
		{29, vitals.EmotionSad},
		{0, vitals.EmotionSad},
	}
	for _, tt := range tests {
		got, _ := band(tt.score)
		assert.Equal(t, tt.want, got, "score %d", tt.score)
	}
}

func TestCombineProvenance(t *testing.T) {
	mood := Combine(
		Input{Emotion: vitals.EmotionNeutral, Confidence: 1, Provenance: fallback.ProvenanceLocal},
		Input{Emotion: vitals.EmotionNeutral, Confidence: 1, Provenance: fallback.ProvenanceFallback},
	)
	assert.Equal(t, fallback.ProvenanceLocal, mood.Provenance)

	mood = Combine(
		Input{Emotion: vitals.EmotionNeutral, Confidence: 1, Provenance: fallback.ProvenanceFallback},
		Input{Emotion: vitals.EmotionNeutral, Confidence: 1, Provenance: fallback.ProvenanceFallback},
	)
	assert.Equal(t, fallback.ProvenanceFallback, mood.Provenance)
}
