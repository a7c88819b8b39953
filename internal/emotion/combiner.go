// Package emotion merges the facial and voice emotion classifications into a
// single weighted mood score and label. No cloud tier exists for this
// combiner: emotion data never leaves the device.
package emotion

import (
	"math"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

// Weights for the two modalities. Voice carries more signal than a single
// facial frame, so it gets the larger share.
const (
	facialWeight = 0.4
	voiceWeight  = 0.6
)

// categoryScores is the fixed emotion-to-score map.
var categoryScores = map[vitals.Emotion]int{
	vitals.EmotionHappy:   90,
	vitals.EmotionCalm:    75,
	vitals.EmotionNeutral: 50,
	vitals.EmotionAnxious: 35,
	vitals.EmotionSad:     25,
	vitals.EmotionAngry:   20,
}

// Input is one modality's classification with its confidence and the tier
// that produced it.
type Input struct {
	Emotion    vitals.Emotion
	Confidence float64
	Provenance fallback.Provenance
}

// Mood is the combined result.
type Mood struct {
	Overall     vitals.Emotion      `json:"overallMood"`
	Score       int                 `json:"moodScore"`
	Description string              `json:"description"`
	Provenance  fallback.Provenance `json:"provenance"`
}

// Combine blends the two classifications into one mood.
//
// The score is the confidence-weighted sum of the category scores, clamped to
// [0,100]. When both modalities agree exactly, the shared emotion wins
// outright, whatever the banded score would have said. Provenance is local if
// either sub-result came from local inference, fallback otherwise.
func Combine(facial, voice Input) Mood {
	facialScore := categoryScore(facial.Emotion)
	voiceScore := categoryScore(voice.Emotion)

	weighted := float64(facialScore)*facialWeight*facial.Confidence +
		float64(voiceScore)*voiceWeight*voice.Confidence
	score := int(math.Round(weighted))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	overall, description := band(score)
	if facial.Emotion == voice.Emotion {
		// Exact agreement short-circuits the banding.
		overall = facial.Emotion
		description = describeAgreement(facial.Emotion)
	}

	provenance := fallback.ProvenanceFallback
	if facial.Provenance == fallback.ProvenanceLocal || voice.Provenance == fallback.ProvenanceLocal {
		provenance = fallback.ProvenanceLocal
	}

	return Mood{
		Overall:     overall,
		Score:       score,
		Description: description,
		Provenance:  provenance,
	}
}

func categoryScore(e vitals.Emotion) int {
	if s, ok := categoryScores[e]; ok {
		return s
	}
	return categoryScores[vitals.EmotionNeutral]
}

// band maps the combined score to a mood label. Bands are non-overlapping
// and evaluated high to low.
func band(score int) (vitals.Emotion, string) {
	switch {
	case score >= 75:
		return vitals.EmotionHappy, "You're radiating positive energy today."
	case score >= 60:
		return vitals.EmotionCalm, "You seem relaxed and at ease."
	case score >= 45:
		return vitals.EmotionNeutral, "You seem balanced overall."
	case score >= 30:
		return vitals.EmotionAnxious, "There are some signs of tension today."
	default:
		return vitals.EmotionSad, "You may be feeling low; be kind to yourself."
	}
}

func describeAgreement(e vitals.Emotion) string {
	switch e {
	case vitals.EmotionHappy:
		return "Both your expression and voice read happy."
	case vitals.EmotionCalm:
		return "Both your expression and voice read calm."
	case vitals.EmotionNeutral:
		return "Both your expression and voice read neutral."
	case vitals.EmotionAnxious:
		return "Both your expression and voice show some anxiety."
	case vitals.EmotionSad:
		return "Both your expression and voice read a bit down."
	case vitals.EmotionAngry:
		return "Both your expression and voice show frustration."
	default:
		return "Your expression and voice agree."
	}
}
