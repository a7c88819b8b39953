// Package triage maps a wellness metrics snapshot to a severity verdict and
// recommendation list. The rule engine here is deterministic and network-free:
// it is both the primary classifier and the final tier behind the LLM-based
// triage chain. Severity is a one-way ratchet within a single pass: once a
// concern elevates it, nothing downgrades it.
package triage

import (
	"fmt"
	"strings"

	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/fallback"
	"github.com/theonlyhennygod/cactus-hackathon-sub000/internal/vitals"
)

// Severity is the triage verdict level.
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityYellow Severity = "yellow"
	SeverityRed    Severity = "red"
)

// MaxRecommendations caps the verdict's recommendation list. Truncation keeps
// the first entries in generation order; there is no prioritization.
const MaxRecommendations = 4

func severityRank(s Severity) int {
	switch s {
	case SeverityYellow:
		return 1
	case SeverityRed:
		return 2
	default:
		return 0
	}
}

// elevate ratchets cur up to at least next. It never lowers severity.
func elevate(cur, next Severity) Severity {
	if severityRank(next) > severityRank(cur) {
		return next
	}
	return cur
}

// Verdict is one triage result.
type Verdict struct {
	Summary         string              `json:"summary"`
	Severity        Severity            `json:"severity"`
	Recommendations []string            `json:"recommendations"`
	Provenance      fallback.Provenance `json:"provenance"`
}

// Defaults substituted for absent fields at the classification boundary.
const (
	defaultHeartRate     = 72.0
	defaultHRV           = 50.0
	defaultTremorIndex   = 0.0
	defaultBreathingRate = 16.0
	defaultSkinCondition = "Normal"
	defaultMoodScore     = 50
)

// Classify runs the rule engine on a snapshot, choosing the mood profile when
// any mood datum is present and the vitals profile otherwise.
func Classify(m *vitals.Metrics) Verdict {
	if m.HasMoodData() {
		return ClassifyMood(m)
	}
	return ClassifyVitals(m)
}

// ClassifyVitals applies the heart-rate/HRV rule profile.
func ClassifyVitals(m *vitals.Metrics) Verdict {
	heartRate := valueOr(m.HeartRate, defaultHeartRate)
	hrv := valueOr(m.HRV, defaultHRV)
	tremor := valueOr(m.TremorIndex, defaultTremorIndex)
	breathing := valueOr(m.BreathingRate, defaultBreathingRate)
	cough := vitals.CoughNone
	if m.Cough != nil {
		cough = *m.Cough
	}

	severity := SeverityGreen
	var concerns, positives []string

	switch {
	case heartRate > 120:
		severity = elevate(severity, SeverityRed)
		concerns = append(concerns, "significantly elevated heart rate")
	case heartRate > 100:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "elevated heart rate")
	case heartRate < 50:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "low heart rate")
	case heartRate >= 60 && heartRate <= 80:
		positives = append(positives, "heart rate in a healthy range")
	}

	switch {
	case hrv < 15:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "very low HRV")
	case hrv < 30:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "low HRV")
	case hrv >= 50:
		positives = append(positives, "good heart rate variability")
	}

	switch {
	case tremor > 3:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "elevated tremor")
	case tremor < 0.5:
		positives = append(positives, "excellent hand stability")
	}

	if breathing < 10 || breathing > 22 {
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "irregular breathing rate")
	}

	if cough == vitals.CoughWet {
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "wet cough detected")
	}

	recs := []string{}
	if tremor > 1 {
		recs = append(recs, "Reduce caffeine intake and try a short relaxation exercise")
	}
	if hrv < 30 {
		recs = append(recs, "Practice slow breathing to support heart rate variability")
	}
	if heartRate > 100 {
		recs = append(recs, "Take a few minutes to rest and breathe deeply")
	}
	if cough == vitals.CoughWet {
		recs = append(recs, "Monitor the cough and see a doctor if it persists")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep up your healthy routine")
	}
	recs = append(recs, "Remember to stay hydrated throughout the day")

	return Verdict{
		Summary:         buildSummary("Some vitals need attention.", severity, concerns, positives, nil),
		Severity:        severity,
		Recommendations: truncate(recs),
		Provenance:      fallback.ProvenanceLocal,
	}
}

// Emotion sets used by the mood profile. Values outside the shared enum
// (e.g. "stressed" from a model response) still classify correctly.
var (
	negativeEmotions = map[vitals.Emotion]bool{
		vitals.EmotionSad:     true,
		vitals.EmotionAngry:   true,
		vitals.EmotionAnxious: true,
		"stressed":            true,
		"fearful":             true,
		"disgusted":           true,
	}
	positiveEmotions = map[vitals.Emotion]bool{
		vitals.EmotionHappy: true,
		vitals.EmotionCalm:  true,
		"content":           true,
	}
)

// ClassifyMood applies the mood-score rule profile.
func ClassifyMood(m *vitals.Metrics) Verdict {
	moodScore := defaultMoodScore
	if m.MoodScore != nil {
		moodScore = *m.MoodScore
	}
	facial := vitals.EmotionNeutral
	if m.FacialEmotion != nil {
		facial = *m.FacialEmotion
	}
	voice := vitals.EmotionNeutral
	if m.VoiceEmotion != nil {
		voice = *m.VoiceEmotion
	}
	tremor := valueOr(m.TremorIndex, defaultTremorIndex)
	breathing := valueOr(m.BreathingRate, defaultBreathingRate)
	skin := defaultSkinCondition
	if m.SkinCondition != nil {
		skin = *m.SkinCondition
	}

	severity := SeverityGreen
	var concerns, positives []string

	switch {
	case moodScore < 20:
		severity = elevate(severity, SeverityRed)
		concerns = append(concerns, "very low mood score")
	case moodScore < 30:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "low mood score")
	case moodScore < 50:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "below-average mood score")
	case moodScore >= 70:
		positives = append(positives, "great mood score")
	}

	for _, pair := range []struct {
		label   string
		emotion vitals.Emotion
	}{
		{"facial expression", facial},
		{"voice tone", voice},
	} {
		switch {
		case negativeEmotions[pair.emotion]:
			severity = elevate(severity, SeverityYellow)
			concerns = append(concerns, fmt.Sprintf("%s reads %s", pair.label, pair.emotion))
		case positiveEmotions[pair.emotion]:
			positives = append(positives, fmt.Sprintf("%s reads %s", pair.label, pair.emotion))
		}
	}

	switch {
	case tremor > 3:
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "elevated tremor")
	case tremor > 0 && tremor < 0.5:
		positives = append(positives, "excellent hand stability")
	}

	if breathing < 10 || breathing > 22 {
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, "irregular breathing rate")
	} else if breathing >= 12 && breathing <= 18 {
		positives = append(positives, "steady breathing")
	}

	if !isNormalSkin(skin) {
		severity = elevate(severity, SeverityYellow)
		concerns = append(concerns, fmt.Sprintf("skin condition: %s", skin))
	}

	recs := []string{}
	if moodScore < 50 {
		recs = append(recs, "Set aside a little time for self-care today")
	}
	if negativeEmotions[facial] || negativeEmotions[voice] {
		recs = append(recs, "A short walk or mindfulness break can help reset your mood")
	}
	if tremor > 1 {
		recs = append(recs, "Reduce caffeine intake and try a short relaxation exercise")
	}
	if breathing < 10 || breathing > 22 {
		recs = append(recs, "Try a few rounds of slow, even breathing")
	}
	if len(recs) == 0 {
		recs = append(recs, "You're doing great — keep it up")
	}
	recs = append(recs, "Remember to stay hydrated throughout the day")

	return Verdict{
		Summary:         buildSummary("Some areas need attention.", severity, concerns, positives, &moodScore),
		Severity:        severity,
		Recommendations: truncate(recs),
		Provenance:      fallback.ProvenanceLocal,
	}
}

func isNormalSkin(skin string) bool {
	switch strings.ToLower(strings.TrimSpace(skin)) {
	case "normal", "healthy":
		return true
	}
	return false
}

// buildSummary renders the deterministic, order-sensitive summary template.
func buildSummary(redPrefix string, severity Severity, concerns, positives []string, score *int) string {
	switch {
	case severity == SeverityRed:
		return redPrefix + " " + strings.Join(concerns, ", ") +
			". Consider checking in with a healthcare provider."
	case len(concerns) > 0:
		return "Overall wellness is good with some areas to monitor: " +
			strings.Join(concerns, ", ") + "."
	default:
		summary := "All metrics normal."
		if len(positives) > 0 {
			summary = "Looking good today: " + strings.Join(positives, ", ") + "."
		}
		if score != nil {
			summary += fmt.Sprintf(" Mood score: %d/100.", *score)
		}
		return summary
	}
}

func truncate(recs []string) []string {
	if len(recs) > MaxRecommendations {
		return recs[:MaxRecommendations]
	}
	return recs
}

func valueOr(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}
