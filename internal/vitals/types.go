// Package vitals defines the wellness metrics snapshot exchanged between
// perception agents, the triage classifier, and the session store. Every
// field is optional until its producing agent completes; consumers apply
// documented defaults at their own boundary.
package vitals

// CoughType classifies the audio agent's cough detection.
type CoughType string

const (
	CoughNone CoughType = "none"
	CoughDry  CoughType = "dry"
	CoughWet  CoughType = "wet"
)

// Emotion is a coarse emotional category shared by the facial and voice
// classifiers.
type Emotion string

const (
	EmotionHappy   Emotion = "happy"
	EmotionSad     Emotion = "sad"
	EmotionAngry   Emotion = "angry"
	EmotionAnxious Emotion = "anxious"
	EmotionNeutral Emotion = "neutral"
	EmotionCalm    Emotion = "calm"
)

// Metrics is one check-in's wellness snapshot. Pointer fields distinguish
// "agent never produced this" from a legitimate zero value.
type Metrics struct {
	HeartRate     *float64   `json:"heartRate,omitempty"`
	HRV           *float64   `json:"hrv,omitempty"`
	BreathingRate *float64   `json:"breathingRate,omitempty"`
	TremorIndex   *float64   `json:"tremorIndex,omitempty"`
	Cough         *CoughType `json:"coughType,omitempty"`
	SkinCondition *string    `json:"skinCondition,omitempty"`
	MoodScore     *int       `json:"moodScore,omitempty"`
	OverallMood   *Emotion   `json:"overallMood,omitempty"`
	FacialEmotion *Emotion   `json:"facialEmotion,omitempty"`
	VoiceEmotion  *Emotion   `json:"voiceEmotion,omitempty"`
}

// HasMoodData reports whether any mood-derived field is populated. The triage
// classifier uses this to select its mood profile over the vitals profile.
func (m *Metrics) HasMoodData() bool {
	return m.MoodScore != nil || m.OverallMood != nil ||
		m.FacialEmotion != nil || m.VoiceEmotion != nil
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Cough returns a pointer to c.
func Cough(c CoughType) *CoughType { return &c }

// Mood returns a pointer to e.
func Mood(e Emotion) *Emotion { return &e }
