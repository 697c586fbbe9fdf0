package models

// Emotion labels reported alongside every reply.
const (
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionNeutral  = "neutral"
	EmotionAngry    = "angry"
	EmotionFear     = "fear"
	EmotionSurprise = "surprise"
	EmotionDisgust  = "disgust"
)

// EmotionLabels is the closed set of labels a classifier may produce.
var EmotionLabels = []string{
	EmotionHappy,
	EmotionSad,
	EmotionNeutral,
	EmotionAngry,
	EmotionFear,
	EmotionSurprise,
	EmotionDisgust,
}
