package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/logger"
	"github.com/Hasnain-011/emotion-driven-ai-chatbots/internal/models"
)

const DefaultEmotionTimeout = 10 * time.Second

var (
	ErrNoEmotionMatch   = errors.New("no emotion detected")
	ErrUnknownEmotion   = errors.New("emotion label outside the known set")
	errDetectorPanicked = errors.New("emotion detector panicked")
)

// EmotionDetector maps text to an emotion label. Implementations may fail;
// EmotionClassifier absorbs the failure.
type EmotionDetector interface {
	Detect(ctx context.Context, text string) (string, error)
}

// EmotionClassifier runs detectors in order and returns the first valid
// label. It never fails: with no usable answer the label is neutral.
type EmotionClassifier struct {
	detectors []EmotionDetector
	timeout   time.Duration
}

func NewEmotionClassifier(timeout time.Duration, detectors ...EmotionDetector) *EmotionClassifier {
	if timeout <= 0 {
		timeout = DefaultEmotionTimeout
	}
	return &EmotionClassifier{
		detectors: lo.Filter(detectors, func(d EmotionDetector, _ int) bool { return d != nil }),
		timeout:   timeout,
	}
}

func (c *EmotionClassifier) Classify(ctx context.Context, text string) string {
	for _, d := range c.detectors {
		label, err := c.detect(ctx, d, text)
		if err != nil {
			slog.DebugContext(ctx, "emotion detector gave no label", "detector", fmt.Sprintf("%T", d), logger.Err(err))
			continue
		}
		return label
	}
	return models.EmotionNeutral
}

func (c *EmotionClassifier) detect(ctx context.Context, d EmotionDetector, text string) (label string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errDetectorPanicked, r)
		}
	}()

	dctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	label, err = d.Detect(dctx, text)
	if err != nil {
		return "", err
	}

	label = strings.ToLower(strings.TrimSpace(label))
	if !lo.Contains(models.EmotionLabels, label) {
		return "", fmt.Errorf("%w: %q", ErrUnknownEmotion, label)
	}
	return label, nil
}

// LexiconEmotionDetector is a keyword matcher that works without any
// external service.
type LexiconEmotionDetector struct {
	words   map[string]string
	phrases map[string]string
}

var defaultLexicon = map[string][]string{
	models.EmotionSad: {
		"sad", "sadness", "unhappy", "depressed", "depressing", "lonely", "alone",
		"cry", "crying", "cried", "heartbroken", "grief", "grieving", "hopeless",
		"miserable", "hurt", "broke up", "passed away", "miss you", "lost my",
		"feel down", "feeling down", "let down",
	},
	models.EmotionHappy: {
		"happy", "glad", "great", "awesome", "excited", "joy", "joyful", "love",
		"wonderful", "amazing", "yay", "thrilled", "grateful", "proud", "fantastic",
		"good news", "promoted", "celebrate",
	},
	models.EmotionAngry: {
		"angry", "mad", "furious", "hate", "annoyed", "annoying", "irritated",
		"rage", "pissed", "frustrated", "frustrating", "fed up",
	},
	models.EmotionFear: {
		"afraid", "scared", "fear", "terrified", "anxious", "anxiety", "worried",
		"worry", "nervous", "panic", "frightened", "stressed",
	},
	models.EmotionSurprise: {
		"surprised", "surprise", "unexpected", "shocked", "omg", "suddenly",
		"can't believe", "cannot believe",
	},
	models.EmotionDisgust: {
		"disgusting", "disgusted", "gross", "revolting", "nasty", "yuck", "sick of",
	},
}

// labelPriority breaks ties between equally matched labels.
var labelPriority = []string{
	models.EmotionSad,
	models.EmotionFear,
	models.EmotionAngry,
	models.EmotionDisgust,
	models.EmotionSurprise,
	models.EmotionHappy,
}

var wordPattern = regexp.MustCompile(`[a-z']+`)

// negationWindow is how many tokens back a negator cancels a word match.
const negationWindow = 2

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "dont": true,
	"isn't": true, "wasn't": true, "aren't": true, "ain't": true, "nothing": true,
}

func NewLexiconEmotionDetector() *LexiconEmotionDetector {
	d := &LexiconEmotionDetector{
		words:   make(map[string]string),
		phrases: make(map[string]string),
	}
	for label, terms := range defaultLexicon {
		for _, term := range terms {
			if strings.Contains(term, " ") {
				d.phrases[term] = label
			} else {
				d.words[term] = label
			}
		}
	}
	return d
}

func (d *LexiconEmotionDetector) Detect(_ context.Context, text string) (string, error) {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return "", ErrNoEmotionMatch
	}

	scores := make(map[string]int)
	for i, tok := range tokens {
		if label, ok := d.words[tok]; ok && !negated(tokens, i) {
			scores[label]++
		}
	}
	normalized := " " + strings.Join(tokens, " ") + " "
	for phrase, label := range d.phrases {
		if strings.Contains(normalized, " "+phrase+" ") {
			scores[label] += 2
		}
	}

	best, bestScore := "", 0
	for _, label := range labelPriority {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}
	if best == "" {
		return "", ErrNoEmotionMatch
	}
	return best, nil
}

func negated(tokens []string, i int) bool {
	for j := max(0, i-negationWindow); j < i; j++ {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}
