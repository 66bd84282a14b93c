package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/recall/pkg/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestNormalizeFlashcardQuality(t *testing.T) {
	tests := []struct {
		name    string
		quality *int
		want    models.Rating
	}{
		{"missing quality fails safe", nil, models.Again},
		{"blackout", intPtr(0), models.Again},
		{"barely remembered", intPtr(1), models.Again},
		{"difficult", intPtr(2), models.Hard},
		{"hesitant", intPtr(3), models.Good},
		{"confident", intPtr(4), models.Easy},
		{"perfect", intPtr(5), models.Easy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(models.ModeFlashcard, models.Evidence{Quality: tt.quality})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeQuizCorrectnessAndLatency(t *testing.T) {
	tests := []struct {
		name       string
		isCorrect  *bool
		durationMs int64
		want       models.Rating
	}{
		{"incorrect regardless of speed", boolPtr(false), 100, models.Again},
		{"incorrect slow", boolPtr(false), 60000, models.Again},
		{"missing correctness fails safe", nil, 1000, models.Again},
		{"fast correct", boolPtr(true), 1000, models.Easy},
		{"medium correct", boolPtr(true), 5000, models.Good},
		{"boundary ten seconds", boolPtr(true), 10000, models.Good},
		{"slow correct", boolPtr(true), 15000, models.Hard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := models.Evidence{IsCorrect: tt.isCorrect, DurationMs: tt.durationMs}
			assert.Equal(t, tt.want, Normalize(models.ModeQuiz, ev))
		})
	}
}

func TestNormalizeCorrectnessModesShareRule(t *testing.T) {
	ev := models.Evidence{IsCorrect: boolPtr(true), DurationMs: 5000}
	for _, mode := range []models.ReviewMode{
		models.ModeMatching, models.ModeListening, models.ModeSpeedReview,
	} {
		assert.Equal(t, models.Good, Normalize(mode, ev), "mode %s", mode)
	}
}

func TestNormalizeTyping(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		user       string
		durationMs int64
		want       models.Rating
	}{
		{"fast exact match", "hello", "hello", 1000, models.Easy},
		{"slow exact match", "hello", "hello", 5000, models.Good},
		{"exact match without latency", "hello", "hello", 0, models.Good},
		{"exact match with bogus latency", "hello", "hello", -50, models.Good},
		{"near miss", "hello world", "hello word", 2000, models.Hard},
		{"way off", "hello world", "abc", 2000, models.Again},
		{"case and whitespace ignored", "Hello", "  hello ", 1000, models.Easy},
		{"empty target", "", "hello", 1000, models.Again},
		{"empty answer", "hello", "", 1000, models.Again},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := models.Evidence{
				TargetText: tt.target,
				UserText:   tt.user,
				DurationMs: tt.durationMs,
			}
			assert.Equal(t, tt.want, Normalize(models.ModeTyping, ev))
		})
	}
}

func TestNormalizeUnknownModeFailsSafe(t *testing.T) {
	got := Normalize(models.ReviewMode("karaoke"), models.Evidence{Quality: intPtr(5)})
	assert.Equal(t, models.Again, got)
}

func TestNormalizeEmptyEvidenceFailsSafe(t *testing.T) {
	for _, mode := range []models.ReviewMode{
		models.ModeFlashcard, models.ModeQuiz, models.ModeTyping,
		models.ModeMatching, models.ModeListening, models.ModeSpeedReview,
	} {
		assert.Equal(t, models.Again, Normalize(mode, models.Evidence{}), "mode %s", mode)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, similarity("abc", "xyz"), 1e-9)
	// distance 1 over max length 11
	assert.InDelta(t, 1.0-1.0/11.0, similarity("hello world", "hello word"), 1e-9)
}
