package service

import (
	"testing"

	"skilljumper_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzePreparationIntent(t *testing.T) {
	svc := NewIntentService()

	analysis := svc.Analyze("get ready for tomorrow", model.UrgencyMedium)

	assert.Contains(t, analysis.Categories, "personal_care")
	assert.Contains(t, analysis.Categories, "time_management")
	assert.Contains(t, analysis.Keywords, "time_management")
	assert.Contains(t, analysis.SemanticConcepts, "preparation")
	assert.Equal(t, "confident", analysis.EmotionalState)
	assert.Greater(t, analysis.Confidence, 0.0)
}

func TestAnalyzeUnmatchedIntentDefaults(t *testing.T) {
	svc := NewIntentService()

	analysis := svc.Analyze("xyzzy", model.UrgencyLow)

	assert.Equal(t, []string{"personal_care"}, analysis.Categories)
	assert.Equal(t, []string{"general"}, analysis.Keywords)
	assert.Equal(t, "neutral", analysis.EmotionalState)
	assert.Zero(t, analysis.Confidence)
}

func TestAnalyzeEmotionalTone(t *testing.T) {
	svc := NewIntentService()

	tests := []struct {
		intent string
		tone   string
	}{
		{"I'm so excited to clean my room", "excited"},
		{"this is really hard and I'm overwhelmed", "stressed"},
		{"I need to pack quickly, hurry", "urgent"},
		{"maybe I should tidy up, not sure", "uncertain"},
	}
	for _, tt := range tests {
		analysis := svc.Analyze(tt.intent, model.UrgencyLow)
		assert.Equal(t, tt.tone, analysis.EmotionalState, "intent: %q", tt.intent)
	}
}

func TestAnalyzeConfidenceCapsAtFull(t *testing.T) {
	svc := NewIntentService()

	// Hits several category, skill and concept tables at once.
	analysis := svc.Analyze("get ready, clean the kitchen, cook a meal, plan my schedule and prepare to learn", model.UrgencyLow)

	assert.Equal(t, 100.0, analysis.Confidence)
}

func TestAnalyzeKeywordsDoubleAsTargetSkills(t *testing.T) {
	svc := NewIntentService()

	analysis := svc.Analyze("brush my teeth before bed", model.UrgencyLow)

	assert.Contains(t, analysis.Keywords, "personal_hygiene")
	assert.Equal(t, analysis.Keywords, analysis.TargetSkills)
}
