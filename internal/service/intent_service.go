package service

import (
	"strings"

	"skilljumper_backend/internal/model"
)

// IntentService turns a free-text user intent into categories, target
// skills and an emotional tone via keyword tables. Analysis never returns
// empty results: unmatched intents default to general personal care.
type IntentService struct{}

func NewIntentService() *IntentService {
	return &IntentService{}
}

var categoryKeywords = map[string][]string{
	"personal_care":    {"ready", "hygiene", "dress", "appearance", "shower", "brush", "clean", "grooming"},
	"home_living":      {"clean", "organize", "cook", "meal", "kitchen", "room", "house", "tidy", "laundry"},
	"time_management":  {"schedule", "plan", "time", "organize", "prepare", "pack", "ready"},
	"social":           {"friend", "talk", "meet", "communicate", "social", "conversation"},
	"community":        {"outside", "shop", "travel", "public", "community", "errand"},
	"work_skills":      {"work", "job", "task", "professional", "skill", "learn"},
	"digital_literacy": {"computer", "phone", "digital", "online", "technology", "app"},
}

var skillKeywords = map[string][]string{
	"personal_hygiene": {"brush", "teeth", "shower", "wash", "clean", "hygiene", "soap", "shampoo"},
	"time_management":  {"ready", "schedule", "time", "organize", "plan", "pack", "prepare"},
	"cooking":          {"cook", "meal", "food", "eat", "recipe", "kitchen", "breakfast", "lunch", "dinner"},
	"cleaning":         {"clean", "tidy", "organize", "mess", "room", "house", "laundry", "dishes"},
	"organization":     {"organize", "sort", "arrange", "pack", "prepare", "set up", "plan"},
}

var emotionalIndicators = map[string][]string{
	"excited":   {"excited", "fun", "awesome", "great", "love", "enjoy"},
	"stressed":  {"stressed", "overwhelmed", "difficult", "hard", "struggle"},
	"confident": {"confident", "ready", "prepared", "capable", "strong"},
	"uncertain": {"maybe", "might", "perhaps", "not sure", "confused"},
	"urgent":    {"quickly", "fast", "hurry", "urgent", "asap", "now", "immediately"},
}

// Emotion table iteration order must be deterministic: later entries win
// when multiple tones match.
var emotionOrder = []string{"excited", "stressed", "confident", "uncertain", "urgent"}

// Category iteration order keeps output stable across calls.
var categoryOrder = []string{
	"personal_care", "home_living", "time_management", "social",
	"community", "work_skills", "digital_literacy",
}

var skillOrder = []string{
	"personal_hygiene", "time_management", "cooking", "cleaning", "organization",
}

// Analyze inspects the intent text. Confidence scales with match count:
// five matches or more mean full confidence.
func (s *IntentService) Analyze(intent string, urgency model.UrgencyLevel) model.IntentAnalysis {
	lower := strings.ToLower(intent)

	var categories []string
	for _, category := range categoryOrder {
		if containsAny(lower, categoryKeywords[category]) {
			categories = append(categories, category)
		}
	}

	var keywords []string
	for _, skill := range skillOrder {
		if containsAny(lower, skillKeywords[skill]) {
			keywords = append(keywords, skill)
		}
	}

	tone := "neutral"
	for _, emotion := range emotionOrder {
		if containsAny(lower, emotionalIndicators[emotion]) {
			tone = emotion
		}
	}

	var concepts []string
	if strings.Contains(lower, "ready") || strings.Contains(lower, "prepare") {
		concepts = append(concepts, "preparation")
	}
	if strings.Contains(lower, "learn") || strings.Contains(lower, "practice") {
		concepts = append(concepts, "skill_development")
	}
	if strings.Contains(lower, "help") || strings.Contains(lower, "support") {
		concepts = append(concepts, "assistance_seeking")
	}

	totalMatches := len(keywords) + len(categories) + len(concepts)
	confidence := float64(totalMatches) / 5 * 100
	if confidence > 100 {
		confidence = 100
	}

	if len(keywords) == 0 {
		keywords = []string{"general"}
	}
	if len(categories) == 0 {
		categories = []string{"personal_care"}
	}

	return model.IntentAnalysis{
		Categories:       categories,
		Keywords:         keywords,
		TargetSkills:     keywords,
		SemanticConcepts: concepts,
		EmotionalState:   tone,
		Confidence:       confidence,
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
