package model

import (
	"errors"
	"time"
)

type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// SessionContext carries session-scoped signals the scorer and weight
// adjuster react to.
type SessionContext struct {
	IsFirstQuestToday      bool       `json:"isFirstQuestToday"`
	ConsecutiveFailures    int        `json:"consecutiveFailures"`
	LastQuestCompletedTime *time.Time `json:"lastQuestCompletedTime,omitempty"`
	CurrentStreak          int        `json:"currentStreak"`
	EnergyTrend            string     `json:"energyTrend,omitempty"` // increasing|stable|decreasing
}

type PreferredDifficulty string

const (
	DifficultyEasier      PreferredDifficulty = "easier"
	DifficultyNormal      PreferredDifficulty = "normal"
	DifficultyChallenging PreferredDifficulty = "challenging"
)

// Preferences are per-request overrides.
type Preferences struct {
	PreferredDifficulty  PreferredDifficulty `json:"preferredDifficulty,omitempty"`
	AvoidCategories      []string            `json:"avoidCategories,omitempty"`
	PrioritizeCategories []string            `json:"prioritizeCategories,omitempty"`
	MaxAdaptations       int                 `json:"maxAdaptations,omitempty"`
	RequireAdultPresent  bool                `json:"requireAdultPresent,omitempty"`
}

// SelectionCriteria is the full input of one selection call.
type SelectionCriteria struct {
	UserIntent   string       `json:"userIntent"`
	UrgencyLevel UrgencyLevel `json:"urgencyLevel"`

	Profile DLSProfile `json:"dlsProfile"`

	CurrentContext       UserContext          `json:"currentContext"`
	EnvironmentalFactors EnvironmentalFactors `json:"environmentalFactors"`
	TimeConstraints      TimeConstraints      `json:"timeConstraints"`

	RecentHistory []QuestAttempt `json:"recentHistory,omitempty"`
	LearningModel *LearningModel `json:"userLearningModel,omitempty"`

	SessionContext SessionContext `json:"sessionContext"`
	Preferences    Preferences    `json:"preferences"`
}

// Validate rejects criteria the pipeline cannot act on.
func (c *SelectionCriteria) Validate() error {
	if c.UserIntent == "" {
		return errors.New("userIntent is required")
	}
	if c.TimeConstraints.AvailableMinutes <= 0 {
		return errors.New("timeConstraints.availableMinutes must be positive")
	}
	if c.Profile.BasicInfo.Age <= 0 {
		return errors.New("dlsProfile.basicInfo.age must be positive")
	}
	switch c.UrgencyLevel {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	case "":
		c.UrgencyLevel = UrgencyLow
	default:
		return errors.New("urgencyLevel must be low, medium or high")
	}
	return nil
}

// AvoidsCategory reports whether the user asked to skip this category.
func (c *SelectionCriteria) AvoidsCategory(cat QuestCategory) bool {
	for _, a := range c.Preferences.AvoidCategories {
		if a == string(cat) {
			return true
		}
	}
	return false
}

// PrioritizesCategory reports whether the user asked to favor this category.
func (c *SelectionCriteria) PrioritizesCategory(cat QuestCategory) bool {
	for _, p := range c.Preferences.PrioritizeCategories {
		if p == string(cat) {
			return true
		}
	}
	return false
}
