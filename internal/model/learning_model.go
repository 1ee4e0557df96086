package model

import "time"

// LearningPatterns are the per-user tuning values the feedback learner
// maintains.
type LearningPatterns struct {
	OptimalDifficulty    float64  `json:"optimalDifficulty"` // 1-100
	PreferredProgression string   `json:"preferredProgression,omitempty"` // slow|steady|rapid|burst
	MotivationalFactors  []string `json:"motivationalFactors,omitempty"`
	AvoidanceFactors     []string `json:"avoidanceFactors,omitempty"`
	PeakPerformanceTimes []string `json:"peakPerformanceTimes,omitempty"`
	OptimalSessionLength int      `json:"optimalSessionLength,omitempty"`
}

// CategoryPerformance tracks observed outcomes in one quest category.
type CategoryPerformance struct {
	AverageSuccess       float64     `json:"averageSuccess"` // 0-1
	PreferredTimeOfDay   []TimeOfDay `json:"preferredTimeOfDay,omitempty"`
	OptimalSessionLength int         `json:"optimalSessionLength,omitempty"`
	EffectiveSupports    []string    `json:"effectiveSupports,omitempty"`
	CommonStruggles      []string    `json:"commonStruggles,omitempty"`
	ImprovementTrend     string      `json:"improvementTrend,omitempty"` // improving|stable|declining
}

// AdaptationEffect tracks how well one adaptation family (keyed
// target_action) works for this user.
type AdaptationEffect struct {
	SuccessRate      float64  `json:"successRate"` // 0-1
	UserSatisfaction float64  `json:"userSatisfaction"`
	UsageFrequency   int      `json:"usageFrequency"`
	ContextFactors   []string `json:"contextFactors,omitempty"`
}

type SuccessPredictors struct {
	StrongPredictors   []string `json:"strongPredictors,omitempty"`
	ModeratePredictors []string `json:"moderatePredictors,omitempty"`
	RiskFactors        []string `json:"riskFactors,omitempty"`
}

type PersonalizationInsights struct {
	PreferredCommunicationStyle string   `json:"preferredCommunicationStyle,omitempty"`
	OptimalChallengeLevel       float64  `json:"optimalChallengeLevel,omitempty"`
	EffectiveFeedbackTiming     string   `json:"effectiveFeedbackTiming,omitempty"`
	MotivationalTriggers        []string `json:"motivationalTriggers,omitempty"`
	StressIndicators            []string `json:"stressIndicators,omitempty"`
}

// LearningModel is the accumulated per-user learning state. One row per
// user; the feedback learner is its only writer.
// swagger:model
type LearningModel struct {
	UUIDBase
	UserID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`

	LearningPatterns        LearningPatterns               `gorm:"type:json;serializer:json" json:"learningPatterns"`
	HistoricalPerformance   map[string]CategoryPerformance `gorm:"type:json;serializer:json" json:"historicalPerformance"`
	AdaptationEffectiveness map[string]AdaptationEffect    `gorm:"type:json;serializer:json" json:"adaptationEffectiveness"`
	SuccessPredictors       SuccessPredictors              `gorm:"type:json;serializer:json" json:"successPredictors"`
	PersonalizationInsights PersonalizationInsights        `gorm:"type:json;serializer:json" json:"personalizationInsights"`

	LastUpdated     time.Time `json:"lastUpdated"`
	ConfidenceLevel float64   `json:"confidenceLevel"` // 0-1, how much data backs the model
}

// NewLearningModel returns the cold-start model for a user who has no
// recorded attempts yet.
func NewLearningModel(userID string) *LearningModel {
	return &LearningModel{
		UserID: userID,
		LearningPatterns: LearningPatterns{
			OptimalDifficulty:    50,
			PreferredProgression: "steady",
			OptimalSessionLength: 20,
		},
		HistoricalPerformance:   map[string]CategoryPerformance{},
		AdaptationEffectiveness: map[string]AdaptationEffect{},
		ConfidenceLevel:         0,
	}
}

// CategoryFor returns the stored performance for a category, with the
// 0.5 neutral default when the category has never been attempted.
func (m *LearningModel) CategoryFor(cat QuestCategory) CategoryPerformance {
	if perf, ok := m.HistoricalPerformance[string(cat)]; ok {
		return perf
	}
	return CategoryPerformance{AverageSuccess: 0.5}
}
