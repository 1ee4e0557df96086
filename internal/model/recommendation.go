package model

import "time"

// FactorWeights hold the relative weight of every scoring factor. Zero
// values mean the factor does not contribute.
type FactorWeights struct {
	Intent            float64 `json:"intent"`
	Competency        float64 `json:"competency"`
	Motivational      float64 `json:"motivational"`
	Environmental     float64 `json:"environmental"`
	Time              float64 `json:"time"`
	Energy            float64 `json:"energy"`
	Historical        float64 `json:"historical"`
	Predictive        float64 `json:"predictive"`
	LearningStyle     float64 `json:"learningStyle"`
	Adaptability      float64 `json:"adaptability"`
	Support           float64 `json:"support"`
	Social            float64 `json:"social"`
	Novelty           float64 `json:"novelty"`
	Progression       float64 `json:"progression"`
	Risk              float64 `json:"risk"`
	ConfidenceBooster float64 `json:"confidenceBooster"`
}

// Sum adds all weights (used to normalize after contextual adjustment).
func (w FactorWeights) Sum() float64 {
	return w.Intent + w.Competency + w.Motivational + w.Environmental +
		w.Time + w.Energy + w.Historical + w.Predictive + w.LearningStyle +
		w.Adaptability + w.Support + w.Social + w.Novelty + w.Progression +
		w.Risk + w.ConfidenceBooster
}

// ScoreBreakdown holds the sixteen raw factor scores for one candidate,
// each in [0,100].
type ScoreBreakdown struct {
	Intent            float64 `json:"intent"`
	Competency        float64 `json:"competency"`
	Motivational      float64 `json:"motivational"`
	Environmental     float64 `json:"environmental"`
	Time              float64 `json:"time"`
	Energy            float64 `json:"energy"`
	Historical        float64 `json:"historical"`
	Predictive        float64 `json:"predictive"`
	LearningStyle     float64 `json:"learningStyle"`
	Adaptability      float64 `json:"adaptability"`
	Support           float64 `json:"support"`
	Social            float64 `json:"social"`
	Novelty           float64 `json:"novelty"`
	Progression       float64 `json:"progression"`
	Risk              float64 `json:"risk"`
	ConfidenceBooster float64 `json:"confidenceBooster"`
}

// ScoredQuest pairs a candidate with its final score and breakdown.
type ScoredQuest struct {
	Quest     *Quest         `json:"quest"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// IntentAnalysis is the keyword analysis of the user's stated intent.
type IntentAnalysis struct {
	Categories       []string `json:"categories"`
	Keywords         []string `json:"keywords"`
	TargetSkills     []string `json:"targetSkills"`
	SemanticConcepts []string `json:"semanticConcepts,omitempty"`
	EmotionalState   string   `json:"emotionalState,omitempty"`
	Confidence       float64  `json:"confidence"` // 0-100
}

// PersonalizedContent is the user-facing presentation layer of a
// recommendation.
type PersonalizedContent struct {
	MotivationalMessage   string      `json:"motivationalMessage"`
	CustomInstructions    []string    `json:"customInstructions,omitempty"`
	AdaptedSteps          []QuestStep `json:"adaptedSteps"`
	PreferredSupportStyle string      `json:"preferredSupportStyle,omitempty"`
}

// SelectionFactors explain which considerations drove the selection.
type SelectionFactors struct {
	PrimaryFactors    []string `json:"primaryFactors"`
	SecondaryFactors  []string `json:"secondaryFactors"`
	ConstraintFactors []string `json:"constraintFactors"`
}

// TimingPlan schedules the session.
type TimingPlan struct {
	BestTimeToStart   time.Time `json:"bestTimeToStart"`
	EstimatedDuration int       `json:"estimatedDuration"` // minutes
	SuggestedBreaks   []int     `json:"suggestedBreaks,omitempty"` // minute marks
}

// AdaptationTrigger names a condition to watch for mid-quest and the
// adaptation to offer when it fires.
type AdaptationTrigger struct {
	Condition           string            `json:"condition"`
	SuggestedAdaptation QuestModification `json:"suggestedAdaptation"`
}

// SelectionMetadata records how the recommendation was produced.
type SelectionMetadata struct {
	AlgorithmVersion string    `json:"algorithmVersion"`
	SelectionTime    time.Time `json:"selectionTime"`
	CandidateCount   int       `json:"candidateCount"`
	FilteringStages  []string  `json:"filteringStages"`
}

// Recommendation is the finalized output of one selection call.
// swagger:model
type Recommendation struct {
	Quest *Quest `json:"quest"`

	Adaptations         []QuestModification `json:"adaptations"`
	PersonalizedContent PersonalizedContent `json:"personalizedContent"`

	ConfidenceScore      float64 `json:"confidenceScore"`      // 0-100
	EstimatedSuccessRate float64 `json:"estimatedSuccessRate"` // 0-100
	DifficultyMatch      float64 `json:"difficultyMatch"`      // 0-100

	ReasoningExplanation string           `json:"reasoningExplanation"`
	SelectionFactors     SelectionFactors `json:"selectionFactors"`

	AlternativeOptions []*Quest `json:"alternativeOptions,omitempty"`
	FallbackOptions    []*Quest `json:"fallbackOptions,omitempty"`

	SupportRecommendations []string `json:"supportRecommendations,omitempty"`
	PreparationSteps       []string `json:"preparationSteps,omitempty"`
	SuccessTips            []string `json:"successTips,omitempty"`

	RiskFactors       []string `json:"riskFactors,omitempty"`
	RiskMitigation    []string `json:"riskMitigation,omitempty"`
	SuccessPredictors []string `json:"successPredictors,omitempty"`

	RecommendedTiming TimingPlan `json:"recommendedTiming"`

	CheckInPoints      []int               `json:"checkInPoints,omitempty"`
	AdaptationTriggers []AdaptationTrigger `json:"adaptationTriggers,omitempty"`

	SelectionMetadata SelectionMetadata `json:"selectionMetadata"`
}
