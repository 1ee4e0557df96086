package model

import "time"

type AttemptOutcome string

const (
	OutcomeCompleted          AttemptOutcome = "completed"
	OutcomePartiallyCompleted AttemptOutcome = "partially_completed"
	OutcomeAbandoned          AttemptOutcome = "abandoned"
	OutcomePostponed          AttemptOutcome = "postponed"
	OutcomeFailed             AttemptOutcome = "failed"
)

// CompletionPercentage is the nominal completion credit for an outcome.
func (o AttemptOutcome) CompletionPercentage() float64 {
	switch o {
	case OutcomeCompleted:
		return 100
	case OutcomePartiallyCompleted:
		return 60
	case OutcomeAbandoned:
		return 20
	case OutcomePostponed:
		return 10
	case OutcomeFailed:
		return 5
	}
	return 0
}

// UserFeedback is the 1-5 self report attached to an attempt.
type UserFeedback struct {
	Difficulty        int    `json:"difficulty"` // 1-5
	Enjoyment         int    `json:"enjoyment"`  // 1-5
	Clarity           int    `json:"clarity"`    // 1-5
	Helpfulness       int    `json:"helpfulness"` // 1-5
	WouldDoAgain      bool   `json:"wouldDoAgain"`
	FreeTextFeedback  string `json:"freeTextFeedback,omitempty"`
	RecommendToOthers bool   `json:"recommendToOthers,omitempty"`
}

type EvidenceItem struct {
	Type      string    `json:"type"` // photo|video|audio|text
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// QuestAttempt is one recorded try at a quest, with outcome, feedback and
// the context it happened in. Attempts are append-only.
// swagger:model
type QuestAttempt struct {
	UUIDBase
	QuestID string `gorm:"type:varchar(36);index;not null" json:"questId"`
	UserID  string `gorm:"type:varchar(36);index;not null" json:"userId"`

	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	PausedDuration int        `json:"pausedDuration"` // minutes

	Outcome              AttemptOutcome `gorm:"type:varchar(24);index" json:"outcome"`
	CompletionPercentage float64        `json:"completionPercentage"`
	StepsCompleted       []string       `gorm:"type:json;serializer:json" json:"stepsCompleted,omitempty"`

	UserFeedback UserFeedback `gorm:"type:json;serializer:json" json:"userFeedback"`

	ContextAttempt           UserContext          `gorm:"type:json;serializer:json" json:"contextAttempt"`
	EnvironmentDuringAttempt EnvironmentalFactors `gorm:"type:json;serializer:json" json:"environmentDuringAttempt"`

	AdaptationsUsed []QuestModification `gorm:"type:json;serializer:json" json:"adaptationsUsed,omitempty"`
	SupportUsed     SupportAvailability `gorm:"type:json;serializer:json" json:"supportUsed"`
	HelpRequested   int                 `json:"helpRequested"`

	TimeSpent           int      `json:"timeSpent"` // minutes
	BarriersEncountered []string `gorm:"type:json;serializer:json" json:"barriersEncountered,omitempty"`
	SuccessFactors      []string `gorm:"type:json;serializer:json" json:"successFactors,omitempty"`
	EmotionalJourney    []string `gorm:"type:json;serializer:json" json:"emotionalJourney,omitempty"`

	EvidenceSubmitted []EvidenceItem `gorm:"type:json;serializer:json" json:"evidenceSubmitted,omitempty"`
}

// Succeeded reports whether the attempt counts as a success for rate blends.
func (a *QuestAttempt) Succeeded() bool {
	return a.Outcome == OutcomeCompleted
}
