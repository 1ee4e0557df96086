package repository

import (
	"context"

	"skilljumper_backend/internal/model"
)

// SearchFilter narrows a catalog search. Zero values mean "no constraint".
type SearchFilter struct {
	Categories    []model.QuestCategory
	Skills        []string
	Tags          []string
	MinDifficulty int
	MaxDifficulty int
	MaxDuration   int // typical minutes
	Location      model.Location
	MaxResults    int
}

// QuestCatalog is the persistence contract the selection pipeline and the
// feedback learner depend on. Implementations must be safe for concurrent
// use.
type QuestCatalog interface {
	GetByID(ctx context.Context, id string) (*model.Quest, error)
	GetByCategory(ctx context.Context, category model.QuestCategory) ([]*model.Quest, error)
	Search(ctx context.Context, filter SearchFilter) ([]*model.Quest, error)

	GetLearningModel(ctx context.Context, userID string) (*model.LearningModel, error)
	SaveLearningModel(ctx context.Context, m *model.LearningModel) error

	RecordAttempt(ctx context.Context, attempt *model.QuestAttempt) error
	GetAttemptHistory(ctx context.Context, userID string, limit int) ([]*model.QuestAttempt, error)

	UpdateQuestStats(ctx context.Context, questID string, successRate, averageRating float64) error
	UpdateCompletionPatterns(ctx context.Context, questID string, patterns model.CompletionPatterns) error
}
