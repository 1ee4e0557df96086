package service

import (
	"context"
	"strings"
	"testing"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestService(catalog *repository.MemoryCatalog) *QuestService {
	sel := config.DefaultSelection()
	clock := testClock()
	intent := NewIntentService()
	return NewQuestService(
		catalog,
		intent,
		NewCandidateService(catalog, intent, sel),
		NewFilterService(),
		NewScoringService(sel),
		NewAdaptationService(sel),
		NewFinalizeService(catalog, sel, clock, testRand()),
		NewFallbackService(sel, clock),
		sel,
		clock,
	)
}

func TestSelectOptimalQuestEndToEnd(t *testing.T) {
	catalog := seedCatalog(eveningRoutineQuest(), packBagQuest(), hazardQuest())
	svc := newQuestService(catalog)

	rec, err := svc.SelectOptimalQuest(context.Background(), eveningCriteria())
	require.NoError(t, err)
	require.NotNil(t, rec.Quest)

	assert.Contains(t,
		[]model.QuestCategory{model.CategoryPersonalCare, model.CategoryTimeManagement},
		rec.Quest.Category)
	assert.LessOrEqual(t, rec.Quest.EstimatedDuration.Typical, 30)
	assert.NotEqual(t, "quest-stove-dinner", rec.Quest.ID,
		"high-hazard quest must never reach a 14-year-old")

	assert.Equal(t, util.AlgorithmVersion, rec.SelectionMetadata.AlgorithmVersion)
	assert.Equal(t, pipelineStages, rec.SelectionMetadata.FilteringStages)
	assert.GreaterOrEqual(t, rec.SelectionMetadata.CandidateCount, 2)
	assert.True(t, rec.SelectionMetadata.SelectionTime.Equal(testTime))

	assert.GreaterOrEqual(t, rec.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, rec.ConfidenceScore, 100.0)
	assert.NotEmpty(t, rec.ReasoningExplanation)
	assert.NotEmpty(t, rec.PersonalizedContent.MotivationalMessage)
}

func TestSelectOptimalQuestReturnsAdaptedCopy(t *testing.T) {
	hard := eveningRoutineQuest()
	hard.DifficultyLevel = 70 // forces a steps/simplify adaptation

	catalog := seedCatalog(hard)
	svc := newQuestService(catalog)

	rec, err := svc.SelectOptimalQuest(context.Background(), eveningCriteria())
	require.NoError(t, err)

	assert.Equal(t, 60, rec.Quest.DifficultyLevel, "simplify lowers the delivered copy")

	stored, err := catalog.GetByID(context.Background(), hard.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.DifficultyLevel, "catalog copy untouched")
}

func TestSelectOptimalQuestInvalidCriteria(t *testing.T) {
	svc := newQuestService(seedCatalog(eveningRoutineQuest()))

	criteria := eveningCriteria()
	criteria.UserIntent = ""

	_, err := svc.SelectOptimalQuest(context.Background(), criteria)
	assert.ErrorIs(t, err, util.ErrInvalidCriteria)
}

func TestFallbackLadderRecoversViaExpansion(t *testing.T) {
	catalog := seedCatalog(eveningRoutineQuest(), packBagQuest())
	svc := newQuestService(catalog)

	// Avoiding both matched categories empties the filtered pool; the first
	// relaxation drops the avoidances and the catalog serves again.
	criteria := eveningCriteria()
	criteria.Preferences.AvoidCategories = []string{"personal_care", "time_management"}

	rec, err := svc.SelectOptimalQuest(context.Background(), criteria)
	require.NoError(t, err)
	require.NotNil(t, rec.Quest)

	assert.Equal(t, pipelineStages, rec.SelectionMetadata.FilteringStages,
		"recovered selections still come from the full pipeline")
	assert.NotEqual(t, "emergency_fallback", rec.Quest.ID)
}

func TestEmptyCatalogStressedUserGetsEmergencyQuest(t *testing.T) {
	svc := newQuestService(seedCatalog())

	criteria := eveningCriteria()
	criteria.CurrentContext.StressLevel = model.StressHigh

	rec, err := svc.SelectOptimalQuest(context.Background(), criteria)
	require.NoError(t, err)

	assert.Equal(t, "emergency_fallback", rec.Quest.ID)
	assert.Equal(t, 95.0, rec.ConfidenceScore)
	assert.Equal(t, []string{"emergency_fallback"}, rec.SelectionMetadata.FilteringStages)
}

func TestCalmUserWithNothingWorkableGetsEmergencyQuest(t *testing.T) {
	svc := newQuestService(seedCatalog())

	// Two minutes and every category excluded: after both relaxations fail
	// there is nothing an adaptive quest could be built from.
	criteria := eveningCriteria()
	criteria.TimeConstraints.AvailableMinutes = 2
	for _, c := range model.AllCategories() {
		criteria.Preferences.AvoidCategories = append(criteria.Preferences.AvoidCategories, string(c))
	}

	rec, err := svc.SelectOptimalQuest(context.Background(), criteria)
	require.NoError(t, err)

	assert.Equal(t, "emergency_fallback", rec.Quest.ID)
	assert.Equal(t, 95.0, rec.ConfidenceScore)
	assert.Empty(t, rec.Quest.RequiredTools)
	assert.Equal(t, 5, rec.Quest.EstimatedDuration.Typical)
	assert.Equal(t, []string{"emergency_fallback"}, rec.SelectionMetadata.FilteringStages)
}

func TestEmptyCatalogCalmUserGetsAdaptiveQuest(t *testing.T) {
	svc := newQuestService(seedCatalog())

	rec, err := svc.SelectOptimalQuest(context.Background(), eveningCriteria())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.Quest.ID, "adaptive_"))
	assert.Equal(t, 70.0, rec.ConfidenceScore)
	assert.Equal(t, 30, rec.Quest.EstimatedDuration.Typical)
	assert.Equal(t, []string{"adaptive_creation"}, rec.SelectionMetadata.FilteringStages)
}

func TestHydrateFillsLearningModelAndHistory(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)

	attempt := &model.QuestAttempt{
		UUIDBase:  model.UUIDBase{ID: model.GenerateUUID()},
		QuestID:   quest.ID,
		UserID:    "user-1",
		StartTime: testTime,
		Outcome:   model.OutcomeCompleted,
	}
	require.NoError(t, catalog.RecordAttempt(context.Background(), attempt))

	svc := newQuestService(catalog)
	criteria := eveningCriteria()
	svc.hydrate(context.Background(), criteria)

	require.NotNil(t, criteria.LearningModel)
	assert.Equal(t, "user-1", criteria.LearningModel.UserID)
	require.Len(t, criteria.RecentHistory, 1)
	assert.Equal(t, quest.ID, criteria.RecentHistory[0].QuestID)
}

func TestHydrateKeepsCallerSuppliedState(t *testing.T) {
	svc := newQuestService(seedCatalog())

	supplied := model.NewLearningModel("user-1")
	supplied.ConfidenceLevel = 0.9

	criteria := eveningCriteria()
	criteria.LearningModel = supplied
	svc.hydrate(context.Background(), criteria)

	assert.Same(t, supplied, criteria.LearningModel)
}
