package service

import (
	"context"
	"testing"
	"time"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedFeedback(questID string) *FeedbackInput {
	return &FeedbackInput{
		AttemptID:      model.GenerateUUID(),
		QuestID:        questID,
		UserID:         "user-1",
		Outcome:        model.OutcomeCompleted,
		ElapsedMinutes: 25,
		Feedback: model.UserFeedback{
			Difficulty:   2,
			Enjoyment:    5,
			Clarity:      4,
			Helpfulness:  4,
			WouldDoAgain: true,
		},
		Context: model.UserContext{
			CurrentLocation:  model.LocationHome,
			TimeOfDay:        model.TimeEvening,
			EnergyLevel:      model.EnergyModerate,
			StressLevel:      model.StressCalm,
			SupportAvailable: model.SupportAvailability{Type: model.SupportIndependent},
		},
	}
}

func TestProcessFeedbackRecordsAttempt(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	input := completedFeedback(quest.ID)
	attempt, err := svc.ProcessFeedback(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, quest.ID, attempt.QuestID)
	assert.Equal(t, "user-1", attempt.UserID)
	assert.Equal(t, 100.0, attempt.CompletionPercentage)
	assert.Equal(t, 25, attempt.TimeSpent)
	assert.True(t, attempt.StartTime.Equal(testTime.Add(-25*time.Minute)))
	require.NotNil(t, attempt.EndTime)
	assert.True(t, attempt.EndTime.Equal(testTime))

	history, err := catalog.GetAttemptHistory(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestProcessFeedbackBlendsQuestSuccessRate(t *testing.T) {
	quest := eveningRoutineQuest() // success rate 0.75
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	_, err := svc.ProcessFeedback(context.Background(), completedFeedback(quest.ID))
	require.NoError(t, err)

	updated, err := catalog.GetByID(context.Background(), quest.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.75*0.95+0.05, updated.SuccessRate, 1e-9)

	failed := completedFeedback(quest.ID)
	failed.AttemptID = model.GenerateUUID()
	failed.Outcome = model.OutcomeFailed
	_, err = svc.ProcessFeedback(context.Background(), failed)
	require.NoError(t, err)

	updated, err = catalog.GetByID(context.Background(), quest.ID)
	require.NoError(t, err)
	assert.InDelta(t, (0.75*0.95+0.05)*0.95, updated.SuccessRate, 1e-9)
}

func TestProcessFeedbackSeedsCompletionPatterns(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	_, err := svc.ProcessFeedback(context.Background(), completedFeedback(quest.ID))
	require.NoError(t, err)

	updated, err := catalog.GetByID(context.Background(), quest.ID)
	require.NoError(t, err)

	// First observation of a context value starts at the neutral prior.
	assert.Equal(t, 0.5, updated.CompletionPatterns.TimeOfDay["evening"])
	assert.Equal(t, 0.5, updated.CompletionPatterns.EnergyLevel["moderate"])
	assert.Equal(t, 0.5, updated.CompletionPatterns.SupportLevel["independent"])

	second := completedFeedback(quest.ID)
	second.AttemptID = model.GenerateUUID()
	_, err = svc.ProcessFeedback(context.Background(), second)
	require.NoError(t, err)

	updated, err = catalog.GetByID(context.Background(), quest.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*0.9+0.1, updated.CompletionPatterns.TimeOfDay["evening"], 1e-9)
}

func TestProcessFeedbackNudgesOptimalDifficulty(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	// Completed and found easy: target moves up.
	_, err := svc.ProcessFeedback(context.Background(), completedFeedback(quest.ID))
	require.NoError(t, err)

	lm, err := catalog.GetLearningModel(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 52.0, lm.LearningPatterns.OptimalDifficulty)

	// Abandoned and found hard: target drops faster than it rises.
	abandoned := completedFeedback(quest.ID)
	abandoned.AttemptID = model.GenerateUUID()
	abandoned.Outcome = model.OutcomeAbandoned
	abandoned.Feedback.Difficulty = 5
	_, err = svc.ProcessFeedback(context.Background(), abandoned)
	require.NoError(t, err)

	lm, err = catalog.GetLearningModel(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 47.0, lm.LearningPatterns.OptimalDifficulty)
}

func TestProcessFeedbackLearnsPreferences(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	input := completedFeedback(quest.ID)
	input.Barriers = []string{"got distracted"}
	_, err := svc.ProcessFeedback(context.Background(), input)
	require.NoError(t, err)

	lm, err := catalog.GetLearningModel(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Subset(t, lm.LearningPatterns.MotivationalFactors, quest.Tags,
		"high enjoyment adopts the quest's tags")
	assert.Contains(t, lm.LearningPatterns.PeakPerformanceTimes, "evening")

	perf := lm.HistoricalPerformance["personal_care"]
	assert.InDelta(t, 0.2, perf.AverageSuccess, 1e-9, "one success blended into an empty record")
	assert.Contains(t, perf.PreferredTimeOfDay, model.TimeEvening)
	assert.Contains(t, perf.CommonStruggles, "got distracted")

	assert.InDelta(t, 0.05, lm.ConfidenceLevel, 1e-9)
}

func TestProcessFeedbackTracksAdaptationEffectiveness(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	input := completedFeedback(quest.ID)
	input.Feedback.Difficulty = 5 // outside the sweet spot
	input.Feedback.Clarity = 3
	input.AdaptationsUsed = simplifySteps()
	_, err := svc.ProcessFeedback(context.Background(), input)
	require.NoError(t, err)

	lm, err := catalog.GetLearningModel(context.Background(), "user-1")
	require.NoError(t, err)

	eff, ok := lm.AdaptationEffectiveness["steps_simplify"]
	require.True(t, ok)
	assert.InDelta(t, 0.8, eff.SuccessRate, 1e-9) // base 0.5 + completed 0.3
	assert.InDelta(t, 0.8, eff.UserSatisfaction, 1e-9)
	assert.Equal(t, 1, eff.UsageFrequency)

	second := completedFeedback(quest.ID)
	second.AttemptID = model.GenerateUUID()
	second.Feedback.Difficulty = 5
	second.Feedback.Clarity = 3
	second.AdaptationsUsed = simplifySteps()
	_, err = svc.ProcessFeedback(context.Background(), second)
	require.NoError(t, err)

	lm, err = catalog.GetLearningModel(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, lm.AdaptationEffectiveness["steps_simplify"].UsageFrequency)
}

func TestProcessFeedbackIsAtMostOnce(t *testing.T) {
	quest := eveningRoutineQuest()
	catalog := seedCatalog(quest)
	svc := NewFeedbackService(catalog, config.DefaultSelection(), testClock())

	input := completedFeedback(quest.ID)
	_, err := svc.ProcessFeedback(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.ProcessFeedback(context.Background(), input)
	assert.ErrorIs(t, err, util.ErrDuplicateAttempt)

	lm, err := catalog.GetLearningModel(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 52.0, lm.LearningPatterns.OptimalDifficulty, "learned state changed once")
}

func TestProcessFeedbackUnknownQuest(t *testing.T) {
	svc := NewFeedbackService(seedCatalog(), config.DefaultSelection(), testClock())

	_, err := svc.ProcessFeedback(context.Background(), completedFeedback("nope"))
	assert.ErrorIs(t, err, util.ErrQuestNotFound)
}

func TestAdaptationAttemptEffectivenessClamps(t *testing.T) {
	best := &model.QuestAttempt{
		Outcome:      model.OutcomeCompleted,
		UserFeedback: model.UserFeedback{Difficulty: 3, Clarity: 5},
	}
	assert.Equal(t, 1.0, AdaptationAttemptEffectiveness(best))

	worst := &model.QuestAttempt{
		Outcome:      model.OutcomeAbandoned,
		UserFeedback: model.UserFeedback{Difficulty: 5, Clarity: 1},
	}
	assert.Equal(t, 0.5, AdaptationAttemptEffectiveness(worst))
}

func TestBlendRate(t *testing.T) {
	assert.InDelta(t, 0.7625, BlendRate(0.75, true, 0.95), 1e-9)
	assert.InDelta(t, 0.7125, BlendRate(0.75, false, 0.95), 1e-9)
}

func TestInferEnvironmentFromContext(t *testing.T) {
	tests := []struct {
		sensory string
		noise   string
	}{
		{"calm", "quiet"},
		{"quiet", "quiet"},
		{"busy", "noisy"},
		{"loud", "noisy"},
		{"overwhelming", "overwhelming"},
		{"", "moderate"},
	}
	for _, tt := range tests {
		env := inferEnvironmentFromContext(model.UserContext{
			CurrentLocation:    model.LocationHome,
			SensoryEnvironment: tt.sensory,
		})
		assert.Equal(t, tt.noise, env.NoiseLevel, "sensory: %q", tt.sensory)
		assert.Equal(t, model.LocationHome, env.Location)
		assert.Equal(t, "high", env.SafetyLevel)
	}
}
