package service

import (
	"context"
	"testing"
	"time"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simplifySteps() []model.QuestModification {
	return []model.QuestModification{{
		Target:       "steps",
		Action:       "simplify",
		Content:      "Break complex steps into smaller sub-steps",
		Reason:       "Reduce cognitive load for current skill level",
		ImpactLevel:  model.ImpactModerate,
		PreserveCore: true,
	}}
}

func TestApplyAdaptationsClonesAndLowersDifficulty(t *testing.T) {
	original := eveningRoutineQuest()
	original.DifficultyLevel = 40

	adapted := ApplyAdaptations(original, simplifySteps())

	assert.NotSame(t, original, adapted)
	assert.Equal(t, 30, adapted.DifficultyLevel)
	assert.Equal(t, 40, original.DifficultyLevel, "catalog quest must not change")
}

func TestApplyAdaptationsIsNotIdempotent(t *testing.T) {
	original := eveningRoutineQuest()
	original.DifficultyLevel = 40

	once := ApplyAdaptations(original, simplifySteps())
	twice := ApplyAdaptations(once, simplifySteps())

	assert.Equal(t, 30, once.DifficultyLevel)
	assert.Equal(t, 20, twice.DifficultyLevel, "each application lowers again")
}

func TestApplyAdaptationsDifficultyFloor(t *testing.T) {
	original := eveningRoutineQuest()
	original.DifficultyLevel = 5

	adapted := ApplyAdaptations(original, simplifySteps())
	assert.Equal(t, 1, adapted.DifficultyLevel)
}

func TestDifficultyMatchPeaksAtOptimalGap(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())
	criteria := eveningCriteria() // overall level 45

	q := eveningRoutineQuest()
	q.DifficultyLevel = 60 // gap 15, exactly optimal
	assert.InDelta(t, 100.0, svc.DifficultyMatch(q, criteria), 1e-9)

	q.DifficultyLevel = 45 // gap 0
	assert.InDelta(t, 55.0, svc.DifficultyMatch(q, criteria), 1e-9)

	q.DifficultyLevel = 100 // gap 55, way past optimal
	assert.InDelta(t, 0.0, svc.DifficultyMatch(q, criteria), 1e-9)
}

func TestConfidenceScoreAdjustments(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())

	criteria := eveningCriteria()
	assert.InDelta(t, 80.0, svc.confidenceScore(criteria, nil, 80), 1e-9)

	criteria.LearningModel = model.NewLearningModel("user-1")
	criteria.LearningModel.ConfidenceLevel = 0.8
	assert.InDelta(t, 90.0, svc.confidenceScore(criteria, nil, 80), 1e-9)

	four := append(simplifySteps(), simplifySteps()...)
	four = append(four, simplifySteps()...)
	four = append(four, simplifySteps()...)
	assert.InDelta(t, 85.0, svc.confidenceScore(criteria, four, 80), 1e-9)

	assert.InDelta(t, 100.0, svc.confidenceScore(criteria, nil, 95), 1e-9, "clamped at 100")
}

func TestPredictSuccessRate(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())

	q := eveningRoutineQuest()
	q.SuccessRate = 0.7

	criteria := eveningCriteria() // calm
	assert.InDelta(t, 85.0, svc.predictSuccessRate(q, simplifySteps(), criteria), 1e-9)

	criteria.CurrentContext.StressLevel = model.StressModerate
	assert.InDelta(t, 80.0, svc.predictSuccessRate(q, simplifySteps(), criteria), 1e-9)
	assert.InDelta(t, 70.0, svc.predictSuccessRate(q, nil, criteria), 1e-9)
}

func TestSimplifyTextSwapsHardWords(t *testing.T) {
	in := "This is difficult, finish it immediately and completely."
	out := simplifyText(in)

	assert.NotContains(t, out, "difficult")
	assert.NotContains(t, out, "immediately")
	assert.Contains(t, out, "easy")
	assert.Contains(t, out, "right away")
	assert.Contains(t, out, "all the way")
}

func TestTimingPlan(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())

	q := eveningRoutineQuest()
	q.EstimatedDuration.Typical = 40

	criteria := eveningCriteria()
	plan := svc.timing(q, criteria)
	assert.True(t, plan.BestTimeToStart.Equal(testTime))
	assert.Equal(t, 40, plan.EstimatedDuration)
	assert.Equal(t, []int{10, 25}, plan.SuggestedBreaks)

	criteria.CurrentContext.EnergyLevel = model.EnergyVeryLow
	plan = svc.timing(q, criteria)
	assert.True(t, plan.BestTimeToStart.Equal(testTime.Add(30*time.Minute)), "rest before starting")

	q.EstimatedDuration.Typical = 12
	plan = svc.timing(q, criteria)
	assert.Empty(t, plan.SuggestedBreaks, "short quests need no breaks")
}

func TestCheckInPoints(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())

	q := eveningRoutineQuest()
	q.Steps = questSteps(8)
	assert.Equal(t, []int{2, 4, 6}, svc.checkInPoints(q, nil))

	q.Steps = questSteps(4)
	assert.Equal(t, []int{2}, svc.checkInPoints(q, nil))

	q.Steps = questSteps(1)
	assert.Empty(t, svc.checkInPoints(q, nil), "points must fall strictly inside the quest")
}

func TestPreferredSupportStyle(t *testing.T) {
	visual := &model.DLSProfile{
		BasicInfo: model.BasicInfo{CommunicationPreferences: []string{"visual"}},
	}
	assert.Equal(t, "visual_step_by_step", preferredSupportStyle(visual))

	auditory := &model.DLSProfile{
		CognitiveProfile: model.CognitiveProfile{PreferredLearningStyle: []string{"auditory"}},
	}
	assert.Equal(t, "verbal_encouragement", preferredSupportStyle(auditory))

	assert.Equal(t, "gentle_prompting", preferredSupportStyle(&model.DLSProfile{}))
}

func TestFinalizeBuildsFullRecommendation(t *testing.T) {
	easier := eveningRoutineQuest()
	easier.ID = "quest-easier"
	easier.DifficultyLevel = 25
	easier.EstimatedDuration = model.QuestDuration{Minimum: 5, Typical: 10, Maximum: 15}

	selected := eveningRoutineQuest()
	catalog := seedCatalog(selected, easier)

	svc := NewFinalizeService(catalog, config.DefaultSelection(), testClock(), testRand())
	criteria := eveningCriteria()
	analysis := NewIntentService().Analyze(criteria.UserIntent, criteria.UrgencyLevel)

	alternatives := []*model.Quest{packBagQuest()}
	rec, err := svc.Finalize(context.Background(),
		model.ScoredQuest{Quest: selected, Score: 82},
		simplifySteps(), criteria, analysis, alternatives)
	require.NoError(t, err)

	assert.NotSame(t, selected, rec.Quest, "recommendation carries an adapted copy")
	assert.Equal(t, 30, rec.Quest.DifficultyLevel)
	assert.Len(t, rec.Adaptations, 1)
	assert.Equal(t, alternatives, rec.AlternativeOptions)

	require.Len(t, rec.FallbackOptions, 1)
	assert.Equal(t, "quest-easier", rec.FallbackOptions[0].ID)

	assert.NotEmpty(t, rec.PersonalizedContent.MotivationalMessage)
	assert.NotEmpty(t, rec.PersonalizedContent.CustomInstructions)
	assert.Len(t, rec.PersonalizedContent.AdaptedSteps, len(selected.Steps))
	assert.NotEmpty(t, rec.ReasoningExplanation)
	assert.NotEmpty(t, rec.PreparationSteps)
	assert.NotEmpty(t, rec.SuccessTips)
	assert.NotEmpty(t, rec.AdaptationTriggers)

	assert.GreaterOrEqual(t, rec.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, rec.ConfidenceScore, 100.0)
	assert.GreaterOrEqual(t, rec.EstimatedSuccessRate, 0.0)
	assert.LessOrEqual(t, rec.EstimatedSuccessRate, 100.0)
}

func TestFinalizeSkipsFallbacksForVeryEasyQuests(t *testing.T) {
	selected := eveningRoutineQuest()
	selected.DifficultyLevel = 8

	svc := NewFinalizeService(seedCatalog(selected), config.DefaultSelection(), testClock(), testRand())
	criteria := eveningCriteria()
	analysis := NewIntentService().Analyze(criteria.UserIntent, criteria.UrgencyLevel)

	rec, err := svc.Finalize(context.Background(),
		model.ScoredQuest{Quest: selected, Score: 75}, nil, criteria, analysis, nil)
	require.NoError(t, err)
	assert.Empty(t, rec.FallbackOptions)
}

func TestMotivationalMessageFollowsTone(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())
	criteria := eveningCriteria()
	q := eveningRoutineQuest()

	stressed := svc.motivationalMessage(q, criteria, model.IntentAnalysis{EmotionalState: "stressed"})
	assert.Contains(t, stressed, "deep breath")

	excited := svc.motivationalMessage(q, criteria, model.IntentAnalysis{EmotionalState: "excited"})
	assert.Contains(t, excited, "enthusiasm")

	neutral := svc.motivationalMessage(q, criteria, model.IntentAnalysis{EmotionalState: "neutral"})
	assert.NotEmpty(t, neutral)
}

func TestAdaptationTriggersTrackStress(t *testing.T) {
	svc := NewFinalizeService(seedCatalog(), config.DefaultSelection(), testClock(), testRand())

	calm := eveningCriteria()
	triggers := svc.adaptationTriggers(calm)
	assert.Len(t, triggers, 2, "struggling and energy triggers always present")

	tense := eveningCriteria()
	tense.CurrentContext.StressLevel = model.StressModerate
	triggers = svc.adaptationTriggers(tense)
	assert.Len(t, triggers, 3)

	found := false
	for _, tr := range triggers {
		if tr.Condition == "stress_level_increases" {
			found = true
		}
	}
	assert.True(t, found)
}
