package service

import (
	"context"
	"testing"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicWeightsReactToContext(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	base := BaseWeights()

	urgent := eveningCriteria()
	urgent.UrgencyLevel = model.UrgencyHigh
	w := svc.DynamicWeights(urgent)
	assert.InDelta(t, base.Time*2, w.Time, 1e-9)
	assert.InDelta(t, base.Intent*1.5, w.Intent, 1e-9)
	assert.Less(t, w.Motivational, base.Motivational)

	stressed := eveningCriteria()
	stressed.CurrentContext.StressLevel = model.StressOverwhelmed
	w = svc.DynamicWeights(stressed)
	assert.InDelta(t, base.Risk*2, w.Risk, 1e-9)
	assert.InDelta(t, base.ConfidenceBooster*1.5, w.ConfidenceBooster, 1e-9)

	failing := eveningCriteria()
	failing.SessionContext.ConsecutiveFailures = 3
	w = svc.DynamicWeights(failing)
	assert.InDelta(t, base.ConfidenceBooster*2, w.ConfidenceBooster, 1e-9)
	assert.InDelta(t, base.Competency*0.6, w.Competency, 1e-9)

	calm := eveningCriteria()
	assert.Equal(t, base, svc.DynamicWeights(calm))
}

func TestCombineNormalizesAndBoosts(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	w := BaseWeights()

	flat := model.ScoreBreakdown{
		Intent: 50, Competency: 50, Motivational: 50, Environmental: 50,
		Time: 50, Energy: 50, Historical: 50, Predictive: 50,
		LearningStyle: 50, Adaptability: 50, Support: 50, Social: 50,
		Novelty: 50, Progression: 50, Risk: 50, ConfidenceBooster: 50,
	}

	q := eveningRoutineQuest()
	q.AverageRating = 3.5
	criteria := eveningCriteria()

	assert.InDelta(t, 50.0, svc.Combine(q, flat, w, criteria), 1e-9)

	criteria.Preferences.PrioritizeCategories = []string{"personal_care"}
	assert.InDelta(t, 57.5, svc.Combine(q, flat, w, criteria), 1e-9)

	q.AverageRating = 4.5
	assert.InDelta(t, 57.5*1.05, svc.Combine(q, flat, w, criteria), 1e-9)
}

func TestEnergyScoreAlignment(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	criteria := eveningCriteria() // moderate = 50

	q := eveningRoutineQuest()
	q.EnergyRequirement = 50
	assert.InDelta(t, 100.0, svc.energyScore(q, criteria), 1e-9)

	q.EnergyRequirement = 90
	assert.InDelta(t, 20.0, svc.energyScore(q, criteria), 1e-9)
}

func TestCompetencyScorePeaksAtOptimalGap(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	criteria := eveningCriteria() // personal_hygiene at level 50

	q := eveningRoutineQuest()
	q.SkillRequirements = map[string]model.SkillRequirement{
		"personal_hygiene": {MinimumLevel: 70, Importance: model.ImportanceCritical},
	}
	// Gap 20 is exactly the optimal challenge gap.
	assert.InDelta(t, 100.0, svc.competencyScore(q, criteria), 1e-9)

	q.SkillRequirements["personal_hygiene"] = model.SkillRequirement{
		MinimumLevel: 60, Importance: model.ImportanceCritical,
	}
	assert.InDelta(t, 80.0, svc.competencyScore(q, criteria), 1e-9)

	q.SkillRequirements = nil
	assert.Equal(t, 50.0, svc.competencyScore(q, criteria), "no requirements is neutral")
}

func TestNoveltyScorePenalizesRepeats(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	q := eveningRoutineQuest()

	criteria := eveningCriteria()
	assert.Equal(t, 80.0, svc.noveltyScore(q, criteria))

	criteria.RecentHistory = []model.QuestAttempt{{QuestID: q.ID}}
	assert.Equal(t, 30.0, svc.noveltyScore(q, criteria))
}

func TestPredictiveScoreUsesLearnedPerformance(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	q := eveningRoutineQuest()

	criteria := eveningCriteria()
	assert.Equal(t, 60.0, svc.predictiveScore(q, criteria), "no learning model is neutral")

	criteria.LearningModel = model.NewLearningModel("user-1")
	criteria.LearningModel.HistoricalPerformance["personal_care"] = model.CategoryPerformance{AverageSuccess: 0.9}
	assert.InDelta(t, 90.0, svc.predictiveScore(q, criteria), 1e-9)
}

func TestScoreAndRankOrdersDescending(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())
	criteria := eveningCriteria()
	analysis := NewIntentService().Analyze(criteria.UserIntent, criteria.UrgencyLevel)

	ranked, err := svc.ScoreAndRank(context.Background(),
		[]*model.Quest{eveningRoutineQuest(), packBagQuest()}, criteria, analysis)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	for _, sq := range ranked {
		assert.GreaterOrEqual(t, sq.Score, 0.0)
		assert.LessOrEqual(t, sq.Score, 100.0)
	}
}

func TestDiversifyPrefersUnseenCategories(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())

	mk := func(id string, cat model.QuestCategory, score float64) model.ScoredQuest {
		q := eveningRoutineQuest()
		q.ID = id
		q.Category = cat
		return model.ScoredQuest{Quest: q, Score: score}
	}

	ranked := []model.ScoredQuest{
		mk("a", model.CategoryPersonalCare, 90),
		mk("b", model.CategoryPersonalCare, 85),
		mk("c", model.CategoryPersonalCare, 80),
		mk("d", model.CategoryTimeManagement, 74),
		mk("e", model.CategoryPersonalCare, 70),
		mk("f", model.CategoryHomeLiving, 65),
	}

	out := svc.diversify(ranked)

	ids := make([]string, len(out))
	for i, sq := range out {
		ids[i] = sq.Quest.ID
	}
	assert.Equal(t, "a", ids[0], "top choice always survives")
	assert.Contains(t, ids, "d")
	assert.Contains(t, ids, "f")
	assert.NotContains(t, ids, "e", "weak same-category repeats are dropped")
}

func TestDiversifyLeavesShortListsAlone(t *testing.T) {
	svc := NewScoringService(config.DefaultSelection())

	ranked := []model.ScoredQuest{
		{Quest: eveningRoutineQuest(), Score: 90},
		{Quest: packBagQuest(), Score: 80},
	}
	assert.Equal(t, ranked, svc.diversify(ranked))
}
