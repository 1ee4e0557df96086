package service

import (
	"testing"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasAdaptation(adaptations []model.QuestModification, target, action string) bool {
	for _, a := range adaptations {
		if a.Target == target && a.Action == action {
			return true
		}
	}
	return false
}

func TestGenerateSimplifiesQuestsAboveBand(t *testing.T) {
	svc := NewAdaptationService(config.DefaultSelection())

	q := eveningRoutineQuest()
	q.DifficultyLevel = 70 // user level 45, band 20

	adaptations := svc.Generate(q, eveningCriteria())
	assert.True(t, hasAdaptation(adaptations, "steps", "simplify"))
}

func TestGenerateEnhancesQuestsBelowBand(t *testing.T) {
	svc := NewAdaptationService(config.DefaultSelection())

	q := eveningRoutineQuest()
	q.DifficultyLevel = 20

	adaptations := svc.Generate(q, eveningCriteria())
	assert.True(t, hasAdaptation(adaptations, "steps", "enhance"))
}

func TestGenerateMatchesProfileNeeds(t *testing.T) {
	svc := NewAdaptationService(config.DefaultSelection())

	criteria := eveningCriteria()
	criteria.Profile.SensoryProfile.Sensitivities = []string{"noise"}
	criteria.Profile.CognitiveProfile.WorkingMemoryCapacity = "limited"
	criteria.Profile.BasicInfo.CommunicationPreferences = []string{"visual"}
	criteria.CurrentContext.SupportAvailable.Type = model.SupportMinimalPrompting

	adaptations := svc.Generate(eveningRoutineQuest(), criteria)

	assert.True(t, hasAdaptation(adaptations, "presentation", "replace"), "noise sensitivity")
	assert.True(t, hasAdaptation(adaptations, "presentation", "simplify"), "limited working memory")
	assert.True(t, hasAdaptation(adaptations, "supports", "add"), "minimal prompting support")
}

func TestGenerateSortsByImpactAndCaps(t *testing.T) {
	svc := NewAdaptationService(config.DefaultSelection())

	criteria := eveningCriteria()
	criteria.Profile.SensoryProfile.Sensitivities = []string{"noise"}
	criteria.Profile.CognitiveProfile.WorkingMemoryCapacity = "limited"
	criteria.Profile.CognitiveProfile.MotivationalFactors = []string{"gamification"}
	criteria.Profile.BasicInfo.CommunicationPreferences = []string{"visual"}
	criteria.CurrentContext.SupportAvailable.Type = model.SupportMinimalPrompting

	q := eveningRoutineQuest()
	q.DifficultyLevel = 70
	q.EstimatedDuration.Typical = 29 // >90% of the 30 available minutes

	criteria.Preferences.MaxAdaptations = 3
	adaptations := svc.Generate(q, criteria)

	require.Len(t, adaptations, 3)
	for i := 1; i < len(adaptations); i++ {
		assert.GreaterOrEqual(t,
			adaptations[i-1].ImpactLevel.Rank(),
			adaptations[i].ImpactLevel.Rank())
	}
}

func TestGenerateNoAdaptationsForWellMatchedQuest(t *testing.T) {
	svc := NewAdaptationService(config.DefaultSelection())

	adaptations := svc.Generate(eveningRoutineQuest(), eveningCriteria())
	assert.Empty(t, adaptations)
}
