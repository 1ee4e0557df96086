package service

import (
	"strings"
	"testing"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCriteriaWidensSearch(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	criteria := eveningCriteria()
	criteria.Preferences.PreferredDifficulty = model.DifficultyEasier
	criteria.Preferences.AvoidCategories = []string{"home_living"}

	expanded := svc.ExpandCriteria(criteria)

	assert.Equal(t, model.DifficultyNormal, expanded.Preferences.PreferredDifficulty)
	assert.Nil(t, expanded.Preferences.AvoidCategories)
	assert.Equal(t, 40, expanded.TimeConstraints.AvailableMinutes)

	// The caller's criteria stay as they were.
	assert.Equal(t, model.DifficultyEasier, criteria.Preferences.PreferredDifficulty)
	assert.Equal(t, []string{"home_living"}, criteria.Preferences.AvoidCategories)
	assert.Equal(t, 30, criteria.TimeConstraints.AvailableMinutes)
}

func TestRelaxCriteriaLoosensSoftConstraints(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	criteria := eveningCriteria()
	criteria.TimeConstraints.FlexibleTiming = false
	criteria.CurrentContext.SupportAvailable = model.SupportAvailability{
		Type: model.SupportVerbalGuidance,
	}

	relaxed := svc.RelaxCriteria(criteria)

	assert.True(t, relaxed.TimeConstraints.FlexibleTiming)
	assert.Equal(t, 45, relaxed.TimeConstraints.AvailableMinutes)
	assert.True(t, relaxed.CurrentContext.SupportAvailable.Availability,
		"non-independent support becomes reachable")

	independent := eveningCriteria()
	relaxed = svc.RelaxCriteria(independent)
	assert.False(t, relaxed.CurrentContext.SupportAvailable.Availability,
		"independent users gain no phantom support")
}

func TestNeedsEmergency(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	calm := eveningCriteria()
	assert.False(t, svc.NeedsEmergency(calm))

	stressed := eveningCriteria()
	stressed.CurrentContext.StressLevel = model.StressHigh
	assert.True(t, svc.NeedsEmergency(stressed))

	overwhelmed := eveningCriteria()
	overwhelmed.CurrentContext.StressLevel = model.StressOverwhelmed
	assert.True(t, svc.NeedsEmergency(overwhelmed))

	depleted := eveningCriteria()
	depleted.CurrentContext.EnergyLevel = model.EnergyVeryLow
	assert.True(t, svc.NeedsEmergency(depleted))

	squeezed := eveningCriteria()
	squeezed.TimeConstraints.AvailableMinutes = 2
	assert.True(t, svc.NeedsEmergency(squeezed),
		"too little time even for the grounding activity")

	boxedIn := eveningCriteria()
	for _, c := range model.AllCategories() {
		boxedIn.Preferences.AvoidCategories = append(boxedIn.Preferences.AvoidCategories, string(c))
	}
	assert.True(t, svc.NeedsEmergency(boxedIn), "every category excluded")

	narrowed := eveningCriteria()
	narrowed.Preferences.AvoidCategories = []string{"home_living"}
	assert.False(t, svc.NeedsEmergency(narrowed),
		"a partial avoidance list leaves room for synthesis")
}

func TestEmergencyRecommendationIsAlwaysRunnable(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	criteria := eveningCriteria()
	criteria.CurrentContext.StressLevel = model.StressOverwhelmed

	rec := svc.EmergencyRecommendation(criteria)
	q := rec.Quest

	assert.Equal(t, "emergency_fallback", q.ID)
	assert.Equal(t, 10, q.DifficultyLevel)
	assert.Equal(t, 10, q.EnergyRequirement)
	assert.Zero(t, q.SafetyRequirements.MinimumAge)
	assert.Equal(t, model.HazardNone, q.SafetyRequirements.HazardLevel)
	assert.Equal(t, model.SupportIndependent, q.MinimumSupportLevel)
	assert.Len(t, q.RequiredLocation, 4, "runnable anywhere")
	assert.Len(t, q.OptimalTimeOfDay, 6, "runnable any time")
	assert.True(t, q.EstimatedDuration.CanPause)
	assert.True(t, q.HasTag("always_available"))

	assert.Equal(t, 95.0, rec.ConfidenceScore)
	assert.Equal(t, 95.0, rec.EstimatedSuccessRate)
	assert.Equal(t, 100.0, rec.DifficultyMatch)
	assert.Equal(t, []string{"emergency_fallback"}, rec.SelectionMetadata.FilteringStages)
	assert.Zero(t, rec.SelectionMetadata.CandidateCount)
	assert.Equal(t, util.AlgorithmVersion, rec.SelectionMetadata.AlgorithmVersion)
	assert.True(t, rec.RecommendedTiming.BestTimeToStart.Equal(testTime))
}

func TestAdaptiveRecommendationShapesToContext(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	criteria := eveningCriteria() // level 45, 30 minutes, at home in the evening
	analysis := NewIntentService().Analyze(criteria.UserIntent, criteria.UrgencyLevel)

	rec := svc.AdaptiveRecommendation(criteria, analysis)
	q := rec.Quest

	assert.True(t, strings.HasPrefix(q.ID, "adaptive_"))
	assert.Equal(t, model.CategoryPersonalCare, q.Category, "first analyzed category")
	assert.Equal(t, 25, q.DifficultyLevel, "well under the user's level")
	assert.Equal(t, []model.Location{model.LocationHome}, q.RequiredLocation)
	assert.Equal(t, []model.TimeOfDay{model.TimeEvening}, q.OptimalTimeOfDay)
	assert.Equal(t, 30, q.EstimatedDuration.Typical)
	assert.Equal(t, 20, q.EstimatedDuration.Minimum)
	assert.Equal(t, 35, q.EstimatedDuration.Maximum)
	assert.True(t, q.EstimatedDuration.CanPause)
	assert.True(t, q.HasTag("adaptive"))

	require.Len(t, rec.Adaptations, 1)
	assert.Equal(t, model.ImpactSignificant, rec.Adaptations[0].ImpactLevel)
	assert.False(t, rec.Adaptations[0].PreserveCore)

	assert.Equal(t, 70.0, rec.ConfidenceScore)
	assert.Equal(t, 80.0, rec.EstimatedSuccessRate)
	assert.Equal(t, []int{15}, rec.CheckInPoints)
	assert.Equal(t, []string{"adaptive_creation"}, rec.SelectionMetadata.FilteringStages)
}

func TestAdaptiveRecommendationDifficultyFloor(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	criteria := eveningCriteria()
	criteria.Profile.SkillDomains = map[string]model.SkillDomain{
		model.DomainPersonalHealthCare: {CurrentLevel: 15},
	}
	analysis := NewIntentService().Analyze(criteria.UserIntent, criteria.UrgencyLevel)

	rec := svc.AdaptiveRecommendation(criteria, analysis)
	assert.Equal(t, 10, rec.Quest.DifficultyLevel)
}

func TestAdaptiveRecommendationLimitsTools(t *testing.T) {
	svc := NewFallbackService(config.DefaultSelection(), testClock())

	criteria := eveningCriteria()
	criteria.EnvironmentalFactors.ToolsAvailable = []string{"a", "b", "c", "d"}
	analysis := NewIntentService().Analyze(criteria.UserIntent, criteria.UrgencyLevel)

	rec := svc.AdaptiveRecommendation(criteria, analysis)
	assert.Equal(t, []string{"a", "b"}, rec.Quest.RequiredTools)
}
