package service

import (
	"fmt"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/util"
	"skilljumper_backend/pkg/logger"

	"go.uber.org/zap"
)

// FallbackService keeps selection from ever returning empty-handed. When the
// pipeline finds no candidates it first relaxes the criteria in two steps,
// and if that still fails it synthesizes a recommendation on the spot:
// a short grounding activity for stressed or depleted users and for criteria
// too tight to build anything from, otherwise a minimal adaptive quest
// shaped around the stated intent.
type FallbackService struct {
	SelectionTuning
	Clock Clock
}

func NewFallbackService(selection config.SelectionConfig, clock Clock) *FallbackService {
	if clock == nil {
		clock = SystemClock()
	}
	s := &FallbackService{Clock: clock}
	s.Tune(selection)
	return s
}

// ExpandCriteria is the first relaxation: widen the search without touching
// hard constraints. Difficulty preference resets to normal, category
// avoidances drop, and the time window grows slightly.
func (s *FallbackService) ExpandCriteria(criteria *model.SelectionCriteria) *model.SelectionCriteria {
	expanded := *criteria
	expanded.Preferences.PreferredDifficulty = model.DifficultyNormal
	expanded.Preferences.AvoidCategories = nil
	expanded.TimeConstraints.AvailableMinutes += 10
	return &expanded
}

// RelaxCriteria is the second relaxation: loosen soft contextual
// constraints. Timing becomes flexible, more time is assumed, and support is
// treated as reachable whenever the user is not fully independent.
func (s *FallbackService) RelaxCriteria(criteria *model.SelectionCriteria) *model.SelectionCriteria {
	relaxed := *criteria
	relaxed.TimeConstraints.FlexibleTiming = true
	relaxed.TimeConstraints.AvailableMinutes += 15
	if relaxed.CurrentContext.SupportAvailable.Type != model.SupportIndependent {
		relaxed.CurrentContext.SupportAvailable.Availability = true
	}
	return &relaxed
}

// emergencyTypicalMinutes is the grounding activity's typical length. A time
// budget below it cannot carry an adaptive quest either.
const emergencyTypicalMinutes = 5

// NeedsEmergency reports whether the exhausted ladder should fall through to
// the grounding activity rather than an adaptive quest: either the user's
// state signals a crisis, or the criteria leave synthesis nothing to work
// with (less time than the grounding activity needs, or every category
// excluded).
func (s *FallbackService) NeedsEmergency(criteria *model.SelectionCriteria) bool {
	stress := criteria.CurrentContext.StressLevel
	if stress == model.StressHigh || stress == model.StressOverwhelmed ||
		criteria.CurrentContext.EnergyLevel == model.EnergyVeryLow {
		return true
	}
	if criteria.TimeConstraints.AvailableMinutes < emergencyTypicalMinutes {
		return true
	}
	return allCategoriesAvoided(criteria)
}

func allCategoriesAvoided(criteria *model.SelectionCriteria) bool {
	if len(criteria.Preferences.AvoidCategories) == 0 {
		return false
	}
	for _, c := range model.AllCategories() {
		if !criteria.AvoidsCategory(c) {
			return false
		}
	}
	return true
}

// EmergencyRecommendation returns the always-available grounding activity.
// It has no prerequisites of any kind and succeeds for nearly everyone.
func (s *FallbackService) EmergencyRecommendation(criteria *model.SelectionCriteria) *model.Recommendation {
	logger.Log.Warn("selection fell through to emergency recommendation",
		zap.String("intent", criteria.UserIntent),
		zap.String("stress", string(criteria.CurrentContext.StressLevel)))

	quest := &model.Quest{
		UUIDBase:    model.UUIDBase{ID: "emergency_fallback"},
		Title:       "Take a Moment",
		Description: "A simple breathing and grounding activity to help you reset.",
		Category:    model.CategoryPersonalCare,

		DifficultyLevel:   10,
		CognitiveLoad:     model.CognitiveLoadLow,
		SkillRequirements: map[string]model.SkillRequirement{},

		RequiredLocation:    allLocations(),
		MinimumSupportLevel: model.SupportIndependent,

		SafetyRequirements: model.SafetyRequirements{
			MinimumAge:  0,
			HazardLevel: model.HazardNone,
		},

		EstimatedDuration: model.QuestDuration{Minimum: 2, Typical: emergencyTypicalMinutes, Maximum: 10, CanPause: true},
		OptimalTimeOfDay:  allTimesOfDay(),
		EnergyRequirement: 10,

		Rewards: model.Rewards{XP: 5, CelebrationStyle: model.CelebrationQuiet},

		Tags:          []string{"breathing", "mindfulness", "emergency", "always_available"},
		SuccessRate:   0.95,
		AverageRating: 4.0,

		Steps: []model.QuestStep{{
			ID:                 "emergency_step_1",
			Order:              1,
			Title:              "Breathe and ground yourself",
			Description:        "Find a comfortable position. Breathe in slowly for four counts, hold for four, breathe out for four. Repeat until you feel steadier.",
			EstimatedTime:      5,
			CompletionEvidence: "self_report",
		}},
	}

	return &model.Recommendation{
		Quest: quest,
		PersonalizedContent: model.PersonalizedContent{
			MotivationalMessage: "It's okay to pause. Taking a moment for yourself is always a good choice.",
			AdaptedSteps:        quest.Steps,
		},
		ConfidenceScore:      95,
		EstimatedSuccessRate: 95,
		DifficultyMatch:      100,
		ReasoningExplanation: "No quests matched your current situation, so here is a simple grounding activity that is always available.",
		SelectionFactors: model.SelectionFactors{
			PrimaryFactors:    []string{"always_available"},
			ConstraintFactors: []string{"safety_requirements"},
		},
		RecommendedTiming: model.TimingPlan{
			BestTimeToStart:   s.Clock.Now(),
			EstimatedDuration: quest.EstimatedDuration.Typical,
		},
		SelectionMetadata: model.SelectionMetadata{
			AlgorithmVersion: util.AlgorithmVersion,
			SelectionTime:    s.Clock.Now(),
			CandidateCount:   0,
			FilteringStages:  []string{"emergency_fallback"},
		},
	}
}

// AdaptiveRecommendation synthesizes a minimal quest shaped around the
// user's intent and current context when the catalog has nothing suitable.
func (s *FallbackService) AdaptiveRecommendation(criteria *model.SelectionCriteria, analysis model.IntentAnalysis) *model.Recommendation {
	logger.Log.Info("synthesizing adaptive quest",
		zap.String("intent", criteria.UserIntent),
		zap.Strings("categories", analysis.Categories))

	userLevel := criteria.Profile.OverallSkillLevel()
	difficulty := maxInt(10, int(userLevel)-20)

	available := criteria.TimeConstraints.AvailableMinutes

	category := model.CategoryPersonalCare
	if len(analysis.Categories) > 0 {
		category = model.QuestCategory(analysis.Categories[0])
	}

	tools := criteria.EnvironmentalFactors.ToolsAvailable
	if len(tools) > 2 {
		tools = tools[:2]
	}

	quest := &model.Quest{
		UUIDBase:    model.UUIDBase{ID: "adaptive_" + model.GenerateUUID()},
		Title:       fmt.Sprintf("Quick %s Activity", criteria.UserIntent),
		Description: fmt.Sprintf("A short activity created for your goal: %s.", criteria.UserIntent),
		Category:    category,

		DifficultyLevel:   difficulty,
		CognitiveLoad:     model.CognitiveLoadLow,
		SkillRequirements: map[string]model.SkillRequirement{},

		RequiredLocation:    []model.Location{criteria.CurrentContext.CurrentLocation},
		MinimumSupportLevel: criteria.CurrentContext.SupportAvailable.Type,
		RequiredTools:       tools,

		SafetyRequirements: model.SafetyRequirements{
			MinimumAge:  0,
			HazardLevel: model.HazardNone,
		},

		EstimatedDuration: model.QuestDuration{
			Minimum:  maxInt(5, available-10),
			Typical:  available,
			Maximum:  available + 5,
			CanPause: true,
		},
		OptimalTimeOfDay:  []model.TimeOfDay{criteria.CurrentContext.TimeOfDay},
		EnergyRequirement: int(criteria.CurrentContext.EnergyLevel.Numeric()),

		Rewards: model.Rewards{XP: 10, CelebrationStyle: model.CelebrationModerate},

		Tags:          append([]string{"adaptive"}, analysis.Keywords...),
		SuccessRate:   0.8,
		AverageRating: 3.8,

		Steps: []model.QuestStep{{
			ID:                 "adaptive_step_1",
			Order:              1,
			Title:              "Work toward your goal",
			Description:        fmt.Sprintf("Spend the next %d minutes making progress on: %s. Start with whatever feels easiest.", available, criteria.UserIntent),
			EstimatedTime:      available,
			CompletionEvidence: "self_report",
		}},
	}

	modification := model.QuestModification{
		Target:       "presentation",
		Action:       "add",
		Content:      "Flexible structure created from your request",
		Reason:       "No catalog quest matched the current situation",
		ImpactLevel:  model.ImpactSignificant,
		PreserveCore: false,
	}

	return &model.Recommendation{
		Quest:       quest,
		Adaptations: []model.QuestModification{modification},
		PersonalizedContent: model.PersonalizedContent{
			MotivationalMessage: fmt.Sprintf("Let's make progress on %s, one small step at a time.", criteria.UserIntent),
			AdaptedSteps:        quest.Steps,
		},
		ConfidenceScore:      70,
		EstimatedSuccessRate: 80,
		DifficultyMatch:      90,
		ReasoningExplanation: "Created a custom activity from your request because nothing in the catalog fit your current situation.",
		SelectionFactors: model.SelectionFactors{
			PrimaryFactors:    []string{"intent_match", "time_availability"},
			ConstraintFactors: []string{"environmental_feasibility"},
		},
		RecommendedTiming: model.TimingPlan{
			BestTimeToStart:   s.Clock.Now(),
			EstimatedDuration: available,
		},
		CheckInPoints: []int{available / 2},
		AdaptationTriggers: []model.AdaptationTrigger{{
			Condition: "user_struggling_for_more_than_5_minutes",
			SuggestedAdaptation: model.QuestModification{
				Target:       "supports",
				Action:       "add",
				Content:      "Provide additional hints and guidance",
				Reason:       "User needs more support",
				ImpactLevel:  model.ImpactMinor,
				PreserveCore: true,
			},
		}},
		SelectionMetadata: model.SelectionMetadata{
			AlgorithmVersion: util.AlgorithmVersion,
			SelectionTime:    s.Clock.Now(),
			CandidateCount:   0,
			FilteringStages:  []string{"adaptive_creation"},
		},
	}
}

func allLocations() []model.Location {
	return []model.Location{
		model.LocationHome, model.LocationSchool,
		model.LocationCommunity, model.LocationWorkplace,
	}
}

func allTimesOfDay() []model.TimeOfDay {
	return []model.TimeOfDay{
		model.TimeEarlyMorning, model.TimeMorning, model.TimeMidday,
		model.TimeAfternoon, model.TimeEvening, model.TimeNight,
	}
}
