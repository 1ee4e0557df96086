package service

import (
	"math/rand"
	"os"
	"testing"
	"time"

	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// testTime is an evening so time-of-day scoring lines up with the evening
// fixtures.
var testTime = time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testClock() Clock { return fixedClock{t: testTime} }

func testRand() *rand.Rand { return rand.New(rand.NewSource(1)) }

// eveningCriteria is a 14-year-old at home in the evening with half an hour,
// asking to get ready for tomorrow. Overall skill level works out to 45.
func eveningCriteria() *model.SelectionCriteria {
	return &model.SelectionCriteria{
		UserIntent:   "get ready for tomorrow",
		UrgencyLevel: model.UrgencyMedium,
		Profile: model.DLSProfile{
			UserID: "user-1",
			BasicInfo: model.BasicInfo{
				Age:          14,
				SupportLevel: "some_support",
			},
			SkillDomains: map[string]model.SkillDomain{
				model.DomainPersonalHealthCare:  {CurrentLevel: 50, Confidence: 3},
				model.DomainTimeAndOrganization: {CurrentLevel: 40, Confidence: 3},
			},
		},
		CurrentContext: model.UserContext{
			CurrentLocation:  model.LocationHome,
			TimeOfDay:        model.TimeEvening,
			EnergyLevel:      model.EnergyModerate,
			StressLevel:      model.StressCalm,
			SocialContext:    model.SocialAlone,
			SupportAvailable: model.SupportAvailability{Type: model.SupportIndependent},
		},
		EnvironmentalFactors: model.EnvironmentalFactors{
			Location:       model.LocationHome,
			NoiseLevel:     "quiet",
			SafetyLevel:    "high",
			ToolsAvailable: []string{"toothbrush", "backpack"},
		},
		TimeConstraints: model.TimeConstraints{
			AvailableMinutes: 30,
			FlexibleTiming:   true,
		},
	}
}

func questSteps(n int) []model.QuestStep {
	steps := make([]model.QuestStep, n)
	for i := range steps {
		steps[i] = model.QuestStep{
			ID:                 model.GenerateUUID(),
			Order:              i + 1,
			Title:              "Step",
			Description:        "Do the next part of the routine",
			EstimatedTime:      4,
			CompletionEvidence: "self_report",
		}
	}
	return steps
}

func eveningRoutineQuest() *model.Quest {
	return &model.Quest{
		UUIDBase:    model.UUIDBase{ID: "quest-evening-routine"},
		Title:       "Evening Reset Routine",
		Description: "Wind down and set yourself up for the morning.",
		Category:    model.CategoryPersonalCare,

		DifficultyLevel: 40,
		CognitiveLoad:   model.CognitiveLoadLow,
		SkillRequirements: map[string]model.SkillRequirement{
			"personal_hygiene": {MinimumLevel: 40, Importance: model.ImportanceImportant, CanAdapt: true},
		},

		RequiredLocation:    []model.Location{model.LocationHome},
		MinimumSupportLevel: model.SupportIndependent,

		SafetyRequirements: model.SafetyRequirements{MinimumAge: 8, HazardLevel: model.HazardNone},

		EstimatedDuration: model.QuestDuration{Minimum: 10, Typical: 20, Maximum: 30, CanPause: true},
		OptimalTimeOfDay:  []model.TimeOfDay{model.TimeEvening},
		EnergyRequirement: 40,

		Rewards: model.Rewards{XP: 20, CelebrationStyle: model.CelebrationModerate},

		Tags:          []string{"preparation", "routine"},
		SuccessRate:   0.75,
		AverageRating: 4.2,

		Steps: questSteps(5),
	}
}

func packBagQuest() *model.Quest {
	return &model.Quest{
		UUIDBase:    model.UUIDBase{ID: "quest-pack-bag"},
		Title:       "Pack Your Bag for Tomorrow",
		Description: "Gather everything you need for the next day.",
		Category:    model.CategoryTimeManagement,

		DifficultyLevel: 45,
		CognitiveLoad:   model.CognitiveLoadLow,
		SkillRequirements: map[string]model.SkillRequirement{
			"organization":    {MinimumLevel: 35, Importance: model.ImportanceImportant, CanAdapt: true},
			"time_management": {MinimumLevel: 30, Importance: model.ImportanceHelpful, CanAdapt: true},
		},

		RequiredLocation:    []model.Location{model.LocationHome},
		MinimumSupportLevel: model.SupportIndependent,
		RequiredTools:       []string{"backpack"},

		SafetyRequirements: model.SafetyRequirements{MinimumAge: 8, HazardLevel: model.HazardNone},

		EstimatedDuration: model.QuestDuration{Minimum: 5, Typical: 15, Maximum: 25, CanPause: true},
		OptimalTimeOfDay:  []model.TimeOfDay{model.TimeEvening, model.TimeNight},
		EnergyRequirement: 35,

		Rewards: model.Rewards{XP: 15, CelebrationStyle: model.CelebrationModerate},

		Tags:          []string{"preparation", "pack"},
		SuccessRate:   0.8,
		AverageRating: 3.9,

		Steps: questSteps(3),
	}
}

// hazardQuest fits the difficulty window but carries a high hazard level, so
// the contextual filter must drop it for anyone under sixteen.
func hazardQuest() *model.Quest {
	return &model.Quest{
		UUIDBase:    model.UUIDBase{ID: "quest-stove-dinner"},
		Title:       "Cook Dinner on the Stove",
		Description: "Prepare a hot meal using the stovetop.",
		Category:    model.CategoryHomeLiving,

		DifficultyLevel: 50,
		CognitiveLoad:   model.CognitiveLoadModerate,
		SkillRequirements: map[string]model.SkillRequirement{
			"cooking": {MinimumLevel: 45, Importance: model.ImportanceCritical},
		},

		RequiredLocation:    []model.Location{model.LocationHome},
		MinimumSupportLevel: model.SupportIndependent,

		SafetyRequirements: model.SafetyRequirements{MinimumAge: 12, HazardLevel: model.HazardHigh},

		EstimatedDuration: model.QuestDuration{Minimum: 15, Typical: 25, Maximum: 30, CanPause: false},
		OptimalTimeOfDay:  []model.TimeOfDay{model.TimeEvening},
		EnergyRequirement: 55,

		Rewards: model.Rewards{XP: 40, CelebrationStyle: model.CelebrationEnthusiastic},

		Tags:        []string{"cooking", "meal"},
		SuccessRate: 0.6,

		Steps: questSteps(6),
	}
}

func seedCatalog(quests ...*model.Quest) *repository.MemoryCatalog {
	catalog := repository.NewMemoryCatalog()
	for _, q := range quests {
		catalog.Add(q)
	}
	return catalog
}
