package database

import (
	"fmt"
	"log"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.DLSProfile{},
		&model.Quest{},
		&model.QuestAttempt{},
		&model.LearningModel{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedQuests(db)

	return db, nil
}

// seedQuests fills an empty catalog with the starter quests so a fresh
// deployment can serve recommendations immediately.
func seedQuests(db *gorm.DB) {
	var count int64
	db.Model(&model.Quest{}).Count(&count)
	if count > 0 {
		return
	}

	for _, q := range StarterQuests() {
		db.Create(q)
	}
	log.Println("Seeded quest catalog with starter quests")
}

// StarterQuests is the default catalog content. The grounding quest has no
// tool, location or time-of-day requirements, so it always matches.
func StarterQuests() []*model.Quest {
	return []*model.Quest{
		{
			UUIDBase:        model.UUIDBase{ID: "morning_routine_basic"},
			Title:           "Basic Morning Routine",
			Description:     "Get ready for the day with a simple morning routine",
			Category:        model.CategoryPersonalCare,
			DifficultyLevel: 25,
			CognitiveLoad:   model.CognitiveLoadLow,
			SkillRequirements: map[string]model.SkillRequirement{
				"personal_hygiene": {MinimumLevel: 20, Importance: model.ImportanceCritical, CanAdapt: true},
				"time_management":  {MinimumLevel: 15, Importance: model.ImportanceImportant, CanAdapt: true},
			},
			RequiredLocation:    []model.Location{model.LocationHome},
			MinimumSupportLevel: model.SupportMinimalPrompting,
			RequiredTools:       []string{"toothbrush", "soap", "towel"},
			OptionalTools:       []string{"timer", "checklist"},
			SafetyRequirements: model.SafetyRequirements{
				MinimumAge:  8,
				HazardLevel: model.HazardNone,
			},
			EstimatedDuration: model.QuestDuration{Minimum: 15, Typical: 25, Maximum: 40, CanPause: true},
			OptimalTimeOfDay:  []model.TimeOfDay{model.TimeEarlyMorning, model.TimeMorning},
			EnergyRequirement: 30,
			SupportingMaterials: []model.SupportingMaterial{
				{
					Type:          model.MaterialVisual,
					Content:       "Step-by-step morning routine checklist with images",
					Accessibility: []string{"large_text", "high_contrast"},
				},
			},
			Rewards: model.Rewards{
				XP:               25,
				Badges:           []string{"morning_champion"},
				Unlocks:          []string{"advanced_morning_routine"},
				CelebrationStyle: model.CelebrationModerate,
			},
			Variants: []model.QuestVariant{
				{
					ID:             "simplified",
					Name:           "Extra Simple Version",
					AdaptationType: "difficulty",
					Modifications: []model.QuestModification{
						{
							Target:       "steps",
							Action:       "simplify",
							Content:      "Break into 3 main steps instead of 7",
							Reason:       "Reduce cognitive load",
							ImpactLevel:  model.ImpactModerate,
							PreserveCore: true,
						},
					},
					ApplicableConditions: []string{"low_executive_function", "high_stress"},
				},
			},
			AdaptationPoints: []model.AdaptationPoint{
				{
					Step:              2,
					AdaptationType:    []string{"difficulty", "support"},
					TriggerConditions: []string{"user_struggling", "time_pressure"},
				},
			},
			Tags:          []string{"morning", "routine", "hygiene", "basic", "independence"},
			SuccessRate:   0.85,
			AverageRating: 4.2,
			CompletionPatterns: model.CompletionPatterns{
				TimeOfDay:    map[string]float64{"morning": 0.9, "early_morning": 0.7},
				EnergyLevel:  map[string]float64{"moderate": 0.8, "high": 0.9},
				SupportLevel: map[string]float64{"minimal_prompting": 0.85, "independent": 0.7},
			},
			Steps: []model.QuestStep{
				{
					ID:            "wake_up_gentle",
					Order:         1,
					Title:         "Wake Up Gently",
					Description:   "Take a moment to wake up and prepare for the day",
					EstimatedTime: 3,
					OptionalTools: []string{"soft_music", "natural_light"},
					SupportOptions: []model.SupportOption{
						{Level: model.SupportMinimalPrompting, Content: "Take your time, there's no rush", Triggers: []string{"user_stressed", "rushed_feeling"}},
					},
					ValidationCriteria:    []string{"Feel alert", "Ready to continue"},
					CompletionEvidence:    "self_report",
					CommonStruggles:       []string{"difficulty_waking", "feeling_rushed"},
					HelpResources:         []string{"breathing_exercise", "gentle_stretching"},
					EncouragementMessages: []string{"Great start to your day!", "You're doing well"},
				},
				{
					ID:            "brush_teeth",
					Order:         2,
					Title:         "Brush Your Teeth",
					Description:   "Clean your teeth thoroughly for 2 minutes",
					EstimatedTime: 3,
					RequiredTools: []string{"toothbrush", "toothpaste"},
					OptionalTools: []string{"timer", "mirror"},
					SafetyNotes:   []string{"Use appropriate amount of toothpaste"},
					SupportOptions: []model.SupportOption{
						{Level: model.SupportVerbalGuidance, Content: "Brush in gentle circles, don't forget the back teeth", Triggers: []string{"first_time", "needs_guidance"}},
					},
					ValidationCriteria:    []string{"Brushed for 2 minutes", "All teeth cleaned"},
					CompletionEvidence:    "self_report",
					CommonStruggles:       []string{"timing", "thoroughness"},
					HelpResources:         []string{"brushing_technique_video", "timer_app"},
					EncouragementMessages: []string{"Your smile is getting brighter!"},
				},
				{
					ID:            "wash_face",
					Order:         3,
					Title:         "Wash Your Face",
					Description:   "Freshen up with soap and water",
					EstimatedTime: 3,
					RequiredTools: []string{"soap", "towel"},
					ValidationCriteria:    []string{"Face washed and dried"},
					CompletionEvidence:    "self_report",
					CommonStruggles:       []string{"water_temperature"},
					EncouragementMessages: []string{"Feeling fresh and ready!"},
				},
				{
					ID:            "get_dressed",
					Order:         4,
					Title:         "Get Dressed",
					Description:   "Put on clothes for the day",
					EstimatedTime: 8,
					OptionalTools: []string{"outfit_planner"},
					ValidationCriteria:    []string{"Dressed and comfortable"},
					CompletionEvidence:    "self_report",
					CommonStruggles:       []string{"choosing_clothes", "sensory_comfort"},
					EncouragementMessages: []string{"You look great!"},
				},
				{
					ID:            "eat_breakfast",
					Order:         5,
					Title:         "Eat Breakfast",
					Description:   "Have something to eat and drink",
					EstimatedTime: 8,
					ValidationCriteria:    []string{"Had something to eat", "Had something to drink"},
					CompletionEvidence:    "self_report",
					CommonStruggles:       []string{"appetite", "time_pressure"},
					EncouragementMessages: []string{"Fuel for a great day!"},
				},
			},
		},
		{
			UUIDBase:        model.UUIDBase{ID: "calm_breathing_space"},
			Title:           "Take a Calm Breathing Break",
			Description:     "A simple breathing exercise to help you feel calm and centered",
			Category:        model.CategoryPersonalCare,
			DifficultyLevel: 10,
			CognitiveLoad:   model.CognitiveLoadLow,
			SkillRequirements: map[string]model.SkillRequirement{
				"self_care": {MinimumLevel: 5, Importance: model.ImportanceHelpful, CanAdapt: true},
			},
			RequiredLocation:    allLocations(),
			MinimumSupportLevel: model.SupportIndependent,
			SafetyRequirements: model.SafetyRequirements{
				MinimumAge:  5,
				HazardLevel: model.HazardNone,
			},
			EstimatedDuration: model.QuestDuration{Minimum: 2, Typical: 5, Maximum: 10, CanPause: true},
			OptimalTimeOfDay:  allTimesOfDay(),
			EnergyRequirement: 10,
			Rewards: model.Rewards{
				XP:               10,
				Badges:           []string{"calm_champion"},
				CelebrationStyle: model.CelebrationQuiet,
			},
			Tags:          []string{"breathing", "mindfulness", "emergency", "always_available", "regulation"},
			SuccessRate:   0.95,
			AverageRating: 4.0,
			Steps: []model.QuestStep{
				{
					ID:            "breathe_slowly",
					Order:         1,
					Title:         "Breathe Slowly",
					Description:   "Breathe in for 4 counts, hold for 4, breathe out for 4. Repeat until you feel calmer.",
					EstimatedTime: 5,
					ValidationCriteria:    []string{"Feeling calmer"},
					CompletionEvidence:    "self_report",
					EncouragementMessages: []string{"You're doing great", "Every breath helps"},
				},
			},
		},
		{
			UUIDBase:        model.UUIDBase{ID: "evening_tidy_up"},
			Title:           "Quick Evening Tidy-Up",
			Description:     "Spend a few minutes putting things back in their place before bed",
			Category:        model.CategoryHomeLiving,
			DifficultyLevel: 30,
			CognitiveLoad:   model.CognitiveLoadLow,
			SkillRequirements: map[string]model.SkillRequirement{
				"cleaning":     {MinimumLevel: 20, Importance: model.ImportanceImportant, CanAdapt: true},
				"organization": {MinimumLevel: 15, Importance: model.ImportanceHelpful, CanAdapt: true},
			},
			RequiredLocation:    []model.Location{model.LocationHome},
			MinimumSupportLevel: model.SupportIndependent,
			SafetyRequirements: model.SafetyRequirements{
				MinimumAge:  8,
				HazardLevel: model.HazardNone,
			},
			EstimatedDuration: model.QuestDuration{Minimum: 5, Typical: 15, Maximum: 25, CanPause: true},
			OptimalTimeOfDay:  []model.TimeOfDay{model.TimeEvening, model.TimeNight},
			EnergyRequirement: 35,
			Rewards: model.Rewards{
				XP:               20,
				Badges:           []string{"tidy_spaces"},
				CelebrationStyle: model.CelebrationModerate,
			},
			Tags:          []string{"evening", "cleaning", "routine", "home"},
			SuccessRate:   0.8,
			AverageRating: 3.9,
			Steps: []model.QuestStep{
				{
					ID:            "pick_one_area",
					Order:         1,
					Title:         "Pick One Area",
					Description:   "Choose one small area to tidy, like your desk or bedside table",
					EstimatedTime: 2,
					ValidationCriteria: []string{"Area chosen"},
					CompletionEvidence: "self_report",
				},
				{
					ID:            "put_things_away",
					Order:         2,
					Title:         "Put Things Away",
					Description:   "Return items to where they belong",
					EstimatedTime: 10,
					ValidationCriteria: []string{"Items put away"},
					CompletionEvidence: "self_report",
					CommonStruggles:    []string{"deciding_where_things_go"},
				},
				{
					ID:            "final_look",
					Order:         3,
					Title:         "Take a Final Look",
					Description:   "Notice how the space looks now",
					EstimatedTime: 2,
					ValidationCriteria: []string{"Space looks better"},
					CompletionEvidence: "self_report",
					EncouragementMessages: []string{"A calm space for a calm mind"},
				},
			},
		},
		{
			UUIDBase:        model.UUIDBase{ID: "plan_tomorrow"},
			Title:           "Plan Tomorrow in Three Steps",
			Description:     "Write down the three most important things for tomorrow",
			Category:        model.CategoryTimeManagement,
			DifficultyLevel: 35,
			CognitiveLoad:   model.CognitiveLoadModerate,
			SkillRequirements: map[string]model.SkillRequirement{
				"planning":        {MinimumLevel: 25, Importance: model.ImportanceCritical, CanAdapt: true},
				"time_management": {MinimumLevel: 20, Importance: model.ImportanceImportant, CanAdapt: true},
			},
			RequiredLocation:    []model.Location{model.LocationHome, model.LocationSchool},
			MinimumSupportLevel: model.SupportIndependent,
			RequiredTools:       []string{"paper", "pen"},
			OptionalTools:       []string{"planner_app"},
			SafetyRequirements: model.SafetyRequirements{
				MinimumAge:  10,
				HazardLevel: model.HazardNone,
			},
			EstimatedDuration: model.QuestDuration{Minimum: 5, Typical: 15, Maximum: 20, CanPause: true},
			OptimalTimeOfDay:  []model.TimeOfDay{model.TimeEvening},
			EnergyRequirement: 40,
			Rewards: model.Rewards{
				XP:               30,
				Badges:           []string{"planner"},
				CelebrationStyle: model.CelebrationModerate,
			},
			Tags:          []string{"planning", "tomorrow", "organization", "ready", "prepare"},
			SuccessRate:   0.75,
			AverageRating: 4.1,
			Steps: []model.QuestStep{
				{
					ID:            "think_ahead",
					Order:         1,
					Title:         "Think About Tomorrow",
					Description:   "What's happening tomorrow? Any appointments, school or tasks?",
					EstimatedTime: 5,
					ValidationCriteria: []string{"Thought about tomorrow's events"},
					CompletionEvidence: "self_report",
				},
				{
					ID:            "write_three",
					Order:         2,
					Title:         "Write Down Three Things",
					Description:   "Write the three most important things to do tomorrow",
					EstimatedTime: 5,
					RequiredTools: []string{"paper", "pen"},
					ValidationCriteria: []string{"Three items written down"},
					CompletionEvidence: "photo",
					CommonStruggles:    []string{"prioritizing"},
				},
				{
					ID:            "prepare_items",
					Order:         3,
					Title:         "Prepare What You Need",
					Description:   "Set out anything you'll need for tomorrow, like your bag or clothes",
					EstimatedTime: 5,
					ValidationCriteria: []string{"Items prepared"},
					CompletionEvidence: "self_report",
					EncouragementMessages: []string{"Tomorrow-you will thank you!"},
				},
			},
		},
	}
}

func allLocations() []model.Location {
	return []model.Location{
		model.LocationHome,
		model.LocationSchool,
		model.LocationCommunity,
		model.LocationWorkplace,
		model.LocationUnknown,
	}
}

func allTimesOfDay() []model.TimeOfDay {
	return []model.TimeOfDay{
		model.TimeEarlyMorning,
		model.TimeMorning,
		model.TimeMidday,
		model.TimeAfternoon,
		model.TimeEvening,
		model.TimeNight,
	}
}
