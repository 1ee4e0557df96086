package service

import (
	"sort"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
)

// AdaptationService proposes quest modifications for the selected quest:
// seven rule families, sorted by impact, capped at the criteria maximum.
type AdaptationService struct {
	SelectionTuning
}

func NewAdaptationService(selection config.SelectionConfig) *AdaptationService {
	s := &AdaptationService{}
	s.Tune(selection)
	return s
}

// Generate collects adaptations from every rule family and trims the list.
func (s *AdaptationService) Generate(q *model.Quest, criteria *model.SelectionCriteria) []model.QuestModification {
	var adaptations []model.QuestModification

	adaptations = append(adaptations, s.difficultyAdaptations(q, criteria)...)
	adaptations = append(adaptations, s.supportAdaptations(criteria)...)
	adaptations = append(adaptations, s.sensoryAdaptations(criteria)...)
	adaptations = append(adaptations, s.timeAdaptations(q, criteria)...)
	adaptations = append(adaptations, s.motivationalAdaptations(criteria)...)
	adaptations = append(adaptations, s.cognitiveLoadAdaptations(criteria)...)
	adaptations = append(adaptations, s.communicationAdaptations(criteria)...)

	sort.SliceStable(adaptations, func(i, j int) bool {
		return adaptations[i].ImpactLevel.Rank() > adaptations[j].ImpactLevel.Rank()
	})

	max := criteria.Preferences.MaxAdaptations
	if max <= 0 {
		max = s.Selection().MaxAdaptations
	}
	if len(adaptations) > max {
		adaptations = adaptations[:max]
	}
	return adaptations
}

func (s *AdaptationService) difficultyAdaptations(q *model.Quest, criteria *model.SelectionCriteria) []model.QuestModification {
	userLevel := criteria.Profile.OverallSkillLevel()
	questLevel := float64(q.DifficultyLevel)
	band := s.Selection().DifficultyBand

	if questLevel > userLevel+band {
		return []model.QuestModification{{
			Target:       "steps",
			Action:       "simplify",
			Content:      "Break complex steps into smaller sub-steps",
			Reason:       "Reduce cognitive load for current skill level",
			ImpactLevel:  model.ImpactModerate,
			PreserveCore: true,
		}}
	}
	if questLevel < userLevel-band {
		return []model.QuestModification{{
			Target:       "steps",
			Action:       "enhance",
			Content:      "Add optional challenge elements",
			Reason:       "Increase engagement for advanced user",
			ImpactLevel:  model.ImpactMinor,
			PreserveCore: true,
		}}
	}
	return nil
}

func (s *AdaptationService) supportAdaptations(criteria *model.SelectionCriteria) []model.QuestModification {
	if criteria.CurrentContext.SupportAvailable.Type == model.SupportMinimalPrompting {
		return []model.QuestModification{{
			Target:       "supports",
			Action:       "add",
			Content:      "Add gentle reminder prompts at each step",
			Reason:       "Match available support level",
			ImpactLevel:  model.ImpactMinor,
			PreserveCore: true,
		}}
	}
	return nil
}

func (s *AdaptationService) sensoryAdaptations(criteria *model.SelectionCriteria) []model.QuestModification {
	for _, sens := range criteria.Profile.SensoryProfile.Sensitivities {
		if sens == "noise" {
			return []model.QuestModification{{
				Target:       "presentation",
				Action:       "replace",
				Content:      "Use visual cues instead of audio alerts",
				Reason:       "Accommodate noise sensitivity",
				ImpactLevel:  model.ImpactMinor,
				PreserveCore: true,
			}}
		}
	}
	return nil
}

func (s *AdaptationService) timeAdaptations(q *model.Quest, criteria *model.SelectionCriteria) []model.QuestModification {
	available := float64(criteria.TimeConstraints.AvailableMinutes)
	if float64(q.EstimatedDuration.Typical) > available*0.9 {
		return []model.QuestModification{{
			Target:       "duration",
			Action:       "simplify",
			Content:      "Split quest into shorter segments",
			Reason:       "Fit within available time",
			ImpactLevel:  model.ImpactModerate,
			PreserveCore: true,
		}}
	}
	return nil
}

func (s *AdaptationService) motivationalAdaptations(criteria *model.SelectionCriteria) []model.QuestModification {
	for _, m := range criteria.Profile.CognitiveProfile.MotivationalFactors {
		if m == "gamification" {
			return []model.QuestModification{{
				Target:       "feedback",
				Action:       "enhance",
				Content:      "Add progress bars and achievement unlocks",
				Reason:       "Increase motivation through gamification",
				ImpactLevel:  model.ImpactMinor,
				PreserveCore: true,
			}}
		}
	}
	return nil
}

func (s *AdaptationService) cognitiveLoadAdaptations(criteria *model.SelectionCriteria) []model.QuestModification {
	if criteria.Profile.CognitiveProfile.WorkingMemoryCapacity == "limited" {
		return []model.QuestModification{{
			Target:       "presentation",
			Action:       "simplify",
			Content:      "Present only one instruction at a time",
			Reason:       "Reduce working memory load",
			ImpactLevel:  model.ImpactModerate,
			PreserveCore: true,
		}}
	}
	return nil
}

func (s *AdaptationService) communicationAdaptations(criteria *model.SelectionCriteria) []model.QuestModification {
	for _, pref := range criteria.Profile.BasicInfo.CommunicationPreferences {
		if pref == "visual" {
			return []model.QuestModification{{
				Target:       "presentation",
				Action:       "add",
				Content:      "Include visual step-by-step diagrams",
				Reason:       "Match visual communication preference",
				ImpactLevel:  model.ImpactMinor,
				PreserveCore: true,
			}}
		}
	}
	return nil
}
