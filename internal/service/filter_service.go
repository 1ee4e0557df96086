package service

import (
	"strings"

	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/util"
)

// FilterService applies the hard constraints no score can override: a
// quest that fails any check is removed from the pool entirely.
type FilterService struct{}

func NewFilterService() *FilterService {
	return &FilterService{}
}

// Apply returns the candidates that pass every constraint. An empty
// result is a NO_CONTEXTUAL_MATCH selection error.
func (s *FilterService) Apply(candidates []*model.Quest, criteria *model.SelectionCriteria) ([]*model.Quest, error) {
	out := make([]*model.Quest, 0, len(candidates))
	for _, q := range candidates {
		if s.Passes(q, criteria) {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, util.NewSelectionError(util.CodeNoContextualMatch, "no candidate passed the contextual constraints")
	}
	return out, nil
}

// Passes runs all constraint checks for one quest.
func (s *FilterService) Passes(q *model.Quest, criteria *model.SelectionCriteria) bool {
	return s.environmentallyFeasible(q, criteria) &&
		s.meetsTimeConstraints(q, &criteria.TimeConstraints) &&
		s.supportRequirementsMet(q, &criteria.CurrentContext.SupportAvailable) &&
		s.meetsSafetyRequirements(q, &criteria.Profile) &&
		s.ageAppropriate(q, criteria.Profile.BasicInfo.Age) &&
		s.hasRequiredConsent(q, &criteria.Profile) &&
		!criteria.AvoidsCategory(q.Category) &&
		s.cognitiveLoadAppropriate(q, criteria) &&
		s.sensoryCompatible(q, criteria)
}

func (s *FilterService) environmentallyFeasible(q *model.Quest, criteria *model.SelectionCriteria) bool {
	env := &criteria.EnvironmentalFactors

	if !q.AllowsLocation(criteria.CurrentContext.CurrentLocation) {
		return false
	}

	// More than 30% of required tools missing means the quest cannot run.
	if len(q.RequiredTools) > 0 {
		available := make(map[string]bool, len(env.ToolsAvailable))
		for _, t := range env.ToolsAvailable {
			available[t] = true
		}
		missing := 0
		for _, t := range q.RequiredTools {
			if !available[t] {
				missing++
			}
		}
		if float64(missing) > float64(len(q.RequiredTools))*0.3 {
			return false
		}
	}

	if q.Category == model.CategoryHomeLiving && env.SpaceConstraints == "very_limited" {
		return false
	}

	if q.SafetyRequirements.HazardLevel == model.HazardHigh && env.SafetyLevel == "low" {
		return false
	}

	return true
}

func (s *FilterService) meetsTimeConstraints(q *model.Quest, tc *model.TimeConstraints) bool {
	if q.EstimatedDuration.Minimum > tc.AvailableMinutes {
		return false
	}

	// Under a deadline, the typical duration must fit in 80% of the time
	// remaining to leave buffer.
	if tc.HasDeadline && tc.DeadlineMinutes > 0 {
		if float64(q.EstimatedDuration.Typical) > float64(tc.DeadlineMinutes)*0.8 {
			return false
		}
	}

	if !tc.FlexibleTiming && q.EstimatedDuration.Maximum > tc.AvailableMinutes {
		return false
	}

	if tc.MinimumSessionTime > 0 && q.EstimatedDuration.Maximum < tc.MinimumSessionTime {
		return false
	}

	return true
}

func (s *FilterService) supportRequirementsMet(q *model.Quest, support *model.SupportAvailability) bool {
	if support.Type.Ordinal() < q.MinimumSupportLevel.Ordinal() {
		return false
	}

	if !support.Availability {
		return q.MinimumSupportLevel == model.SupportIndependent
	}

	if q.MinimumSupportLevel != model.SupportIndependent && !support.SupportPersonPresent {
		return false
	}

	return true
}

func (s *FilterService) meetsSafetyRequirements(q *model.Quest, profile *model.DLSProfile) bool {
	if q.SafetyRequirements.MinimumAge > profile.BasicInfo.Age {
		return false
	}

	if q.SafetyRequirements.GuardianConsentRequired {
		if profile.GuardianSettings == nil || !profile.GuardianSettings.GuardianConsent {
			return false
		}
	}

	if q.SafetyRequirements.AdultSupervisionRequired {
		if profile.BasicInfo.Age < 18 && (profile.GuardianSettings == nil || !profile.GuardianSettings.HasGuardian) {
			return false
		}
	}

	if q.SafetyRequirements.HazardLevel == model.HazardHigh && profile.BasicInfo.Age < 16 {
		return false
	}

	return true
}

func (s *FilterService) ageAppropriate(q *model.Quest, age int) bool {
	if age < q.SafetyRequirements.MinimumAge-2 {
		return false
	}
	if age > 18 && q.HasTag("elementary") {
		return false
	}
	return true
}

func (s *FilterService) hasRequiredConsent(q *model.Quest, profile *model.DLSProfile) bool {
	if !q.SafetyRequirements.GuardianConsentRequired {
		return true
	}
	if profile.GuardianSettings == nil {
		return false
	}

	if riskCategory := questRiskCategory(q); riskCategory != "" {
		found := false
		for _, c := range profile.GuardianSettings.ConsentCategories {
			if c == riskCategory {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return profile.GuardianSettings.GuardianConsent
}

func questRiskCategory(q *model.Quest) string {
	if q.SafetyRequirements.HazardLevel == model.HazardHigh {
		return "high_risk_activities"
	}
	if q.Category == model.CategoryCommunity {
		return "community_activities"
	}
	for _, tool := range q.RequiredTools {
		if strings.Contains(tool, "sharp") || strings.Contains(tool, "hot") {
			return "tool_usage"
		}
	}
	return ""
}

func (s *FilterService) cognitiveLoadAppropriate(q *model.Quest, criteria *model.SelectionCriteria) bool {
	cognitive := &criteria.Profile.CognitiveProfile

	if q.CognitiveLoad == model.CognitiveLoadHigh && cognitive.WorkingMemoryCapacity == "limited" {
		return false
	}

	if q.CognitiveLoad == model.CognitiveLoadHigh && cognitive.ProcessingSpeed == "slow" {
		return false
	}

	if criteria.CurrentContext.StressLevel == model.StressHigh && q.CognitiveLoad != model.CognitiveLoadLow {
		return false
	}

	return true
}

func (s *FilterService) sensoryCompatible(q *model.Quest, criteria *model.SelectionCriteria) bool {
	sensitivities := criteria.Profile.SensoryProfile.Sensitivities
	env := &criteria.EnvironmentalFactors

	has := func(sens string) bool {
		for _, s := range sensitivities {
			if s == sens {
				return true
			}
		}
		return false
	}

	if has("noise") && env.NoiseLevel == "overwhelming" {
		return false
	}
	if has("light") && env.LightingCondition == "harsh" {
		return false
	}
	if has("crowds") && env.CrowdingLevel == "overwhelming" {
		return false
	}

	return true
}
