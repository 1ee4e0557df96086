package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
func SystemClock() Clock { return realClock{} }

// FinalizeService turns the top-ranked quest plus its adaptations into the
// delivered recommendation: adapted quest copy, confidence and success
// estimates, guidance, session plan and fallback options.
type FinalizeService struct {
	SelectionTuning
	Catalog repository.QuestCatalog
	Clock   Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFinalizeService(catalog repository.QuestCatalog, selection config.SelectionConfig, clock Clock, rng *rand.Rand) *FinalizeService {
	if clock == nil {
		clock = SystemClock()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &FinalizeService{Catalog: catalog, Clock: clock, rng: rng}
	s.Tune(selection)
	return s
}

// Finalize builds the recommendation. The catalog quest is never mutated:
// adaptations apply to a deep copy.
func (s *FinalizeService) Finalize(ctx context.Context, top model.ScoredQuest, adaptations []model.QuestModification, criteria *model.SelectionCriteria, analysis model.IntentAnalysis, alternatives []*model.Quest) (*model.Recommendation, error) {
	quest := top.Quest
	adapted := ApplyAdaptations(quest, adaptations)

	fallbacks, err := s.fallbackOptions(ctx, quest, criteria)
	if err != nil {
		return nil, err
	}

	riskFactors := s.riskFactors(quest, criteria)

	rec := &model.Recommendation{
		Quest:                adapted,
		Adaptations:          adaptations,
		PersonalizedContent:  s.personalizedContent(adapted, criteria, adaptations, analysis),
		ConfidenceScore:      s.confidenceScore(criteria, adaptations, top.Score),
		EstimatedSuccessRate: s.predictSuccessRate(quest, adaptations, criteria),
		DifficultyMatch:      s.DifficultyMatch(quest, criteria),
		ReasoningExplanation: s.reasoning(quest, adaptations, criteria, top.Score),
		SelectionFactors: model.SelectionFactors{
			PrimaryFactors:    []string{"intent_match", "skill_level_fit", "time_availability"},
			SecondaryFactors:  []string{"energy_level", "support_available", "user_preferences"},
			ConstraintFactors: []string{"safety_requirements", "environmental_feasibility"},
		},
		AlternativeOptions:     alternatives,
		FallbackOptions:        fallbacks,
		SupportRecommendations: s.supportRecommendations(criteria),
		PreparationSteps:       s.preparationSteps(quest),
		SuccessTips:            s.successTips(criteria),
		RiskFactors:            riskFactors,
		RiskMitigation:         s.riskMitigation(riskFactors, quest),
		SuccessPredictors:      s.successPredictors(quest, criteria),
		RecommendedTiming:      s.timing(quest, criteria),
		CheckInPoints:          s.checkInPoints(quest, adaptations),
		AdaptationTriggers:     s.adaptationTriggers(criteria),
	}

	return rec, nil
}

// ApplyAdaptations returns an adapted deep copy. A steps/simplify
// adaptation lowers the difficulty by 10 (floor 1). Applying the same
// adaptation list twice lowers it again; callers must apply once.
func ApplyAdaptations(q *model.Quest, adaptations []model.QuestModification) *model.Quest {
	adapted := q.Clone()
	for _, a := range adaptations {
		if a.Target == "steps" && a.Action == "simplify" {
			adapted.DifficultyLevel = maxInt(1, adapted.DifficultyLevel-10)
		}
	}
	return adapted
}

func (s *FinalizeService) confidenceScore(criteria *model.SelectionCriteria, adaptations []model.QuestModification, score float64) float64 {
	confidence := score

	if criteria.LearningModel != nil && criteria.LearningModel.ConfidenceLevel > 0.7 {
		confidence += 10
	}
	if len(adaptations) > 3 {
		confidence -= 5
	}

	return util.Clamp(confidence, 0, 100)
}

func (s *FinalizeService) predictSuccessRate(q *model.Quest, adaptations []model.QuestModification, criteria *model.SelectionCriteria) float64 {
	rate := q.SuccessRate * 100

	for _, a := range adaptations {
		if a.Action == "simplify" {
			rate += 10
		}
	}
	if criteria.CurrentContext.StressLevel == model.StressCalm {
		rate += 5
	}

	return util.Clamp(rate, 0, 100)
}

// DifficultyMatch peaks when the quest sits ~15 points above the user's
// level: challenging but achievable.
func (s *FinalizeService) DifficultyMatch(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	userLevel := criteria.Profile.OverallSkillLevel()
	gap := math.Abs(float64(q.DifficultyLevel) - userLevel)
	return math.Max(0, 100-math.Abs(gap-s.Selection().OptimalDifficultyGap)*3)
}

func (s *FinalizeService) reasoning(q *model.Quest, adaptations []model.QuestModification, criteria *model.SelectionCriteria, score float64) string {
	base := fmt.Sprintf("Selected %q (score: %.1f) because it matches your request for %q and is well-suited to your current context and skill level.",
		q.Title, score, criteria.UserIntent)
	if len(adaptations) > 0 {
		base += fmt.Sprintf(" Applied %d adaptations to personalize the experience.", len(adaptations))
	}
	return base
}

func (s *FinalizeService) personalizedContent(adapted *model.Quest, criteria *model.SelectionCriteria, adaptations []model.QuestModification, analysis model.IntentAnalysis) model.PersonalizedContent {
	return model.PersonalizedContent{
		MotivationalMessage:   s.motivationalMessage(adapted, criteria, analysis),
		CustomInstructions:    customInstructions(adapted, adaptations),
		AdaptedSteps:          adaptSteps(adapted.Steps, adaptations),
		PreferredSupportStyle: preferredSupportStyle(&criteria.Profile),
	}
}

func (s *FinalizeService) motivationalMessage(q *model.Quest, criteria *model.SelectionCriteria, analysis model.IntentAnalysis) string {
	switch analysis.EmotionalState {
	case "excited":
		return fmt.Sprintf("Awesome! Your enthusiasm for %q is going to make this great!", q.Title)
	case "stressed":
		return fmt.Sprintf("Take a deep breath. We'll go through %q step by step at your pace.", q.Title)
	}

	templates := []string{
		fmt.Sprintf("Great choice! %q is perfect for what you want to achieve.", q.Title),
		fmt.Sprintf("You've got this! This quest will help you with %s.", criteria.UserIntent),
		fmt.Sprintf("Ready to build your independence? Let's tackle %q together!", q.Title),
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(templates))
	s.mu.Unlock()
	return templates[idx]
}

func customInstructions(q *model.Quest, adaptations []model.QuestModification) []string {
	instructions := []string{fmt.Sprintf("Complete %q at your own pace", q.Title)}
	for _, a := range adaptations {
		if a.Action == "simplify" {
			instructions = append(instructions, "Take breaks between steps if needed")
		}
		if a.Target == "supports" {
			instructions = append(instructions, "Ask for help if you get stuck")
		}
	}
	return instructions
}

func adaptSteps(steps []model.QuestStep, adaptations []model.QuestModification) []model.QuestStep {
	adapted := make([]model.QuestStep, len(steps))
	copy(adapted, steps)

	for _, a := range adaptations {
		if a.Target == "steps" && a.Action == "simplify" {
			for i := range adapted {
				adapted[i].Description = simplifyText(adapted[i].Description)
			}
		}
	}
	return adapted
}

var simplerWords = map[string]string{
	"immediately":   "right away",
	"approximately": "about",
	"completely":    "all the way",
	"complex":       "easy",
	"difficult":     "easy",
	"challenging":   "easy",
}

func simplifyText(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		trimmed := strings.ToLower(strings.Trim(w, ".,!?"))
		if simple, ok := simplerWords[trimmed]; ok {
			words[i] = strings.Replace(w, strings.Trim(w, ".,!?"), simple, 1)
		}
	}
	return strings.Join(words, " ")
}

func preferredSupportStyle(profile *model.DLSProfile) string {
	for _, pref := range profile.BasicInfo.CommunicationPreferences {
		if pref == "visual" {
			return "visual_step_by_step"
		}
	}
	for _, style := range profile.CognitiveProfile.PreferredLearningStyle {
		if style == "auditory" {
			return "verbal_encouragement"
		}
	}
	return "gentle_prompting"
}

func (s *FinalizeService) supportRecommendations(criteria *model.SelectionCriteria) []string {
	recs := []string{
		"Have all required tools ready before starting",
		"Choose a quiet, comfortable space",
	}
	for _, sens := range criteria.Profile.SensoryProfile.Sensitivities {
		if sens == "noise" {
			recs = append(recs, "Use noise-canceling headphones if available")
			break
		}
	}
	if criteria.CurrentContext.EnergyLevel == model.EnergyLow {
		recs = append(recs, "Take frequent breaks to maintain focus")
	}
	return recs
}

func (s *FinalizeService) preparationSteps(q *model.Quest) []string {
	steps := []string{
		"Review the quest overview",
		"Gather all required tools",
		"Set aside enough time",
	}
	if len(q.RequiredTools) > 0 {
		steps = append(steps, "Collect: "+strings.Join(q.RequiredTools, ", "))
	}
	if q.SafetyRequirements.HazardLevel != model.HazardNone {
		steps = append(steps, "Review safety guidelines")
	}
	return steps
}

func (s *FinalizeService) successTips(criteria *model.SelectionCriteria) []string {
	tips := []string{
		"Go at your own pace",
		"Ask for help when needed",
		"Celebrate small wins along the way",
	}
	if criteria.Profile.CognitiveProfile.WorkingMemoryCapacity == "limited" {
		tips = append(tips, "Focus on one step at a time")
	}
	if criteria.SessionContext.ConsecutiveFailures > 0 {
		tips = append(tips, "Remember: every attempt is progress")
	}
	return tips
}

func (s *FinalizeService) riskFactors(q *model.Quest, criteria *model.SelectionCriteria) []string {
	var risks []string
	if q.SafetyRequirements.HazardLevel == model.HazardHigh {
		risks = append(risks, "High-risk activity requiring extra caution")
	}
	if criteria.CurrentContext.StressLevel == model.StressHigh {
		risks = append(risks, "High stress may affect focus and decision-making")
	}
	if criteria.CurrentContext.EnergyLevel == model.EnergyVeryLow {
		risks = append(risks, "Low energy may impact task completion")
	}
	if len(criteria.EnvironmentalFactors.Distractions) > 0 {
		risks = append(risks, "Distracting environment may impact concentration")
	}
	return risks
}

func (s *FinalizeService) riskMitigation(riskFactors []string, q *model.Quest) []string {
	var strategies []string
	for _, risk := range riskFactors {
		if strings.Contains(risk, "stress") {
			strategies = append(strategies,
				"Take deep breaths and use calming techniques",
				"Consider postponing if stress is overwhelming")
		}
		if strings.Contains(risk, "energy") {
			strategies = append(strategies,
				"Take frequent breaks",
				"Consider shorter quest segments")
		}
		if strings.Contains(risk, "Distracting") {
			strategies = append(strategies,
				"Remove or minimize distracting elements",
				"Use noise-canceling techniques")
		}
	}
	if q.SafetyRequirements.HazardLevel != model.HazardNone {
		strategies = append(strategies,
			"Have emergency contacts available",
			"Stop immediately if feeling unsafe")
	}
	return strategies
}

func (s *FinalizeService) successPredictors(q *model.Quest, criteria *model.SelectionCriteria) []string {
	var predictors []string

	energy := criteria.CurrentContext.EnergyLevel
	if energy == model.EnergyHigh || energy == model.EnergyModerate {
		predictors = append(predictors, "Good energy level supports task completion")
	}
	if criteria.CurrentContext.SupportAvailable.Availability {
		predictors = append(predictors, "Available support increases success likelihood")
	}
	for _, tod := range q.OptimalTimeOfDay {
		if tod == criteria.CurrentContext.TimeOfDay {
			predictors = append(predictors, "Optimal timing for this type of activity")
			break
		}
	}
	if criteria.LearningModel != nil {
		if perf, ok := criteria.LearningModel.HistoricalPerformance[string(q.Category)]; ok && perf.AverageSuccess > 0.7 {
			predictors = append(predictors, "Strong historical performance in this category")
		}
	}
	return predictors
}

func (s *FinalizeService) timing(q *model.Quest, criteria *model.SelectionCriteria) model.TimingPlan {
	now := s.Clock.Now()
	duration := q.EstimatedDuration.Typical

	start := now
	if criteria.CurrentContext.EnergyLevel == model.EnergyVeryLow {
		// Start after a rest.
		start = now.Add(30 * time.Minute)
	}

	var breaks []int
	if duration > 15 {
		for i := 10; i < duration; i += 15 {
			breaks = append(breaks, i)
		}
	}

	return model.TimingPlan{
		BestTimeToStart:   start,
		EstimatedDuration: duration,
		SuggestedBreaks:   breaks,
	}
}

func (s *FinalizeService) checkInPoints(q *model.Quest, adaptations []model.QuestModification) []int {
	var points []int
	stepCount := len(q.Steps)

	if stepCount > 4 {
		points = append(points,
			int(float64(stepCount)*0.25),
			int(float64(stepCount)*0.5),
			int(float64(stepCount)*0.75))
	} else {
		points = append(points, stepCount/2)
	}

	if len(adaptations) > 3 {
		points = append(points, 2)
	}

	valid := points[:0]
	for _, p := range points {
		if p > 0 && p < stepCount {
			valid = append(valid, p)
		}
	}
	return valid
}

func (s *FinalizeService) adaptationTriggers(criteria *model.SelectionCriteria) []model.AdaptationTrigger {
	triggers := []model.AdaptationTrigger{
		{
			Condition: "user_struggling_for_more_than_5_minutes",
			SuggestedAdaptation: model.QuestModification{
				Target:       "supports",
				Action:       "add",
				Content:      "Provide additional hints and guidance",
				Reason:       "User needs more support",
				ImpactLevel:  model.ImpactMinor,
				PreserveCore: true,
			},
		},
	}

	if criteria.CurrentContext.StressLevel != model.StressCalm {
		triggers = append(triggers, model.AdaptationTrigger{
			Condition: "stress_level_increases",
			SuggestedAdaptation: model.QuestModification{
				Target:       "duration",
				Action:       "simplify",
				Content:      "Break into shorter segments",
				Reason:       "Reduce stress through shorter tasks",
				ImpactLevel:  model.ImpactModerate,
				PreserveCore: true,
			},
		})
	}

	triggers = append(triggers, model.AdaptationTrigger{
		Condition: "energy_level_drops",
		SuggestedAdaptation: model.QuestModification{
			Target:       "presentation",
			Action:       "add",
			Content:      "Suggest taking a break",
			Reason:       "Maintain performance with rest",
			ImpactLevel:  model.ImpactMinor,
			PreserveCore: true,
		},
	})

	return triggers
}

// fallbackOptions finds up to two noticeably easier quests in the same
// category that still fit the available time.
func (s *FinalizeService) fallbackOptions(ctx context.Context, q *model.Quest, criteria *model.SelectionCriteria) ([]*model.Quest, error) {
	if q.DifficultyLevel <= 10 {
		return nil, nil
	}
	fallbacks, err := s.Catalog.Search(ctx, repository.SearchFilter{
		Categories:    []model.QuestCategory{q.Category},
		MinDifficulty: 1,
		MaxDifficulty: q.DifficultyLevel - 10,
		MaxDuration:   criteria.TimeConstraints.AvailableMinutes,
	})
	if err != nil {
		return nil, util.WrapSelectionError(util.CodeDatabaseError, "fallback option search failed", err)
	}
	out := fallbacks[:0]
	for _, f := range fallbacks {
		if f.ID != q.ID {
			out = append(out, f)
		}
	}
	if len(out) > 2 {
		out = out[:2]
	}
	return out, nil
}
