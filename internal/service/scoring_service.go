package service

import (
	"context"
	"math"
	"sort"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/util"

	"golang.org/x/sync/errgroup"
)

// ScoringService ranks filtered candidates: sixteen factor scores per
// quest, weighted by a context-adjusted weight set, normalized, boosted,
// then diversity-filtered. Candidates score concurrently; ranking waits
// for all of them.
type ScoringService struct {
	SelectionTuning
}

func NewScoringService(selection config.SelectionConfig) *ScoringService {
	s := &ScoringService{}
	s.Tune(selection)
	return s
}

// ScoreAndRank produces the diversity-filtered descending ranking.
func (s *ScoringService) ScoreAndRank(ctx context.Context, candidates []*model.Quest, criteria *model.SelectionCriteria, analysis model.IntentAnalysis) ([]model.ScoredQuest, error) {
	scored := make([]model.ScoredQuest, len(candidates))
	weights := s.DynamicWeights(criteria)

	g, ctx := errgroup.WithContext(ctx)
	for i, quest := range candidates {
		i, quest := i, quest
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			breakdown := s.Breakdown(quest, criteria, analysis)
			scored[i] = model.ScoredQuest{
				Quest:     quest,
				Score:     s.Combine(quest, breakdown, weights, criteria),
				Breakdown: breakdown,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, util.WrapSelectionError(util.CodeSystemError, "scoring interrupted", err)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return s.diversify(scored), nil
}

// BaseWeights returns the uncontextualized factor weights.
func BaseWeights() model.FactorWeights {
	return model.FactorWeights{
		Intent:            0.20,
		Competency:        0.15,
		Motivational:      0.12,
		Environmental:     0.10,
		Time:              0.08,
		Energy:            0.08,
		Historical:        0.07,
		Predictive:        0.06,
		LearningStyle:     0.05,
		Adaptability:      0.03,
		Support:           0.02,
		Social:            0.02,
		Novelty:           0.01,
		Progression:       0.01,
		Risk:              0.02,
		ConfidenceBooster: 0.02,
	}
}

// DynamicWeights adjusts the base weights for urgency, stress, failure
// streaks and first-quest-of-the-day sessions.
func (s *ScoringService) DynamicWeights(criteria *model.SelectionCriteria) model.FactorWeights {
	w := BaseWeights()

	if criteria.UrgencyLevel == model.UrgencyHigh {
		w.Time *= 2
		w.Intent *= 1.5
		w.Motivational *= 0.7
	}

	stress := criteria.CurrentContext.StressLevel
	if stress == model.StressHigh || stress == model.StressOverwhelmed {
		w.Risk *= 2
		w.ConfidenceBooster *= 1.5
		w.Competency *= 0.8
	}

	if criteria.SessionContext.ConsecutiveFailures > 2 {
		w.ConfidenceBooster *= 2
		w.Competency *= 0.6
		w.Motivational *= 1.3
	}

	if criteria.SessionContext.IsFirstQuestToday {
		w.Motivational *= 1.2
		w.Energy *= 1.2
	}

	return w
}

// Breakdown computes all sixteen factor scores for one quest.
func (s *ScoringService) Breakdown(q *model.Quest, criteria *model.SelectionCriteria, analysis model.IntentAnalysis) model.ScoreBreakdown {
	return model.ScoreBreakdown{
		Intent:            s.intentScore(q, criteria, analysis),
		Competency:        s.competencyScore(q, criteria),
		Motivational:      s.motivationalScore(q, criteria),
		Environmental:     s.environmentalScore(q, criteria),
		Time:              s.timeScore(q, criteria),
		Energy:            s.energyScore(q, criteria),
		Historical:        q.SuccessRate * 100,
		Predictive:        s.predictiveScore(q, criteria),
		LearningStyle:     s.learningStyleScore(q, criteria),
		Adaptability:      s.adaptabilityScore(q),
		Support:           s.supportScore(q, criteria),
		Social:            s.socialScore(q, criteria),
		Novelty:           s.noveltyScore(q, criteria),
		Progression:       s.progressionScore(q, criteria),
		Risk:              s.riskScore(q, criteria),
		ConfidenceBooster: s.confidenceBoosterScore(q, criteria),
	}
}

// Combine weights the factor scores, normalizes to [0,100], applies the
// category and rating boosts and clamps. Factor scores are treated as
// fractions of 100 so the ×100 normalization stays in range.
func (s *ScoringService) Combine(q *model.Quest, b model.ScoreBreakdown, w model.FactorWeights, criteria *model.SelectionCriteria) float64 {
	totalScore := b.Intent/100*w.Intent +
		b.Competency/100*w.Competency +
		b.Motivational/100*w.Motivational +
		b.Environmental/100*w.Environmental +
		b.Time/100*w.Time +
		b.Energy/100*w.Energy +
		b.Historical/100*w.Historical +
		b.Predictive/100*w.Predictive +
		b.LearningStyle/100*w.LearningStyle +
		b.Adaptability/100*w.Adaptability +
		b.Support/100*w.Support +
		b.Social/100*w.Social +
		b.Novelty/100*w.Novelty +
		b.Progression/100*w.Progression +
		b.Risk/100*w.Risk +
		b.ConfidenceBooster/100*w.ConfidenceBooster

	totalWeight := w.Sum()
	if totalWeight <= 0 {
		return 0
	}
	final := totalScore / totalWeight * 100

	if criteria.PrioritizesCategory(q.Category) {
		final *= 1.15
	}
	if q.AverageRating > 4.0 {
		final *= 1.05
	}

	return util.Clamp(final, 0, 100)
}

func (s *ScoringService) intentScore(q *model.Quest, criteria *model.SelectionCriteria, analysis model.IntentAnalysis) float64 {
	var score float64

	for _, cat := range analysis.Categories {
		if cat == string(q.Category) {
			score += 40
			break
		}
	}

	overlap := 0
	for _, tag := range q.Tags {
		for _, kw := range analysis.Keywords {
			if tag == kw {
				overlap++
				break
			}
		}
	}
	score += math.Min(30, float64(overlap)*10)

	for _, concept := range analysis.SemanticConcepts {
		if concept == "preparation" && q.HasTag("preparation") {
			score += 15
			break
		}
	}

	if analysis.EmotionalState == "urgent" && criteria.UrgencyLevel == model.UrgencyHigh {
		score += 15
	}

	return math.Min(100, score)
}

func (s *ScoringService) competencyScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	skillLevels := extractSkillLevels(&criteria.Profile)

	var totalMatch, weightSum float64
	for skillID, req := range q.SkillRequirements {
		userLevel, ok := skillLevels[skillID]
		if !ok {
			userLevel = 50
		}
		gap := float64(req.MinimumLevel) - userLevel

		var matchScore float64
		switch {
		case gap >= -10 && gap <= 30:
			// Peak at the optimal challenge gap.
			matchScore = math.Max(0, 100-math.Abs(gap-s.Selection().OptimalSkillGap)*2)
		case gap < -30:
			matchScore = 20
		case gap > 50:
			matchScore = 5
		default:
			matchScore = 60
		}

		importance := req.Importance.Weight()
		totalMatch += matchScore * importance
		weightSum += importance
	}

	if weightSum == 0 {
		return 50
	}
	return totalMatch / weightSum
}

func (s *ScoringService) motivationalScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	var score float64
	profile := &criteria.Profile

	materials := map[model.MaterialType]bool{}
	for _, m := range q.SupportingMaterials {
		materials[m.Type] = true
	}
	for _, style := range profile.CognitiveProfile.PreferredLearningStyle {
		if (style == "visual" && materials[model.MaterialVisual]) ||
			(style == "auditory" && materials[model.MaterialAudio]) ||
			(style == "kinesthetic" && materials[model.MaterialInteractive]) {
			score += 25
		}
	}

	motivators := profile.CognitiveProfile.MotivationalFactors
	matches := tagOverlap(q, motivators)
	score += math.Min(30, float64(matches)*15)

	if q.Rewards.CelebrationStyle == inferRewardPreference(profile) {
		score += 20
	}

	// Interest alignment shares the motivational tag overlap.
	score += math.Min(30, float64(matches)*10)

	return math.Min(100, score)
}

func inferRewardPreference(profile *model.DLSProfile) model.CelebrationStyle {
	for _, s := range profile.SensoryProfile.Sensitivities {
		if s == "overwhelming_stimuli" {
			return model.CelebrationQuiet
		}
	}
	for _, b := range profile.SensoryProfile.SeekingBehaviors {
		if b == "excitement" {
			return model.CelebrationEnthusiastic
		}
	}
	return model.CelebrationModerate
}

func tagOverlap(q *model.Quest, terms []string) int {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	count := 0
	for _, tag := range q.Tags {
		if set[tag] {
			count++
		}
	}
	return count
}

func (s *ScoringService) environmentalScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	score := 70.0

	if q.AllowsLocation(criteria.CurrentContext.CurrentLocation) {
		score += 20
	}

	if len(q.RequiredTools) == 0 {
		score += 30
	} else {
		available := make(map[string]bool, len(criteria.EnvironmentalFactors.ToolsAvailable))
		for _, t := range criteria.EnvironmentalFactors.ToolsAvailable {
			available[t] = true
		}
		have := 0
		for _, t := range q.RequiredTools {
			if available[t] {
				have++
			}
		}
		score += float64(have) / float64(len(q.RequiredTools)) * 30
	}

	return math.Min(100, score)
}

func (s *ScoringService) timeScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	score := 50.0

	available := float64(criteria.TimeConstraints.AvailableMinutes)
	typical := float64(q.EstimatedDuration.Typical)
	if typical <= available*0.8 {
		score += 30
	} else if typical <= available {
		score += 15
	}

	for _, tod := range q.OptimalTimeOfDay {
		if tod == criteria.CurrentContext.TimeOfDay {
			score += 20
			break
		}
	}

	return math.Min(100, score)
}

func (s *ScoringService) energyScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	gap := math.Abs(criteria.CurrentContext.EnergyLevel.Numeric() - float64(q.EnergyRequirement))
	return math.Max(0, 100-gap*2)
}

func (s *ScoringService) predictiveScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	if criteria.LearningModel != nil {
		if perf, ok := criteria.LearningModel.HistoricalPerformance[string(q.Category)]; ok {
			return perf.AverageSuccess * 100
		}
	}
	return 60
}

func (s *ScoringService) learningStyleScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	styles := criteria.Profile.CognitiveProfile.PreferredLearningStyle
	if len(styles) == 0 {
		return 50
	}

	materials := map[model.MaterialType]bool{}
	for _, m := range q.SupportingMaterials {
		materials[m.Type] = true
	}
	matches := 0
	for _, style := range styles {
		if (style == "visual" && materials[model.MaterialVisual]) ||
			(style == "auditory" && materials[model.MaterialAudio]) ||
			(style == "kinesthetic" && materials[model.MaterialInteractive]) {
			matches++
		}
	}
	return float64(matches) / float64(len(styles)) * 100
}

func (s *ScoringService) adaptabilityScore(q *model.Quest) float64 {
	return math.Min(100, float64(len(q.Variants))*20+float64(len(q.AdaptationPoints))*10)
}

func (s *ScoringService) supportScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	questSupport := q.MinimumSupportLevel.Ordinal()
	userSupport := criteria.CurrentContext.SupportAvailable.Type.Ordinal()

	if userSupport >= questSupport {
		return 100 - math.Abs(float64(userSupport-questSupport))*10
	}
	return 0
}

func (s *ScoringService) socialScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	score := 70.0
	if q.Category == model.CategorySocial && criteria.CurrentContext.SocialContext == model.SocialAlone {
		score -= 30
	}
	return math.Max(0, score)
}

func (s *ScoringService) noveltyScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	for _, attempt := range criteria.RecentHistory {
		if attempt.QuestID == q.ID {
			return 30
		}
	}
	return 80
}

func (s *ScoringService) progressionScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	skillLevels := extractSkillLevels(&criteria.Profile)

	var value float64
	for skillID, req := range q.SkillRequirements {
		userLevel, ok := skillLevels[skillID]
		if !ok {
			userLevel = 50
		}
		gap := float64(req.MinimumLevel) - userLevel
		if gap > 0 && gap <= 30 {
			value += 20
		}
	}
	return math.Min(100, value)
}

func (s *ScoringService) riskScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	score := 100.0

	switch q.SafetyRequirements.HazardLevel {
	case model.HazardHigh:
		score -= 40
	case model.HazardMedium:
		score -= 20
	}

	if criteria.CurrentContext.StressLevel == model.StressHigh {
		score -= 20
	}

	return math.Max(0, score)
}

func (s *ScoringService) confidenceBoosterScore(q *model.Quest, criteria *model.SelectionCriteria) float64 {
	score := 50.0

	if criteria.SessionContext.ConsecutiveFailures > 0 {
		if q.DifficultyLevel < 40 {
			score += 30
		}
		if q.Rewards.CelebrationStyle == model.CelebrationEnthusiastic {
			score += 20
		}
	}

	return math.Min(100, score)
}

// diversify keeps the top choice, prefers unseen categories, and only
// repeats a category for very strong scores while the list is short.
func (s *ScoringService) diversify(ranked []model.ScoredQuest) []model.ScoredQuest {
	if len(ranked) <= 3 {
		return ranked
	}

	diversified := []model.ScoredQuest{ranked[0]}
	usedCategories := map[model.QuestCategory]bool{ranked[0].Quest.Category: true}

	for i := 1; i < len(ranked) && len(diversified) < 10; i++ {
		candidate := ranked[i]
		if !usedCategories[candidate.Quest.Category] {
			diversified = append(diversified, candidate)
			usedCategories[candidate.Quest.Category] = true
		} else if len(diversified) < 5 && candidate.Score > 75 {
			diversified = append(diversified, candidate)
		}
	}

	return diversified
}
