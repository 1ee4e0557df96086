package service

import (
	"context"
	"sort"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"
	"skilljumper_backend/pkg/logger"

	"go.uber.org/zap"
)

// CandidateService runs the retrieval stage: six strategies pull quests
// from the catalog, then duplicates and basically-unavailable quests are
// dropped and the pool is capped.
type CandidateService struct {
	SelectionTuning
	Catalog repository.QuestCatalog
	Intent  *IntentService
}

func NewCandidateService(catalog repository.QuestCatalog, intent *IntentService, selection config.SelectionConfig) *CandidateService {
	s := &CandidateService{Catalog: catalog, Intent: intent}
	s.Tune(selection)
	return s
}

// DifficultyRange is the candidate difficulty window derived from the
// user's level and context.
type DifficultyRange struct {
	Min int
	Max int
}

// Generate returns at most MaxCandidates quests. An empty result is a
// NO_CANDIDATES selection error.
func (s *CandidateService) Generate(ctx context.Context, criteria *model.SelectionCriteria, analysis model.IntentAnalysis) ([]*model.Quest, error) {
	var candidates []*model.Quest

	// Strategy 1: categories from the intent analysis.
	for _, category := range analysis.Categories {
		quests, err := s.Catalog.GetByCategory(ctx, model.QuestCategory(category))
		if err != nil {
			return nil, util.WrapSelectionError(util.CodeDatabaseError, "category lookup failed", err)
		}
		candidates = append(candidates, quests...)
	}

	// Strategy 2: target skills (intent keywords plus development-band and
	// struggling skills from the profile).
	skillLevels := extractSkillLevels(&criteria.Profile)
	for _, skill := range s.identifyTargetSkills(skillLevels, analysis) {
		quests, err := s.Catalog.Search(ctx, repository.SearchFilter{Skills: []string{skill}})
		if err != nil {
			return nil, util.WrapSelectionError(util.CodeDatabaseError, "skill search failed", err)
		}
		candidates = append(candidates, quests...)
	}

	// Strategy 3: difficulty window around the user's overall level,
	// narrowed by stress, energy, failures and stated preference.
	userLevel := criteria.Profile.OverallSkillLevel()
	diffRange := s.DifficultyRange(userLevel, criteria)
	quests, err := s.Catalog.Search(ctx, repository.SearchFilter{
		MinDifficulty: diffRange.Min,
		MaxDifficulty: diffRange.Max,
		Location:      criteria.CurrentContext.CurrentLocation,
	})
	if err != nil {
		return nil, util.WrapSelectionError(util.CodeDatabaseError, "difficulty search failed", err)
	}
	candidates = append(candidates, quests...)

	// Strategy 4: tag matching on the intent keywords.
	if len(analysis.Keywords) > 0 {
		tagQuests, err := s.Catalog.Search(ctx, repository.SearchFilter{Tags: analysis.Keywords})
		if err != nil {
			return nil, util.WrapSelectionError(util.CodeDatabaseError, "tag search failed", err)
		}
		candidates = append(candidates, tagQuests...)
	}

	// Strategies 5 and 6: historically successful categories and
	// motivational-factor tags from the learning model.
	if criteria.LearningModel != nil {
		prefQuests, err := s.questsFromPreferences(ctx, criteria.LearningModel)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, prefQuests...)
	}

	unique := dedupeQuests(candidates)

	available := unique[:0]
	for _, q := range unique {
		if s.basicallyAvailable(q, criteria) {
			available = append(available, q)
		}
	}

	if max := s.Selection().MaxCandidates; len(available) > max {
		available = available[:max]
	}

	logger.Log.Debug("candidate generation complete",
		zap.Int("raw", len(candidates)),
		zap.Int("unique", len(unique)),
		zap.Int("available", len(available)))

	if len(available) == 0 {
		return nil, util.NewSelectionError(util.CodeNoCandidates, "no quests matched the generation strategies")
	}
	return available, nil
}

// DifficultyRange computes the retrieval window: level−20 .. level+30,
// tightened when the user is stressed, tired, coming off failures, or
// asked for easier content; widened upward for "challenging".
func (s *CandidateService) DifficultyRange(userLevel float64, criteria *model.SelectionCriteria) DifficultyRange {
	baseMin := maxInt(1, int(userLevel)-int(s.Selection().DifficultyBand))
	baseMax := minInt(100, int(userLevel)+30)

	stress := criteria.CurrentContext.StressLevel
	if stress == model.StressHigh || stress == model.StressOverwhelmed {
		baseMax = minInt(baseMax, int(userLevel)+10)
	}

	energy := criteria.CurrentContext.EnergyLevel
	if energy == model.EnergyVeryLow || energy == model.EnergyLow {
		baseMax = minInt(baseMax, int(userLevel)+15)
	}

	if criteria.SessionContext.ConsecutiveFailures > 2 {
		baseMax = minInt(baseMax, int(userLevel)+5)
	}

	switch criteria.Preferences.PreferredDifficulty {
	case model.DifficultyEasier:
		baseMax = minInt(baseMax, int(userLevel)+10)
	case model.DifficultyChallenging:
		baseMin = maxInt(baseMin, int(userLevel)+10)
		baseMax = minInt(100, int(userLevel)+40)
	}

	return DifficultyRange{Min: baseMin, Max: baseMax}
}

func (s *CandidateService) identifyTargetSkills(skillLevels map[string]float64, analysis model.IntentAnalysis) []string {
	seen := map[string]bool{}
	var target []string
	add := func(skill string) {
		if !seen[skill] {
			seen[skill] = true
			target = append(target, skill)
		}
	}

	for _, k := range analysis.Keywords {
		add(k)
	}

	// Deterministic iteration over the map.
	skills := make([]string, 0, len(skillLevels))
	for skill := range skillLevels {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	sel := s.Selection()
	devMin := float64(sel.SkillDevelopmentMin)
	devMax := float64(sel.SkillDevelopmentMax)
	for _, skill := range skills {
		if lvl := skillLevels[skill]; lvl >= devMin && lvl <= devMax {
			add(skill)
		}
	}
	ceiling := float64(sel.SkillStruggleCeiling)
	for _, skill := range skills {
		if skillLevels[skill] < ceiling {
			add(skill)
		}
	}
	return target
}

func (s *CandidateService) questsFromPreferences(ctx context.Context, m *model.LearningModel) ([]*model.Quest, error) {
	var out []*model.Quest

	categories := make([]string, 0, len(m.HistoricalPerformance))
	for category := range m.HistoricalPerformance {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		if m.HistoricalPerformance[category].AverageSuccess <= 0.7 {
			continue
		}
		quests, err := s.Catalog.GetByCategory(ctx, model.QuestCategory(category))
		if err != nil {
			return nil, util.WrapSelectionError(util.CodeDatabaseError, "preference category lookup failed", err)
		}
		if len(quests) > 3 {
			quests = quests[:3]
		}
		out = append(out, quests...)
	}

	if tags := m.LearningPatterns.MotivationalFactors; len(tags) > 0 {
		quests, err := s.Catalog.Search(ctx, repository.SearchFilter{Tags: tags})
		if err != nil {
			return nil, util.WrapSelectionError(util.CodeDatabaseError, "motivational tag search failed", err)
		}
		if len(quests) > 5 {
			quests = quests[:5]
		}
		out = append(out, quests...)
	}

	return out, nil
}

// basicallyAvailable is the coarse pre-filter; the contextual filter does
// the full constraint pass later.
func (s *CandidateService) basicallyAvailable(q *model.Quest, criteria *model.SelectionCriteria) bool {
	if q.SafetyRequirements.MinimumAge > criteria.Profile.BasicInfo.Age {
		return false
	}
	if !q.AllowsLocation(criteria.CurrentContext.CurrentLocation) {
		return false
	}
	if q.EstimatedDuration.Minimum > criteria.TimeConstraints.AvailableMinutes {
		return false
	}
	return true
}

// extractSkillLevels expands skill domains into concrete skill levels.
func extractSkillLevels(profile *model.DLSProfile) map[string]float64 {
	levels := map[string]float64{}
	for domain, data := range profile.SkillDomains {
		level := float64(data.CurrentLevel)
		if level == 0 {
			level = 50
		}
		skills, ok := model.DomainSkills[domain]
		if !ok {
			skills = []string{domain}
		}
		for _, skill := range skills {
			levels[skill] = level
		}
	}
	return levels
}

func dedupeQuests(quests []*model.Quest) []*model.Quest {
	seen := make(map[string]bool, len(quests))
	out := make([]*model.Quest, 0, len(quests))
	for _, q := range quests {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, q)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
