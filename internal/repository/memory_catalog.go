package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"skilljumper_backend/internal/model"
)

// MemoryCatalog is an in-memory QuestCatalog with the same index shape the
// persistent catalog queries against: category, skill, tag and difficulty
// bucket. It backs tests and local development without MySQL.
type MemoryCatalog struct {
	mu sync.RWMutex

	quests       map[string]*model.Quest
	byCategory   map[model.QuestCategory][]string
	bySkill      map[string][]string
	byTag        map[string][]string
	byDifficulty map[int][]string // bucket = difficulty / 10

	learningModels map[string]*model.LearningModel
	attempts       map[string][]*model.QuestAttempt
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		quests:         map[string]*model.Quest{},
		byCategory:     map[model.QuestCategory][]string{},
		bySkill:        map[string][]string{},
		byTag:          map[string][]string{},
		byDifficulty:   map[int][]string{},
		learningModels: map[string]*model.LearningModel{},
		attempts:       map[string][]*model.QuestAttempt{},
	}
}

// Add indexes a quest. Quests added twice replace the stored copy but keep
// a single index entry.
func (c *MemoryCatalog) Add(q *model.Quest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if q.ID == "" {
		q.ID = model.GenerateUUID()
	}
	if _, exists := c.quests[q.ID]; !exists {
		c.byCategory[q.Category] = append(c.byCategory[q.Category], q.ID)
		for skill := range q.SkillRequirements {
			c.bySkill[skill] = append(c.bySkill[skill], q.ID)
		}
		for _, tag := range q.Tags {
			c.byTag[tag] = append(c.byTag[tag], q.ID)
		}
		bucket := q.DifficultyLevel / 10
		c.byDifficulty[bucket] = append(c.byDifficulty[bucket], q.ID)
	}
	c.quests[q.ID] = q
}

func (c *MemoryCatalog) GetByID(ctx context.Context, id string) (*model.Quest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quests[id]
	if !ok {
		return nil, fmt.Errorf("quest %s not found", id)
	}
	return q, nil
}

func (c *MemoryCatalog) GetByCategory(ctx context.Context, category model.QuestCategory) ([]*model.Quest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*model.Quest, 0, len(c.byCategory[category]))
	for _, id := range c.byCategory[category] {
		out = append(out, c.quests[id])
	}
	sortByDifficulty(out)
	return out, nil
}

func (c *MemoryCatalog) Search(ctx context.Context, filter SearchFilter) ([]*model.Quest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Start from the tightest available index, then verify all constraints.
	candidates := c.candidateIDs(filter)

	seen := make(map[string]bool, len(candidates))
	var out []*model.Quest
	for _, id := range candidates {
		if seen[id] {
			continue
		}
		seen[id] = true
		q := c.quests[id]
		if !c.matches(q, filter) {
			continue
		}
		out = append(out, q)
	}
	sortByDifficulty(out)
	if filter.MaxResults > 0 && len(out) > filter.MaxResults {
		out = out[:filter.MaxResults]
	}
	return out, nil
}

func (c *MemoryCatalog) candidateIDs(filter SearchFilter) []string {
	switch {
	case len(filter.Categories) > 0:
		var ids []string
		for _, cat := range filter.Categories {
			ids = append(ids, c.byCategory[cat]...)
		}
		return ids
	case len(filter.Skills) > 0:
		var ids []string
		for _, s := range filter.Skills {
			ids = append(ids, c.bySkill[s]...)
		}
		return ids
	case len(filter.Tags) > 0:
		var ids []string
		for _, t := range filter.Tags {
			ids = append(ids, c.byTag[t]...)
		}
		return ids
	case filter.MinDifficulty > 0 || filter.MaxDifficulty > 0:
		lo, hi := 0, 10
		if filter.MinDifficulty > 0 {
			lo = filter.MinDifficulty / 10
		}
		if filter.MaxDifficulty > 0 {
			hi = filter.MaxDifficulty / 10
		}
		var ids []string
		for b := lo; b <= hi; b++ {
			ids = append(ids, c.byDifficulty[b]...)
		}
		return ids
	default:
		ids := make([]string, 0, len(c.quests))
		for id := range c.quests {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids
	}
}

func (c *MemoryCatalog) matches(q *model.Quest, filter SearchFilter) bool {
	if len(filter.Categories) > 0 {
		found := false
		for _, cat := range filter.Categories {
			if q.Category == cat {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !matchesSkills(q, filter.Skills) {
		return false
	}
	if !matchesTags(q, filter.Tags) {
		return false
	}
	if filter.MinDifficulty > 0 && q.DifficultyLevel < filter.MinDifficulty {
		return false
	}
	if filter.MaxDifficulty > 0 && q.DifficultyLevel > filter.MaxDifficulty {
		return false
	}
	if filter.MaxDuration > 0 && q.EstimatedDuration.Typical > filter.MaxDuration {
		return false
	}
	if filter.Location != "" && !q.AllowsLocation(filter.Location) {
		return false
	}
	return true
}

func sortByDifficulty(quests []*model.Quest) {
	sort.SliceStable(quests, func(i, j int) bool {
		return quests[i].DifficultyLevel < quests[j].DifficultyLevel
	})
}

func (c *MemoryCatalog) GetLearningModel(ctx context.Context, userID string) (*model.LearningModel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.learningModels[userID]; ok {
		return m, nil
	}
	m := model.NewLearningModel(userID)
	m.LastUpdated = time.Now()
	c.learningModels[userID] = m
	return m, nil
}

func (c *MemoryCatalog) SaveLearningModel(ctx context.Context, m *model.LearningModel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.learningModels[m.UserID] = m
	return nil
}

func (c *MemoryCatalog) RecordAttempt(ctx context.Context, attempt *model.QuestAttempt) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt.ID == "" {
		attempt.ID = model.GenerateUUID()
	}
	c.attempts[attempt.UserID] = append(c.attempts[attempt.UserID], attempt)
	return nil
}

func (c *MemoryCatalog) UpdateQuestStats(ctx context.Context, questID string, successRate, averageRating float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quests[questID]
	if !ok {
		return fmt.Errorf("quest %s not found", questID)
	}
	q.SuccessRate = successRate
	q.AverageRating = averageRating
	return nil
}

func (c *MemoryCatalog) UpdateCompletionPatterns(ctx context.Context, questID string, patterns model.CompletionPatterns) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quests[questID]
	if !ok {
		return fmt.Errorf("quest %s not found", questID)
	}
	q.CompletionPatterns = patterns
	return nil
}

func (c *MemoryCatalog) GetAttemptHistory(ctx context.Context, userID string, limit int) ([]*model.QuestAttempt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	history := c.attempts[userID]
	out := make([]*model.QuestAttempt, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
