package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skilljumper_backend/internal/model"
	"skilljumper_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const learningModelCacheTTL = 15 * time.Minute

// QuestRepository is the MySQL-backed catalog. Learning models are cached
// in Redis with DB fallthrough; the cache entry is rewritten on every save
// so readers never see a model older than the last write.
type QuestRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewQuestRepository(db *gorm.DB, rdb *redis.Client) *QuestRepository {
	return &QuestRepository{DB: db, Redis: rdb}
}

func (r *QuestRepository) GetByID(ctx context.Context, id string) (*model.Quest, error) {
	var quest model.Quest
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&quest).Error
	if err != nil {
		return nil, err
	}
	return &quest, nil
}

func (r *QuestRepository) GetByCategory(ctx context.Context, category model.QuestCategory) ([]*model.Quest, error) {
	var quests []*model.Quest
	err := r.DB.WithContext(ctx).
		Where("category = ?", category).
		Order("difficulty_level ASC").
		Find(&quests).Error
	return quests, err
}

func (r *QuestRepository) Search(ctx context.Context, filter SearchFilter) ([]*model.Quest, error) {
	query := r.DB.WithContext(ctx).Model(&model.Quest{})

	if len(filter.Categories) > 0 {
		query = query.Where("category IN ?", filter.Categories)
	}
	if filter.MinDifficulty > 0 {
		query = query.Where("difficulty_level >= ?", filter.MinDifficulty)
	}
	if filter.MaxDifficulty > 0 {
		query = query.Where("difficulty_level <= ?", filter.MaxDifficulty)
	}

	var quests []*model.Quest
	if err := query.Order("difficulty_level ASC").Find(&quests).Error; err != nil {
		return nil, err
	}

	// Skills, tags, duration and location live in json columns; filter the
	// narrowed set in memory rather than depending on MySQL json operators.
	out := quests[:0]
	for _, q := range quests {
		if !matchesSkills(q, filter.Skills) {
			continue
		}
		if !matchesTags(q, filter.Tags) {
			continue
		}
		if filter.MaxDuration > 0 && q.EstimatedDuration.Typical > filter.MaxDuration {
			continue
		}
		if filter.Location != "" && !q.AllowsLocation(filter.Location) {
			continue
		}
		out = append(out, q)
		if filter.MaxResults > 0 && len(out) >= filter.MaxResults {
			break
		}
	}
	return out, nil
}

func matchesSkills(q *model.Quest, skills []string) bool {
	if len(skills) == 0 {
		return true
	}
	for _, s := range skills {
		if _, ok := q.SkillRequirements[s]; ok {
			return true
		}
	}
	return false
}

func matchesTags(q *model.Quest, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if q.HasTag(t) {
			return true
		}
	}
	return false
}

func learningModelKey(userID string) string {
	return fmt.Sprintf("learning_model:%s", userID)
}

// GetLearningModel returns the user's model, creating the cold-start model
// on first access. Redis errors degrade to the database, never to failure.
func (r *QuestRepository) GetLearningModel(ctx context.Context, userID string) (*model.LearningModel, error) {
	if r.Redis != nil {
		raw, err := r.Redis.Get(ctx, learningModelKey(userID)).Result()
		if err == nil {
			var m model.LearningModel
			if jsonErr := json.Unmarshal([]byte(raw), &m); jsonErr == nil {
				return &m, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("learning model cache read failed", zap.Error(err))
		}
	}

	var m model.LearningModel
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := model.NewLearningModel(userID)
		if err := r.DB.WithContext(ctx).Create(fresh).Error; err != nil {
			return nil, err
		}
		r.cacheLearningModel(ctx, fresh)
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	r.cacheLearningModel(ctx, &m)
	return &m, nil
}

func (r *QuestRepository) SaveLearningModel(ctx context.Context, m *model.LearningModel) error {
	if err := r.DB.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	r.cacheLearningModel(ctx, m)
	return nil
}

func (r *QuestRepository) cacheLearningModel(ctx context.Context, m *model.LearningModel) {
	if r.Redis == nil {
		return
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := r.Redis.Set(ctx, learningModelKey(m.UserID), raw, learningModelCacheTTL).Err(); err != nil {
		logger.Log.Warn("learning model cache write failed", zap.Error(err))
	}
}

func (r *QuestRepository) RecordAttempt(ctx context.Context, attempt *model.QuestAttempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *QuestRepository) GetAttemptHistory(ctx context.Context, userID string, limit int) ([]*model.QuestAttempt, error) {
	var attempts []*model.QuestAttempt
	query := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&attempts).Error
	return attempts, err
}

// UpdateCompletionPatterns rewrites the observed completion-rate column.
func (r *QuestRepository) UpdateCompletionPatterns(ctx context.Context, questID string, patterns model.CompletionPatterns) error {
	return r.DB.WithContext(ctx).Model(&model.Quest{}).
		Where("id = ?", questID).
		Update("completion_patterns", patterns).Error
}

// Create inserts a catalog quest (admin API and seeding).
func (r *QuestRepository) Create(ctx context.Context, quest *model.Quest) error {
	return r.DB.WithContext(ctx).Create(quest).Error
}

// Update rewrites a catalog quest.
func (r *QuestRepository) Update(ctx context.Context, quest *model.Quest) error {
	return r.DB.WithContext(ctx).Save(quest).Error
}

// List pages through the catalog for the read API.
func (r *QuestRepository) List(ctx context.Context, offset, limit int) ([]*model.Quest, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&model.Quest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var quests []*model.Quest
	err := r.DB.WithContext(ctx).
		Order("category ASC, difficulty_level ASC").
		Offset(offset).Limit(limit).
		Find(&quests).Error
	return quests, total, err
}

// RecentAttempts returns attempts recorded after the cutoff, for the
// rating recompute task.
func (r *QuestRepository) RecentAttempts(ctx context.Context, since time.Time) ([]*model.QuestAttempt, error) {
	var attempts []*model.QuestAttempt
	err := r.DB.WithContext(ctx).
		Where("created_at > ?", since).
		Find(&attempts).Error
	return attempts, err
}

// UpdateQuestStats rewrites the aggregate success rate and rating columns.
func (r *QuestRepository) UpdateQuestStats(ctx context.Context, questID string, successRate, averageRating float64) error {
	return r.DB.WithContext(ctx).Model(&model.Quest{}).
		Where("id = ?", questID).
		Updates(map[string]interface{}{
			"success_rate":   successRate,
			"average_rating": averageRating,
		}).Error
}
