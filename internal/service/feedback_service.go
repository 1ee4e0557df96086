package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"
	"skilljumper_backend/pkg/logger"
	"skilljumper_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FeedbackInput is one completed (or abandoned) quest attempt as reported by
// the client. ElapsedMinutes is the wall-clock session length; the attempt's
// start time is reconstructed from it.
type FeedbackInput struct {
	AttemptID string `json:"attemptId,omitempty"`
	QuestID   string `json:"questId" binding:"required"`
	UserID    string `json:"-"`

	Outcome        model.AttemptOutcome `json:"outcome" binding:"required"`
	Feedback       model.UserFeedback   `json:"feedback"`
	ElapsedMinutes int                  `json:"elapsedMinutes"`

	StepsCompleted  []string                  `json:"stepsCompleted,omitempty"`
	AdaptationsUsed []model.QuestModification `json:"adaptationsUsed,omitempty"`
	Barriers        []string                  `json:"barriersEncountered,omitempty"`
	SuccessFactors  []string                  `json:"successFactors,omitempty"`
	HelpRequested   int                       `json:"helpRequested"`

	Context model.UserContext `json:"context"`
}

// FeedbackService is the learner: it records the attempt and folds the
// outcome into the quest's aggregate stats and the user's learning model.
// Updates for one user are serialized through a per-user mutex so concurrent
// submissions never interleave read-modify-write cycles on the model.
type FeedbackService struct {
	SelectionTuning
	Catalog repository.QuestCatalog
	Clock   Clock

	userLocks sync.Map // userID -> *sync.Mutex
	processed sync.Map // attemptID -> struct{}
}

func NewFeedbackService(catalog repository.QuestCatalog, selection config.SelectionConfig, clock Clock) *FeedbackService {
	if clock == nil {
		clock = SystemClock()
	}
	s := &FeedbackService{Catalog: catalog, Clock: clock}
	s.Tune(selection)
	return s
}

func (s *FeedbackService) lockUser(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ProcessFeedback applies one attempt. Resubmissions of the same attempt ID
// are ignored: the attempt record and the learned state change at most once.
func (s *FeedbackService) ProcessFeedback(ctx context.Context, input *FeedbackInput) (*model.QuestAttempt, error) {
	if input.AttemptID != "" {
		if _, dup := s.processed.Load(input.AttemptID); dup {
			return nil, util.ErrDuplicateAttempt
		}
	}

	mu := s.lockUser(input.UserID)
	mu.Lock()
	defer mu.Unlock()

	quest, err := s.Catalog.GetByID(ctx, input.QuestID)
	if err != nil {
		return nil, util.ErrQuestNotFound
	}

	attempt := s.buildAttempt(input)
	if err := s.Catalog.RecordAttempt(ctx, attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrDuplicateAttempt
		}
		return nil, err
	}
	if input.AttemptID != "" {
		s.processed.Store(input.AttemptID, struct{}{})
	}

	success := attempt.Succeeded()

	if err := s.updateQuestStats(ctx, quest, attempt, success); err != nil {
		logger.Log.Error("quest stat update failed",
			zap.String("questId", quest.ID), zap.Error(err))
	}

	if err := s.updateLearningModel(ctx, quest, attempt, success); err != nil {
		logger.Log.Error("learning model update failed",
			zap.String("userId", input.UserID), zap.Error(err))
		return nil, err
	}

	monitoring.FeedbackCounter.WithLabelValues(string(attempt.Outcome)).Inc()
	logger.Log.Info("feedback processed",
		zap.String("userId", input.UserID),
		zap.String("questId", input.QuestID),
		zap.String("outcome", string(attempt.Outcome)))

	return attempt, nil
}

// AttemptHistory returns the user's most recent attempts, newest first.
func (s *FeedbackService) AttemptHistory(ctx context.Context, userID string, limit int) ([]*model.QuestAttempt, error) {
	return s.Catalog.GetAttemptHistory(ctx, userID, limit)
}

// LearningModel returns the user's current learning model, creating a
// cold-start model for first-time users.
func (s *FeedbackService) LearningModel(ctx context.Context, userID string) (*model.LearningModel, error) {
	return s.Catalog.GetLearningModel(ctx, userID)
}

func (s *FeedbackService) buildAttempt(input *FeedbackInput) *model.QuestAttempt {
	end := s.Clock.Now()
	elapsed := input.ElapsedMinutes
	if elapsed <= 0 {
		elapsed = 1
	}
	start := end.Add(-time.Duration(elapsed) * time.Minute)

	return &model.QuestAttempt{
		UUIDBase: model.UUIDBase{ID: input.AttemptID},
		QuestID:  input.QuestID,
		UserID:   input.UserID,

		StartTime: start,
		EndTime:   &end,

		Outcome:              input.Outcome,
		CompletionPercentage: input.Outcome.CompletionPercentage(),
		StepsCompleted:       input.StepsCompleted,

		UserFeedback: input.Feedback,

		ContextAttempt:           input.Context,
		EnvironmentDuringAttempt: inferEnvironmentFromContext(input.Context),

		AdaptationsUsed: input.AdaptationsUsed,
		SupportUsed:     input.Context.SupportAvailable,
		HelpRequested:   input.HelpRequested,

		TimeSpent:           elapsed,
		BarriersEncountered: input.Barriers,
		SuccessFactors:      input.SuccessFactors,
	}
}

// inferEnvironmentFromContext reconstructs the physical surroundings from
// the situational snapshot when the client did not report them separately.
func inferEnvironmentFromContext(uc model.UserContext) model.EnvironmentalFactors {
	noise := "moderate"
	switch uc.SensoryEnvironment {
	case "calm", "quiet":
		noise = "quiet"
	case "busy", "loud":
		noise = "noisy"
	case "overwhelming":
		noise = "overwhelming"
	}
	return model.EnvironmentalFactors{
		Location:    uc.CurrentLocation,
		NoiseLevel:  noise,
		SafetyLevel: "high",
	}
}

func (s *FeedbackService) updateQuestStats(ctx context.Context, quest *model.Quest, attempt *model.QuestAttempt, success bool) error {
	sel := s.Selection()
	rate := BlendRate(quest.SuccessRate, success, sel.QuestSuccessDecay)
	if err := s.Catalog.UpdateQuestStats(ctx, quest.ID, rate, quest.AverageRating); err != nil {
		return err
	}

	decay := sel.CompletionPatternDecay
	patterns := quest.CompletionPatterns
	patterns.TimeOfDay = blendPattern(patterns.TimeOfDay, string(attempt.ContextAttempt.TimeOfDay), success, decay)
	patterns.EnergyLevel = blendPattern(patterns.EnergyLevel, string(attempt.ContextAttempt.EnergyLevel), success, decay)
	patterns.SupportLevel = blendPattern(patterns.SupportLevel, string(attempt.SupportUsed.Type), success, decay)
	return s.Catalog.UpdateCompletionPatterns(ctx, quest.ID, patterns)
}

// BlendRate decays a running rate toward the latest outcome:
// new = decay*old + (1-decay)*observation.
func BlendRate(old float64, success bool, decay float64) float64 {
	if success {
		return old*decay + (1 - decay)
	}
	return old * decay
}

// blendPattern updates one completion-pattern entry. First observation of a
// context value starts at the 0.5 neutral prior.
func blendPattern(m map[string]float64, key string, success bool, decay float64) map[string]float64 {
	if key == "" {
		return m
	}
	if m == nil {
		m = map[string]float64{}
	}
	if _, seen := m[key]; !seen {
		m[key] = 0.5
		return m
	}
	m[key] = BlendRate(m[key], success, decay)
	return m
}

func (s *FeedbackService) updateLearningModel(ctx context.Context, quest *model.Quest, attempt *model.QuestAttempt, success bool) error {
	lm, err := s.Catalog.GetLearningModel(ctx, attempt.UserID)
	if err != nil {
		return err
	}

	s.updateLearningPatterns(lm, quest, attempt, success)
	s.updateCategoryPerformance(lm, quest, attempt, success)
	s.updateAdaptationEffectiveness(lm, attempt)

	lm.ConfidenceLevel = util.Clamp(lm.ConfidenceLevel+0.05, 0, 1)
	lm.LastUpdated = s.Clock.Now()

	return s.Catalog.SaveLearningModel(ctx, lm)
}

// updateLearningPatterns adjusts difficulty targeting and preference lists
// from one attempt.
func (s *FeedbackService) updateLearningPatterns(lm *model.LearningModel, quest *model.Quest, attempt *model.QuestAttempt, success bool) {
	p := &lm.LearningPatterns

	// A completed quest the user found easy means the target can move up; an
	// abandoned quest the user found hard means it must come down faster.
	sel := s.Selection()
	if attempt.Outcome == model.OutcomeCompleted && attempt.UserFeedback.Difficulty < 3 {
		p.OptimalDifficulty = util.Clamp(p.OptimalDifficulty+sel.EasyCompletionStep, 1, 100)
	}
	if attempt.Outcome == model.OutcomeAbandoned && attempt.UserFeedback.Difficulty > 4 {
		p.OptimalDifficulty = util.Clamp(p.OptimalDifficulty-sel.HardAbandonmentStep, 1, 100)
	}

	if attempt.UserFeedback.Enjoyment >= 4 {
		p.MotivationalFactors = unionStrings(p.MotivationalFactors, quest.Tags)
	}

	if success && attempt.UserFeedback.Difficulty <= 3 {
		p.PeakPerformanceTimes = unionStrings(p.PeakPerformanceTimes,
			[]string{string(attempt.ContextAttempt.TimeOfDay)})
	}
}

// updateCategoryPerformance folds the attempt into the per-category record.
func (s *FeedbackService) updateCategoryPerformance(lm *model.LearningModel, quest *model.Quest, attempt *model.QuestAttempt, success bool) {
	if lm.HistoricalPerformance == nil {
		lm.HistoricalPerformance = map[string]model.CategoryPerformance{}
	}
	key := string(quest.Category)
	perf := lm.HistoricalPerformance[key]

	perf.AverageSuccess = BlendRate(perf.AverageSuccess, success, s.Selection().CategoryPerformanceDecay)
	if success {
		perf.PreferredTimeOfDay = unionTimes(perf.PreferredTimeOfDay, attempt.ContextAttempt.TimeOfDay)
	}
	perf.CommonStruggles = unionStrings(perf.CommonStruggles, attempt.BarriersEncountered)

	lm.HistoricalPerformance[key] = perf
}

// updateAdaptationEffectiveness tracks how well each adaptation family
// worked, keyed by target_action.
func (s *FeedbackService) updateAdaptationEffectiveness(lm *model.LearningModel, attempt *model.QuestAttempt) {
	if len(attempt.AdaptationsUsed) == 0 {
		return
	}
	if lm.AdaptationEffectiveness == nil {
		lm.AdaptationEffectiveness = map[string]model.AdaptationEffect{}
	}

	effectiveness := AdaptationAttemptEffectiveness(attempt)
	satisfaction := float64(attempt.UserFeedback.Helpfulness) / 5

	for _, a := range attempt.AdaptationsUsed {
		key := a.Key()
		eff, seen := lm.AdaptationEffectiveness[key]
		if !seen {
			lm.AdaptationEffectiveness[key] = model.AdaptationEffect{
				SuccessRate:      effectiveness,
				UserSatisfaction: satisfaction,
				UsageFrequency:   1,
				ContextFactors: []string{
					string(attempt.ContextAttempt.EnergyLevel),
					string(attempt.ContextAttempt.StressLevel),
				},
			}
			continue
		}
		decay := s.Selection().AdaptationEffectDecay
		eff.SuccessRate = eff.SuccessRate*decay + effectiveness*(1-decay)
		eff.UserSatisfaction = eff.UserSatisfaction*decay + satisfaction*(1-decay)
		eff.UsageFrequency++
		lm.AdaptationEffectiveness[key] = eff
	}
}

// AdaptationAttemptEffectiveness scores how well the adaptations served one
// attempt, in [0,1].
func AdaptationAttemptEffectiveness(attempt *model.QuestAttempt) float64 {
	score := 0.5
	if attempt.Outcome == model.OutcomeCompleted {
		score += 0.3
	}
	if d := attempt.UserFeedback.Difficulty; d >= 2 && d <= 4 {
		score += 0.2
	}
	if attempt.UserFeedback.Clarity >= 4 {
		score += 0.2
	}
	return util.Clamp(score, 0, 1)
}

func unionStrings(existing, add []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s] = true
	}
	for _, s := range add {
		if s != "" && !seen[s] {
			existing = append(existing, s)
			seen[s] = true
		}
	}
	return existing
}

func unionTimes(existing []model.TimeOfDay, add model.TimeOfDay) []model.TimeOfDay {
	if add == "" {
		return existing
	}
	for _, t := range existing {
		if t == add {
			return existing
		}
	}
	return append(existing, add)
}
