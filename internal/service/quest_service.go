package service

import (
	"context"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/model"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/util"
	"skilljumper_backend/pkg/logger"
	"skilljumper_backend/pkg/monitoring"
	"skilljumper_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// pipelineStages label the five selection stages in metadata and metrics.
var pipelineStages = []string{
	"candidate_generation",
	"contextual_filtering",
	"multi_factor_scoring",
	"adaptation_generation",
	"finalization",
}

// QuestService orchestrates the selection pipeline and its fallback ladder.
// One call runs candidate generation, contextual filtering, scoring,
// adaptation generation and finalization; recoverable failures retry with
// progressively relaxed criteria before synthesizing a recommendation.
type QuestService struct {
	SelectionTuning
	Catalog    repository.QuestCatalog
	Intent     *IntentService
	Candidates *CandidateService
	Filter     *FilterService
	Scoring    *ScoringService
	Adaptation *AdaptationService
	Finalize   *FinalizeService
	Fallback   *FallbackService
	Clock      Clock
}

func NewQuestService(
	catalog repository.QuestCatalog,
	intent *IntentService,
	candidates *CandidateService,
	filter *FilterService,
	scoring *ScoringService,
	adaptation *AdaptationService,
	finalize *FinalizeService,
	fallback *FallbackService,
	selection config.SelectionConfig,
	clock Clock,
) *QuestService {
	if clock == nil {
		clock = SystemClock()
	}
	s := &QuestService{
		Catalog:    catalog,
		Intent:     intent,
		Candidates: candidates,
		Filter:     filter,
		Scoring:    scoring,
		Adaptation: adaptation,
		Finalize:   finalize,
		Fallback:   fallback,
		Clock:      clock,
	}
	s.Tune(selection)
	return s
}

// SelectOptimalQuest runs one selection call end to end. It always returns a
// recommendation unless the criteria are invalid or a terminal error occurs:
// empty pipeline results walk the fallback ladder instead of failing.
func (s *QuestService) SelectOptimalQuest(ctx context.Context, criteria *model.SelectionCriteria) (*model.Recommendation, error) {
	ctx, span := tracing.Tracer.Start(ctx, "quest.select")
	defer span.End()

	if err := criteria.Validate(); err != nil {
		monitoring.SelectionCounter.WithLabelValues("error").Inc()
		return nil, util.ErrInvalidCriteria
	}
	s.hydrate(ctx, criteria)

	analysis := s.Intent.Analyze(criteria.UserIntent, criteria.UrgencyLevel)
	span.SetAttributes(
		attribute.String("intent.tone", analysis.EmotionalState),
		attribute.StringSlice("intent.categories", analysis.Categories),
	)

	rec, err := s.runPipeline(ctx, criteria, analysis)
	if err == nil {
		monitoring.SelectionCounter.WithLabelValues("selected").Inc()
		return rec, nil
	}

	se, ok := util.AsSelectionError(err)
	if !ok || !se.Recoverable() {
		monitoring.SelectionCounter.WithLabelValues("error").Inc()
		logger.Log.Error("quest selection failed", zap.Error(err))
		return nil, err
	}

	return s.runFallbackLadder(ctx, criteria, analysis, se)
}

// hydrate fills in learning model and recent history when the caller did not
// supply them.
func (s *QuestService) hydrate(ctx context.Context, criteria *model.SelectionCriteria) {
	userID := criteria.Profile.UserID
	if userID == "" {
		return
	}
	if criteria.LearningModel == nil {
		lm, err := s.Catalog.GetLearningModel(ctx, userID)
		if err != nil {
			logger.Log.Warn("learning model load failed, continuing without",
				zap.String("userId", userID), zap.Error(err))
		} else {
			criteria.LearningModel = lm
		}
	}
	if len(criteria.RecentHistory) == 0 {
		history, err := s.Catalog.GetAttemptHistory(ctx, userID, 10)
		if err != nil {
			logger.Log.Warn("attempt history load failed, continuing without",
				zap.String("userId", userID), zap.Error(err))
			return
		}
		for _, a := range history {
			criteria.RecentHistory = append(criteria.RecentHistory, *a)
		}
	}
}

func (s *QuestService) runPipeline(ctx context.Context, criteria *model.SelectionCriteria, analysis model.IntentAnalysis) (*model.Recommendation, error) {
	ctx, span := tracing.Tracer.Start(ctx, "quest.pipeline")
	defer span.End()

	start := s.Clock.Now()
	candidates, err := s.Candidates.Generate(ctx, criteria, analysis)
	monitoring.ObserveStage("candidate_generation", start)
	if err != nil {
		return nil, err
	}
	candidateCount := len(candidates)

	start = s.Clock.Now()
	filtered, err := s.Filter.Apply(candidates, criteria)
	monitoring.ObserveStage("contextual_filtering", start)
	if err != nil {
		return nil, err
	}

	start = s.Clock.Now()
	ranked, err := s.Scoring.ScoreAndRank(ctx, filtered, criteria, analysis)
	monitoring.ObserveStage("multi_factor_scoring", start)
	if err != nil {
		return nil, err
	}
	top := ranked[0]

	start = s.Clock.Now()
	adaptations := s.Adaptation.Generate(top.Quest, criteria)
	monitoring.ObserveStage("adaptation_generation", start)

	var alternatives []*model.Quest
	for _, sq := range ranked[1:] {
		alternatives = append(alternatives, sq.Quest)
		if len(alternatives) == 3 {
			break
		}
	}

	start = s.Clock.Now()
	rec, err := s.Finalize.Finalize(ctx, top, adaptations, criteria, analysis, alternatives)
	monitoring.ObserveStage("finalization", start)
	if err != nil {
		return nil, err
	}

	rec.SelectionMetadata = model.SelectionMetadata{
		AlgorithmVersion: util.AlgorithmVersion,
		SelectionTime:    s.Clock.Now(),
		CandidateCount:   candidateCount,
		FilteringStages:  pipelineStages,
	}

	span.SetAttributes(
		attribute.Int("candidates", candidateCount),
		attribute.Int("ranked", len(ranked)),
		attribute.String("quest.id", top.Quest.ID),
		attribute.Float64("quest.score", top.Score),
	)
	logger.Log.Info("quest selected",
		zap.String("questId", top.Quest.ID),
		zap.String("title", top.Quest.Title),
		zap.Float64("score", top.Score),
		zap.Int("candidates", candidateCount),
		zap.Int("adaptations", len(adaptations)))

	return rec, nil
}

// runFallbackLadder retries with expanded criteria, then relaxed criteria,
// then gives up on the catalog and synthesizes a recommendation.
func (s *QuestService) runFallbackLadder(ctx context.Context, criteria *model.SelectionCriteria, analysis model.IntentAnalysis, cause *util.SelectionError) (*model.Recommendation, error) {
	ctx, span := tracing.Tracer.Start(ctx, "quest.fallback")
	defer span.End()
	span.SetAttributes(attribute.String("cause", cause.Code))

	logger.Log.Info("entering fallback ladder",
		zap.String("cause", cause.Code),
		zap.String("intent", criteria.UserIntent))

	monitoring.FallbackCounter.WithLabelValues("expanded").Inc()
	expanded := s.Fallback.ExpandCriteria(criteria)
	rec, err := s.runPipeline(ctx, expanded, analysis)
	if err == nil {
		monitoring.SelectionCounter.WithLabelValues("fallback_relaxed").Inc()
		return rec, nil
	}
	if se, ok := util.AsSelectionError(err); !ok || !se.Recoverable() {
		monitoring.SelectionCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	monitoring.FallbackCounter.WithLabelValues("relaxed").Inc()
	relaxed := s.Fallback.RelaxCriteria(expanded)
	rec, err = s.runPipeline(ctx, relaxed, analysis)
	if err == nil {
		monitoring.SelectionCounter.WithLabelValues("fallback_relaxed").Inc()
		return rec, nil
	}
	if se, ok := util.AsSelectionError(err); !ok || !se.Recoverable() {
		monitoring.SelectionCounter.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.Fallback.NeedsEmergency(criteria) {
		monitoring.FallbackCounter.WithLabelValues("emergency").Inc()
		monitoring.SelectionCounter.WithLabelValues("fallback_emergency").Inc()
		return s.Fallback.EmergencyRecommendation(criteria), nil
	}
	monitoring.FallbackCounter.WithLabelValues("adaptive").Inc()
	monitoring.SelectionCounter.WithLabelValues("fallback_adaptive").Inc()
	return s.Fallback.AdaptiveRecommendation(criteria, analysis), nil
}
