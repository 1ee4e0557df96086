package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skilljumper_backend/internal/config"
	"skilljumper_backend/internal/controller"
	"skilljumper_backend/internal/repository"
	"skilljumper_backend/internal/service"
	"skilljumper_backend/internal/util"
	"skilljumper_backend/pkg/configwatcher"
	"skilljumper_backend/pkg/database"
	"skilljumper_backend/pkg/logger"
	"skilljumper_backend/pkg/monitoring"
	"skilljumper_backend/pkg/security"
	"skilljumper_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services *services
}

type repositories struct {
	user    *repository.UserRepository
	profile *repository.ProfileRepository
	quest   *repository.QuestRepository
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	storage  *service.StorageService
	catalog  *service.CatalogService
	quest    *service.QuestService
	feedback *service.FeedbackService
}

type controllers struct {
	auth   *controller.AuthController
	user   *controller.UserController
	quest  *controller.QuestController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		profile: repository.NewProfileRepository(db),
		quest:   repository.NewQuestRepository(db, rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.profile)
	s.catalog = service.NewCatalogService(repos.quest, s.storage)

	clock := service.SystemClock()
	sel := cfg.Selection

	intent := service.NewIntentService()
	candidates := service.NewCandidateService(repos.quest, intent, sel)
	filter := service.NewFilterService()
	scoring := service.NewScoringService(sel)
	adaptation := service.NewAdaptationService(sel)
	finalize := service.NewFinalizeService(repos.quest, sel, clock, nil)
	fallback := service.NewFallbackService(sel, clock)

	s.quest = service.NewQuestService(repos.quest, intent, candidates, filter, scoring, adaptation, finalize, fallback, sel, clock)
	s.feedback = service.NewFeedbackService(repos.quest, sel, clock)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth, s.user),
		user:   controller.NewUserController(s.user),
		quest:  controller.NewQuestController(s.quest, s.feedback, s.catalog, s.user),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the rating recompute loop (every hour the quests
// touched by recent attempts get their average rating rebuilt from attempt
// feedback) and the config watcher for live selection tuning.
func (a *App) startBackgroundTasks(repos *repositories) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		for range ticker.C {
			a.recomputeRatings(repos.quest)
		}
	}()

	go configwatcher.WatchConfig("configs/config.yaml", a.Config, a.applySelectionTuning)
}

// applySelectionTuning publishes reloaded selection parameters to the running
// pipeline services. Server, database and storage settings still require a
// restart.
func (a *App) applySelectionTuning(raw interface{}) {
	newCfg, ok := raw.(*config.Config)
	if !ok {
		return
	}
	sel := newCfg.Selection

	a.services.quest.Tune(sel)
	a.services.quest.Candidates.Tune(sel)
	a.services.quest.Scoring.Tune(sel)
	a.services.quest.Adaptation.Tune(sel)
	a.services.quest.Finalize.Tune(sel)
	a.services.quest.Fallback.Tune(sel)
	a.services.feedback.Tune(sel)

	logger.Log.Info("selection tuning reloaded from config")
}

func (a *App) recomputeRatings(questRepo *repository.QuestRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	attempts, err := questRepo.RecentAttempts(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		logger.Log.Error("rating recompute: attempt fetch failed", zap.Error(err))
		return
	}

	type agg struct {
		sum   float64
		count int
	}
	byQuest := map[string]*agg{}
	for _, att := range attempts {
		// Enjoyment is the closest proxy for a 1-5 quest rating.
		if att.UserFeedback.Enjoyment == 0 {
			continue
		}
		q := byQuest[att.QuestID]
		if q == nil {
			q = &agg{}
			byQuest[att.QuestID] = q
		}
		q.sum += float64(att.UserFeedback.Enjoyment)
		q.count++
	}

	for questID, q := range byQuest {
		quest, err := questRepo.GetByID(ctx, questID)
		if err != nil {
			continue
		}
		recent := q.sum / float64(q.count)
		rating := quest.AverageRating*0.9 + recent*0.1
		if quest.AverageRating == 0 {
			rating = recent
		}
		if err := questRepo.UpdateQuestStats(ctx, questID, quest.SuccessRate, rating); err != nil {
			logger.Log.Error("rating recompute: update failed",
				zap.String("questId", questID), zap.Error(err))
		}
	}
	if len(byQuest) > 0 {
		logger.Log.Info("quest ratings recomputed", zap.Int("quests", len(byQuest)))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("skilljumper-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(repos)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
