package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Selection SelectionConfig `mapstructure:"selection"`

	// Runtime flags (set from the command line, not the config file).
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioUseSSL   bool   `mapstructure:"minio_use_ssl"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SelectionConfig carries the tuning constants of the quest selection
// pipeline and the feedback learner. The blend weights and thresholds are
// calibration values, not derivable from behavior, so they live in config
// where deployments can adjust them without a rebuild.
type SelectionConfig struct {
	// Candidate generation
	MaxCandidates        int `mapstructure:"max_candidates"`
	SkillDevelopmentMin  int `mapstructure:"skill_development_min"`
	SkillDevelopmentMax  int `mapstructure:"skill_development_max"`
	SkillStruggleCeiling int `mapstructure:"skill_struggle_ceiling"`

	// Scoring
	OptimalSkillGap      float64 `mapstructure:"optimal_skill_gap"`
	DifficultyBand       float64 `mapstructure:"difficulty_band"`
	OptimalDifficultyGap float64 `mapstructure:"optimal_difficulty_gap"`

	// Adaptation
	MaxAdaptations int `mapstructure:"max_adaptations"`

	// Feedback learner exponential blends: new = decay*old + (1-decay)*observation
	QuestSuccessDecay        float64 `mapstructure:"quest_success_decay"`
	CompletionPatternDecay   float64 `mapstructure:"completion_pattern_decay"`
	CategoryPerformanceDecay float64 `mapstructure:"category_performance_decay"`
	AdaptationEffectDecay    float64 `mapstructure:"adaptation_effect_decay"`

	// Optimal-difficulty nudges applied by the feedback learner
	EasyCompletionStep  float64 `mapstructure:"easy_completion_step"`
	HardAbandonmentStep float64 `mapstructure:"hard_abandonment_step"`
}

func setSelectionDefaults() {
	viper.SetDefault("selection.max_candidates", 50)
	viper.SetDefault("selection.skill_development_min", 30)
	viper.SetDefault("selection.skill_development_max", 80)
	viper.SetDefault("selection.skill_struggle_ceiling", 40)
	viper.SetDefault("selection.optimal_skill_gap", 20)
	viper.SetDefault("selection.difficulty_band", 20)
	viper.SetDefault("selection.optimal_difficulty_gap", 15)
	viper.SetDefault("selection.max_adaptations", 5)
	viper.SetDefault("selection.quest_success_decay", 0.95)
	viper.SetDefault("selection.completion_pattern_decay", 0.9)
	viper.SetDefault("selection.category_performance_decay", 0.8)
	viper.SetDefault("selection.adaptation_effect_decay", 0.7)
	viper.SetDefault("selection.easy_completion_step", 2)
	viper.SetDefault("selection.hard_abandonment_step", 5)
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("SKILLJUMPER")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	setSelectionDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

// DefaultSelection returns the shipped tuning values, for tests and for
// callers constructing services without a config file.
func DefaultSelection() SelectionConfig {
	return SelectionConfig{
		MaxCandidates:            50,
		SkillDevelopmentMin:      30,
		SkillDevelopmentMax:      80,
		SkillStruggleCeiling:     40,
		OptimalSkillGap:          20,
		DifficultyBand:           20,
		OptimalDifficultyGap:     15,
		MaxAdaptations:           5,
		QuestSuccessDecay:        0.95,
		CompletionPatternDecay:   0.9,
		CategoryPerformanceDecay: 0.8,
		AdaptationEffectDecay:    0.7,
		EasyCompletionStep:       2,
		HardAbandonmentStep:      5,
	}
}
