package config

import "time"

// Config represents the main configuration structure
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Training  TrainingConfig  `yaml:"training" mapstructure:"training"`
	Generator GeneratorConfig `yaml:"generator" mapstructure:"generator"`
	Privacy   PrivacyConfig   `yaml:"privacy" mapstructure:"privacy"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Audit     AuditConfig     `yaml:"audit" mapstructure:"audit"`
	Archive   ArchiveConfig   `yaml:"archive" mapstructure:"archive"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// PipelineConfig controls the generation/anonymization loop
type PipelineConfig struct {
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	MinRecords  int           `yaml:"min_records" mapstructure:"min_records"`
	MaxRecords  int           `yaml:"max_records" mapstructure:"max_records"`
	DatasetFile string        `yaml:"dataset_file" mapstructure:"dataset_file"`
}

// TrainingConfig locates the labeled example corpus
type TrainingConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// GeneratorConfig controls the batch text generation boundary
type GeneratorConfig struct {
	Model               string  `yaml:"model" mapstructure:"model"`
	MaxTokens           int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature         float32 `yaml:"temperature" mapstructure:"temperature"`
	ExamplesPerCategory int     `yaml:"examples_per_category" mapstructure:"examples_per_category"`
	RateLimit           float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // calls per second
	RateBurst           int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// PrivacyConfig contains PII detection and masking configuration
type PrivacyConfig struct {
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`
	Detectors []string `yaml:"detectors" mapstructure:"detectors"`
	Sentinel  string   `yaml:"sentinel" mapstructure:"sentinel"`
	Names     struct {
		Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
		ModelPath string `yaml:"model_path" mapstructure:"model_path"`
	} `yaml:"names" mapstructure:"names"`
}

// EnrichConfig controls the downstream scoring and reasoning stages
type EnrichConfig struct {
	Interval            time.Duration `yaml:"interval" mapstructure:"interval"`
	ScoreModel          string        `yaml:"score_model" mapstructure:"score_model"`
	ReasonModel         string        `yaml:"reason_model" mapstructure:"reason_model"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
	ScoredFile          string        `yaml:"scored_file" mapstructure:"scored_file"`
	FinalFile           string        `yaml:"final_file" mapstructure:"final_file"`
	ReviewFile          string        `yaml:"review_file" mapstructure:"review_file"`
}

// DashboardConfig contains HTTP server configuration for the review surface
type DashboardConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	WebSocket    struct {
		Enabled              bool `yaml:"enabled" mapstructure:"enabled"`
		BroadcastSignals     bool `yaml:"broadcast_signals" mapstructure:"broadcast_signals"`
		BroadcastResolutions bool `yaml:"broadcast_resolutions" mapstructure:"broadcast_resolutions"`
		BroadcastSystem      bool `yaml:"broadcast_system" mapstructure:"broadcast_system"`
		BroadcastConnections bool `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
	} `yaml:"websocket" mapstructure:"websocket"`
}

// AuditConfig selects the audit log backend
type AuditConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"` // memory or redis
	RedisURL  string `yaml:"redis_url" mapstructure:"redis_url"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ArchiveConfig contains the optional PostgreSQL archive configuration
type ArchiveConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	DatabaseURL     string        `yaml:"database_url" mapstructure:"database_url"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
		Path     string `yaml:"path" mapstructure:"path"`
		MaxSize  int    `yaml:"max_size" mapstructure:"max_size"`
		MaxAge   int    `yaml:"max_age" mapstructure:"max_age"`
		Compress bool   `yaml:"compress" mapstructure:"compress"`
	} `yaml:"file" mapstructure:"file"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	cfg := &Config{
		Pipeline: PipelineConfig{
			Interval:    20 * time.Second,
			MinRecords:  1,
			MaxRecords:  3,
			DatasetFile: "data/synthetic_dataset.json",
		},
		Training: TrainingConfig{
			File: "data/training_data.csv",
		},
		Generator: GeneratorConfig{
			Model:               "gpt-4o-mini",
			MaxTokens:           500,
			Temperature:         0.9,
			ExamplesPerCategory: 3,
			RateLimit:           1,
			RateBurst:           1,
		},
		Privacy: PrivacyConfig{
			Enabled:   true,
			Detectors: []string{"all"},
			Sentinel:  "<MASKED>",
		},
		Enrich: EnrichConfig{
			Interval:            30 * time.Second,
			ScoreModel:          "gpt-4o",
			ReasonModel:         "gpt-4",
			ConfidenceThreshold: 0.70,
			ScoredFile:          "data/signals_output.json",
			FinalFile:           "data/signals_final_output.json",
			ReviewFile:          "data/review_queue.json",
		},
		Dashboard: DashboardConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Audit: AuditConfig{
			Backend:   "memory",
			RedisURL:  "redis://localhost:6379/0",
			KeyPrefix: "sentinel:audit",
		},
		Archive: ArchiveConfig{
			Enabled:         false,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	cfg.Privacy.Names.Enabled = true

	cfg.Dashboard.WebSocket.Enabled = true
	cfg.Dashboard.WebSocket.BroadcastSignals = true
	cfg.Dashboard.WebSocket.BroadcastResolutions = true
	cfg.Dashboard.WebSocket.BroadcastSystem = true
	cfg.Dashboard.WebSocket.BroadcastConnections = true

	cfg.Logging.File.Path = "logs/sentinel.log"
	cfg.Logging.File.MaxSize = 100 // MB
	cfg.Logging.File.MaxAge = 30   // days
	cfg.Logging.File.Compress = true

	return cfg
}
