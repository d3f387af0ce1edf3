package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configure viper
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	} else {
		// Look for config in standard locations
		v.SetConfigName("default")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sentinel")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// Config file not found, use defaults
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults mirrors GetDefaults into viper so env overrides work
func setDefaults(v *viper.Viper) {
	defaults := GetDefaults()

	v.SetDefault("pipeline.interval", defaults.Pipeline.Interval)
	v.SetDefault("pipeline.min_records", defaults.Pipeline.MinRecords)
	v.SetDefault("pipeline.max_records", defaults.Pipeline.MaxRecords)
	v.SetDefault("pipeline.dataset_file", defaults.Pipeline.DatasetFile)

	v.SetDefault("training.file", defaults.Training.File)

	v.SetDefault("generator.model", defaults.Generator.Model)
	v.SetDefault("generator.max_tokens", defaults.Generator.MaxTokens)
	v.SetDefault("generator.temperature", defaults.Generator.Temperature)
	v.SetDefault("generator.examples_per_category", defaults.Generator.ExamplesPerCategory)
	v.SetDefault("generator.rate_limit", defaults.Generator.RateLimit)
	v.SetDefault("generator.rate_burst", defaults.Generator.RateBurst)

	v.SetDefault("privacy.enabled", defaults.Privacy.Enabled)
	v.SetDefault("privacy.detectors", defaults.Privacy.Detectors)
	v.SetDefault("privacy.sentinel", defaults.Privacy.Sentinel)
	v.SetDefault("privacy.names.enabled", defaults.Privacy.Names.Enabled)
	v.SetDefault("privacy.names.model_path", defaults.Privacy.Names.ModelPath)

	v.SetDefault("enrich.interval", defaults.Enrich.Interval)
	v.SetDefault("enrich.score_model", defaults.Enrich.ScoreModel)
	v.SetDefault("enrich.reason_model", defaults.Enrich.ReasonModel)
	v.SetDefault("enrich.confidence_threshold", defaults.Enrich.ConfidenceThreshold)
	v.SetDefault("enrich.scored_file", defaults.Enrich.ScoredFile)
	v.SetDefault("enrich.final_file", defaults.Enrich.FinalFile)
	v.SetDefault("enrich.review_file", defaults.Enrich.ReviewFile)

	v.SetDefault("dashboard.port", defaults.Dashboard.Port)
	v.SetDefault("dashboard.read_timeout", defaults.Dashboard.ReadTimeout)
	v.SetDefault("dashboard.write_timeout", defaults.Dashboard.WriteTimeout)
	v.SetDefault("dashboard.idle_timeout", defaults.Dashboard.IdleTimeout)
	v.SetDefault("dashboard.websocket.enabled", defaults.Dashboard.WebSocket.Enabled)
	v.SetDefault("dashboard.websocket.broadcast_signals", defaults.Dashboard.WebSocket.BroadcastSignals)
	v.SetDefault("dashboard.websocket.broadcast_resolutions", defaults.Dashboard.WebSocket.BroadcastResolutions)
	v.SetDefault("dashboard.websocket.broadcast_system", defaults.Dashboard.WebSocket.BroadcastSystem)
	v.SetDefault("dashboard.websocket.broadcast_connections", defaults.Dashboard.WebSocket.BroadcastConnections)

	v.SetDefault("audit.backend", defaults.Audit.Backend)
	v.SetDefault("audit.redis_url", defaults.Audit.RedisURL)
	v.SetDefault("audit.key_prefix", defaults.Audit.KeyPrefix)

	v.SetDefault("archive.enabled", defaults.Archive.Enabled)
	v.SetDefault("archive.database_url", defaults.Archive.DatabaseURL)
	v.SetDefault("archive.max_open_conns", defaults.Archive.MaxOpenConns)
	v.SetDefault("archive.max_idle_conns", defaults.Archive.MaxIdleConns)
	v.SetDefault("archive.conn_max_lifetime", defaults.Archive.ConnMaxLifetime)
	v.SetDefault("archive.conn_max_idle_time", defaults.Archive.ConnMaxIdleTime)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file.enabled", defaults.Logging.File.Enabled)
	v.SetDefault("logging.file.path", defaults.Logging.File.Path)
	v.SetDefault("logging.file.max_size", defaults.Logging.File.MaxSize)
	v.SetDefault("logging.file.max_age", defaults.Logging.File.MaxAge)
	v.SetDefault("logging.file.compress", defaults.Logging.File.Compress)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Pipeline.MinRecords < 1 {
		return fmt.Errorf("pipeline min_records must be at least 1, got %d", config.Pipeline.MinRecords)
	}
	if config.Pipeline.MaxRecords < config.Pipeline.MinRecords {
		return fmt.Errorf("pipeline max_records (%d) must be >= min_records (%d)",
			config.Pipeline.MaxRecords, config.Pipeline.MinRecords)
	}
	if config.Pipeline.Interval <= 0 {
		return fmt.Errorf("pipeline interval must be positive, got %v", config.Pipeline.Interval)
	}
	if config.Pipeline.DatasetFile == "" {
		return fmt.Errorf("pipeline dataset_file is required")
	}

	if config.Training.File == "" {
		return fmt.Errorf("training file is required")
	}

	if config.Generator.Model == "" {
		return fmt.Errorf("generator model is required")
	}
	if config.Generator.MaxTokens < 1 {
		return fmt.Errorf("generator max_tokens must be positive, got %d", config.Generator.MaxTokens)
	}
	if config.Generator.ExamplesPerCategory < 0 {
		return fmt.Errorf("generator examples_per_category must be non-negative, got %d",
			config.Generator.ExamplesPerCategory)
	}

	if config.Privacy.Sentinel == "" {
		return fmt.Errorf("privacy sentinel token is required")
	}

	if config.Enrich.Interval <= 0 {
		return fmt.Errorf("enrich interval must be positive, got %v", config.Enrich.Interval)
	}
	if config.Enrich.ConfidenceThreshold < 0 || config.Enrich.ConfidenceThreshold > 1 {
		return fmt.Errorf("enrich confidence_threshold must be in [0,1], got %f",
			config.Enrich.ConfidenceThreshold)
	}

	if config.Dashboard.Port < 1 || config.Dashboard.Port > 65535 {
		return fmt.Errorf("invalid dashboard port: %d", config.Dashboard.Port)
	}

	switch config.Audit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid audit backend: %s (must be memory or redis)", config.Audit.Backend)
	}
	if config.Audit.Backend == "redis" && config.Audit.RedisURL == "" {
		return fmt.Errorf("audit redis_url is required when backend is redis")
	}

	if config.Archive.Enabled && config.Archive.DatabaseURL == "" {
		return fmt.Errorf("archive database_url is required when archive is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[config.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}

// Watch watches for configuration changes and calls the callback
func Watch(configPath string, callback func(*Config)) error {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config for watching: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var config Config
		if err := v.Unmarshal(&config); err != nil {
			return // keep running on the previous config
		}
		if err := validateConfig(&config); err != nil {
			return
		}
		callback(&config)
	})

	return nil
}
