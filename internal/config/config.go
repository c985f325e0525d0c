package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "SPACE_AGENT_CONFIG"
	hfTokenEnv     = "HF_TOKEN"
	hfModelEnv     = "HF_MODEL"
	maxConcEnv     = "MAX_CONC"
	chunkSizeEnv   = "CHUNK_SIZE"
	targetWordsEnv = "TARGET_WORDS"
	fetchLimitEnv  = "FETCH_LIMIT"
	outputPathEnv  = "OUTPUT_PATH"
	databaseDSNEnv = "DATABASE_DSN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Inference InferenceConfig `yaml:"inference"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Storage   StorageConfig   `yaml:"storage"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// InferenceConfig describes the summarization backend.
type InferenceConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	Token   string `yaml:"token"`
}

// Endpoint resolves the full per-model inference URL.
func (c InferenceConfig) Endpoint() string {
	return fmt.Sprintf("%s/%s", c.BaseURL, c.Model)
}

// PipelineConfig tunes the enrichment run.
type PipelineConfig struct {
	MaxConcurrent   int `yaml:"maxConcurrent"`
	ChunkChars      int `yaml:"chunkChars"`
	TargetWords     int `yaml:"targetWords"`
	Retries         int `yaml:"retries"`
	FetchLimit      int `yaml:"fetchLimit"`
	MaxEmptyRetries int `yaml:"maxEmptyRetries"`
	TimeoutSeconds  int `yaml:"timeoutSeconds"`
}

// Timeout is the total-duration cap applied to each HTTP operation.
func (p PipelineConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// StorageConfig selects and parameterizes the snapshot store.
type StorageConfig struct {
	Backend      string `yaml:"backend"` // "file" or "postgres"
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	SnapshotName string `yaml:"snapshotName"`
}

// SchedulerConfig defines optional recurring runs.
type SchedulerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

// IntervalDuration parses the configured interval, defaulting to 6h.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 6 * time.Hour
	}
	return d
}

// SourceConfig describes a single upstream list source with its strategy.
type SourceConfig struct {
	Name     string            `yaml:"name"`
	Strategy string            `yaml:"strategy"`
	URL      string            `yaml:"url"`
	Limit    int               `yaml:"limit"`
	Options  map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

// Validate enforces fatal startup conditions before any work begins.
func (c Config) Validate() error {
	if c.Inference.Token == "" {
		return fmt.Errorf("inference token is required (set %s)", hfTokenEnv)
	}
	if c.Storage.Backend == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("postgres backend selected but no DSN configured (set %s)", databaseDSNEnv)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(hfTokenEnv); v != "" {
		c.Inference.Token = v
	}
	if v := os.Getenv(hfModelEnv); v != "" {
		c.Inference.Model = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(outputPathEnv); v != "" {
		c.Storage.Path = v
	}

	overrideInt(maxConcEnv, &c.Pipeline.MaxConcurrent)
	overrideInt(chunkSizeEnv, &c.Pipeline.ChunkChars)
	overrideInt(targetWordsEnv, &c.Pipeline.TargetWords)
	overrideInt(fetchLimitEnv, &c.Pipeline.FetchLimit)
}

func overrideInt(env string, target *int) {
	v := os.Getenv(env)
	if v == "" {
		return
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, keeping %d", env, v, *target)
		return
	}
	*target = parsed
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Inference.BaseURL != "" {
		base.Inference.BaseURL = override.Inference.BaseURL
	}
	if override.Inference.Model != "" {
		base.Inference.Model = override.Inference.Model
	}
	if override.Inference.Token != "" {
		base.Inference.Token = override.Inference.Token
	}

	if override.Pipeline.MaxConcurrent > 0 {
		base.Pipeline.MaxConcurrent = override.Pipeline.MaxConcurrent
	}
	if override.Pipeline.ChunkChars > 0 {
		base.Pipeline.ChunkChars = override.Pipeline.ChunkChars
	}
	if override.Pipeline.TargetWords > 0 {
		base.Pipeline.TargetWords = override.Pipeline.TargetWords
	}
	if override.Pipeline.Retries > 0 {
		base.Pipeline.Retries = override.Pipeline.Retries
	}
	if override.Pipeline.FetchLimit > 0 {
		base.Pipeline.FetchLimit = override.Pipeline.FetchLimit
	}
	if override.Pipeline.MaxEmptyRetries > 0 {
		base.Pipeline.MaxEmptyRetries = override.Pipeline.MaxEmptyRetries
	}
	if override.Pipeline.TimeoutSeconds > 0 {
		base.Pipeline.TimeoutSeconds = override.Pipeline.TimeoutSeconds
	}

	if override.Storage.Backend != "" {
		base.Storage.Backend = override.Storage.Backend
	}
	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.SnapshotName != "" {
		base.Storage.SnapshotName = override.Storage.SnapshotName
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Inference: InferenceConfig{
			BaseURL: "https://api-inference.huggingface.co/models",
			Model:   "facebook/bart-large-cnn",
		},
		Pipeline: PipelineConfig{
			MaxConcurrent:  6,
			ChunkChars:     2000,
			TargetWords:    1000,
			Retries:        3,
			FetchLimit:     48,
			TimeoutSeconds: 60,
		},
		Storage: StorageConfig{
			Backend:      "file",
			Path:         "public/space_news.json",
			SnapshotName: "space_news",
		},
		Scheduler: SchedulerConfig{Enabled: false, Interval: "6h"},
		Sources: []SourceConfig{
			{
				Name:     "spaceflight-news",
				Strategy: "spaceflightnews",
				URL:      "https://api.spaceflightnewsapi.net/v4/articles/",
			},
		},
	}
}
