// Package config loads docvec settings from YAML, then applies environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Embedder types.
const (
	EmbedderHash   = "hash"
	EmbedderOpenAI = "openai"
)

// StorageConfig selects where artifacts live.
type StorageConfig struct {
	Backend        string `yaml:"backend"`
	VectorstoreDir string `yaml:"vectorstore_dir"`
	PDFDir         string `yaml:"pdf_dir"`
	SQLitePath     string `yaml:"sqlite_path"`
}

// OpenAIConfig configures the OpenAI-compatible embedder.
type OpenAIConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
}

// EmbedderConfig selects the embedding provider.
type EmbedderConfig struct {
	Type          string        `yaml:"type"`
	HashDimension int           `yaml:"hash_dimension"`
	OpenAI        *OpenAIConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures page splitting, in runes.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// SearchConfig configures retrieval.
type SearchConfig struct {
	TopK        int `yaml:"top_k"`
	TimeoutSecs int `yaml:"timeout_secs"`
	Parallelism int `yaml:"parallelism"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Chunker  ChunkerConfig  `yaml:"chunker"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads path, falling back to defaults when path is empty or the file
// does not exist, then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFS, BackendSQLite:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Embedder.Type {
	case EmbedderHash, EmbedderOpenAI:
	default:
		return fmt.Errorf("config: unknown embedder %q", c.Embedder.Type)
	}
	if c.Chunker.Size <= 0 {
		return fmt.Errorf("config: chunker size must be positive, got %d", c.Chunker.Size)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size {
		return fmt.Errorf("config: chunker overlap must be in [0, %d), got %d", c.Chunker.Size, c.Chunker.Overlap)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("config: top_k must be positive, got %d", c.Search.TopK)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFS
	}
	if cfg.Storage.VectorstoreDir == "" {
		cfg.Storage.VectorstoreDir = filepath.Join("data", "vectorstore")
	}
	if cfg.Storage.PDFDir == "" {
		cfg.Storage.PDFDir = filepath.Join("data", "pdfs")
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join("data", "docvec.sqlite")
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = EmbedderHash
	}
	if cfg.Embedder.HashDimension == 0 {
		cfg.Embedder.HashDimension = 256
	}
	if cfg.Embedder.Type == EmbedderOpenAI && cfg.Embedder.OpenAI == nil {
		cfg.Embedder.OpenAI = &OpenAIConfig{}
	}
	if o := cfg.Embedder.OpenAI; o != nil {
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.BatchSize == 0 {
			o.BatchSize = 64
		}
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 600
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = 100
		}
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 5
	}
	if cfg.Search.TimeoutSecs == 0 {
		cfg.Search.TimeoutSecs = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setString("DOCVEC_BACKEND", &cfg.Storage.Backend)
	setString("VECTORSTORE_DIR", &cfg.Storage.VectorstoreDir)
	setString("PDF_DIR", &cfg.Storage.PDFDir)
	setString("DOCVEC_SQLITE_PATH", &cfg.Storage.SQLitePath)
	setString("DOCVEC_EMBEDDER", &cfg.Embedder.Type)
	setString("DOCVEC_LOG_LEVEL", &cfg.Log.Level)
	setString("DOCVEC_LOG_FORMAT", &cfg.Log.Format)
	if v, ok := os.LookupEnv("EMBEDDING_MODEL"); ok && strings.TrimSpace(v) != "" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		cfg.Embedder.OpenAI.Model = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("OPENAI_BASE_URL"); ok && strings.TrimSpace(v) != "" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		cfg.Embedder.OpenAI.BaseURL = strings.TrimSpace(v)
	}
	for key, dst := range map[string]*int{
		"TOP_K_RESULTS":      &cfg.Search.TopK,
		"CHUNK_SIZE":         &cfg.Chunker.Size,
		"CHUNK_OVERLAP":      &cfg.Chunker.Overlap,
		"DOCVEC_PARALLELISM": &cfg.Search.Parallelism,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	return nil
}
