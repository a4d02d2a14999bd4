package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the docchat API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Index      IndexConfig      `yaml:"index"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port           int `yaml:"port"`
	ReadTimeoutSec int `yaml:"read_timeout_sec"`
	ShutdownSec    int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the vector store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig identifies the externally maintained vector index.
type IndexConfig struct {
	Name string `yaml:"name"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	BatchSize     int    `yaml:"batch_size"`
	CacheCapacity int    `yaml:"cache_capacity"`
}

// GenerationConfig holds text-generation provider settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	Stream      bool    `yaml:"stream"`
}

// PipelineConfig holds retrieval and caching parameters.
type PipelineConfig struct {
	TopK                  int     `yaml:"top_k"`
	VectorWeight          float64 `yaml:"vector_weight"`
	KeywordWeight         float64 `yaml:"keyword_weight"`
	QueryCacheCapacity    int     `yaml:"query_cache_capacity"`
	ResponseCacheCapacity int     `yaml:"response_cache_capacity"`
	ResponseCacheTTLSec   int     `yaml:"response_cache_ttl_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.Name == "" {
		c.Index.Name = "docchat_chunks"
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 32
	}
	if c.Embedding.CacheCapacity <= 0 {
		c.Embedding.CacheCapacity = 1000
	}
	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "llama-3.3-70b-versatile"
	}
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.7
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 1024
	}
	if c.Pipeline.TopK <= 0 {
		c.Pipeline.TopK = 3
	}
	if c.Pipeline.VectorWeight <= 0 {
		c.Pipeline.VectorWeight = 0.7
	}
	if c.Pipeline.KeywordWeight <= 0 {
		c.Pipeline.KeywordWeight = 0.3
	}
	if c.Pipeline.QueryCacheCapacity <= 0 {
		c.Pipeline.QueryCacheCapacity = 1000
	}
	if c.Pipeline.ResponseCacheCapacity <= 0 {
		c.Pipeline.ResponseCacheCapacity = 1000
	}
	if c.Pipeline.ResponseCacheTTLSec <= 0 {
		c.Pipeline.ResponseCacheTTLSec = 3600
	}
}

// Validate checks the configuration for correctness. A missing generation
// API key is fatal: the pipeline cannot be constructed without it.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Generation.APIKey == "" {
		return fmt.Errorf("generation.api_key is required (set GROQ_API_KEY or an OpenAI-compatible key)")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
