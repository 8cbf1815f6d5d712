// Package config loads engine settings from config/<env>.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/matchdex/internal/domain"
)

// Config holds the matchdex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Matching  MatchingConfig  `yaml:"matching"`
	Index     IndexConfig     `yaml:"index"`
	Worker    WorkerConfig    `yaml:"worker"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer keys for the admin endpoints.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds ops server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	CandidateTTLHrs  int      `yaml:"candidate_ttl_hours"`
	CacheTTLHrs      int      `yaml:"embedding_cache_ttl_hours"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"` // openai, gemini
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	Budget              BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// MatchingConfig holds scoring and curation settings.
type MatchingConfig struct {
	Vertical            string             `yaml:"vertical"`
	MinScore            int                `yaml:"min_score"`
	SlateCap            int                `yaml:"slate_cap"`
	Workers             int                `yaml:"workers"`
	PassTimeoutSec      int                `yaml:"pass_timeout_sec"`
	DismissedSimilarity float64            `yaml:"dismissed_similarity"`
	Damping             float64            `yaml:"damping"`
	Weights             map[string]float64 `yaml:"weights"`
}

// IndexConfig holds semantic search settings.
type IndexConfig struct {
	Floor    float64 `yaml:"floor"`
	DefaultK int     `yaml:"default_k"`
}

// WorkerConfig holds the periodic pass schedule.
type WorkerConfig struct {
	IntervalSec int `yaml:"interval_sec"`
}

// PassTimeout returns the curation deadline.
func (m MatchingConfig) PassTimeout() time.Duration {
	return time.Duration(m.PassTimeoutSec) * time.Second
}

// Interval returns the pause between passes.
func (w WorkerConfig) Interval() time.Duration {
	return time.Duration(w.IntervalSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.CandidateTTLHrs <= 0 {
		c.Database.CandidateTTLHrs = 14 * 24
	}
	if c.Database.CacheTTLHrs <= 0 {
		c.Database.CacheTTLHrs = 30 * 24
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = defaultModel(c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	if c.Embedding.Budget.Action == "" {
		c.Embedding.Budget.Action = "warn"
	}
	if c.Matching.Vertical == "" {
		c.Matching.Vertical = "realestate"
	}
	if c.Matching.MinScore <= 0 {
		c.Matching.MinScore = 30
	}
	if c.Matching.SlateCap <= 0 {
		c.Matching.SlateCap = 10
	}
	if c.Matching.Workers <= 0 {
		c.Matching.Workers = 8
	}
	if c.Matching.PassTimeoutSec <= 0 {
		c.Matching.PassTimeoutSec = 300
	}
	if c.Matching.DismissedSimilarity == 0 {
		c.Matching.DismissedSimilarity = 0.85
	}
	if c.Matching.Damping == 0 {
		c.Matching.Damping = 0.1
	}
	if c.Index.Floor == 0 {
		c.Index.Floor = 0.3
	}
	if c.Index.DefaultK <= 0 {
		c.Index.DefaultK = 10
	}
	if c.Worker.IntervalSec <= 0 {
		c.Worker.IntervalSec = 900
	}
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-embedding-001"
	}
	return domain.DefaultVectorConfig().Model
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.Driver != "redis" {
		return fmt.Errorf("database.driver must be \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Embedding.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"gemini\", got %q", c.Embedding.Provider)
	}
	switch c.Embedding.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("embedding.budget.action must be \"warn\" or \"reject\", got %q", c.Embedding.Budget.Action)
	}
	if c.Matching.DismissedSimilarity <= 0 || c.Matching.DismissedSimilarity > 1 {
		return fmt.Errorf("matching.dismissed_similarity must be in (0,1], got %v", c.Matching.DismissedSimilarity)
	}
	if c.Matching.Damping < 0 || c.Matching.Damping >= 1 {
		return fmt.Errorf("matching.damping must be in [0,1), got %v", c.Matching.Damping)
	}
	if c.Index.Floor < 0 || c.Index.Floor > 1 {
		return fmt.Errorf("index.floor must be in [0,1], got %v", c.Index.Floor)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

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
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
