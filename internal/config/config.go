// Package config loads sqlagent settings from an optional YAML file, with
// ${VAR} expansion, defaults, and SQLAGENT_* environment overrides.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/sqlagent/internal/agent"
	"github.com/petasbytes/sqlagent/internal/runner"
	"github.com/petasbytes/sqlagent/tools"
)

// DefaultTranscriptPath is where answered questions are recorded.
const DefaultTranscriptPath = ".sqlagent/transcript.json"

// Config is the complete sqlagent configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Agent    AgentConfig    `yaml:"agent"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig selects the model and its limits.
type LLMConfig struct {
	Model     string `yaml:"model"`
	MaxTokens int64  `yaml:"max_tokens"`
	APIKey    string `yaml:"api_key"`
}

// AgentConfig bounds the reasoning loop and names its outputs.
type AgentConfig struct {
	MaxIterations  int    `yaml:"max_iterations"`
	TokenBudget    int    `yaml:"token_budget"` // 0 disables windowing
	OutputDir      string `yaml:"output_dir"`
	TranscriptPath string `yaml:"transcript_path"` // empty disables the transcript
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			MaxTokens: runner.DefaultMaxTokens,
		},
		Agent: AgentConfig{
			MaxIterations:  agent.DefaultMaxIterations,
			OutputDir:      tools.DefaultOutputDir,
			TranscriptPath: DefaultTranscriptPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path (skipped
// when path is empty), then the environment. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or "" when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s=%q: not an integer", key, v)
		}
		*dst = n
		return nil
	}

	setString("SQLAGENT_DB", &cfg.Database.Path)
	setString("SQLAGENT_MODEL", &cfg.LLM.Model)
	setString("SQLAGENT_OUTPUT_DIR", &cfg.Agent.OutputDir)
	setString("SQLAGENT_TRANSCRIPT", &cfg.Agent.TranscriptPath)
	setString("SQLAGENT_LOG_LEVEL", &cfg.Logging.Level)
	setString("SQLAGENT_LOG_FORMAT", &cfg.Logging.Format)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	maxTokens := int(cfg.LLM.MaxTokens)
	if err := setInt("SQLAGENT_MAX_TOKENS", &maxTokens); err != nil {
		return err
	}
	cfg.LLM.MaxTokens = int64(maxTokens)
	if err := setInt("SQLAGENT_MAX_ITERATIONS", &cfg.Agent.MaxIterations); err != nil {
		return err
	}
	return setInt("SQLAGENT_TOKEN_BUDGET", &cfg.Agent.TokenBudget)
}

// Validate returns an error describing the first invalid setting.
// The database path is not checked here because the CLI may supply it.
func (c *Config) Validate() error {
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.TokenBudget < 0 {
		return fmt.Errorf("agent.token_budget must not be negative, got %d", c.Agent.TokenBudget)
	}
	if strings.TrimSpace(c.Agent.OutputDir) == "" {
		return fmt.Errorf("agent.output_dir is required")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not text or json", c.Logging.Format)
	}
	return nil
}

// AgentConfig returns the loop configuration for agent.New. An empty model
// falls back to the agent default.
func (c *Config) AgentConfig() agent.Config {
	return agent.Config{
		Model:         anthropic.Model(c.LLM.Model),
		MaxTokens:     c.LLM.MaxTokens,
		MaxIterations: c.Agent.MaxIterations,
		TokenBudget:   c.Agent.TokenBudget,
		OutputDir:     c.Agent.OutputDir,
	}
}
