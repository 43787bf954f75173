package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the input, output, and log directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Processing contains translation job options shared by every file in a run.
type Processing struct {
	SourceLanguage string `toml:"source_language"`
	TargetLanguage string `toml:"target_language"`
	ChunkSize      int    `toml:"chunk_size"`
	IncludeTitle   bool   `toml:"include_title"`
	Style          string `toml:"style"`
	Context        string `toml:"context"`
	Prompt         string `toml:"prompt"`
	SubtitlePrompt string `toml:"subtitle_prompt"`
	PromptsFile    string `toml:"prompts_file"`
}

// RateLimit contains pacing and retry policy for backend requests.
type RateLimit struct {
	RequestsPerMinute int `toml:"requests_per_minute"`
	MaxRetries        int `toml:"max_retries"`
	RetryDelay        int `toml:"retry_delay"`
	Timeout           int `toml:"timeout"`
}

// Validation contains the translation-completeness heuristic settings.
type Validation struct {
	Strictness string `toml:"strictness"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Backend describes one configured remote translation backend. Credentials
// are never part of the file; each provider reads its own environment
// variable at construction time.
type Backend struct {
	Name            string         `toml:"name"`
	Model           string         `toml:"model"`
	Enabled         bool           `toml:"enabled"`
	ContextSize     int            `toml:"context_size"`
	MaxOutputTokens int            `toml:"max_output_tokens"`
	Temperature     float64        `toml:"temperature"`
	BaseURL         string         `toml:"base_url"`
	Proxy           string         `toml:"proxy"`
	ExtraParams     map[string]any `toml:"extra_params"`
}

// Config encapsulates all configuration values for xlate.
//
// Configuration sections by subsystem:
//   - Paths: input/output directories and log location
//   - Processing: languages, chunk sizing, prompt overrides
//   - RateLimit: request pacing, per-backend retries, HTTP timeout
//   - Validation: CJK-ratio strictness for Chinese targets
//   - Logging: log format, level, and retention
//   - Notifications: ntfy push notification settings
//   - Backends: ordered failover list of remote backends
type Config struct {
	Paths         Paths         `toml:"paths"`
	Processing    Processing    `toml:"processing"`
	RateLimit     RateLimit     `toml:"rate_limit"`
	Validation    Validation    `toml:"validation"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
	Backends      []Backend     `toml:"backends"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/xlate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// ResolvePath reports which configuration file a load would use and whether
// it exists, without parsing or validating it.
func ResolvePath(path string) (string, bool, error) {
	return resolveConfigPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/xlate/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("xlate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs before processing starts.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// EnabledBackends returns the configured backends that are enabled, in file
// order. That order is the failover priority.
func (c *Config) EnabledBackends() []Backend {
	out := make([]Backend, 0, len(c.Backends))
	for _, b := range c.Backends {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
