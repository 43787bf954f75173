package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeProcessing(); err != nil {
		return err
	}
	c.normalizeBackends()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Validation.Strictness = strings.ToLower(strings.TrimSpace(c.Validation.Strictness))
	if c.Validation.Strictness == "" {
		c.Validation.Strictness = defaultStrictness
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		c.Paths.InputDir = defaultInputDir
	}
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProcessing() error {
	c.Processing.SourceLanguage = strings.TrimSpace(c.Processing.SourceLanguage)
	if c.Processing.SourceLanguage == "" {
		c.Processing.SourceLanguage = defaultSourceLanguage
	}
	c.Processing.TargetLanguage = strings.TrimSpace(c.Processing.TargetLanguage)
	if c.Processing.TargetLanguage == "" {
		c.Processing.TargetLanguage = defaultTargetLanguage
	}
	c.Processing.Style = strings.TrimSpace(c.Processing.Style)
	c.Processing.Context = strings.TrimSpace(c.Processing.Context)
	c.Processing.PromptsFile = strings.TrimSpace(c.Processing.PromptsFile)
	if c.Processing.PromptsFile != "" {
		expanded, err := expandPath(c.Processing.PromptsFile)
		if err != nil {
			return fmt.Errorf("processing.prompts_file: %w", err)
		}
		c.Processing.PromptsFile = expanded
	}
	return nil
}

func (c *Config) normalizeBackends() {
	for i := range c.Backends {
		b := &c.Backends[i]
		b.Name = strings.ToLower(strings.TrimSpace(b.Name))
		b.Model = strings.TrimSpace(b.Model)
		b.BaseURL = strings.TrimSpace(b.BaseURL)
		b.Proxy = strings.TrimSpace(b.Proxy)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
