package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	validLogFormats = map[string]struct{}{"console": {}, "json": {}}
	validLogLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
	validStrictness = map[string]struct{}{"off": {}, "lenient": {}, "normal": {}, "strict": {}}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	if err := c.validateBackends(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	return ensurePositiveMap(map[string]int{
		"rate_limit.requests_per_minute": c.RateLimit.RequestsPerMinute,
		"rate_limit.max_retries":         c.RateLimit.MaxRetries,
		"rate_limit.timeout":             c.RateLimit.Timeout,
	}, map[string]int{
		"rate_limit.retry_delay": c.RateLimit.RetryDelay,
	})
}

func (c *Config) validateProcessing() error {
	if c.Processing.ChunkSize <= 0 {
		return errors.New("processing.chunk_size must be positive")
	}
	if c.Processing.TargetLanguage == "" {
		return errors.New("processing.target_language must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format must be one of console, json (got %q)", c.Logging.Format)
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateValidation() error {
	if _, ok := validStrictness[c.Validation.Strictness]; !ok {
		return fmt.Errorf("validation.strictness must be one of off, lenient, normal, strict (got %q)", c.Validation.Strictness)
	}
	return nil
}

func (c *Config) validateBackends() error {
	if len(c.Backends) == 0 {
		return errors.New("at least one [[backends]] entry must be defined (create a config with 'xlate config init')")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	enabled := 0
	for i, b := range c.Backends {
		if b.Name == "" {
			return fmt.Errorf("backends[%d].name must be set", i)
		}
		if _, dup := seen[b.Name]; dup {
			return fmt.Errorf("backends: duplicate name %q", b.Name)
		}
		seen[b.Name] = struct{}{}
		if b.Model == "" {
			return fmt.Errorf("backends[%d] (%s): model must be set", i, b.Name)
		}
		if b.ContextSize < 0 {
			return fmt.Errorf("backends[%d] (%s): context_size must not be negative", i, b.Name)
		}
		if b.MaxOutputTokens < 0 {
			return fmt.Errorf("backends[%d] (%s): max_output_tokens must not be negative", i, b.Name)
		}
		if b.Temperature < 0 || b.Temperature > 2 {
			return fmt.Errorf("backends[%d] (%s): temperature must be between 0 and 2", i, b.Name)
		}
		if b.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return errors.New("backends: at least one entry must be enabled")
	}
	return nil
}

// ensurePositiveMap fails on the first non-positive strictly-positive value
// or negative allowed-zero value, reporting keys in a stable order.
func ensurePositiveMap(strictlyPositive, nonNegative map[string]int) error {
	keys := make([]string, 0, len(strictlyPositive))
	for key := range strictlyPositive {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strictlyPositive[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	keys = keys[:0]
	for key := range nonNegative {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if nonNegative[key] < 0 {
			return fmt.Errorf("%s must not be negative", strings.TrimSpace(key))
		}
	}
	return nil
}
