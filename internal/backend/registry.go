package backend

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"xlate/internal/config"
	"xlate/internal/logging"
	"xlate/internal/services"
)

const (
	openRouterReferer = "https://github.com/xlate"
	openRouterTitle   = "xlate"
)

// provider binds a backend name to its credential variable, default endpoint,
// and constructor. Selection happens by name lookup, never by type
// inspection.
type provider struct {
	envVar  string
	baseURL string
	build   func(cfg config.Backend, apiKey, baseURL string, timeout time.Duration) (Backend, error)
}

var providers = map[string]provider{
	"siliconflow": {
		envVar:  "SILICONFLOW_API_KEY",
		baseURL: "https://api.siliconflow.cn/v1",
		build:   buildOpenAI("", ""),
	},
	"alibaba": {
		envVar:  "ALIBABA_API_KEY",
		baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		build:   buildOpenAI("", ""),
	},
	"deepseek": {
		envVar:  "DEEPSEEK_API_KEY",
		baseURL: "https://api.deepseek.com/v1",
		build:   buildOpenAI("", ""),
	},
	"openrouter": {
		envVar:  "OPENROUTER_API_KEY",
		baseURL: "https://openrouter.ai/api/v1",
		build:   buildOpenAI(openRouterReferer, openRouterTitle),
	},
	"gemini": {
		envVar:  "GEMINI_API_KEY",
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		build: func(cfg config.Backend, apiKey, baseURL string, timeout time.Duration) (Backend, error) {
			return newGeminiBackend(cfg, apiKey, baseURL, timeout)
		},
	},
}

func buildOpenAI(referer, title string) func(config.Backend, string, string, time.Duration) (Backend, error) {
	return func(cfg config.Backend, apiKey, baseURL string, timeout time.Duration) (Backend, error) {
		return newOpenAIBackend(cfg, apiKey, baseURL, timeout, referer, title)
	}
}

// KnownNames lists the backend names the registry can construct, sorted.
func KnownNames() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CredentialEnv returns the environment variable holding the credential for
// the named backend, and whether the name is known.
func CredentialEnv(name string) (string, bool) {
	p, ok := providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return p.envVar, true
}

// FromConfig constructs the usable backends for a run in failover order.
// Unknown names and enabled backends without a credential are skipped with a
// warning; zero usable backends is a configuration error. When restrict is
// non-empty, only the named backend is considered, and naming an unusable or
// unknown backend fails with the available alternatives.
func FromConfig(cfg *config.Config, logger *slog.Logger, restrict string) ([]Backend, error) {
	restrict = strings.ToLower(strings.TrimSpace(restrict))
	timeout := time.Duration(cfg.RateLimit.Timeout) * time.Second

	var backends []Backend
	var available []string
	for _, entry := range cfg.EnabledBackends() {
		p, known := providers[entry.Name]
		if !known {
			logging.WarnWithContext(logger, "unknown backend name; skipping", "backend_unknown",
				logging.String(logging.FieldBackend, entry.Name),
				logging.String("known", strings.Join(KnownNames(), ", ")),
				logging.String(logging.FieldImpact, "backend excluded from failover"),
			)
			continue
		}
		apiKey := strings.TrimSpace(os.Getenv(p.envVar))
		if apiKey == "" {
			logging.WarnWithContext(logger, "backend credential missing; skipping", "backend_credential_missing",
				logging.String(logging.FieldBackend, entry.Name),
				logging.String("env", p.envVar),
				logging.String(logging.FieldImpact, "backend excluded from failover"),
			)
			continue
		}
		available = append(available, entry.Name)
		if restrict != "" && entry.Name != restrict {
			continue
		}
		baseURL := entry.BaseURL
		if baseURL == "" {
			baseURL = p.baseURL
		}
		built, err := p.build(entry, apiKey, baseURL, timeout)
		if err != nil {
			closeAll(backends, logger)
			return nil, err
		}
		backends = append(backends, built)
	}

	if len(backends) == 0 {
		if restrict != "" {
			return nil, services.Wrap(services.ErrConfiguration, "backend", "restrict",
				fmt.Sprintf("backend %q not usable; available: %s", restrict, strings.Join(available, ", ")), nil)
		}
		return nil, services.Wrap(services.ErrConfiguration, "backend", "construct",
			"no usable backends; check [[backends]] entries and credentials", nil)
	}
	return backends, nil
}

// CloseAll releases every backend exactly once, logging failures instead of
// propagating them.
func CloseAll(backends []Backend, logger *slog.Logger) {
	closeAll(backends, logger)
}

func closeAll(backends []Backend, logger *slog.Logger) {
	for _, b := range backends {
		if err := b.Close(); err != nil {
			logging.WarnWithContext(logger, "backend close failed", "backend_close_failed",
				logging.String(logging.FieldBackend, b.Name()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "idle connections may linger until process exit"),
			)
		}
	}
}
