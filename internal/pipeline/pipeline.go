package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"xlate/internal/backend"
	"xlate/internal/chunk"
	"xlate/internal/config"
	"xlate/internal/language"
	"xlate/internal/logging"
	"xlate/internal/notifications"
	"xlate/internal/prompt"
	"xlate/internal/services"
	"xlate/internal/subtitle"
	"xlate/internal/textutil"
	"xlate/internal/validate"
)

// translatableExtensions lists the input file extensions picked up by
// discovery, lowercased.
var translatableExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".text": true,
	".srt":  true,
}

// Summary reports the outcome of one batch run.
type Summary struct {
	Files      int
	Translated int
	Failed     int
	Skipped    int
	Duration   time.Duration
}

// Pipeline drives a batch translation run: it discovers input files, chunks
// them, pushes each chunk through the backend executor, validates the
// results, and reassembles the outputs.
type Pipeline struct {
	cfg       *config.Config
	backends  []backend.Backend
	executor  *backend.Executor
	validator validate.Validator
	presets   prompt.Presets
	notifier  notifications.Service
	logger    *slog.Logger
	sleeper   func(time.Duration)
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithLogger attaches a logger used for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithNotifier overrides the notification service.
func WithNotifier(notifier notifications.Service) Option {
	return func(p *Pipeline) {
		if notifier != nil {
			p.notifier = notifier
		}
	}
}

// WithSleeper overrides how pacing and retry sleeps are performed (useful
// for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(p *Pipeline) {
		if sleeper != nil {
			p.sleeper = sleeper
		}
	}
}

// New builds a pipeline over the supplied backends. The backend slice order
// is the failover priority; the caller retains ownership and must close the
// backends after the run.
func New(cfg *config.Config, backends []backend.Backend, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "configuration is required", nil)
	}
	if len(backends) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "no usable backends", nil)
	}

	strictness, err := validate.ParseStrictness(cfg.Validation.Strictness)
	if err != nil {
		return nil, err
	}
	presets, err := prompt.LoadPresets(cfg.Processing.PromptsFile)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		backends:  backends,
		validator: validate.Validator{Strictness: strictness},
		presets:   presets,
		notifier:  notifications.NewService(cfg),
		logger:    logging.NewNop(),
		sleeper:   time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.executor = backend.NewExecutor(
		cfg.RateLimit.MaxRetries,
		time.Duration(cfg.RateLimit.RetryDelay)*time.Second,
		backend.WithLogger(p.logger),
		backend.WithSleeper(p.sleeper),
	)
	return p, nil
}

// Run processes every translatable file in the input directory. Failures are
// isolated per file; Run only returns an error when the run as a whole
// cannot proceed.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	logger := logging.WithContext(ctx, p.logger)

	files, err := p.discoverFiles()
	if err != nil {
		return Summary{Duration: time.Since(started)}, err
	}
	summary := Summary{Files: len(files)}
	if len(files) == 0 {
		logger.Info("no translatable files found", logging.String("input_dir", p.cfg.Paths.InputDir))
		summary.Duration = time.Since(started)
		return summary, nil
	}

	logger.Info("run started",
		logging.Int("files", len(files)),
		logging.Int("backends", len(p.backends)),
		logging.Int("chunk_limit", p.effectiveChunkLimit()),
	)
	if err := p.notifier.NotifyRunStarted(ctx, len(files)); err != nil {
		logger.Warn("run-start notification failed", logging.Error(err))
	}

	paced := false
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		if paced {
			p.pace()
		}

		fileCtx := services.WithFile(ctx, filepath.Base(path))
		fileCtx = services.WithRequestID(fileCtx, uuid.NewString())
		fileLogger := logging.WithContext(fileCtx, p.logger)

		outcome, backendName, err := p.processFile(fileCtx, path)
		switch {
		case err != nil:
			summary.Failed++
			paced = true
			logging.ErrorWithContext(fileLogger, "file translation failed", "file_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "file skipped, batch continues"),
			)
			if notifyErr := p.notifier.NotifyError(fileCtx, err, filepath.Base(path)); notifyErr != nil {
				fileLogger.Warn("error notification failed", logging.Error(notifyErr))
			}
		case outcome == outcomeSkipped:
			summary.Skipped++
		default:
			summary.Translated++
			paced = true
			fileLogger.Info("file translated", logging.String(logging.FieldBackend, backendName))
			if notifyErr := p.notifier.NotifyFileTranslated(fileCtx, filepath.Base(path), backendName); notifyErr != nil {
				fileLogger.Warn("file notification failed", logging.Error(notifyErr))
			}
		}
	}

	summary.Duration = time.Since(started)
	logger.Info("run completed",
		logging.Int("translated", summary.Translated),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	if err := p.notifier.NotifyRunCompleted(ctx, summary.Translated, summary.Failed, summary.Duration); err != nil {
		logger.Warn("run-complete notification failed", logging.Error(err))
	}
	return summary, nil
}

type outcome int

const (
	outcomeTranslated outcome = iota
	outcomeSkipped
)

func (p *Pipeline) processFile(ctx context.Context, path string) (outcome, string, error) {
	logger := logging.WithContext(ctx, p.logger)

	data, err := os.ReadFile(path)
	if err != nil {
		return outcomeSkipped, "", fmt.Errorf("read input: %w", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		logger.Info("skipping empty file")
		return outcomeSkipped, "", nil
	}

	var output string
	var backendName string
	isSubtitle := strings.EqualFold(filepath.Ext(path), ".srt")
	if isSubtitle {
		output, backendName, err = p.translateSubtitle(ctx, text)
	} else {
		output, backendName, err = p.translateText(ctx, path, text)
	}
	if err != nil {
		return outcomeSkipped, "", err
	}
	if output == "" {
		logger.Info("skipping file with no translatable content")
		return outcomeSkipped, "", nil
	}

	outPath := p.outputPath(path, isSubtitle)
	if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
		return outcomeSkipped, "", fmt.Errorf("write output: %w", err)
	}
	return outcomeTranslated, backendName, nil
}

func (p *Pipeline) translateText(ctx context.Context, path, text string) (string, string, error) {
	chunks := chunk.Plan(text, p.effectiveChunkLimit(), chunk.Paragraphs)
	template := p.presets.TextTemplate(p.cfg.Processing.Prompt)
	parts, backendName, err := p.translateChunks(ctx, chunks, template)
	if err != nil {
		return "", "", err
	}

	output := strings.Join(parts, "\n\n")
	if p.cfg.Processing.IncludeTitle {
		output = "# " + textutil.TitleFromFilename(path) + "\n\n" + output
	}
	return output, backendName, nil
}

func (p *Pipeline) translateSubtitle(ctx context.Context, text string) (string, string, error) {
	logger := logging.WithContext(ctx, p.logger)

	blocks := subtitle.Parse(text)
	if len(blocks) == 0 {
		logger.Warn("no subtitle blocks found")
		return "", "", nil
	}

	extracted := subtitle.ExtractText(blocks)
	chunks := chunk.Plan(extracted, p.effectiveChunkLimit(), chunk.Sentences)
	template := p.presets.SubtitleTemplate(p.cfg.Processing.SubtitlePrompt)
	parts, backendName, err := p.translateChunks(ctx, chunks, template)
	if err != nil {
		return "", "", err
	}

	translations := subtitle.ParseTranslated(strings.Join(parts, "\n"), len(blocks))
	if degraded := subtitle.DegradedCount(translations); degraded > 0 {
		logging.WarnWithContext(logger, "subtitle blocks not recovered from translation", "parse_degraded",
			logging.Int("degraded", degraded),
			logging.Int("total", len(blocks)),
			logging.String(logging.FieldImpact, "original lines kept for unrecovered blocks"),
		)
	}
	return subtitle.Build(blocks, translations), backendName, nil
}

// translateChunks pushes each chunk through the executor, pacing between
// chunks. A chunk that fails validation gets exactly one corrective retry;
// whatever that retry returns is accepted.
func (p *Pipeline) translateChunks(ctx context.Context, chunks []string, template string) ([]string, string, error) {
	logger := logging.WithContext(ctx, p.logger)
	targetLanguage := p.cfg.Processing.TargetLanguage

	parts := make([]string, 0, len(chunks))
	backendName := ""
	for i, content := range chunks {
		if i > 0 {
			p.pace()
		}

		rendered := prompt.Render(template, prompt.Values{
			SourceLanguage: languageLabel(p.cfg.Processing.SourceLanguage),
			TargetLanguage: language.DisplayName(targetLanguage),
			Content:        content,
			Context:        p.cfg.Processing.Context,
			Style:          p.presets.ResolveStyle(p.cfg.Processing.Style),
		})

		result, err := p.executor.Execute(ctx, p.backends, rendered)
		if err != nil {
			return nil, "", err
		}

		if !p.validator.IsTranslated(result.Text, targetLanguage) {
			logging.WarnWithContext(logger, "chunk failed translation validation", "validation_warning",
				logging.Int("chunk", i+1),
				logging.Int("chunks", len(chunks)),
				logging.String(logging.FieldBackend, result.Backend),
				logging.String(logging.FieldImpact, "retrying chunk once"),
			)
			p.pace()
			retried, retryErr := p.executor.Execute(ctx, p.backends, rendered)
			if retryErr != nil {
				if ctx.Err() != nil {
					return nil, "", retryErr
				}
				logger.Warn("corrective retry failed, keeping first result", logging.Error(retryErr))
			} else {
				result = retried
			}
		}

		parts = append(parts, result.Text)
		backendName = result.Backend
	}
	return parts, backendName, nil
}

// effectiveChunkLimit caps the configured chunk size at three quarters of the
// smallest declared backend context size. Backends that do not declare a
// context size do not constrain the limit.
func (p *Pipeline) effectiveChunkLimit() int {
	limit := p.cfg.Processing.ChunkSize
	smallest := 0
	for _, b := range p.backends {
		if size := b.ContextSize(); size > 0 && (smallest == 0 || size < smallest) {
			smallest = size
		}
	}
	if smallest > 0 {
		if bound := smallest * 3 / 4; bound < limit {
			limit = bound
		}
	}
	return limit
}

func (p *Pipeline) pace() {
	rpm := p.cfg.RateLimit.RequestsPerMinute
	if rpm <= 0 {
		return
	}
	p.sleeper(time.Minute / time.Duration(rpm))
}

func (p *Pipeline) discoverFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.Paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if translatableExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(p.cfg.Paths.InputDir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (p *Pipeline) outputPath(inputPath string, isSubtitle bool) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	ext := ".txt"
	if isSubtitle {
		ext = ".srt"
	}
	return filepath.Join(p.cfg.Paths.OutputDir, stem+ext)
}

// languageLabel renders a language value for prompt substitution. Empty and
// "auto" sources leave detection to the model.
func languageLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "auto") {
		return "the original language"
	}
	return language.DisplayName(trimmed)
}
