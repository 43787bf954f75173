package config

const (
	defaultInputDir          = "input"
	defaultOutputDir         = "output"
	defaultLogDir            = "~/.local/share/xlate/logs"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultSourceLanguage    = "auto"
	defaultTargetLanguage    = "Chinese"
	defaultChunkSize         = 12000
	defaultRequestsPerMinute = 20
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 5
	defaultRequestTimeout    = 60
	defaultStrictness        = "normal"
	defaultNtfyTimeout       = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Processing: Processing{
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
			ChunkSize:      defaultChunkSize,
			IncludeTitle:   true,
		},
		RateLimit: RateLimit{
			RequestsPerMinute: defaultRequestsPerMinute,
			MaxRetries:        defaultMaxRetries,
			RetryDelay:        defaultRetryDelaySeconds,
			Timeout:           defaultRequestTimeout,
		},
		Validation: Validation{
			Strictness: defaultStrictness,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
