package config

const (
	// ProviderGemini selects the Gemini API backend.
	ProviderGemini = "gemini"
	// ProviderOpenAI selects an OpenAI-compatible chat completions backend.
	ProviderOpenAI = "openai"

	defaultConfigFile          = "finance-journal.toml"
	defaultPort                = "8080"
	defaultReadTimeoutSeconds  = 15
	defaultWriteTimeoutSeconds = 120
	defaultIdleTimeoutSeconds  = 60
	defaultDatabasePath        = "data/financialjournal.db"
	defaultGeminiModel         = "gemini-2.5-flash"
	defaultOpenAIModel         = "gpt-4o"
	defaultOpenAIBaseURL       = "https://api.openai.com/v1/chat/completions"
	defaultLLMMaxRetries       = 2
	defaultLLMTimeoutSeconds   = 60
	defaultTranscribeModel     = "gemini-2.5-flash"
	defaultSpeechModel         = "gemini-2.5-flash-preview-tts"
	defaultVoiceName           = "Charon"
	defaultVoiceMaxHistory     = 20
	defaultVoiceMaxMessage     = 10 << 20
	defaultTokenTTLHours       = 24
	defaultArchivePrefix       = "budgets"
	defaultAuditDataset        = "finance_journal"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultJobsBufferSize      = 100
	defaultJobsWorkers         = 2
	defaultJobsMaxRetries      = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Port:                defaultPort,
			ReadTimeoutSeconds:  defaultReadTimeoutSeconds,
			WriteTimeoutSeconds: defaultWriteTimeoutSeconds,
			IdleTimeoutSeconds:  defaultIdleTimeoutSeconds,
		},
		Database: Database{
			Path: defaultDatabasePath,
		},
		LLM: LLM{
			Provider:       ProviderGemini,
			Model:          defaultGeminiModel,
			MaxRetries:     defaultLLMMaxRetries,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Voice: Voice{
			Enabled:         true,
			TranscribeModel: defaultTranscribeModel,
			SpeechModel:     defaultSpeechModel,
			VoiceName:       defaultVoiceName,
			MaxHistory:      defaultVoiceMaxHistory,
			MaxMessageBytes: defaultVoiceMaxMessage,
		},
		Auth: Auth{
			TokenTTLHours: defaultTokenTTLHours,
		},
		Archive: Archive{
			Prefix: defaultArchivePrefix,
		},
		Audit: Audit{
			Dataset: defaultAuditDataset,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Jobs: Jobs{
			BufferSize: defaultJobsBufferSize,
			Workers:    defaultJobsWorkers,
			MaxRetries: defaultJobsMaxRetries,
		},
	}
}

// DefaultModelFor returns the default chat model for a provider.
func DefaultModelFor(provider string) string {
	if provider == ProviderOpenAI {
		return defaultOpenAIModel
	}
	return defaultGeminiModel
}
