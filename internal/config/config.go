package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Server contains HTTP listener settings.
type Server struct {
	Port                string `toml:"port"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `toml:"idle_timeout_seconds"`
}

// Database contains the sqlite journal database location.
type Database struct {
	Path string `toml:"path"`
}

// LLM contains model provider settings shared by the pipeline and the voice channel.
type LLM struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxRetries     int    `toml:"max_retries"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Voice contains settings for the voice-to-voice websocket.
type Voice struct {
	Enabled         bool   `toml:"enabled"`
	TranscribeModel string `toml:"transcribe_model"`
	SpeechModel     string `toml:"speech_model"`
	VoiceName       string `toml:"voice_name"`
	MaxHistory      int    `toml:"max_history"`
	MaxMessageBytes int64  `toml:"max_message_bytes"`
}

// Auth contains access token settings.
type Auth struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

// Archive contains the object storage bucket used for generated workbooks.
type Archive struct {
	Bucket string `toml:"bucket"`
	Prefix string `toml:"prefix"`
}

// Audit contains the analytics sink for pipeline runs.
type Audit struct {
	Enabled bool   `toml:"enabled"`
	Project string `toml:"project"`
	Dataset string `toml:"dataset"`
}

// Notion contains credentials for the journal export.
type Notion struct {
	Token      string `toml:"token"`
	DatabaseID string `toml:"database_id"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Jobs contains settings for the in-process job queue.
type Jobs struct {
	BufferSize int `toml:"buffer_size"`
	Workers    int `toml:"workers"`
	MaxRetries int `toml:"max_retries"`
}

// Config encapsulates all configuration values for the service and its tools.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	LLM      LLM      `toml:"llm"`
	Voice    Voice    `toml:"voice"`
	Auth     Auth     `toml:"auth"`
	Archive  Archive  `toml:"archive"`
	Audit    Audit    `toml:"audit"`
	Notion   Notion   `toml:"notion"`
	Logging  Logging  `toml:"logging"`
	Jobs     Jobs     `toml:"jobs"`
}

// Load parses the TOML file at path (when it exists), applies environment
// overrides and validates the result. An empty path looks for
// finance-journal.toml in the working directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve config path %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abs, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", abs)
	}
	return abs, true, nil
}

// applyEnv overlays secrets and deployment-specific values from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(target *string, keys ...string) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				*target = strings.TrimSpace(v)
				return
			}
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.LLM.Provider)) {
	case ProviderOpenAI:
		set(&c.LLM.APIKey, "OPENAI_API_KEY")
	default:
		set(&c.LLM.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	set(&c.Server.Port, "PORT")
	set(&c.Database.Path, "FINANCE_JOURNAL_DB")
	set(&c.Auth.JWTSecret, "JWT_SECRET")
	set(&c.Archive.Bucket, "GCS_BUCKET")
	set(&c.Audit.Project, "BQ_PROJECT")
	set(&c.Notion.Token, "NOTION_TOKEN")
	set(&c.Notion.DatabaseID, "NOTION_DB_ID")
}

func (c *Config) normalize() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Archive.Prefix = strings.Trim(strings.TrimSpace(c.Archive.Prefix), "/")
	c.Server.Port = strings.TrimPrefix(strings.TrimSpace(c.Server.Port), ":")

	if c.LLM.Provider == ProviderOpenAI {
		if c.LLM.Model == "" || c.LLM.Model == defaultGeminiModel {
			c.LLM.Model = defaultOpenAIModel
		}
		if c.LLM.BaseURL == "" {
			c.LLM.BaseURL = defaultOpenAIBaseURL
		}
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModelFor(c.LLM.Provider)
	}
}

// TokenTTL returns the lifetime of issued access tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// LLMTimeout returns the per-attempt model call timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// ArchiveEnabled reports whether generated workbooks are archived to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}
