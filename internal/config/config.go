package config

import (
	"fmt"
	"time"

	"github.com/nguyentantai21042004/medscribe/internal/apperrors"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
	"github.com/nguyentantai21042004/medscribe/internal/summarizer"
	"github.com/nguyentantai21042004/medscribe/internal/tokenizer"
)

type Config struct {
	Whisper     WhisperConfig     `yaml:"whisper"`
	Diarization DiarizationConfig `yaml:"diarization"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	LLM         LLMConfig         `yaml:"llm"`
	Summary     SummaryConfig     `yaml:"summary"`
	Tokenizer   TokenizerConfig   `yaml:"tokenizer"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path" env:"WHISPER_MODEL_PATH"`
	BinaryPath string `yaml:"binary_path" env:"WHISPER_BINARY_PATH"`
	Language   string `yaml:"language" env:"WHISPER_LANGUAGE"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads" env:"WHISPER_THREADS"`
	UseGPU     bool   `yaml:"use_gpu"`
}

// DiarizationConfig drives the external speaker diarization helper. The
// command receives the audio path as its last argument and prints JSON turns.
type DiarizationConfig struct {
	Enabled bool     `yaml:"enabled" env:"DIARIZATION_ENABLED"`
	Command string   `yaml:"command" env:"DIARIZATION_COMMAND"`
	Args    []string `yaml:"args"`
	// PipelineConfig is an optional local pipeline definition passed to the helper.
	PipelineConfig string `yaml:"pipeline_config"`
	HFToken        string `yaml:"-" env:"HF_TOKEN"`
	// SpeakerNames maps diarizer labels (SPEAKER_00) to display names.
	SpeakerNames    map[string]string `yaml:"speaker_names"`
	IncludeSpeakers *bool             `yaml:"include_speakers"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path" env:"FFMPEG_BINARY_PATH"`
	SampleRate int    `yaml:"sample_rate"`
	// Normalize levels the amplitude with the dynaudnorm filter.
	Normalize bool `yaml:"normalize"`
}

type PathsConfig struct {
	Input    string `yaml:"input" env:"MEDSCRIBE_INPUT_DIR"`
	Output   string `yaml:"output" env:"MEDSCRIBE_OUTPUT_DIR"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	// SummaryWorkers > 1 summarizes chunks concurrently.
	SummaryWorkers int `yaml:"summary_workers"`
}

type LLMConfig struct {
	// Provider is "lmstudio" or "gemini".
	Provider string        `yaml:"provider" env:"LLM_PROVIDER"`
	BaseURL  string        `yaml:"base_url" env:"LMSTUDIO_BASE_URL"`
	APIKey   string        `yaml:"-" env:"LMSTUDIO_API_KEY"`
	Model    string        `yaml:"model" env:"LMSTUDIO_MODEL"`
	APIMode  string        `yaml:"api_mode"`
	Timeout  time.Duration `yaml:"timeout"`

	GeminiAPIKeys []string `yaml:"-" env:"GEMINI_API_KEYS" envSeparator:","`
	GeminiModel   string   `yaml:"gemini_model"`
}

type SummaryConfig struct {
	// Mode is "direct" or "chunked".
	Mode            string   `yaml:"mode" env:"SUMMARY_MODE"`
	ChunkSize       int      `yaml:"chunk_size" env:"SUMMARY_CHUNK_SIZE"`
	Overlap         *int     `yaml:"overlap"`
	Temperature     *float64 `yaml:"temperature"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
	SystemPrompt    string   `yaml:"system_prompt"`
	UserPrompt      string   `yaml:"user_prompt"`
}

type TokenizerConfig struct {
	Backend   string `yaml:"backend" env:"TOKENIZER_BACKEND"`
	Model     string `yaml:"model" env:"TOKENIZER_MODEL"`
	CacheSize int    `yaml:"cache_size"`
}

const (
	ProviderLMStudio = "lmstudio"
	ProviderGemini   = "gemini"

	defaultChunkSize       = 6000
	defaultOverlap         = 200
	defaultTemperature     = 0.2
	defaultMaxOutputTokens = 1024
)

// Validate fills defaults and rejects settings a run cannot work with.
func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Performance.SummaryWorkers == 0 {
		c.Performance.SummaryWorkers = 1
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "fr"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Diarization.IncludeSpeakers == nil {
		include := true
		c.Diarization.IncludeSpeakers = &include
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateSummary(); err != nil {
		return err
	}
	return c.validateTokenizer()
}

func (c *Config) validateLLM() error {
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderLMStudio
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = llm.DefaultBaseURL
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = llm.DefaultTimeout
	}
	if c.LLM.GeminiModel == "" {
		c.LLM.GeminiModel = llm.DefaultGeminiModel
	}

	mode, err := llm.ParseMode(c.LLM.APIMode)
	if err != nil {
		return apperrors.NewConfigurationError("llm.api_mode", err.Error())
	}
	c.LLM.APIMode = string(mode)

	switch c.LLM.Provider {
	case ProviderLMStudio, ProviderGemini:
	default:
		return apperrors.NewConfigurationError("llm.provider", fmt.Sprintf("unknown provider %q", c.LLM.Provider))
	}
	if c.LLM.Timeout < 0 {
		return apperrors.NewConfigurationError("llm.timeout", "must not be negative")
	}
	return nil
}

func (c *Config) validateSummary() error {
	if c.Summary.ChunkSize == 0 {
		c.Summary.ChunkSize = defaultChunkSize
	}
	if c.Summary.Overlap == nil {
		overlap := defaultOverlap
		c.Summary.Overlap = &overlap
	}
	if c.Summary.Temperature == nil {
		temperature := defaultTemperature
		c.Summary.Temperature = &temperature
	}
	if c.Summary.MaxOutputTokens == 0 {
		c.Summary.MaxOutputTokens = defaultMaxOutputTokens
	}
	if c.Summary.SystemPrompt == "" {
		c.Summary.SystemPrompt = summarizer.DefaultSystemPrompt
	}
	if c.Summary.UserPrompt == "" {
		c.Summary.UserPrompt = summarizer.DefaultUserPrompt
	}

	mode, err := summarizer.ParseStrategy(c.Summary.Mode)
	if err != nil {
		return apperrors.NewConfigurationError("summary.mode", err.Error())
	}
	c.Summary.Mode = string(mode)

	if c.Summary.ChunkSize < 0 {
		return apperrors.NewConfigurationError("summary.chunk_size", "must be positive")
	}
	if *c.Summary.Overlap < 0 {
		return apperrors.NewConfigurationError("summary.overlap", "must not be negative")
	}
	if t := *c.Summary.Temperature; t < 0 || t > 2 {
		return apperrors.NewConfigurationError("summary.temperature", fmt.Sprintf("%.2f is outside [0, 2]", t))
	}
	if c.Summary.MaxOutputTokens < 0 {
		return apperrors.NewConfigurationError("summary.max_output_tokens", "must be positive")
	}
	return nil
}

func (c *Config) validateTokenizer() error {
	backend, err := tokenizer.ParseBackend(c.Tokenizer.Backend)
	if err != nil {
		return apperrors.NewConfigurationError("tokenizer.backend", err.Error())
	}
	c.Tokenizer.Backend = string(backend)

	if c.Tokenizer.Model == "" {
		c.Tokenizer.Model = tokenizer.DefaultModel
	}
	if c.Tokenizer.CacheSize == 0 {
		c.Tokenizer.CacheSize = tokenizer.DefaultCacheSize
	}
	if c.Tokenizer.CacheSize < 0 {
		return apperrors.NewConfigurationError("tokenizer.cache_size", "must be positive")
	}
	return nil
}

// RequireTranscription checks the settings only audio processing needs.
func (c *Config) RequireTranscription() error {
	if c.Whisper.ModelPath == "" {
		return apperrors.NewConfigurationError("whisper.model_path", "is required")
	}
	if c.Diarization.Enabled && c.Diarization.Command == "" {
		return apperrors.NewConfigurationError("diarization.command", "is required when diarization is enabled")
	}
	return nil
}

// RequireLLM checks that a summarization endpoint is usable.
func (c *Config) RequireLLM() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if len(c.LLM.GeminiAPIKeys) == 0 {
			return apperrors.NewConfigurationError("llm.gemini_api_keys", "set GEMINI_API_KEYS")
		}
	default:
		if c.LLM.Model == "" {
			return apperrors.NewConfigurationError("llm.model", "no model selected")
		}
	}
	return nil
}

// SummaryModel returns the model id used for summaries with the active provider.
func (c *Config) SummaryModel() string {
	if c.LLM.Provider == ProviderGemini {
		return c.LLM.GeminiModel
	}
	return c.LLM.Model
}
