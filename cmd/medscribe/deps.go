package main

import (
	"fmt"

	"github.com/nguyentantai21042004/medscribe/internal/config"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/internal/processor"
	"github.com/nguyentantai21042004/medscribe/internal/summarizer"
	"github.com/nguyentantai21042004/medscribe/internal/tokenizer"
	"github.com/nguyentantai21042004/medscribe/internal/transcribe"
	"github.com/nguyentantai21042004/medscribe/pkg/executor"
)

func newCompleter(cfg *config.Config, log logger.Logger) (llm.Completer, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return llm.NewGemini(cfg.LLM.GeminiAPIKeys, cfg.LLM.GeminiModel, log)
	default:
		return newLMStudio(cfg, log), nil
	}
}

func newLMStudio(cfg *config.Config, log logger.Logger) llm.Client {
	return llm.NewLMStudio(llm.Options{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
	}, log)
}

func newSummarizer(cfg *config.Config, log logger.Logger) (summarizer.Summarizer, error) {
	completer, err := newCompleter(cfg, log)
	if err != nil {
		return nil, err
	}

	cache, err := tokenizer.NewCache(cfg.Tokenizer.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("tokenizer cache: %w", err)
	}
	tok := tokenizer.New(tokenizer.Options{
		Backend: tokenizer.Backend(cfg.Tokenizer.Backend),
		Model:   cfg.Tokenizer.Model,
		Cache:   cache,
	}, log)

	return summarizer.New(summarizer.Options{
		Completer: completer,
		Tokenizer: tok,
		Reporter:  processor.NewLogReporter(log),
	}, log), nil
}

func newTranscriber(cfg *config.Config, exec executor.Executor, log logger.Logger) (transcribe.Transcriber, error) {
	if err := cfg.RequireTranscription(); err != nil {
		return nil, err
	}

	var diarizer transcribe.Diarizer
	if cfg.Diarization.Enabled {
		diarizer = transcribe.NewCommandDiarizer(transcribe.CommandDiarizerOptions{
			Command:        cfg.Diarization.Command,
			Args:           cfg.Diarization.Args,
			PipelineConfig: cfg.Diarization.PipelineConfig,
			HFToken:        cfg.Diarization.HFToken,
		}, exec)
	}

	return transcribe.New(transcribe.WhisperOptions{
		BinaryPath: cfg.Whisper.BinaryPath,
		ModelPath:  cfg.Whisper.ModelPath,
		Language:   cfg.Whisper.Language,
		Prompt:     cfg.Whisper.Prompt,
		Threads:    cfg.Whisper.Threads,
		TempDir:    cfg.Paths.Temp,
	}, exec, diarizer, log), nil
}

// newProcessor wires the full pipeline. withSummary=false produces
// transcripts only.
func newProcessor(cfg *config.Config, withSummary bool, log logger.Logger) (processor.Processor, error) {
	exec := executor.New()

	tr, err := newTranscriber(cfg, exec, log)
	if err != nil {
		return nil, err
	}

	var sum summarizer.Summarizer
	if withSummary {
		if sum, err = newSummarizer(cfg, log); err != nil {
			return nil, err
		}
	}

	return processor.New(cfg, exec, tr, sum, log), nil
}
