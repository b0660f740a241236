package processor

import (
	"github.com/nguyentantai21042004/medscribe/internal/config"
	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/internal/summarizer"
	"github.com/nguyentantai21042004/medscribe/internal/transcribe"
	"github.com/nguyentantai21042004/medscribe/pkg/executor"
)

type implProcessor struct {
	cfg         *config.Config
	executor    executor.Executor
	transcriber transcribe.Transcriber
	summarizer  summarizer.Summarizer
	logger      logger.Logger
}

// New creates a new Processor instance. A nil summarizer produces
// transcripts only.
func New(cfg *config.Config, exec executor.Executor, tr transcribe.Transcriber, sum summarizer.Summarizer, log logger.Logger) Processor {
	if log == nil {
		log = logger.NewNop()
	}
	return &implProcessor{
		cfg:         cfg,
		executor:    exec,
		transcriber: tr,
		summarizer:  sum,
		logger:      log,
	}
}
