package transcribe

import (
	"os"

	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/pkg/executor"
)

// WhisperOptions configures the whisper.cpp CLI.
type WhisperOptions struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Prompt     string
	Threads    int
	// TempDir receives the intermediate SRT output.
	TempDir string
}

type implTranscriber struct {
	opts     WhisperOptions
	executor executor.Executor
	diarizer Diarizer
	logger   logger.Logger
}

// New creates a Transcriber. diarizer may be nil, in which case diarization
// requests degrade to plain transcripts.
func New(opts WhisperOptions, exec executor.Executor, diarizer Diarizer, log logger.Logger) Transcriber {
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Threads <= 0 {
		opts.Threads = 4
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &implTranscriber{
		opts:     opts,
		executor: exec,
		diarizer: diarizer,
		logger:   log,
	}
}
