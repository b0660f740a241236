package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/medscribe/internal/chunker"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/internal/tokenizer"
)

// Options wires the collaborators of a Summarizer.
type Options struct {
	Completer llm.Completer
	Tokenizer tokenizer.Tokenizer
	// Chunker defaults to one built on Tokenizer.
	Chunker  chunker.Chunker
	Reporter Reporter
}

type implSummarizer struct {
	completer llm.Completer
	tokenizer tokenizer.Tokenizer
	chunker   chunker.Chunker
	reporter  Reporter
	logger    logger.Logger
}

// New creates a Summarizer. A nil Completer is reported as a configuration
// error by Summarize.
func New(opts Options, log logger.Logger) Summarizer {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenizer.New(tokenizer.Options{}, log)
	}
	if opts.Chunker == nil {
		opts.Chunker = chunker.New(opts.Tokenizer, log)
	}
	if opts.Reporter == nil {
		opts.Reporter = ReporterFunc(func(ctx context.Context, p Progress) {})
	}

	return &implSummarizer{
		completer: opts.Completer,
		tokenizer: opts.Tokenizer,
		chunker:   opts.Chunker,
		reporter:  opts.Reporter,
		logger:    log,
	}
}
