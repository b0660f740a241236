package chunker

import (
	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/internal/tokenizer"
)

type implChunker struct {
	tokenizer tokenizer.Tokenizer
	logger    logger.Logger
}

// New creates a Chunker that encodes and decodes with tok.
func New(tok tokenizer.Tokenizer, log logger.Logger) Chunker {
	if log == nil {
		log = logger.NewNop()
	}
	return &implChunker{
		tokenizer: tok,
		logger:    log,
	}
}
