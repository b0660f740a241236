package processor

import (
	"context"

	"github.com/nguyentantai21042004/medscribe/internal/summarizer"
	"github.com/nguyentantai21042004/medscribe/internal/transcript"
)

// Processor runs the audio -> transcript -> summary -> export pipeline.
type Processor interface {
	// Process handles one recording. Its signature matches watcher.EventHandler.
	Process(ctx context.Context, audioPath string) error
	// Run handles one recording and reports what was produced.
	Run(ctx context.Context, audioPath string) (Output, error)
}

// Output lists the artifacts of one pipeline run.
type Output struct {
	Transcript     transcript.Transcript
	Summary        summarizer.Result
	TranscriptPath string
	SummaryPath    string
	ReportPath     string
	ArchivedPath   string
}
