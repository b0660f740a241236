// Package transcribe turns audio files into transcripts with whisper.cpp and
// an optional external speaker diarization helper.
package transcribe

import (
	"context"

	"github.com/nguyentantai21042004/medscribe/internal/transcript"
)

// Transcriber converts an audio file into a transcript. When diarize is set and
// diarization fails, the result degrades to a single undiarized segment.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, diarize bool) (transcript.Transcript, error)
}

// Turn is one speaker turn reported by a Diarizer.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Diarizer finds who speaks when.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]Turn, error)
}
