package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/medscribe/internal/transcript"
)

// ErrAudioNotFound is returned when the audio file does not exist.
var ErrAudioNotFound = errors.New("audio file not found")

// Transcribe runs whisper.cpp on audioPath and, when asked, labels the
// segments with the diarizer's speakers.
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath string, diarize bool) (transcript.Transcript, error) {
	if _, err := os.Stat(audioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return transcript.Transcript{}, fmt.Errorf("%w: %s", ErrAudioNotFound, audioPath)
		}
		return transcript.Transcript{}, fmt.Errorf("stat audio: %w", err)
	}

	segments, err := t.whisper(ctx, audioPath)
	if err != nil {
		return transcript.Transcript{}, err
	}
	plain := transcript.Transcript{Segments: segments}
	if len(segments) == 0 || !diarize {
		return plain, nil
	}

	degraded := transcript.Plain(joinText(segments), plain.Duration())
	if t.diarizer == nil {
		t.logger.Warn(ctx, "Diarization requested but no diarizer configured, using plain transcript")
		return degraded, nil
	}

	turns, err := t.diarizer.Diarize(ctx, audioPath)
	if err != nil {
		t.logger.Warn(ctx, "Diarization failed: %v. Falling back to plain transcript", err)
		return degraded, nil
	}
	if len(turns) == 0 {
		t.logger.Warn(ctx, "Diarization found no speaker turns, using plain transcript")
		return degraded, nil
	}

	labelled := AssignSpeakers(segments, turns)
	t.logger.Info(ctx, "Diarization assigned %d segments to %d speakers",
		len(labelled), len(transcript.Transcript{Segments: labelled}.Speakers()))
	return transcript.Transcript{Segments: labelled, Diarized: true}, nil
}

// whisper runs the whisper.cpp CLI and parses its SRT output.
func (t *implTranscriber) whisper(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	if err := os.MkdirAll(t.opts.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(t.opts.TempDir, "medscribe_whisper_*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// whisper.cpp appends .srt to the prefix.
	base := filepath.Base(audioPath)
	outputPrefix := filepath.Join(workDir, strings.TrimSuffix(base, filepath.Ext(base)))

	t.logger.Info(ctx, "Starting transcription with %d threads: %s", t.opts.Threads, audioPath)

	// -ml 0 / -mc 0 lift the segment length and context limits; -bo 5 keeps the
	// best of five candidates.
	args := []string{
		"-m", t.opts.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-t", strconv.Itoa(t.opts.Threads),
		"-ml", "0",
		"-mc", "0",
		"-bo", "5",
		"--output-file", outputPrefix,
	}
	if t.opts.Language != "" {
		args = append(args, "-l", t.opts.Language)
	}
	if t.opts.Prompt != "" {
		args = append(args, "--prompt", t.opts.Prompt)
	}

	if _, err := t.executor.Execute(ctx, t.opts.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("whisper transcribe: %w", err)
	}

	f, err := os.Open(outputPrefix + ".srt")
	if err != nil {
		return nil, fmt.Errorf("open whisper output: %w", err)
	}
	defer f.Close()

	segments, err := transcript.ParseSRT(f)
	if err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	t.logger.Info(ctx, "Transcription completed: %d segments", len(segments))
	return segments, nil
}

func joinText(segments []transcript.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if txt := strings.TrimSpace(s.Text); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, " ")
}
