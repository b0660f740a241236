package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/medscribe/internal/export"
	"github.com/nguyentantai21042004/medscribe/internal/summarizer"
)

// ErrEmptyTranscript is returned when transcription produced no text.
var ErrEmptyTranscript = errors.New("transcription produced no text")

const (
	transcriptFile     = "transcription.txt"
	summaryFile        = "summary.txt"
	partialSummaryFile = "summary.partial.txt"
	reportFile         = "report.docx"
)

// Process orchestrates the entire recording pipeline
func (p *implProcessor) Process(ctx context.Context, audioPath string) error {
	_, err := p.Run(ctx, audioPath)
	return err
}

// Run converts, transcribes, summarizes and exports one recording, then
// archives it. A failed summary still leaves the transcript (and any partial
// summaries) in the output folder; the recording is then not archived.
func (p *implProcessor) Run(ctx context.Context, audioPath string) (Output, error) {
	startTime := time.Now()
	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	outDir := filepath.Join(p.cfg.Paths.Output, name)

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting processing: %s", audioPath)
	p.logger.Info(ctx, "========================================")

	var out Output

	// Step 1: Convert audio
	wavPath, err := p.prepareAudio(ctx, audioPath)
	if err != nil {
		return out, fmt.Errorf("prepare audio: %w", err)
	}
	defer p.cleanupTempFile(ctx, wavPath)

	// Step 2: Transcribe, with speakers when diarization is enabled
	tr, err := p.transcriber.Transcribe(ctx, wavPath, p.cfg.Diarization.Enabled)
	if err != nil {
		return out, fmt.Errorf("transcribe: %w", err)
	}
	if tr.Empty() {
		return out, ErrEmptyTranscript
	}
	if tr.Diarized && len(p.cfg.Diarization.SpeakerNames) > 0 {
		tr = tr.Rename(p.cfg.Diarization.SpeakerNames)
	}
	out.Transcript = tr

	// Step 3: Export transcript
	out.TranscriptPath = filepath.Join(outDir, transcriptFile)
	if err := export.WriteTranscriptText(out.TranscriptPath, tr); err != nil {
		return out, fmt.Errorf("export transcript: %w", err)
	}

	// Step 4: Summarize
	if p.summarizer != nil {
		res, err := p.summarize(ctx, tr.Text(*p.cfg.Diarization.IncludeSpeakers))
		out.Summary = res
		if err != nil {
			p.savePartials(ctx, outDir, res)
			return out, fmt.Errorf("summarize: %w", err)
		}

		out.SummaryPath = filepath.Join(outDir, summaryFile)
		if err := export.WriteSummaryText(out.SummaryPath, res.FinalSummary); err != nil {
			return out, fmt.Errorf("export summary: %w", err)
		}
	} else {
		p.logger.Info(ctx, "No summarizer configured, skipping summary")
	}

	// Step 5: DOCX report
	out.ReportPath = filepath.Join(outDir, reportFile)
	report := export.Report{
		Title:      name,
		Date:       startTime,
		Source:     filepath.Base(audioPath),
		Summary:    out.Summary.FinalSummary,
		Transcript: tr,
	}
	if err := export.WriteDocx(out.ReportPath, report); err != nil {
		p.logger.Warn(ctx, "Failed to write report: %v", err)
		out.ReportPath = ""
	}

	// Step 6: Move original recording to archived folder
	archived, err := p.moveToArchived(ctx, audioPath)
	if err != nil {
		p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
	}
	out.ArchivedPath = archived

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Transcript: %s (%d segments, diarized: %t)", out.TranscriptPath, len(tr.Segments), tr.Diarized)
	if out.SummaryPath != "" {
		p.logger.Info(ctx, "Summary: %s (%s, %d tokens)", out.SummaryPath, out.Summary.Strategy, out.Summary.TotalTokens)
	}
	p.logger.Info(ctx, "Processing time: %s", time.Since(startTime))
	p.logger.Info(ctx, "========================================")

	return out, nil
}

func (p *implProcessor) summarize(ctx context.Context, text string) (summarizer.Result, error) {
	return p.summarizer.Summarize(ctx, text, ChunkConfig(p.cfg), LLMConfig(p.cfg))
}

// savePartials keeps whatever an interrupted chunked summary produced.
func (p *implProcessor) savePartials(ctx context.Context, outDir string, res summarizer.Result) {
	if len(res.PartialSummaries) == 0 {
		return
	}
	path := filepath.Join(outDir, partialSummaryFile)
	content := "INCOMPLETE SUMMARY\n\n" + strings.Join(res.PartialSummaries, "\n\n")
	if err := export.WriteSummaryText(path, content); err != nil {
		p.logger.Warn(ctx, "Failed to save partial summaries: %v", err)
		return
	}
	p.logger.Warn(ctx, "Saved %d partial summaries to %s", len(res.PartialSummaries), path)
}
