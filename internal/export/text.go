// Package export writes transcripts and summaries as plain text and DOCX reports.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/medscribe/internal/transcript"
)

// TranscriptText renders a transcript for download: one block per segment
// separated by a blank line. Diarized blocks start with "{start}-{end}: {speaker}".
func TranscriptText(t transcript.Transcript) string {
	blocks := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if !t.Diarized {
			blocks = append(blocks, s.Text)
			continue
		}
		blocks = append(blocks, fmt.Sprintf("%s-%s: %s\n%s",
			transcript.FormatDuration(s.Start), transcript.FormatDuration(s.End), s.Speaker, s.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// WriteTranscriptText writes TranscriptText(t) to path.
func WriteTranscriptText(path string, t transcript.Transcript) error {
	return writeFile(path, TranscriptText(t))
}

// WriteSummaryText writes the summary to path.
func WriteSummaryText(path, summary string) error {
	return writeFile(path, strings.TrimSpace(summary)+"\n")
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
