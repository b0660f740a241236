package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/medscribe/internal/transcript"
)

const summaryMarkdown = `# Summary

**Patient**: 54 y/o, *stable*.

1. Context
2. Key points
   - BP **140/90**
- Follow-up in 3 months

---

` + "```text\nECG: sinus rhythm\n```\n"

func TestParseMarkdown(t *testing.T) {
	blocks := ParseMarkdown(summaryMarkdown)
	require.Len(t, blocks, 7)

	assert.Equal(t, BlockHeading, blocks[0].Kind)
	assert.Equal(t, 1, blocks[0].Level)
	assert.Equal(t, "Summary", blocks[0].PlainText())

	assert.Equal(t, BlockParagraph, blocks[1].Kind)
	assert.Equal(t, []Run{
		{Text: "Patient", Bold: true},
		{Text: ": 54 y/o, "},
		{Text: "stable", Italic: true},
		{Text: "."},
	}, blocks[1].Runs)

	tests := []struct {
		idx    int
		marker string
		depth  int
		text   string
	}{
		{2, "1.", 0, "Context"},
		{3, "2.", 0, "Key points"},
		{4, "•", 1, "BP 140/90"},
		{5, "•", 0, "Follow-up in 3 months"},
	}
	for _, tt := range tests {
		b := blocks[tt.idx]
		assert.Equal(t, BlockListItem, b.Kind, tt.text)
		assert.Equal(t, tt.marker, b.Marker, tt.text)
		assert.Equal(t, tt.depth, b.Depth, tt.text)
		assert.Equal(t, tt.text, b.PlainText())
	}
	assert.True(t, blocks[4].Runs[len(blocks[4].Runs)-1].Bold)

	assert.Equal(t, BlockCode, blocks[6].Kind)
	assert.Equal(t, "ECG: sinus rhythm", blocks[6].PlainText())
}

func TestParseMarkdownSoftBreaks(t *testing.T) {
	blocks := ParseMarkdown("line one\nline two  \n\n\n")
	require.Len(t, blocks, 1)
	assert.Equal(t, "line one line two", blocks[0].PlainText())

	assert.Empty(t, ParseMarkdown("  \n---\n"))
}

func consultation() transcript.Transcript {
	return transcript.Transcript{
		Diarized: true,
		Segments: []transcript.Segment{
			{Start: 0, End: 4, Speaker: "Dr Martin", Text: "How are you?"},
			{Start: 4, End: 65, Speaker: "Patient", Text: "Tired, mostly."},
		},
	}
}

func TestTranscriptText(t *testing.T) {
	assert.Equal(t,
		"0m0s-0m4s: Dr Martin\nHow are you?\n\n0m4s-1m5s: Patient\nTired, mostly.",
		TranscriptText(consultation()))

	plain := transcript.Transcript{Segments: []transcript.Segment{{Text: "one"}, {Text: "two"}}}
	assert.Equal(t, "one\n\ntwo", TranscriptText(plain))
}

func TestWriteTextFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	require.NoError(t, WriteTranscriptText(filepath.Join(dir, "transcription.txt"), consultation()))
	require.NoError(t, WriteSummaryText(filepath.Join(dir, "summary.txt"), "\n## Summary\n- ok\n\n"))

	data, err := os.ReadFile(filepath.Join(dir, "summary.txt"))
	require.NoError(t, err)
	assert.Equal(t, "## Summary\n- ok\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "transcription.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "0m4s-1m5s: Patient")
}

func TestWriteDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.docx")

	err := WriteDocx(path, Report{
		Title:      "Consultation",
		Date:       time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
		Source:     "consult.wav",
		Summary:    summaryMarkdown,
		Transcript: consultation(),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "PK", string(data[:2]), "docx is a zip archive")
}
