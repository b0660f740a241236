package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/medscribe/internal/transcript"
)

const (
	fontName  = "Times New Roman"
	codeFont  = "Courier New"
	fontSize  = 12
	fontColor = "000000"
)

// Report is the content of a DOCX report.
type Report struct {
	Title      string
	Date       time.Time
	Source     string
	Summary    string
	Transcript transcript.Transcript
}

// WriteDocx renders r into a DOCX file at path. The summary is parsed as
// markdown; the transcript gets one paragraph per segment.
func WriteDocx(path string, r Report) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "Consultation report"
	}
	addRun(doc.AddParagraph(""), Run{Text: title, Bold: true}, headingSize(1))

	date := r.Date
	if date.IsZero() {
		date = time.Now()
	}
	addRun(doc.AddParagraph(""), Run{Text: "Date: " + date.Format("02/01/2006 15:04")}, fontSize)
	if r.Source != "" {
		addRun(doc.AddParagraph(""), Run{Text: "Source: " + r.Source, Italic: true}, fontSize)
	}

	if strings.TrimSpace(r.Summary) != "" {
		addRun(doc.AddParagraph(""), Run{Text: "Summary", Bold: true}, headingSize(2))
		for _, b := range ParseMarkdown(r.Summary) {
			addBlock(doc, b)
		}
	}

	if !r.Transcript.Empty() {
		addRun(doc.AddParagraph(""), Run{Text: "Transcript", Bold: true}, headingSize(2))
		for _, s := range r.Transcript.Segments {
			p := doc.AddParagraph("")
			if r.Transcript.Diarized {
				span := transcript.FormatDuration(s.Start) + "-" + transcript.FormatDuration(s.End) + " "
				addRun(p, Run{Text: span}, fontSize)
				addRun(p, Run{Text: s.Speaker + ": ", Bold: true}, fontSize)
			}
			addRun(p, Run{Text: s.Text}, fontSize)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

func addBlock(doc *docx.RootDoc, b Block) {
	p := doc.AddParagraph("")
	switch b.Kind {
	case BlockHeading:
		for _, r := range b.Runs {
			r.Bold = true
			addRun(p, r, headingSize(b.Level))
		}
	case BlockCode:
		for _, r := range b.Runs {
			p.AddText(r.Text).Font(codeFont).Size(fontSize - 2).Color(fontColor)
		}
	case BlockListItem:
		prefix := strings.Repeat("    ", b.Depth)
		if b.Marker != "" {
			prefix += b.Marker + " "
		} else {
			prefix += "  "
		}
		addRun(p, Run{Text: prefix}, fontSize)
		addRuns(p, b.Runs, fontSize)
	default:
		addRuns(p, b.Runs, fontSize)
	}
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return 13
	}
}

func addRuns(p *docx.Paragraph, runs []Run, size uint64) {
	for _, r := range runs {
		addRun(p, r, size)
	}
}

func addRun(p *docx.Paragraph, r Run, size uint64) {
	run := p.AddText(r.Text).Font(fontName).Size(size).Color(fontColor)
	if r.Bold {
		run.Bold(true)
	}
	if r.Italic {
		run.Italic(true)
	}
}
