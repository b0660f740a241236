// Package transcript holds timed, optionally speaker-labelled transcription
// segments and renders them as the text that gets summarized.
package transcript

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Segment is one stretch of speech. Start and End are in seconds.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Text    string  `json:"text"`
}

// Transcript is the output of a transcription run.
type Transcript struct {
	Segments []Segment `json:"segments"`
	// Diarized is set when every segment carries a speaker label.
	Diarized bool `json:"diarized"`
}

// Plain wraps undiarized text as a single segment.
func Plain(text string, duration float64) Transcript {
	text = strings.TrimSpace(text)
	if text == "" {
		return Transcript{}
	}
	return Transcript{Segments: []Segment{{Start: 0, End: duration, Text: text}}}
}

// Empty reports whether the transcript has no text at all.
func (t Transcript) Empty() bool {
	for _, s := range t.Segments {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}

// Duration returns the end of the last segment.
func (t Transcript) Duration() float64 {
	var d float64
	for _, s := range t.Segments {
		d = math.Max(d, s.End)
	}
	return d
}

// Speakers returns the distinct speaker labels, sorted.
func (t Transcript) Speakers() []string {
	seen := make(map[string]struct{})
	for _, s := range t.Segments {
		if s.Speaker != "" {
			seen[s.Speaker] = struct{}{}
		}
	}

	speakers := make([]string, 0, len(seen))
	for sp := range seen {
		speakers = append(speakers, sp)
	}
	sort.Strings(speakers)
	return speakers
}

// Rename returns a copy with speaker labels replaced through names. Labels
// without a non-empty mapping are kept.
func (t Transcript) Rename(names map[string]string) Transcript {
	out := Transcript{Diarized: t.Diarized, Segments: make([]Segment, len(t.Segments))}
	for i, s := range t.Segments {
		if name := strings.TrimSpace(names[s.Speaker]); name != "" {
			s.Speaker = name
		}
		out.Segments[i] = s
	}
	return out
}

// Text renders the transcript for the summarizer. Undiarized transcripts are
// the segment texts, one per line. Diarized ones get a time range per line
// and, when includeSpeakers is set, the speaker label.
func (t Transcript) Text(includeSpeakers bool) string {
	lines := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if !t.Diarized {
			lines = append(lines, s.Text)
			continue
		}

		span := FormatDuration(s.Start) + " - " + FormatDuration(s.End)
		if includeSpeakers {
			lines = append(lines, fmt.Sprintf("%s — %s: %s", span, s.Speaker, s.Text))
		} else {
			lines = append(lines, fmt.Sprintf("%s — %s", span, s.Text))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatDuration renders seconds as "XmYs", e.g. 65.4 -> "1m5s".
func FormatDuration(seconds float64) string {
	total := wholeSeconds(seconds)
	return fmt.Sprintf("%dm%ds", total/60, total%60)
}

// FormatDurationFull renders seconds as "HhMMmSSs" from one hour on and as
// "MmSSs" below, e.g. 3725 -> "1h02m05s", 65 -> "1m05s".
func FormatDurationFull(seconds float64) string {
	total := wholeSeconds(seconds)
	hours, minutes, secs := total/3600, (total%3600)/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm%02ds", minutes, secs)
}

func wholeSeconds(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int(seconds)
}
