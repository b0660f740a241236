package transcript

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseSRT reads SubRip cues into segments. Cue numbers are ignored and
// multi-line cue text is joined with a space.
func ParseSRT(r io.Reader) ([]Segment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		segments []Segment
		cur      *Segment
		text     []string
		lineNo   int
	)

	flush := func() {
		if cur != nil {
			cur.Text = strings.TrimSpace(strings.Join(text, " "))
			if cur.Text != "" {
				segments = append(segments, *cur)
			}
		}
		cur, text = nil, nil
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\uFEFF"))

		switch {
		case line == "":
			flush()
		case strings.Contains(line, "-->"):
			flush()
			start, end, err := parseTiming(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur = &Segment{Start: start, End: end}
		case cur != nil:
			text = append(text, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	flush()

	return segments, nil
}

func parseTiming(line string) (float64, float64, error) {
	parts := strings.SplitN(line, "-->", 2)
	start, err := parseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Positioning hints may follow the end time.
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("missing end time in %q", line)
	}
	end, err := parseTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp parses "HH:MM:SS,mmm" (a dot is accepted for the millis).
func parseTimestamp(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", s, err)
	}
	return float64(h*3600+m*60) + sec, nil
}
