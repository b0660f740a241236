package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diarized() Transcript {
	return Transcript{
		Diarized: true,
		Segments: []Segment{
			{Start: 0, End: 5.2, Speaker: "SPEAKER_01", Text: "Bonjour, how are you feeling?"},
			{Start: 5.2, End: 62.9, Speaker: "SPEAKER_00", Text: "Chest pain since Monday."},
			{Start: 63, End: 70, Speaker: "SPEAKER_01", Text: "Any shortness of breath?"},
		},
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
		full string
	}{
		{0, "0m0s", "0m00s"},
		{5.9, "0m5s", "0m05s"},
		{65, "1m5s", "1m05s"},
		{3599, "59m59s", "59m59s"},
		{3725, "62m5s", "1h02m05s"},
		{-3, "0m0s", "0m00s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), "short %v", tt.in)
		assert.Equal(t, tt.full, FormatDurationFull(tt.in), "full %v", tt.in)
	}
}

func TestTextDiarized(t *testing.T) {
	tr := diarized()

	assert.Equal(t, strings.Join([]string{
		"0m0s - 0m5s — SPEAKER_01: Bonjour, how are you feeling?",
		"0m5s - 1m2s — SPEAKER_00: Chest pain since Monday.",
		"1m3s - 1m10s — SPEAKER_01: Any shortness of breath?",
	}, "\n"), tr.Text(true))

	assert.Equal(t, "0m5s - 1m2s — Chest pain since Monday.", strings.Split(tr.Text(false), "\n")[1])
}

func TestTextPlain(t *testing.T) {
	tr := Transcript{Segments: []Segment{{Text: "first"}, {Text: "second"}}}
	assert.Equal(t, "first\nsecond", tr.Text(true))

	assert.Equal(t, "", Transcript{}.Text(true))
	assert.True(t, Plain("   ", 10).Empty())

	p := Plain(" whole recording ", 42)
	assert.False(t, p.Diarized)
	assert.Equal(t, "whole recording", p.Text(true))
	assert.Equal(t, 42.0, p.Duration())
}

func TestSpeakersAndRename(t *testing.T) {
	tr := diarized()
	assert.Equal(t, []string{"SPEAKER_00", "SPEAKER_01"}, tr.Speakers())

	renamed := tr.Rename(map[string]string{"SPEAKER_00": "Patient", "SPEAKER_01": " ", "OTHER": "x"})
	assert.Equal(t, []string{"Patient", "SPEAKER_01"}, renamed.Speakers())
	assert.True(t, renamed.Diarized)
	assert.Equal(t, tr.Segments[1].Start, renamed.Segments[1].Start)
	assert.Equal(t, tr.Segments[1].Text, renamed.Segments[1].Text)

	// The original is untouched.
	assert.Equal(t, "SPEAKER_00", tr.Segments[1].Speaker)
	assert.Equal(t, 70.0, tr.Duration())
}

func TestParseSRT(t *testing.T) {
	src := "\uFEFF1\n" +
		"00:00:00,000 --> 00:00:04,500\n" +
		"Good morning doctor.\n" +
		"\n" +
		"2\n" +
		"00:00:04,500 --> 00:01:02,250 X1:10\n" +
		"I have had a cough\n" +
		"for two weeks.\n" +
		"\n" +
		"3\n" +
		"01:00:00.000 --> 01:00:01.000\n" +
		"\n"

	segs, err := ParseSRT(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []Segment{
		{Start: 0, End: 4.5, Text: "Good morning doctor."},
		{Start: 4.5, End: 62.25, Text: "I have had a cough for two weeks."},
	}, segs)
}

func TestParseSRTInvalidTimestamp(t *testing.T) {
	_, err := ParseSRT(strings.NewReader("1\n00:00:xx,000 --> 00:00:01,000\nhi\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
