package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/medscribe/internal/transcript"
	"github.com/nguyentantai21042004/medscribe/pkg/executor"
)

// ErrNoHFToken is returned when the diarization helper has no HuggingFace token.
var ErrNoHFToken = errors.New("HuggingFace token required for diarization, set HF_TOKEN")

// CommandDiarizerOptions configures the external diarization helper.
type CommandDiarizerOptions struct {
	Command string
	Args    []string
	// PipelineConfig is passed as --config when set.
	PipelineConfig string
	HFToken        string
}

type commandDiarizer struct {
	opts     CommandDiarizerOptions
	executor executor.Executor
}

// NewCommandDiarizer creates a Diarizer that runs an external helper (for
// example a pyannote script). The helper gets the audio path as its last
// argument and HF_TOKEN in its environment, and prints a JSON array of
// {"start","end","speaker"} turns on stdout.
func NewCommandDiarizer(opts CommandDiarizerOptions, exec executor.Executor) Diarizer {
	return &commandDiarizer{opts: opts, executor: exec}
}

func (d *commandDiarizer) Diarize(ctx context.Context, audioPath string) ([]Turn, error) {
	if d.opts.HFToken == "" {
		return nil, ErrNoHFToken
	}

	args := append([]string{}, d.opts.Args...)
	if d.opts.PipelineConfig != "" {
		args = append(args, "--config", d.opts.PipelineConfig)
	}
	args = append(args, audioPath)

	out, err := d.executor.Run(ctx, executor.Command{
		Name: d.opts.Command,
		Args: args,
		Env:  []string{"HF_TOKEN=" + d.opts.HFToken},
	})
	if err != nil {
		return nil, fmt.Errorf("run diarizer: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &turns); err != nil {
		return nil, fmt.Errorf("decode diarizer output: %w", err)
	}

	valid := turns[:0]
	for _, turn := range turns {
		if turn.End > turn.Start && turn.Speaker != "" {
			valid = append(valid, turn)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Start < valid[j].Start })
	return valid, nil
}

// AssignSpeakers labels each segment with the speaker whose turns overlap it
// the most. A segment no turn overlaps takes the speaker of the nearest turn.
func AssignSpeakers(segments []transcript.Segment, turns []Turn) []transcript.Segment {
	out := make([]transcript.Segment, len(segments))
	for i, seg := range segments {
		overlap := make(map[string]float64)
		for _, turn := range turns {
			if d := math.Min(seg.End, turn.End) - math.Max(seg.Start, turn.Start); d > 0 {
				overlap[turn.Speaker] += d
			}
		}

		seg.Speaker = bestSpeaker(overlap)
		if seg.Speaker == "" {
			seg.Speaker = nearestSpeaker(seg, turns)
		}
		out[i] = seg
	}
	return out
}

func bestSpeaker(overlap map[string]float64) string {
	best, bestDur := "", 0.0
	for sp, d := range overlap {
		if d > bestDur || (d == bestDur && sp < best) {
			best, bestDur = sp, d
		}
	}
	return best
}

func nearestSpeaker(seg transcript.Segment, turns []Turn) string {
	mid := (seg.Start + seg.End) / 2
	best, bestDist := "", math.Inf(1)
	for _, turn := range turns {
		var dist float64
		switch {
		case mid < turn.Start:
			dist = turn.Start - mid
		case mid > turn.End:
			dist = mid - turn.End
		}
		if dist < bestDist {
			best, bestDist = turn.Speaker, dist
		}
	}
	return best
}
