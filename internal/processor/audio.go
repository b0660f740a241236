package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// tempPrefix marks the files this pipeline leaves in the temp dir.
const tempPrefix = "medscribe_"

// prepareAudio converts the recording to a mono WAV at the configured sample
// rate, which is what whisper.cpp expects.
func (p *implProcessor) prepareAudio(ctx context.Context, audioPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Temp, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	wavPath := filepath.Join(p.cfg.Paths.Temp, tempPrefix+base+".wav")

	p.logger.Info(ctx, "Converting audio: %s", audioPath)

	args := []string{
		"-i", audioPath,
		"-vn",
		"-ar", strconv.Itoa(p.cfg.FFmpeg.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
	}
	if p.cfg.FFmpeg.Normalize {
		args = append(args, "-af", "dynaudnorm")
	}
	args = append(args, "-y", wavPath)

	if _, err := p.executor.Execute(ctx, p.cfg.FFmpeg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("ffmpeg convert audio: %w", err)
	}

	p.logger.Info(ctx, "Audio converted successfully: %s", wavPath)
	return wavPath, nil
}
