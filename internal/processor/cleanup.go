package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// moveToArchived moves the original recording out of the input folder.
func (p *implProcessor) moveToArchived(ctx context.Context, audioPath string) (string, error) {
	if err := os.MkdirAll(p.cfg.Paths.Archived, 0755); err != nil {
		return "", fmt.Errorf("create archived dir: %w", err)
	}
	destPath := filepath.Join(p.cfg.Paths.Archived, filepath.Base(audioPath))

	p.logger.Info(ctx, "Moving to archived folder: %s -> %s", audioPath, destPath)

	if err := os.Rename(audioPath, destPath); err != nil {
		return "", fmt.Errorf("move to archived: %w", err)
	}
	return destPath, nil
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	}
}

// CleanTempFiles removes leftover pipeline files (medscribe_*) from dir and
// returns how many were deleted.
func CleanTempFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read temp dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}
	return removed, nil
}
