package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

type implWatcher struct {
	opts       Options
	extensions map[string]struct{}
	handler    EventHandler
	logger     logger.Logger
	watcher    *fsnotify.Watcher
	semaphore  chan struct{}
	wg         sync.WaitGroup
}

// Start begins monitoring the input directory for new recordings. It returns
// ctx.Err() once ctx is cancelled and all running handlers have finished.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "File watcher started (max concurrent: %d). Monitoring: %s", w.opts.MaxConcurrent, w.opts.InputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(w.opts.Extensions, ", "))

	if w.opts.ScanExisting {
		if err := w.scanExisting(ctx); err != nil {
			return w.drain(ctx, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return w.drain(ctx, ctx.Err())

		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.drain(ctx, fmt.Errorf("watcher events channel closed"))
			}

			// Only process CREATE events
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !w.isAudioFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New recording detected: %s", event.Name)
			if w.opts.SettleDelay > 0 {
				time.Sleep(w.opts.SettleDelay)
			}
			if err := w.dispatch(ctx, event.Name); err != nil {
				return w.drain(ctx, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.drain(ctx, fmt.Errorf("watcher errors channel closed"))
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch runs the handler once a semaphore slot is free.
func (w *implWatcher) dispatch(ctx context.Context, filePath string) error {
	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()

		if err := w.handler(ctx, filePath); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", filePath, err)
		}
	}()
	return nil
}

func (w *implWatcher) scanExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.opts.InputDir)
	if err != nil {
		return fmt.Errorf("scan input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if path := filepath.Join(w.opts.InputDir, e.Name()); w.isAudioFile(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)

	if len(files) > 0 {
		w.logger.Info(ctx, "Found %d existing recordings", len(files))
	}
	for _, f := range files {
		if err := w.dispatch(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (w *implWatcher) drain(ctx context.Context, err error) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "File watcher stopped")
	return err
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// isAudioFile checks if the file has a supported audio extension
func (w *implWatcher) isAudioFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
