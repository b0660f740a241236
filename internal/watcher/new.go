package watcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

// Options configures a Watcher.
type Options struct {
	InputDir      string
	MaxConcurrent int
	// Extensions filters handled files (case-insensitive). Defaults to AudioExtensions.
	Extensions []string
	// SettleDelay is waited after a create event so the file is fully written.
	SettleDelay time.Duration
	// ScanExisting hands files already in InputDir to the handler on Start.
	ScanExisting bool
}

// New creates a new Watcher instance with concurrency control
func New(opts Options, handler EventHandler, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(opts.InputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	// Default to 2 concurrent if not specified
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = AudioExtensions
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}

	exts := make(map[string]struct{}, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	return &implWatcher{
		opts:       opts,
		extensions: exts,
		handler:    handler,
		logger:     log,
		watcher:    watcher,
		semaphore:  make(chan struct{}, opts.MaxConcurrent),
	}, nil
}
