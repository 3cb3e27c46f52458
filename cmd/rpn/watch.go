package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

func watchPlan(plan runPlan) int {
	watcher, err := newFileWatcher(plan.watchedFiles())
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		return 1
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Watching %d file(s); press Ctrl-C to stop\n", len(watcher.targets))
	err = watcher.Run(ctx, func(changed []string) {
		for _, name := range changed {
			fmt.Fprintf(os.Stderr, "Changed: %s\n", name)
		}
		executePlan(plan)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		return 1
	}
	return 0
}

// fileWatcher reports writes to a fixed set of files. It watches their parent
// directories so editors that replace files on save are still seen.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	targets  map[string]struct{}
	debounce time.Duration
}

func newFileWatcher(paths []string) (*fileWatcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatcher{watcher: w, targets: make(map[string]struct{}, len(paths)), debounce: watchDebounce}
	dirs := make(map[string]struct{})
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		fw.targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return fw, nil
}

func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}

// Run blocks until ctx is done, calling onChange once per burst of edits.
func (fw *fileWatcher) Run(ctx context.Context, onChange func(changed []string)) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Clean(event.Name)
			if _, ok := fw.targets[name]; !ok {
				continue
			}
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			onChange(changed)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	}
}
