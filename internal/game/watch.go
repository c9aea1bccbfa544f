package game

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls modification times and calls onChange for each file
// that changed. A file that appears after the first scan counts as changed.
type FileWatcher struct {
	Paths    []string
	Interval time.Duration
	onChange func(string)

	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for the given paths.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Run polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

func (w *FileWatcher) scan(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			// missing for now; a later appearance is a change
			continue
		}
		mt := fi.ModTime()
		last := w.lastMTime[p]
		w.lastMTime[p] = mt
		if !prime && mt.After(last) && w.onChange != nil {
			w.onChange(p)
		}
	}
}
