package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch runs the validation once and again after every change to one of the
// input files, until ctx is done. Bursts of events within the debounce
// window trigger a single run.
func (a *app) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() {
		_ = w.Close()
	}()

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range a.opts.inputs() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Editors replace files on save, so the directories are watched rather
	// than the files themselves.
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	a.runLogged(ctx)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			a.logger.Debug("input changed", "file", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(a.opts.WatchDebounce)
			} else {
				timer.Reset(a.opts.WatchDebounce)
			}
			trigger = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", "error", err)
		case <-trigger:
			trigger = nil
			fmt.Fprintln(a.stdout, "---")
			a.runLogged(ctx)
		}
	}
}

func (a *app) runLogged(ctx context.Context) {
	code, err := a.runOnce(ctx)
	if err != nil {
		a.logger.Error("validation run failed", "error", err)
		return
	}
	a.logger.Info("validation run finished", "valid", code == exitValid)
}
