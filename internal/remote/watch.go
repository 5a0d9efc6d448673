package remote

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce groups rapid file changes into one redeploy.
const WatchDebounce = 500 * time.Millisecond

// Watch redeploys whenever a file inside one of the watched module
// directories changes. It blocks until the context is cancelled.
func (d *Deployer) Watch(ctx context.Context, opts DeployOptions) error {
	modulePaths, err := ResolveModules(opts.Modules)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, modulePath := range modulePaths {
		walkErr := filepath.WalkDir(modulePath, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
				return watcher.Add(path)
			}
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	d.logger.Info(ctx, "watching modules for changes", "modules", opts.Modules)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// New directories need to be watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						d.logger.Warn(ctx, err, "watching new directory failed", "dir", event.Name)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(WatchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(WatchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn(ctx, err, "watch error")
		case <-timerC:
			timer = nil
			timerC = nil
			if err := d.Deploy(ctx, opts); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.logger.Error(ctx, err, "redeploy failed")
			}
		}
	}
}
