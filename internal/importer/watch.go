package importer

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches rapid-fire filesystem events (editor saves emit
// several) into a single re-import.
const debounceWindow = 500 * time.Millisecond

// Watch blocks, re-running the import whenever a file under the library
// root changes. Returns when the context is canceled.
func (im *Importer) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watchRecursive(watcher, im.opts.Root); err != nil {
		return err
	}

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watchRecursive(watcher, event.Name); addErr != nil {
						log.Printf("failed to watch %s: %v", event.Name, addErr)
					}
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
			} else {
				timer.Reset(debounceWindow)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			report, err := im.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("re-import failed: %v", err)
				continue
			}
			log.Printf("re-import: %d parsed, %d added, %d skipped, %d failed",
				report.Parsed, report.Added, report.Skipped, report.Failed)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", watchErr)
		}
	}
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
