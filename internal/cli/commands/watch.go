package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/textnb/internal/engine"
)

// watchDebounce is how long events on one file are coalesced.
const watchDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-sniff text notebooks as they change",
		Long: `Watch a directory tree and report the dialect of every text notebook whose
content changes. Hidden directories are skipped. Stop with Ctrl+C.`,
		Example: `  # Watch the current directory
  textnb watch

  # Watch a notebooks folder, logging decisions
  textnb watch notebooks -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd, dir)
		},
	}
}

func runWatch(cmd *cobra.Command, dir string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	nw := newNotebookWatcher(cmdCtx.Engine)
	discovered, err := nw.seed(dir)
	if err != nil {
		return err
	}
	r.Println(r.Muted(discovered.Summary()))
	for _, e := range discovered.Errors {
		r.Warning(fmt.Sprintf("%s: %s", e.Path, e.Message))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	nw.loop(ctx, fsnotifySource(watcher), func(rep SniffReport) {
		renderSniffReports(r, []SniffReport{rep})
	}, cmdCtx.Logger.Warn)
	return nil
}

// notebookWatcher tracks the content hash of every text notebook so that
// only real content changes are reported.
type notebookWatcher struct {
	eng *engine.Engine

	mu     sync.Mutex
	hashes map[string]string
}

func newNotebookWatcher(eng *engine.Engine) *notebookWatcher {
	return &notebookWatcher{eng: eng, hashes: make(map[string]string)}
}

// seed records the hashes of the notebooks already present under dir.
func (w *notebookWatcher) seed(dir string) (*engine.DiscoveryResult, error) {
	result, err := w.eng.Discover(dir)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, doc := range result.Documents {
		w.hashes[doc.Path] = doc.Hash
	}
	return result, nil
}

// changed re-hashes path and reports whether its content differs from the
// last time it was seen. Removed files are forgotten.
func (w *notebookWatcher) changed(path string) bool {
	if !w.eng.IsTextNotebook(path) {
		return false
	}

	hash, err := engine.HashFile(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		delete(w.hashes, path)
		return false
	}
	if w.hashes[path] == hash {
		return false
	}
	w.hashes[path] = hash
	return true
}

// watchSource is where loop receives file system events from.
type watchSource struct {
	Events <-chan fsnotify.Event
	Errors <-chan error
	// AddDir starts watching a directory created while running.
	AddDir func(dir string) error
}

func fsnotifySource(watcher *fsnotify.Watcher) watchSource {
	return watchSource{
		Events: watcher.Events,
		Errors: watcher.Errors,
		AddDir: func(dir string) error { return watchDirRecursive(watcher, dir) },
	}
}

// loop handles file system events until ctx is done or the source closes.
// Events on one path are debounced; report and warn are only ever called
// from the loop goroutine, never after loop returns.
func (w *notebookWatcher) loop(ctx context.Context, src watchSource, report func(SniffReport), warn func(string, ...any)) {
	timers := make(map[string]*time.Timer)
	due := make(chan string)
	done := make(chan struct{})

	defer func() {
		close(done)
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case path := <-due:
			delete(timers, path)
			if w.changed(path) {
				report(sniffFile(w.eng, path))
			}

		case event, ok := <-src.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if src.AddDir != nil {
						if err := src.AddDir(event.Name); err != nil {
							warn("failed to watch directory", "path", event.Name, "error", err)
						}
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			path := event.Name
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				select {
				case due <- path:
				case <-done:
				}
			})

		case err, ok := <-src.Errors:
			if !ok {
				return
			}
			warn("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds dir and its subdirectories to the watcher,
// skipping hidden directories.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

