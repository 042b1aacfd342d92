// Package watch implements the hot folder: drop a performance document
// next to an audio file and the pair is exported automatically.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"glyphtone/core/composer"
	"glyphtone/logger"
	"glyphtone/model"
)

// performanceExt marks the document half of a pair.
const performanceExt = ".json"

// audioExts lists the upload formats the transcoder accepts, in the order
// a pair lookup probes them.
var audioExts = []string{".ogg", ".opus", ".mp3", ".flac", ".wav", ".m4a"}

// Watcher exports audio/performance pairs dropped into a directory.
type Watcher struct {
	dir    string
	outDir string
	comp   *composer.Composer

	mu   sync.Mutex
	done map[string]bool // stems already exported this run
}

// New creates a Watcher over dir writing results to outDir.
func New(dir, outDir string, comp *composer.Composer) *Watcher {
	return &Watcher{
		dir:    dir,
		outDir: outDir,
		comp:   comp,
		done:   make(map[string]bool),
	}
}

// Run watches the folder until the context is canceled. Pairs already
// present at startup are exported first.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create watch dir %s: %w", w.dir, err)
	}
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("hot folder watching", logger.String("dir", w.dir))
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.tryExport(ctx, stem(event.Name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("hot folder watch error", logger.ErrorField(err))
		}
	}
}

// scan exports every complete pair already sitting in the folder.
func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("hot folder scan failed", logger.ErrorField(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.tryExport(ctx, stem(entry.Name()))
	}
}

// tryExport runs one export if both halves of the pair exist and the stem
// has not been exported yet.
func (w *Watcher) tryExport(ctx context.Context, name string) {
	if name == "" {
		return
	}

	docPath := filepath.Join(w.dir, name+performanceExt)
	audioPath, ok := findAudio(w.dir, name)
	if !ok {
		return
	}
	if _, err := os.Stat(docPath); err != nil {
		return
	}

	w.mu.Lock()
	if w.done[name] {
		w.mu.Unlock()
		return
	}
	w.done[name] = true
	w.mu.Unlock()

	perf, err := readPerformance(docPath)
	if err != nil {
		logger.Error("hot folder document rejected",
			logger.String("doc", docPath),
			logger.ErrorField(err))
		return
	}

	title := perf.Name
	if title == "" {
		title = name
	}
	result, err := w.comp.Compose(ctx, composer.Request{
		AudioPath:   audioPath,
		OutputDir:   w.outDir,
		Performance: perf,
		Title:       title,
	})
	if err != nil {
		logger.Error("hot folder export failed",
			logger.String("audio", audioPath),
			logger.ErrorField(err))
		// Allow a retry once the user fixes the inputs.
		w.mu.Lock()
		delete(w.done, name)
		w.mu.Unlock()
		return
	}

	logger.Info("hot folder export finished",
		logger.String("audio", audioPath),
		logger.String("output", result.OutputPath),
		logger.Int("frames", result.FrameCount))
}

// stem strips the directory and extension from a path.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// findAudio looks for the audio half of a pair.
func findAudio(dir, name string) (string, bool) {
	for _, ext := range audioExts {
		candidate := filepath.Join(dir, name+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// readPerformance parses a performance document from disk.
func readPerformance(path string) (*model.Performance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var perf model.Performance
	if err := json.Unmarshal(raw, &perf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &perf, nil
}
