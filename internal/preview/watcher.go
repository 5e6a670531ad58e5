package preview

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/puggle/internal/config"
	"git.home.luguber.info/inful/puggle/internal/logfields"
)

// Filter decides which changed paths trigger a rebuild. Paths are matched
// after being made absolute.
type Filter struct {
	// ConfigName is the base name of the configuration file.
	ConfigName   string
	TemplatesDir string
	DestDir      string
}

// NewFilter builds a filter for cfg, read from configPath.
func NewFilter(cfg *config.Config, configPath string) Filter {
	name := filepath.Base(configPath)
	if configPath == "" {
		name = config.DefaultPath
	}
	return Filter{
		ConfigName:   name,
		TemplatesDir: absPath(cfg.TemplatesDir),
		DestDir:      absPath(cfg.DestDir),
	}
}

// Match reports whether a change to path should rebuild the site.
func (f Filter) Match(path string) bool {
	path = absPath(path)
	if f.DestDir != "" && within(path, f.DestDir) {
		return false
	}
	if shouldIgnoreEvent(path) {
		return false
	}
	base := filepath.Base(path)
	if base == f.ConfigName || filepath.Ext(base) == ".md" {
		return true
	}
	return f.TemplatesDir != "" && within(path, f.TemplatesDir)
}

// IsConfig reports whether path names the configuration file.
func (f Filter) IsConfig(path string) bool {
	return filepath.Base(path) == f.ConfigName
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// shouldIgnoreEvent returns true for editor artifacts and hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

// Watcher reports changed source paths under a root directory.
type Watcher struct {
	fs      *fsnotify.Watcher
	filter  atomic.Pointer[Filter]
	changes chan string
	logger  *slog.Logger
}

// NewWatcher watches root and its subdirectories, except hidden
// directories and the filter's dest dir.
func NewWatcher(root string, filter Filter, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fs: fw, changes: make(chan string, 16), logger: logger}
	w.filter.Store(&filter)
	if err := w.addDirsRecursive(absPath(root)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// Filter returns the filter applied to events.
func (w *Watcher) Filter() Filter {
	return *w.filter.Load()
}

// SetFilter replaces the filter. Directories that become watchable are
// added; directories already watched stay watched and are filtered out.
func (w *Watcher) SetFilter(f Filter, root string) {
	w.filter.Store(&f)
	if err := w.addDirsRecursive(absPath(root)); err != nil {
		w.logger.Warn("Watch refresh failed", logfields.Error(err))
	}
}

// Changes delivers paths that passed the filter.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run forwards filesystem events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.changes)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return
	}
	if !w.Filter().Match(ev.Name) {
		return
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	select {
	case w.changes <- ev.Name:
	case <-ctx.Done():
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) addDirsRecursive(root string) error {
	destDir := w.Filter().DestDir
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if destDir != "" && within(absPath(path), destDir) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}
