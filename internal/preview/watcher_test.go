package preview

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/puggle/internal/config"
)

func TestShouldIgnoreEvent(t *testing.T) {
	tests := []struct {
		path   string
		ignore bool
	}{
		{"posts/hello.md", false},
		{"templates/post.html", false},
		{"posts/.hello.md.swp", true},
		{"posts/hello.md.swp", true},
		{"posts/hello.md~", true},
		{"posts/#hello.md#", true},
		{"posts/.DS_Store", true},
		{"Thumbs.db", true},
		{"posts/#notes", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.ignore, shouldIgnoreEvent(tt.path))
		})
	}
}

func TestFilter_Match(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{
		TemplatesDir: filepath.Join(root, "templates"),
		DestDir:      filepath.Join(root, "public"),
	}
	f := NewFilter(cfg, filepath.Join(root, "site.yaml"))
	require.Equal(t, "site.yaml", f.ConfigName)

	tests := []struct {
		name  string
		path  string
		match bool
	}{
		{"markdown", filepath.Join(root, "posts", "a.md"), true},
		{"template", filepath.Join(root, "templates", "post.html"), true},
		{"nested template", filepath.Join(root, "templates", "partials", "nav.html"), true},
		{"config", filepath.Join(root, "site.yaml"), true},
		{"other config name", filepath.Join(root, "puggle.yaml"), false},
		{"output markdown", filepath.Join(root, "public", "a.md"), false},
		{"output html", filepath.Join(root, "public", "blog", "index.html"), false},
		{"unrelated", filepath.Join(root, "README.txt"), false},
		{"swap file", filepath.Join(root, "posts", ".a.md.swp"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.match, f.Match(tt.path))
		})
	}
}

func TestFilter_DefaultConfigName(t *testing.T) {
	f := NewFilter(&config.Config{TemplatesDir: "templates", DestDir: "public"}, "")
	require.Equal(t, config.DefaultPath, f.ConfigName)
	require.True(t, f.IsConfig(filepath.Join("a", config.DefaultPath)))
	require.False(t, f.IsConfig("other.yaml"))
}

func TestWithin(t *testing.T) {
	require.True(t, within("/a/b", "/a/b"))
	require.True(t, within("/a/b/c", "/a/b"))
	require.False(t, within("/a/bc", "/a/b"))
	require.False(t, within("/a", "/a/b"))
}

func TestWatcher_ReportsMatchingChanges(t *testing.T) {
	root := t.TempDir()
	posts := filepath.Join(root, "posts")
	public := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(posts, 0o750))
	require.NoError(t, os.MkdirAll(public, 0o750))

	cfg := &config.Config{TemplatesDir: filepath.Join(root, "templates"), DestDir: public}
	w, err := NewWatcher(root, NewFilter(cfg, filepath.Join(root, config.DefaultPath)), nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("out"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "notes.txt"), []byte("x"), 0o600))
	target := filepath.Join(posts, "hello.md")
	require.NoError(t, os.WriteFile(target, []byte("# hi\n"), 0o600))

	select {
	case got := <-w.Changes():
		require.Equal(t, target, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	for range w.Changes() {
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{TemplatesDir: filepath.Join(root, "templates"), DestDir: filepath.Join(root, "public")}
	w, err := NewWatcher(root, NewFilter(cfg, ""), nil)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	go w.Run(t.Context())

	dir := filepath.Join(root, "drafts")
	require.NoError(t, os.Mkdir(dir, 0o750))
	target := filepath.Join(dir, "later.md")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("x"), 0o600)
		select {
		case got := <-w.Changes():
			return got == target
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
