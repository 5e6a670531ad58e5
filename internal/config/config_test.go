package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

const fullConfig = `templates_dir: templates
dest_dir: public
base_url: https://example.com/
pages:
  - name: blog
    template_path: blog.html
    description: All posts
    rss: true
    rss_name: My Feed
    entries:
      - source_dir: posts
        template_path: post.html
      - markdown_path: extra/hello.md
        template_path: special.html
  - name: about
    template_path: about.html
preview:
  port: 4000
  live_reload: false
  poll_interval: 30s
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	require.Equal(t, "templates", cfg.TemplatesDir)
	require.Equal(t, "public", cfg.DestDir)
	require.Equal(t, "https://example.com/", cfg.Base().String())
	require.Len(t, cfg.Pages, 2)

	blog := cfg.Pages[0]
	require.True(t, blog.HasEntries())
	require.Equal(t, "blog", blog.Name)
	require.Equal(t, "blog.html", blog.TemplatePath)
	require.NotNil(t, blog.Description)
	require.Equal(t, "All posts", *blog.Description)
	require.True(t, blog.RSS)
	require.Equal(t, "My Feed", blog.FeedTitle())
	require.Equal(t, []Entry{
		{Kind: EntryDir, SourceDir: "posts", TemplatePath: "post.html"},
		{Kind: EntryFile, MarkdownPath: "extra/hello.md", TemplatePath: "special.html"},
	}, blog.Entries)

	about := cfg.Pages[1]
	require.False(t, about.HasEntries())
	require.Equal(t, "about", about.FeedTitle())
	require.Nil(t, about.Entries)

	require.Equal(t, "0.0.0.0", cfg.Preview.Host)
	require.Equal(t, 4000, cfg.Preview.Port)
	require.False(t, cfg.Preview.LiveReloadEnabled())
	require.Equal(t, 30*time.Second, cfg.Preview.PollInterval)
	require.Equal(t, "0.0.0.0:4000", cfg.Preview.Addr())
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`templates_dir: t
dest_dir: d
base_url: https://example.com/
pages:
  - name: blog
    template_path: blog.html
    entries: []
`))
	require.NoError(t, err)
	require.True(t, cfg.Pages[0].HasEntries())
	require.False(t, cfg.Pages[0].RSS)
	require.Empty(t, cfg.Pages[0].Entries)
	require.Equal(t, 3000, cfg.Preview.Port)
	require.True(t, cfg.Preview.LiveReloadEnabled())
	require.Zero(t, cfg.Preview.PollInterval)
}

func TestParse_Rejects(t *testing.T) {
	base := "templates_dir: t\ndest_dir: d\nbase_url: https://example.com/\n"
	cases := []struct {
		name     string
		yaml     string
		category derrors.ErrorCategory
		contains string
	}{
		{"empty file", "", derrors.CategoryConfig, "empty"},
		{"unknown top-level key", base + "pages: [{name: a, template_path: a.html}]\nsitemap: true\n", derrors.CategoryConfig, "sitemap"},
		{"unknown page key", base + "pages: [{name: a, template_path: a.html, entries: [], colour: red}]\n", derrors.CategoryConfig, "colour"},
		{"rss on standalone page", base + "pages: [{name: a, template_path: a.html, rss: true}]\n", derrors.CategoryConfig, "rss"},
		{"unknown entry key", base + "pages: [{name: a, template_path: a.html, entries: [{source_dir: p, template_path: x, glob: '*'}]}]\n", derrors.CategoryConfig, "glob"},
		{"ambiguous entry", base + "pages: [{name: a, template_path: a.html, entries: [{source_dir: p, markdown_path: m, template_path: x}]}]\n", derrors.CategoryConfig, "both"},
		{"entry without source", base + "pages: [{name: a, template_path: a.html, entries: [{template_path: x}]}]\n", derrors.CategoryConfig, "source_dir or markdown_path"},
		{"entry without template", base + "pages: [{name: a, template_path: a.html, entries: [{source_dir: p}]}]\n", derrors.CategoryConfig, "template_path"},
		{"page without template", base + "pages: [{name: a}]\n", derrors.CategoryConfig, "template_path"},
		{"no pages", base + "pages: []\n", derrors.CategoryValidation, "page"},
		{"relative base url", "templates_dir: t\ndest_dir: d\nbase_url: /blog/\npages: [{name: a, template_path: a.html}]\n", derrors.CategoryValidation, "base_url"},
		{"missing dest dir", "templates_dir: t\nbase_url: https://example.com/\npages: [{name: a, template_path: a.html}]\n", derrors.CategoryValidation, "dest_dir"},
		{"missing templates dir", "dest_dir: d\nbase_url: https://example.com/\npages: [{name: a, template_path: a.html}]\n", derrors.CategoryValidation, "templates_dir"},
		{"duplicate page", base + "pages: [{name: a, template_path: a.html}, {name: a, template_path: b.html}]\n", derrors.CategoryValidation, "duplicate"},
		{"empty page name", base + "pages: [{name: '', template_path: a.html}]\n", derrors.CategoryValidation, "name"},
		{"empty entry path", base + "pages: [{name: a, template_path: a.html, entries: [{source_dir: '', template_path: x}]}]\n", derrors.CategoryValidation, "path"},
		{"bad port", base + "pages: [{name: a, template_path: a.html}]\npreview: {port: 70000}\n", derrors.CategoryValidation, "port"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			require.True(t, derrors.HasCategory(err, tc.category), "got %v", err)
			require.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PUGGLE_TEST_DEST", "out")
	path := filepath.Join(t.TempDir(), "puggle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`templates_dir: t
dest_dir: ${PUGGLE_TEST_DEST}
base_url: https://example.com/
pages: [{name: a, template_path: a.html}]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "out", cfg.DestDir)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := Load(path)
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))

	ce, ok := derrors.AsClassified(err)
	require.True(t, ok)
	got, ok := ce.Context().GetString("path")
	require.True(t, ok)
	require.Equal(t, path, got)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// t.Setenv restores the variable after godotenv sets it.
	t.Setenv("PUGGLE_DOTENV_BASE", "")
	require.NoError(t, os.Unsetenv("PUGGLE_DOTENV_BASE"))
	require.NoError(t, os.WriteFile(".env", []byte("PUGGLE_DOTENV_BASE=https://dotenv.example.com/\n"), 0o600))
	require.NoError(t, os.WriteFile("puggle.yaml", []byte(`templates_dir: t
dest_dir: d
base_url: ${PUGGLE_DOTENV_BASE}
pages: [{name: a, template_path: a.html}]
`), 0o600))

	cfg, err := Load("puggle.yaml")
	require.NoError(t, err)
	require.Equal(t, "https://dotenv.example.com/", cfg.Base().String())
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puggle.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Example().Pages, cfg.Pages)
	require.Equal(t, "https://example.com/", cfg.Base().String())

	err = Init(path, false)
	require.Error(t, err)
	require.True(t, derrors.HasCategory(err, derrors.CategoryConfig))

	require.NoError(t, Init(path, true))
}
