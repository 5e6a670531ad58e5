package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/puggle/internal/config"
)

// DefaultBaseURL is the base URL fixtures start with.
const DefaultBaseURL = "https://example.com/"

// SiteFixture lays out a site source tree in a temporary directory and
// builds the matching configuration.
type SiteFixture struct {
	t            *testing.T
	Root         string
	TemplatesDir string
	DestDir      string
	cfg          *config.Config
}

// NewSiteFixture creates an empty site rooted in t.TempDir().
func NewSiteFixture(t *testing.T) *SiteFixture {
	t.Helper()
	root := t.TempDir()
	base, err := config.ParseURL(DefaultBaseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	f := &SiteFixture{
		t:            t,
		Root:         root,
		TemplatesDir: filepath.Join(root, "templates"),
		DestDir:      filepath.Join(root, "public"),
	}
	f.cfg = &config.Config{
		TemplatesDir: f.TemplatesDir,
		DestDir:      f.DestDir,
		BaseURL:      base,
		Preview:      config.PreviewConfig{Host: "127.0.0.1", Port: 3000},
	}
	if err := os.MkdirAll(f.TemplatesDir, testDirPermissions); err != nil {
		t.Fatalf("create templates dir: %v", err)
	}
	return f
}

// WithBaseURL replaces the base URL.
func (f *SiteFixture) WithBaseURL(raw string) *SiteFixture {
	f.t.Helper()
	base, err := config.ParseURL(raw)
	if err != nil {
		f.t.Fatalf("parse base url %q: %v", raw, err)
	}
	f.cfg.BaseURL = base
	return f
}

// WithPage appends a page to the configuration.
func (f *SiteFixture) WithPage(p config.Page) *SiteFixture {
	f.cfg.Pages = append(f.cfg.Pages, p)
	return f
}

// Template writes a template file under the templates directory.
func (f *SiteFixture) Template(name, content string) *SiteFixture {
	f.t.Helper()
	f.write(filepath.Join(f.TemplatesDir, name), content)
	return f
}

// File writes a file relative to the fixture root and returns its path.
func (f *SiteFixture) File(rel, content string) string {
	f.t.Helper()
	path := filepath.Join(f.Root, rel)
	f.write(path, content)
	return path
}

// Markdown writes an entry with YAML front matter built from fields and
// returns its path. Keys are written in sorted order.
func (f *SiteFixture) Markdown(rel string, fields map[string]any, body string) string {
	f.t.Helper()
	var b strings.Builder
	if fields != nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("---\n")
		for _, k := range keys {
			value, err := yaml.Marshal(map[string]any{k: fields[k]})
			if err != nil {
				f.t.Fatalf("marshal front matter field %s: %v", k, err)
			}
			b.Write(value)
		}
		b.WriteString("---\n")
	}
	b.WriteString(body)
	return f.File(rel, b.String())
}

// Dir returns the absolute path of a directory relative to the root,
// creating it.
func (f *SiteFixture) Dir(rel string) string {
	f.t.Helper()
	path := filepath.Join(f.Root, rel)
	if err := os.MkdirAll(path, testDirPermissions); err != nil {
		f.t.Fatalf("create dir %s: %v", path, err)
	}
	return path
}

// Config returns the configuration built so far.
func (f *SiteFixture) Config() *config.Config {
	return f.cfg
}

// SaveConfig writes the configuration as puggle.yaml in the root and returns its path.
func (f *SiteFixture) SaveConfig() string {
	f.t.Helper()
	data, err := yaml.Marshal(f.cfg)
	if err != nil {
		f.t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(f.Root, config.DefaultPath)
	f.write(path, string(data))
	return path
}

// Output returns file assertions rooted at the destination directory.
func (f *SiteFixture) Output() *FileAssertions {
	return NewFileAssertions(f.t, f.DestDir)
}

func (f *SiteFixture) write(path, content string) {
	f.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		f.t.Fatalf("create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), testFilePermissions); err != nil {
		f.t.Fatalf("write %s: %v", path, err)
	}
}

// Blog adds the layout used by most build tests: a post layout, a listing
// template for page name, and a page with one dir entry at posts/.
func (f *SiteFixture) Blog(name string) *SiteFixture {
	f.Template("post.html", "<html><body><article>{% block content %}{% endblock %}</article></body></html>")
	f.Template(name+".html", fmt.Sprintf(
		"<ul>{%% for e in pages.%s %%}<li>{{ e.file_name }}:{{ e.title }}</li>{%% endfor %%}</ul>", name))
	return f.WithPage(config.Page{
		Kind:         config.PageWithEntries,
		Name:         name,
		TemplatePath: name + ".html",
		Entries: []config.Entry{
			{Kind: config.EntryDir, SourceDir: f.Dir("posts"), TemplatePath: "post.html"},
		},
	})
}
