// Package config loads and validates puggle.yaml.
package config

import (
	"fmt"
	"net/url"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "puggle.yaml"

// Config is the site configuration. It is loaded once and not modified
// during a build.
type Config struct {
	Pages        []Page        `yaml:"pages"`
	TemplatesDir string        `yaml:"templates_dir"`
	DestDir      string        `yaml:"dest_dir"`
	BaseURL      URL           `yaml:"base_url"`
	Preview      PreviewConfig `yaml:"preview,omitempty"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
	// LiveReload defaults to true when unset.
	LiveReload *bool `yaml:"live_reload,omitempty"`
	// PollInterval enables periodic rebuilds in addition to file watching.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
}

const (
	defaultPreviewHost = "0.0.0.0"
	defaultPreviewPort = 3000
)

// LiveReloadEnabled reports whether the preview server injects the reload script.
func (p PreviewConfig) LiveReloadEnabled() bool {
	return p.LiveReload == nil || *p.LiveReload
}

// Addr returns host:port for the preview listener.
func (p PreviewConfig) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// URL is an absolute URL read from a YAML string.
type URL struct {
	url.URL
}

// ParseURL parses raw into a URL.
func ParseURL(raw string) (URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return URL{}, err
	}
	return URL{URL: *u}, nil
}

func (u *URL) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseURL(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid base_url: %w", value.Line, err)
	}
	*u = parsed
	return nil
}

func (u URL) MarshalYAML() (any, error) {
	return u.String(), nil
}

// Base returns the configured base URL.
func (c *Config) Base() *url.URL {
	u := c.BaseURL.URL
	return &u
}

// PageKind distinguishes pages that list entries from standalone pages.
type PageKind int

const (
	PageStandalone PageKind = iota
	PageWithEntries
)

func (k PageKind) String() string {
	if k == PageWithEntries {
		return "with_entries"
	}
	return "standalone"
}

// Page is one section of the site. Pages with entries are selected by the
// presence of the entries key.
type Page struct {
	Kind         PageKind
	Name         string
	TemplatePath string
	Description  *string
	RSS          bool
	RSSName      *string
	Entries      []Entry
}

// HasEntries reports whether p is a listing page.
func (p Page) HasEntries() bool { return p.Kind == PageWithEntries }

// FeedTitle is the RSS channel title: rss_name, or the page name.
func (p Page) FeedTitle() string {
	if p.RSSName != nil {
		return *p.RSSName
	}
	return p.Name
}

// EntryKind distinguishes directory entries from single file entries.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDir
)

func (k EntryKind) String() string {
	if k == EntryDir {
		return "dir"
	}
	return "file"
}

// Entry is a source of Markdown files for a page. A dir entry expands to
// every *.md file directly inside SourceDir.
type Entry struct {
	Kind         EntryKind
	SourceDir    string
	MarkdownPath string
	TemplatePath string
}

// Source returns the directory or file the entry reads.
func (e Entry) Source() string {
	if e.Kind == EntryDir {
		return e.SourceDir
	}
	return e.MarkdownPath
}
