package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

// Example returns the configuration written by Init.
func Example() *Config {
	description := "Notes and articles"
	feedName := "My Blog"
	base, _ := ParseURL("https://example.com/")
	return &Config{
		TemplatesDir: "templates",
		DestDir:      "public",
		BaseURL:      base,
		Pages: []Page{
			{
				Kind:         PageWithEntries,
				Name:         "blog",
				TemplatePath: "blog.html",
				Description:  &description,
				RSS:          true,
				RSSName:      &feedName,
				Entries: []Entry{
					{Kind: EntryDir, SourceDir: "posts", TemplatePath: "post.html"},
				},
			},
			{Kind: PageStandalone, Name: "about", TemplatePath: "about.html"},
		},
		Preview: PreviewConfig{Host: defaultPreviewHost, Port: defaultPreviewPort},
	}
}

// Init writes the example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return derrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return derrors.IOError(err, "failed to stat config file").WithContext("path", path).Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return derrors.InternalError("failed to marshal example config").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return derrors.IOError(err, "failed to write config file").WithContext("path", path).Build()
	}
	return nil
}
