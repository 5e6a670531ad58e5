package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type standaloneWire struct {
	Name         string `yaml:"name"`
	TemplatePath string `yaml:"template_path"`
}

type withEntriesWire struct {
	Name         string  `yaml:"name"`
	TemplatePath string  `yaml:"template_path"`
	Description  *string `yaml:"description,omitempty"`
	RSS          bool    `yaml:"rss,omitempty"`
	RSSName      *string `yaml:"rss_name,omitempty"`
	Entries      []Entry `yaml:"entries"`
}

type dirEntryWire struct {
	SourceDir    string `yaml:"source_dir"`
	TemplatePath string `yaml:"template_path"`
}

type fileEntryWire struct {
	MarkdownPath string `yaml:"markdown_path"`
	TemplatePath string `yaml:"template_path"`
}

var (
	standaloneKeys  = []string{"name", "template_path"}
	withEntriesKeys = []string{"name", "template_path", "description", "rss", "rss_name", "entries"}
	dirEntryKeys    = []string{"source_dir", "template_path"}
	fileEntryKeys   = []string{"markdown_path", "template_path"}
)

// mappingKeys returns the keys of a mapping node.
func mappingKeys(value *yaml.Node, what string) (map[string]bool, error) {
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: %s must be a mapping", value.Line, what)
	}
	keys := make(map[string]bool, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keys[value.Content[i].Value] = true
	}
	return keys, nil
}

func rejectUnknown(value *yaml.Node, keys map[string]bool, allowed []string, what string) error {
	var unknown []string
	for k := range keys {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("line %d: unknown field(s) %s in %s (expected one of %s)",
		value.Line, strings.Join(unknown, ", "), what, strings.Join(allowed, ", "))
}

func requireKeys(value *yaml.Node, keys map[string]bool, required []string, what string) error {
	for _, r := range required {
		if !keys[r] {
			return fmt.Errorf("line %d: missing field `%s` in %s", value.Line, r, what)
		}
	}
	return nil
}

// UnmarshalYAML selects the page variant by the presence of entries.
func (p *Page) UnmarshalYAML(value *yaml.Node) error {
	keys, err := mappingKeys(value, "page")
	if err != nil {
		return err
	}

	if keys["entries"] {
		if err := rejectUnknown(value, keys, withEntriesKeys, "page"); err != nil {
			return err
		}
		if err := requireKeys(value, keys, []string{"name", "template_path"}, "page"); err != nil {
			return err
		}
		var w withEntriesWire
		if err := value.Decode(&w); err != nil {
			return err
		}
		entries := w.Entries
		if entries == nil {
			entries = []Entry{}
		}
		*p = Page{
			Kind:         PageWithEntries,
			Name:         w.Name,
			TemplatePath: w.TemplatePath,
			Description:  w.Description,
			RSS:          w.RSS,
			RSSName:      w.RSSName,
			Entries:      entries,
		}
		return nil
	}

	if err := rejectUnknown(value, keys, standaloneKeys, "standalone page"); err != nil {
		return err
	}
	if err := requireKeys(value, keys, standaloneKeys, "page"); err != nil {
		return err
	}
	var w standaloneWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*p = Page{Kind: PageStandalone, Name: w.Name, TemplatePath: w.TemplatePath}
	return nil
}

func (p Page) MarshalYAML() (any, error) {
	if p.Kind == PageStandalone {
		return standaloneWire{Name: p.Name, TemplatePath: p.TemplatePath}, nil
	}
	return withEntriesWire{
		Name:         p.Name,
		TemplatePath: p.TemplatePath,
		Description:  p.Description,
		RSS:          p.RSS,
		RSSName:      p.RSSName,
		Entries:      p.Entries,
	}, nil
}

// UnmarshalYAML selects the entry variant by source_dir or markdown_path.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	keys, err := mappingKeys(value, "entry")
	if err != nil {
		return err
	}

	switch {
	case keys["source_dir"] && keys["markdown_path"]:
		return fmt.Errorf("line %d: entry sets both source_dir and markdown_path", value.Line)
	case keys["source_dir"]:
		if err := rejectUnknown(value, keys, dirEntryKeys, "entry"); err != nil {
			return err
		}
		if err := requireKeys(value, keys, dirEntryKeys, "entry"); err != nil {
			return err
		}
		var w dirEntryWire
		if err := value.Decode(&w); err != nil {
			return err
		}
		*e = Entry{Kind: EntryDir, SourceDir: w.SourceDir, TemplatePath: w.TemplatePath}
	case keys["markdown_path"]:
		if err := rejectUnknown(value, keys, fileEntryKeys, "entry"); err != nil {
			return err
		}
		if err := requireKeys(value, keys, fileEntryKeys, "entry"); err != nil {
			return err
		}
		var w fileEntryWire
		if err := value.Decode(&w); err != nil {
			return err
		}
		*e = Entry{Kind: EntryFile, MarkdownPath: w.MarkdownPath, TemplatePath: w.TemplatePath}
	default:
		return fmt.Errorf("line %d: entry needs source_dir or markdown_path", value.Line)
	}
	return nil
}

func (e Entry) MarshalYAML() (any, error) {
	if e.Kind == EntryDir {
		return dirEntryWire{SourceDir: e.SourceDir, TemplatePath: e.TemplatePath}, nil
	}
	return fileEntryWire{MarkdownPath: e.MarkdownPath, TemplatePath: e.TemplatePath}, nil
}
