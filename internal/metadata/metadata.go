// Package metadata decodes the YAML front matter of an entry into the record
// that templates, listing indexes and feeds consume.
package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

// Metadata is the front matter of one entry plus the fields derived from it.
//
// UnixCreatedAt, UnixUpdatedAt and FileName are never read from input.
type Metadata struct {
	Title         string
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
	UnixCreatedAt *int64
	UnixUpdatedAt *int64
	Tags          []string
	FileName      string
	Cover         *string
	Summary       *string
	AuthorEmail   *string
	Aliases       []string
	Custom        map[string]string
}

// wire mirrors the accepted YAML keys. Pointers distinguish absent from empty.
type wire struct {
	Title       *string           `yaml:"title"`
	CreatedAt   *string           `yaml:"created_at"`
	UpdatedAt   *string           `yaml:"updated_at"`
	Tags        *[]string         `yaml:"tags"`
	Cover       *string           `yaml:"cover"`
	Summary     *string           `yaml:"summary"`
	AuthorEmail *string           `yaml:"author_email"`
	Aliases     []string          `yaml:"aliases"`
	Custom      map[string]string `yaml:"custom"`
}

// UnmarshalYAML decodes the front matter keys and fills the computed fields.
func (m *Metadata) UnmarshalYAML(value *yaml.Node) error {
	var w wire
	if err := value.Decode(&w); err != nil {
		return err
	}
	if w.Title == nil {
		return errors.New("missing field `title`")
	}
	if w.Tags == nil {
		return errors.New("missing field `tags`")
	}

	createdAt, err := parseTimestamp("created_at", w.CreatedAt)
	if err != nil {
		return err
	}
	updatedAt, err := parseTimestamp("updated_at", w.UpdatedAt)
	if err != nil {
		return err
	}

	*m = Metadata{
		Title:       *w.Title,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Tags:        *w.Tags,
		Cover:       w.Cover,
		Summary:     w.Summary,
		AuthorEmail: w.AuthorEmail,
		Aliases:     w.Aliases,
		Custom:      w.Custom,
	}
	m.UnixCreatedAt = unixSeconds(m.CreatedAt)
	m.UnixUpdatedAt = unixSeconds(m.UpdatedAt)
	return nil
}

// Parse decodes captured front matter text. path only labels errors.
//
// The returned FileName is empty; callers set it to the entry's stem.
func Parse(path string, raw []byte) (*Metadata, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, derrors.MetadataDeserializeError(path, errors.New("missing field `title`")).Build()
	}
	var m Metadata
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, derrors.MetadataDeserializeError(path, err).Build()
	}
	return &m, nil
}

func parseTimestamp(field string, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid RFC 3339 timestamp %q", field, *raw)
	}
	return &ts, nil
}

func unixSeconds(ts *time.Time) *int64 {
	if ts == nil {
		return nil
	}
	secs := ts.Unix()
	return &secs
}

// TemplateValue converts m into the snake_case record templates see.
// Absent optional fields map to nil.
func (m *Metadata) TemplateValue() map[string]any {
	v := map[string]any{
		"title":           m.Title,
		"created_at":      nil,
		"updated_at":      nil,
		"unix_created_at": nil,
		"unix_updated_at": nil,
		"tags":            m.Tags,
		"file_name":       m.FileName,
		"cover":           nil,
		"summary":         nil,
		"author_email":    nil,
		"aliases":         m.Aliases,
		"custom":          m.Custom,
	}
	if m.CreatedAt != nil {
		v["created_at"] = *m.CreatedAt
		v["unix_created_at"] = *m.UnixCreatedAt
	}
	if m.UpdatedAt != nil {
		v["updated_at"] = *m.UpdatedAt
		v["unix_updated_at"] = *m.UnixUpdatedAt
	}
	if m.Cover != nil {
		v["cover"] = *m.Cover
	}
	if m.Summary != nil {
		v["summary"] = *m.Summary
	}
	if m.AuthorEmail != nil {
		v["author_email"] = *m.AuthorEmail
	}
	return v
}

// Records converts a metadata list into template records, preserving order.
func Records(list []*Metadata) []map[string]any {
	out := make([]map[string]any, 0, len(list))
	for _, m := range list {
		out = append(out, m.TemplateValue())
	}
	return out
}
