package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

func TestParse_FullFrontMatter(t *testing.T) {
	raw := []byte(`title: Hello World
created_at: 2024-03-01T10:00:00Z
updated_at: "2024-03-02T12:30:00+02:00"
tags: [go, blog]
cover: /img/cover.png
summary: A first post
author_email: me@example.com
aliases:
  - old-name
  - very/old/name
custom:
  mood: happy
`)

	m, err := Parse("posts/hello.md", raw)
	require.NoError(t, err)
	require.Equal(t, "Hello World", m.Title)
	require.Equal(t, []string{"go", "blog"}, m.Tags)
	require.Equal(t, []string{"old-name", "very/old/name"}, m.Aliases)
	require.Equal(t, map[string]string{"mood": "happy"}, m.Custom)
	require.Equal(t, "/img/cover.png", *m.Cover)
	require.Equal(t, "A first post", *m.Summary)
	require.Equal(t, "me@example.com", *m.AuthorEmail)
	require.Empty(t, m.FileName)

	require.NotNil(t, m.CreatedAt)
	require.True(t, m.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, m.CreatedAt.Unix(), *m.UnixCreatedAt)
	require.Equal(t, m.UpdatedAt.Unix(), *m.UnixUpdatedAt)
	require.Equal(t, int64(1709375400), *m.UnixUpdatedAt)
}

func TestParse_TimestampsAbsentTogether(t *testing.T) {
	m, err := Parse("a.md", []byte("title: Hi\ntags: []\n"))
	require.NoError(t, err)
	require.Nil(t, m.CreatedAt)
	require.Nil(t, m.UnixCreatedAt)
	require.Nil(t, m.UpdatedAt)
	require.Nil(t, m.UnixUpdatedAt)
	require.Empty(t, m.Tags)
	require.NotNil(t, m.Tags)
	require.Nil(t, m.Aliases)
}

func TestParse_ComputedFieldsAreNotReadFromInput(t *testing.T) {
	m, err := Parse("a.md", []byte("title: Hi\ntags: []\nfile_name: sneaky\nunix_created_at: 5\n"))
	require.NoError(t, err)
	require.Empty(t, m.FileName)
	require.Nil(t, m.UnixCreatedAt)
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	m, err := Parse("a.md", []byte("title: Hi\ntags: [x]\ndraft: true\nlayout: wide\n"))
	require.NoError(t, err)
	require.Equal(t, "Hi", m.Title)
	require.Equal(t, []string{"x"}, m.Tags)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"missing title", "tags: []\n", "missing field `title`"},
		{"missing tags", "title: Hi\n", "missing field `tags`"},
		{"bad timestamp", "title: Hi\ntags: []\ncreated_at: yesterday\n", "created_at"},
		{"invalid yaml", "title: [unterminated\n", "yaml"},
		{"empty block", "   \n", "missing field `title`"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("posts/broken.md", []byte(tc.raw))
			require.Error(t, err)
			require.True(t, derrors.HasCategory(err, derrors.CategoryMetadataDeserialize))
			require.Contains(t, err.Error(), "posts/broken.md")
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestTemplateValue(t *testing.T) {
	m, err := Parse("a.md", []byte("title: Hi\ntags: [x]\ncreated_at: 2024-01-01T00:00:00Z\n"))
	require.NoError(t, err)
	m.FileName = "a"

	v := m.TemplateValue()
	require.Equal(t, "Hi", v["title"])
	require.Equal(t, "a", v["file_name"])
	require.Equal(t, []string{"x"}, v["tags"])
	require.Equal(t, int64(1704067200), v["unix_created_at"])
	require.IsType(t, time.Time{}, v["created_at"])
	require.Nil(t, v["updated_at"])
	require.Nil(t, v["unix_updated_at"])
	require.Nil(t, v["summary"])

	records := Records([]*Metadata{m, m})
	require.Len(t, records, 2)
	require.Equal(t, "Hi", records[1]["title"])
}
