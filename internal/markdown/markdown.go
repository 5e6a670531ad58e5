// Package markdown turns an entry's Markdown source into its HTML partial.
//
// Parsing is done by goldmark with the blog dialect's extensions. Headings
// and fenced code blocks are rendered by the node renderers in rewrite.go
// instead of goldmark's defaults; everything else renders unchanged.
package markdown

import (
	"bytes"
	"errors"
	"io"
	"net/url"

	"github.com/gohugoio/hugo-goldmark-extensions/extras"
	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/wikilink"

	"git.home.luguber.info/inful/puggle/internal/frontmatter"
	"git.home.luguber.info/inful/puggle/internal/metadata"
)

// Options controls how one entry is rendered.
type Options struct {
	// BaseURL is the site's absolute URL; heading self-links resolve against it.
	BaseURL *url.URL
	// PagePath is "<page name>/<entry stem>".
	PagePath string
}

// Document is a parsed entry: its decoded front matter and the rewritten
// Markdown tree ready to be serialized.
type Document struct {
	// Metadata is nil when the source has no front matter block.
	Metadata *metadata.Metadata

	md   goldmark.Markdown
	root gmast.Node
	body []byte
}

// New returns a goldmark instance configured with the blog dialect and the
// heading and code block rewriter for opts.
//
// GFM strikethrough is replaced by the extras delete extension so that a
// single tilde pair can mean subscript.
func New(opts Options) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
			extension.Table,
			extension.TaskList,
			extension.Footnote,
			extension.Typographer,
			extras.New(extras.Config{
				Delete:      extras.DeleteConfig{Enable: true},
				Subscript:   extras.SubscriptConfig{Enable: true},
				Superscript: extras.SuperscriptConfig{Enable: true},
			}),
			passthrough.New(passthrough.Config{
				InlineDelimiters: []passthrough.Delimiters{inlineDisplayMath, inlineMath},
				BlockDelimiters:  []passthrough.Delimiters{displayMath},
			}),
			&mathRenderer{},
			&wikilink.Extender{Resolver: pageResolver{}},
			&rewriter{baseURL: opts.BaseURL, pagePath: opts.PagePath},
		),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// Parse splits off the front matter, decodes it and parses the body.
// path only labels errors.
func Parse(path string, source []byte, opts Options) (*Document, error) {
	raw, body, had, err := frontmatter.Split(source)
	if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
		// An unterminated block is ordinary Markdown, not front matter.
		body, had = source, false
	}

	doc := &Document{md: New(opts), body: body}
	if had {
		meta, err := metadata.Parse(path, raw)
		if err != nil {
			return nil, err
		}
		doc.Metadata = meta
	}
	doc.root = doc.md.Parser().Parse(text.NewReader(body))
	return doc, nil
}

// Render writes the HTML partial to w.
func (d *Document) Render(w io.Writer) error {
	return d.md.Renderer().Render(w, d.body, d.root)
}

// HTML returns the HTML partial.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
