// Package feed assembles RSS 2.0 feeds for pages with rss enabled.
package feed

import (
	"encoding/xml"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/puggle/internal/config"
	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
	"git.home.luguber.info/inful/puggle/internal/metadata"
	"git.home.luguber.info/inful/puggle/internal/templates"
)

const (
	rssVersion   = "2.0"
	atomNS       = "http://www.w3.org/2005/Atom"
	contentNS    = "http://purl.org/rss/1.0/modules/content/"
	feedLanguage = "en"
)

type rssXML struct {
	XMLName   xml.Name `xml:"rss"`
	Version   string   `xml:"version,attr"`
	XMLNSAtom string   `xml:"xmlns:atom,attr"`
	XMLNSCont string   `xml:"xmlns:content,attr"`
	Channel   Channel  `xml:"channel"`
}

// Channel is the channel element of a feed.
type Channel struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Language    string   `xml:"language"`
	AtomLink    AtomLink `xml:"atom:link"`
	Items       []Item   `xml:"item"`
}

// AtomLink is the atom:link self reference of a channel.
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr,omitempty"`
}

// Item is one entry of a feed.
type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description,omitempty"`
	Author      string `xml:"author,omitempty"`
	GUID        GUID   `xml:"guid"`
	PubDate     string `xml:"pubDate,omitempty"`
	Content     *CDATA `xml:"content:encoded,omitempty"`
}

// GUID identifies an item.
type GUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// CDATA is element text written as a CDATA section.
type CDATA struct {
	Content string `xml:",cdata"`
}

// PartialRenderer expands template expressions in an HTML partial.
type PartialRenderer interface {
	RenderPartial(body string, ctx templates.Context) (string, error)
}

// EntryURL is the canonical URL of an entry: base joined with "<page>/<stem>".
func EntryURL(base *url.URL, page, stem string) string {
	return base.ResolveReference(&url.URL{Path: page + "/" + stem}).String()
}

// NewItem builds the feed item of one entry. The partial is rendered again
// with the entry's metadata so template expressions in the body resolve.
func NewItem(r PartialRenderer, base *url.URL, page string, m *metadata.Metadata, partial string) (Item, error) {
	content, err := r.RenderPartial(partial, templates.Context{"metadata": m.TemplateValue()})
	if err != nil {
		return Item{}, err
	}

	link := EntryURL(base, page, m.FileName)
	item := Item{
		Title:   m.Title,
		Link:    link,
		GUID:    GUID{Value: link},
		Content: &CDATA{Content: content},
	}
	if m.Summary != nil {
		item.Description = *m.Summary
	}
	if m.AuthorEmail != nil {
		item.Author = *m.AuthorEmail
	}
	if m.CreatedAt != nil {
		item.PubDate = m.CreatedAt.Format(time.RFC1123Z)
	}
	return item, nil
}

// Feed is the buffered feed of one page.
type Feed struct {
	Page        string
	Title       string
	Description string
	Items       []Item
}

// Channel assembles the channel element. base is used for the link and
// the atom self link.
func (f *Feed) Channel(base *url.URL) Channel {
	return Channel{
		Title:       f.Title,
		Link:        base.String(),
		Description: f.Description,
		Language:    feedLanguage,
		AtomLink:    AtomLink{Href: base.String(), Rel: "self", Type: "application/rss+xml"},
		Items:       f.Items,
	}
}

// Encode writes the feed as an RSS document.
func (f *Feed) Encode(w io.Writer, base *url.URL) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(rssXML{
		Version:   rssVersion,
		XMLNSAtom: atomNS,
		XMLNSCont: contentNS,
		Channel:   f.Channel(base),
	}); err != nil {
		return err
	}
	return enc.Close()
}

// Path is where the feed of page is written.
func Path(destDir, page string) string {
	return filepath.Join(destDir, page+".rss")
}

// WriteFile writes the feed to <destDir>/<page>.rss.
func (f *Feed) WriteFile(destDir string, base *url.URL) (string, error) {
	path := Path(destDir, f.Page)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", derrors.IOError(err, "failed to create feed directory").WithContext("path", path).Build()
	}
	file, err := os.Create(path)
	if err != nil {
		return "", derrors.IOError(err, "failed to create feed").WithContext("path", path).Build()
	}
	defer func() { _ = file.Close() }()

	if err := f.Encode(file, base); err != nil {
		return "", derrors.IOError(err, "failed to write feed").WithContext("path", path).Build()
	}
	if err := file.Close(); err != nil {
		return "", derrors.IOError(err, "failed to write feed").WithContext("path", path).Build()
	}
	return path, nil
}

// Buffer collects feeds per page in order of first contribution.
type Buffer struct {
	order []string
	feeds map[string]*Feed
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{feeds: make(map[string]*Feed)}
}

// Append adds items to the feed of page, creating it on first use.
func (b *Buffer) Append(page config.Page, items ...Item) {
	f, ok := b.feeds[page.Name]
	if !ok {
		f = &Feed{Page: page.Name, Title: page.FeedTitle()}
		if page.Description != nil {
			f.Description = *page.Description
		}
		b.feeds[page.Name] = f
		b.order = append(b.order, page.Name)
	}
	f.Items = append(f.Items, items...)
}

// Feeds returns the buffered feeds.
func (b *Buffer) Feeds() []*Feed {
	out := make([]*Feed, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, b.feeds[name])
	}
	return out
}

// Len returns the number of buffered feeds.
func (b *Buffer) Len() int { return len(b.order) }
