package markdown

import (
	"fmt"
	stdhtml "html"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	foldStart = "### FOLD_START"
	foldEnd   = "### FOLD_END"

	addedLine   = `<span style="background: green; color: white;">`
	removedLine = `<span style="background: red; color: white;">`
	plainLine   = `<span>`
	lineEnd     = "</span>\n"
	emptyLine   = plainLine + lineEnd
)

// rewriter replaces goldmark's heading and fenced code block output.
type rewriter struct {
	baseURL  *url.URL
	pagePath string
}

func (r *rewriter) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(r, 100),
	))
}

func (r *rewriter) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gmast.KindHeading, r.renderHeading)
	reg.Register(gmast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *rewriter) renderHeading(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	n := node.(*gmast.Heading)

	var b strings.Builder
	collectText(&b, n, source, false)
	heading := b.String()
	display := string(util.EscapeHTML([]byte(heading)))

	if n.Level == 1 {
		_, err := fmt.Fprintf(w, "<h1>%s</h1>\n", display)
		return gmast.WalkSkipChildren, err
	}

	slug := Slug(heading)
	href := r.headingURL(slug)
	_, err := fmt.Fprintf(w, "<h%d id=\"%s\"><a href=\"%s\">%s</a></h%d>\n",
		n.Level, util.EscapeHTML([]byte(slug)), util.EscapeHTML([]byte(href)), display, n.Level)
	return gmast.WalkSkipChildren, err
}

func (r *rewriter) headingURL(slug string) string {
	base := r.baseURL
	if base == nil {
		base = &url.URL{}
	}
	u := base.ResolveReference(&url.URL{Path: r.pagePath})
	u.Fragment = slug
	return u.String()
}

func (r *rewriter) renderFencedCodeBlock(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	n := node.(*gmast.FencedCodeBlock)

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	if _, err := w.WriteString(RewriteCodeBlock(string(n.Language(source)), code.String())); err != nil {
		return gmast.WalkStop, err
	}
	return gmast.WalkSkipChildren, w.WriteByte('\n')
}

// collectText appends the plain text of n's descendants. Inline code
// contributes its literal text without a <code> wrapper.
func collectText(b *strings.Builder, n gmast.Node, source []byte, inCode bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gmast.Text:
			v := t.Segment.Value(source)
			if inCode {
				b.Write(v)
				continue
			}
			b.WriteString(stdhtml.UnescapeString(string(util.UnescapePunctuations(v))))
		case *gmast.String:
			if t.IsCode() {
				b.WriteString(stdhtml.UnescapeString(string(t.Value)))
			} else {
				b.Write(t.Value)
			}
		case *gmast.CodeSpan:
			collectText(b, t, source, true)
		default:
			collectText(b, c, source, inCode)
		}
	}
}

// Slug lowercases text, replaces spaces with dashes and trims surrounding
// whitespace. Slug(Slug(s)) == Slug(s).
func Slug(text string) string {
	lowered := cases.Lower(language.Und).String(text)
	return strings.TrimSpace(strings.ReplaceAll(lowered, " ", "-"))
}

// RewriteCodeBlock renders the text of a fenced code block as
// <pre><code>…</code></pre> with one span per line.
//
// A line starting with "### FOLD_START" opens a <details> region whose
// next line becomes the summary; "### FOLD_END" closes it. With lang "diff",
// lines starting with + or - get green or red backgrounds.
func RewriteCodeBlock(lang, text string) string {
	var b strings.Builder
	b.WriteString("<pre><code>")

	folded, foldedSummary := false, false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, foldStart) {
			b.WriteString(`<details><summary class="foldable">`)
			folded, foldedSummary = true, true
			continue
		}
		if strings.HasPrefix(line, foldEnd) {
			b.WriteString("</details>")
			folded = false
			continue
		}

		if folded && foldedSummary {
			b.Write(util.EscapeHTML([]byte(strings.TrimPrefix(line, " "))))
			b.WriteString("</summary>")
			foldedSummary = false
			continue
		}

		switch {
		case lang == "diff" && strings.HasPrefix(line, "+"):
			b.WriteString(addedLine)
		case lang == "diff" && strings.HasPrefix(line, "-"):
			b.WriteString(removedLine)
		default:
			b.WriteString(plainLine)
		}
		b.Write(util.EscapeHTML([]byte(line)))
		b.WriteString(lineEnd)
	}

	out := b.String()
	for strings.HasSuffix(out, emptyLine) {
		out = strings.TrimSuffix(out, emptyLine)
	}
	return out + "</code></pre>"
}
