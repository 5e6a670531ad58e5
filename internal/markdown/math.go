package markdown

import (
	"bytes"
	"strings"

	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var (
	inlineMath        = passthrough.Delimiters{Open: "$", Close: "$"}
	inlineDisplayMath = passthrough.Delimiters{Open: "$$", Close: "$$"}
	displayMath       = passthrough.Delimiters{Open: "$$", Close: "$$"}
)

const (
	mathInlineOpen  = `<span class="math math-inline">`
	mathDisplayOpen = `<span class="math math-display">`
	mathClose       = `</span>`
)

// mathRenderer writes passthrough math as escaped TeX inside a span that a
// client-side renderer such as KaTeX picks up.
type mathRenderer struct{}

func (r *mathRenderer) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(r, 50),
	))
}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(passthrough.KindPassthroughInline, r.renderInline)
	reg.Register(passthrough.KindPassthroughBlock, r.renderBlock)
}

func (r *mathRenderer) renderInline(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	n := node.(*passthrough.PassthroughInline)
	open, closing := inlineMath.Open, inlineMath.Close
	if n.Delimiters != nil {
		open, closing = n.Delimiters.Open, n.Delimiters.Close
	}
	tex := strings.TrimSuffix(strings.TrimPrefix(string(n.Segment.Value(source)), open), closing)

	tag := mathInlineOpen
	if open == inlineDisplayMath.Open {
		tag = mathDisplayOpen
	}
	_, _ = w.WriteString(tag)
	_, _ = w.Write(util.EscapeHTML([]byte(tex)))
	_, err := w.WriteString(mathClose)
	return gmast.WalkSkipChildren, err
}

func (r *mathRenderer) renderBlock(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	var raw bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw.Write(seg.Value(source))
	}
	tex := strings.TrimSpace(raw.String())
	tex = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tex, displayMath.Open), displayMath.Close))

	_, _ = w.WriteString("<p>" + mathDisplayOpen)
	_, _ = w.Write(util.EscapeHTML([]byte(tex)))
	_, err := w.WriteString(mathClose + "</p>\n")
	return gmast.WalkSkipChildren, err
}
