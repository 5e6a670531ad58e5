package markdown

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteCodeBlock(t *testing.T) {
	cases := []struct {
		name string
		lang string
		text string
		want string
	}{
		{
			name: "empty block",
			text: "",
			want: "<pre><code></code></pre>",
		},
		{
			name: "plain lines",
			lang: "go",
			text: "a := 1\nb := 2\n",
			want: "<pre><code><span>a := 1</span>\n<span>b := 2</span>\n</code></pre>",
		},
		{
			name: "diff highlighting",
			lang: "diff",
			text: "+added\n-removed\n context\n",
			want: "<pre><code>" +
				"<span style=\"background: green; color: white;\">+added</span>\n" +
				"<span style=\"background: red; color: white;\">-removed</span>\n" +
				"<span> context</span>\n" +
				"</code></pre>",
		},
		{
			name: "plus and minus outside diff stay neutral",
			lang: "text",
			text: "+a\n-b\n",
			want: "<pre><code><span>+a</span>\n<span>-b</span>\n</code></pre>",
		},
		{
			name: "foldable region",
			text: "### FOLD_START\n Summary text\ncode…\n### FOLD_END\n",
			want: "<pre><code><details><summary class=\"foldable\">Summary text</summary>" +
				"<span>code…</span>\n</details></code></pre>",
		},
		{
			name: "only one leading space is stripped from the summary",
			text: "### FOLD_START\n  indented\n### FOLD_END\n",
			want: "<pre><code><details><summary class=\"foldable\"> indented</summary></details></code></pre>",
		},
		{
			name: "lines after the fold are spans again",
			text: "### FOLD_START\nsum\n### FOLD_END\nafter\n",
			want: "<pre><code><details><summary class=\"foldable\">sum</summary></details><span>after</span>\n</code></pre>",
		},
		{
			name: "html is escaped",
			text: "<div class=\"x\">&</div>\n",
			want: "<pre><code><span>&lt;div class=&quot;x&quot;&gt;&amp;&lt;/div&gt;</span>\n</code></pre>",
		},
		{
			name: "trailing blank lines are trimmed",
			text: "x\n\n\n",
			want: "<pre><code><span>x</span>\n</code></pre>",
		},
		{
			name: "inner blank lines are kept",
			text: "x\n\ny\n",
			want: "<pre><code><span>x</span>\n<span></span>\n<span>y</span>\n</code></pre>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RewriteCodeBlock(tc.lang, tc.text))
		})
	}
}

func TestRewriteCodeBlock_Deterministic(t *testing.T) {
	text := "### FOLD_START\nsummary\n+one\n-two\n### FOLD_END\n three\n"
	first := RewriteCodeBlock("diff", text)
	for range 5 {
		require.Equal(t, first, RewriteCodeBlock("diff", text))
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Getting Started":      "getting-started",
		"Trailing\t":           "trailing",
		"Already-a-slug":       "already-a-slug",
		"Ünïcode Ändern":       "ünïcode-ändern",
		"Using go test Wisely": "using-go-test-wisely",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got := Slug(in)
			require.Equal(t, want, got)
			require.Equal(t, got, Slug(got))
		})
	}
}

func renderBody(t *testing.T, body string) string {
	t.Helper()
	base, err := url.Parse("https://example.com/")
	require.NoError(t, err)
	doc, err := Parse("post.md", []byte(body), Options{BaseURL: base, PagePath: "blog/post"})
	require.NoError(t, err)
	out, err := doc.HTML()
	require.NoError(t, err)
	return out
}

func TestHeadings(t *testing.T) {
	t.Run("h1 has no anchor", func(t *testing.T) {
		require.Equal(t, "<h1>Hello</h1>\n", renderBody(t, "# Hello\n"))
	})

	t.Run("h2 links to itself", func(t *testing.T) {
		require.Equal(t,
			"<h2 id=\"getting-started\"><a href=\"https://example.com/blog/post#getting-started\">Getting Started</a></h2>\n",
			renderBody(t, "## Getting Started\n"))
	})

	t.Run("deeper levels keep their level", func(t *testing.T) {
		out := renderBody(t, "#### Deep Dive\n")
		require.True(t, strings.HasPrefix(out, "<h4 id=\"deep-dive\">"))
		require.True(t, strings.HasSuffix(out, "</a></h4>\n"))
	})

	t.Run("inline code is plain text", func(t *testing.T) {
		out := renderBody(t, "## Using `go test` Well\n")
		require.Contains(t, out, `id="using-go-test-well"`)
		require.Contains(t, out, ">Using go test Well</a>")
		require.NotContains(t, out, "<code>")
	})

	t.Run("emphasis contributes its text", func(t *testing.T) {
		out := renderBody(t, "## Very *important* notes\n")
		require.Contains(t, out, `id="very-important-notes"`)
		require.NotContains(t, out, "<em>")
	})

	t.Run("text is escaped", func(t *testing.T) {
		require.Equal(t, "<h1>A &lt; B</h1>\n", renderBody(t, "# A < B\n"))
	})

	t.Run("href ends with the slug", func(t *testing.T) {
		out := renderBody(t, "### Round Trip Check\n")
		slug := Slug("Round Trip Check")
		require.Contains(t, out, `id="`+slug+`"`)
		require.Contains(t, out, `#`+slug+`"`)
	})
}

func TestHeadingURL_BaseWithPath(t *testing.T) {
	base, err := url.Parse("https://example.com/site/")
	require.NoError(t, err)
	r := &rewriter{baseURL: base, pagePath: "blog/post"}
	require.Equal(t, "https://example.com/site/blog/post#intro", r.headingURL("intro"))

	r = &rewriter{pagePath: "blog/post"}
	require.Equal(t, "blog/post#intro", r.headingURL("intro"))
}

func TestFencedCodeBlocks(t *testing.T) {
	t.Run("diff block", func(t *testing.T) {
		out := renderBody(t, "```diff\n+added\n-removed\n context\n```\n")
		require.Equal(t, "<pre><code>"+
			"<span style=\"background: green; color: white;\">+added</span>\n"+
			"<span style=\"background: red; color: white;\">-removed</span>\n"+
			"<span> context</span>\n"+
			"</code></pre>\n", out)
	})

	t.Run("empty block", func(t *testing.T) {
		require.Equal(t, "<pre><code></code></pre>\n", renderBody(t, "```\n```\n"))
	})

	t.Run("foldable block", func(t *testing.T) {
		out := renderBody(t, "```sh\n### FOLD_START\n Summary text\nmake build\n### FOLD_END\n```\n")
		require.Equal(t, "<pre><code><details><summary class=\"foldable\">Summary text</summary>"+
			"<span>make build</span>\n</details></code></pre>\n", out)
	})

	t.Run("each block uses its own language", func(t *testing.T) {
		out := renderBody(t, "```diff\n+a\n```\n\n```\n+b\n```\n")
		require.Contains(t, out, `<span style="background: green; color: white;">+a</span>`)
		require.Contains(t, out, "<span>+b</span>")
	})

	t.Run("headings inside code are not rewritten", func(t *testing.T) {
		out := renderBody(t, "```md\n## not a heading\n```\n")
		require.Equal(t, "<pre><code><span>## not a heading</span>\n</code></pre>\n", out)
	})
}

func TestOtherConstructsPassThrough(t *testing.T) {
	out := renderBody(t, "Hello *world*\n\n~~gone~~\n\n- [x] done\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<aside>raw</aside>\n")
	require.Contains(t, out, "<p>Hello <em>world</em></p>")
	require.Contains(t, out, "<del>gone</del>")
	require.Contains(t, out, `type="checkbox"`)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, "<aside>raw</aside>")
}

func TestMathAndScripts(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"inline math", "area $x^2$ here\n", `<p>area <span class="math math-inline">x^2</span> here</p>`},
		{"inline math is escaped", "$a<b$\n", `<span class="math math-inline">a&lt;b</span>`},
		{"inline display math", "so $$e=mc^2$$ holds\n", `<span class="math math-display">e=mc^2</span>`},
		{"display math block", "$$\n\\sum_{i=1}^n i\n$$\n", `<p><span class="math math-display">\sum_{i=1}^n i</span></p>`},
		{"superscript", "x^2^\n", "<p>x<sup>2</sup></p>"},
		{"subscript", "H~2~O\n", "<p>H<sub>2</sub>O</p>"},
		{"strikethrough", "~~gone~~\n", "<p><del>gone</del></p>"},
		{"template syntax untouched", "text with {{ x }}\n", "<p>text with {{ x }}</p>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Contains(t, renderBody(t, tc.in), tc.want)
		})
	}
}

func TestFootnotesAndWikiLinks(t *testing.T) {
	out := renderBody(t, "See note[^1] and [[Other Page]].\n\n[^1]: The note.\n")
	require.Contains(t, out, "footnote")
	require.Contains(t, out, "The note.")
	require.Contains(t, out, `<a href="Other%20Page">Other Page</a>`)
	require.NotContains(t, out, ".html")
}

func TestWikiLinkTargets(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"[[Wiki Link]]", `<a href="Wiki%20Link">Wiki Link</a>`},
		{"[[notes#setup]]", `href="notes#setup"`},
		{"[[../blog/post|the post]]", `<a href="../blog/post">the post</a>`},
		{"[[feed.rss]]", `href="feed.rss"`},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Contains(t, renderBody(t, tc.in+"\n"), tc.want)
		})
	}
}
