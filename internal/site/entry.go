package site

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/puggle/internal/config"
	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
	"git.home.luguber.info/inful/puggle/internal/logfields"
	"git.home.luguber.info/inful/puggle/internal/markdown"
	"git.home.luguber.info/inful/puggle/internal/metadata"
	"git.home.luguber.info/inful/puggle/internal/templates"
)

const indexFile = "index.html"

const redirectTemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>%[1]s</title>
    <link rel="canonical" href="/%[2]s"/>
    <meta http-equiv="content-type" content="text/html; charset=utf-8"/>
    <meta http-equiv="refresh" content="0; url=/%[2]s"/>
  </head>
  <body>
    If you aren't redirected, you can manually click this link:
    <a href="/%[2]s">/%[2]s</a>.
  </body>
</html>
`

// RedirectStub returns the page written for an alias. target is
// "<page>/<stem>".
func RedirectStub(title, target string) string {
	return fmt.Sprintf(redirectTemplate, title, target)
}

// Renderer composes entry HTML into layouts.
type Renderer interface {
	RenderWrapped(body, wrapperPath string, ctx templates.Context) (string, error)
}

// RenderedEntry is the result of rendering one Markdown file.
type RenderedEntry struct {
	Metadata *metadata.Metadata
	// Partial is the Markdown-derived HTML before layout.
	Partial string
	// Path is the written index.html.
	Path    string
	Aliases []string
}

// Stem returns the file name of path without its extension.
func Stem(p string) (string, error) {
	base := filepath.Base(p)
	if base == "." || base == string(filepath.Separator) {
		return "", derrors.FileNameError(p).Build()
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return "", derrors.FileNameError(p).Build()
	}
	return stem, nil
}

// RenderEntry renders the Markdown file at src as the page
// <dest>/<page>/<stem>/index.html and writes a redirect stub for each alias.
func RenderEntry(cfg *config.Config, r Renderer, page, templatePath, src string, logger *slog.Logger) (*RenderedEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	source, err := os.ReadFile(src)
	if err != nil {
		return nil, derrors.IOError(err, "failed to read entry").WithContext("path", src).Build()
	}
	stem, err := Stem(src)
	if err != nil {
		return nil, err
	}

	doc, err := markdown.Parse(src, source, markdown.Options{
		BaseURL:  cfg.Base(),
		PagePath: page + "/" + stem,
	})
	if err != nil {
		return nil, err
	}
	partial, err := doc.HTML()
	if err != nil {
		return nil, derrors.InternalError("failed to render markdown").
			WithCause(err).
			WithContext("path", src).
			Build()
	}
	if doc.Metadata == nil {
		return nil, derrors.MetadataMissingError(src).Build()
	}
	meta := doc.Metadata
	meta.FileName = stem

	if err := checkAliases(src, stem, meta.Aliases); err != nil {
		return nil, err
	}

	out, err := r.RenderWrapped(partial, templatePath, templates.Context{"metadata": meta.TemplateValue()})
	if err != nil {
		return nil, err
	}

	target := filepath.Join(cfg.DestDir, page, stem, indexFile)
	if err := writeFile(target, out); err != nil {
		return nil, err
	}
	logger.Debug("Entry written", logfields.Page(page), logfields.Stem(stem), logfields.Path(target))

	res := &RenderedEntry{Metadata: meta, Partial: partial, Path: target}
	canonical := page + "/" + stem
	for _, alias := range meta.Aliases {
		aliasPath := filepath.Join(cfg.DestDir, page, filepath.FromSlash(alias), indexFile)
		if err := writeFile(aliasPath, RedirectStub(meta.Title, canonical)); err != nil {
			return nil, err
		}
		logger.Debug("Alias written", logfields.Page(page), logfields.Alias(alias), logfields.Path(aliasPath))
		res.Aliases = append(res.Aliases, aliasPath)
	}
	return res, nil
}

// checkAliases rejects aliases that would overwrite the entry itself or
// leave the page directory.
func checkAliases(src, stem string, aliases []string) error {
	for _, alias := range aliases {
		clean := path.Clean(filepath.ToSlash(alias))
		switch {
		case alias == "" || clean == ".":
			return derrors.ValidationError("alias is empty").WithContext("path", src).Build()
		case path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../"):
			return derrors.ValidationError("alias must be a relative path inside the page").
				WithContext("path", src).
				WithContext("alias", alias).
				Build()
		case clean == stem:
			return derrors.ValidationError("alias collides with the entry's own path").
				WithContext("path", src).
				WithContext("alias", alias).
				Build()
		}
	}
	return nil
}

func writeFile(target, content string) error {
	dir := filepath.Dir(target)
	if dir == target {
		return derrors.ParentError(target).Build()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return derrors.IOError(err, "failed to create output directory").WithContext("path", dir).Build()
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return derrors.IOError(err, "failed to write output").WithContext("path", target).Build()
	}
	return nil
}

// EntryFiles lists the Markdown files an entry covers. Dir entries yield
// every *.md file directly inside the directory.
func EntryFiles(e config.Entry) ([]string, error) {
	if e.Kind == config.EntryFile {
		return []string{e.MarkdownPath}, nil
	}
	items, err := os.ReadDir(e.SourceDir)
	if err != nil {
		return nil, derrors.IOError(err, "failed to read entry directory").WithContext("path", e.SourceDir).Build()
	}
	var files []string
	for _, item := range items {
		if item.IsDir() || filepath.Ext(item.Name()) != ".md" {
			continue
		}
		files = append(files, filepath.Join(e.SourceDir, item.Name()))
	}
	return files, nil
}
