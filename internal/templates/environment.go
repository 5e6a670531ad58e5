// Package templates wraps the pongo2 template engine used to lay out pages,
// listing indexes and feed content.
package templates

import (
	"strconv"

	"github.com/flosch/pongo2/v6"

	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
)

// Context is the variable mapping handed to a template.
type Context map[string]any

// Environment resolves template paths under a templates directory.
// It is created once per build.
type Environment struct {
	dir string
	set *pongo2.TemplateSet
}

// New creates an environment whose loader is rooted at templatesDir.
func New(templatesDir string) (*Environment, error) {
	if err := registerFilters(); err != nil {
		return nil, derrors.TemplateEnvironmentError(err).Build()
	}
	loader, err := pongo2.NewLocalFileSystemLoader(templatesDir)
	if err != nil {
		return nil, derrors.TemplateEnvironmentError(err).
			WithContext("templates_dir", templatesDir).
			Build()
	}
	return &Environment{
		dir: templatesDir,
		set: pongo2.NewSet("puggle", loader),
	}, nil
}

// Dir returns the templates directory.
func (e *Environment) Dir() string { return e.dir }

// RenderNamed renders the template at path, relative to the templates directory.
func (e *Environment) RenderNamed(path string, ctx Context) (string, error) {
	tpl, err := e.set.FromCache(path)
	if err != nil {
		return "", derrors.TemplateEnvironmentError(err).WithContext("template", path).Build()
	}
	return execute(tpl, ctx, path)
}

// RenderPartial compiles body as a one-off template and renders it.
func (e *Environment) RenderPartial(body string, ctx Context) (string, error) {
	tpl, err := e.set.FromString(body)
	if err != nil {
		return "", derrors.TemplateEnvironmentError(err).Build()
	}
	return execute(tpl, ctx, "")
}

// RenderWrapped renders body as the content block of the layout at wrapperPath.
func (e *Environment) RenderWrapped(body, wrapperPath string, ctx Context) (string, error) {
	tpl, err := e.set.FromString(WrapSource(body, wrapperPath))
	if err != nil {
		return "", derrors.TemplateEnvironmentError(err).WithContext("template", wrapperPath).Build()
	}
	return execute(tpl, ctx, wrapperPath)
}

// WrapSource builds the template source that places body inside the content
// block of wrapperPath.
func WrapSource(body, wrapperPath string) string {
	return "{% extends " + strconv.Quote(wrapperPath) + " %}\n{% block content %}\n" + body + "\n{% endblock %}"
}

func execute(tpl *pongo2.Template, ctx Context, name string) (string, error) {
	out, err := tpl.Execute(pongo2.Context(ctx))
	if err != nil {
		b := derrors.TemplateRenderError(err)
		if name != "" {
			b = b.WithContext("template", name)
		}
		return "", b.Build()
	}
	return out, nil
}
