package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Rendered is the output of rendering one mail template: the final HTML
// (markdown wrapped in the layout), the plain-text alternative, and the
// template's front matter.
type Rendered struct {
	Meta map[string]any
	HTML string
	Text string
}

type mailTemplate struct {
	meta map[string]any
	body *texttemplate.Template
}

// Renderer turns markdown mail templates into HTML. Templates are plain
// markdown files with optional YAML front matter, executed as
// text/template before markdown conversion, then wrapped into an
// html/template layout that receives {{.Content}} and {{.Meta}}.
//
// Parsed templates and layouts are cached per name. The cache never
// stores rendered output, so a Renderer is safe for concurrent use.
type Renderer struct {
	fsys fs.FS
	md   goldmark.Markdown

	templateDir string
	layoutDir   string

	mu        sync.RWMutex
	templates map[string]*mailTemplate
	layouts   map[string]*template.Template
}

// RendererOption customizes a Renderer.
type RendererOption func(*Renderer)

// WithTemplateDir sets the directory templates are resolved in.
// Defaults to the filesystem root.
func WithTemplateDir(dir string) RendererOption {
	return func(r *Renderer) { r.templateDir = dir }
}

// WithLayoutDir sets the directory layouts are resolved in.
// Defaults to "layouts".
func WithLayoutDir(dir string) RendererOption {
	return func(r *Renderer) { r.layoutDir = dir }
}

// NewRenderer creates a Renderer reading templates from fsys.
func NewRenderer(fsys fs.FS, opts ...RendererOption) *Renderer {
	r := &Renderer{
		fsys:        fsys,
		templateDir: ".",
		layoutDir:   "layouts",
		md:          goldmark.New(goldmark.WithExtensions(ButtonExtension())),
		templates:   make(map[string]*mailTemplate),
		layouts:     make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render executes the named template with data, converts the result to
// HTML and wraps it in the named layout.
func (r *Renderer) Render(layout, name string, data any) (*Rendered, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return nil, err
	}

	var md bytes.Buffer
	if err := tmpl.body.Execute(&md, data); err != nil {
		return nil, fmt.Errorf("%w: execute %s: %w", ErrRenderFailed, name, err)
	}

	var html bytes.Buffer
	if err := r.md.Convert(md.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("%w: convert %s: %w", ErrRenderFailed, name, err)
	}

	lt, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	err = lt.Execute(&out, map[string]any{
		"Content": template.HTML(html.String()),
		"Meta":    tmpl.meta,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute layout %s: %w", ErrRenderFailed, layout, err)
	}

	return &Rendered{
		Meta: tmpl.meta,
		HTML: out.String(),
		Text: md.String(),
	}, nil
}

func (r *Renderer) template(name string) (*mailTemplate, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}

	content, err := fs.ReadFile(r.fsys, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, name, err)
	}

	meta, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	parsed, err := texttemplate.New(name).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrRenderFailed, name, err)
	}

	tmpl = &mailTemplate{meta: meta, body: parsed}
	r.templates[name] = tmpl
	return tmpl, nil
}

func (r *Renderer) layout(name string) (*template.Template, error) {
	r.mu.RLock()
	lt, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return lt, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if lt, ok := r.layouts[name]; ok {
		return lt, nil
	}

	content, err := fs.ReadFile(r.fsys, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLayoutNotFound, name, err)
	}

	lt, err = template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse layout %s: %w", ErrRenderFailed, name, err)
	}

	r.layouts[name] = lt
	return lt, nil
}
