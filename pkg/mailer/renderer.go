package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Renderer converts markdown templates with YAML frontmatter into HTML
// wrapped in a layout. Parsed templates are cached; rendering executes them
// with fresh data.
type Renderer struct {
	fs fs.FS
	md goldmark.Markdown

	templateDir string
	layoutDir   string

	templates map[string]*parsedTemplate
	layouts   map[string]*htmltemplate.Template
	mu        sync.RWMutex
}

type parsedTemplate struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
}

// NewRenderer creates a renderer reading templates from the root of
// filesystem and layouts from its "layouts" directory.
func NewRenderer(filesystem fs.FS) *Renderer {
	return &Renderer{
		fs:          filesystem,
		md:          goldmark.New(),
		templateDir: ".",
		layoutDir:   "layouts",
		templates:   make(map[string]*parsedTemplate),
		layouts:     make(map[string]*htmltemplate.Template),
	}
}

// RenderResult holds the rendered HTML, the plain-text alternative, and the
// template's frontmatter metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string
}

// Render executes a markdown template with data and wraps the converted HTML
// in the named layout.
func (r *Renderer) Render(layout, templateName string, data any) (*RenderResult, error) {
	parsed, err := r.template(templateName)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := parsed.tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: execute template: %v", ErrRenderFailed, err)
	}

	var html bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("%w: convert markdown: %v", ErrRenderFailed, err)
	}

	layoutTmpl, err := r.layout(layout)
	if err != nil {
		return nil, err
	}

	var final bytes.Buffer
	err = layoutTmpl.Execute(&final, map[string]any{
		"Content":  htmltemplate.HTML(html.String()), //nolint:gosec // listing content is sanitized upstream
		"Metadata": parsed.metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: execute layout: %v", ErrRenderFailed, err)
	}

	return &RenderResult{
		Metadata: parsed.metadata,
		HTML:     final.String(),
		Text:     markdown.String(),
	}, nil
}

func (r *Renderer) template(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.templates[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	metadata, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := texttemplate.New(name).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRenderFailed, name, err)
	}

	cached = &parsedTemplate{metadata: metadata, tmpl: tmpl}
	r.templates[name] = cached
	return cached, nil
}

func (r *Renderer) layout(name string) (*htmltemplate.Template, error) {
	r.mu.RLock()
	cached, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.layouts[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := htmltemplate.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: parse layout %s: %v", ErrRenderFailed, name, err)
	}

	r.layouts[name] = tmpl
	return tmpl, nil
}

// splitFrontmatter extracts YAML frontmatter delimited by "---" lines.
// Content without frontmatter is returned whole with empty metadata.
func splitFrontmatter(content []byte) (map[string]any, string, error) {
	const delimiter = "---"

	s := string(content)
	if !strings.HasPrefix(s, delimiter) {
		return map[string]any{}, s, nil
	}

	rest := s[len(delimiter):]
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return nil, "", fmt.Errorf("unterminated frontmatter")
	}

	metadata := make(map[string]any)
	if err := yaml.Unmarshal([]byte(rest[:end]), &metadata); err != nil {
		return nil, "", err
	}

	body := rest[end+len(delimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	return metadata, body, nil
}
