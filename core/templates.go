package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"maps"
	"net/http"
	"path"
	"strings"
	"sync"
)

const componentsGlob = "components/*.html"

type parsedTemplate struct {
	tmpl  *template.Template
	entry string
}

// Templates renders html/template files from an fs.FS. Every template is
// parsed together with the partials in components/. A first line of the form
// `<!-- layout: path -->` wraps the template in that layout, which must
// define "layout".
type Templates struct {
	fsys  fs.FS
	funcs template.FuncMap

	lock   sync.RWMutex
	parsed map[string]*parsedTemplate
}

func NewTemplates(fsys fs.FS, assets Assets) *Templates {
	return &Templates{
		fsys:   fsys,
		funcs:  TemplateFuncs(assets),
		parsed: make(map[string]*parsedTemplate),
	}
}

// Render executes the named template. The context gets a "request" entry
// unless it already has one.
func (t *Templates) Render(name string, data map[string]any, r *http.Request) (string, error) {
	p, err := t.lookup(name)
	if err != nil {
		return "", err
	}

	ctx := make(map[string]any, len(data)+1)
	ctx["request"] = r
	maps.Copy(ctx, data)

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, p.entry, ctx); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Reload drops every parsed template; the next Render parses from disk again.
func (t *Templates) Reload() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.parsed = make(map[string]*parsedTemplate)
}

// Names lists the renderable templates, skipping components.
func (t *Templates) Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(t.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == "components" {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(p, ".html") {
			names = append(names, p)
		}
		return nil
	})
	return names, err
}

// Check parses name and executes it with an empty context.
func (t *Templates) Check(name string) error {
	_, err := t.Render(name, map[string]any{}, nil)
	return err
}

func (t *Templates) lookup(name string) (*parsedTemplate, error) {
	t.lock.RLock()
	p, ok := t.parsed[name]
	t.lock.RUnlock()
	if ok {
		return p, nil
	}

	p, err := t.parse(name)
	if err != nil {
		return nil, err
	}

	t.lock.Lock()
	t.parsed[name] = p
	t.lock.Unlock()
	return p, nil
}

func (t *Templates) parse(name string) (*parsedTemplate, error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(clean) || clean == "." {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	content, err := fs.ReadFile(t.fsys, clean)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	components, err := fs.Glob(t.fsys, componentsGlob)
	if err != nil {
		return nil, err
	}

	files := append([]string{clean}, components...)
	entry := clean
	if layout := layoutDirective(content); layout != "" {
		if _, err := fs.Stat(t.fsys, layout); err != nil {
			return nil, fmt.Errorf("%w: layout %s of %s", ErrTemplateNotFound, layout, name)
		}
		files = append([]string{layout}, files...)
		entry = "layout"
	}

	tmpl, err := t.parseFiles(files)
	if err != nil {
		return nil, err
	}

	return &parsedTemplate{tmpl: tmpl, entry: entry}, nil
}

// parseFiles names every template by its path relative to the root, so a page
// and a component sharing a base name do not replace each other.
func (t *Templates) parseFiles(files []string) (*template.Template, error) {
	tmpl := template.New(files[0]).Funcs(t.funcs)
	for _, name := range files {
		src, err := fs.ReadFile(t.fsys, name)
		if err != nil {
			return nil, err
		}

		target := tmpl
		if name != tmpl.Name() {
			target = tmpl.New(name)
		}
		if _, err := target.Parse(string(src)); err != nil {
			return nil, err
		}
	}
	return tmpl, nil
}

func layoutDirective(content []byte) string {
	firstLine, _, _ := strings.Cut(string(content), "\n")
	firstLine = strings.TrimSpace(firstLine)
	if !strings.HasPrefix(firstLine, "<!--") || !strings.HasSuffix(firstLine, "-->") {
		return ""
	}
	comment := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(firstLine, "<!--"), "-->"))
	layout, ok := strings.CutPrefix(comment, "layout:")
	if !ok {
		return ""
	}
	layout = strings.TrimSpace(layout)
	if layout == "" {
		return ""
	}
	return path.Clean(layout)
}
