package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func templateFS() fstest.MapFS {
	return fstest.MapFS{
		"layout.html": {Data: []byte(`{{ define "layout" }}<html><body>{{ template "content" . }}</body></html>{{ end }}`)},
		"index.html": {Data: []byte(`<!-- layout: layout.html -->
{{ define "content" }}<h1>{{ default "Home" .title }}</h1>{{ end }}`)},
		"list.html":            {Data: []byte(`<ul>{{ range .items }}{{ template "row" . }}{{ end }}</ul>`)},
		"path.html":            {Data: []byte(`{{ .request.URL.Path }}`)},
		"broken.html":          {Data: []byte(`{{ if }}`)},
		"orphan.html":          {Data: []byte("<!-- layout: missing.html -->\n{{ define \"content\" }}x{{ end }}")},
		"components/row.html":  {Data: []byte(`{{ define "row" }}<li>{{ . }}</li>{{ end }}`)},
		"partials/nested.html": {Data: []byte(`<p>{{ upper "nested" }}</p>`)},
	}
}

func TestTemplates_RendersWithComponents(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	out, err := tpl.Render("list.html", map[string]any{"items": []string{"a", "b"}}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<ul><li>a</li><li>b</li></ul>" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTemplates_RendersLayout(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	out, err := tpl.Render("index.html", map[string]any{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<html><body><h1>Home</h1></body></html>" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTemplates_ExposesRequest(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})
	req := httptest.NewRequest(http.MethodGet, "/some/where", nil)

	out, err := tpl.Render("path.html", map[string]any{}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "/some/where" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTemplates_NestedPathUsesSprig(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	out, err := tpl.Render("/partials/nested.html", map[string]any{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<p>NESTED</p>" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestTemplates_MissingTemplate(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	for _, name := range []string{"nope.html", "../etc/passwd", "", "orphan.html"} {
		_, err := tpl.Render(name, map[string]any{}, nil)
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("%q: expected ErrTemplateNotFound, got %v", name, err)
		}
	}
}

func TestTemplates_ParseErrorIsReturned(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	_, err := tpl.Render("broken.html", map[string]any{}, nil)
	if err == nil || errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestTemplates_ReloadPicksUpChanges(t *testing.T) {
	fsys := templateFS()
	tpl := NewTemplates(fsys, Assets{Env: "dev"})

	if out, _ := tpl.Render("path.html", map[string]any{}, httptest.NewRequest(http.MethodGet, "/a", nil)); out != "/a" {
		t.Fatalf("unexpected first render: %q", out)
	}

	fsys["path.html"] = &fstest.MapFile{Data: []byte(`changed`)}

	if out, _ := tpl.Render("path.html", map[string]any{}, nil); strings.Contains(out, "changed") {
		t.Fatal("expected cached template before Reload")
	}

	tpl.Reload()

	if out, _ := tpl.Render("path.html", map[string]any{}, nil); out != "changed" {
		t.Errorf("expected reloaded template, got %q", out)
	}
}

func TestTemplates_NamesSkipsComponents(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	names, err := tpl.Names()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range names {
		if strings.HasPrefix(name, "components/") {
			t.Errorf("unexpected component in names: %s", name)
		}
	}
	if len(names) != 7 {
		t.Errorf("expected 7 templates, got %d: %v", len(names), names)
	}
}

func TestTemplates_Check(t *testing.T) {
	tpl := NewTemplates(templateFS(), Assets{Env: "dev"})

	if err := tpl.Check("index.html"); err != nil {
		t.Errorf("expected index.html to check out, got %v", err)
	}
	if err := tpl.Check("broken.html"); err == nil {
		t.Error("expected broken.html to fail")
	}
}

func TestLayoutDirective(t *testing.T) {
	tests := map[string]string{
		"<!-- layout: layouts/base.html -->\n<p>": "layouts/base.html",
		"<!--layout:base.html-->":                 "base.html",
		"<p>no layout</p>":                        "",
		"\n<!-- layout: base.html -->":            "",
		"<!-- layout:base.html -->":               "base.html",
		"<!--  layout: base.html-->\n":            "base.html",
		"<!-- a comment -->":                      "",
		"<!-- layout: -->":                        "",
	}
	for input, want := range tests {
		if got := layoutDirective([]byte(input)); got != want {
			t.Errorf("layoutDirective(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTemplates_PageSharingComponentBaseName(t *testing.T) {
	fsys := fstest.MapFS{
		"admin/row.html":      {Data: []byte(`<p>admin page</p>`)},
		"components/row.html": {Data: []byte(`<li>component</li>`)},
	}
	tpl := NewTemplates(fsys, Assets{Env: "dev"})

	out, err := tpl.Render("admin/row.html", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "<p>admin page</p>" {
		t.Errorf("expected the page itself, got %q", out)
	}
}
