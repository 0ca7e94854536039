package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
)

const ReloadPath = "/__hx_reload"

// Assets locates static files for the template helpers. Minified copies are
// written below CacheDir/static and only in the prod environment.
type Assets struct {
	Env       string
	PublicDir string
	CacheDir  string
}

func (a Assets) publicDir() string {
	if a.PublicDir == "" {
		return "public"
	}
	return a.PublicDir
}

func (a Assets) MinifyAsset(path string) string {
	if a.Env != "prod" {
		return path
	}

	ext := filepath.Ext(path)
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, ext)

	if ext != ".css" && ext != ".js" {
		return path
	}

	if strings.Contains(name, ".min") {
		return path
	}

	publicPath := strings.TrimPrefix(path, "/static/")
	src := filepath.Join(a.publicDir(), publicPath)
	min := filepath.Join(a.CacheDir, "static", fmt.Sprintf("%s.min%s", name, ext))

	original, err := os.ReadFile(src)
	if err != nil {
		return path
	}

	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)

	mediaType := "text/css"
	if ext == ".js" {
		mediaType = "application/javascript"
	}

	var buf bytes.Buffer
	if err := m.Minify(mediaType, &buf, bytes.NewReader(original)); err != nil {
		return path
	}
	minified := buf.Bytes()

	if err := os.MkdirAll(filepath.Dir(min), os.ModePerm); err != nil {
		return path
	}
	if err := os.WriteFile(min, minified, 0644); err != nil {
		return path
	}

	if f, err := os.Create(min + ".gz"); err == nil {
		defer f.Close()
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(minified); err == nil {
			_ = gz.Close()
		}
	}

	return fmt.Sprintf("/static/%s.min%s?v=%s", name, ext, contentHash(minified))
}

// Versioned appends a content hash to a /static/ path so browsers can cache it
// forever.
func (a Assets) Versioned(path string) string {
	if !strings.HasPrefix(path, "/static/") {
		return path
	}

	rel := strings.TrimPrefix(path, "/static/")
	locations := []string{
		filepath.Join(a.publicDir(), rel),
		filepath.Join(a.CacheDir, "static", rel),
	}

	for _, file := range locations {
		if content, err := os.ReadFile(file); err == nil {
			return fmt.Sprintf("/static/%s?v=%s", rel, contentHash(content))
		}
	}

	return path
}

func contentHash(content []byte) string {
	h := md5.Sum(content)
	return hex.EncodeToString(h[:])[:6]
}

var sanitizePolicy = bluemonday.UGCPolicy()

// TemplateFuncs is the function map every template is parsed with: sprig's
// HTML-safe helpers plus the hx helpers.
func TemplateFuncs(assets Assets) template.FuncMap {
	funcs := sprig.HtmlFuncMap()

	helpers := template.FuncMap{
		"minify":    assets.MinifyAsset,
		"versioned": assets.Versioned,
		"props": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				panic("props must be called with even number of arguments")
			}
			m := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					panic("props keys must be strings")
				}
				m[key] = values[i+1]
			}
			return m
		},
		"safeHTML": func(s interface{}) template.HTML {
			switch val := s.(type) {
			case template.HTML:
				return val
			case string:
				return template.HTML(val)
			default:
				return ""
			}
		},
		"sanitize": func(s string) template.HTML {
			return template.HTML(sanitizePolicy.Sanitize(s))
		},
		"livereload": func() template.HTML {
			if assets.Env != "dev" {
				return ""
			}
			return template.HTML(`<script>(function(){var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+"` + ReloadPath + `");ws.onmessage=function(e){if(e.data==="reload"){location.reload();}};})();</script>`)
		},
	}

	for name, fn := range helpers {
		funcs[name] = fn
	}
	return funcs
}
