package core

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/segmentio/encoding/json"
	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
)

// Handler produces the data for a route. Headers and status set on res are
// carried onto the final response however it ends up being rendered.
type Handler func(r *http.Request, res *Response) (Result, error)

// Renderer turns a template reference and a render context into markup.
type Renderer interface {
	Render(name string, data map[string]any, r *http.Request) (string, error)
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(name string, data map[string]any, r *http.Request) (string, error)

func (f RenderFunc) Render(name string, data map[string]any, r *http.Request) (string, error) {
	return f(name, data, r)
}

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Engine wraps Handlers so the same route can answer JSON clients with data
// and htmx clients with rendered fragments.
type Engine struct {
	renderer     Renderer
	onError      ErrorHandler
	keys         ContextKeys
	minifier     *minify.M
	pages        *PageCache
	debugHeaders bool
	logger       *log.Logger
}

type Option func(*Engine)

func WithErrorHandler(fn ErrorHandler) Option {
	return func(e *Engine) {
		if fn != nil {
			e.onError = fn
		}
	}
}

func WithContextKeys(item, items string) Option {
	return func(e *Engine) {
		e.keys = ContextKeys{Item: item, Items: items}
	}
}

// WithMinifier minifies rendered HTML before it is written.
func WithMinifier() Option {
	return func(e *Engine) {
		m := minify.New()
		m.AddFunc("text/html", minhtml.Minify)
		e.minifier = m
	}
}

// WithDebugHeaders exposes the template and mode used for each response.
func WithDebugHeaders() Option {
	return func(e *Engine) {
		e.debugHeaders = true
	}
}

func WithPageCache(cache *PageCache) Option {
	return func(e *Engine) {
		e.pages = cache
	}
}

// WithLogger enables debug logging to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine builds an Engine rendering through renderer.
func NewEngine(renderer Renderer, opts ...Option) *Engine {
	e := &Engine{
		renderer: renderer,
		keys:     DefaultContextKeys,
	}
	e.onError = e.defaultError
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineOptions translates a Config into engine options.
func EngineOptions(cfg Config) []Option {
	opts := []Option{WithContextKeys(cfg.ItemKey, cfg.ItemsKey)}
	if cfg.Minify {
		opts = append(opts, WithMinifier())
	}
	if cfg.DebugHeaders {
		opts = append(opts, WithDebugHeaders())
	}
	if cfg.CacheEnabled {
		opts = append(opts, WithPageCache(NewPageCache(cfg.OutputDir)))
	}
	if cfg.DebugLogs {
		opts = append(opts, WithLogger(log.Default()))
	}
	return opts
}

type hxOptions struct {
	noData bool
}

type HXOption func(*hxOptions)

// NoData makes the route render its template for every client; the raw data
// is never sent.
func NoData() HXOption {
	return func(o *hxOptions) {
		o.noData = true
	}
}

// HX wraps a handler so htmx requests get template rendered with the
// handler's result and every other request gets the result as JSON.
func (e *Engine) HX(template string, opts ...HXOption) func(Handler) http.Handler {
	var o hxOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(h Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := NewResponse()
			result, err := h(r, res)
			if err != nil {
				e.onError(w, r, err)
				return
			}

			if !o.noData {
				w.Header().Add("Vary", HeaderRequest)
			}

			if !o.noData && !IsHXRequest(r) {
				e.writeJSON(w, res, result.Value())
				return
			}

			data, err := result.Context(e.keys)
			if err != nil {
				e.onError(w, r, err)
				return
			}

			body, err := e.render(template, data, r)
			if err != nil {
				e.onError(w, r, err)
				return
			}

			e.debugf("hx %s %s -> %s (%s)", r.Method, r.URL.Path, template, result.Kind())
			e.writeHTML(w, res, template, body)
		})
	}
}

// Page wraps a handler whose only job is serving template. The handler's
// result is ignored and the template always gets an empty context; h may be nil.
// With a page cache the handler still runs on every request, only rendering is
// skipped on a hit.
func (e *Engine) Page(template string) func(Handler) http.Handler {
	return func(h Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := NewResponse()
			if h != nil {
				if _, err := h(r, res); err != nil {
					e.onError(w, r, err)
					return
				}
			}

			if e.pages != nil {
				if cached, ok := e.pages.Get(r.URL.Path); ok {
					e.debugf("page %s served from cache", r.URL.Path)
					e.writeHTML(w, res, template, cached)
					return
				}
			}

			body, err := e.render(template, map[string]any{}, r)
			if err != nil {
				e.onError(w, r, err)
				return
			}

			if e.pages != nil && res.Status() == http.StatusOK {
				if err := e.pages.Save(r.URL.Path, body); err != nil {
					e.debugf("page cache save failed for %s: %v", r.URL.Path, err)
				}
			}

			e.debugf("page %s %s -> %s", r.Method, r.URL.Path, template)
			e.writeHTML(w, res, template, body)
		})
	}
}

func (e *Engine) render(template string, data map[string]any, r *http.Request) ([]byte, error) {
	markup, err := e.renderer.Render(template, data, r)
	if err != nil {
		return nil, err
	}

	if e.minifier != nil {
		if minified, err := e.minifier.String("text/html", markup); err == nil {
			markup = minified
		}
	}

	return []byte(markup), nil
}

func (e *Engine) writeHTML(w http.ResponseWriter, res *Response, template string, body []byte) {
	res.apply(w)
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if e.debugHeaders {
		w.Header().Set("X-HX-Template", template)
		w.Header().Set("X-HX-Mode", "html")
	}
	w.WriteHeader(res.Status())
	_, _ = w.Write(body)
}

func (e *Engine) writeJSON(w http.ResponseWriter, res *Response, value any) {
	res.apply(w)
	if e.debugHeaders {
		w.Header().Set("X-HX-Mode", "json")
	}
	_ = writeJSON(w, res.Status(), value)
}

func (e *Engine) defaultError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	e.debugf("error %s %s: %d %v", r.Method, r.URL.Path, status, err)

	if IsHXRequest(r) {
		http.Error(w, err.Error(), status)
		return
	}
	_ = writeJSON(w, status, map[string]any{"error": err.Error()})
}

func (e *Engine) debugf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

// writeJSON keeps a Content-Type the handler already chose, such as
// application/problem+json.
func writeJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		http.Error(w, "encode error: "+err.Error(), http.StatusInternalServerError)
		return err
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	_, err := io.Copy(w, &buf)
	return err
}
