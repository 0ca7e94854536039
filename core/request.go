package core

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cast"
)

const (
	HeaderRequest  = "HX-Request"
	HeaderTrigger  = "HX-Trigger"
	HeaderRedirect = "HX-Redirect"
)

type signalKey struct{}

// WithSignal records on ctx whether the request wants rendered markup.
func WithSignal(ctx context.Context, hx bool) context.Context {
	return context.WithValue(ctx, signalKey{}, hx)
}

// IsHXRequest reports whether the request asks for a markup fragment. A value
// stored by Detect wins over the raw header.
func IsHXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if hx, ok := r.Context().Value(signalKey{}).(bool); ok {
		return hx
	}
	return parseSignal(r.Header.Get(HeaderRequest))
}

// parseSignal accepts the usual boolean spellings: "true", "1", "t", "TRUE".
func parseSignal(value string) bool {
	hx, err := cast.ToBoolE(strings.TrimSpace(value))
	return err == nil && hx
}

// Detect stores the request signal on the request context.
func Detect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hx := parseSignal(r.Header.Get(HeaderRequest))
		next.ServeHTTP(w, r.WithContext(WithSignal(r.Context(), hx)))
	})
}

// Response is the side channel handlers use to set headers and a status code.
// Whatever is set here reaches the client on both the JSON and the HTML path.
type Response struct {
	header http.Header
	status int
}

func NewResponse() *Response {
	return &Response{header: make(http.Header)}
}

func (res *Response) Header() http.Header {
	return res.header
}

func (res *Response) SetStatus(code int) {
	res.status = code
}

// Status is the status the handler asked for, or 200.
func (res *Response) Status() int {
	if res.status == 0 {
		return http.StatusOK
	}
	return res.status
}

// Trigger asks htmx to fire a client-side event once the response lands.
func (res *Response) Trigger(event string) {
	res.header.Add(HeaderTrigger, event)
}

// Redirect asks htmx to perform a full page navigation.
func (res *Response) Redirect(url string) {
	res.header.Set(HeaderRedirect, url)
}

func (res *Response) apply(w http.ResponseWriter) {
	copyHeaders(w.Header(), res.header)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Set-Cookie") || strings.EqualFold(key, HeaderTrigger) {
			for _, value := range values {
				dst.Add(key, value)
			}
			continue
		}
		dst.Del(key)
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
