// Package httpmiddleware provides composable net/http middleware: panic
// recovery, request IDs, per-client rate limiting, instrumentation, and
// request logging.
package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h. The first middleware becomes the outermost,
// so Wrap(h, a, b, c) serves requests as a(b(c(h))).
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// writeJSONError writes the API's standard {"code","message"} error body.
// Middleware responses use the same shape as the handlers so clients parse
// one error format.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	_, _ = w.Write(e.Bytes())
}
