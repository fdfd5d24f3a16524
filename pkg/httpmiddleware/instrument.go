package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Instrument returns a middleware that records a span and request metrics for
// every request via otelhttp. Pass otelhttp.WithTracerProvider and
// otelhttp.WithMeterProvider to bind it to the application's telemetry;
// without them the global providers are used.
func Instrument(operation string, opts ...otelhttp.Option) Middleware {
	opts = append(opts, otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return r.Method + " " + r.URL.Path
	}))
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation, opts...)
	}
}
