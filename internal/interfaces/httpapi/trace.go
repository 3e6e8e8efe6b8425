package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTraceBodyBytes = 8192

var apiTracer = otel.Tracer("prediction-league/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// TraceOptions controls what the server span records beyond otelhttp's defaults.
type TraceOptions struct {
	CaptureRequestBody bool
	MaxBodyBytes       int
}

// RequestTracing opens the server span for every request except probes.
func RequestTracing(opts TraceOptions, next http.Handler) http.Handler {
	if opts.CaptureRequestBody {
		next = captureRequestBody(opts.MaxBodyBytes, next)
	}
	return otelhttp.NewHandler(next, "prediction-league-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return shouldTraceRequest(r.URL.Path)
		}),
	)
}

func shouldTraceRequest(path string) bool {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "/healthz", "/health", "/livez", "/readyz", "/metrics":
		return false
	}
	return true
}

// captureRequestBody copies up to maxBytes of the body onto the active span
// and hands the handler an unconsumed body.
func captureRequestBody(maxBytes int, next http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = defaultTraceBodyBytes
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if !span.IsRecording() || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}

		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		_, _ = io.CopyN(buf, r.Body, int64(maxBytes)+1)
		captured := buf.B
		truncated := len(captured) > maxBytes
		if truncated {
			captured = captured[:maxBytes]
		}
		span.SetAttributes(
			attribute.String("http.request.body", string(captured)),
			attribute.Bool("http.request.body.truncated", truncated),
		)

		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(buf.B), r.Body), r.Body}
		next.ServeHTTP(w, r)
	})
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		// Probe routes and helpers stay out of the trace.
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
