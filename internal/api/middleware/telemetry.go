package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/localpros/localpros/webapp/pkg/authz"
)

var tracer = otel.Tracer("localpros-webapp")

// Telemetry returns OpenTelemetry tracing middleware. Spans carry the
// route classification so denied navigations can be sliced by namespace.
func Telemetry(routes *authz.RouteTable) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract propagated context from incoming headers
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			spanName := r.Method + " " + r.URL.Path
			ctx, span := tracer.Start(ctx, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
					attribute.String("url.scheme", scheme(r)),
					attribute.String("localpros.route_class", string(routes.Classify(r.URL.Path))),
				),
			)
			defer span.End()

			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r.WithContext(ctx))

			span.SetAttributes(
				attribute.Int("http.response.status_code", rw.statusCode),
				attribute.Int("http.response_content_length", rw.bytes),
			)
			if loc := rw.Header().Get("Location"); loc != "" {
				span.SetAttributes(attribute.String("localpros.redirect_target", loc))
			}
		})
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		return fwd
	}
	return "http"
}
