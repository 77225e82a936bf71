package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/payrecord/internal/observability/context"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const outcomeOK = "ok"

// MiddlewareConfig describes how request spans are labelled.
type MiddlewareConfig struct {
	// Operations maps a gin route to the payment operation it serves.
	Operations map[string]string

	// ErrorClassifier returns the error type and code reported to the client.
	ErrorClassifier func(err error) (string, string)
}

// GinMiddleware opens one server span per request, named after the route,
// and tags it with the payment operation and its outcome.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	tracer := otel.Tracer("payrecord/http")
	return func(c *gin.Context) {
		method := strings.ToUpper(c.Request.Method)
		ctx := ExtractContext(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		span.SetName(method + " " + route)

		attrs := []attribute.KeyValue{
			attribute.String("http.method", method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		}
		if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
			attrs = append(attrs, attribute.String("request_id", requestID))
		}
		if op, ok := cfg.Operations[route]; ok {
			attrs = append(attrs, attribute.String("payment.operation", op))
		}

		outcome := outcomeOK
		lastErr := c.Errors.Last()
		if lastErr != nil && cfg.ErrorClassifier != nil {
			errType, errCode := cfg.ErrorClassifier(lastErr.Err)
			outcome = errType
			if errCode != "" {
				attrs = append(attrs, attribute.String("payment.error_code", errCode))
			}
		}
		attrs = append(attrs, attribute.String("payment.outcome", outcome))
		span.SetAttributes(SafeAttributes(attrs...)...)

		if status >= http.StatusInternalServerError {
			if lastErr != nil {
				if safeErr := SafeError(lastErr.Err); safeErr != nil {
					span.RecordError(safeErr)
				}
			}
			span.SetStatus(codes.Error, outcome)
		}
	}
}
