package middleware

import (
	"context"
	"fmt"

	"socialapi/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// TracingMiddleware opens a server span per request, continuing any trace
// propagated in the request headers, and exposes its id as X-Trace-ID.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		span, ctx := observability.StartServerSpan(parent, c.Method(), c.Path(),
			semconv.ClientAddress(c.IP()),
			semconv.UserAgentOriginal(c.Get(fiber.HeaderUserAgent)),
		)
		if requestID := c.Locals("requestid"); requestID != nil {
			span.SetAttributes(attribute.String("request.id", fmt.Sprint(requestID)))
		}

		traceID := span.TraceID()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(context.WithValue(ctx, TraceIDKey, traceID))

		err := c.Next()

		// Span names use the route pattern, not the raw path.
		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(
			semconv.HTTPRoute(route),
			semconv.HTTPResponseStatusCode(c.Response().StatusCode()),
		)
		span.End(err)
		return err
	}
}
