package observability

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hospintel/hospintel_backend/pkg/observability"

// HeaderTraceID carries the server span's trace id back to the caller.
const HeaderTraceID = "X-Trace-Id"

// Route areas used as the "area" label on HTTP series.
const (
	AreaForms     = "forms"
	AreaAdmin     = "admin"
	AreaSystem    = "system"
	AreaUnmatched = "unmatched"
)

// HTTPOptions configures HTTPMiddleware.
type HTTPOptions struct {
	// Tracing starts a server span per request. Metrics are recorded either way.
	Tracing bool
	// Skip lists request paths that are neither measured nor traced.
	Skip []string

	// Providers default to the global ones.
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

func newHTTPInstruments(mp metric.MeterProvider) httpInstruments {
	meter := mp.Meter(tracerName)
	var in httpInstruments
	in.requests, _ = meter.Int64Counter(
		"hospintel_http_requests_total",
		metric.WithDescription("HTTP requests by area, route and status"),
		metric.WithUnit("{request}"),
	)
	in.duration, _ = meter.Float64Histogram(
		"hospintel_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	)
	in.inflight, _ = meter.Int64UpDownCounter(
		"hospintel_http_requests_in_flight",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	return in
}

// HTTPMiddleware records request metrics for the gateway's routes and,
// when enabled, wraps each request in a server span.
func HTTPMiddleware(opts HTTPOptions) fiber.Handler {
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	in := newHTTPInstruments(mp)
	tracer := tp.Tracer(tracerName)

	return func(c fiber.Ctx) error {
		if slices.Contains(opts.Skip, c.Path()) {
			return c.Next()
		}

		ctx := c.Context()
		var span trace.Span
		if opts.Tracing {
			ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(c.GetReqHeaders()))
			ctx, span = tracer.Start(ctx, c.Method()+" "+c.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", c.Method()),
					attribute.String("client.address", c.IP()),
					attribute.String("user_agent.original", c.Get(fiber.HeaderUserAgent)),
				),
			)
			defer span.End()
			c.SetContext(ctx)
			if sc := span.SpanContext(); sc.HasTraceID() {
				c.Set(HeaderTraceID, sc.TraceID().String())
			}
		}

		method := attribute.String("method", c.Method())
		in.inflight.Add(ctx, 1, metric.WithAttributes(method))
		start := time.Now()

		err := c.Next()

		elapsed := time.Since(start).Seconds()
		in.inflight.Add(context.WithoutCancel(ctx), -1, metric.WithAttributes(method))

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := routeLabel(c, status)
		attrs := metric.WithAttributes(
			method,
			attribute.String("area", routeArea(route)),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(status)),
		)
		in.requests.Add(ctx, 1, attrs)
		in.duration.Record(ctx, elapsed, attrs)

		if span != nil {
			span.SetName(c.Method() + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
			)
			if status >= fiber.StatusInternalServerError {
				span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(status))
				if err != nil {
					span.RecordError(err)
				}
			}
		}
		return err
	}
}

// routeLabel is the matched route pattern. Requests that matched no
// handler collapse into one label so unknown paths cannot grow the series.
func routeLabel(c fiber.Ctx, status int) string {
	r := c.Route()
	if r == nil || r.Path == "" || r.Path == "/" {
		return AreaUnmatched
	}
	if status == fiber.StatusNotFound && len(r.Params) == 0 && r.Path != c.Path() {
		return AreaUnmatched
	}
	return r.Path
}

func routeArea(route string) string {
	switch {
	case route == AreaUnmatched:
		return AreaUnmatched
	case strings.HasPrefix(route, "/api/v1/forms"):
		return AreaForms
	case strings.HasPrefix(route, "/api/v1/admin"):
		return AreaAdmin
	default:
		return AreaSystem
	}
}
