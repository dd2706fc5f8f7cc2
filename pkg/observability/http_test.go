package observability

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newMeasuredApp(t *testing.T, opts HTTPOptions) (*fiber.App, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	opts.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	app := fiber.New()
	app.Use(HTTPMiddleware(opts))
	app.Get("/livez", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/api/v1/forms/demo", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	app.Delete("/api/v1/admin/records/:store/:id", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/api/v1/admin/records", func(c fiber.Ctx) error { return fiber.ErrUnauthorized })
	return app, reader
}

func send(t *testing.T, app *fiber.App, method, path string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	resp.Body.Close()
}

type requestPoint struct {
	area, route, status string
	count               int64
}

func collectRequests(t *testing.T, reader *sdkmetric.ManualReader) []requestPoint {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var out []requestPoint
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "hospintel_http_requests_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				get := func(k string) string {
					v, _ := dp.Attributes.Value(attribute.Key(k))
					return v.AsString()
				}
				out = append(out, requestPoint{area: get("area"), route: get("route"), status: get("status"), count: dp.Value})
			}
		}
	}
	return out
}

func TestHTTPMiddleware_RecordsRoutesByArea(t *testing.T) {
	app, reader := newMeasuredApp(t, HTTPOptions{Skip: []string{"/livez"}})

	send(t, app, fiber.MethodPost, "/api/v1/forms/demo")
	send(t, app, fiber.MethodPost, "/api/v1/forms/demo")
	send(t, app, fiber.MethodDelete, "/api/v1/admin/records/leads/abc")
	send(t, app, fiber.MethodDelete, "/api/v1/admin/records/inquiries/def")
	send(t, app, fiber.MethodGet, "/api/v1/admin/records")
	send(t, app, fiber.MethodGet, "/livez")

	points := collectRequests(t, reader)
	assert.ElementsMatch(t, []requestPoint{
		{area: AreaForms, route: "/api/v1/forms/demo", status: "201", count: 2},
		{area: AreaAdmin, route: "/api/v1/admin/records/:store/:id", status: "204", count: 2},
		{area: AreaAdmin, route: "/api/v1/admin/records", status: "401", count: 1},
	}, points)
}

func TestHTTPMiddleware_TracingToggle(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	app, reader := newMeasuredApp(t, HTTPOptions{TracerProvider: tp})
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/forms/demo", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get(HeaderTraceID))
	assert.Empty(t, spans.Ended())
	assert.Len(t, collectRequests(t, reader), 1)

	app, _ = newMeasuredApp(t, HTTPOptions{Tracing: true, TracerProvider: tp})
	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/forms/demo", nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get(HeaderTraceID))
	require.Len(t, spans.Ended(), 1)
	assert.Equal(t, "POST /api/v1/forms/demo", spans.Ended()[0].Name())
}

func TestRouteArea(t *testing.T) {
	assert.Equal(t, AreaForms, routeArea("/api/v1/forms/contact"))
	assert.Equal(t, AreaAdmin, routeArea("/api/v1/admin/login"))
	assert.Equal(t, AreaSystem, routeArea("/metrics"))
	assert.Equal(t, AreaUnmatched, routeArea(AreaUnmatched))
}

func TestInitTelemetry_ExportsHTTPSeries(t *testing.T) {
	reg := promclient.NewRegistry()
	p, err := InitTelemetry(context.Background(), Config{ServiceName: "hospintel_backend", Registerer: reg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	assert.False(t, p.Tracing())

	app := fiber.New()
	app.Use(HTTPMiddleware(HTTPOptions{MeterProvider: p.MeterProvider}))
	app.Post("/api/v1/forms/contact", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	send(t, app, fiber.MethodPost, "/api/v1/forms/contact")

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "hospintel_http_requests_total") {
			found = true
		}
	}
	assert.True(t, found)
}
