package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpload("ok", 10)
		m.NodeCreated("branch")
		m.AuthEvent("SIGNED_IN")
		m.SetClients(3)
	})
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveUpload("ok", 100)
	m.ObserveUpload("rejected", 999)
	m.NodeCreated("branch")

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				got[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), got["notesku_uploads_total"])
	assert.Equal(t, float64(100), got["notesku_upload_bytes_total"])
	assert.Equal(t, float64(1), got["notesku_catalog_nodes_created_total"])
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), `notesku_http_requests_total{method="GET",route="/ping",status="200"} 1`))
}
