package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quotedesk/rfq-client/internal/entitystore"
)

// RegisterRoutes wires the metrics endpoint, health check, and the
// RFQ API onto the fiber app. nc may be nil when NATS is disabled.
func RegisterRoutes(app *fiber.App, nc *nats.Conn, st *entitystore.RedisStore, handler *RFQHandler) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "ok",
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc != nil {
			if !nc.IsConnected() {
				checks["nats"] = "disconnected"
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
				checks["nats"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		} else {
			checks["nats"] = "disabled"
		}

		healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.HealthCheck(healthCtx); err != nil {
			checks["store"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	v1 := app.Group("/api/v1")
	v1.Post("/rfqs", handler.CreateRFQ)
	v1.Get("/rfqs", handler.QueryRFQs)
	v1.Get("/rfqs/:id", handler.GetRFQ)
	v1.Patch("/rfqs/:id", handler.UpdateRFQ)
	v1.Post("/rfqs/:id/cancel", handler.CancelRFQ)
	v1.Delete("/rfqs/:id", handler.DeleteRFQ)
}
