// Package httpapi exposes the assembler views over HTTP. Station endpoints
// always answer 200 with the status envelope; only malformed requests get a
// non-200.
package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stationhub/stationhub/internal/assembler"
	"github.com/stationhub/stationhub/internal/records"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, asm *assembler.Assembler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")
	stations := v1.Group("/stations/:id")

	stations.Get("/outdoor", func(c *fiber.Ctx) error {
		return c.JSON(asm.Outdoor(c.Context(), c.Params("id")))
	})
	stations.Get("/ephemeris", func(c *fiber.Ctx) error {
		return c.JSON(asm.Ephemeris(c.Context(), c.Params("id")))
	})
	stations.Get("/lcd", func(c *fiber.Ctx) error {
		return c.JSON(asm.LCD(c.Context(), c.Params("id")))
	})
	stations.Get("/full", func(c *fiber.Ctx) error {
		return c.JSON(asm.Full(c.Context(), c.Params("id")))
	})
	stations.Get("/measure", func(c *fiber.Ctx) error {
		req, err := parseMeasureQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(asm.Measure(c.Context(), c.Params("id"), req.Module, records.MeasureType(req.Type)))
	})
}

// measureQuery holds query parameters for the raw measure lookup.
type measureQuery struct {
	Module string `validate:"required"`
	Type   string `validate:"required"`
}

func parseMeasureQuery(c *fiber.Ctx) (measureQuery, error) {
	q := measureQuery{
		Module: c.Query("module"),
		Type:   c.Query("type"),
	}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
