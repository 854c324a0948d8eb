// Package httpapi exposes the insurance core over HTTP.
package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/fieldsure/fieldsure/internal/claims"
	"github.com/fieldsure/fieldsure/internal/domain"
	"github.com/fieldsure/fieldsure/internal/ledger"
	"github.com/fieldsure/fieldsure/internal/oracle"
	"github.com/fieldsure/fieldsure/internal/pricing"
	"github.com/fieldsure/fieldsure/internal/readings"
	"github.com/fieldsure/fieldsure/internal/treasury"
)

// Deps bundles the core engines the API serves.
type Deps struct {
	Ledger   *ledger.Ledger
	Claims   *claims.Evaluator
	Broker   *oracle.Broker
	History  *readings.History
	Pricing  *pricing.Engine
	Treasury *treasury.Treasury
	Logger   *slog.Logger
}

// NewApp builds the Fiber app with all routes, middleware, and the
// domain-error-aware error handler.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "fieldsure",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "fieldsure",
		})
	})

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	RegisterRoutes(app, deps)
	return app
}

// errorHandler maps the domain error taxonomy onto HTTP status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	} else {
		switch domain.Kind(err) {
		case domain.KindValidation:
			code = fiber.StatusBadRequest
		case domain.KindAuthorization:
			code = fiber.StatusForbidden
		case domain.KindNotFound:
			code = fiber.StatusNotFound
		case domain.KindStateConflict:
			code = fiber.StatusConflict
		case domain.KindResource:
			code = fiber.StatusUnprocessableEntity
		case domain.KindTransfer:
			code = fiber.StatusBadGateway
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
