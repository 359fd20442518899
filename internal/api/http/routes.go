package httpapi

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/metaweather-update/internal/store"
	"github.com/i474232898/metaweather-update/internal/weather"
)

var validate = validator.New()

// updateTimeout bounds an update triggered over HTTP.
const updateTimeout = 2 * time.Minute

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/observations", func(c *fiber.Ctx) error {
		q := dateQuery{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rows, err := service.Observations(c.UserContext(), q.Date)
		if err != nil {
			if errors.Is(err, store.ErrTableMissing) {
				return fiber.NewError(fiber.StatusNotFound, "no observations stored yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read observations")
		}
		if rows == nil {
			rows = []weather.Observation{}
		}

		return c.JSON(fiber.Map{
			"date":         q.Date,
			"count":        len(rows),
			"observations": rows,
		})
	})

	v1.Get("/observations/summary", func(c *fiber.Ctx) error {
		q := requiredDateQuery{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summary, err := service.Summary(c.UserContext(), q.Date)
		if err != nil {
			if errors.Is(err, store.ErrTableMissing) || errors.Is(err, weather.ErrNoObservations) {
				return fiber.NewError(fiber.StatusNotFound, "no observations for requested date")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to summarize observations")
		}

		return c.JSON(summary)
	})

	v1.Post("/updates", func(c *fiber.Ctx) error {
		q := requiredDateQuery{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := weather.ParseDate(q.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), updateTimeout)
		defer cancel()

		result, err := service.UpdateAndDisplay(ctx, date, io.Discard)
		if err != nil {
			log.Printf("ERROR: update for %s failed: %v", q.Date, err)
			return fiber.NewError(fiber.StatusBadGateway, "weather update failed")
		}

		return c.Status(fiber.StatusCreated).JSON(result)
	})
}

// dateQuery filters observations by applicable date.
type dateQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

type requiredDateQuery struct {
	Date string `validate:"required,datetime=2006-01-02"`
}
