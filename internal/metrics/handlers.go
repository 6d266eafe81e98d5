package metrics

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/runs/:id", authMiddleware, func(c *fiber.Ctx) error {
		ownerID, _ := c.Locals("user_id").(string)
		m, err := svc.ForRun(c.Context(), c.Params("id"), ownerID)
		if err != nil {
			if errors.Is(err, ErrRunNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(m)
	})

	r.Get("/runs/:id/last", authMiddleware, func(c *fiber.Ctx) error {
		ownerID, _ := c.Locals("user_id").(string)
		if _, _, err := svc.ownedRun(c.Context(), c.Params("id"), ownerID); err != nil {
			if errors.Is(err, ErrRunNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		last, err := svc.LastReading(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if last == nil {
			return fiber.NewError(fiber.StatusNotFound, "no readings for run")
		}
		return c.JSON(last)
	})

	r.Get("/runs/:id/average", authMiddleware, func(c *fiber.Ctx) error {
		ownerID, _ := c.Locals("user_id").(string)
		if _, _, err := svc.ownedRun(c.Context(), c.Params("id"), ownerID); err != nil {
			if errors.Is(err, ErrRunNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		window, err := svc.AverageLastN(c.Context(), c.Params("id"), c.QueryInt("window"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(window)
	})

	r.Get("/bikes/:bikeID/live", authMiddleware, func(c *fiber.Ctx) error {
		ownerID, _ := c.Locals("user_id").(string)
		view, err := svc.Live(c.Context(), c.Params("bikeID"), ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if view == nil {
			return fiber.NewError(fiber.StatusNotFound, "no active run for bike")
		}
		return c.JSON(view)
	})
}
