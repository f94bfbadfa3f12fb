package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/SamuelLeutner/notion-acads/api/views"
	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/logger"
)

func CreateCalculateCGPAHandler(holder *app.Holder, timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		a, err := holder.Current()
		if err != nil {
			return setupRequired(c, err)
		}

		var res *app.CGPAResult
		err = runWithTimeout(timeout, "calculate_cgpa", func(ctx context.Context) error {
			var err error
			res, err = a.CalculateCGPA(ctx)
			return err
		})
		if err != nil {
			status := fiber.StatusBadGateway
			if isTimeout(err) {
				status = fiber.StatusGatewayTimeout
			}
			logger.Error().Err(err).Msg("Handler: CGPA calculation failed")
			if wantsJSON(c) {
				return c.Status(status).JSON(fiber.Map{
					"message": "Failed to calculate CGPA",
					"details": err.Error(),
				})
			}
			return views.Render(c, status, views.CGPA, fiber.Map{
				"Title": "CGPA",
				"Error": "Could not calculate the CGPA: " + err.Error(),
			})
		}

		logger.Info().
			Float64("cgpa", res.CGPA).
			Int("semesters", len(res.Labels)).
			Int("failures", len(res.Failures)).
			Msg("Handler: CGPA calculated")

		if wantsJSON(c) {
			return c.Status(fiber.StatusOK).JSON(res)
		}
		return views.Render(c, fiber.StatusOK, views.CGPA, fiber.Map{
			"Title":   "CGPA",
			"Result":  res,
			"Updated": res.UpdatedAt.Format("Mon, 02 Jan 2006 at 15:04"),
		})
	}
}
