package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/SamuelLeutner/notion-acads/app"
)

func CreateHomeHandler(holder *app.Holder) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := holder.Current(); err != nil {
			return setupRequired(c, err)
		}
		return c.Redirect().To("/add-semester")
	}
}
