package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/api/requests"
	"github.com/SamuelLeutner/notion-acads/api/views"
	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/utils"
)

const setupFailedMessage = "Setup failed. Check the integration token, share the parent page with the integration and make sure it holds exactly two databases (courses and semesters), then try again."

var validate = validator.New()

func setupPage(c fiber.Ctx, holder *app.Holder, status int, errMsg string) error {
	data := fiber.Map{"Title": "Setup", "Error": errMsg}
	cfg := holder.Config()
	var ie *config.IncompleteError
	if errors.As(cfg.Validate(), &ie) {
		data["Missing"] = ie.Missing
	}
	return views.Render(c, status, views.Setup, data)
}

func CreateSetupPageHandler(holder *app.Holder) fiber.Handler {
	return func(c fiber.Ctx) error {
		return setupPage(c, holder, fiber.StatusOK, "")
	}
}

// CreateSetupFormHandler never shows remote error text: the reason is logged
// and the user gets one generic retry message.
func CreateSetupFormHandler(holder *app.Holder, timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		req := new(requests.SetupRequest)
		if err := c.Bind().Form(req); err != nil {
			logger.Warn().Err(err).Msg("Handler: invalid setup form")
			return setupPage(c, holder, fiber.StatusBadRequest, setupFailedMessage)
		}
		if err := validate.Struct(req); err != nil {
			return setupPage(c, holder, fiber.StatusBadRequest, "Both the integration token and the parent page link are required.")
		}

		parentID, err := utils.ParseNotionID(req.ParentPageLink)
		if err != nil {
			return setupPage(c, holder, fiber.StatusBadRequest, "That does not look like a Notion page link.")
		}

		err = runWithTimeout(timeout, "setup", func(ctx context.Context) error {
			_, err := holder.Configure(ctx, app.SetupInput{
				NotionToken:       req.NotionToken,
				ParentPageID:      parentID,
				UnsplashAccessKey: req.UnsplashAccessKey,
			})
			return err
		})
		if err != nil {
			logger.Error().Err(err).Str("parentPageId", parentID).Msg("Handler: setup failed")
			return setupPage(c, holder, fiber.StatusBadRequest, setupFailedMessage)
		}

		return c.Redirect().Status(fiber.StatusSeeOther).To("/add-semester")
	}
}
