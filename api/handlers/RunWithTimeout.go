package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/logger"
)

var errTimeout = errors.New("operation timed out")

// runWithTimeout runs fn on its own goroutine and gives up after timeout.
// The context is not derived from the request: fasthttp reuses it once the
// handler returns.
func runWithTimeout(timeout time.Duration, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- fn(ctx)
	}()

	select {
	case <-ctx.Done():
		select {
		case err := <-errChan:
			return err
		default:
		}
		logger.Warn().Str("op", op).Dur("timeout", timeout).Msg("Handler operation timed out")
		return errors.Wrap(errTimeout, op)
	case err := <-errChan:
		return err
	}
}

func isTimeout(err error) bool {
	return errors.Cause(err) == errTimeout || errors.Is(err, context.DeadlineExceeded)
}

func wantsJSON(c fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) ||
		strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON)
}

// setupRequired sends the caller to the setup page when the configuration is
// incomplete. Other errors are returned unchanged.
func setupRequired(c fiber.Ctx, err error) error {
	if !config.IsIncomplete(err) {
		return err
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Setup incomplete",
			"details": err.Error(),
		})
	}
	return c.Redirect().To("/setup")
}
