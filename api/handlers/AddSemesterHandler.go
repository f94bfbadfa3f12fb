package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/SamuelLeutner/notion-acads/acads"
	"github.com/SamuelLeutner/notion-acads/api/requests"
	"github.com/SamuelLeutner/notion-acads/api/views"
	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/logger"
)

const (
	defaultCourseRows = 5
	maxCourseRows     = 12
	semesterChoices   = 10
)

func addSemesterPage(c fiber.Ctx, status int, errMsg string) error {
	rows := defaultCourseRows
	if n, err := strconv.Atoi(c.Query("courses")); err == nil && n > 0 {
		rows = n
	}
	if rows > maxCourseRows {
		rows = maxCourseRows
	}

	numbers := make([]int, rows)
	for i := range numbers {
		numbers[i] = i + 1
	}
	labels := make([]string, semesterChoices)
	for i := range labels {
		labels[i] = fmt.Sprintf("Semester %d", i+1)
	}

	return views.Render(c, status, views.AddSemester, fiber.Map{
		"Title":     "Add semester",
		"Semesters": labels,
		"Rows":      numbers,
		"Error":     errMsg,
	})
}

func CreateAddSemesterPageHandler(holder *app.Holder) fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := holder.Current(); err != nil {
			return setupRequired(c, err)
		}
		return addSemesterPage(c, fiber.StatusOK, "")
	}
}

// CreateAddSemesterFormHandler accepts either the url-encoded form or a JSON
// body of the same shape and answers in kind.
func CreateAddSemesterFormHandler(holder *app.Holder, timeout time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		a, err := holder.Current()
		if err != nil {
			return setupRequired(c, err)
		}

		asJSON := wantsJSON(c)
		var req *requests.AddSemesterRequest
		if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEApplicationJSON) {
			req = new(requests.AddSemesterRequest)
			if err := c.Bind().JSON(req); err != nil {
				logger.Warn().Err(err).Msg("Handler: invalid add-semester body")
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"message": "Invalid request body",
					"details": err.Error(),
				})
			}
		} else {
			req = requests.ParseAddSemesterForm(func(fn func(key, value string)) {
				c.Request().PostArgs().VisitAll(func(k, v []byte) {
					fn(string(k), string(v))
				})
			})
		}

		fail := func(status int, msg string) error {
			if asJSON {
				return c.Status(status).JSON(fiber.Map{"message": msg})
			}
			return addSemesterPage(c, status, msg)
		}

		if len(req.Courses) == 0 {
			return fail(fiber.StatusBadRequest, "Add at least one course.")
		}

		var res *acads.SyncResult
		err = runWithTimeout(timeout, "add_semester", func(ctx context.Context) error {
			var err error
			res, err = a.Syncer.AddSemester(ctx, req.Semester, req.CourseInputs())
			return err
		})
		if err != nil {
			switch {
			case acads.IsDataShape(err):
				return fail(fiber.StatusBadRequest, err.Error())
			case isTimeout(err):
				return fail(fiber.StatusGatewayTimeout, "Notion took too long to answer. Some courses may have been created; check the workspace before retrying.")
			default:
				logger.Error().Err(err).Str("semester", req.Semester).Msg("Handler: add semester failed")
				return fail(fiber.StatusBadGateway, "Could not create the semester: "+err.Error())
			}
		}

		logger.Info().
			Str("semester", res.Semester.Label).
			Bool("created", res.Semester.Created).
			Int("succeeded", res.Succeeded()).
			Int("failed", res.Failed()).
			Msg("Handler: semester sync finished")

		if asJSON {
			return c.Status(fiber.StatusOK).JSON(res)
		}
		return views.Render(c, fiber.StatusOK, views.SemesterResult, fiber.Map{
			"Title":  res.Semester.Label,
			"Result": res,
		})
	}
}
