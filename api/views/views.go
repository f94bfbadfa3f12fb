// Package views renders the server's HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"
)

const (
	AddSemester    = "add_semester.html"
	SemesterResult = "semester_result.html"
	Setup          = "setup.html"
	CGPA           = "cgpa.html"
)

//go:embed templates/*.html
var files embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{AddSemester, SemesterResult, Setup, CGPA} {
		pages[name] = template.Must(template.ParseFS(files, "templates/layout.html", "templates/"+name))
	}
}

// Render executes page with data and sends it with the given status.
func Render(c fiber.Ctx, status int, page string, data fiber.Map) error {
	t, ok := pages[page]
	if !ok {
		return errors.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, page, data); err != nil {
		return errors.Wrapf(err, "rendering %s", page)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}
