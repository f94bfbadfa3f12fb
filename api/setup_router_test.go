package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelLeutner/notion-acads/acads"
	"github.com/SamuelLeutner/notion-acads/acads/acadstest"
	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/models"
)

type testServer struct {
	app       *fiber.App
	holder    *app.Holder
	store     *acadstest.MemStore
	parent    string
	courses   string
	semesters string
}

func newTestServer(t *testing.T, configured bool) *testServer {
	t.Helper()
	store := acadstest.NewMemStore()
	s := &testServer{
		store:     store,
		parent:    uuid.NewString(),
		courses:   store.AddCollection("Courses"),
		semesters: store.AddCollection("Semesters"),
	}
	store.AddBlock(s.parent, models.Block{ID: s.courses, Type: models.BlockChildDatabase, ChildDatabase: &models.ChildTitle{Title: "Courses"}})
	store.AddBlock(s.parent, models.Block{ID: s.semesters, Type: models.BlockChildDatabase, ChildDatabase: &models.ChildTitle{Title: "Semesters"}})
	store.AddBlock(s.parent, models.Block{Type: models.BlockQuote, Quote: &models.RichTextBlock{}})

	values := map[string]string{}
	if configured {
		values = map[string]string{
			config.KeyNotionToken:        "secret",
			config.KeyCourseDatabaseID:   s.courses,
			config.KeySemesterDatabaseID: s.semesters,
			config.KeyParentPageID:       s.parent,
		}
	}
	cfg, err := config.FromMap(values)
	require.NoError(t, err)
	cfg.EnvFile = filepath.Join(t.TempDir(), "secrets.env")

	holder, err := app.NewHolder(cfg, app.Factory{
		Store:  func(*config.Config) acads.Store { return store },
		Images: func(*config.Config) acads.ImageProvider { return acads.StaticImage("https://img.example/a.jpg") },
	})
	require.NoError(t, err)

	s.holder = holder
	s.app = SetupRouter(holder, 5*time.Second)
	return s
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func TestPing(t *testing.T) {
	s := newTestServer(t, true)
	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","message":"pong"}`, body)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestHomeRedirects(t *testing.T) {
	s := newTestServer(t, false)
	resp, _ := s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.GreaterOrEqual(t, resp.StatusCode, 300)
	assert.Less(t, resp.StatusCode, 400)
	assert.Equal(t, "/setup", resp.Header.Get(fiber.HeaderLocation))

	s = newTestServer(t, true)
	resp, _ = s.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "/add-semester", resp.Header.Get(fiber.HeaderLocation))
}

func TestIncompleteSetupJSON(t *testing.T) {
	s := newTestServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/calculate-cgpa", nil)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	resp, body := s.do(t, req)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, config.KeyNotionToken)
}

func TestAddSemesterPage(t *testing.T) {
	s := newTestServer(t, true)
	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/add-semester?courses=2", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Contains(t, body, `name="courses[2][name]"`)
	assert.NotContains(t, body, `name="courses[3][name]"`)
}

func TestAddSemesterForm(t *testing.T) {
	s := newTestServer(t, true)
	resp, body := s.do(t, formRequest("/add-semester-form", url.Values{
		"semester":              {"Semester 1"},
		"courses[1][name]":      {"Physics"},
		"courses[1][credits]":   {"4"},
		"courses[1][professor]": {"Ada, Grace"},
		"courses[2][name]":      {"Broken"},
		"courses[2][credits]":   {"zero"},
	}))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Semester page created.")
	assert.Contains(t, body, "1 of 2 courses added.")
	assert.Contains(t, body, "credits must be a whole number")

	records := s.store.Records(s.courses)
	require.Len(t, records, 1)
	assert.Equal(t, "Physics", records[0].Properties.Text("Course Name"))
}

func TestAddSemesterJSON(t *testing.T) {
	s := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodPost, "/add-semester-form", strings.NewReader(`{
		"semester": "Semester 2",
		"courses": [{"name": "Networks", "credits": 4, "bucketing": "Core"}]
	}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var res acads.SyncResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.True(t, res.Semester.Created)
	require.Len(t, res.Courses, 1)
	assert.True(t, res.Courses[0].Succeeded)
}

func TestAddSemesterJSONBadCredits(t *testing.T) {
	s := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodPost, "/add-semester-form", strings.NewReader(`{
		"semester": "Semester 4",
		"courses": [
			{"name": "Databases", "credits": "abc"},
			{"name": "Networks", "credits": 2},
			{"name": "Ethics", "credits": 3.5}
		]
	}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var res acads.SyncResult
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	require.Len(t, res.Courses, 3)
	assert.False(t, res.Courses[0].Succeeded)
	assert.Equal(t, "credits must be a whole number", res.Courses[0].ErrorMessage)
	assert.True(t, res.Courses[1].Succeeded)
	assert.False(t, res.Courses[2].Succeeded)
	assert.Equal(t, "credits must be a whole number", res.Courses[2].ErrorMessage)

	records := s.store.Records(s.courses)
	require.Len(t, records, 1)
	assert.Equal(t, "Networks", records[0].Properties.Text("Course Name"))

	semesters := s.store.Records(s.semesters)
	require.Len(t, semesters, 1)
	assert.Equal(t, 1.0, semesters[0].Properties.FloatOr("Courses", -1))
	assert.Equal(t, 2.0, semesters[0].Properties.FloatOr("Credits", -1))
}

func TestAddSemesterRejectsBadLabel(t *testing.T) {
	s := newTestServer(t, true)
	resp, body := s.do(t, formRequest("/add-semester-form", url.Values{
		"semester":            {"Autumn"},
		"courses[1][name]":    {"Physics"},
		"courses[1][credits]": {"4"},
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Autumn")
	assert.Empty(t, s.store.Ops())
}

func TestAddSemesterRemoteFailure(t *testing.T) {
	s := newTestServer(t, true)
	s.store.Fail = func(op, target string, payload interface{}) error {
		if op == "QueryCollection" {
			return errors.New("service unavailable")
		}
		return nil
	}

	resp, _ := s.do(t, formRequest("/add-semester-form", url.Values{
		"semester":            {"Semester 1"},
		"courses[1][name]":    {"Physics"},
		"courses[1][credits]": {"4"},
	}))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestSetupForm(t *testing.T) {
	s := newTestServer(t, false)
	link := "https://www.notion.so/Academics-" + strings.ReplaceAll(s.parent, "-", "")

	resp, _ := s.do(t, formRequest("/setup-form", url.Values{
		"notion_token":     {"secret_new"},
		"parent_page_link": {link},
	}))
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/add-semester", resp.Header.Get(fiber.HeaderLocation))

	a, err := s.holder.Current()
	require.NoError(t, err)
	assert.Equal(t, s.courses, a.Config.CourseDatabaseID)
	assert.Equal(t, s.semesters, a.Config.SemesterDatabaseID)
}

func TestSetupFormHidesRemoteErrors(t *testing.T) {
	s := newTestServer(t, false)
	s.store.Fail = func(op, target string, payload interface{}) error {
		if op == "WhoAmI" {
			return errors.New("API token is invalid: secret_leaked")
		}
		return nil
	}

	resp, body := s.do(t, formRequest("/setup-form", url.Values{
		"notion_token":     {"secret_leaked"},
		"parent_page_link": {s.parent},
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Setup failed.")
	assert.NotContains(t, body, "secret_leaked")
}

func TestSetupFormRejectsBadLink(t *testing.T) {
	s := newTestServer(t, false)
	resp, body := s.do(t, formRequest("/setup-form", url.Values{
		"notion_token":     {"secret"},
		"parent_page_link": {"https://www.notion.so/Academics"},
	}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Notion page link")
	assert.Zero(t, s.store.CallCount("WhoAmI"))
}

func TestCalculateCGPA(t *testing.T) {
	s := newTestServer(t, true)
	s.store.Seed(s.semesters, models.Properties{"Semester": models.TitleValue("Semester 1")})
	s.store.Seed(s.courses, models.Properties{
		"Course Name":  models.TitleValue("Physics"),
		"Semester":     models.SelectValue("Semester 1"),
		"Credits":      models.NumberValue(4),
		"Grade Points": models.FormulaNumber(14.8),
	})

	req := httptest.NewRequest(http.MethodPost, "/calculate-cgpa", nil)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	resp, body := s.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var res struct {
		CGPA      float64 `json:"cgpa"`
		QuoteText string  `json:"quoteText"`
		Exported  bool    `json:"exported"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.Equal(t, 3.7, res.CGPA)
	assert.Contains(t, res.QuoteText, "Overall CGPA: 3.70/4.00")
	assert.False(t, res.Exported)

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/calculate-cgpa", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Overall CGPA: 3.70/4.00")
	assert.Contains(t, body, "<td>Semester 1</td>")
}
