package acads

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

const (
	defaultCourseEmoji = "📚"
	// Notion accepts at most 100 children in one page create request.
	maxPageChildren    = 100
)

// CourseInput is one course as submitted by the user.
type CourseInput struct {
	Name        string   `json:"name" validate:"required"`
	Code        string   `json:"code"`
	Credits     int      `json:"credits" validate:"gt=0"`
	Emoji       string   `json:"emoji"`
	Instructors []string `json:"instructors" validate:"dive,required"`
	Tags        []string `json:"tags" validate:"dive,required"`
	// Rejected, when set, fails the course with this reason before any
	// remote call. Callers set it for fields they could not parse.
	Rejected    string   `json:"-"`
}

type SemesterOutcome struct {
	Label    string `json:"label"`
	RecordID string `json:"recordId"`
	URL      string `json:"url"`
	Created  bool   `json:"created"`
}

type CourseOutcome struct {
	Name         string `json:"name"`
	Succeeded    bool   `json:"succeeded"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	RecordID     string `json:"recordId,omitempty"`
	URL          string `json:"url,omitempty"`
	ResultsError string `json:"resultsError,omitempty"`
}

type SyncResult struct {
	Semester SemesterOutcome `json:"semester"`
	Courses  []CourseOutcome `json:"courses"`
}

func (r *SyncResult) Succeeded() int {
	n := 0
	for _, c := range r.Courses {
		if c.Succeeded {
			n++
		}
	}
	return n
}

func (r *SyncResult) Failed() int {
	return len(r.Courses) - r.Succeeded()
}

// Syncer creates semester and course pages. A semester page is created at
// most once per label; course pages are always created.
type Syncer struct {
	Store                Store
	Images               ImageProvider
	Schema               Schema
	CourseCollectionID   string
	SemesterCollectionID string
	PageSize             int
	ImageQuery           string
	ProvisionResults     bool
	// TemplatePageID names a page whose text blocks are copied into every
	// new course page. Empty means DefaultCourseContent.
	TemplatePageID       string

	validate *validator.Validate
}

func NewSyncer(store Store, images ImageProvider, schema Schema, courseCollectionID, semesterCollectionID string) *Syncer {
	if images == nil {
		images = StaticImage(FallbackImageURL)
	}
	return &Syncer{
		Store:                store,
		Images:               images,
		Schema:               schema,
		CourseCollectionID:   courseCollectionID,
		SemesterCollectionID: semesterCollectionID,
		PageSize:             100,
		ImageQuery:           "college study",
		ProvisionResults:     true,
		validate:             validator.New(),
	}
}

// AddSemester makes sure the semester page exists and then creates every
// course in order. A failure on the semester aborts before any course is
// tried; a failure on a course only marks that course.
func (s *Syncer) AddSemester(ctx context.Context, label string, courses []CourseInput) (*SyncResult, error) {
	label, err := NormalizeLabel(label)
	if err != nil {
		return nil, err
	}

	semester, err := s.EnsureSemester(ctx, label, courses)
	if err != nil {
		return nil, err
	}

	content := s.CourseContent(ctx)
	result := &SyncResult{Semester: semester, Courses: make([]CourseOutcome, 0, len(courses))}
	for _, c := range courses {
		result.Courses = append(result.Courses, s.createCourse(ctx, label, c, content))
	}

	logger.Info().
		Str("semester", label).
		Bool("semesterCreated", semester.Created).
		Int("succeeded", result.Succeeded()).
		Int("failed", result.Failed()).
		Msg("Semester sync finished")
	return result, nil
}

// EnsureSemester returns the existing record titled label, or creates one
// seeded with the count and credits of the courses that pass validation.
func (s *Syncer) EnsureSemester(ctx context.Context, label string, courses []CourseInput) (SemesterOutcome, error) {
	existing, err := s.FindSemester(ctx, label)
	if err != nil {
		return SemesterOutcome{}, err
	}
	if existing != nil {
		logger.Info().Str("semester", label).Str("recordId", existing.ID).Msg("Semester already exists, skipping creation")
		return SemesterOutcome{Label: label, RecordID: existing.ID, URL: existing.URL}, nil
	}

	count, credits := 0, 0
	for _, c := range courses {
		if in, reason := s.check(c); reason == "" {
			count++
			credits += in.Credits
		}
	}

	req := models.CreateRecordRequest{
		ParentID:           s.SemesterCollectionID,
		ParentIsCollection: true,
		Properties: models.Properties{
			s.Schema.SemesterTitle:   models.TitleValue(label),
			s.Schema.SemesterCourses: models.NumberValue(float64(count)),
			s.Schema.SemesterCredits: models.NumberValue(float64(credits)),
			s.Schema.SemesterSGPA:    models.NumberValue(0),
		},
		CoverURL:  s.Images.RandomImage(ctx, s.ImageQuery),
		IconEmoji: "🎓",
	}

	rec, err := s.Store.CreateRecord(ctx, req)
	if err != nil {
		l := logger.Op("create_semester", s.SemesterCollectionID)
		l.Error().Err(err).Str("semester", label).Msg("Failed to create semester record")
		return SemesterOutcome{}, errors.Wrapf(err, "creating semester %q", label)
	}

	logger.Info().Str("semester", label).Str("recordId", rec.ID).Msg("Semester record created")
	return SemesterOutcome{Label: label, RecordID: rec.ID, URL: rec.URL, Created: true}, nil
}

// FindSemester pages through the semester collection looking for an exact
// title match. It returns nil when none exists.
func (s *Syncer) FindSemester(ctx context.Context, label string) (*models.Record, error) {
	q := models.Query{
		Filter:   &models.Filter{Property: s.Schema.SemesterTitle, Title: &models.TextFilter{Equals: label}},
		PageSize: s.PageSize,
	}
	for {
		page, err := s.Store.QueryCollection(ctx, s.SemesterCollectionID, q)
		if err != nil {
			l := logger.Op("query_semesters", s.SemesterCollectionID)
			l.Error().Err(err).Str("semester", label).Msg("Failed to look up semester")
			return nil, errors.Wrapf(err, "looking up semester %q", label)
		}
		for i := range page.Results {
			if page.Results[i].Properties.Text(s.Schema.SemesterTitle) == label {
				return &page.Results[i], nil
			}
		}
		if q.Cursor = page.Cursor(); q.Cursor == "" {
			return nil, nil
		}
	}
}

// CreateCourse creates one course page and, when enabled, its results
// database. It never returns an error; the outcome carries it.
func (s *Syncer) CreateCourse(ctx context.Context, label string, in CourseInput) CourseOutcome {
	return s.createCourse(ctx, label, in, s.CourseContent(ctx))
}

func (s *Syncer) createCourse(ctx context.Context, label string, in CourseInput, content []models.BlockContent) CourseOutcome {
	in, reason := s.check(in)
	out := CourseOutcome{Name: in.Name}

	if reason != "" {
		out.ErrorMessage = reason
		logger.Warn().Str("course", in.Name).Str("reason", reason).Msg("Course rejected before creation")
		return out
	}

	props := models.Properties{
		s.Schema.CourseName:     models.TitleValue(in.Name),
		s.Schema.CourseCredits:  models.NumberValue(float64(in.Credits)),
		s.Schema.CourseSemester: models.SelectValue(label),
	}
	if in.Code != "" {
		props[s.Schema.CourseCode] = models.RichTextValue(in.Code)
	}
	if len(in.Instructors) > 0 {
		props[s.Schema.CourseInstructors] = models.MultiSelectValue(in.Instructors)
	}
	if len(in.Tags) > 0 {
		props[s.Schema.CourseTags] = models.MultiSelectValue(in.Tags)
	}

	rec, err := s.Store.CreateRecord(ctx, models.CreateRecordRequest{
		ParentID:           s.CourseCollectionID,
		ParentIsCollection: true,
		Properties:         props,
		Children:           content,
		CoverURL:           s.Images.RandomImage(ctx, s.ImageQuery),
		IconEmoji:          in.Emoji,
	})
	if err != nil {
		l := logger.Op("create_course", s.CourseCollectionID)
		l.Error().Err(err).Str("course", in.Name).Msg("Failed to create course record")
		out.ErrorMessage = err.Error()
		return out
	}

	out.Succeeded = true
	out.RecordID = rec.ID
	out.URL = rec.URL
	logger.Info().Str("course", in.Name).Str("recordId", rec.ID).Msg("Course record created")

	if s.ProvisionResults {
		if err := s.provisionResults(ctx, rec.ID); err != nil {
			l := logger.Op("create_results", rec.ID)
			l.Error().Err(err).Str("course", in.Name).Msg("Failed to provision results database")
			out.ResultsError = err.Error()
		}
	}
	return out
}

// check normalizes in and returns why it cannot be created, or "".
func (s *Syncer) check(in CourseInput) (CourseInput, string) {
	in = normalizeCourse(in)
	if in.Rejected != "" {
		return in, in.Rejected
	}
	if err := s.validate.Struct(in); err != nil {
		return in, describeValidation(err)
	}
	return in, ""
}

// CourseContent is the body every new course page starts with: the text
// blocks of the template page when one is configured, otherwise
// DefaultCourseContent. A template that cannot be read falls back to the
// default.
func (s *Syncer) CourseContent(ctx context.Context) []models.BlockContent {
	if s.TemplatePageID == "" {
		return DefaultCourseContent()
	}

	blocks, err := s.Store.ListChildRecords(ctx, s.TemplatePageID)
	if err != nil {
		l := logger.Op("list_children", s.TemplatePageID)
		l.Warn().Err(err).Msg("Course template unreadable, using the default outline")
		return DefaultCourseContent()
	}

	content := make([]models.BlockContent, 0, len(blocks))
	skipped := 0
	for _, b := range blocks {
		if b.Archived {
			continue
		}
		c, ok := b.Content()
		if !ok {
			skipped++
			continue
		}
		content = append(content, c)
	}
	if skipped > 0 {
		logger.Debug().Str("templatePageId", s.TemplatePageID).Int("skipped", skipped).Msg("Template blocks that cannot be copied were left out")
	}
	if len(content) == 0 {
		logger.Warn().Str("templatePageId", s.TemplatePageID).Msg("Course template has no copyable blocks, using the default outline")
		return DefaultCourseContent()
	}
	if len(content) > maxPageChildren {
		content = content[:maxPageChildren]
	}
	return content
}

func DefaultCourseContent() []models.BlockContent {
	return []models.BlockContent{
		models.HeadingContent("Overview"),
		models.ParagraphContent("Syllabus, grading scheme and office hours."),
		models.HeadingContent("Notes"),
	}
}

func (s *Syncer) provisionResults(ctx context.Context, coursePageID string) error {
	_, err := s.Store.CreateCollection(ctx, coursePageID, s.Schema.ResultsTitle, s.Schema.ResultsFields())
	return errors.Wrap(err, "creating results database")
}

func normalizeCourse(in CourseInput) CourseInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.TrimSpace(in.Code)
	in.Emoji = strings.TrimSpace(in.Emoji)
	if in.Emoji == "" {
		in.Emoji = defaultCourseEmoji
	}
	in.Instructors = cleanList(in.Instructors)
	in.Tags = cleanList(in.Tags)
	return in
}

// cleanList trims entries and drops blanks and repeats. Notion rejects commas
// inside select option names, so they are replaced.
func cleanList(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.ReplaceAll(strings.TrimSpace(it), ",", " ")
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, strings.ToLower(fe.Field())+" is required")
		case "gt":
			msgs = append(msgs, strings.ToLower(fe.Field())+" must be greater than "+fe.Param())
		default:
			msgs = append(msgs, strings.ToLower(fe.Field())+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
