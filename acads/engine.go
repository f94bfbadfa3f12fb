package acads

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

// CourseRecord is the part of a course page aggregation reads.
type CourseRecord struct {
	ID          string
	Name        string
	Label       string
	Credits     float64
	GradePoints float64
}

// Report is the result of one aggregation run.
type Report struct {
	CGPA       float64                      `json:"cgpa"`
	Semesters  map[string]SemesterAggregate `json:"semesters"`
	Labels     []string                     `json:"labels"`
	Orphans    []string                     `json:"orphans,omitempty"`
	Failures   []SemesterFailure            `json:"failures,omitempty"`
	QuoteText  string                       `json:"quoteText,omitempty"`
	QuoteError string                       `json:"quoteError,omitempty"`
	UpdatedAt  time.Time                    `json:"updatedAt"`

	semesterIDs map[string]string
}

// Rows returns the per-semester aggregates in label order.
func (r *Report) Rows() []SemesterAggregate {
	rows := make([]SemesterAggregate, 0, len(r.Labels))
	for _, l := range r.Labels {
		rows = append(rows, r.Semesters[l])
	}
	return rows
}

// Engine reads every course, computes SGPA per semester and CGPA overall, and
// hands the result to its Propagator.
type Engine struct {
	Store                Store
	Schema               Schema
	CourseCollectionID   string
	SemesterCollectionID string
	PageSize             int
	Propagator           *Propagator
	Now                  func() time.Time
}

func NewEngine(store Store, schema Schema, courseCollectionID, semesterCollectionID string, propagator *Propagator) *Engine {
	return &Engine{
		Store:                store,
		Schema:               schema,
		CourseCollectionID:   courseCollectionID,
		SemesterCollectionID: semesterCollectionID,
		PageSize:             100,
		Propagator:           propagator,
		Now:                  time.Now,
	}
}

// FetchCourses reads every page of the course collection.
func (e *Engine) FetchCourses(ctx context.Context) ([]CourseRecord, error) {
	records, err := e.queryAll(ctx, e.CourseCollectionID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching courses")
	}

	courses := make([]CourseRecord, 0, len(records))
	for _, r := range records {
		courses = append(courses, CourseRecord{
			ID:          r.ID,
			Name:        r.Properties.Text(e.Schema.CourseName),
			Label:       r.Properties.Text(e.Schema.CourseSemester),
			Credits:     r.Properties.FloatOr(e.Schema.CourseCredits, 0),
			GradePoints: r.Properties.FloatOr(e.Schema.CourseGradePoints, 0),
		})
	}
	return courses, nil
}

// FetchSemesters maps every semester record's label to its id, including
// semesters that have no courses yet.
func (e *Engine) FetchSemesters(ctx context.Context) (map[string]string, error) {
	records, err := e.queryAll(ctx, e.SemesterCollectionID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching semesters")
	}

	ids := make(map[string]string, len(records))
	for _, r := range records {
		label := r.Properties.Text(e.Schema.SemesterTitle)
		if label == "" {
			logger.Warn().Str("recordId", r.ID).Msg("Semester record has no title, skipping")
			continue
		}
		if prev, dup := ids[label]; dup {
			logger.Warn().Str("semester", label).Str("kept", prev).Str("ignored", r.ID).Msg("Duplicate semester record")
			continue
		}
		ids[label] = r.ID
	}
	return ids, nil
}

// Calculate fetches and aggregates without writing anything back.
func (e *Engine) Calculate(ctx context.Context) (*Report, error) {
	start := time.Now()

	semesters, err := e.FetchSemesters(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := e.FetchCourses(ctx)
	if err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	var orphans []string
	for _, c := range courses {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		if c.Label == "" {
			orphans = append(orphans, name)
			logger.Warn().Str("course", name).Msg("Course has no semester, left out of aggregation")
			continue
		}
		if _, ok := semesters[c.Label]; !ok {
			orphans = append(orphans, name)
			logger.Warn().Str("course", name).Str("semester", c.Label).Msg("Course semester has no matching semester record")
		}
		acc.Add(c.Label, c.GradePoints, c.Credits)
	}

	aggregates, cgpa := acc.Finalize()

	labels := make([]string, 0, len(aggregates)+len(semesters))
	for label := range aggregates {
		labels = append(labels, label)
	}
	for label := range semesters {
		if _, ok := aggregates[label]; !ok {
			aggregates[label] = SemesterAggregate{Label: label}
			labels = append(labels, label)
		}
	}
	SortLabels(labels)

	logger.Info().
		Int("courses", len(courses)).
		Int("semesters", len(semesters)).
		Float64("cgpa", cgpa).
		Dur("elapsed", time.Since(start)).
		Msg("Aggregation computed")

	return &Report{
		CGPA:        cgpa,
		Semesters:   aggregates,
		Labels:      labels,
		Orphans:     orphans,
		UpdatedAt:   e.Now(),
		semesterIDs: semesters,
	}, nil
}

// Run calculates and then propagates. Fetch failures abort the run; write
// failures are recorded on the report.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	report, err := e.Calculate(ctx)
	if err != nil {
		return nil, err
	}
	if e.Propagator == nil {
		return report, nil
	}

	text, err := e.Propagator.WriteQuote(ctx, report.CGPA, report.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to write CGPA quote")
		report.QuoteError = err.Error()
	} else {
		report.QuoteText = text
	}

	report.Failures = e.Propagator.UpdateSemesters(ctx, report.semesterIDs, report.Semesters)
	return report, nil
}

func (e *Engine) queryAll(ctx context.Context, collectionID string) ([]models.Record, error) {
	pageSize := e.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var all []models.Record
	q := models.Query{PageSize: pageSize}
	for pageNum := 1; ; pageNum++ {
		page, err := e.Store.QueryCollection(ctx, collectionID, q)
		if err != nil {
			l := logger.Op("query_collection", collectionID)
			l.Error().Err(err).Int("page", pageNum).Msg("Failed to query collection")
			return nil, errors.Wrapf(err, "querying %s (page %d)", collectionID, pageNum)
		}
		all = append(all, page.Results...)
		logger.Debug().Str("collection", collectionID).Int("page", pageNum).Int("records", len(page.Results)).Msg("Fetched page")

		if q.Cursor = page.Cursor(); q.Cursor == "" {
			return all, nil
		}
	}
}
