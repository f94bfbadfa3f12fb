package acads

import (
	"time"

	"github.com/SamuelLeutner/notion-acads/acads/acadstest"
	"github.com/SamuelLeutner/notion-acads/models"
)

type fixture struct {
	store      *acadstest.MemStore
	images     *acadstest.Images
	schema     Schema
	courses    string
	semesters  string
	parent     string
	quote      string
	syncer     *Syncer
	propagator *Propagator
	engine     *Engine
}

var fixedNow = time.Date(2026, time.October, 17, 15, 4, 0, 0, time.UTC)

func newFixture() *fixture {
	store := acadstest.NewMemStore()
	f := &fixture{
		store:     store,
		images:    &acadstest.Images{URL: "https://images.example/cover.jpg"},
		schema:    DefaultSchema(),
		courses:   store.AddCollection("Courses"),
		semesters: store.AddCollection("Semesters"),
		parent:    "parent-page",
	}
	store.AddBlock(f.parent, models.Block{Type: models.BlockParagraph, Paragraph: &models.RichTextBlock{RichText: models.Text("intro")}})
	f.quote = store.AddBlock(f.parent, models.Block{Type: models.BlockQuote, Quote: &models.RichTextBlock{RichText: models.Text("Overall CGPA: -")}})

	f.syncer = NewSyncer(store, f.images, f.schema, f.courses, f.semesters)
	f.propagator = NewPropagator(store, f.schema, f.parent, "")
	f.engine = NewEngine(store, f.schema, f.courses, f.semesters, f.propagator)
	f.engine.Now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) seedSemester(label string) string {
	return f.store.Seed(f.semesters, models.Properties{
		f.schema.SemesterTitle: models.TitleValue(label),
	})
}

// seedCourse stores a course the way Notion returns it after the user has
// entered a score: Grade Points is a formula result.
func (f *fixture) seedCourse(name, label string, credits, gradePoints float64) string {
	return f.store.Seed(f.courses, models.Properties{
		f.schema.CourseName:        models.TitleValue(name),
		f.schema.CourseSemester:    models.SelectValue(label),
		f.schema.CourseCredits:     models.NumberValue(credits),
		f.schema.CourseGradePoints: models.FormulaNumber(gradePoints),
	})
}

func (f *fixture) quoteText() string {
	b, ok := f.store.Block(f.parent, f.quote)
	if !ok {
		return ""
	}
	return b.Text()
}
