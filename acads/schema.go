package acads

import (
	"fmt"

	"github.com/SamuelLeutner/notion-acads/models"
)

// Schema names the Notion properties the sync and aggregation code reads and
// writes.
type Schema struct {
	CourseName        string
	CourseCode        string
	CourseCredits     string
	CourseSemester    string
	CourseInstructors string
	CourseTags        string
	CourseGradePoints string

	SemesterTitle   string
	SemesterCredits string
	SemesterCourses string
	SemesterSGPA    string

	ResultsTitle    string
	ResultExam      string
	ResultDate      string
	ResultScore     string
	ResultTotal     string
	ResultWeightage string
	ResultWeighted  string
}

func DefaultSchema() Schema {
	return Schema{
		CourseName:        "Course Name",
		CourseCode:        "Course Code",
		CourseCredits:     "Credits",
		CourseSemester:    "Semester",
		CourseInstructors: "Instructors",
		CourseTags:        "Tags",
		CourseGradePoints: "Grade Points",

		SemesterTitle:   "Semester",
		SemesterCredits: "Credits",
		SemesterCourses: "Courses",
		SemesterSGPA:    "SGPA",

		ResultsTitle:    "Results",
		ResultExam:      "Exam",
		ResultDate:      "Date",
		ResultScore:     "Score",
		ResultTotal:     "Total Marks",
		ResultWeightage: "Weightage",
		ResultWeighted:  "Weighted Score",
	}
}

// SemesterFields are the columns aggregation writes on every semester record.
func (s Schema) SemesterFields() models.PropertySchema {
	return models.PropertySchema{
		s.SemesterCredits: models.NumberField(),
		s.SemesterCourses: models.NumberField(),
		s.SemesterSGPA:    models.NumberField(),
	}
}

// CourseFields are the columns course creation writes besides the title and
// the semester select. Grade Points is left to the user's own formula.
func (s Schema) CourseFields() models.PropertySchema {
	return models.PropertySchema{
		s.CourseCode:        models.RichTextField(),
		s.CourseCredits:     models.NumberField(),
		s.CourseSemester:    models.SelectField(),
		s.CourseInstructors: models.MultiSelectField(),
		s.CourseTags:        models.MultiSelectField(),
	}
}

// ResultsFields defines the per-course results database.
func (s Schema) ResultsFields() models.PropertySchema {
	weighted := fmt.Sprintf("prop(%q) / prop(%q) * prop(%q)", s.ResultScore, s.ResultTotal, s.ResultWeightage)
	return models.PropertySchema{
		s.ResultExam:      models.TitleField(),
		s.ResultDate:      models.DateField(),
		s.ResultScore:     models.NumberField(),
		s.ResultTotal:     models.NumberField(),
		s.ResultWeightage: models.NumberField(),
		s.ResultWeighted:  models.FormulaField(weighted),
	}
}
