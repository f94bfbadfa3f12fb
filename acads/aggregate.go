package acads

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// truncateTolerance absorbs binary representation error so an exact decimal
// quotient such as 23.8/7 is not floored one cent low.
const truncateTolerance = 1e-9

// TruncateTwo floors v to two decimal places: 3.995 becomes 3.99.
func TruncateTwo(v float64) float64 {
	return math.Floor(v*100+truncateTolerance) / 100
}

// SGPA is the truncated grade-point average of one semester. Semesters with no
// courses or no credits score 0.
func SGPA(gradePoints, credits float64, courses int) float64 {
	if courses == 0 || credits <= 0 {
		return 0
	}
	return TruncateTwo(gradePoints / credits)
}

// CGPA averages the semesters that scored above zero and truncates the result.
func CGPA(sgpas []float64) float64 {
	var sum float64
	n := 0
	for _, s := range sgpas {
		if s > 0 {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return TruncateTwo(sum / float64(n))
}

type SemesterAggregate struct {
	Label       string  `json:"label"`
	Credits     float64 `json:"credits"`
	Courses     int     `json:"courses"`
	GradePoints float64 `json:"gradePoints"`
	SGPA        float64 `json:"sgpa"`
}

// Accumulator collects course values per semester label for one run.
type Accumulator struct {
	semesters map[string]*SemesterAggregate
}

func NewAccumulator() *Accumulator {
	return &Accumulator{semesters: make(map[string]*SemesterAggregate)}
}

func (a *Accumulator) Add(label string, gradePoints, credits float64) {
	agg, ok := a.semesters[label]
	if !ok {
		agg = &SemesterAggregate{Label: label}
		a.semesters[label] = agg
	}
	agg.GradePoints += gradePoints
	agg.Credits += credits
	agg.Courses++
}

// Finalize computes every SGPA and the overall CGPA.
func (a *Accumulator) Finalize() (map[string]SemesterAggregate, float64) {
	out := make(map[string]SemesterAggregate, len(a.semesters))
	sgpas := make([]float64, 0, len(a.semesters))
	for label, agg := range a.semesters {
		agg.SGPA = SGPA(agg.GradePoints, agg.Credits, agg.Courses)
		out[label] = *agg
		sgpas = append(sgpas, agg.SGPA)
	}
	return out, CGPA(sgpas)
}

var labelPattern = regexp.MustCompile(`^Semester [1-9][0-9]*$`)

// NormalizeLabel trims and collapses whitespace and checks the label reads
// "Semester N".
func NormalizeLabel(label string) (string, error) {
	l := strings.Join(strings.Fields(label), " ")
	if !labelPattern.MatchString(l) {
		return "", dataShapef("semester label %q must look like \"Semester 1\"", label)
	}
	return l, nil
}

// SortLabels orders labels by their trailing number, so "Semester 10" comes
// after "Semester 9". Labels without a number sort after numbered ones.
func SortLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		ni, oki := labelNumber(labels[i])
		nj, okj := labelNumber(labels[j])
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return oki
		default:
			return labels[i] < labels[j]
		}
	})
}

func labelNumber(label string) (int, bool) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	return n, err == nil
}
