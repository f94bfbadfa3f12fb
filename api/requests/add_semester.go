package requests

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/SamuelLeutner/notion-acads/acads"
	"github.com/SamuelLeutner/notion-acads/utils"
)

// CreditsNotWhole is the failure reported for a course whose credits are
// not a whole number.
const CreditsNotWhole = "credits must be a whole number"

// Credits is the raw credits text of a course row. It decodes from a JSON
// string or number so a bad value fails that course only.
type Credits string

func (c *Credits) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Credits(s)
		return nil
	}
	*c = Credits(data)
	return nil
}

// Int returns the credits as an integer. A blank value is 0 and is left to
// validation; anything else that is not an integer is rejected.
func (c Credits) Int() (int, bool) {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CourseForm is one course row of the add-semester form.
type CourseForm struct {
	Name      string  `json:"name" form:"name"`
	Code      string  `json:"code" form:"code"`
	Credits   Credits `json:"credits" form:"credits"`
	Emoji     string  `json:"emoji" form:"emoji"`
	Professor string  `json:"professor" form:"professor"`
	Bucketing string  `json:"bucketing" form:"bucketing"`
}

type AddSemesterRequest struct {
	Semester string       `json:"semester" form:"semester"`
	Courses  []CourseForm `json:"courses"`
}

// CourseInputs converts the rows in submission order. Professor and
// bucketing are comma separated lists. Rows with unparsable credits are
// kept and marked rejected.
func (r *AddSemesterRequest) CourseInputs() []acads.CourseInput {
	out := make([]acads.CourseInput, 0, len(r.Courses))
	for _, c := range r.Courses {
		in := acads.CourseInput{
			Name:        strings.TrimSpace(c.Name),
			Code:        strings.TrimSpace(c.Code),
			Emoji:       strings.TrimSpace(c.Emoji),
			Instructors: utils.SplitList(c.Professor),
			Tags:        utils.SplitList(c.Bucketing),
		}
		if credits, ok := c.Credits.Int(); ok {
			in.Credits = credits
		} else {
			in.Rejected = CreditsNotWhole
		}
		out = append(out, in)
	}
	return out
}

var courseFieldKey = regexp.MustCompile(`^courses\[(\d+)\]\[(\w+)\]$`)

// ParseAddSemesterForm reads url-encoded fields named semester and
// courses[N][field]. Rows are ordered by N; gaps are skipped.
func ParseAddSemesterForm(visit func(fn func(key, value string))) *AddSemesterRequest {
	req := &AddSemesterRequest{}
	rows := map[int]*CourseForm{}

	visit(func(key, value string) {
		if key == "semester" {
			req.Semester = value
			return
		}
		m := courseFieldKey.FindStringSubmatch(key)
		if m == nil {
			return
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		row, ok := rows[idx]
		if !ok {
			row = &CourseForm{}
			rows[idx] = row
		}
		switch m[2] {
		case "name":
			row.Name = value
		case "code":
			row.Code = value
		case "credits":
			row.Credits = Credits(value)
		case "emoji":
			row.Emoji = value
		case "professor":
			row.Professor = value
		case "bucketing":
			row.Bucketing = value
		}
	})

	indexes := make([]int, 0, len(rows))
	for idx := range rows {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		req.Courses = append(req.Courses, *rows[idx])
	}
	return req
}
