package requests

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelLeutner/notion-acads/acads"
)

func visitPairs(pairs ...string) func(fn func(key, value string)) {
	return func(fn func(key, value string)) {
		for i := 0; i+1 < len(pairs); i += 2 {
			fn(pairs[i], pairs[i+1])
		}
	}
}

func TestParseAddSemesterForm(t *testing.T) {
	req := ParseAddSemesterForm(visitPairs(
		"semester", "Semester 3",
		"courses[10][name]", "Compilers",
		"courses[10][credits]", "3",
		"courses[2][name]", "Networks",
		"courses[2][credits]", "4",
		"courses[2][professor]", "Ada, Grace",
		"courses[2][bucketing]", "Core",
		"courses[2][emoji]", "🌐",
		"courses[2][unknown]", "ignored",
		"other", "ignored",
	))

	assert.Equal(t, "Semester 3", req.Semester)
	require.Len(t, req.Courses, 2)
	assert.Equal(t, "Networks", req.Courses[0].Name)
	assert.Equal(t, "Compilers", req.Courses[1].Name)

	inputs := req.CourseInputs()
	assert.Equal(t, acads.CourseInput{
		Name:        "Networks",
		Credits:     4,
		Emoji:       "🌐",
		Instructors: []string{"Ada", "Grace"},
		Tags:        []string{"Core"},
	}, inputs[0])
	assert.Equal(t, 3, inputs[1].Credits)
}

func TestCourseInputsRejectBadCredits(t *testing.T) {
	req := &AddSemesterRequest{Courses: []CourseForm{
		{Name: "X", Credits: "four"},
		{Name: "Y"},
		{Name: "Z", Credits: "3.5"},
		{Name: "W", Credits: " 2 "},
	}}
	inputs := req.CourseInputs()
	require.Len(t, inputs, 4)
	assert.Equal(t, CreditsNotWhole, inputs[0].Rejected)
	assert.Equal(t, 0, inputs[1].Credits)
	assert.Empty(t, inputs[1].Rejected)
	assert.Equal(t, CreditsNotWhole, inputs[2].Rejected)
	assert.Equal(t, 2, inputs[3].Credits)
	assert.Empty(t, inputs[3].Rejected)
}

func TestCreditsDecodeFromStringOrNumber(t *testing.T) {
	var req AddSemesterRequest
	body := `{"semester":"Semester 1","courses":[
		{"name":"A","credits":"abc"},
		{"name":"B","credits":3.5},
		{"name":"C","credits":2},
		{"name":"D","credits":"4"},
		{"name":"E","credits":null},
		{"name":"F","credits":true}
	]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Len(t, req.Courses, 6)
	assert.Equal(t, Credits("abc"), req.Courses[0].Credits)
	assert.Equal(t, Credits("3.5"), req.Courses[1].Credits)

	inputs := req.CourseInputs()
	assert.Equal(t, CreditsNotWhole, inputs[0].Rejected)
	assert.Equal(t, CreditsNotWhole, inputs[1].Rejected)
	assert.Equal(t, 2, inputs[2].Credits)
	assert.Equal(t, 4, inputs[3].Credits)
	assert.Equal(t, 0, inputs[4].Credits)
	assert.Empty(t, inputs[4].Rejected)
	assert.Equal(t, CreditsNotWhole, inputs[5].Rejected)
}
