package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coursePage = `{
  "object": "page",
  "id": "59833787-2cf9-4fdf-8782-e53db20768a5",
  "properties": {
    "Course Name": {"id": "title", "type": "title", "title": [
      {"type": "text", "text": {"content": "Data "}, "plain_text": "Data "},
      {"type": "text", "text": {"content": "Structures"}, "plain_text": "Structures"}
    ]},
    "Semester": {"id": "a%3Db", "type": "select", "select": {"id": "1", "name": "Semester 2", "color": "blue"}},
    "Credits": {"id": "c", "type": "number", "number": 4},
    "Grade Points": {"id": "d", "type": "formula", "formula": {"type": "number", "number": 14.8}},
    "Bonus": {"id": "e", "type": "number", "number": null},
    "Pending": {"id": "f", "type": "formula", "formula": {"type": "number", "number": null}}
  }
}`

func TestReadNotionPage(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(coursePage), &rec))

	assert.Equal(t, "Data Structures", rec.Properties.Text("Course Name"))
	assert.Equal(t, "Semester 2", rec.Properties.Text("Semester"))
	assert.Equal(t, 4.0, rec.Properties.FloatOr("Credits", -1))
	assert.Equal(t, 14.8, rec.Properties.FloatOr("Grade Points", -1))
	assert.Equal(t, -1.0, rec.Properties.FloatOr("Bonus", -1))
	assert.Equal(t, -1.0, rec.Properties.FloatOr("Pending", -1))
	assert.Equal(t, -1.0, rec.Properties.FloatOr("Missing", -1))
	assert.Equal(t, "", rec.Properties.Text("Missing"))
}

func TestWriteValuesOmitReadOnlyFields(t *testing.T) {
	raw, err := json.Marshal(Properties{
		"Semester": TitleValue("Semester 1"),
		"SGPA":     NumberValue(0),
		"Tags":     MultiSelectValue([]string{"Core"}),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"Semester": {"title": [{"type": "text", "text": {"content": "Semester 1"}}]},
		"SGPA": {"number": 0},
		"Tags": {"multi_select": [{"name": "Core"}]}
	}`, string(raw))
}

func TestBlockText(t *testing.T) {
	var b Block
	require.NoError(t, json.Unmarshal([]byte(`{
		"object": "block", "id": "q", "type": "quote",
		"quote": {"rich_text": [{"type": "text", "text": {"content": "Overall CGPA: 3.70/4.00"}, "plain_text": "Overall CGPA: 3.70/4.00"}]}
	}`), &b))
	assert.Equal(t, "Overall CGPA: 3.70/4.00", b.Text())

	db := Block{Type: BlockChildDatabase, ChildDatabase: &ChildTitle{Title: "Courses"}}
	assert.Equal(t, "Courses", db.Text())
}

func TestBlockContentCopiesTextBlocks(t *testing.T) {
	var b Block
	require.NoError(t, json.Unmarshal([]byte(`{
		"object": "block", "id": "h", "type": "heading_2", "has_children": false,
		"created_time": "2026-10-01T10:00:00.000Z",
		"heading_2": {"rich_text": [{"type": "text", "text": {"content": "Syllabus"}, "plain_text": "Syllabus"}]}
	}`), &b))

	c, ok := b.Content()
	require.True(t, ok)
	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"object": "block", "type": "heading_2",
		"heading_2": {"rich_text": [{"type": "text", "text": {"content": "Syllabus"}}]}
	}`, string(raw))

	_, ok = Block{Type: BlockChildDatabase, ChildDatabase: &ChildTitle{Title: "Results"}}.Content()
	assert.False(t, ok)
}

func TestListCursor(t *testing.T) {
	next := "abc"
	assert.Equal(t, "abc", (&RecordList{HasMore: true, NextCursor: &next}).Cursor())
	assert.Equal(t, "", (&RecordList{HasMore: false, NextCursor: &next}).Cursor())
	assert.Equal(t, "", (&RecordList{HasMore: true}).Cursor())
	var nilList *BlockList
	assert.Equal(t, "", nilList.Cursor())
}
