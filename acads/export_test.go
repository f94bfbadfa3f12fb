package acads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelLeutner/notion-acads/acads/acadstest"
)

func TestExportReport(t *testing.T) {
	f := newFixture()
	f.seedSemester("Semester 1")
	f.seedSemester("Semester 2")
	f.seedCourse("Physics", "Semester 1", 4, 14.8)
	f.seedCourse("Maths", "Semester 1", 3, 9.0)

	report, err := f.engine.Calculate(context.Background())
	require.NoError(t, err)

	w := acadstest.NewSheetRecorder()
	w.Sheets["CGPA Report"] = [][]interface{}{{"stale"}}
	require.NoError(t, ExportReport(context.Background(), w, "CGPA Report", report))

	assert.Equal(t, ReportHeaders, w.Headers["CGPA Report"])
	rows := w.Sheets["CGPA Report"]
	require.Len(t, rows, 4)
	assert.Equal(t, "Semester 1", rows[0][0])
	assert.Equal(t, 2, rows[0][1])
	assert.Equal(t, 3.40, rows[0][4])
	assert.Equal(t, []interface{}{"Semester 2", 0, 0.0, 0.0, 0.0}, rows[1])
	assert.Empty(t, rows[2])
	assert.Equal(t, []interface{}{"Overall CGPA", 3.40, "Sat, 17 Oct 2026 at 15:04"}, rows[3])
}

func TestExportReportStopsOnWriterError(t *testing.T) {
	w := acadstest.NewSheetRecorder()
	w.Err = errors.New("quota exceeded")

	err := ExportReport(context.Background(), w, "CGPA Report", &Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, w.Headers)
}
