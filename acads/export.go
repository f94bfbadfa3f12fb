package acads

import (
	"context"

	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/logger"
)

var ReportHeaders = []string{"Semester", "Courses", "Credits", "Grade Points", "SGPA"}

// ReportRows lays a report out as spreadsheet rows: one per semester, a blank
// separator and the overall CGPA line.
func ReportRows(r *Report) [][]interface{} {
	rows := make([][]interface{}, 0, len(r.Labels)+2)
	for _, agg := range r.Rows() {
		rows = append(rows, []interface{}{agg.Label, agg.Courses, agg.Credits, agg.GradePoints, agg.SGPA})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"Overall CGPA", r.CGPA, r.UpdatedAt.Format(quoteTimeLayout)},
	)
	return rows
}

// ExportReport replaces the content of sheetName with the report.
func ExportReport(ctx context.Context, w ReportWriter, sheetName string, r *Report) error {
	if err := w.EnsureSheetExists(ctx, sheetName); err != nil {
		return errors.Wrapf(err, "ensuring sheet %q", sheetName)
	}
	if err := w.Clear(ctx, sheetName); err != nil {
		return errors.Wrapf(err, "clearing sheet %q", sheetName)
	}
	if err := w.SetHeaders(ctx, sheetName, ReportHeaders); err != nil {
		return errors.Wrapf(err, "writing headers to %q", sheetName)
	}
	if err := w.AppendRows(ctx, sheetName, ReportRows(r)); err != nil {
		return errors.Wrapf(err, "writing rows to %q", sheetName)
	}

	logger.Info().Str("sheet", sheetName).Int("semesters", len(r.Labels)).Msg("Report exported")
	return nil
}
