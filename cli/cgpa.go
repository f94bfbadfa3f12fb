package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SamuelLeutner/notion-acads/acads"
	"github.com/SamuelLeutner/notion-acads/app"
)

func NewCGPACommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cgpa",
		Short: "Recalculate SGPA and CGPA and write them back to Notion",
		Long: `Read every course, compute each semester's SGPA and the overall CGPA,
update the semester records and the CGPA quote block, then copy the report to
the spreadsheet when export is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCGPA(cmd, rootOpts)
		},
	}
	return cmd
}

func runCGPA(cmd *cobra.Command, opts *RootOptions) error {
	a, err := app.New(opts.Config, opts.Factory)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, opts)
	defer cancel()

	res, err := a.CalculateCGPA(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, res)
	}

	printReport(w, res.Report)
	if res.QuoteError != "" {
		fmt.Fprintf(w, "Quote block not updated: %s\n", res.QuoteError)
	}
	switch {
	case res.Exported:
		fmt.Fprintln(w, "Report copied to the spreadsheet.")
	case res.ExportError != "":
		fmt.Fprintf(w, "Spreadsheet export failed: %s\n", res.ExportError)
	}
	return nil
}

func printReport(w io.Writer, r *acads.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEMESTER\tCOURSES\tCREDITS\tGRADE POINTS\tSGPA")
	for _, row := range r.Rows() {
		fmt.Fprintf(tw, "%s\t%d\t%g\t%.2f\t%.2f\n", row.Label, row.Courses, row.Credits, row.GradePoints, row.SGPA)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nOverall CGPA: %.2f/4.00\n", r.CGPA)
	for _, f := range r.Failures {
		fmt.Fprintf(w, "Semester %s not updated: %s\n", f.Label, f.Error)
	}
	for _, name := range r.Orphans {
		fmt.Fprintf(w, "Course without a matching semester: %s\n", name)
	}
}
