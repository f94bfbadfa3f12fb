package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SamuelLeutner/notion-acads/app"
)

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy the grade report to Google Sheets",
		Long: `Compute the per-semester report without touching Notion and replace the
contents of the report sheet with it. Needs SPREADSHEET_ID and
GOOGLE_CREDENTIALS_FILE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts)
		},
	}
	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions) error {
	a, err := app.New(opts.Config, opts.Factory)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, opts)
	defer cancel()

	report, err := a.Export(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, report)
	}
	printReport(w, report)
	fmt.Fprintf(w, "Report copied to sheet %q.\n", opts.Config.ReportSheetName)
	return nil
}
