package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/utils"
)

type setupFlags struct {
	token       string
	parent      string
	unsplashKey string
}

func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Point acads at a Notion workspace",
		Long: `Check the integration token, find the course and semester databases
under the parent page, add any missing columns and save the ids to the env file.

--parent accepts either a page id or a full Notion page link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, rootOpts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.token, "token", "", "Notion integration token")
	cmd.Flags().StringVar(&flags.parent, "parent", "", "parent page link or id")
	cmd.Flags().StringVar(&flags.unsplashKey, "unsplash-key", "", "Unsplash access key for cover images")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("parent")

	return cmd
}

func runSetup(cmd *cobra.Command, opts *RootOptions, flags *setupFlags) error {
	parentID, err := utils.ParseNotionID(flags.parent)
	if err != nil {
		return errors.Wrap(err, "reading --parent")
	}

	holder, err := app.NewHolder(opts.Config, opts.Factory)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, opts)
	defer cancel()

	ids, err := holder.Configure(ctx, app.SetupInput{
		NotionToken:       flags.token,
		ParentPageID:      parentID,
		UnsplashAccessKey: flags.unsplashKey,
	})
	if err != nil {
		return errors.Wrap(err, "setup failed")
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, map[string]string{
			"parentPageId":       parentID,
			"courseDatabaseId":   ids.CourseCollectionID,
			"semesterDatabaseId": ids.SemesterCollectionID,
			"envFile":            opts.Config.EnvFile,
		})
	}
	fmt.Fprintf(w, "Courses database:   %s\n", ids.CourseCollectionID)
	fmt.Fprintf(w, "Semesters database: %s\n", ids.SemesterCollectionID)
	fmt.Fprintf(w, "Saved to %s\n", opts.Config.EnvFile)
	return nil
}
