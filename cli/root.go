// Package cli holds the acads command line: the web server plus one-shot
// versions of the setup, CGPA and export flows.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/config"
	"github.com/SamuelLeutner/notion-acads/logger"
)

// EnvFileVariable overrides the default env file when --env-file is not given.
const EnvFileVariable = "ACADS_ENV_FILE"

var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags and the state every subcommand shares.
type RootOptions struct {
	EnvFile string
	Format  string

	Factory app.Factory
	Config  *config.Config
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(app.DefaultFactory())
}

func newRootCommand(f app.Factory) *cobra.Command {
	opts := &RootOptions{Factory: f}

	cmd := &cobra.Command{
		Use:   "acads",
		Short: "Keep a Notion academics workspace in sync",
		Long: `acads creates semester and course pages in a Notion workspace and
computes SGPA per semester and the overall CGPA from the course grades.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.EnvFile)
			if err != nil {
				return errors.Wrap(err, "loading configuration")
			}
			logger.Configure(logger.Config{
				Level:  cfg.LogLevel,
				Pretty: cfg.LogPretty,
				Output: cmd.ErrOrStderr(),
			})
			opts.Config = cfg
			return nil
		},
	}

	envFile := os.Getenv(EnvFileVariable)
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", envFile, "env file holding the configuration (env "+EnvFileVariable+")")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewCGPACommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// commandContext bounds a one-shot command by the configured handler timeout.
func commandContext(cmd *cobra.Command, opts *RootOptions) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, opts.Config.HandlerTimeout)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
