package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/SamuelLeutner/notion-acads/api"
	"github.com/SamuelLeutner/notion-acads/app"
	"github.com/SamuelLeutner/notion-acads/logger"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Long: `Start the HTTP server with the add-semester, setup and CGPA pages.

The server starts even when setup is incomplete; every page then sends the
browser to /setup until the workspace is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				rootOpts.Config.Port = port
			}
			return runServe(cmd, rootOpts)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg := opts.Config
	holder, err := app.NewHolder(cfg, opts.Factory)
	if err != nil {
		return err
	}
	if _, err := holder.Current(); err != nil {
		logger.Warn().Err(err).Msg("Setup incomplete, serving the setup page until it is done")
	}

	server := api.SetupRouter(holder, cfg.HandlerTimeout)

	if ctx := cmd.Context(); ctx != nil {
		go func() {
			<-ctx.Done()
			logger.Info().Msg("Shutting down HTTP server")
			if err := server.Shutdown(); err != nil {
				logger.Error().Err(err).Msg("HTTP server shutdown failed")
			}
		}()
	}

	addr := cfg.ListenAddr()
	logger.Info().Str("addr", addr).Msg("Starting HTTP server")
	if err := server.Listen(addr); err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	logger.Info().Msg("HTTP server stopped")
	return nil
}
