package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/noticeboard/internal/server"
	"github.com/matzehuels/noticeboard/internal/telemetry"
	"github.com/matzehuels/noticeboard/pkg/buildinfo"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		store   storeFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve boards over HTTP",
		Long: `Serve boards over HTTP.

Cards are read from the configured store. Layouts are computed per request
from the board's cards and the canvas given in the query string, and cached
by content hash.`,
		Example: `  noticeboard serve --addr :8080 --store sqlite --path boards.db
  NOTICEBOARD_TELEMETRY_ENDPOINT=http://localhost:4318 noticeboard serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store.apply(&cfg.Store)
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
			if err != nil {
				return fmt.Errorf("set up telemetry: %w", err)
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					c.Logger.Warn("telemetry shutdown", "err", err)
				}
			}()
			if cfg.Telemetry.Endpoint != "" {
				telemetry.Install(telemetry.NewHooks(nil))
			}

			st, err := openStore(ctx, cfg.Store)
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
			}
			defer st.Close()

			runner, err := c.newRunner(ctx, cfg.Cache, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(st, runner, server.Options{
				Layout: cfg.Layout.Options(),
				Seed:   cfg.Layout.Seed,
				View:   cfg.Layout.ViewMode(),
				Logger: c.Logger,
			})

			printInfo("noticeboard %s", buildinfo.Version)
			printKeyValue("listen", cfg.Server.Addr)
			printKeyValue("store", cfg.Store.Driver)
			printKeyValue("cache", cfg.Cache.Driver)
			printNewline()

			err = srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	store.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
