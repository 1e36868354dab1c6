package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackdiff/internal/server"
	"github.com/matzehuels/stackdiff/pkg/session"
)

// cleanupInterval is how often expired comparisons are swept.
const cleanupInterval = time.Minute

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	stack      stackOpts
	addr       string
	sessionTTL time.Duration
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the comparison HTTP API",
		Long: `Serve starts an HTTP server that runs comparisons in the background.

Comparisons share one request cache and rate limiter, so repeated lookups
across comparisons hit the registry only once per cache period.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.resolveConfig(cmd, &opts.stack)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = opts.addr
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.Server.SessionTTL.Duration = opts.sessionTTL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			crawler, rc := c.newStack(cfg)
			store := session.NewMemoryStore()
			go store.RunCleanup(ctx, cleanupInterval, logger)

			srv := server.New(crawler, rc, store, server.Options{
				SessionTTL: cfg.Server.SessionTTL.Duration,
				Logger:     logger,
			})

			printInfo("Serving comparisons on %s", StyleLink.Render(cfg.Server.Addr))
			printKeyValue("Registry", cfg.Registry)
			printKeyValue("Cache time", cfg.CacheTime.String())
			printKeyValue("Session TTL", cfg.Server.SessionTTL.String())
			printNextStep("Start a comparison", `curl -X POST -d '{"module":"express","first":"4.17.0","second":"4.18.2"}' `+apiURL(cfg.Server.Addr)+"/api/comparisons")
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	addStackFlags(cmd, &opts.stack)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "how long finished comparisons stay available")

	return cmd
}

// apiURL turns a listen address into a URL clients can reach.
func apiURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
