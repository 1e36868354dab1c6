package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackdiff/internal/config"
	errs "github.com/matzehuels/stackdiff/pkg/errors"
	"github.com/matzehuels/stackdiff/pkg/integrations"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the request cache of a running server",
		Long: `The request cache lives in memory. Each compare run starts with an empty
cache; a serve process keeps its cache across comparisons.`,
	}

	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop cached lookups and reset the rate limiter of a server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				serverURL = apiURL(cfg.Server.Addr)
			}
			if err := errs.ValidateURL(serverURL); err != nil {
				return err
			}
			if err := clearServerCache(cmd.Context(), serverURL); err != nil {
				return err
			}
			printSuccess("Cleared request cache")
			printDetail("Server: %s", serverURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "server URL (default derived from [server] addr, "+config.DefaultAddr+")")

	return cmd
}

func clearServerCache(ctx context.Context, serverURL string) error {
	url := strings.TrimRight(serverURL, "/") + "/api/cache"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp, err := integrations.NewHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integrations.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("clear cache: server returned %s", resp.Status)
	}
	return nil
}
