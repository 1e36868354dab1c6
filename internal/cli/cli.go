package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackdiff/internal/config"
	"github.com/matzehuels/stackdiff/pkg/buildinfo"
	"github.com/matzehuels/stackdiff/pkg/cache"
	"github.com/matzehuels/stackdiff/pkg/crawl"
	"github.com/matzehuels/stackdiff/pkg/integrations/npm"
	"github.com/matzehuels/stackdiff/pkg/limiter"
	"github.com/matzehuels/stackdiff/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "stackdiff"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// loadConfig reads the config file; replaced in tests.
	loadConfig func() (config.Config, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		loadConfig: config.Load,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches to debug logging and reports cache, HTTP and crawl
// events through the logger.
func (c *CLI) SetVerbose(verbose bool) {
	if !verbose {
		c.SetLogLevel(LogInfo)
		return
	}
	c.SetLogLevel(LogDebug)
	hooks := &logHooks{logger: c.Logger}
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	observability.SetCrawlHooks(hooks)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stackdiff compares the dependency trees of two package versions",
		Long:         `Stackdiff crawls the npm dependency trees of two versions of a package side by side and reports where they diverge: version changes, dependencies present on only one side, and circular references.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.compareCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Crawl Stack
// =============================================================================

// stackOpts overrides config values from command-line flags.
type stackOpts struct {
	registry    string
	cacheTime   time.Duration
	limiterTime time.Duration
	maxDepth    int
}

// addStackFlags registers the flags shared by compare and serve.
func addStackFlags(cmd *cobra.Command, o *stackOpts) {
	cmd.Flags().StringVar(&o.registry, "registry", "", "npm registry URL (default from config)")
	cmd.Flags().DurationVar(&o.cacheTime, "cache-time", 0, "how long lookup results are reused; 0 disables caching")
	cmd.Flags().DurationVar(&o.limiterTime, "limiter-time", 0, "minimum spacing between registry requests")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", 0, "stop crawling below this depth (0 = unlimited)")
}

// resolveConfig loads the config file and applies the flags the user set.
func (c *CLI) resolveConfig(cmd *cobra.Command, o *stackOpts) (config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("registry") {
		cfg.Registry = o.registry
	}
	if flags.Changed("cache-time") {
		cfg.CacheTime = config.Duration{Duration: o.cacheTime}
	}
	if flags.Changed("limiter-time") {
		cfg.LimiterTime = config.Duration{Duration: o.limiterTime}
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = o.maxDepth
	}
	return cfg, cfg.Validate()
}

// newStack wires registry client, limiter, request cache and crawler.
func (c *CLI) newStack(cfg config.Config) (*crawl.Crawler, *cache.RequestCache) {
	lim := limiter.Unlimited()
	if cfg.LimiterTime.Duration > 0 {
		lim = limiter.New(cfg.LimiterTime.Duration)
	}
	registry := npm.NewClient(cfg.Registry, c.Logger)
	rc := cache.New(registry, cache.Options{
		TTL:     cfg.CacheTime.Duration,
		Limiter: lim,
		Logger:  c.Logger,
	})
	crawler := crawl.New(rc, crawl.Options{
		MaxDepth: cfg.MaxDepth,
		Logger:   c.Logger,
	})
	return crawler, rc
}
