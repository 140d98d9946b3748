package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/buildinfo"
	"github.com/matzehuels/ruleviz/pkg/cache"
	"github.com/matzehuels/ruleviz/pkg/config"
	"github.com/matzehuels/ruleviz/pkg/httputil"
	"github.com/matzehuels/ruleviz/pkg/pipeline"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "ruleviz"

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
	// Config is loaded by the root command before any subcommand runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "ruleviz explains rule-learning stimuli with animated diagrams",
		Long: `ruleviz lays out list and tree stimuli from rule-learning experiments and
animates how a hidden rule turns a challenge into its answer.

It decodes prefix tree encodings, checks input/output alignments, renders
static and animated SVG (plus PNG and PDF), serves stimuli to browser hosts,
and runs experiment sessions in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/ruleviz/config.toml)")

	// Register all subcommands
	root.AddCommand(c.decodeCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.animateCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default path when it exists.
func (c *CLI) loadConfig() error {
	path, mustExist := c.configPath, true
	if path == "" {
		mustExist = false
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil
		}
	}
	cfg, err := config.Load(path, mustExist)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache, nil, c.Logger)
	runner.Chrome.ExecPath = c.Config.Render.Chrome
	runner.Chrome.NoSandbox = c.Config.Render.NoSandbox
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.Config
	if cfg.Cache.Dir == "" && cfg.Cache.Backend != config.BackendRedis {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		cfg.Cache.Dir = dir
	}
	return cfg.OpenCache(ctx)
}

// baseOptions returns pipeline options seeded from the config file.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Diagram:   c.Config.Diagram,
		Codec:     c.Config.TermCodec(),
		NoRewrite: c.Config.Codec.Literal,
		Timings:   c.Config.Animation,
		Style:     c.Config.Render.Style,
		Scale:     c.Config.Render.Scale,
		Logger:    c.Logger,
	}
}

// =============================================================================
// Stimuli
// =============================================================================

// stimulusFlags select one trial of a feed.
type stimulusFlags struct {
	source  string
	domain  string
	index   int
	kind    string
	refresh bool
}

func (f *stimulusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.source, "stimuli", "s", "", "stimulus directory, feed.json file or http(s) base URL (default: config stimuli.location)")
	cmd.Flags().StringVarP(&f.domain, "domain", "d", "", "feed domain (default: the first domain)")
	cmd.Flags().IntVarP(&f.index, "index", "i", 0, "trial index within the domain")
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "stimulus kind: tree, string (default: config or detected)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch remote stimuli")
}

// loadFeed opens the feed named by location: a feed.json file, a stimulus
// directory or an http(s) base URL.
func (c *CLI) loadFeed(ctx context.Context, location string, refresh bool) (stimulus.Feed, error) {
	if location == "" {
		location = c.Config.Stimuli.Location
	}
	if strings.HasSuffix(location, ".json") {
		return stimulus.ReadFeedFile(location)
	}
	src, err := c.openSource(ctx, location, refresh)
	if err != nil {
		return nil, err
	}
	return src.Feed(ctx)
}

// openSource returns the stimulus source at location. Remote sources go
// through the response cache.
func (c *CLI) openSource(ctx context.Context, location string, refresh bool) (stimulus.Source, error) {
	if location == "" {
		location = c.Config.Stimuli.Location
	}
	if location == "" {
		return nil, fmt.Errorf("no stimuli given: pass --stimuli or set stimuli.location")
	}
	fc, err := c.newCache(ctx, false)
	if err != nil {
		return nil, err
	}
	src, err := stimulus.Open(location, httputil.NewFetcher(fc, nil, cache.TTLFeed))
	if err != nil {
		return nil, err
	}
	if hs, ok := src.(stimulus.HTTPSource); ok {
		hs.Refresh = refresh
		src = hs
	}
	return src, nil
}

// selectTrial loads the feed and picks the trial and kind named by f.
func (c *CLI) selectTrial(ctx context.Context, f stimulusFlags) (*stimulus.Trial, alignment.Kind, error) {
	feed, err := c.loadFeed(ctx, f.source, f.refresh)
	if err != nil {
		return nil, 0, err
	}
	domain := f.domain
	if domain == "" {
		domains := feed.Domains()
		if len(domains) == 0 {
			return nil, 0, fmt.Errorf("feed has no domains")
		}
		domain = domains[0]
	}
	trial, err := feed.Trial(domain, f.index)
	if err != nil {
		return nil, 0, err
	}
	kind, err := c.kindFor(feed, domain, f.kind)
	return trial, kind, err
}

// kindFor resolves a domain's kind: the flag, then the config, then
// detection from the first trial.
func (c *CLI) kindFor(feed stimulus.Feed, domain, flag string) (alignment.Kind, error) {
	if flag != "" {
		return alignment.ParseKind(flag)
	}
	kinds, err := c.Config.Kinds()
	if err != nil {
		return 0, err
	}
	return feed.Kind(domain, kinds), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ruleviz/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
