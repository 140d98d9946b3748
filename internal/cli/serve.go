package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ruleviz/internal/server"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

// serveCommand creates the serve command for browser-hosted experiments.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		source  string
		addr    string
		records string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trials and collect records over HTTP",
		Long: `Serve a stimulus feed to browser hosts.

Hosts fetch static diagrams, self-playing animations or raw animation
scripts per trial and post trial records back. Records are appended as JSON
lines to --records (or server.records in the config) and kept in memory
otherwise.

With cache.backend = "redis" several instances share rendered artifacts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}
			if records != "" {
				cfg.Records = records
			}

			feed, err := c.loadFeed(ctx, source, false)
			if err != nil {
				return err
			}
			kinds, err := c.Config.Kinds()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var sink telemetry.Sink = &telemetry.MemorySink{}
			if cfg.Records != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.Records), 0o755); err != nil {
					return err
				}
				f, err := os.OpenFile(cfg.Records, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open records: %w", err)
				}
				defer f.Close()
				sink = telemetry.NewWriterSink(f)
			}

			srv := server.New(server.Config{
				Feed:           feed,
				Kinds:          kinds,
				Runner:         runner,
				Options:        c.baseOptions(),
				Sink:           sink,
				Logger:         c.Logger,
				RequestTimeout: cfg.WriteTimeout,
			})
			printInfo("Serving %d domain(s) on %s", len(feed), StyleHighlight.Render(cfg.Addr))
			if cfg.Records != "" {
				printDetail("Records: %s", cfg.Records)
			}
			return srv.ListenAndServe(ctx, cfg.Addr, cfg.ReadTimeout, cfg.WriteTimeout)
		},
	}

	cmd.Flags().StringVarP(&source, "stimuli", "s", "", "stimulus directory, feed.json file or http(s) base URL")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().StringVar(&records, "records", "", "append posted records to this JSON lines file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
