package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/room-booking/internal/config"
	"github.com/example/room-booking/internal/importer"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/persistence/sqlstore"
)

// cli carries state shared by the subcommands once flags are parsed.
type cli struct {
	out     io.Writer
	envFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:          "lessonsync",
		Short:        "Import the university timetable into the booking database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load()
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&c.envFile, "env-file", config.DefaultDotEnv, "dotenv file read before the environment")

	root.AddCommand(c.crawlCmd(), c.convertCmd(), c.syncCmd(), c.runCmd())
	return root
}

func (c *cli) load() error {
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logging.New(c.out, cfg.LogLevel)
	return nil
}

func (c *cli) pipeline(syncer *importer.Syncer) *importer.Pipeline {
	return &importer.Pipeline{
		Crawler:   importer.Crawler{Command: c.cfg.CrawlerCommand},
		Retrier:   importer.NewRetrier(importer.RetryConfig{Attempts: c.cfg.CrawlerAttempts, Backoff: c.cfg.CrawlerBackoff}, c.logger),
		Converter: importer.NewConverter(c.cfg.Calendar(), c.logger),
		Syncer:    syncer,
		SourceDir: c.cfg.ImportDir,
		Output:    c.cfg.ImportOutput,
		Logger:    c.logger,
	}
}

// withSyncer opens and migrates the configured store for fn.
func (c *cli) withSyncer(ctx context.Context, fn func(*importer.Syncer) error) error {
	store, err := sqlstore.Open(ctx, c.cfg.DBDriver, c.cfg.DBDSN, c.logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			c.logger.Error("failed to close storage", "error", cerr)
		}
	}()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return fn(importer.NewSyncer(store, c.logger))
}

func (c *cli) crawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Run the timetable crawler with retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline(nil).Crawl(cmd.Context())
		},
	}
}

func (c *cli) convertCmd() *cobra.Command {
	var dir, out string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert scraped timetable files into the lessons CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := c.pipeline(nil)
			if dir != "" {
				p.SourceDir = dir
			}
			if out != "" {
				p.Output = out
			}
			schedule, err := p.Convert(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d room-days into %s\n", len(schedule), p.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of scraped files (default BOOKING_IMPORT_DIR)")
	cmd.Flags().StringVar(&out, "out", "", "output CSV path (default BOOKING_IMPORT_OUTPUT)")
	return cmd
}

func (c *cli) syncCmd() *cobra.Command {
	var in string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the lessons table with a lessons CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				in = c.cfg.ImportOutput
			}
			schedule, err := importer.ReadCSVFile(in)
			if err != nil {
				return err
			}
			return c.withSyncer(cmd.Context(), func(s *importer.Syncer) error {
				result, err := s.Sync(cmd.Context(), schedule)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "lessons CSV to load (default BOOKING_IMPORT_OUTPUT)")
	return cmd
}

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Crawl, convert and sync in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSyncer(cmd.Context(), func(s *importer.Syncer) error {
				result, err := c.pipeline(s).Run(cmd.Context())
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
}

func printResult(w io.Writer, r importer.SyncResult) {
	fmt.Fprintf(w, "lessons inserted=%d updated=%d deleted=%d\n", r.Inserted, r.Updated, r.Deleted)
}
