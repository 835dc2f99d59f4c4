package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/uscdining/dishwatch/config"
	"github.com/uscdining/dishwatch/db"
	"github.com/uscdining/dishwatch/log"
	"github.com/uscdining/dishwatch/pipeline"
	"github.com/uscdining/dishwatch/scrape"
	"github.com/uscdining/dishwatch/slack"
	"github.com/uscdining/dishwatch/store"
)

var (
	configPath  string
	dbPath      string
	storeKind   string
	static      string
	snapshotDir string
	halls       []string
	headful     bool
	debug       bool
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "dishwatch",
	Short: "dishwatch scrapes today's dining hall menus and stores the tracked dishes.",
	// Usage is not helpful for runtime failures.
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "JSON5 file overriding the built-in halls and vocabulary. A sibling <name>.local.json5 is merged on top.")
	flags.StringVar(&dbPath, "db", defaultDBPath(), "Database path, or a libsql:// URL for a remote database.")
	flags.StringVar(&storeKind, "store", db.KindSQLite, "Store backend: sqlite or bolt.")
	flags.StringVar(&static, "static", "", "Read the menu from this URL or HTML file without a browser. Use \"-\" for the configured menu URL.")
	flags.StringVar(&snapshotDir, "snapshot-dir", "", "Write each hall view to this directory.")
	flags.StringSliceVar(&halls, "hall", nil, "Only scrape these hall slugs. Repeatable.")
	flags.BoolVar(&headful, "headful", false, "Show the browser window.")
	flags.BoolVar(&debug, "debug", os.Getenv("DEBUG") == "true", "Enable debug logging.")
	flags.BoolVar(&dryRun, "dry-run", false, "Parse the menu without storing anything.")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log.SetDebug(debug)
	log := log.NewLogger("main")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var nav scrape.Navigator
	switch static {
	case "":
		nav = scrape.NewBrowserNavigator(cfg.MenuURL, cfg.Timing, !headful)
	case "-":
		nav = scrape.NewStaticNavigator(cfg.MenuURL, cfg.Timing)
	default:
		nav = scrape.NewStaticNavigator(static, cfg.Timing)
	}
	defer nav.Close()

	opts := pipeline.Options{DryRun: dryRun, Halls: halls}

	if snapshotDir != "" {
		fs, err := store.NewFileStore(os.ExpandEnv(snapshotDir))
		if err != nil {
			return err
		}
		opts.Snapshots = fs
		log.Info().Str("dir", snapshotDir).Msg("Writing snapshots")
	}

	var st db.Store
	if !dryRun {
		dsn := os.ExpandEnv(dbPath)
		if !strings.Contains(dsn, "://") {
			if err := os.MkdirAll(filepath.Dir(dsn), os.ModePerm); err != nil {
				return err
			}
		}

		st, err = db.Open(ctx, storeKind, dsn, os.Getenv("LIBSQL_AUTH_TOKEN"))
		if err != nil {
			return err
		}
		defer st.Close()

		log.Info().Str("store", storeKind).Str("db", dsn).Msg("Opened store")
	}

	p, err := pipeline.New(cfg, nav, st, opts)
	if err != nil {
		return err
	}

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(summary.Table())

	botToken, channel := os.Getenv("SLACK_BOT_TOKEN"), os.Getenv("SLACK_CHANNEL")
	if botToken != "" && channel != "" {
		// A failed notification does not fail the run.
		if err := slack.NewNotifier(botToken, channel).Notify(ctx, summary.Text()); err != nil {
			log.Error().Err(err).Msg("Failed to send summary to Slack")
		}
	}

	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dishwatch.db"
	}

	return filepath.Join(home, ".local", "share", "dishwatch", "dishwatch.db")
}
