// Command cbres prints the bundled content blocker resources and builds the
// local filter database from them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/minios-linux/cbres/assets"
	"github.com/minios-linux/cbres/config"
	"github.com/minios-linux/cbres/filterdb"
	"github.com/minios-linux/cbres/i18n"
	"github.com/minios-linux/cbres/inputmethod"
	"github.com/minios-linux/cbres/locale"
	"github.com/minios-linux/cbres/rawres"
	"github.com/minios-linux/cbres/resources"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cbres",
		Short: i18n.T("Content blocker resources: filter database scripts and settings"),
		Long: `cbres: content blocker resources.

Serves the raw resources bundled with the content blocker: the SQL scripts
that build the local filter database, the remote filter URLs, and the
language-dependent scripts derived from the enabled keyboard languages.

Commands:
  script         Print a bundled database script
  update-script  Print the migration script between two schema versions
  url            Print a configured remote URL
  languages      Show the languages used to pick default filters
  db             Create, upgrade and inspect the filter database
  version        Show version information

Settings are read from .cbres.yaml in the project root and from
CBRES_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newScriptCmd(),
		newUpdateScriptCmd(),
		newURLCmd(),
		newLanguagesCmd(),
		newDBCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Wiring
// ---------------------------------------------------------------------------

// app holds the objects built from configuration for one command run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *resources.Provider
}

func loadApp() (*app, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Level(),
		TimeFormat: time.Kitchen,
	}))

	var res rawres.Resources = assets.Raw()
	if dir := cfg.ResolvePath(cfg.ResourcesDir); dir != "" {
		store, err := rawres.NewStore(os.DirFS(dir), ".")
		if err != nil {
			return nil, err
		}
		res = store
	}

	var ime inputmethod.Manager = inputmethod.NewStatic()
	if path := cfg.ResolvePath(cfg.InputMethods); path != "" {
		ime = inputmethod.FileManager{Path: path}
	}

	var loc locale.Source = locale.System{}
	if cfg.Locale != "" {
		loc = locale.Fixed(cfg.Locale)
	}

	provider := resources.New(resources.Platform{
		Resources:    res,
		InputMethods: ime,
		Locale:       loc,
	}, &resources.Cache{}, resources.WithLogger(logger))

	return &app{cfg: cfg, logger: logger, provider: provider}, nil
}

// ---------------------------------------------------------------------------
// script
// ---------------------------------------------------------------------------

// scriptGetters maps script kinds to provider accessors.
func scriptGetters(p *resources.Provider) map[string]func() (string, error) {
	return map[string]func() (string, error){
		"create":                      p.CreateTablesScript,
		"drop":                        p.DropTablesScript,
		"insert-filters":              p.InsertFiltersScript,
		"insert-filters-localization": p.InsertFiltersLocalizationScript,
		"enable-default-filters":      p.EnableDefaultFiltersScript,
		"select-filters":              p.SelectFiltersScript,
	}
}

// scriptKinds lists the accepted script kinds, sorted.
var scriptKinds = []string{
	"create",
	"drop",
	"enable-default-filters",
	"insert-filters",
	"insert-filters-localization",
	"select-filters",
}

func newScriptCmd() *cobra.Command {
	kinds := scriptKinds
	cmd := &cobra.Command{
		Use:       "script <kind>",
		Short:     i18n.T("Print a bundled database script"),
		Long:      "Print a bundled database script.\n\nKinds: " + strings.Join(kinds, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			get, ok := scriptGetters(a.provider)[args[0]]
			if !ok {
				return fmt.Errorf(i18n.T("unknown script kind %q (valid: %s)"), args[0], strings.Join(kinds, ", "))
			}
			script, err := get()
			if err != nil {
				return err
			}
			return printText(cmd.OutOrStdout(), script)
		},
	}
	return cmd
}

func printText(w io.Writer, s string) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := io.WriteString(w, s)
	return err
}

// ---------------------------------------------------------------------------
// update-script
// ---------------------------------------------------------------------------

func newUpdateScriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update-script <old-version> <new-version>",
		Short: i18n.T("Print the migration script between two schema versions"),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldVersion, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf(i18n.T("invalid version %q"), args[0])
			}
			newVersion, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf(i18n.T("invalid version %q"), args[1])
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			script, ok, err := a.provider.UpdateScript(oldVersion, newVersion)
			if err != nil {
				return err
			}
			if !ok {
				logWarning(i18n.T("No migration path from version %d to %d"), oldVersion, newVersion)
				return nil
			}
			return printText(cmd.OutOrStdout(), script)
		},
	}
}

// ---------------------------------------------------------------------------
// url
// ---------------------------------------------------------------------------

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "url <check|filter>",
		Short:     i18n.T("Print a configured remote URL"),
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"check", "filter"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			var (
				url string
				ok  bool
			)
			switch args[0] {
			case "check":
				url, ok = a.provider.CheckFilterVersionsURL()
			case "filter":
				url, ok = a.provider.FilterURL()
			default:
				return fmt.Errorf(i18n.T("unknown URL %q (valid: check, filter)"), args[0])
			}
			if !ok {
				return fmt.Errorf(i18n.T("URL %q is not configured"), args[0])
			}
			return printText(cmd.OutOrStdout(), url)
		},
	}
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: i18n.T("Show the languages used to pick default filters"),
		Long: `Show the user's languages: the languages of all enabled keyboard
input methods in order of first appearance, followed by the default
locale's language when it is not already listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			langs := a.provider.Languages()
			logInfo(i18n.N("Found %d language", "Found %d languages", len(langs)), len(langs))
			logInfo(i18n.T("Default language: %s"), a.provider.DefaultLanguage())
			return printText(cmd.OutOrStdout(), strings.Join(langs, "\n"))
		},
	}
}

// ---------------------------------------------------------------------------
// db
// ---------------------------------------------------------------------------

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: i18n.T("Create, upgrade and inspect the filter database"),
	}
	cmd.AddCommand(newDBInitCmd(), newDBFiltersCmd())
	return cmd
}

func openStore(ctx context.Context, a *app) (*filterdb.Store, error) {
	return filterdb.Open(ctx, a.cfg.DatabasePath(), a.provider, filterdb.WithLogger(a.logger))
}

func newDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: i18n.T("Create or upgrade the filter database"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := loadApp()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, a)
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.Version(ctx)
			if err != nil {
				return err
			}
			ids, err := store.EnabledFilterIDs(ctx)
			if err != nil {
				return err
			}
			logSuccess(i18n.T("Filter database %s is at schema version %d"), a.cfg.DatabasePath(), v)
			logInfo(i18n.N("%d filter enabled", "%d filters enabled", len(ids)), len(ids))
			return nil
		},
	}
}

func newDBFiltersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: i18n.T("List filters for the current locale"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a, err := loadApp()
			if err != nil {
				return err
			}
			store, err := openStore(ctx, a)
			if err != nil {
				return err
			}
			defer store.Close()

			filters, err := store.Filters(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, f := range filters {
				fmt.Fprintln(w, formatFilter(f))
			}
			return nil
		},
	}
}

func formatFilter(f filterdb.Filter) string {
	mark := "[ ]"
	if f.Enabled {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %3d  %s", mark, f.ID, f.Name)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "cbres version %s\n", version)
			fmt.Fprintf(w, "  commit:    %s\n", commit)
			fmt.Fprintf(w, "  built:     %s\n", date)
		},
	}
}
