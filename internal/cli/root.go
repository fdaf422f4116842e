package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"devops-topics/internal/format"
	"devops-topics/internal/logging"
	"devops-topics/internal/store"
	"devops-topics/internal/tui"
	"devops-topics/internal/viewmodel"

	"github.com/spf13/cobra"
)

type App struct {
	ConfigDir  string
	Backend    string
	DataDir    string
	PageSize   int
	LogLevel   string
	PrettyJSON bool
	Format     string

	cfg   *store.Config
	store *store.Store
	list  *viewmodel.TopicsList
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "topics",
		Short:        "DevOps topics checklist (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  topics

  # Scriptable commands
  topics list --page 2
  topics add "Helm"
  topics add-sub 3 "Compose files"
  topics toggle 3 --with-children

  # Direct lookup (shortcut for: topics show <id>)
  topics 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("TOPICS_CONFIG_DIR", ""), "Config directory (default: ~/.topics)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("TOPICS_BACKEND", ""), "Persistence backend (sqlite|json|memory|none; overrides config)")
	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", envOr("TOPICS_DATA_DIR", ""), "Backend data directory (overrides config)")
	cmd.PersistentFlags().IntVar(&app.PageSize, "page-size", 0, "Root topics per page (overrides config; default 5)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("TOPICS_LOG_LEVEL", ""), "File log level (debug|info|warn|error|off)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TOPICS_FORMAT", "json"), "Output format (json|yaml)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newPagesCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newAddSubCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newExpandCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newProgressCmd(app))
	cmd.AddCommand(newDeleteSubCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newMCPCmd(app))

	return cmd
}

// setup loads config and starts logging. The store is opened lazily so
// `config` subcommands work without touching the data dir.
func (app *App) setup() error {
	if v := strings.TrimSpace(app.ConfigDir); v != "" {
		if err := os.Setenv("TOPICS_CONFIG_DIR", v); err != nil {
			return err
		}
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(app.DataDir); v != "" {
		cfg.DataDir = v
	}
	if app.PageSize > 0 {
		cfg.PageSize = app.PageSize
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	app.cfg = cfg

	level, enabled, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logDir := ""
	if enabled {
		dir, err := store.ConfigDir()
		if err != nil {
			return err
		}
		logDir = filepath.Join(dir, "logs")
	}
	return logging.Init(logging.Options{Enabled: enabled, LogDir: logDir, Level: level})
}

func (app *App) close() {
	if app.list != nil {
		app.list.Close()
		app.list = nil
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			logging.L.Warn("close store failed", "err", err)
		}
		app.store = nil
	}
	_ = logging.Close()
}

// open returns the view-model over the configured store.
func (app *App) open() (*viewmodel.TopicsList, error) {
	if app.list != nil {
		return app.list, nil
	}
	if app.cfg == nil {
		if err := app.setup(); err != nil {
			return nil, err
		}
	}
	backend, err := store.OpenBackend(app.cfg)
	if err != nil {
		return nil, err
	}
	app.store = store.New(backend, store.WithLogger(logging.L))
	app.list = viewmodel.New(app.store, app.cfg.ResolvedPageSize(), logging.L)
	logging.L.Debug("store opened", "backend", app.cfg.ResolvedBackend())
	return app.list, nil
}

func runTUI(app *App) error {
	list, err := app.open()
	if err != nil {
		return err
	}
	return tui.Run(list, tui.Options{Glyphs: app.cfg.ResolvedGlyphs()})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
