// Package cli implements the simpletasks command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/commands"
	"simpletasks/pkg/config"
	"simpletasks/pkg/remote"
	"simpletasks/pkg/storage"
	"simpletasks/pkg/ui"
	"simpletasks/pkg/utils"
)

// app carries what the persistent pre-run resolved for the subcommands.
type app struct {
	configPath  string
	verbose     bool
	backendKind string

	cfg     config.Config
	styles  config.Styles
	backend backend.Backend

	isTerminal func() bool
	runTUI     func(m ui.Model) error
}

// Execute runs the root command against the process arguments.
func Execute() error {
	a := newApp()
	return a.execute(newRootCmd(a))
}

func newApp() *app {
	return &app{
		isTerminal: func() bool { return isatty.IsTerminal(os.Stdout.Fd()) },
		runTUI: func(m ui.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// execute runs cmd and then releases the backend and log file, also when
// the command failed.
func (a *app) execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simpletasks",
		Short: "A small todo list with categories",
		Long: `simpletasks keeps a todo list grouped into colored categories.

Without a subcommand it opens the terminal UI, or prints the list when
stdout is not a terminal. Tasks live in a local snapshot (sqlite, json file
or memory) or in a remote record service, chosen by the "backend" setting.

Quick start:
  simpletasks add "Write report +work"
  simpletasks list --status active
  simpletasks toggle ID`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.isTerminal() {
				if err := a.load(cmd.Context()); err != nil {
					return err
				}
				return commands.HandleList(a.backend, cmd.OutOrStdout(), "", "")
			}
			// The model loads on Init so the spinner covers a slow remote.
			return a.runTUI(ui.NewModel(a.backend, a.cfg, a.styles))
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is ~/.config/simpletasks/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "write debug logs")
	rootCmd.PersistentFlags().StringVar(&a.backendKind, "backend", "", "override the configured backend (local or remote)")

	// Add subcommands
	rootCmd.AddCommand(a.newAddCmd())
	rootCmd.AddCommand(a.newListCmd())
	rootCmd.AddCommand(a.newToggleCmd())
	rootCmd.AddCommand(a.newRemoveCmd())
	rootCmd.AddCommand(a.newCategoryCmd())
	rootCmd.AddCommand(a.newImportCmd())
	rootCmd.AddCommand(a.newExportCmd())
	rootCmd.AddCommand(a.newPurgeCmd())

	return rootCmd
}

// setup loads the configuration, starts logging and opens the backend.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, styles, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.backendKind != "" {
		cfg.Backend = a.backendKind
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg, a.styles = cfg, styles

	if err := utils.InitLogger(a.verbose, cfg.LogFile); err != nil {
		return err
	}

	b, err := openBackend(cmd.Context(), cfg, utils.Logger())
	if err != nil {
		return err
	}
	a.backend = b
	return nil
}

func (a *app) teardown() error {
	defer utils.CloseLogger()
	if a.backend == nil {
		return nil
	}
	b := a.backend
	a.backend = nil
	return b.Close()
}

func (a *app) load(ctx context.Context) error {
	if err := a.backend.Load(ctx); err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	return nil
}

// openBackend builds the configured backend. Local backends persist to the
// configured slot store; remote backends talk to the configured driver.
func openBackend(ctx context.Context, cfg config.Config, log zerolog.Logger) (backend.Backend, error) {
	if cfg.Backend != "remote" {
		slots, err := storage.Open(cfg.Storage, cfg.StoragePath(), log)
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
		}
		log.Debug().Str("storage", cfg.Storage).Str("path", cfg.StoragePath()).Msg("local backend")
		return backend.NewLocal(storage.NewAdapter(slots, log), log), nil
	}

	rc := cfg.Remote
	coll := remote.DefaultCollections()
	if rc.TasksCollection != "" {
		coll.Tasks = rc.TasksCollection
	}
	if rc.CategoriesCollection != "" {
		coll.Categories = rc.CategoriesCollection
	}

	var svc remote.RecordService
	switch rc.Driver {
	case "postgres":
		ctx, cancel := context.WithTimeout(ctx, timeoutOr(rc.Timeout))
		defer cancel()
		pg, err := remote.OpenPostgres(ctx, rc.PostgresDSN, coll)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		svc = pg
	case "memory":
		svc = remote.NewMemoryService()
	default:
		h, err := remote.NewHTTPService(remote.HTTPConfig{
			BaseURL:   rc.URL,
			ProjectID: rc.ProjectID,
			PublicKey: rc.PublicKey,
			Timeout:   rc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		svc = h
	}
	log.Debug().Str("driver", rc.Driver).Str("tasks", coll.Tasks).Str("categories", coll.Categories).Msg("remote backend")
	return backend.NewRemote(svc, coll, log), nil
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return remote.DefaultTimeout
	}
	return d
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
