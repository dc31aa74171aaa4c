package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/config"
	"github.com/studiowebux/relaydash/internal/dashboard"
	"github.com/studiowebux/relaydash/internal/history"
	"github.com/studiowebux/relaydash/internal/logging"
	"github.com/studiowebux/relaydash/internal/relay"
	"github.com/studiowebux/relaydash/internal/view"
)

// GlobalOptions holds the persistent flags shared by every command
type GlobalOptions struct {
	ConfigPath string
	// ConfigDir overrides ~/.relaydash, mainly for tests
	ConfigDir string
}

// app is what every command needs once flags and config are resolved
type app struct {
	opts     GlobalOptions
	settings *config.Settings
	logger   *zap.Logger
	client   *relay.Client
	history  *history.Manager
	in       io.Reader
}

// Execute runs the relaydash command line
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the relaydash command tree
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "relaydash",
		Short: "RelayMail dashboard - emails, metrics and API keys",
		Long: `relaydash is the RelayMail dashboard in your terminal.

Run without arguments to start the interactive dashboard, or use a
subcommand to print one region or manage API keys from scripts.

Examples:
  relaydash                              # Start interactive dashboard
  relaydash emails --status failed       # Failed deliveries only
  relaydash keys -o json --query '[].name'
  relaydash keys create "CI runner" --copy
  relaydash keys revoke 7
  relaydash snapshot -o html > dashboard.html
  relaydash history --limit 20           # Recent key and logout actions
  relaydash mock --fixture fixture.yaml  # Local backend for development`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.history != nil {
				if err := a.history.Close(); err != nil {
					a.logger.Warn("Failed to close history", zap.Error(err))
				}
			}
			if a.logger != nil {
				_ = a.logger.Sync()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.ConfigPath, "config", "", "Config file (default ~/.relaydash/config.yaml)")
	flags.StringVar(&a.opts.ConfigDir, "config-dir", "", "Configuration directory (default ~/.relaydash)")
	flags.String("base-url", config.DefaultBaseURL, "RelayMail backend URL")
	flags.String("session", "", "Dashboard session cookie value")
	flags.String("log-file", "", "Log file (default ~/.relaydash/relaydash.log)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Duration("message-timeout", config.DefaultMessageTimeout, "How long status messages stay visible (0 keeps them)")
	flags.Duration("http-timeout", 0, "Per-request timeout (0 disables)")
	flags.String("timezone", "", "IANA timezone for dates (default local)")
	flags.Bool("history", true, "Record key and logout actions in the local history")
	_ = flags.MarkHidden("config-dir")

	rootCmd.AddCommand(
		newTUICommand(a),
		newEmailsCommand(a),
		newMetricsCommand(a),
		newKeysCommand(a),
		newLogoutCommand(a),
		newSnapshotCommand(a),
		newMockCommand(a),
		newKeybindsCommand(a),
		newHistoryCommand(a),
	)

	return rootCmd
}

// setup resolves configuration, opens the log file and builds the client
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.opts.ConfigDir != "" {
		err = config.InitializeAt(a.opts.ConfigDir)
	} else {
		err = config.Initialize()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load(a.opts.ConfigPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.settings = settings

	logger, err := logging.New(settings.LogFile, settings.Debug)
	if err != nil {
		return err
	}
	a.logger = logger.With(zap.String("command", cmd.Name()))

	client, err := relay.NewClient(relay.Options{
		BaseURL: settings.BaseURL,
		Session: settings.Session,
		Timeout: settings.HTTPTimeout,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}
	a.client = client
	a.in = cmd.InOrStdin()
	return nil
}

// openHistory opens the history database once per run
func (a *app) openHistory(ctx context.Context) (*history.Manager, error) {
	if a.history != nil {
		return a.history, nil
	}
	manager, err := history.Open(ctx, config.DatabasePath, a.settings.BaseURL)
	if err != nil {
		return nil, err
	}
	a.history = manager
	return manager, nil
}

// recorder returns the history as a coordinator recorder, or nil when history
// is disabled or unavailable. Actions still run without it.
func (a *app) recorder(ctx context.Context) dashboard.Recorder {
	if !a.settings.History {
		return nil
	}
	manager, err := a.openHistory(ctx)
	if err != nil {
		a.logger.Warn("History unavailable", zap.Error(err))
		return nil
	}
	return manager
}

func (a *app) formatter() view.Formatter {
	return view.Formatter{Location: a.settings.Location}
}

func (a *app) printer(cmd *cobra.Command) *Printer {
	return NewPrinter(cmd.OutOrStdout(), a.formatter())
}
