package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studiowebux/relaydash/internal/config"
	"github.com/studiowebux/relaydash/internal/dashboard"
	"github.com/studiowebux/relaydash/internal/filter"
	"github.com/studiowebux/relaydash/internal/history"
	"github.com/studiowebux/relaydash/internal/keybinds"
	"github.com/studiowebux/relaydash/internal/mock"
	"github.com/studiowebux/relaydash/internal/tui"
	"github.com/studiowebux/relaydash/internal/types"
)

// DefaultMockAddr is where `relaydash mock` listens; it matches config.DefaultBaseURL
const DefaultMockAddr = "127.0.0.1:5001"

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}
	if result := keybinds.NewValidator().ValidateRegistry(registry); result.HasErrors() {
		return fmt.Errorf("invalid keybindings:\n%s", result.String())
	} else if result.HasWarnings() {
		a.logger.Warn("Keybinding warnings", zap.String("details", result.String()))
	}

	return tui.Run(cmd.Context(), tui.Options{
		Backend:        a.client,
		BaseURL:        a.client.BaseURL(),
		Keybinds:       registry,
		Location:       a.settings.Location,
		MessageTimeout: a.settings.MessageTimeout,
		Logger:         a.logger,
		Recorder:       a.recorder(cmd.Context()),
	})
}

func newEmailsCommand(a *app) *cobra.Command {
	var (
		output   string
		query    string
		statuses []string
	)

	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List recent emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output, regionFormats)
			if err != nil {
				return err
			}
			q, err := filter.Compile(query)
			if err != nil {
				return err
			}

			emails, err := a.client.FetchEmails(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load emails: %w", err)
			}
			emails = filter.FilterEmailsByStatus(emails, statuses)

			if q != nil {
				return a.printer(cmd).Query(cmd.Context(), q, emails)
			}
			return a.printer(cmd).Emails(emails, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(FormatTable), "Output format (table/json/yaml/html)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "JMESPath query or $(shell command) applied to the JSON records")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only show emails with these statuses (repeatable)")
	return cmd
}

func newMetricsCommand(a *app) *cobra.Command {
	var (
		output string
		query  string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show sending metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output, regionFormats)
			if err != nil {
				return err
			}
			q, err := filter.Compile(query)
			if err != nil {
				return err
			}

			metrics, err := a.client.FetchMetrics(cmd.Context())
			if err != nil {
				a.logger.Error("Error loading metrics", zap.Error(err))
				return fmt.Errorf("failed to load metrics: %w", err)
			}

			if q != nil {
				return a.printer(cmd).Query(cmd.Context(), q, metrics)
			}
			return a.printer(cmd).Metrics(metrics, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(FormatTable), "Output format (table/json/yaml/html)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "JMESPath query or $(shell command) applied to the JSON record")
	return cmd
}

func newKeysCommand(a *app) *cobra.Command {
	var (
		output string
		query  string
		match  string
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List and manage API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output, regionFormats)
			if err != nil {
				return err
			}
			q, err := filter.Compile(query)
			if err != nil {
				return err
			}

			keys, err := a.client.FetchKeys(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load API keys: %w", err)
			}
			keys = filter.MatchKeys(keys, match)

			if q != nil {
				return a.printer(cmd).Query(cmd.Context(), q, keys)
			}
			return a.printer(cmd).Keys(keys, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(FormatTable), "Output format (table/json/yaml/html)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "JMESPath query or $(shell command) applied to the JSON records")
	cmd.Flags().StringVarP(&match, "match", "m", "", "Fuzzy-match key names, best match first")

	cmd.AddCommand(newKeysCreateCommand(a), newKeysRevokeCommand(a))
	return cmd
}

// writerNotifier prints coordinator alerts to stderr
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Alert(message string) {
	fmt.Fprintf(n.w, "Error: %s\n", message)
}

// coordinator builds a one-shot coordinator for a CLI command. There is no
// label to restore after a copy, so timers are dropped.
func (a *app) coordinator(cmd *cobra.Command, clip dashboard.Clipboard) (*dashboard.Coordinator, error) {
	return dashboard.NewCoordinator(dashboard.Deps{
		Keys:      a.client,
		Modals:    dashboard.NewModals(),
		Notifier:  writerNotifier{w: cmd.ErrOrStderr()},
		Clipboard: clip,
		Navigator: dashboard.SessionNavigator{Ender: a.client},
		Scheduler: dashboard.SchedulerFunc(func(time.Duration, func()) {}),
		Recorder:  a.recorder(cmd.Context()),
		Logger:    a.logger,
	})
}

func newKeysCreateCommand(a *app) *cobra.Command {
	var (
		copyKey bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create an API key and print its secret once",
		Long: `Create an API key. A blank name becomes "` + dashboard.DefaultKeyName + `".

The full key is only returned once: store it before closing the terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output, []Format{FormatText, FormatJSON})
			if err != nil {
				return err
			}

			var clip dashboard.Clipboard
			if copyKey {
				clip = dashboard.SystemClipboard{}
			}
			coordinator, err := a.coordinator(cmd, clip)
			if err != nil {
				return err
			}

			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			if err := coordinator.Modals().OpenCreate(); err != nil {
				return err
			}
			coordinator.Modals().SetNameInput(name)

			created, err := coordinator.SubmitCreateKey(cmd.Context(), name)
			if err != nil {
				return alerted(err)
			}

			if copyKey {
				if err := coordinator.CopyGeneratedKey(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "Key copied to clipboard")
				}
			}

			out := cmd.OutOrStdout()
			if format == FormatJSON {
				data, err := json.MarshalIndent(created, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "API key created. Copy it now: it will not be shown again.")
			_, err = fmt.Fprintln(out, created.Key)
			return err
		},
	}

	cmd.Flags().BoolVarP(&copyKey, "copy", "c", false, "Copy the new key to the clipboard")
	cmd.Flags().StringVarP(&output, "output", "o", string(FormatText), "Output format (text/json)")
	return cmd
}

func newKeysRevokeCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "revoke [id]",
		Short: "Revoke an API key",
		Long: `Revoke an API key by id. Without an id, pick the key from a list.

Applications using the key stop working immediately.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id types.KeyID
			if len(args) > 0 {
				id = types.KeyID(args[0])
			} else {
				if !isInteractive() {
					return errors.New("key id is required when stdin is not a terminal")
				}
				keys, err := a.client.FetchKeys(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to load API keys: %w", err)
				}
				id, err = promptForKey(keys)
				if err != nil {
					return err
				}
			}

			if !yes && !confirm(a.in, cmd.ErrOrStderr(), fmt.Sprintf("Revoke key %s?", id)) {
				return errors.New("revocation cancelled by user")
			}

			coordinator, err := a.coordinator(cmd, nil)
			if err != nil {
				return err
			}
			if err := coordinator.Modals().OpenRevokeConfirm(id); err != nil {
				return err
			}
			if err := coordinator.ConfirmRevoke(cmd.Context()); err != nil {
				return alerted(err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Key %s revoked\n", id)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the dashboard session at the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coordinator, err := a.coordinator(cmd, nil)
			if err != nil {
				return err
			}
			if err := coordinator.Modals().OpenLogoutConfirm(); err != nil {
				return err
			}
			if err := coordinator.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Session ended")
			return err
		},
	}
}

func newSnapshotCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load every region at once and print the dashboard",
		Long: `Load metrics, emails and API keys concurrently, the way the dashboard
page does, and print the result. A region that fails to load shows its
inline error; the others are unaffected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output, snapshotFormats)
			if err != nil {
				return err
			}

			snap := TakeSnapshot(cmd.Context(), a.client, a.logger)
			if format == FormatHTML {
				return snap.WriteHTML(cmd.OutOrStdout(), a.formatter())
			}
			return snap.WriteText(a.printer(cmd))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(FormatText), "Output format (text/html)")
	return cmd
}

func newMockCommand(a *app) *cobra.Command {
	var (
		fixturePath string
		addr        string
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve an in-memory RelayMail backend",
		Long: `Serve the dashboard REST contract from memory, seeded from a YAML or
JSON fixture. When --session is set, API routes require that cookie value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fixture *mock.Fixture
			if fixturePath != "" {
				loaded, err := mock.LoadFixture(fixturePath)
				if err != nil {
					return err
				}
				fixture = loaded
			}

			server, err := mock.NewServer(fixture, mock.Options{
				Session: a.settings.Session,
				Logger:  a.logger,
			})
			if err != nil {
				return err
			}
			if err := server.Start(addr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mock backend listening on %s (ctrl+c to stop)\n", server.GetAddress())

			<-cmd.Context().Done()
			return server.Stop()
		},
	}

	cmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "Fixture file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&addr, "addr", DefaultMockAddr, "Listen address")
	return cmd
}

func newKeybindsCommand(a *app) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "keybinds",
		Short: "Show the effective dashboard keybindings",
		Long: `Show the dashboard keybindings after applying ~/.relaydash/keybinds.json.
Use --export to write them out as a starting point for customisation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
			if err != nil {
				return err
			}

			if exportPath != "" {
				if err := keybinds.SaveConfig(keybinds.ExportConfig(registry), exportPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Keybindings written to %s\n", exportPath)
				return nil
			}

			out := cmd.OutOrStdout()
			t := table.NewWriter()
			t.SetStyle(table.StyleDefault)
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Context", "Key", "Action", "Description"})
			for _, context := range keybinds.AllContexts {
				for _, binding := range registry.ListBindings(context) {
					if binding.Context != context {
						continue
					}
					t.AppendRow(table.Row{context, binding.Key, binding.Action, binding.Action.Description()})
				}
			}
			t.Render()

			result := keybinds.NewValidator().ValidateRegistry(registry)
			_, err = fmt.Fprintln(out, result.String())
			return err
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "Write the effective keybindings to this file")
	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	var (
		output string
		limit  int
		action string
		all    bool
		wipe   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show key and logout actions taken from this machine",
		Long: `Show the local activity history: keys created or revoked and logouts,
with the error when the action failed. Entries are scoped to the current
base URL unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output, historyFormats)
			if err != nil {
				return err
			}
			switch action {
			case "", types.ActivityCreateKey, types.ActivityRevokeKey, types.ActivityLogout:
			default:
				return fmt.Errorf("unknown action %q (use %s, %s or %s)", action, types.ActivityCreateKey, types.ActivityRevokeKey, types.ActivityLogout)
			}
			if limit < 0 {
				return fmt.Errorf("limit must not be negative")
			}

			manager, err := a.openHistory(cmd.Context())
			if err != nil {
				return err
			}

			if wipe {
				if err := manager.Clear(cmd.Context()); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				return err
			}

			entries, err := manager.Load(cmd.Context(), history.Query{
				Limit:       limit,
				Action:      action,
				AllBackends: all,
			})
			if err != nil {
				return err
			}
			return a.printer(cmd).History(entries, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(FormatTable), "Output format (table, json, yaml)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&action, "action", "", "Only show one action (create_key, revoke_key, logout)")
	cmd.Flags().BoolVar(&all, "all", false, "Include entries recorded against other base URLs")
	cmd.Flags().BoolVar(&wipe, "clear", false, "Delete the history for the current base URL")

	return cmd
}
